// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - ManuscriptParser: Splits raw manuscript text into sections
//   - SectionStore: Staging store for sections and media records
//   - ConfigStore: Application configuration
//
// # External Capabilities
//
// These are only needed by the embedding pipeline. When either is nil
// the pipeline skips its run instead of failing:
//
//   - EmbeddingService: Generates vector embeddings
//   - VectorIndex: Stores vectors and metadata keyed by section id
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or normaliser package
package driven
