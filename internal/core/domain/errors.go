package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	// Also returned when the manuscript file is missing.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrConfigurationMissing indicates a required credential or setting is absent.
	// The embedding run is skipped rather than failed.
	ErrConfigurationMissing = errors.New("configuration missing")

	// ErrPersistenceAnomaly indicates the staging store could not resolve
	// a section id after an insert attempt.
	ErrPersistenceAnomaly = errors.New("persistence anomaly")

	// ErrExternalService indicates the embedding or vector index service failed.
	// The current run is aborted; previously upserted batches stay committed.
	ErrExternalService = errors.New("external service failure")

	// ErrEmbeddingUnavailable indicates the embedding service could not be
	// reached or answered with an error.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrVectorIndexUnavailable indicates the vector index could not be
	// reached or rejected a request.
	ErrVectorIndexUnavailable = errors.New("vector index unavailable")

	// ErrUnsupportedType indicates an unknown provider or metric.
	ErrUnsupportedType = errors.New("unsupported type")
)
