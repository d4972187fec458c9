package domain

// StageReport summarises a staging run.
type StageReport struct {
	// SectionsProcessed counts iterated sections, including ones
	// whose title was already staged.
	SectionsProcessed int

	// SectionsCreated counts sections that produced a new row.
	SectionsCreated int

	// MediaProcessed counts inserted media rows.
	MediaProcessed int

	// Skipped lists titles whose id could not be resolved.
	// Their media was not staged.
	Skipped []string
}

// RunStatus is the outcome of an embedding run.
type RunStatus string

// Embedding run outcomes.
const (
	// RunCompleted means every batch was upserted.
	RunCompleted RunStatus = "completed"

	// RunEmpty means the staging store held no sections.
	RunEmpty RunStatus = "empty"

	// RunSkipped means a required credential or service was missing.
	RunSkipped RunStatus = "skipped"

	// RunFailed means an external call failed part-way.
	RunFailed RunStatus = "failed"
)

// EmbeddingReport summarises an embedding run.
type EmbeddingReport struct {
	RunID  string
	Status RunStatus

	// Sections is the number of staged sections fetched.
	Sections int

	// BatchesUpserted counts batches committed before the run ended.
	BatchesUpserted int

	// VectorsUpserted counts records in committed batches.
	VectorsUpserted int

	// IndexCreated is true if the run created the target index.
	IndexCreated bool

	// Stats is the index state reported after the run, if available.
	Stats *IndexStats
}

// IngestReport summarises a full parse, stage and embed run.
type IngestReport struct {
	// SectionsParsed is the number of sections the parser produced.
	SectionsParsed int

	Stage     *StageReport
	Embedding *EmbeddingReport

	// EmbeddingSkipReason is set when the embedding run was skipped.
	EmbeddingSkipReason string
}
