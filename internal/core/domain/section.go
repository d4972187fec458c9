package domain

import (
	"strconv"
	"time"
	"unicode/utf8"
)

// DefaultPreviewLength is the number of characters of a section body
// stored alongside its vector.
const DefaultPreviewLength = 250

// Section is a titled unit of a manuscript produced by the parser.
// Sections are never mutated after parsing.
type Section struct {
	// Title is the section heading with marker characters stripped.
	// It is the deduplication key in the staging store.
	Title string `json:"title"`

	// Body is the section prose with media placeholder lines removed.
	Body string `json:"body"`

	// MediaRefs holds placeholder descriptions in encounter order.
	MediaRefs []string `json:"media_refs"`
}

// StagedSection is a Section persisted in the staging store.
type StagedSection struct {
	// ID is assigned by the store and is stable for a given title.
	ID int64

	// Title is the unique section title.
	Title string

	// Body is the stored body. Re-staging never overwrites it.
	Body string

	// CreatedAt is when the row was first inserted.
	CreatedAt time.Time
}

// VectorID returns the identifier used for this section in the vector index.
func (s StagedSection) VectorID() string {
	return strconv.FormatInt(s.ID, 10)
}

// EmbeddingInput returns the text sent to the embedding service.
// The label and title are prepended to the body.
func (s StagedSection) EmbeddingInput(label string) string {
	return label + s.Title + "\n\n" + s.Body
}

// MediaRecord is a figure or image reference belonging to a StagedSection.
// Deleting a section does not cascade to its media.
type MediaRecord struct {
	ID          int64
	SectionID   int64
	Description string
}

// Metadata keys written to the vector index.
const (
	MetadataTitle       = "title"
	MetadataBodyPreview = "body_preview"
)

// VectorRecord is a single entry upserted into the vector index.
type VectorRecord struct {
	// ID is the decimal StagedSection id.
	ID string

	// Values is the embedding vector.
	Values []float32

	// Metadata holds the title and a bounded body preview.
	Metadata map[string]string
}

// NewVectorRecord builds the index record for a staged section.
// previewLength <= 0 falls back to DefaultPreviewLength.
func NewVectorRecord(section StagedSection, values []float32, previewLength int) VectorRecord {
	if previewLength <= 0 {
		previewLength = DefaultPreviewLength
	}
	return VectorRecord{
		ID:     section.VectorID(),
		Values: values,
		Metadata: map[string]string{
			MetadataTitle:       section.Title,
			MetadataBodyPreview: Preview(section.Body, previewLength),
		},
	}
}

// Preview truncates text to at most n characters.
// Truncation counts runes so multi-byte characters are never split.
func Preview(text string, n int) string {
	if n <= 0 {
		return ""
	}
	if utf8.RuneCountInString(text) <= n {
		return text
	}
	count := 0
	for i := range text {
		if count == n {
			return text[:i]
		}
		count++
	}
	return text
}

// IndexMetric is the similarity metric of a vector index.
type IndexMetric string

// Supported metrics.
const (
	MetricCosine     IndexMetric = "cosine"
	MetricDotProduct IndexMetric = "dotproduct"
	MetricEuclidean  IndexMetric = "euclidean"
)

// IsValid returns true if the metric is recognised.
func (m IndexMetric) IsValid() bool {
	switch m {
	case MetricCosine, MetricDotProduct, MetricEuclidean:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (m IndexMetric) String() string {
	return string(m)
}

// IndexStats describes the state of a vector index.
type IndexStats struct {
	Name        string
	Dimension   int
	VectorCount uint64
}
