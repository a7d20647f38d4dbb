package domain

// Default query parameters.
const (
	// DefaultTopK is the number of passages retrieved per query.
	DefaultTopK = 5

	// DefaultMinSimilarity is the relevance threshold below which a
	// passage is not considered a genuine match.
	DefaultMinSimilarity = 0.5

	// DefaultMaxContextLength is the character budget for assembled context.
	DefaultMaxContextLength = 4000

	// FallbackTopK caps the best-effort retrieval that runs when no
	// passage meets the similarity threshold.
	FallbackTopK = 3
)

// QueryOptions configures a retrieval query.
type QueryOptions struct {
	// TopK is the maximum number of passages to retrieve.
	TopK int

	// MinSimilarity is the minimum cosine similarity for a passage to
	// count as a genuine match. Zero selects DefaultMinSimilarity; pass
	// a negative threshold such as -1 to accept every passage. Values
	// outside [-1,1] are clamped.
	MinSimilarity float64

	// Category restricts results to passages of one category.
	// Filtering happens after ranking, so fewer than TopK results
	// may be returned for a category-scoped query.
	Category string

	// MaxContextLength is the character budget for assembled context.
	MaxContextLength int

	// Temperature controls generative randomness (0.0 = deterministic).
	Temperature float64

	// MaxTokens bounds the generated answer length.
	MaxTokens int
}

// Normalise fills in defaults for unset options and clamps the
// similarity threshold to the cosine range.
func (o QueryOptions) Normalise() QueryOptions {
	if o.TopK <= 0 {
		o.TopK = DefaultTopK
	}
	if o.MinSimilarity == 0 {
		o.MinSimilarity = DefaultMinSimilarity
	}
	if o.MinSimilarity < -1 {
		o.MinSimilarity = -1
	}
	if o.MinSimilarity > 1 {
		o.MinSimilarity = 1
	}
	if o.MaxContextLength <= 0 {
		o.MaxContextLength = DefaultMaxContextLength
	}
	return o
}

// RetrievedPassage pairs a vector entry with its similarity score.
type RetrievedPassage struct {
	// Entry is the matched vector entry.
	Entry VectorEntry

	// Similarity is the cosine similarity against the query vector.
	Similarity float64
}

// Citation identifies a passage that contributed to an answer.
// Citations are only populated for genuine matches, never for fallback.
type Citation struct {
	// DocumentID is the owning document.
	DocumentID string

	// PassageOrdinal is the passage position within the document.
	PassageOrdinal int

	// Similarity is the relevance score of the cited passage.
	Similarity float64

	// Preview is a short excerpt of the passage text.
	Preview string

	// ExternalLink points back to the original document, when known.
	ExternalLink string
}

// Answer is the result of a retrieval query.
type Answer struct {
	// Success is true only when at least one passage met the
	// similarity threshold and an answer was generated.
	Success bool

	// Text is the generated answer. Empty for fallback results.
	Text string

	// Context is the assembled passage text fed to the model.
	// Non-empty even for fallback results, as best-effort context.
	Context string

	// Sources cites the passages that contributed to the answer.
	Sources []Citation

	// RetrievedPassages is the number of passages that contributed
	// to the assembled context.
	RetrievedPassages int
}

// LoadSummary reports the outcome of a (possibly partial) ingestion.
type LoadSummary struct {
	// Loaded is the number of documents stored successfully.
	Loaded int

	// Chunks is the total number of passages produced.
	Chunks int

	// Failed maps document IDs to their ingestion errors.
	// A failed document never aborts the rest of the batch.
	Failed map[string]error
}

// Stats reports store sizes across all three layers.
type Stats struct {
	// Documents is the number of stored documents.
	Documents int

	// Passages is the number of stored passages.
	Passages int

	// Vectors is the number of stored vector entries.
	Vectors int
}
