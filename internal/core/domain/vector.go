package domain

import (
	"math"
	"time"
)

// VectorEntry is an embedded passage held by the vector index.
// There is at most one entry per passage; a passage without an entry
// means its embedding failed or is still pending.
type VectorEntry struct {
	// PassageID links to the embedded Passage.
	PassageID string

	// DocumentID links to the owning Document.
	DocumentID string

	// Embedding is the vector representation. All entries in an index
	// share the same dimensionality, fixed by the embedding model.
	Embedding []float32

	// Text is the passage text, denormalised for retrieval convenience.
	Text string

	// Category is inherited from the owning document.
	Category string

	// Ordinal is the passage position within its document.
	Ordinal int

	// CreatedAt is when the entry was stored.
	CreatedAt time.Time
}

// CosineSimilarity returns the cosine of the angle between a and b.
// It returns 0 when either vector has zero magnitude or when the
// dimensions differ; a shape mismatch is "no similarity", not an error.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
