package driven

import (
	"context"

	"github.com/veldt-labs/ragkit/internal/core/domain"
)

// VectorIndex stores passage vectors and performs similarity search.
// The index is a linear scan over cosine similarity - no approximate
// nearest-neighbour structure. Implementations targeting larger corpora
// can be substituted behind this interface without touching the
// orchestrator.
type VectorIndex interface {
	// Upsert stores a vector entry, replacing any entry with the
	// same passage ID.
	Upsert(ctx context.Context, entry domain.VectorEntry) error

	// UpsertBatch stores multiple entries.
	UpsertBatch(ctx context.Context, entries []domain.VectorEntry) error

	// Search scores every stored vector against the query, keeps
	// scores >= minSimilarity, and returns at most topK results in
	// non-increasing score order. Equal scores keep insertion order.
	Search(ctx context.Context, query []float32, topK int, minSimilarity float64) ([]domain.RetrievedPassage, error)

	// DeleteDocument removes all entries belonging to a document.
	DeleteDocument(ctx context.Context, documentID string) error

	// Clear removes all entries.
	Clear(ctx context.Context) error

	// Count returns the number of stored entries.
	Count(ctx context.Context) (int, error)
}
