package driving

import (
	"context"

	"github.com/veldt-labs/ragkit/internal/core/domain"
)

// Ingestor loads documents into the retrieval pipeline and manages
// their lifecycle. Ingestion is per-document: one document's failure
// never aborts the rest of the batch.
type Ingestor interface {
	// LoadText chunks, embeds and stores the given documents.
	// Returns a partial-success summary; per-document failures are
	// collected in LoadSummary.Failed.
	LoadText(ctx context.Context, docs []domain.Document) (domain.LoadSummary, error)

	// LoadFromSource fetches documents from the configured external
	// source and ingests them via LoadText.
	LoadFromSource(ctx context.Context, location string) (domain.LoadSummary, error)

	// Remove deletes a document, its passages and its vectors.
	Remove(ctx context.Context, documentID string) error

	// ClearAll empties all three storage layers.
	ClearAll(ctx context.Context) error

	// Stats returns document, passage and vector counts.
	Stats(ctx context.Context) (domain.Stats, error)
}
