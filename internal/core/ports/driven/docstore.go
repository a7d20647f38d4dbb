package driven

import (
	"context"

	"github.com/veldt-labs/ragkit/internal/core/domain"
)

// DocumentStore persists documents and their passages.
// Deleting a document removes its passages in the same operation;
// the store never holds passages without an owning document.
type DocumentStore interface {
	// SaveDocument stores a document.
	SaveDocument(ctx context.Context, doc *domain.Document) error

	// SavePassages stores the passages of a document.
	SavePassages(ctx context.Context, passages []domain.Passage) error

	// GetDocument retrieves a document by ID.
	// Returns domain.ErrNotFound if it does not exist.
	GetDocument(ctx context.Context, id string) (*domain.Document, error)

	// GetPassages retrieves a document's passages ordered by ordinal.
	GetPassages(ctx context.Context, documentID string) ([]domain.Passage, error)

	// DeleteDocument removes a document and its passages.
	// Returns domain.ErrNotFound if the document does not exist.
	DeleteDocument(ctx context.Context, id string) error

	// ListDocuments returns all stored documents.
	ListDocuments(ctx context.Context) ([]domain.Document, error)

	// Clear removes all documents and passages.
	Clear(ctx context.Context) error

	// Counts returns the number of stored documents and passages.
	Counts(ctx context.Context) (documents, passages int, err error)
}
