package driven

import (
	"context"

	"github.com/veldt-labs/ragkit/internal/core/domain"
)

// DocumentSource pulls documents from an external location, such as a
// directory tree or a remote document-hosting API. Retry and auth
// semantics are owned by the source, not by the core.
type DocumentSource interface {
	// Fetch returns the documents found under the given location.
	Fetch(ctx context.Context, location string) ([]domain.Document, error)

	// Name identifies the source kind (e.g. "filesystem").
	Name() string
}
