package driving

import (
	"context"

	"github.com/veldt-labs/ragkit/internal/core/domain"
)

// Asker answers natural-language questions against the ingested corpus.
type Asker interface {
	// Ask embeds the question, retrieves relevant passages, assembles
	// context and generates an answer. When no passage meets the
	// similarity threshold the result carries best-effort context but
	// no answer and Success=false.
	Ask(ctx context.Context, question string, opts domain.QueryOptions) (domain.Answer, error)
}
