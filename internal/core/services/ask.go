package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/veldt-labs/ragkit/internal/core/domain"
	"github.com/veldt-labs/ragkit/internal/core/ports/driven"
	"github.com/veldt-labs/ragkit/internal/core/ports/driving"
	"github.com/veldt-labs/ragkit/internal/logger"
)

// Ensure AskService implements the interface.
var _ driving.Asker = (*AskService)(nil)

// previewLength is the character cap for citation previews.
const previewLength = 160

// answerSystemPrompt restricts the model to the supplied context.
const answerSystemPrompt = "You are a helpful assistant that answers questions " +
	"using only the provided context. If the context does not contain enough " +
	"information to answer, say so explicitly instead of guessing."

// AskService answers questions against the ingested corpus.
//
// A query moves through a fixed sequence: embed the question, search
// the vector index, decide between a genuine match and best-effort
// fallback, assemble context within the character budget, and finally
// generate an answer - only for genuine matches.
type AskService struct {
	docStore     driven.DocumentStore
	vectorIndex  driven.VectorIndex
	embedder     driven.EmbeddingService
	llm          driven.LLMService
	systemPrompt string
}

// AskOption configures the ask service.
type AskOption func(*AskService)

// WithSystemPrompt overrides the default answer system prompt.
func WithSystemPrompt(prompt string) AskOption {
	return func(s *AskService) {
		if prompt != "" {
			s.systemPrompt = prompt
		}
	}
}

// NewAskService creates a new ask service.
// The llm parameter is optional (can be nil); without it queries still
// retrieve and cite passages but produce no generated answer.
func NewAskService(
	docStore driven.DocumentStore,
	vectorIndex driven.VectorIndex,
	embedder driven.EmbeddingService,
	llm driven.LLMService,
	opts ...AskOption,
) *AskService {
	s := &AskService{
		docStore:     docStore,
		vectorIndex:  vectorIndex,
		embedder:     embedder,
		llm:          llm,
		systemPrompt: answerSystemPrompt,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Ask runs the full retrieval pipeline for one question.
// Embedding or search failures abort the query; generation failures
// surface as a failed result carrying the retrieved context.
func (s *AskService) Ask(
	ctx context.Context, question string, opts domain.QueryOptions,
) (domain.Answer, error) {
	logger.Section("Query Execution")

	question = strings.TrimSpace(question)
	if question == "" {
		return domain.Answer{}, fmt.Errorf("%w: empty question", domain.ErrInvalidInput)
	}
	if s.embedder == nil {
		return domain.Answer{}, domain.ErrEmbeddingUnavailable
	}

	opts = opts.Normalise()
	logger.Debug("Question: %q (topK=%d, minSimilarity=%.2f)", question, opts.TopK, opts.MinSimilarity)

	// Embed the question.
	queryVec, err := s.embedder.Embed(ctx, question)
	if err != nil {
		if !errors.Is(err, domain.ErrEmbedding) {
			err = fmt.Errorf("%w: %w", domain.ErrEmbedding, err)
		}
		return domain.Answer{}, fmt.Errorf("embed question: %w", err)
	}

	// Search at the caller's threshold.
	hits, err := s.vectorIndex.Search(ctx, queryVec, opts.TopK, opts.MinSimilarity)
	if err != nil {
		return domain.Answer{}, fmt.Errorf("search: %w", err)
	}
	hits = filterByCategory(hits, opts.Category)
	goodMatch := len(hits) > 0
	logger.Debug("Search: %d hits above threshold", len(hits))

	// No genuine match: re-search without a threshold for best-effort
	// context, capped tighter than the caller's topK.
	if !goodMatch {
		fallbackK := opts.TopK
		if fallbackK > domain.FallbackTopK {
			fallbackK = domain.FallbackTopK
		}
		hits, err = s.vectorIndex.Search(ctx, queryVec, fallbackK, 0)
		if err != nil {
			return domain.Answer{}, fmt.Errorf("fallback search: %w", err)
		}
		hits = filterByCategory(hits, opts.Category)
		logger.Info("No passage met threshold %.2f; using %d best-effort passages", opts.MinSimilarity, len(hits))
	}

	contextText, used := assembleContext(hits, opts.MaxContextLength)
	answer := domain.Answer{
		Context:           contextText,
		RetrievedPassages: len(used),
	}

	// Fallback results carry context but no answer and no citations.
	if !goodMatch {
		return answer, nil
	}

	answer.Sources = s.buildCitations(ctx, hits, used)

	// Without a generative model the retrieval result stands on its own.
	if s.llm == nil {
		logger.Debug("LLM unavailable; returning retrieval-only result")
		answer.Success = true
		return answer, nil
	}

	userPrompt := fmt.Sprintf("Context:\n%s\n\nQuestion: %s", contextText, question)
	text, err := s.llm.Complete(ctx, s.systemPrompt, userPrompt, driven.CompleteOptions{
		MaxTokens:   opts.MaxTokens,
		Temperature: opts.Temperature,
	})
	if err != nil {
		logger.Warn("Answer generation failed: %v", err)
		return answer, fmt.Errorf("%w: %w", domain.ErrGeneration, err)
	}

	answer.Success = true
	answer.Text = text
	logger.Info("Answered from %d passages", len(used))
	return answer, nil
}

// filterByCategory keeps hits of one category. Filtering runs after
// ranking, so category-scoped queries may return fewer than topK hits.
func filterByCategory(hits []domain.RetrievedPassage, category string) []domain.RetrievedPassage {
	if category == "" {
		return hits
	}
	filtered := hits[:0:0]
	for _, h := range hits {
		if h.Entry.Category == category {
			filtered = append(filtered, h)
		}
	}
	return filtered
}

// assembleContext concatenates passage texts in ranked order until the
// character budget would be exceeded. A passage that would overflow the
// budget is skipped whole, never truncated; later, shorter passages may
// still fit. Returns the context and the indices of included hits.
func assembleContext(hits []domain.RetrievedPassage, budget int) (string, []int) {
	var b strings.Builder
	var used []int

	for i, hit := range hits {
		need := len(hit.Entry.Text)
		if b.Len() > 0 {
			need += 2 // separator
		}
		if b.Len()+need > budget {
			continue
		}
		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(hit.Entry.Text)
		used = append(used, i)
	}
	return b.String(), used
}

// buildCitations creates citations for the context-contributing hits,
// resolving external links through the document store when available.
func (s *AskService) buildCitations(
	ctx context.Context, hits []domain.RetrievedPassage, used []int,
) []domain.Citation {
	links := make(map[string]string)

	citations := make([]domain.Citation, 0, len(used))
	for _, i := range used {
		entry := hits[i].Entry

		link, ok := links[entry.DocumentID]
		if !ok && s.docStore != nil {
			if doc, err := s.docStore.GetDocument(ctx, entry.DocumentID); err == nil {
				link = doc.ExternalLink
			}
			links[entry.DocumentID] = link
		}

		citations = append(citations, domain.Citation{
			DocumentID:     entry.DocumentID,
			PassageOrdinal: entry.Ordinal,
			Similarity:     hits[i].Similarity,
			Preview:        preview(entry.Text),
			ExternalLink:   link,
		})
	}
	return citations
}

// preview returns a short excerpt of a passage for display.
func preview(text string) string {
	if len(text) <= previewLength {
		return text
	}
	cut := text[:previewLength]
	if idx := strings.LastIndexByte(cut, ' '); idx > 0 {
		cut = cut[:idx]
	}
	return cut + "..."
}
