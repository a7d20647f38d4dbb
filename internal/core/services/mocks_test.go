package services

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/veldt-labs/ragkit/internal/core/domain"
	"github.com/veldt-labs/ragkit/internal/core/ports/driven"
)

// --- Mock implementations ---

// mockEmbedder implements driven.EmbeddingService for testing.
// Each text embeds to a deterministic vector so tests can predict
// similarities; failTexts forces errors for specific inputs.
type mockEmbedder struct {
	mu        sync.Mutex
	embedding []float32
	perText   map[string][]float32
	failTexts map[string]bool
	embedErr  error
	calls     []string
}

func (m *mockEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, text)

	if m.embedErr != nil {
		return nil, m.embedErr
	}
	if m.failTexts[text] {
		return nil, fmt.Errorf("provider rejected input")
	}
	if v, ok := m.perText[text]; ok {
		return v, nil
	}
	return m.embedding, nil
}

func (m *mockEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	result := make([][]float32, len(texts))
	for i, t := range texts {
		v, err := m.Embed(ctx, t)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrEmbedding, err)
		}
		result[i] = v
	}
	return result, nil
}

func (m *mockEmbedder) Dimensions() int { return len(m.embedding) }

func (m *mockEmbedder) ModelName() string { return "mock-embed" }

func (m *mockEmbedder) Ping(_ context.Context) error { return nil }

func (m *mockEmbedder) Close() error { return nil }

// mockLLM implements driven.LLMService for testing.
type mockLLM struct {
	response    string
	completeErr error

	lastSystemPrompt string
	lastUserPrompt   string
	called           bool
}

func (m *mockLLM) Complete(_ context.Context, systemPrompt, userPrompt string, _ driven.CompleteOptions) (string, error) {
	m.called = true
	m.lastSystemPrompt = systemPrompt
	m.lastUserPrompt = userPrompt
	if m.completeErr != nil {
		return "", m.completeErr
	}
	return m.response, nil
}

func (m *mockLLM) ModelName() string { return "mock-llm" }

func (m *mockLLM) Ping(_ context.Context) error { return nil }

func (m *mockLLM) Close() error { return nil }

// mockChunker implements Chunker for testing. It splits content on
// blank lines, one passage per paragraph; chunkErr forces a failure.
type mockChunker struct {
	chunkErr error
}

func (m *mockChunker) Chunk(doc domain.Document) ([]domain.Passage, error) {
	if m.chunkErr != nil {
		return nil, m.chunkErr
	}

	parts := strings.Split(doc.Content, "\n\n")
	passages := make([]domain.Passage, 0, len(parts))
	for i, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		passages = append(passages, domain.Passage{
			ID:         fmt.Sprintf("%s-p%d", doc.ID, i),
			DocumentID: doc.ID,
			Text:       p,
			Ordinal:    i,
			Length:     len(p),
			Category:   doc.Category,
		})
	}
	for i := range passages {
		passages[i].Total = len(passages)
	}
	return passages, nil
}

// mockSource implements driven.DocumentSource for testing.
type mockSource struct {
	docs     []domain.Document
	fetchErr error
}

func (m *mockSource) Fetch(_ context.Context, _ string) ([]domain.Document, error) {
	if m.fetchErr != nil {
		return nil, m.fetchErr
	}
	return m.docs, nil
}

func (m *mockSource) Name() string { return "mock-source" }
