package cli

import (
	"context"

	"github.com/veldt-labs/ragkit/internal/adapters/driven/config/file"
	"github.com/veldt-labs/ragkit/internal/adapters/driven/source/filesystem"
	"github.com/veldt-labs/ragkit/internal/adapters/driven/storage/memory"
	"github.com/veldt-labs/ragkit/internal/chunker"
	"github.com/veldt-labs/ragkit/internal/core/domain"
	"github.com/veldt-labs/ragkit/internal/core/ports/driven"
	"github.com/veldt-labs/ragkit/internal/core/services"
)

// stubEmbedder returns the same vector for every input, so any query
// matches any passage with similarity 1.
type stubEmbedder struct{}

func (stubEmbedder) Embed(_ context.Context, _ string) ([]float32, error) {
	return []float32{1, 0}, nil
}

func (stubEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{1, 0}
	}
	return out, nil
}

func (stubEmbedder) Dimensions() int { return 2 }

func (stubEmbedder) ModelName() string { return "stub-embed" }

func (stubEmbedder) Ping(_ context.Context) error { return nil }

func (stubEmbedder) Close() error { return nil }

// stubLLM echoes a canned answer.
type stubLLM struct{}

func (stubLLM) Complete(_ context.Context, _, _ string, _ driven.CompleteOptions) (string, error) {
	return "stub answer", nil
}

func (stubLLM) ModelName() string { return "stub-llm" }

func (stubLLM) Ping(_ context.Context) error { return nil }

func (stubLLM) Close() error { return nil }

// setupTestServices wires the commands to in-memory services so they
// run without providers or disk. Returns a cleanup that unwires them.
func setupTestServices() func() {
	docStore := memory.NewDocumentStore()
	vectorIndex := memory.NewVectorIndex()

	ingestService = services.NewIngestService(
		docStore, vectorIndex, stubEmbedder{}, chunker.New(),
		services.WithSource(filesystem.NewSource()),
	)
	askService = services.NewAskService(
		docStore, vectorIndex, stubEmbedder{}, stubLLM{},
	)
	appConfig = file.DefaultConfig()

	return func() {
		ingestService = nil
		askService = nil
		appConfig = file.Config{}
	}
}

// seedCorpus loads one document through the wired ingest service.
func seedCorpus() error {
	_, err := ingestService.LoadText(context.Background(), []domain.Document{
		{ID: "doc-1", Title: "Gophers", Content: "Gophers live in underground burrows."},
	})
	return err
}
