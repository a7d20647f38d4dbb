package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/veldt-labs/ragkit/internal/core/domain"
	"github.com/veldt-labs/ragkit/internal/core/ports/driven"
	"github.com/veldt-labs/ragkit/internal/core/ports/driving"
	"github.com/veldt-labs/ragkit/internal/logger"
)

// Ensure IngestService implements the interface.
var _ driving.Ingestor = (*IngestService)(nil)

// DefaultIngestWorkers is the number of documents ingested concurrently.
// Kept small so concurrent embedding calls stay inside provider limits.
const DefaultIngestWorkers = 3

// Chunker splits a document into ordered, overlapping passages.
type Chunker interface {
	Chunk(doc domain.Document) ([]domain.Passage, error)
}

// IngestService loads documents into the retrieval pipeline.
// Each document is processed independently: chunked, embedded and stored.
// A failing document is recorded in the summary and never aborts the batch.
type IngestService struct {
	docStore    driven.DocumentStore
	vectorIndex driven.VectorIndex
	embedder    driven.EmbeddingService
	chunker     Chunker
	source      driven.DocumentSource
	workers     int
}

// IngestOption configures the ingest service.
type IngestOption func(*IngestService)

// WithWorkers sets the document-level worker pool width.
func WithWorkers(n int) IngestOption {
	return func(s *IngestService) {
		if n > 0 {
			s.workers = n
		}
	}
}

// WithSource sets the optional external document source.
func WithSource(src driven.DocumentSource) IngestOption {
	return func(s *IngestService) {
		s.source = src
	}
}

// NewIngestService creates a new ingest service.
func NewIngestService(
	docStore driven.DocumentStore,
	vectorIndex driven.VectorIndex,
	embedder driven.EmbeddingService,
	chunker Chunker,
	opts ...IngestOption,
) *IngestService {
	s := &IngestService{
		docStore:    docStore,
		vectorIndex: vectorIndex,
		embedder:    embedder,
		chunker:     chunker,
		workers:     DefaultIngestWorkers,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// LoadText chunks, embeds and stores the given documents. Documents are
// processed by a bounded worker pool; cancellation is checked between
// documents, not mid-document. The returned summary reports partial
// success: failed documents appear in Failed keyed by ID.
func (s *IngestService) LoadText(ctx context.Context, docs []domain.Document) (domain.LoadSummary, error) {
	summary := domain.LoadSummary{Failed: make(map[string]error)}
	if s.embedder == nil {
		return summary, domain.ErrEmbeddingUnavailable
	}
	if len(docs) == 0 {
		return summary, fmt.Errorf("%w: no documents provided", domain.ErrInvalidInput)
	}

	logger.Section("Ingestion")
	logger.Info("Loading %d documents with %d workers", len(docs), s.workers)

	// Assign IDs up front so failures can be reported against them.
	now := time.Now()
	for i := range docs {
		if docs[i].ID == "" {
			docs[i].ID = uuid.New().String()
		}
		if docs[i].CreatedAt.IsZero() {
			docs[i].CreatedAt = now
		}
	}

	var (
		mu   sync.Mutex
		wg   sync.WaitGroup
		jobs = make(chan domain.Document)
	)

	for w := 0; w < s.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for doc := range jobs {
				chunks, err := s.ingestOne(ctx, doc)
				mu.Lock()
				if err != nil {
					logger.Warn("Document %s failed: %v", doc.ID, err)
					summary.Failed[doc.ID] = err
				} else {
					summary.Loaded++
					summary.Chunks += chunks
				}
				mu.Unlock()
			}
		}()
	}

	// Feed jobs, stopping between documents when the context is done.
	var cancelled error
	for _, doc := range docs {
		if err := ctx.Err(); err != nil {
			cancelled = err
			break
		}
		jobs <- doc
	}
	close(jobs)
	wg.Wait()

	logger.Info("Ingestion complete: %d loaded, %d chunks, %d failed",
		summary.Loaded, summary.Chunks, len(summary.Failed))

	if cancelled != nil {
		return summary, cancelled
	}
	return summary, nil
}

// ingestOne processes a single document end to end. Reprocessing an
// existing ID deletes the old passages and vectors first; there is no
// update-in-place.
func (s *IngestService) ingestOne(ctx context.Context, doc domain.Document) (int, error) {
	if err := doc.Validate(); err != nil {
		return 0, fmt.Errorf("%w: title and content are required", err)
	}

	passages, err := s.chunker.Chunk(doc)
	if err != nil {
		return 0, fmt.Errorf("chunk document: %w", err)
	}

	var entries []domain.VectorEntry
	if len(passages) > 0 {
		texts := make([]string, len(passages))
		for i := range passages {
			texts[i] = passages[i].Text
		}

		vectors, err := s.embedder.EmbedBatch(ctx, texts)
		if err != nil {
			if errors.Is(err, domain.ErrEmbedding) {
				return 0, err
			}
			return 0, fmt.Errorf("%w: %w", domain.ErrEmbedding, err)
		}
		if len(vectors) != len(passages) {
			return 0, fmt.Errorf("%w: %d passages but %d vectors", domain.ErrStorage, len(passages), len(vectors))
		}

		now := time.Now()
		entries = make([]domain.VectorEntry, len(passages))
		for i := range passages {
			entries[i] = domain.VectorEntry{
				PassageID:  passages[i].ID,
				DocumentID: doc.ID,
				Embedding:  vectors[i],
				Text:       passages[i].Text,
				Category:   passages[i].Category,
				Ordinal:    passages[i].Ordinal,
				CreatedAt:  now,
			}
		}
	}

	// Vectors go first so a partial failure can never leave vectors
	// pointing at passages that were already replaced.
	if err := s.vectorIndex.DeleteDocument(ctx, doc.ID); err != nil {
		return 0, fmt.Errorf("delete old vectors: %w", err)
	}
	if err := s.docStore.DeleteDocument(ctx, doc.ID); err != nil && !errors.Is(err, domain.ErrNotFound) {
		return 0, fmt.Errorf("delete old document: %w", err)
	}

	if err := s.docStore.SaveDocument(ctx, &doc); err != nil {
		return 0, fmt.Errorf("save document: %w", err)
	}
	if err := s.docStore.SavePassages(ctx, passages); err != nil {
		return 0, fmt.Errorf("save passages: %w", err)
	}
	if len(entries) > 0 {
		if err := s.vectorIndex.UpsertBatch(ctx, entries); err != nil {
			return 0, fmt.Errorf("store vectors: %w", err)
		}
	}

	logger.Debug("Document %s: %d passages", doc.ID, len(passages))
	return len(passages), nil
}

// LoadFromSource fetches documents from the configured external source
// and ingests them via LoadText.
func (s *IngestService) LoadFromSource(ctx context.Context, location string) (domain.LoadSummary, error) {
	if s.source == nil {
		return domain.LoadSummary{Failed: make(map[string]error)},
			errors.New("no document source configured")
	}

	logger.Debug("Fetching documents from %s source: %s", s.source.Name(), location)
	docs, err := s.source.Fetch(ctx, location)
	if err != nil {
		return domain.LoadSummary{Failed: make(map[string]error)},
			fmt.Errorf("fetch from source: %w", err)
	}
	return s.LoadText(ctx, docs)
}

// Remove deletes a document, its passages and its vectors as one
// logical operation. Vectors are removed first: a failure part-way can
// leave passages without vectors, which is a legal state, but never
// vectors without passages.
func (s *IngestService) Remove(ctx context.Context, documentID string) error {
	if _, err := s.docStore.GetDocument(ctx, documentID); err != nil {
		return err
	}
	if err := s.vectorIndex.DeleteDocument(ctx, documentID); err != nil {
		return fmt.Errorf("delete vectors: %w", err)
	}
	if err := s.docStore.DeleteDocument(ctx, documentID); err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	logger.Info("Removed document %s", documentID)
	return nil
}

// ClearAll empties all three storage layers.
func (s *IngestService) ClearAll(ctx context.Context) error {
	if err := s.vectorIndex.Clear(ctx); err != nil {
		return fmt.Errorf("clear vectors: %w", err)
	}
	if err := s.docStore.Clear(ctx); err != nil {
		return fmt.Errorf("clear documents: %w", err)
	}
	logger.Info("Cleared all documents, passages and vectors")
	return nil
}

// Stats returns document, passage and vector counts.
func (s *IngestService) Stats(ctx context.Context) (domain.Stats, error) {
	docs, passages, err := s.docStore.Counts(ctx)
	if err != nil {
		return domain.Stats{}, fmt.Errorf("count documents: %w", err)
	}
	vectors, err := s.vectorIndex.Count(ctx)
	if err != nil {
		return domain.Stats{}, fmt.Errorf("count vectors: %w", err)
	}
	return domain.Stats{Documents: docs, Passages: passages, Vectors: vectors}, nil
}
