package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/veldt-labs/ragkit/internal/core/domain"
	"github.com/veldt-labs/ragkit/internal/core/ports/driven"
)

// Ensure VectorIndex implements the interface.
var _ driven.VectorIndex = (*VectorIndex)(nil)

// VectorIndex is an in-memory brute-force cosine similarity index.
// Entries are kept in insertion order, which is what makes the stable
// sort in Search a documented tie-break rather than an accident.
type VectorIndex struct {
	mu      sync.RWMutex
	entries []domain.VectorEntry
	byID    map[string]int // passage ID -> position in entries
}

// NewVectorIndex creates a new in-memory vector index.
func NewVectorIndex() *VectorIndex {
	return &VectorIndex{
		byID: make(map[string]int),
	}
}

// Upsert stores an entry, replacing any entry with the same passage ID.
func (x *VectorIndex) Upsert(_ context.Context, entry domain.VectorEntry) error {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.upsertLocked(entry)
	return nil
}

// UpsertBatch stores multiple entries.
func (x *VectorIndex) UpsertBatch(_ context.Context, entries []domain.VectorEntry) error {
	x.mu.Lock()
	defer x.mu.Unlock()
	for _, entry := range entries {
		x.upsertLocked(entry)
	}
	return nil
}

func (x *VectorIndex) upsertLocked(entry domain.VectorEntry) {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	if pos, ok := x.byID[entry.PassageID]; ok {
		x.entries[pos] = entry
		return
	}
	x.byID[entry.PassageID] = len(x.entries)
	x.entries = append(x.entries, entry)
}

// Search scores every stored vector against the query with cosine
// similarity, keeps scores >= minSimilarity, and returns at most topK
// results sorted by descending score. Ties keep insertion order.
func (x *VectorIndex) Search(
	_ context.Context, query []float32, topK int, minSimilarity float64,
) ([]domain.RetrievedPassage, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()

	if topK <= 0 {
		topK = domain.DefaultTopK
	}

	results := make([]domain.RetrievedPassage, 0, len(x.entries))
	for i := range x.entries {
		score := domain.CosineSimilarity(query, x.entries[i].Embedding)
		if score < minSimilarity {
			continue
		}
		results = append(results, domain.RetrievedPassage{
			Entry:      x.entries[i],
			Similarity: score,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Similarity > results[j].Similarity
	})

	if len(results) > topK {
		results = results[:topK]
	}
	return results, nil
}

// DeleteDocument removes all entries belonging to a document.
func (x *VectorIndex) DeleteDocument(_ context.Context, documentID string) error {
	x.mu.Lock()
	defer x.mu.Unlock()

	kept := x.entries[:0]
	for _, entry := range x.entries {
		if entry.DocumentID != documentID {
			kept = append(kept, entry)
		}
	}
	x.entries = kept

	x.byID = make(map[string]int, len(x.entries))
	for i := range x.entries {
		x.byID[x.entries[i].PassageID] = i
	}
	return nil
}

// Clear removes all entries.
func (x *VectorIndex) Clear(_ context.Context) error {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.entries = nil
	x.byID = make(map[string]int)
	return nil
}

// Count returns the number of stored entries.
func (x *VectorIndex) Count(_ context.Context) (int, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.entries), nil
}
