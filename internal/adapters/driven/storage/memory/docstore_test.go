package memory

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veldt-labs/ragkit/internal/core/domain"
)

func TestNewDocumentStore(t *testing.T) {
	store := NewDocumentStore()
	require.NotNil(t, store)
	assert.NotNil(t, store.documents)
	assert.NotNil(t, store.passages)
}

func TestDocumentStore_SaveAndGet(t *testing.T) {
	store := NewDocumentStore()
	ctx := context.Background()

	doc := &domain.Document{
		ID:       "doc-1",
		Title:    "Feline Facts",
		Content:  "Cats are mammals.",
		Origin:   "filesystem",
		Category: "pets",
	}

	err := store.SaveDocument(ctx, doc)
	require.NoError(t, err)

	saved, err := store.GetDocument(ctx, "doc-1")
	require.NoError(t, err)
	assert.Equal(t, "Feline Facts", saved.Title)
	assert.Equal(t, "pets", saved.Category)
}

func TestDocumentStore_GetDocument_NotFound(t *testing.T) {
	store := NewDocumentStore()

	_, err := store.GetDocument(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDocumentStore_Passages_OrderedByOrdinal(t *testing.T) {
	store := NewDocumentStore()
	ctx := context.Background()

	passages := []domain.Passage{
		{ID: "p-2", DocumentID: "doc-1", Ordinal: 2, Total: 3},
		{ID: "p-0", DocumentID: "doc-1", Ordinal: 0, Total: 3},
		{ID: "p-1", DocumentID: "doc-1", Ordinal: 1, Total: 3},
	}
	require.NoError(t, store.SavePassages(ctx, passages))

	got, err := store.GetPassages(ctx, "doc-1")
	require.NoError(t, err)
	require.Len(t, got, 3)
	for i, p := range got {
		assert.Equal(t, i, p.Ordinal)
	}
}

func TestDocumentStore_DeleteDocument(t *testing.T) {
	store := NewDocumentStore()
	ctx := context.Background()

	require.NoError(t, store.SaveDocument(ctx, &domain.Document{ID: "doc-1", Title: "T", Content: "C"}))
	require.NoError(t, store.SavePassages(ctx, []domain.Passage{
		{ID: "p-0", DocumentID: "doc-1", Ordinal: 0, Total: 1},
	}))

	require.NoError(t, store.DeleteDocument(ctx, "doc-1"))

	_, err := store.GetDocument(ctx, "doc-1")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	passages, err := store.GetPassages(ctx, "doc-1")
	require.NoError(t, err)
	assert.Empty(t, passages)
}

func TestDocumentStore_DeleteDocument_NotFound(t *testing.T) {
	store := NewDocumentStore()

	err := store.DeleteDocument(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDocumentStore_ClearAndCounts(t *testing.T) {
	store := NewDocumentStore()
	ctx := context.Background()

	require.NoError(t, store.SaveDocument(ctx, &domain.Document{ID: "doc-1"}))
	require.NoError(t, store.SaveDocument(ctx, &domain.Document{ID: "doc-2"}))
	require.NoError(t, store.SavePassages(ctx, []domain.Passage{
		{ID: "p-0", DocumentID: "doc-1", Ordinal: 0},
		{ID: "p-1", DocumentID: "doc-1", Ordinal: 1},
	}))

	docs, passages, err := store.Counts(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, docs)
	assert.Equal(t, 2, passages)

	require.NoError(t, store.Clear(ctx))

	docs, passages, err = store.Counts(ctx)
	require.NoError(t, err)
	assert.Zero(t, docs)
	assert.Zero(t, passages)
}

func TestDocumentStore_ConcurrentAccess(t *testing.T) {
	store := NewDocumentStore()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func(n int) {
			defer wg.Done()
			_ = store.SaveDocument(ctx, &domain.Document{ID: "doc", Title: "T", Content: "C"})
		}(i)
		go func(n int) {
			defer wg.Done()
			_, _ = store.ListDocuments(ctx)
		}(i)
	}
	wg.Wait()

	docs, _, err := store.Counts(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, docs)
}
