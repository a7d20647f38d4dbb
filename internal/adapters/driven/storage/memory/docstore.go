// Package memory provides in-memory implementations of the storage ports.
// Suitable for the single-process scope of the retrieval pipeline; all
// state is lost on exit.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/veldt-labs/ragkit/internal/core/domain"
	"github.com/veldt-labs/ragkit/internal/core/ports/driven"
)

// Ensure DocumentStore implements the interface.
var _ driven.DocumentStore = (*DocumentStore)(nil)

// DocumentStore is an in-memory implementation of driven.DocumentStore.
// Documents and their passages live and die together: deletion removes
// both under one lock so no passage can outlive its document.
type DocumentStore struct {
	mu        sync.RWMutex
	documents map[string]domain.Document
	passages  map[string][]domain.Passage
}

// NewDocumentStore creates a new in-memory document store.
func NewDocumentStore() *DocumentStore {
	return &DocumentStore{
		documents: make(map[string]domain.Document),
		passages:  make(map[string][]domain.Passage),
	}
}

// SaveDocument stores a document.
func (s *DocumentStore) SaveDocument(_ context.Context, doc *domain.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.documents[doc.ID] = *doc
	return nil
}

// SavePassages stores the passages of a document.
func (s *DocumentStore) SavePassages(_ context.Context, passages []domain.Passage) error {
	if len(passages) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	docID := passages[0].DocumentID
	stored := make([]domain.Passage, len(passages))
	copy(stored, passages)
	s.passages[docID] = stored
	return nil
}

// GetDocument retrieves a document by ID.
func (s *DocumentStore) GetDocument(_ context.Context, id string) (*domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.documents[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &doc, nil
}

// GetPassages retrieves a document's passages ordered by ordinal.
func (s *DocumentStore) GetPassages(_ context.Context, documentID string) ([]domain.Passage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stored, ok := s.passages[documentID]
	if !ok {
		return nil, nil
	}
	passages := make([]domain.Passage, len(stored))
	copy(passages, stored)
	sort.Slice(passages, func(i, j int) bool { return passages[i].Ordinal < passages[j].Ordinal })
	return passages, nil
}

// DeleteDocument removes a document and its passages.
func (s *DocumentStore) DeleteDocument(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.documents[id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.documents, id)
	delete(s.passages, id)
	return nil
}

// ListDocuments returns all stored documents.
func (s *DocumentStore) ListDocuments(_ context.Context) ([]domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	docs := make([]domain.Document, 0, len(s.documents))
	for id := range s.documents {
		docs = append(docs, s.documents[id])
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].ID < docs[j].ID })
	return docs, nil
}

// Clear removes all documents and passages.
func (s *DocumentStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.documents = make(map[string]domain.Document)
	s.passages = make(map[string][]domain.Passage)
	return nil
}

// Counts returns the number of stored documents and passages.
func (s *DocumentStore) Counts(_ context.Context) (int, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	passages := 0
	for _, p := range s.passages {
		passages += len(p)
	}
	return len(s.documents), passages, nil
}
