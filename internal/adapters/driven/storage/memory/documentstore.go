// Package memory provides in-memory implementations of the driven storage
// ports for testing.
package memory

import (
	"context"
	"sync"

	"github.com/countersign-labs/countersign-cli/internal/core/domain"
	"github.com/countersign-labs/countersign-cli/internal/core/ports/driven"
)

// Ensure DocumentStore implements the interface.
var _ driven.DocumentStore = (*DocumentStore)(nil)

// DocumentStore is an in-memory implementation of driven.DocumentStore.
type DocumentStore struct {
	mu   sync.RWMutex
	docs map[string]*domain.Document

	// SaveCount counts Save calls; tests use it to assert that a
	// reconciliation pass performs exactly one write.
	SaveCount int
}

// NewDocumentStore creates a new in-memory document store.
func NewDocumentStore() *DocumentStore {
	return &DocumentStore{
		docs: make(map[string]*domain.Document),
	}
}

// Save stores or updates a document and its recipients.
func (s *DocumentStore) Save(_ context.Context, doc *domain.Document) error {
	if doc.ID == "" {
		return domain.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[doc.ID] = doc.Clone()
	s.SaveCount++
	return nil
}

// Get retrieves a document by ID.
func (s *DocumentStore) Get(_ context.Context, id string) (*domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.docs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return doc.Clone(), nil
}

// List returns all documents.
func (s *DocumentStore) List(_ context.Context) ([]domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	docs := make([]domain.Document, 0, len(s.docs))
	for _, doc := range s.docs {
		docs = append(docs, *doc.Clone())
	}
	return docs, nil
}

// ListInFlight returns sent, non-terminal documents.
func (s *DocumentStore) ListInFlight(_ context.Context) ([]domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var docs []domain.Document
	for _, doc := range s.docs {
		if doc.Sent() && !doc.Status.IsTerminal() {
			docs = append(docs, *doc.Clone())
		}
	}
	return docs, nil
}

// Delete removes a document.
func (s *DocumentStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.docs[id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.docs, id)
	return nil
}
