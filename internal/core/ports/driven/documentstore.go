package driven

import (
	"context"

	"github.com/countersign-labs/countersign-cli/internal/core/domain"
)

// DocumentStore persists documents with their embedded recipients.
// Backed by SQLite for durable storage, with an in-memory twin for tests.
type DocumentStore interface {
	// Save stores or updates a document and all of its recipients
	// atomically. A reconciliation pass performs exactly one Save.
	Save(ctx context.Context, doc *domain.Document) error

	// Get retrieves a document by ID.
	// Returns domain.ErrNotFound if it does not exist.
	Get(ctx context.Context, id string) (*domain.Document, error)

	// List returns all documents.
	List(ctx context.Context) ([]domain.Document, error)

	// ListInFlight returns documents that have been sent to the provider
	// and have not reached a terminal status. These are the documents
	// scheduled reconciliation keeps polling.
	ListInFlight(ctx context.Context) ([]domain.Document, error)

	// Delete removes a document and its recipients.
	Delete(ctx context.Context, id string) error
}
