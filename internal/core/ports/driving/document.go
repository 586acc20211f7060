package driving

import (
	"context"

	"github.com/countersign-labs/countersign-cli/internal/core/domain"
)

// NewRecipient describes a signer to add at preparation time.
type NewRecipient struct {
	// Email identifies the recipient. Must be unique within the document.
	Email string

	// Name is the recipient's display name.
	Name string

	// Order is the signing position. Ties form a parallel stage.
	Order int
}

// DocumentService manages signature workflow documents.
type DocumentService interface {
	// Create prepares a new document with its recipients.
	// Recipients start in PENDING; the document starts ready_for_signature.
	Create(ctx context.Context, name string, recipients []NewRecipient) (*domain.Document, error)

	// MarkSent records that the workflow was transmitted to the provider
	// under the given agreement ID and moves the document to
	// sent_for_signature.
	MarkSent(ctx context.Context, id, agreementID string) (*domain.Document, error)

	// Get retrieves a document by ID.
	Get(ctx context.Context, id string) (*domain.Document, error)

	// List returns all documents.
	List(ctx context.Context) ([]domain.Document, error)

	// Delete removes a document and its recipients.
	Delete(ctx context.Context, id string) error
}
