package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/countersign-labs/countersign-cli/internal/core/domain"
	"github.com/countersign-labs/countersign-cli/internal/core/ports/driven"
	"github.com/countersign-labs/countersign-cli/internal/core/ports/driving"
)

// Ensure DocumentService implements the interface.
var _ driving.DocumentService = (*DocumentService)(nil)

// DocumentService manages signature workflow documents.
type DocumentService struct {
	store driven.DocumentStore

	// now is swappable for tests.
	now func() time.Time
}

// NewDocumentService creates a document service.
func NewDocumentService(store driven.DocumentStore) *DocumentService {
	return &DocumentService{
		store: store,
		now:   time.Now,
	}
}

// Create prepares a new document with its recipients. The signing flow is
// classified at preparation time from the recipient order values.
func (s *DocumentService) Create(
	ctx context.Context,
	name string,
	recipients []driving.NewRecipient,
) (*domain.Document, error) {
	if name == "" || len(recipients) == 0 {
		return nil, fmt.Errorf("%w: name and at least one recipient required", domain.ErrInvalidInput)
	}

	now := s.now()
	doc := &domain.Document{
		ID:        uuid.NewString(),
		Name:      name,
		Status:    domain.StatusReadyForSignature,
		CreatedAt: now,
		UpdatedAt: now,
	}

	seen := make(map[string]bool, len(recipients))
	for _, nr := range recipients {
		email := lowerEmail(nr.Email)
		if email == "" {
			return nil, fmt.Errorf("%w: recipient email required", domain.ErrInvalidInput)
		}
		if seen[email] {
			return nil, fmt.Errorf("%w: duplicate recipient %s", domain.ErrAlreadyExists, email)
		}
		seen[email] = true

		doc.Recipients = append(doc.Recipients, domain.Recipient{
			Email: nr.Email,
			Name:  nr.Name,
			Order: nr.Order,
			State: domain.RecipientPending,
		})
	}

	doc.SigningFlow = Classify(doc.Recipients, domain.FlowUnspecified).Flow

	if err := s.store.Save(ctx, doc); err != nil {
		return nil, fmt.Errorf("save document: %w", err)
	}
	return doc, nil
}

// MarkSent records the provider agreement ID assigned when the workflow
// was transmitted. Recipient states stay PENDING; the first reconciliation
// pass moves them once the provider reports who can act.
func (s *DocumentService) MarkSent(ctx context.Context, id, agreementID string) (*domain.Document, error) {
	if agreementID == "" {
		return nil, fmt.Errorf("%w: agreement ID required", domain.ErrInvalidInput)
	}

	doc, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load document: %w", err)
	}
	if doc.Sent() && doc.ProviderAgreementID != agreementID {
		return nil, fmt.Errorf("%w: document already bound to agreement %s",
			domain.ErrAlreadyExists, doc.ProviderAgreementID)
	}

	work := doc.Clone()
	work.ProviderAgreementID = agreementID
	if work.Status == domain.StatusReadyForSignature || work.Status == domain.StatusUploaded {
		work.Status = domain.StatusSentForSignature
	}
	work.UpdatedAt = s.now()

	if err := s.store.Save(ctx, work); err != nil {
		return nil, fmt.Errorf("save document: %w", err)
	}
	return work, nil
}

// Get retrieves a document by ID.
func (s *DocumentService) Get(ctx context.Context, id string) (*domain.Document, error) {
	doc, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load document: %w", err)
	}
	return doc, nil
}

// List returns all documents.
func (s *DocumentService) List(ctx context.Context) ([]domain.Document, error) {
	docs, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	return docs, nil
}

// Delete removes a document and its recipients.
func (s *DocumentService) Delete(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	return nil
}
