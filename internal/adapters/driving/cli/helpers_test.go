package cli

import (
	"context"
	"time"

	"github.com/countersign-labs/countersign-cli/internal/adapters/driven/storage/memory"
	"github.com/countersign-labs/countersign-cli/internal/core/domain"
	"github.com/countersign-labs/countersign-cli/internal/core/ports/driving"
)

// testDocument is the canned document the mock services serve.
func testDoc() *domain.Document {
	signed := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	return &domain.Document{
		ID:                  "doc-1",
		Name:                "contract.pdf",
		SigningFlow:         domain.FlowSequential,
		Status:              domain.StatusPartiallySigned,
		ProviderAgreementID: "agr-1",
		Recipients: []domain.Recipient{
			{Email: "alice@example.com", Name: "Alice", Order: 1, State: domain.RecipientSigned, SignedAt: &signed},
			{Email: "bob@example.com", Name: "Bob", Order: 2, State: domain.RecipientSent},
		},
		CreatedAt: time.Date(2026, 7, 1, 9, 0, 0, 0, time.UTC),
	}
}

// mockDocumentService implements driving.DocumentService.
type mockDocumentService struct {
	err error
}

func (m *mockDocumentService) Create(_ context.Context, name string, recipients []driving.NewRecipient) (*domain.Document, error) {
	if m.err != nil {
		return nil, m.err
	}
	doc := testDoc()
	doc.Name = name
	doc.Recipients = doc.Recipients[:0]
	for _, r := range recipients {
		doc.Recipients = append(doc.Recipients, domain.Recipient{
			Email: r.Email, Name: r.Name, Order: r.Order, State: domain.RecipientPending,
		})
	}
	return doc, nil
}

func (m *mockDocumentService) MarkSent(_ context.Context, id, agreementID string) (*domain.Document, error) {
	if m.err != nil {
		return nil, m.err
	}
	doc := testDoc()
	doc.ID = id
	doc.ProviderAgreementID = agreementID
	doc.Status = domain.StatusSentForSignature
	return doc, nil
}

func (m *mockDocumentService) Get(_ context.Context, id string) (*domain.Document, error) {
	if m.err != nil {
		return nil, m.err
	}
	return testDoc(), nil
}

func (m *mockDocumentService) List(_ context.Context) ([]domain.Document, error) {
	if m.err != nil {
		return nil, m.err
	}
	return []domain.Document{*testDoc()}, nil
}

func (m *mockDocumentService) Delete(_ context.Context, _ string) error {
	return m.err
}

// mockReconciler implements driving.StatusReconciler.
type mockReconciler struct {
	err error
}

func (m *mockReconciler) Reconcile(_ context.Context, _ string) (*domain.Document, error) {
	if m.err != nil {
		return nil, m.err
	}
	return testDoc(), nil
}

func (m *mockReconciler) Refresh(_ context.Context, _ string) (*domain.Document, error) {
	if m.err != nil {
		return nil, m.err
	}
	return testDoc(), nil
}

// mockReminderSender implements driving.ReminderSender.
type mockReminderSender struct {
	lastMessage string
	report      *driving.ReminderReport
	err         error
}

func (m *mockReminderSender) Send(_ context.Context, documentID, message string) (*driving.ReminderReport, error) {
	m.lastMessage = message
	if m.err != nil {
		return nil, m.err
	}
	if m.report != nil {
		return m.report, nil
	}
	return &driving.ReminderReport{
		DocumentID: documentID,
		Targets:    []string{"bob@example.com"},
		Sent:       1,
	}, nil
}

// setupTestServices wires mocks into the command tree and returns a
// cleanup restoring the previous wiring.
func setupTestServices() func() {
	prevDocs := documentService
	prevReconciler := statusReconciler
	prevReminders := reminderSender
	prevConfig := configStore

	documentService = &mockDocumentService{}
	statusReconciler = &mockReconciler{}
	reminderSender = &mockReminderSender{}
	configStore = memory.NewConfigStore()

	return func() {
		documentService = prevDocs
		statusReconciler = prevReconciler
		reminderSender = prevReminders
		configStore = prevConfig
	}
}
