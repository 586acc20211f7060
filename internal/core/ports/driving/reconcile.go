package driving

import (
	"context"

	"github.com/countersign-labs/countersign-cli/internal/core/domain"
)

// StatusReconciler pulls provider status and merges it into local state.
type StatusReconciler interface {
	// Reconcile performs one strict reconciliation pass for a document.
	// Fails with domain.ErrProviderUnavailable or
	// domain.ErrAgreementNotFound without mutating local state.
	// Idempotent: an unchanged provider snapshot produces no further
	// state transitions.
	Reconcile(ctx context.Context, documentID string) (*domain.Document, error)

	// Refresh is the caller-facing variant. It maps
	// domain.ErrAgreementNotFound to marking the document expired and
	// falls back to the last persisted state when the provider is
	// unavailable.
	Refresh(ctx context.Context, documentID string) (*domain.Document, error)
}
