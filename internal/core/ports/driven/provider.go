package driven

import (
	"context"

	"github.com/countersign-labs/countersign-cli/internal/core/domain"
)

// AgreementSource fetches workflow status from the e-signature provider.
// Implementations own transport concerns: authentication, retries with
// bounded backoff, rate limiting, and extracting participants from the
// provider's heterogeneous response shapes.
type AgreementSource interface {
	// FetchSnapshot returns the current provider view of an agreement.
	//
	// Error contract:
	//   - domain.ErrProviderUnavailable when the provider cannot be
	//     reached after retries,
	//   - domain.ErrAgreementNotFound when the provider reports the
	//     workflow no longer exists (404/permission-style responses),
	//   - domain.ErrMalformedSnapshot when no known response shape
	//     yielded a participant list.
	FetchSnapshot(ctx context.Context, agreementID string) (*domain.AgreementSnapshot, error)
}
