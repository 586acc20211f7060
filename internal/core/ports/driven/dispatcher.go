package driven

import (
	"context"

	"github.com/countersign-labs/countersign-cli/internal/core/domain"
)

// DeliveryResult reports the outcome of one reminder delivery attempt.
type DeliveryResult struct {
	// Email identifies the recipient the attempt was for.
	Email string

	// Delivered is true when the dispatcher accepted the reminder.
	Delivered bool

	// Err carries the per-recipient failure, if any.
	Err error
}

// ReminderDispatcher delivers reminder notifications to recipients.
// The delivery mechanism is out of the engine's scope; the provider's
// reminder endpoint is the default implementation.
type ReminderDispatcher interface {
	// Dispatch sends a reminder to each target recipient of an agreement
	// and reports per-recipient success or failure. A partial failure is
	// not an error: callers inspect the results.
	Dispatch(ctx context.Context, agreementID, message string, targets []domain.Recipient) ([]DeliveryResult, error)
}
