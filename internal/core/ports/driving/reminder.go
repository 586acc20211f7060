package driving

import "context"

// ReminderReport summarises one reminder round.
type ReminderReport struct {
	// DocumentID identifies the document the round was for.
	DocumentID string

	// Targets are the recipient emails selected for a reminder.
	// Empty when nobody is currently eligible; that is a successful
	// no-op, not a failure.
	Targets []string

	// Sent is how many reminders the dispatcher accepted.
	Sent int

	// Failed is how many deliveries the dispatcher rejected.
	Failed int
}

// ReminderSender selects eligible recipients and dispatches reminders.
type ReminderSender interface {
	// Send reconciles the document, selects the recipients whose turn it
	// is and whose cooldown has elapsed, and dispatches a reminder to
	// each. An empty target set returns a report with no targets and a
	// nil error.
	Send(ctx context.Context, documentID, message string) (*ReminderReport, error)
}
