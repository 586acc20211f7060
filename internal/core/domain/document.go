package domain

import (
	"strings"
	"time"
)

// Document represents a multi-party signature workflow.
// Recipients are kept in insertion order; that is presentation order,
// not signing order. Signing order comes from each recipient's Order.
type Document struct {
	// ID is the unique identifier for the document.
	ID string

	// Name is the human-readable document name.
	Name string

	// Recipients are the signers, in insertion order.
	Recipients []Recipient

	// SigningFlow classifies the workflow as sequential or parallel.
	// Set at preparation time; may be re-derived from recipient orders.
	SigningFlow SigningFlow

	// Status is the overall lifecycle status. Always derivable from
	// the recipient states; never regresses from a terminal status.
	Status DocumentStatus

	// ProviderAgreementID is the provider's identifier for the
	// workflow. Empty until the document is sent for signature.
	ProviderAgreementID string

	// LastReminderSent is when a reminder was last dispatched for this
	// document, across all recipients.
	LastReminderSent *time.Time

	// ReminderCount is how many reminder rounds have been dispatched.
	ReminderCount int

	// CompletedAt is set exactly once, when Status first becomes completed.
	CompletedAt *time.Time

	// CreatedAt is when the document was created.
	CreatedAt time.Time

	// UpdatedAt is when the document was last updated.
	UpdatedAt time.Time
}

// Recipient is a single signer within a Document.
type Recipient struct {
	// Email identifies the recipient. Unique within a document,
	// compared case-insensitively.
	Email string

	// Name is the recipient's display name.
	Name string

	// Order is the signing position. Ties are permitted; recipients
	// sharing an order form one parallel stage. Ties break by
	// insertion order for display only.
	Order int

	// State is the canonical recipient state.
	State RecipientState

	// SignedAt is set exactly once, when State first becomes SIGNED.
	SignedAt *time.Time

	// LastSigningURLAccessed is when the recipient last opened their
	// signing link, if the provider reported it.
	LastSigningURLAccessed *time.Time

	// LastReminderSent is when this recipient was last reminded.
	LastReminderSent *time.Time

	// SigningURL is the recipient's signing link. Providers drop the
	// URL once the recipient reaches a terminal state, so absence is
	// never a regression signal.
	SigningURL string
}

// Sent reports whether the workflow has been transmitted to the provider.
func (d *Document) Sent() bool {
	return d.ProviderAgreementID != ""
}

// FindRecipient returns the recipient with the given email, matched
// case-insensitively, or nil if there is none.
func (d *Document) FindRecipient(email string) *Recipient {
	for i := range d.Recipients {
		if strings.EqualFold(d.Recipients[i].Email, email) {
			return &d.Recipients[i]
		}
	}
	return nil
}

// Clone returns a deep copy of the document. Reconciliation mutates a
// clone and persists it in one write so a failed pass leaves the loaded
// document untouched.
func (d *Document) Clone() *Document {
	out := *d
	out.Recipients = make([]Recipient, len(d.Recipients))
	copy(out.Recipients, d.Recipients)
	out.LastReminderSent = copyTime(d.LastReminderSent)
	out.CompletedAt = copyTime(d.CompletedAt)
	for i := range out.Recipients {
		r := &out.Recipients[i]
		r.SignedAt = copyTime(r.SignedAt)
		r.LastSigningURLAccessed = copyTime(r.LastSigningURLAccessed)
		r.LastReminderSent = copyTime(r.LastReminderSent)
	}
	return &out
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}
