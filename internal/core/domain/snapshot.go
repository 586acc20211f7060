package domain

import (
	"strings"
	"time"
)

// AgreementSnapshot is the provider-neutral view of a workflow's state,
// produced after the adapter has run its shape extractors against the raw
// provider payloads. The engine never sees provider wire formats.
type AgreementSnapshot struct {
	// AgreementID is the provider's identifier for the workflow.
	AgreementID string

	// Status is the raw overall agreement status token.
	Status string

	// Participants are the provider-reported signer entries.
	Participants []Participant

	// SignedEvents maps lowercased participant emails to the timestamp
	// of their "signed"/"completed" event, when the event log was
	// available. Used as corroborating evidence of signing.
	SignedEvents map[string]time.Time

	// FormFieldSigners holds lowercased emails of participants with a
	// filled signature form field, when form field data was available.
	// Also corroborating evidence of signing.
	FormFieldSigners map[string]bool
}

// Participant is one provider-reported signer entry.
type Participant struct {
	// Email identifies the participant.
	Email string

	// Status is the raw participant status token.
	Status string

	// SetStatus is the raw status of the participant set the entry
	// belongs to, when the response shape carries one.
	SetStatus string

	// Order is the provider-reported signing position, if present.
	Order int

	// CompletedAt is the provider-reported completion timestamp.
	CompletedAt *time.Time

	// AccessedAt is when the participant last accessed their signing
	// link, if reported.
	AccessedAt *time.Time
}

// SignalsFor assembles the contextual signals the normalizer needs for
// one participant entry.
func (s *AgreementSnapshot) SignalsFor(p Participant) StatusSignals {
	email := strings.ToLower(strings.TrimSpace(p.Email))
	_, hasEvent := s.SignedEvents[email]
	return StatusSignals{
		ParticipantSetStatus:  p.SetStatus,
		AgreementStatus:       s.Status,
		HasFormFieldSignature: s.FormFieldSigners[email],
		HasSignEvent:          hasEvent,
	}
}

// SignedEventAt returns the signed-event timestamp for an email, if any.
func (s *AgreementSnapshot) SignedEventAt(email string) (time.Time, bool) {
	t, ok := s.SignedEvents[strings.ToLower(strings.TrimSpace(email))]
	return t, ok
}

// FindParticipant returns the participant entry matching the email,
// case-insensitively, or nil if there is none.
func (s *AgreementSnapshot) FindParticipant(email string) *Participant {
	for i := range s.Participants {
		if strings.EqualFold(s.Participants[i].Email, email) {
			return &s.Participants[i]
		}
	}
	return nil
}

// StatusSignals carries the contextual evidence that accompanies a raw
// participant status token into normalization.
type StatusSignals struct {
	// ParticipantSetStatus is the raw status of the enclosing
	// participant set, when known.
	ParticipantSetStatus string

	// AgreementStatus is the raw overall agreement status.
	AgreementStatus string

	// HasFormFieldSignature is true when a signature form field
	// attributed to this participant is filled.
	HasFormFieldSignature bool

	// HasSignEvent is true when the provider event log records a
	// signed/completed event for this participant.
	HasSignEvent bool
}
