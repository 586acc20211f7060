package services

import "github.com/countersign-labs/countersign-cli/internal/core/domain"

// Aggregate derives the document's overall lifecycle status from its
// recipient states. Pure and idempotent: calling it twice on the same
// recipient set yields the same status and performs no mutation.
//
// sent reports whether the workflow has been transmitted to the provider;
// it only matters when no recipient has made progress yet.
//
// Precedence: a decline cancels the whole workflow regardless of other
// states. An expiry (with no declines) expires it only once nobody can
// still act: a recipient with an open turn keeps the workflow alive, and
// a WAITING recipient behind an expired stage never gets one. Only then
// do signature counts matter.
func Aggregate(recipients []domain.Recipient, sent bool) domain.DocumentStatus {
	var signed, expired, actionable int
	for _, r := range recipients {
		switch r.State {
		case domain.RecipientDeclined:
			return domain.StatusCancelled
		case domain.RecipientExpired:
			expired++
		case domain.RecipientSigned:
			signed++
		}
		if r.State.Actionable() {
			actionable++
		}
	}

	switch {
	case expired > 0 && actionable == 0:
		return domain.StatusExpired
	case len(recipients) > 0 && signed == len(recipients):
		return domain.StatusCompleted
	case signed > 0:
		return domain.StatusPartiallySigned
	case sent:
		return domain.StatusSentForSignature
	default:
		return domain.StatusReadyForSignature
	}
}
