package services

import (
	"strings"

	"github.com/countersign-labs/countersign-cli/internal/core/domain"
)

// Normalize maps a raw provider status token plus contextual signals to a
// canonical recipient state. It is a pure function; callers apply the
// result under the monotonic-progress rule and log unrecognized tokens.
//
// The second return is false when the token was not recognized and the
// default mapping (SENT, or SIGNED when the overall agreement is already
// complete) was applied. Unknown tokens degrade gracefully; they never
// fail a reconciliation pass.
func Normalize(raw string, sig domain.StatusSignals) (domain.RecipientState, bool) {
	// Corroborating evidence of signing beats whatever the status token
	// claims. Providers routinely report a participant "active" after
	// they have already signed.
	if sig.HasFormFieldSignature || sig.HasSignEvent {
		return domain.RecipientSigned, true
	}

	token := canonToken(raw)

	switch token {
	case "declined", "rejected", "cancelled":
		return domain.RecipientDeclined, true

	case "expired", "recalled":
		return domain.RecipientExpired, true

	case "signed", "completed", "approved", "accepted", "form_filled",
		"acknowledged", "delivered":
		return domain.RecipientSigned, true

	case "active", "open":
		// An "active" participant inside a set that is waiting for
		// others has already taken their turn.
		if waitingForOthers(sig.ParticipantSetStatus) {
			return domain.RecipientSigned, true
		}
		return domain.RecipientSent, true

	case "waiting_for_my_signature", "out_for_signature", "waiting_for_my_approval":
		return domain.RecipientSent, true

	case "viewed", "document_viewed":
		return domain.RecipientViewed, true

	case "not_yet_visible", "waiting_for_others", "waiting_for_authoring":
		return domain.RecipientWaiting, true
	}

	// Unrecognized token. If the agreement as a whole is done, the
	// participant must have signed; otherwise assume they can still act.
	switch canonToken(sig.AgreementStatus) {
	case "signed", "completed", "approved":
		return domain.RecipientSigned, false
	}
	return domain.RecipientSent, false
}

// waitingForOthers reports whether a participant-set status says the set
// already acted and the workflow is blocked on other sets.
func waitingForOthers(setStatus string) bool {
	switch canonToken(setStatus) {
	case "waiting_for_others", "waiting_for_other_participants":
		return true
	default:
		return false
	}
}

// canonToken lowercases a raw token and folds separator variants so that
// "Waiting-For-Others", "WAITING FOR OTHERS" and "waiting_for_others"
// all compare equal.
func canonToken(raw string) string {
	t := strings.ToLower(strings.TrimSpace(raw))
	t = strings.ReplaceAll(t, "-", "_")
	t = strings.ReplaceAll(t, " ", "_")
	return t
}
