package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/countersign-labs/countersign-cli/internal/core/domain"
)

func TestNormalize_CorroboratingEvidenceWins(t *testing.T) {
	// A sign event or filled signature field beats whatever the raw
	// status token claims.
	state, known := Normalize("ACTIVE", domain.StatusSignals{HasSignEvent: true})
	assert.Equal(t, domain.RecipientSigned, state)
	assert.True(t, known)

	state, known = Normalize("waiting_for_my_signature", domain.StatusSignals{HasFormFieldSignature: true})
	assert.Equal(t, domain.RecipientSigned, state)
	assert.True(t, known)

	state, _ = Normalize("declined", domain.StatusSignals{HasSignEvent: true})
	assert.Equal(t, domain.RecipientSigned, state, "evidence outranks even terminal tokens")
}

func TestNormalize_TerminalTokens(t *testing.T) {
	tests := []struct {
		raw  string
		want domain.RecipientState
	}{
		{"declined", domain.RecipientDeclined},
		{"REJECTED", domain.RecipientDeclined},
		{"cancelled", domain.RecipientDeclined},
		{"expired", domain.RecipientExpired},
		{"recalled", domain.RecipientExpired},
		{"signed", domain.RecipientSigned},
		{"COMPLETED", domain.RecipientSigned},
		{"approved", domain.RecipientSigned},
		{"accepted", domain.RecipientSigned},
		{"form_filled", domain.RecipientSigned},
		{"FORM-FILLED", domain.RecipientSigned},
		{"acknowledged", domain.RecipientSigned},
		{"delivered", domain.RecipientSigned},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			state, known := Normalize(tt.raw, domain.StatusSignals{})
			assert.Equal(t, tt.want, state)
			assert.True(t, known)
		})
	}
}

func TestNormalize_ActiveWaitingForOthersMeansSigned(t *testing.T) {
	// Providers report a participant "active" inside a set that is
	// already waiting for other sets: that participant has signed.
	state, known := Normalize("ACTIVE", domain.StatusSignals{
		ParticipantSetStatus: "WAITING_FOR_OTHERS",
	})
	assert.Equal(t, domain.RecipientSigned, state)
	assert.True(t, known)
}

func TestNormalize_ActionableTokens(t *testing.T) {
	for _, raw := range []string{"active", "open", "waiting_for_my_signature", "OUT_FOR_SIGNATURE"} {
		state, known := Normalize(raw, domain.StatusSignals{})
		assert.Equal(t, domain.RecipientSent, state, raw)
		assert.True(t, known)
	}
}

func TestNormalize_ViewedAndWaitingTokens(t *testing.T) {
	state, _ := Normalize("viewed", domain.StatusSignals{})
	assert.Equal(t, domain.RecipientViewed, state)

	state, _ = Normalize("document_viewed", domain.StatusSignals{})
	assert.Equal(t, domain.RecipientViewed, state)

	for _, raw := range []string{"not_yet_visible", "waiting_for_others", "waiting_for_authoring"} {
		state, known := Normalize(raw, domain.StatusSignals{})
		assert.Equal(t, domain.RecipientWaiting, state, raw)
		assert.True(t, known)
	}
}

func TestNormalize_UnknownTokenDegradesGracefully(t *testing.T) {
	// Unknown token with a completed agreement: the participant must
	// have signed.
	state, known := Normalize("FROBNICATED", domain.StatusSignals{AgreementStatus: "COMPLETED"})
	assert.Equal(t, domain.RecipientSigned, state)
	assert.False(t, known)

	// Unknown token with no agreement-level hint: assume actionable.
	state, known = Normalize("FROBNICATED", domain.StatusSignals{})
	assert.Equal(t, domain.RecipientSent, state)
	assert.False(t, known)
}

func TestNormalize_TokenCanonicalisation(t *testing.T) {
	state, known := Normalize("  Waiting-For-My-Signature ", domain.StatusSignals{})
	assert.Equal(t, domain.RecipientSent, state)
	assert.True(t, known)

	state, known = Normalize("NOT YET VISIBLE", domain.StatusSignals{})
	assert.Equal(t, domain.RecipientWaiting, state)
	assert.True(t, known)
}
