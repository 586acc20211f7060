package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/countersign-labs/countersign-cli/internal/core/domain"
)

func TestAggregate(t *testing.T) {
	tests := []struct {
		name   string
		states []domain.RecipientState
		sent   bool
		want   domain.DocumentStatus
	}{
		{
			name:   "two of three signed is partially signed",
			states: []domain.RecipientState{domain.RecipientSigned, domain.RecipientSigned, domain.RecipientSent},
			sent:   true,
			want:   domain.StatusPartiallySigned,
		},
		{
			name:   "all signed is completed",
			states: []domain.RecipientState{domain.RecipientSigned, domain.RecipientSigned, domain.RecipientSigned},
			sent:   true,
			want:   domain.StatusCompleted,
		},
		{
			name:   "any decline cancels regardless of other states",
			states: []domain.RecipientState{domain.RecipientSigned, domain.RecipientDeclined, domain.RecipientSigned},
			sent:   true,
			want:   domain.StatusCancelled,
		},
		{
			name:   "expiry without declines expires",
			states: []domain.RecipientState{domain.RecipientSigned, domain.RecipientExpired, domain.RecipientWaiting},
			sent:   true,
			want:   domain.StatusExpired,
		},
		{
			name:   "expiry with an open turn remaining keeps the workflow alive",
			states: []domain.RecipientState{domain.RecipientExpired, domain.RecipientSent},
			sent:   true,
			want:   domain.StatusSentForSignature,
		},
		{
			name:   "expiry with progress and an open turn stays partially signed",
			states: []domain.RecipientState{domain.RecipientSigned, domain.RecipientExpired, domain.RecipientViewed},
			sent:   true,
			want:   domain.StatusPartiallySigned,
		},
		{
			name:   "decline outranks expiry",
			states: []domain.RecipientState{domain.RecipientExpired, domain.RecipientDeclined},
			sent:   true,
			want:   domain.StatusCancelled,
		},
		{
			name:   "no progress after transmission",
			states: []domain.RecipientState{domain.RecipientSent, domain.RecipientWaiting},
			sent:   true,
			want:   domain.StatusSentForSignature,
		},
		{
			name:   "no progress before transmission",
			states: []domain.RecipientState{domain.RecipientPending, domain.RecipientPending},
			sent:   false,
			want:   domain.StatusReadyForSignature,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recipients := make([]domain.Recipient, len(tt.states))
			for i, s := range tt.states {
				recipients[i] = domain.Recipient{Email: "r@example.com", State: s}
			}
			assert.Equal(t, tt.want, Aggregate(recipients, tt.sent))
		})
	}
}

func TestAggregate_Idempotent(t *testing.T) {
	recipients := []domain.Recipient{
		{Email: "a@example.com", State: domain.RecipientSigned},
		{Email: "b@example.com", State: domain.RecipientSent},
	}

	first := Aggregate(recipients, true)
	second := Aggregate(recipients, true)
	assert.Equal(t, first, second)
	assert.Equal(t, domain.RecipientSigned, recipients[0].State, "aggregation must not mutate input")
}
