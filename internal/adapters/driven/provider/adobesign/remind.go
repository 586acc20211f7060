package adobesign

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/countersign-labs/countersign-cli/internal/core/domain"
	"github.com/countersign-labs/countersign-cli/internal/core/ports/driven"
	"github.com/countersign-labs/countersign-cli/internal/logger"
)

// Ensure Dispatcher implements the interface.
var _ driven.ReminderDispatcher = (*Dispatcher)(nil)

// Dispatcher sends reminders through the provider's reminder endpoint.
// The endpoint wants participant IDs, so each dispatch first resolves
// the target emails against the agreement's member list.
type Dispatcher struct {
	client *Client
}

// NewDispatcher creates a reminder dispatcher backed by the given client.
func NewDispatcher(client *Client) *Dispatcher {
	return &Dispatcher{client: client}
}

// membersWithIDs is the members response trimmed to ID resolution.
type membersWithIDs struct {
	ParticipantSets []struct {
		MemberInfos []struct {
			ID    string `json:"id"`
			Email string `json:"email"`
		} `json:"memberInfos"`
	} `json:"participantSets"`
}

// reminderRequest is the POST /agreements/{id}/reminders body.
type reminderRequest struct {
	RecipientParticipantIDs []string `json:"recipientParticipantIds"`
	Status                  string   `json:"status"`
	Note                    string   `json:"note,omitempty"`
}

// Dispatch sends a reminder to each target recipient of an agreement.
// Recipients the provider no longer lists are reported as failed
// deliveries; the remaining targets are reminded in one call.
func (d *Dispatcher) Dispatch(
	ctx context.Context,
	agreementID, message string,
	targets []domain.Recipient,
) ([]driven.DeliveryResult, error) {
	if agreementID == "" {
		return nil, domain.ErrInvalidInput
	}
	if len(targets) == 0 {
		return nil, nil
	}
	base := "/agreements/" + url.PathEscape(agreementID)

	ids, err := d.participantIDs(ctx, base)
	if err != nil {
		return nil, fmt.Errorf("resolve participants: %w", err)
	}

	results := make([]driven.DeliveryResult, 0, len(targets))
	var participantIDs []string
	var reminded []int
	for i, t := range targets {
		id, ok := ids[strings.ToLower(strings.TrimSpace(t.Email))]
		if !ok {
			results = append(results, driven.DeliveryResult{
				Email: t.Email,
				Err:   fmt.Errorf("recipient not listed on agreement"),
			})
			continue
		}
		participantIDs = append(participantIDs, id)
		reminded = append(reminded, i)
	}

	if len(participantIDs) == 0 {
		return results, nil
	}

	req := reminderRequest{
		RecipientParticipantIDs: participantIDs,
		Status:                  "ACTIVE",
		Note:                    message,
	}
	if err := d.client.postJSON(ctx, base+"/reminders", req, nil); err != nil {
		logger.Warn("adobesign: reminder for agreement %s failed: %v", agreementID, err)
		for _, i := range reminded {
			results = append(results, driven.DeliveryResult{Email: targets[i].Email, Err: err})
		}
		return results, nil
	}

	for _, i := range reminded {
		results = append(results, driven.DeliveryResult{Email: targets[i].Email, Delivered: true})
	}
	return results, nil
}

// participantIDs maps lowercased member emails to participant IDs.
func (d *Dispatcher) participantIDs(ctx context.Context, base string) (map[string]string, error) {
	var members membersWithIDs
	if err := d.client.getJSON(ctx, base+"/members", &members); err != nil {
		return nil, err
	}

	ids := make(map[string]string)
	for _, set := range members.ParticipantSets {
		for _, m := range set.MemberInfos {
			if m.Email == "" || m.ID == "" {
				continue
			}
			ids[strings.ToLower(strings.TrimSpace(m.Email))] = m.ID
		}
	}
	return ids, nil
}
