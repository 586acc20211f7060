package adobesign

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/countersign-labs/countersign-cli/internal/core/domain"
	"github.com/countersign-labs/countersign-cli/internal/core/ports/driven"
	"github.com/countersign-labs/countersign-cli/internal/logger"
)

// Ensure Source implements the interface.
var _ driven.AgreementSource = (*Source)(nil)

// Source fetches agreement snapshots from Acrobat Sign.
type Source struct {
	client *Client
}

// NewSource creates an agreement source backed by the given client.
func NewSource(client *Client) *Source {
	return &Source{client: client}
}

// agreementInfo is the GET /agreements/{id} response.
type agreementInfo struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Status string `json:"status"`
}

// memberInfo is one signer entry, shared by every members shape.
type memberInfo struct {
	Email         string `json:"email"`
	Status        string `json:"status"`
	CompletedDate string `json:"completedDate"`
	AccessDate    string `json:"accessDate"`
	RoutingOrder  int    `json:"routingOrder"`
}

// participantSet groups members that share one signing position.
type participantSet struct {
	Order       int          `json:"order"`
	Status      string       `json:"status"`
	MemberInfos []memberInfo `json:"memberInfos"`
}

// membersPayload is the GET /agreements/{id}/members response, carrying
// every shape the API has used for the signer list. Which field is
// populated depends on the API revision behind the account.
type membersPayload struct {
	ParticipantSets     []participantSet `json:"participantSets"`
	ParticipantSetsInfo []participantSet `json:"participantSetsInfo"`
	MemberInfos         []memberInfo     `json:"memberInfos"`
}

// eventsPayload is the GET /agreements/{id}/events response.
type eventsPayload struct {
	Events []struct {
		Type             string `json:"type"`
		ParticipantEmail string `json:"participantEmail"`
		Date             string `json:"date"`
	} `json:"events"`
}

// formFieldsPayload is the GET /agreements/{id}/formFields response.
type formFieldsPayload struct {
	Fields []struct {
		Name      string `json:"name"`
		InputType string `json:"inputType"`
		Assignee  string `json:"assignee"`
		Value     string `json:"value"`
	} `json:"fields"`
}

// signEventTypes are the event types that prove a participant signed.
var signEventTypes = map[string]bool{
	"ESIGNED":          true,
	"DIGSIGNED":        true,
	"ACTION_COMPLETED": true,
}

// FetchSnapshot returns the current provider view of an agreement.
func (s *Source) FetchSnapshot(ctx context.Context, agreementID string) (*domain.AgreementSnapshot, error) {
	if agreementID == "" {
		return nil, domain.ErrInvalidInput
	}
	base := "/agreements/" + url.PathEscape(agreementID)

	var info agreementInfo
	if err := s.client.getJSON(ctx, base, &info); err != nil {
		return nil, fmt.Errorf("fetch agreement: %w", err)
	}

	var members membersPayload
	if err := s.client.getJSON(ctx, base+"/members", &members); err != nil {
		return nil, fmt.Errorf("fetch members: %w", err)
	}

	participants, err := extractParticipants(agreementID, &members)
	if err != nil {
		return nil, err
	}

	// Events and form fields corroborate signing but are not required;
	// some account tiers do not expose them.
	return &domain.AgreementSnapshot{
		AgreementID:      agreementID,
		Status:           info.Status,
		Participants:     participants,
		SignedEvents:     s.fetchSignedEvents(ctx, base, agreementID),
		FormFieldSigners: s.fetchFormFieldSigners(ctx, base, agreementID),
	}, nil
}

// participantExtractor pulls participants out of one known members shape.
type participantExtractor struct {
	shape   string
	extract func(*membersPayload) []domain.Participant
}

// extractorChain is the ordered list of known members shapes, newest
// first. The first extractor yielding participants wins.
var extractorChain = []participantExtractor{
	{
		shape: "participantSets",
		extract: func(m *membersPayload) []domain.Participant {
			return participantsFromSets(m.ParticipantSets)
		},
	},
	{
		shape: "participantSetsInfo",
		extract: func(m *membersPayload) []domain.Participant {
			return participantsFromSets(m.ParticipantSetsInfo)
		},
	},
	{
		shape: "memberInfos",
		extract: func(m *membersPayload) []domain.Participant {
			return participantsFromMembers(m.MemberInfos, 0, "")
		},
	},
}

// extractParticipants walks the extractor chain over the members
// payload. Shapes that yield nothing are skipped; if none match the
// snapshot is malformed.
func extractParticipants(agreementID string, members *membersPayload) ([]domain.Participant, error) {
	for _, e := range extractorChain {
		participants := e.extract(members)
		if len(participants) > 0 {
			logger.Debug("adobesign: agreement %s members matched shape %q (%d participants)",
				agreementID, e.shape, len(participants))
			return participants, nil
		}
		logger.Debug("adobesign: agreement %s members shape %q empty, trying next", agreementID, e.shape)
	}
	return nil, fmt.Errorf("%w: agreement %s: no known members shape yielded participants",
		domain.ErrMalformedSnapshot, agreementID)
}

// participantsFromSets flattens participant sets into participant entries.
func participantsFromSets(sets []participantSet) []domain.Participant {
	var out []domain.Participant
	for _, set := range sets {
		out = append(out, participantsFromMembers(set.MemberInfos, set.Order, set.Status)...)
	}
	return out
}

// participantsFromMembers converts member entries, dropping those
// without an email. A member with no email cannot be matched to a
// recipient and carries no usable signal.
func participantsFromMembers(members []memberInfo, order int, setStatus string) []domain.Participant {
	var out []domain.Participant
	for _, m := range members {
		if strings.TrimSpace(m.Email) == "" {
			continue
		}
		effectiveOrder := order
		if effectiveOrder == 0 {
			effectiveOrder = m.RoutingOrder
		}
		out = append(out, domain.Participant{
			Email:       m.Email,
			Status:      m.Status,
			SetStatus:   setStatus,
			Order:       effectiveOrder,
			CompletedAt: parseProviderTime(m.CompletedDate),
			AccessedAt:  parseProviderTime(m.AccessDate),
		})
	}
	return out
}

// fetchSignedEvents collects signed-event timestamps per email.
// Failures degrade to no evidence rather than failing the snapshot.
func (s *Source) fetchSignedEvents(ctx context.Context, base, agreementID string) map[string]time.Time {
	var payload eventsPayload
	if err := s.client.getJSON(ctx, base+"/events", &payload); err != nil {
		logger.Debug("adobesign: agreement %s events unavailable: %v", agreementID, err)
		return nil
	}

	events := make(map[string]time.Time)
	for _, ev := range payload.Events {
		if !signEventTypes[ev.Type] || ev.ParticipantEmail == "" {
			continue
		}
		t := parseProviderTime(ev.Date)
		if t == nil {
			continue
		}
		email := strings.ToLower(strings.TrimSpace(ev.ParticipantEmail))
		// Keep the earliest signed event per participant.
		if existing, ok := events[email]; !ok || t.Before(existing) {
			events[email] = *t
		}
	}
	if len(events) == 0 {
		return nil
	}
	return events
}

// fetchFormFieldSigners collects emails with a filled signature field.
// Failures degrade to no evidence rather than failing the snapshot.
func (s *Source) fetchFormFieldSigners(ctx context.Context, base, agreementID string) map[string]bool {
	var payload formFieldsPayload
	if err := s.client.getJSON(ctx, base+"/formFields", &payload); err != nil {
		logger.Debug("adobesign: agreement %s form fields unavailable: %v", agreementID, err)
		return nil
	}

	signers := make(map[string]bool)
	for _, f := range payload.Fields {
		if !strings.EqualFold(f.InputType, "SIGNATURE") || f.Assignee == "" || f.Value == "" {
			continue
		}
		signers[strings.ToLower(strings.TrimSpace(f.Assignee))] = true
	}
	if len(signers) == 0 {
		return nil
	}
	return signers
}

// parseProviderTime parses the provider's ISO 8601 timestamps.
func parseProviderTime(s string) *time.Time {
	if s == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil
	}
	return &t
}
