package services

import (
	"sort"
	"strings"

	"github.com/countersign-labs/countersign-cli/internal/core/domain"
)

// lowerEmail canonicalises an email for case-insensitive comparison.
func lowerEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Classification is the result of analysing a document's signing order.
type Classification struct {
	// Flow is the effective signing flow.
	Flow domain.SigningFlow

	// CurrentSigners are the recipients who must act next, identified by
	// lowercased email. Empty when nobody can act: either everyone is
	// terminal, or every non-terminal recipient is WAITING (a consistency
	// anomaly the caller logs, never an error).
	CurrentSigners map[string]bool
}

// IsCurrent reports whether the recipient is in the current-signer set.
func (c Classification) IsCurrent(r domain.Recipient) bool {
	return c.CurrentSigners[lowerEmail(r.Email)]
}

// Classify inspects recipient order values and states to determine the
// signing flow and who must act next. When the document carries an
// explicit flow it is preferred; otherwise distinct order values mean
// sequential and any shared order means parallel.
//
// Both the status path and the reminder path use this single analyzer.
func Classify(recipients []domain.Recipient, explicit domain.SigningFlow) Classification {
	flow := explicit
	if flow == domain.FlowUnspecified {
		flow = deriveFlow(recipients)
	}

	cls := Classification{Flow: flow, CurrentSigners: make(map[string]bool)}
	switch flow {
	case domain.FlowParallel:
		for _, r := range recipients {
			if r.State.Actionable() {
				cls.CurrentSigners[lowerEmail(r.Email)] = true
			}
		}
	default:
		sequentialSigners(recipients, cls.CurrentSigners)
	}
	return cls
}

// deriveFlow classifies the workflow from order values alone:
// all distinct means sequential, any tie means parallel.
func deriveFlow(recipients []domain.Recipient) domain.SigningFlow {
	seen := make(map[int]bool, len(recipients))
	for _, r := range recipients {
		if seen[r.Order] {
			return domain.FlowParallel
		}
		seen[r.Order] = true
	}
	return domain.FlowSequential
}

// sequentialSigners fills the current-signer set for a sequential flow.
// Recipients sharing an order value form one parallel stage; the current
// stage is the lowest-order one holding an actionable member. A stage
// that is entirely terminal or entirely WAITING is skipped: WAITING means
// the provider has not opened that turn, and a later recipient whose turn
// is open can still act when local order values disagree with the
// provider's routing. The set stays empty only when every non-terminal
// recipient is WAITING.
func sequentialSigners(recipients []domain.Recipient, out map[string]bool) {
	orders := make([]int, 0, len(recipients))
	stages := make(map[int][]domain.Recipient)
	for _, r := range recipients {
		if _, ok := stages[r.Order]; !ok {
			orders = append(orders, r.Order)
		}
		stages[r.Order] = append(stages[r.Order], r)
	}
	sort.Ints(orders)

	for _, order := range orders {
		found := false
		for _, r := range stages[order] {
			if r.State.Actionable() {
				out[lowerEmail(r.Email)] = true
				found = true
			}
		}
		if found {
			return
		}
	}
}
