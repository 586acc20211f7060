package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/countersign-labs/countersign-cli/internal/core/domain"
	"github.com/countersign-labs/countersign-cli/internal/core/ports/driven"
	"github.com/countersign-labs/countersign-cli/internal/core/ports/driving"
	"github.com/countersign-labs/countersign-cli/internal/logger"
)

// Ensure ReminderService implements the interface.
var _ driving.ReminderSender = (*ReminderService)(nil)

// SelectTargets computes which recipients are eligible for a reminder
// right now. Pure function: current signers per the order analyzer, minus
// recipients still inside the cooldown window, minus terminal recipients
// (re-checked defensively even though current signers exclude them).
//
// An empty result is a normal outcome - everyone signed, or everyone is
// waiting for an earlier stage - never an error.
func SelectTargets(doc *domain.Document, now time.Time, cooldown time.Duration) []domain.Recipient {
	cls := Classify(doc.Recipients, doc.SigningFlow)

	var targets []domain.Recipient
	for _, r := range doc.Recipients {
		if !cls.IsCurrent(r) || r.State.IsTerminal() {
			continue
		}
		if r.LastReminderSent != nil && now.Sub(*r.LastReminderSent) < cooldown {
			logger.Debug("recipient %s inside reminder cooldown, skipping", r.Email)
			continue
		}
		targets = append(targets, r)
	}
	return targets
}

// ReminderService reconciles a document and dispatches reminders to the
// recipients whose turn it is.
type ReminderService struct {
	reconciler driving.StatusReconciler
	store      driven.DocumentStore
	dispatcher driven.ReminderDispatcher
	config     domain.ReminderConfig

	// now is swappable for tests.
	now func() time.Time
}

// NewReminderService creates a reminder service. The dispatcher may be
// nil; every delivery then fails without being attempted.
func NewReminderService(
	reconciler driving.StatusReconciler,
	store driven.DocumentStore,
	dispatcher driven.ReminderDispatcher,
	config domain.ReminderConfig,
) *ReminderService {
	return &ReminderService{
		reconciler: reconciler,
		store:      store,
		dispatcher: dispatcher,
		config:     config,
		now:        time.Now,
	}
}

// lockedReconciler is the reconcile orchestrator's lock surface. The
// reminder path holds the per-document lock across its refresh and its
// bookkeeping save, so a concurrent reconciliation cannot interleave and
// overwrite either write.
type lockedReconciler interface {
	lockFor(documentID string) *sync.Mutex
	refreshLocked(ctx context.Context, documentID string) (*domain.Document, error)
}

// Ensure the orchestrator satisfies the lock surface.
var _ lockedReconciler = (*ReconcileOrchestrator)(nil)

// refresh reconciles the document. When the reconciler exposes its
// per-document lock the lock is held for the rest of the send; the
// returned release is always safe to call.
func (s *ReminderService) refresh(ctx context.Context, documentID string) (*domain.Document, func(), error) {
	if lr, ok := s.reconciler.(lockedReconciler); ok {
		lock := lr.lockFor(documentID)
		lock.Lock()
		doc, err := lr.refreshLocked(ctx, documentID)
		return doc, lock.Unlock, err
	}
	doc, err := s.reconciler.Refresh(ctx, documentID)
	return doc, func() {}, err
}

// Send runs a pre-reminder reconciliation, selects eligible recipients
// and dispatches a reminder to each. Successful deliveries update the
// recipient and document reminder bookkeeping in a single save, performed
// under the reconciler's document lock.
func (s *ReminderService) Send(ctx context.Context, documentID, message string) (*driving.ReminderReport, error) {
	doc, release, err := s.refresh(ctx, documentID)
	defer release()
	if err != nil {
		return nil, fmt.Errorf("refresh document: %w", err)
	}

	if !doc.Sent() {
		return nil, domain.ErrNotSent
	}

	report := &driving.ReminderReport{DocumentID: doc.ID}

	now := s.now()
	targets := SelectTargets(doc, now, s.config.Cooldown)
	if len(targets) == 0 {
		logger.Info("document %s: no recipients eligible for a reminder", doc.ID)
		return report, nil
	}
	for _, t := range targets {
		report.Targets = append(report.Targets, t.Email)
	}

	if message == "" {
		message = s.config.DefaultMessage
	}

	if s.dispatcher == nil {
		logger.Warn("no reminder dispatcher configured, %d reminders not sent", len(targets))
		report.Failed = len(targets)
		return report, nil
	}

	results, err := s.dispatcher.Dispatch(ctx, doc.ProviderAgreementID, message, targets)
	if err != nil {
		return nil, fmt.Errorf("dispatch reminders: %w", err)
	}

	work := doc.Clone()
	for _, res := range results {
		if !res.Delivered {
			logger.Warn("reminder to %s failed: %v", res.Email, res.Err)
			report.Failed++
			continue
		}
		report.Sent++
		if r := work.FindRecipient(res.Email); r != nil {
			ts := now
			r.LastReminderSent = &ts
		}
	}

	if report.Sent > 0 {
		ts := now
		work.LastReminderSent = &ts
		work.ReminderCount++
		work.UpdatedAt = now
		if err := s.store.Save(ctx, work); err != nil {
			return nil, fmt.Errorf("save document: %w", err)
		}
	}
	return report, nil
}
