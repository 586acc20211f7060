package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/countersign-labs/countersign-cli/internal/core/domain"
	"github.com/countersign-labs/countersign-cli/internal/core/ports/driven"
	"github.com/countersign-labs/countersign-cli/internal/core/ports/driving"
	"github.com/countersign-labs/countersign-cli/internal/logger"
)

// Ensure ReconcileOrchestrator implements the interface.
var _ driving.StatusReconciler = (*ReconcileOrchestrator)(nil)

// ReconcileOrchestrator merges provider-reported workflow status into
// locally persisted documents. Each pass is idempotent and preserves the
// monotonic-progress rule: a recipient's recorded state never moves
// backward, and terminal states never change.
type ReconcileOrchestrator struct {
	source driven.AgreementSource
	store  driven.DocumentStore

	// now is swappable for tests.
	now func() time.Time

	// Per-document locks serialise concurrent reconciliations of the
	// same document. Different documents reconcile fully in parallel.
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewReconcileOrchestrator creates a reconciliation orchestrator.
func NewReconcileOrchestrator(
	source driven.AgreementSource,
	store driven.DocumentStore,
) *ReconcileOrchestrator {
	return &ReconcileOrchestrator{
		source: source,
		store:  store,
		now:    time.Now,
		locks:  make(map[string]*sync.Mutex),
	}
}

// Reconcile performs one strict reconciliation pass.
//
// The pass works on a clone of the loaded document and persists it with a
// single atomic save, so a failure after partial provider data retrieval
// commits nothing. Documents never sent to the provider are returned
// unchanged without a provider call.
func (o *ReconcileOrchestrator) Reconcile(ctx context.Context, documentID string) (*domain.Document, error) {
	lock := o.lockFor(documentID)
	lock.Lock()
	defer lock.Unlock()
	return o.reconcileLocked(ctx, documentID)
}

// reconcileLocked is Reconcile's body; the caller holds the document lock.
func (o *ReconcileOrchestrator) reconcileLocked(ctx context.Context, documentID string) (*domain.Document, error) {
	doc, err := o.store.Get(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("load document: %w", err)
	}

	if !doc.Sent() {
		logger.Debug("document %s has no agreement yet, skipping provider fetch", documentID)
		return doc, nil
	}

	snap, err := o.source.FetchSnapshot(ctx, doc.ProviderAgreementID)
	if err != nil {
		return nil, fmt.Errorf("fetch agreement %s: %w", doc.ProviderAgreementID, err)
	}

	work := doc.Clone()
	changed := false
	for i := range work.Recipients {
		if o.mergeRecipient(&work.Recipients[i], snap) {
			changed = true
		}
	}

	if work.SigningFlow == domain.FlowUnspecified {
		work.SigningFlow = Classify(work.Recipients, domain.FlowUnspecified).Flow
		changed = true
	}

	if o.applyAggregate(work, snap) {
		changed = true
	}

	cls := Classify(work.Recipients, work.SigningFlow)
	if cls.Flow == domain.FlowSequential && len(cls.CurrentSigners) == 0 && !work.Status.IsTerminal() {
		logger.Warn("document %s: no recipient can act yet overall status is %s", work.ID, work.Status)
	}

	if !changed {
		logger.Debug("document %s unchanged after reconciliation", work.ID)
		return work, nil
	}

	work.UpdatedAt = o.now()
	if err := o.store.Save(ctx, work); err != nil {
		return nil, fmt.Errorf("save document: %w", err)
	}
	return work, nil
}

// Refresh wraps Reconcile with the caller-facing failure policy:
// a vanished agreement marks the document expired, and an unreachable
// provider falls back to the last persisted state.
func (o *ReconcileOrchestrator) Refresh(ctx context.Context, documentID string) (*domain.Document, error) {
	lock := o.lockFor(documentID)
	lock.Lock()
	defer lock.Unlock()
	return o.refreshLocked(ctx, documentID)
}

// refreshLocked is Refresh's body; the caller holds the document lock.
// The reminder path calls it directly so its follow-up bookkeeping save
// happens under the same lock, keeping one writer per document.
func (o *ReconcileOrchestrator) refreshLocked(ctx context.Context, documentID string) (*domain.Document, error) {
	doc, err := o.reconcileLocked(ctx, documentID)
	switch {
	case err == nil:
		return doc, nil

	case errors.Is(err, domain.ErrAgreementNotFound):
		return o.expireDocument(ctx, documentID)

	case errors.Is(err, domain.ErrProviderUnavailable), errors.Is(err, domain.ErrMalformedSnapshot):
		logger.Warn("document %s: provider unavailable, using last persisted state: %v", documentID, err)
		stale, loadErr := o.store.Get(ctx, documentID)
		if loadErr != nil {
			return nil, fmt.Errorf("load document: %w", loadErr)
		}
		return stale, nil

	default:
		return nil, err
	}
}

// expireDocument records that the provider no longer knows the workflow.
// The caller holds the document lock.
func (o *ReconcileOrchestrator) expireDocument(ctx context.Context, documentID string) (*domain.Document, error) {
	doc, err := o.store.Get(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("load document: %w", err)
	}
	if doc.Status.IsTerminal() {
		return doc, nil
	}

	logger.Info("document %s: agreement gone at provider, marking expired", documentID)
	work := doc.Clone()
	work.Status = domain.StatusExpired
	work.UpdatedAt = o.now()
	if err := o.store.Save(ctx, work); err != nil {
		return nil, fmt.Errorf("save document: %w", err)
	}
	return work, nil
}

// mergeRecipient applies the provider's view of one recipient under the
// monotonic-progress rule. Recipients with no provider match are left
// untouched, never regressed to PENDING. Returns true when anything
// changed.
func (o *ReconcileOrchestrator) mergeRecipient(r *domain.Recipient, snap *domain.AgreementSnapshot) bool {
	p := snap.FindParticipant(r.Email)
	if p == nil {
		logger.Debug("recipient %s not present in provider snapshot, leaving state %s", r.Email, r.State)
		return false
	}

	sig := snap.SignalsFor(*p)
	candidate, known := Normalize(p.Status, sig)
	if !known {
		logger.Warn("unknown provider status %q for %s, defaulting to %s", p.Status, r.Email, candidate)
	}

	changed := applyState(r, candidate)

	if r.State == domain.RecipientSigned && r.SignedAt == nil {
		ts := o.bestSignedTime(r.Email, p, snap)
		r.SignedAt = &ts
		changed = true
	}
	if r.LastSigningURLAccessed == nil && p.AccessedAt != nil {
		t := *p.AccessedAt
		r.LastSigningURLAccessed = &t
		changed = true
	}
	return changed
}

// applyState enforces the monotonic-progress rule:
//   - terminal states are never overwritten,
//   - WAITING is set or cleared freely (it is turn eligibility, not progress),
//   - otherwise only an equal-or-more-advanced state applies.
func applyState(r *domain.Recipient, candidate domain.RecipientState) bool {
	if r.State == candidate || r.State.IsTerminal() {
		return false
	}
	if candidate == domain.RecipientWaiting || r.State == domain.RecipientWaiting {
		r.State = candidate
		return true
	}
	if candidate.ProgressRank() >= r.State.ProgressRank() {
		r.State = candidate
		return true
	}
	logger.Debug("ignoring regression %s -> %s for %s", r.State, candidate, r.Email)
	return false
}

// bestSignedTime picks the signing timestamp from the best available
// evidence: provider completion timestamp, then the signed event, then
// the current time as a logged last resort.
func (o *ReconcileOrchestrator) bestSignedTime(email string, p *domain.Participant, snap *domain.AgreementSnapshot) time.Time {
	if p.CompletedAt != nil {
		return *p.CompletedAt
	}
	if ts, ok := snap.SignedEventAt(email); ok {
		return ts
	}
	logger.Warn("no provider timestamp for %s signing, falling back to current time", email)
	return o.now()
}

// applyAggregate recomputes the document status, protecting terminal
// statuses from regression and stamping CompletedAt exactly once.
func (o *ReconcileOrchestrator) applyAggregate(work *domain.Document, snap *domain.AgreementSnapshot) bool {
	changed := false

	next := Aggregate(work.Recipients, work.Sent())
	if cancelledAgreement(snap.Status) && next != domain.StatusCompleted {
		// Provider-level cancellation overrides recipient-derived
		// progress unless everyone already signed.
		next = domain.StatusCancelled
	}
	if !work.Status.IsTerminal() && next != work.Status {
		work.Status = next
		changed = true
	}

	if work.Status == domain.StatusCompleted && work.CompletedAt == nil {
		ts := o.latestSignedAt(work)
		work.CompletedAt = &ts
		changed = true
	}
	return changed
}

// cancelledAgreement reports whether the provider declared the agreement
// cancelled as a whole.
func cancelledAgreement(agreementStatus string) bool {
	switch canonToken(agreementStatus) {
	case "cancelled", "aborted":
		return true
	default:
		return false
	}
}

// latestSignedAt returns the newest recipient SignedAt, or the current
// time when no recipient carries one.
func (o *ReconcileOrchestrator) latestSignedAt(doc *domain.Document) time.Time {
	var latest time.Time
	for _, r := range doc.Recipients {
		if r.SignedAt != nil && r.SignedAt.After(latest) {
			latest = *r.SignedAt
		}
	}
	if latest.IsZero() {
		return o.now()
	}
	return latest
}

// lockFor returns the per-document mutex, creating it on first use.
func (o *ReconcileOrchestrator) lockFor(documentID string) *sync.Mutex {
	o.mu.Lock()
	defer o.mu.Unlock()
	lock, ok := o.locks[documentID]
	if !ok {
		lock = &sync.Mutex{}
		o.locks[documentID] = lock
	}
	return lock
}
