package domain

// RecipientState is the canonical recipient state. It abstracts over the
// provider's much larger and inconsistently populated status vocabulary.
type RecipientState string

const (
	// RecipientPending means the recipient has not been contacted yet.
	RecipientPending RecipientState = "PENDING"

	// RecipientSent means the workflow has reached the recipient and
	// they can act now.
	RecipientSent RecipientState = "SENT"

	// RecipientViewed means the recipient opened the document but has
	// not acted on it.
	RecipientViewed RecipientState = "VIEWED"

	// RecipientWaiting means it is not the recipient's turn yet in a
	// sequential flow. Unlike the other states it reflects turn
	// eligibility, not progress, and may be set or cleared freely.
	RecipientWaiting RecipientState = "WAITING"

	// RecipientSigned is terminal: the recipient completed their signature.
	RecipientSigned RecipientState = "SIGNED"

	// RecipientDeclined is terminal: the recipient refused to sign.
	RecipientDeclined RecipientState = "DECLINED"

	// RecipientExpired is terminal: the recipient's window closed or the
	// workflow was recalled before they acted.
	RecipientExpired RecipientState = "EXPIRED"
)

// IsTerminal reports whether the state can never change again.
func (s RecipientState) IsTerminal() bool {
	switch s {
	case RecipientSigned, RecipientDeclined, RecipientExpired:
		return true
	default:
		return false
	}
}

// ProgressRank orders states by how far the recipient has progressed.
// WAITING has no rank of its own; callers handle it separately because it
// carries no progress information.
func (s RecipientState) ProgressRank() int {
	switch s {
	case RecipientPending:
		return 0
	case RecipientSent:
		return 1
	case RecipientViewed:
		return 2
	case RecipientSigned, RecipientDeclined, RecipientExpired:
		return 3
	default:
		return 0
	}
}

// Actionable reports whether the recipient can act right now.
func (s RecipientState) Actionable() bool {
	switch s {
	case RecipientPending, RecipientSent, RecipientViewed:
		return true
	default:
		return false
	}
}

// DocumentStatus is the overall lifecycle status of a Document. It is
// always derivable from the recipient states plus provider-reported
// terminal conditions.
type DocumentStatus string

const (
	// StatusUploaded means the file exists but no workflow was prepared.
	StatusUploaded DocumentStatus = "uploaded"

	// StatusReadyForSignature means recipients are configured but the
	// workflow has not been transmitted to the provider.
	StatusReadyForSignature DocumentStatus = "ready_for_signature"

	// StatusSentForSignature means the provider is circulating the
	// document and nobody has signed yet.
	StatusSentForSignature DocumentStatus = "sent_for_signature"

	// StatusPartiallySigned means at least one but not all recipients
	// have signed.
	StatusPartiallySigned DocumentStatus = "partially_signed"

	// StatusCompleted is terminal: every recipient signed.
	StatusCompleted DocumentStatus = "completed"

	// StatusCancelled is terminal: a recipient declined or the sender
	// recalled the workflow.
	StatusCancelled DocumentStatus = "cancelled"

	// StatusExpired is terminal: the workflow lapsed before completion,
	// or the provider no longer knows the agreement.
	StatusExpired DocumentStatus = "expired"

	// StatusSignatureError is terminal: the provider reported an
	// unrecoverable workflow failure.
	StatusSignatureError DocumentStatus = "signature_error"
)

// IsTerminal reports whether the document can make no further progress.
// A terminal status is never overwritten by reconciliation; only an
// explicit external recall may reset it.
func (s DocumentStatus) IsTerminal() bool {
	switch s {
	case StatusCompleted, StatusCancelled, StatusExpired, StatusSignatureError:
		return true
	default:
		return false
	}
}

// SigningFlow describes how recipients take their turns.
type SigningFlow string

const (
	// FlowUnspecified means the flow has not been classified yet and
	// should be derived from recipient order values.
	FlowUnspecified SigningFlow = ""

	// FlowSequential means recipients act in strictly increasing order;
	// later recipients wait until earlier ones reach a terminal state.
	FlowSequential SigningFlow = "SEQUENTIAL"

	// FlowParallel means all recipients may act concurrently.
	FlowParallel SigningFlow = "PARALLEL"
)
