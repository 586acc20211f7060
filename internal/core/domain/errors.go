package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates an entity already exists.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotSent indicates an operation that needs a live provider
	// workflow was attempted on a document never sent for signature.
	ErrNotSent = errors.New("document not sent for signature")

	// Provider Errors.

	// ErrProviderUnavailable indicates the e-signature provider could not
	// be reached after retries. Transient: callers fall back to the last
	// persisted state and try again later.
	ErrProviderUnavailable = errors.New("signature provider unavailable")

	// ErrAgreementNotFound indicates the provider no longer knows the
	// agreement (deleted, purged, or permission revoked). Terminal for
	// that workflow: callers mark the document expired instead of
	// retrying indefinitely.
	ErrAgreementNotFound = errors.New("agreement not found at provider")

	// ErrMalformedSnapshot indicates no known response shape yielded a
	// participant list. The reconciliation pass is abandoned without
	// mutating state.
	ErrMalformedSnapshot = errors.New("no usable participant data in provider response")
)
