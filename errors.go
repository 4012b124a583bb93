package authcore

import "errors"

var (
	// ErrNotFound is returned when an identity does not exist.
	ErrNotFound = errors.New("identity not found")
	// ErrConflict is returned for a duplicate email or a federated login
	// under a different provider than the identity was created with.
	ErrConflict = errors.New("identity already exists")
	// ErrBadCredentials is the single undifferentiated local-login failure.
	// Whether the email was unknown, the password wrong, the login type
	// mismatched, or the email unverified is recorded in the audit trail,
	// never in this error.
	ErrBadCredentials = errors.New("wrong email or password")
	// ErrForbidden is returned when an operation is disallowed for the
	// identity's login type (password or email change on a social identity).
	ErrForbidden = errors.New("operation not allowed for this login type")
	// ErrLinkExpired is the single undifferentiated token-redemption
	// failure: never issued, expired, already consumed, and mismatched all
	// look the same.
	ErrLinkExpired = errors.New("link expired")
	// ErrUnauthorized is returned for missing/invalid sessions and
	// CSRF/origin failures.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrValidation is returned for malformed request data, before any
	// store access.
	ErrValidation = errors.New("invalid input")
	// ErrRateLimited is returned when token issuance exceeds its budget.
	ErrRateLimited = errors.New("rate limited")
	// ErrInternal wraps hashing primitive failures, store unavailability,
	// and serialization corruption. No implementation detail crosses the
	// engine boundary with it.
	ErrInternal = errors.New("internal error")
)

// ErrDuplicateEmail must be returned (possibly wrapped) by IdentityStore
// implementations when an insert violates the unique email constraint. The
// engine maps it to [ErrConflict]; relying on the constraint instead of a
// prior read closes the check-then-act race.
var ErrDuplicateEmail = errors.New("email already registered")

// ErrStoreNotFound must be returned by IdentityStore and ProfileStore
// implementations for lookups of absent records.
var ErrStoreNotFound = errors.New("record not found")
