package flows

import "errors"

// Flow-local sentinels. These stay distinguishable inside the library so the
// engine can audit the real cause, then collapse them into whatever its
// public surface is allowed to reveal.
var (
	ErrNoSuchIdentity   = errors.New("flows: no identity for subject")
	ErrDuplicateEmail   = errors.New("flows: email already registered")
	ErrWrongLoginType   = errors.New("flows: identity registered under a different login type")
	ErrWrongCredentials = errors.New("flows: credential verification failed")
	ErrEmailNotVerified = errors.New("flows: email address not verified")
	ErrNotLocal         = errors.New("flows: operation requires a password identity")
	ErrTokenInvalid     = errors.New("flows: token missing, expired or already used")
	ErrRateLimited      = errors.New("flows: issuance budget exhausted")
	ErrDepsIncomplete   = errors.New("flows: dependency wiring incomplete")
	ErrStoreFailure     = errors.New("flows: backing store unavailable")
)
