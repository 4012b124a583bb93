package flows

import (
	"context"
	"strings"
)

// RunLoginLocal verifies a password credential against the identity stored
// for the email address. All failure modes stay distinguishable here; the
// engine decides how much of that reaches the caller.
//
// The miss path runs a verification against DummyDigest so that an absent
// identity costs the same as a wrong password.
func RunLoginLocal(ctx context.Context, email, password string, deps LoginDeps) (*IdentityRecord, error) {
	if deps.GetIdentityByEmail == nil || deps.VerifyPassword == nil {
		return nil, ErrDepsIncomplete
	}

	rec, err := deps.GetIdentityByEmail(ctx, strings.ToLower(email))
	if err != nil {
		if err == ErrNoSuchIdentity && deps.DummyDigest != "" {
			_, _ = deps.VerifyPassword(ctx, password, deps.DummyDigest)
		}
		return nil, err
	}

	if !rec.local() {
		// Burn the same hashing work before reporting the type mismatch.
		if deps.DummyDigest != "" {
			_, _ = deps.VerifyPassword(ctx, password, deps.DummyDigest)
		}
		return nil, ErrWrongLoginType
	}

	ok, err := deps.VerifyPassword(ctx, password, rec.PasswordDigest)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrWrongCredentials
	}

	if deps.RequireVerified && !rec.EmailVerified {
		return nil, ErrEmailNotVerified
	}

	return rec, nil
}
