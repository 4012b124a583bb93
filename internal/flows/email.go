package flows

import (
	"context"
	"strings"
)

// RunRequestVerification issues a fresh verification token for the address
// and hands it to the notifier. Re-issuing replaces any outstanding token.
// An already-verified identity is a no-op success.
func RunRequestVerification(ctx context.Context, email string, deps EmailDeps) error {
	if deps.GetIdentityByEmail == nil || deps.IssueVerification == nil || deps.SendVerification == nil {
		return ErrDepsIncomplete
	}
	email = strings.ToLower(email)

	rec, err := deps.GetIdentityByEmail(ctx, email)
	if err != nil {
		return err
	}
	if rec.EmailVerified {
		return nil
	}

	if deps.CheckIssue != nil {
		if err := deps.CheckIssue(ctx, purposeVerify, email); err != nil {
			return err
		}
	}
	token, err := deps.IssueVerification(ctx, email)
	if err != nil {
		return err
	}
	return deps.SendVerification(ctx, email, token)
}

// RunVerifyEmail redeems a verification token and flips the identity to
// verified. Redemption is single-use: a second submission of the same token
// fails even if this update errors out, which is the safe direction.
func RunVerifyEmail(ctx context.Context, email, token string, deps EmailDeps) error {
	if deps.GetIdentityByEmail == nil || deps.UpdateIdentity == nil || deps.RedeemVerification == nil {
		return ErrDepsIncomplete
	}
	email = strings.ToLower(email)

	if err := deps.RedeemVerification(ctx, email, token); err != nil {
		return err
	}

	rec, err := deps.GetIdentityByEmail(ctx, email)
	if err != nil {
		return err
	}
	if rec.EmailVerified {
		return nil
	}
	rec.EmailVerified = true
	return deps.UpdateIdentity(ctx, rec)
}
