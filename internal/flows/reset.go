package flows

import (
	"context"
	"strings"
)

// RunRequestPasswordReset issues a reset token for a local identity. The
// caller decides whether ErrNoSuchIdentity and ErrWrongLoginType are safe to
// surface; for a public endpoint they should collapse into silent success.
func RunRequestPasswordReset(ctx context.Context, email string, deps ResetDeps) error {
	if deps.GetIdentityByEmail == nil || deps.IssueReset == nil || deps.SendPasswordReset == nil {
		return ErrDepsIncomplete
	}
	email = strings.ToLower(email)

	rec, err := deps.GetIdentityByEmail(ctx, email)
	if err != nil {
		return err
	}
	if !rec.local() {
		return ErrWrongLoginType
	}

	if deps.CheckIssue != nil {
		if err := deps.CheckIssue(ctx, purposeReset, email); err != nil {
			return err
		}
	}
	token, err := deps.IssueReset(ctx, email)
	if err != nil {
		return err
	}
	return deps.SendPasswordReset(ctx, email, token)
}

// RunRedeemReset consumes the emailed reset token and trades it for a short
// lived pending ticket. The token burns on first redemption, so an abandoned
// change form cannot be replayed from the email link; the ticket carries the
// authorization the rest of the way.
func RunRedeemReset(ctx context.Context, email, token string, deps ResetDeps) (string, error) {
	if deps.RedeemReset == nil || deps.IssuePendingTicket == nil {
		return "", ErrDepsIncomplete
	}
	email = strings.ToLower(email)

	if err := deps.RedeemReset(ctx, email, token); err != nil {
		return "", err
	}
	return deps.IssuePendingTicket(ctx, email)
}

// RunCompleteReset consumes a pending ticket and installs the new password.
func RunCompleteReset(ctx context.Context, ticket, newPassword string, deps ResetDeps) error {
	if deps.RedeemPendingTicket == nil || deps.GetIdentityByEmail == nil ||
		deps.HashPassword == nil || deps.UpdateIdentity == nil {
		return ErrDepsIncomplete
	}

	email, err := deps.RedeemPendingTicket(ctx, ticket)
	if err != nil {
		return err
	}

	rec, err := deps.GetIdentityByEmail(ctx, email)
	if err != nil {
		return err
	}
	if !rec.local() {
		return ErrWrongLoginType
	}

	digest, err := deps.HashPassword(ctx, newPassword)
	if err != nil {
		return err
	}
	rec.PasswordDigest = digest
	return deps.UpdateIdentity(ctx, rec)
}
