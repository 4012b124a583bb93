package flows

import (
	"context"
	"strings"
)

// RunChangePassword rotates the password digest of a local identity. The
// caller authenticates the request (a live session); federated identities
// have no password to rotate and are rejected outright.
func RunChangePassword(ctx context.Context, id, next string, deps CredentialDeps) error {
	if deps.GetIdentityByID == nil || deps.UpdateIdentity == nil || deps.HashPassword == nil {
		return ErrDepsIncomplete
	}

	rec, err := deps.GetIdentityByID(ctx, id)
	if err != nil {
		return err
	}
	if !rec.local() {
		return ErrNotLocal
	}

	digest, err := deps.HashPassword(ctx, next)
	if err != nil {
		return err
	}
	rec.PasswordDigest = digest
	return deps.UpdateIdentity(ctx, rec)
}

// RunChangeEmail moves the local identity holding oldEmail to a new
// address. Verification status drops back to unverified and a fresh
// verification token goes out to the new address.
func RunChangeEmail(ctx context.Context, oldEmail, newEmail string, deps CredentialDeps) error {
	if deps.GetIdentityByEmail == nil || deps.UpdateIdentity == nil {
		return ErrDepsIncomplete
	}

	rec, err := deps.GetIdentityByEmail(ctx, strings.ToLower(oldEmail))
	if err != nil {
		return err
	}
	if !rec.local() {
		return ErrNotLocal
	}

	rec.Email = strings.ToLower(newEmail)
	rec.EmailVerified = false
	if err := deps.UpdateIdentity(ctx, rec); err != nil {
		return err
	}

	if deps.IssueVerification != nil && deps.SendVerification != nil {
		if deps.CheckIssue != nil {
			if err := deps.CheckIssue(ctx, purposeVerify, rec.Email); err != nil {
				return err
			}
		}
		token, err := deps.IssueVerification(ctx, rec.Email)
		if err != nil {
			return err
		}
		if err := deps.SendVerification(ctx, rec.Email, token); err != nil {
			return err
		}
	}
	return nil
}
