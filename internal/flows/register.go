package flows

import (
	"context"
	"strings"
)

// RegisterArgs is the validated input to the local registration flow.
type RegisterArgs struct {
	Email    string
	Username string
	Password string
}

// RunRegister creates a local identity plus its profile row and kicks off
// email verification. Identity and profile creation is a two-step saga: if
// the profile insert fails, the identity insert is compensated, and if the
// compensation itself fails the identity ID is queued for the cleanup pass
// so it can never be silently stranded.
func RunRegister(ctx context.Context, args RegisterArgs, deps RegisterDeps) (*IdentityRecord, error) {
	if deps.NewID == nil || deps.HashPassword == nil || deps.InsertProfile == nil {
		return nil, ErrDepsIncomplete
	}
	if deps.InsertIdentityAndProfile == nil && (deps.InsertIdentity == nil || deps.DeleteIdentity == nil) {
		return nil, ErrDepsIncomplete
	}

	digest, err := deps.HashPassword(ctx, args.Password)
	if err != nil {
		return nil, err
	}

	rec := &IdentityRecord{
		ID:             deps.NewID(),
		Email:          strings.ToLower(args.Email),
		Username:       args.Username,
		PasswordDigest: digest,
		LoginType:      "local",
		EmailVerified:  false,
	}

	if err := createIdentityAndProfile(ctx, rec, sagaDeps{
		insertBoth:     deps.InsertIdentityAndProfile,
		insertIdentity: deps.InsertIdentity,
		insertProfile:  deps.InsertProfile,
		deleteIdentity: deps.DeleteIdentity,
		enqueueOrphan:  deps.EnqueueOrphan,
	}); err != nil {
		return nil, err
	}

	// Verification issuance is best-effort relative to the account itself:
	// the identity exists even if the notifier is down, and the user can
	// re-request the link.
	if deps.IssueVerification != nil && deps.SendVerification != nil {
		if deps.CheckIssue != nil {
			if err := deps.CheckIssue(ctx, purposeVerify, rec.Email); err != nil {
				return rec, err
			}
		}
		token, err := deps.IssueVerification(ctx, rec.Email)
		if err != nil {
			return rec, err
		}
		if err := deps.SendVerification(ctx, rec.Email, token); err != nil {
			return rec, err
		}
	}

	return rec, nil
}

// sagaDeps is the shared identity+profile creation wiring used by both local
// registration and first-contact social login.
type sagaDeps struct {
	insertBoth     func(ctx context.Context, rec *IdentityRecord) error
	insertIdentity func(ctx context.Context, rec *IdentityRecord) error
	insertProfile  func(ctx context.Context, id, username string) error
	deleteIdentity func(ctx context.Context, id string) error
	enqueueOrphan  func(ctx context.Context, kind, id string)
}

func createIdentityAndProfile(ctx context.Context, rec *IdentityRecord, deps sagaDeps) error {
	if deps.insertBoth != nil {
		return deps.insertBoth(ctx, rec)
	}

	if err := deps.insertIdentity(ctx, rec); err != nil {
		return err
	}
	if err := deps.insertProfile(ctx, rec.ID, rec.Username); err != nil {
		if cerr := deps.deleteIdentity(ctx, rec.ID); cerr != nil && deps.enqueueOrphan != nil {
			deps.enqueueOrphan(ctx, "identity", rec.ID)
		}
		return err
	}
	return nil
}
