package flows

import (
	"context"
	"strings"
)

// RunLoginSocial reconciles a provider-asserted profile with the identity
// table. Three outcomes:
//
//   - no identity for the email: a new federated identity plus profile is
//     created, email pre-verified on the provider's word;
//   - identity exists under the same provider: returning user, pass through;
//   - identity exists under any other login type: hard conflict, the email
//     is already claimed by a different credential.
//
// The second return reports whether this call created the identity.
func RunLoginSocial(ctx context.Context, social SocialIdentity, deps SocialDeps) (*IdentityRecord, bool, error) {
	if deps.NewID == nil || deps.GetIdentityByEmail == nil || deps.InsertProfile == nil {
		return nil, false, ErrDepsIncomplete
	}
	if deps.InsertIdentityAndProfile == nil && (deps.InsertIdentity == nil || deps.DeleteIdentity == nil) {
		return nil, false, ErrDepsIncomplete
	}
	if social.Email == "" {
		return nil, false, ErrWrongCredentials
	}

	email := strings.ToLower(social.Email)

	rec, err := deps.GetIdentityByEmail(ctx, email)
	switch {
	case err == nil:
		if rec.LoginType != social.Provider {
			return nil, false, ErrWrongLoginType
		}
		return rec, false, nil
	case err == ErrNoSuchIdentity:
		// first contact, fall through to create
	default:
		return nil, false, err
	}

	rec = &IdentityRecord{
		ID:            deps.NewID(),
		Email:         email,
		Username:      social.Username,
		LoginType:     social.Provider,
		EmailVerified: true,
	}

	if err := createIdentityAndProfile(ctx, rec, sagaDeps{
		insertBoth:     deps.InsertIdentityAndProfile,
		insertIdentity: deps.InsertIdentity,
		insertProfile:  deps.InsertProfile,
		deleteIdentity: deps.DeleteIdentity,
		enqueueOrphan:  deps.EnqueueOrphan,
	}); err != nil {
		if err == ErrDuplicateEmail {
			// Lost a race with a concurrent first contact. Re-read and apply
			// the same reconciliation rules to whoever won.
			won, gerr := deps.GetIdentityByEmail(ctx, email)
			if gerr != nil {
				return nil, false, err
			}
			if won.LoginType != social.Provider {
				return nil, false, ErrWrongLoginType
			}
			return won, false, nil
		}
		return nil, false, err
	}

	return rec, true, nil
}
