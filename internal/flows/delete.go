package flows

import "context"

// RunDeleteIdentity removes an identity and its profile. The identity goes
// first: once it is gone the credential is dead and login is impossible, so
// a partial failure strands only a profile row nothing can reach. That
// stranded profile is queued for the cleanup pass and the delete still
// counts as done.
func RunDeleteIdentity(ctx context.Context, id string, deps DeleteDeps) error {
	if deps.GetIdentityByID == nil || deps.DeleteIdentity == nil || deps.DeleteProfile == nil {
		return ErrDepsIncomplete
	}

	if _, err := deps.GetIdentityByID(ctx, id); err != nil {
		return err
	}

	if err := deps.DeleteIdentity(ctx, id); err != nil {
		return err
	}
	if err := deps.DeleteProfile(ctx, id); err != nil {
		if deps.EnqueueOrphan == nil {
			return err
		}
		deps.EnqueueOrphan(ctx, "profile", id)
	}
	return nil
}
