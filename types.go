package authcore

import (
	"context"
)

// LoginType classifies how an identity authenticates. It is assigned at
// creation and never transitions afterwards.
type LoginType string

const (
	// LoginLocal identities carry a password digest and log in directly.
	LoginLocal LoginType = "local"
	// LoginFacebook identities authenticate through Facebook.
	LoginFacebook LoginType = "facebook"
	// LoginGoogle identities authenticate through Google.
	LoginGoogle LoginType = "google"
)

// Valid reports whether t is one of the known login types.
func (t LoginType) Valid() bool {
	switch t {
	case LoginLocal, LoginFacebook, LoginGoogle:
		return true
	}
	return false
}

// Local reports whether t is the direct-signup type.
func (t LoginType) Local() bool {
	return t == LoginLocal
}

// Identity is the authentication record of one principal, distinct from the
// user-visible profile. PasswordDigest is empty exactly when LoginType is
// not local.
type Identity struct {
	ID             string
	Email          string
	Username       string
	PasswordDigest string
	LoginType      LoginType
	EmailVerified  bool
}

// Profile is the user-visible record stored alongside an identity, keyed by
// the identity id. The core creates and deletes profiles in lockstep with
// identities; everything else about them is out of scope.
type Profile struct {
	ID       string
	Username string
}

// IdentityStore is the keyed identity persistence the engine consumes.
// Insert must enforce a unique constraint on Email and return
// [ErrDuplicateEmail] on violation; lookups of absent records return
// [ErrStoreNotFound].
type IdentityStore interface {
	Insert(ctx context.Context, identity *Identity) error
	GetByID(ctx context.Context, id string) (*Identity, error)
	GetByEmail(ctx context.Context, email string) (*Identity, error)
	Update(ctx context.Context, identity *Identity) error
	Delete(ctx context.Context, id string) error
}

// ProfileStore is the parallel profile persistence, keyed by identity id.
type ProfileStore interface {
	Insert(ctx context.Context, profile *Profile) error
	GetByID(ctx context.Context, id string) (*Profile, error)
	Delete(ctx context.Context, id string) error
}

// AtomicStore is an optional upgrade interface. When the identity store
// also implements it, the engine creates identity and profile as one
// multi-entity transaction instead of running the compensating saga.
type AtomicStore interface {
	InsertIdentityAndProfile(ctx context.Context, identity *Identity, profile *Profile) error
}

// Notifier delivers verification and reset tokens to an address. Delivery
// is best-effort and fire-and-forget from the engine's perspective:
// failures are audited, never surfaced to the caller.
type Notifier interface {
	SendVerification(ctx context.Context, email, token string) error
	SendPasswordReset(ctx context.Context, email, token string) error
}

// SocialProfile is what a federated provider asserts about a user after a
// completed authorization-code exchange.
type SocialProfile struct {
	Username string
	Email    string
}

// SocialProvider is one entry of the engine's federated strategy table.
// Implementations live in the social package; tests inject doubles.
type SocialProvider interface {
	// Name is the provider id and must equal the LoginType it creates.
	Name() string
	// AuthCodeURL returns the provider's authorization URL for state.
	AuthCodeURL(state string) string
	// Exchange trades an authorization code for the asserted profile.
	Exchange(ctx context.Context, code string) (*SocialProfile, error)
}
