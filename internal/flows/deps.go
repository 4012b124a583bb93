package flows

import "context"

// RegisterDeps captures local registration dependencies.
type RegisterDeps struct {
	NewID        func() string
	HashPassword func(ctx context.Context, password string) (string, error)

	InsertIdentity func(ctx context.Context, rec *IdentityRecord) error
	InsertProfile  func(ctx context.Context, id, username string) error
	DeleteIdentity func(ctx context.Context, id string) error

	// InsertIdentityAndProfile, when non-nil, replaces the two-step insert
	// with a single transactional write. The compensation path is then
	// unreachable.
	InsertIdentityAndProfile func(ctx context.Context, rec *IdentityRecord) error

	EnqueueOrphan func(ctx context.Context, kind, id string)

	CheckIssue        func(ctx context.Context, purpose, subject string) error
	IssueVerification func(ctx context.Context, email string) (string, error)
	SendVerification  func(ctx context.Context, email, token string) error
}

// LoginDeps captures local credential login dependencies.
type LoginDeps struct {
	GetIdentityByEmail func(ctx context.Context, email string) (*IdentityRecord, error)
	VerifyPassword     func(ctx context.Context, password, digest string) (bool, error)

	// DummyDigest is a well-formed digest verified against when no identity
	// exists, keeping the miss path on the same cost profile as a hit.
	DummyDigest string

	RequireVerified bool
}

// SocialDeps captures federated login dependencies.
type SocialDeps struct {
	NewID func() string

	GetIdentityByEmail       func(ctx context.Context, email string) (*IdentityRecord, error)
	InsertIdentity           func(ctx context.Context, rec *IdentityRecord) error
	InsertProfile            func(ctx context.Context, id, username string) error
	DeleteIdentity           func(ctx context.Context, id string) error
	InsertIdentityAndProfile func(ctx context.Context, rec *IdentityRecord) error

	EnqueueOrphan func(ctx context.Context, kind, id string)
}

// CredentialDeps captures password and email change dependencies.
type CredentialDeps struct {
	GetIdentityByID    func(ctx context.Context, id string) (*IdentityRecord, error)
	GetIdentityByEmail func(ctx context.Context, email string) (*IdentityRecord, error)
	UpdateIdentity     func(ctx context.Context, rec *IdentityRecord) error

	HashPassword func(ctx context.Context, password string) (string, error)

	CheckIssue        func(ctx context.Context, purpose, subject string) error
	IssueVerification func(ctx context.Context, email string) (string, error)
	SendVerification  func(ctx context.Context, email, token string) error
}

// EmailDeps captures verification token dependencies.
type EmailDeps struct {
	GetIdentityByEmail func(ctx context.Context, email string) (*IdentityRecord, error)
	UpdateIdentity     func(ctx context.Context, rec *IdentityRecord) error

	CheckIssue         func(ctx context.Context, purpose, subject string) error
	IssueVerification  func(ctx context.Context, email string) (string, error)
	RedeemVerification func(ctx context.Context, email, token string) error
	SendVerification   func(ctx context.Context, email, token string) error
}

// ResetDeps captures password reset dependencies.
type ResetDeps struct {
	GetIdentityByEmail func(ctx context.Context, email string) (*IdentityRecord, error)
	UpdateIdentity     func(ctx context.Context, rec *IdentityRecord) error

	HashPassword func(ctx context.Context, password string) (string, error)

	CheckIssue          func(ctx context.Context, purpose, subject string) error
	IssueReset          func(ctx context.Context, email string) (string, error)
	RedeemReset         func(ctx context.Context, email, token string) error
	IssuePendingTicket  func(ctx context.Context, email string) (string, error)
	RedeemPendingTicket func(ctx context.Context, ticket string) (string, error)
	SendPasswordReset   func(ctx context.Context, email, token string) error
}

// DeleteDeps captures identity removal dependencies.
type DeleteDeps struct {
	GetIdentityByID func(ctx context.Context, id string) (*IdentityRecord, error)
	DeleteIdentity  func(ctx context.Context, id string) error
	DeleteProfile   func(ctx context.Context, id string) error

	EnqueueOrphan func(ctx context.Context, kind, id string)
}

// Deps groups flow dependency sets. The root builder wires this once and the
// engine delegates request methods to the matching flow implementation.
type Deps struct {
	Register   RegisterDeps
	Login      LoginDeps
	Social     SocialDeps
	Credential CredentialDeps
	Email      EmailDeps
	Reset      ResetDeps
	Delete     DeleteDeps
}
