package authcore

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/authcore-io/authcore/handoff"
	"github.com/authcore-io/authcore/internal"
	"github.com/authcore-io/authcore/internal/audit"
	"github.com/authcore-io/authcore/internal/cleanup"
	"github.com/authcore-io/authcore/internal/flows"
	"github.com/authcore-io/authcore/internal/rate"
	"github.com/authcore-io/authcore/internal/tokens"
	"github.com/authcore-io/authcore/password"
	"github.com/authcore-io/authcore/session"
)

// Builder assembles an Engine. A builder is single-use: Build consumes it.
type Builder struct {
	config Config
	redis  redis.UniversalClient

	identities IdentityStore
	profiles   ProfileStore
	notifier   Notifier
	providers  []SocialProvider
	auditSink  AuditSink

	built bool
}

// New returns a builder preloaded with the default configuration.
func New() *Builder {
	return &Builder{config: defaultConfig()}
}

func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cfg
	return b
}

func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	b.redis = client
	return b
}

func (b *Builder) WithIdentityStore(store IdentityStore) *Builder {
	b.identities = store
	return b
}

func (b *Builder) WithProfileStore(store ProfileStore) *Builder {
	b.profiles = store
	return b
}

func (b *Builder) WithNotifier(n Notifier) *Builder {
	b.notifier = n
	return b
}

// WithProvider registers a federated login provider. The provider's Name
// must be a valid LoginType.
func (b *Builder) WithProvider(p SocialProvider) *Builder {
	b.providers = append(b.providers, p)
	return b
}

func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// Build validates the wiring and returns a ready engine.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("authcore: builder already used")
	}
	b.built = true

	if b.redis == nil {
		return nil, errors.New("authcore: redis client required")
	}
	if b.identities == nil {
		return nil, errors.New("authcore: identity store required")
	}
	if b.profiles == nil {
		return nil, errors.New("authcore: profile store required")
	}
	if err := b.config.validate(); err != nil {
		return nil, err
	}
	for _, p := range b.providers {
		if !LoginType(p.Name()).Valid() || p.Name() == string(LoginLocal) {
			return nil, fmt.Errorf("authcore: provider name %q is not a federated login type", p.Name())
		}
	}

	hasher, err := password.NewHasher(b.config.Password)
	if err != nil {
		return nil, err
	}

	e := &Engine{
		config:     b.config,
		hasher:     hasher,
		sessions:   session.NewStore(b.redis, b.config.Session.RedisPrefix, b.config.Session.TTL),
		tokens:     tokens.NewStore(b.redis, b.config.tokenStoreConfig()),
		orphans:    cleanup.NewQueue(b.redis),
		metrics:    newMetrics(),
		identities: b.identities,
		profiles:   b.profiles,
		notifier:   b.notifier,
		providers:  make(map[string]SocialProvider, len(b.providers)),
	}
	for _, p := range b.providers {
		e.providers[p.Name()] = p
	}

	if b.config.IssuanceLimit.Enabled {
		e.limiter = rate.New(b.redis, rate.Config{
			Enabled:      true,
			MaxPerWindow: b.config.IssuanceLimit.MaxPerWindow,
			Window:       b.config.IssuanceLimit.Window,
		})
	}

	sink := b.auditSink
	if sink == nil {
		sink = NoOpAuditSink{}
	}
	e.audit = audit.NewDispatcher(audit.Config{
		Enabled:    b.config.Audit.Enabled,
		BufferSize: b.config.Audit.BufferSize,
		DropIfFull: b.config.Audit.DropIfFull,
	}, sink)

	if b.config.Handoff.Enabled {
		e.handoff, err = handoff.NewManager(handoff.Config{
			TTL:           b.config.Handoff.TTL,
			SigningMethod: handoff.SigningMethod(b.config.Handoff.SigningMethod),
			PrivateKey:    b.config.Handoff.PrivateKey,
			PublicKey:     b.config.Handoff.PublicKey,
			Issuer:        b.config.Handoff.Issuer,
		})
		if err != nil {
			return nil, err
		}
	}

	if e.dummyDigest, err = buildDummyDigest(hasher); err != nil {
		return nil, err
	}

	e.flows = flows.New(e.flowDeps())
	return e, nil
}

// buildDummyDigest hashes throwaway random input once so login misses can
// verify against something real.
func buildDummyDigest(hasher *password.Hasher) (string, error) {
	junk, err := internal.NewToken(internal.TokenByteLength)
	if err != nil {
		return "", err
	}
	return hasher.Hash(context.Background(), password.AlgArgon2id, junk)
}

/*
====================================
FLOW WIRING
====================================
*/

func recordFromIdentity(id *Identity) *flows.IdentityRecord {
	return &flows.IdentityRecord{
		ID:             id.ID,
		Email:          id.Email,
		Username:       id.Username,
		PasswordDigest: id.PasswordDigest,
		LoginType:      string(id.LoginType),
		EmailVerified:  id.EmailVerified,
	}
}

func identityFromRecord(rec *flows.IdentityRecord) *Identity {
	return &Identity{
		ID:             rec.ID,
		Email:          rec.Email,
		Username:       rec.Username,
		PasswordDigest: rec.PasswordDigest,
		LoginType:      LoginType(rec.LoginType),
		EmailVerified:  rec.EmailVerified,
	}
}

// mapStoreErr converts store contract sentinels into the flow-local ones.
// Flow sentinels are returned bare because flows compare by identity.
func mapStoreErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrStoreNotFound):
		return flows.ErrNoSuchIdentity
	case errors.Is(err, ErrDuplicateEmail):
		return flows.ErrDuplicateEmail
	default:
		return fmt.Errorf("%w: %v", flows.ErrStoreFailure, err)
	}
}

func mapTokenErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, tokens.ErrTokenNotFound), errors.Is(err, tokens.ErrTokenMismatch):
		return flows.ErrTokenInvalid
	default:
		return fmt.Errorf("%w: %v", flows.ErrStoreFailure, err)
	}
}

func (e *Engine) flowDeps() flows.Deps {
	getByEmail := func(ctx context.Context, email string) (*flows.IdentityRecord, error) {
		id, err := e.identities.GetByEmail(ctx, email)
		if err != nil {
			return nil, mapStoreErr(err)
		}
		return recordFromIdentity(id), nil
	}
	getByID := func(ctx context.Context, identityID string) (*flows.IdentityRecord, error) {
		id, err := e.identities.GetByID(ctx, identityID)
		if err != nil {
			return nil, mapStoreErr(err)
		}
		return recordFromIdentity(id), nil
	}
	insertIdentity := func(ctx context.Context, rec *flows.IdentityRecord) error {
		return mapStoreErr(e.identities.Insert(ctx, identityFromRecord(rec)))
	}
	updateIdentity := func(ctx context.Context, rec *flows.IdentityRecord) error {
		return mapStoreErr(e.identities.Update(ctx, identityFromRecord(rec)))
	}
	deleteIdentity := func(ctx context.Context, identityID string) error {
		return mapStoreErr(e.identities.Delete(ctx, identityID))
	}
	insertProfile := func(ctx context.Context, identityID, username string) error {
		return mapStoreErr(e.profiles.Insert(ctx, &Profile{ID: identityID, Username: username}))
	}
	deleteProfile := func(ctx context.Context, identityID string) error {
		return mapStoreErr(e.profiles.Delete(ctx, identityID))
	}

	// Transactional upgrade when the identity store supports it.
	var insertBoth func(ctx context.Context, rec *flows.IdentityRecord) error
	if atomic, ok := e.identities.(AtomicStore); ok {
		insertBoth = func(ctx context.Context, rec *flows.IdentityRecord) error {
			return mapStoreErr(atomic.InsertIdentityAndProfile(ctx,
				identityFromRecord(rec),
				&Profile{ID: rec.ID, Username: rec.Username}))
		}
	}

	hash := func(ctx context.Context, pw string) (string, error) {
		digest, err := e.hasher.Hash(ctx, password.AlgArgon2id, pw)
		if err != nil {
			return "", fmt.Errorf("%w: %v", flows.ErrStoreFailure, err)
		}
		return digest, nil
	}
	verify := func(ctx context.Context, pw, digest string) (bool, error) {
		ok, err := e.hasher.Verify(ctx, pw, digest)
		if err != nil {
			return false, fmt.Errorf("%w: %v", flows.ErrStoreFailure, err)
		}
		return ok, nil
	}

	enqueueOrphan := func(ctx context.Context, kind, id string) {
		e.metricInc(MetricOrphanQueued)
		if err := e.orphans.Enqueue(ctx, kind, id); err != nil {
			e.emitAudit(ctx, EventCleanupResolved, id, "", false, err, map[string]string{"kind": kind})
		}
	}

	var checkIssue func(ctx context.Context, purpose, subject string) error
	if e.limiter != nil {
		checkIssue = func(ctx context.Context, purpose, subject string) error {
			err := e.limiter.CheckIssue(ctx, purpose, subject)
			if errors.Is(err, rate.ErrRateLimited) {
				e.metricInc(MetricIssuanceRateLimited)
				return flows.ErrRateLimited
			}
			if err != nil {
				return fmt.Errorf("%w: %v", flows.ErrStoreFailure, err)
			}
			return nil
		}
	}

	issueVerification := func(ctx context.Context, email string) (string, error) {
		token, err := e.tokens.Issue(ctx, tokens.PurposeVerifyEmail, email)
		if err != nil {
			return "", mapTokenErr(err)
		}
		e.metricInc(MetricTokenIssued)
		return token, nil
	}
	redeemVerification := func(ctx context.Context, email, token string) error {
		return mapTokenErr(e.tokens.Redeem(ctx, tokens.PurposeVerifyEmail, email, token))
	}
	issueReset := func(ctx context.Context, email string) (string, error) {
		token, err := e.tokens.Issue(ctx, tokens.PurposeResetPassword, email)
		if err != nil {
			return "", mapTokenErr(err)
		}
		e.metricInc(MetricTokenIssued)
		return token, nil
	}
	redeemReset := func(ctx context.Context, email, token string) error {
		return mapTokenErr(e.tokens.Redeem(ctx, tokens.PurposeResetPassword, email, token))
	}
	issuePending := func(ctx context.Context, email string) (string, error) {
		ticket, err := e.tokens.IssueTicket(ctx, tokens.PurposeResetPending, email)
		if err != nil {
			return "", mapTokenErr(err)
		}
		return ticket, nil
	}
	redeemPending := func(ctx context.Context, ticket string) (string, error) {
		email, err := e.tokens.RedeemTicket(ctx, tokens.PurposeResetPending, ticket)
		if err != nil {
			return "", mapTokenErr(err)
		}
		return email, nil
	}

	// Delivery failures are audited, never surfaced: an attacker must not
	// learn from the response whether a mailbox exists or the mailer is up.
	var sendVerification, sendReset func(ctx context.Context, email, token string) error
	if e.notifier != nil {
		sendVerification = func(ctx context.Context, email, token string) error {
			if err := e.notifier.SendVerification(ctx, email, token); err != nil {
				e.emitAudit(ctx, EventNotifyFailure, "", email, false, err, map[string]string{"kind": "verification"})
			}
			return nil
		}
		sendReset = func(ctx context.Context, email, token string) error {
			if err := e.notifier.SendPasswordReset(ctx, email, token); err != nil {
				e.emitAudit(ctx, EventNotifyFailure, "", email, false, err, map[string]string{"kind": "reset"})
			}
			return nil
		}
	}

	newID := uuid.NewString

	return flows.Deps{
		Register: flows.RegisterDeps{
			NewID:                    newID,
			HashPassword:             hash,
			InsertIdentity:           insertIdentity,
			InsertProfile:            insertProfile,
			DeleteIdentity:           deleteIdentity,
			InsertIdentityAndProfile: insertBoth,
			EnqueueOrphan:            enqueueOrphan,
			CheckIssue:               checkIssue,
			IssueVerification:        issueVerification,
			SendVerification:         sendVerification,
		},
		Login: flows.LoginDeps{
			GetIdentityByEmail: getByEmail,
			VerifyPassword:     verify,
			DummyDigest:        e.dummyDigest,
			RequireVerified:    true,
		},
		Social: flows.SocialDeps{
			NewID:                    newID,
			GetIdentityByEmail:       getByEmail,
			InsertIdentity:           insertIdentity,
			InsertProfile:            insertProfile,
			DeleteIdentity:           deleteIdentity,
			InsertIdentityAndProfile: insertBoth,
			EnqueueOrphan:            enqueueOrphan,
		},
		Credential: flows.CredentialDeps{
			GetIdentityByID:    getByID,
			GetIdentityByEmail: getByEmail,
			UpdateIdentity:     updateIdentity,
			HashPassword:       hash,
			CheckIssue:         checkIssue,
			IssueVerification:  issueVerification,
			SendVerification:   sendVerification,
		},
		Email: flows.EmailDeps{
			GetIdentityByEmail: getByEmail,
			UpdateIdentity:     updateIdentity,
			CheckIssue:         checkIssue,
			IssueVerification:  issueVerification,
			RedeemVerification: redeemVerification,
			SendVerification:   sendVerification,
		},
		Reset: flows.ResetDeps{
			GetIdentityByEmail:  getByEmail,
			UpdateIdentity:      updateIdentity,
			HashPassword:        hash,
			CheckIssue:          checkIssue,
			IssueReset:          issueReset,
			RedeemReset:         redeemReset,
			IssuePendingTicket:  issuePending,
			RedeemPendingTicket: redeemPending,
			SendPasswordReset:   sendReset,
		},
		Delete: flows.DeleteDeps{
			GetIdentityByID: getByID,
			DeleteIdentity:  deleteIdentity,
			DeleteProfile:   deleteProfile,
			EnqueueOrphan:   enqueueOrphan,
		},
	}
}
