package authcore

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/authcore-io/authcore/internal/flows"
)

// mapFlowErr is the default translation from flow-local sentinels to the
// public taxonomy. Operations with a stricter disclosure policy do their own
// mapping before falling back to this one.
func mapFlowErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, flows.ErrNoSuchIdentity):
		return ErrNotFound
	case errors.Is(err, flows.ErrDuplicateEmail), errors.Is(err, flows.ErrWrongLoginType):
		return ErrConflict
	case errors.Is(err, flows.ErrWrongCredentials):
		return ErrBadCredentials
	case errors.Is(err, flows.ErrEmailNotVerified), errors.Is(err, flows.ErrNotLocal):
		return ErrForbidden
	case errors.Is(err, flows.ErrTokenInvalid):
		return ErrLinkExpired
	case errors.Is(err, flows.ErrRateLimited):
		return ErrRateLimited
	default:
		return ErrInternal
	}
}

func validEmail(email string) bool {
	at := strings.IndexByte(email, '@')
	return at > 0 && at < len(email)-1 && !strings.ContainsAny(email, " \t\r\n")
}

// Register creates a local identity and its profile, then mails a
// verification link. The email must not already be registered under any
// login type.
func (e *Engine) Register(ctx context.Context, email, username, pw string) (*Identity, error) {
	if !validEmail(email) || username == "" || pw == "" {
		return nil, ErrValidation
	}

	rec, err := e.flows.Register(ctx, flows.RegisterArgs{
		Email:    email,
		Username: username,
		Password: pw,
	})
	if err != nil && rec == nil {
		mapped := mapFlowErr(err)
		if errors.Is(mapped, ErrConflict) {
			e.metricInc(MetricRegisterConflict)
		}
		e.emitAudit(ctx, EventRegister, "", strings.ToLower(email), false, err, nil)
		return nil, mapped
	}
	// rec != nil with a non-nil err means the identity exists but token
	// issuance tripped; the account is usable and can re-request the link.
	if err != nil {
		e.emitAudit(ctx, EventRegister, rec.ID, rec.Email, true, err,
			map[string]string{"verification": "deferred"})
	} else {
		e.emitAudit(ctx, EventRegister, rec.ID, rec.Email, true, nil, nil)
	}
	e.metricInc(MetricRegisterSuccess)
	return identityFromRecord(rec), nil
}

// LoginLocal verifies an email/password pair. Every failure that would let
// a caller enumerate the identity table collapses into [ErrBadCredentials];
// the audit trail keeps the distinction.
func (e *Engine) LoginLocal(ctx context.Context, email, pw string) (*Identity, error) {
	if !validEmail(email) || pw == "" {
		return nil, ErrValidation
	}

	rec, err := e.flows.LoginLocal(ctx, email, pw)
	if err != nil {
		e.metricInc(MetricLoginFailure)
		e.emitAudit(ctx, EventLoginLocal, "", strings.ToLower(email), false, err, nil)
		switch {
		case errors.Is(err, flows.ErrNoSuchIdentity),
			errors.Is(err, flows.ErrWrongCredentials),
			errors.Is(err, flows.ErrWrongLoginType),
			errors.Is(err, flows.ErrEmailNotVerified):
			return nil, ErrBadCredentials
		default:
			return nil, ErrInternal
		}
	}

	e.metricInc(MetricLoginSuccess)
	e.emitAudit(ctx, EventLoginLocal, rec.ID, rec.Email, true, nil, nil)
	return identityFromRecord(rec), nil
}

// SocialLoginURL returns the provider's authorization URL for the given
// state. The transport layer owns generating state and binding it to the
// browser session.
func (e *Engine) SocialLoginURL(provider, state string) (string, error) {
	p, ok := e.providers[provider]
	if !ok {
		return "", fmt.Errorf("%w: unknown provider %q", ErrValidation, provider)
	}
	return p.AuthCodeURL(state), nil
}

// LoginSocial completes a federated login: exchanges the authorization code
// with the named provider and reconciles the asserted profile against the
// identity table. First contact creates a pre-verified identity; an email
// already claimed by another login type is a conflict.
func (e *Engine) LoginSocial(ctx context.Context, provider, code string) (*Identity, error) {
	p, ok := e.providers[provider]
	if !ok {
		return nil, fmt.Errorf("%w: unknown provider %q", ErrValidation, provider)
	}
	if code == "" {
		return nil, ErrValidation
	}

	profile, err := p.Exchange(ctx, code)
	if err != nil {
		e.emitAudit(ctx, EventLoginSocial, "", "", false, err, map[string]string{"provider": provider})
		return nil, ErrUnauthorized
	}

	rec, created, err := e.flows.LoginSocial(ctx, flows.SocialIdentity{
		Provider: provider,
		Email:    profile.Email,
		Username: profile.Username,
	})
	if err != nil {
		e.emitAudit(ctx, EventLoginSocial, "", strings.ToLower(profile.Email), false, err,
			map[string]string{"provider": provider})
		if errors.Is(err, flows.ErrWrongLoginType) {
			e.metricInc(MetricSocialLoginConflict)
			return nil, ErrConflict
		}
		return nil, mapFlowErr(err)
	}

	e.metricInc(MetricSocialLoginSuccess)
	if created {
		e.metricInc(MetricSocialIdentityCreated)
	}
	e.emitAudit(ctx, EventLoginSocial, rec.ID, rec.Email, true, nil,
		map[string]string{"provider": provider, "first_contact": strconv.FormatBool(created)})
	return identityFromRecord(rec), nil
}

// ChangePassword rotates a local identity's password. Authenticating the
// caller is the transport layer's job; reaching this method requires a live
// session for the identity.
func (e *Engine) ChangePassword(ctx context.Context, identityID, next string) error {
	if identityID == "" || next == "" {
		return ErrValidation
	}

	err := e.flows.ChangePassword(ctx, identityID, next)
	if err != nil {
		e.metricInc(MetricPasswordChangeFailure)
		e.emitAudit(ctx, EventPasswordChange, identityID, "", false, err, nil)
		return mapFlowErr(err)
	}
	e.metricInc(MetricPasswordChangeSuccess)
	e.emitAudit(ctx, EventPasswordChange, identityID, "", true, nil, nil)
	return nil
}

// ChangeEmail moves the local identity holding oldEmail to a new address.
// Verification status resets and a fresh link goes to the new address.
func (e *Engine) ChangeEmail(ctx context.Context, oldEmail, newEmail string) error {
	if !validEmail(oldEmail) || !validEmail(newEmail) {
		return ErrValidation
	}

	err := e.flows.ChangeEmail(ctx, oldEmail, newEmail)
	if err != nil {
		e.emitAudit(ctx, EventEmailChange, "", strings.ToLower(newEmail), false, err, nil)
		return mapFlowErr(err)
	}
	e.metricInc(MetricEmailChangeSuccess)
	e.emitAudit(ctx, EventEmailChange, "", strings.ToLower(newEmail), true, nil, nil)
	return nil
}

// DeleteIdentity removes an identity and its profile.
func (e *Engine) DeleteIdentity(ctx context.Context, identityID string) error {
	if identityID == "" {
		return ErrValidation
	}

	err := e.flows.DeleteIdentity(ctx, identityID)
	if err != nil {
		e.emitAudit(ctx, EventIdentityDelete, identityID, "", false, err, nil)
		return mapFlowErr(err)
	}
	e.metricInc(MetricIdentityDeleted)
	e.emitAudit(ctx, EventIdentityDelete, identityID, "", true, nil, nil)
	return nil
}

// GetIdentity fetches an identity by id.
func (e *Engine) GetIdentity(ctx context.Context, identityID string) (*Identity, error) {
	if identityID == "" {
		return nil, ErrValidation
	}
	id, err := e.identities.GetByID(ctx, identityID)
	if err != nil {
		if errors.Is(err, ErrStoreNotFound) {
			return nil, ErrNotFound
		}
		return nil, ErrInternal
	}
	return id, nil
}

// IssueHandoff signs the short-lived token a mobile client picks up after a
// social login completes in the system browser.
func (e *Engine) IssueHandoff(identity *Identity) (string, error) {
	if e.handoff == nil {
		return "", ErrForbidden
	}
	if identity == nil {
		return "", ErrValidation
	}
	return e.handoff.Issue(identity.ID, identity.Email, identity.Username, string(identity.LoginType))
}
