package authcore

import (
	"context"
	"errors"

	"github.com/authcore-io/authcore/session"
)

// StartSession creates a fresh anonymous session, the pre-login state every
// browser starts in.
func (e *Engine) StartSession(ctx context.Context) (*session.Session, error) {
	sess, err := e.sessions.Create(ctx)
	if err != nil {
		return nil, ErrInternal
	}
	e.metricInc(MetricSessionCreated)
	return sess, nil
}

// GetSession resolves a session id. Unknown, expired and malformed ids all
// return [ErrUnauthorized].
func (e *Engine) GetSession(ctx context.Context, sessionID string) (*session.Session, error) {
	sess, err := e.sessions.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, session.ErrSessionNotFound) || errors.Is(err, session.ErrSessionCorrupt) {
			return nil, ErrUnauthorized
		}
		return nil, ErrInternal
	}
	return sess, nil
}

// EstablishSession binds an authenticated identity to a session. The session
// id always changes before the principal is attached, so an id planted in
// the browser pre-login never names an authenticated session. Non-principal
// data riding on the old session survives the swap.
func (e *Engine) EstablishSession(ctx context.Context, currentSessionID string, identity *Identity) (*session.Session, error) {
	if identity == nil {
		return nil, ErrValidation
	}

	var sess *session.Session
	var err error
	if currentSessionID != "" {
		sess, err = e.sessions.Regenerate(ctx, currentSessionID)
		if errors.Is(err, session.ErrSessionNotFound) || errors.Is(err, session.ErrSessionCorrupt) {
			// The old session is gone or garbage; a clean one serves the
			// same purpose.
			sess, err = e.sessions.Create(ctx)
		} else if err == nil {
			e.metricInc(MetricSessionRegenerated)
		}
	} else {
		sess, err = e.sessions.Create(ctx)
	}
	if err != nil {
		return nil, ErrInternal
	}

	sess.PrincipalID = identity.ID
	sess.Email = identity.Email
	if err := e.sessions.Save(ctx, sess); err != nil {
		return nil, ErrInternal
	}
	return sess, nil
}

// SaveSession persists mutations to a session's non-principal data.
func (e *Engine) SaveSession(ctx context.Context, sess *session.Session) error {
	if sess == nil {
		return ErrValidation
	}
	if err := e.sessions.Save(ctx, sess); err != nil {
		return ErrInternal
	}
	return nil
}

// Logout destroys a session. Destroying an unknown session succeeds.
func (e *Engine) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	sess, _ := e.sessions.Get(ctx, sessionID)
	if err := e.sessions.Destroy(ctx, sessionID); err != nil {
		return ErrInternal
	}
	e.metricInc(MetricSessionDestroyed)
	if sess != nil && sess.Authenticated() {
		e.emitAudit(ctx, EventLogout, sess.PrincipalID, sess.Email, true, nil, nil)
	}
	return nil
}
