package authcore

import (
	"context"
	"errors"
	"strings"

	"github.com/authcore-io/authcore/internal/flows"
)

// RequestEmailVerification re-issues and mails a verification link. The
// response does not reveal whether the address is registered: an unknown
// email returns success with nothing sent, and only the audit trail sees
// the difference.
func (e *Engine) RequestEmailVerification(ctx context.Context, email string) error {
	if !validEmail(email) {
		return ErrValidation
	}

	err := e.flows.RequestVerification(ctx, email)
	switch {
	case err == nil:
		e.emitAudit(ctx, EventVerifyRequest, "", strings.ToLower(email), true, nil, nil)
		return nil
	case errors.Is(err, flows.ErrNoSuchIdentity):
		e.emitAudit(ctx, EventVerifyRequest, "", strings.ToLower(email), false, err, nil)
		return nil
	case errors.Is(err, flows.ErrRateLimited):
		e.emitAudit(ctx, EventVerifyRequest, "", strings.ToLower(email), false, err, nil)
		return ErrRateLimited
	default:
		e.emitAudit(ctx, EventVerifyRequest, "", strings.ToLower(email), false, err, nil)
		return ErrInternal
	}
}

// VerifyEmail redeems a verification token. The token burns on first use
// regardless of outcome.
func (e *Engine) VerifyEmail(ctx context.Context, email, token string) error {
	if !validEmail(email) || token == "" {
		return ErrValidation
	}

	err := e.flows.VerifyEmail(ctx, email, token)
	if err != nil {
		e.metricInc(MetricTokenRedeemFailure)
		e.emitAudit(ctx, EventEmailVerify, "", strings.ToLower(email), false, err, nil)
		return mapFlowErr(err)
	}
	e.metricInc(MetricEmailVerified)
	e.emitAudit(ctx, EventEmailVerify, "", strings.ToLower(email), true, nil, nil)
	return nil
}

// RequestPasswordReset issues and mails a reset link. Like verification
// requests, the response is identical whether or not the address has a
// local identity.
func (e *Engine) RequestPasswordReset(ctx context.Context, email string) error {
	if !validEmail(email) {
		return ErrValidation
	}

	err := e.flows.RequestPasswordReset(ctx, email)
	switch {
	case err == nil:
		e.emitAudit(ctx, EventResetRequest, "", strings.ToLower(email), true, nil, nil)
		return nil
	case errors.Is(err, flows.ErrNoSuchIdentity), errors.Is(err, flows.ErrWrongLoginType):
		// A federated identity has no password to reset. Same silence.
		e.emitAudit(ctx, EventResetRequest, "", strings.ToLower(email), false, err, nil)
		return nil
	case errors.Is(err, flows.ErrRateLimited):
		e.emitAudit(ctx, EventResetRequest, "", strings.ToLower(email), false, err, nil)
		return ErrRateLimited
	default:
		e.emitAudit(ctx, EventResetRequest, "", strings.ToLower(email), false, err, nil)
		return ErrInternal
	}
}

// RedeemPasswordReset consumes the emailed reset token and returns a short
// lived ticket authorizing one password change. The emailed token is dead
// after this call either way.
func (e *Engine) RedeemPasswordReset(ctx context.Context, email, token string) (string, error) {
	if !validEmail(email) || token == "" {
		return "", ErrValidation
	}

	ticket, err := e.flows.RedeemReset(ctx, email, token)
	if err != nil {
		e.metricInc(MetricTokenRedeemFailure)
		e.emitAudit(ctx, EventResetRedeem, "", strings.ToLower(email), false, err, nil)
		return "", mapFlowErr(err)
	}
	e.emitAudit(ctx, EventResetRedeem, "", strings.ToLower(email), true, nil, nil)
	return ticket, nil
}

// CompletePasswordReset consumes a pending ticket and installs the new
// password.
func (e *Engine) CompletePasswordReset(ctx context.Context, ticket, newPassword string) error {
	if ticket == "" || newPassword == "" {
		return ErrValidation
	}

	err := e.flows.CompleteReset(ctx, ticket, newPassword)
	if err != nil {
		e.metricInc(MetricTokenRedeemFailure)
		e.emitAudit(ctx, EventResetComplete, "", "", false, err, nil)
		return mapFlowErr(err)
	}
	e.metricInc(MetricResetCompleted)
	e.emitAudit(ctx, EventResetComplete, "", "", true, nil, nil)
	return nil
}
