package authcore

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/authcore-io/authcore/internal/audit"
)

// AuditEvent is one security-relevant occurrence. Events carry the real
// cause of a failure even when the public error surface deliberately does
// not, so treat the sink's output as sensitive.
type AuditEvent = audit.Event

// AuditSink receives audit events from the engine's async dispatcher. Emit
// must not block longer than the passed context allows.
type AuditSink = audit.Sink

// NoOpAuditSink discards every event.
type NoOpAuditSink = audit.NoOpSink

// NewChannelAuditSink returns a sink that forwards events to a buffered
// channel, mostly for tests and custom pipelines.
func NewChannelAuditSink(buffer int) *audit.ChannelSink {
	return audit.NewChannelSink(buffer)
}

// NewJSONAuditSink returns a sink that appends one JSON object per event to
// the writer.
func NewJSONAuditSink(w io.Writer) *audit.JSONWriterSink {
	return audit.NewJSONWriterSink(w)
}

// NewSlogAuditSink returns a sink that logs events through a slog logger,
// Info for successes and Warn for failures. A nil logger uses slog.Default.
func NewSlogAuditSink(logger *slog.Logger) *audit.SlogSink {
	return audit.NewSlogSink(logger)
}

// Audit event types emitted by the engine.
const (
	EventRegister        = "identity.register"
	EventLoginLocal      = "login.local"
	EventLoginSocial     = "login.social"
	EventLogout          = "logout"
	EventPasswordChange  = "password.change"
	EventEmailChange     = "email.change"
	EventEmailVerify     = "email.verify"
	EventVerifyRequest   = "email.verify_request"
	EventResetRequest    = "password.reset_request"
	EventResetRedeem     = "password.reset_redeem"
	EventResetComplete   = "password.reset_complete"
	EventIdentityDelete  = "identity.delete"
	EventNotifyFailure   = "notify.failure"
	EventCleanupResolved = "cleanup.resolved"
)

func (e *Engine) emitAudit(ctx context.Context, eventType, identityID, email string, success bool, cause error, metadata map[string]string) {
	if e.audit == nil {
		return
	}
	event := AuditEvent{
		Timestamp:  time.Now().UTC(),
		EventType:  eventType,
		IdentityID: identityID,
		Email:      email,
		Success:    success,
		Metadata:   metadata,
	}
	if cause != nil {
		event.Error = cause.Error()
	}
	e.audit.Emit(ctx, event)
}
