package authcore

import (
	"github.com/authcore-io/authcore/handoff"
	"github.com/authcore-io/authcore/internal/audit"
	"github.com/authcore-io/authcore/internal/cleanup"
	"github.com/authcore-io/authcore/internal/flows"
	"github.com/authcore-io/authcore/internal/rate"
	"github.com/authcore-io/authcore/internal/tokens"
	"github.com/authcore-io/authcore/password"
	"github.com/authcore-io/authcore/session"
)

// Engine is the authentication core. Build one through [New] and share it;
// all methods are safe for concurrent use.
type Engine struct {
	config Config

	hasher   *password.Hasher
	flows    flows.Service
	sessions *session.Store
	tokens   *tokens.Store
	limiter  *rate.Limiter
	orphans  *cleanup.Queue
	audit    *audit.Dispatcher
	metrics  *Metrics
	handoff  *handoff.Manager

	identities IdentityStore
	profiles   ProfileStore
	notifier   Notifier
	providers  map[string]SocialProvider

	// dummyDigest keeps the login miss path on the same hashing cost as a
	// hit. Computed once at build time from throwaway random input.
	dummyDigest string
}

// Close flushes and stops the audit dispatcher. The engine must not be used
// afterwards.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	if e.audit != nil {
		e.audit.Close()
	}
}

// AuditDropped reports how many audit events were discarded under
// backpressure since the engine was built.
func (e *Engine) AuditDropped() uint64 {
	if e == nil || e.audit == nil {
		return 0
	}
	return e.audit.Dropped()
}

// MetricsSnapshot returns a point-in-time copy of the engine's counters.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil {
		return MetricsSnapshot{Counters: map[MetricID]uint64{}}
	}
	return e.metrics.Snapshot()
}

func (e *Engine) metricInc(id MetricID) {
	if e == nil {
		return
	}
	e.metrics.Inc(id)
}

// Sessions exposes the session store for transport middleware.
func (e *Engine) Sessions() *session.Store {
	return e.sessions
}
