package authcore

import "sync/atomic"

type MetricID uint16

const (
	MetricRegisterSuccess MetricID = iota
	MetricRegisterConflict
	MetricLoginSuccess
	MetricLoginFailure
	MetricSocialLoginSuccess
	MetricSocialLoginConflict
	MetricSocialIdentityCreated
	MetricPasswordChangeSuccess
	MetricPasswordChangeFailure
	MetricEmailChangeSuccess
	MetricEmailVerified
	MetricTokenIssued
	MetricTokenRedeemFailure
	MetricResetCompleted
	MetricIdentityDeleted
	MetricSessionCreated
	MetricSessionRegenerated
	MetricSessionDestroyed
	MetricIssuanceRateLimited
	MetricOrphanQueued
	MetricOrphanResolved

	metricCount
)

// metricNames drives the text exposition. Order must match the MetricID
// block above.
var metricNames = [metricCount]string{
	"authcore_register_success_total",
	"authcore_register_conflict_total",
	"authcore_login_success_total",
	"authcore_login_failure_total",
	"authcore_social_login_success_total",
	"authcore_social_login_conflict_total",
	"authcore_social_identity_created_total",
	"authcore_password_change_success_total",
	"authcore_password_change_failure_total",
	"authcore_email_change_success_total",
	"authcore_email_verified_total",
	"authcore_token_issued_total",
	"authcore_token_redeem_failure_total",
	"authcore_reset_completed_total",
	"authcore_identity_deleted_total",
	"authcore_session_created_total",
	"authcore_session_regenerated_total",
	"authcore_session_destroyed_total",
	"authcore_issuance_rate_limited_total",
	"authcore_orphan_queued_total",
	"authcore_orphan_resolved_total",
}

// Metrics is a fixed set of lock-free counters. Snapshot cost is one atomic
// load per counter, safe to call from a scrape handler.
type Metrics struct {
	counters [metricCount]atomic.Uint64
}

func newMetrics() *Metrics {
	return &Metrics{}
}

func (m *Metrics) Inc(id MetricID) {
	if m == nil || id >= metricCount {
		return
	}
	m.counters[id].Add(1)
}

// MetricsSnapshot is a point-in-time copy of every counter.
type MetricsSnapshot struct {
	Counters map[MetricID]uint64
}

// Name returns the exposition name of a metric.
func (id MetricID) Name() string {
	if id >= metricCount {
		return "authcore_unknown"
	}
	return metricNames[id]
}

func (m *Metrics) Snapshot() MetricsSnapshot {
	snap := MetricsSnapshot{Counters: make(map[MetricID]uint64, metricCount)}
	if m == nil {
		return snap
	}
	for id := MetricID(0); id < metricCount; id++ {
		snap.Counters[id] = m.counters[id].Load()
	}
	return snap
}
