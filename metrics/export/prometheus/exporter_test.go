package prometheus

import (
	"net/http/httptest"
	"strings"
	"testing"

	authcore "github.com/authcore-io/authcore"
)

type fixedSource struct {
	snapshot authcore.MetricsSnapshot
	dropped  uint64
}

func (s *fixedSource) MetricsSnapshot() authcore.MetricsSnapshot { return s.snapshot }
func (s *fixedSource) AuditDropped() uint64                      { return s.dropped }

func TestRenderExposesCounters(t *testing.T) {
	src := &fixedSource{
		snapshot: authcore.MetricsSnapshot{Counters: map[authcore.MetricID]uint64{
			authcore.MetricLoginSuccess: 7,
			authcore.MetricLoginFailure: 3,
		}},
		dropped: 2,
	}
	out := NewExporterFromSource(src).Render()

	for _, want := range []string{
		"# TYPE authcore_login_success_total counter\nauthcore_login_success_total 7\n",
		"authcore_login_failure_total 3\n",
		"authcore_audit_dropped_total 2\n",
		// Untouched counters still appear, at zero.
		"authcore_register_success_total 0\n",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in:\n%s", want, out)
		}
	}
}

func TestRenderStableOrder(t *testing.T) {
	src := &fixedSource{snapshot: authcore.MetricsSnapshot{Counters: map[authcore.MetricID]uint64{}}}
	exp := NewExporterFromSource(src)
	if exp.Render() != exp.Render() {
		t.Fatal("exposition order not stable")
	}
}

func TestHandlerContentType(t *testing.T) {
	src := &fixedSource{snapshot: authcore.MetricsSnapshot{Counters: map[authcore.MetricID]uint64{}}}
	rec := httptest.NewRecorder()
	NewExporterFromSource(src).Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
		t.Fatalf("content type %q", ct)
	}
}
