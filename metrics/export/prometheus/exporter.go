package prometheus

import (
	"net/http"
	"strconv"
	"strings"

	authcore "github.com/authcore-io/authcore"
)

// metricsSource is the slice of the engine the exporter reads. Tests
// substitute a fixed snapshot.
type metricsSource interface {
	MetricsSnapshot() authcore.MetricsSnapshot
	AuditDropped() uint64
}

// Exporter renders engine counters in the Prometheus text exposition
// format, with no client library and no registry: the engine's counters are
// already atomic, so a scrape is a read-only snapshot.
type Exporter struct {
	source metricsSource
}

func NewExporter(engine *authcore.Engine) *Exporter {
	return &Exporter{source: engine}
}

func NewExporterFromSource(source metricsSource) *Exporter {
	return &Exporter{source: source}
}

// Handler serves the scrape endpoint.
func (e *Exporter) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")
		_, _ = w.Write([]byte(e.Render()))
	})
}

// Render returns the full exposition body.
func (e *Exporter) Render() string {
	if e == nil || e.source == nil {
		return ""
	}
	snapshot := e.source.MetricsSnapshot()

	// Stable output order: iterate ids, not the map.
	var b strings.Builder
	b.Grow(4096)
	for id := authcore.MetricID(0); ; id++ {
		name := id.Name()
		if name == "authcore_unknown" {
			break
		}
		writeCounter(&b, name, snapshot.Counters[id])
	}
	writeCounter(&b, "authcore_audit_dropped_total", e.source.AuditDropped())
	return b.String()
}

func writeCounter(b *strings.Builder, name string, value uint64) {
	b.WriteString("# TYPE ")
	b.WriteString(name)
	b.WriteString(" counter\n")
	b.WriteString(name)
	b.WriteByte(' ')
	b.WriteString(strconv.FormatUint(value, 10))
	b.WriteByte('\n')
}
