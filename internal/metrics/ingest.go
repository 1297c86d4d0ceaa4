package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Failure stages reported by IncEventFailed
const (
	StageDecode  = "decode"
	StagePersist = "persist"
	StagePublish = "publish"
)

// IngestMetrics records ledger ingestion progress.
// A nil *IngestMetrics is valid and records nothing.
type IngestMetrics struct {
	applied *prometheus.CounterVec
	failed  *prometheus.CounterVec
	cursor  prometheus.Gauge
	head    prometheus.Gauge
}

// NewIngestMetrics registers the ingestion metrics on the provided registerer.
func NewIngestMetrics(reg prometheus.Registerer) *IngestMetrics {
	if reg == nil {
		return &IngestMetrics{}
	}
	applied := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sct_ingest_events_total",
		Help: "Ledger events applied by the reconciler.",
	}, []string{"kind"})
	failed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sct_ingest_events_failed_total",
		Help: "Ledger events that failed at some ingestion stage.",
	}, []string{"kind", "stage"})
	cursor := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "sct_ingest_cursor_block",
		Help: "Last block saved as the ingestion cursor.",
	})
	head := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "sct_ingest_head_block",
		Help: "Latest ledger block seen by ingestion.",
	})
	reg.MustRegister(applied, failed, cursor, head)
	return &IngestMetrics{
		applied: applied,
		failed:  failed,
		cursor:  cursor,
		head:    head,
	}
}

// IncEventApplied counts an event of kind written through the reconciler.
func (m *IngestMetrics) IncEventApplied(kind string) {
	if m == nil || m.applied == nil {
		return
	}
	m.applied.WithLabelValues(normalizeLabel(kind)).Inc()
}

// IncEventFailed counts an event of kind that failed at stage.
func (m *IngestMetrics) IncEventFailed(kind, stage string) {
	if m == nil || m.failed == nil {
		return
	}
	m.failed.WithLabelValues(normalizeLabel(kind), normalizeLabel(stage)).Inc()
}

// SetCursor records the saved cursor block.
func (m *IngestMetrics) SetCursor(block uint64) {
	if m == nil || m.cursor == nil {
		return
	}
	m.cursor.Set(float64(block))
}

// SetHead records the latest block seen.
func (m *IngestMetrics) SetHead(block uint64) {
	if m == nil || m.head == nil {
		return
	}
	m.head.Set(float64(block))
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
