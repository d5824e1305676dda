package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// IngestMetrics records per-file outcomes of the photo ingestion pipeline.
type IngestMetrics struct {
	duration *prometheus.HistogramVec
	accepted *prometheus.CounterVec
	rejected *prometheus.CounterVec
	bytes    prometheus.Counter
}

// NewIngestMetrics registers the ingestion metrics on the provided registerer.
func NewIngestMetrics(reg prometheus.Registerer) *IngestMetrics {
	if reg == nil {
		return &IngestMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "photo_ingest_duration_seconds",
		Help:    "Duration of single-photo ingestion in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"source"})
	accepted := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "photo_ingest_accepted_total",
		Help: "Photos ingested successfully.",
	}, []string{"source"})
	rejected := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "photo_ingest_rejected_total",
		Help: "Photos rejected, labelled by error code.",
	}, []string{"source", "reason"})
	ingestedBytes := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "photo_ingest_bytes_total",
		Help: "Total original bytes accepted into storage.",
	})
	reg.MustRegister(duration, accepted, rejected, ingestedBytes)
	return &IngestMetrics{
		duration: duration,
		accepted: accepted,
		rejected: rejected,
		bytes:    ingestedBytes,
	}
}

// ObserveDuration records how long one file took end to end.
func (m *IngestMetrics) ObserveDuration(source string, duration time.Duration) {
	if m == nil || m.duration == nil {
		return
	}
	m.duration.WithLabelValues(normalizeLabel(source)).Observe(duration.Seconds())
}

// IncAccepted counts a successfully ingested photo and its size.
func (m *IngestMetrics) IncAccepted(source string, sizeBytes int64) {
	if m == nil || m.accepted == nil {
		return
	}
	m.accepted.WithLabelValues(normalizeLabel(source)).Inc()
	if m.bytes != nil && sizeBytes > 0 {
		m.bytes.Add(float64(sizeBytes))
	}
}

// IncRejected counts a failed file with its error code.
func (m *IngestMetrics) IncRejected(source, reason string) {
	if m == nil || m.rejected == nil {
		return
	}
	m.rejected.WithLabelValues(normalizeLabel(source), normalizeLabel(reason)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
