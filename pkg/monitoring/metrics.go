// Package monitoring provides Prometheus metrics for the verification
// pipeline: queue depth and worker-fleet size for the autoscaler,
// verdict scoring and chunk-processing cost for the worker runtime,
// and request metrics for the thin ingress stub.
package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestsTotal tracks the total number of ingress requests
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mailscout_requests_total",
			Help: "Total number of ingress requests",
		},
		[]string{"endpoint", "status"},
	)

	// RequestDuration tracks ingress request duration
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mailscout_request_duration_seconds",
			Help:    "Ingress request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)

	// VerdictScores tracks the distribution of verdict scores by status
	VerdictScores = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mailscout_verdict_scores",
			Help:    "Distribution of verdict scores",
			Buckets: []float64{10, 20, 30, 40, 50, 60, 70, 80, 90, 100},
		},
		[]string{"status"},
	)

	// VerdictsPersistedTotal tracks verdicts committed per persist call
	VerdictsPersistedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "mailscout_verdicts_persisted_total",
			Help: "Total number of verdict records persisted",
		},
	)

	// QueueDepth tracks the broker queue's current payload count, as
	// sampled by the autoscaler
	QueueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "mailscout_queue_depth",
			Help: "Current number of payloads waiting in the broker queue",
		},
	)

	// DesiredWorkers tracks the autoscaler's computed target fleet size
	DesiredWorkers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "mailscout_desired_workers",
			Help: "Worker count the autoscaler last computed as desired",
		},
	)

	// ActiveWorkers tracks the live worker count observed through the
	// orchestrator driver
	ActiveWorkers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "mailscout_active_workers",
			Help: "Worker count last observed via the orchestrator driver",
		},
	)

	// ChunkProcessingDuration tracks time to fan out, verify and
	// persist one payload
	ChunkProcessingDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "mailscout_chunk_processing_seconds",
			Help:    "Time to verify and persist one payload",
			Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 20, 30, 60, 120},
		},
	)

	// DNSLookupDuration tracks MX resolution latency
	DNSLookupDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "mailscout_dns_lookup_duration_seconds",
			Help:    "MX lookup duration in seconds",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
	)

	// SMTPProbeDuration tracks RCPT probe session latency
	SMTPProbeDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "mailscout_smtp_probe_duration_seconds",
			Help:    "SMTP RCPT probe duration in seconds",
			Buckets: []float64{.1, .25, .5, 1, 2.5, 5, 10, 15},
		},
	)

	// PayloadsRequeuedTotal tracks payloads requeued after a persist failure
	PayloadsRequeuedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "mailscout_payloads_requeued_total",
			Help: "Total number of payloads requeued after a persist failure",
		},
	)
)

// RecordRequest records metrics for an ingress request
func RecordRequest(endpoint, status string, duration time.Duration) {
	RequestsTotal.WithLabelValues(endpoint, status).Inc()
	RequestDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}

// RecordVerdictScore records one verdict's score against its status
func RecordVerdictScore(status string, score float64) {
	VerdictScores.WithLabelValues(status).Observe(score)
}

// RecordVerdictsPersisted increments the persisted-verdicts counter by n
func RecordVerdictsPersisted(n int) {
	VerdictsPersistedTotal.Add(float64(n))
}

// RecordQueueDepth sets the current queue depth gauge
func RecordQueueDepth(depth int64) {
	QueueDepth.Set(float64(depth))
}

// RecordFleetSizes sets the desired and observed worker-count gauges
func RecordFleetSizes(desired, active int) {
	DesiredWorkers.Set(float64(desired))
	ActiveWorkers.Set(float64(active))
}

// RecordChunkProcessing records how long a payload took to verify and persist
func RecordChunkProcessing(duration time.Duration) {
	ChunkProcessingDuration.Observe(duration.Seconds())
}

// RecordDNSLookup records MX resolution latency
func RecordDNSLookup(duration time.Duration) {
	DNSLookupDuration.Observe(duration.Seconds())
}

// RecordSMTPProbe records SMTP RCPT probe latency
func RecordSMTPProbe(duration time.Duration) {
	SMTPProbeDuration.Observe(duration.Seconds())
}

// RecordPayloadRequeued increments the requeue counter
func RecordPayloadRequeued() {
	PayloadsRequeuedTotal.Inc()
}
