package metrics

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/MikeRez0/posadmin/internal/core/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics collects order submission and remote api call metrics.
type Metrics struct {
	submissions        *prometheus.CounterVec
	submissionDuration *prometheus.HistogramVec
	openDrafts         prometheus.Gauge

	remoteCalls    *prometheus.CounterVec
	remoteDuration *prometheus.HistogramVec
}

func NewMetrics() *Metrics {
	return NewMetricsWithRegisterer(prometheus.DefaultRegisterer)
}

func NewMetricsWithRegisterer(registerer prometheus.Registerer) *Metrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	return &Metrics{
		submissions: register(registerer, "posadmin_order_submissions_total",
			prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "posadmin_order_submissions_total",
				Help: "Order submissions by outcome",
			}, []string{"outcome"})),
		submissionDuration: register(registerer, "posadmin_order_submission_duration_seconds",
			prometheus.NewHistogramVec(prometheus.HistogramOpts{
				Name:    "posadmin_order_submission_duration_seconds",
				Help:    "Time spent waiting for the order sink",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
			}, []string{"outcome"})),
		openDrafts: register(registerer, "posadmin_open_drafts",
			prometheus.NewGauge(prometheus.GaugeOpts{
				Name: "posadmin_open_drafts",
				Help: "Number of order drafts held in memory",
			})),
		remoteCalls: register(registerer, "posadmin_remote_requests_total",
			prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "posadmin_remote_requests_total",
				Help: "Requests to the remote POS API by endpoint and status",
			}, []string{"endpoint", "status"})),
		remoteDuration: register(registerer, "posadmin_remote_request_duration_seconds",
			prometheus.NewHistogramVec(prometheus.HistogramOpts{
				Name:    "posadmin_remote_request_duration_seconds",
				Help:    "Remote POS API request latency",
				Buckets: prometheus.DefBuckets,
			}, []string{"endpoint"})),
	}
}

// register returns the already registered collector when the name is taken,
// so several instances can share the default registry.
func register[C prometheus.Collector](registerer prometheus.Registerer, name string, collector C) C {
	err := registerer.Register(collector)
	if err == nil {
		return collector
	}

	var alreadyRegistered prometheus.AlreadyRegisteredError
	if errors.As(err, &alreadyRegistered) {
		existing, ok := alreadyRegistered.ExistingCollector.(C)
		if !ok {
			panic(fmt.Sprintf("collector %q already registered with unexpected type", name))
		}
		return existing
	}
	panic(fmt.Sprintf("register collector %q: %v", name, err))
}

func (m *Metrics) RecordSubmission(outcome domain.SubmissionOutcome, elapsed time.Duration) {
	m.submissions.WithLabelValues(string(outcome)).Inc()
	m.submissionDuration.WithLabelValues(string(outcome)).Observe(elapsed.Seconds())
}

func (m *Metrics) SetOpenDrafts(n int) {
	m.openDrafts.Set(float64(n))
}

// ObserveRemoteCall counts a remote request. Status 0 is reported as "error".
func (m *Metrics) ObserveRemoteCall(endpoint string, status int, elapsed time.Duration) {
	label := "error"
	if status > 0 {
		label = strconv.Itoa(status)
	}
	m.remoteCalls.WithLabelValues(endpoint, label).Inc()
	m.remoteDuration.WithLabelValues(endpoint).Observe(elapsed.Seconds())
}
