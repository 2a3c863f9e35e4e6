// Package metrics implements the Prometheus-backed Metrics interfaces the
// off-chain loops (pkg/attest/attestor, pkg/bridge/forwarder,
// pkg/bridge/submitter) report to.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registry groups the off-chain loops' Prometheus collectors under one
// registerer, so cmd binaries can wire a single /metrics endpoint.
type Registry struct {
	attestations     *prometheus.CounterVec
	forwards         *prometheus.CounterVec
	watermarkUpdates *prometheus.CounterVec
	submissions      *prometheus.CounterVec
	retries          *prometheus.CounterVec
}

// New registers every collector against reg.
func New(reg prometheus.Registerer) *Registry {
	factory := promauto.With(reg)
	return &Registry{
		attestations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sxt",
			Subsystem: "attestor",
			Name:      "block_attestations_total",
			Help:      "Attestation attempts by block, partitioned by outcome.",
		}, []string{"outcome"}),
		forwards: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sxt",
			Subsystem: "forwarder",
			Name:      "block_forwards_total",
			Help:      "Forward-pipeline runs by block, partitioned by outcome.",
		}, []string{"outcome"}),
		watermarkUpdates: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sxt",
			Subsystem: "forwarder",
			Name:      "watermark_updates_total",
			Help:      "mark_block_forwarded calls, partitioned by outcome.",
		}, []string{"outcome"}),
		submissions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sxt",
			Subsystem: "submitter",
			Name:      "submissions_total",
			Help:      "External-tx submissions by method, partitioned by outcome.",
		}, []string{"method", "outcome"}),
		retries: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sxt",
			Subsystem: "submitter",
			Name:      "submission_retries_total",
			Help:      "Submission retries by method, partitioned by recovery action.",
		}, []string{"method", "action"}),
	}
}

func outcome(err error) string {
	if err == nil {
		return "success"
	}
	return "error"
}

// ObserveAttestation implements attestor.Metrics.
func (r *Registry) ObserveAttestation(blockNumber uint64, err error) {
	r.attestations.WithLabelValues(outcome(err)).Inc()
}

// ObserveForward implements forwarder.Metrics.
func (r *Registry) ObserveForward(blockNumber uint64, err error) {
	r.forwards.WithLabelValues(outcome(err)).Inc()
}

// ObserveWatermark implements forwarder.Metrics.
func (r *Registry) ObserveWatermark(blockNumber uint64, err error) {
	r.watermarkUpdates.WithLabelValues(outcome(err)).Inc()
}

// ObserveSubmit implements submitter.Metrics.
func (r *Registry) ObserveSubmit(method string, err error) {
	r.submissions.WithLabelValues(method, outcome(err)).Inc()
}

// ObserveRetry implements submitter.Metrics.
func (r *Registry) ObserveRetry(method string, action string) {
	r.retries.WithLabelValues(method, action).Inc()
}
