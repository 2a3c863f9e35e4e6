package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/require"
)

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	require.NoError(t, c.Write(&m))
	return m.GetCounter().GetValue()
}

func TestObserveAttestationIncrementsByOutcome(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := New(reg)

	r.ObserveAttestation(1, nil)
	r.ObserveAttestation(2, assertErr{})

	require.Equal(t, float64(1), counterValue(t, r.attestations.WithLabelValues("success")))
	require.Equal(t, float64(1), counterValue(t, r.attestations.WithLabelValues("error")))
}

func TestObserveRetryLabelsByMethodAndAction(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := New(reg)

	r.ObserveRetry("bond", "reconnect")
	r.ObserveRetry("bond", "reconnect")
	r.ObserveRetry("nominate", "backoff")

	require.Equal(t, float64(2), counterValue(t, r.retries.WithLabelValues("bond", "reconnect")))
	require.Equal(t, float64(1), counterValue(t, r.retries.WithLabelValues("nominate", "backoff")))
}

type assertErr struct{}

func (assertErr) Error() string { return "boom" }
