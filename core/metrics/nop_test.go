package metrics

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNop(t *testing.T) {
	require.NotPanics(t, func() {
		NopCounter().Inc()
		NopCounter().Add(2)
		g := NopGauge()
		g.Set(1)
		g.Inc()
		g.Dec()
		g.Add(-3)
		NopHistogram().Observe(0.5)
		NopTimerFunc()().ObserveDuration()
		NopTimer().ObserveDuration()
	})
}
