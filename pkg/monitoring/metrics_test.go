package monitoring

import (
	"errors"
	"testing"
	"time"

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

func gaugeValue(t *testing.T, g prometheus.Gauge) float64 {
	t.Helper()
	var m dto.Metric
	require.NoError(t, g.Write(&m))
	return m.GetGauge().GetValue()
}

func TestRegisterAddsEveryCollectorOnce(t *testing.T) {
	m := NewMetrics()
	reg := prometheus.NewRegistry()
	require.NoError(t, m.Register(reg))
	require.Error(t, m.Register(reg), "registering the same collectors twice must fail")
}

func TestObserveAppendSuccessUpdatesHeightAndCount(t *testing.T) {
	m := NewMetrics()
	m.ObserveAppend(time.Now(), 7, nil)

	require.Equal(t, float64(1), counterValue(t, m.BlocksAppended))
	require.Equal(t, float64(7), gaugeValue(t, m.CurrentHeight))
	require.Equal(t, float64(0), counterValue(t, m.AppendFailures))
}

func TestObserveAppendFailureDoesNotAdvanceHeight(t *testing.T) {
	m := NewMetrics()
	m.ObserveAppend(time.Now(), 99, errors.New("rejected"))

	require.Equal(t, float64(1), counterValue(t, m.AppendFailures))
	require.Equal(t, float64(0), counterValue(t, m.BlocksAppended))
	require.Equal(t, float64(0), gaugeValue(t, m.CurrentHeight))
}

func TestRecordHelpersIncrementTheirCounters(t *testing.T) {
	m := NewMetrics()
	m.RecordMiningAttempts(1_000_000)
	m.RecordValidatorSelection()
	m.RecordValidatorSelection()
	m.RecordRetarget()

	require.Equal(t, float64(1_000_000), counterValue(t, m.MiningAttempts))
	require.Equal(t, float64(2), counterValue(t, m.ValidatorSelections))
	require.Equal(t, float64(1), counterValue(t, m.RetargetEvents))
}

func TestGetGlobalMetricsReturnsSameInstance(t *testing.T) {
	require.Same(t, GetGlobalMetrics(), GetGlobalMetrics())
}
