package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics is the engine's Prometheus surface: counters and histograms
// for chain-append, mining, and consensus events. A Metrics is meant
// to be constructed once and injected into a storage.Chain / consensus
// engine pair, then registered with a prometheus.Registerer.
type Metrics struct {
	BlocksAppended      prometheus.Counter
	AppendFailures      prometheus.Counter
	AppendLatency       prometheus.Histogram
	MiningAttempts      prometheus.Counter
	ValidatorSelections prometheus.Counter
	RetargetEvents      prometheus.Counter
	CurrentHeight       prometheus.Gauge
}

// NewMetrics builds a Metrics with every collector constructed under
// the ledgerchain namespace, unregistered.
func NewMetrics() *Metrics {
	return &Metrics{
		BlocksAppended: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "ledgerchain",
			Name:      "blocks_appended_total",
			Help:      "Total number of blocks successfully appended to the chain.",
		}),
		AppendFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "ledgerchain",
			Name:      "append_failures_total",
			Help:      "Total number of candidate blocks rejected by AddBlock.",
		}),
		AppendLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "ledgerchain",
			Name:      "append_latency_seconds",
			Help:      "Time spent validating and committing a block in AddBlock.",
			Buckets:   prometheus.DefBuckets,
		}),
		MiningAttempts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "ledgerchain",
			Name:      "pow_mining_attempts_total",
			Help:      "Total nonces tried across all proof-of-work mining loops.",
		}),
		ValidatorSelections: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "ledgerchain",
			Name:      "pos_validator_selections_total",
			Help:      "Total number of stake-weighted validator selections performed.",
		}),
		RetargetEvents: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "ledgerchain",
			Name:      "pow_retarget_events_total",
			Help:      "Total number of times proof-of-work difficulty actually changed.",
		}),
		CurrentHeight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "ledgerchain",
			Name:      "chain_height",
			Help:      "Height of the current chain tip.",
		}),
	}
}

// Register adds every collector in m to reg. Callers typically pass
// prometheus.DefaultRegisterer.
func (m *Metrics) Register(reg prometheus.Registerer) error {
	collectors := []prometheus.Collector{
		m.BlocksAppended,
		m.AppendFailures,
		m.AppendLatency,
		m.MiningAttempts,
		m.ValidatorSelections,
		m.RetargetEvents,
		m.CurrentHeight,
	}
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// ObserveAppend records the outcome and duration of one AddBlock call.
func (m *Metrics) ObserveAppend(start time.Time, height uint64, err error) {
	m.AppendLatency.Observe(time.Since(start).Seconds())
	if err != nil {
		m.AppendFailures.Inc()
		return
	}
	m.BlocksAppended.Inc()
	m.CurrentHeight.Set(float64(height))
}

// RecordMiningAttempts increments the proof-of-work nonce-attempt
// counter by n, called periodically from the mining loop rather than
// once per nonce to keep the hot loop allocation-free.
func (m *Metrics) RecordMiningAttempts(n uint64) {
	m.MiningAttempts.Add(float64(n))
}

// RecordValidatorSelection records one stake-weighted validator pick.
func (m *Metrics) RecordValidatorSelection() {
	m.ValidatorSelections.Inc()
}

// RecordRetarget records one actual difficulty change.
func (m *Metrics) RecordRetarget() {
	m.RetargetEvents.Inc()
}

// globalMetrics is a process-wide instance usable by code with no
// natural place to thread a Metrics through, mirroring the package's
// global Logger convenience functions.
var globalMetrics = NewMetrics()

// GetGlobalMetrics returns the process-wide Metrics instance.
func GetGlobalMetrics() *Metrics {
	return globalMetrics
}
