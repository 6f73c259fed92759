package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the issuance engine.
type Metrics struct {
	// Mint/burn outcomes by result ("authorized" or the violated check).
	MintOutcome *prometheus.CounterVec
	BurnOutcome *prometheus.CounterVec

	// Attestation ingest outcomes by result.
	AttestationOutcome *prometheus.CounterVec

	// Current reserve and supply state.
	ReserveUSDValue prometheus.Gauge
	ReserveFresh    prometheus.Gauge
	SupplyRatio     prometheus.Gauge

	// Full mint authorization latency.
	AuthorizeLatency prometheus.Histogram
}

// New creates a Metrics instance with all engine metrics registered.
func New() *Metrics {
	return &Metrics{
		MintOutcome: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "mintguard_mint_outcomes_total",
			Help: "Total mint authorization outcomes by result",
		}, []string{"result"}),

		BurnOutcome: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "mintguard_burn_outcomes_total",
			Help: "Total burn authorization outcomes by result",
		}, []string{"result"}),

		AttestationOutcome: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "mintguard_attestation_outcomes_total",
			Help: "Total attestation ingest outcomes by result",
		}, []string{"result"}),

		ReserveUSDValue: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "mintguard_reserve_usd_value",
			Help: "Latest attested reserve value in USD (8-decimal fixed point)",
		}),

		ReserveFresh: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "mintguard_reserve_fresh",
			Help: "1 when the current attestation is within its freshness window",
		}),

		SupplyRatio: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "mintguard_supply_utilization_ratio",
			Help: "Total issued supply divided by scaled reserve capacity",
		}),

		AuthorizeLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "mintguard_authorize_duration_seconds",
			Help:    "Duration of full mint/burn authorization including ledger apply",
			Buckets: []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25},
		}),
	}
}

// IncrementMintOutcome records a mint gate result.
func (m *Metrics) IncrementMintOutcome(result string) {
	if m != nil {
		m.MintOutcome.WithLabelValues(result).Inc()
	}
}

// IncrementBurnOutcome records a burn gate result.
func (m *Metrics) IncrementBurnOutcome(result string) {
	if m != nil {
		m.BurnOutcome.WithLabelValues(result).Inc()
	}
}

// IncrementAttestationOutcome records an attestation ingest result.
func (m *Metrics) IncrementAttestationOutcome(result string) {
	if m != nil {
		m.AttestationOutcome.WithLabelValues(result).Inc()
	}
}

// SetReserveState updates the reserve gauges.
func (m *Metrics) SetReserveState(usdValue uint64, fresh bool) {
	if m == nil {
		return
	}
	m.ReserveUSDValue.Set(float64(usdValue))
	if fresh {
		m.ReserveFresh.Set(1)
	} else {
		m.ReserveFresh.Set(0)
	}
}

// SetSupplyRatio updates the supply utilization gauge.
func (m *Metrics) SetSupplyRatio(ratio float64) {
	if m != nil {
		m.SupplyRatio.Set(ratio)
	}
}

// ObserveAuthorizeLatency records the total authorization duration.
func (m *Metrics) ObserveAuthorizeLatency(d time.Duration) {
	if m != nil {
		m.AuthorizeLatency.Observe(d.Seconds())
	}
}
