package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the room collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	ActiveRooms      prometheus.Gauge
	RoomsCreated     prometheus.Counter
	RoomsDisbanded   *prometheus.CounterVec
	MembershipOps    *prometheus.CounterVec
	SoftFailures     *prometheus.CounterVec
	PlatformRetries  *prometheus.CounterVec
	MalformedRecords prometheus.Counter
	SweepDuration    prometheus.Histogram
	SweepFailures    prometheus.Counter
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		ActiveRooms: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "roombot_active_rooms",
			Help: "Number of live rooms",
		}),
		RoomsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "roombot_rooms_created_total",
			Help: "Total number of rooms created",
		}),
		RoomsDisbanded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "roombot_rooms_disbanded_total",
			Help: "Total number of rooms disbanded",
		}, []string{"reason"}),
		MembershipOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "roombot_membership_operations_total",
			Help: "Membership changes by operation and outcome",
		}, []string{"op", "outcome"}),
		SoftFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "roombot_platform_soft_failures_total",
			Help: "Platform calls that ended on the soft-fail path",
		}, []string{"op"}),
		PlatformRetries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "roombot_platform_retries_total",
			Help: "Failed platform call attempts",
		}, []string{"op"}),
		MalformedRecords: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "roombot_malformed_records_total",
			Help: "Room records skipped because they could not be decoded",
		}),
		SweepDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "roombot_sweep_duration_seconds",
			Help:    "Inactivity sweep duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0},
		}),
		SweepFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "roombot_sweep_disband_failures_total",
			Help: "Idle rooms the sweeper failed to disband",
		}),
	}

	reg.MustRegister(
		m.ActiveRooms,
		m.RoomsCreated,
		m.RoomsDisbanded,
		m.MembershipOps,
		m.SoftFailures,
		m.PlatformRetries,
		m.MalformedRecords,
		m.SweepDuration,
		m.SweepFailures,
	)

	return m
}

func (m *Metrics) SetActiveRooms(n int) {
	if m == nil {
		return
	}
	m.ActiveRooms.Set(float64(n))
}

func (m *Metrics) RoomCreated() {
	if m == nil {
		return
	}
	m.RoomsCreated.Inc()
}

func (m *Metrics) RoomDisbanded(reason string) {
	if m == nil {
		return
	}
	m.RoomsDisbanded.WithLabelValues(reason).Inc()
}

func (m *Metrics) Membership(op, outcome string) {
	if m == nil {
		return
	}
	m.MembershipOps.WithLabelValues(op, outcome).Inc()
}

func (m *Metrics) SoftFailure(op string) {
	if m == nil {
		return
	}
	m.SoftFailures.WithLabelValues(op).Inc()
}

func (m *Metrics) PlatformRetry(op string) {
	if m == nil {
		return
	}
	m.PlatformRetries.WithLabelValues(op).Inc()
}

func (m *Metrics) MalformedRecord() {
	if m == nil {
		return
	}
	m.MalformedRecords.Inc()
}

func (m *Metrics) ObserveSweep(d time.Duration, failures int) {
	if m == nil {
		return
	}
	m.SweepDuration.Observe(d.Seconds())
	m.SweepFailures.Add(float64(failures))
}
