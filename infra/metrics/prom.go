package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/pmarg/reseat/core/metrics"
)

// PromSink records reassignment events in Prometheus metrics.
type PromSink struct {
	moves      *prometheus.CounterVec
	unassigned prometheus.Gauge
	spread     prometheus.Gauge
}

// NewPromSink registers the engine metrics on the provided Prometheus
// registerer. If reg is nil, the default registerer is used. If the
// collectors are already registered, the existing ones are reused.
func NewPromSink(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	moves := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "reseat_moves_total",
		Help: "Total number of committed student moves",
	}, []string{"shift", "reverted"})
	unassigned := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "reseat_allocation_unassigned",
		Help: "Students left unassigned by the last allocation pass",
	})
	spread := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "reseat_allocation_load_stddev",
		Help: "Standard deviation of bus load ratios after the last allocation pass",
	})

	if err := reg.Register(moves); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			moves = are.ExistingCollector.(*prometheus.CounterVec)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(unassigned); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			unassigned = are.ExistingCollector.(prometheus.Gauge)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(spread); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			spread = are.ExistingCollector.(prometheus.Gauge)
		} else {
			return nil, err
		}
	}

	return &PromSink{moves: moves, unassigned: unassigned, spread: spread}, nil
}

// RecordReassignments increments the move counter for each event.
func (s *PromSink) RecordReassignments(evs []coremetrics.ReassignmentEvent) error {
	for _, ev := range evs {
		s.moves.WithLabelValues(ev.Shift.String(), strconv.FormatBool(ev.Reverted)).Inc()
	}
	return nil
}

// RecordAllocation updates the allocation gauges.
func (s *PromSink) RecordAllocation(ev coremetrics.AllocationEvent) error {
	s.unassigned.Set(float64(ev.Unassigned))
	s.spread.Set(ev.BalanceStdDev)
	return nil
}
