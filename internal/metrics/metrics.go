// Package metrics exposes allocation counters and fleet gauges to
// Prometheus.
package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/iliyamo/car-pooling/internal/model"
)

// Recorder implements the service and audit metrics hooks on top of a
// Prometheus registry.
type Recorder struct {
	operations    *prometheus.CounterVec
	durations     *prometheus.HistogramVec
	cars          prometheus.Gauge
	freeSeats     prometheus.Gauge
	groupsSeated  prometheus.Gauge
	groupsWaiting prometheus.Gauge
}

// NewRecorder creates the collectors and registers them with reg.
func NewRecorder(reg prometheus.Registerer) *Recorder {
	r := &Recorder{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pooling",
			Name:      "operations_total",
			Help:      "Allocation operations by outcome.",
		}, []string{"operation", "outcome"}),
		durations: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "pooling",
			Name:      "operation_duration_seconds",
			Help:      "Time spent inside the allocation engine.",
			Buckets:   []float64{.00001, .00005, .0001, .0005, .001, .005, .01, .05},
		}, []string{"operation"}),
		cars: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "pooling", Name: "cars", Help: "Cars in the active fleet.",
		}),
		freeSeats: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "pooling", Name: "free_seats", Help: "Unoccupied seats across the fleet.",
		}),
		groupsSeated: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "pooling", Name: "groups_seated", Help: "Groups currently travelling.",
		}),
		groupsWaiting: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "pooling", Name: "groups_waiting", Help: "Groups in the waiting list.",
		}),
	}
	reg.MustRegister(r.operations, r.durations, r.cars, r.freeSeats, r.groupsSeated, r.groupsWaiting)
	return r
}

// Observe counts one operation and records its latency.
func (r *Recorder) Observe(_ context.Context, op string, success bool, d time.Duration) {
	outcome := "success"
	if !success {
		outcome = "error"
	}
	r.operations.WithLabelValues(op, outcome).Inc()
	r.durations.WithLabelValues(op).Observe(d.Seconds())
}

// SetStats publishes a snapshot of the engine state.
func (r *Recorder) SetStats(s model.PoolStats) {
	r.cars.Set(float64(s.Cars))
	r.freeSeats.Set(float64(s.FreeSeats))
	r.groupsSeated.Set(float64(s.GroupsSeated))
	r.groupsWaiting.Set(float64(s.GroupsWaiting))
}
