// Package service sits between the HTTP handlers and the allocation
// engine.  It logs every operation, records metrics and publishes journey
// events once the engine has released its lock.
package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/iliyamo/car-pooling/internal/logging"
	"github.com/iliyamo/car-pooling/internal/model"
	"github.com/iliyamo/car-pooling/internal/pooling"
	"github.com/iliyamo/car-pooling/internal/queue"
)

// Operation names used for metrics and logs.
const (
	OpCars    = "cars"
	OpJourney = "journey"
	OpDropoff = "dropoff"
	OpLocate  = "locate"
)

// MetricsRecorder observes the outcome and latency of an operation.
type MetricsRecorder interface {
	Observe(ctx context.Context, op string, success bool, d time.Duration)
}

// GaugeRecorder publishes a snapshot of the allocation state.  A metrics
// recorder that also implements it has its gauges refreshed after every
// change.
type GaugeRecorder interface {
	SetStats(model.PoolStats)
}

type nopMetrics struct{}

func (nopMetrics) Observe(context.Context, string, bool, time.Duration) {}

// PoolingService exposes the engine operations to the HTTP layer.
type PoolingService struct {
	engine  *pooling.Engine
	events  EventPublisher
	metrics MetricsRecorder
	gauges  GaugeRecorder // nil when metrics has no gauges
	log     *zap.Logger
	now     func() time.Time
}

// NewPoolingService wires the service.  engine and log are required;
// events and metrics fall back to no-ops when nil.
func NewPoolingService(engine *pooling.Engine, events EventPublisher, metrics MetricsRecorder, log *zap.Logger) *PoolingService {
	if engine == nil || log == nil {
		panic("nil dependency passed to NewPoolingService")
	}
	if events == nil {
		events = NopPublisher{}
	}
	if metrics == nil {
		metrics = nopMetrics{}
	}
	gauges, _ := metrics.(GaugeRecorder)
	return &PoolingService{
		engine:  engine,
		events:  events,
		metrics: metrics,
		gauges:  gauges,
		log:     log.Named("pooling"),
		now:     time.Now,
	}
}

// SeatBounds returns the configured seat range for cars.
func (s *PoolingService) SeatBounds() (int, int) { return s.engine.SeatBounds() }

// Stats returns a snapshot of the allocation state.
func (s *PoolingService) Stats() model.PoolStats { return s.engine.Stats() }

// UpdateCarList replaces the fleet, dropping every known group.
func (s *PoolingService) UpdateCarList(ctx context.Context, cars []model.Car) error {
	s.log.Debug("updating car list", zap.Int("cars", len(cars)))

	start := time.Now()
	err := s.engine.ReplaceFleet(cars)
	s.metrics.Observe(ctx, OpCars, err == nil, time.Since(start))
	if err != nil {
		s.log.Info("rejected car list", zap.Error(err))
		return err
	}
	s.refreshGauges()

	s.publish(ctx, queue.JourneyEvent{Type: queue.EventFleetReplaced, Cars: len(cars)})
	return nil
}

// RegisterJourney seats the group or puts it on the waiting list.
func (s *PoolingService) RegisterJourney(ctx context.Context, g model.Group) error {
	s.log.Debug("attempting to assign a car to group", logging.GroupID(g.ID), logging.People(g.People))

	start := time.Now()
	car, err := s.engine.RegisterGroup(g)
	s.metrics.Observe(ctx, OpJourney, err == nil, time.Since(start))
	if err != nil {
		s.log.Error("unable to register journey", logging.GroupID(g.ID), zap.Error(err))
		return err
	}
	s.refreshGauges()

	s.publish(ctx, queue.JourneyEvent{Type: queue.EventJourneyRegistered, GroupID: g.ID, People: g.People})
	if car == nil {
		s.log.Info("no car available, group is waiting", logging.GroupID(g.ID), logging.People(g.People))
		return nil
	}
	s.log.Info("group seated", logging.GroupID(g.ID), logging.CarID(car.ID))
	s.publish(ctx, seatedEvent(g, *car))
	return nil
}

// DropOffJourney removes the group whether it travels or waits.  Seats it
// releases are offered to waiting groups.
func (s *PoolingService) DropOffJourney(ctx context.Context, groupID int64) error {
	start := time.Now()
	drop, err := s.engine.DropGroup(groupID)
	s.metrics.Observe(ctx, OpDropoff, err == nil, time.Since(start))
	if err != nil {
		s.log.Info("drop-off rejected", logging.GroupID(groupID), zap.Error(err))
		return err
	}
	s.refreshGauges()

	ev := queue.JourneyEvent{Type: queue.EventJourneyDropped, GroupID: groupID, People: drop.Group.People}
	if drop.Car == nil {
		s.log.Info("group left the waiting list", logging.GroupID(groupID))
	} else {
		s.log.Info("group dropped off", logging.GroupID(groupID), logging.CarID(drop.Car.ID),
			zap.Int("backfilled", len(drop.Backfilled)))
		ev.CarID = &drop.Car.ID
		ev.CarSeats = drop.Car.Seats
	}
	s.publish(ctx, ev)

	for _, seat := range drop.Backfilled {
		s.log.Info("waiting group seated", logging.GroupID(seat.Group.ID), logging.CarID(seat.Car.ID))
		s.publish(ctx, seatedEvent(seat.Group, seat.Car))
	}
	return nil
}

// LocateJourney returns the car of a travelling group, or nil while it
// waits.
func (s *PoolingService) LocateJourney(ctx context.Context, groupID int64) (*model.Car, error) {
	start := time.Now()
	car, err := s.engine.LocateGroup(groupID)
	s.metrics.Observe(ctx, OpLocate, err == nil, time.Since(start))
	return car, err
}

func (s *PoolingService) refreshGauges() {
	if s.gauges != nil {
		s.gauges.SetStats(s.engine.Stats())
	}
}

// publish sends ev and only logs failures; events never fail a request.
func (s *PoolingService) publish(ctx context.Context, ev queue.JourneyEvent) {
	ev.OccurredAt = queue.Timestamp(s.now())
	if err := s.events.Publish(ctx, ev); err != nil {
		s.log.Warn("publish journey event failed", zap.String("type", ev.Type), zap.Error(err))
	}
}

func seatedEvent(g model.Group, car model.Car) queue.JourneyEvent {
	id := car.ID
	return queue.JourneyEvent{
		Type:     queue.EventJourneySeated,
		GroupID:  g.ID,
		People:   g.People,
		CarID:    &id,
		CarSeats: car.Seats,
	}
}
