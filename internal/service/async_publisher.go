package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/iliyamo/car-pooling/internal/queue"
)

// ErrPublishBufferFull is returned when the async publisher cannot take
// another event without blocking the caller.
var ErrPublishBufferFull = errors.New("event buffer full")

// AsyncPublisher queues events in memory and delivers them from a single
// goroutine, so a slow or unreachable broker never holds up a request.
// Events are delivered in the order they were accepted.
type AsyncPublisher struct {
	next    EventPublisher
	timeout time.Duration
	log     *zap.Logger

	mu     sync.RWMutex
	closed bool
	events chan queue.JourneyEvent
	done   chan struct{}
}

// NewAsyncPublisher starts the delivery goroutine.  buffer is the number of
// events held while next is busy; values below 1 are raised to 1.
func NewAsyncPublisher(next EventPublisher, buffer int, log *zap.Logger) *AsyncPublisher {
	if buffer < 1 {
		buffer = 1
	}
	p := &AsyncPublisher{
		next:    next,
		timeout: 5 * time.Second,
		log:     log.Named("events"),
		events:  make(chan queue.JourneyEvent, buffer),
		done:    make(chan struct{}),
	}
	go p.run()
	return p
}

// Publish enqueues ev without blocking.  It fails with
// ErrPublishBufferFull when the buffer is full and with
// context.Canceled after Close.
func (p *AsyncPublisher) Publish(_ context.Context, ev queue.JourneyEvent) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return context.Canceled
	}
	select {
	case p.events <- ev:
		return nil
	default:
		return ErrPublishBufferFull
	}
}

// Close stops accepting events and waits until the buffered ones have
// been handed to next.
func (p *AsyncPublisher) Close() {
	p.mu.Lock()
	if !p.closed {
		p.closed = true
		close(p.events)
	}
	p.mu.Unlock()
	<-p.done
}

func (p *AsyncPublisher) run() {
	defer close(p.done)
	for ev := range p.events {
		ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
		err := p.next.Publish(ctx, ev)
		cancel()
		if err != nil {
			p.log.Warn("deliver journey event failed", zap.String("type", ev.Type), zap.Error(err))
		}
	}
}
