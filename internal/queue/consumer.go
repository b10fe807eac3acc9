// Package queue also contains the background consumer that listens to the
// journey events queue and writes one line per event to journey.log.
package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// Journal stores consumed events somewhere durable.
type Journal interface {
	Insert(ctx context.Context, ev JourneyEvent) error
}

// Consumer drains the journey events queue.
type Consumer struct {
	URL     string
	Queue   string
	LogDir  string
	Journal Journal // optional
	Logger  *zap.Logger

	// RetryDelay is the pause before a failed message is requeued.
	// Defaults to one second.
	RetryDelay time.Duration
}

func (c *Consumer) retryDelay() time.Duration {
	if c.RetryDelay > 0 {
		return c.RetryDelay
	}
	return time.Second
}

// Run connects to the broker, declares the queue (durable) and consumes
// until ctx is cancelled.  Lost connections are re-dialled with an
// exponential backoff capped at 30s.  Malformed messages are rejected
// without requeue so a poison message cannot stall the loop; other
// failures are requeued after RetryDelay.
func (c *Consumer) Run(ctx context.Context) error {
	backoff := time.Second
	for {
		conn, err := amqp.Dial(c.URL)
		if err != nil {
			c.Logger.Warn("journey-consumer: failed to dial broker", zap.Error(err), zap.Duration("retry_in", backoff))
			if !sleep(ctx, backoff) {
				return ctx.Err()
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		err = c.consumeLoop(ctx, conn)
		_ = conn.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		c.Logger.Warn("journey-consumer: consume loop ended, reconnecting", zap.Error(err))
		if !sleep(ctx, 2*time.Second) {
			return ctx.Err()
		}
	}
}

func (c *Consumer) consumeLoop(ctx context.Context, conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		c.Logger.Warn("journey-consumer: set QoS failed", zap.Error(err))
	}
	if _, err := ch.QueueDeclare(c.Queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}
	msgs, err := ch.Consume(c.Queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-msgs:
			if !ok {
				return errors.New("deliveries channel closed")
			}
			if err := c.HandleMessage(ctx, d.Body); err != nil {
				retry := requeue(err)
				c.Logger.Error("journey-consumer: handle message failed", zap.Error(err), zap.Bool("requeue", retry))
				if retry && !sleep(ctx, c.retryDelay()) {
					_ = d.Nack(false, true)
					return ctx.Err()
				}
				_ = d.Nack(false, retry)
				continue
			}
			_ = d.Ack(false)
		}
	}
}

// ErrMalformedEvent marks a message that can never be handled.  Such
// messages are dropped; any other failure puts the message back on the
// queue.
var ErrMalformedEvent = errors.New("malformed journey event")

// HandleMessage stores the event in the journal, when configured, and then
// appends it to journey.log.  The journal goes first so a failed insert
// leaves no log line behind and the redelivery writes both.
func (c *Consumer) HandleMessage(ctx context.Context, body []byte) error {
	var ev JourneyEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}
	if ev.Type == "" {
		return fmt.Errorf("%w: event without type", ErrMalformedEvent)
	}
	if c.Journal != nil {
		if err := c.Journal.Insert(ctx, ev); err != nil {
			return fmt.Errorf("journal insert: %w", err)
		}
	}
	if err := os.MkdirAll(c.LogDir, 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", c.LogDir, err)
	}
	f, err := os.OpenFile(filepath.Join(c.LogDir, "journey.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(FormatLine(ev)); err != nil {
		return fmt.Errorf("write log: %w", err)
	}
	return nil
}

// requeue reports whether a message that failed with err should be
// delivered again.
func requeue(err error) bool { return !errors.Is(err, ErrMalformedEvent) }

// FormatLine renders ev as a single human readable log line.
func FormatLine(ev JourneyEvent) string {
	parts := []string{fmt.Sprintf("[%s] %s", ev.OccurredAt, ev.Type)}
	if ev.Type == EventFleetReplaced {
		parts = append(parts, fmt.Sprintf("cars=%d", ev.Cars))
	} else {
		parts = append(parts, fmt.Sprintf("group_id=%d", ev.GroupID), fmt.Sprintf("people=%d", ev.People))
	}
	if ev.CarID != nil {
		parts = append(parts, fmt.Sprintf("car_id=%d", *ev.CarID), fmt.Sprintf("car_seats=%d", ev.CarSeats))
	}
	return strings.Join(parts, " | ") + "\n"
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
