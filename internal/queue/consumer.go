package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
)

// CallLogFile is the file the consumer appends to, inside its directory.
const CallLogFile = "calls.log"

// Consumer reads CallEventsQueue and appends one line per event to
// <Dir>/calls.log.
type Consumer struct {
	URL string
	Dir string
	Log *logrus.Entry
}

func NewConsumer(url, dir string) *Consumer {
	return &Consumer{URL: url, Dir: dir, Log: logrus.WithField("component", "call-consumer")}
}

// Run keeps a connection alive with exponential backoff until ctx is
// cancelled. Processing errors reject the offending message and carry on.
func (c *Consumer) Run(ctx context.Context) error {
	backoff := time.Second
	for {
		conn, err := amqp.Dial(c.URL)
		if err != nil {
			c.Log.WithError(err).Warnf("failed to dial broker; retrying in %s", backoff)
			if !sleep(ctx, backoff) {
				return nil
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		err = c.consume(ctx, conn)
		_ = conn.Close()
		if ctx.Err() != nil {
			return nil
		}
		c.Log.WithError(err).Warn("consume loop ended; reconnecting")
		if !sleep(ctx, 2*time.Second) {
			return nil
		}
	}
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

func (c *Consumer) consume(ctx context.Context, conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		c.Log.WithError(err).Warn("set QoS failed")
	}
	if _, err := declareQueue(ch); err != nil {
		return err
	}
	msgs, err := ch.ConsumeWithContext(ctx, CallEventsQueue, "", false, false, false, false, nil)
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
			if err := c.handle(d.Body); err != nil {
				c.Log.WithError(err).Error("handle message failed")
				_ = d.Nack(false, false) // do not requeue to avoid tight loops
				continue
			}
			_ = d.Ack(false)
		}
	}
}

func (c *Consumer) handle(body []byte) error {
	var ev CallEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	if err := os.MkdirAll(c.Dir, 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", c.Dir, err)
	}
	f, err := os.OpenFile(filepath.Join(c.Dir, CallLogFile), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(formatLine(ev)); err != nil {
		return fmt.Errorf("write log: %w", err)
	}
	return nil
}

func formatLine(ev CallEvent) string {
	group := "-"
	if ev.GroupID != nil {
		group = ev.GroupID.String()
	}
	switch ev.Type {
	case CallEnded:
		ended := "-"
		duration := "-"
		if ev.EndedAt != nil {
			ended = ev.EndedAt.UTC().Format(time.RFC3339)
			duration = ev.EndedAt.Sub(ev.StartedAt).Round(time.Second).String()
		}
		return fmt.Sprintf("[%s] Call ended | call_id=%s | group_id=%s | duration=%s | summary=%s\n",
			ended, ev.CallID, group, duration, strconv.Quote(ev.Summary))
	default:
		return fmt.Sprintf("[%s] Call started | call_id=%s | group_id=%s | group=%s | from=%s\n",
			ev.StartedAt.UTC().Format(time.RFC3339), ev.CallID, group, strconv.Quote(ev.GroupName), ev.FromNumber)
	}
}
