package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// AMQP publishes notifications as persistent JSON messages on a durable queue.
// The connection is dialled lazily and re-dialled after a failure.
type AMQP struct {
	url   string
	queue string

	mu   sync.Mutex
	conn *amqp.Connection
	ch   *amqp.Channel
}

func NewAMQP(url, queue string) *AMQP {
	return &AMQP{url: url, queue: queue}
}

func (a *AMQP) channel() (*amqp.Channel, error) {
	if a.ch != nil && !a.ch.IsClosed() {
		return a.ch, nil
	}

	if a.conn == nil || a.conn.IsClosed() {
		conn, err := amqp.Dial(a.url)
		if err != nil {
			return nil, fmt.Errorf("dialling broker: %w", err)
		}

		a.conn = conn
	}

	ch, err := a.conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("opening channel: %w", err)
	}

	if _, err := ch.QueueDeclare(a.queue, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("declaring queue: %w", err)
	}

	a.ch = ch

	return ch, nil
}

func (a *AMQP) Publish(ctx context.Context, ns []Notification) error {
	if len(ns) == 0 {
		return nil
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	ch, err := a.channel()
	if err != nil {
		return err
	}

	for _, n := range ns {
		body, err := json.Marshal(n)
		if err != nil {
			return fmt.Errorf("marshalling %s notification: %w", n.Kind, err)
		}

		pub := amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now().UTC(),
			Type:         string(n.Kind),
			Body:         body,
		}

		if err := ch.PublishWithContext(ctx, "", a.queue, false, false, pub); err != nil {
			a.ch = nil
			return fmt.Errorf("publishing %s notification: %w", n.Kind, err)
		}

		slog.Debug("notification published", "kind", n.Kind, "account_id", n.AccountID, "places", len(n.Places))
	}

	return nil
}

func (a *AMQP) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.conn == nil {
		return nil
	}

	return a.conn.Close()
}
