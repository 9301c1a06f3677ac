package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// DefaultExchange is the topic exchange inventory events are published to.
const DefaultExchange = "stockflow_events"

// ErrClosed is returned by publishers after Close.
var ErrClosed = errors.New("events: publisher closed")

// RabbitMQConfig holds the broker connection settings.
type RabbitMQConfig struct {
	URL      string
	Exchange string
	// DialAttempts is the number of connection attempts made by NewRabbitMQ.
	DialAttempts int
}

// RabbitMQ publishes events as persistent JSON messages on a topic exchange.
// A dropped connection is re-dialled on the next Publish.
type RabbitMQ struct {
	cfg    RabbitMQConfig
	logger *slog.Logger

	mu      sync.Mutex
	conn    *amqp.Connection
	channel *amqp.Channel
	closed  bool
}

// NewRabbitMQ connects to the broker, retrying with backoff, and declares the exchange.
func NewRabbitMQ(cfg RabbitMQConfig, logger *slog.Logger) (*RabbitMQ, error) {
	if cfg.URL == "" {
		return nil, errors.New("events: rabbitmq url is required")
	}
	if cfg.Exchange == "" {
		cfg.Exchange = DefaultExchange
	}
	if cfg.DialAttempts <= 0 {
		cfg.DialAttempts = 5
	}
	if logger == nil {
		logger = slog.Default()
	}

	r := &RabbitMQ{cfg: cfg, logger: logger}

	var err error
	for i := 0; i < cfg.DialAttempts; i++ {
		if err = r.connect(); err == nil || i == cfg.DialAttempts-1 {
			break
		}
		wait := time.Duration(i*i)*time.Second + time.Second
		logger.Warn("Failed to connect to RabbitMQ, retrying", "attempt", i+1, "retry_in", wait, "error", err)
		time.Sleep(wait)
	}
	if err != nil {
		return nil, fmt.Errorf("connect to rabbitmq after %d attempts: %w", cfg.DialAttempts, err)
	}

	logger.Info("RabbitMQ publisher ready", "exchange", cfg.Exchange)
	return r, nil
}

// connect dials and declares the exchange.
func (r *RabbitMQ) connect() error {
	conn, err := amqp.Dial(r.cfg.URL)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("open channel: %w", err)
	}
	err = ch.ExchangeDeclare(
		r.cfg.Exchange,
		"topic",
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,
	)
	if err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return fmt.Errorf("declare exchange %s: %w", r.cfg.Exchange, err)
	}
	r.conn, r.channel = conn, ch
	return nil
}

// Publish sends e with its type as the routing key.
func (r *RabbitMQ) Publish(ctx context.Context, e Event) error {
	body, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return ErrClosed
	}
	if r.conn == nil || r.conn.IsClosed() || r.channel == nil || r.channel.IsClosed() {
		r.release()
		if err := r.connect(); err != nil {
			return fmt.Errorf("reconnect to rabbitmq: %w", err)
		}
		r.logger.Info("Reconnected to RabbitMQ", "exchange", r.cfg.Exchange)
	}

	err = r.channel.PublishWithContext(ctx,
		r.cfg.Exchange,
		e.Type,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    e.ID,
			Type:         e.Type,
			Timestamp:    e.OccurredAt,
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("publish %s: %w", e.Type, err)
	}
	return nil
}

// Close closes the channel and connection.
func (r *RabbitMQ) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil
	}
	r.closed = true
	return r.release()
}

func (r *RabbitMQ) release() error {
	var errs []error
	if r.channel != nil {
		if err := r.channel.Close(); err != nil && !errors.Is(err, amqp.ErrClosed) {
			errs = append(errs, err)
		}
		r.channel = nil
	}
	if r.conn != nil {
		if err := r.conn.Close(); err != nil && !errors.Is(err, amqp.ErrClosed) {
			errs = append(errs, err)
		}
		r.conn = nil
	}
	return errors.Join(errs...)
}
