package notify

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/iho/walletcore/internal/domain"
)

// Sink delivers a notification to an external system.
type Sink interface {
	Deliver(ctx context.Context, n domain.Notification) error
}

// Dispatcher fans notifications out to a sink from a background worker.
// Notify never blocks the calling operation; when the buffer is full the
// notification is dropped and counted in the log.
type Dispatcher struct {
	sink   Sink
	logger zerolog.Logger
	queue  chan domain.Notification
}

// Config for Dispatcher.
type Config struct {
	Sink       Sink
	Logger     zerolog.Logger
	BufferSize int
}

// NewDispatcher creates a new Dispatcher.
func NewDispatcher(cfg Config) *Dispatcher {
	if cfg.BufferSize == 0 {
		cfg.BufferSize = 256
	}

	return &Dispatcher{
		sink:   cfg.Sink,
		logger: cfg.Logger,
		queue:  make(chan domain.Notification, cfg.BufferSize),
	}
}

// Notify enqueues a notification for delivery.
func (d *Dispatcher) Notify(_ context.Context, n domain.Notification) {
	select {
	case d.queue <- n:
	default:
		d.logger.Warn().
			Str("event", n.Event).
			Str("user_id", n.UserID).
			Msg("notification buffer full, dropping")
	}
}

// Start runs the delivery worker until the context is cancelled. Queued
// notifications are drained before returning.
func (d *Dispatcher) Start(ctx context.Context) error {
	d.logger.Info().Int("buffer", cap(d.queue)).Msg("notification dispatcher started")

	for {
		select {
		case <-ctx.Done():
			d.drain()
			d.logger.Info().Msg("notification dispatcher shutting down")
			return ctx.Err()
		case n := <-d.queue:
			d.deliver(n)
		}
	}
}

func (d *Dispatcher) drain() {
	for {
		select {
		case n := <-d.queue:
			d.deliver(n)
		default:
			return
		}
	}
}

func (d *Dispatcher) deliver(n domain.Notification) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := d.sink.Deliver(ctx, n); err != nil {
		d.logger.Error().
			Err(err).
			Str("event", n.Event).
			Str("user_id", n.UserID).
			Msg("notification delivery failed")
	}
}

// LogSink writes notifications to the log.
type LogSink struct {
	logger zerolog.Logger
}

// NewLogSink creates a new LogSink.
func NewLogSink(logger zerolog.Logger) *LogSink {
	return &LogSink{logger: logger}
}

// Deliver logs the notification.
func (s *LogSink) Deliver(_ context.Context, n domain.Notification) error {
	s.logger.Info().
		Str("user_id", n.UserID).
		Str("event", n.Event).
		Str("message", n.Message).
		Time("created_at", n.CreatedAt).
		Msg("notification")

	return nil
}

// RedisSink publishes notifications on a per-user Redis channel so user
// sessions can stream them.
type RedisSink struct {
	client  *redis.Client
	channel string
}

// NewRedisSink creates a new RedisSink. channel is the channel prefix; the
// user ID is appended.
func NewRedisSink(client *redis.Client, channel string) *RedisSink {
	if channel == "" {
		channel = "walletcore:notifications"
	}
	return &RedisSink{client: client, channel: channel}
}

// Deliver publishes the notification as JSON.
func (s *RedisSink) Deliver(ctx context.Context, n domain.Notification) error {
	payload, err := json.Marshal(n)
	if err != nil {
		return err
	}

	return s.client.Publish(ctx, s.channel+":"+n.UserID, payload).Err()
}
