package queue

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/trace"
)

type Producer interface {
	Publish(ctx context.Context, evt Event) error
	Close() error
}

type redisProducer struct {
	client *redis.Client
	stream string
	logger *slog.Logger
}

// NewRedisProducer appends events to a Redis stream.
func NewRedisProducer(client *redis.Client, stream string, logger *slog.Logger) Producer {
	if logger == nil {
		logger = slog.Default()
	}
	return &redisProducer{
		client: client,
		stream: stream,
		logger: logger,
	}
}

func (p *redisProducer) Publish(ctx context.Context, evt Event) error {
	if err := p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		Values: streamValues(ctx, evt),
	}).Err(); err != nil {
		return fmt.Errorf("publish event: %w", err)
	}

	p.logger.DebugContext(ctx, "published ticket event",
		"event_type", evt.Type,
		"ticket_id", evt.TicketID,
		"user_id", evt.UserID)
	return nil
}

func (p *redisProducer) Close() error {
	return p.client.Close()
}

// streamValues keeps field order stable so consumers and tests see the same layout.
func streamValues(ctx context.Context, evt Event) []any {
	values := []any{
		"event_type", string(evt.Type),
		"ticket_id", strconv.FormatInt(evt.TicketID, 10),
		"user_id", strconv.FormatInt(evt.UserID, 10),
		"holder", strconv.FormatInt(evt.Holder, 10),
		"at", evt.At.UTC().Format(time.RFC3339Nano),
	}
	if sc := trace.SpanContextFromContext(ctx); sc.HasTraceID() {
		values = append(values, "trace_id", sc.TraceID().String())
	}
	return values
}

type noopProducer struct{}

// NewNoopProducer drops every event. Used when no Redis URL is configured.
func NewNoopProducer() Producer {
	return noopProducer{}
}

func (noopProducer) Publish(context.Context, Event) error { return nil }

func (noopProducer) Close() error { return nil }
