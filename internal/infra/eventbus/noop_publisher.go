package eventbus

import (
	"context"
	"log/slog"

	"fieldservice/internal/domain/booking"
)

// NoopPublisher logs events instead of delivering them. Selected when no
// broker URL is configured.
type NoopPublisher struct {
	logger *slog.Logger
}

func NewNoopPublisher(logger *slog.Logger) *NoopPublisher {
	return &NoopPublisher{logger: logger}
}

func (p *NoopPublisher) Publish(_ context.Context, event booking.Event) error {
	p.logger.Debug("event dropped (no broker configured)",
		slog.String("routing_key", event.RoutingKey),
		slog.String("booking_id", event.BookingID.String()),
	)
	return nil
}
