package bootstrap

import (
	"context"
	"log/slog"

	"fieldservice/internal/infra/eventbus"
	"fieldservice/internal/pkg/config"
	"fieldservice/internal/usecase/commands"

	"go.uber.org/fx"
)

var EventsModule = fx.Module("events",
	fx.Provide(
		NewEventPublisher,
	),
)

func NewEventPublisher(lc fx.Lifecycle, cfg config.Config, logger *slog.Logger) (commands.EventPublisher, error) {
	if cfg.Events.AMQPURL == "" {
		logger.Info("no broker configured, using noop event publisher")
		return eventbus.NewNoopPublisher(logger), nil
	}

	publisher, err := eventbus.NewAMQPPublisher(cfg.Events.AMQPURL, cfg.Events.Exchange, logger)
	if err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			return publisher.Close()
		},
	})
	return publisher, nil
}
