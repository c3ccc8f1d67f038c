package bootstrap

import (
	"context"
	"log/slog"

	"fieldservice/internal/infra/jobs"
	"fieldservice/internal/pkg/config"
	"fieldservice/internal/usecase/commands"
	"fieldservice/internal/usecase/queries"

	"go.uber.org/fx"
)

var JobsModule = fx.Module("jobs",
	fx.Provide(
		NewReminderScheduler,
	),
	fx.Invoke(StartReminderWorker),
)

func NewReminderScheduler(lc fx.Lifecycle, cfg config.Config) commands.ReminderScheduler {
	scheduler, cleanup := jobs.NewAsynqScheduler(cfg.Jobs)

	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			cleanup()
			return nil
		},
	})
	return scheduler
}

func StartReminderWorker(lc fx.Lifecycle, cfg config.Config, bookings queries.BookingQueries, logger *slog.Logger) {
	worker := jobs.NewReminderWorker(cfg.Jobs, bookings, logger)

	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			return worker.Start()
		},
		OnStop: func(_ context.Context) error {
			worker.Shutdown()
			return nil
		},
	})
}
