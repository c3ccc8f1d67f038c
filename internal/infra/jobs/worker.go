package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"fieldservice/internal/domain/booking"
	"fieldservice/internal/pkg/config"
	"fieldservice/internal/pkg/errs"
	"fieldservice/internal/usecase/queries"

	"github.com/hibiken/asynq"
)

// ReminderWorker consumes delayed reminder tasks. Delivery here is a
// structured log line; a notification gateway can hang off the same handler.
type ReminderWorker struct {
	srv *asynq.Server
	mux *asynq.ServeMux
}

func NewReminderWorker(cfg config.JobsConfig, bookings queries.BookingQueries, logger *slog.Logger) *ReminderWorker {
	srv := asynq.NewServer(
		redisOpt(cfg),
		asynq.Config{
			Concurrency: 10,
			Queues:      map[string]int{cfg.Queue: 1},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(TaskTypeBookingReminder, handleReminder(bookings, logger))

	return &ReminderWorker{srv: srv, mux: mux}
}

func (w *ReminderWorker) Start() error {
	return w.srv.Start(w.mux)
}

func (w *ReminderWorker) Shutdown() {
	w.srv.Shutdown()
}

func handleReminder(bookings queries.BookingQueries, logger *slog.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		var p ReminderPayload
		if err := json.Unmarshal(task.Payload(), &p); err != nil {
			// Malformed payloads never succeed on retry.
			return errors.Join(errs.Wrap(err, "invalid reminder payload"), asynq.SkipRetry)
		}

		view, err := bookings.GetByID(ctx, p.BookingID)
		if err != nil {
			if errors.Is(err, errs.ErrBookingNotFound) {
				logger.Info("reminder skipped, booking gone",
					slog.String("booking_id", p.BookingID.String()))
				return nil
			}
			return err
		}

		if booking.Status(view.Status).IsTerminal() {
			logger.Info("reminder skipped, booking no longer active",
				slog.String("booking_id", view.ID.String()),
				slog.String("status", view.Status))
			return nil
		}

		logger.Info("booking reminder due",
			slog.String("booking_id", view.ID.String()),
			slog.String("user_id", view.UserID.String()),
			slog.String("technician_id", view.TechnicianID.String()),
			slog.Time("start", view.Start))
		return nil
	}
}
