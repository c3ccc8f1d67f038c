package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"fieldservice/internal/pkg/config"
	"fieldservice/internal/pkg/errs"
	"fieldservice/internal/usecase/commands"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

const TaskTypeBookingReminder = "booking:reminder"

type ReminderPayload struct {
	BookingID uuid.UUID `json:"bookingId"`
}

func redisOpt(cfg config.JobsConfig) asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}
}

// AsynqScheduler implements the reminder port on the asynq delayed queue. The
// returned task id doubles as the cancellation handle.
type AsynqScheduler struct {
	client    *asynq.Client
	inspector *asynq.Inspector
	queue     string
}

func NewAsynqScheduler(cfg config.JobsConfig) (*AsynqScheduler, func()) {
	opt := redisOpt(cfg)
	scheduler := &AsynqScheduler{
		client:    asynq.NewClient(opt),
		inspector: asynq.NewInspector(opt),
		queue:     cfg.Queue,
	}
	cleanup := func() {
		_ = scheduler.client.Close()
		_ = scheduler.inspector.Close()
	}
	return scheduler, cleanup
}

func (s *AsynqScheduler) Schedule(ctx context.Context, bookingID uuid.UUID, runAt time.Time) (string, error) {
	payload, err := json.Marshal(ReminderPayload{BookingID: bookingID})
	if err != nil {
		return "", errs.Wrap(err, "failed to marshal reminder payload")
	}

	task := asynq.NewTask(TaskTypeBookingReminder, payload)
	info, err := s.client.EnqueueContext(ctx, task,
		asynq.Queue(s.queue),
		asynq.ProcessAt(runAt),
		asynq.MaxRetry(3),
	)
	if err != nil {
		return "", errs.Wrap(err, "failed to enqueue reminder task")
	}
	return info.ID, nil
}

func (s *AsynqScheduler) Cancel(ctx context.Context, jobID string) error {
	err := s.inspector.DeleteTask(s.queue, jobID)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, asynq.ErrTaskNotFound), errors.Is(err, asynq.ErrQueueNotFound):
		return commands.ErrReminderJobNotFound
	default:
		return errs.Wrap(err, "failed to delete reminder task")
	}
}
