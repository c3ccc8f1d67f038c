package commands

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"fieldservice/internal/domain/booking"
	"fieldservice/internal/pkg/clock"
)

// ReminderLead is how long before the scheduled start the customer reminder
// fires.
const ReminderLead = 2 * time.Hour

// reminderCoordinator keeps the invariant of at most one outstanding reminder
// job per booking. Scheduling failures degrade the mutation, they never fail
// it.
type reminderCoordinator struct {
	scheduler ReminderScheduler
	clock     clock.Clock
	logger    *slog.Logger
}

func newReminderCoordinator(scheduler ReminderScheduler, clk clock.Clock, logger *slog.Logger) *reminderCoordinator {
	return &reminderCoordinator{scheduler: scheduler, clock: clk, logger: logger}
}

// Sync cancels the booking's outstanding reminder (if any) and schedules a new
// one at start minus ReminderLead when that instant is still in the future.
// The new handle is set on the aggregate; the caller persists it. Returns true
// when scheduling failed and the booking proceeds without a reminder.
func (r *reminderCoordinator) Sync(ctx context.Context, b *booking.Booking) (degraded bool) {
	degraded = r.Release(ctx, b.ReminderJobID())
	b.SetReminderHandle(nil)

	if b.Status().IsTerminal() {
		return degraded
	}
	runAt := b.Start().Add(-ReminderLead)
	if !runAt.After(r.clock.Now()) {
		return degraded
	}

	jobID, err := r.scheduler.Schedule(ctx, b.ID(), runAt)
	if err != nil {
		r.logger.Warn("reminder scheduling failed, booking proceeds without reminder",
			slog.String("booking_id", b.ID().String()),
			slog.String("error", err.Error()),
		)
		return true
	}
	b.SetReminderHandle(&jobID)
	return degraded
}

// Release best-effort cancels a reminder job. A job that no longer exists
// counts as cancelled. Returns true when the cancel failed and the job may
// still fire.
func (r *reminderCoordinator) Release(ctx context.Context, jobID *string) (degraded bool) {
	if jobID == nil {
		return false
	}
	if err := r.scheduler.Cancel(ctx, *jobID); err != nil && !errors.Is(err, ErrReminderJobNotFound) {
		r.logger.Warn("failed to cancel reminder job",
			slog.String("job_id", *jobID),
			slog.String("error", err.Error()),
		)
		return true
	}
	return false
}
