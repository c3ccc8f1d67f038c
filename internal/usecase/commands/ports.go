package commands

import (
	"context"
	"time"

	"fieldservice/internal/domain/booking"
	"fieldservice/internal/pkg/errs"

	"github.com/google/uuid"
)

// ErrReminderJobNotFound is returned by ReminderScheduler.Cancel when the job
// has already fired or was deleted; callers treat it as success.
var ErrReminderJobNotFound = errs.New("reminder job not found")

// ReminderScheduler enqueues a delayed reminder for a booking and returns an
// opaque job handle that can later be cancelled.
type ReminderScheduler interface {
	Schedule(ctx context.Context, bookingID uuid.UUID, runAt time.Time) (string, error)
	Cancel(ctx context.Context, jobID string) error
}

// EventPublisher delivers domain events to downstream consumers. Publishing is
// fire-and-forget from the caller's perspective: failures are logged, never
// surfaced to the client.
type EventPublisher interface {
	Publish(ctx context.Context, event booking.Event) error
}
