package shared

import (
	"context"
	"time"

	"fieldservice/internal/domain/booking"
	"fieldservice/internal/domain/schedule"

	"github.com/google/uuid"
)

// UnitOfWork is the write-side transaction boundary. Within runs fn inside a
// single committed transaction and retries on serialization failures, so a
// conflict check and the insert it guards always see the same snapshot.
type UnitOfWork interface {
	Within(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
	// CommandReads: pool-scoped reads for pre-transaction validation
	CommandReads() CommandReads
}

type Tx interface {
	Bookings() BookingRepository
	Slots() SlotRepository
	Unavailability() UnavailabilityRepository

	// LockTechnician serializes all conflict-check-and-insert sequences for
	// one technician. Operations on different technicians never contend.
	LockTechnician(ctx context.Context, technicianID uuid.UUID) error
}

type CommandReads interface {
	TechnicianByID(ctx context.Context, id uuid.UUID) (*TechnicianSnapshot, error)
	// BookingByClientRequest implements the idempotency lookup; returns a
	// repository NotFound error when no booking matches.
	BookingByClientRequest(ctx context.Context, userID uuid.UUID, clientRequestID string) (*BookingSnapshot, error)
}

type TechnicianSnapshot struct {
	ID   uuid.UUID
	Name string
}

type BookingSnapshot struct {
	ID     uuid.UUID
	UserID uuid.UUID
	Status string
	Start  time.Time
	End    time.Time
}

type BookingRepository interface {
	Create(ctx context.Context, b *booking.Booking) error
	// FindByID locks the row for the rest of the transaction.
	FindByID(ctx context.Context, id uuid.UUID) (*booking.Booking, error)
	// Update persists the mutable fields: technician, window, status, totals,
	// reminder handle, notes.
	Update(ctx context.Context, b *booking.Booking) error
	// IntervalsByTechnician returns non-cancelled booking ranges overlapping
	// [from, to), excluding excludeID when non-nil (reschedule re-validation).
	IntervalsByTechnician(ctx context.Context, technicianID uuid.UUID, from, to time.Time, excludeID *uuid.UUID) ([]schedule.Interval, error)
}

type SlotRepository interface {
	Create(ctx context.Context, s schedule.Slot) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListOverlapping(ctx context.Context, technicianID uuid.UUID, from, to time.Time) ([]schedule.Slot, error)
}

type UnavailabilityRepository interface {
	Create(ctx context.Context, u schedule.Unavailability) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListOverlapping(ctx context.Context, technicianID uuid.UUID, from, to time.Time) ([]schedule.Unavailability, error)
}
