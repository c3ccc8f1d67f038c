package booking

import (
	"time"

	"github.com/google/uuid"
)

const (
	RoutingKeyCreated   = "booking.created"
	RoutingKeyCancelled = "booking.cancelled"
	RoutingKeyCompleted = "booking.completed"
	RoutingKeyUpdated   = "booking.updated"
)

const (
	UpdateReasonRescheduled    = "Rescheduled"
	UpdateReasonNotesUpdated   = "NotesUpdated"
	UpdateReasonStatusAdvanced = "StatusAdvanced"
)

// Event is the minimal payload downstream notification and reminder
// consumers need. One event per successful mutation, published only after
// the state change is durable.
type Event struct {
	RoutingKey   string    `json:"routing_key"`
	BookingID    uuid.UUID `json:"booking_id"`
	UserID       uuid.UUID `json:"user_id"`
	TechnicianID uuid.UUID `json:"technician_id"`
	ScheduledAt  time.Time `json:"scheduled_at"`
	Reason       string    `json:"reason,omitempty"`
	OccurredAt   time.Time `json:"occurred_at"`
}

func NewCreatedEvent(b *Booking, now time.Time) Event {
	return newEvent(RoutingKeyCreated, b, "", now)
}

func NewCancelledEvent(b *Booking, now time.Time) Event {
	return newEvent(RoutingKeyCancelled, b, "", now)
}

func NewCompletedEvent(b *Booking, now time.Time) Event {
	return newEvent(RoutingKeyCompleted, b, "", now)
}

func NewUpdatedEvent(b *Booking, reason string, now time.Time) Event {
	return newEvent(RoutingKeyUpdated, b, reason, now)
}

func newEvent(key string, b *Booking, reason string, now time.Time) Event {
	return Event{
		RoutingKey:   key,
		BookingID:    b.ID(),
		UserID:       b.UserID(),
		TechnicianID: b.TechnicianID(),
		ScheduledAt:  b.Start(),
		Reason:       reason,
		OccurredAt:   now,
	}
}
