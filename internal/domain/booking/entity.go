package booking

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// CancellationCutoff is the fixed window before the scheduled start inside
// which a booking may no longer be cancelled.
const CancellationCutoff = 24 * time.Hour

var (
	ErrInvalidTimeRange         = errors.New("start must be before end")
	ErrStartInPast              = errors.New("start time cannot be in the past")
	ErrBookingCancelled         = errors.New("booking is cancelled")
	ErrAlreadyCancelled         = errors.New("booking is already cancelled")
	ErrInsideCancellationWindow = errors.New("inside cancellation cutoff window")
	ErrActualEndBeforeStart     = errors.New("actual end precedes scheduled start")
	ErrInvalidStatusAdvance     = errors.New("status cannot advance to the requested state")
)

// Booking is the central aggregate. It is mutated only through the command
// methods below; cancellation is a status transition, never a delete.
//
// Invariant: reminderJobID is non-nil exactly while a future reminder job is
// outstanding with the external scheduler.
type Booking struct {
	id                uuid.UUID
	userID            uuid.UUID
	technicianID      uuid.UUID
	serviceCategoryID uuid.UUID
	serviceIssueID    uuid.UUID
	start             time.Time
	end               time.Time
	status            Status
	items             []Item
	estimatedCents    int64
	finalCents        *int64
	reminderJobID     *string
	clientRequestID   string
	notes             Notes
	createdAt         time.Time
	updatedAt         time.Time
}

// NewBooking creates a booking in PendingTechnicianConfirmation. The
// customer-confirmation state exists in the enum but is never the entry
// point of the create path.
func NewBooking(
	userID, technicianID, serviceCategoryID, serviceIssueID uuid.UUID,
	start, end time.Time,
	items []Item,
	clientRequestID string,
	notes Notes,
	now time.Time,
) (*Booking, error) {
	if !start.Before(end) {
		return nil, ErrInvalidTimeRange
	}
	if start.Before(now) {
		return nil, ErrStartInPast
	}

	return &Booking{
		id:                uuid.New(),
		userID:            userID,
		technicianID:      technicianID,
		serviceCategoryID: serviceCategoryID,
		serviceIssueID:    serviceIssueID,
		start:             start.UTC(),
		end:               end.UTC(),
		status:            StatusPendingTechnicianConfirmation,
		items:             items,
		estimatedCents:    SumItems(items),
		clientRequestID:   clientRequestID,
		notes:             notes,
	}, nil
}

func Reconstruct(
	id, userID, technicianID, serviceCategoryID, serviceIssueID uuid.UUID,
	start, end time.Time,
	status Status,
	items []Item,
	estimatedCents int64,
	finalCents *int64,
	reminderJobID *string,
	clientRequestID string,
	notes Notes,
	createdAt, updatedAt time.Time,
) *Booking {
	return &Booking{
		id:                id,
		userID:            userID,
		technicianID:      technicianID,
		serviceCategoryID: serviceCategoryID,
		serviceIssueID:    serviceIssueID,
		start:             start,
		end:               end,
		status:            status,
		items:             items,
		estimatedCents:    estimatedCents,
		finalCents:        finalCents,
		reminderJobID:     reminderJobID,
		clientRequestID:   clientRequestID,
		notes:             notes,
		createdAt:         createdAt,
		updatedAt:         updatedAt,
	}
}

// Cancel transitions to Cancelled. Legal from any state except Cancelled
// itself, and only while the scheduled start is at least CancellationCutoff
// away.
func (b *Booking) Cancel(now time.Time) error {
	if b.status == StatusCancelled {
		return ErrAlreadyCancelled
	}
	if b.start.Sub(now) < CancellationCutoff {
		return ErrInsideCancellationWindow
	}
	b.status = StatusCancelled
	b.reminderJobID = nil
	return nil
}

// Complete transitions to Completed. Completing an already completed booking
// is an idempotent no-op; the returned flag reports whether state changed.
// actualEnd, when supplied, overrides the scheduled end but may not precede
// the scheduled start.
func (b *Booking) Complete(actualEnd *time.Time) (changed bool, err error) {
	if b.status == StatusCancelled {
		return false, ErrBookingCancelled
	}
	if b.status == StatusCompleted {
		return false, nil
	}
	if actualEnd != nil {
		if actualEnd.Before(b.start) {
			return false, ErrActualEndBeforeStart
		}
		b.end = actualEnd.UTC()
	}
	final := SumItems(b.items)
	b.finalCents = &final
	b.status = StatusCompleted
	b.reminderJobID = nil
	return true, nil
}

// CanReschedule runs Reschedule's guards without mutating. Lifecycle and
// range failures are reported here, ahead of any conflict checking the
// caller does.
func (b *Booking) CanReschedule(start, end, now time.Time) error {
	if b.status == StatusCancelled {
		return ErrBookingCancelled
	}
	if !start.Before(end) {
		return ErrInvalidTimeRange
	}
	if start.Before(now) {
		return ErrStartInPast
	}
	return nil
}

// Reschedule moves the booking to a new technician/time range. Status is
// deliberately left untouched; only cancelled bookings are frozen.
func (b *Booking) Reschedule(technicianID uuid.UUID, start, end, now time.Time) error {
	if err := b.CanReschedule(start, end, now); err != nil {
		return err
	}
	b.technicianID = technicianID
	b.start = start.UTC()
	b.end = end.UTC()
	return nil
}

// Advance moves the booking one step forward along the confirmation
// progression. Completion is never reached through Advance; it carries its
// own transition in Complete.
func (b *Booking) Advance(next Status) error {
	if b.status == StatusCancelled {
		return ErrBookingCancelled
	}
	if next == StatusCompleted || !b.status.CanAdvanceTo(next) {
		return ErrInvalidStatusAdvance
	}
	b.status = next
	return nil
}

func (b *Booking) UpdateNotes(notes Notes) {
	b.notes = notes
}

// SetReminderHandle records the outstanding reminder job. Pass nil after a
// cancellation or when the computed fire time was already in the past.
func (b *Booking) SetReminderHandle(handle *string) {
	b.reminderJobID = handle
}

func (b *Booking) ID() uuid.UUID                { return b.id }
func (b *Booking) UserID() uuid.UUID            { return b.userID }
func (b *Booking) TechnicianID() uuid.UUID      { return b.technicianID }
func (b *Booking) ServiceCategoryID() uuid.UUID { return b.serviceCategoryID }
func (b *Booking) ServiceIssueID() uuid.UUID    { return b.serviceIssueID }
func (b *Booking) Start() time.Time             { return b.start }
func (b *Booking) End() time.Time               { return b.end }
func (b *Booking) Status() Status               { return b.status }
func (b *Booking) Items() []Item                { return b.items }
func (b *Booking) EstimatedCents() int64        { return b.estimatedCents }
func (b *Booking) FinalCents() *int64           { return b.finalCents }
func (b *Booking) ReminderJobID() *string       { return b.reminderJobID }
func (b *Booking) ClientRequestID() string      { return b.clientRequestID }
func (b *Booking) Notes() Notes                 { return b.notes }
func (b *Booking) CreatedAt() time.Time         { return b.createdAt }
func (b *Booking) UpdatedAt() time.Time         { return b.updatedAt }
