package schedule

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidWindow   = errors.New("window start must be before end")
	ErrSlotOverlap     = errors.New("slot overlaps an existing slot")
	ErrBlackoutOverlap = errors.New("unavailability overlaps an existing block")
)

// Slot is a technician's declared working-hour window. Slots are immutable
// once created; the update path is delete-and-recreate.
type Slot struct {
	ID           uuid.UUID
	TechnicianID uuid.UUID
	Start        time.Time
	End          time.Time
}

func NewSlot(technicianID uuid.UUID, start, end time.Time) (Slot, error) {
	if !start.Before(end) {
		return Slot{}, ErrInvalidWindow
	}
	return Slot{
		ID:           uuid.New(),
		TechnicianID: technicianID,
		Start:        start.UTC(),
		End:          end.UTC(),
	}, nil
}

func (s Slot) Interval() Interval {
	return Interval{Start: s.Start, End: s.End}
}

// Unavailability is an explicit blackout window overriding slot availability.
// Its lifecycle is independent of bookings.
type Unavailability struct {
	ID           uuid.UUID
	TechnicianID uuid.UUID
	Start        time.Time
	End          time.Time
	Reason       string
}

func NewUnavailability(technicianID uuid.UUID, start, end time.Time, reason string) (Unavailability, error) {
	if !start.Before(end) {
		return Unavailability{}, ErrInvalidWindow
	}
	return Unavailability{
		ID:           uuid.New(),
		TechnicianID: technicianID,
		Start:        start.UTC(),
		End:          end.UTC(),
		Reason:       reason,
	}, nil
}

func (u Unavailability) Interval() Interval {
	return Interval{Start: u.Start, End: u.End}
}

// CheckSlotOverlap rejects a candidate window that overlaps any existing slot
// for the same technician.
func CheckSlotOverlap(candidate Interval, existing []Slot) error {
	for _, s := range existing {
		if candidate.Overlaps(s.Interval()) {
			return ErrSlotOverlap
		}
	}
	return nil
}

// CheckUnavailabilityOverlap rejects a candidate blackout that overlaps any
// existing one for the same technician.
func CheckUnavailabilityOverlap(candidate Interval, existing []Unavailability) error {
	for _, u := range existing {
		if candidate.Overlaps(u.Interval()) {
			return ErrBlackoutOverlap
		}
	}
	return nil
}
