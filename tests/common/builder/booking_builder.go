package builder

import (
	"time"

	"fieldservice/internal/domain/booking"

	"github.com/google/uuid"
)

// BaseTime is the fixed "now" test bookings are built against.
var BaseTime = time.Date(2025, 6, 2, 6, 0, 0, 0, time.UTC)

type BookingBuilder struct {
	UserID            uuid.UUID
	TechnicianID      uuid.UUID
	ServiceCategoryID uuid.UUID
	ServiceIssueID    uuid.UUID
	Start             time.Time
	End               time.Time
	Items             []booking.Item
	ClientRequestID   string
	Notes             string
	Now               time.Time
}

func NewBookingBuilder() *BookingBuilder {
	item, _ := booking.NewItem(uuid.New(), 1, 12500)
	return &BookingBuilder{
		UserID:            uuid.New(),
		TechnicianID:      uuid.New(),
		ServiceCategoryID: uuid.New(),
		ServiceIssueID:    uuid.New(),
		Start:             BaseTime.Add(48 * time.Hour),
		End:               BaseTime.Add(49 * time.Hour),
		Items:             []booking.Item{item},
		ClientRequestID:   "req-001",
		Notes:             "",
		Now:               BaseTime,
	}
}

func (b *BookingBuilder) With(mutate func(*BookingBuilder)) *BookingBuilder {
	if mutate != nil {
		mutate(b)
	}
	return b
}

func (b *BookingBuilder) WithWindow(start, end time.Time) *BookingBuilder {
	b.Start = start
	b.End = end
	return b
}

func (b *BookingBuilder) WithClientRequestID(id string) *BookingBuilder {
	b.ClientRequestID = id
	return b
}

func (b *BookingBuilder) BuildDomain() (*booking.Booking, error) {
	return booking.NewBooking(
		b.UserID,
		b.TechnicianID,
		b.ServiceCategoryID,
		b.ServiceIssueID,
		b.Start,
		b.End,
		b.Items,
		b.ClientRequestID,
		booking.NewNotes(b.Notes),
		b.Now,
	)
}

// MustBuild panics on validation failure; for tests whose subject is not
// construction itself.
func (b *BookingBuilder) MustBuild() *booking.Booking {
	bk, err := b.BuildDomain()
	if err != nil {
		panic(err)
	}
	return bk
}
