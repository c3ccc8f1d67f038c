package queries

import (
	"time"

	"github.com/google/uuid"
)

type BookingItemView struct {
	ServiceItemID  uuid.UUID `json:"serviceItemId"`
	Quantity       int       `json:"quantity"`
	UnitPriceCents int64     `json:"unitPriceCents"`
	LineTotalCents int64     `json:"lineTotalCents"`
}

type BookingView struct {
	ID              uuid.UUID         `json:"id"`
	UserID          uuid.UUID         `json:"userId"`
	TechnicianID    uuid.UUID         `json:"technicianId"`
	CategoryID      uuid.UUID         `json:"categoryId"`
	IssueID         uuid.UUID         `json:"issueId"`
	Status          string            `json:"status"`
	Start           time.Time         `json:"start"`
	End             time.Time         `json:"end"`
	Items           []BookingItemView `json:"items"`
	EstimatedCents  int64             `json:"estimatedCents"`
	FinalCents      *int64            `json:"finalCents,omitempty"`
	Notes           string            `json:"notes"`
	ClientRequestID string            `json:"clientRequestId"`
	ReminderJobID   *string           `json:"-"`
	CreatedAt       time.Time         `json:"createdAt"`
	UpdatedAt       time.Time         `json:"updatedAt"`
}

type AvailabilityWindowView struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

type TechnicianAvailabilityView struct {
	TechnicianID   uuid.UUID                `json:"technicianId"`
	TechnicianName string                   `json:"technicianName"`
	Windows        []AvailabilityWindowView `json:"windows"`
}

type AgendaEntryView struct {
	Start  time.Time `json:"start"`
	End    time.Time `json:"end"`
	Kind   string    `json:"kind"`
	Reason string    `json:"reason,omitempty"`
}

// AgendaView is the dispatcher's day view: what is still bookable plus what
// occupies the technician.
type AgendaView struct {
	TechnicianID uuid.UUID                `json:"technicianId"`
	Day          time.Time                `json:"day"`
	Free         []AvailabilityWindowView `json:"free"`
	Busy         []AgendaEntryView        `json:"busy"`
}

type SlotView struct {
	ID           uuid.UUID `json:"id"`
	TechnicianID uuid.UUID `json:"technicianId"`
	Start        time.Time `json:"start"`
	End          time.Time `json:"end"`
}

type UnavailabilityView struct {
	ID           uuid.UUID `json:"id"`
	TechnicianID uuid.UUID `json:"technicianId"`
	Start        time.Time `json:"start"`
	End          time.Time `json:"end"`
	Reason       string    `json:"reason,omitempty"`
}
