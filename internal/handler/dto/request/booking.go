package request

import (
	"time"

	"github.com/google/uuid"
)

type BookingItemRequest struct {
	ServiceItemID  uuid.UUID `json:"serviceItemId" binding:"required"`
	Quantity       int       `json:"quantity" binding:"required,gt=0"`
	UnitPriceCents int64     `json:"unitPriceCents" binding:"gte=0"`
}

type CreateBookingRequest struct {
	TechnicianID    uuid.UUID            `json:"technicianId" binding:"required"`
	CategoryID      uuid.UUID            `json:"categoryId" binding:"required"`
	IssueID         uuid.UUID            `json:"issueId" binding:"required"`
	Start           time.Time            `json:"start" binding:"required"`
	End             time.Time            `json:"end" binding:"required"`
	Items           []BookingItemRequest `json:"items" binding:"required,min=1,dive"`
	Notes           string               `json:"notes"`
	ClientRequestID string               `json:"clientRequestId" binding:"max=128"` // empty opts out of idempotency
}

type RescheduleBookingRequest struct {
	// TechnicianID is optional; omitted keeps the current assignee.
	TechnicianID *uuid.UUID `json:"technicianId"`
	Start        time.Time  `json:"start" binding:"required"`
	End          time.Time  `json:"end" binding:"required"`
}

type AdvanceBookingRequest struct {
	Status string `json:"status" binding:"required"`
}

type CompleteBookingRequest struct {
	ActualEnd *time.Time `json:"actualEnd"`
}

type UpdateBookingNotesRequest struct {
	Notes string `json:"notes" binding:"max=2000"`
}
