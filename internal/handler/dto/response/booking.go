package response

import (
	"time"

	"fieldservice/internal/usecase/queries"

	"github.com/google/uuid"
)

type BookingItemResponse struct {
	ServiceItemID  uuid.UUID `json:"serviceItemId"`
	Quantity       int       `json:"quantity"`
	UnitPriceCents int64     `json:"unitPriceCents"`
	LineTotalCents int64     `json:"lineTotalCents"`
}

type BookingResponse struct {
	ID             uuid.UUID             `json:"id"`
	UserID         uuid.UUID             `json:"userId"`
	TechnicianID   uuid.UUID             `json:"technicianId"`
	CategoryID     uuid.UUID             `json:"categoryId"`
	IssueID        uuid.UUID             `json:"issueId"`
	Status         string                `json:"status"`
	Start          time.Time             `json:"start"`
	End            time.Time             `json:"end"`
	Items          []BookingItemResponse `json:"items"`
	EstimatedCents int64                 `json:"estimatedCents"`
	FinalCents     *int64                `json:"finalCents,omitempty"`
	Notes          string                `json:"notes,omitempty"`
	CreatedAt      time.Time             `json:"createdAt"`
	UpdatedAt      time.Time             `json:"updatedAt"`
}

// MutatedBookingResponse decorates a booking with mutation metadata.
type MutatedBookingResponse struct {
	BookingResponse
	ReminderDegraded bool `json:"reminderDegraded,omitempty"`
}

func FromBookingView(v *queries.BookingView) *BookingResponse {
	items := make([]BookingItemResponse, 0, len(v.Items))
	for _, it := range v.Items {
		items = append(items, BookingItemResponse{
			ServiceItemID:  it.ServiceItemID,
			Quantity:       it.Quantity,
			UnitPriceCents: it.UnitPriceCents,
			LineTotalCents: it.LineTotalCents,
		})
	}
	return &BookingResponse{
		ID:             v.ID,
		UserID:         v.UserID,
		TechnicianID:   v.TechnicianID,
		CategoryID:     v.CategoryID,
		IssueID:        v.IssueID,
		Status:         v.Status,
		Start:          v.Start,
		End:            v.End,
		Items:          items,
		EstimatedCents: v.EstimatedCents,
		FinalCents:     v.FinalCents,
		Notes:          v.Notes,
		CreatedAt:      v.CreatedAt,
		UpdatedAt:      v.UpdatedAt,
	}
}

func FromMutationResult(v *queries.BookingView, reminderDegraded bool) *MutatedBookingResponse {
	return &MutatedBookingResponse{
		BookingResponse:  *FromBookingView(v),
		ReminderDegraded: reminderDegraded,
	}
}
