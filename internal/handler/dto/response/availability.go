package response

import (
	"time"

	"fieldservice/internal/usecase/queries"

	"github.com/google/uuid"
)

type WindowResponse struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

type TechnicianAvailabilityResponse struct {
	TechnicianID   uuid.UUID        `json:"technicianId"`
	TechnicianName string           `json:"technicianName"`
	Windows        []WindowResponse `json:"windows"`
}

type AgendaEntryResponse struct {
	Start  time.Time `json:"start"`
	End    time.Time `json:"end"`
	Kind   string    `json:"kind"`
	Reason string    `json:"reason,omitempty"`
}

type AgendaResponse struct {
	TechnicianID uuid.UUID             `json:"technicianId"`
	Day          time.Time             `json:"day"`
	Free         []WindowResponse      `json:"free"`
	Busy         []AgendaEntryResponse `json:"busy"`
}

type SlotResponse struct {
	ID           uuid.UUID `json:"id"`
	TechnicianID uuid.UUID `json:"technicianId"`
	Start        time.Time `json:"start"`
	End          time.Time `json:"end"`
}

type UnavailabilityResponse struct {
	ID           uuid.UUID `json:"id"`
	TechnicianID uuid.UUID `json:"technicianId"`
	Start        time.Time `json:"start"`
	End          time.Time `json:"end"`
	Reason       string    `json:"reason,omitempty"`
}

func FromAvailabilityView(v *queries.TechnicianAvailabilityView) *TechnicianAvailabilityResponse {
	return &TechnicianAvailabilityResponse{
		TechnicianID:   v.TechnicianID,
		TechnicianName: v.TechnicianName,
		Windows:        windowsFromViews(v.Windows),
	}
}

func FromAgendaView(v *queries.AgendaView) *AgendaResponse {
	busy := make([]AgendaEntryResponse, 0, len(v.Busy))
	for _, e := range v.Busy {
		busy = append(busy, AgendaEntryResponse{Start: e.Start, End: e.End, Kind: e.Kind, Reason: e.Reason})
	}
	return &AgendaResponse{
		TechnicianID: v.TechnicianID,
		Day:          v.Day,
		Free:         windowsFromViews(v.Free),
		Busy:         busy,
	}
}

func FromSlotView(v *queries.SlotView) *SlotResponse {
	return &SlotResponse{ID: v.ID, TechnicianID: v.TechnicianID, Start: v.Start, End: v.End}
}

func FromUnavailabilityView(v *queries.UnavailabilityView) *UnavailabilityResponse {
	return &UnavailabilityResponse{ID: v.ID, TechnicianID: v.TechnicianID, Start: v.Start, End: v.End, Reason: v.Reason}
}

func windowsFromViews(ws []queries.AvailabilityWindowView) []WindowResponse {
	out := make([]WindowResponse, 0, len(ws))
	for _, w := range ws {
		out = append(out, WindowResponse{Start: w.Start, End: w.End})
	}
	return out
}
