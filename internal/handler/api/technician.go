package api

import (
	"errors"
	"net/http"
	"time"

	reqdto "fieldservice/internal/handler/dto/request"
	resdto "fieldservice/internal/handler/dto/response"
	"fieldservice/internal/handler/httperr"
	"fieldservice/internal/pkg/errs"
	"fieldservice/internal/usecase/commands"
	"fieldservice/internal/usecase/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type TechnicianHandler struct {
	technicianCommands commands.TechnicianCommands
	availability       queries.AvailabilityQueries
}

func NewTechnicianHandler(technicianCommands commands.TechnicianCommands, availability queries.AvailabilityQueries) *TechnicianHandler {
	return &TechnicianHandler{
		technicianCommands: technicianCommands,
		availability:       availability,
	}
}

// @Summary Create availability slot
// @Tags technicians
// @Accept json
// @Produce json
// @Param id path string true "Technician id"
// @Param request body reqdto.CreateSlotRequest true "Slot window"
// @Success 201 {object} resdto.SlotResponse
// @Failure 404 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Router /technicians/{id}/slots [post]
func (h *TechnicianHandler) CreateSlot(c *gin.Context) {
	technicianID, ok := h.technicianParam(c)
	if !ok {
		return
	}

	var req reqdto.CreateSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request format", nil)
		return
	}

	view, err := h.technicianCommands.CreateSlot(c.Request.Context(), technicianID, req)
	if err != nil {
		abortTechnicianError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resdto.FromSlotView(view))
}

// @Summary List availability slots
// @Tags technicians
// @Produce json
// @Param id path string true "Technician id"
// @Param from query string false "Range start (YYYY-MM-DD, default today)"
// @Param to query string false "Range end (YYYY-MM-DD, default from+7d)"
// @Success 200 {array} resdto.SlotResponse
// @Router /technicians/{id}/slots [get]
func (h *TechnicianHandler) ListSlots(c *gin.Context) {
	technicianID, ok := h.technicianParam(c)
	if !ok {
		return
	}
	from, to, ok := h.rangeQuery(c)
	if !ok {
		return
	}

	views, err := h.availability.ListSlots(c.Request.Context(), technicianID, from, to)
	if err != nil {
		abortTechnicianError(c, err)
		return
	}
	out := make([]resdto.SlotResponse, 0, len(views))
	for i := range views {
		out = append(out, *resdto.FromSlotView(&views[i]))
	}
	c.JSON(http.StatusOK, out)
}

// @Summary Delete availability slot
// @Tags technicians
// @Param id path string true "Technician id"
// @Param slotId path string true "Slot id"
// @Success 204
// @Failure 404 {object} httperr.Response
// @Router /technicians/{id}/slots/{slotId} [delete]
func (h *TechnicianHandler) DeleteSlot(c *gin.Context) {
	technicianID, ok := h.technicianParam(c)
	if !ok {
		return
	}
	slotID, err := uuid.Parse(c.Param("slotId"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid slot id", nil)
		return
	}

	if err := h.technicianCommands.DeleteSlot(c.Request.Context(), technicianID, slotID); err != nil {
		abortTechnicianError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// @Summary Create unavailability block
// @Tags technicians
// @Accept json
// @Produce json
// @Param id path string true "Technician id"
// @Param request body reqdto.CreateUnavailabilityRequest true "Blackout window"
// @Success 201 {object} resdto.UnavailabilityResponse
// @Failure 404 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Router /technicians/{id}/unavailability [post]
func (h *TechnicianHandler) CreateUnavailability(c *gin.Context) {
	technicianID, ok := h.technicianParam(c)
	if !ok {
		return
	}

	var req reqdto.CreateUnavailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request format", nil)
		return
	}

	view, err := h.technicianCommands.CreateUnavailability(c.Request.Context(), technicianID, req)
	if err != nil {
		abortTechnicianError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resdto.FromUnavailabilityView(view))
}

// @Summary List unavailability blocks
// @Tags technicians
// @Produce json
// @Param id path string true "Technician id"
// @Param from query string false "Range start (YYYY-MM-DD, default today)"
// @Param to query string false "Range end (YYYY-MM-DD, default from+7d)"
// @Success 200 {array} resdto.UnavailabilityResponse
// @Router /technicians/{id}/unavailability [get]
func (h *TechnicianHandler) ListUnavailability(c *gin.Context) {
	technicianID, ok := h.technicianParam(c)
	if !ok {
		return
	}
	from, to, ok := h.rangeQuery(c)
	if !ok {
		return
	}

	views, err := h.availability.ListUnavailability(c.Request.Context(), technicianID, from, to)
	if err != nil {
		abortTechnicianError(c, err)
		return
	}
	out := make([]resdto.UnavailabilityResponse, 0, len(views))
	for i := range views {
		out = append(out, *resdto.FromUnavailabilityView(&views[i]))
	}
	c.JSON(http.StatusOK, out)
}

// @Summary Delete unavailability block
// @Tags technicians
// @Param id path string true "Technician id"
// @Param blockId path string true "Unavailability id"
// @Success 204
// @Failure 404 {object} httperr.Response
// @Router /technicians/{id}/unavailability/{blockId} [delete]
func (h *TechnicianHandler) DeleteUnavailability(c *gin.Context) {
	technicianID, ok := h.technicianParam(c)
	if !ok {
		return
	}
	blockID, err := uuid.Parse(c.Param("blockId"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid unavailability id", nil)
		return
	}

	if err := h.technicianCommands.DeleteUnavailability(c.Request.Context(), technicianID, blockID); err != nil {
		abortTechnicianError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *TechnicianHandler) technicianParam(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid technician id", nil)
		return uuid.Nil, false
	}
	return id, true
}

func (h *TechnicianHandler) rangeQuery(c *gin.Context) (time.Time, time.Time, bool) {
	from := time.Now().UTC().Truncate(24 * time.Hour)
	if raw := c.Query("from"); raw != "" {
		parsed, err := parseDay(raw)
		if err != nil {
			httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid from, expected YYYY-MM-DD", nil)
			return time.Time{}, time.Time{}, false
		}
		from = parsed
	}
	to := from.Add(7 * 24 * time.Hour)
	if raw := c.Query("to"); raw != "" {
		parsed, err := parseDay(raw)
		if err != nil {
			httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid to, expected YYYY-MM-DD", nil)
			return time.Time{}, time.Time{}, false
		}
		to = parsed.Add(24 * time.Hour)
	}
	return from, to, true
}

func abortTechnicianError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, errs.ErrTechnicianNotFound):
		httperr.AbortWithError(c, http.StatusNotFound, err, "Technician not found", nil)
	case errors.Is(err, errs.ErrSlotNotFound):
		httperr.AbortWithError(c, http.StatusNotFound, err, "Slot not found", nil)
	case errors.Is(err, errs.ErrUnavailabilityNotFound):
		httperr.AbortWithError(c, http.StatusNotFound, err, "Unavailability not found", nil)
	case errors.Is(err, errs.ErrInvalidTimeRange):
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid time range", nil)
	case errors.Is(err, errs.ErrSchedulingConflict):
		httperr.AbortWithError(c, http.StatusConflict, err, "Window overlaps an existing entry", nil)
	default:
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
	}
}
