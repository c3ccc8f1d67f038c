package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	resdto "fieldservice/internal/handler/dto/response"
	"fieldservice/internal/handler/httperr"
	"fieldservice/internal/pkg/errs"
	"fieldservice/internal/usecase/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const defaultMinDurationMinutes = 60

type AvailabilityHandler struct {
	availability queries.AvailabilityQueries
}

func NewAvailabilityHandler(availability queries.AvailabilityQueries) *AvailabilityHandler {
	return &AvailabilityHandler{availability: availability}
}

// @Summary Technician availability for a day
// @Description Bookable windows for one technician on the given UTC day
// @Tags availability
// @Produce json
// @Param id path string true "Technician id"
// @Param day query string true "Day (YYYY-MM-DD)"
// @Param minDurationMinutes query int false "Minimum window duration in minutes (default 60)"
// @Success 200 {object} resdto.TechnicianAvailabilityResponse
// @Failure 404 {object} httperr.Response
// @Router /technicians/{id}/availability [get]
func (h *AvailabilityHandler) GetAvailability(c *gin.Context) {
	technicianID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid technician id", nil)
		return
	}
	day, minDuration, ok := h.parseDayQuery(c)
	if !ok {
		return
	}

	view, err := h.availability.GetAvailability(c.Request.Context(), technicianID, day, minDuration)
	if err != nil {
		abortAvailabilityError(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromAvailabilityView(view))
}

// @Summary Search availability across qualified technicians
// @Description Technicians skilled for the (category, issue) pair that have at least one bookable window
// @Tags availability
// @Produce json
// @Param categoryId query string true "Service category id"
// @Param issueId query string true "Service issue id"
// @Param day query string true "Day (YYYY-MM-DD)"
// @Param minDurationMinutes query int false "Minimum window duration in minutes (default 60)"
// @Success 200 {array} resdto.TechnicianAvailabilityResponse
// @Router /availability/search [get]
func (h *AvailabilityHandler) Search(c *gin.Context) {
	categoryID, err := uuid.Parse(c.Query("categoryId"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid categoryId", nil)
		return
	}
	issueID, err := uuid.Parse(c.Query("issueId"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid issueId", nil)
		return
	}
	day, minDuration, ok := h.parseDayQuery(c)
	if !ok {
		return
	}

	views, err := h.availability.Search(c.Request.Context(), categoryID, issueID, day, minDuration)
	if err != nil {
		abortAvailabilityError(c, err)
		return
	}

	out := make([]resdto.TechnicianAvailabilityResponse, 0, len(views))
	for i := range views {
		out = append(out, *resdto.FromAvailabilityView(&views[i]))
	}
	c.JSON(http.StatusOK, out)
}

// @Summary Technician day agenda
// @Description Free windows plus busy entries (bookings and unavailability) for one technician
// @Tags availability
// @Produce json
// @Param id path string true "Technician id"
// @Param day query string true "Day (YYYY-MM-DD)"
// @Success 200 {object} resdto.AgendaResponse
// @Failure 404 {object} httperr.Response
// @Router /technicians/{id}/agenda [get]
func (h *AvailabilityHandler) GetAgenda(c *gin.Context) {
	technicianID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid technician id", nil)
		return
	}
	day, err := parseDay(c.Query("day"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid day, expected YYYY-MM-DD", nil)
		return
	}

	view, err := h.availability.GetAgenda(c.Request.Context(), technicianID, day)
	if err != nil {
		abortAvailabilityError(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromAgendaView(view))
}

func (h *AvailabilityHandler) parseDayQuery(c *gin.Context) (time.Time, time.Duration, bool) {
	day, err := parseDay(c.Query("day"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid day, expected YYYY-MM-DD", nil)
		return time.Time{}, 0, false
	}

	minutes := defaultMinDurationMinutes
	if raw := c.Query("minDurationMinutes"); raw != "" {
		minutes, err = strconv.Atoi(raw)
		if err != nil || minutes <= 0 {
			httperr.AbortWithError(c, http.StatusBadRequest, errs.New("invalid minDurationMinutes"), "minDurationMinutes must be a positive integer", nil)
			return time.Time{}, 0, false
		}
	}
	return day, time.Duration(minutes) * time.Minute, true
}

func parseDay(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, errs.New("day is required")
	}
	day, err := time.ParseInLocation("2006-01-02", raw, time.UTC)
	if err != nil {
		return time.Time{}, errs.Wrap(err, "invalid day")
	}
	return day, nil
}

func abortAvailabilityError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, errs.ErrTechnicianNotFound):
		httperr.AbortWithError(c, http.StatusNotFound, err, "Technician not found", nil)
	default:
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
	}
}
