package api

import (
	"errors"
	"net/http"

	reqdto "fieldservice/internal/handler/dto/request"
	resdto "fieldservice/internal/handler/dto/response"
	"fieldservice/internal/handler/httperr"
	"fieldservice/internal/handler/middleware"
	"fieldservice/internal/pkg/errs"
	"fieldservice/internal/usecase/commands"
	"fieldservice/internal/usecase/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type BookingHandler struct {
	bookingCommands commands.BookingCommands
	bookingQueries  queries.BookingQueries
}

func NewBookingHandler(bookingCommands commands.BookingCommands, bookingQueries queries.BookingQueries) *BookingHandler {
	return &BookingHandler{
		bookingCommands: bookingCommands,
		bookingQueries:  bookingQueries,
	}
}

// @Summary Create booking
// @Description Create a booking; replaying the same clientRequestId returns the original booking
// @Tags bookings
// @Accept json
// @Produce json
// @Param X-User-ID header string true "Caller user id"
// @Param request body reqdto.CreateBookingRequest true "Booking request"
// @Success 201 {object} resdto.MutatedBookingResponse
// @Success 200 {object} resdto.MutatedBookingResponse "Replayed"
// @Failure 400 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Failure 422 {object} httperr.Response
// @Router /bookings [post]
func (h *BookingHandler) Create(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusInternalServerError, errs.New("missing user in context"), "Internal server error", nil)
		return
	}

	var req reqdto.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request format", nil)
		return
	}

	result, err := h.bookingCommands.CreateBooking(c.Request.Context(), req, userID)
	if err != nil {
		abortBookingError(c, err)
		return
	}

	status := http.StatusCreated
	if result.IsReplayed {
		status = http.StatusOK
	}
	c.JSON(status, resdto.FromMutationResult(result.Booking, result.ReminderDegraded))
}

// @Summary Get booking
// @Tags bookings
// @Produce json
// @Param id path string true "Booking id"
// @Success 200 {object} resdto.BookingResponse
// @Failure 404 {object} httperr.Response
// @Router /bookings/{id} [get]
func (h *BookingHandler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid booking id", nil)
		return
	}

	view, err := h.bookingQueries.GetByID(c.Request.Context(), id)
	if err != nil {
		abortBookingError(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromBookingView(view))
}

// @Summary List caller's bookings
// @Tags bookings
// @Produce json
// @Param X-User-ID header string true "Caller user id"
// @Success 200 {array} resdto.BookingResponse
// @Router /bookings [get]
func (h *BookingHandler) ListMine(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusInternalServerError, errs.New("missing user in context"), "Internal server error", nil)
		return
	}

	views, err := h.bookingQueries.ListByUser(c.Request.Context(), userID)
	if err != nil {
		abortBookingError(c, err)
		return
	}

	out := make([]resdto.BookingResponse, 0, len(views))
	for i := range views {
		out = append(out, *resdto.FromBookingView(&views[i]))
	}
	c.JSON(http.StatusOK, out)
}

// @Summary Cancel booking
// @Description Cancellation is rejected inside the 24h window before start
// @Tags bookings
// @Produce json
// @Param X-User-ID header string true "Caller user id"
// @Param id path string true "Booking id"
// @Success 200 {object} resdto.MutatedBookingResponse
// @Failure 404 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Failure 422 {object} httperr.Response
// @Router /bookings/{id}/cancel [post]
func (h *BookingHandler) Cancel(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusInternalServerError, errs.New("missing user in context"), "Internal server error", nil)
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid booking id", nil)
		return
	}

	result, err := h.bookingCommands.CancelBooking(c.Request.Context(), id, userID)
	if err != nil {
		abortBookingError(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromMutationResult(result.Booking, result.ReminderDegraded))
}

// @Summary Complete booking
// @Description Completing an already-completed booking is a no-op replay
// @Tags bookings
// @Accept json
// @Produce json
// @Param id path string true "Booking id"
// @Param request body reqdto.CompleteBookingRequest false "Optional actual end"
// @Success 200 {object} resdto.MutatedBookingResponse
// @Failure 404 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Router /bookings/{id}/complete [post]
func (h *BookingHandler) Complete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid booking id", nil)
		return
	}

	var req reqdto.CompleteBookingRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request format", nil)
			return
		}
	}

	result, err := h.bookingCommands.CompleteBooking(c.Request.Context(), id, req)
	if err != nil {
		abortBookingError(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromMutationResult(result.Booking, result.ReminderDegraded))
}

// @Summary Reschedule booking
// @Description Moves the booking window (and optionally the technician); status is unchanged
// @Tags bookings
// @Accept json
// @Produce json
// @Param id path string true "Booking id"
// @Param request body reqdto.RescheduleBookingRequest true "New window"
// @Success 200 {object} resdto.MutatedBookingResponse
// @Failure 400 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Failure 422 {object} httperr.Response
// @Router /bookings/{id}/reschedule [post]
func (h *BookingHandler) Reschedule(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid booking id", nil)
		return
	}

	var req reqdto.RescheduleBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request format", nil)
		return
	}

	result, err := h.bookingCommands.RescheduleBooking(c.Request.Context(), id, req)
	if err != nil {
		abortBookingError(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromMutationResult(result.Booking, result.ReminderDegraded))
}

// @Summary Advance booking status
// @Description Moves the booking one step forward (e.g. Confirmed -> OnTheWay); completion has its own endpoint
// @Tags bookings
// @Accept json
// @Produce json
// @Param id path string true "Booking id"
// @Param request body reqdto.AdvanceBookingRequest true "Target status"
// @Success 200 {object} resdto.BookingResponse
// @Failure 400 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Router /bookings/{id}/advance [post]
func (h *BookingHandler) Advance(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid booking id", nil)
		return
	}

	var req reqdto.AdvanceBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request format", nil)
		return
	}

	result, err := h.bookingCommands.AdvanceBookingStatus(c.Request.Context(), id, req)
	if err != nil {
		abortBookingError(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromBookingView(result.Booking))
}

// @Summary Update booking notes
// @Tags bookings
// @Accept json
// @Produce json
// @Param id path string true "Booking id"
// @Param request body reqdto.UpdateBookingNotesRequest true "Notes"
// @Success 200 {object} resdto.BookingResponse
// @Failure 404 {object} httperr.Response
// @Router /bookings/{id}/notes [patch]
func (h *BookingHandler) UpdateNotes(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid booking id", nil)
		return
	}

	var req reqdto.UpdateBookingNotesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request format", nil)
		return
	}

	result, err := h.bookingCommands.UpdateBookingNotes(c.Request.Context(), id, req)
	if err != nil {
		abortBookingError(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromBookingView(result.Booking))
}

func abortBookingError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, errs.ErrBookingNotFound):
		httperr.AbortWithError(c, http.StatusNotFound, err, "Booking not found", nil)
	case errors.Is(err, errs.ErrTechnicianNotFound):
		httperr.AbortWithError(c, http.StatusNotFound, err, "Technician not found", nil)
	case errors.Is(err, errs.ErrInvalidTimeRange):
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid time range", nil)
	case errors.Is(err, errs.ErrSchedulingConflict):
		httperr.AbortWithError(c, http.StatusConflict, err, "Time range conflicts with another booking", nil)
	case errors.Is(err, errs.ErrIllegalStateTransition):
		httperr.AbortWithError(c, http.StatusConflict, err, "Operation not allowed in the booking's current state", nil)
	case errors.Is(err, errs.ErrNoCoveringAvailability):
		httperr.AbortWithError(c, http.StatusUnprocessableEntity, err, "No availability window covers the requested range", nil)
	case errors.Is(err, errs.ErrCancellationWindowViolation):
		httperr.AbortWithError(c, http.StatusUnprocessableEntity, err, "Too close to the scheduled start to cancel", nil)
	default:
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
	}
}
