//go:build unit

package api_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"fieldservice/internal/handler/api"
	reqdto "fieldservice/internal/handler/dto/request"
	resdto "fieldservice/internal/handler/dto/response"
	"fieldservice/internal/handler/middleware"
	"fieldservice/internal/pkg/errs"
	"fieldservice/internal/usecase/commands"
	"fieldservice/internal/usecase/queries"
	"fieldservice/tests/common/builder"
	"fieldservice/tests/common/httptest"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
)

// stubBookingCommands dispatches to per-test funcs; unset funcs panic so a
// test can never silently hit the wrong operation.
type stubBookingCommands struct {
	createFn     func(ctx context.Context, req reqdto.CreateBookingRequest, userID uuid.UUID) (*commands.CreateBookingResult, error)
	cancelFn     func(ctx context.Context, bookingID, userID uuid.UUID) (*commands.MutationResult, error)
	completeFn   func(ctx context.Context, bookingID uuid.UUID, req reqdto.CompleteBookingRequest) (*commands.MutationResult, error)
	rescheduleFn func(ctx context.Context, bookingID uuid.UUID, req reqdto.RescheduleBookingRequest) (*commands.MutationResult, error)
	advanceFn    func(ctx context.Context, bookingID uuid.UUID, req reqdto.AdvanceBookingRequest) (*commands.MutationResult, error)
	notesFn      func(ctx context.Context, bookingID uuid.UUID, req reqdto.UpdateBookingNotesRequest) (*commands.MutationResult, error)
}

func (s *stubBookingCommands) CreateBooking(ctx context.Context, req reqdto.CreateBookingRequest, userID uuid.UUID) (*commands.CreateBookingResult, error) {
	return s.createFn(ctx, req, userID)
}

func (s *stubBookingCommands) CancelBooking(ctx context.Context, bookingID, userID uuid.UUID) (*commands.MutationResult, error) {
	return s.cancelFn(ctx, bookingID, userID)
}

func (s *stubBookingCommands) CompleteBooking(ctx context.Context, bookingID uuid.UUID, req reqdto.CompleteBookingRequest) (*commands.MutationResult, error) {
	return s.completeFn(ctx, bookingID, req)
}

func (s *stubBookingCommands) RescheduleBooking(ctx context.Context, bookingID uuid.UUID, req reqdto.RescheduleBookingRequest) (*commands.MutationResult, error) {
	return s.rescheduleFn(ctx, bookingID, req)
}

func (s *stubBookingCommands) AdvanceBookingStatus(ctx context.Context, bookingID uuid.UUID, req reqdto.AdvanceBookingRequest) (*commands.MutationResult, error) {
	return s.advanceFn(ctx, bookingID, req)
}

func (s *stubBookingCommands) UpdateBookingNotes(ctx context.Context, bookingID uuid.UUID, req reqdto.UpdateBookingNotesRequest) (*commands.MutationResult, error) {
	return s.notesFn(ctx, bookingID, req)
}

type stubBookingQueries struct {
	getByIDFn    func(ctx context.Context, id uuid.UUID) (*queries.BookingView, error)
	listByUserFn func(ctx context.Context, userID uuid.UUID) ([]queries.BookingView, error)
}

func (s *stubBookingQueries) GetByID(ctx context.Context, id uuid.UUID) (*queries.BookingView, error) {
	return s.getByIDFn(ctx, id)
}

func (s *stubBookingQueries) ListByUser(ctx context.Context, userID uuid.UUID) ([]queries.BookingView, error) {
	return s.listByUserFn(ctx, userID)
}

type BookingHandlerTestSuite struct {
	suite.Suite
	router   *gin.Engine
	commands *stubBookingCommands
	queries  *stubBookingQueries
	userID   uuid.UUID
}

func TestBookingHandlerSuite(t *testing.T) {
	suite.Run(t, new(BookingHandlerTestSuite))
}

func (s *BookingHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	s.router = gin.New()
	s.commands = &stubBookingCommands{}
	s.queries = &stubBookingQueries{}
	s.userID = uuid.New()

	handler := api.NewBookingHandler(s.commands, s.queries)
	group := s.router.Group("/bookings", middleware.RequireUser())
	group.POST("", handler.Create)
	group.GET("", handler.ListMine)
	group.GET("/:id", handler.GetByID)
	group.POST("/:id/cancel", handler.Cancel)
	group.POST("/:id/complete", handler.Complete)
	group.POST("/:id/reschedule", handler.Reschedule)
	group.POST("/:id/advance", handler.Advance)
	group.PATCH("/:id/notes", handler.UpdateNotes)
}

func (s *BookingHandlerTestSuite) sampleView() *queries.BookingView {
	start := builder.BaseTime.Add(48 * time.Hour)
	return &queries.BookingView{
		ID:              uuid.New(),
		UserID:          s.userID,
		TechnicianID:    uuid.New(),
		CategoryID:      uuid.New(),
		IssueID:         uuid.New(),
		Status:          "PendingTechnicianConfirmation",
		Start:           start,
		End:             start.Add(time.Hour),
		EstimatedCents:  12500,
		ClientRequestID: "req-001",
	}
}

func (s *BookingHandlerTestSuite) createBody() map[string]any {
	start := builder.BaseTime.Add(48 * time.Hour)
	return map[string]any{
		"technicianId": uuid.New().String(),
		"categoryId":   uuid.New().String(),
		"issueId":      uuid.New().String(),
		"start":        start.Format(time.RFC3339),
		"end":          start.Add(time.Hour).Format(time.RFC3339),
		"items": []map[string]any{
			{"serviceItemId": uuid.New().String(), "quantity": 1, "unitPriceCents": 12500},
		},
		"clientRequestId": "req-001",
	}
}

func (s *BookingHandlerTestSuite) TestCreate_Returns201() {
	view := s.sampleView()
	s.commands.createFn = func(_ context.Context, req reqdto.CreateBookingRequest, userID uuid.UUID) (*commands.CreateBookingResult, error) {
		s.Equal(s.userID, userID)
		s.Equal("req-001", req.ClientRequestID)
		return &commands.CreateBookingResult{Booking: view}, nil
	}

	w := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/bookings", s.createBody(), s.userID.String())

	var got resdto.MutatedBookingResponse
	httptest.AssertSuccessResponse(s.T(), w, http.StatusCreated, &got)
	s.Equal(view.ID, got.ID)
	s.False(got.ReminderDegraded)
}

func (s *BookingHandlerTestSuite) TestCreate_ReplayReturns200() {
	view := s.sampleView()
	s.commands.createFn = func(_ context.Context, _ reqdto.CreateBookingRequest, _ uuid.UUID) (*commands.CreateBookingResult, error) {
		return &commands.CreateBookingResult{Booking: view, IsReplayed: true}, nil
	}

	w := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/bookings", s.createBody(), s.userID.String())

	var got resdto.MutatedBookingResponse
	httptest.AssertSuccessResponse(s.T(), w, http.StatusOK, &got)
	s.Equal(view.ID, got.ID)
}

func (s *BookingHandlerTestSuite) TestCreate_DegradedReminderIsSurfaced() {
	view := s.sampleView()
	s.commands.createFn = func(_ context.Context, _ reqdto.CreateBookingRequest, _ uuid.UUID) (*commands.CreateBookingResult, error) {
		return &commands.CreateBookingResult{Booking: view, ReminderDegraded: true}, nil
	}

	w := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/bookings", s.createBody(), s.userID.String())

	var got resdto.MutatedBookingResponse
	httptest.AssertSuccessResponse(s.T(), w, http.StatusCreated, &got)
	s.True(got.ReminderDegraded)
}

func (s *BookingHandlerTestSuite) TestCreate_MissingIdentityHeader() {
	w := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/bookings", s.createBody(), "")
	httptest.AssertErrorResponse(s.T(), w, http.StatusUnauthorized, "")
}

func (s *BookingHandlerTestSuite) TestCreate_MissingItemsRejected() {
	body := s.createBody()
	delete(body, "items")

	w := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/bookings", body, s.userID.String())
	httptest.AssertErrorResponse(s.T(), w, http.StatusBadRequest, "Invalid request format")
}

func (s *BookingHandlerTestSuite) TestCreate_ConflictMapsTo409() {
	s.commands.createFn = func(_ context.Context, _ reqdto.CreateBookingRequest, _ uuid.UUID) (*commands.CreateBookingResult, error) {
		return nil, errs.ErrSchedulingConflict
	}

	w := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/bookings", s.createBody(), s.userID.String())
	httptest.AssertErrorResponse(s.T(), w, http.StatusConflict, "conflicts")
}

func (s *BookingHandlerTestSuite) TestCreate_NoAvailabilityMapsTo422() {
	s.commands.createFn = func(_ context.Context, _ reqdto.CreateBookingRequest, _ uuid.UUID) (*commands.CreateBookingResult, error) {
		return nil, errs.ErrNoCoveringAvailability
	}

	w := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/bookings", s.createBody(), s.userID.String())
	httptest.AssertErrorResponse(s.T(), w, http.StatusUnprocessableEntity, "No availability window")
}

func (s *BookingHandlerTestSuite) TestGetByID() {
	view := s.sampleView()
	s.queries.getByIDFn = func(_ context.Context, id uuid.UUID) (*queries.BookingView, error) {
		s.Equal(view.ID, id)
		return view, nil
	}

	w := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/bookings/"+view.ID.String(), nil, s.userID.String())

	var got resdto.BookingResponse
	httptest.AssertSuccessResponse(s.T(), w, http.StatusOK, &got)
	s.Equal(view.ID, got.ID)
}

func (s *BookingHandlerTestSuite) TestGetByID_NotFound() {
	s.queries.getByIDFn = func(_ context.Context, _ uuid.UUID) (*queries.BookingView, error) {
		return nil, errs.ErrBookingNotFound
	}

	w := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/bookings/"+uuid.NewString(), nil, s.userID.String())
	httptest.AssertErrorResponse(s.T(), w, http.StatusNotFound, "Booking not found")
}

func (s *BookingHandlerTestSuite) TestGetByID_BadID() {
	w := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/bookings/not-a-uuid", nil, s.userID.String())
	httptest.AssertErrorResponse(s.T(), w, http.StatusBadRequest, "Invalid booking id")
}

func (s *BookingHandlerTestSuite) TestListMine() {
	view := s.sampleView()
	s.queries.listByUserFn = func(_ context.Context, userID uuid.UUID) ([]queries.BookingView, error) {
		s.Equal(s.userID, userID)
		return []queries.BookingView{*view}, nil
	}

	w := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/bookings", nil, s.userID.String())

	var got []resdto.BookingResponse
	httptest.AssertSuccessResponse(s.T(), w, http.StatusOK, &got)
	s.Len(got, 1)
}

func (s *BookingHandlerTestSuite) TestCancel_WindowViolationMapsTo422() {
	s.commands.cancelFn = func(_ context.Context, _, _ uuid.UUID) (*commands.MutationResult, error) {
		return nil, errs.ErrCancellationWindowViolation
	}

	w := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/bookings/"+uuid.NewString()+"/cancel", nil, s.userID.String())
	httptest.AssertErrorResponse(s.T(), w, http.StatusUnprocessableEntity, "Too close")
}

func (s *BookingHandlerTestSuite) TestComplete_EmptyBodyAllowed() {
	view := s.sampleView()
	view.Status = "Completed"
	s.commands.completeFn = func(_ context.Context, _ uuid.UUID, req reqdto.CompleteBookingRequest) (*commands.MutationResult, error) {
		s.Nil(req.ActualEnd)
		return &commands.MutationResult{Booking: view}, nil
	}

	w := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/bookings/"+view.ID.String()+"/complete", nil, s.userID.String())

	var got resdto.BookingResponse
	httptest.AssertSuccessResponse(s.T(), w, http.StatusOK, &got)
	s.Equal("Completed", got.Status)
}

func (s *BookingHandlerTestSuite) TestComplete_IllegalStateMapsTo409() {
	s.commands.completeFn = func(_ context.Context, _ uuid.UUID, _ reqdto.CompleteBookingRequest) (*commands.MutationResult, error) {
		return nil, errs.ErrIllegalStateTransition
	}

	w := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/bookings/"+uuid.NewString()+"/complete", nil, s.userID.String())
	httptest.AssertErrorResponse(s.T(), w, http.StatusConflict, "current state")
}

func (s *BookingHandlerTestSuite) TestReschedule() {
	view := s.sampleView()
	s.commands.rescheduleFn = func(_ context.Context, id uuid.UUID, req reqdto.RescheduleBookingRequest) (*commands.MutationResult, error) {
		s.Equal(view.ID, id)
		s.Nil(req.TechnicianID)
		return &commands.MutationResult{Booking: view}, nil
	}

	start := builder.BaseTime.Add(72 * time.Hour)
	body := map[string]any{
		"start": start.Format(time.RFC3339),
		"end":   start.Add(time.Hour).Format(time.RFC3339),
	}
	w := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/bookings/"+view.ID.String()+"/reschedule", body, s.userID.String())

	var got resdto.MutatedBookingResponse
	httptest.AssertSuccessResponse(s.T(), w, http.StatusOK, &got)
	s.Equal(view.ID, got.ID)
}

func (s *BookingHandlerTestSuite) TestAdvance() {
	view := s.sampleView()
	view.Status = "Confirmed"
	s.commands.advanceFn = func(_ context.Context, id uuid.UUID, req reqdto.AdvanceBookingRequest) (*commands.MutationResult, error) {
		s.Equal(view.ID, id)
		s.Equal("Confirmed", req.Status)
		return &commands.MutationResult{Booking: view}, nil
	}

	body := map[string]any{"status": "Confirmed"}
	w := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/bookings/"+view.ID.String()+"/advance", body, s.userID.String())

	var got resdto.BookingResponse
	httptest.AssertSuccessResponse(s.T(), w, http.StatusOK, &got)
	s.Equal("Confirmed", got.Status)
}

func (s *BookingHandlerTestSuite) TestAdvance_IllegalStepMapsTo409() {
	s.commands.advanceFn = func(_ context.Context, _ uuid.UUID, _ reqdto.AdvanceBookingRequest) (*commands.MutationResult, error) {
		return nil, errs.ErrIllegalStateTransition
	}

	body := map[string]any{"status": "InProgress"}
	w := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/bookings/"+uuid.NewString()+"/advance", body, s.userID.String())
	httptest.AssertErrorResponse(s.T(), w, http.StatusConflict, "current state")
}

func (s *BookingHandlerTestSuite) TestAdvance_MissingStatusRejected() {
	body := map[string]any{}
	w := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/bookings/"+uuid.NewString()+"/advance", body, s.userID.String())
	httptest.AssertErrorResponse(s.T(), w, http.StatusBadRequest, "Invalid request format")
}

func (s *BookingHandlerTestSuite) TestUpdateNotes() {
	view := s.sampleView()
	view.Notes = "bring spare filter"
	s.commands.notesFn = func(_ context.Context, _ uuid.UUID, req reqdto.UpdateBookingNotesRequest) (*commands.MutationResult, error) {
		s.Equal("bring spare filter", req.Notes)
		return &commands.MutationResult{Booking: view}, nil
	}

	body := map[string]any{"notes": "bring spare filter"}
	w := httptest.PerformRequest(s.T(), s.router, http.MethodPatch, "/bookings/"+view.ID.String()+"/notes", body, s.userID.String())

	var got resdto.BookingResponse
	httptest.AssertSuccessResponse(s.T(), w, http.StatusOK, &got)
	s.Equal("bring spare filter", got.Notes)
}
