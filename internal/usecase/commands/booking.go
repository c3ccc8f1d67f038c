package commands

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"fieldservice/internal/domain/booking"
	"fieldservice/internal/domain/schedule"
	reqdto "fieldservice/internal/handler/dto/request"
	"fieldservice/internal/infra"
	"fieldservice/internal/pkg/clock"
	"fieldservice/internal/pkg/errs"
	"fieldservice/internal/usecase/queries"
	"fieldservice/internal/usecase/shared"

	"github.com/google/uuid"
)

type CreateBookingResult struct {
	Booking *queries.BookingView
	// IsReplayed is true when the same (user, clientRequestId) pair already
	// produced a booking; the original is returned unchanged.
	IsReplayed bool
	// ReminderDegraded is true when the mutation succeeded but no reminder
	// could be scheduled.
	ReminderDegraded bool
}

type MutationResult struct {
	Booking          *queries.BookingView
	ReminderDegraded bool
}

type BookingCommands interface {
	CreateBooking(ctx context.Context, req reqdto.CreateBookingRequest, userID uuid.UUID) (*CreateBookingResult, error)
	CancelBooking(ctx context.Context, bookingID, userID uuid.UUID) (*MutationResult, error)
	CompleteBooking(ctx context.Context, bookingID uuid.UUID, req reqdto.CompleteBookingRequest) (*MutationResult, error)
	RescheduleBooking(ctx context.Context, bookingID uuid.UUID, req reqdto.RescheduleBookingRequest) (*MutationResult, error)
	AdvanceBookingStatus(ctx context.Context, bookingID uuid.UUID, req reqdto.AdvanceBookingRequest) (*MutationResult, error)
	UpdateBookingNotes(ctx context.Context, bookingID uuid.UUID, req reqdto.UpdateBookingNotesRequest) (*MutationResult, error)
}

type bookingUseCaseImpl struct {
	uow            shared.UnitOfWork
	bookingQueries queries.BookingQueries
	reminders      *reminderCoordinator
	publisher      EventPublisher
	clock          clock.Clock
	logger         *slog.Logger
}

func NewBookingUseCase(
	uow shared.UnitOfWork,
	bookingQueries queries.BookingQueries,
	scheduler ReminderScheduler,
	publisher EventPublisher,
	clk clock.Clock,
	logger *slog.Logger,
) BookingCommands {
	return &bookingUseCaseImpl{
		uow:            uow,
		bookingQueries: bookingQueries,
		reminders:      newReminderCoordinator(scheduler, clk, logger),
		publisher:      publisher,
		clock:          clk,
		logger:         logger,
	}
}

func (u *bookingUseCaseImpl) CreateBooking(ctx context.Context, req reqdto.CreateBookingRequest, userID uuid.UUID) (*CreateBookingResult, error) {
	// An empty clientRequestId opts out of idempotency.
	if req.ClientRequestID != "" {
		if replay, err := u.findReplay(ctx, userID, req.ClientRequestID); err != nil {
			return nil, err
		} else if replay != nil {
			return replay, nil
		}
	}

	if _, err := u.uow.CommandReads().TechnicianByID(ctx, req.TechnicianID); err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, errs.Mark(err, errs.ErrTechnicianNotFound)
		}
		return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}

	items := make([]booking.Item, 0, len(req.Items))
	for _, it := range req.Items {
		item, err := booking.NewItem(it.ServiceItemID, it.Quantity, it.UnitPriceCents)
		if err != nil {
			return nil, mapLifecycleErr(err)
		}
		items = append(items, item)
	}

	b, err := booking.NewBooking(
		userID, req.TechnicianID, req.CategoryID, req.IssueID,
		req.Start, req.End,
		items,
		req.ClientRequestID,
		booking.NewNotes(req.Notes),
		u.clock.Now(),
	)
	if err != nil {
		return nil, mapLifecycleErr(err)
	}

	err = u.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		if err := tx.LockTechnician(ctx, b.TechnicianID()); err != nil {
			return errs.Mark(err, errs.ErrDatabaseOperationFailed)
		}
		if err := validatePlacement(ctx, tx, b.TechnicianID(), b.Start(), b.End(), nil); err != nil {
			return err
		}
		return tx.Bookings().Create(ctx, b)
	})
	if err != nil {
		switch {
		case infra.IsKind(err, infra.KindDuplicateKey):
			// Lost the idempotency race; the winner's row is authoritative.
			replay, rerr := u.findReplay(ctx, userID, req.ClientRequestID)
			if rerr != nil || replay == nil {
				return nil, errs.Mark(err, errs.ErrIdempotencyCheckFailed)
			}
			return replay, nil
		case infra.IsKind(err, infra.KindConflict):
			return nil, errs.Mark(err, errs.ErrSchedulingConflict)
		case infra.IsKind(err, infra.KindDBFailure):
			return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
		default:
			return nil, err
		}
	}

	degraded := u.reminders.Sync(ctx, b)
	if b.ReminderJobID() != nil {
		degraded = u.persistReminderHandle(ctx, b) || degraded
	}

	u.publish(ctx, booking.NewCreatedEvent(b, u.clock.Now()))

	view, err := u.bookingQueries.GetByID(ctx, b.ID())
	if err != nil {
		return nil, err
	}
	return &CreateBookingResult{Booking: view, ReminderDegraded: degraded}, nil
}

// findReplay returns the result of a previous CreateBooking with the same
// clientRequestId, or nil when this is a fresh request.
func (u *bookingUseCaseImpl) findReplay(ctx context.Context, userID uuid.UUID, clientRequestID string) (*CreateBookingResult, error) {
	snap, err := u.uow.CommandReads().BookingByClientRequest(ctx, userID, clientRequestID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, nil
		}
		return nil, errs.Mark(err, errs.ErrIdempotencyCheckFailed)
	}
	view, err := u.bookingQueries.GetByID(ctx, snap.ID)
	if err != nil {
		return nil, err
	}
	return &CreateBookingResult{Booking: view, IsReplayed: true}, nil
}

func (u *bookingUseCaseImpl) CancelBooking(ctx context.Context, bookingID, userID uuid.UUID) (*MutationResult, error) {
	var b *booking.Booking
	var oldHandle *string

	err := u.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		var err error
		b, err = tx.Bookings().FindByID(ctx, bookingID)
		if err != nil {
			return err
		}
		if b.UserID() != userID {
			return errs.Mark(errs.New("booking belongs to another user"), errs.ErrBookingNotFound)
		}
		oldHandle = b.ReminderJobID()
		if err := b.Cancel(u.clock.Now()); err != nil {
			return mapLifecycleErr(err)
		}
		return tx.Bookings().Update(ctx, b)
	})
	if err != nil {
		return nil, mapRepoErr(err)
	}

	degraded := u.reminders.Release(ctx, oldHandle)
	u.publish(ctx, booking.NewCancelledEvent(b, u.clock.Now()))

	view, err := u.bookingQueries.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	return &MutationResult{Booking: view, ReminderDegraded: degraded}, nil
}

func (u *bookingUseCaseImpl) CompleteBooking(ctx context.Context, bookingID uuid.UUID, req reqdto.CompleteBookingRequest) (*MutationResult, error) {
	var b *booking.Booking
	var oldHandle *string
	var changed bool

	err := u.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		var err error
		b, err = tx.Bookings().FindByID(ctx, bookingID)
		if err != nil {
			return err
		}
		oldHandle = b.ReminderJobID()
		changed, err = b.Complete(req.ActualEnd)
		if err != nil {
			return mapLifecycleErr(err)
		}
		if !changed {
			return nil
		}
		return tx.Bookings().Update(ctx, b)
	})
	if err != nil {
		return nil, mapRepoErr(err)
	}

	var degraded bool
	if changed {
		degraded = u.reminders.Release(ctx, oldHandle)
		u.publish(ctx, booking.NewCompletedEvent(b, u.clock.Now()))
	}

	view, err := u.bookingQueries.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	return &MutationResult{Booking: view, ReminderDegraded: degraded}, nil
}

func (u *bookingUseCaseImpl) RescheduleBooking(ctx context.Context, bookingID uuid.UUID, req reqdto.RescheduleBookingRequest) (*MutationResult, error) {
	var b *booking.Booking

	err := u.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		var err error
		b, err = tx.Bookings().FindByID(ctx, bookingID)
		if err != nil {
			return err
		}
		// Lifecycle and range guards come first; a cancelled booking is
		// rejected as such even when the target range also conflicts.
		if err := b.CanReschedule(req.Start, req.End, u.clock.Now()); err != nil {
			return mapLifecycleErr(err)
		}

		technicianID := b.TechnicianID()
		if req.TechnicianID != nil {
			technicianID = *req.TechnicianID
		}

		if err := tx.LockTechnician(ctx, technicianID); err != nil {
			return errs.Mark(err, errs.ErrDatabaseOperationFailed)
		}
		excludeID := b.ID()
		if err := validatePlacement(ctx, tx, technicianID, req.Start, req.End, &excludeID); err != nil {
			return err
		}
		if err := b.Reschedule(technicianID, req.Start, req.End, u.clock.Now()); err != nil {
			return mapLifecycleErr(err)
		}
		return tx.Bookings().Update(ctx, b)
	})
	if err != nil {
		if infra.IsKind(err, infra.KindConflict) {
			return nil, errs.Mark(err, errs.ErrSchedulingConflict)
		}
		return nil, mapRepoErr(err)
	}

	degraded := u.reminders.Sync(ctx, b)
	degraded = u.persistReminderHandle(ctx, b) || degraded

	u.publish(ctx, booking.NewUpdatedEvent(b, booking.UpdateReasonRescheduled, u.clock.Now()))

	view, err := u.bookingQueries.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	return &MutationResult{Booking: view, ReminderDegraded: degraded}, nil
}

func (u *bookingUseCaseImpl) AdvanceBookingStatus(ctx context.Context, bookingID uuid.UUID, req reqdto.AdvanceBookingRequest) (*MutationResult, error) {
	next := booking.Status(req.Status)
	if !next.IsValid() {
		return nil, errs.Mark(errs.New("unknown booking status"), errs.ErrIllegalStateTransition)
	}

	var b *booking.Booking

	err := u.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		var err error
		b, err = tx.Bookings().FindByID(ctx, bookingID)
		if err != nil {
			return err
		}
		if err := b.Advance(next); err != nil {
			return mapLifecycleErr(err)
		}
		return tx.Bookings().Update(ctx, b)
	})
	if err != nil {
		return nil, mapRepoErr(err)
	}

	u.publish(ctx, booking.NewUpdatedEvent(b, booking.UpdateReasonStatusAdvanced, u.clock.Now()))

	view, err := u.bookingQueries.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	return &MutationResult{Booking: view}, nil
}

func (u *bookingUseCaseImpl) UpdateBookingNotes(ctx context.Context, bookingID uuid.UUID, req reqdto.UpdateBookingNotesRequest) (*MutationResult, error) {
	var b *booking.Booking

	err := u.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		var err error
		b, err = tx.Bookings().FindByID(ctx, bookingID)
		if err != nil {
			return err
		}
		b.UpdateNotes(booking.NewNotes(req.Notes))
		return tx.Bookings().Update(ctx, b)
	})
	if err != nil {
		return nil, mapRepoErr(err)
	}

	u.publish(ctx, booking.NewUpdatedEvent(b, booking.UpdateReasonNotesUpdated, u.clock.Now()))

	view, err := u.bookingQueries.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	return &MutationResult{Booking: view}, nil
}

// validatePlacement runs inside the technician lock: the requested range must
// sit entirely inside one bookable window, and must not touch another live
// booking. The two failures are reported distinctly.
func validatePlacement(ctx context.Context, tx shared.Tx, technicianID uuid.UUID, start, end time.Time, excludeID *uuid.UUID) error {
	from := start.UTC().Truncate(24 * time.Hour)
	to := end.UTC().Truncate(24 * time.Hour).Add(24 * time.Hour)

	bookings, err := tx.Bookings().IntervalsByTechnician(ctx, technicianID, from, to, excludeID)
	if err != nil {
		return errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}
	requested := schedule.Interval{Start: start, End: end}
	for _, iv := range bookings {
		if requested.Overlaps(iv) {
			return errs.Mark(errs.New("range overlaps an existing booking"), errs.ErrSchedulingConflict)
		}
	}

	slots, err := tx.Slots().ListOverlapping(ctx, technicianID, from, to)
	if err != nil {
		return errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}
	blocks, err := tx.Unavailability().ListOverlapping(ctx, technicianID, from, to)
	if err != nil {
		return errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}

	windows := schedule.Resolve(schedule.ResolveInput{
		Slots:          slots,
		Bookings:       bookings,
		Unavailability: blocks,
		MinDuration:    end.Sub(start),
	})
	if !schedule.HasCoveringWindow(windows, start, end) {
		return errs.Mark(errs.New("no bookable window covers the requested range"), errs.ErrNoCoveringAvailability)
	}
	return nil
}

// persistReminderHandle writes the aggregate's reminder handle in its own tx
// after the job exists. On failure the job is cancelled so no orphan fires for
// a booking that does not reference it. Returns true when degraded.
func (u *bookingUseCaseImpl) persistReminderHandle(ctx context.Context, b *booking.Booking) bool {
	err := u.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		return tx.Bookings().Update(ctx, b)
	})
	if err == nil {
		return false
	}
	u.logger.Warn("failed to persist reminder handle",
		slog.String("booking_id", b.ID().String()),
		slog.String("error", err.Error()),
	)
	u.reminders.Release(ctx, b.ReminderJobID())
	b.SetReminderHandle(nil)
	return true
}

func (u *bookingUseCaseImpl) publish(ctx context.Context, event booking.Event) {
	if err := u.publisher.Publish(ctx, event); err != nil {
		u.logger.Error("failed to publish domain event",
			slog.String("routing_key", event.RoutingKey),
			slog.String("booking_id", event.BookingID.String()),
			slog.String("error", err.Error()),
		)
	}
}

func mapLifecycleErr(err error) error {
	switch {
	case errors.Is(err, booking.ErrAlreadyCancelled), errors.Is(err, booking.ErrBookingCancelled),
		errors.Is(err, booking.ErrInvalidStatusAdvance):
		return errs.Mark(err, errs.ErrIllegalStateTransition)
	case errors.Is(err, booking.ErrInsideCancellationWindow):
		return errs.Mark(err, errs.ErrCancellationWindowViolation)
	case errors.Is(err, booking.ErrInvalidTimeRange), errors.Is(err, booking.ErrStartInPast),
		errors.Is(err, booking.ErrActualEndBeforeStart):
		return errs.Mark(err, errs.ErrInvalidTimeRange)
	default:
		return err
	}
}

func mapRepoErr(err error) error {
	switch {
	case infra.IsKind(err, infra.KindNotFound):
		return errs.Mark(err, errs.ErrBookingNotFound)
	case infra.IsKind(err, infra.KindDBFailure):
		return errs.Mark(err, errs.ErrDatabaseOperationFailed)
	default:
		return err
	}
}
