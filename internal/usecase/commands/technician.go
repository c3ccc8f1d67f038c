package commands

import (
	"context"
	"log/slog"

	"fieldservice/internal/domain/schedule"
	reqdto "fieldservice/internal/handler/dto/request"
	"fieldservice/internal/infra"
	"fieldservice/internal/pkg/errs"
	"fieldservice/internal/usecase/queries"
	"fieldservice/internal/usecase/shared"

	"github.com/google/uuid"
)

type TechnicianCommands interface {
	CreateSlot(ctx context.Context, technicianID uuid.UUID, req reqdto.CreateSlotRequest) (*queries.SlotView, error)
	DeleteSlot(ctx context.Context, technicianID, slotID uuid.UUID) error
	CreateUnavailability(ctx context.Context, technicianID uuid.UUID, req reqdto.CreateUnavailabilityRequest) (*queries.UnavailabilityView, error)
	DeleteUnavailability(ctx context.Context, technicianID, blockID uuid.UUID) error
}

type technicianUseCaseImpl struct {
	uow    shared.UnitOfWork
	logger *slog.Logger
}

func NewTechnicianUseCase(uow shared.UnitOfWork, logger *slog.Logger) TechnicianCommands {
	return &technicianUseCaseImpl{uow: uow, logger: logger}
}

func (u *technicianUseCaseImpl) CreateSlot(ctx context.Context, technicianID uuid.UUID, req reqdto.CreateSlotRequest) (*queries.SlotView, error) {
	if err := u.requireTechnician(ctx, technicianID); err != nil {
		return nil, err
	}

	slot, err := schedule.NewSlot(technicianID, req.Start, req.End)
	if err != nil {
		return nil, errs.Mark(err, errs.ErrInvalidTimeRange)
	}

	err = u.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		if err := tx.LockTechnician(ctx, technicianID); err != nil {
			return errs.Mark(err, errs.ErrDatabaseOperationFailed)
		}
		existing, err := tx.Slots().ListOverlapping(ctx, technicianID, slot.Start, slot.End)
		if err != nil {
			return errs.Mark(err, errs.ErrDatabaseOperationFailed)
		}
		if err := schedule.CheckSlotOverlap(slot.Interval(), existing); err != nil {
			return errs.Mark(err, errs.ErrSchedulingConflict)
		}
		return tx.Slots().Create(ctx, slot)
	})
	if err != nil {
		if infra.IsKind(err, infra.KindDBFailure) {
			return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
		}
		return nil, err
	}

	return &queries.SlotView{ID: slot.ID, TechnicianID: slot.TechnicianID, Start: slot.Start, End: slot.End}, nil
}

func (u *technicianUseCaseImpl) DeleteSlot(ctx context.Context, technicianID, slotID uuid.UUID) error {
	err := u.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		return tx.Slots().Delete(ctx, slotID)
	})
	switch {
	case err == nil:
		return nil
	case infra.IsKind(err, infra.KindNotFound):
		return errs.Mark(err, errs.ErrSlotNotFound)
	default:
		return errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}
}

func (u *technicianUseCaseImpl) CreateUnavailability(ctx context.Context, technicianID uuid.UUID, req reqdto.CreateUnavailabilityRequest) (*queries.UnavailabilityView, error) {
	if err := u.requireTechnician(ctx, technicianID); err != nil {
		return nil, err
	}

	block, err := schedule.NewUnavailability(technicianID, req.Start, req.End, req.Reason)
	if err != nil {
		return nil, errs.Mark(err, errs.ErrInvalidTimeRange)
	}

	err = u.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		if err := tx.LockTechnician(ctx, technicianID); err != nil {
			return errs.Mark(err, errs.ErrDatabaseOperationFailed)
		}
		existing, err := tx.Unavailability().ListOverlapping(ctx, technicianID, block.Start, block.End)
		if err != nil {
			return errs.Mark(err, errs.ErrDatabaseOperationFailed)
		}
		if err := schedule.CheckUnavailabilityOverlap(block.Interval(), existing); err != nil {
			return errs.Mark(err, errs.ErrSchedulingConflict)
		}
		return tx.Unavailability().Create(ctx, block)
	})
	if err != nil {
		if infra.IsKind(err, infra.KindDBFailure) {
			return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
		}
		return nil, err
	}

	return &queries.UnavailabilityView{ID: block.ID, TechnicianID: block.TechnicianID, Start: block.Start, End: block.End, Reason: block.Reason}, nil
}

func (u *technicianUseCaseImpl) DeleteUnavailability(ctx context.Context, technicianID, blockID uuid.UUID) error {
	err := u.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		return tx.Unavailability().Delete(ctx, blockID)
	})
	switch {
	case err == nil:
		return nil
	case infra.IsKind(err, infra.KindNotFound):
		return errs.Mark(err, errs.ErrUnavailabilityNotFound)
	default:
		return errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}
}

func (u *technicianUseCaseImpl) requireTechnician(ctx context.Context, technicianID uuid.UUID) error {
	if _, err := u.uow.CommandReads().TechnicianByID(ctx, technicianID); err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return errs.Mark(err, errs.ErrTechnicianNotFound)
		}
		return errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}
	return nil
}
