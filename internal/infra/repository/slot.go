package repository

import (
	"context"
	"time"

	"fieldservice/internal/domain/schedule"
	"fieldservice/internal/infra"
	"fieldservice/internal/infra/db"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
)

type SlotRepository struct {
	db db.DBTX
}

func NewSlotRepository(dbtx db.DBTX) *SlotRepository {
	return &SlotRepository{db: dbtx}
}

func (r *SlotRepository) Create(ctx context.Context, s schedule.Slot) error {
	query, args, err := psql.Insert("availability_slots").
		Columns("id", "technician_id", "start_time", "end_time").
		Values(s.ID, s.TechnicianID, s.Start, s.End).
		ToSql()
	if err != nil {
		return infra.WrapRepoErr("failed to build slot insert", err)
	}
	if _, err := r.db.Exec(ctx, query, args...); err != nil {
		return infra.WrapRepoErr("failed to create slot", err)
	}
	return nil
}

func (r *SlotRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query, args, err := psql.Delete("availability_slots").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return infra.WrapRepoErr("failed to build slot delete", err)
	}
	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return infra.WrapRepoErr("failed to delete slot", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.NewRepoErr(infra.KindNotFound, "slot not found")
	}
	return nil
}

func (r *SlotRepository) ListOverlapping(ctx context.Context, technicianID uuid.UUID, from, to time.Time) ([]schedule.Slot, error) {
	query, args, err := psql.Select("id", "technician_id", "start_time", "end_time").
		From("availability_slots").
		Where(sq.Eq{"technician_id": technicianID}).
		Where(sq.Lt{"start_time": to}).
		Where(sq.Gt{"end_time": from}).
		OrderBy("start_time").
		ToSql()
	if err != nil {
		return nil, infra.WrapRepoErr("failed to build slot select", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list slots", err)
	}
	defer rows.Close()

	var slots []schedule.Slot
	for rows.Next() {
		var s schedule.Slot
		if err := rows.Scan(&s.ID, &s.TechnicianID, &s.Start, &s.End); err != nil {
			return nil, infra.WrapRepoErr("failed to scan slot", err)
		}
		slots = append(slots, s)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate slots", err)
	}
	return slots, nil
}
