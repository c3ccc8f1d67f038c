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

type UnavailabilityRepository struct {
	db db.DBTX
}

func NewUnavailabilityRepository(dbtx db.DBTX) *UnavailabilityRepository {
	return &UnavailabilityRepository{db: dbtx}
}

func (r *UnavailabilityRepository) Create(ctx context.Context, u schedule.Unavailability) error {
	query, args, err := psql.Insert("technician_unavailability").
		Columns("id", "technician_id", "start_time", "end_time", "reason").
		Values(u.ID, u.TechnicianID, u.Start, u.End, u.Reason).
		ToSql()
	if err != nil {
		return infra.WrapRepoErr("failed to build unavailability insert", err)
	}
	if _, err := r.db.Exec(ctx, query, args...); err != nil {
		return infra.WrapRepoErr("failed to create unavailability", err)
	}
	return nil
}

func (r *UnavailabilityRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query, args, err := psql.Delete("technician_unavailability").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return infra.WrapRepoErr("failed to build unavailability delete", err)
	}
	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return infra.WrapRepoErr("failed to delete unavailability", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.NewRepoErr(infra.KindNotFound, "unavailability not found")
	}
	return nil
}

func (r *UnavailabilityRepository) ListOverlapping(ctx context.Context, technicianID uuid.UUID, from, to time.Time) ([]schedule.Unavailability, error) {
	query, args, err := psql.Select("id", "technician_id", "start_time", "end_time", "reason").
		From("technician_unavailability").
		Where(sq.Eq{"technician_id": technicianID}).
		Where(sq.Lt{"start_time": to}).
		Where(sq.Gt{"end_time": from}).
		OrderBy("start_time").
		ToSql()
	if err != nil {
		return nil, infra.WrapRepoErr("failed to build unavailability select", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list unavailability", err)
	}
	defer rows.Close()

	var blocks []schedule.Unavailability
	for rows.Next() {
		var u schedule.Unavailability
		if err := rows.Scan(&u.ID, &u.TechnicianID, &u.Start, &u.End, &u.Reason); err != nil {
			return nil, infra.WrapRepoErr("failed to scan unavailability", err)
		}
		blocks = append(blocks, u)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate unavailability", err)
	}
	return blocks, nil
}
