package readstore

import (
	"context"
	"time"

	"fieldservice/internal/domain/booking"
	"fieldservice/internal/domain/schedule"
	"fieldservice/internal/infra"
	"fieldservice/internal/infra/db"
	"fieldservice/internal/usecase/queries"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
)

// ScheduleReadStore serves the availability read model off the pool. The same
// tables feed the write-side conflict checks through tx-scoped repositories.
type ScheduleReadStore struct {
	db db.DBTX
}

func NewScheduleReadStore(dbtx db.DBTX) *ScheduleReadStore {
	return &ScheduleReadStore{db: dbtx}
}

func (s *ScheduleReadStore) TechnicianByID(ctx context.Context, id uuid.UUID) (*queries.TechnicianRef, error) {
	query, args, err := psql.Select("id", "name").
		From("technicians").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, infra.WrapRepoErr("failed to build technician select", err)
	}

	var ref queries.TechnicianRef
	if err := s.db.QueryRow(ctx, query, args...).Scan(&ref.ID, &ref.Name); err != nil {
		return nil, infra.WrapRepoErr("failed to find technician", err)
	}
	return &ref, nil
}

func (s *ScheduleReadStore) ListQualified(ctx context.Context, categoryID, issueID uuid.UUID) ([]queries.TechnicianRef, error) {
	query, args, err := psql.Select("t.id", "t.name").
		From("technicians t").
		Join("technician_skills ts ON ts.technician_id = t.id").
		Where(sq.Eq{"ts.category_id": categoryID, "ts.issue_id": issueID}).
		OrderBy("t.name").
		ToSql()
	if err != nil {
		return nil, infra.WrapRepoErr("failed to build qualified technicians select", err)
	}

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list qualified technicians", err)
	}
	defer rows.Close()

	var refs []queries.TechnicianRef
	for rows.Next() {
		var ref queries.TechnicianRef
		if err := rows.Scan(&ref.ID, &ref.Name); err != nil {
			return nil, infra.WrapRepoErr("failed to scan technician", err)
		}
		refs = append(refs, ref)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate technicians", err)
	}
	return refs, nil
}

func (s *ScheduleReadStore) SlotsForRange(ctx context.Context, technicianID uuid.UUID, from, to time.Time) ([]schedule.Slot, error) {
	query, args, err := psql.Select("id", "technician_id", "start_time", "end_time").
		From("availability_slots").
		Where(sq.Eq{"technician_id": technicianID}).
		Where(sq.Lt{"start_time": to}).
		Where(sq.Gt{"end_time": from}).
		OrderBy("start_time").
		ToSql()
	if err != nil {
		return nil, infra.WrapRepoErr("failed to build slots select", err)
	}

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list slots", err)
	}
	defer rows.Close()

	var slots []schedule.Slot
	for rows.Next() {
		var slot schedule.Slot
		if err := rows.Scan(&slot.ID, &slot.TechnicianID, &slot.Start, &slot.End); err != nil {
			return nil, infra.WrapRepoErr("failed to scan slot", err)
		}
		slots = append(slots, slot)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate slots", err)
	}
	return slots, nil
}

func (s *ScheduleReadStore) BookingIntervalsForRange(ctx context.Context, technicianID uuid.UUID, from, to time.Time) ([]schedule.Interval, error) {
	query, args, err := psql.Select("start_time", "end_time").
		From("bookings").
		Where(sq.Eq{"technician_id": technicianID}).
		Where(sq.NotEq{"status": string(booking.StatusCancelled)}).
		Where(sq.Lt{"start_time": to}).
		Where(sq.Gt{"end_time": from}).
		OrderBy("start_time").
		ToSql()
	if err != nil {
		return nil, infra.WrapRepoErr("failed to build booking intervals select", err)
	}

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list booking intervals", err)
	}
	defer rows.Close()

	var intervals []schedule.Interval
	for rows.Next() {
		var iv schedule.Interval
		if err := rows.Scan(&iv.Start, &iv.End); err != nil {
			return nil, infra.WrapRepoErr("failed to scan booking interval", err)
		}
		intervals = append(intervals, iv)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate booking intervals", err)
	}
	return intervals, nil
}

func (s *ScheduleReadStore) UnavailabilityForRange(ctx context.Context, technicianID uuid.UUID, from, to time.Time) ([]schedule.Unavailability, error) {
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

	rows, err := s.db.Query(ctx, query, args...)
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
