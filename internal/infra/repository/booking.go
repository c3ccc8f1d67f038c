package repository

import (
	"context"
	"time"

	"fieldservice/internal/domain/booking"
	"fieldservice/internal/domain/schedule"
	"fieldservice/internal/infra"
	"fieldservice/internal/infra/db"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

type BookingRepository struct {
	db db.DBTX
}

func NewBookingRepository(dbtx db.DBTX) *BookingRepository {
	return &BookingRepository{db: dbtx}
}

const bookingColumns = "id, user_id, technician_id, category_id, issue_id, " +
	"start_time, end_time, status, estimated_cents, final_cents, " +
	"reminder_job_id, client_request_id, notes, created_at, updated_at"

func (r *BookingRepository) Create(ctx context.Context, b *booking.Booking) error {
	query, args, err := psql.Insert("bookings").
		Columns("id", "user_id", "technician_id", "category_id", "issue_id",
			"start_time", "end_time", "status", "estimated_cents",
			"client_request_id", "notes").
		Values(b.ID(), b.UserID(), b.TechnicianID(), b.ServiceCategoryID(), b.ServiceIssueID(),
			b.Start(), b.End(), string(b.Status()), b.EstimatedCents(),
			b.ClientRequestID(), b.Notes().String()).
		ToSql()
	if err != nil {
		return infra.WrapRepoErr("failed to build booking insert", err)
	}
	if _, err := r.db.Exec(ctx, query, args...); err != nil {
		return infra.WrapRepoErr("failed to create booking", err)
	}

	for _, item := range b.Items() {
		query, args, err := psql.Insert("booking_items").
			Columns("booking_id", "service_item_id", "quantity", "unit_price_cents").
			Values(b.ID(), item.ServiceIssueID(), item.Quantity(), item.UnitPriceCents()).
			ToSql()
		if err != nil {
			return infra.WrapRepoErr("failed to build booking item insert", err)
		}
		if _, err := r.db.Exec(ctx, query, args...); err != nil {
			return infra.WrapRepoErr("failed to create booking item", err)
		}
	}
	return nil
}

func (r *BookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*booking.Booking, error) {
	query, args, err := psql.Select(bookingColumns).
		From("bookings").
		Where(sq.Eq{"id": id}).
		Suffix("FOR UPDATE").
		ToSql()
	if err != nil {
		return nil, infra.WrapRepoErr("failed to build booking select", err)
	}
	return r.scanBooking(ctx, query, args)
}

func (r *BookingRepository) scanBooking(ctx context.Context, query string, args []any) (*booking.Booking, error) {
	var (
		id, userID, technicianID, categoryID, issueID uuid.UUID
		start, end, createdAt, updatedAt              time.Time
		status, clientRequestID, notes                string
		estimatedCents                                int64
		finalCents                                    *int64
		reminderJobID                                 *string
	)
	err := r.db.QueryRow(ctx, query, args...).Scan(
		&id, &userID, &technicianID, &categoryID, &issueID,
		&start, &end, &status, &estimatedCents, &finalCents,
		&reminderJobID, &clientRequestID, &notes, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to find booking", err)
	}

	items, err := r.loadItems(ctx, id)
	if err != nil {
		return nil, err
	}

	return booking.Reconstruct(
		id, userID, technicianID, categoryID, issueID,
		start, end,
		booking.Status(status),
		items,
		estimatedCents, finalCents,
		reminderJobID, clientRequestID,
		booking.NewNotes(notes),
		createdAt, updatedAt,
	), nil
}

func (r *BookingRepository) loadItems(ctx context.Context, bookingID uuid.UUID) ([]booking.Item, error) {
	query, args, err := psql.Select("service_item_id", "quantity", "unit_price_cents").
		From("booking_items").
		Where(sq.Eq{"booking_id": bookingID}).
		OrderBy("id").
		ToSql()
	if err != nil {
		return nil, infra.WrapRepoErr("failed to build booking items select", err)
	}
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to load booking items", err)
	}
	defer rows.Close()

	var items []booking.Item
	for rows.Next() {
		var (
			serviceItemID  uuid.UUID
			quantity       int
			unitPriceCents int64
		)
		if err := rows.Scan(&serviceItemID, &quantity, &unitPriceCents); err != nil {
			return nil, infra.WrapRepoErr("failed to scan booking item", err)
		}
		item, err := booking.NewItem(serviceItemID, quantity, unitPriceCents)
		if err != nil {
			return nil, infra.WrapRepoErr("stored booking item is invalid", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate booking items", err)
	}
	return items, nil
}

func (r *BookingRepository) Update(ctx context.Context, b *booking.Booking) error {
	query, args, err := psql.Update("bookings").
		Set("technician_id", b.TechnicianID()).
		Set("start_time", b.Start()).
		Set("end_time", b.End()).
		Set("status", string(b.Status())).
		Set("final_cents", b.FinalCents()).
		Set("reminder_job_id", b.ReminderJobID()).
		Set("notes", b.Notes().String()).
		Set("updated_at", sq.Expr("now()")).
		Where(sq.Eq{"id": b.ID()}).
		ToSql()
	if err != nil {
		return infra.WrapRepoErr("failed to build booking update", err)
	}
	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return infra.WrapRepoErr("failed to update booking", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.NewRepoErr(infra.KindNotFound, "booking not found on update")
	}
	return nil
}

func (r *BookingRepository) IntervalsByTechnician(ctx context.Context, technicianID uuid.UUID, from, to time.Time, excludeID *uuid.UUID) ([]schedule.Interval, error) {
	builder := psql.Select("start_time", "end_time").
		From("bookings").
		Where(sq.Eq{"technician_id": technicianID}).
		Where(sq.NotEq{"status": string(booking.StatusCancelled)}).
		Where(sq.Lt{"start_time": to}).
		Where(sq.Gt{"end_time": from}).
		OrderBy("start_time")
	if excludeID != nil {
		builder = builder.Where(sq.NotEq{"id": *excludeID})
	}
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, infra.WrapRepoErr("failed to build booking intervals select", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
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
