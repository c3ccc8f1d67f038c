package readstore

import (
	"context"
	"time"

	"fieldservice/internal/infra"
	"fieldservice/internal/infra/db"
	"fieldservice/internal/usecase/queries"
	"fieldservice/internal/usecase/shared"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

type BookingReadStore struct {
	db db.DBTX
}

func NewBookingReadStore(dbtx db.DBTX) *BookingReadStore {
	return &BookingReadStore{db: dbtx}
}

const bookingViewColumns = "id, user_id, technician_id, category_id, issue_id, " +
	"start_time, end_time, status, estimated_cents, final_cents, " +
	"reminder_job_id, client_request_id, notes, created_at, updated_at"

func (s *BookingReadStore) FindByID(ctx context.Context, id uuid.UUID) (*queries.BookingView, error) {
	query, args, err := psql.Select(bookingViewColumns).
		From("bookings").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, infra.WrapRepoErr("failed to build booking view select", err)
	}

	view, err := s.scanView(ctx, query, args)
	if err != nil {
		return nil, err
	}
	items, err := s.loadItems(ctx, view.ID)
	if err != nil {
		return nil, err
	}
	view.Items = items
	return view, nil
}

func (s *BookingReadStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]queries.BookingView, error) {
	query, args, err := psql.Select(bookingViewColumns).
		From("bookings").
		Where(sq.Eq{"user_id": userID}).
		OrderBy("start_time DESC").
		ToSql()
	if err != nil {
		return nil, infra.WrapRepoErr("failed to build booking list select", err)
	}

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list bookings", err)
	}
	defer rows.Close()

	var views []queries.BookingView
	for rows.Next() {
		view, err := scanViewRow(rows)
		if err != nil {
			return nil, err
		}
		views = append(views, *view)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate bookings", err)
	}

	for i := range views {
		items, err := s.loadItems(ctx, views[i].ID)
		if err != nil {
			return nil, err
		}
		views[i].Items = items
	}
	return views, nil
}

// FindSnapshotByClientRequest backs the idempotency guard.
func (s *BookingReadStore) FindSnapshotByClientRequest(ctx context.Context, userID uuid.UUID, clientRequestID string) (*shared.BookingSnapshot, error) {
	query, args, err := psql.Select("id", "user_id", "status", "start_time", "end_time").
		From("bookings").
		Where(sq.Eq{"user_id": userID, "client_request_id": clientRequestID}).
		ToSql()
	if err != nil {
		return nil, infra.WrapRepoErr("failed to build idempotency select", err)
	}

	var snap shared.BookingSnapshot
	err = s.db.QueryRow(ctx, query, args...).Scan(&snap.ID, &snap.UserID, &snap.Status, &snap.Start, &snap.End)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to find booking by client request", err)
	}
	return &snap, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (s *BookingReadStore) scanView(ctx context.Context, query string, args []any) (*queries.BookingView, error) {
	return scanViewRow(s.db.QueryRow(ctx, query, args...))
}

func scanViewRow(row rowScanner) (*queries.BookingView, error) {
	var (
		v         queries.BookingView
		start     time.Time
		end       time.Time
		createdAt time.Time
		updatedAt time.Time
	)
	err := row.Scan(
		&v.ID, &v.UserID, &v.TechnicianID, &v.CategoryID, &v.IssueID,
		&start, &end, &v.Status, &v.EstimatedCents, &v.FinalCents,
		&v.ReminderJobID, &v.ClientRequestID, &v.Notes, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to scan booking view", err)
	}
	v.Start = start.UTC()
	v.End = end.UTC()
	v.CreatedAt = createdAt.UTC()
	v.UpdatedAt = updatedAt.UTC()
	return &v, nil
}

func (s *BookingReadStore) loadItems(ctx context.Context, bookingID uuid.UUID) ([]queries.BookingItemView, error) {
	query, args, err := psql.Select("service_item_id", "quantity", "unit_price_cents").
		From("booking_items").
		Where(sq.Eq{"booking_id": bookingID}).
		OrderBy("id").
		ToSql()
	if err != nil {
		return nil, infra.WrapRepoErr("failed to build booking item select", err)
	}
	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to load booking items", err)
	}
	defer rows.Close()

	var items []queries.BookingItemView
	for rows.Next() {
		var item queries.BookingItemView
		if err := rows.Scan(&item.ServiceItemID, &item.Quantity, &item.UnitPriceCents); err != nil {
			return nil, infra.WrapRepoErr("failed to scan booking item", err)
		}
		item.LineTotalCents = item.UnitPriceCents * int64(item.Quantity)
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate booking items", err)
	}
	return items, nil
}
