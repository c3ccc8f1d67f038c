package queries

import (
	"context"
	"time"

	"fieldservice/internal/domain/schedule"
	"fieldservice/internal/infra"
	"fieldservice/internal/pkg/errs"

	"github.com/google/uuid"
)

type TechnicianRef struct {
	ID   uuid.UUID
	Name string
}

// ScheduleReadStore serves the availability read model. All range arguments
// are half-open [from, to).
type ScheduleReadStore interface {
	TechnicianByID(ctx context.Context, id uuid.UUID) (*TechnicianRef, error)
	// ListQualified returns technicians skilled for the (category, issue) pair.
	ListQualified(ctx context.Context, categoryID, issueID uuid.UUID) ([]TechnicianRef, error)
	SlotsForRange(ctx context.Context, technicianID uuid.UUID, from, to time.Time) ([]schedule.Slot, error)
	BookingIntervalsForRange(ctx context.Context, technicianID uuid.UUID, from, to time.Time) ([]schedule.Interval, error)
	UnavailabilityForRange(ctx context.Context, technicianID uuid.UUID, from, to time.Time) ([]schedule.Unavailability, error)
}

type AvailabilityQueries interface {
	// GetAvailability resolves the bookable windows of one technician for the
	// UTC day containing `day`.
	GetAvailability(ctx context.Context, technicianID uuid.UUID, day time.Time, minDuration time.Duration) (*TechnicianAvailabilityView, error)
	// Search fans out over every technician qualified for the service and
	// returns those with at least one window.
	Search(ctx context.Context, categoryID, issueID uuid.UUID, day time.Time, minDuration time.Duration) ([]TechnicianAvailabilityView, error)
	GetAgenda(ctx context.Context, technicianID uuid.UUID, day time.Time) (*AgendaView, error)
	ListSlots(ctx context.Context, technicianID uuid.UUID, from, to time.Time) ([]SlotView, error)
	ListUnavailability(ctx context.Context, technicianID uuid.UUID, from, to time.Time) ([]UnavailabilityView, error)
}

type availabilityQueries struct {
	store ScheduleReadStore
}

func NewAvailabilityQueries(store ScheduleReadStore) AvailabilityQueries {
	return &availabilityQueries{store: store}
}

// DayRange normalizes `day` to the half-open UTC day containing it.
func DayRange(day time.Time) (time.Time, time.Time) {
	d := day.UTC().Truncate(24 * time.Hour)
	return d, d.Add(24 * time.Hour)
}

func (q *availabilityQueries) GetAvailability(ctx context.Context, technicianID uuid.UUID, day time.Time, minDuration time.Duration) (*TechnicianAvailabilityView, error) {
	tech, err := q.store.TechnicianByID(ctx, technicianID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, errs.Mark(err, errs.ErrTechnicianNotFound)
		}
		return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}

	windows, err := q.resolveWindows(ctx, technicianID, day, minDuration)
	if err != nil {
		return nil, err
	}
	return &TechnicianAvailabilityView{
		TechnicianID:   tech.ID,
		TechnicianName: tech.Name,
		Windows:        windows,
	}, nil
}

func (q *availabilityQueries) Search(ctx context.Context, categoryID, issueID uuid.UUID, day time.Time, minDuration time.Duration) ([]TechnicianAvailabilityView, error) {
	techs, err := q.store.ListQualified(ctx, categoryID, issueID)
	if err != nil {
		return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}

	results := make([]TechnicianAvailabilityView, 0, len(techs))
	for _, tech := range techs {
		windows, err := q.resolveWindows(ctx, tech.ID, day, minDuration)
		if err != nil {
			return nil, err
		}
		if len(windows) == 0 {
			continue
		}
		results = append(results, TechnicianAvailabilityView{
			TechnicianID:   tech.ID,
			TechnicianName: tech.Name,
			Windows:        windows,
		})
	}
	return results, nil
}

func (q *availabilityQueries) resolveWindows(ctx context.Context, technicianID uuid.UUID, day time.Time, minDuration time.Duration) ([]AvailabilityWindowView, error) {
	from, to := DayRange(day)

	slots, err := q.store.SlotsForRange(ctx, technicianID, from, to)
	if err != nil {
		return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}
	bookings, err := q.store.BookingIntervalsForRange(ctx, technicianID, from, to)
	if err != nil {
		return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}
	blocks, err := q.store.UnavailabilityForRange(ctx, technicianID, from, to)
	if err != nil {
		return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}

	windows := schedule.Resolve(schedule.ResolveInput{
		Slots:          slots,
		Bookings:       bookings,
		Unavailability: blocks,
		MinDuration:    minDuration,
	})

	views := make([]AvailabilityWindowView, 0, len(windows))
	for _, w := range windows {
		views = append(views, AvailabilityWindowView{Start: w.Start, End: w.End})
	}
	return views, nil
}

func (q *availabilityQueries) GetAgenda(ctx context.Context, technicianID uuid.UUID, day time.Time) (*AgendaView, error) {
	if _, err := q.store.TechnicianByID(ctx, technicianID); err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, errs.Mark(err, errs.ErrTechnicianNotFound)
		}
		return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}

	from, to := DayRange(day)
	slots, err := q.store.SlotsForRange(ctx, technicianID, from, to)
	if err != nil {
		return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}
	bookings, err := q.store.BookingIntervalsForRange(ctx, technicianID, from, to)
	if err != nil {
		return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}
	blocks, err := q.store.UnavailabilityForRange(ctx, technicianID, from, to)
	if err != nil {
		return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}

	windows := schedule.Resolve(schedule.ResolveInput{
		Slots:          slots,
		Bookings:       bookings,
		Unavailability: blocks,
	})
	free := make([]AvailabilityWindowView, 0, len(windows))
	for _, w := range windows {
		free = append(free, AvailabilityWindowView{Start: w.Start, End: w.End})
	}

	entries := schedule.Agenda(bookings, blocks)
	busy := make([]AgendaEntryView, 0, len(entries))
	for _, e := range entries {
		busy = append(busy, AgendaEntryView{Start: e.Start, End: e.End, Kind: e.Kind, Reason: e.Reason})
	}
	return &AgendaView{TechnicianID: technicianID, Day: from, Free: free, Busy: busy}, nil
}

func (q *availabilityQueries) ListSlots(ctx context.Context, technicianID uuid.UUID, from, to time.Time) ([]SlotView, error) {
	slots, err := q.store.SlotsForRange(ctx, technicianID, from, to)
	if err != nil {
		return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}
	views := make([]SlotView, 0, len(slots))
	for _, s := range slots {
		views = append(views, SlotView{ID: s.ID, TechnicianID: s.TechnicianID, Start: s.Start, End: s.End})
	}
	return views, nil
}

func (q *availabilityQueries) ListUnavailability(ctx context.Context, technicianID uuid.UUID, from, to time.Time) ([]UnavailabilityView, error) {
	blocks, err := q.store.UnavailabilityForRange(ctx, technicianID, from, to)
	if err != nil {
		return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}
	views := make([]UnavailabilityView, 0, len(blocks))
	for _, u := range blocks {
		views = append(views, UnavailabilityView{ID: u.ID, TechnicianID: u.TechnicianID, Start: u.Start, End: u.End, Reason: u.Reason})
	}
	return views, nil
}
