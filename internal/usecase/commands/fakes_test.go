//go:build unit

package commands_test

import (
	"context"
	"fmt"
	"time"

	"fieldservice/internal/domain/booking"
	"fieldservice/internal/domain/schedule"
	"fieldservice/internal/infra"
	"fieldservice/internal/usecase/commands"
	"fieldservice/internal/usecase/queries"
	"fieldservice/internal/usecase/shared"

	"github.com/google/uuid"
)

// memStore is the shared state behind the in-memory unit of work. The fakes
// reproduce the repository error kinds the real Postgres layer emits, so the
// command error mapping is exercised for real.
type memStore struct {
	technicians map[uuid.UUID]string
	bookings    map[uuid.UUID]*booking.Booking
	slots       []schedule.Slot
	blocks      []schedule.Unavailability

	// blindReads makes the idempotency pre-check miss N times, simulating a
	// concurrent writer that commits between the pre-check and the insert.
	blindReads int
}

func newMemStore() *memStore {
	return &memStore{
		technicians: make(map[uuid.UUID]string),
		bookings:    make(map[uuid.UUID]*booking.Booking),
	}
}

type memUoW struct {
	store *memStore
}

func (u *memUoW) Within(ctx context.Context, fn func(ctx context.Context, tx shared.Tx) error) error {
	return fn(ctx, &memTx{store: u.store})
}

func (u *memUoW) CommandReads() shared.CommandReads {
	return &memReads{store: u.store}
}

type memTx struct {
	store *memStore
}

func (t *memTx) Bookings() shared.BookingRepository { return &memBookingRepo{store: t.store} }
func (t *memTx) Slots() shared.SlotRepository       { return &memSlotRepo{store: t.store} }

func (t *memTx) Unavailability() shared.UnavailabilityRepository {
	return &memUnavailabilityRepo{store: t.store}
}

func (t *memTx) LockTechnician(_ context.Context, _ uuid.UUID) error { return nil }

type memReads struct {
	store *memStore
}

func (r *memReads) TechnicianByID(_ context.Context, id uuid.UUID) (*shared.TechnicianSnapshot, error) {
	name, ok := r.store.technicians[id]
	if !ok {
		return nil, infra.NewRepoErr(infra.KindNotFound, "technician not found")
	}
	return &shared.TechnicianSnapshot{ID: id, Name: name}, nil
}

func (r *memReads) BookingByClientRequest(_ context.Context, userID uuid.UUID, clientRequestID string) (*shared.BookingSnapshot, error) {
	if r.store.blindReads > 0 {
		r.store.blindReads--
		return nil, infra.NewRepoErr(infra.KindNotFound, "booking not found")
	}
	for _, b := range r.store.bookings {
		if b.UserID() == userID && b.ClientRequestID() == clientRequestID {
			return &shared.BookingSnapshot{
				ID:     b.ID(),
				UserID: b.UserID(),
				Status: string(b.Status()),
				Start:  b.Start(),
				End:    b.End(),
			}, nil
		}
	}
	return nil, infra.NewRepoErr(infra.KindNotFound, "booking not found")
}

type memBookingRepo struct {
	store *memStore
}

func (r *memBookingRepo) Create(_ context.Context, b *booking.Booking) error {
	for _, existing := range r.store.bookings {
		if b.ClientRequestID() != "" &&
			existing.UserID() == b.UserID() && existing.ClientRequestID() == b.ClientRequestID() {
			return infra.NewRepoErr(infra.KindDuplicateKey, "duplicate client request")
		}
		if existing.TechnicianID() == b.TechnicianID() &&
			existing.Status() != booking.StatusCancelled &&
			schedule.Overlaps(existing.Start(), existing.End(), b.Start(), b.End()) {
			return infra.NewRepoErr(infra.KindConflict, "booking overlap")
		}
	}
	r.store.bookings[b.ID()] = b
	return nil
}

func (r *memBookingRepo) FindByID(_ context.Context, id uuid.UUID) (*booking.Booking, error) {
	b, ok := r.store.bookings[id]
	if !ok {
		return nil, infra.NewRepoErr(infra.KindNotFound, "booking not found")
	}
	return b, nil
}

func (r *memBookingRepo) Update(_ context.Context, b *booking.Booking) error {
	if _, ok := r.store.bookings[b.ID()]; !ok {
		return infra.NewRepoErr(infra.KindNotFound, "booking not found on update")
	}
	r.store.bookings[b.ID()] = b
	return nil
}

func (r *memBookingRepo) IntervalsByTechnician(_ context.Context, technicianID uuid.UUID, from, to time.Time, excludeID *uuid.UUID) ([]schedule.Interval, error) {
	var out []schedule.Interval
	for _, b := range r.store.bookings {
		if b.TechnicianID() != technicianID || b.Status() == booking.StatusCancelled {
			continue
		}
		if excludeID != nil && b.ID() == *excludeID {
			continue
		}
		if schedule.Overlaps(b.Start(), b.End(), from, to) {
			out = append(out, schedule.Interval{Start: b.Start(), End: b.End()})
		}
	}
	return out, nil
}

type memSlotRepo struct {
	store *memStore
}

func (r *memSlotRepo) Create(_ context.Context, s schedule.Slot) error {
	r.store.slots = append(r.store.slots, s)
	return nil
}

func (r *memSlotRepo) Delete(_ context.Context, id uuid.UUID) error {
	for i, s := range r.store.slots {
		if s.ID == id {
			r.store.slots = append(r.store.slots[:i], r.store.slots[i+1:]...)
			return nil
		}
	}
	return infra.NewRepoErr(infra.KindNotFound, "slot not found")
}

func (r *memSlotRepo) ListOverlapping(_ context.Context, technicianID uuid.UUID, from, to time.Time) ([]schedule.Slot, error) {
	var out []schedule.Slot
	for _, s := range r.store.slots {
		if s.TechnicianID == technicianID && schedule.Overlaps(s.Start, s.End, from, to) {
			out = append(out, s)
		}
	}
	return out, nil
}

type memUnavailabilityRepo struct {
	store *memStore
}

func (r *memUnavailabilityRepo) Create(_ context.Context, u schedule.Unavailability) error {
	r.store.blocks = append(r.store.blocks, u)
	return nil
}

func (r *memUnavailabilityRepo) Delete(_ context.Context, id uuid.UUID) error {
	for i, u := range r.store.blocks {
		if u.ID == id {
			r.store.blocks = append(r.store.blocks[:i], r.store.blocks[i+1:]...)
			return nil
		}
	}
	return infra.NewRepoErr(infra.KindNotFound, "unavailability not found")
}

func (r *memUnavailabilityRepo) ListOverlapping(_ context.Context, technicianID uuid.UUID, from, to time.Time) ([]schedule.Unavailability, error) {
	var out []schedule.Unavailability
	for _, u := range r.store.blocks {
		if u.TechnicianID == technicianID && schedule.Overlaps(u.Start, u.End, from, to) {
			out = append(out, u)
		}
	}
	return out, nil
}

// memBookingQueries serves views straight off the stored aggregates.
type memBookingQueries struct {
	store *memStore
}

func (q *memBookingQueries) GetByID(_ context.Context, id uuid.UUID) (*queries.BookingView, error) {
	b, ok := q.store.bookings[id]
	if !ok {
		return nil, fmt.Errorf("booking %s not in store", id)
	}
	return viewFromDomain(b), nil
}

func (q *memBookingQueries) ListByUser(_ context.Context, userID uuid.UUID) ([]queries.BookingView, error) {
	var out []queries.BookingView
	for _, b := range q.store.bookings {
		if b.UserID() == userID {
			out = append(out, *viewFromDomain(b))
		}
	}
	return out, nil
}

func viewFromDomain(b *booking.Booking) *queries.BookingView {
	items := make([]queries.BookingItemView, 0, len(b.Items()))
	for _, it := range b.Items() {
		items = append(items, queries.BookingItemView{
			ServiceItemID:  it.ServiceIssueID(),
			Quantity:       it.Quantity(),
			UnitPriceCents: it.UnitPriceCents(),
			LineTotalCents: it.LineTotalCents(),
		})
	}
	return &queries.BookingView{
		ID:              b.ID(),
		UserID:          b.UserID(),
		TechnicianID:    b.TechnicianID(),
		CategoryID:      b.ServiceCategoryID(),
		IssueID:         b.ServiceIssueID(),
		Status:          string(b.Status()),
		Start:           b.Start(),
		End:             b.End(),
		Items:           items,
		EstimatedCents:  b.EstimatedCents(),
		FinalCents:      b.FinalCents(),
		Notes:           b.Notes().String(),
		ClientRequestID: b.ClientRequestID(),
		ReminderJobID:   b.ReminderJobID(),
		CreatedAt:       b.CreatedAt(),
		UpdatedAt:       b.UpdatedAt(),
	}
}

// fakeScheduler tracks outstanding jobs by handle.
type fakeScheduler struct {
	outstanding  map[string]time.Time
	nextID       int
	failSchedule bool
	failCancel   bool
	scheduleCall int
	cancelCall   int
}

func newFakeScheduler() *fakeScheduler {
	return &fakeScheduler{outstanding: make(map[string]time.Time)}
}

func (s *fakeScheduler) Schedule(_ context.Context, _ uuid.UUID, runAt time.Time) (string, error) {
	s.scheduleCall++
	if s.failSchedule {
		return "", fmt.Errorf("redis down")
	}
	s.nextID++
	id := fmt.Sprintf("job-%d", s.nextID)
	s.outstanding[id] = runAt
	return id, nil
}

func (s *fakeScheduler) Cancel(_ context.Context, jobID string) error {
	s.cancelCall++
	if s.failCancel {
		return fmt.Errorf("redis down")
	}
	if _, ok := s.outstanding[jobID]; !ok {
		return commands.ErrReminderJobNotFound
	}
	delete(s.outstanding, jobID)
	return nil
}

type fakePublisher struct {
	events   []booking.Event
	failNext bool
}

func (p *fakePublisher) Publish(_ context.Context, event booking.Event) error {
	if p.failNext {
		p.failNext = false
		return fmt.Errorf("broker unreachable")
	}
	p.events = append(p.events, event)
	return nil
}

func (p *fakePublisher) byRoutingKey(key string) []booking.Event {
	var out []booking.Event
	for _, e := range p.events {
		if e.RoutingKey == key {
			out = append(out, e)
		}
	}
	return out
}
