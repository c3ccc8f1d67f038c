//go:build unit

package queries_test

import (
	"context"
	"testing"
	"time"

	"fieldservice/internal/domain/schedule"
	"fieldservice/internal/infra"
	"fieldservice/internal/pkg/errs"
	"fieldservice/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
)

var testDay = time.Date(2025, 6, 4, 0, 0, 0, 0, time.UTC)

// stubScheduleStore serves canned schedule data keyed by technician.
type stubScheduleStore struct {
	technicians map[uuid.UUID]string
	qualified   []queries.TechnicianRef
	slots       map[uuid.UUID][]schedule.Slot
	bookings    map[uuid.UUID][]schedule.Interval
	blocks      map[uuid.UUID][]schedule.Unavailability
}

func newStubScheduleStore() *stubScheduleStore {
	return &stubScheduleStore{
		technicians: make(map[uuid.UUID]string),
		slots:       make(map[uuid.UUID][]schedule.Slot),
		bookings:    make(map[uuid.UUID][]schedule.Interval),
		blocks:      make(map[uuid.UUID][]schedule.Unavailability),
	}
}

func (s *stubScheduleStore) TechnicianByID(_ context.Context, id uuid.UUID) (*queries.TechnicianRef, error) {
	name, ok := s.technicians[id]
	if !ok {
		return nil, infra.NewRepoErr(infra.KindNotFound, "technician not found")
	}
	return &queries.TechnicianRef{ID: id, Name: name}, nil
}

func (s *stubScheduleStore) ListQualified(_ context.Context, _, _ uuid.UUID) ([]queries.TechnicianRef, error) {
	return s.qualified, nil
}

func (s *stubScheduleStore) SlotsForRange(_ context.Context, technicianID uuid.UUID, _, _ time.Time) ([]schedule.Slot, error) {
	return s.slots[technicianID], nil
}

func (s *stubScheduleStore) BookingIntervalsForRange(_ context.Context, technicianID uuid.UUID, _, _ time.Time) ([]schedule.Interval, error) {
	return s.bookings[technicianID], nil
}

func (s *stubScheduleStore) UnavailabilityForRange(_ context.Context, technicianID uuid.UUID, _, _ time.Time) ([]schedule.Unavailability, error) {
	return s.blocks[technicianID], nil
}

type AvailabilityQueriesTestSuite struct {
	suite.Suite
	store  *stubScheduleStore
	q      queries.AvailabilityQueries
	techID uuid.UUID
}

func TestAvailabilityQueriesSuite(t *testing.T) {
	suite.Run(t, new(AvailabilityQueriesTestSuite))
}

func (s *AvailabilityQueriesTestSuite) SetupTest() {
	s.store = newStubScheduleStore()
	s.techID = uuid.New()
	s.store.technicians[s.techID] = "Sam Okafor"
	s.q = queries.NewAvailabilityQueries(s.store)
}

func (s *AvailabilityQueriesTestSuite) addSlot(startHour, endHour int) schedule.Slot {
	slot, err := schedule.NewSlot(s.techID, testDay.Add(time.Duration(startHour)*time.Hour), testDay.Add(time.Duration(endHour)*time.Hour))
	s.Require().NoError(err)
	s.store.slots[s.techID] = append(s.store.slots[s.techID], slot)
	return slot
}

func (s *AvailabilityQueriesTestSuite) TestGetAvailability_FreeSlotsOrderedByStart() {
	s.addSlot(14, 18)
	s.addSlot(9, 12)

	view, err := s.q.GetAvailability(context.Background(), s.techID, testDay, time.Hour)
	s.Require().NoError(err)

	s.Equal("Sam Okafor", view.TechnicianName)
	s.Require().Len(view.Windows, 2)
	s.Equal(testDay.Add(9*time.Hour), view.Windows[0].Start)
	s.Equal(testDay.Add(14*time.Hour), view.Windows[1].Start)
}

func (s *AvailabilityQueriesTestSuite) TestGetAvailability_BookedSlotDropsEntirely() {
	s.addSlot(9, 12)
	s.addSlot(14, 18)
	s.store.bookings[s.techID] = []schedule.Interval{
		{Start: testDay.Add(10 * time.Hour), End: testDay.Add(11 * time.Hour)},
	}

	view, err := s.q.GetAvailability(context.Background(), s.techID, testDay, time.Hour)
	s.Require().NoError(err)

	s.Require().Len(view.Windows, 1)
	s.Equal(testDay.Add(14*time.Hour), view.Windows[0].Start)
}

func (s *AvailabilityQueriesTestSuite) TestGetAvailability_MinDurationFiltersShortSlots() {
	s.addSlot(9, 10)
	s.addSlot(14, 18)

	view, err := s.q.GetAvailability(context.Background(), s.techID, testDay, 2*time.Hour)
	s.Require().NoError(err)

	s.Require().Len(view.Windows, 1)
	s.Equal(testDay.Add(14*time.Hour), view.Windows[0].Start)
}

func (s *AvailabilityQueriesTestSuite) TestGetAvailability_BlackoutDropsSlot() {
	s.addSlot(9, 12)
	block, err := schedule.NewUnavailability(s.techID, testDay.Add(11*time.Hour), testDay.Add(13*time.Hour), "training")
	s.Require().NoError(err)
	s.store.blocks[s.techID] = []schedule.Unavailability{block}

	view, err := s.q.GetAvailability(context.Background(), s.techID, testDay, time.Hour)
	s.Require().NoError(err)
	s.Empty(view.Windows)
}

func (s *AvailabilityQueriesTestSuite) TestGetAvailability_UnknownTechnician() {
	_, err := s.q.GetAvailability(context.Background(), uuid.New(), testDay, time.Hour)
	s.Require().ErrorIs(err, errs.ErrTechnicianNotFound)
}

func (s *AvailabilityQueriesTestSuite) TestSearch_SkipsTechniciansWithoutWindows() {
	free := s.techID
	busy := uuid.New()
	s.store.technicians[busy] = "Riley Chen"
	s.store.qualified = []queries.TechnicianRef{
		{ID: free, Name: "Sam Okafor"},
		{ID: busy, Name: "Riley Chen"},
	}

	s.addSlot(9, 12)
	busySlot, err := schedule.NewSlot(busy, testDay.Add(9*time.Hour), testDay.Add(12*time.Hour))
	s.Require().NoError(err)
	s.store.slots[busy] = []schedule.Slot{busySlot}
	s.store.bookings[busy] = []schedule.Interval{
		{Start: testDay.Add(9 * time.Hour), End: testDay.Add(10 * time.Hour)},
	}

	results, err := s.q.Search(context.Background(), uuid.New(), uuid.New(), testDay, time.Hour)
	s.Require().NoError(err)

	s.Require().Len(results, 1)
	s.Equal(free, results[0].TechnicianID)
}

func (s *AvailabilityQueriesTestSuite) TestGetAgenda_MergesBookingsAndBlackouts() {
	s.addSlot(9, 12)
	s.store.bookings[s.techID] = []schedule.Interval{
		{Start: testDay.Add(10 * time.Hour), End: testDay.Add(11 * time.Hour)},
	}
	block, err := schedule.NewUnavailability(s.techID, testDay.Add(7*time.Hour), testDay.Add(8*time.Hour), "dentist")
	s.Require().NoError(err)
	s.store.blocks[s.techID] = []schedule.Unavailability{block}

	agenda, err := s.q.GetAgenda(context.Background(), s.techID, testDay.Add(3*time.Hour))
	s.Require().NoError(err)

	s.Equal(testDay, agenda.Day)
	s.Empty(agenda.Free) // the only slot is booked
	s.Require().Len(agenda.Busy, 2)
	s.Equal("unavailability", agenda.Busy[0].Kind)
	s.Equal("dentist", agenda.Busy[0].Reason)
	s.Equal("booking", agenda.Busy[1].Kind)
}

func (s *AvailabilityQueriesTestSuite) TestListSlotsAndUnavailability() {
	slot := s.addSlot(9, 12)
	block, err := schedule.NewUnavailability(s.techID, testDay.Add(13*time.Hour), testDay.Add(14*time.Hour), "supplier pickup")
	s.Require().NoError(err)
	s.store.blocks[s.techID] = []schedule.Unavailability{block}

	slots, err := s.q.ListSlots(context.Background(), s.techID, testDay, testDay.Add(24*time.Hour))
	s.Require().NoError(err)
	s.Require().Len(slots, 1)
	s.Equal(slot.ID, slots[0].ID)

	blocks, err := s.q.ListUnavailability(context.Background(), s.techID, testDay, testDay.Add(24*time.Hour))
	s.Require().NoError(err)
	s.Require().Len(blocks, 1)
	s.Equal("supplier pickup", blocks[0].Reason)
}
