//go:build unit

package commands_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	reqdto "fieldservice/internal/handler/dto/request"
	"fieldservice/internal/pkg/errs"
	"fieldservice/internal/usecase/commands"
	"fieldservice/tests/common/builder"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
)

type TechnicianCommandsTestSuite struct {
	suite.Suite
	store  *memStore
	uc     commands.TechnicianCommands
	techID uuid.UUID
}

func TestTechnicianCommandsSuite(t *testing.T) {
	suite.Run(t, new(TechnicianCommandsTestSuite))
}

func (s *TechnicianCommandsTestSuite) SetupTest() {
	s.store = newMemStore()
	s.techID = uuid.New()
	s.store.technicians[s.techID] = "Sam Okafor"

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.uc = commands.NewTechnicianUseCase(&memUoW{store: s.store}, logger)
}

func (s *TechnicianCommandsTestSuite) window(startHours, endHours int) (time.Time, time.Time) {
	return builder.BaseTime.Add(time.Duration(startHours) * time.Hour),
		builder.BaseTime.Add(time.Duration(endHours) * time.Hour)
}

func (s *TechnicianCommandsTestSuite) TestCreateSlot() {
	start, end := s.window(9, 17)
	view, err := s.uc.CreateSlot(context.Background(), s.techID, reqdto.CreateSlotRequest{Start: start, End: end})
	s.Require().NoError(err)

	s.Equal(s.techID, view.TechnicianID)
	s.Equal(start, view.Start)
	s.Equal(end, view.End)
	s.Len(s.store.slots, 1)
}

func (s *TechnicianCommandsTestSuite) TestCreateSlot_RejectsOverlap() {
	start, end := s.window(9, 17)
	_, err := s.uc.CreateSlot(context.Background(), s.techID, reqdto.CreateSlotRequest{Start: start, End: end})
	s.Require().NoError(err)

	start2, end2 := s.window(16, 20)
	_, err = s.uc.CreateSlot(context.Background(), s.techID, reqdto.CreateSlotRequest{Start: start2, End: end2})
	s.Require().ErrorIs(err, errs.ErrSchedulingConflict)
	s.Len(s.store.slots, 1)
}

func (s *TechnicianCommandsTestSuite) TestCreateSlot_BackToBackIsNotOverlap() {
	start, end := s.window(9, 13)
	_, err := s.uc.CreateSlot(context.Background(), s.techID, reqdto.CreateSlotRequest{Start: start, End: end})
	s.Require().NoError(err)

	start2, end2 := s.window(13, 17)
	_, err = s.uc.CreateSlot(context.Background(), s.techID, reqdto.CreateSlotRequest{Start: start2, End: end2})
	s.Require().NoError(err)
	s.Len(s.store.slots, 2)
}

func (s *TechnicianCommandsTestSuite) TestCreateSlot_InvalidWindow() {
	start, _ := s.window(9, 17)
	_, err := s.uc.CreateSlot(context.Background(), s.techID, reqdto.CreateSlotRequest{Start: start, End: start})
	s.Require().ErrorIs(err, errs.ErrInvalidTimeRange)
}

func (s *TechnicianCommandsTestSuite) TestCreateSlot_UnknownTechnician() {
	start, end := s.window(9, 17)
	_, err := s.uc.CreateSlot(context.Background(), uuid.New(), reqdto.CreateSlotRequest{Start: start, End: end})
	s.Require().ErrorIs(err, errs.ErrTechnicianNotFound)
}

func (s *TechnicianCommandsTestSuite) TestDeleteSlot() {
	start, end := s.window(9, 17)
	view, err := s.uc.CreateSlot(context.Background(), s.techID, reqdto.CreateSlotRequest{Start: start, End: end})
	s.Require().NoError(err)

	s.Require().NoError(s.uc.DeleteSlot(context.Background(), s.techID, view.ID))
	s.Empty(s.store.slots)

	err = s.uc.DeleteSlot(context.Background(), s.techID, view.ID)
	s.Require().ErrorIs(err, errs.ErrSlotNotFound)
}

func (s *TechnicianCommandsTestSuite) TestCreateUnavailability() {
	start, end := s.window(12, 14)
	view, err := s.uc.CreateUnavailability(context.Background(), s.techID,
		reqdto.CreateUnavailabilityRequest{Start: start, End: end, Reason: "dentist"})
	s.Require().NoError(err)

	s.Equal("dentist", view.Reason)
	s.Len(s.store.blocks, 1)
}

func (s *TechnicianCommandsTestSuite) TestCreateUnavailability_RejectsOverlap() {
	start, end := s.window(12, 14)
	_, err := s.uc.CreateUnavailability(context.Background(), s.techID,
		reqdto.CreateUnavailabilityRequest{Start: start, End: end})
	s.Require().NoError(err)

	start2, end2 := s.window(13, 15)
	_, err = s.uc.CreateUnavailability(context.Background(), s.techID,
		reqdto.CreateUnavailabilityRequest{Start: start2, End: end2})
	s.Require().ErrorIs(err, errs.ErrSchedulingConflict)
	s.Len(s.store.blocks, 1)
}

func (s *TechnicianCommandsTestSuite) TestDeleteUnavailability() {
	start, end := s.window(12, 14)
	view, err := s.uc.CreateUnavailability(context.Background(), s.techID,
		reqdto.CreateUnavailabilityRequest{Start: start, End: end})
	s.Require().NoError(err)

	s.Require().NoError(s.uc.DeleteUnavailability(context.Background(), s.techID, view.ID))
	s.Empty(s.store.blocks)

	err = s.uc.DeleteUnavailability(context.Background(), s.techID, view.ID)
	s.Require().ErrorIs(err, errs.ErrUnavailabilityNotFound)
}
