//go:build unit

package commands_test

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"table-reservation/internal/domain/reservation"
	"table-reservation/internal/infra/memstore"
	"table-reservation/internal/pkg/clock"
	"table-reservation/internal/pkg/errs"
	"table-reservation/internal/pkg/ptr"
	"table-reservation/internal/usecase/commands"
	"table-reservation/internal/usecase/queries"
	"table-reservation/internal/usecase/shared"
	"table-reservation/tests/common/builder"
	sharedmock "table-reservation/tests/mock/shared"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

var fixedNow = time.Date(2030, 5, 1, 12, 0, 0, 0, time.UTC)

type ReservationCommandsTestSuite struct {
	suite.Suite
	mockCtrl  *gomock.Controller
	publisher *sharedmock.MockEventPublisher
	store     *memstore.Store
	clock     *clock.MockClock
	commands  commands.ReservationCommands
}

func (s *ReservationCommandsTestSuite) SetupTest() {
	s.mockCtrl = gomock.NewController(s.T())
	s.publisher = sharedmock.NewMockEventPublisher(s.mockCtrl)
	s.store = memstore.New(slog.Default())
	s.clock = clock.NewMockClock(fixedNow)
	s.commands = commands.NewReservationCommands(
		s.store,
		reservation.NewValidator(reservation.NewBusinessHours(nil)),
		s.publisher,
		s.clock,
		slog.Default(),
	)
}

func (s *ReservationCommandsTestSuite) TearDownTest() {
	s.mockCtrl.Finish()
}

func TestReservationCommandsSuite(t *testing.T) {
	suite.Run(t, new(ReservationCommandsTestSuite))
}

func (s *ReservationCommandsTestSuite) expectEvents(eventType string, times int) {
	s.publisher.EXPECT().
		Publish(gomock.Any(), gomock.Cond(func(e shared.ReservationEvent) bool { return e.Type == eventType })).
		Return(nil).Times(times)
}

func (s *ReservationCommandsTestSuite) create(b *builder.ReservationBuilder) *queries.ReservationView {
	s.T().Helper()
	s.expectEvents(shared.EventReservationCreated, 1)
	view, err := s.commands.Create(context.Background(), b.BuildDraft())
	s.Require().NoError(err)
	return view
}

// ================================================================================
// Create
// ================================================================================

func (s *ReservationCommandsTestSuite) TestCreate() {
	ctx := context.Background()

	s.Run("success: stores and returns the reservation", func() {
		view := s.create(builder.NewReservationBuilder().WithTable(1).At(18, 0).WithDuration(2))

		s.NotEqual(uuid.Nil, view.ID)
		s.Equal(1, view.Table)
		s.True(view.EndTime.Equal(view.StartTime.Add(2 * time.Hour)))
		s.Equal(fixedNow, view.CreatedAt)
		s.Equal(1, s.store.Len())
	})

	s.Run("overlap on the same table is a conflict", func() {
		_, err := s.commands.Create(ctx, builder.NewReservationBuilder().WithTable(1).At(19, 0).WithDuration(1).BuildDraft())

		s.True(errs.Is(err, errs.ErrConflict), "got %v", err)
		s.Equal(1, s.store.Len())
	})

	s.Run("touching intervals are allowed", func() {
		s.create(builder.NewReservationBuilder().WithTable(1).At(20, 0).WithDuration(1))
		s.create(builder.NewReservationBuilder().WithTable(1).At(16, 0).WithDuration(2))
		s.Equal(3, s.store.Len())
	})

	s.Run("same slot on another table is allowed", func() {
		s.create(builder.NewReservationBuilder().WithTable(2).At(18, 0).WithDuration(2))
	})

	s.Run("invalid input never reaches the store", func() {
		before := s.store.Len()
		_, err := s.commands.Create(ctx, builder.NewReservationBuilder().WithTable(0).WithPartySize(7).BuildDraft())

		s.True(errs.Is(err, errs.ErrInvalidInput))
		ve, ok := reservation.AsValidationError(err)
		s.Require().True(ok)
		s.Len(ve.Violations, 2)
		s.Equal(before, s.store.Len())
	})

	s.Run("publisher failure does not fail the create", func() {
		s.publisher.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(errors.New("broker down")).Times(1)

		view, err := s.commands.Create(ctx, builder.NewReservationBuilder().WithTable(5).BuildDraft())
		s.Require().NoError(err)
		s.NotEqual(uuid.Nil, view.ID)
	})
}

func (s *ReservationCommandsTestSuite) TestCreate_ConcurrentSameSlot() {
	const workers = 2
	s.expectEvents(shared.EventReservationCreated, 1)

	draft := builder.NewReservationBuilder().WithTable(1).At(18, 0).WithDuration(1).BuildDraft()
	results := make([]error, workers)
	start := make(chan struct{})
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			_, results[i] = s.commands.Create(context.Background(), draft)
		}(i)
	}
	close(start)
	wg.Wait()

	var ok, conflicts int
	for _, err := range results {
		switch {
		case err == nil:
			ok++
		case errs.Is(err, errs.ErrConflict):
			conflicts++
		default:
			s.Failf("unexpected error", "%v", err)
		}
	}
	s.Equal(1, ok)
	s.Equal(1, conflicts)
	s.Equal(1, s.store.Len())
}

// ================================================================================
// Update
// ================================================================================

func (s *ReservationCommandsTestSuite) TestUpdate() {
	ctx := context.Background()
	first := s.create(builder.NewReservationBuilder().WithTable(1).At(18, 0).WithDuration(2))
	second := s.create(builder.NewReservationBuilder().WithTable(1).At(20, 0).WithDuration(1))

	s.Run("non-slot fields never trigger an overlap check", func() {
		s.expectEvents(shared.EventReservationUpdated, 1)
		s.clock.Add(time.Minute)

		view, err := s.commands.Update(ctx, first.ID, reservation.Patch{PartySize: ptr.Of(2), CustomerName: ptr.Of(" Grace ")})
		s.Require().NoError(err)
		s.Equal(2, view.PartySize)
		s.Equal("Grace", view.CustomerName)
		s.Equal(first.Table, view.Table)
		s.Equal(fixedNow.Add(time.Minute), view.UpdatedAt)
		s.Equal(first.CreatedAt, view.CreatedAt)
	})

	s.Run("self exclusion: re-submitting the own slot succeeds", func() {
		s.expectEvents(shared.EventReservationUpdated, 1)

		_, err := s.commands.Update(ctx, first.ID, reservation.Patch{
			Table:         ptr.Of(1),
			StartTime:     ptr.Of(first.StartTime),
			DurationHours: ptr.Of(2),
		})
		s.NoError(err)
	})

	s.Run("shortening within the own slot succeeds", func() {
		s.expectEvents(shared.EventReservationUpdated, 1)

		view, err := s.commands.Update(ctx, first.ID, reservation.Patch{DurationHours: ptr.Of(1)})
		s.Require().NoError(err)
		s.True(view.EndTime.Equal(first.StartTime.Add(time.Hour)))
	})

	s.Run("moving onto another reservation is a conflict", func() {
		_, err := s.commands.Update(ctx, first.ID, reservation.Patch{StartTime: ptr.Of(second.StartTime)})
		s.True(errs.Is(err, errs.ErrConflict), "got %v", err)

		stored, err := s.store.Reader().Get(ctx, first.ID)
		s.Require().NoError(err)
		s.True(stored.StartTime().Equal(first.StartTime), "stored record is unchanged")
	})

	s.Run("moving to a free table succeeds", func() {
		s.expectEvents(shared.EventReservationUpdated, 1)

		view, err := s.commands.Update(ctx, second.ID, reservation.Patch{Table: ptr.Of(4)})
		s.Require().NoError(err)
		s.Equal(4, view.Table)
	})

	s.Run("only supplied fields are validated", func() {
		_, err := s.commands.Update(ctx, first.ID, reservation.Patch{PartySize: ptr.Of(9)})
		ve, ok := reservation.AsValidationError(err)
		s.Require().True(ok)
		s.Len(ve.Violations, 1)
		s.Equal(reservation.FieldPartySize, ve.Violations[0].Field)
	})

	s.Run("empty patch returns the current record", func() {
		view, err := s.commands.Update(ctx, first.ID, reservation.Patch{})
		s.Require().NoError(err)
		s.Equal(first.ID, view.ID)
	})

	s.Run("missing id is not found", func() {
		_, err := s.commands.Update(ctx, uuid.New(), reservation.Patch{PartySize: ptr.Of(2)})
		s.True(errs.Is(err, errs.ErrNotFound), "got %v", err)
	})
}

// ================================================================================
// Delete
// ================================================================================

func (s *ReservationCommandsTestSuite) TestDelete() {
	ctx := context.Background()
	view := s.create(builder.NewReservationBuilder())

	s.Run("success", func() {
		s.expectEvents(shared.EventReservationDeleted, 1)
		s.NoError(s.commands.Delete(ctx, view.ID))
		s.Zero(s.store.Len())
	})

	s.Run("deleting twice is not found", func() {
		err := s.commands.Delete(ctx, view.ID)
		s.True(errs.Is(err, errs.ErrNotFound), "got %v", err)
	})

	s.Run("freed slot can be booked again", func() {
		s.create(builder.NewReservationBuilder())
	})
}

// ================================================================================
// Storage failures
// ================================================================================

func (s *ReservationCommandsTestSuite) TestStorageUnavailable() {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.commands.Create(ctx, builder.NewReservationBuilder().BuildDraft())
	s.True(errs.Is(err, errs.ErrStorageUnavailable), "got %v", err)

	err = s.commands.Delete(ctx, uuid.New())
	s.True(errs.Is(err, errs.ErrStorageUnavailable), "got %v", err)
}
