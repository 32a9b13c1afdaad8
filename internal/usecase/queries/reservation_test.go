//go:build unit

package queries_test

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"table-reservation/internal/domain/reservation"
	"table-reservation/internal/infra/memstore"
	"table-reservation/internal/pkg/errs"
	"table-reservation/internal/usecase/queries"
	"table-reservation/internal/usecase/shared"
	"table-reservation/tests/common/builder"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
)

type ReservationQueriesTestSuite struct {
	suite.Suite
	store   *memstore.Store
	queries queries.ReservationQueries
}

func (s *ReservationQueriesTestSuite) SetupTest() {
	s.store = memstore.New(slog.Default())
	s.queries = queries.NewReservationQueries(s.store, reservation.NewValidator(reservation.NewBusinessHours(nil)))
}

func TestReservationQueriesSuite(t *testing.T) {
	suite.Run(t, new(ReservationQueriesTestSuite))
}

func (s *ReservationQueriesTestSuite) seed(b *builder.ReservationBuilder) uuid.UUID {
	s.T().Helper()
	entity, err := b.BuildDomain()
	s.Require().NoError(err)

	var id uuid.UUID
	err = s.store.Within(context.Background(), []reservation.TableNumber{entity.Table()}, func(ctx context.Context, repo shared.ReservationRepository) error {
		id, err = repo.Insert(ctx, entity)
		return err
	})
	s.Require().NoError(err)
	return id
}

func (s *ReservationQueriesTestSuite) TestGetByID() {
	ctx := context.Background()
	b := builder.NewReservationBuilder().WithTable(3).At(19, 30)
	id := s.seed(b)

	s.Run("found", func() {
		got, err := s.queries.GetByID(ctx, id)
		s.Require().NoError(err)

		want := b.WithID(id).BuildView()
		if diff := cmp.Diff(want, got); diff != "" {
			s.Failf("view mismatch", "(-want +got):\n%s", diff)
		}
	})

	s.Run("not found", func() {
		_, err := s.queries.GetByID(ctx, uuid.New())
		s.True(errs.Is(err, errs.ErrNotFound), "got %v", err)
	})
}

func (s *ReservationQueriesTestSuite) TestList() {
	ctx := context.Background()

	s.Run("empty store returns an empty list", func() {
		got, err := s.queries.List(ctx)
		s.Require().NoError(err)
		s.NotNil(got)
		s.Empty(got)
	})

	s.Run("ordered by start time", func() {
		s.seed(builder.NewReservationBuilder().WithTable(2).At(20, 0))
		s.seed(builder.NewReservationBuilder().WithTable(1).At(16, 0))
		s.seed(builder.NewReservationBuilder().WithTable(3).At(18, 0))

		got, err := s.queries.List(ctx)
		s.Require().NoError(err)
		s.Require().Len(got, 3)
		s.Equal([]int{1, 3, 2}, []int{got[0].Table, got[1].Table, got[2].Table})
	})
}

func (s *ReservationQueriesTestSuite) TestCheckAvailability() {
	ctx := context.Background()
	s.seed(builder.NewReservationBuilder().WithTable(1).At(18, 0).WithDuration(1))

	at := func(h, m int) time.Time { return time.Date(2030, 6, 1, h, m, 0, 0, time.UTC) }

	tests := []struct {
		name      string
		query     reservation.AvailabilityQuery
		available bool
	}{
		{"overlapping slot is taken", reservation.AvailabilityQuery{Table: 1, StartTime: at(18, 30), DurationHours: 1}, false},
		{"enclosing slot is taken", reservation.AvailabilityQuery{Table: 1, StartTime: at(17, 0), DurationHours: 3}, false},
		{"slot ending at the existing start is free", reservation.AvailabilityQuery{Table: 1, StartTime: at(17, 0), DurationHours: 1}, true},
		{"slot starting at the existing end is free", reservation.AvailabilityQuery{Table: 1, StartTime: at(19, 0), DurationHours: 2}, true},
		{"other table is free", reservation.AvailabilityQuery{Table: 2, StartTime: at(18, 0), DurationHours: 1}, true},
		{"last seating ending at midnight is free", reservation.AvailabilityQuery{Table: 1, StartTime: at(22, 0), DurationHours: 2}, true},
	}
	for _, tt := range tests {
		s.Run(tt.name, func() {
			got, err := s.queries.CheckAvailability(ctx, tt.query)
			s.Require().NoError(err)
			s.Equal(tt.available, got.Available)
			s.Equal(tt.query.Table, got.Table)
			s.Equal(tt.query.DurationHours, got.DurationHours)
			s.True(got.StartTime.Equal(tt.query.StartTime))
		})
	}

	s.Run("crossing midnight is invalid input", func() {
		_, err := s.queries.CheckAvailability(ctx, reservation.AvailabilityQuery{Table: 1, StartTime: at(22, 0), DurationHours: 3})

		ve, ok := reservation.AsValidationError(err)
		s.Require().True(ok, "got %v", err)
		s.Equal(reservation.FieldDurationHours, ve.Violations[0].Field)
	})

	s.Run("out of range table is invalid input", func() {
		_, err := s.queries.CheckAvailability(ctx, reservation.AvailabilityQuery{Table: 6, StartTime: at(18, 0), DurationHours: 1})
		s.True(errs.Is(err, errs.ErrInvalidInput))
	})
}

func (s *ReservationQueriesTestSuite) TestListInRange() {
	ctx := context.Background()
	at := func(h int) time.Time { return time.Date(2030, 6, 1, h, 0, 0, 0, time.UTC) }

	s.seed(builder.NewReservationBuilder().WithTable(1).At(16, 0).WithDuration(1))
	s.seed(builder.NewReservationBuilder().WithTable(2).At(18, 0))
	s.seed(builder.NewReservationBuilder().WithTable(1).At(20, 0))

	s.Run("half-open window", func() {
		got, err := s.queries.ListInRange(ctx, at(16), at(20))
		s.Require().NoError(err)
		s.Require().Len(got, 2)
		s.True(got[0].StartTime.Equal(at(16)))
		s.True(got[1].StartTime.Equal(at(18)))
	})

	s.Run("bounds with the same offset are compared as instants", func() {
		tokyo := time.FixedZone("JST", 9*60*60)
		got, err := s.queries.ListInRange(ctx, at(17).In(tokyo), at(21).In(tokyo))
		s.Require().NoError(err)
		s.Len(got, 2)
	})

	s.Run("start must be before end", func() {
		_, err := s.queries.ListInRange(ctx, at(20), at(20))
		s.True(errs.Is(err, errs.ErrInvalidInput))
	})

	s.Run("mixed offsets are rejected", func() {
		_, err := s.queries.ListInRange(ctx, at(16), at(20).In(time.FixedZone("", 3600)))
		s.True(errs.Is(err, errs.ErrInvalidInput))
	})
}
