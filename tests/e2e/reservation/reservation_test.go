//go:build e2e

package reservation_test

import (
	"net/http"
	"net/url"
	"sync"
	"testing"
	"time"

	resdto "table-reservation/internal/handler/dto/response"
	"table-reservation/tests/common/authtest"
	"table-reservation/tests/common/builder"
	"table-reservation/tests/common/dbtest"
	"table-reservation/tests/common/httptest"
	"table-reservation/tests/common/testutil"
	"table-reservation/tests/e2e"

	"github.com/stretchr/testify/suite"
)

type ReservationE2ETestSuite struct {
	e2e.SharedSuite
	token string
}

func (s *ReservationE2ETestSuite) SetupSuite() {
	s.SharedSuite.SetupSuite()
	s.token = authtest.NewJWTHelper(s.Config.JWT).GenerateToken(s.T(), "staff-e2e", "host")
}

func TestReservationE2ESuite(t *testing.T) {
	suite.Run(t, new(ReservationE2ETestSuite))
}

func (s *ReservationE2ETestSuite) create(b *builder.ReservationBuilder) *resdto.ReservationResponse {
	s.T().Helper()
	rec := httptest.PerformRequest(s.T(), s.Router, http.MethodPost, "/api/v1/reservations", b.BuildCreateRequestDTO(), s.token)

	var body resdto.ReservationResponse
	httptest.AssertSuccessResponse(s.T(), rec, http.StatusCreated, &body)
	return &body
}

func (s *ReservationE2ETestSuite) TestLifecycle() {
	s.Run("create, read, update, delete", func() {
		created := s.create(builder.NewReservationBuilder().WithTable(2).At(18, 0).WithDuration(2))
		path := "/api/v1/reservations/" + created.ID.String()

		rec := httptest.PerformRequest(s.T(), s.Router, http.MethodGet, path, nil, "")
		var got resdto.ReservationResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &got)
		s.Equal(created.ID, got.ID)
		s.True(got.EndTime.Equal(got.StartTime.Add(2 * time.Hour)))

		rec = httptest.PerformRequest(s.T(), s.Router, http.MethodPatch, path, map[string]any{"duration_hours": 3}, s.token)
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &got)
		s.Equal(3, got.DurationHours)
		s.True(got.EndTime.Equal(got.StartTime.Add(3 * time.Hour)))

		rec = httptest.PerformRequest(s.T(), s.Router, http.MethodDelete, path, nil, s.token)
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, nil)

		rec = httptest.PerformRequest(s.T(), s.Router, http.MethodDelete, path, nil, s.token)
		httptest.AssertErrorResponse(s.T(), rec, http.StatusNotFound, "")
	})
}

func (s *ReservationE2ETestSuite) TestOverlap() {
	s.Run("overlap is rejected, touching is accepted", func() {
		s.create(builder.NewReservationBuilder().WithTable(1).At(18, 0).WithDuration(2))

		overlapping := builder.NewReservationBuilder().WithTable(1).At(19, 0).WithDuration(1).BuildCreateRequestDTO()
		rec := httptest.PerformRequest(s.T(), s.Router, http.MethodPost, "/api/v1/reservations", overlapping, s.token)
		httptest.AssertErrorResponse(s.T(), rec, http.StatusConflict, "")

		s.create(builder.NewReservationBuilder().WithTable(1).At(20, 0).WithDuration(1))
		s.create(builder.NewReservationBuilder().WithTable(1).At(16, 0).WithDuration(2))
		s.Equal(3, dbtest.CountReservations(s.T(), s.DB, 1))
	})

	s.Run("update excludes the reservation itself", func() {
		created := s.create(builder.NewReservationBuilder().WithTable(3).At(18, 0).WithDuration(2))
		path := "/api/v1/reservations/" + created.ID.String()

		rec := httptest.PerformRequest(s.T(), s.Router, http.MethodPatch, path,
			map[string]any{"start_time": "2030-06-01T19:00:00Z", "duration_hours": 1}, s.token)
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, nil)
	})

	s.Run("exclusion constraint backs the overlap check", func() {
		first, err := builder.NewReservationBuilder().WithTable(4).At(18, 0).BuildDomain()
		s.Require().NoError(err)
		dbtest.InsertReservation(s.T(), s.DB, first)

		second, err := builder.NewReservationBuilder().WithTable(4).At(19, 0).BuildDomain()
		s.Require().NoError(err)
		_, err = s.DB.Exec(s.T().Context(), `
			INSERT INTO reservations (table_number, start_time, end_time, duration_hours, party_size, customer_name)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			second.Table().Int(), second.StartTime(), second.EndTime(), second.DurationHours().Int(), second.PartySize().Int(), second.CustomerName().String())
		s.Error(err)
	})
}

func (s *ReservationE2ETestSuite) TestConcurrentCreate() {
	s.Run("exactly one of two simultaneous bookings wins", func() {
		body := builder.NewReservationBuilder().WithTable(1).At(18, 0).WithDuration(1).BuildCreateRequestDTO()

		const workers = 2
		codes := make([]int, workers)
		start := make(chan struct{})
		var wg sync.WaitGroup
		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				<-start
				rec := httptest.PerformRequest(s.T(), s.Router, http.MethodPost, "/api/v1/reservations", body, s.token)
				codes[i] = rec.Code
			}(i)
		}
		close(start)
		wg.Wait()

		s.ElementsMatch([]int{http.StatusCreated, http.StatusConflict}, codes)
		s.Equal(1, dbtest.CountReservations(s.T(), s.DB, 1))
	})
}

func (s *ReservationE2ETestSuite) TestValidation() {
	body := builder.NewReservationBuilder().BuildCreateRequestDTO()

	cases := []struct {
		name   string
		mutate func(map[string]any)
		field  string
	}{
		{"table 0", testutil.Field("table", 0), "table"},
		{"table 6", testutil.Field("table", 6), "table"},
		{"party size 7", testutil.Field("party_size", 7), "party_size"},
		{"duration 4", testutil.Field("duration_hours", 4), "duration_hours"},
		{"before opening", testutil.Field("start_time", "2030-06-01T15:59:59Z"), "start_time"},
		{"after last seating", testutil.Field("start_time", "2030-06-01T22:00:01Z"), "start_time"},
		{"blank name", testutil.Field("customer_name", "   "), "customer_name"},
	}
	for _, tc := range cases {
		s.Run(tc.name, func() {
			rec := httptest.PerformRequest(s.T(), s.Router, http.MethodPost, "/api/v1/reservations",
				testutil.DtoMap(s.T(), body, tc.mutate), s.token)
			httptest.AssertViolations(s.T(), rec, tc.field)
		})
	}

	s.Run("last seating at 22:00 is accepted and may run past closing", func() {
		s.create(builder.NewReservationBuilder().At(22, 0).WithDuration(3))
	})
}

func (s *ReservationE2ETestSuite) TestQueries() {
	s.Run("availability and range", func() {
		s.create(builder.NewReservationBuilder().WithTable(1).At(18, 0).WithDuration(1))
		s.create(builder.NewReservationBuilder().WithTable(2).At(20, 0).WithDuration(1))

		q := url.Values{"table": {"1"}, "start_time": {"2030-06-01T18:30:00Z"}, "duration_hours": {"1"}}
		rec := httptest.PerformRequest(s.T(), s.Router, http.MethodGet, "/api/v1/availability?"+q.Encode(), nil, "")
		var availability resdto.AvailabilityResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &availability)
		s.False(availability.Available)

		q.Set("start_time", "2030-06-01T19:00:00Z")
		rec = httptest.PerformRequest(s.T(), s.Router, http.MethodGet, "/api/v1/availability?"+q.Encode(), nil, "")
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &availability)
		s.True(availability.Available)

		q.Set("start_time", "2030-06-01T22:00:00Z")
		q.Set("duration_hours", "3")
		rec = httptest.PerformRequest(s.T(), s.Router, http.MethodGet, "/api/v1/availability?"+q.Encode(), nil, "")
		httptest.AssertViolations(s.T(), rec, "duration_hours")

		r := url.Values{"start": {"2030-06-01T18:00:00Z"}, "end": {"2030-06-01T20:00:00Z"}}
		rec = httptest.PerformRequest(s.T(), s.Router, http.MethodGet, "/api/v1/reservations/range?"+r.Encode(), nil, "")
		var inRange []resdto.ReservationResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &inRange)
		s.Len(inRange, 1)
		s.Equal(1, inRange[0].Table)
	})
}

func (s *ReservationE2ETestSuite) TestHealth() {
	rec := httptest.PerformRequest(s.T(), s.Router, http.MethodGet, "/health", nil, "")
	httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, nil)
}
