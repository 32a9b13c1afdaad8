//go:build unit || e2e

package builder

import (
	"time"

	"table-reservation/internal/domain/reservation"
	reqdto "table-reservation/internal/handler/dto/request"
	"table-reservation/internal/pkg/ptr"
	"table-reservation/internal/usecase/queries"

	"github.com/google/uuid"
)

// DefaultStart is an evening slot well inside opening hours.
var DefaultStart = time.Date(2030, 6, 1, 18, 0, 0, 0, time.UTC)

type ReservationBuilder struct {
	ID            uuid.UUID
	Table         int
	StartTime     time.Time
	DurationHours int
	PartySize     int
	CustomerName  string
	CreatedAt     time.Time
}

func NewReservationBuilder() *ReservationBuilder {
	return &ReservationBuilder{
		ID:            uuid.New(),
		Table:         1,
		StartTime:     DefaultStart,
		DurationHours: 2,
		PartySize:     4,
		CustomerName:  "Ada Lovelace",
		CreatedAt:     time.Date(2030, 5, 1, 12, 0, 0, 0, time.UTC),
	}
}

func (r *ReservationBuilder) With(mutate func(*ReservationBuilder)) *ReservationBuilder {
	mutate(r)
	return r
}

func (r *ReservationBuilder) WithID(id uuid.UUID) *ReservationBuilder {
	r.ID = id
	return r
}

func (r *ReservationBuilder) WithTable(table int) *ReservationBuilder {
	r.Table = table
	return r
}

func (r *ReservationBuilder) WithStart(start time.Time) *ReservationBuilder {
	r.StartTime = start
	return r
}

// At sets the start to the given wall clock on the default day, UTC.
func (r *ReservationBuilder) At(hour, minute int) *ReservationBuilder {
	r.StartTime = time.Date(DefaultStart.Year(), DefaultStart.Month(), DefaultStart.Day(), hour, minute, 0, 0, time.UTC)
	return r
}

func (r *ReservationBuilder) WithDuration(hours int) *ReservationBuilder {
	r.DurationHours = hours
	return r
}

func (r *ReservationBuilder) WithPartySize(size int) *ReservationBuilder {
	r.PartySize = size
	return r
}

func (r *ReservationBuilder) WithCustomerName(name string) *ReservationBuilder {
	r.CustomerName = name
	return r
}

// Build methods
func (r *ReservationBuilder) BuildDraft() reservation.Draft {
	return reservation.Draft{
		Table:         r.Table,
		StartTime:     r.StartTime,
		DurationHours: r.DurationHours,
		PartySize:     r.PartySize,
		CustomerName:  r.CustomerName,
	}
}

func (r *ReservationBuilder) BuildDomain() (*reservation.Reservation, error) {
	return reservation.Reconstruct(
		r.ID, r.Table, r.StartTime, r.DurationHours, r.PartySize, r.CustomerName, r.CreatedAt, r.CreatedAt,
	)
}

func (r *ReservationBuilder) BuildCreateRequestDTO() reqdto.CreateReservationRequest {
	return reqdto.CreateReservationRequest{
		Table:         ptr.Of(r.Table),
		StartTime:     &reqdto.Timestamp{Time: r.StartTime},
		DurationHours: ptr.Of(r.DurationHours),
		PartySize:     ptr.Of(r.PartySize),
		CustomerName:  ptr.Of(r.CustomerName),
	}
}

func (r *ReservationBuilder) BuildView() *queries.ReservationView {
	return &queries.ReservationView{
		ID:            r.ID,
		Table:         r.Table,
		StartTime:     r.StartTime.UTC(),
		EndTime:       r.StartTime.UTC().Add(time.Duration(r.DurationHours) * time.Hour),
		DurationHours: r.DurationHours,
		PartySize:     r.PartySize,
		CustomerName:  r.CustomerName,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.CreatedAt,
	}
}
