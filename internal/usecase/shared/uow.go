package shared

import (
	"context"
	"time"

	"table-reservation/internal/domain/reservation"

	"github.com/google/uuid"
)

type UnitOfWork interface {
	// Within runs fn atomically while holding an exclusive lock on each of
	// tables, so an overlap check and the write that follows cannot interleave
	// with another writer on the same table.
	Within(ctx context.Context, tables []reservation.TableNumber, fn func(ctx context.Context, repo ReservationRepository) error) error
	// Reader serves reads outside any transaction.
	Reader() ReservationReader
	// Ping reports whether the backing store is reachable.
	Ping(ctx context.Context) error
}

type ReservationReader interface {
	Get(ctx context.Context, id uuid.UUID) (*reservation.Reservation, error)
	// ListAll returns every reservation ordered by start time.
	ListAll(ctx context.Context) ([]*reservation.Reservation, error)
	// FindOverlapping returns one reservation on table intersecting slot, or nil.
	FindOverlapping(ctx context.Context, table reservation.TableNumber, slot reservation.TimeSlot, excludeID *uuid.UUID) (*reservation.Reservation, error)
	// FindInRange returns reservations starting in [window.Start, window.End), ordered by start time.
	FindInRange(ctx context.Context, window reservation.TimeSlot) ([]*reservation.Reservation, error)
}

type ReservationRepository interface {
	ReservationReader
	// Insert stores r and returns the id assigned to it.
	Insert(ctx context.Context, r *reservation.Reservation) (uuid.UUID, error)
	Update(ctx context.Context, id uuid.UUID, patch reservation.Patch, updatedAt time.Time) (*reservation.Reservation, error)
	// Delete reports whether a reservation with id existed.
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
}

const (
	EventReservationCreated = "reservation.created"
	EventReservationUpdated = "reservation.updated"
	EventReservationDeleted = "reservation.deleted"
)

type ReservationEvent struct {
	Type          string    `json:"type"`
	ReservationID uuid.UUID `json:"reservation_id"`
	Table         int       `json:"table"`
	StartTime     time.Time `json:"start_time"`
	EndTime       time.Time `json:"end_time"`
	PartySize     int       `json:"party_size"`
	OccurredAt    time.Time `json:"occurred_at"`
}

func NewReservationEvent(eventType string, r *reservation.Reservation, at time.Time) ReservationEvent {
	return ReservationEvent{
		Type:          eventType,
		ReservationID: r.ID(),
		Table:         r.Table().Int(),
		StartTime:     r.StartTime(),
		EndTime:       r.EndTime(),
		PartySize:     r.PartySize().Int(),
		OccurredAt:    at.UTC(),
	}
}

// EventPublisher announces committed changes. Publishing is best effort.
type EventPublisher interface {
	Publish(ctx context.Context, event ReservationEvent) error
}
