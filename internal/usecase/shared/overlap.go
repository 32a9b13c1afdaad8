package shared

import (
	"context"

	"table-reservation/internal/domain/reservation"

	"github.com/google/uuid"
)

// HasOverlap reports whether any reservation on table other than excludeID intersects slot.
func HasOverlap(ctx context.Context, reader ReservationReader, table reservation.TableNumber, slot reservation.TimeSlot, excludeID *uuid.UUID) (bool, error) {
	existing, err := reader.FindOverlapping(ctx, table, slot, excludeID)
	if err != nil {
		return false, err
	}
	return existing != nil, nil
}

// IsAvailable reports whether slot on table is free.
func IsAvailable(ctx context.Context, reader ReservationReader, table reservation.TableNumber, slot reservation.TimeSlot) (bool, error) {
	overlap, err := HasOverlap(ctx, reader, table, slot, nil)
	if err != nil {
		return false, err
	}
	return !overlap, nil
}

// EnsureFree returns a Conflict error when slot on table is taken.
func EnsureFree(ctx context.Context, reader ReservationReader, table reservation.TableNumber, slot reservation.TimeSlot, excludeID *uuid.UUID) error {
	existing, err := reader.FindOverlapping(ctx, table, slot, excludeID)
	if err != nil {
		return err
	}
	if existing != nil {
		return reservation.NewConflictError(table, slot, existing)
	}
	return nil
}
