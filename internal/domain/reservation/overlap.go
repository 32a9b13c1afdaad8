package reservation

import (
	"table-reservation/internal/pkg/errs"

	"github.com/google/uuid"
)

// FindConflict returns the first reservation among candidates that occupies
// slot on table, ignoring excludeID. It returns nil when the slot is free.
func FindConflict(candidates []*Reservation, table TableNumber, slot TimeSlot, excludeID *uuid.UUID) *Reservation {
	for _, c := range candidates {
		if excludeID != nil && c.ID() == *excludeID {
			continue
		}
		if c.Occupies(table, slot) {
			return c
		}
	}
	return nil
}

// NewConflictError reports that slot on table is taken. existing may be nil
// when the store only knows that some reservation collided.
func NewConflictError(table TableNumber, slot TimeSlot, existing *Reservation) error {
	if existing == nil {
		return errs.Mark(
			errs.Newf("table %d is already reserved during %s", table.Int(), slot),
			errs.ErrConflict,
		)
	}
	return errs.Mark(
		errs.Newf("table %d is already reserved during %s by reservation %s",
			table.Int(), existing.Slot(), existing.ID()),
		errs.ErrConflict,
	)
}
