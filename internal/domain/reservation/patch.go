package reservation

import (
	"time"

	"table-reservation/internal/pkg/patch"
)

// Patch holds the fields an update supplies; nil means "leave unchanged".
type Patch struct {
	Table         *int
	StartTime     *time.Time
	DurationHours *int
	PartySize     *int
	CustomerName  *string
}

func (p Patch) IsEmpty() bool {
	return p.Table == nil && p.StartTime == nil && p.DurationHours == nil &&
		p.PartySize == nil && p.CustomerName == nil
}

// MovesSlot reports whether applying p to r changes which table or interval r occupies.
func (p Patch) MovesSlot(r *Reservation) bool {
	return patch.Changes(p.Table, r.Table().Int()) ||
		patch.ChangesFunc(p.StartTime, r.StartTime(), time.Time.Equal) ||
		patch.Changes(p.DurationHours, r.DurationHours().Int())
}

// TargetTable is the table r ends up on once p is applied.
func (p Patch) TargetTable(r *Reservation) TableNumber {
	return TableNumber{value: patch.Coalesce(p.Table, r.Table().Int())}
}
