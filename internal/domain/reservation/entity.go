package reservation

import (
	"time"

	"table-reservation/internal/pkg/errs"

	"github.com/google/uuid"
)

type Reservation struct {
	id           uuid.UUID
	table        TableNumber
	startTime    time.Time
	duration     DurationHours
	partySize    PartySize
	customerName CustomerName
	createdAt    time.Time
	updatedAt    time.Time
}

// Reconstruct rebuilds a reservation read back from storage.
func Reconstruct(
	id uuid.UUID,
	table int,
	startTime time.Time,
	durationHours int,
	partySize int,
	customerName string,
	createdAt time.Time,
	updatedAt time.Time,
) (*Reservation, error) {
	t, err := NewTableNumber(table)
	if err != nil {
		return nil, errs.Wrapf(err, "stored reservation %s", id)
	}
	d, err := NewDurationHours(durationHours)
	if err != nil {
		return nil, errs.Wrapf(err, "stored reservation %s", id)
	}
	p, err := NewPartySize(partySize)
	if err != nil {
		return nil, errs.Wrapf(err, "stored reservation %s", id)
	}
	n, err := NewCustomerName(customerName)
	if err != nil {
		return nil, errs.Wrapf(err, "stored reservation %s", id)
	}

	return &Reservation{
		id:           id,
		table:        t,
		startTime:    startTime.UTC(),
		duration:     d,
		partySize:    p,
		customerName: n,
		createdAt:    createdAt.UTC(),
		updatedAt:    updatedAt.UTC(),
	}, nil
}

func (r *Reservation) ID() uuid.UUID {
	return r.id
}

func (r *Reservation) Table() TableNumber {
	return r.table
}

func (r *Reservation) StartTime() time.Time {
	return r.startTime
}

func (r *Reservation) EndTime() time.Time {
	return r.startTime.Add(r.duration.Duration())
}

func (r *Reservation) Slot() TimeSlot {
	return SlotFor(r.startTime, r.duration)
}

func (r *Reservation) DurationHours() DurationHours {
	return r.duration
}

func (r *Reservation) PartySize() PartySize {
	return r.partySize
}

func (r *Reservation) CustomerName() CustomerName {
	return r.customerName
}

func (r *Reservation) CreatedAt() time.Time {
	return r.createdAt
}

func (r *Reservation) UpdatedAt() time.Time {
	return r.updatedAt
}

// WithID returns a copy carrying the id assigned by the store.
func (r *Reservation) WithID(id uuid.UUID) *Reservation {
	cp := *r
	cp.id = id
	return &cp
}

// Apply returns a copy with the patch applied. p must have passed Validator.ValidatePatch.
func (r *Reservation) Apply(p Patch, now time.Time) *Reservation {
	cp := *r
	if p.Table != nil {
		cp.table = TableNumber{value: *p.Table}
	}
	if p.StartTime != nil {
		cp.startTime = p.StartTime.UTC()
	}
	if p.DurationHours != nil {
		cp.duration = DurationHours{value: *p.DurationHours}
	}
	if p.PartySize != nil {
		cp.partySize = PartySize{value: *p.PartySize}
	}
	if p.CustomerName != nil {
		cp.customerName = CustomerName{value: *p.CustomerName}
	}
	if !p.IsEmpty() {
		cp.updatedAt = now.UTC()
	}
	return &cp
}

// Occupies reports whether r blocks slot on table.
func (r *Reservation) Occupies(table TableNumber, slot TimeSlot) bool {
	return r.table == table && r.Slot().Overlaps(slot)
}
