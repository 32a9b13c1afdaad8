package reservation

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"table-reservation/internal/pkg/errs"
)

var (
	ErrOutsideOpeningHours = errors.New("start time must be between 16:00 and 22:00")
	ErrCrossesMidnight     = errors.New("reservation must end by midnight")
	ErrMixedOffsets        = errors.New("range bounds must use the same UTC offset")
	ErrMissingStartTime    = errors.New("start time is required")
)

type Violation struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// ValidationError lists every rule a request broke. It is always returned
// marked as errs.ErrInvalidInput.
type ValidationError struct {
	Violations []Violation
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		parts = append(parts, fmt.Sprintf("%s: %s", v.Field, v.Reason))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) add(field string, err error) {
	e.Violations = append(e.Violations, Violation{Field: field, Reason: err.Error()})
}

func (e *ValidationError) result() error {
	if len(e.Violations) == 0 {
		return nil
	}
	return errs.Mark(e, errs.ErrInvalidInput)
}

// NewInvalidInput reports a single violation, for callers outside the validator
// such as request decoding.
func NewInvalidInput(field string, err error) error {
	ve := &ValidationError{}
	ve.add(field, err)
	return ve.result()
}

// AsValidationError extracts the violation list from err, if any.
func AsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errs.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

type Validator struct {
	hours BusinessHours
}

func NewValidator(hours BusinessHours) *Validator {
	return &Validator{hours: hours}
}

func (v *Validator) BusinessHours() BusinessHours {
	return v.hours
}

// NewReservation validates d and builds an unsaved reservation (nil id).
func (v *Validator) NewReservation(d Draft, now time.Time) (*Reservation, error) {
	ve := &ValidationError{}

	table, err := NewTableNumber(d.Table)
	if err != nil {
		ve.add(FieldTable, err)
	}
	v.checkStart(ve, d.StartTime)
	duration, err := NewDurationHours(d.DurationHours)
	if err != nil {
		ve.add(FieldDurationHours, err)
	}
	party, err := NewPartySize(d.PartySize)
	if err != nil {
		ve.add(FieldPartySize, err)
	}
	name, err := NewCustomerName(d.CustomerName)
	if err != nil {
		ve.add(FieldCustomerName, err)
	}

	if err := ve.result(); err != nil {
		return nil, err
	}

	now = now.UTC()
	return &Reservation{
		table:        table,
		startTime:    d.StartTime.UTC(),
		duration:     duration,
		partySize:    party,
		customerName: name,
		createdAt:    now,
		updatedAt:    now,
	}, nil
}

// ValidatePatch checks only the fields present in p and returns it normalised.
func (v *Validator) ValidatePatch(p Patch) (Patch, error) {
	ve := &ValidationError{}
	out := p

	if p.Table != nil {
		if _, err := NewTableNumber(*p.Table); err != nil {
			ve.add(FieldTable, err)
		}
	}
	if p.StartTime != nil {
		v.checkStart(ve, *p.StartTime)
		utc := p.StartTime.UTC()
		out.StartTime = &utc
	}
	if p.DurationHours != nil {
		if _, err := NewDurationHours(*p.DurationHours); err != nil {
			ve.add(FieldDurationHours, err)
		}
	}
	if p.PartySize != nil {
		if _, err := NewPartySize(*p.PartySize); err != nil {
			ve.add(FieldPartySize, err)
		}
	}
	if p.CustomerName != nil {
		name, err := NewCustomerName(*p.CustomerName)
		if err != nil {
			ve.add(FieldCustomerName, err)
		} else {
			trimmed := name.String()
			out.CustomerName = &trimmed
		}
	}

	if err := ve.result(); err != nil {
		return Patch{}, err
	}
	return out, nil
}

// ValidateAvailability applies the creation rules for table, start and duration
// plus the midnight rule, which only the availability check enforces.
func (v *Validator) ValidateAvailability(q AvailabilityQuery) (TableNumber, TimeSlot, error) {
	ve := &ValidationError{}

	table, err := NewTableNumber(q.Table)
	if err != nil {
		ve.add(FieldTable, err)
	}
	startOK := v.checkStart(ve, q.StartTime)
	duration, err := NewDurationHours(q.DurationHours)
	if err != nil {
		ve.add(FieldDurationHours, err)
	}

	var slot TimeSlot
	if startOK && err == nil {
		slot = SlotFor(q.StartTime, duration)
		if !v.hours.EndsByMidnight(slot) {
			ve.add(FieldDurationHours, ErrCrossesMidnight)
		}
	}

	if err := ve.result(); err != nil {
		return TableNumber{}, TimeSlot{}, err
	}
	return table, TimeSlot{start: slot.start.UTC(), end: slot.end.UTC()}, nil
}

// ValidateRange checks a [start, end) query window.
func ValidateRange(start, end time.Time) (TimeSlot, error) {
	ve := &ValidationError{}

	_, startOffset := start.Zone()
	_, endOffset := end.Zone()
	if startOffset != endOffset {
		ve.add(FieldRange, ErrMixedOffsets)
	}
	slot, err := NewTimeSlot(start.UTC(), end.UTC())
	if err != nil {
		ve.add(FieldRange, err)
	}

	if err := ve.result(); err != nil {
		return TimeSlot{}, err
	}
	return slot, nil
}

func (v *Validator) checkStart(ve *ValidationError, t time.Time) bool {
	if t.IsZero() {
		ve.add(FieldStartTime, ErrMissingStartTime)
		return false
	}
	if !v.hours.AcceptsStart(t) {
		ve.add(FieldStartTime, ErrOutsideOpeningHours)
		return false
	}
	return true
}
