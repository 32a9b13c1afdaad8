package reservation

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrTableOutOfRange     = fmt.Errorf("table must be between %d and %d", MinTable, MaxTable)
	ErrPartySizeOutOfRange = fmt.Errorf("party size must be between %d and %d", MinPartySize, MaxPartySize)
	ErrDurationOutOfRange  = fmt.Errorf("duration must be between %d and %d hours", MinDurationHours, MaxDurationHours)
	ErrBlankCustomerName   = errors.New("customer name must not be blank")
	ErrEmptyRange          = errors.New("range start must be before range end")
)

type TableNumber struct {
	value int
}

func NewTableNumber(v int) (TableNumber, error) {
	if v < MinTable || v > MaxTable {
		return TableNumber{}, ErrTableOutOfRange
	}
	return TableNumber{value: v}, nil
}

// MustTableNumber is for callers that already hold a validated number.
func MustTableNumber(v int) TableNumber {
	t, err := NewTableNumber(v)
	if err != nil {
		panic(err)
	}
	return t
}

func (t TableNumber) Int() int {
	return t.value
}

type PartySize struct {
	value int
}

func NewPartySize(v int) (PartySize, error) {
	if v < MinPartySize || v > MaxPartySize {
		return PartySize{}, ErrPartySizeOutOfRange
	}
	return PartySize{value: v}, nil
}

func (p PartySize) Int() int {
	return p.value
}

type DurationHours struct {
	value int
}

func NewDurationHours(v int) (DurationHours, error) {
	if v < MinDurationHours || v > MaxDurationHours {
		return DurationHours{}, ErrDurationOutOfRange
	}
	return DurationHours{value: v}, nil
}

func (d DurationHours) Int() int {
	return d.value
}

func (d DurationHours) Duration() time.Duration {
	return time.Duration(d.value) * time.Hour
}

type CustomerName struct {
	value string
}

func NewCustomerName(s string) (CustomerName, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return CustomerName{}, ErrBlankCustomerName
	}
	return CustomerName{value: s}, nil
}

func (c CustomerName) String() string {
	return c.value
}

// TimeSlot is the half-open interval [start, end).
type TimeSlot struct {
	start time.Time
	end   time.Time
}

func NewTimeSlot(start, end time.Time) (TimeSlot, error) {
	if !start.Before(end) {
		return TimeSlot{}, ErrEmptyRange
	}
	return TimeSlot{start: start, end: end}, nil
}

// SlotFor builds the slot occupied by a reservation starting at start.
func SlotFor(start time.Time, d DurationHours) TimeSlot {
	return TimeSlot{start: start, end: start.Add(d.Duration())}
}

func (ts TimeSlot) Start() time.Time {
	return ts.start
}

func (ts TimeSlot) End() time.Time {
	return ts.end
}

func (ts TimeSlot) Duration() time.Duration {
	return ts.end.Sub(ts.start)
}

// Overlaps reports whether the two slots share any instant. Touching slots do not overlap.
func (ts TimeSlot) Overlaps(other TimeSlot) bool {
	return ts.start.Before(other.end) && other.start.Before(ts.end)
}

// ContainsStart reports whether t falls in [start, end).
func (ts TimeSlot) ContainsStart(t time.Time) bool {
	return !t.Before(ts.start) && t.Before(ts.end)
}

func (ts TimeSlot) String() string {
	return fmt.Sprintf("[%s, %s)", ts.start.Format(time.RFC3339), ts.end.Format(time.RFC3339))
}
