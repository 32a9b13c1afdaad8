package reservation

import "time"

// BusinessHours evaluates opening-hour rules in a fixed location, or in the
// submitted timestamp's own offset when the location is nil.
type BusinessHours struct {
	loc *time.Location
}

func NewBusinessHours(loc *time.Location) BusinessHours {
	return BusinessHours{loc: loc}
}

func (b BusinessHours) Location() *time.Location {
	return b.loc
}

func (b BusinessHours) local(t time.Time) time.Time {
	if b.loc == nil {
		return t
	}
	return t.In(b.loc)
}

// AcceptsStart reports whether t's time of day lies in [16:00, 22:00], both ends included.
func (b BusinessHours) AcceptsStart(t time.Time) bool {
	l := b.local(t)
	tod := time.Duration(l.Hour())*time.Hour +
		time.Duration(l.Minute())*time.Minute +
		time.Duration(l.Second())*time.Second +
		time.Duration(l.Nanosecond())
	return tod >= OpeningTime && tod <= LastSeatingTime
}

// EndsByMidnight reports whether slot ends no later than the start of the
// calendar day after its start.
func (b BusinessHours) EndsByMidnight(slot TimeSlot) bool {
	l := b.local(slot.Start())
	midnight := time.Date(l.Year(), l.Month(), l.Day()+1, 0, 0, 0, 0, l.Location())
	return !slot.End().After(midnight)
}
