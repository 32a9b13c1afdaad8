package request

import (
	"strings"
	"time"

	"table-reservation/internal/domain/reservation"
	"table-reservation/internal/pkg/errs"
	"table-reservation/internal/pkg/ptr"
)

// timestampLayouts lists accepted ISO 8601 forms. Layouts without an offset are read as UTC.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
}

// Timestamp accepts ISO 8601 timestamps with or without a UTC offset.
type Timestamp struct {
	time.Time
}

func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	// an unescaped "+" in a query string arrives as a space
	if i := strings.LastIndexByte(s, ' '); i > 0 && strings.Contains(s[:i], "T") {
		return ParseTimestamp(s[:i] + "+" + s[i+1:])
	}
	return time.Time{}, errs.Newf("invalid timestamp %q, expected ISO 8601", s)
}

func (t *Timestamp) UnmarshalJSON(b []byte) error {
	s := string(b)
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return errs.Newf("invalid timestamp %s, expected a string", s)
	}
	parsed, err := ParseTimestamp(s[1 : len(s)-1])
	if err != nil {
		return err
	}
	t.Time = parsed
	return nil
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	return t.Time.MarshalJSON()
}

// UnmarshalParam lets gin bind query parameters into a Timestamp.
func (t *Timestamp) UnmarshalParam(param string) error {
	parsed, err := ParseTimestamp(param)
	if err != nil {
		return err
	}
	t.Time = parsed
	return nil
}

func (t *Timestamp) value() time.Time {
	if t == nil {
		return time.Time{}
	}
	return t.Time
}

type CreateReservationRequest struct {
	Table         *int       `json:"table" binding:"required" example:"1"`
	StartTime     *Timestamp `json:"start_time" binding:"required" swaggertype:"string" example:"2030-06-01T18:00:00Z"`
	DurationHours *int       `json:"duration_hours" binding:"required" example:"2"`
	PartySize     *int       `json:"party_size" binding:"required" example:"4"`
	CustomerName  *string    `json:"customer_name" binding:"required" example:"Ada Lovelace"`
}

func (r *CreateReservationRequest) ToDraft() reservation.Draft {
	return reservation.Draft{
		Table:         ptr.Deref(r.Table),
		StartTime:     r.StartTime.value(),
		DurationHours: ptr.Deref(r.DurationHours),
		PartySize:     ptr.Deref(r.PartySize),
		CustomerName:  ptr.Deref(r.CustomerName),
	}
}

// UpdateReservationRequest is a partial update. Omitted fields keep their stored value.
type UpdateReservationRequest struct {
	Table         *int       `json:"table,omitempty" example:"2"`
	StartTime     *Timestamp `json:"start_time,omitempty" swaggertype:"string" example:"2030-06-01T19:00:00Z"`
	DurationHours *int       `json:"duration_hours,omitempty" example:"1"`
	PartySize     *int       `json:"party_size,omitempty" example:"2"`
	CustomerName  *string    `json:"customer_name,omitempty" example:"Grace Hopper"`
}

func (r *UpdateReservationRequest) ToPatch() reservation.Patch {
	p := reservation.Patch{
		Table:         r.Table,
		DurationHours: r.DurationHours,
		PartySize:     r.PartySize,
		CustomerName:  r.CustomerName,
	}
	if r.StartTime != nil {
		p.StartTime = ptr.Of(r.StartTime.Time)
	}
	return p
}

type AvailabilityQuery struct {
	Table         *int       `form:"table" binding:"required"`
	StartTime     *Timestamp `form:"start_time" binding:"required"`
	DurationHours *int       `form:"duration_hours" binding:"required"`
}

func (q *AvailabilityQuery) ToDomain() reservation.AvailabilityQuery {
	return reservation.AvailabilityQuery{
		Table:         ptr.Deref(q.Table),
		StartTime:     q.StartTime.value(),
		DurationHours: ptr.Deref(q.DurationHours),
	}
}

type RangeQuery struct {
	Start *Timestamp `form:"start" binding:"required"`
	End   *Timestamp `form:"end" binding:"required"`
}
