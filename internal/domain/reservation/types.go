package reservation

import "time"

const (
	MinTable = 1
	MaxTable = 5

	MinPartySize = 1
	MaxPartySize = 6

	MinDurationHours = 1
	MaxDurationHours = 3
)

// Seating opens at 16:00 and the last reservation may start at 22:00 sharp.
const (
	OpeningTime     = 16 * time.Hour
	LastSeatingTime = 22 * time.Hour
)

// Field names used in validation reports; they match the JSON field names.
const (
	FieldTable         = "table"
	FieldStartTime     = "start_time"
	FieldDurationHours = "duration_hours"
	FieldPartySize     = "party_size"
	FieldCustomerName  = "customer_name"
	FieldRange         = "range"
	FieldID            = "id"
)

// Draft carries the caller-supplied fields of a reservation before validation.
type Draft struct {
	Table         int
	StartTime     time.Time
	DurationHours int
	PartySize     int
	CustomerName  string
}

// AvailabilityQuery asks whether a table is free for a candidate slot.
type AvailabilityQuery struct {
	Table         int
	StartTime     time.Time
	DurationHours int
}
