package response

import (
	"time"

	"table-reservation/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jinzhu/copier"
)

type ReservationResponse struct {
	ID            uuid.UUID `json:"id"`
	Table         int       `json:"table"`
	StartTime     time.Time `json:"start_time"`
	EndTime       time.Time `json:"end_time"`
	DurationHours int       `json:"duration_hours"`
	PartySize     int       `json:"party_size"`
	CustomerName  string    `json:"customer_name"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type AvailabilityResponse struct {
	Table         int       `json:"table"`
	StartTime     time.Time `json:"start_time"`
	DurationHours int       `json:"duration_hours"`
	Available     bool      `json:"available"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

func FromReservationView(v *queries.ReservationView) *ReservationResponse {
	var res ReservationResponse
	// field names line up one to one, copier cannot fail here
	_ = copier.Copy(&res, v)
	return &res
}

func FromReservationViews(views []*queries.ReservationView) []*ReservationResponse {
	res := make([]*ReservationResponse, len(views))
	for i, v := range views {
		res[i] = FromReservationView(v)
	}
	return res
}

func FromAvailabilityView(v *queries.AvailabilityView) *AvailabilityResponse {
	var res AvailabilityResponse
	_ = copier.Copy(&res, v)
	return &res
}
