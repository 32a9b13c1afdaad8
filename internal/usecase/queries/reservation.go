package queries

import (
	"context"
	"time"

	"table-reservation/internal/domain/reservation"
	"table-reservation/internal/usecase/shared"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("table-reservation/usecase/queries")

// Read models (DTO for read side)
type ReservationView struct {
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

type AvailabilityView struct {
	Table         int       `json:"table"`
	StartTime     time.Time `json:"start_time"`
	DurationHours int       `json:"duration_hours"`
	Available     bool      `json:"available"`
}

func ToReservationView(r *reservation.Reservation) *ReservationView {
	return &ReservationView{
		ID:            r.ID(),
		Table:         r.Table().Int(),
		StartTime:     r.StartTime(),
		EndTime:       r.EndTime(),
		DurationHours: r.DurationHours().Int(),
		PartySize:     r.PartySize().Int(),
		CustomerName:  r.CustomerName().String(),
		CreatedAt:     r.CreatedAt(),
		UpdatedAt:     r.UpdatedAt(),
	}
}

func ToReservationViews(rs []*reservation.Reservation) []*ReservationView {
	views := make([]*ReservationView, 0, len(rs))
	for _, r := range rs {
		views = append(views, ToReservationView(r))
	}
	return views
}

type ReservationQueries interface {
	GetByID(ctx context.Context, id uuid.UUID) (*ReservationView, error)
	List(ctx context.Context) ([]*ReservationView, error)
	CheckAvailability(ctx context.Context, q reservation.AvailabilityQuery) (*AvailabilityView, error)
	ListInRange(ctx context.Context, start, end time.Time) ([]*ReservationView, error)
}

type reservationQueriesImpl struct {
	uow       shared.UnitOfWork
	validator *reservation.Validator
}

func NewReservationQueries(uow shared.UnitOfWork, validator *reservation.Validator) ReservationQueries {
	return &reservationQueriesImpl{uow: uow, validator: validator}
}

func (q *reservationQueriesImpl) GetByID(ctx context.Context, id uuid.UUID) (*ReservationView, error) {
	ctx, span := tracer.Start(ctx, "reservation.get", trace.WithAttributes(attribute.String("reservation.id", id.String())))
	defer span.End()

	r, err := q.uow.Reader().Get(ctx, id)
	if err != nil {
		return nil, fail(span, shared.TranslateErr(err))
	}
	return ToReservationView(r), nil
}

func (q *reservationQueriesImpl) List(ctx context.Context) ([]*ReservationView, error) {
	ctx, span := tracer.Start(ctx, "reservation.list")
	defer span.End()

	rs, err := q.uow.Reader().ListAll(ctx)
	if err != nil {
		return nil, fail(span, shared.TranslateErr(err))
	}
	span.SetAttributes(attribute.Int("reservation.count", len(rs)))
	return ToReservationViews(rs), nil
}

func (q *reservationQueriesImpl) CheckAvailability(ctx context.Context, in reservation.AvailabilityQuery) (*AvailabilityView, error) {
	ctx, span := tracer.Start(ctx, "reservation.check_availability", trace.WithAttributes(
		attribute.Int("reservation.table", in.Table),
		attribute.Int("reservation.duration_hours", in.DurationHours),
	))
	defer span.End()

	table, slot, err := q.validator.ValidateAvailability(in)
	if err != nil {
		return nil, fail(span, err)
	}

	available, err := shared.IsAvailable(ctx, q.uow.Reader(), table, slot)
	if err != nil {
		return nil, fail(span, shared.TranslateErr(err))
	}
	span.SetAttributes(attribute.Bool("reservation.available", available))

	return &AvailabilityView{
		Table:         table.Int(),
		StartTime:     slot.Start(),
		DurationHours: in.DurationHours,
		Available:     available,
	}, nil
}

func (q *reservationQueriesImpl) ListInRange(ctx context.Context, start, end time.Time) ([]*ReservationView, error) {
	ctx, span := tracer.Start(ctx, "reservation.list_in_range")
	defer span.End()

	window, err := reservation.ValidateRange(start, end)
	if err != nil {
		return nil, fail(span, err)
	}

	rs, err := q.uow.Reader().FindInRange(ctx, window)
	if err != nil {
		return nil, fail(span, shared.TranslateErr(err))
	}
	span.SetAttributes(attribute.Int("reservation.count", len(rs)))
	return ToReservationViews(rs), nil
}

func fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}
