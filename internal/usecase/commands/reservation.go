package commands

import (
	"context"
	"log/slog"
	"slices"

	"table-reservation/internal/domain/reservation"
	"table-reservation/internal/infra"
	"table-reservation/internal/pkg/clock"
	"table-reservation/internal/pkg/errs"
	"table-reservation/internal/usecase/queries"
	"table-reservation/internal/usecase/shared"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// maxRelockAttempts bounds how often an update re-reads the record when a
// concurrent writer moved it to a table outside the lock set.
const maxRelockAttempts = 3

var (
	errLockSetStale      = errs.New("reservation moved to another table while locking")
	ErrConcurrentlyMoved = errs.New("reservation keeps moving between tables, retry later")
)

var tracer = otel.Tracer("table-reservation/usecase/commands")

type ReservationCommands interface {
	Create(ctx context.Context, draft reservation.Draft) (*queries.ReservationView, error)
	Update(ctx context.Context, id uuid.UUID, patch reservation.Patch) (*queries.ReservationView, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type reservationCommandsImpl struct {
	uow       shared.UnitOfWork
	validator *reservation.Validator
	publisher shared.EventPublisher
	clock     clock.Clock
	logger    *slog.Logger
}

func NewReservationCommands(
	uow shared.UnitOfWork,
	validator *reservation.Validator,
	publisher shared.EventPublisher,
	clock clock.Clock,
	logger *slog.Logger,
) ReservationCommands {
	return &reservationCommandsImpl{
		uow:       uow,
		validator: validator,
		publisher: publisher,
		clock:     clock,
		logger:    logger,
	}
}

func (c *reservationCommandsImpl) Create(ctx context.Context, draft reservation.Draft) (*queries.ReservationView, error) {
	ctx, span := tracer.Start(ctx, "reservation.create", trace.WithAttributes(
		attribute.Int("reservation.table", draft.Table),
	))
	defer span.End()

	entity, err := c.validator.NewReservation(draft, c.clock.Now())
	if err != nil {
		return nil, fail(span, err)
	}

	var created *reservation.Reservation
	err = c.uow.Within(ctx, []reservation.TableNumber{entity.Table()}, func(ctx context.Context, repo shared.ReservationRepository) error {
		if err := shared.EnsureFree(ctx, repo, entity.Table(), entity.Slot(), nil); err != nil {
			return err
		}
		id, err := repo.Insert(ctx, entity)
		if err != nil {
			return err
		}
		created = entity.WithID(id)
		return nil
	})
	if err != nil {
		return nil, fail(span, c.translate(ctx, err, entity.Table(), entity.Slot()))
	}

	span.SetAttributes(attribute.String("reservation.id", created.ID().String()))
	c.publish(ctx, shared.EventReservationCreated, created)
	return queries.ToReservationView(created), nil
}

func (c *reservationCommandsImpl) Update(ctx context.Context, id uuid.UUID, patch reservation.Patch) (*queries.ReservationView, error) {
	ctx, span := tracer.Start(ctx, "reservation.update", trace.WithAttributes(
		attribute.String("reservation.id", id.String()),
	))
	defer span.End()

	patch, err := c.validator.ValidatePatch(patch)
	if err != nil {
		return nil, fail(span, err)
	}

	for attempt := 0; attempt < maxRelockAttempts; attempt++ {
		current, err := c.uow.Reader().Get(ctx, id)
		if err != nil {
			return nil, fail(span, shared.TranslateErr(err))
		}
		if patch.IsEmpty() {
			return queries.ToReservationView(current), nil
		}

		// lock the table it sits on and the one it moves to
		tables := lockSet(current.Table(), patch.TargetTable(current))

		var updated, target *reservation.Reservation
		err = c.uow.Within(ctx, tables, func(ctx context.Context, repo shared.ReservationRepository) error {
			locked, err := repo.Get(ctx, id)
			if err != nil {
				return err
			}
			if locked.Table() != current.Table() {
				return errLockSetStale
			}
			if patch.MovesSlot(locked) {
				target = locked.Apply(patch, c.clock.Now())
				if err := shared.EnsureFree(ctx, repo, target.Table(), target.Slot(), &id); err != nil {
					return err
				}
			}
			updated, err = repo.Update(ctx, id, patch, c.clock.Now())
			return err
		})
		if errs.Is(err, errLockSetStale) {
			c.logger.DebugContext(ctx, "reservation moved during update, relocking",
				slog.String("reservation_id", id.String()), slog.Int("attempt", attempt+1))
			continue
		}
		if err != nil {
			if target != nil {
				return nil, fail(span, c.translate(ctx, err, target.Table(), target.Slot()))
			}
			return nil, fail(span, shared.TranslateErr(err))
		}

		c.publish(ctx, shared.EventReservationUpdated, updated)
		return queries.ToReservationView(updated), nil
	}

	return nil, fail(span, errs.Mark(ErrConcurrentlyMoved, errs.ErrConflict))
}

func (c *reservationCommandsImpl) Delete(ctx context.Context, id uuid.UUID) error {
	ctx, span := tracer.Start(ctx, "reservation.delete", trace.WithAttributes(
		attribute.String("reservation.id", id.String()),
	))
	defer span.End()

	var deleted *reservation.Reservation
	err := c.uow.Within(ctx, nil, func(ctx context.Context, repo shared.ReservationRepository) error {
		existing, err := repo.Get(ctx, id)
		if err != nil {
			return err
		}
		existed, err := repo.Delete(ctx, id)
		if err != nil {
			return err
		}
		if !existed {
			return errs.Mark(errs.Newf("reservation %s not found", id), errs.ErrNotFound)
		}
		deleted = existing
		return nil
	})
	if err != nil {
		return fail(span, shared.TranslateErr(err))
	}

	c.publish(ctx, shared.EventReservationDeleted, deleted)
	return nil
}

// translate reports a write rejected by the store's exclusion constraint the
// same way as one rejected by the overlap check.
func (c *reservationCommandsImpl) translate(ctx context.Context, err error, table reservation.TableNumber, slot reservation.TimeSlot) error {
	if infra.IsKind(err, infra.KindConflict) {
		c.logger.DebugContext(ctx, "store rejected overlapping reservation",
			slog.Int("table", table.Int()), slog.String("error", err.Error()))
		return reservation.NewConflictError(table, slot, nil)
	}
	return shared.TranslateErr(err)
}

func (c *reservationCommandsImpl) publish(ctx context.Context, eventType string, r *reservation.Reservation) {
	event := shared.NewReservationEvent(eventType, r, c.clock.Now())
	if err := c.publisher.Publish(ctx, event); err != nil {
		c.logger.WarnContext(ctx, "failed to publish reservation event",
			slog.String("event", eventType),
			slog.String("reservation_id", r.ID().String()),
			slog.String("error", err.Error()))
	}
}

func lockSet(tables ...reservation.TableNumber) []reservation.TableNumber {
	out := make([]reservation.TableNumber, 0, len(tables))
	for _, t := range tables {
		if !slices.Contains(out, t) {
			out = append(out, t)
		}
	}
	slices.SortFunc(out, func(a, b reservation.TableNumber) int { return a.Int() - b.Int() })
	return out
}

func fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}
