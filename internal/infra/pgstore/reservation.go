package pgstore

import (
	"context"
	"log/slog"
	"time"

	"table-reservation/internal/domain/reservation"
	"table-reservation/internal/infra"
	"table-reservation/internal/pkg/pgconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
)

// DBTX is satisfied by *pgxpool.Pool, *pgxpool.Conn and pgx.Tx.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const reservationColumns = `id, table_number, start_time, duration_hours, party_size, customer_name, created_at, updated_at`

const getReservation = `SELECT ` + reservationColumns + `
FROM reservations
WHERE id = $1`

const listReservations = `SELECT ` + reservationColumns + `
FROM reservations
ORDER BY start_time, id`

const findOverlapping = `SELECT ` + reservationColumns + `
FROM reservations
WHERE table_number = $1
  AND start_time < $3
  AND end_time > $2
  AND ($4::uuid IS NULL OR id <> $4::uuid)
ORDER BY start_time
LIMIT 1`

const findInRange = `SELECT ` + reservationColumns + `
FROM reservations
WHERE start_time >= $1
  AND start_time < $2
ORDER BY start_time, id`

const insertReservation = `INSERT INTO reservations (
    table_number, start_time, end_time, duration_hours, party_size, customer_name, created_at, updated_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $7)
RETURNING id`

// end_time is recomputed from whichever start and duration survive the patch.
const updateReservation = `UPDATE reservations
SET table_number   = COALESCE($2, table_number),
    start_time     = COALESCE($3, start_time),
    duration_hours = COALESCE($4, duration_hours),
    end_time       = COALESCE($3, start_time) + make_interval(hours => COALESCE($4, duration_hours)::int),
    party_size     = COALESCE($5, party_size),
    customer_name  = COALESCE($6, customer_name),
    updated_at     = $7
WHERE id = $1
RETURNING ` + reservationColumns

const deleteReservation = `DELETE FROM reservations WHERE id = $1`

type ReservationRepository struct {
	db     DBTX
	logger *slog.Logger
}

func NewReservationRepository(db DBTX, logger *slog.Logger) *ReservationRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReservationRepository{db: db, logger: logger}
}

func (r *ReservationRepository) Get(ctx context.Context, id uuid.UUID) (*reservation.Reservation, error) {
	res, err := scanReservation(r.db.QueryRow(ctx, getReservation, pgconv.UUIDToPgtype(id)))
	if err != nil {
		return nil, infra.WrapDBErr(r.logger, "get reservation "+id.String(), err)
	}
	return res, nil
}

func (r *ReservationRepository) ListAll(ctx context.Context) ([]*reservation.Reservation, error) {
	rows, err := r.db.Query(ctx, listReservations)
	if err != nil {
		return nil, infra.WrapDBErr(r.logger, "list reservations", err)
	}
	out, err := collectReservations(rows)
	if err != nil {
		return nil, infra.WrapDBErr(r.logger, "list reservations", err)
	}
	return out, nil
}

func (r *ReservationRepository) FindOverlapping(ctx context.Context, table reservation.TableNumber, slot reservation.TimeSlot, excludeID *uuid.UUID) (*reservation.Reservation, error) {
	res, err := scanReservation(r.db.QueryRow(ctx, findOverlapping,
		int16(table.Int()),
		pgconv.TimeToPgtype(slot.Start()),
		pgconv.TimeToPgtype(slot.End()),
		pgconv.UUIDPtrToPgtype(excludeID),
	))
	if pgconv.IsNoRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, infra.WrapDBErr(r.logger, "find overlapping reservation", err)
	}
	return res, nil
}

func (r *ReservationRepository) FindInRange(ctx context.Context, window reservation.TimeSlot) ([]*reservation.Reservation, error) {
	rows, err := r.db.Query(ctx, findInRange, pgconv.TimeToPgtype(window.Start()), pgconv.TimeToPgtype(window.End()))
	if err != nil {
		return nil, infra.WrapDBErr(r.logger, "find reservations in range", err)
	}
	out, err := collectReservations(rows)
	if err != nil {
		return nil, infra.WrapDBErr(r.logger, "find reservations in range", err)
	}
	return out, nil
}

func (r *ReservationRepository) Insert(ctx context.Context, res *reservation.Reservation) (uuid.UUID, error) {
	var id pgtype.UUID
	err := r.db.QueryRow(ctx, insertReservation,
		int16(res.Table().Int()),
		pgconv.TimeToPgtype(res.StartTime()),
		pgconv.TimeToPgtype(res.EndTime()),
		int16(res.DurationHours().Int()),
		int16(res.PartySize().Int()),
		res.CustomerName().String(),
		pgconv.TimeToPgtype(res.CreatedAt()),
	).Scan(&id)
	if err != nil {
		return uuid.Nil, infra.WrapDBErr(r.logger, "insert reservation", err)
	}
	return pgconv.UUIDFromPgtype(id), nil
}

func (r *ReservationRepository) Update(ctx context.Context, id uuid.UUID, patch reservation.Patch, updatedAt time.Time) (*reservation.Reservation, error) {
	res, err := scanReservation(r.db.QueryRow(ctx, updateReservation,
		pgconv.UUIDToPgtype(id),
		pgconv.IntPtrToPgtype(patch.Table),
		pgconv.TimePtrToPgtype(patch.StartTime),
		pgconv.IntPtrToPgtype(patch.DurationHours),
		pgconv.IntPtrToPgtype(patch.PartySize),
		pgconv.StringPtrToPgtype(patch.CustomerName),
		pgconv.TimeToPgtype(updatedAt),
	))
	if err != nil {
		return nil, infra.WrapDBErr(r.logger, "update reservation "+id.String(), err)
	}
	return res, nil
}

func (r *ReservationRepository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := r.db.Exec(ctx, deleteReservation, pgconv.UUIDToPgtype(id))
	if err != nil {
		return false, infra.WrapDBErr(r.logger, "delete reservation "+id.String(), err)
	}
	return tag.RowsAffected() > 0, nil
}

type reservationRow struct {
	ID            pgtype.UUID
	TableNumber   int16
	StartTime     pgtype.Timestamptz
	DurationHours int16
	PartySize     int16
	CustomerName  string
	CreatedAt     pgtype.Timestamptz
	UpdatedAt     pgtype.Timestamptz
}

func (row reservationRow) toDomain() (*reservation.Reservation, error) {
	return reservation.Reconstruct(
		pgconv.UUIDFromPgtype(row.ID),
		int(row.TableNumber),
		pgconv.TimeFromPgtype(row.StartTime),
		int(row.DurationHours),
		int(row.PartySize),
		row.CustomerName,
		pgconv.TimeFromPgtype(row.CreatedAt),
		pgconv.TimeFromPgtype(row.UpdatedAt),
	)
}

func scanReservation(row pgx.Row) (*reservation.Reservation, error) {
	var rr reservationRow
	if err := row.Scan(
		&rr.ID, &rr.TableNumber, &rr.StartTime, &rr.DurationHours,
		&rr.PartySize, &rr.CustomerName, &rr.CreatedAt, &rr.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return rr.toDomain()
}

func collectReservations(rows pgx.Rows) ([]*reservation.Reservation, error) {
	defer rows.Close()

	out := make([]*reservation.Reservation, 0)
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
