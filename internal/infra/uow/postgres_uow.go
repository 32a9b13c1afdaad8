package uow

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"errors"
	"log/slog"
	"slices"
	"time"

	"table-reservation/internal/domain/reservation"
	"table-reservation/internal/infra"
	"table-reservation/internal/infra/pgstore"
	"table-reservation/internal/pkg/errs"
	"table-reservation/internal/pkg/pgconv"
	"table-reservation/internal/usecase/shared"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// advisoryLockNamespace is the first key of the two-key advisory lock; the table number is the second.
const advisoryLockNamespace int32 = 0x5245 // "RE"

const lockTable = `SELECT pg_advisory_xact_lock($1, $2)`

var (
	errTransactionBegin   = errs.New("failed to begin transaction")
	errTransactionCommit  = errs.New("failed to commit transaction")
	errMaxRetriesExceeded = errs.New("transaction failed after max retries")
)

type PostgresUoW struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

func NewPostgresUoW(pool *pgxpool.Pool, logger *slog.Logger) *PostgresUoW {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresUoW{
		pool:   pool,
		logger: logger,
	}
}

var _ shared.UnitOfWork = (*PostgresUoW)(nil)

// Within runs fn in a ReadCommitted transaction after taking a transaction-scoped
// advisory lock per table. Each statement sees rows committed by the previous lock holder.
func (u *PostgresUoW) Within(ctx context.Context, tables []reservation.TableNumber, fn func(ctx context.Context, repo shared.ReservationRepository) error) error {
	keys := make([]int32, 0, len(tables))
	for _, t := range tables {
		keys = append(keys, int32(t.Int()))
	}
	slices.Sort(keys)
	keys = slices.Compact(keys)

	return u.runInTxWithOptions(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted}, func(ctx context.Context, tx pgx.Tx) error {
		for _, key := range keys {
			if _, err := tx.Exec(ctx, lockTable, advisoryLockNamespace, key); err != nil {
				return infra.WrapDBErr(u.logger, "lock table", err)
			}
		}
		return fn(ctx, pgstore.NewReservationRepository(tx, u.logger))
	})
}

func (u *PostgresUoW) Reader() shared.ReservationReader {
	return pgstore.NewReservationRepository(u.pool, u.logger)
}

func (u *PostgresUoW) Ping(ctx context.Context) error {
	if err := u.pool.Ping(ctx); err != nil {
		return infra.WrapRepoErr(u.logger, infra.KindUnavailable, "ping database", err)
	}
	return nil
}

// Avoids defer accumulation in retry loops to prevent connection leaks
func (u *PostgresUoW) runInTxWithOptions(ctx context.Context, options pgx.TxOptions, fn func(ctx context.Context, tx pgx.Tx) error) error {
	const maxRetries = 3
	base := 50 * time.Millisecond

	for attempt := 0; attempt <= maxRetries; attempt++ {
		pgxTx, err := u.pool.BeginTx(ctx, options)
		if err != nil {
			return infra.WrapDBErr(u.logger, "begin transaction", errs.Mark(err, errTransactionBegin))
		}

		err = fn(ctx, pgxTx)
		if err == nil {
			if err = pgxTx.Commit(ctx); err == nil {
				return nil
			}
			err = infra.WrapDBErr(u.logger, "commit transaction", errs.Mark(err, errTransactionCommit))
		}

		if rollbackErr := pgxTx.Rollback(ctx); rollbackErr != nil {
			if !errors.Is(rollbackErr, pgx.ErrTxClosed) {
				u.logger.Warn("rollback failed", "attempt", attempt+1, "error", rollbackErr.Error())
			}
		}

		if !shouldRetry(err, attempt, maxRetries) {
			if isRetryableError(err) && attempt == maxRetries {
				u.logger.Error("transaction failed after max retries",
					"attempts", attempt+1,
					"error", err.Error())
				return errs.Mark(err, errMaxRetriesExceeded)
			}
			return err
		}

		waitTime := calculateBackoff(attempt, base)

		u.logger.Warn("retrying transaction due to retryable error",
			"attempt", attempt+1,
			"wait_ms", waitTime.Milliseconds(),
			"error", err.Error())

		select {
		case <-ctx.Done():
			return infra.WrapDBErr(u.logger, "wait for transaction retry", ctx.Err())
		case <-time.After(waitTime):
		}
	}

	return errMaxRetriesExceeded
}

func shouldRetry(err error, attempt, maxRetries int) bool {
	return isRetryableError(err) && attempt < maxRetries
}

func calculateBackoff(attempt int, base time.Duration) time.Duration {
	waitTime := time.Duration(1<<attempt) * base
	jitter := cryptoRandInt63n(int64(waitTime / 5))
	return waitTime + time.Duration(jitter)
}

func cryptoRandInt63n(n int64) int64 {
	if n <= 0 {
		return 0
	}
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return 0
	}
	uval := binary.BigEndian.Uint64(buf[:]) & 0x7FFFFFFFFFFFFFFF
	// #nosec G115 -- masked to 63 bits above
	return int64(uval) % n
}

// Serialization failures and deadlocks never change the outcome of an
// overlap check, so retrying them is safe.
func isRetryableError(err error) bool {
	switch pgconv.SQLState(err) {
	case pgconv.CodeSerializationFailure, pgconv.CodeDeadlockDetected:
		return true
	default:
		return false
	}
}
