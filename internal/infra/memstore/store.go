// Package memstore keeps reservations in process memory. It backs the
// service when STORE_DRIVER=memory and the use-case tests.
package memstore

import (
	"bytes"
	"context"
	"log/slog"
	"slices"
	"sync"
	"time"

	"table-reservation/internal/domain/reservation"
	"table-reservation/internal/infra"
	"table-reservation/internal/usecase/shared"

	"github.com/google/uuid"
)

// Store serialises writers per table and guards the record map with an RWMutex.
type Store struct {
	mu      sync.RWMutex
	records map[uuid.UUID]*reservation.Reservation

	locksMu sync.Mutex
	locks   map[reservation.TableNumber]*sync.Mutex

	logger *slog.Logger
}

func New(logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		records: make(map[uuid.UUID]*reservation.Reservation),
		locks:   make(map[reservation.TableNumber]*sync.Mutex),
		logger:  logger,
	}
}

var _ shared.UnitOfWork = (*Store)(nil)

func (s *Store) tableLock(t reservation.TableNumber) *sync.Mutex {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()
	l, ok := s.locks[t]
	if !ok {
		l = &sync.Mutex{}
		s.locks[t] = l
	}
	return l
}

// Within locks tables in ascending order, so two writers never wait on each other in a cycle.
func (s *Store) Within(ctx context.Context, tables []reservation.TableNumber, fn func(ctx context.Context, repo shared.ReservationRepository) error) error {
	if err := ctx.Err(); err != nil {
		return infra.WrapDBErr(s.logger, "begin unit of work", err)
	}

	sorted := slices.Clone(tables)
	slices.SortFunc(sorted, func(a, b reservation.TableNumber) int { return a.Int() - b.Int() })
	sorted = slices.Compact(sorted)

	for _, t := range sorted {
		l := s.tableLock(t)
		l.Lock()
		defer l.Unlock()
	}

	if err := ctx.Err(); err != nil {
		return infra.WrapDBErr(s.logger, "acquire table locks", err)
	}
	return fn(ctx, &repository{store: s})
}

func (s *Store) Reader() shared.ReservationReader {
	return &repository{store: s}
}

func (s *Store) Ping(ctx context.Context) error {
	return ctx.Err()
}

// Len reports the number of stored reservations.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

type repository struct {
	store *Store
}

func (r *repository) Get(ctx context.Context, id uuid.UUID) (*reservation.Reservation, error) {
	if err := ctx.Err(); err != nil {
		return nil, infra.WrapDBErr(r.store.logger, "get reservation", err)
	}
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	res, ok := r.store.records[id]
	if !ok {
		return nil, infra.WrapRepoErr(r.store.logger, infra.KindNotFound, "reservation "+id.String()+" not found", nil)
	}
	return res, nil
}

func (r *repository) ListAll(ctx context.Context) ([]*reservation.Reservation, error) {
	if err := ctx.Err(); err != nil {
		return nil, infra.WrapDBErr(r.store.logger, "list reservations", err)
	}
	return r.collect(func(*reservation.Reservation) bool { return true }), nil
}

func (r *repository) FindOverlapping(ctx context.Context, table reservation.TableNumber, slot reservation.TimeSlot, excludeID *uuid.UUID) (*reservation.Reservation, error) {
	if err := ctx.Err(); err != nil {
		return nil, infra.WrapDBErr(r.store.logger, "find overlapping reservation", err)
	}
	candidates := r.collect(func(res *reservation.Reservation) bool { return res.Table() == table })
	return reservation.FindConflict(candidates, table, slot, excludeID), nil
}

func (r *repository) FindInRange(ctx context.Context, window reservation.TimeSlot) ([]*reservation.Reservation, error) {
	if err := ctx.Err(); err != nil {
		return nil, infra.WrapDBErr(r.store.logger, "find reservations in range", err)
	}
	return r.collect(func(res *reservation.Reservation) bool { return window.ContainsStart(res.StartTime()) }), nil
}

func (r *repository) Insert(ctx context.Context, res *reservation.Reservation) (uuid.UUID, error) {
	if err := ctx.Err(); err != nil {
		return uuid.Nil, infra.WrapDBErr(r.store.logger, "insert reservation", err)
	}
	id := uuid.New()

	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.records[id] = res.WithID(id)
	return id, nil
}

func (r *repository) Update(ctx context.Context, id uuid.UUID, patch reservation.Patch, updatedAt time.Time) (*reservation.Reservation, error) {
	if err := ctx.Err(); err != nil {
		return nil, infra.WrapDBErr(r.store.logger, "update reservation", err)
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	current, ok := r.store.records[id]
	if !ok {
		return nil, infra.WrapRepoErr(r.store.logger, infra.KindNotFound, "reservation "+id.String()+" not found", nil)
	}
	updated := current.Apply(patch, updatedAt)
	r.store.records[id] = updated
	return updated, nil
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, infra.WrapDBErr(r.store.logger, "delete reservation", err)
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.records[id]; !ok {
		return false, nil
	}
	delete(r.store.records, id)
	return true, nil
}

// collect returns matching records ordered by start time, then id.
func (r *repository) collect(keep func(*reservation.Reservation) bool) []*reservation.Reservation {
	r.store.mu.RLock()
	out := make([]*reservation.Reservation, 0, len(r.store.records))
	for _, res := range r.store.records {
		if keep(res) {
			out = append(out, res)
		}
	}
	r.store.mu.RUnlock()

	slices.SortFunc(out, func(a, b *reservation.Reservation) int {
		if c := a.StartTime().Compare(b.StartTime()); c != 0 {
			return c
		}
		ai, bi := a.ID(), b.ID()
		return bytes.Compare(ai[:], bi[:])
	})
	return out
}
