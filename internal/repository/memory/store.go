// Package memory is an in-process row store implementing the repository
// interfaces. Conditional updates and transactions are applied under one
// mutex, so it gives the same single-winner guarantee as postgres.
package memory

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"

	"rideengine/internal/domain"
	"rideengine/internal/repository"
)

// Op names a store operation for error injection and call counting.
type Op int

const (
	OpRideCreate Op = iota
	OpRideGet
	OpRideList
	OpRideUpdate
	OpRejectionCreate
	OpRejectionList
	OpCancellationCreate
	OpCancellationGet
	OpMarkerCreate
	OpCommit
	opCount
)

// Store holds every table.
type Store struct {
	mu            sync.RWMutex
	rides         map[string]*domain.Ride
	seq           map[string]int64
	nextSeq       int64
	rejections    []*domain.Rejection
	cancellations map[string]*domain.Cancellation
	markers       map[string]*domain.GeoMarker

	errMu sync.RWMutex
	errs  map[Op]error
	calls [opCount]atomic.Int32
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		rides:         make(map[string]*domain.Ride),
		seq:           make(map[string]int64),
		cancellations: make(map[string]*domain.Cancellation),
		markers:       make(map[string]*domain.GeoMarker),
		errs:          make(map[Op]error),
	}
}

// InjectError makes every later call of op fail with err. A nil err clears it.
func (s *Store) InjectError(op Op, err error) {
	s.errMu.Lock()
	defer s.errMu.Unlock()
	if err == nil {
		delete(s.errs, op)
		return
	}
	s.errs[op] = err
}

// Calls returns how many times op was invoked.
func (s *Store) Calls(op Op) int {
	return int(s.calls[op].Load())
}

func (s *Store) enter(op Op) error {
	s.calls[op].Add(1)
	s.errMu.RLock()
	defer s.errMu.RUnlock()
	return s.errs[op]
}

// Rides returns the ride repository.
func (s *Store) Rides() *RideRepository { return &RideRepository{s: s} }

// Rejections returns the rejection repository.
func (s *Store) Rejections() *RejectionRepository { return &RejectionRepository{s: s} }

// Cancellations returns the cancellation repository.
func (s *Store) Cancellations() *CancellationRepository { return &CancellationRepository{s: s} }

// GeoMarkers returns the geo-marker repository.
func (s *Store) GeoMarkers() *GeoMarkerRepository { return &GeoMarkerRepository{s: s} }

// UnitOfWork returns a transaction runner over the store.
func (s *Store) UnitOfWork() *UnitOfWork { return &UnitOfWork{s: s} }

// Markers returns a snapshot of the stored geo-markers.
func (s *Store) Markers() []domain.GeoMarker {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.GeoMarker, 0, len(s.markers))
	for _, m := range s.markers {
		out = append(out, *m)
	}
	return out
}

// write is a staged mutation. check runs with s.mu held and may veto.
type write struct {
	check func() error
	apply func()
}

// txn collects writes until commit.
type txn struct {
	writes []write
}

func (s *Store) exec(tx *txn, w write) error {
	if tx != nil {
		s.mu.RLock()
		err := w.check()
		s.mu.RUnlock()
		if err != nil {
			return err
		}
		tx.writes = append(tx.writes, w)
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := w.check(); err != nil {
		return err
	}
	w.apply()
	return nil
}

func (s *Store) commit(tx *txn) error {
	if err := s.enter(OpCommit); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, w := range tx.writes {
		if err := w.check(); err != nil {
			return err
		}
	}
	for _, w := range tx.writes {
		w.apply()
	}
	return nil
}

// RideRepository is the in-memory repository.RideRepository.
type RideRepository struct {
	s  *Store
	tx *txn
}

var _ repository.RideRepository = (*RideRepository)(nil)

func (r *RideRepository) Create(ctx context.Context, ride *domain.Ride) error {
	if err := r.s.enter(OpRideCreate); err != nil {
		return err
	}
	stored := ride.Clone()
	return r.s.exec(r.tx, write{
		check: func() error {
			if _, ok := r.s.rides[stored.ID]; ok {
				return repository.ErrDuplicate
			}
			return nil
		},
		apply: func() {
			r.s.nextSeq++
			r.s.rides[stored.ID] = stored
			r.s.seq[stored.ID] = r.s.nextSeq
		},
	})
}

func (r *RideRepository) GetByID(ctx context.Context, id string) (*domain.Ride, error) {
	if err := r.s.enter(OpRideGet); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	ride, ok := r.s.rides[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return ride.Clone(), nil
}

func (r *RideRepository) List(ctx context.Context, filter repository.RideFilter) ([]*domain.Ride, error) {
	if err := r.s.enter(OpRideList); err != nil {
		return nil, err
	}

	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var out []*domain.Ride
	for _, ride := range r.s.rides {
		if filter.RiderID != "" && ride.RiderID != filter.RiderID {
			continue
		}
		if filter.DriverID != "" && ride.DriverID != filter.DriverID {
			continue
		}
		if len(filter.Statuses) > 0 && !hasStatus(filter.Statuses, ride.Status) {
			continue
		}
		out = append(out, ride.Clone())
	}

	sort.Slice(out, func(i, j int) bool {
		if !out[i].RequestedAt.Equal(out[j].RequestedAt) {
			return out[i].RequestedAt.After(out[j].RequestedAt)
		}
		return r.s.seq[out[i].ID] > r.s.seq[out[j].ID]
	})

	if limit := clampLimit(filter.Limit); len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *RideRepository) UpdateIfStatus(ctx context.Context, ride *domain.Ride, expected domain.RideStatus) error {
	if err := r.s.enter(OpRideUpdate); err != nil {
		return err
	}
	stored := ride.Clone()
	return r.s.exec(r.tx, write{
		check: func() error {
			current, ok := r.s.rides[stored.ID]
			if !ok || current.Status != expected {
				return repository.ErrStatusConflict
			}
			return nil
		},
		apply: func() {
			r.s.rides[stored.ID] = stored
		},
	})
}

func hasStatus(statuses []domain.RideStatus, s domain.RideStatus) bool {
	for _, want := range statuses {
		if want == s {
			return true
		}
	}
	return false
}

func clampLimit(limit int) int {
	switch {
	case limit <= 0:
		return 50
	case limit > 100:
		return 100
	}
	return limit
}

// RejectionRepository is the in-memory repository.RejectionRepository.
type RejectionRepository struct {
	s  *Store
	tx *txn
}

var _ repository.RejectionRepository = (*RejectionRepository)(nil)

func (r *RejectionRepository) Create(ctx context.Context, rejection *domain.Rejection) error {
	if err := r.s.enter(OpRejectionCreate); err != nil {
		return err
	}
	stored := *rejection
	return r.s.exec(r.tx, write{
		check: func() error { return nil },
		apply: func() { r.s.rejections = append(r.s.rejections, &stored) },
	})
}

func (r *RejectionRepository) ListByRide(ctx context.Context, rideID string) ([]*domain.Rejection, error) {
	if err := r.s.enter(OpRejectionList); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []*domain.Rejection
	for _, rej := range r.s.rejections {
		if rej.RideID == rideID {
			c := *rej
			out = append(out, &c)
		}
	}
	return out, nil
}

func (r *RejectionRepository) ListRecent(ctx context.Context, limit int) ([]*domain.Rejection, error) {
	if err := r.s.enter(OpRejectionList); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	limit = clampLimit(limit)
	out := make([]*domain.Rejection, 0, limit)
	for i := len(r.s.rejections) - 1; i >= 0 && len(out) < limit; i-- {
		c := *r.s.rejections[i]
		out = append(out, &c)
	}
	return out, nil
}

// CancellationRepository is the in-memory repository.CancellationRepository.
type CancellationRepository struct {
	s  *Store
	tx *txn
}

var _ repository.CancellationRepository = (*CancellationRepository)(nil)

func (r *CancellationRepository) Create(ctx context.Context, c *domain.Cancellation) error {
	if err := r.s.enter(OpCancellationCreate); err != nil {
		return err
	}
	stored := *c
	return r.s.exec(r.tx, write{
		check: func() error {
			if _, ok := r.s.cancellations[stored.RideID]; ok {
				return repository.ErrDuplicate
			}
			return nil
		},
		apply: func() { r.s.cancellations[stored.RideID] = &stored },
	})
}

func (r *CancellationRepository) GetByRide(ctx context.Context, rideID string) (*domain.Cancellation, error) {
	if err := r.s.enter(OpCancellationGet); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	c, ok := r.s.cancellations[rideID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := *c
	return &out, nil
}

// GeoMarkerRepository is the in-memory repository.GeoMarkerRepository.
type GeoMarkerRepository struct {
	s *Store
}

var _ repository.GeoMarkerRepository = (*GeoMarkerRepository)(nil)

func (r *GeoMarkerRepository) Create(ctx context.Context, m *domain.GeoMarker) error {
	if err := r.s.enter(OpMarkerCreate); err != nil {
		return err
	}
	stored := *m
	return r.s.exec(nil, write{
		check: func() error { return nil },
		apply: func() {
			if _, ok := r.s.markers[stored.RideID]; !ok {
				r.s.markers[stored.RideID] = &stored
			}
		},
	})
}

// UnitOfWork stages writes made through its repositories and applies them
// atomically when fn succeeds.
type UnitOfWork struct {
	s *Store
}

var _ repository.UnitOfWork = (*UnitOfWork)(nil)

func (u *UnitOfWork) WithinTx(ctx context.Context, fn func(ctx context.Context, repos repository.Repositories) error) error {
	tx := &txn{}
	repos := repository.Repositories{
		Rides:         &RideRepository{s: u.s, tx: tx},
		Rejections:    &RejectionRepository{s: u.s, tx: tx},
		Cancellations: &CancellationRepository{s: u.s, tx: tx},
	}
	if err := fn(ctx, repos); err != nil {
		return err
	}
	return u.s.commit(tx)
}
