// Package memory is an in-process Store used by the "memory" database driver
// and by service tests. Transactions are serialized and roll back by
// restoring a snapshot taken at begin.
package memory

import (
	"context"
	"maps"
	"slices"
	"sync"

	"rental-backoffice/internal/domain"
	"rental-backoffice/internal/repository"
)

type data struct {
	registers    map[int64]domain.CashRegister
	transactions map[int64]domain.CashTransaction
	rentals      map[int64]domain.Rental
	payments     map[int64]domain.Payment
	items        map[int64]domain.Item
	tiers        map[int64]domain.PricingTier
	clients      map[int64]domain.Client
	operators    map[int64]string
	audit        []domain.AuditEvent
	seq          int64
}

func (d *data) nextID() int64 {
	d.seq++
	return d.seq
}

func (d *data) clone() *data {
	return &data{
		registers:    maps.Clone(d.registers),
		transactions: maps.Clone(d.transactions),
		rentals:      maps.Clone(d.rentals),
		payments:     maps.Clone(d.payments),
		items:        maps.Clone(d.items),
		tiers:        maps.Clone(d.tiers),
		clients:      maps.Clone(d.clients),
		operators:    maps.Clone(d.operators),
		audit:        slices.Clone(d.audit),
		seq:          d.seq,
	}
}

type Store struct {
	mu sync.Mutex
	d  *data
}

func New() *Store {
	return &Store{d: &data{
		registers:    make(map[int64]domain.CashRegister),
		transactions: make(map[int64]domain.CashTransaction),
		rentals:      make(map[int64]domain.Rental),
		payments:     make(map[int64]domain.Payment),
		items:        make(map[int64]domain.Item),
		tiers:        make(map[int64]domain.PricingTier),
		clients:      make(map[int64]domain.Client),
		operators:    make(map[int64]string),
	}}
}

// SetOperatorName registers the display name joined onto cash registers.
func (s *Store) SetOperatorName(id int64, name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.d.operators[id] = name
}

func (s *Store) Ping(context.Context) error { return nil }

func (s *Store) Repos() repository.Repositories {
	return s.repos(false)
}

func (s *Store) RunInTx(ctx context.Context, fn func(ctx context.Context, repos repository.Repositories) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.d.clone()
	defer func() {
		if p := recover(); p != nil {
			s.d = snapshot
			panic(p)
		}
	}()
	if err := fn(ctx, s.repos(true)); err != nil {
		s.d = snapshot
		return err
	}
	return nil
}

func (s *Store) repos(inTx bool) repository.Repositories {
	v := &view{s: s, inTx: inTx}
	return repository.Repositories{
		Registers:    &registerRepo{v},
		Transactions: &transactionRepo{v},
		Rentals:      &rentalRepo{v},
		Payments:     &paymentRepo{v},
		Items:        &itemRepo{v},
		Clients:      &clientRepo{v},
		Audit:        &auditRepo{v},
	}
}

// view runs repository calls against the store. Calls made inside RunInTx
// already hold the lock.
type view struct {
	s    *Store
	inTx bool
}

func (v *view) do(fn func(d *data) error) error {
	if !v.inTx {
		v.s.mu.Lock()
		defer v.s.mu.Unlock()
	}
	return fn(v.s.d)
}

// page applies limit and offset to an already ordered slice.
func page[T any](all []T, limit, offset int) []T {
	if offset >= len(all) {
		return nil
	}
	all = all[offset:]
	if limit > 0 && limit < len(all) {
		all = all[:limit]
	}
	return all
}
