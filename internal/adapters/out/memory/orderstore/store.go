// Package orderstore keeps session orders in memory, keyed by order id.
// The store is capacity limited; with capacity one it enforces the single
// active order of a session.
package orderstore

import (
	"context"
	"fmt"
	"sync"

	"harvestlog/internal/core/domain/model/kernel"
	"harvestlog/internal/core/domain/model/order"
	"harvestlog/internal/pkg/errs"
)

// DefaultCapacity is the number of orders a session may hold.
const DefaultCapacity = 1

// Store is an in-memory OrderRepository. It stores and returns clones, so
// callers never share an aggregate with the store.
type Store struct {
	mu       sync.RWMutex
	capacity int
	orders   map[string]*order.Order
	// order of insertion, oldest first
	ids []string
}

// New returns a store holding at most capacity orders. A non-positive
// capacity falls back to DefaultCapacity.
func New(capacity int) *Store {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}

	return &Store{
		capacity: capacity,
		orders:   make(map[string]*order.Order, capacity),
	}
}

func (s *Store) Add(_ context.Context, aggregate *order.Order) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id := aggregate.ID().String()
	if _, ok := s.orders[id]; ok {
		return errs.NewObjectAlreadyExistsError("order", id)
	}
	if len(s.orders) >= s.capacity {
		return errs.NewObjectAlreadyExistsErrorWithCause("active order", s.ids[0],
			fmt.Errorf("store holds at most %d order(s)", s.capacity))
	}

	s.orders[id] = aggregate.Clone()
	s.ids = append(s.ids, id)
	return nil
}

func (s *Store) Update(_ context.Context, aggregate *order.Order) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id := aggregate.ID().String()
	if _, ok := s.orders[id]; !ok {
		return errs.NewObjectNotFoundError("order", id)
	}

	s.orders[id] = aggregate.Clone()
	return nil
}

func (s *Store) Get(_ context.Context, id kernel.UUID) (*order.Order, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	o, ok := s.orders[id.String()]
	if !ok {
		return nil, errs.NewObjectNotFoundError("order", id.String())
	}
	return o.Clone(), nil
}

// GetActive returns the most recently added order, or nil.
func (s *Store) GetActive(_ context.Context) (*order.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.ids) == 0 {
		return nil, nil //nolint:nilnil // no active order is not an error
	}
	return s.orders[s.ids[len(s.ids)-1]].Clone(), nil
}

func (s *Store) Remove(_ context.Context, id kernel.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := id.String()
	if _, ok := s.orders[key]; !ok {
		return nil
	}

	delete(s.orders, key)
	for i, stored := range s.ids {
		if stored == key {
			s.ids = append(s.ids[:i], s.ids[i+1:]...)
			break
		}
	}
	return nil
}

// Len returns the number of stored orders.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.orders)
}
