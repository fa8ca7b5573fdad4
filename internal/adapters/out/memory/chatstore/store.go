// Package chatstore keeps open chat channels in memory.
package chatstore

import (
	"context"
	"sync"
	"time"

	"harvestlog/internal/core/domain/model/chat"
	"harvestlog/internal/pkg/errs"
)

// Store is an in-memory ChatRepository.
type Store struct {
	mu            sync.Mutex
	floodInterval time.Duration
	channels      map[string]*chat.Channel
}

// New returns an empty store. floodInterval is passed to every new channel.
func New(floodInterval time.Duration) *Store {
	return &Store{
		floodInterval: floodInterval,
		channels:      make(map[string]*chat.Channel),
	}
}

func (s *Store) Open(_ context.Context, orderID, chatID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.channels[orderID]; ok {
		return nil
	}

	c, err := chat.NewChannel(orderID, chatID, s.floodInterval)
	if err != nil {
		return err
	}

	s.channels[orderID] = c
	return nil
}

func (s *Store) Update(_ context.Context, orderID string, fn func(*chat.Channel) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.channels[orderID]
	if !ok {
		return errs.NewObjectNotFoundError("chat", orderID)
	}
	return fn(c)
}

func (s *Store) Messages(_ context.Context, orderID string) ([]chat.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.channels[orderID]
	if !ok {
		return nil, errs.NewObjectNotFoundError("chat", orderID)
	}
	return c.Messages(), nil
}

func (s *Store) Close(_ context.Context, orderID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c, ok := s.channels[orderID]; ok {
		c.Clear()
		delete(s.channels, orderID)
	}
	return nil
}
