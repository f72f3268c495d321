// Package memory provides an in-memory payroll.Store for tests and dev.
package memory

import (
	"context"
	"sync"

	"github.com/warp/payroll-engine/payroll"
)

type Store struct {
	mu     sync.RWMutex
	payees map[payroll.PayeeID]payroll.PayeeRecord
	order  []payroll.PayeeID
	totals payroll.PoolTotals
	events []payroll.Event
}

func New() *Store {
	return &Store{
		payees: make(map[payroll.PayeeID]payroll.PayeeRecord),
	}
}

func (s *Store) GetPayee(_ context.Context, id payroll.PayeeID) (payroll.PayeeRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.payees[id]
	if !ok {
		return payroll.PayeeRecord{}, false, nil
	}
	return rec.Clone(), true, nil
}

func (s *Store) PutPayee(_ context.Context, rec payroll.PayeeRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.payees[rec.ID]; !ok {
		s.order = append(s.order, rec.ID)
	}
	s.payees[rec.ID] = rec.Clone()
	return nil
}

func (s *Store) PayeeIDs(_ context.Context) ([]payroll.PayeeID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]payroll.PayeeID, len(s.order))
	copy(ids, s.order)
	return ids, nil
}

func (s *Store) PayeeCount(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order), nil
}

func (s *Store) Totals(_ context.Context) (payroll.PoolTotals, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.totals, nil
}

func (s *Store) PutTotals(_ context.Context, t payroll.PoolTotals) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.totals = t
	return nil
}

func (s *Store) AppendEvent(_ context.Context, ev payroll.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, ev)
	return nil
}

func (s *Store) Events(_ context.Context) ([]payroll.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]payroll.Event, len(s.events))
	copy(out, s.events)
	return out, nil
}
