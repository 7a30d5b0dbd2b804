// Package memory is the in-process adapter for the remote ports. It is
// the default backend for development and the fixture for tests.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"spendtracker/internal/core"
	"spendtracker/internal/remote"
)

type Store struct {
	mu           sync.Mutex
	transactions map[string][]core.Transaction // by user id
	presets      map[string][]core.Preset
	statuses     map[string][]core.MonthStatus
	currencies   map[string]core.CurrencyCode
	now          func() time.Time
}

func NewStore() *Store {
	return &Store{
		transactions: map[string][]core.Transaction{},
		presets:      map[string][]core.Preset{},
		statuses:     map[string][]core.MonthStatus{},
		currencies:   map[string]core.CurrencyCode{},
		now:          time.Now,
	}
}

// SetClock overrides the timestamp source. Tests only.
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

func (s *Store) ListTransactions(_ context.Context, userID string) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return core.SortByDateDesc(s.transactions[userID]), nil
}

func (s *Store) CreateTransaction(_ context.Context, t core.Transaction) (core.Transaction, error) {
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	t.ID = uuid.NewString()
	t.CreatedAt = s.now()
	s.transactions[t.UserID] = append(s.transactions[t.UserID], t)
	return t, nil
}

func (s *Store) DeleteTransaction(_ context.Context, userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := s.transactions[userID]
	for i, t := range list {
		if t.ID == id {
			s.transactions[userID] = append(list[:i:i], list[i+1:]...)
			return nil
		}
	}
	return remote.ErrNotFound
}

func (s *Store) ListPresets(_ context.Context, userID string) ([]core.Preset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Preset(nil), s.presets[userID]...), nil
}

func (s *Store) CreatePreset(_ context.Context, p core.Preset) (core.Preset, error) {
	if err := p.Validate(); err != nil {
		return core.Preset{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.ID == "" {
		p.ID = uuid.NewString()
	} else {
		for _, q := range s.presets[p.UserID] {
			if q.ID == p.ID {
				return core.Preset{}, remote.ErrConflict
			}
		}
	}
	s.presets[p.UserID] = append(s.presets[p.UserID], p)
	return p, nil
}

func (s *Store) UpdatePreset(_ context.Context, p core.Preset) error {
	if err := p.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	list := s.presets[p.UserID]
	for i, q := range list {
		if q.ID == p.ID {
			list[i] = p
			return nil
		}
	}
	return remote.ErrNotFound
}

func (s *Store) DeletePreset(_ context.Context, userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := s.presets[userID]
	for i, p := range list {
		if p.ID == id {
			s.presets[userID] = append(list[:i:i], list[i+1:]...)
			return nil
		}
	}
	return remote.ErrNotFound
}

func (s *Store) ListMonthStatuses(_ context.Context, userID string) ([]core.MonthStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.MonthStatus(nil), s.statuses[userID]...), nil
}

func (s *Store) UpsertMonthStatus(_ context.Context, st core.MonthStatus) (core.MonthStatus, error) {
	if err := st.Month.Validate(); err != nil {
		return core.MonthStatus{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	list := s.statuses[st.UserID]
	for i, existing := range list {
		if existing.Month == st.Month {
			st.ID = existing.ID
			list[i] = st
			return st, nil
		}
	}
	st.ID = uuid.NewString()
	s.statuses[st.UserID] = append(list, st)
	return st, nil
}

func (s *Store) Currency(_ context.Context, userID string) (core.CurrencyCode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.currencies[userID]; ok {
		return c, nil
	}
	return core.DefaultCurrency, nil
}

func (s *Store) SetCurrency(_ context.Context, userID string, code core.CurrencyCode) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.currencies[userID] = code
	return nil
}
