// Package store holds the client-side cache of one user's records: the
// optimistically updated collections synced with the remote store. All
// reads are served from memory; every mutation goes through the
// optimistic apply/revert protocol in optimistic.go or, for month close,
// the persist-first workflow in close.go.
package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"spendtracker/internal/core"
	"spendtracker/internal/remote"
)

var (
	// ErrDebtOverpayment rejects debt payments larger than the
	// outstanding pool before any mutation happens.
	ErrDebtOverpayment = errors.New("payment exceeds outstanding debt")

	// ErrMonthClosed gates the month-close workflow: a closed month can
	// never be closed again.
	ErrMonthClosed = errors.New("month already closed")

	// ErrCloseInProgress rejects a close for a month whose close is
	// already executing. The caller retries once the first attempt has
	// settled.
	ErrCloseInProgress = errors.New("month close already in progress")
)

// DefaultRemoteTimeout bounds every persistence call. A hung call counts
// as failure and forces the rollback instead of leaving optimistic state
// in place indefinitely.
const DefaultRemoteTimeout = 15 * time.Second

// Store is the injectable cache owner. It is safe for concurrent use;
// the mutex guards the collections while remote calls run outside it, so
// an in-flight completion can interleave with new mutations without
// locking each other out.
type Store struct {
	userID  string
	remote  remote.Store
	timeout time.Duration
	now     func() time.Time

	mu           sync.Mutex
	transactions []core.Transaction
	presets      []core.Preset
	statuses     []core.MonthStatus
	currency     core.CurrencyCode
	closing      map[core.MonthKey]struct{}
}

// Open loads the user's collections from the remote store into a fresh
// cache.
func Open(ctx context.Context, r remote.Store, userID string) (*Store, error) {
	s := &Store{
		userID:  userID,
		remote:  r,
		timeout: DefaultRemoteTimeout,
		now:     time.Now,
		closing: map[core.MonthKey]struct{}{},
	}

	var err error
	if s.transactions, err = r.ListTransactions(ctx, userID); err != nil {
		return nil, fmt.Errorf("load transactions: %w", err)
	}
	if s.presets, err = r.ListPresets(ctx, userID); err != nil {
		return nil, fmt.Errorf("load presets: %w", err)
	}
	if s.statuses, err = r.ListMonthStatuses(ctx, userID); err != nil {
		return nil, fmt.Errorf("load month statuses: %w", err)
	}
	if s.currency, err = r.Currency(ctx, userID); err != nil {
		return nil, fmt.Errorf("load currency: %w", err)
	}
	return s, nil
}

// SetRemoteTimeout overrides the per-call timeout.
func (s *Store) SetRemoteTimeout(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.timeout = d
}

// SetClock overrides the timestamp source. Tests only.
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

func (s *Store) UserID() string {
	return s.userID
}

// Transactions returns a copy of the cached transactions, newest first.
func (s *Store) Transactions() []core.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	return core.SortByDateDesc(s.transactions)
}

// Presets returns a copy of the cached presets.
func (s *Store) Presets() []core.Preset {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Preset(nil), s.presets...)
}

// MonthStatuses returns a copy of the cached month statuses.
func (s *Store) MonthStatuses() []core.MonthStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.MonthStatus(nil), s.statuses...)
}

// MonthStatus returns the cached status row for the month, if any.
func (s *Store) MonthStatus(month core.MonthKey) (core.MonthStatus, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, st := range s.statuses {
		if st.Month == month {
			return st, true
		}
	}
	return core.MonthStatus{}, false
}

// Currency returns the cached display currency.
func (s *Store) Currency() core.CurrencyCode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currency
}

// Overview computes the month totals from the cache.
func (s *Store) Overview(month core.MonthKey) core.MonthOverview {
	s.mu.Lock()
	defer s.mu.Unlock()
	return core.ComputeMonthOverview(s.transactions, month)
}

// CumulativeTotals computes the all-time savings pools from the cache.
func (s *Store) CumulativeTotals() core.CumulativeTotals {
	s.mu.Lock()
	defer s.mu.Unlock()
	return core.ComputeCumulativeTotals(s.transactions)
}

// OutstandingDebt computes the pooled debt balance from the cache.
func (s *Store) OutstandingDebt() core.Money {
	s.mu.Lock()
	defer s.mu.Unlock()
	return core.ComputeOutstandingDebt(s.statuses, s.transactions)
}

// SetCurrency updates the display currency optimistically.
func (s *Store) SetCurrency(ctx context.Context, code core.CurrencyCode) error {
	if !code.Valid() {
		return fmt.Errorf("unknown currency code %q", code)
	}

	s.mu.Lock()
	previous := s.currency
	s.mu.Unlock()

	return mutate(s, ctx, mutation[struct{}]{
		apply: func() error {
			s.currency = code
			return nil
		},
		call: func(ctx context.Context) (struct{}, error) {
			return struct{}{}, s.remote.SetCurrency(ctx, s.userID, code)
		},
		revert: func() {
			// Only restore if nothing newer landed meanwhile.
			if s.currency == code {
				s.currency = previous
			}
		},
	})
}

// locked transaction helpers, used by the mutation closures

func (s *Store) insertTransactionLocked(t core.Transaction) {
	s.transactions = append(s.transactions, t)
}

func (s *Store) removeTransactionLocked(id string) (core.Transaction, int, bool) {
	for i, t := range s.transactions {
		if t.ID == id {
			s.transactions = append(s.transactions[:i:i], s.transactions[i+1:]...)
			return t, i, true
		}
	}
	return core.Transaction{}, 0, false
}

func (s *Store) restoreTransactionLocked(t core.Transaction, index int) {
	if index < 0 || index > len(s.transactions) {
		index = len(s.transactions)
	}
	s.transactions = append(s.transactions[:index:index],
		append([]core.Transaction{t}, s.transactions[index:]...)...)
}

func (s *Store) replaceTransactionLocked(id string, with core.Transaction) bool {
	for i, t := range s.transactions {
		if t.ID == id {
			s.transactions[i] = with
			return true
		}
	}
	return false
}
