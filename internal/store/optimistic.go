package store

import (
	"context"

	"github.com/google/uuid"

	"spendtracker/internal/core"
	"spendtracker/internal/remote"
)

// mutation is one optimistic cache update. apply, revert and reconcile
// run under the store lock; call runs outside it with the configured
// timeout. apply may refuse the mutation after inspecting the locked
// state, so preconditions that depend on the cache (like the debt pool)
// hold against concurrent mutations, not just the state at entry.
// revert and reconcile must locate their records by identifier, never
// by position or recency, so an out-of-order completion cannot clobber
// state written by a newer operation.
type mutation[T any] struct {
	apply     func() error
	call      func(ctx context.Context) (T, error)
	revert    func()
	reconcile func(T)
}

// mutate runs the optimistic protocol: apply locally, persist remotely,
// then reconcile server-assigned fields on success or revert on failure.
// An apply refusal returns before any remote call. The remote error is
// returned untouched so callers can classify it.
func mutate[T any](s *Store, ctx context.Context, m mutation[T]) error {
	s.mu.Lock()
	if err := m.apply(); err != nil {
		s.mu.Unlock()
		return err
	}
	timeout := s.timeout
	s.mu.Unlock()

	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	result, err := m.call(callCtx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		m.revert()
		return err
	}
	if m.reconcile != nil {
		m.reconcile(result)
	}
	return nil
}

// AddTransaction validates the draft, inserts it into the cache under a
// client-generated temporary id, and persists it. On success the cache
// entry is rewritten with the server-confirmed record; on failure it is
// removed again.
func (s *Store) AddTransaction(ctx context.Context, draft core.Transaction) (core.Transaction, error) {
	draft.UserID = s.userID
	if draft.Type == core.Savings && draft.SavingsKind == "" {
		draft.SavingsKind = core.SavingsManual
	}
	if err := draft.Validate(); err != nil {
		return core.Transaction{}, err
	}

	tempID := "temp-" + uuid.NewString()
	local := draft
	local.ID = tempID
	local.CreatedAt = s.now()

	var confirmed core.Transaction
	err := mutate(s, ctx, mutation[core.Transaction]{
		apply: func() error {
			// The overpayment check runs in the same critical section as
			// the insert, so an in-flight payment already counts against
			// the pool when the next one is checked.
			if draft.Type == core.DebtPayment {
				outstanding := core.ComputeOutstandingDebt(s.statuses, s.transactions)
				if draft.Amount.Cents > outstanding.Cents {
					return ErrDebtOverpayment
				}
			}
			s.insertTransactionLocked(local)
			return nil
		},
		call: func(ctx context.Context) (core.Transaction, error) {
			return s.remote.CreateTransaction(ctx, draft)
		},
		revert: func() {
			s.removeTransactionLocked(tempID)
		},
		reconcile: func(server core.Transaction) {
			confirmed = server
			// If the temp record was removed while the call was in
			// flight there is nothing left to confirm.
			s.replaceTransactionLocked(tempID, server)
		},
	})
	if err != nil {
		return core.Transaction{}, err
	}
	return confirmed, nil
}

// DeleteTransaction removes the record from the cache and persists the
// delete. On failure the record reappears at its original position with
// its original content.
func (s *Store) DeleteTransaction(ctx context.Context, id string) error {
	var (
		removed core.Transaction
		index   int
		found   bool
	)
	return mutate(s, ctx, mutation[struct{}]{
		apply: func() error {
			removed, index, found = s.removeTransactionLocked(id)
			return nil
		},
		call: func(ctx context.Context) (struct{}, error) {
			if !found {
				return struct{}{}, remote.ErrNotFound
			}
			return struct{}{}, s.remote.DeleteTransaction(ctx, s.userID, id)
		},
		revert: func() {
			if found {
				s.restoreTransactionLocked(removed, index)
			}
		},
	})
}
