package store

import (
	"context"
	"fmt"
	"log/slog"

	"spendtracker/internal/core"
)

// CloseResult reports what a month close produced: the persisted status
// row and, for a positive remaining balance, the auto-savings
// transaction that swept it.
type CloseResult struct {
	Status    core.MonthStatus
	Remaining core.Money
	AutoSaved *core.Transaction
}

// CloseMonth converts the month's leftover or shortfall into a permanent
// record. The remaining balance is recomputed from the cache, never
// trusted from the caller.
//
// Unlike the optimistic mutations, close persists remotely FIRST and
// touches the cache only after every remote step succeeded: a failed
// close must never show the month as closed, and a half-applied close
// must never survive locally. The at-most-once gate is claimed under
// the lock before any remote call: the month is marked as closing, so a
// second close entering while the first is at a persistence await point
// is rejected instead of also finding no status row and re-running the
// non-idempotent transaction insert. The claim is released once the
// attempt settles; a failed attempt leaves the month open for retry.
func (s *Store) CloseMonth(ctx context.Context, month core.MonthKey) (CloseResult, error) {
	if err := month.Validate(); err != nil {
		return CloseResult{}, err
	}

	s.mu.Lock()
	for _, st := range s.statuses {
		if st.Month == month && st.Closed() {
			s.mu.Unlock()
			return CloseResult{}, ErrMonthClosed
		}
	}
	if _, inFlight := s.closing[month]; inFlight {
		s.mu.Unlock()
		return CloseResult{}, ErrCloseInProgress
	}
	s.closing[month] = struct{}{}
	overview := core.ComputeMonthOverview(s.transactions, month)
	now := s.now()
	timeout := s.timeout
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.closing, month)
		s.mu.Unlock()
	}()

	remaining := overview.Remaining
	status := core.MonthStatus{
		UserID:      s.userID,
		Month:       month,
		ProcessedAt: &now,
	}

	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var autoSaved *core.Transaction
	switch {
	case remaining.Cents > 0:
		status.AutoAmount = remaining
		confirmed, err := s.remote.CreateTransaction(callCtx, core.Transaction{
			UserID:      s.userID,
			Amount:      remaining,
			Type:        core.Savings,
			CategoryID:  "savings",
			Subcategory: core.AutoSavedSubcategory,
			Date:        month.LastDay(),
			SavingsKind: core.SavingsAuto,
		})
		if err != nil {
			return CloseResult{}, fmt.Errorf("create auto-savings transaction: %w", err)
		}
		autoSaved = &confirmed

		status, err = s.upsertStatusRemote(callCtx, status)
		if err != nil {
			// Undo the sweep so a retry starts from a clean slate. The
			// compensation runs on a fresh context: callCtx expiring is
			// the likeliest reason the upsert failed, and a dead context
			// would doom the cleanup too. If the compensation fails the
			// orphaned row surfaces on the next reload; the month stays
			// open either way.
			compCtx, compCancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
			defer compCancel()
			if derr := s.remote.DeleteTransaction(compCtx, s.userID, confirmed.ID); derr != nil {
				slog.ErrorContext(ctx, "Failed to compensate auto-savings insert",
					"month", month.String(),
					"transaction_id", confirmed.ID,
					"error", derr)
			}
			return CloseResult{}, err
		}

	case remaining.Cents < 0:
		status.DebtAmount = remaining.Abs()
		var err error
		if status, err = s.upsertStatusRemote(callCtx, status); err != nil {
			return CloseResult{}, err
		}

	default:
		var err error
		if status, err = s.upsertStatusRemote(callCtx, status); err != nil {
			return CloseResult{}, err
		}
	}

	s.mu.Lock()
	if autoSaved != nil {
		s.insertTransactionLocked(*autoSaved)
	}
	s.upsertStatusLocked(status)
	s.mu.Unlock()

	return CloseResult{Status: status, Remaining: remaining, AutoSaved: autoSaved}, nil
}

func (s *Store) upsertStatusRemote(ctx context.Context, st core.MonthStatus) (core.MonthStatus, error) {
	stored, err := s.remote.UpsertMonthStatus(ctx, st)
	if err != nil {
		return core.MonthStatus{}, fmt.Errorf("upsert month status: %w", err)
	}
	return stored, nil
}

func (s *Store) upsertStatusLocked(st core.MonthStatus) {
	for i, existing := range s.statuses {
		if existing.Month == st.Month {
			s.statuses[i] = st
			return
		}
	}
	s.statuses = append(s.statuses, st)
}
