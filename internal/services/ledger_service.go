package services

import (
	"context"
	"log/slog"

	"spendtracker/internal/core"
	"spendtracker/internal/events"
	"spendtracker/internal/store"
)

// ChangePublisher is the slice of the events client the service needs.
type ChangePublisher interface {
	Publish(ctx context.Context, msg *events.ChangeMessage) error
}

// LedgerService orchestrates ledger operations across the optimistic
// store and the change feed. The store is authoritative; feed publishing
// is best-effort and never fails the request.
type LedgerService struct {
	store     *store.Store
	publisher ChangePublisher
}

func NewLedgerService(s *store.Store, publisher ChangePublisher) *LedgerService {
	return &LedgerService{
		store:     s,
		publisher: publisher,
	}
}

// AddTransaction records a transaction and announces it on the feed.
func (s *LedgerService) AddTransaction(ctx context.Context, draft core.Transaction) (core.Transaction, error) {
	confirmed, err := s.store.AddTransaction(ctx, draft)
	if err != nil {
		return core.Transaction{}, err
	}

	s.publish(ctx, events.NewTransactionCreated(confirmed.UserID, confirmed.ID))
	return confirmed, nil
}

// DeleteTransaction removes a transaction and announces the deletion.
func (s *LedgerService) DeleteTransaction(ctx context.Context, id string) error {
	if err := s.store.DeleteTransaction(ctx, id); err != nil {
		return err
	}

	s.publish(ctx, events.NewTransactionDeleted(s.store.UserID(), id))
	return nil
}

// CloseMonth runs the month-close workflow and announces the close. When
// the sweep created an auto-savings transaction that is announced too.
func (s *LedgerService) CloseMonth(ctx context.Context, month core.MonthKey) (store.CloseResult, error) {
	res, err := s.store.CloseMonth(ctx, month)
	if err != nil {
		return store.CloseResult{}, err
	}

	if res.AutoSaved != nil {
		s.publish(ctx, events.NewTransactionCreated(res.AutoSaved.UserID, res.AutoSaved.ID))
	}
	s.publish(ctx, events.NewMonthClosed(s.store.UserID(), month))
	return res, nil
}

// Store exposes the underlying cache for read paths and the remaining
// mutations (presets, currency) that have no feed message.
func (s *LedgerService) Store() *store.Store {
	return s.store
}

func (s *LedgerService) publish(ctx context.Context, msg *events.ChangeMessage) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, msg); err != nil {
		// Don't fail the request - the store already holds the change.
		slog.ErrorContext(ctx, "Failed to publish change message",
			"kind", msg.Kind, "error", err)
	}
}
