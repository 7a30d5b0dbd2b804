// Package worker mirrors ledger changes into a spreadsheet. It consumes
// the change feed and replays each change against the mirror adapter;
// the backing store stays authoritative.
package worker

import (
	"context"
	"fmt"
	"log/slog"

	"spendtracker/internal/events"
	"spendtracker/internal/remote"
	"spendtracker/internal/sheets"
)

type MirrorWorker struct {
	transactions remote.TransactionStore
	writer       sheets.TransactionWriter
	remover      sheets.TransactionRemover
}

func NewMirrorWorker(transactions remote.TransactionStore, writer sheets.TransactionWriter, remover sheets.TransactionRemover) *MirrorWorker {
	return &MirrorWorker{
		transactions: transactions,
		writer:       writer,
		remover:      remover,
	}
}

// Handle processes a single change message. Errors are returned so the
// consumer can nack and requeue; a record that has vanished between the
// publish and the fetch is skipped, not retried.
func (w *MirrorWorker) Handle(ctx context.Context, msg *events.ChangeMessage) error {
	switch msg.Kind {
	case events.KindTransactionCreated:
		return w.handleCreated(ctx, msg)
	case events.KindTransactionDeleted:
		return w.handleDeleted(ctx, msg)
	case events.KindMonthClosed:
		// The sweep transaction arrives as its own created message;
		// nothing extra to mirror.
		slog.InfoContext(ctx, "Month closed",
			"user_id", msg.UserID, "month", msg.Month)
		return nil
	default:
		slog.WarnContext(ctx, "Unknown change kind, dropping", "kind", msg.Kind)
		return nil
	}
}

func (w *MirrorWorker) handleCreated(ctx context.Context, msg *events.ChangeMessage) error {
	txs, err := w.transactions.ListTransactions(ctx, msg.UserID)
	if err != nil {
		return fmt.Errorf("list transactions: %w", err)
	}

	for _, tx := range txs {
		if tx.ID != msg.TransactionID {
			continue
		}
		ref, err := w.writer.Append(ctx, tx)
		if err != nil {
			return fmt.Errorf("append row: %w", err)
		}
		slog.InfoContext(ctx, "Mirrored transaction",
			"transaction_id", tx.ID, "row_ref", ref)
		return nil
	}

	// Already deleted again; the delete message will be a no-op too.
	slog.WarnContext(ctx, "Transaction gone before mirroring, skipping",
		"transaction_id", msg.TransactionID)
	return nil
}

func (w *MirrorWorker) handleDeleted(ctx context.Context, msg *events.ChangeMessage) error {
	if w.remover == nil {
		slog.WarnContext(ctx, "No remover configured, skipping row removal",
			"transaction_id", msg.TransactionID)
		return nil
	}
	if err := w.remover.Remove(ctx, msg.TransactionID); err != nil {
		return fmt.Errorf("remove row: %w", err)
	}
	slog.InfoContext(ctx, "Removed mirrored transaction",
		"transaction_id", msg.TransactionID)
	return nil
}
