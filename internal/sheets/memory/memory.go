// Package memory is an in-process mirror adapter for development and
// tests. Rows live in insertion order, keyed by transaction id.
package memory

import (
	"context"
	"fmt"
	"sync"

	"spendtracker/internal/core"
	ports "spendtracker/internal/sheets"
)

type Mirror struct {
	mu   sync.Mutex
	rows []core.Transaction
}

var (
	_ ports.TransactionWriter  = (*Mirror)(nil)
	_ ports.TransactionRemover = (*Mirror)(nil)
)

func NewMirror() *Mirror {
	return &Mirror{}
}

func (m *Mirror) Append(_ context.Context, tx core.Transaction) (string, error) {
	if err := tx.Validate(); err != nil {
		return "", fmt.Errorf("validation failed: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows = append(m.rows, tx)
	return fmt.Sprintf("row:%d", len(m.rows)), nil
}

func (m *Mirror) Remove(_ context.Context, transactionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, row := range m.rows {
		if row.ID == transactionID {
			m.rows = append(m.rows[:i], m.rows[i+1:]...)
			return nil
		}
	}
	// Replayed deletions are tolerated.
	return nil
}

// Rows returns a copy of the mirrored rows in insertion order.
func (m *Mirror) Rows() []core.Transaction {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]core.Transaction(nil), m.rows...)
}
