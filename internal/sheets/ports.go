package sheets

import (
	"context"

	"spendtracker/internal/core"
)

// Ports for outbound mirror adapters.
type (
	TransactionWriter interface {
		Append(ctx context.Context, tx core.Transaction) (rowRef string, err error)
	}

	TransactionRemover interface {
		Remove(ctx context.Context, transactionID string) error
	}
)
