// Package remote defines the ports for the hosted backend the client
// delegates persistence and authentication to. The application core only
// sees these interfaces; adapters live in the subpackages.
package remote

import (
	"context"
	"errors"

	"spendtracker/internal/core"
)

var (
	// ErrNotFound is returned when a record does not exist or belongs to
	// another user.
	ErrNotFound = errors.New("record not found")

	// ErrConflict is returned when a create collides with an existing id.
	ErrConflict = errors.New("record already exists")

	// ErrNoSession is returned when a session token is missing, expired
	// or revoked.
	ErrNoSession = errors.New("no active session")

	// ErrInvalidCredentials is returned on failed sign-in.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

type (
	// TransactionStore is the transactions collection, scoped per user.
	TransactionStore interface {
		// ListTransactions returns all of the user's transactions ordered
		// by date descending, created_at descending.
		ListTransactions(ctx context.Context, userID string) ([]core.Transaction, error)

		// CreateTransaction persists the transaction and returns the
		// server-confirmed record: the store assigns the final id and the
		// creation timestamp.
		CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error)

		DeleteTransaction(ctx context.Context, userID, id string) error
	}

	// PresetStore is the quick-entry preset collection.
	PresetStore interface {
		ListPresets(ctx context.Context, userID string) ([]core.Preset, error)
		CreatePreset(ctx context.Context, p core.Preset) (core.Preset, error)
		UpdatePreset(ctx context.Context, p core.Preset) error
		DeletePreset(ctx context.Context, userID, id string) error
	}

	// MonthStatusStore is the month-status collection, unique on
	// (user, month).
	MonthStatusStore interface {
		ListMonthStatuses(ctx context.Context, userID string) ([]core.MonthStatus, error)

		// UpsertMonthStatus inserts or overwrites the row keyed on
		// (user, month) and returns the stored record.
		UpsertMonthStatus(ctx context.Context, s core.MonthStatus) (core.MonthStatus, error)
	}

	// SettingsStore is the per-user metadata slot holding the selected
	// currency code.
	SettingsStore interface {
		Currency(ctx context.Context, userID string) (core.CurrencyCode, error)
		SetCurrency(ctx context.Context, userID string, code core.CurrencyCode) error
	}

	// Store bundles the four collections of the hosted data store.
	Store interface {
		TransactionStore
		PresetStore
		MonthStatusStore
		SettingsStore
	}

	// Session identifies an authenticated user.
	Session struct {
		UserID string
		Email  string
		Token  string
	}

	// Auth is the hosted authentication service boundary.
	Auth interface {
		SignUp(ctx context.Context, email, password string) (Session, error)
		SignIn(ctx context.Context, email, password string) (Session, error)
		SignOut(ctx context.Context, token string) error

		// SessionFromToken validates a token and resolves the session.
		SessionFromToken(ctx context.Context, token string) (Session, error)

		// RequestPasswordReset issues a reset token for the account. The
		// token is delivered out of band; the returned value exists for
		// the dev backend and tests.
		RequestPasswordReset(ctx context.Context, email string) (string, error)
		ConfirmPasswordReset(ctx context.Context, resetToken, newPassword string) error
	}
)
