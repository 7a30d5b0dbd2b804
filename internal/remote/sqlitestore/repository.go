// Package sqlitestore implements the remote store ports on SQLite. It is
// the local stand-in for the hosted relational store and keeps the same
// per-user row scoping and ordering guarantees.
package sqlitestore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"spendtracker/internal/core"
	"spendtracker/internal/remote"
)

type Repository struct {
	db *sql.DB
}

func NewRepository(dbPath string) (*Repository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Repository{db: db}, nil
}

func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

const transactionColumns = "id, user_id, amount_cents, type, category_id, subcategory, note, date, created_at, funded_from, savings_kind"

func (r *Repository) ListTransactions(ctx context.Context, userID string) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+transactionColumns+" FROM transactions WHERE user_id = ? ORDER BY date DESC, created_at DESC, id",
		userID)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *Repository) CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}
	t.ID = uuid.NewString()
	t.CreatedAt = time.Now().UTC()

	_, err := r.db.ExecContext(ctx,
		"INSERT INTO transactions ("+transactionColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		t.ID, t.UserID, t.Amount.Cents, string(t.Type), t.CategoryID, t.Subcategory, t.Note,
		t.Date.String(), t.CreatedAt.Format(time.RFC3339Nano), string(t.FundedFrom), string(t.SavingsKind))
	if err != nil {
		return core.Transaction{}, fmt.Errorf("create transaction: %w", err)
	}

	slog.InfoContext(ctx, "Transaction saved",
		"id", t.ID,
		"type", string(t.Type),
		"category_id", t.CategoryID,
		"amount_cents", t.Amount.Cents)
	return t, nil
}

func (r *Repository) DeleteTransaction(ctx context.Context, userID, id string) error {
	res, err := r.db.ExecContext(ctx,
		"DELETE FROM transactions WHERE id = ? AND user_id = ?", id, userID)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	if n == 0 {
		return remote.ErrNotFound
	}
	return nil
}

func (r *Repository) ListPresets(ctx context.Context, userID string) ([]core.Preset, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, user_id, name, amount_cents, category_id, subcategory, note, funded_from FROM presets WHERE user_id = ? ORDER BY name, id",
		userID)
	if err != nil {
		return nil, fmt.Errorf("list presets: %w", err)
	}
	defer rows.Close()

	var out []core.Preset
	for rows.Next() {
		var p core.Preset
		var funded string
		if err := rows.Scan(&p.ID, &p.UserID, &p.Name, &p.Amount.Cents, &p.CategoryID, &p.Subcategory, &p.Note, &funded); err != nil {
			return nil, fmt.Errorf("scan preset: %w", err)
		}
		p.FundedFrom = core.FundedFrom(funded)
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *Repository) CreatePreset(ctx context.Context, p core.Preset) (core.Preset, error) {
	if err := p.Validate(); err != nil {
		return core.Preset{}, err
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO presets (id, user_id, name, amount_cents, category_id, subcategory, note, funded_from) VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		p.ID, p.UserID, p.Name, p.Amount.Cents, p.CategoryID, p.Subcategory, p.Note, string(p.FundedFrom))
	if err != nil {
		return core.Preset{}, fmt.Errorf("create preset: %w", err)
	}
	return p, nil
}

func (r *Repository) UpdatePreset(ctx context.Context, p core.Preset) error {
	if err := p.Validate(); err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx,
		"UPDATE presets SET name = ?, amount_cents = ?, category_id = ?, subcategory = ?, note = ?, funded_from = ? WHERE id = ? AND user_id = ?",
		p.Name, p.Amount.Cents, p.CategoryID, p.Subcategory, p.Note, string(p.FundedFrom), p.ID, p.UserID)
	if err != nil {
		return fmt.Errorf("update preset: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update preset: %w", err)
	}
	if n == 0 {
		return remote.ErrNotFound
	}
	return nil
}

func (r *Repository) DeletePreset(ctx context.Context, userID, id string) error {
	res, err := r.db.ExecContext(ctx,
		"DELETE FROM presets WHERE id = ? AND user_id = ?", id, userID)
	if err != nil {
		return fmt.Errorf("delete preset: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete preset: %w", err)
	}
	if n == 0 {
		return remote.ErrNotFound
	}
	return nil
}

func (r *Repository) ListMonthStatuses(ctx context.Context, userID string) ([]core.MonthStatus, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, user_id, month, processed_at, auto_amount_cents, debt_amount_cents FROM month_statuses WHERE user_id = ? ORDER BY month DESC",
		userID)
	if err != nil {
		return nil, fmt.Errorf("list month statuses: %w", err)
	}
	defer rows.Close()

	var out []core.MonthStatus
	for rows.Next() {
		var s core.MonthStatus
		var month string
		var processed sql.NullString
		if err := rows.Scan(&s.ID, &s.UserID, &month, &processed, &s.AutoAmount.Cents, &s.DebtAmount.Cents); err != nil {
			return nil, fmt.Errorf("scan month status: %w", err)
		}
		s.Month = core.MonthKey(month)
		if processed.Valid {
			ts, err := time.Parse(time.RFC3339Nano, processed.String)
			if err != nil {
				return nil, fmt.Errorf("parse processed_at: %w", err)
			}
			s.ProcessedAt = &ts
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *Repository) UpsertMonthStatus(ctx context.Context, s core.MonthStatus) (core.MonthStatus, error) {
	if err := s.Month.Validate(); err != nil {
		return core.MonthStatus{}, err
	}
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	var processed any
	if s.ProcessedAt != nil {
		processed = s.ProcessedAt.UTC().Format(time.RFC3339Nano)
	}

	// Keyed on (user_id, month): re-running a close overwrites the row.
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO month_statuses (id, user_id, month, processed_at, auto_amount_cents, debt_amount_cents)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id, month) DO UPDATE SET
			processed_at = excluded.processed_at,
			auto_amount_cents = excluded.auto_amount_cents,
			debt_amount_cents = excluded.debt_amount_cents`,
		s.ID, s.UserID, string(s.Month), processed, s.AutoAmount.Cents, s.DebtAmount.Cents)
	if err != nil {
		return core.MonthStatus{}, fmt.Errorf("upsert month status: %w", err)
	}

	// The insert id loses to the existing row on conflict; read it back.
	var id string
	err = r.db.QueryRowContext(ctx,
		"SELECT id FROM month_statuses WHERE user_id = ? AND month = ?",
		s.UserID, string(s.Month)).Scan(&id)
	if err != nil {
		return core.MonthStatus{}, fmt.Errorf("read month status id: %w", err)
	}
	s.ID = id
	return s, nil
}

func (r *Repository) Currency(ctx context.Context, userID string) (core.CurrencyCode, error) {
	var code string
	err := r.db.QueryRowContext(ctx,
		"SELECT currency FROM user_settings WHERE user_id = ?", userID).Scan(&code)
	if errors.Is(err, sql.ErrNoRows) {
		return core.DefaultCurrency, nil
	}
	if err != nil {
		return "", fmt.Errorf("read currency: %w", err)
	}
	return core.CurrencyCode(code), nil
}

func (r *Repository) SetCurrency(ctx context.Context, userID string, code core.CurrencyCode) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO user_settings (user_id, currency) VALUES (?, ?)
		ON CONFLICT (user_id) DO UPDATE SET currency = excluded.currency`,
		userID, string(code))
	if err != nil {
		return fmt.Errorf("set currency: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (core.Transaction, error) {
	var t core.Transaction
	var typ, date, created, funded, kind string
	err := row.Scan(&t.ID, &t.UserID, &t.Amount.Cents, &typ, &t.CategoryID, &t.Subcategory,
		&t.Note, &date, &created, &funded, &kind)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("scan transaction: %w", err)
	}
	t.Type = core.TransactionType(typ)
	t.FundedFrom = core.FundedFrom(funded)
	t.SavingsKind = core.SavingsKind(kind)
	if t.Date, err = core.ParseDate(date); err != nil {
		return core.Transaction{}, fmt.Errorf("parse transaction date %q: %w", date, err)
	}
	if t.CreatedAt, err = time.Parse(time.RFC3339Nano, created); err != nil {
		return core.Transaction{}, fmt.Errorf("parse created_at %q: %w", created, err)
	}
	return t, nil
}
