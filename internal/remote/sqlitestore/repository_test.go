package sqlitestore

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"spendtracker/internal/core"
	"spendtracker/internal/remote"
)

func newTestRepo(t *testing.T) *Repository {
	t.Helper()
	repo, err := NewRepository(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestTransactionRoundTrip(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	in := core.Transaction{
		UserID:      "u1",
		Amount:      core.Money{Cents: 4550},
		Type:        core.Expense,
		CategoryID:  "food",
		Subcategory: "Groceries",
		Note:        "weekly shop",
		Date:        core.NewDate(2026, 1, 12),
		FundedFrom:  core.FundedFromSavings,
	}
	created, err := repo.CreateTransaction(ctx, in)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID == "" || created.CreatedAt.IsZero() {
		t.Fatalf("server fields missing: %+v", created)
	}

	list, err := repo.ListTransactions(ctx, "u1")
	if err != nil || len(list) != 1 {
		t.Fatalf("list: %v, %d rows", err, len(list))
	}
	got := list[0]
	if got.Amount != in.Amount || got.Type != in.Type || got.CategoryID != in.CategoryID ||
		got.Subcategory != in.Subcategory || got.Note != in.Note ||
		got.Date.String() != "2026-01-12" || got.FundedFrom != in.FundedFrom {
		t.Fatalf("round trip mismatch: %+v", got)
	}

	if rows, _ := repo.ListTransactions(ctx, "u2"); len(rows) != 0 {
		t.Fatalf("cross-user leak")
	}

	if err := repo.DeleteTransaction(ctx, "u2", created.ID); !errors.Is(err, remote.ErrNotFound) {
		t.Fatalf("delete must be scoped to owner, got %v", err)
	}
	if err := repo.DeleteTransaction(ctx, "u1", created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
}

func TestTransactionListOrdering(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	for _, d := range []core.Date{
		core.NewDate(2026, 1, 3),
		core.NewDate(2026, 2, 1),
		core.NewDate(2026, 1, 25),
	} {
		if _, err := repo.CreateTransaction(ctx, core.Transaction{
			UserID: "u1", Amount: core.Money{Cents: 100},
			Type: core.Expense, CategoryID: "food", Date: d,
		}); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	list, err := repo.ListTransactions(ctx, "u1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	want := []string{"2026-02-01", "2026-01-25", "2026-01-03"}
	for i, w := range want {
		if list[i].Date.String() != w {
			t.Fatalf("position %d: got %s, want %s", i, list[i].Date.String(), w)
		}
	}
}

func TestCreateTransactionRejectsInvalid(t *testing.T) {
	repo := newTestRepo(t)
	_, err := repo.CreateTransaction(context.Background(), core.Transaction{
		UserID: "u1", Amount: core.Money{Cents: 100},
		Type: core.Expense, CategoryID: "not-a-category",
		Date: core.NewDate(2026, 1, 1),
	})
	if err == nil {
		t.Fatalf("expected validation error")
	}
}

func TestPresetCRUD(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	p, err := repo.CreatePreset(ctx, core.Preset{
		UserID: "u1", Name: "Fuel", Amount: core.Money{Cents: 6000},
		CategoryID: "transport", Subcategory: "Fuel",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	p.Amount = core.Money{Cents: 6500}
	p.Note = "full tank"
	if err := repo.UpdatePreset(ctx, p); err != nil {
		t.Fatalf("update: %v", err)
	}

	list, err := repo.ListPresets(ctx, "u1")
	if err != nil || len(list) != 1 {
		t.Fatalf("list: %v, %d rows", err, len(list))
	}
	if list[0].Amount.Cents != 6500 || list[0].Note != "full tank" {
		t.Fatalf("update not persisted: %+v", list[0])
	}

	if err := repo.DeletePreset(ctx, "u1", p.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := repo.UpdatePreset(ctx, p); !errors.Is(err, remote.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMonthStatusUpsertKeyedOnUserMonth(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	first, err := repo.UpsertMonthStatus(ctx, core.MonthStatus{
		UserID: "u1", Month: "2026-01",
		ProcessedAt: &now, AutoAmount: core.Money{Cents: 15000},
	})
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}

	second, err := repo.UpsertMonthStatus(ctx, core.MonthStatus{
		UserID: "u1", Month: "2026-01",
		ProcessedAt: &now, DebtAmount: core.Money{Cents: 7500},
	})
	if err != nil {
		t.Fatalf("second upsert: %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("upsert must keep row identity: %s vs %s", first.ID, second.ID)
	}

	list, err := repo.ListMonthStatuses(ctx, "u1")
	if err != nil || len(list) != 1 {
		t.Fatalf("list: %v, %d rows", err, len(list))
	}
	got := list[0]
	if got.AutoAmount.Cents != 0 || got.DebtAmount.Cents != 7500 {
		t.Fatalf("overwrite incomplete: %+v", got)
	}
	if got.ProcessedAt == nil || !got.ProcessedAt.Equal(now) {
		t.Fatalf("processed_at mismatch: %v", got.ProcessedAt)
	}
}

func TestCurrencySetting(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	if c, err := repo.Currency(ctx, "u1"); err != nil || c != core.DefaultCurrency {
		t.Fatalf("default: %v %v", c, err)
	}
	if err := repo.SetCurrency(ctx, "u1", core.GBP); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := repo.SetCurrency(ctx, "u1", core.EUR); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	if c, _ := repo.Currency(ctx, "u1"); c != core.EUR {
		t.Fatalf("got %v, want EUR", c)
	}
}
