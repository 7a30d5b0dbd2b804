package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"spendtracker/internal/core"
	"spendtracker/internal/remote"
)

func TestStoreTransactionLifecycle(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	created, err := s.CreateTransaction(ctx, core.Transaction{
		UserID:     "u1",
		Amount:     core.Money{Cents: 1000},
		Type:       core.Expense,
		CategoryID: "food",
		Date:       core.NewDate(2026, 1, 5),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID == "" || created.CreatedAt.IsZero() {
		t.Fatalf("server fields not assigned: %+v", created)
	}

	list, err := s.ListTransactions(ctx, "u1")
	if err != nil || len(list) != 1 {
		t.Fatalf("list: %v, %d items", err, len(list))
	}

	// Other users never see the row.
	other, _ := s.ListTransactions(ctx, "u2")
	if len(other) != 0 {
		t.Fatalf("cross-user leak: %d items", len(other))
	}

	if err := s.DeleteTransaction(ctx, "u1", created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := s.DeleteTransaction(ctx, "u1", created.ID); !errors.Is(err, remote.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestStoreListOrder(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	dates := []core.Date{
		core.NewDate(2026, 1, 5),
		core.NewDate(2026, 1, 20),
		core.NewDate(2026, 1, 10),
	}
	for _, d := range dates {
		if _, err := s.CreateTransaction(ctx, core.Transaction{
			UserID: "u1", Amount: core.Money{Cents: 100},
			Type: core.Expense, CategoryID: "food", Date: d,
		}); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	list, _ := s.ListTransactions(ctx, "u1")
	want := []string{"2026-01-20", "2026-01-10", "2026-01-05"}
	for i, w := range want {
		if list[i].Date.String() != w {
			t.Fatalf("position %d: got %s, want %s", i, list[i].Date.String(), w)
		}
	}
}

func TestStoreCreateRejectsInvalid(t *testing.T) {
	s := NewStore()
	_, err := s.CreateTransaction(context.Background(), core.Transaction{
		UserID: "u1", Amount: core.Money{}, Type: core.Expense,
		CategoryID: "food", Date: core.NewDate(2026, 1, 1),
	})
	if err == nil {
		t.Fatalf("expected validation error")
	}
}

func TestStorePresets(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	p, err := s.CreatePreset(ctx, core.Preset{
		UserID: "u1", Name: "Rent", Amount: core.Money{Cents: 90000},
		CategoryID: "fixed-bills", Subcategory: "Rent/Mortgage",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	p.Amount = core.Money{Cents: 95000}
	if err := s.UpdatePreset(ctx, p); err != nil {
		t.Fatalf("update: %v", err)
	}
	list, _ := s.ListPresets(ctx, "u1")
	if len(list) != 1 || list[0].Amount.Cents != 95000 {
		t.Fatalf("update not visible: %+v", list)
	}

	if err := s.DeletePreset(ctx, "u1", p.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := s.UpdatePreset(ctx, p); !errors.Is(err, remote.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestStoreMonthStatusUpsert(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	now := time.Now()

	first, err := s.UpsertMonthStatus(ctx, core.MonthStatus{
		UserID: "u1", Month: "2026-01",
		ProcessedAt: &now, AutoAmount: core.Money{Cents: 5000},
	})
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}

	// Second upsert for the same (user, month) overwrites, never duplicates.
	second, err := s.UpsertMonthStatus(ctx, core.MonthStatus{
		UserID: "u1", Month: "2026-01",
		ProcessedAt: &now, DebtAmount: core.Money{Cents: 2000},
	})
	if err != nil {
		t.Fatalf("second upsert: %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("upsert changed row identity: %s -> %s", first.ID, second.ID)
	}

	list, _ := s.ListMonthStatuses(ctx, "u1")
	if len(list) != 1 {
		t.Fatalf("expected 1 row, got %d", len(list))
	}
	if list[0].DebtAmount.Cents != 2000 || list[0].AutoAmount.Cents != 0 {
		t.Fatalf("overwrite incomplete: %+v", list[0])
	}
}

func TestStoreCurrency(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	c, err := s.Currency(ctx, "u1")
	if err != nil || c != core.DefaultCurrency {
		t.Fatalf("default currency: %v %v", c, err)
	}
	if err := s.SetCurrency(ctx, "u1", core.EUR); err != nil {
		t.Fatalf("set: %v", err)
	}
	if c, _ := s.Currency(ctx, "u1"); c != core.EUR {
		t.Fatalf("got %v, want EUR", c)
	}
}

func TestAuthFlow(t *testing.T) {
	a := NewAuth("test-secret", time.Hour)
	ctx := context.Background()

	sess, err := a.SignUp(ctx, "User@Example.com", "hunter2hunter2")
	if err != nil {
		t.Fatalf("sign up: %v", err)
	}
	if sess.UserID == "" || sess.Token == "" {
		t.Fatalf("incomplete session: %+v", sess)
	}

	if _, err := a.SignUp(ctx, "user@example.com", "hunter2hunter2"); !errors.Is(err, remote.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}

	got, err := a.SessionFromToken(ctx, sess.Token)
	if err != nil || got.UserID != sess.UserID {
		t.Fatalf("session lookup: %+v %v", got, err)
	}

	if _, err := a.SignIn(ctx, "user@example.com", "wrong-password"); !errors.Is(err, remote.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}

	if err := a.SignOut(ctx, sess.Token); err != nil {
		t.Fatalf("sign out: %v", err)
	}
	if _, err := a.SessionFromToken(ctx, sess.Token); !errors.Is(err, remote.ErrNoSession) {
		t.Fatalf("revoked token accepted: %v", err)
	}
}

func TestAuthPasswordReset(t *testing.T) {
	a := NewAuth("test-secret", time.Hour)
	ctx := context.Background()

	if _, err := a.SignUp(ctx, "user@example.com", "hunter2hunter2"); err != nil {
		t.Fatalf("sign up: %v", err)
	}

	// Unknown accounts yield no token but no error either.
	if tok, err := a.RequestPasswordReset(ctx, "ghost@example.com"); err != nil || tok != "" {
		t.Fatalf("unexpected: %q %v", tok, err)
	}

	tok, err := a.RequestPasswordReset(ctx, "user@example.com")
	if err != nil || tok == "" {
		t.Fatalf("reset request: %q %v", tok, err)
	}
	if err := a.ConfirmPasswordReset(ctx, tok, "new-password-1"); err != nil {
		t.Fatalf("confirm: %v", err)
	}
	// Token is single use.
	if err := a.ConfirmPasswordReset(ctx, tok, "new-password-2"); err == nil {
		t.Fatalf("expected error on reused token")
	}

	if _, err := a.SignIn(ctx, "user@example.com", "new-password-1"); err != nil {
		t.Fatalf("sign in with new password: %v", err)
	}
	if _, err := a.SignIn(ctx, "user@example.com", "hunter2hunter2"); err == nil {
		t.Fatalf("old password still works")
	}
}
