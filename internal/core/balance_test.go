package core

import (
	"testing"
	"time"
)

func tx(typ TransactionType, category string, cents int64, date Date) Transaction {
	return Transaction{
		ID:         category + date.String(),
		Amount:     Money{Cents: cents},
		Type:       typ,
		CategoryID: category,
		Date:       date,
	}
}

func TestMonthOverviewRemaining(t *testing.T) {
	month := MonthKey("2026-01")
	txs := []Transaction{
		tx(Income, "salary", 300000, NewDate(2026, 1, 1)),
		tx(Expense, "food", 50000, NewDate(2026, 1, 5)),
		tx(DebtPayment, "debt_payment", 20000, NewDate(2026, 1, 10)),
		// Outside the month, must be ignored.
		tx(Expense, "food", 99999, NewDate(2026, 2, 1)),
	}

	o := ComputeMonthOverview(txs, month)
	if o.Income.Cents != 300000 || o.Expenses.Cents != 50000 || o.DebtPayments.Cents != 20000 {
		t.Fatalf("unexpected totals: %+v", o)
	}
	if o.Remaining.Cents != 230000 {
		t.Fatalf("remaining = %d, want 230000", o.Remaining.Cents)
	}
}

func TestManualSavingsDoNotReduceRemaining(t *testing.T) {
	month := MonthKey("2026-01")
	base := []Transaction{
		tx(Income, "salary", 100000, NewDate(2026, 1, 1)),
		tx(Expense, "food", 30000, NewDate(2026, 1, 2)),
	}
	before := ComputeMonthOverview(base, month)

	manual := tx(Savings, "savings", 25000, NewDate(2026, 1, 15))
	manual.SavingsKind = SavingsManual
	after := ComputeMonthOverview(append(base, manual), month)

	if after.Remaining != before.Remaining {
		t.Fatalf("manual savings changed remaining: %d -> %d",
			before.Remaining.Cents, after.Remaining.Cents)
	}
	if after.TotalSaved.Cents != 25000 || after.ManualSaved.Cents != 25000 {
		t.Fatalf("manual savings not counted: %+v", after)
	}
}

func TestAutoSavingsReduceRemaining(t *testing.T) {
	month := MonthKey("2026-01")
	auto := tx(Savings, "savings", 15000, MonthKey("2026-01").LastDay())
	auto.SavingsKind = SavingsAuto
	auto.Subcategory = AutoSavedSubcategory

	o := ComputeMonthOverview([]Transaction{
		tx(Income, "salary", 100000, NewDate(2026, 1, 1)),
		auto,
	}, month)

	if o.AutoSaved.Cents != 15000 || o.ManualSaved.Cents != 0 {
		t.Fatalf("auto split wrong: %+v", o)
	}
	if o.Remaining.Cents != 85000 {
		t.Fatalf("remaining = %d, want 85000", o.Remaining.Cents)
	}
}

func TestCumulativeTotals(t *testing.T) {
	deposit := tx(Savings, "savings", 10000, NewDate(2026, 1, 1))
	withdraw := tx(Expense, "food", 4000, NewDate(2026, 2, 1))
	withdraw.FundedFrom = FundedFromSavings

	c := ComputeCumulativeTotals([]Transaction{deposit, withdraw})
	if c.Savings.Cents != 6000 {
		t.Fatalf("savings = %d, want 6000", c.Savings.Cents)
	}
	if c.EmergencyFund.Cents != 0 {
		t.Fatalf("emergency fund touched: %d", c.EmergencyFund.Cents)
	}
}

func TestCumulativeTotalsCanGoNegative(t *testing.T) {
	withdraw := tx(Expense, "shopping", 5000, NewDate(2026, 1, 1))
	withdraw.FundedFrom = FundedFromEmergencyFund

	c := ComputeCumulativeTotals([]Transaction{withdraw})
	if c.EmergencyFund.Cents != -5000 {
		t.Fatalf("no clamping expected here, got %d", c.EmergencyFund.Cents)
	}
}

func TestOutstandingDebt(t *testing.T) {
	now := time.Now()
	statuses := []MonthStatus{
		{Month: "2025-11", ProcessedAt: &now, DebtAmount: Money{Cents: 7500}},
		{Month: "2025-12", ProcessedAt: &now, DebtAmount: Money{Cents: 2500}},
	}

	if got := ComputeOutstandingDebt(statuses, nil); got.Cents != 10000 {
		t.Fatalf("debt = %d, want 10000", got.Cents)
	}

	payment := tx(DebtPayment, "debt_payment", 3000, NewDate(2026, 1, 5))
	if got := ComputeOutstandingDebt(statuses, []Transaction{payment}); got.Cents != 7000 {
		t.Fatalf("debt after payment = %d, want 7000", got.Cents)
	}

	big := tx(DebtPayment, "debt_payment", 99999, NewDate(2026, 1, 6))
	if got := ComputeOutstandingDebt(statuses, []Transaction{payment, big}); got.Cents != 0 {
		t.Fatalf("debt must clamp at zero, got %d", got.Cents)
	}
}

func TestSpendingByCategory(t *testing.T) {
	month := MonthKey("2026-01")
	txs := []Transaction{
		tx(Expense, "food", 3000, NewDate(2026, 1, 1)),
		tx(Expense, "food", 2000, NewDate(2026, 1, 2)),
		tx(Expense, "transport", 4000, NewDate(2026, 1, 3)),
		tx(Income, "salary", 90000, NewDate(2026, 1, 1)),
	}
	got := SpendingByCategory(txs, month)
	if len(got) != 2 {
		t.Fatalf("expected 2 categories, got %d", len(got))
	}
	if got[0].CategoryID != "food" || got[0].Amount.Cents != 5000 {
		t.Fatalf("unexpected top category: %+v", got[0])
	}
	if got[1].CategoryID != "transport" || got[1].Amount.Cents != 4000 {
		t.Fatalf("unexpected second category: %+v", got[1])
	}
}

func TestRecentAndSortOrder(t *testing.T) {
	month := MonthKey("2026-01")
	older := tx(Expense, "food", 100, NewDate(2026, 1, 1))
	newer := tx(Expense, "food", 200, NewDate(2026, 1, 20))
	sameDayEarly := tx(Expense, "transport", 300, NewDate(2026, 1, 20))
	sameDayEarly.CreatedAt = time.Date(2026, 1, 20, 8, 0, 0, 0, time.UTC)
	newer.CreatedAt = time.Date(2026, 1, 20, 18, 0, 0, 0, time.UTC)

	got := Recent([]Transaction{older, newer, sameDayEarly}, month, 2)
	if len(got) != 2 {
		t.Fatalf("expected 2, got %d", len(got))
	}
	if got[0].ID != newer.ID || got[1].ID != sameDayEarly.ID {
		t.Fatalf("wrong order: %s then %s", got[0].ID, got[1].ID)
	}
}

func TestAvailableMonths(t *testing.T) {
	now := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	txs := []Transaction{
		tx(Expense, "food", 100, NewDate(2026, 1, 5)),
		tx(Expense, "food", 100, NewDate(2025, 12, 31)),
	}
	got := AvailableMonths(txs, now)
	want := []MonthKey{"2026-03", "2026-01", "2025-12"}
	if len(got) != len(want) {
		t.Fatalf("got %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestMonthKeyLastDay(t *testing.T) {
	cases := []struct {
		key  MonthKey
		want string
	}{
		{"2026-01", "2026-01-31"},
		{"2026-02", "2026-02-28"},
		{"2024-02", "2024-02-29"},
		{"2026-04", "2026-04-30"},
	}
	for _, tc := range cases {
		if got := tc.key.LastDay().String(); got != tc.want {
			t.Fatalf("%s: got %s, want %s", tc.key, got, tc.want)
		}
	}
}
