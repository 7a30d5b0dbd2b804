package core

import "sort"

// MonthOverview holds the per-month totals shown on the overview tab.
//
// Remaining is income minus expenses, debt payments and auto-saved
// amounts. Manual savings deliberately do not reduce Remaining: they are
// a voluntary allocation of income already counted, while auto-saved
// amounts were swept out at a prior month close and must not inflate the
// balance again.
type MonthOverview struct {
	Month        MonthKey
	Income       Money
	Expenses     Money
	DebtPayments Money
	TotalSaved   Money
	AutoSaved    Money
	ManualSaved  Money
	Remaining    Money
}

// CumulativeTotals are all-time running balances of the two savings
// pools. Either can go negative when withdrawals exceed deposits; no
// floor is enforced at this layer.
type CumulativeTotals struct {
	Savings       Money
	EmergencyFund Money
}

// CategoryAmount is an amount aggregated under one catalog category.
type CategoryAmount struct {
	CategoryID string
	Amount     Money
}

// ComputeMonthOverview folds the transactions dated within the month
// into per-type totals and the remaining balance.
func ComputeMonthOverview(transactions []Transaction, month MonthKey) MonthOverview {
	o := MonthOverview{Month: month}
	for _, t := range transactions {
		if !month.Contains(t.Date) {
			continue
		}
		switch t.Type {
		case Income:
			o.Income = o.Income.Add(t.Amount)
		case Expense:
			o.Expenses = o.Expenses.Add(t.Amount)
		case DebtPayment:
			o.DebtPayments = o.DebtPayments.Add(t.Amount)
		case Savings:
			o.TotalSaved = o.TotalSaved.Add(t.Amount)
			if t.SavingsKind == SavingsAuto {
				o.AutoSaved = o.AutoSaved.Add(t.Amount)
			} else {
				o.ManualSaved = o.ManualSaved.Add(t.Amount)
			}
		}
	}
	o.Remaining = o.Income.Sub(o.Expenses).Sub(o.DebtPayments).Sub(o.AutoSaved)
	return o
}

// ComputeCumulativeTotals folds every transaction, regardless of month,
// into the two all-time pools: deposits by savings category, withdrawals
// by the expense funded_from marker.
func ComputeCumulativeTotals(transactions []Transaction) CumulativeTotals {
	var c CumulativeTotals
	for _, t := range transactions {
		switch {
		case t.Type == Savings && t.CategoryID == "savings":
			c.Savings = c.Savings.Add(t.Amount)
		case t.Type == Savings && t.CategoryID == "emergency_fund":
			c.EmergencyFund = c.EmergencyFund.Add(t.Amount)
		case t.Type == Expense && t.FundedFrom == FundedFromSavings:
			c.Savings = c.Savings.Sub(t.Amount)
		case t.Type == Expense && t.FundedFrom == FundedFromEmergencyFund:
			c.EmergencyFund = c.EmergencyFund.Sub(t.Amount)
		}
	}
	return c
}

// ComputeOutstandingDebt pools the debt accrued across all closed months
// and subtracts every debt payment. Payments never drive the pool
// negative.
func ComputeOutstandingDebt(statuses []MonthStatus, transactions []Transaction) Money {
	var debt Money
	for _, s := range statuses {
		debt = debt.Add(s.DebtAmount)
	}
	for _, t := range transactions {
		if t.Type == DebtPayment {
			debt = debt.Sub(t.Amount)
		}
	}
	if debt.Cents < 0 {
		return Money{}
	}
	return debt
}

// SpendingByCategory aggregates the month's expenses per category,
// largest first.
func SpendingByCategory(transactions []Transaction, month MonthKey) []CategoryAmount {
	sums := map[string]int64{}
	for _, t := range transactions {
		if t.Type == Expense && month.Contains(t.Date) {
			sums[t.CategoryID] += t.Amount.Cents
		}
	}
	out := make([]CategoryAmount, 0, len(sums))
	for id, cents := range sums {
		out = append(out, CategoryAmount{CategoryID: id, Amount: Money{Cents: cents}})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Amount.Cents != out[j].Amount.Cents {
			return out[i].Amount.Cents > out[j].Amount.Cents
		}
		return out[i].CategoryID < out[j].CategoryID
	})
	return out
}

// SortByDateDesc orders transactions newest first, falling back to the
// creation timestamp and then the id so the order is deterministic.
func SortByDateDesc(transactions []Transaction) []Transaction {
	out := append([]Transaction(nil), transactions...)
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date.Time) {
			return out[i].Date.After(out[j].Date.Time)
		}
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Recent returns up to n transactions of the month, newest first.
func Recent(transactions []Transaction, month MonthKey, n int) []Transaction {
	var in []Transaction
	for _, t := range transactions {
		if month.Contains(t.Date) {
			in = append(in, t)
		}
	}
	sorted := SortByDateDesc(in)
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}
