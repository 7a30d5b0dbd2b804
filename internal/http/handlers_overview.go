package http

import (
	"net/http"
	"time"

	"spendtracker/internal/core"
	"spendtracker/internal/services"
)

type moneyResponse struct {
	Cents     int64  `json:"cents"`
	Formatted string `json:"formatted"`
}

type overviewResponse struct {
	Month           string                   `json:"month"`
	Income          moneyResponse            `json:"income"`
	Expenses        moneyResponse            `json:"expenses"`
	DebtPayments    moneyResponse            `json:"debt_payments"`
	TotalSaved      moneyResponse            `json:"total_saved"`
	AutoSaved       moneyResponse            `json:"auto_saved"`
	ManualSaved     moneyResponse            `json:"manual_saved"`
	Remaining       moneyResponse            `json:"remaining"`
	Closed          bool                     `json:"closed"`
	Savings         moneyResponse            `json:"savings"`
	EmergencyFund   moneyResponse            `json:"emergency_fund"`
	OutstandingDebt moneyResponse            `json:"outstanding_debt"`
	TopSpending     []categoryAmountResponse `json:"top_spending"`
	Recent          []transactionResponse    `json:"recent"`
	Months          []string                 `json:"months"`
	Currency        string                   `json:"currency"`
}

type categoryAmountResponse struct {
	CategoryID string        `json:"category_id"`
	Name       string        `json:"name"`
	Emoji      string        `json:"emoji"`
	Amount     moneyResponse `json:"amount"`
}

const recentTransactionCount = 5

func (s *Server) handleOverview(w http.ResponseWriter, r *http.Request, ledger *services.LedgerService) {
	st := ledger.Store()

	month := core.MonthKeyOf(time.Now())
	if monthParam := r.URL.Query().Get("month"); monthParam != "" {
		parsed, err := core.ParseMonthKey(monthParam)
		if err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", "month must be YYYY-MM")
			return
		}
		month = parsed
	}

	currency := st.Currency()
	format := func(m core.Money) moneyResponse {
		return moneyResponse{Cents: m.Cents, Formatted: core.FormatAmount(m, currency)}
	}

	overview := st.Overview(month)
	totals := st.CumulativeTotals()
	transactions := st.Transactions()

	status, hasStatus := st.MonthStatus(month)

	spending := core.SpendingByCategory(transactions, month)
	topSpending := make([]categoryAmountResponse, 0, len(spending))
	for _, ca := range spending {
		entry := categoryAmountResponse{CategoryID: ca.CategoryID, Amount: format(ca.Amount)}
		if cat, ok := core.CategoryByID(ca.CategoryID); ok {
			entry.Name = cat.Name
			entry.Emoji = cat.Emoji
		}
		topSpending = append(topSpending, entry)
	}

	recent := core.Recent(transactions, month, recentTransactionCount)
	recentOut := make([]transactionResponse, 0, len(recent))
	for _, t := range recent {
		recentOut = append(recentOut, toTransactionResponse(t))
	}

	months := core.AvailableMonths(transactions, time.Now())
	monthsOut := make([]string, 0, len(months))
	for _, m := range months {
		monthsOut = append(monthsOut, m.String())
	}

	writeJSON(w, http.StatusOK, overviewResponse{
		Month:           month.String(),
		Income:          format(overview.Income),
		Expenses:        format(overview.Expenses),
		DebtPayments:    format(overview.DebtPayments),
		TotalSaved:      format(overview.TotalSaved),
		AutoSaved:       format(overview.AutoSaved),
		ManualSaved:     format(overview.ManualSaved),
		Remaining:       format(overview.Remaining),
		Closed:          hasStatus && status.Closed(),
		Savings:         format(totals.Savings),
		EmergencyFund:   format(totals.EmergencyFund),
		OutstandingDebt: format(st.OutstandingDebt()),
		TopSpending:     topSpending,
		Recent:          recentOut,
		Months:          monthsOut,
		Currency:        string(currency),
	})
}
