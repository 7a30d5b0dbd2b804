package http

import (
	"net/http"

	"spendtracker/internal/core"
	"spendtracker/internal/services"
)

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	type categoryResponse struct {
		ID            string   `json:"id"`
		Name          string   `json:"name"`
		Emoji         string   `json:"emoji"`
		Type          string   `json:"type"`
		Subcategories []string `json:"subcategories"`
	}

	out := make([]categoryResponse, 0, len(core.Catalog))
	for _, c := range core.Catalog {
		out = append(out, categoryResponse{
			ID:            c.ID,
			Name:          c.Name,
			Emoji:         c.Emoji,
			Type:          string(c.Type),
			Subcategories: c.Subcategories,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetCurrency(w http.ResponseWriter, r *http.Request, ledger *services.LedgerService) {
	code := ledger.Store().Currency()
	writeJSON(w, http.StatusOK, map[string]string{
		"currency": string(code),
		"symbol":   code.Symbol(),
	})
}

func (s *Server) handleSetCurrency(w http.ResponseWriter, r *http.Request, ledger *services.LedgerService) {
	var req struct {
		Currency string `json:"currency"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "malformed JSON body")
		return
	}

	code := core.CurrencyCode(req.Currency)
	if !code.Valid() {
		writeError(w, http.StatusUnprocessableEntity, "validation_failed", "unsupported currency code")
		return
	}

	if err := ledger.Store().SetCurrency(r.Context(), code); err != nil {
		writeDomainError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"currency": string(code),
		"symbol":   code.Symbol(),
	})
}

type closeMonthResponse struct {
	Month      string               `json:"month"`
	Remaining  moneyResponse        `json:"remaining"`
	AutoAmount moneyResponse        `json:"auto_amount"`
	DebtAmount moneyResponse        `json:"debt_amount"`
	AutoSaved  *transactionResponse `json:"auto_saved,omitempty"`
}

func (s *Server) handleCloseMonth(w http.ResponseWriter, r *http.Request, ledger *services.LedgerService) {
	month, err := core.ParseMonthKey(r.PathValue("month"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "month must be YYYY-MM")
		return
	}

	res, err := ledger.CloseMonth(r.Context(), month)
	if err != nil {
		writeDomainError(r.Context(), w, err)
		return
	}

	currency := ledger.Store().Currency()
	format := func(m core.Money) moneyResponse {
		return moneyResponse{Cents: m.Cents, Formatted: core.FormatAmount(m, currency)}
	}

	out := closeMonthResponse{
		Month:      month.String(),
		Remaining:  format(res.Remaining),
		AutoAmount: format(res.Status.AutoAmount),
		DebtAmount: format(res.Status.DebtAmount),
	}
	if res.AutoSaved != nil {
		tx := toTransactionResponse(*res.AutoSaved)
		out.AutoSaved = &tx
	}
	writeJSON(w, http.StatusOK, out)
}
