package http

import (
	"net/http"
	"strconv"
	"time"

	"spendtracker/internal/core"
	"spendtracker/internal/services"
)

type transactionResponse struct {
	ID          string `json:"id"`
	Amount      string `json:"amount"`
	AmountCents int64  `json:"amount_cents"`
	Type        string `json:"type"`
	CategoryID  string `json:"category_id"`
	Subcategory string `json:"subcategory,omitempty"`
	Note        string `json:"note,omitempty"`
	Date        string `json:"date"`
	CreatedAt   string `json:"created_at"`
	FundedFrom  string `json:"funded_from,omitempty"`
	SavingsKind string `json:"savings_kind,omitempty"`
}

func toTransactionResponse(t core.Transaction) transactionResponse {
	return transactionResponse{
		ID:          t.ID,
		Amount:      t.Amount.Decimal(),
		AmountCents: t.Amount.Cents,
		Type:        string(t.Type),
		CategoryID:  t.CategoryID,
		Subcategory: t.Subcategory,
		Note:        t.Note,
		Date:        t.Date.String(),
		CreatedAt:   t.CreatedAt.Format(time.RFC3339),
		FundedFrom:  string(t.FundedFrom),
		SavingsKind: string(t.SavingsKind),
	}
}

type createTransactionRequest struct {
	Amount      string `json:"amount"`
	Type        string `json:"type"`
	CategoryID  string `json:"category_id"`
	Subcategory string `json:"subcategory"`
	Note        string `json:"note"`
	Date        string `json:"date"`
	FundedFrom  string `json:"funded_from"`
	SavingsKind string `json:"savings_kind"`
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request, ledger *services.LedgerService) {
	transactions := ledger.Store().Transactions()

	if monthParam := r.URL.Query().Get("month"); monthParam != "" {
		month, err := core.ParseMonthKey(monthParam)
		if err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", "month must be YYYY-MM")
			return
		}
		filtered := transactions[:0]
		for _, t := range transactions {
			if month.Contains(t.Date) {
				filtered = append(filtered, t)
			}
		}
		transactions = filtered
	}

	if limitParam := r.URL.Query().Get("limit"); limitParam != "" {
		limit, err := strconv.Atoi(limitParam)
		if err != nil || limit < 0 {
			writeError(w, http.StatusBadRequest, "bad_request", "limit must be a non-negative integer")
			return
		}
		if limit < len(transactions) {
			transactions = transactions[:limit]
		}
	}

	out := make([]transactionResponse, 0, len(transactions))
	for _, t := range transactions {
		out = append(out, toTransactionResponse(t))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request, ledger *services.LedgerService) {
	var req createTransactionRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "malformed JSON body")
		return
	}

	cents, err := core.ParseDecimalToCents(req.Amount)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "validation_failed", err.Error())
		return
	}
	date, err := core.ParseDate(req.Date)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "validation_failed", "date must be YYYY-MM-DD")
		return
	}

	draft := core.Transaction{
		Amount:      core.Money{Cents: cents},
		Type:        core.TransactionType(req.Type),
		CategoryID:  req.CategoryID,
		Subcategory: req.Subcategory,
		Note:        req.Note,
		Date:        date,
		FundedFrom:  core.FundedFrom(req.FundedFrom),
		SavingsKind: core.SavingsKind(req.SavingsKind),
	}

	confirmed, err := ledger.AddTransaction(r.Context(), draft)
	if err != nil {
		writeDomainError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toTransactionResponse(confirmed))
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request, ledger *services.LedgerService) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "bad_request", "missing transaction id")
		return
	}

	if err := ledger.DeleteTransaction(r.Context(), id); err != nil {
		writeDomainError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}
