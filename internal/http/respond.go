package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"spendtracker/internal/core"
	"spendtracker/internal/remote"
	"spendtracker/internal/store"
)

// envelope is the uniform JSON response shape: exactly one of Data or
// Error is set.
type envelope struct {
	Data  any       `json:"data,omitempty"`
	Error *apiError `json:"error,omitempty"`
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(envelope{Data: data}); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(envelope{Error: &apiError{Code: code, Message: message}})
}

// writeDomainError maps known sentinel errors onto HTTP statuses.
// Anything unrecognized is a 502: the remote store failed and the
// optimistic layer already rolled the cache back.
func writeDomainError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, remote.ErrNoSession),
		errors.Is(err, remote.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "unauthorized", err.Error())
	case errors.Is(err, remote.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, remote.ErrConflict):
		writeError(w, http.StatusConflict, "conflict", err.Error())
	case errors.Is(err, store.ErrMonthClosed):
		writeError(w, http.StatusConflict, "month_closed", err.Error())
	case errors.Is(err, store.ErrCloseInProgress):
		writeError(w, http.StatusConflict, "close_in_progress", err.Error())
	case errors.Is(err, store.ErrDebtOverpayment):
		writeError(w, http.StatusUnprocessableEntity, "debt_overpayment", err.Error())
	case isValidationError(err):
		writeError(w, http.StatusUnprocessableEntity, "validation_failed", err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		writeError(w, http.StatusGatewayTimeout, "remote_timeout", "remote store timed out")
	default:
		slog.ErrorContext(ctx, "Remote store error", "error", err)
		writeError(w, http.StatusBadGateway, "remote_error", "remote store unavailable")
	}
}

func isValidationError(err error) bool {
	for _, sentinel := range []error{
		core.ErrInvalidAmount,
		core.ErrInvalidType,
		core.ErrInvalidDate,
		core.ErrInvalidMonth,
		core.ErrUnknownCategory,
		core.ErrCategoryTypeMismatch,
		core.ErrUnknownSubcategory,
		core.ErrInvalidFundedFrom,
		core.ErrInvalidSavingsKind,
		core.ErrEmptyName,
	} {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}

// decodeBody unmarshals a JSON request body into dst, rejecting unknown
// fields so typos surface as 400s instead of silently dropped input.
func decodeBody(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}
