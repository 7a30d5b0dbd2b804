package http

import (
	"net/http"

	"spendtracker/internal/core"
	"spendtracker/internal/services"
)

type presetPayload struct {
	ID          string `json:"id,omitempty"`
	Name        string `json:"name"`
	Amount      string `json:"amount"`
	CategoryID  string `json:"category_id"`
	Subcategory string `json:"subcategory,omitempty"`
	Note        string `json:"note,omitempty"`
	FundedFrom  string `json:"funded_from,omitempty"`
}

func toPresetPayload(p core.Preset) presetPayload {
	return presetPayload{
		ID:          p.ID,
		Name:        p.Name,
		Amount:      p.Amount.Decimal(),
		CategoryID:  p.CategoryID,
		Subcategory: p.Subcategory,
		Note:        p.Note,
		FundedFrom:  string(p.FundedFrom),
	}
}

func (s *Server) handleListPresets(w http.ResponseWriter, r *http.Request, ledger *services.LedgerService) {
	presets := ledger.Store().Presets()
	out := make([]presetPayload, 0, len(presets))
	for _, p := range presets {
		out = append(out, toPresetPayload(p))
	}
	writeJSON(w, http.StatusOK, out)
}

// handleReplacePresets takes the whole edited list. The store diffs it
// against the cached list and syncs only the changes.
func (s *Server) handleReplacePresets(w http.ResponseWriter, r *http.Request, ledger *services.LedgerService) {
	var payload []presetPayload
	if err := decodeBody(r, &payload); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "malformed JSON body")
		return
	}

	edited := make([]core.Preset, 0, len(payload))
	for _, p := range payload {
		cents, err := core.ParseDecimalToCents(p.Amount)
		if err != nil {
			writeError(w, http.StatusUnprocessableEntity, "validation_failed", "preset "+p.Name+": invalid amount")
			return
		}
		edited = append(edited, core.Preset{
			ID:          p.ID,
			Name:        p.Name,
			Amount:      core.Money{Cents: cents},
			CategoryID:  p.CategoryID,
			Subcategory: p.Subcategory,
			Note:        p.Note,
			FundedFrom:  core.FundedFrom(p.FundedFrom),
		})
	}

	if err := ledger.Store().ReplacePresets(r.Context(), edited); err != nil {
		writeDomainError(r.Context(), w, err)
		return
	}

	presets := ledger.Store().Presets()
	out := make([]presetPayload, 0, len(presets))
	for _, p := range presets {
		out = append(out, toPresetPayload(p))
	}
	writeJSON(w, http.StatusOK, out)
}
