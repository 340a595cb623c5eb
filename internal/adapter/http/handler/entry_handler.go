package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/gowallet/internal/adapter/http/dto"
	"github.com/iho/gowallet/internal/domain"
	"github.com/iho/gowallet/internal/usecase"
)

// EntryService defines the behavior needed by EntryHandler.
type EntryService interface {
	GetEntriesByAccount(ctx context.Context, input usecase.GetEntriesByAccountInput) ([]*domain.LedgerEntry, error)
	GetEntriesByExternalRef(ctx context.Context, externalTxnRef string) ([]*domain.LedgerEntry, error)
}

// EntryHandler handles ledger entry HTTP requests.
type EntryHandler struct {
	entryUC EntryService
}

// NewEntryHandler creates a new EntryHandler.
func NewEntryHandler(entryUC EntryService) *EntryHandler {
	return &EntryHandler{entryUC: entryUC}
}

// ListByAccount lists entries for an account, newest first.
func (h *EntryHandler) ListByAccount(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "id")
	if accountID == "" {
		writeError(w, http.StatusBadRequest, "missing account ID", "")
		return
	}

	entries, err := h.entryUC.GetEntriesByAccount(r.Context(), usecase.GetEntriesByAccountInput{
		AccountID: accountID,
		Limit:     parseIntQuery(r, "limit", 20),
		Offset:    parseIntQuery(r, "offset", 0),
	})
	if err != nil {
		respondError(w, r, "failed to list entries", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.EntriesFromDomain(entries))
}

// ListByExternalRef lists every entry carrying a provider transaction reference.
func (h *EntryHandler) ListByExternalRef(w http.ResponseWriter, r *http.Request) {
	ref := r.URL.Query().Get("external_ref")
	if ref == "" {
		writeError(w, http.StatusBadRequest, "missing external_ref", "")
		return
	}

	entries, err := h.entryUC.GetEntriesByExternalRef(r.Context(), ref)
	if err != nil {
		respondError(w, r, "failed to list entries", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.EntriesFromDomain(entries))
}
