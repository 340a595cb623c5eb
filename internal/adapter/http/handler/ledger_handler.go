package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/gowallet/internal/adapter/http/dto"
	"github.com/iho/gowallet/internal/usecase"
)

// LedgerService checks the ledger as a whole.
type LedgerService interface {
	CheckConsistency(ctx context.Context) (bool, error)
}

// ReconciliationService compares stored balances with ledger replays.
type ReconciliationService interface {
	ReconcileAccount(ctx context.Context, accountID string) (*usecase.ReconciliationResult, error)
	GenerateReconciliationReport(ctx context.Context) (*usecase.ReconciliationReport, error)
}

// LedgerHandler handles ledger-wide operations.
type LedgerHandler struct {
	ledgerUC    LedgerService
	reconcileUC ReconciliationService
}

// NewLedgerHandler creates a new LedgerHandler.
func NewLedgerHandler(ledgerUC LedgerService, reconcileUC ReconciliationService) *LedgerHandler {
	return &LedgerHandler{ledgerUC: ledgerUC, reconcileUC: reconcileUC}
}

// CheckConsistency checks if the ledger is consistent.
func (h *LedgerHandler) CheckConsistency(w http.ResponseWriter, r *http.Request) {
	consistent, err := h.ledgerUC.CheckConsistency(r.Context())
	if err != nil {
		if errors.Is(err, usecase.ErrInconsistentLedger) {
			writeJSON(w, http.StatusConflict, map[string]any{
				"status":     "inconsistent",
				"consistent": false,
				"message":    err.Error(),
			})
			return
		}
		respondError(w, r, "failed to check consistency", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":     "consistent",
		"consistent": consistent,
	})
}

// ReconcileAccount replays one account's ledger against its balance.
func (h *LedgerHandler) ReconcileAccount(w http.ResponseWriter, r *http.Request) {
	result, err := h.reconcileUC.ReconcileAccount(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, "failed to reconcile account", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ReconciliationFromUseCase(result))
}

// Report reconciles every account.
func (h *LedgerHandler) Report(w http.ResponseWriter, r *http.Request) {
	report, err := h.reconcileUC.GenerateReconciliationReport(r.Context())
	if err != nil {
		respondError(w, r, "failed to build reconciliation report", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ReconciliationReportFromUseCase(report))
}
