package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/gowallet/internal/adapter/http/dto"
	"github.com/iho/gowallet/internal/domain"
	"github.com/iho/gowallet/internal/usecase"
)

// TransferService defines the behavior needed by TransferHandler.
type TransferService interface {
	CreateTransfer(ctx context.Context, input usecase.CreateTransferInput) (*usecase.TransferResult, error)
	GetTransfer(ctx context.Context, id string) (*domain.Transfer, error)
	ListTransfersByAccount(ctx context.Context, input usecase.ListTransfersByAccountInput) ([]*domain.Transfer, error)
}

// TransferMetrics counts transfer outcomes.
type TransferMetrics interface {
	RecordTransfer(outcome string)
}

// TransferHandler handles transfer-related HTTP requests.
type TransferHandler struct {
	transferUC TransferService
	metrics    TransferMetrics
}

// NewTransferHandler creates a new TransferHandler. metrics may be nil.
func NewTransferHandler(transferUC TransferService, metrics TransferMetrics) *TransferHandler {
	return &TransferHandler{transferUC: transferUC, metrics: metrics}
}

// Create moves credit between two accounts.
func (h *TransferHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateTransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	operator, requestID := operatorFrom(r)
	input, err := req.ToUseCaseInput(operator, requestID)
	if err != nil {
		h.record("invalid")
		writeError(w, http.StatusBadRequest, "invalid amount", err.Error())
		return
	}

	result, err := h.transferUC.CreateTransfer(r.Context(), input)
	if err != nil {
		h.record(transferOutcome(err))
		respondError(w, r, "failed to create transfer", err)
		return
	}

	h.record("success")
	writeJSON(w, http.StatusCreated, dto.TransferResultFromUseCase(result))
}

// Get retrieves a transfer by ID.
func (h *TransferHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing transfer ID", "")
		return
	}

	transfer, err := h.transferUC.GetTransfer(r.Context(), id)
	if err != nil {
		respondError(w, r, "failed to get transfer", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.TransferFromDomain(transfer))
}

// ListByAccount lists transfers touching an account.
func (h *TransferHandler) ListByAccount(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "id")
	if accountID == "" {
		writeError(w, http.StatusBadRequest, "missing account ID", "")
		return
	}

	transfers, err := h.transferUC.ListTransfersByAccount(r.Context(), usecase.ListTransfersByAccountInput{
		AccountID: accountID,
		Limit:     parseIntQuery(r, "limit", 20),
		Offset:    parseIntQuery(r, "offset", 0),
	})
	if err != nil {
		respondError(w, r, "failed to list transfers", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.TransfersFromDomain(transfers))
}

func (h *TransferHandler) record(outcome string) {
	if h.metrics != nil {
		h.metrics.RecordTransfer(outcome)
	}
}

func transferOutcome(err error) string {
	switch {
	case errors.Is(err, domain.ErrInsufficientFunds):
		return "insufficient_funds"
	case errors.Is(err, domain.ErrInsufficientRole):
		return "forbidden"
	case errors.Is(err, domain.ErrAccountNotFound):
		return "not_found"
	case mapDomainError(err) == http.StatusBadRequest:
		return "invalid"
	default:
		return "error"
	}
}
