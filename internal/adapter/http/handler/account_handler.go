package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/gowallet/internal/adapter/http/dto"
	"github.com/iho/gowallet/internal/domain"
	"github.com/iho/gowallet/internal/usecase"
)

// AccountService defines the behavior needed by AccountHandler.
type AccountService interface {
	CreateAccount(ctx context.Context, input usecase.CreateAccountInput) (*domain.Account, error)
	GetAccount(ctx context.Context, id string) (*domain.Account, error)
	ListAccounts(ctx context.Context, input usecase.ListAccountsInput) ([]*domain.Account, error)
	SetStatus(ctx context.Context, input usecase.SetStatusInput) (*domain.Account, error)
	AuditTrail(ctx context.Context, accountID string) ([]*domain.AuditLog, error)
}

// AccountHandler handles account-related HTTP requests.
type AccountHandler struct {
	accountUC AccountService
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(accountUC AccountService) *AccountHandler {
	return &AccountHandler{accountUC: accountUC}
}

// Create creates a new account.
func (h *AccountHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	operator, requestID := operatorFrom(r)
	account, err := h.accountUC.CreateAccount(r.Context(), req.ToUseCaseInput(operator, requestID))
	if err != nil {
		respondError(w, r, "failed to create account", err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.AccountFromDomain(account))
}

// Get retrieves an account by ID.
func (h *AccountHandler) Get(w http.ResponseWriter, r *http.Request) {
	account, ok := h.load(w, r)
	if !ok {
		return
	}

	writeJSON(w, http.StatusOK, dto.AccountFromDomain(account))
}

// Balance returns the current balance of an account.
func (h *AccountHandler) Balance(w http.ResponseWriter, r *http.Request) {
	account, ok := h.load(w, r)
	if !ok {
		return
	}

	writeJSON(w, http.StatusOK, dto.BalanceFromDomain(account))
}

// List lists accounts.
func (h *AccountHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := parseIntQuery(r, "limit", 20)
	offset := parseIntQuery(r, "offset", 0)

	accounts, err := h.accountUC.ListAccounts(r.Context(), usecase.ListAccountsInput{
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		respondError(w, r, "failed to list accounts", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ListAccountsResponse{
		Accounts: dto.AccountsFromDomain(accounts),
		Total:    int64(len(accounts)),
	})
}

// SetStatus bans or reactivates an account.
func (h *AccountHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req dto.SetStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	operator, requestID := operatorFrom(r)
	account, err := h.accountUC.SetStatus(r.Context(), req.ToUseCaseInput(id, operator, requestID))
	if err != nil {
		respondError(w, r, "failed to set account status", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.AccountFromDomain(account))
}

// Audit lists the audit trail of an account.
func (h *AccountHandler) Audit(w http.ResponseWriter, r *http.Request) {
	logs, err := h.accountUC.AuditTrail(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, "failed to load audit trail", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.AuditLogsFromDomain(logs))
}

func (h *AccountHandler) load(w http.ResponseWriter, r *http.Request) (*domain.Account, bool) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing account ID", "")
		return nil, false
	}

	account, err := h.accountUC.GetAccount(r.Context(), id)
	if err != nil {
		respondError(w, r, "failed to get account", err)
		return nil, false
	}
	return account, true
}
