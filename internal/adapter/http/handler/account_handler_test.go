package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/iho/gowallet/internal/adapter/http/dto"
	"github.com/iho/gowallet/internal/adapter/http/middleware"
	"github.com/iho/gowallet/internal/domain"
	"github.com/iho/gowallet/internal/usecase"
)

type accountServiceStub struct {
	createFn    func(ctx context.Context, input usecase.CreateAccountInput) (*domain.Account, error)
	getFn       func(ctx context.Context, id string) (*domain.Account, error)
	listFn      func(ctx context.Context, input usecase.ListAccountsInput) ([]*domain.Account, error)
	setStatusFn func(ctx context.Context, input usecase.SetStatusInput) (*domain.Account, error)
	auditFn     func(ctx context.Context, accountID string) ([]*domain.AuditLog, error)
}

func (s *accountServiceStub) CreateAccount(ctx context.Context, input usecase.CreateAccountInput) (*domain.Account, error) {
	return s.createFn(ctx, input)
}

func (s *accountServiceStub) GetAccount(ctx context.Context, id string) (*domain.Account, error) {
	return s.getFn(ctx, id)
}

func (s *accountServiceStub) ListAccounts(ctx context.Context, input usecase.ListAccountsInput) ([]*domain.Account, error) {
	return s.listFn(ctx, input)
}

func (s *accountServiceStub) SetStatus(ctx context.Context, input usecase.SetStatusInput) (*domain.Account, error) {
	return s.setStatusFn(ctx, input)
}

func (s *accountServiceStub) AuditTrail(ctx context.Context, accountID string) ([]*domain.AuditLog, error) {
	return s.auditFn(ctx, accountID)
}

var testAdmin = &domain.User{ID: "admin-1", Name: "Admin", Role: domain.RoleAdmin}

func withRouteParam(req *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func TestAccountHandler_Create_Success(t *testing.T) {
	account := &domain.Account{
		ID:          "acc-1",
		ExternalRef: "P1",
		Name:        "test",
		Type:        domain.AccountTypePlayer,
		Status:      domain.AccountStatusActive,
		Balance:     decimal.Zero,
	}

	var captured usecase.CreateAccountInput
	handler := NewAccountHandler(&accountServiceStub{
		createFn: func(ctx context.Context, input usecase.CreateAccountInput) (*domain.Account, error) {
			captured = input
			return account, nil
		},
	})

	body, _ := json.Marshal(dto.CreateAccountRequest{
		ExternalRef: "P1",
		Name:        "test",
		Type:        "player",
	})

	req := httptest.NewRequest(http.MethodPost, "/accounts", bytes.NewReader(body))
	req = req.WithContext(middleware.WithUser(req.Context(), testAdmin))
	rec := httptest.NewRecorder()

	handler.Create(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	if captured.ExternalRef != "P1" || captured.Name != "test" || captured.Type != domain.AccountTypePlayer {
		t.Fatalf("expected input to match request, got %+v", captured)
	}
	if captured.Operator != testAdmin {
		t.Fatalf("expected operator from context, got %+v", captured.Operator)
	}

	var resp dto.AccountResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.ID != "acc-1" || resp.Balance != "0" || resp.Status != "active" {
		t.Fatalf("unexpected response %+v", resp)
	}
}

func TestAccountHandler_Create_Errors(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		err      error
		expected int
	}{
		{"invalid json", "{", nil, http.StatusBadRequest},
		{"duplicate ref", `{"external_ref":"P1","name":"x"}`, domain.ErrAccountExists, http.StatusConflict},
		{"bad name", `{"external_ref":"P1","name":""}`, domain.ErrInvalidAccountName, http.StatusBadRequest},
		{"not admin", `{"external_ref":"P1","name":"x"}`, domain.ErrInsufficientRole, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewAccountHandler(&accountServiceStub{
				createFn: func(ctx context.Context, input usecase.CreateAccountInput) (*domain.Account, error) {
					return nil, tt.err
				},
			})

			rec := httptest.NewRecorder()
			handler.Create(rec, httptest.NewRequest(http.MethodPost, "/accounts", bytes.NewBufferString(tt.body)))

			if rec.Code != tt.expected {
				t.Fatalf("expected %d, got %d: %s", tt.expected, rec.Code, rec.Body.String())
			}
		})
	}
}

func TestAccountHandler_Get(t *testing.T) {
	handler := NewAccountHandler(&accountServiceStub{
		getFn: func(ctx context.Context, id string) (*domain.Account, error) {
			if id != "acc-1" {
				return nil, domain.ErrAccountNotFound
			}
			return &domain.Account{ID: "acc-1", ExternalRef: "P1", Balance: decimal.RequireFromString("70.5")}, nil
		},
	})

	rec := httptest.NewRecorder()
	handler.Get(rec, withRouteParam(httptest.NewRequest(http.MethodGet, "/accounts/acc-1", nil), "id", "acc-1"))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	handler.Balance(rec, withRouteParam(httptest.NewRequest(http.MethodGet, "/accounts/acc-1/balance", nil), "id", "acc-1"))
	var balance dto.BalanceResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &balance); err != nil {
		t.Fatalf("failed to decode balance: %v", err)
	}
	if balance.Balance != "70.5" || balance.ExternalRef != "P1" {
		t.Fatalf("unexpected balance %+v", balance)
	}

	rec = httptest.NewRecorder()
	handler.Get(rec, withRouteParam(httptest.NewRequest(http.MethodGet, "/accounts/missing", nil), "id", "missing"))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	handler.Get(rec, httptest.NewRequest(http.MethodGet, "/accounts/", nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without id, got %d", rec.Code)
	}
}

func TestAccountHandler_List(t *testing.T) {
	var captured usecase.ListAccountsInput
	handler := NewAccountHandler(&accountServiceStub{
		listFn: func(ctx context.Context, input usecase.ListAccountsInput) ([]*domain.Account, error) {
			captured = input
			return []*domain.Account{{ID: "acc-1"}, {ID: "acc-2"}}, nil
		},
	})

	rec := httptest.NewRecorder()
	handler.List(rec, httptest.NewRequest(http.MethodGet, "/accounts?limit=5&offset=10", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if captured.Limit != 5 || captured.Offset != 10 {
		t.Fatalf("unexpected pagination %+v", captured)
	}

	var resp dto.ListAccountsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode: %v", err)
	}
	if resp.Total != 2 || len(resp.Accounts) != 2 {
		t.Fatalf("unexpected list %+v", resp)
	}
}

func TestAccountHandler_SetStatus(t *testing.T) {
	var captured usecase.SetStatusInput
	handler := NewAccountHandler(&accountServiceStub{
		setStatusFn: func(ctx context.Context, input usecase.SetStatusInput) (*domain.Account, error) {
			captured = input
			return &domain.Account{ID: input.AccountID, Status: input.Status}, nil
		},
	})

	req := httptest.NewRequest(http.MethodPost, "/accounts/acc-1/status", bytes.NewBufferString(`{"status":"banned"}`))
	req = withRouteParam(req, "id", "acc-1")
	req = req.WithContext(middleware.WithUser(req.Context(), testAdmin))
	rec := httptest.NewRecorder()

	handler.SetStatus(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if captured.AccountID != "acc-1" || captured.Status != domain.AccountStatusBanned || captured.Operator != testAdmin {
		t.Fatalf("unexpected input %+v", captured)
	}
}

func TestAccountHandler_Audit(t *testing.T) {
	handler := NewAccountHandler(&accountServiceStub{
		auditFn: func(ctx context.Context, accountID string) ([]*domain.AuditLog, error) {
			return []*domain.AuditLog{{ID: "log-1", Action: domain.AuditActionAccountStatus, ResourceID: accountID}}, nil
		},
	})

	rec := httptest.NewRecorder()
	handler.Audit(rec, withRouteParam(httptest.NewRequest(http.MethodGet, "/accounts/acc-1/audit", nil), "id", "acc-1"))

	var logs []dto.AuditLogResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &logs); err != nil {
		t.Fatalf("failed to decode: %v", err)
	}
	if len(logs) != 1 || logs[0].Action != "account.status" || logs[0].ResourceID != "acc-1" {
		t.Fatalf("unexpected audit trail %+v", logs)
	}
}
