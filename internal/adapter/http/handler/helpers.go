package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/iho/gowallet/internal/adapter/http/dto"
	"github.com/iho/gowallet/internal/adapter/http/middleware"
	"github.com/iho/gowallet/internal/domain"
)

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, status int, message, details string) {
	writeJSON(w, status, dto.ErrorResponse{
		Error:   message,
		Message: details,
	})
}

// respondError maps err to a status and writes it. Server side failures are
// logged and their details withheld.
func respondError(w http.ResponseWriter, r *http.Request, message string, err error) {
	status := mapDomainError(err)
	if status >= http.StatusInternalServerError {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg(message)
		writeError(w, status, message, "")
		return
	}
	writeError(w, status, message, err.Error())
}

// mapDomainError maps domain errors to HTTP status codes.
func mapDomainError(err error) int {
	switch {
	case errors.Is(err, domain.ErrAccountNotFound),
		errors.Is(err, domain.ErrTransferNotFound),
		errors.Is(err, domain.ErrBetNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInsufficientRole):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrAccountExists),
		errors.Is(err, domain.ErrDuplicateRequest),
		errors.Is(err, domain.ErrVersionConflict):
		return http.StatusConflict
	case errors.Is(err, domain.ErrInsufficientFunds),
		errors.Is(err, domain.ErrAccountBanned):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrSameAccount),
		errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrInvalidRequest),
		errors.Is(err, domain.ErrInvalidAccountName),
		errors.Is(err, domain.ErrInvalidExternalRef),
		errors.Is(err, domain.ErrAmountTooLarge),
		errors.Is(err, domain.ErrAmountTooPrecise),
		errors.Is(err, domain.ErrMetadataTooLarge):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrStoreUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// operatorFrom returns the authenticated operator and the request id.
func operatorFrom(r *http.Request) (*domain.User, string) {
	user, _ := middleware.UserFromContext(r.Context())
	return user, chimiddleware.GetReqID(r.Context())
}

// parseIntQuery parses an integer query parameter with a default value.
func parseIntQuery(r *http.Request, key string, defaultValue int) int {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultValue
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return defaultValue
	}
	return i
}
