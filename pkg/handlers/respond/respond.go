// Package respond holds the request decoding and response writing shared by
// the HTTP handlers.
package respond

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/chris/vault-wallet/pkg/api"
	"github.com/chris/vault-wallet/pkg/apperrors"
	"github.com/chris/vault-wallet/pkg/auth"
	"github.com/chris/vault-wallet/pkg/ledger"
	"github.com/chris/vault-wallet/pkg/models"
	"github.com/chris/vault-wallet/pkg/money"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/microcosm-cc/bluemonday"
	openapi_types "github.com/oapi-codegen/runtime/types"
	"github.com/shopspring/decimal"
)

var statuses = map[string]int{
	"invalid_payload":      http.StatusBadRequest,
	"unauthorized":         http.StatusUnauthorized,
	"forbidden":            http.StatusForbidden,
	"not_found":            http.StatusNotFound,
	"insufficient_funds":   http.StatusUnprocessableEntity,
	"exceeds_contribution": http.StatusUnprocessableEntity,
	"not_yet_releasable":   http.StatusConflict,
	"conflict":             http.StatusConflict,
	"ledger_rejected":      http.StatusBadRequest,
	"persistence_failure":  http.StatusInternalServerError,
}

var policy = bluemonday.StrictPolicy()

// JSON writes v with the given status.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to write response", slog.String("error", err.Error()))
	}
}

// OK writes {"ok": true}.
func OK(w http.ResponseWriter) {
	JSON(w, http.StatusOK, api.Ok{Ok: true})
}

// Status returns the HTTP status for err's kind.
func Status(err error) int {
	if status, ok := statuses[apperrors.Code(err)]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// Error writes err as {"error", "code"}. Persistence failures are logged and
// their cause is not shown to the caller.
func Error(w http.ResponseWriter, r *http.Request, err error) {
	code := apperrors.Code(err)
	status := Status(err)

	message := apperrors.Message(err)
	if status >= http.StatusInternalServerError {
		slog.ErrorContext(r.Context(), "request failed",
			slog.String("request_id", middleware.GetReqID(r.Context())),
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()))
		var appErr *apperrors.Error
		if !errors.As(err, &appErr) {
			message = "Internal error"
		}
	}
	JSON(w, status, api.Error{Error: message, Code: code})
}

// Decode reads the JSON request body into v. Malformed bodies are invalid payloads.
func Decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return apperrors.Wrap(apperrors.ErrInvalidPayload, "Invalid request body", err)
	}
	return nil
}

// Text strips markup from user text and trims it.
func Text(s string) string {
	return strings.TrimSpace(policy.Sanitize(s))
}

// OptionalText is Text for optional fields. Empty results become nil.
func OptionalText(s *string) *string {
	if s == nil {
		return nil
	}
	clean := Text(*s)
	if clean == "" {
		return nil
	}
	return &clean
}

// Cents converts a positive decimal amount to cents. Zero, negative and
// sub-cent amounts are invalid payloads carrying message.
func Cents(d decimal.Decimal, message string) (models.Cents, error) {
	c, err := money.ToCents(d)
	if err != nil {
		return 0, apperrors.Wrap(apperrors.ErrInvalidPayload, message, err)
	}
	return c, nil
}

// ID renders a request UUID, treating the zero UUID as absent.
func ID(id openapi_types.UUID) string {
	var zero openapi_types.UUID
	if id == zero {
		return ""
	}
	return id.String()
}

// Invalid is shorthand for writing an invalid payload error.
func Invalid(w http.ResponseWriter, r *http.Request, format string, args ...any) {
	Error(w, r, apperrors.Invalid(fmt.Sprintf(format, args...)))
}

// Caller returns the authenticated user id, writing 401 when there is none.
func Caller(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID := auth.UserID(r.Context())
	if userID == "" {
		Error(w, r, apperrors.New(apperrors.ErrUnauthorized, "Unauthorized"))
		return "", false
	}
	return userID, true
}

// LedgerError maps a ledger failure to a caller-facing kind. A rejection shows
// the procedure's reason; notFound names the missing record.
func LedgerError(err error, notFound string) error {
	switch {
	case errors.Is(err, ledger.ErrInsufficientFunds):
		return apperrors.Wrap(apperrors.ErrInsufficientFunds, "Insufficient funds", err)
	case errors.Is(err, ledger.ErrNotFound):
		return apperrors.Wrap(apperrors.ErrNotFound, notFound, err)
	case errors.Is(err, ledger.ErrRejected):
		reason := ledger.Reason(err)
		if reason == "" {
			reason = "Ledger rejected the request"
		}
		return apperrors.Wrap(apperrors.ErrLedgerRejected, reason, err)
	default:
		return apperrors.Persistence(err)
	}
}
