/**
 * @description
 * Response envelope helpers and the mapping from application errors to HTTP
 * statuses. Success responses carry {"message", "body"}; error responses
 * carry {"message"} only. Unexpected errors are logged server-side and
 * surfaced as a generic internal error with no detail leaked.
 */

package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/fundme/ledger-service/internal/app"
)

type successEnvelope struct {
	Message string `json:"message"`
	Body    any    `json:"body,omitempty"`
}

type errorEnvelope struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("level=error component=api msg=\"failed to encode response\" err=%v", err)
	}
}

func writeSuccess(w http.ResponseWriter, status int, message string, body any) {
	writeJSON(w, status, successEnvelope{Message: message, Body: body})
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorEnvelope{Message: message})
}

// serviceErrorStatus maps each domain validation error to its HTTP status
// and caller-facing message. First match wins; anything unmapped is a fatal
// internal error.
var serviceErrorStatus = []struct {
	err     error
	status  int
	message string
}{
	{app.ErrUnauthenticated, http.StatusUnauthorized, "Unauthenticated user"},
	{app.ErrInvalidToken, http.StatusUnauthorized, "Unauthenticated user"},
	{app.ErrAmountRequired, http.StatusBadRequest, "Provide the amount"},
	{app.ErrFlagRequired, http.StatusBadRequest, "Provide a flag"},
	{app.ErrInvalidFlag, http.StatusBadRequest, "Invalid flag"},
	{app.ErrAccountNumberRequired, http.StatusBadRequest, "Provide the account number"},
	{app.ErrSenderAccountNotFound, http.StatusNotFound, "Your account does not exist"},
	{app.ErrRecipientAccountNotFound, http.StatusNotFound, "Other account does not exist"},
	{app.ErrAccountNotFound, http.StatusNotFound, "Account does not exist"},
	{app.ErrUserNotFound, http.StatusNotFound, "User does not exist"},
	{app.ErrAccountExists, http.StatusConflict, "Account already exists"},
	{app.ErrEmailExists, http.StatusConflict, "User already exists"},
	{app.ErrInvalidCredentials, http.StatusBadRequest, "Incorrect email or password"},
	{app.ErrResetTokenInvalid, http.StatusBadRequest, "Invalid or expired reset token"},
	{app.ErrRateLimited, http.StatusTooManyRequests, "Too many transfer attempts. Please wait and try again."},
}

func writeServiceError(w http.ResponseWriter, err error) {
	for _, mapping := range serviceErrorStatus {
		if errors.Is(err, mapping.err) {
			writeError(w, mapping.status, mapping.message)
			return
		}
	}
	log.Printf("level=error component=api msg=\"unexpected service error\" err=%v", err)
	writeError(w, http.StatusInternalServerError, "Internal server error")
}
