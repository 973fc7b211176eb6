/**
 * @description
 * HTTP handlers for authentication: signup, login, and the password-reset
 * pair. Request payloads are validated here, field by field, before the
 * service is called.
 */

package api

import (
	"encoding/json"
	"net/http"
	"regexp"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/fundme/ledger-service/internal/domain"
)

var (
	nameRegexp  = regexp.MustCompile(`^[a-zA-Z]+$`)
	emailRegexp = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]{2,}$`)
)

type authResponse struct {
	Token string       `json:"token"`
	User  *domain.User `json:"user"`
}

func validateSignup(req domain.SignupRequest) (string, bool) {
	first := strings.TrimSpace(req.FirstName)
	if len(first) < 3 || len(first) > 15 || !nameRegexp.MatchString(first) {
		return "First name must not be empty and must contain only letters", false
	}
	last := strings.TrimSpace(req.LastName)
	if len(last) < 3 || len(last) > 15 || !nameRegexp.MatchString(last) {
		return "Last name must not be empty and must contain only letters", false
	}
	if !emailRegexp.MatchString(strings.TrimSpace(req.Email)) {
		return "Email must be a valid email", false
	}
	if len(req.Password) < 6 {
		return "Password must be more than 6 characters", false
	}
	return "", true
}

// SignupHandler handles POST /auth/signup.
func (h *Handlers) SignupHandler(w http.ResponseWriter, r *http.Request) {
	var req domain.SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if message, ok := validateSignup(req); !ok {
		writeError(w, http.StatusBadRequest, message)
		return
	}

	user, token, err := h.service.Signup(r.Context(), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeSuccess(w, http.StatusCreated, "Successfully signed up", authResponse{Token: token, User: user})
}

// LoginHandler handles POST /auth/login.
func (h *Handlers) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req domain.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "Provide the email and password")
		return
	}

	user, token, err := h.service.Login(r.Context(), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, "Successfully logged in", authResponse{Token: token, User: user})
}

// ForgotPasswordHandler handles POST /auth/forgot-password.
func (h *Handlers) ForgotPasswordHandler(w http.ResponseWriter, r *http.Request) {
	var req domain.ForgotPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if !emailRegexp.MatchString(strings.TrimSpace(req.Email)) {
		writeError(w, http.StatusBadRequest, "Email must be a valid email")
		return
	}

	if err := h.service.ForgotPassword(r.Context(), req.Email); err != nil {
		writeServiceError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, "Password reset link sent", nil)
}

// ResetPasswordHandler handles PATCH /auth/reset-password/{token}.
func (h *Handlers) ResetPasswordHandler(w http.ResponseWriter, r *http.Request) {
	token := strings.TrimSpace(chi.URLParam(r, "token"))
	if token == "" {
		writeError(w, http.StatusBadRequest, "Provide the reset token")
		return
	}

	var req domain.ResetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if len(req.Password) < 6 {
		writeError(w, http.StatusBadRequest, "Password must be more than 6 characters")
		return
	}

	if err := h.service.ResetPassword(r.Context(), token, req.Password); err != nil {
		writeServiceError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, "Password successfully reset", nil)
}
