/**
 * @description
 * HTTP handlers for account management: creation by the authenticated user,
 * and the administrative listing/rename/delete operations. Listing follows
 * the flag convention (`single` with an id, or `all`).
 */

package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/fundme/ledger-service/internal/domain"
)

// CreateAccountHandler handles POST /account/create-account.
func (h *Handlers) CreateAccountHandler(w http.ResponseWriter, r *http.Request) {
	identity, ok := CallerIdentity(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthenticated user")
		return
	}

	var req domain.CreateAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if strings.TrimSpace(req.Name) == "" {
		writeError(w, http.StatusBadRequest, "Provide the account name")
		return
	}
	if strings.TrimSpace(req.Type) == "" {
		writeError(w, http.StatusBadRequest, "Provide the account type")
		return
	}
	if !emailRegexp.MatchString(strings.TrimSpace(req.Email)) {
		writeError(w, http.StatusBadRequest, "Email must be a valid email")
		return
	}

	account, err := h.service.CreateAccount(r.Context(), identity.UserID, req)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeSuccess(w, http.StatusCreated, "Account successfully created", account)
}

// GetAccountsHandler handles GET /account/get-accounts?flag=single|all[&id=].
func (h *Handlers) GetAccountsHandler(w http.ResponseWriter, r *http.Request) {
	flag := r.URL.Query().Get("flag")
	if flag == "" {
		writeError(w, http.StatusBadRequest, "Provide a flag")
		return
	}

	switch flag {
	case "single":
		id := r.URL.Query().Get("id")
		if id == "" {
			writeError(w, http.StatusBadRequest, "Provide the account ID")
			return
		}
		accountID, err := uuid.Parse(id)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Provide a valid account ID")
			return
		}
		account, err := h.service.GetAccount(r.Context(), accountID)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeSuccess(w, http.StatusOK, "Successfully retrieved account", account)

	case "all":
		accounts, err := h.service.ListAccounts(r.Context())
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeSuccess(w, http.StatusOK, "Successfully retrieved all accounts", accounts)

	default:
		writeError(w, http.StatusBadRequest, "Invalid flag")
	}
}

// RenameAccountHandler handles PATCH /account/rename-account.
func (h *Handlers) RenameAccountHandler(w http.ResponseWriter, r *http.Request) {
	var req domain.RenameAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.AccountID == uuid.Nil {
		writeError(w, http.StatusBadRequest, "Provide the account ID")
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		writeError(w, http.StatusBadRequest, "Provide the account name")
		return
	}

	account, err := h.service.RenameAccount(r.Context(), req.AccountID, req.Name)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, "Account successfully renamed", account)
}

// DeleteAccountHandler handles DELETE /account/delete-account?id=.
func (h *Handlers) DeleteAccountHandler(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "Provide the account ID")
		return
	}
	accountID, err := uuid.Parse(id)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Provide a valid account ID")
		return
	}

	if err := h.service.DeleteAccount(r.Context(), accountID); err != nil {
		writeServiceError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, "Account successfully deleted", nil)
}
