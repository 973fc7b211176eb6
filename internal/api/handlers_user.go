/**
 * @description
 * Administrative HTTP handlers for the user collection. Listing follows the
 * flag convention (`single` with an id, or `all`).
 */

package api

import (
	"net/http"

	"github.com/google/uuid"
)

// GetUsersHandler handles GET /user/get-users?flag=single|all[&id=].
func (h *Handlers) GetUsersHandler(w http.ResponseWriter, r *http.Request) {
	flag := r.URL.Query().Get("flag")
	if flag == "" {
		writeError(w, http.StatusBadRequest, "Provide a flag")
		return
	}

	switch flag {
	case "single":
		id := r.URL.Query().Get("id")
		if id == "" {
			writeError(w, http.StatusBadRequest, "Provide the user ID")
			return
		}
		userID, err := uuid.Parse(id)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Provide a valid user ID")
			return
		}
		user, err := h.service.GetUser(r.Context(), userID)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeSuccess(w, http.StatusOK, "Successfully retrieved user", user)

	case "all":
		users, err := h.service.ListUsers(r.Context())
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeSuccess(w, http.StatusOK, "Successfully retrieved all users", users)

	default:
		writeError(w, http.StatusBadRequest, "Invalid flag")
	}
}

// DeleteUserHandler handles DELETE /user/delete-user?id=.
func (h *Handlers) DeleteUserHandler(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "Provide the user ID")
		return
	}
	userID, err := uuid.Parse(id)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Provide a valid user ID")
		return
	}

	if err := h.service.DeleteUser(r.Context(), userID); err != nil {
		writeServiceError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, "User successfully deleted", nil)
}
