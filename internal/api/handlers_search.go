/**
 * @description
 * HTTP handler for full-text search over the user and account indexes. The
 * handler is a thin pass-through to the external search service; when no
 * search backend is configured the endpoint reports itself unavailable.
 */

package api

import (
	"log"
	"net/http"
)

const (
	searchIndexUsers    = "users"
	searchIndexAccounts = "accounts"
)

// SearchHandler handles GET /search?query=&flag=user|account.
func (h *Handlers) SearchHandler(w http.ResponseWriter, r *http.Request) {
	if h.search == nil {
		writeError(w, http.StatusServiceUnavailable, "Search is not available")
		return
	}

	query := r.URL.Query().Get("query")
	if query == "" {
		writeError(w, http.StatusBadRequest, "Provide the query")
		return
	}

	flag := r.URL.Query().Get("flag")
	if flag == "" {
		writeError(w, http.StatusBadRequest, "Provide a flag")
		return
	}

	var index string
	switch flag {
	case "user":
		index = searchIndexUsers
	case "account":
		index = searchIndexAccounts
	default:
		writeError(w, http.StatusBadRequest, "Invalid flag")
		return
	}

	results, err := h.search.Search(r.Context(), index, query)
	if err != nil {
		log.Printf("level=error component=api msg=\"search request failed\" index=%s error=%v", index, err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	if len(results) == 0 {
		writeError(w, http.StatusNotFound, "Result not found for query")
		return
	}

	writeSuccess(w, http.StatusOK, "Successfully retrieved search results", results)
}
