/**
 * @description
 * This file declares the handler container shared by every endpoint group.
 * Handlers are the bridge between the web layer and the business logic:
 * they parse requests, call the application service, and write envelopes.
 */

package api

import (
	"github.com/fundme/ledger-service/internal/app"
	"github.com/fundme/ledger-service/pkg/searchclient"
)

// Handlers holds the application service and the external collaborators the
// HTTP layer talks to directly.
type Handlers struct {
	service *app.Service
	search  *searchclient.Client
}

// NewHandlers creates the handler container. The search client may be nil
// when no search service is configured; the search endpoint then reports
// itself unavailable.
func NewHandlers(service *app.Service, search *searchclient.Client) *Handlers {
	return &Handlers{service: service, search: search}
}
