/**
 * @description
 * HTTP handlers for the transfer endpoints: funding (own or other account)
 * and withdrawal. Handlers parse and normalize the request into typed
 * values; the orchestrator only ever sees validated input.
 *
 * @notes
 * - Clients historically send `amount` as either a JSON string or a number,
 *   so the field is decoded leniently before decimal parsing.
 */

package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/fundme/ledger-service/internal/app"
	"github.com/fundme/ledger-service/internal/domain"
)

type fundAccountRequest struct {
	Amount     jsonAmount `json:"amount"`
	Flag       string     `json:"flag"`
	AccountNum string     `json:"accountNum"`
}

type withdrawRequest struct {
	Amount jsonAmount `json:"amount"`
}

// jsonAmount accepts a monetary amount as either a JSON number or a string.
type jsonAmount struct {
	raw string
}

func (a *jsonAmount) UnmarshalJSON(data []byte) error {
	var asString string
	if err := json.Unmarshal(data, &asString); err == nil {
		a.raw = strings.TrimSpace(asString)
		return nil
	}
	var asNumber json.Number
	if err := json.Unmarshal(data, &asNumber); err != nil {
		return err
	}
	a.raw = asNumber.String()
	return nil
}

// Decimal parses the amount. A missing or empty field yields ok=false;
// a present but malformed one yields ok=false as well, and both are treated
// as "amount not provided" at the boundary.
func (a jsonAmount) Decimal() (decimal.Decimal, bool) {
	if a.raw == "" {
		return decimal.Zero, false
	}
	value, err := decimal.NewFromString(a.raw)
	if err != nil {
		return decimal.Zero, false
	}
	return value, true
}

// FundUserAccountHandler handles POST /fund-user-account.
func (h *Handlers) FundUserAccountHandler(w http.ResponseWriter, r *http.Request) {
	identity, ok := CallerIdentity(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthenticated user")
		return
	}

	var req fundAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	amount, ok := req.Amount.Decimal()
	if !ok {
		writeError(w, http.StatusBadRequest, "Provide the amount")
		return
	}

	tx, err := h.service.Fund(r.Context(), app.FundParams{
		UserID:     identity.UserID,
		Amount:     amount,
		Flag:       strings.TrimSpace(req.Flag),
		AccountNum: strings.TrimSpace(req.AccountNum),
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	message := "Successfully funded your account"
	if req.Flag == domain.FundModeOther {
		message = "Successfully funded the account"
	}
	writeSuccess(w, http.StatusOK, message, tx)
}

// WithdrawFromAccountHandler handles POST /withdraw-from-account.
func (h *Handlers) WithdrawFromAccountHandler(w http.ResponseWriter, r *http.Request) {
	identity, ok := CallerIdentity(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthenticated user")
		return
	}

	var req withdrawRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	amount, ok := req.Amount.Decimal()
	if !ok {
		writeError(w, http.StatusBadRequest, "Provide the amount")
		return
	}

	tx, err := h.service.Withdraw(r.Context(), app.WithdrawParams{
		UserID: identity.UserID,
		Amount: amount,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, "Successfully withdrew from your account", tx)
}
