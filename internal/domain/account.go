/**
 * @description
 * This file defines the account domain model and its request/response DTOs.
 * An account is a user-owned balance container identified externally by a
 * random numeric account number.
 *
 * @notes
 * - Monetary fields use shopspring/decimal to avoid floating-point drift on
 *   currency arithmetic.
 * - `Available` and `Total` are only ever mutated through the transfer flow's
 *   atomic balance deltas, never by direct assignment.
 */

package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Account represents a user's ledger account. It maps directly to the
// `accounts` table in the database.
type Account struct {
	ID               uuid.UUID       `json:"id"`
	AccountNumber    string          `json:"account_num"`
	UserID           uuid.UUID       `json:"user_id"`
	Name             string          `json:"name"`
	Email            string          `json:"email"`
	Type             string          `json:"type"`
	Available        decimal.Decimal `json:"available"`
	Total            decimal.Decimal `json:"total"`
	DateOfLastAction *time.Time      `json:"date_of_last_action,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// CreateAccountRequest is the DTO for the account creation endpoint.
type CreateAccountRequest struct {
	Name  string `json:"name"`
	Type  string `json:"type"`
	Email string `json:"email"`
}

// RenameAccountRequest is the DTO for the administrative rename endpoint.
// Only the display name may change; balances and numbers are immutable here.
type RenameAccountRequest struct {
	AccountID uuid.UUID `json:"account_id"`
	Name      string    `json:"name"`
}
