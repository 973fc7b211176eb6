/**
 * @description
 * This file defines the transaction domain model, the central append-only
 * ledger record for any money movement in the system.
 *
 * @notes
 * - `Amount` is the gross requested value; `TotalAmount` is the net value
 *   actually applied to account balances after the charge is deducted.
 * - `RefNo` is a human-displayable reference, not a primary identifier.
 */

package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Transaction type labels. A transfer to another account is labeled from the
// payer's perspective as a debit even though the net ledger effect credits
// the recipient.
const (
	TransTypeCredit = "credit"
	TransTypeDebit  = "debit"
)

// Transaction status values. Records are written as `success` once the
// atomic unit commits; `pending` exists for records awaiting settlement.
const (
	TransStatusPending = "pending"
	TransStatusSuccess = "success"
)

// Funding modes accepted by the fund endpoint.
const (
	FundModeSelf  = "my_account"
	FundModeOther = "other_account"
)

// Transaction is the immutable ledger entry created by every transfer
// operation. It maps directly to the `transactions` table.
type Transaction struct {
	ID          uuid.UUID       `json:"id"`
	RefNo       string          `json:"ref_no"`
	TransType   string          `json:"trans_type"`
	TransDate   time.Time       `json:"trans_date"`
	Amount      decimal.Decimal `json:"amount"`
	Charge      decimal.Decimal `json:"charge"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	Status      string          `json:"status"`
	UserID      uuid.UUID       `json:"user_id"`
	AccountID   uuid.UUID       `json:"account_id"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}
