/**
 * @description
 * This file contains the charge calculator: a pure function that decides the
 * fee and net amount for a requested transfer. It performs no I/O and no
 * validation; callers pass an already-validated positive amount.
 */

package app

import (
	"github.com/shopspring/decimal"

	"github.com/fundme/ledger-service/internal/domain"
)

// chargeDirection selects the ledger label for the computed transaction.
type chargeDirection int

const (
	// creditSelf represents funding one's own account.
	creditSelf chargeDirection = iota
	// debitToOther represents sending to another account; the record is
	// labeled from the payer's perspective.
	debitToOther
)

// Every amount above the threshold incurs a flat charge.
var (
	chargeThreshold = decimal.NewFromInt(10000)
	flatCharge      = decimal.NewFromInt(50)
)

// chargeResult is the outcome of a charge computation. TotalAmount is the
// net value actually applied to account balances.
type chargeResult struct {
	TransType   string
	Charge      decimal.Decimal
	TotalAmount decimal.Decimal
}

// calculateCharge computes the fee for a requested transfer amount. For every
// amount greater than 10000 a flat charge of 50 is deducted; otherwise the
// amount passes through untouched.
func calculateCharge(amount decimal.Decimal, direction chargeDirection) chargeResult {
	result := chargeResult{
		TransType:   domain.TransTypeCredit,
		Charge:      decimal.Zero,
		TotalAmount: amount,
	}
	if direction == debitToOther {
		result.TransType = domain.TransTypeDebit
	}

	if amount.GreaterThan(chargeThreshold) {
		result.Charge = flatCharge
		result.TotalAmount = amount.Sub(flatCharge)
	}

	return result
}
