package ledger

import (
	"github.com/shopspring/decimal"
)

// CheckAvailableCredit fails with ErrCreditLimitExceeded when the requested
// amount is strictly greater than the customer's available credit
// (creditLimit - currentDebt). A request that lands exactly on the limit
// passes. This check must run strictly before any debt-increasing commit.
func CheckAvailableCredit(creditLimit, currentDebt, requested decimal.Decimal) error {
	available := creditLimit.Sub(currentDebt)
	if requested.GreaterThan(available) {
		return ErrCreditLimitExceeded
	}
	return nil
}

// ApplyDebtDelta returns the customer's new outstanding debt after applying a
// signed delta. Debt is floored at zero: reconciliation deltas that overshoot
// because of discounts never drive it negative.
func ApplyDebtDelta(currentDebt, delta decimal.Decimal) decimal.Decimal {
	newDebt := currentDebt.Add(delta)
	if newDebt.IsNegative() {
		return decimal.Zero
	}
	return newDebt
}
