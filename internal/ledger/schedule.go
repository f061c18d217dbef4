package ledger

import (
	"time"

	"github.com/shopspring/decimal"

	"crediario/portal-backend/internal/money"
)

// Schedule is the computed installment plan for one sale.
type Schedule struct {
	// InstallmentValue is the even per-period value shown to the customer.
	InstallmentValue decimal.Decimal `json:"installment_value"`
	// Amounts holds the per-installment amounts. The last entry absorbs the
	// rounding remainder so the amounts sum to TotalPayable exactly.
	Amounts  []decimal.Decimal `json:"amounts"`
	DueDates []time.Time       `json:"due_dates"`
	// TotalPayable is the financed amount grown by the periodic rate.
	TotalPayable decimal.Decimal `json:"total_payable"`
}

// ComputeSchedule splits a financed amount into count installments due one
// calendar month apart starting at firstDue.
//
// With a zero rate the financed amount is divided evenly. With a positive
// periodic rate the financed amount is grown by (1+rate)^count and the grown
// total divided evenly. Either way the last installment absorbs the rounding
// remainder, so sum(Amounts) == TotalPayable holds exactly.
func ComputeSchedule(financed decimal.Decimal, count int, periodicRate decimal.Decimal, firstDue time.Time) (*Schedule, error) {
	if count < 1 || financed.IsNegative() || periodicRate.IsNegative() {
		return nil, ErrInvalidScheduleInput
	}

	total := financed
	if periodicRate.IsPositive() {
		growth := decimal.NewFromInt(1).Add(periodicRate).Pow(decimal.NewFromInt(int64(count)))
		total = financed.Mul(growth)
	}
	total = money.Round(total)

	amounts := money.SplitEven(total, count)

	dueDates := make([]time.Time, count)
	for i := 0; i < count; i++ {
		dueDates[i] = addMonths(firstDue, i)
	}

	return &Schedule{
		InstallmentValue: amounts[0],
		Amounts:          amounts,
		DueDates:         dueDates,
		TotalPayable:     total,
	}, nil
}

// addMonths advances t by m calendar months, clamping the day of month so
// Jan 31 + 1 month lands on Feb 28/29 instead of rolling into March.
func addMonths(t time.Time, m int) time.Time {
	year, month, day := t.Date()
	firstOfTarget := time.Date(year, month+time.Month(m), 1, 0, 0, 0, 0, t.Location())
	if lastDay := firstOfTarget.AddDate(0, 1, -1).Day(); day > lastDay {
		day = lastDay
	}
	return time.Date(firstOfTarget.Year(), firstOfTarget.Month(), day, 0, 0, 0, 0, t.Location())
}
