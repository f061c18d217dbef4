package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentInput carries the caller-supplied data for one payment.
type PaymentInput struct {
	Amount   decimal.Decimal
	Date     time.Time
	Method   PaymentMethod
	LateFee  decimal.Decimal
	Discount decimal.Decimal
	Notes    string
	UserID   uuid.UUID
}

// PaymentResult is the outcome of applying one payment to one installment.
type PaymentResult struct {
	// Installment is the updated installment value; the caller persists it.
	Installment Installment
	// Payment is the new append-only payment record.
	Payment Payment
	// DebtDelta is the signed change to the customer's outstanding debt.
	// It is -installment.Amount on the transition into paid (late fees and
	// discounts are tracked apart from principal) and zero otherwise.
	DebtDelta decimal.Decimal
	// Settled reports whether this payment transitioned the installment
	// into the paid status.
	Settled bool
}

// RecordPayment validates and applies one payment against an installment.
//
// The allowed ceiling is the installment's open balance widened by the late
// fee and narrowed by the discount. Only the principal portion is credited to
// PaidAmount, so 0 <= PaidAmount <= Amount holds after any sequence of
// payments; the late-fee excess lives on the payment record alone. The
// installment settles when the credited principal covers the amount net of
// discount. A rejected payment mutates nothing.
func RecordPayment(inst Installment, in PaymentInput) (*PaymentResult, error) {
	if !in.Amount.IsPositive() {
		return nil, ErrInvalidPaymentAmount
	}

	remaining := inst.Remaining()
	ceiling := remaining.Add(in.LateFee).Sub(in.Discount)
	if in.Amount.GreaterThan(ceiling) {
		return nil, ErrPaymentExceedsBalance
	}

	principal := decimal.Min(in.Amount, remaining)
	updated := inst
	updated.PaidAmount = inst.PaidAmount.Add(principal)
	if in.LateFee.IsPositive() {
		updated.LateFee = inst.LateFee.Add(in.LateFee)
	}
	if in.Discount.IsPositive() {
		updated.Discount = inst.Discount.Add(in.Discount)
	}

	owed := inst.Amount.Sub(updated.Discount)
	settled := inst.Status != StatusPaid && updated.PaidAmount.GreaterThanOrEqual(owed)
	if settled {
		updated.Status = StatusPaid
		paidAt := in.Date
		updated.PaymentDate = &paidAt
	}
	if in.Notes != "" {
		notes := in.Notes
		updated.Notes = &notes
	}
	updated.UpdatedAt = time.Now()

	record := Payment{
		ID:            uuid.New(),
		InstallmentID: inst.ID,
		UserID:        in.UserID,
		Amount:        in.Amount,
		PaymentDate:   in.Date,
		PaymentMethod: in.Method,
		CreatedAt:     time.Now(),
	}
	if in.Notes != "" {
		notes := in.Notes
		record.Notes = &notes
	}

	debtDelta := decimal.Zero
	if settled {
		debtDelta = inst.Amount.Neg()
	}

	return &PaymentResult{
		Installment: updated,
		Payment:     record,
		DebtDelta:   debtDelta,
		Settled:     settled,
	}, nil
}
