package payments

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"crediario/portal-backend/internal/ledger"
)

// RecordPaymentInput is the request payload for paying down an installment.
type RecordPaymentInput struct {
	Amount      decimal.Decimal      `json:"amount" binding:"required"`
	PaymentDate *time.Time           `json:"payment_date"`
	Method      ledger.PaymentMethod `json:"payment_method" binding:"required"`
	LateFee     decimal.Decimal      `json:"late_fee"`
	Discount    decimal.Decimal      `json:"discount"`
	Notes       string               `json:"notes"`
}

// PaymentReceipt is returned after a payment is recorded.
type PaymentReceipt struct {
	Installment ledger.Installment `json:"installment"`
	Payment     ledger.Payment     `json:"payment"`
	Settled     bool               `json:"settled"`
}

// OverdueInstallment is the collections view of one late installment, joined
// with its sale and customer so the store can chase it.
type OverdueInstallment struct {
	ledger.Installment
	SaleNumber    string    `json:"sale_number" db:"sale_number"`
	CustomerID    uuid.UUID `json:"customer_id" db:"customer_id"`
	CustomerName  string    `json:"customer_name" db:"customer_name"`
	CustomerPhone string    `json:"customer_phone" db:"customer_phone"`
	DaysLate      int       `json:"days_late" db:"-"`
}

// OverdueFilter scopes the overdue listing.
type OverdueFilter struct {
	CustomerID *uuid.UUID
	UserID     *uuid.UUID
}
