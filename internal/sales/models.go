package sales

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"crediario/portal-backend/internal/ledger"
)

// Sale is one installment-sale contract. Status is always recomputed from the
// sale's installments and never set independently.
type Sale struct {
	ID                uuid.UUID                `json:"id" db:"id"`
	SaleNumber        string                   `json:"sale_number" db:"sale_number"`
	CustomerID        uuid.UUID                `json:"customer_id" db:"customer_id"`
	UserID            uuid.UUID                `json:"user_id" db:"user_id"`
	Description       string                   `json:"description" db:"description"`
	TotalAmount       decimal.Decimal          `json:"total_amount" db:"total_amount"`
	DownPayment       decimal.Decimal          `json:"down_payment" db:"down_payment"`
	FinancedAmount    decimal.Decimal          `json:"financed_amount" db:"financed_amount"`
	InstallmentCount  int                      `json:"installment_count" db:"installment_count"`
	InstallmentValue  decimal.Decimal          `json:"installment_value" db:"installment_value"`
	InterestRate      decimal.Decimal          `json:"interest_rate" db:"interest_rate"`
	TotalWithInterest decimal.Decimal          `json:"total_with_interest" db:"total_with_interest"`
	SaleDate          time.Time                `json:"sale_date" db:"sale_date"`
	FirstDueDate      time.Time                `json:"first_due_date" db:"first_due_date"`
	Status            ledger.InstallmentStatus `json:"status" db:"status"`
	Notes             *string                  `json:"notes,omitempty" db:"notes"`
	CreatedAt         time.Time                `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time                `json:"updated_at" db:"updated_at"`
}

// SaleDetail bundles a sale with its installment ledger for detail views and
// contract rendering.
type SaleDetail struct {
	Sale         Sale                 `json:"sale"`
	Installments []ledger.Installment `json:"installments"`
}

// CreateSaleInput carries the request payload for a new sale.
type CreateSaleInput struct {
	CustomerID       uuid.UUID       `json:"customer_id" binding:"required"`
	Description      string          `json:"description" binding:"required"`
	TotalAmount      decimal.Decimal `json:"total_amount" binding:"required"`
	DownPayment      decimal.Decimal `json:"down_payment"`
	InstallmentCount int             `json:"installment_count" binding:"required"`
	InterestRate     decimal.Decimal `json:"interest_rate"`
	SaleDate         *time.Time      `json:"sale_date"`
	FirstDueDate     time.Time       `json:"first_due_date" binding:"required"`
	Notes            *string         `json:"notes"`
}

// SaleFilter narrows sale listings.
type SaleFilter struct {
	CustomerID *uuid.UUID
	UserID     *uuid.UUID
	Status     ledger.InstallmentStatus
}
