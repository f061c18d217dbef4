package customers

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Customer is a crediário buyer. CurrentDebt is the sum of open installment
// amounts across the customer's sales and is only ever mutated through ledger
// results, never set directly from the API.
type Customer struct {
	ID             uuid.UUID        `json:"id" db:"id"`
	FullName       string           `json:"full_name" db:"full_name"`
	CPF            string           `json:"cpf" db:"cpf"`
	RG             *string          `json:"rg,omitempty" db:"rg"`
	BirthDate      *time.Time       `json:"birth_date,omitempty" db:"birth_date"`
	Phone          string           `json:"phone" db:"phone"`
	Email          *string          `json:"email,omitempty" db:"email"`
	Address        string           `json:"address" db:"address"`
	Neighborhood   *string          `json:"neighborhood,omitempty" db:"neighborhood"`
	City           string           `json:"city" db:"city"`
	State          string           `json:"state" db:"state"`
	ZipCode        *string          `json:"zip_code,omitempty" db:"zip_code"`
	Occupation     *string          `json:"occupation,omitempty" db:"occupation"`
	MonthlyIncome  *decimal.Decimal `json:"monthly_income,omitempty" db:"monthly_income"`
	ReferenceName  *string          `json:"reference_name,omitempty" db:"reference_name"`
	ReferencePhone *string          `json:"reference_phone,omitempty" db:"reference_phone"`
	Notes          *string          `json:"notes,omitempty" db:"notes"`
	CreditLimit    decimal.Decimal  `json:"credit_limit" db:"credit_limit"`
	CurrentDebt    decimal.Decimal  `json:"current_debt" db:"current_debt"`
	Active         bool             `json:"active" db:"active"`
	UserID         uuid.UUID        `json:"user_id" db:"user_id"`
	CreatedAt      time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at" db:"updated_at"`
}

// AvailableCredit is the headroom left under the credit limit, floored at zero.
func (c *Customer) AvailableCredit() decimal.Decimal {
	available := c.CreditLimit.Sub(c.CurrentDebt)
	if available.IsNegative() {
		return decimal.Zero
	}
	return available
}

// CustomerInput carries the writable customer fields for create and update.
type CustomerInput struct {
	FullName       string           `json:"full_name" binding:"required"`
	CPF            string           `json:"cpf" binding:"required"`
	RG             *string          `json:"rg"`
	BirthDate      *time.Time       `json:"birth_date"`
	Phone          string           `json:"phone" binding:"required"`
	Email          *string          `json:"email"`
	Address        string           `json:"address" binding:"required"`
	Neighborhood   *string          `json:"neighborhood"`
	City           string           `json:"city" binding:"required"`
	State          string           `json:"state" binding:"required"`
	ZipCode        *string          `json:"zip_code"`
	Occupation     *string          `json:"occupation"`
	MonthlyIncome  *decimal.Decimal `json:"monthly_income"`
	ReferenceName  *string          `json:"reference_name"`
	ReferencePhone *string          `json:"reference_phone"`
	Notes          *string          `json:"notes"`
	CreditLimit    decimal.Decimal  `json:"credit_limit"`
}

// CustomerFilter narrows customer listings.
type CustomerFilter struct {
	Search     string
	ActiveOnly bool
	UserID     *uuid.UUID
}
