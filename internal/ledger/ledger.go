// Package ledger implements the installment amortization and credit ledger
// engine: how a sale's financed amount is split into installments, how
// payments reduce open balances, and how customer credit exposure is kept
// consistent. Everything here is pure computation over in-memory values;
// persistence happens in the surrounding service layer.
package ledger

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"crediario/portal-backend/internal/money"
)

// InstallmentStatus is the stored lifecycle status of an installment.
// "Overdue" is intentionally not a stored status: it is derived at read time
// from the due date so the flag can never drift stale.
type InstallmentStatus string

const (
	StatusPending   InstallmentStatus = "pendente"
	StatusPaid      InstallmentStatus = "pago"
	StatusCancelled InstallmentStatus = "cancelado"
)

// PaymentMethod enumerates the accepted payment methods.
type PaymentMethod string

const (
	MethodCash         PaymentMethod = "dinheiro"
	MethodPix          PaymentMethod = "pix"
	MethodDebitCard    PaymentMethod = "cartao_debito"
	MethodCreditCard   PaymentMethod = "cartao_credito"
	MethodBankTransfer PaymentMethod = "transferencia"
	MethodCheck        PaymentMethod = "cheque"
)

// ValidMethod reports whether m is one of the accepted payment methods.
func ValidMethod(m PaymentMethod) bool {
	switch m {
	case MethodCash, MethodPix, MethodDebitCard, MethodCreditCard, MethodBankTransfer, MethodCheck:
		return true
	}
	return false
}

// Installment is one scheduled repayment unit of a sale's financed amount.
type Installment struct {
	ID                uuid.UUID         `json:"id" db:"id"`
	SaleID            uuid.UUID         `json:"sale_id" db:"sale_id"`
	InstallmentNumber int               `json:"installment_number" db:"installment_number"`
	DueDate           time.Time         `json:"due_date" db:"due_date"`
	Amount            decimal.Decimal   `json:"amount" db:"amount"`
	PaidAmount        decimal.Decimal   `json:"paid_amount" db:"paid_amount"`
	LateFee           decimal.Decimal   `json:"late_fee" db:"late_fee"`
	Discount          decimal.Decimal   `json:"discount" db:"discount"`
	Status            InstallmentStatus `json:"status" db:"status"`
	PaymentDate       *time.Time        `json:"payment_date,omitempty" db:"payment_date"`
	Notes             *string           `json:"notes,omitempty" db:"notes"`
	CreatedAt         time.Time         `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time         `json:"updated_at" db:"updated_at"`
}

// Remaining returns the open principal balance of the installment.
func (i *Installment) Remaining() decimal.Decimal {
	return i.Amount.Sub(i.PaidAmount)
}

// IsOverdue reports whether the installment is pending and past due as of the
// given date. Comparison is at day granularity.
func (i *Installment) IsOverdue(asOf time.Time) bool {
	return i.Status == StatusPending && DateOnly(i.DueDate).Before(DateOnly(asOf))
}

// DaysOverdue returns how many whole days past due the installment is, zero
// when it is not overdue.
func (i *Installment) DaysOverdue(asOf time.Time) int {
	if !i.IsOverdue(asOf) {
		return 0
	}
	return int(DateOnly(asOf).Sub(DateOnly(i.DueDate)).Hours() / 24)
}

// Payment is one immutable, append-only payment record against an
// installment. It is never updated or deleted.
type Payment struct {
	ID            uuid.UUID       `json:"id" db:"id"`
	InstallmentID uuid.UUID       `json:"installment_id" db:"installment_id"`
	UserID        uuid.UUID       `json:"user_id" db:"user_id"`
	Amount        decimal.Decimal `json:"amount" db:"amount"`
	PaymentDate   time.Time       `json:"payment_date" db:"payment_date"`
	PaymentMethod PaymentMethod   `json:"payment_method" db:"payment_method"`
	Notes         *string         `json:"notes,omitempty" db:"notes"`
	CreatedAt     time.Time       `json:"created_at" db:"created_at"`
}

// Ledger holds the ordered installments of one sale and answers aggregate
// queries over them. It never mutates installments; mutation goes through
// RecordPayment so invariant enforcement stays in one place.
type Ledger struct {
	installments []Installment
}

// NewLedger builds a ledger over the given installments, ordered by
// installment number.
func NewLedger(installments []Installment) *Ledger {
	sorted := make([]Installment, len(installments))
	copy(sorted, installments)
	sort.Slice(sorted, func(a, b int) bool {
		return sorted[a].InstallmentNumber < sorted[b].InstallmentNumber
	})
	return &Ledger{installments: sorted}
}

// Installments returns the ordered installments.
func (l *Ledger) Installments() []Installment {
	return l.installments
}

// Installment returns the installment with the given number.
func (l *Ledger) Installment(number int) (*Installment, bool) {
	for idx := range l.installments {
		if l.installments[idx].InstallmentNumber == number {
			return &l.installments[idx], true
		}
	}
	return nil, false
}

// RemainingBalance sums the open balances of all non-cancelled installments.
func (l *Ledger) RemainingBalance() decimal.Decimal {
	total := money.Zero
	for idx := range l.installments {
		if l.installments[idx].Status == StatusCancelled {
			continue
		}
		total = total.Add(l.installments[idx].Remaining())
	}
	return total
}

// OverdueInstallments returns every pending installment past due as of the
// given date, ordered by due date. The result is derived on each call, never
// read from a persisted flag.
func (l *Ledger) OverdueInstallments(asOf time.Time) []Installment {
	var overdue []Installment
	for idx := range l.installments {
		if l.installments[idx].IsOverdue(asOf) {
			overdue = append(overdue, l.installments[idx])
		}
	}
	sort.Slice(overdue, func(a, b int) bool {
		return overdue[a].DueDate.Before(overdue[b].DueDate)
	})
	return overdue
}

// SaleStatus derives the aggregate status of the owning sale from its
// installments: cancelled when every installment is cancelled, paid when
// every non-cancelled installment is settled, pending otherwise.
func (l *Ledger) SaleStatus() InstallmentStatus {
	if len(l.installments) == 0 {
		return StatusPending
	}
	allCancelled := true
	allPaid := true
	for idx := range l.installments {
		switch l.installments[idx].Status {
		case StatusCancelled:
		case StatusPaid:
			allCancelled = false
		default:
			allCancelled = false
			allPaid = false
		}
	}
	if allCancelled {
		return StatusCancelled
	}
	if allPaid {
		return StatusPaid
	}
	return StatusPending
}

// DateOnly truncates t to midnight of its calendar day. Every overdue
// comparison, in Go or in SQL, works on these values so an installment due
// today is never late before the day ends.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
