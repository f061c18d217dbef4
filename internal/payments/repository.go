package payments

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"crediario/portal-backend/internal/ledger"
)

type Repository interface {
	GetInstallment(ctx context.Context, id uuid.UUID) (*ledger.Installment, error)
	// GetCustomerIDForInstallment resolves the owning customer through the
	// installment's sale.
	GetCustomerIDForInstallment(ctx context.Context, installmentID uuid.UUID) (uuid.UUID, error)
	// ApplyPayment persists the updated installment, the payment record and
	// the customer debt change in one transaction.
	ApplyPayment(ctx context.Context, customerID uuid.UUID, result *ledger.PaymentResult) error
	ListPayments(ctx context.Context, installmentID uuid.UUID) ([]ledger.Payment, error)
	ListOverdue(ctx context.Context, asOf time.Time, filter OverdueFilter) ([]OverdueInstallment, error)
}

type postgresRepository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) GetInstallment(ctx context.Context, id uuid.UUID) (*ledger.Installment, error) {
	var inst ledger.Installment
	err := r.db.GetContext(ctx, &inst, "SELECT * FROM installments WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return &inst, err
}

func (r *postgresRepository) GetCustomerIDForInstallment(ctx context.Context, installmentID uuid.UUID) (uuid.UUID, error) {
	var customerID uuid.UUID
	err := r.db.GetContext(ctx, &customerID, `
		SELECT s.customer_id
		FROM installments i
		JOIN sales s ON s.id = i.sale_id
		WHERE i.id = $1`, installmentID)
	return customerID, err
}

func (r *postgresRepository) ApplyPayment(ctx context.Context, customerID uuid.UUID, result *ledger.PaymentResult) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// The write only lands on a still-pending row. A cancel that slipped in
	// after the service's status check flipped the row to cancelado, and
	// committing on top of it would resurrect a cancelled installment.
	instQuery := `
		UPDATE installments SET
			paid_amount = :paid_amount,
			late_fee = :late_fee,
			discount = :discount,
			status = :status,
			payment_date = :payment_date,
			notes = :notes,
			updated_at = NOW()
		WHERE id = :id AND status = 'pendente'`
	res, err := tx.NamedExecContext(ctx, instQuery, &result.Installment)
	if err != nil {
		return fmt.Errorf("failed to update installment: %w", err)
	}
	if affected, err := res.RowsAffected(); err != nil {
		return fmt.Errorf("failed to update installment: %w", err)
	} else if affected == 0 {
		return ErrInstallmentClosed
	}

	payQuery := `
		INSERT INTO payments (
			id, installment_id, user_id, amount, payment_date, payment_method, notes
		) VALUES (
			:id, :installment_id, :user_id, :amount, :payment_date, :payment_method, :notes
		)`
	if _, err := tx.NamedExecContext(ctx, payQuery, &result.Payment); err != nil {
		return fmt.Errorf("failed to insert payment: %w", err)
	}

	if !result.DebtDelta.IsZero() {
		var current decimal.Decimal
		err := tx.GetContext(ctx, &current,
			"SELECT current_debt FROM customers WHERE id = $1 FOR UPDATE", customerID)
		if err != nil {
			return fmt.Errorf("failed to lock customer row: %w", err)
		}
		newDebt := ledger.ApplyDebtDelta(current, result.DebtDelta)
		if _, err := tx.ExecContext(ctx,
			"UPDATE customers SET current_debt = $1, updated_at = NOW() WHERE id = $2",
			newDebt, customerID); err != nil {
			return fmt.Errorf("failed to update customer debt: %w", err)
		}
	}

	return tx.Commit()
}

func (r *postgresRepository) ListPayments(ctx context.Context, installmentID uuid.UUID) ([]ledger.Payment, error) {
	var payments []ledger.Payment
	err := r.db.SelectContext(ctx, &payments,
		"SELECT * FROM payments WHERE installment_id = $1 ORDER BY payment_date, created_at", installmentID)
	return payments, err
}

// ListOverdue derives lateness at read time: a pending installment whose due
// date is before asOf. Overdue is never a stored status. asOf is truncated to
// its calendar day so an installment due today is not reported late.
func (r *postgresRepository) ListOverdue(ctx context.Context, asOf time.Time, filter OverdueFilter) ([]OverdueInstallment, error) {
	asOf = ledger.DateOnly(asOf)
	query := `
		SELECT i.*, s.sale_number, s.customer_id,
		       c.full_name AS customer_name, c.phone AS customer_phone
		FROM installments i
		JOIN sales s ON s.id = i.sale_id
		JOIN customers c ON c.id = s.customer_id
		WHERE i.status = $1 AND i.due_date < $2`
	args := []interface{}{ledger.StatusPending, asOf}

	if filter.CustomerID != nil {
		args = append(args, *filter.CustomerID)
		query += fmt.Sprintf(" AND s.customer_id = $%d", len(args))
	}
	if filter.UserID != nil {
		args = append(args, *filter.UserID)
		query += fmt.Sprintf(" AND s.user_id = $%d", len(args))
	}
	query += " ORDER BY i.due_date, s.sale_number"

	var overdue []OverdueInstallment
	err := r.db.SelectContext(ctx, &overdue, query, args...)
	return overdue, err
}
