package sales

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"crediario/portal-backend/internal/ledger"
)

type Repository interface {
	// CreateSale inserts the sale and its installments and moves the
	// customer's debt in one transaction.
	CreateSale(ctx context.Context, sale *Sale, installments []ledger.Installment, debtDelta decimal.Decimal) error
	GetByID(ctx context.Context, id uuid.UUID) (*Sale, error)
	GetInstallments(ctx context.Context, saleID uuid.UUID) ([]ledger.Installment, error)
	List(ctx context.Context, filter SaleFilter) ([]Sale, error)
	ListOpenSaleIDs(ctx context.Context) ([]uuid.UUID, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status ledger.InstallmentStatus) error
	// CancelSale marks the sale and its pending installments cancelled and
	// releases their open balance from the customer's debt, all in one
	// transaction. The release is summed from the rows the transaction
	// actually cancelled, so a payment settling an installment concurrently
	// can never be released twice. Returns the released amount.
	CancelSale(ctx context.Context, sale *Sale) (decimal.Decimal, error)
}

type postgresRepository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) CreateSale(ctx context.Context, sale *Sale, installments []ledger.Installment, debtDelta decimal.Decimal) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	saleQuery := `
		INSERT INTO sales (
			id, sale_number, customer_id, user_id, description, total_amount,
			down_payment, financed_amount, installment_count, installment_value,
			interest_rate, total_with_interest, sale_date, first_due_date,
			status, notes
		) VALUES (
			:id, :sale_number, :customer_id, :user_id, :description, :total_amount,
			:down_payment, :financed_amount, :installment_count, :installment_value,
			:interest_rate, :total_with_interest, :sale_date, :first_due_date,
			:status, :notes
		)`
	if _, err := tx.NamedExecContext(ctx, saleQuery, sale); err != nil {
		return fmt.Errorf("failed to insert sale: %w", err)
	}

	instQuery := `
		INSERT INTO installments (
			id, sale_id, installment_number, due_date, amount, paid_amount,
			late_fee, discount, status
		) VALUES (
			:id, :sale_id, :installment_number, :due_date, :amount, :paid_amount,
			:late_fee, :discount, :status
		)`
	for i := range installments {
		if _, err := tx.NamedExecContext(ctx, instQuery, &installments[i]); err != nil {
			return fmt.Errorf("failed to insert installment %d: %w", installments[i].InstallmentNumber, err)
		}
	}

	if err := applyDebtDeltaTx(ctx, tx, sale.CustomerID, debtDelta); err != nil {
		return err
	}

	return tx.Commit()
}

func (r *postgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*Sale, error) {
	var sale Sale
	err := r.db.GetContext(ctx, &sale, "SELECT * FROM sales WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return &sale, err
}

func (r *postgresRepository) GetInstallments(ctx context.Context, saleID uuid.UUID) ([]ledger.Installment, error) {
	var installments []ledger.Installment
	err := r.db.SelectContext(ctx, &installments,
		"SELECT * FROM installments WHERE sale_id = $1 ORDER BY installment_number", saleID)
	return installments, err
}

func (r *postgresRepository) List(ctx context.Context, filter SaleFilter) ([]Sale, error) {
	query := "SELECT * FROM sales WHERE 1=1"
	args := []interface{}{}

	if filter.CustomerID != nil {
		args = append(args, *filter.CustomerID)
		query += fmt.Sprintf(" AND customer_id = $%d", len(args))
	}
	if filter.UserID != nil {
		args = append(args, *filter.UserID)
		query += fmt.Sprintf(" AND user_id = $%d", len(args))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		query += fmt.Sprintf(" AND status = $%d", len(args))
	}
	query += " ORDER BY sale_date DESC, sale_number DESC"

	var sales []Sale
	err := r.db.SelectContext(ctx, &sales, query, args...)
	return sales, err
}

func (r *postgresRepository) ListOpenSaleIDs(ctx context.Context) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.SelectContext(ctx, &ids,
		"SELECT id FROM sales WHERE status = $1", ledger.StatusPending)
	return ids, err
}

func (r *postgresRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status ledger.InstallmentStatus) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE sales SET status = $1, updated_at = NOW() WHERE id = $2", status, id)
	return err
}

func (r *postgresRepository) CancelSale(ctx context.Context, sale *Sale) (decimal.Decimal, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var remainders []decimal.Decimal
	err = tx.SelectContext(ctx, &remainders, `
		UPDATE installments SET status = $1, updated_at = NOW()
		WHERE sale_id = $2 AND status = $3
		RETURNING amount - paid_amount`,
		ledger.StatusCancelled, sale.ID, ledger.StatusPending)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to cancel installments: %w", err)
	}
	release := decimal.Zero
	for _, remaining := range remainders {
		release = release.Add(remaining)
	}

	res, err := tx.ExecContext(ctx,
		"UPDATE sales SET status = $1, updated_at = NOW() WHERE id = $2 AND status = $3",
		ledger.StatusCancelled, sale.ID, ledger.StatusPending)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to cancel sale: %w", err)
	}
	if affected, err := res.RowsAffected(); err != nil {
		return decimal.Zero, fmt.Errorf("failed to cancel sale: %w", err)
	} else if affected == 0 {
		return decimal.Zero, ErrSaleAlreadyClosed
	}

	if err := applyDebtDeltaTx(ctx, tx, sale.CustomerID, release.Neg()); err != nil {
		return decimal.Zero, err
	}

	if err := tx.Commit(); err != nil {
		return decimal.Zero, err
	}
	return release, nil
}

// applyDebtDeltaTx shifts the customer's debt inside tx. The row is locked
// first so concurrent transactions on the same customer serialize, and the
// result is floored at zero.
func applyDebtDeltaTx(ctx context.Context, tx *sqlx.Tx, customerID uuid.UUID, delta decimal.Decimal) error {
	if delta.IsZero() {
		return nil
	}

	var current decimal.Decimal
	err := tx.GetContext(ctx, &current,
		"SELECT current_debt FROM customers WHERE id = $1 FOR UPDATE", customerID)
	if err != nil {
		return fmt.Errorf("failed to lock customer row: %w", err)
	}

	newDebt := ledger.ApplyDebtDelta(current, delta)
	if _, err := tx.ExecContext(ctx,
		"UPDATE customers SET current_debt = $1, updated_at = NOW() WHERE id = $2",
		newDebt, customerID); err != nil {
		return fmt.Errorf("failed to update customer debt: %w", err)
	}
	return nil
}
