package reports

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"crediario/portal-backend/internal/ledger"
)

type Repository interface {
	SalesReport(ctx context.Context, start, end time.Time, scope ReportScope) ([]SalesReportRow, error)
	PaymentsReport(ctx context.Context, start, end time.Time, scope ReportScope) ([]PaymentsReportRow, error)
	OverdueReport(ctx context.Context, asOf time.Time, scope ReportScope) ([]OverdueReportRow, error)
	CustomersReport(ctx context.Context, scope ReportScope) ([]CustomersReportRow, error)
	Dashboard(ctx context.Context, start, end, asOf time.Time, scope ReportScope) (*Dashboard, error)
}

type postgresRepository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) SalesReport(ctx context.Context, start, end time.Time, scope ReportScope) ([]SalesReportRow, error) {
	query := `
		SELECT s.sale_number, s.sale_date, c.full_name AS customer_name,
		       s.description, s.total_with_interest, s.installment_count, s.status
		FROM sales s
		JOIN customers c ON c.id = s.customer_id
		WHERE s.sale_date >= $1 AND s.sale_date < $2`
	args := []interface{}{start, end}
	query, args = applyScope(query, args, "s.user_id", scope)
	query += " ORDER BY s.sale_date, s.sale_number"

	var rows []SalesReportRow
	err := r.db.SelectContext(ctx, &rows, query, args...)
	return rows, err
}

func (r *postgresRepository) PaymentsReport(ctx context.Context, start, end time.Time, scope ReportScope) ([]PaymentsReportRow, error) {
	query := `
		SELECT p.payment_date, s.sale_number, c.full_name AS customer_name,
		       p.amount, p.payment_method, u.full_name AS received_by
		FROM payments p
		JOIN installments i ON i.id = p.installment_id
		JOIN sales s ON s.id = i.sale_id
		JOIN customers c ON c.id = s.customer_id
		JOIN users u ON u.id = p.user_id
		WHERE p.payment_date >= $1 AND p.payment_date < $2`
	args := []interface{}{start, end}
	query, args = applyScope(query, args, "s.user_id", scope)
	query += " ORDER BY p.payment_date"

	var rows []PaymentsReportRow
	err := r.db.SelectContext(ctx, &rows, query, args...)
	return rows, err
}

func (r *postgresRepository) OverdueReport(ctx context.Context, asOf time.Time, scope ReportScope) ([]OverdueReportRow, error) {
	asOf = ledger.DateOnly(asOf)
	query := `
		SELECT c.full_name AS customer_name, c.phone AS customer_phone,
		       s.sale_number, i.installment_number, i.due_date,
		       i.amount - i.paid_amount AS remaining
		FROM installments i
		JOIN sales s ON s.id = i.sale_id
		JOIN customers c ON c.id = s.customer_id
		WHERE i.status = 'pendente' AND i.due_date < $1`
	args := []interface{}{asOf}
	query, args = applyScope(query, args, "s.user_id", scope)
	query += " ORDER BY i.due_date, s.sale_number"

	var rows []OverdueReportRow
	err := r.db.SelectContext(ctx, &rows, query, args...)
	return rows, err
}

func (r *postgresRepository) CustomersReport(ctx context.Context, scope ReportScope) ([]CustomersReportRow, error) {
	query := `
		SELECT full_name, phone, city, credit_limit, current_debt, active
		FROM customers WHERE 1=1`
	args := []interface{}{}
	query, args = applyScope(query, args, "user_id", scope)
	query += " ORDER BY full_name"

	var rows []CustomersReportRow
	err := r.db.SelectContext(ctx, &rows, query, args...)
	return rows, err
}

func (r *postgresRepository) Dashboard(ctx context.Context, start, end, asOf time.Time, scope ReportScope) (*Dashboard, error) {
	asOf = ledger.DateOnly(asOf)
	var d Dashboard

	salesQuery := `
		SELECT COUNT(*) AS total, COALESCE(SUM(total_with_interest), 0) AS value
		FROM sales
		WHERE sale_date >= $1 AND sale_date < $2 AND status <> 'cancelado'`
	salesArgs := []interface{}{start, end}
	salesQuery, salesArgs = applyScope(salesQuery, salesArgs, "user_id", scope)
	var sales struct {
		Total int             `db:"total"`
		Value decimal.Decimal `db:"value"`
	}
	if err := r.db.GetContext(ctx, &sales, salesQuery, salesArgs...); err != nil {
		return nil, fmt.Errorf("failed to load sales aggregates: %w", err)
	}
	d.TotalSales = sales.Total
	d.SalesValue = sales.Value

	receivedQuery := `
		SELECT COALESCE(SUM(p.amount), 0) AS value
		FROM payments p
		JOIN installments i ON i.id = p.installment_id
		JOIN sales s ON s.id = i.sale_id
		WHERE p.payment_date >= $1 AND p.payment_date < $2`
	receivedArgs := []interface{}{start, end}
	receivedQuery, receivedArgs = applyScope(receivedQuery, receivedArgs, "s.user_id", scope)
	var received decimal.Decimal
	if err := r.db.GetContext(ctx, &received, receivedQuery, receivedArgs...); err != nil {
		return nil, fmt.Errorf("failed to load received aggregates: %w", err)
	}
	d.ReceivedValue = received

	pendingQuery := `
		SELECT COALESCE(SUM(i.amount - i.paid_amount), 0) AS value
		FROM installments i
		JOIN sales s ON s.id = i.sale_id
		WHERE i.status = 'pendente'`
	pendingArgs := []interface{}{}
	pendingQuery, pendingArgs = applyScope(pendingQuery, pendingArgs, "s.user_id", scope)
	var pending decimal.Decimal
	if err := r.db.GetContext(ctx, &pending, pendingQuery, pendingArgs...); err != nil {
		return nil, fmt.Errorf("failed to load pending aggregates: %w", err)
	}
	d.PendingValue = pending

	overdueQuery := `
		SELECT COUNT(*) AS total, COALESCE(SUM(i.amount - i.paid_amount), 0) AS value
		FROM installments i
		JOIN sales s ON s.id = i.sale_id
		WHERE i.status = 'pendente' AND i.due_date < $1`
	overdueArgs := []interface{}{asOf}
	overdueQuery, overdueArgs = applyScope(overdueQuery, overdueArgs, "s.user_id", scope)
	var overdue struct {
		Total int             `db:"total"`
		Value decimal.Decimal `db:"value"`
	}
	if err := r.db.GetContext(ctx, &overdue, overdueQuery, overdueArgs...); err != nil {
		return nil, fmt.Errorf("failed to load overdue aggregates: %w", err)
	}
	d.OverdueCount = overdue.Total
	d.OverdueValue = overdue.Value

	customersQuery := "SELECT COUNT(*) FROM customers WHERE active = true"
	customersArgs := []interface{}{}
	customersQuery, customersArgs = applyScope(customersQuery, customersArgs, "user_id", scope)
	if err := r.db.GetContext(ctx, &d.ActiveCustomers, customersQuery, customersArgs...); err != nil {
		return nil, fmt.Errorf("failed to count customers: %w", err)
	}

	return &d, nil
}

func applyScope(query string, args []interface{}, column string, scope ReportScope) (string, []interface{}) {
	if scope.UserID == nil {
		return query, args
	}
	args = append(args, *scope.UserID)
	return fmt.Sprintf("%s AND %s = $%d", query, column, len(args)), args
}
