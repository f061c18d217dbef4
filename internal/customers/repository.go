package customers

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type Repository interface {
	Create(ctx context.Context, customer *Customer) error
	GetByID(ctx context.Context, id uuid.UUID) (*Customer, error)
	GetByCPF(ctx context.Context, cpf string) (*Customer, error)
	List(ctx context.Context, filter CustomerFilter) ([]Customer, error)
	Update(ctx context.Context, customer *Customer) error
}

type postgresRepository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) Create(ctx context.Context, customer *Customer) error {
	query := `
		INSERT INTO customers (
			id, full_name, cpf, rg, birth_date, phone, email, address,
			neighborhood, city, state, zip_code, occupation, monthly_income,
			reference_name, reference_phone, notes, credit_limit, current_debt,
			active, user_id
		) VALUES (
			:id, :full_name, :cpf, :rg, :birth_date, :phone, :email, :address,
			:neighborhood, :city, :state, :zip_code, :occupation, :monthly_income,
			:reference_name, :reference_phone, :notes, :credit_limit, :current_debt,
			:active, :user_id
		)`
	_, err := r.db.NamedExecContext(ctx, query, customer)
	return err
}

func (r *postgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*Customer, error) {
	var customer Customer
	err := r.db.GetContext(ctx, &customer, "SELECT * FROM customers WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return &customer, err
}

func (r *postgresRepository) GetByCPF(ctx context.Context, cpf string) (*Customer, error) {
	var customer Customer
	err := r.db.GetContext(ctx, &customer, "SELECT * FROM customers WHERE cpf = $1", cpf)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return &customer, err
}

func (r *postgresRepository) List(ctx context.Context, filter CustomerFilter) ([]Customer, error) {
	query := "SELECT * FROM customers WHERE 1=1"
	args := []interface{}{}

	if filter.ActiveOnly {
		query += " AND active = true"
	}
	if filter.UserID != nil {
		args = append(args, *filter.UserID)
		query += fmt.Sprintf(" AND user_id = $%d", len(args))
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		query += fmt.Sprintf(" AND (full_name ILIKE $%d OR cpf ILIKE $%d)", len(args), len(args))
	}
	query += " ORDER BY full_name"

	var customers []Customer
	err := r.db.SelectContext(ctx, &customers, query, args...)
	return customers, err
}

func (r *postgresRepository) Update(ctx context.Context, customer *Customer) error {
	query := `
		UPDATE customers SET
			full_name = :full_name,
			cpf = :cpf,
			rg = :rg,
			birth_date = :birth_date,
			phone = :phone,
			email = :email,
			address = :address,
			neighborhood = :neighborhood,
			city = :city,
			state = :state,
			zip_code = :zip_code,
			occupation = :occupation,
			monthly_income = :monthly_income,
			reference_name = :reference_name,
			reference_phone = :reference_phone,
			notes = :notes,
			credit_limit = :credit_limit,
			active = :active,
			updated_at = NOW()
		WHERE id = :id`
	_, err := r.db.NamedExecContext(ctx, query, customer)
	return err
}

