package customers

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"crediario/portal-backend/internal/auth"
)

var (
	ErrCPFTaken         = errors.New("a customer with this CPF already exists")
	ErrCustomerNotFound = errors.New("customer not found")
	ErrNegativeAmount   = errors.New("credit limit and monthly income cannot be negative")
)

func validateInput(in CustomerInput) error {
	if in.CreditLimit.IsNegative() {
		return ErrNegativeAmount
	}
	if in.MonthlyIncome != nil && in.MonthlyIncome.IsNegative() {
		return ErrNegativeAmount
	}
	return nil
}

type Service struct {
	repo   Repository
	logger *zap.Logger
}

func NewService(repo Repository, logger *zap.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

func (s *Service) Create(ctx context.Context, actor auth.Identity, in CustomerInput) (*Customer, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}

	existing, err := s.repo.GetByCPF(ctx, in.CPF)
	if err != nil {
		return nil, fmt.Errorf("failed to look up CPF: %w", err)
	}
	if existing != nil {
		return nil, ErrCPFTaken
	}

	customer := &Customer{
		ID:             uuid.New(),
		FullName:       in.FullName,
		CPF:            in.CPF,
		RG:             in.RG,
		BirthDate:      in.BirthDate,
		Phone:          in.Phone,
		Email:          in.Email,
		Address:        in.Address,
		Neighborhood:   in.Neighborhood,
		City:           in.City,
		State:          in.State,
		ZipCode:        in.ZipCode,
		Occupation:     in.Occupation,
		MonthlyIncome:  in.MonthlyIncome,
		ReferenceName:  in.ReferenceName,
		ReferencePhone: in.ReferencePhone,
		Notes:          in.Notes,
		CreditLimit:    in.CreditLimit,
		CurrentDebt:    decimal.Zero,
		Active:         true,
		UserID:         actor.UserID,
	}

	if err := s.repo.Create(ctx, customer); err != nil {
		return nil, fmt.Errorf("failed to create customer: %w", err)
	}

	s.logger.Info("customer created",
		zap.String("customer_id", customer.ID.String()),
		zap.String("created_by", actor.UserID.String()))

	return customer, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Customer, error) {
	customer, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if customer == nil {
		return nil, ErrCustomerNotFound
	}
	return customer, nil
}

// List returns customers scoped by role: vendedores only see customers they
// registered, loja and master see every customer.
func (s *Service) List(ctx context.Context, actor auth.Identity, search string, activeOnly bool) ([]Customer, error) {
	filter := CustomerFilter{Search: search, ActiveOnly: activeOnly}
	if !auth.HasPermission(actor.Role, auth.RoleLoja) {
		filter.UserID = &actor.UserID
	}
	return s.repo.List(ctx, filter)
}

// Update replaces the writable fields of a customer. CurrentDebt is carried
// over untouched so stale API payloads can never corrupt the ledger balance.
func (s *Service) Update(ctx context.Context, id uuid.UUID, in CustomerInput) (*Customer, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}

	customer, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.CPF != customer.CPF {
		existing, err := s.repo.GetByCPF(ctx, in.CPF)
		if err != nil {
			return nil, fmt.Errorf("failed to look up CPF: %w", err)
		}
		if existing != nil && existing.ID != id {
			return nil, ErrCPFTaken
		}
	}

	customer.FullName = in.FullName
	customer.CPF = in.CPF
	customer.RG = in.RG
	customer.BirthDate = in.BirthDate
	customer.Phone = in.Phone
	customer.Email = in.Email
	customer.Address = in.Address
	customer.Neighborhood = in.Neighborhood
	customer.City = in.City
	customer.State = in.State
	customer.ZipCode = in.ZipCode
	customer.Occupation = in.Occupation
	customer.MonthlyIncome = in.MonthlyIncome
	customer.ReferenceName = in.ReferenceName
	customer.ReferencePhone = in.ReferencePhone
	customer.Notes = in.Notes
	customer.CreditLimit = in.CreditLimit

	if err := s.repo.Update(ctx, customer); err != nil {
		return nil, fmt.Errorf("failed to update customer: %w", err)
	}
	return customer, nil
}

// Deactivate disables a customer without deleting history.
func (s *Service) Deactivate(ctx context.Context, id uuid.UUID) error {
	customer, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	customer.Active = false
	return s.repo.Update(ctx, customer)
}
