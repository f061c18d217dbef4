package sales

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"crediario/portal-backend/internal/auth"
	"crediario/portal-backend/internal/customers"
	"crediario/portal-backend/internal/ledger"
	"crediario/portal-backend/pkg/locks"
)

var (
	ErrSaleNotFound      = errors.New("sale not found")
	ErrSaleAlreadyClosed = errors.New("sale is already paid or cancelled")
	ErrCustomerInactive  = errors.New("customer is inactive")
)

type Service struct {
	repo      Repository
	customers customers.Repository
	locks     *locks.KeyedMutex
	logger    *zap.Logger
	now       func() time.Time
}

func NewService(repo Repository, customersRepo customers.Repository, keyed *locks.KeyedMutex, logger *zap.Logger) *Service {
	return &Service{
		repo:      repo,
		customers: customersRepo,
		locks:     keyed,
		logger:    logger,
		now:       time.Now,
	}
}

// CreateSale computes the installment schedule, checks the customer's credit
// headroom and commits sale, installments and the debt increase atomically.
// The whole sequence runs under a per-customer lock so a racing sale cannot
// slip past the credit check.
func (s *Service) CreateSale(ctx context.Context, actor auth.Identity, in CreateSaleInput) (*SaleDetail, error) {
	if !in.TotalAmount.IsPositive() || in.DownPayment.IsNegative() {
		return nil, ledger.ErrInvalidScheduleInput
	}
	financed := in.TotalAmount.Sub(in.DownPayment)
	if financed.IsNegative() {
		return nil, ledger.ErrInvalidScheduleInput
	}

	schedule, err := ledger.ComputeSchedule(financed, in.InstallmentCount, in.InterestRate, in.FirstDueDate)
	if err != nil {
		return nil, err
	}

	s.locks.Lock(customerKey(in.CustomerID))
	defer s.locks.Unlock(customerKey(in.CustomerID))

	customer, err := s.customers.GetByID(ctx, in.CustomerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load customer: %w", err)
	}
	if customer == nil {
		return nil, customers.ErrCustomerNotFound
	}
	if !customer.Active {
		return nil, ErrCustomerInactive
	}

	if err := ledger.CheckAvailableCredit(customer.CreditLimit, customer.CurrentDebt, financed); err != nil {
		return nil, err
	}

	now := s.now()
	saleDate := now
	if in.SaleDate != nil {
		saleDate = *in.SaleDate
	}

	sale := &Sale{
		ID:                uuid.New(),
		SaleNumber:        saleNumber(now),
		CustomerID:        in.CustomerID,
		UserID:            actor.UserID,
		Description:       in.Description,
		TotalAmount:       in.TotalAmount,
		DownPayment:       in.DownPayment,
		FinancedAmount:    financed,
		InstallmentCount:  in.InstallmentCount,
		InstallmentValue:  schedule.InstallmentValue,
		InterestRate:      in.InterestRate,
		TotalWithInterest: schedule.TotalPayable,
		SaleDate:          saleDate,
		FirstDueDate:      in.FirstDueDate,
		Status:            ledger.StatusPending,
		Notes:             in.Notes,
	}

	installments := make([]ledger.Installment, in.InstallmentCount)
	for i := 0; i < in.InstallmentCount; i++ {
		installments[i] = ledger.Installment{
			ID:                uuid.New(),
			SaleID:            sale.ID,
			InstallmentNumber: i + 1,
			DueDate:           schedule.DueDates[i],
			Amount:            schedule.Amounts[i],
			PaidAmount:        decimal.Zero,
			LateFee:           decimal.Zero,
			Discount:          decimal.Zero,
			Status:            ledger.StatusPending,
		}
	}

	if err := s.repo.CreateSale(ctx, sale, installments, financed); err != nil {
		return nil, fmt.Errorf("failed to commit sale: %w", err)
	}

	s.logger.Info("sale created",
		zap.String("sale_id", sale.ID.String()),
		zap.String("sale_number", sale.SaleNumber),
		zap.String("customer_id", sale.CustomerID.String()),
		zap.String("total_with_interest", sale.TotalWithInterest.StringFixed(2)))

	return &SaleDetail{Sale: *sale, Installments: installments}, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*SaleDetail, error) {
	sale, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if sale == nil {
		return nil, ErrSaleNotFound
	}
	installments, err := s.repo.GetInstallments(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load installments: %w", err)
	}
	return &SaleDetail{Sale: *sale, Installments: installments}, nil
}

// List returns sales scoped by role: vendedores only see their own sales.
func (s *Service) List(ctx context.Context, actor auth.Identity, filter SaleFilter) ([]Sale, error) {
	if !auth.HasPermission(actor.Role, auth.RoleLoja) {
		filter.UserID = &actor.UserID
	}
	return s.repo.List(ctx, filter)
}

// Cancel closes a pending sale, cancels its open installments and releases
// the unpaid exposure from the customer's debt. Paid installments keep their
// status and their payment history. The released amount is computed inside
// the cancel transaction from the rows it actually cancelled, never from the
// pre-read snapshot, so a payment settling an installment concurrently is
// not released a second time.
func (s *Service) Cancel(ctx context.Context, id uuid.UUID) (*SaleDetail, error) {
	sale, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if sale == nil {
		return nil, ErrSaleNotFound
	}
	if sale.Status != ledger.StatusPending {
		return nil, ErrSaleAlreadyClosed
	}

	s.locks.Lock(customerKey(sale.CustomerID))
	defer s.locks.Unlock(customerKey(sale.CustomerID))

	release, err := s.repo.CancelSale(ctx, sale)
	if err != nil {
		if errors.Is(err, ErrSaleAlreadyClosed) {
			return nil, ErrSaleAlreadyClosed
		}
		return nil, fmt.Errorf("failed to cancel sale: %w", err)
	}
	sale.Status = ledger.StatusCancelled

	installments, err := s.repo.GetInstallments(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load installments: %w", err)
	}

	s.logger.Info("sale cancelled",
		zap.String("sale_id", id.String()),
		zap.String("released_exposure", release.StringFixed(2)))

	return &SaleDetail{Sale: *sale, Installments: installments}, nil
}

// RefreshStatus recomputes the sale's status from its installment ledger and
// persists it when it changed. Used by the nightly status worker.
func (s *Service) RefreshStatus(ctx context.Context, id uuid.UUID) (changed bool, err error) {
	sale, err := s.repo.GetByID(ctx, id)
	if err != nil || sale == nil {
		return false, err
	}
	installments, err := s.repo.GetInstallments(ctx, id)
	if err != nil {
		return false, err
	}

	derived := ledger.NewLedger(installments).SaleStatus()
	if derived == sale.Status {
		return false, nil
	}
	if err := s.repo.UpdateStatus(ctx, id, derived); err != nil {
		return false, err
	}
	return true, nil
}

// ListOpenSaleIDs returns the ids of sales still in the pending status.
func (s *Service) ListOpenSaleIDs(ctx context.Context) ([]uuid.UUID, error) {
	return s.repo.ListOpenSaleIDs(ctx)
}

func customerKey(id uuid.UUID) string {
	return "customer:" + id.String()
}

// saleNumber builds a human-facing number like 202609011234: the sale date
// plus a time-derived suffix to keep same-day numbers distinct.
func saleNumber(now time.Time) string {
	return fmt.Sprintf("%s%04d", now.Format("20060102"), now.UnixMilli()%10000)
}
