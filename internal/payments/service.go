package payments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"crediario/portal-backend/internal/auth"
	"crediario/portal-backend/internal/ledger"
	"crediario/portal-backend/pkg/locks"
)

var (
	ErrInstallmentNotFound = errors.New("installment not found")
	ErrInstallmentClosed   = errors.New("installment is already paid or cancelled")
	ErrInvalidMethod       = errors.New("unknown payment method")
)

type Service struct {
	repo   Repository
	locks  *locks.KeyedMutex
	logger *zap.Logger
	now    func() time.Time
}

func NewService(repo Repository, keyed *locks.KeyedMutex, logger *zap.Logger) *Service {
	return &Service{repo: repo, locks: keyed, logger: logger, now: time.Now}
}

// RecordPayment applies one payment to one installment. The read, the ledger
// computation and the write run under a per-installment lock so concurrent
// payments against the same installment serialize instead of losing updates.
func (s *Service) RecordPayment(ctx context.Context, actor auth.Identity, installmentID uuid.UUID, in RecordPaymentInput) (*PaymentReceipt, error) {
	if !ledger.ValidMethod(in.Method) {
		return nil, ErrInvalidMethod
	}

	key := "installment:" + installmentID.String()
	s.locks.Lock(key)
	defer s.locks.Unlock(key)

	inst, err := s.repo.GetInstallment(ctx, installmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load installment: %w", err)
	}
	if inst == nil {
		return nil, ErrInstallmentNotFound
	}
	if inst.Status != ledger.StatusPending {
		return nil, ErrInstallmentClosed
	}

	date := s.now()
	if in.PaymentDate != nil {
		date = *in.PaymentDate
	}

	result, err := ledger.RecordPayment(*inst, ledger.PaymentInput{
		Amount:   in.Amount,
		Date:     date,
		Method:   in.Method,
		LateFee:  in.LateFee,
		Discount: in.Discount,
		Notes:    in.Notes,
		UserID:   actor.UserID,
	})
	if err != nil {
		return nil, err
	}

	customerID, err := s.repo.GetCustomerIDForInstallment(ctx, installmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve customer: %w", err)
	}

	if err := s.repo.ApplyPayment(ctx, customerID, result); err != nil {
		return nil, fmt.Errorf("failed to commit payment: %w", err)
	}

	s.logger.Info("payment recorded",
		zap.String("installment_id", installmentID.String()),
		zap.String("amount", in.Amount.StringFixed(2)),
		zap.String("method", string(in.Method)),
		zap.Bool("settled", result.Settled))

	return &PaymentReceipt{
		Installment: result.Installment,
		Payment:     result.Payment,
		Settled:     result.Settled,
	}, nil
}

// ListPayments returns the payment history of one installment.
func (s *Service) ListPayments(ctx context.Context, installmentID uuid.UUID) ([]ledger.Payment, error) {
	return s.repo.ListPayments(ctx, installmentID)
}

// ListOverdue returns late installments as of the given day, scoped by role
// the same way sales are. Lateness is derived, never stored, and compared at
// day granularity: an installment due on asOf's calendar day is not late.
func (s *Service) ListOverdue(ctx context.Context, actor auth.Identity, asOf time.Time, customerID *uuid.UUID) ([]OverdueInstallment, error) {
	asOf = ledger.DateOnly(asOf)
	filter := OverdueFilter{CustomerID: customerID}
	if !auth.HasPermission(actor.Role, auth.RoleLoja) {
		filter.UserID = &actor.UserID
	}

	overdue, err := s.repo.ListOverdue(ctx, asOf, filter)
	if err != nil {
		return nil, err
	}
	for i := range overdue {
		overdue[i].DaysLate = overdue[i].DaysOverdue(asOf)
	}
	return overdue, nil
}
