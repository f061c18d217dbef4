package payments

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"crediario/portal-backend/internal/auth"
	"crediario/portal-backend/internal/ledger"
	"crediario/portal-backend/pkg/locks"
)

type mockPaymentRepository struct {
	mock.Mock
}

func (m *mockPaymentRepository) GetInstallment(ctx context.Context, id uuid.UUID) (*ledger.Installment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.Installment), args.Error(1)
}

func (m *mockPaymentRepository) GetCustomerIDForInstallment(ctx context.Context, installmentID uuid.UUID) (uuid.UUID, error) {
	args := m.Called(ctx, installmentID)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

func (m *mockPaymentRepository) ApplyPayment(ctx context.Context, customerID uuid.UUID, result *ledger.PaymentResult) error {
	args := m.Called(ctx, customerID, result)
	return args.Error(0)
}

func (m *mockPaymentRepository) ListPayments(ctx context.Context, installmentID uuid.UUID) ([]ledger.Payment, error) {
	args := m.Called(ctx, installmentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ledger.Payment), args.Error(1)
}

func (m *mockPaymentRepository) ListOverdue(ctx context.Context, asOf time.Time, filter OverdueFilter) ([]OverdueInstallment, error) {
	args := m.Called(ctx, asOf, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]OverdueInstallment), args.Error(1)
}

func newPaymentService(repo Repository) *Service {
	svc := NewService(repo, locks.NewKeyedMutex(), zap.NewNop())
	svc.now = func() time.Time {
		return time.Date(2026, 9, 1, 15, 0, 0, 0, time.UTC)
	}
	return svc
}

func pendingInstallment(amount int64) *ledger.Installment {
	return &ledger.Installment{
		ID:                uuid.New(),
		SaleID:            uuid.New(),
		InstallmentNumber: 1,
		DueDate:           time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
		Amount:            decimal.NewFromInt(amount),
		PaidAmount:        decimal.Zero,
		LateFee:           decimal.Zero,
		Discount:          decimal.Zero,
		Status:            ledger.StatusPending,
	}
}

func payer() auth.Identity {
	return auth.Identity{UserID: uuid.New(), Role: auth.RoleVendedor}
}

func TestRecordPaymentSettles(t *testing.T) {
	inst := pendingInstallment(100)
	customerID := uuid.New()

	repo := new(mockPaymentRepository)
	repo.On("GetInstallment", mock.Anything, inst.ID).Return(inst, nil)
	repo.On("GetCustomerIDForInstallment", mock.Anything, inst.ID).Return(customerID, nil)
	repo.On("ApplyPayment", mock.Anything, customerID, mock.MatchedBy(func(r *ledger.PaymentResult) bool {
		return r.Settled && r.DebtDelta.Equal(decimal.NewFromInt(-100))
	})).Return(nil)

	svc := newPaymentService(repo)
	receipt, err := svc.RecordPayment(context.Background(), payer(), inst.ID, RecordPaymentInput{
		Amount: decimal.NewFromInt(100),
		Method: ledger.MethodPix,
	})

	require.NoError(t, err)
	assert.True(t, receipt.Settled)
	assert.Equal(t, ledger.StatusPaid, receipt.Installment.Status)
	assert.True(t, receipt.Payment.Amount.Equal(decimal.NewFromInt(100)))
	repo.AssertExpectations(t)
}

func TestRecordPartialPayment(t *testing.T) {
	inst := pendingInstallment(100)
	customerID := uuid.New()

	repo := new(mockPaymentRepository)
	repo.On("GetInstallment", mock.Anything, inst.ID).Return(inst, nil)
	repo.On("GetCustomerIDForInstallment", mock.Anything, inst.ID).Return(customerID, nil)
	repo.On("ApplyPayment", mock.Anything, customerID, mock.MatchedBy(func(r *ledger.PaymentResult) bool {
		return !r.Settled && r.DebtDelta.IsZero() &&
			r.Installment.PaidAmount.Equal(decimal.NewFromInt(40))
	})).Return(nil)

	svc := newPaymentService(repo)
	receipt, err := svc.RecordPayment(context.Background(), payer(), inst.ID, RecordPaymentInput{
		Amount: decimal.NewFromInt(40),
		Method: ledger.MethodCash,
	})

	require.NoError(t, err)
	assert.False(t, receipt.Settled)
	assert.Equal(t, ledger.StatusPending, receipt.Installment.Status)
	repo.AssertExpectations(t)
}

func TestRecordPaymentOverpaymentRejected(t *testing.T) {
	inst := pendingInstallment(100)
	inst.PaidAmount = decimal.NewFromInt(50)

	repo := new(mockPaymentRepository)
	repo.On("GetInstallment", mock.Anything, inst.ID).Return(inst, nil)

	svc := newPaymentService(repo)
	_, err := svc.RecordPayment(context.Background(), payer(), inst.ID, RecordPaymentInput{
		Amount: decimal.NewFromInt(60),
		Method: ledger.MethodPix,
	})

	assert.ErrorIs(t, err, ledger.ErrPaymentExceedsBalance)
	repo.AssertNotCalled(t, "ApplyPayment", mock.Anything, mock.Anything, mock.Anything)
}

func TestRecordPaymentClosedInstallment(t *testing.T) {
	inst := pendingInstallment(100)
	inst.Status = ledger.StatusPaid
	inst.PaidAmount = decimal.NewFromInt(100)

	repo := new(mockPaymentRepository)
	repo.On("GetInstallment", mock.Anything, inst.ID).Return(inst, nil)

	svc := newPaymentService(repo)
	_, err := svc.RecordPayment(context.Background(), payer(), inst.ID, RecordPaymentInput{
		Amount: decimal.NewFromInt(10),
		Method: ledger.MethodPix,
	})

	assert.ErrorIs(t, err, ErrInstallmentClosed)
}

// A cancel can flip the installment to cancelado after the status check but
// before the payment transaction commits. The transaction's own guard
// rejects the write and the caller sees the installment as closed.
func TestRecordPaymentInstallmentCancelledConcurrently(t *testing.T) {
	inst := pendingInstallment(100)
	customerID := uuid.New()

	repo := new(mockPaymentRepository)
	repo.On("GetInstallment", mock.Anything, inst.ID).Return(inst, nil)
	repo.On("GetCustomerIDForInstallment", mock.Anything, inst.ID).Return(customerID, nil)
	repo.On("ApplyPayment", mock.Anything, customerID, mock.Anything).
		Return(ErrInstallmentClosed)

	svc := newPaymentService(repo)
	_, err := svc.RecordPayment(context.Background(), payer(), inst.ID, RecordPaymentInput{
		Amount: decimal.NewFromInt(100),
		Method: ledger.MethodPix,
	})

	assert.ErrorIs(t, err, ErrInstallmentClosed)
}

func TestRecordPaymentUnknownMethod(t *testing.T) {
	svc := newPaymentService(new(mockPaymentRepository))
	_, err := svc.RecordPayment(context.Background(), payer(), uuid.New(), RecordPaymentInput{
		Amount: decimal.NewFromInt(10),
		Method: "vale-refeicao",
	})

	assert.ErrorIs(t, err, ErrInvalidMethod)
}

func TestRecordPaymentUnknownInstallment(t *testing.T) {
	id := uuid.New()
	repo := new(mockPaymentRepository)
	repo.On("GetInstallment", mock.Anything, id).Return(nil, nil)

	svc := newPaymentService(repo)
	_, err := svc.RecordPayment(context.Background(), payer(), id, RecordPaymentInput{
		Amount: decimal.NewFromInt(10),
		Method: ledger.MethodPix,
	})

	assert.ErrorIs(t, err, ErrInstallmentNotFound)
}

func TestListOverdueScopesSellers(t *testing.T) {
	seller := payer()
	asOf := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)

	repo := new(mockPaymentRepository)
	repo.On("ListOverdue", mock.Anything, asOf, mock.MatchedBy(func(f OverdueFilter) bool {
		return f.UserID != nil && *f.UserID == seller.UserID
	})).Return([]OverdueInstallment{}, nil)

	svc := newPaymentService(repo)
	_, err := svc.ListOverdue(context.Background(), seller, asOf, nil)

	require.NoError(t, err)
	repo.AssertExpectations(t)
}

// An afternoon asOf must reach the repository truncated to midnight, so the
// day-granular SQL predicate never flags an installment due that same day.
func TestListOverdueTruncatesAsOfToDay(t *testing.T) {
	owner := auth.Identity{UserID: uuid.New(), Role: auth.RoleLoja}
	asOf := time.Date(2026, 9, 1, 15, 42, 7, 0, time.UTC)
	midnight := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)

	repo := new(mockPaymentRepository)
	repo.On("ListOverdue", mock.Anything, midnight, mock.Anything).
		Return([]OverdueInstallment{}, nil)

	svc := newPaymentService(repo)
	_, err := svc.ListOverdue(context.Background(), owner, asOf, nil)

	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestListOverdueComputesDaysLate(t *testing.T) {
	owner := auth.Identity{UserID: uuid.New(), Role: auth.RoleLoja}
	asOf := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	late := OverdueInstallment{Installment: *pendingInstallment(100)}
	late.DueDate = time.Date(2026, 8, 10, 0, 0, 0, 0, time.UTC)

	repo := new(mockPaymentRepository)
	repo.On("ListOverdue", mock.Anything, asOf, mock.Anything).
		Return([]OverdueInstallment{late}, nil)

	svc := newPaymentService(repo)
	overdue, err := svc.ListOverdue(context.Background(), owner, asOf, nil)

	require.NoError(t, err)
	require.Len(t, overdue, 1)
	assert.Equal(t, 22, overdue[0].DaysLate)
}
