package reports

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
)

type mockReportRepository struct {
	mock.Mock
}

func (m *mockReportRepository) SalesReport(ctx context.Context, start, end time.Time, scope ReportScope) ([]SalesReportRow, error) {
	args := m.Called(ctx, start, end, scope)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]SalesReportRow), args.Error(1)
}

func (m *mockReportRepository) PaymentsReport(ctx context.Context, start, end time.Time, scope ReportScope) ([]PaymentsReportRow, error) {
	args := m.Called(ctx, start, end, scope)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]PaymentsReportRow), args.Error(1)
}

func (m *mockReportRepository) OverdueReport(ctx context.Context, asOf time.Time, scope ReportScope) ([]OverdueReportRow, error) {
	args := m.Called(ctx, asOf, scope)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]OverdueReportRow), args.Error(1)
}

func (m *mockReportRepository) CustomersReport(ctx context.Context, scope ReportScope) ([]CustomersReportRow, error) {
	args := m.Called(ctx, scope)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]CustomersReportRow), args.Error(1)
}

func (m *mockReportRepository) Dashboard(ctx context.Context, start, end, asOf time.Time, scope ReportScope) (*Dashboard, error) {
	args := m.Called(ctx, start, end, asOf, scope)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Dashboard), args.Error(1)
}

func fixedNow() time.Time {
	return time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
}

func newReportService(repo Repository) *Service {
	svc := NewService(repo, zap.NewNop())
	svc.now = fixedNow
	return svc
}

func storeOwner() auth.Identity {
	return auth.Identity{UserID: uuid.New(), Role: auth.RoleLoja}
}

func TestPeriodRanges(t *testing.T) {
	now := time.Date(2026, 8, 15, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		period Period
		start  time.Time
		end    time.Time
	}{
		{PeriodCurrentMonth,
			time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
			time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)},
		{PeriodLastMonth,
			time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC),
			time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)},
		{PeriodCurrentQuarter,
			time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC),
			time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)},
		{PeriodCurrentYear,
			time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
			time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC)},
		{PeriodLastYear,
			time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
			time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(string(tt.period), func(t *testing.T) {
			start, end, err := tt.period.Range(now)
			require.NoError(t, err)
			assert.Equal(t, tt.start, start)
			assert.Equal(t, tt.end, end)
		})
	}
}

func TestPeriodRangeUnknown(t *testing.T) {
	_, _, err := Period("fortnight").Range(fixedNow())
	assert.ErrorIs(t, err, ErrUnknownPeriod)
}

func TestBuildSalesReport(t *testing.T) {
	repo := new(mockReportRepository)
	repo.On("SalesReport", mock.Anything,
		time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC),
		ReportScope{}).
		Return([]SalesReportRow{{
			SaleNumber:        "202609011234",
			SaleDate:          time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
			CustomerName:      "Maria da Silva",
			Description:       "Fogão 5 bocas",
			TotalWithInterest: decimal.NewFromFloat(1025.00),
			InstallmentCount:  4,
			Status:            "pendente",
		}}, nil)

	svc := newReportService(repo)
	table, err := svc.Build(context.Background(), storeOwner(), ReportSales, PeriodCurrentMonth)

	require.NoError(t, err)
	assert.Equal(t, "Relatório de Vendas", table.Title)
	require.Len(t, table.Rows, 1)
	assert.Equal(t, "202609011234", table.Rows[0][0])
	assert.Equal(t, "R$ 1025.00", table.Rows[0][4])
	assert.Equal(t, "4", table.Rows[0][5])
	repo.AssertExpectations(t)
}

func TestBuildScopesSellers(t *testing.T) {
	seller := auth.Identity{UserID: uuid.New(), Role: auth.RoleVendedor}
	repo := new(mockReportRepository)
	repo.On("CustomersReport", mock.Anything, mock.MatchedBy(func(s ReportScope) bool {
		return s.UserID != nil && *s.UserID == seller.UserID
	})).Return([]CustomersReportRow{}, nil)

	svc := newReportService(repo)
	_, err := svc.Build(context.Background(), seller, ReportCustomers, PeriodCurrentMonth)

	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestBuildOverdueComputesDaysLate(t *testing.T) {
	repo := new(mockReportRepository)
	repo.On("OverdueReport", mock.Anything, fixedNow(), ReportScope{}).
		Return([]OverdueReportRow{{
			CustomerName: "João Pereira",
			SaleNumber:   "202607019999",
			Number:       2,
			DueDate:      time.Date(2026, 8, 2, 12, 0, 0, 0, time.UTC),
			Remaining:    decimal.NewFromFloat(150.00),
		}, {
			CustomerName: "Ana Souza",
			SaleNumber:   "202608318888",
			Number:       1,
			DueDate:      time.Date(2026, 8, 31, 18, 0, 0, 0, time.UTC),
			Remaining:    decimal.NewFromFloat(80.00),
		}}, nil)

	svc := newReportService(repo)
	table, err := svc.Build(context.Background(), storeOwner(), ReportOverdue, PeriodCurrentMonth)

	require.NoError(t, err)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, "30", table.Rows[0][6])
	// calendar days, not 24h spans: due yesterday evening is one day late
	assert.Equal(t, "1", table.Rows[1][6])
}

func TestBuildUnknownReport(t *testing.T) {
	svc := newReportService(new(mockReportRepository))
	_, err := svc.Build(context.Background(), storeOwner(), ReportType("audit"), PeriodCurrentMonth)
	assert.ErrorIs(t, err, ErrUnknownReport)
}

func TestDashboard(t *testing.T) {
	expected := &Dashboard{
		TotalSales:    3,
		SalesValue:    decimal.NewFromInt(4500),
		ReceivedValue: decimal.NewFromInt(1200),
		PendingValue:  decimal.NewFromInt(3300),
		OverdueCount:  2,
		OverdueValue:  decimal.NewFromInt(400),
	}
	repo := new(mockReportRepository)
	repo.On("Dashboard", mock.Anything,
		time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC),
		fixedNow(), ReportScope{}).
		Return(expected, nil)

	svc := newReportService(repo)
	dashboard, err := svc.Dashboard(context.Background(), storeOwner())

	require.NoError(t, err)
	assert.Equal(t, expected, dashboard)
}
