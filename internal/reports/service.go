package reports

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"crediario/portal-backend/internal/auth"
	"crediario/portal-backend/internal/ledger"
	"crediario/portal-backend/internal/money"
)

// Service builds report tables and dashboard aggregates.
type Service struct {
	repo   Repository
	logger *zap.Logger
	now    func() time.Time
}

func NewService(repo Repository, logger *zap.Logger) *Service {
	return &Service{repo: repo, logger: logger, now: time.Now}
}

// Build assembles the requested report over the given period, scoped to the
// acting user when they are below the loja role.
func (s *Service) Build(ctx context.Context, actor auth.Identity, reportType ReportType, period Period) (*ReportTable, error) {
	now := s.now()
	scope := s.scopeFor(actor)

	switch reportType {
	case ReportSales:
		return s.salesReport(ctx, period, now, scope)
	case ReportPayments:
		return s.paymentsReport(ctx, period, now, scope)
	case ReportOverdue:
		return s.overdueReport(ctx, now, scope)
	case ReportCustomers:
		return s.customersReport(ctx, scope)
	default:
		return nil, ErrUnknownReport
	}
}

// Dashboard returns the current-month aggregate snapshot for the acting user.
func (s *Service) Dashboard(ctx context.Context, actor auth.Identity) (*Dashboard, error) {
	now := s.now()
	start, end, err := PeriodCurrentMonth.Range(now)
	if err != nil {
		return nil, err
	}
	return s.repo.Dashboard(ctx, start, end, now, s.scopeFor(actor))
}

func (s *Service) salesReport(ctx context.Context, period Period, now time.Time, scope ReportScope) (*ReportTable, error) {
	start, end, err := period.Range(now)
	if err != nil {
		return nil, err
	}
	rows, err := s.repo.SalesReport(ctx, start, end, scope)
	if err != nil {
		return nil, fmt.Errorf("failed to build sales report: %w", err)
	}

	table := &ReportTable{
		Title:     "Relatório de Vendas",
		Period:    period,
		Columns:   []string{"Venda", "Data", "Cliente", "Descrição", "Total", "Parcelas", "Situação"},
		Generated: now,
	}
	for _, r := range rows {
		table.Rows = append(table.Rows, []string{
			r.SaleNumber,
			r.SaleDate.Format("02/01/2006"),
			r.CustomerName,
			r.Description,
			money.FormatBRL(r.TotalWithInterest),
			strconv.Itoa(r.InstallmentCount),
			r.Status,
		})
	}
	return table, nil
}

func (s *Service) paymentsReport(ctx context.Context, period Period, now time.Time, scope ReportScope) (*ReportTable, error) {
	start, end, err := period.Range(now)
	if err != nil {
		return nil, err
	}
	rows, err := s.repo.PaymentsReport(ctx, start, end, scope)
	if err != nil {
		return nil, fmt.Errorf("failed to build payments report: %w", err)
	}

	table := &ReportTable{
		Title:     "Relatório de Recebimentos",
		Period:    period,
		Columns:   []string{"Data", "Venda", "Cliente", "Valor", "Forma", "Recebido por"},
		Generated: now,
	}
	for _, r := range rows {
		table.Rows = append(table.Rows, []string{
			r.PaymentDate.Format("02/01/2006"),
			r.SaleNumber,
			r.CustomerName,
			money.FormatBRL(r.Amount),
			r.PaymentMethod,
			r.ReceivedBy,
		})
	}
	return table, nil
}

func (s *Service) overdueReport(ctx context.Context, now time.Time, scope ReportScope) (*ReportTable, error) {
	rows, err := s.repo.OverdueReport(ctx, now, scope)
	if err != nil {
		return nil, fmt.Errorf("failed to build overdue report: %w", err)
	}

	table := &ReportTable{
		Title:     "Relatório de Inadimplência",
		Columns:   []string{"Cliente", "Telefone", "Venda", "Parcela", "Vencimento", "Em aberto", "Dias em atraso"},
		Generated: now,
	}
	for _, r := range rows {
		daysLate := int(ledger.DateOnly(now).Sub(ledger.DateOnly(r.DueDate)).Hours() / 24)
		table.Rows = append(table.Rows, []string{
			r.CustomerName,
			r.CustomerPhone,
			r.SaleNumber,
			strconv.Itoa(r.Number),
			r.DueDate.Format("02/01/2006"),
			money.FormatBRL(r.Remaining),
			strconv.Itoa(daysLate),
		})
	}
	return table, nil
}

func (s *Service) customersReport(ctx context.Context, scope ReportScope) (*ReportTable, error) {
	rows, err := s.repo.CustomersReport(ctx, scope)
	if err != nil {
		return nil, fmt.Errorf("failed to build customers report: %w", err)
	}

	table := &ReportTable{
		Title:     "Relatório de Clientes",
		Columns:   []string{"Nome", "Telefone", "Cidade", "Limite", "Dívida atual", "Ativo"},
		Generated: s.now(),
	}
	for _, r := range rows {
		active := "sim"
		if !r.Active {
			active = "não"
		}
		table.Rows = append(table.Rows, []string{
			r.FullName,
			r.Phone,
			r.City,
			money.FormatBRL(r.CreditLimit),
			money.FormatBRL(r.CurrentDebt),
			active,
		})
	}
	return table, nil
}

func (s *Service) scopeFor(actor auth.Identity) ReportScope {
	if auth.HasPermission(actor.Role, auth.RoleLoja) {
		return ReportScope{}
	}
	id := actor.UserID
	return ReportScope{UserID: &id}
}
