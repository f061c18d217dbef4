package reports

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Period names a reporting window relative to the current date.
type Period string

const (
	PeriodCurrentMonth   Period = "current_month"
	PeriodLastMonth      Period = "last_month"
	PeriodCurrentQuarter Period = "current_quarter"
	PeriodCurrentYear    Period = "current_year"
	PeriodLastYear       Period = "last_year"
)

var ErrUnknownPeriod = errors.New("unknown report period")

// Range resolves the period to a half-open [start, end) window.
func (p Period) Range(now time.Time) (start, end time.Time, err error) {
	year, month, _ := now.Date()
	loc := now.Location()

	switch p {
	case PeriodCurrentMonth:
		start = time.Date(year, month, 1, 0, 0, 0, 0, loc)
		end = start.AddDate(0, 1, 0)
	case PeriodLastMonth:
		end = time.Date(year, month, 1, 0, 0, 0, 0, loc)
		start = end.AddDate(0, -1, 0)
	case PeriodCurrentQuarter:
		qStart := month - (month-1)%3
		start = time.Date(year, qStart, 1, 0, 0, 0, 0, loc)
		end = start.AddDate(0, 3, 0)
	case PeriodCurrentYear:
		start = time.Date(year, 1, 1, 0, 0, 0, 0, loc)
		end = start.AddDate(1, 0, 0)
	case PeriodLastYear:
		end = time.Date(year, 1, 1, 0, 0, 0, 0, loc)
		start = end.AddDate(-1, 0, 0)
	default:
		return time.Time{}, time.Time{}, ErrUnknownPeriod
	}
	return start, end, nil
}

// ReportType names one of the exportable reports.
type ReportType string

const (
	ReportSales     ReportType = "sales"
	ReportPayments  ReportType = "payments"
	ReportOverdue   ReportType = "overdue"
	ReportCustomers ReportType = "customers"
)

var ErrUnknownReport = errors.New("unknown report type")

// ReportTable is the rendered form of a report, ready for JSON or export.
type ReportTable struct {
	Title     string     `json:"title"`
	Period    Period     `json:"period,omitempty"`
	Columns   []string   `json:"columns"`
	Rows      [][]string `json:"rows"`
	Generated time.Time  `json:"generated_at"`
}

// SalesReportRow is one sale in the sales report window.
type SalesReportRow struct {
	SaleNumber        string          `db:"sale_number"`
	SaleDate          time.Time       `db:"sale_date"`
	CustomerName      string          `db:"customer_name"`
	Description       string          `db:"description"`
	TotalWithInterest decimal.Decimal `db:"total_with_interest"`
	InstallmentCount  int             `db:"installment_count"`
	Status            string          `db:"status"`
}

// PaymentsReportRow is one received payment in the window.
type PaymentsReportRow struct {
	PaymentDate   time.Time       `db:"payment_date"`
	SaleNumber    string          `db:"sale_number"`
	CustomerName  string          `db:"customer_name"`
	Amount        decimal.Decimal `db:"amount"`
	PaymentMethod string          `db:"payment_method"`
	ReceivedBy    string          `db:"received_by"`
}

// OverdueReportRow is one late installment with its open exposure.
type OverdueReportRow struct {
	CustomerName  string          `db:"customer_name"`
	CustomerPhone string          `db:"customer_phone"`
	SaleNumber    string          `db:"sale_number"`
	Number        int             `db:"installment_number"`
	DueDate       time.Time       `db:"due_date"`
	Remaining     decimal.Decimal `db:"remaining"`
}

// CustomersReportRow is one customer with their exposure snapshot.
type CustomersReportRow struct {
	FullName    string          `db:"full_name"`
	Phone       string          `db:"phone"`
	City        string          `db:"city"`
	CreditLimit decimal.Decimal `db:"credit_limit"`
	CurrentDebt decimal.Decimal `db:"current_debt"`
	Active      bool            `db:"active"`
}

// Dashboard is the home-screen aggregate snapshot for the acting user.
type Dashboard struct {
	TotalSales      int             `json:"total_sales"`
	SalesValue      decimal.Decimal `json:"sales_value"`
	ReceivedValue   decimal.Decimal `json:"received_value"`
	PendingValue    decimal.Decimal `json:"pending_value"`
	OverdueCount    int             `json:"overdue_count"`
	OverdueValue    decimal.Decimal `json:"overdue_value"`
	ActiveCustomers int             `json:"active_customers"`
}

// ReportScope narrows report queries to the acting user when set.
type ReportScope struct {
	UserID *uuid.UUID
}
