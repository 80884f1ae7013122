package service

import (
	"context"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/mmeshcher/piutang-system/internal/aging"
	"github.com/mmeshcher/piutang-system/internal/model"
)

// AgingQuery задаёт параметры отчёта о задолженности. CustomerID == 0 означает всех клиентов.
// Кэшируются только отчёты с явно заданной датой (Dated). Отчёт на текущий момент
// строится при каждом запросе.
type AgingQuery struct {
	CustomerID    int64
	ReferenceDate time.Time
	Dated         bool
}

func (q AgingQuery) customerToken() string {
	if q.CustomerID <= 0 {
		return "all"
	}
	return strconv.FormatInt(q.CustomerID, 10)
}

// Dashboard содержит данные главной страницы.
type Dashboard struct {
	TotalCustomers int                   `json:"totalCustomers"`
	TotalInvoices  int                   `json:"totalInvoices"`
	TotalPayments  int                   `json:"totalPayments"`
	Analytics      aging.AnalyticsReport `json:"analytics"`
}

func (s *Service) outstandingInvoices(ctx context.Context, customerID int64) ([]model.Invoice, error) {
	invoices, _, err := s.repo.ListInvoices(ctx, model.InvoiceFilter{
		CustomerID:     customerID,
		Statuses:       []model.PaymentStatus{model.PaymentStatusUnpaid, model.PaymentStatusPartial},
		OrderByDueDate: true,
	})
	return invoices, err
}

func (s *Service) cached(ctx context.Context, kind aging.ReportType, q AgingQuery, dest any, build func([]model.Invoice) any) error {
	var key string
	if q.Dated {
		k, err := s.cache.ReportKey(ctx, string(kind), q.customerToken(), q.ReferenceDate.UTC().Format(time.RFC3339))
		if err != nil {
			s.logger.Warn("report cache unavailable", zap.String("report", string(kind)), zap.Error(err))
		} else {
			key = k
		}
	}
	return s.cache.FetchJSON(ctx, key, dest, func(ctx context.Context) (any, error) {
		invoices, err := s.outstandingInvoices(ctx, q.CustomerID)
		if err != nil {
			return nil, err
		}
		return build(invoices), nil
	})
}

// AgingSummary возвращает сводку задолженности по категориям качества.
func (s *Service) AgingSummary(ctx context.Context, q AgingQuery) (*aging.SummaryReport, error) {
	var report aging.SummaryReport
	err := s.cached(ctx, aging.ReportSummary, q, &report, func(invoices []model.Invoice) any {
		return aging.ComposeSummary(aging.Summarize(invoices, q.ReferenceDate), q.ReferenceDate)
	})
	if err != nil {
		return nil, err
	}
	return &report, nil
}

func buildAnalytics(invoices []model.Invoice, referenceDate time.Time) aging.AnalyticsReport {
	tally := aging.Accumulate(invoices, referenceDate)
	summary := tally.Summary()
	report := aging.ComposeAnalytics(summary, tally.Buckets(), summary.Total.Amount)
	report.PaidAmount = aging.PaidAmount(invoices)
	return report
}

// AgingAnalytics возвращает отчёт для панели аналитики.
func (s *Service) AgingAnalytics(ctx context.Context, q AgingQuery) (*aging.AnalyticsReport, error) {
	var report aging.AnalyticsReport
	err := s.cached(ctx, aging.ReportAnalytics, q, &report, func(invoices []model.Invoice) any {
		return buildAnalytics(invoices, q.ReferenceDate)
	})
	if err != nil {
		return nil, err
	}
	return &report, nil
}

// AgingDetailed возвращает подробный отчёт с разбивкой по уровням риска.
func (s *Service) AgingDetailed(ctx context.Context, q AgingQuery) (*aging.DetailedReport, error) {
	var report aging.DetailedReport
	err := s.cached(ctx, aging.ReportDetailed, q, &report, func(invoices []model.Invoice) any {
		tally := aging.Accumulate(invoices, q.ReferenceDate)
		summary := tally.Summary()
		detailed := aging.ComposeDetailed(summary, tally.Buckets(), summary.Total.Amount)
		detailed.ReportDate = q.ReferenceDate
		return detailed
	})
	if err != nil {
		return nil, err
	}
	return &report, nil
}

// AgingList возвращает неоплаченные счета с анализом срока задолженности,
// упорядоченные по сроку оплаты.
func (s *Service) AgingList(ctx context.Context, q AgingQuery) ([]aging.AgedInvoice, error) {
	var list []aging.AgedInvoice
	err := s.cached(ctx, aging.ReportList, q, &list, func(invoices []model.Invoice) any {
		return aging.AgeInvoices(invoices, q.ReferenceDate)
	})
	if err != nil {
		return nil, err
	}
	return list, nil
}

// Dashboard возвращает количество сущностей и аналитику задолженности на дату referenceDate.
func (s *Service) Dashboard(ctx context.Context, referenceDate time.Time) (*Dashboard, error) {
	customers, invoices, payments, err := s.repo.CountEntities(ctx)
	if err != nil {
		return nil, err
	}

	analytics, err := s.AgingAnalytics(ctx, AgingQuery{ReferenceDate: referenceDate})
	if err != nil {
		return nil, err
	}

	return &Dashboard{
		TotalCustomers: customers,
		TotalInvoices:  invoices,
		TotalPayments:  payments,
		Analytics:      *analytics,
	}, nil
}
