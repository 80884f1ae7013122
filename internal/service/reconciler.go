package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/mmeshcher/piutang-system/internal/aging"
	"github.com/mmeshcher/piutang-system/internal/model"
)

// StatusDrift описывает счёт, сохранённый статус которого расходится с суммой оплат.
type StatusDrift struct {
	InvoiceID int64
	Number    string
	Stored    model.PaymentStatus
	Expected  model.PaymentStatus
}

// StartStatusReconciler запускает фоновую сверку статусов оплаты и обновление
// метрик задолженности. Блокируется до отмены ctx. При interval <= 0 сверка не запускается.
func (s *Service) StartStatusReconciler(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.Reconcile(ctx); err != nil && ctx.Err() == nil {
				s.logger.Error("status reconciliation failed", zap.Error(err))
			}
		}
	}
}

// Reconcile сравнивает сохранённые статусы оплаты с суммами оплат, логирует
// расхождения и обновляет метрики. Статусы не изменяются.
func (s *Service) Reconcile(ctx context.Context) (drifts []StatusDrift, err error) {
	defer func() { s.metrics.ReconcileDone(err) }()

	ledgers, err := s.repo.ListInvoiceLedgers(ctx)
	if err != nil {
		return nil, fmt.Errorf("load ledgers: %w", err)
	}

	for _, l := range ledgers {
		expected := aging.StatusFromLedger(l.Value, l.Paid)
		if expected == l.PaymentStatus {
			continue
		}
		drifts = append(drifts, StatusDrift{
			InvoiceID: l.InvoiceID,
			Number:    l.Number,
			Stored:    l.PaymentStatus,
			Expected:  expected,
		})
		s.logger.Warn("invoice payment status drift",
			zap.Int64("invoiceID", l.InvoiceID),
			zap.String("noInvoice", l.Number),
			zap.String("stored", string(l.PaymentStatus)),
			zap.String("expected", string(expected)),
			zap.Int64("value", l.Value),
			zap.Int64("paid", l.Paid),
		)
	}
	s.metrics.SetStatusDrift(len(drifts))

	invoices, err := s.outstandingInvoices(ctx, 0)
	if err != nil {
		return drifts, fmt.Errorf("load outstanding invoices: %w", err)
	}
	summary := aging.Summarize(invoices, s.now())
	for _, q := range aging.Tiers {
		t := summary.Tier(q)
		s.metrics.SetOutstanding(string(q), t.Count, t.Amount)
	}

	return drifts, nil
}
