package aging

import (
	"time"

	"github.com/mmeshcher/piutang-system/internal/model"
)

// LedgerView дополняет счёт расчётными суммами оплат и признаками погашения.
type LedgerView struct {
	model.Invoice
	TotalPayments    int64 `json:"totalPayments"`
	RemainingBalance int64 `json:"remainingBalance"`
	IsFullyPaid      bool  `json:"isFullyPaid"`
	IsOverdue        bool  `json:"isOverdue"`
}

// View строит LedgerView на дату отчёта. Счёт просрочен, если срок оплаты
// прошёл, а остаток положителен.
func View(inv model.Invoice, referenceDate time.Time) LedgerView {
	paid := TotalPayments(inv)
	remaining := inv.Value - paid
	fullyPaid := remaining <= 0
	return LedgerView{
		Invoice:          inv,
		TotalPayments:    paid,
		RemainingBalance: remaining,
		IsFullyPaid:      fullyPaid,
		IsOverdue:        referenceDate.After(inv.DueDate) && !fullyPaid,
	}
}

// AgedInvoice содержит счёт с результатом анализа срока задолженности.
type AgedInvoice struct {
	model.Invoice
	AgingAnalysis    Analysis `json:"agingAnalysis"`
	TotalPayments    int64    `json:"totalPayments"`
	RemainingBalance int64    `json:"remainingBalance"`
}

// AgeInvoices возвращает неоплаченные счета с положительным остатком вместе с их анализом.
// Порядок входного списка сохраняется.
func AgeInvoices(invoices []model.Invoice, referenceDate time.Time) []AgedInvoice {
	res := make([]AgedInvoice, 0, len(invoices))
	for _, inv := range invoices {
		if !inv.PaymentStatus.IsOutstanding() {
			continue
		}
		paid := TotalPayments(inv)
		remaining := inv.Value - paid
		if remaining <= 0 {
			continue
		}
		res = append(res, AgedInvoice{
			Invoice:          inv,
			AgingAnalysis:    Analyze(inv, referenceDate),
			TotalPayments:    paid,
			RemainingBalance: remaining,
		})
	}
	return res
}

// PaidAmount возвращает сумму оплат по неоплаченным счетам с положительным остатком.
func PaidAmount(invoices []model.Invoice) int64 {
	var sum int64
	for _, inv := range invoices {
		if !inv.PaymentStatus.IsOutstanding() || RemainingBalance(inv) <= 0 {
			continue
		}
		sum += TotalPayments(inv)
	}
	return sum
}
