package aging

import (
	"time"

	"github.com/mmeshcher/piutang-system/internal/model"
)

const millisPerDay = int64(24 * time.Hour / time.Millisecond)

// Analysis содержит результат анализа срока задолженности по одному счёту.
type Analysis struct {
	DaysOverdue  int       `json:"daysOverdue"`
	Quality      Quality   `json:"quality"`
	QualityLabel string    `json:"qualityLabel"`
	RiskLevel    RiskLevel `json:"riskLevel"`
	ColorClass   string    `json:"colorClass"`
}

// TotalPayments возвращает сумму всех оплат по счёту.
func TotalPayments(inv model.Invoice) int64 {
	var sum int64
	for _, p := range inv.Payments {
		sum += p.Amount
	}
	return sum
}

// RemainingBalance возвращает остаток задолженности по счёту. Результат может
// быть нулевым или отрицательным, если оплаты покрывают или превышают сумму счёта.
func RemainingBalance(inv model.Invoice) int64 {
	return inv.Value - TotalPayments(inv)
}

// DaysOverdue возвращает количество полных дней между сроком оплаты и датой
// отчёта с округлением вниз. До наступления срока значение отрицательное.
func DaysOverdue(dueDate, referenceDate time.Time) int {
	diff := referenceDate.UnixMilli() - dueDate.UnixMilli()
	days := diff / millisPerDay
	if diff%millisPerDay != 0 && diff < 0 {
		days--
	}
	return int(days)
}

// Analyze классифицирует счёт на дату отчёта. Погашенным считается только
// счёт со статусом LUNAS, вычисленный остаток на это не влияет.
func Analyze(inv model.Invoice, referenceDate time.Time) Analysis {
	if inv.PaymentStatus == model.PaymentStatusPaid {
		return Classify(0, true)
	}
	return Classify(DaysOverdue(inv.DueDate, referenceDate), false)
}

// StatusFromLedger вычисляет статус оплаты по сумме счёта и сумме поступлений.
func StatusFromLedger(value, paid int64) model.PaymentStatus {
	switch {
	case value-paid <= 0:
		return model.PaymentStatusPaid
	case paid > 0:
		return model.PaymentStatusPartial
	default:
		return model.PaymentStatusUnpaid
	}
}
