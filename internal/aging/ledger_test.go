package aging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmeshcher/piutang-system/internal/model"
)

func TestView(t *testing.T) {
	tests := []struct {
		name          string
		inv           model.Invoice
		wantRemaining int64
		wantFullyPaid bool
		wantOverdue   bool
	}{
		{
			name:          "overdue unpaid",
			inv:           invoice(1, 1_000, model.PaymentStatusUnpaid, daysAgo(5)),
			wantRemaining: 1_000,
			wantOverdue:   true,
		},
		{
			name:          "not yet due",
			inv:           invoice(2, 1_000, model.PaymentStatusPartial, daysAgo(-5), 400),
			wantRemaining: 600,
		},
		{
			name:          "covered by payments is never overdue",
			inv:           invoice(3, 1_000, model.PaymentStatusPartial, daysAgo(50), 600, 400),
			wantRemaining: 0,
			wantFullyPaid: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := View(tt.inv, refDate)
			assert.Equal(t, tt.wantRemaining, v.RemainingBalance)
			assert.Equal(t, tt.inv.Value-tt.wantRemaining, v.TotalPayments)
			assert.Equal(t, tt.wantFullyPaid, v.IsFullyPaid)
			assert.Equal(t, tt.wantOverdue, v.IsOverdue)
		})
	}
}

func TestAgeInvoices_SkipsSettledAndCovered(t *testing.T) {
	invoices := []model.Invoice{
		invoice(1, 1_000_000, model.PaymentStatusUnpaid, daysAgo(40)),
		invoice(2, 500_000, model.PaymentStatusPaid, daysAgo(200), 500_000),
		invoice(3, 200_000, model.PaymentStatusPartial, daysAgo(10), 250_000),
		invoice(4, 300_000, model.PaymentStatusPartial, daysAgo(-3), 100_000),
	}

	aged := AgeInvoices(invoices, refDate)

	require.Len(t, aged, 2)
	assert.Equal(t, int64(1), aged[0].ID)
	assert.Equal(t, QualitySubstandard, aged[0].AgingAnalysis.Quality)
	assert.Equal(t, int64(1_000_000), aged[0].RemainingBalance)

	assert.Equal(t, int64(4), aged[1].ID)
	assert.Equal(t, QualityCurrent, aged[1].AgingAnalysis.Quality)
	assert.Equal(t, int64(100_000), aged[1].TotalPayments)
	assert.Equal(t, int64(200_000), aged[1].RemainingBalance)
}

func TestPaidAmount_CountsContributingInvoicesOnly(t *testing.T) {
	invoices := []model.Invoice{
		invoice(1, 1_000, model.PaymentStatusPartial, daysAgo(5), 300),
		invoice(2, 1_000, model.PaymentStatusPaid, daysAgo(5), 1_000),
		invoice(3, 1_000, model.PaymentStatusPartial, daysAgo(5), 1_200),
		invoice(4, 1_000, model.PaymentStatusUnpaid, daysAgo(5)),
	}

	assert.Equal(t, int64(300), PaidAmount(invoices))
}
