package aging

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmeshcher/piutang-system/internal/model"
)

var refDate = time.Date(2025, 3, 15, 10, 0, 0, 0, time.UTC)

func daysAgo(n int) time.Time {
	return refDate.AddDate(0, 0, -n)
}

func invoice(id int64, value int64, status model.PaymentStatus, due time.Time, payments ...int64) model.Invoice {
	inv := model.Invoice{
		ID:            id,
		Value:         value,
		PaymentStatus: status,
		DueDate:       due,
	}
	for i, amount := range payments {
		inv.Payments = append(inv.Payments, model.Payment{ID: int64(i + 1), InvoiceID: id, Amount: amount})
	}
	return inv
}

func TestDetermineQuality_Boundaries(t *testing.T) {
	tests := []struct {
		days int
		want Quality
	}{
		{-30, QualityCurrent},
		{-1, QualityCurrent},
		{0, QualitySpecialMention},
		{30, QualitySpecialMention},
		{31, QualitySubstandard},
		{60, QualitySubstandard},
		{61, QualityDoubtful},
		{90, QualityDoubtful},
		{91, QualityBadDebt},
		{1000, QualityBadDebt},
	}

	for _, tt := range tests {
		got := DetermineQuality(tt.days)
		assert.Equal(t, tt.want, got, "days=%d", tt.days)
	}
}

func TestQualityMetadata(t *testing.T) {
	tests := []struct {
		quality Quality
		label   string
		risk    RiskLevel
		color   string
	}{
		{QualityPaid, "Sudah Lunas (N/A)", RiskLow, "bg-blue-100 text-blue-800 border-blue-200"},
		{QualityCurrent, "Belum Jatuh Tempo", RiskLow, "bg-green-100 text-green-800 border-green-200"},
		{QualitySpecialMention, "Dalam Perhatian Khusus", RiskMedium, "bg-yellow-100 text-yellow-800 border-yellow-200"},
		{QualitySubstandard, "Kurang Lancar", RiskHigh, "bg-orange-100 text-orange-800 border-orange-200"},
		{QualityDoubtful, "Diragukan", RiskCritical, "bg-red-100 text-red-800 border-red-200"},
		{QualityBadDebt, "Macet", RiskCritical, "bg-gray-100 text-gray-800 border-gray-200"},
		{Quality("BOGUS"), "Unknown", RiskLow, "bg-gray-100 text-gray-800 border-gray-200"},
	}

	for _, tt := range tests {
		t.Run(string(tt.quality), func(t *testing.T) {
			assert.Equal(t, tt.label, tt.quality.Label())
			assert.Equal(t, tt.risk, tt.quality.Risk())
			assert.Equal(t, tt.color, tt.quality.ColorClass())
		})
	}
}

func TestClassify_SettledOverridesDays(t *testing.T) {
	a := Classify(500, true)
	assert.Equal(t, QualityPaid, a.Quality)
	assert.Equal(t, 0, a.DaysOverdue)
	assert.Equal(t, RiskLow, a.RiskLevel)
	assert.Equal(t, "Sudah Lunas (N/A)", a.QualityLabel)
}

func TestDaysOverdue_FloorsPartialDays(t *testing.T) {
	due := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, 5, DaysOverdue(due, time.Date(2025, 3, 15, 23, 59, 0, 0, time.UTC)))
	assert.Equal(t, 0, DaysOverdue(due, due))
	assert.Equal(t, -1, DaysOverdue(due, due.Add(-time.Hour)))
	assert.Equal(t, -1, DaysOverdue(due, due.Add(-24*time.Hour)))
	assert.Equal(t, -2, DaysOverdue(due, due.Add(-25*time.Hour)))
}

func TestRemainingBalance(t *testing.T) {
	inv := invoice(1, 1_000_000, model.PaymentStatusPartial, refDate, 250_000, 100_000)
	first := RemainingBalance(inv)
	assert.Equal(t, int64(650_000), first)
	assert.Equal(t, first, RemainingBalance(inv))

	inv.Payments = append(inv.Payments, model.Payment{Amount: 0})
	assert.Equal(t, first, RemainingBalance(inv))

	assert.Equal(t, int64(300), RemainingBalance(model.Invoice{Value: 300}))
	assert.Equal(t, int64(-50_000), RemainingBalance(invoice(2, 200_000, model.PaymentStatusPartial, refDate, 250_000)))
}

func TestAnalyze_PaidInvoiceIgnoresDueDate(t *testing.T) {
	for _, due := range []time.Time{daysAgo(200), daysAgo(-200)} {
		a := Analyze(invoice(1, 500_000, model.PaymentStatusPaid, due, 500_000), refDate)
		assert.Equal(t, QualityPaid, a.Quality)
		assert.Equal(t, 0, a.DaysOverdue)
	}
}

func TestAnalyze_UnknownStatusClassifiedByAge(t *testing.T) {
	a := Analyze(invoice(1, 100, model.PaymentStatus("DIBATALKAN"), daysAgo(45)), refDate)
	assert.Equal(t, QualitySubstandard, a.Quality)
	assert.Equal(t, 45, a.DaysOverdue)
}

func TestAnalyze_NonPaidWithCoveredBalanceStillAged(t *testing.T) {
	a := Analyze(invoice(1, 100, model.PaymentStatusPartial, daysAgo(10), 100), refDate)
	assert.Equal(t, QualitySpecialMention, a.Quality)
	assert.Equal(t, 10, a.DaysOverdue)
}

func TestSummarize_ScenarioA(t *testing.T) {
	invoices := []model.Invoice{invoice(1, 1_000_000, model.PaymentStatusUnpaid, daysAgo(40))}

	assert.Equal(t, int64(1_000_000), RemainingBalance(invoices[0]))
	assert.Equal(t, QualitySubstandard, Analyze(invoices[0], refDate).Quality)

	s := Summarize(invoices, refDate)
	assert.Equal(t, Tier{Count: 1, Amount: 1_000_000}, s.Substandard)
	assert.Equal(t, Tier{}, s.Current)
	assert.Equal(t, Tier{}, s.SpecialMention)
	assert.Equal(t, Tier{}, s.Doubtful)
	assert.Equal(t, Tier{}, s.BadDebt)
	assert.Equal(t, Tier{Count: 1, Amount: 1_000_000}, s.Total)
}

func TestSummarize_ScenarioB_PaidExcluded(t *testing.T) {
	paid := invoice(1, 500_000, model.PaymentStatusPaid, daysAgo(200), 500_000)
	ancient := invoice(2, 700_000, model.PaymentStatusPaid, daysAgo(1000))

	s := Summarize([]model.Invoice{paid, ancient}, refDate)
	assert.Equal(t, Summary{}, s)
	for _, b := range Buckets([]model.Invoice{paid, ancient}, refDate) {
		assert.Zero(t, b.Count)
		assert.Zero(t, b.Amount)
	}

	a := Analyze(paid, refDate)
	assert.Equal(t, QualityPaid, a.Quality)
	assert.Equal(t, 0, a.DaysOverdue)
}

func TestSummarize_ScenarioD_OverpaidExcluded(t *testing.T) {
	inv := invoice(1, 200_000, model.PaymentStatusPartial, daysAgo(10), 150_000, 100_000)
	assert.Equal(t, int64(-50_000), RemainingBalance(inv))

	s := Summarize([]model.Invoice{inv}, refDate)
	assert.Equal(t, Tier{}, s.SpecialMention)
	assert.Equal(t, Tier{}, s.Total)
}

func TestSummarize_PartialPaymentsReduceAmount(t *testing.T) {
	invoices := []model.Invoice{
		invoice(1, 1_000, model.PaymentStatusPartial, daysAgo(5), 400),
		invoice(2, 2_000, model.PaymentStatusUnpaid, daysAgo(-5)),
		invoice(3, 3_000, model.PaymentStatusUnpaid, daysAgo(75)),
		invoice(4, 4_000, model.PaymentStatusUnpaid, daysAgo(120)),
		invoice(5, 5_000, model.PaymentStatus("UNKNOWN"), daysAgo(120)),
	}

	s := Summarize(invoices, refDate)
	assert.Equal(t, Tier{Count: 1, Amount: 600}, s.SpecialMention)
	assert.Equal(t, Tier{Count: 1, Amount: 2_000}, s.Current)
	assert.Equal(t, Tier{Count: 1, Amount: 3_000}, s.Doubtful)
	assert.Equal(t, Tier{Count: 1, Amount: 4_000}, s.BadDebt)
	assert.Equal(t, Tier{Count: 4, Amount: 9_600}, s.Total)
}

func TestSummaryAndBucketsInvariants(t *testing.T) {
	var invoices []model.Invoice
	statuses := []model.PaymentStatus{model.PaymentStatusUnpaid, model.PaymentStatusPartial, model.PaymentStatusPaid}
	for i := 0; i < 60; i++ {
		status := statuses[i%len(statuses)]
		value := int64(1_000 * (i + 1))
		var payments []int64
		if i%4 == 0 {
			payments = append(payments, value/2)
		}
		if i%7 == 0 {
			payments = append(payments, value)
		}
		invoices = append(invoices, invoice(int64(i+1), value, status, daysAgo(i*3-20), payments...))
	}

	s := Summarize(invoices, refDate)
	buckets := Buckets(invoices, refDate)

	var sum Tier
	for _, q := range Tiers {
		sum = sum.add(s.Tier(q))
	}
	assert.Equal(t, s.Total, sum)

	require.Len(t, buckets, len(Tiers))
	for i, q := range Tiers {
		assert.Equal(t, q, buckets[i].Quality)
		assert.Equal(t, s.Tier(q).Count, buckets[i].Count)
		assert.Equal(t, s.Tier(q).Amount, buckets[i].Amount)
	}
}

func TestBuckets_EmptyInputHasFixedOrder(t *testing.T) {
	buckets := Buckets(nil, refDate)
	require.Len(t, buckets, 5)

	labels := []string{"Belum Jatuh Tempo", "1-30 hari", "31-60 hari", "61-90 hari", "> 90 hari"}
	for i, b := range buckets {
		assert.Equal(t, Tiers[i], b.Quality)
		assert.Equal(t, labels[i], b.Label)
		assert.Zero(t, b.Count)
		assert.Zero(t, b.Amount)
	}
}

func TestTally_IgnoresPaidQuality(t *testing.T) {
	tally := Tally{QualityPaid: {Count: 3, Amount: 300}, QualityCurrent: {Count: 1, Amount: 10}}

	s := tally.Summary()
	assert.Equal(t, Tier{Count: 1, Amount: 10}, s.Total)
	assert.Len(t, tally.Buckets(), 5)
	assert.Equal(t, Tier{}, s.Tier(QualityPaid))
}

func TestPercentage(t *testing.T) {
	assert.Equal(t, 25.0, Percentage(100, 400))
	assert.Equal(t, 75.0, Percentage(300, 400))
	assert.Equal(t, 0.0, Percentage(100, 0))
	assert.Equal(t, 0.0, Percentage(0, 0))
	assert.InDelta(t, 33.3333, Percentage(1, 3), 0.0001)
}

func TestComposeAnalytics_ScenarioC(t *testing.T) {
	invoices := []model.Invoice{
		invoice(1, 100, model.PaymentStatusUnpaid, daysAgo(-10)),
		invoice(2, 300, model.PaymentStatusUnpaid, daysAgo(120)),
	}
	s := Summarize(invoices, refDate)
	require.Equal(t, int64(400), s.Total.Amount)

	report := ComposeAnalytics(s, Buckets(invoices, refDate), s.Total.Amount)

	assert.Equal(t, 2, report.TotalInvoices)
	assert.Equal(t, int64(400), report.OutstandingAmount)
	assert.Equal(t, 25.0, report.AgingSummary.Current.Percentage)
	assert.Equal(t, 75.0, report.AgingSummary.BadDebt.Percentage)
	assert.Equal(t, 0.0, report.AgingSummary.SpecialMention.Percentage)
	assert.Equal(t, 0.0, report.AgingSummary.Substandard.Percentage)
	assert.Equal(t, 0.0, report.AgingSummary.Doubtful.Percentage)

	require.Len(t, report.QualityDistribution, 5)
	assert.Equal(t, 25.0, report.QualityDistribution[0].Percentage)
	assert.Equal(t, 75.0, report.QualityDistribution[4].Percentage)
	assert.Equal(t, "bg-green-100 text-green-800 border-green-200", report.QualityDistribution[0].ColorClass)
}

func TestComposeDetailed_RiskRollUp(t *testing.T) {
	invoices := []model.Invoice{
		invoice(1, 100, model.PaymentStatusUnpaid, daysAgo(-1)),
		invoice(2, 200, model.PaymentStatusUnpaid, daysAgo(15)),
		invoice(3, 300, model.PaymentStatusUnpaid, daysAgo(45)),
		invoice(4, 400, model.PaymentStatusUnpaid, daysAgo(75)),
		invoice(5, 500, model.PaymentStatusUnpaid, daysAgo(95)),
	}
	s := Summarize(invoices, refDate)
	report := ComposeDetailed(s, Buckets(invoices, refDate), s.Total.Amount)

	assert.Equal(t, 5, report.TotalCount)
	assert.Equal(t, int64(1_500), report.TotalOutstanding)
	assert.Equal(t, Tier{Count: 1, Amount: 100}, report.RiskAnalysis.LowRisk)
	assert.Equal(t, Tier{Count: 1, Amount: 200}, report.RiskAnalysis.MediumRisk)
	assert.Equal(t, Tier{Count: 1, Amount: 300}, report.RiskAnalysis.HighRisk)
	assert.Equal(t, Tier{Count: 2, Amount: 900}, report.RiskAnalysis.CriticalRisk)

	ranges := []string{"< 0 hari", "1-30 hari", "31-60 hari", "61-90 hari", "> 90 hari"}
	require.Len(t, report.Buckets, 5)
	for i, b := range report.Buckets {
		assert.Equal(t, ranges[i], b.DaysRange)
	}
	assert.InDelta(t, 20.0, report.Buckets[2].Percentage, 1e-9)
}

func TestCompose_ZeroOutstandingHasNoNaN(t *testing.T) {
	s := Summarize(nil, refDate)
	buckets := Buckets(nil, refDate)

	analytics := ComposeAnalytics(s, buckets, 0)
	for _, share := range []TierShare{
		analytics.AgingSummary.Current,
		analytics.AgingSummary.SpecialMention,
		analytics.AgingSummary.Substandard,
		analytics.AgingSummary.Doubtful,
		analytics.AgingSummary.BadDebt,
	} {
		assert.Equal(t, 0.0, share.Percentage)
	}
	for _, q := range analytics.QualityDistribution {
		assert.False(t, math.IsNaN(q.Percentage))
		assert.Equal(t, 0.0, q.Percentage)
	}

	detailed := ComposeDetailed(s, buckets, 0)
	for _, b := range detailed.Buckets {
		assert.Equal(t, 0.0, b.Percentage)
	}
}

func TestStatusFromLedger(t *testing.T) {
	assert.Equal(t, model.PaymentStatusUnpaid, StatusFromLedger(1_000, 0))
	assert.Equal(t, model.PaymentStatusPartial, StatusFromLedger(1_000, 1))
	assert.Equal(t, model.PaymentStatusPaid, StatusFromLedger(1_000, 1_000))
	assert.Equal(t, model.PaymentStatusPaid, StatusFromLedger(1_000, 1_500))
	assert.Equal(t, model.PaymentStatusPaid, StatusFromLedger(0, 0))
}
