package aging

import (
	"time"

	"github.com/shopspring/decimal"
)

// ReportType определяет форму отчёта о задолженности.
type ReportType string

const (
	ReportSummary   ReportType = "summary"
	ReportAnalytics ReportType = "analytics"
	ReportDetailed  ReportType = "detailed"
	ReportList      ReportType = "list"
)

var hundred = decimal.NewFromInt(100)

// Percentage возвращает долю amount от total в процентах. При total <= 0 возвращается 0.
func Percentage(amount, total int64) float64 {
	if total <= 0 {
		return 0
	}
	p, _ := decimal.NewFromInt(amount).Mul(hundred).Div(decimal.NewFromInt(total)).Float64()
	return p
}

// SummaryReport содержит сводку задолженности на дату отчёта.
type SummaryReport struct {
	ReportDate time.Time `json:"reportDate"`
	Summary    Summary   `json:"summary"`
}

// TierShare содержит данные категории и её долю от общей задолженности.
type TierShare struct {
	Count      int     `json:"count"`
	Amount     int64   `json:"amount"`
	Percentage float64 `json:"percentage"`
}

// AnalyticsSummary содержит доли всех категорий для панели аналитики.
type AnalyticsSummary struct {
	Current        TierShare `json:"current"`
	SpecialMention TierShare `json:"specialMention"`
	Substandard    TierShare `json:"substandard"`
	Doubtful       TierShare `json:"doubtful"`
	BadDebt        TierShare `json:"badDebt"`
}

// QualityShare описывает элемент распределения задолженности по качеству.
type QualityShare struct {
	Quality    Quality `json:"quality"`
	Label      string  `json:"label"`
	Count      int     `json:"count"`
	Amount     int64   `json:"amount"`
	Percentage float64 `json:"percentage"`
	ColorClass string  `json:"colorClass"`
}

// AnalyticsReport содержит данные для панели аналитики.
type AnalyticsReport struct {
	TotalInvoices       int              `json:"totalInvoices"`
	TotalAmount         int64            `json:"totalAmount"`
	PaidAmount          int64            `json:"paidAmount"`
	OutstandingAmount   int64            `json:"outstandingAmount"`
	AgingSummary        AnalyticsSummary `json:"agingSummary"`
	QualityDistribution []QualityShare   `json:"qualityDistribution"`
}

// DetailedBucket описывает категорию в подробном отчёте.
type DetailedBucket struct {
	Label      string  `json:"label"`
	DaysRange  string  `json:"daysRange"`
	Count      int     `json:"count"`
	Amount     int64   `json:"amount"`
	Percentage float64 `json:"percentage"`
	Quality    Quality `json:"quality"`
	ColorClass string  `json:"colorClass"`
}

// RiskAnalysis группирует задолженность по уровням риска.
type RiskAnalysis struct {
	LowRisk      Tier `json:"lowRisk"`
	MediumRisk   Tier `json:"mediumRisk"`
	HighRisk     Tier `json:"highRisk"`
	CriticalRisk Tier `json:"criticalRisk"`
}

// DetailedReport содержит подробный отчёт о сроках задолженности.
type DetailedReport struct {
	ReportDate       time.Time        `json:"reportDate"`
	TotalOutstanding int64            `json:"totalOutstanding"`
	TotalCount       int              `json:"totalCount"`
	Buckets          []DetailedBucket `json:"buckets"`
	RiskAnalysis     RiskAnalysis     `json:"riskAnalysis"`
}

// ComposeSummary оборачивает сводку датой отчёта.
func ComposeSummary(summary Summary, reportDate time.Time) SummaryReport {
	return SummaryReport{ReportDate: reportDate, Summary: summary}
}

func share(t Tier, total int64) TierShare {
	return TierShare{Count: t.Count, Amount: t.Amount, Percentage: Percentage(t.Amount, total)}
}

// ComposeAnalytics строит отчёт для панели аналитики.
func ComposeAnalytics(summary Summary, buckets []Bucket, totalOutstanding int64) AnalyticsReport {
	dist := make([]QualityShare, 0, len(buckets))
	for _, b := range buckets {
		dist = append(dist, QualityShare{
			Quality:    b.Quality,
			Label:      b.Label,
			Count:      b.Count,
			Amount:     b.Amount,
			Percentage: Percentage(b.Amount, totalOutstanding),
			ColorClass: b.Quality.ColorClass(),
		})
	}

	return AnalyticsReport{
		TotalInvoices:     summary.Total.Count,
		TotalAmount:       totalOutstanding,
		OutstandingAmount: totalOutstanding,
		AgingSummary: AnalyticsSummary{
			Current:        share(summary.Current, totalOutstanding),
			SpecialMention: share(summary.SpecialMention, totalOutstanding),
			Substandard:    share(summary.Substandard, totalOutstanding),
			Doubtful:       share(summary.Doubtful, totalOutstanding),
			BadDebt:        share(summary.BadDebt, totalOutstanding),
		},
		QualityDistribution: dist,
	}
}

// ComposeDetailed строит подробный отчёт с разбивкой по уровням риска.
// Дату отчёта заполняет вызывающая сторона.
func ComposeDetailed(summary Summary, buckets []Bucket, totalOutstanding int64) DetailedReport {
	rows := make([]DetailedBucket, 0, len(buckets))
	for _, b := range buckets {
		rows = append(rows, DetailedBucket{
			Label:      b.Label,
			DaysRange:  daysRangeLabel(b.Quality),
			Count:      b.Count,
			Amount:     b.Amount,
			Percentage: Percentage(b.Amount, totalOutstanding),
			Quality:    b.Quality,
			ColorClass: b.Quality.ColorClass(),
		})
	}

	return DetailedReport{
		TotalOutstanding: totalOutstanding,
		TotalCount:       summary.Total.Count,
		Buckets:          rows,
		RiskAnalysis: RiskAnalysis{
			LowRisk:      summary.Current,
			MediumRisk:   summary.SpecialMention,
			HighRisk:     summary.Substandard,
			CriticalRisk: summary.Doubtful.add(summary.BadDebt),
		},
	}
}

func daysRangeLabel(q Quality) string {
	if info, ok := qualityTable[q]; ok && info.daysRange != "" {
		return info.daysRange
	}
	return "Unknown"
}
