package aging

import (
	"time"

	"github.com/mmeshcher/piutang-system/internal/model"
)

// Tier содержит количество счетов и сумму остатка задолженности в категории.
type Tier struct {
	Count  int   `json:"count"`
	Amount int64 `json:"amount"`
}

func (t Tier) add(o Tier) Tier {
	return Tier{Count: t.Count + o.Count, Amount: t.Amount + o.Amount}
}

// Summary содержит сводку задолженности по категориям качества.
// Total всегда равен сумме пяти категорий.
type Summary struct {
	Current        Tier `json:"current"`
	SpecialMention Tier `json:"specialMention"`
	Substandard    Tier `json:"substandard"`
	Doubtful       Tier `json:"doubtful"`
	BadDebt        Tier `json:"badDebt"`
	Total          Tier `json:"total"`
}

// Tier возвращает данные категории. Для PAID и неизвестных значений возвращается нулевой Tier.
func (s Summary) Tier(q Quality) Tier {
	switch q {
	case QualityCurrent:
		return s.Current
	case QualitySpecialMention:
		return s.SpecialMention
	case QualitySubstandard:
		return s.Substandard
	case QualityDoubtful:
		return s.Doubtful
	case QualityBadDebt:
		return s.BadDebt
	default:
		return Tier{}
	}
}

// Bucket описывает одну категорию в упорядоченном списке для графиков.
type Bucket struct {
	Label   string  `json:"label"`
	Count   int     `json:"count"`
	Amount  int64   `json:"amount"`
	Quality Quality `json:"quality"`
}

// Tally хранит накопленные по категориям значения.
type Tally map[Quality]Tier

// Accumulate раскладывает неоплаченные счета по категориям качества.
// Счета со статусом LUNAS и счета с неположительным остатком пропускаются.
func Accumulate(invoices []model.Invoice, referenceDate time.Time) Tally {
	tally := make(Tally, len(Tiers))
	for _, inv := range invoices {
		if !inv.PaymentStatus.IsOutstanding() {
			continue
		}
		remaining := RemainingBalance(inv)
		if remaining <= 0 {
			continue
		}
		analysis := Analyze(inv, referenceDate)
		if !analysis.Quality.IsTier() {
			continue
		}
		tally[analysis.Quality] = tally[analysis.Quality].add(Tier{Count: 1, Amount: remaining})
	}
	return tally
}

// Summary проецирует накопленные значения в сводку.
func (t Tally) Summary() Summary {
	s := Summary{
		Current:        t[QualityCurrent],
		SpecialMention: t[QualitySpecialMention],
		Substandard:    t[QualitySubstandard],
		Doubtful:       t[QualityDoubtful],
		BadDebt:        t[QualityBadDebt],
	}
	for _, q := range Tiers {
		s.Total = s.Total.add(t[q])
	}
	return s
}

// Buckets проецирует накопленные значения в список из пяти категорий в фиксированном порядке.
func (t Tally) Buckets() []Bucket {
	buckets := make([]Bucket, 0, len(Tiers))
	for _, q := range Tiers {
		tier := t[q]
		buckets = append(buckets, Bucket{
			Label:   qualityTable[q].bucketLabel,
			Count:   tier.Count,
			Amount:  tier.Amount,
			Quality: q,
		})
	}
	return buckets
}

// Summarize строит сводку задолженности по счетам на дату отчёта.
func Summarize(invoices []model.Invoice, referenceDate time.Time) Summary {
	return Accumulate(invoices, referenceDate).Summary()
}

// Buckets строит упорядоченный список категорий по счетам на дату отчёта.
func Buckets(invoices []model.Invoice, referenceDate time.Time) []Bucket {
	return Accumulate(invoices, referenceDate).Buckets()
}
