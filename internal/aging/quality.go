// Package aging классифицирует неоплаченные счета по сроку просрочки и строит
// на их основе сводки и отчёты о качестве дебиторской задолженности.
//
// Все функции пакета чистые: дата отчёта передаётся явно, состояние между
// вызовами не хранится.
package aging

// Quality описывает категорию качества задолженности.
type Quality string

const (
	QualityPaid           Quality = "PAID"
	QualityCurrent        Quality = "CURRENT"
	QualitySpecialMention Quality = "SPECIAL_MENTION"
	QualitySubstandard    Quality = "SUBSTANDARD"
	QualityDoubtful       Quality = "DOUBTFUL"
	QualityBadDebt        Quality = "BAD_DEBT"
)

// RiskLevel описывает уровень риска невозврата.
type RiskLevel string

const (
	RiskLow      RiskLevel = "low"
	RiskMedium   RiskLevel = "medium"
	RiskHigh     RiskLevel = "high"
	RiskCritical RiskLevel = "critical"
)

// Верхние границы диапазонов просрочки в днях, включительно.
const (
	specialMentionMaxDays = 30
	substandardMaxDays    = 60
	doubtfulMaxDays       = 90
)

const unknownColorClass = "bg-gray-100 text-gray-800 border-gray-200"

type qualityInfo struct {
	label       string
	risk        RiskLevel
	colorClass  string
	bucketLabel string
	daysRange   string
}

var qualityTable = map[Quality]qualityInfo{
	QualityPaid: {
		label:      "Sudah Lunas (N/A)",
		risk:       RiskLow,
		colorClass: "bg-blue-100 text-blue-800 border-blue-200",
	},
	QualityCurrent: {
		label:       "Belum Jatuh Tempo",
		risk:        RiskLow,
		colorClass:  "bg-green-100 text-green-800 border-green-200",
		bucketLabel: "Belum Jatuh Tempo",
		daysRange:   "< 0 hari",
	},
	QualitySpecialMention: {
		label:       "Dalam Perhatian Khusus",
		risk:        RiskMedium,
		colorClass:  "bg-yellow-100 text-yellow-800 border-yellow-200",
		bucketLabel: "1-30 hari",
		daysRange:   "1-30 hari",
	},
	QualitySubstandard: {
		label:       "Kurang Lancar",
		risk:        RiskHigh,
		colorClass:  "bg-orange-100 text-orange-800 border-orange-200",
		bucketLabel: "31-60 hari",
		daysRange:   "31-60 hari",
	},
	QualityDoubtful: {
		label:       "Diragukan",
		risk:        RiskCritical,
		colorClass:  "bg-red-100 text-red-800 border-red-200",
		bucketLabel: "61-90 hari",
		daysRange:   "61-90 hari",
	},
	QualityBadDebt: {
		label:       "Macet",
		risk:        RiskCritical,
		colorClass:  unknownColorClass,
		bucketLabel: "> 90 hari",
		daysRange:   "> 90 hari",
	},
}

// Tiers перечисляет категории неоплаченной задолженности в порядке отображения.
var Tiers = [...]Quality{
	QualityCurrent,
	QualitySpecialMention,
	QualitySubstandard,
	QualityDoubtful,
	QualityBadDebt,
}

// Label возвращает название категории на индонезийском языке.
func (q Quality) Label() string {
	if info, ok := qualityTable[q]; ok {
		return info.label
	}
	return "Unknown"
}

// Risk возвращает уровень риска категории.
func (q Quality) Risk() RiskLevel {
	if info, ok := qualityTable[q]; ok {
		return info.risk
	}
	return RiskLow
}

// ColorClass возвращает токен оформления категории для интерфейса.
func (q Quality) ColorClass() string {
	if info, ok := qualityTable[q]; ok {
		return info.colorClass
	}
	return unknownColorClass
}

// IsTier сообщает, участвует ли категория в агрегировании задолженности.
func (q Quality) IsTier() bool {
	return q.tierIndex() >= 0
}

func (q Quality) tierIndex() int {
	for i, t := range Tiers {
		if t == q {
			return i
		}
	}
	return -1
}

// DetermineQuality определяет категорию по количеству дней просрочки.
// Верхняя граница каждого диапазона (30, 60, 90) относится к нему же.
func DetermineQuality(daysOverdue int) Quality {
	switch {
	case daysOverdue < 0:
		return QualityCurrent
	case daysOverdue <= specialMentionMaxDays:
		return QualitySpecialMention
	case daysOverdue <= substandardMaxDays:
		return QualitySubstandard
	case daysOverdue <= doubtfulMaxDays:
		return QualityDoubtful
	default:
		return QualityBadDebt
	}
}

// Classify строит результат анализа по сроку просрочки. Для погашенного счёта
// возвращается категория PAID с нулевым сроком независимо от daysOverdue.
func Classify(daysOverdue int, settled bool) Analysis {
	if settled {
		return newAnalysis(0, QualityPaid)
	}
	return newAnalysis(daysOverdue, DetermineQuality(daysOverdue))
}

func newAnalysis(days int, q Quality) Analysis {
	return Analysis{
		DaysOverdue:  days,
		Quality:      q,
		QualityLabel: q.Label(),
		RiskLevel:    q.Risk(),
		ColorClass:   q.ColorClass(),
	}
}
