package anomaly

import (
	"math"
	"sort"

	"github.com/Veraticus/cardscan/internal/model"
)

const (
	fenceMultiplier       = 3.0
	minMerchantFrequency  = 10
	typicalHourShare      = 0.05
	categoryMinCount      = 3
	categoryZThreshold    = 2.5
	velocityWindowMinutes = 5.0
	wholeAmountShare      = 0.8
)

// detectAmountOutliers flags amounts outside Q1-3*IQR .. Q3+3*IQR.
func detectAmountOutliers(b *batch) stageResult {
	q1, q3 := b.quantile(0.25), b.quantile(0.75)
	iqr := q3 - q1
	lower, upper := q1-fenceMultiplier*iqr, q3+fenceMultiplier*iqr
	median := b.quantile(0.5)
	_, std := populationMeanStd(b.amounts)

	var res stageResult
	for i, amt := range b.amounts {
		if amt <= upper && amt >= lower {
			continue
		}
		score := 1.0
		if std > 0 {
			score = min(math.Abs(amt-median)/std, 1.0)
		}
		res.Anomalies = append(res.Anomalies, b.flag(i, model.AnomalyAmountOutlier, score,
			"Amount $%.2f is unusual (typical range: $%.2f - $%.2f)", amt, q1, q3))
	}
	return res
}

// detectFrequency flags every transaction on a day when a frequent merchant
// saw more than mean + 2 standard deviations of its daily count.
func detectFrequency(b *batch) stageResult {
	byMerchant := make(map[string][]int)
	var merchants []string
	for i, m := range b.merchants {
		if _, ok := byMerchant[m]; !ok {
			merchants = append(merchants, m)
		}
		byMerchant[m] = append(byMerchant[m], i)
	}

	var res stageResult
	for _, m := range merchants {
		idx := byMerchant[m]
		if len(idx) < minMerchantFrequency {
			continue
		}

		byDay := make(map[string][]int)
		var days []string
		for _, i := range idx {
			day := b.txns[i].Date.Format("2006-01-02")
			if _, ok := byDay[day]; !ok {
				days = append(days, day)
			}
			byDay[day] = append(byDay[day], i)
		}
		if len(days) < 2 {
			continue
		}

		counts := make([]float64, len(days))
		for j, day := range days {
			counts[j] = float64(len(byDay[day]))
		}
		mean, std := sampleMeanStd(counts)

		for j, day := range days {
			if counts[j] <= mean+2*std {
				continue
			}
			score := min((counts[j]-mean)/max(std, 1), 1.0)
			for _, i := range byDay[day] {
				res.Anomalies = append(res.Anomalies, b.flag(i, model.AnomalyFrequency, score,
					"Unusual frequency: %d transactions at %s on %s", int(counts[j]), m, day))
			}
		}
	}
	return res
}

// detectUnusualTime flags transactions before 06:00 or after 23:00 in hours
// used by fewer than 5% of the batch.
func detectUnusualTime(b *batch) stageResult {
	hours := make(map[int]int)
	for _, t := range b.txns {
		hours[t.Date.Hour()]++
	}
	minCount := float64(len(b.txns)) * typicalHourShare

	var res stageResult
	for i, t := range b.txns {
		h := t.Date.Hour()
		if float64(hours[h]) >= minCount {
			continue
		}
		if h < 6 || h > 23 {
			res.Anomalies = append(res.Anomalies, b.flag(i, model.AnomalyTime, 0.7,
				"Transaction at unusual time: %02d:00", h))
		}
	}
	return res
}

// detectNewMerchant flags a single-visit merchant whose amount is above the
// batch's 90th percentile.
func detectNewMerchant(b *batch) stageResult {
	counts := make(map[string]int)
	for _, m := range b.merchants {
		counts[m]++
	}
	p90 := b.quantile(0.9)

	var res stageResult
	for i, m := range b.merchants {
		if counts[m] == 1 && b.amounts[i] > p90 {
			res.Anomalies = append(res.Anomalies, b.flag(i, model.AnomalyMerchant, 0.8,
				"First transaction with %s for large amount $%.2f", m, b.amounts[i]))
		}
	}
	return res
}

// detectCategoryDeviation flags amounts more than 2.5 standard deviations
// from their category's mean.
func detectCategoryDeviation(b *batch) stageResult {
	byCategory := make(map[string][]float64)
	for i, c := range b.categories {
		byCategory[c] = append(byCategory[c], b.amounts[i])
	}
	type moments struct{ mean, std float64 }
	stats := make(map[string]moments, len(byCategory))
	for c, amounts := range byCategory {
		if len(amounts) < categoryMinCount {
			continue
		}
		mean, std := sampleMeanStd(amounts)
		stats[c] = moments{mean: mean, std: std}
	}

	var res stageResult
	for i, c := range b.categories {
		if c == model.FallbackCategory {
			continue
		}
		m, ok := stats[c]
		if !ok || !(m.std > 0) {
			continue
		}
		z := math.Abs(b.amounts[i]-m.mean) / m.std
		if z > categoryZThreshold {
			res.Anomalies = append(res.Anomalies, b.flag(i, model.AnomalyCategory, min(z/3, 1.0),
				"Unusual amount $%.2f for %s (typical: $%.2f)", b.amounts[i], c, m.mean))
		}
	}
	return res
}

// detectVelocity flags the later of two transactions within five minutes of
// each other whose combined amount exceeds the 95th percentile.
func detectVelocity(b *batch) stageResult {
	order := make([]int, len(b.txns))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(x, y int) bool {
		return b.txns[order[x]].Date.Before(b.txns[order[y]].Date)
	})
	p95 := b.quantile(0.95)

	var res stageResult
	for k := 1; k < len(order); k++ {
		cur, prev := order[k], order[k-1]
		minutes := b.txns[cur].Date.Sub(b.txns[prev].Date).Minutes()
		if minutes > velocityWindowMinutes {
			continue
		}
		if b.amounts[cur]+b.amounts[prev] > p95 {
			res.Anomalies = append(res.Anomalies, b.flag(cur, model.AnomalyVelocity, 0.9,
				"Multiple large transactions within %.1f minutes", minutes))
		}
	}
	return res
}

// detectPatternBreak flags a large non-whole amount in a batch that is
// mostly whole-dollar amounts.
func detectPatternBreak(b *batch) stageResult {
	whole := 0
	for _, amt := range b.amounts {
		if amt == math.Round(amt) {
			whole++
		}
	}
	var res stageResult
	if float64(whole)/float64(len(b.amounts)) <= wholeAmountShare {
		return res
	}

	p80 := b.quantile(0.8)
	for i, amt := range b.amounts {
		if amt != math.Round(amt) && amt > p80 {
			res.Anomalies = append(res.Anomalies, b.flag(i, model.AnomalyAmountPattern, 0.6,
				"Unusual non-round amount $%.2f in pattern of round amounts", amt))
		}
	}
	return res
}
