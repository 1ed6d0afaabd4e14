package categorize

import "github.com/Veraticus/cardscan/internal/model"

// Statistics totals spending per category, in order of first appearance.
func Statistics(txns []model.CategorizedTransaction) []model.CategoryStats {
	var stats []model.CategoryStats
	index := make(map[string]int)
	for _, t := range txns {
		category := t.Category
		if category == "" {
			category = model.FallbackCategory
		}
		i, ok := index[category]
		if !ok {
			i = len(stats)
			index[category] = i
			stats = append(stats, model.CategoryStats{Category: category})
		}
		stats[i].Count++
		stats[i].Total += t.Amount
	}
	for i := range stats {
		stats[i].Average = stats[i].Total / float64(stats[i].Count)
	}
	return stats
}

// Statistics is the package-level Statistics.
func (c *Categorizer) Statistics(txns []model.CategorizedTransaction) []model.CategoryStats {
	return Statistics(txns)
}
