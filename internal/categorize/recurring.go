package categorize

import (
	"sort"

	"github.com/Veraticus/cardscan/internal/model"
)

const minRecurringCount = 3

// MarkRecurring groups transactions by merchant and flags every member of a
// group with at least three transactions whose amounts vary by less than 10%
// of their mean (population variance below (0.1*mean)^2). It returns the
// recurring transactions, in date order within each group.
func MarkRecurring(txns []model.CategorizedTransaction) []model.CategorizedTransaction {
	order := make([]int, len(txns))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return txns[order[a]].Date.Before(txns[order[b]].Date)
	})

	var merchants []string
	groups := make(map[string][]int)
	for _, i := range order {
		m := txns[i].Merchant
		if m == "" {
			m = "Unknown"
		}
		if _, ok := groups[m]; !ok {
			merchants = append(merchants, m)
		}
		groups[m] = append(groups[m], i)
	}

	var recurring []model.CategorizedTransaction
	for _, m := range merchants {
		idx := groups[m]
		if len(idx) < minRecurringCount {
			continue
		}
		var sum float64
		for _, i := range idx {
			sum += txns[i].Amount
		}
		mean := sum / float64(len(idx))
		var variance float64
		for _, i := range idx {
			d := txns[i].Amount - mean
			variance += d * d
		}
		variance /= float64(len(idx))
		if variance >= (mean*0.1)*(mean*0.1) {
			continue
		}
		for _, i := range idx {
			txns[i].IsRecurring = true
			recurring = append(recurring, txns[i])
		}
	}
	return recurring
}
