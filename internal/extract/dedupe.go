package extract

import "github.com/Veraticus/cardscan/internal/model"

// Deduplicate keeps the first transaction for each DedupKey and drops later
// ones. Near-duplicates whose merchant captures differ are not merged.
func Deduplicate(txns []model.Transaction) []model.Transaction {
	seen := make(map[string]struct{}, len(txns))
	out := make([]model.Transaction, 0, len(txns))
	for _, t := range txns {
		key := t.DedupKey()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, t)
	}
	return out
}
