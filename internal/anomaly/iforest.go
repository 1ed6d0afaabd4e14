package anomaly

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/Veraticus/cardscan/internal/model"
	"github.com/e-XpertSolutions/go-iforest/v2/iforest"
)

const maxSamplesPerTree = 256

var errEmptyMatrix = errors.New("feature matrix is empty")

// detectIsolation trains an isolation forest on the standardized batch and
// flags the rows it labels as outliers at the configured contamination. It
// only runs on batches larger than MLMinTransactions.
func (d *Detector) detectIsolation(b *batch) stageResult {
	if len(b.txns) <= d.cfg.MLMinTransactions {
		return stageResult{}
	}

	x, err := featureMatrix(b)
	if err != nil {
		return stageResult{Err: err}
	}
	standardize(x)

	forest := iforest.NewForest(d.cfg.Trees, min(maxSamplesPerTree, len(x)), d.cfg.Contamination)
	forest.Train(x)
	labels, scores, err := forest.Predict(x)
	if err != nil {
		return stageResult{Err: fmt.Errorf("isolation forest: %w", err)}
	}

	var res stageResult
	for i, label := range labels {
		if label != 1 {
			continue
		}
		res.Anomalies = append(res.Anomalies, b.flag(i, model.AnomalyML, clamp01(scores[i]),
			"Isolation forest flagged this transaction (score: %.3f)", scores[i]))
	}
	return res
}

// featureMatrix encodes amount, hour, weekday (Monday = 0), day of month and
// month, followed by one-hot merchant and category columns in sorted order.
func featureMatrix(b *batch) ([][]float64, error) {
	if len(b.txns) == 0 {
		return nil, errEmptyMatrix
	}
	merchants := distinctSorted(b.merchants)
	categories := distinctSorted(b.categories)
	merchantCol := indexOf(merchants, 5)
	categoryCol := indexOf(categories, 5+len(merchants))
	width := 5 + len(merchants) + len(categories)

	x := make([][]float64, len(b.txns))
	for i, t := range b.txns {
		if math.IsNaN(b.amounts[i]) || math.IsInf(b.amounts[i], 0) {
			return nil, fmt.Errorf("transaction %s: amount is not finite", b.ids[i])
		}
		row := make([]float64, width)
		row[0] = b.amounts[i]
		row[1] = float64(t.Date.Hour())
		row[2] = float64((int(t.Date.Weekday()) + 6) % 7)
		row[3] = float64(t.Date.Day())
		row[4] = float64(t.Date.Month())
		row[merchantCol[b.merchants[i]]] = 1
		row[categoryCol[b.categories[i]]] = 1
		x[i] = row
	}
	return x, nil
}

func distinctSorted(values []string) []string {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	out := make([]string, 0, len(set))
	for v := range set {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

func indexOf(values []string, offset int) map[string]int {
	m := make(map[string]int, len(values))
	for i, v := range values {
		m[v] = offset + i
	}
	return m
}

// standardize scales every column to zero mean and unit population variance.
// Constant columns are only centered.
func standardize(x [][]float64) {
	col := make([]float64, len(x))
	for j := range x[0] {
		for i := range x {
			col[i] = x[i][j]
		}
		mean, std := populationMeanStd(col)
		if !(std > 0) {
			std = 1
		}
		for i := range x {
			x[i][j] = (x[i][j] - mean) / std
		}
	}
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
