// Package anomaly flags unusual transactions in a batch using a set of
// independent statistical detectors plus an isolation forest.
package anomaly

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strconv"

	"github.com/Veraticus/cardscan/internal/model"
)

// Config tunes the detector. Zero values are replaced by DefaultConfig's.
type Config struct {
	MinTransactions   int     // below this the batch is not analyzed
	MLMinTransactions int     // the isolation forest runs when the batch is larger than this
	Contamination     float64 // expected share of outliers for the isolation forest
	Trees             int
}

// DefaultConfig returns the standard thresholds.
func DefaultConfig() Config {
	return Config{
		MinTransactions:   10,
		MLMinTransactions: 20,
		Contamination:     0.1,
		Trees:             100,
	}
}

// stageResult is what one detector produced. Err is set when the detector
// could not run; its anomalies are then empty and the other stages proceed.
type stageResult struct {
	Err       error
	Anomalies []model.Anomaly
}

type stage struct {
	run  func(b *batch) stageResult
	name string
}

// Detector runs every detector over a batch and merges their findings.
type Detector struct {
	stages []stage
	cfg    Config
}

// NewDetector creates a Detector.
func NewDetector(cfg Config) *Detector {
	def := DefaultConfig()
	if cfg.MinTransactions <= 0 {
		cfg.MinTransactions = def.MinTransactions
	}
	if cfg.MLMinTransactions <= 0 {
		cfg.MLMinTransactions = def.MLMinTransactions
	}
	if cfg.Contamination <= 0 || cfg.Contamination >= 0.5 {
		cfg.Contamination = def.Contamination
	}
	if cfg.Trees <= 0 {
		cfg.Trees = def.Trees
	}

	d := &Detector{cfg: cfg}
	d.stages = []stage{
		{name: "amount", run: detectAmountOutliers},
		{name: "frequency", run: detectFrequency},
		{name: "time", run: detectUnusualTime},
		{name: "merchant", run: detectNewMerchant},
		{name: "category", run: detectCategoryDeviation},
		{name: "velocity", run: detectVelocity},
		{name: "pattern", run: detectPatternBreak},
		{name: "isolation_forest", run: d.detectIsolation},
	}
	return d
}

// Detect returns at most one anomaly per transaction, highest score first.
// Batches smaller than the configured minimum yield nothing.
func (d *Detector) Detect(ctx context.Context, txns []model.CategorizedTransaction) ([]model.Anomaly, error) {
	if len(txns) < d.cfg.MinTransactions {
		slog.Debug("batch too small for anomaly detection",
			"transactions", len(txns),
			"minimum", d.cfg.MinTransactions)
		return nil, nil
	}

	b := newBatch(txns)
	var all []model.Anomaly
	for _, s := range d.stages {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("anomaly detection canceled: %w", err)
		}
		res := s.run(b)
		if res.Err != nil {
			slog.Warn("anomaly detector failed", "detector", s.name, "error", res.Err)
			continue
		}
		all = append(all, res.Anomalies...)
	}
	return Merge(all), nil
}

// Merge keeps the highest-scoring anomaly for each transaction. Equal scores
// keep detector order.
func Merge(anomalies []model.Anomaly) []model.Anomaly {
	sorted := make([]model.Anomaly, len(anomalies))
	copy(sorted, anomalies)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Score > sorted[j].Score
	})

	seen := make(map[string]struct{}, len(sorted))
	out := make([]model.Anomaly, 0, len(sorted))
	for _, a := range sorted {
		if _, dup := seen[a.TransactionID]; dup {
			continue
		}
		seen[a.TransactionID] = struct{}{}
		out = append(out, a)
	}
	return out
}

// batch holds the per-transaction columns the detectors share.
type batch struct {
	txns       []model.CategorizedTransaction
	ids        []string
	merchants  []string
	categories []string
	amounts    []float64
	sorted     []float64 // amounts ascending
}

func newBatch(txns []model.CategorizedTransaction) *batch {
	b := &batch{
		txns:       txns,
		ids:        make([]string, len(txns)),
		merchants:  make([]string, len(txns)),
		categories: make([]string, len(txns)),
		amounts:    make([]float64, len(txns)),
	}
	for i, t := range txns {
		b.ids[i] = t.ID
		if b.ids[i] == "" {
			b.ids[i] = strconv.Itoa(i)
		}
		b.merchants[i] = t.Merchant
		if b.merchants[i] == "" {
			b.merchants[i] = "Unknown"
		}
		b.categories[i] = t.Category
		if b.categories[i] == "" {
			b.categories[i] = model.FallbackCategory
		}
		b.amounts[i] = t.Amount
	}
	b.sorted = sortedCopy(b.amounts)
	return b
}

func (b *batch) flag(i int, kind model.AnomalyType, score float64, format string, args ...any) model.Anomaly {
	return model.Anomaly{
		Transaction:   &b.txns[i],
		TransactionID: b.ids[i],
		Type:          kind,
		Score:         score,
		Description:   fmt.Sprintf(format, args...),
	}
}

func (b *batch) quantile(p float64) float64 {
	return percentile(b.sorted, p)
}
