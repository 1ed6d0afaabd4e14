package categorize

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Veraticus/cardscan/internal/model"
)

// Categorizer runs the strategy cascade against a Registry.
type Categorizer struct {
	registry   *Registry
	strategies []Strategy
}

// Option configures a Categorizer.
type Option func(*Categorizer)

// WithEntityExtractor enables the named-entity stage.
func WithEntityExtractor(extractor EntityExtractor) Option {
	return func(c *Categorizer) {
		c.strategies = []Strategy{
			KeywordStrategy{},
			PatternStrategy{},
			EntityStrategy{Extractor: extractor},
			SimilarityStrategy{},
		}
	}
}

// WithStrategies replaces the cascade.
func WithStrategies(strategies ...Strategy) Option {
	return func(c *Categorizer) {
		c.strategies = strategies
	}
}

// New creates a Categorizer. Without options the cascade is keyword,
// pattern and similarity; the entity stage needs WithEntityExtractor.
func New(registry *Registry, opts ...Option) *Categorizer {
	c := &Categorizer{
		registry: registry,
		strategies: []Strategy{
			KeywordStrategy{},
			PatternStrategy{},
			SimilarityStrategy{},
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Registry returns the category table the categorizer reads.
func (c *Categorizer) Registry() *Registry {
	return c.registry
}

// Categorize classifies every transaction. It only fails when ctx is done.
func (c *Categorizer) Categorize(ctx context.Context, txns []model.Transaction) ([]model.CategorizedTransaction, error) {
	categories := c.registry.Snapshot()
	out := make([]model.CategorizedTransaction, 0, len(txns))
	for _, txn := range txns {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("categorization canceled: %w", err)
		}
		out = append(out, c.classify(ctx, txn, categories))
	}
	return out, nil
}

// CategorizeOne classifies a single transaction.
func (c *Categorizer) CategorizeOne(ctx context.Context, txn model.Transaction) model.CategorizedTransaction {
	return c.classify(ctx, txn, c.registry.Snapshot())
}

func (c *Categorizer) classify(ctx context.Context, txn model.Transaction, categories []Definition) model.CategorizedTransaction {
	original := analysisText(txn)
	in := Input{
		Text:       strings.ToLower(original),
		Original:   original,
		Categories: categories,
	}

	for _, s := range c.strategies {
		res := s.Attempt(ctx, in)
		if !res.OK || res.Confidence <= s.Threshold() {
			continue
		}
		slog.Debug("transaction categorized",
			"merchant", txn.Merchant,
			"category", res.Category,
			"stage", s.Stage(),
			"confidence", res.Confidence)
		return model.CategorizedTransaction{
			Transaction: txn,
			Category:    res.Category,
			Subcategory: res.Subcategory,
			Confidence:  res.Confidence,
			Stage:       s.Stage(),
		}
	}

	return model.CategorizedTransaction{
		Transaction: txn,
		Category:    model.FallbackCategory,
		Subcategory: model.FallbackSubcategory,
		Confidence:  model.FallbackConfidence,
		Stage:       model.StageFallback,
	}
}

func analysisText(txn model.Transaction) string {
	parts := make([]string, 0, 3)
	for _, p := range []string{txn.Merchant, txn.Description, txn.RawText} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " ")
}
