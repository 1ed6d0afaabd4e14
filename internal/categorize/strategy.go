package categorize

import (
	"context"

	"github.com/Veraticus/cardscan/internal/model"
)

// Input is what every strategy sees for one transaction.
type Input struct {
	Text       string // lowercased merchant, description and raw text
	Original   string // the same text with its original casing
	Categories []Definition
}

// Result is a strategy's answer. OK is false when the strategy found nothing
// or could not run; the categorizer then moves to the next strategy.
type Result struct {
	Category    string
	Subcategory string
	Confidence  float64
	OK          bool
}

// Strategy is one stage of the categorization cascade. A result counts only
// when its confidence is strictly greater than the strategy's threshold.
type Strategy interface {
	Stage() model.Stage
	Threshold() float64
	Attempt(ctx context.Context, in Input) Result
}

func hit(def Definition, subcategory string, confidence float64) Result {
	if subcategory == "" {
		subcategory = def.Primary()
	}
	return Result{
		Category:    def.Name,
		Subcategory: subcategory,
		Confidence:  confidence,
		OK:          true,
	}
}
