package categorize

import (
	"context"

	"github.com/Veraticus/cardscan/internal/model"
)

// patternConfidence is reported for any pattern hit.
const patternConfidence = 0.85

// PatternStrategy reports the first category, in table order, with a
// pattern that matches the text.
type PatternStrategy struct{}

// Stage implements Strategy.
func (PatternStrategy) Stage() model.Stage { return model.StagePattern }

// Threshold implements Strategy.
func (PatternStrategy) Threshold() float64 { return 0.7 }

// Attempt implements Strategy.
func (PatternStrategy) Attempt(_ context.Context, in Input) Result {
	for _, def := range in.Categories {
		for _, p := range def.Patterns {
			if p.Regex.MatchString(in.Text) {
				return hit(def, p.Subcategory, patternConfidence)
			}
		}
	}
	return Result{}
}
