package categorize

import (
	"context"
	"strings"

	"github.com/Veraticus/cardscan/internal/model"
)

// KeywordStrategy scores each category by the share of its keywords that
// occur in the text and keeps the best one.
type KeywordStrategy struct{}

// Stage implements Strategy.
func (KeywordStrategy) Stage() model.Stage { return model.StageKeyword }

// Threshold implements Strategy.
func (KeywordStrategy) Threshold() float64 { return 0.8 }

// Attempt implements Strategy. Ties keep the earlier category.
func (KeywordStrategy) Attempt(_ context.Context, in Input) Result {
	var best Result
	for _, def := range in.Categories {
		matches := 0
		for _, kw := range def.Keywords {
			if strings.Contains(in.Text, kw) {
				matches++
			}
		}
		if matches == 0 {
			continue
		}
		confidence := min(float64(matches)/float64(len(def.Keywords)), 1.0)
		if confidence > best.Confidence {
			best = hit(def, "", confidence)
		}
	}
	return best
}
