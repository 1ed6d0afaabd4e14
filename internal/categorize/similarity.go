package categorize

import (
	"context"
	"math"
	"strings"

	"github.com/Veraticus/cardscan/internal/model"
	"github.com/bbalet/stopwords"
	"github.com/james-bowman/nlp"
	"github.com/james-bowman/nlp/measures/pairwise"
	"gonum.org/v1/gonum/mat"
)

const minSimilarityReport = 0.3

// SimilarityStrategy compares the text with every category's keyword bag by
// cosine similarity of TF-IDF vectors. The vector space is fit per call over
// the category bags plus the one transaction text.
type SimilarityStrategy struct{}

// Stage implements Strategy.
func (SimilarityStrategy) Stage() model.Stage { return model.StageSimilarity }

// Threshold implements Strategy.
func (SimilarityStrategy) Threshold() float64 { return 0.5 }

// Attempt implements Strategy.
func (SimilarityStrategy) Attempt(_ context.Context, in Input) Result {
	var (
		defs []Definition
		docs []string
	)
	for _, def := range in.Categories {
		if def.Name == model.FallbackCategory {
			continue
		}
		defs = append(defs, def)
		docs = append(docs, cleanText(strings.Join(def.Keywords, " ")))
	}
	if len(defs) == 0 {
		return Result{}
	}
	docs = append(docs, cleanText(in.Text))

	vectors, ok := tfidf(docs)
	if !ok {
		return Result{}
	}
	query := vectors.ColView(len(docs) - 1)

	bestIdx, bestSim := 0, -1.0
	for i := range defs {
		sim := pairwise.CosineSimilarity(query, vectors.ColView(i))
		if math.IsNaN(sim) {
			continue
		}
		if sim > bestSim {
			bestIdx, bestSim = i, sim
		}
	}
	if bestSim <= minSimilarityReport {
		return Result{}
	}
	return hit(defs[bestIdx], "", bestSim)
}

// cleanText lowercases text and drops English stop words and digits.
func cleanText(text string) string {
	return strings.TrimSpace(stopwords.CleanString(text, "en", false))
}

// tfidf returns a term by document matrix, one column per document. It
// reports false when no document contributed a single term.
func tfidf(docs []string) (*mat.Dense, bool) {
	pipeline := nlp.NewPipeline(nlp.NewCountVectoriser(), nlp.NewTfidfTransformer())
	m, err := pipeline.FitTransform(docs...)
	if err != nil {
		return nil, false
	}
	if terms, _ := m.Dims(); terms == 0 {
		return nil, false
	}
	return mat.DenseCopyOf(m), true
}
