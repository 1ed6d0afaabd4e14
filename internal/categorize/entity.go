package categorize

import (
	"context"
	"log/slog"
	"strings"

	"github.com/Veraticus/cardscan/internal/model"
	"github.com/jdkato/prose/v2"
)

const (
	maxEntityConfidence = 0.9
	minEntityConfidence = 0.4
)

// EntityExtractor finds named entities in free text.
type EntityExtractor interface {
	Entities(text string) ([]string, error)
}

// ProseExtractor extracts named entities with prose's built-in English model.
type ProseExtractor struct{}

// Entities implements EntityExtractor.
func (ProseExtractor) Entities(text string) ([]string, error) {
	doc, err := prose.NewDocument(text, prose.WithSegmentation(false))
	if err != nil {
		return nil, err
	}
	ents := doc.Entities()
	out := make([]string, 0, len(ents))
	for _, ent := range ents {
		out = append(out, ent.Text)
	}
	return out, nil
}

// EntityStrategy matches category keywords against named entities found in
// the text. A missing or failing extractor makes the stage come up empty.
type EntityStrategy struct {
	Extractor EntityExtractor
}

// Stage implements Strategy.
func (EntityStrategy) Stage() model.Stage { return model.StageEntity }

// Threshold implements Strategy.
func (EntityStrategy) Threshold() float64 { return 0.6 }

// Attempt implements Strategy. The first category whose entity share exceeds
// the floor is returned.
func (s EntityStrategy) Attempt(_ context.Context, in Input) Result {
	if s.Extractor == nil {
		return Result{}
	}

	raw, err := s.Extractor.Entities(in.Original)
	if err != nil {
		slog.Warn("entity extraction failed", "error", err)
		return Result{}
	}
	entities := make([]string, 0, len(raw))
	for _, e := range raw {
		entities = append(entities, strings.ToLower(e))
	}

	for _, def := range in.Categories {
		matches := 0
		for _, ent := range entities {
			for _, kw := range def.Keywords {
				if strings.Contains(ent, kw) {
					matches++
					break
				}
			}
		}
		if matches == 0 {
			continue
		}
		confidence := min(float64(matches)/float64(max(len(entities), 1)), maxEntityConfidence)
		if confidence > minEntityConfidence {
			return hit(def, "", confidence)
		}
	}
	return Result{}
}
