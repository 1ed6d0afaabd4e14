package engine

import (
	"context"

	"github.com/Veraticus/cardscan/internal/extract"
	"github.com/Veraticus/cardscan/internal/model"
)

// Extractor turns decoded statement text into transactions and billing facts.
type Extractor interface {
	ExtractDocument(doc model.RawDocument) extract.Document
}

// Categorizer assigns one category to every transaction.
type Categorizer interface {
	Categorize(ctx context.Context, txns []model.Transaction) ([]model.CategorizedTransaction, error)
}

// Detector flags unusual transactions in a batch.
type Detector interface {
	Detect(ctx context.Context, txns []model.CategorizedTransaction) ([]model.Anomaly, error)
}
