package extract

import (
	"log/slog"

	"github.com/Veraticus/cardscan/internal/model"
)

// Extractor reconstructs transactions from statement text. It is safe for
// concurrent use; all patterns are compiled once in New.
type Extractor struct {
	fields *FieldExtractor
}

// New creates an Extractor.
func New() *Extractor {
	return &Extractor{fields: NewFieldExtractor()}
}

// Fields exposes the underlying field extractor.
func (e *Extractor) Fields() *FieldExtractor {
	return e.fields
}

// Extract runs the line-oriented and tabular passes over text, pools their
// candidates and removes duplicates. Every transaction is stamped with the
// card ending found in the document, if any.
func (e *Extractor) Extract(text string) []model.Transaction {
	lines := nonEmptyLines(text)

	pooled := e.fromLines(lines)
	pooled = append(pooled, e.fromTable(lines)...)
	txns := Deduplicate(pooled)

	if last4, ok := e.fields.CardLastFour(text); ok {
		for i := range txns {
			txns[i].CardLastFour = last4
		}
	}

	slog.Debug("extracted transactions",
		"lines", len(lines),
		"candidates", len(pooled),
		"transactions", len(txns))
	return txns
}

// Document is the extraction output for one RawDocument.
type Document struct {
	Facts        model.StatementFacts
	EmailType    model.EmailType
	Transactions []model.Transaction
}

// ExtractDocument extracts facts and transactions from a decoded document.
// Email documents additionally go through alert classification. An alert
// that yields a transaction replaces whatever the line pass read from the
// body, since both describe the same charge.
func (e *Extractor) ExtractDocument(doc model.RawDocument) Document {
	out := Document{
		Facts:        e.ExtractFacts(doc.Body),
		Transactions: e.Extract(doc.Body),
	}
	if doc.Type != model.DocumentEmail {
		return out
	}

	out.EmailType = ClassifyEmail(doc.Subject, doc.Body)
	info := e.ExtractFinancialInfo(doc.Body)
	if alert := TransactionsFromEmail(doc, out.EmailType, info); len(alert) > 0 {
		out.Transactions = alert
	}
	if out.Facts.Issuer == "" {
		out.Facts.Issuer = DetectIssuer(doc.Sender + " " + doc.Subject)
	}
	return out
}
