package model

import (
	"fmt"
	"time"
)

// ExtractionSource records which extraction path produced a transaction.
// Confidence in the extracted fields is inferred from it rather than stored per field.
type ExtractionSource string

// Extraction sources.
const (
	SourceLine  ExtractionSource = "line"
	SourceTable ExtractionSource = "table"
	SourceEmail ExtractionSource = "email"
	SourceOFX   ExtractionSource = "ofx"
)

// Transaction is a candidate transaction assembled from statement text.
// A candidate only exists once both Date and Amount have been resolved.
type Transaction struct {
	Date                  time.Time        `json:"date"`
	ID                    string           `json:"id"`
	Merchant              string           `json:"merchant"`
	Description           string           `json:"description"`
	AdditionalDescription string           `json:"additional_description,omitempty"` // prior line when the description wrapped
	RawText               string           `json:"raw_text"`
	CardLastFour          string           `json:"card_last_four,omitempty"`
	Source                ExtractionSource `json:"source"`
	TableFields           []string         `json:"table_fields,omitempty"`
	Amount                float64          `json:"amount"`
	LineNumber            int              `json:"line_number"`
}

// DedupKey is the approximate identity used to collapse duplicate candidates:
// the parsed date, the parsed amount and the first 20 characters of the merchant.
func (t *Transaction) DedupKey() string {
	merchant := t.Merchant
	if r := []rune(merchant); len(r) > 20 {
		merchant = string(r[:20])
	}
	return fmt.Sprintf("%s|%.2f|%s", t.Date.Format(time.RFC3339), t.Amount, merchant)
}
