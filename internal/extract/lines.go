package extract

import (
	"regexp"
	"strings"

	"github.com/Veraticus/cardscan/internal/model"
)

const (
	maxDescriptionWords     = 10
	minContextLineLength    = 10
	maxTableDescriptionWord = 5
)

var (
	dateLikeWord   = regexp.MustCompile(`^\d{1,4}[/\-]\d{1,2}([/\-]\d{1,4})?$`)
	amountLikeWord = regexp.MustCompile(`^\$?[\d,]+(\.\d{2})?$`)
)

// IsTransactionLine reports whether a line carries both a date token and an
// amount token. A subtotal line with only an amount does not qualify.
func (e *Extractor) IsTransactionLine(line string) bool {
	return e.fields.Has(model.FieldDate, line) && e.fields.Has(model.FieldAmount, line)
}

// nonEmptyLines trims every line and drops the blank ones.
func nonEmptyLines(text string) []string {
	var out []string
	for _, l := range strings.Split(text, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			out = append(out, l)
		}
	}
	return out
}

// fromLines assembles candidates from qualifying lines, one per line.
func (e *Extractor) fromLines(lines []string) []model.Transaction {
	var txns []model.Transaction
	for i, line := range lines {
		if !e.IsTransactionLine(line) {
			continue
		}
		txn, ok := e.parseLine(line, i)
		if !ok {
			continue
		}
		if i > 0 {
			prev := lines[i-1]
			if !e.IsTransactionLine(prev) && len(prev) > minContextLineLength {
				txn.AdditionalDescription = prev
			}
		}
		txns = append(txns, txn)
	}
	return txns
}

func (e *Extractor) parseLine(line string, index int) (model.Transaction, bool) {
	date, ok := e.fields.Date(line, index)
	if !ok || !date.Parsed {
		return model.Transaction{}, false
	}
	amount, ok := e.fields.Amount(line, index)
	if !ok || !amount.Parsed {
		return model.Transaction{}, false
	}

	txn := model.Transaction{
		Date:       date.Date,
		Amount:     amount.Amount,
		RawText:    line,
		LineNumber: index,
		Source:     model.SourceLine,
	}
	if merchant, ok := e.fields.Merchant(line); ok {
		txn.Merchant = merchant
	}
	txn.Description = describe(strings.Fields(line), maxDescriptionWords)
	return txn, true
}

// describe keeps the first limit words that are neither date-like nor
// amount-like and longer than two characters.
func describe(words []string, limit int) string {
	kept := make([]string, 0, limit)
	for _, w := range words {
		if len(kept) == limit {
			break
		}
		if len(w) <= 2 || dateLikeWord.MatchString(w) || amountLikeWord.MatchString(w) {
			continue
		}
		kept = append(kept, w)
	}
	return strings.Join(kept, " ")
}
