package extract

import (
	"regexp"
	"strings"

	"github.com/Veraticus/cardscan/internal/model"
)

// minTableLines is the number of numeric-looking lines a document needs
// before the tabular pass runs at all.
const minTableLines = 3

var (
	numericFieldPatterns = []*regexp.Regexp{
		regexp.MustCompile(slashDate),
		regexp.MustCompile(`\$?[\d,]+\.\d{2}`),
		regexp.MustCompile(`\b\d{4}\b`),
	}
	multiSpace    = regexp.MustCompile(`\s{2,}`)
	fullAmount    = regexp.MustCompile(`^\$?` + amountBody + `(?:\s*(?:CR|DR|USD))?$`)
	fullSlashDate = regexp.MustCompile(`^\d+[/\-]\d+[/\-]\d+$`)
)

// numericFieldCount counts numeric-looking tokens across all patterns.
func numericFieldCount(line string) int {
	n := 0
	for _, re := range numericFieldPatterns {
		n += len(re.FindAllStringIndex(line, -1))
	}
	return n
}

// splitRow tries tab, then runs of two or more spaces, then single spaces.
func splitRow(line string) []string {
	var parts []string
	switch {
	case strings.Contains(line, "\t"):
		parts = strings.Split(line, "\t")
	case multiSpace.MatchString(line):
		parts = multiSpace.Split(line, -1)
	default:
		parts = strings.Fields(line)
	}
	fields := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			fields = append(fields, p)
		}
	}
	return fields
}

// fromTable treats lines with two or more numeric fields as table rows.
func (e *Extractor) fromTable(lines []string) []model.Transaction {
	type row struct {
		text  string
		index int
	}
	var rows []row
	for i, line := range lines {
		if numericFieldCount(line) >= 2 {
			rows = append(rows, row{text: line, index: i})
		}
	}
	if len(rows) <= minTableLines {
		return nil
	}

	var txns []model.Transaction
	for _, r := range rows {
		if txn, ok := parseRow(r.text, r.index); ok {
			txns = append(txns, txn)
		}
	}
	return txns
}

func parseRow(line string, index int) (model.Transaction, bool) {
	fields := splitRow(line)
	if len(fields) < 3 {
		return model.Transaction{}, false
	}

	txn := model.Transaction{
		RawText:     line,
		LineNumber:  index,
		Source:      model.SourceTable,
		TableFields: fields,
	}

	dateField := -1
	for i, f := range fields {
		if d, ok := ParseDate(f); ok {
			txn.Date = d
			dateField = i
			break
		}
	}
	if dateField < 0 {
		return model.Transaction{}, false
	}

	found := false
	for i, f := range fields {
		if i == dateField || !fullAmount.MatchString(f) {
			continue
		}
		m := fullAmount.FindStringSubmatch(f)
		if amt, ok := ParseAmount(m[1]); ok {
			txn.Amount = amt
			found = true
			break
		}
	}
	if !found {
		return model.Transaction{}, false
	}

	var desc []string
	for _, f := range fields {
		if fullSlashDate.MatchString(f) || amountLikeWord.MatchString(f) || len(f) <= 2 {
			continue
		}
		desc = append(desc, f)
	}
	if len(desc) > 0 {
		txn.Merchant = desc[0]
	}
	if len(desc) > maxTableDescriptionWord {
		desc = desc[:maxTableDescriptionWord]
	}
	txn.Description = strings.Join(desc, " ")
	return txn, true
}
