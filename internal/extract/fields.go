// Package extract pulls transaction candidates and billing facts out of raw
// statement text. Nothing in this package fails on malformed input: a field that
// cannot be parsed is simply absent and a record missing a date or an amount is dropped.
package extract

import (
	"regexp"
	"strings"
	"time"

	"github.com/Veraticus/cardscan/internal/common"
	"github.com/Veraticus/cardscan/internal/model"
	"github.com/araddon/dateparse"
	"github.com/shopspring/decimal"
)

// amountBody matches 1,234.56 / 1234.56 / 45 and captures the digits.
const amountBody = `((?:\d{1,3}(?:,\d{3})+|\d+)(?:\.\d{2})?)`

// slashDate matches 01/15/2024, 1-5-24 and friends.
const slashDate = `\d{1,2}[/\-]\d{1,2}[/\-]\d{2,4}`

// Default pattern lists, in priority order. The first pattern that matches wins.
var (
	datePatterns = []string{
		`\b(` + slashDate + `)\b`,
		`\b(\d{4}[/\-]\d{1,2}[/\-]\d{1,2})\b`,
		`\b([A-Za-z]{3,9}\.?\s+\d{1,2},?\s+\d{4})\b`,
		`\b(\d{1,2}\s+[A-Za-z]{3,9}\s+\d{4})\b`,
	}

	amountPatterns = []string{
		`\$` + amountBody,
		amountBody + `\s*(?:USD|dollars?)\b`,
		amountBody + `\s*CR\b`,
		amountBody + `\s*DR\b`,
	}

	merchantPatterns = []string{
		`([A-Z][A-Z0-9\s&\-\.]{3,30})`,
		`([A-Za-z0-9\s&\-\.]{3,30})\s+\d{1,2}[/\-]\d{1,2}`,
	}

	cardEndingPatterns = []string{
		`card\s+ending\s+in\s+(\d{4})`,
		`card\s+\*+(\d{4})`,
		`\*+(\d{4})`,
		`xxxx\s*(\d{4})`,
	}
)

// FieldExtractor applies precompiled pattern lists per field kind.
type FieldExtractor struct {
	patterns map[model.FieldKind][]*regexp.Regexp
}

// NewFieldExtractor compiles the default pattern lists once.
func NewFieldExtractor() *FieldExtractor {
	return &FieldExtractor{
		patterns: map[model.FieldKind][]*regexp.Regexp{
			model.FieldDate:         common.MustCompileFold(datePatterns...),
			model.FieldAmount:       common.MustCompileFold(amountPatterns...),
			model.FieldMerchant:     common.MustCompileFold(merchantPatterns...),
			model.FieldCardLastFour: common.MustCompileFold(cardEndingPatterns...),
		},
	}
}

// First returns the first capture group of the first pattern of kind that matches text.
func (f *FieldExtractor) First(kind model.FieldKind, text string) (string, bool) {
	for _, re := range f.patterns[kind] {
		if m := re.FindStringSubmatch(text); m != nil {
			return m[1], true
		}
	}
	return "", false
}

// Has reports whether any pattern of kind matches text.
func (f *FieldExtractor) Has(kind model.FieldKind, text string) bool {
	for _, re := range f.patterns[kind] {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}

// Date extracts and parses the first date token on a line.
func (f *FieldExtractor) Date(text string, line int) (model.FieldCandidate, bool) {
	raw, ok := f.First(model.FieldDate, text)
	if !ok {
		return model.FieldCandidate{}, false
	}
	c := model.FieldCandidate{Kind: model.FieldDate, Raw: raw, Line: line}
	if d, ok := ParseDate(raw); ok {
		c.Date = d
		c.Parsed = true
	}
	return c, true
}

// Amount extracts and parses the first amount token on a line.
func (f *FieldExtractor) Amount(text string, line int) (model.FieldCandidate, bool) {
	raw, ok := f.First(model.FieldAmount, text)
	if !ok {
		return model.FieldCandidate{}, false
	}
	c := model.FieldCandidate{Kind: model.FieldAmount, Raw: raw, Line: line}
	if amt, ok := ParseAmount(raw); ok {
		c.Amount = amt
		c.Parsed = true
	}
	return c, true
}

// Merchant returns the longest merchant-pattern match across every pattern.
// Ties keep the earlier match.
func (f *FieldExtractor) Merchant(text string) (string, bool) {
	var best string
	for _, re := range f.patterns[model.FieldMerchant] {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			if len(m[1]) > len(best) {
				best = m[1]
			}
		}
	}
	best = strings.TrimSpace(best)
	if len(best) <= 2 {
		return "", false
	}
	return best, true
}

// CardLastFour returns the raw four digits following a card-ending marker.
// No Luhn or issuer-length validation is performed.
func (f *FieldExtractor) CardLastFour(text string) (string, bool) {
	return f.First(model.FieldCardLastFour, text)
}

// ParseAmount converts "1,234.56" or "$1,234.56" to 1234.56 through a fixed-point
// decimal. A string that is not a number yields false.
func ParseAmount(raw string) (float64, bool) {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "$")
	s = strings.ReplaceAll(s, ",", "")
	if s == "" {
		return 0, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, false
	}
	return d.Round(2).InexactFloat64(), true
}

// fallbackDateLayouts cover statement spellings the general parser rejects.
var fallbackDateLayouts = []string{
	"Jan. 2, 2006",
	"Jan 2, 2006",
	"Jan 2 2006",
	"02-Jan-2006",
}

// notADate matches tokens that are amounts or bare numbers, which the general
// parser would otherwise read as years or timestamps. Eight digit compact
// dates are let through.
var notADate = regexp.MustCompile(`^\$|^[\d,]+\.\d{1,2}$|^(\d{1,7}|\d{9,})$`)

// ParseDate parses a date written in any of the common statement formats:
// slash or dash delimited, ISO, named month, or compact YYYYMMDD. Ambiguous
// numeric dates are read month first, then day first when the month is
// impossible. Dates without a zone are UTC.
func ParseDate(raw string) (time.Time, bool) {
	s := strings.Join(strings.Fields(raw), " ")
	if s == "" || notADate.MatchString(s) {
		return time.Time{}, false
	}
	if t, err := dateparse.ParseIn(s, time.UTC, dateparse.RetryAmbiguousDateWithSwap(true)); err == nil {
		return plausibleDate(t)
	}
	for _, layout := range fallbackDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return plausibleDate(t)
		}
	}
	// "Sept 5, 2024" and other four-letter abbreviations
	if fields := strings.Fields(s); len(fields) == 3 && len(fields[0]) > 3 {
		short := fields[0][:3] + " " + fields[1] + " " + fields[2]
		for _, layout := range fallbackDateLayouts[1:3] {
			if t, err := time.Parse(layout, short); err == nil {
				return plausibleDate(t)
			}
		}
	}
	return time.Time{}, false
}

func plausibleDate(t time.Time) (time.Time, bool) {
	if t.Year() < 1900 || t.Year() > 2100 {
		return time.Time{}, false
	}
	return t, true
}
