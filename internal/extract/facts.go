package extract

import (
	"regexp"
	"strings"

	"github.com/Veraticus/cardscan/internal/common"
	"github.com/Veraticus/cardscan/internal/model"
)

const namedDate = `([A-Za-z]{3,9}\.?\s+\d{1,2},?\s+\d{4})`

var (
	balancePatterns = common.MustCompileFold(
		`current\s+balance:?\s*\$?`+amountBody,
		`new\s+balance:?\s*\$?`+amountBody,
		`balance:?\s*\$?`+amountBody,
		`statement\s+balance:?\s*\$?`+amountBody,
	)

	minimumPaymentPatterns = common.MustCompileFold(
		`minimum\s+payment(?:\s+due)?:?\s*\$?`+amountBody,
		`min\s+payment:?\s*\$?`+amountBody,
		`minimum\s+due:?\s*\$?`+amountBody,
		`amount\s+due:?\s*\$?`+amountBody,
	)

	dueDatePatterns = common.MustCompileFold(
		`payment\s+due:?\s*(`+slashDate+`)`,
		`due\s+date:?\s*(`+slashDate+`)`,
		`due\s+on:?\s*(`+slashDate+`)`,
		`payment\s+due(?:\s+date)?:?\s*`+namedDate,
		`due(?:\s+date|\s+on)?:?\s*`+namedDate,
	)
)

// issuers are checked in order; the first whose indicator occurs wins.
var issuers = []struct {
	name       string
	indicators []string
}{
	{"chase", []string{"chase", "jpmorgan"}},
	{"discover", []string{"discover"}},
	{"citi", []string{"citibank", "citi"}},
	{"amex", []string{"american express", "amex"}},
}

// ExtractFacts finds the card ending, balance, minimum payment, due date and
// issuer in statement text. Fields that are not found stay unset.
func (e *Extractor) ExtractFacts(text string) model.StatementFacts {
	var facts model.StatementFacts

	if last4, ok := e.fields.CardLastFour(text); ok {
		facts.CardLastFour = last4
	}
	if amt, ok := firstAmount(balancePatterns, text); ok {
		facts.CurrentBalance = &amt
	}
	if amt, ok := firstAmount(minimumPaymentPatterns, text); ok {
		facts.MinimumPayment = &amt
	}
	for _, re := range dueDatePatterns {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		if d, ok := ParseDate(m[1]); ok {
			facts.DueDate = &d
			break
		}
	}
	facts.Issuer = DetectIssuer(text)
	return facts
}

// DetectIssuer returns the card issuer named in text, or "" when none is.
func DetectIssuer(text string) string {
	lower := strings.ToLower(text)
	for _, is := range issuers {
		for _, ind := range is.indicators {
			if strings.Contains(lower, ind) {
				return is.name
			}
		}
	}
	return ""
}

func firstAmount(patterns []*regexp.Regexp, text string) (float64, bool) {
	for _, re := range patterns {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		if amt, ok := ParseAmount(m[1]); ok {
			return amt, true
		}
	}
	return 0, false
}
