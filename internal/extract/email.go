package extract

import (
	"regexp"
	"strings"
	"time"

	"github.com/Veraticus/cardscan/internal/common"
	"github.com/Veraticus/cardscan/internal/model"
)

// emailTypePatterns are checked in this order against lowercased subject and body.
var emailTypePatterns = []struct {
	kind     model.EmailType
	patterns []string
}{
	{model.EmailStatement, []string{"statement", "monthly statement", "credit card statement", "billing statement"}},
	{model.EmailTransaction, []string{"transaction alert", "purchase notification", "transaction notification", "spending alert"}},
	{model.EmailPayment, []string{"payment due", "payment reminder", "minimum payment", "payment confirmation"}},
	{model.EmailBalance, []string{"balance alert", "current balance", "available credit", "credit limit"}},
}

var (
	emailAmountPatterns = common.MustCompileFold(
		`\$`+amountBody,
		amountBody+`\s*(?:USD|dollars?)\b`,
		`amount:?\s*\$?`+amountBody,
		`total:?\s*\$?`+amountBody,
		`balance:?\s*\$?`+amountBody,
	)

	emailDatePatterns = common.MustCompileFold(
		`due\s+(?:on\s+)?(`+slashDate+`)`,
		`payment\s+due:?\s*(`+slashDate+`)`,
		`\b(`+slashDate+`)\b`,
		`\b`+namedDate,
	)

	emailMerchantPatterns = common.MustCompileFold(
		`merchant:?[ \t]*([A-Za-z0-9 &\-\.]+)`,
		`\bat[ \t]+([A-Za-z0-9 &\-\.]+)`,
		`purchase[ \t]+at[ \t]+([A-Za-z0-9 &\-\.]+)`,
		`transaction[ \t]+at[ \t]+([A-Za-z0-9 &\-\.]+)`,
	)
)

// EmailInfo is everything monetary found in an email body. Amounts and dates
// are listed in pattern order, so the same value can appear more than once.
type EmailInfo struct {
	LatestDate    time.Time
	EarliestDate  time.Time
	Amounts       []float64
	Dates         []time.Time
	Merchants     []string
	CardLastFours []string
	MaxAmount     float64
	MinAmount     float64
}

// ClassifyEmail returns the first email type whose patterns occur in the subject or body.
func ClassifyEmail(subject, body string) model.EmailType {
	text := strings.ToLower(subject + " " + body)
	for _, et := range emailTypePatterns {
		for _, p := range et.patterns {
			if strings.Contains(text, p) {
				return et.kind
			}
		}
	}
	return model.EmailUnknown
}

// ExtractFinancialInfo collects every amount, date, merchant and card ending in body.
func (e *Extractor) ExtractFinancialInfo(body string) EmailInfo {
	var info EmailInfo

	for _, re := range emailAmountPatterns {
		for _, m := range re.FindAllStringSubmatch(body, -1) {
			if amt, ok := ParseAmount(m[1]); ok {
				info.Amounts = append(info.Amounts, amt)
			}
		}
	}
	for i, amt := range info.Amounts {
		if i == 0 || amt > info.MaxAmount {
			info.MaxAmount = amt
		}
		if i == 0 || amt < info.MinAmount {
			info.MinAmount = amt
		}
	}

	for _, re := range emailDatePatterns {
		for _, m := range re.FindAllStringSubmatch(body, -1) {
			if d, ok := ParseDate(m[1]); ok {
				info.Dates = append(info.Dates, d)
			}
		}
	}
	for i, d := range info.Dates {
		if i == 0 || d.After(info.LatestDate) {
			info.LatestDate = d
		}
		if i == 0 || d.Before(info.EarliestDate) {
			info.EarliestDate = d
		}
	}

	var merchants []string
	for _, re := range emailMerchantPatterns {
		for _, m := range re.FindAllStringSubmatch(body, -1) {
			if name := trimMerchant(m[1]); len(name) > 2 {
				merchants = append(merchants, name)
			}
		}
	}
	info.Merchants = unique(merchants)

	var cards []string
	for _, re := range e.fields.patterns[model.FieldCardLastFour] {
		for _, m := range re.FindAllStringSubmatch(body, -1) {
			cards = append(cards, m[1])
		}
	}
	info.CardLastFours = unique(cards)

	return info
}

// TransactionsFromEmail turns a transaction-alert email into a single
// transaction. Other email types produce nothing, as does an alert without an amount.
func TransactionsFromEmail(doc model.RawDocument, kind model.EmailType, info EmailInfo) []model.Transaction {
	if kind != model.EmailTransaction || len(info.Amounts) == 0 {
		return nil
	}

	txn := model.Transaction{
		Amount:      info.Amounts[0],
		Date:        doc.Date,
		Merchant:    "Unknown",
		Description: "Transaction from email: " + doc.Subject,
		RawText:     doc.Body,
		Source:      model.SourceEmail,
	}
	if len(info.Dates) > 0 {
		txn.Date = info.Dates[0]
	}
	if len(info.Merchants) > 0 {
		txn.Merchant = info.Merchants[0]
	}
	if len(info.CardLastFours) > 0 {
		txn.CardLastFour = info.CardLastFours[0]
	}
	if txn.Date.IsZero() {
		return nil
	}
	return []model.Transaction{txn}
}

// merchantStop ends a merchant capture that ran on into the rest of the sentence.
var merchantStop = regexp.MustCompile(`(?i)\s+(?:on|for|with|using|via)\s`)

func trimMerchant(s string) string {
	if loc := merchantStop.FindStringIndex(s + " "); loc != nil {
		s = s[:loc[0]]
	}
	return strings.TrimRight(strings.TrimSpace(s), ".")
}

func unique(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
