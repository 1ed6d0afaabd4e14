package document

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strings"

	"github.com/Veraticus/cardscan/internal/model"
	"github.com/aclindsa/ofxgo"
)

var (
	severityFix = regexp.MustCompile(`(?i)<SEVERITY>(Info|Warn|Error)</SEVERITY>`)
	openTagFix  = regexp.MustCompile(`(?m)^(\s*<[A-Z][A-Z0-9._]*[A-Z0-9])$`)
)

// purchasePrefixes are processor boilerplate some banks put in front of the payee.
var purchasePrefixes = []string{
	"POS PURCHASE ",
	"PURCHASE AUTHORIZED ON ",
	"DEBIT CARD PURCHASE ",
	"CHECK CARD ",
	"VISA PURCHASE ",
	"MC PURCHASE ",
	"DEBIT PURCHASE ",
}

var genericNames = map[string]bool{
	"DEBIT":           true,
	"PURCHASE":        true,
	"POS TRANSACTION": true,
	"CARD PURCHASE":   true,
}

// Statement is an already structured statement, as carried by OFX and QFX
// downloads. It bypasses text extraction entirely.
type Statement struct {
	Institution  string
	Facts        model.StatementFacts
	Transactions []model.Transaction
}

// OFXParser decodes OFX/QFX statement downloads.
type OFXParser struct{}

// NewOFXParser creates an OFXParser.
func NewOFXParser() *OFXParser {
	return &OFXParser{}
}

// normalize repairs the formatting mistakes that ofxgo rejects: leading
// blank lines, mixed-case severities and SGML tags missing their closing bracket.
func (p *OFXParser) normalize(content string) string {
	content = strings.TrimLeft(content, " \t\r\n")
	content = severityFix.ReplaceAllStringFunc(content, strings.ToUpper)
	return openTagFix.ReplaceAllString(content, "$1>")
}

// Parse reads one OFX response. Charges from every card and bank statement it
// contains are returned as positive amounts; credits such as payments and
// refunds are skipped. Facts come from the first credit card statement, or the
// first bank statement when there is none.
func (p *OFXParser) Parse(ctx context.Context, r io.Reader) (*Statement, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	content, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read OFX data: %w", err)
	}

	resp, err := ofxgo.ParseResponse(strings.NewReader(p.normalize(string(content))))
	if err != nil {
		return nil, fmt.Errorf("failed to parse OFX data: %w", err)
	}

	st := &Statement{Institution: string(resp.Signon.Org)}

	var cards, banks int
	for _, msg := range resp.CreditCard {
		stmt, ok := msg.(*ofxgo.CCStatementResponse)
		if !ok {
			continue
		}
		cards++
		account := string(stmt.CCAcctFrom.AcctID)
		if cards == 1 {
			st.Facts = balanceFacts(account, stmt.BalAmt)
		}
		st.Transactions = append(st.Transactions, p.charges(stmt.BankTranList, account)...)
	}

	for _, msg := range resp.Bank {
		stmt, ok := msg.(*ofxgo.StatementResponse)
		if !ok {
			continue
		}
		banks++
		account := string(stmt.BankAcctFrom.AcctID)
		if cards == 0 && banks == 1 {
			st.Facts = balanceFacts(account, stmt.BalAmt)
		}
		st.Transactions = append(st.Transactions, p.charges(stmt.BankTranList, account)...)
	}

	slog.Debug("parsed OFX statement",
		"institution", st.Institution,
		"card_statements", cards,
		"bank_statements", banks,
		"transactions", len(st.Transactions))

	return st, nil
}

func balanceFacts(account string, balance ofxgo.Amount) model.StatementFacts {
	facts := model.StatementFacts{CardLastFour: lastFour(account)}
	if f, _ := balance.Float64(); f != 0 {
		if f < 0 {
			f = -f
		}
		facts.CurrentBalance = &f
	}
	return facts
}

func (p *OFXParser) charges(list *ofxgo.TransactionList, account string) []model.Transaction {
	if list == nil {
		return nil
	}

	last4 := lastFour(account)
	out := make([]model.Transaction, 0, len(list.Transactions))
	for i, tx := range list.Transactions {
		amount, _ := tx.TrnAmt.Float64()
		if amount >= 0 {
			continue
		}

		name := strings.TrimSpace(string(tx.Name))
		raw := name
		if memo := strings.TrimSpace(string(tx.Memo)); memo != "" {
			raw += " " + memo
		}

		out = append(out, model.Transaction{
			ID:           string(tx.FiTID),
			Date:         tx.DtPosted.Time,
			Merchant:     payeeName(tx),
			Description:  name,
			RawText:      raw,
			Amount:       -amount,
			CardLastFour: last4,
			Source:       model.SourceOFX,
			LineNumber:   i,
		})
	}
	return out
}

// payeeName picks the cleanest merchant name an OFX transaction offers.
func payeeName(tx ofxgo.Transaction) string {
	if tx.Payee != nil && tx.Payee.Name != "" {
		return string(tx.Payee.Name)
	}

	name := strings.TrimSpace(string(tx.Name))
	if tx.Memo != "" && genericNames[strings.ToUpper(name)] {
		name = strings.TrimSpace(string(tx.Memo))
	}

	upper := strings.ToUpper(name)
	for _, prefix := range purchasePrefixes {
		if strings.HasPrefix(upper, prefix) {
			name = name[len(prefix):]
			break
		}
	}

	// "MM/DD " posting-date prefix
	if len(name) > 5 && name[2] == '/' && name[5] == ' ' {
		name = strings.TrimSpace(name[6:])
	}
	return name
}

func lastFour(account string) string {
	account = strings.TrimSpace(account)
	if len(account) <= 4 {
		return account
	}
	return account[len(account)-4:]
}
