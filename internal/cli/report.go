package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/Veraticus/cardscan/internal/engine"
	"github.com/Veraticus/cardscan/internal/finance"
	"github.com/Veraticus/cardscan/internal/model"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

const dateLayout = "2006-01-02"

// WriteJSON writes v as indented JSON.
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(SubtleStyle).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return TableHeaderStyle
			}
			return TableCellStyle
		}).
		Headers(headers...)
}

func money(v float64) string {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return "never"
	}
	return fmt.Sprintf("$%.2f", v)
}

func truncate(s string, n int) string {
	if len([]rune(s)) <= n {
		return s
	}
	return string([]rune(s)[:n-1]) + "…"
}

// RenderResult renders the full report for one scanned document or batch.
func RenderResult(res *engine.Result) string {
	var b strings.Builder

	title := "Statement report"
	if res.Name != "" {
		title += ": " + res.Name
	}
	b.WriteString(FormatTitle(title) + "\n")

	if facts := RenderFacts(res.Facts); facts != "" {
		b.WriteString(facts + "\n")
	}
	if res.EmailType != "" && res.EmailType != model.EmailUnknown {
		b.WriteString(FormatInfo("Email type: "+string(res.EmailType)) + "\n")
	}

	if len(res.Transactions) == 0 {
		b.WriteString(FormatWarning("No transactions found") + "\n")
		return b.String()
	}

	b.WriteString(RenderTransactions(res.Transactions) + "\n")
	b.WriteString(RenderCategoryStats(res.Categories) + "\n")
	b.WriteString(RenderAnomalies(res.Anomalies, res.Summary))
	return b.String()
}

// RenderFacts renders the statement billing facts, or "" when none were found.
func RenderFacts(f model.StatementFacts) string {
	var lines []string
	if f.Issuer != "" {
		lines = append(lines, "Issuer:          "+f.Issuer)
	}
	if f.CardLastFour != "" {
		lines = append(lines, "Card ending:     "+f.CardLastFour)
	}
	if f.CurrentBalance != nil {
		lines = append(lines, "Balance:         "+money(*f.CurrentBalance))
	}
	if f.MinimumPayment != nil {
		lines = append(lines, "Minimum payment: "+money(*f.MinimumPayment))
	}
	if f.DueDate != nil {
		lines = append(lines, "Due date:        "+f.DueDate.Format(dateLayout))
	}
	if len(lines) == 0 {
		return ""
	}
	return RenderBox("Statement", strings.Join(lines, "\n"))
}

// RenderTransactions renders categorized transactions as a table.
func RenderTransactions(txns []model.CategorizedTransaction) string {
	t := newTable("Date", "Merchant", "Amount", "Category", "Subcategory", "Stage", "")
	for _, txn := range txns {
		recurring := ""
		if txn.IsRecurring {
			recurring = "recurring"
		}
		merchant := txn.Merchant
		if merchant == "" {
			merchant = txn.Description
		}
		t.Row(
			txn.Date.Format(dateLayout),
			truncate(merchant, 32),
			money(txn.Amount),
			txn.Category,
			txn.Subcategory,
			string(txn.Stage),
			recurring,
		)
	}
	return t.String()
}

// RenderCategoryStats renders per-category totals.
func RenderCategoryStats(stats []model.CategoryStats) string {
	t := newTable("Category", "Count", "Total", "Average")
	for _, s := range stats {
		t.Row(s.Category, fmt.Sprintf("%d", s.Count), money(s.Total), money(s.Average))
	}
	return ChartIcon + " Spending by category\n" + t.String()
}

// RenderAnomalies renders flagged transactions and the risk summary.
func RenderAnomalies(anomalies []model.Anomaly, summary model.AnomalySummary) string {
	if len(anomalies) == 0 {
		return FormatSuccess("No anomalies detected") + "\n"
	}

	t := newTable("Score", "Type", "Transaction", "Description")
	for _, a := range anomalies {
		t.Row(
			RiskStyle(a.Score).Render(fmt.Sprintf("%.2f", a.Score)),
			string(a.Type),
			a.TransactionID,
			truncate(a.Description, 70),
		)
	}

	head := fmt.Sprintf("%s %d anomalies (high %d, medium %d, low %d, average score %.2f)",
		AlertIcon, summary.Total, summary.HighRisk, summary.MediumRisk, summary.LowRisk, summary.AverageScore)
	return head + "\n" + t.String() + "\n"
}

// RenderRules renders custom category rules.
func RenderRules(rules []model.CategoryRule) string {
	if len(rules) == 0 {
		return FormatInfo("No custom rules") + "\n"
	}
	t := newTable("ID", "Pattern", "Category", "Subcategory", "Confidence", "Created")
	for _, r := range rules {
		t.Row(
			fmt.Sprintf("%d", r.ID),
			r.Pattern,
			r.Category,
			r.Subcategory,
			fmt.Sprintf("%.2f", r.Confidence),
			r.CreatedAt.Format(dateLayout),
		)
	}
	return t.String() + "\n"
}

// RenderCards renders stored cards with their utilization.
func RenderCards(cards []model.CreditCard) string {
	if len(cards) == 0 {
		return FormatInfo("No cards stored") + "\n"
	}
	t := newTable("ID", "Issuer", "Ending", "Balance", "Limit", "Utilization", "APR", "Due", "Rewards")
	for _, c := range cards {
		due := "-"
		if c.DueDate != nil {
			due = c.DueDate.Format(dateLayout)
		}
		util := "-"
		if c.CreditLimit > 0 {
			u := finance.CreditUtilization(c.CurrentBalance, c.CreditLimit)
			util = fmt.Sprintf("%.1f%% %s", u.Rate, u.Status)
		}
		t.Row(
			fmt.Sprintf("%d", c.ID),
			c.Issuer,
			c.LastFour,
			money(c.CurrentBalance),
			money(c.CreditLimit),
			util,
			fmt.Sprintf("%.2f%%", c.APR*100),
			due,
			string(c.RewardType),
		)
	}
	return t.String() + "\n"
}

// RenderScenarios renders payoff projections.
func RenderScenarios(scenarios []finance.Scenario) string {
	t := newTable("Plan", "Payment", "Months", "Interest", "Total paid", "Saved")
	for _, s := range scenarios {
		months := fmt.Sprintf("%d", s.Months)
		if s.Months == finance.NeverPaidOff || math.IsInf(s.TotalInterest, 1) {
			months = "never"
		}
		saved := ""
		if s.InterestSaved != 0 {
			saved = money(s.InterestSaved)
		}
		t.Row(s.Name, money(s.MonthlyPayment), months, money(s.TotalInterest), money(s.TotalPaid), saved)
	}
	return t.String() + "\n"
}

// RenderOptimization renders the minimum versus optimized payment comparison.
func RenderOptimization(opt finance.Optimization) string {
	if opt.Message != "" {
		return FormatInfo(opt.Message) + "\n"
	}
	var scenarios []finance.Scenario
	if opt.Minimum != nil {
		scenarios = append(scenarios, *opt.Minimum)
	}
	if opt.Optimized != nil {
		scenarios = append(scenarios, *opt.Optimized)
	}
	head := fmt.Sprintf("Balance %s at %.2f%% APR", money(opt.Balance), opt.APR*100)
	return BoldStyle.Render(head) + "\n" + RenderScenarios(scenarios)
}

// RenderReminders renders upcoming or overdue payments.
func RenderReminders(title string, reminders []model.Reminder) string {
	var b strings.Builder
	b.WriteString(TitleStyle.Render(CalendarIcon+" "+title) + "\n")
	if len(reminders) == 0 {
		b.WriteString(FormatSuccess("Nothing due") + "\n")
		return b.String()
	}
	for _, r := range reminders {
		style := InfoStyle
		switch r.Urgency {
		case model.UrgencyCritical:
			style = ErrorStyle
		case model.UrgencyHigh:
			style = WarningStyle
		}
		line := finance.ReminderMessage(r)
		if r.DaysOverdue > 0 {
			style = ErrorStyle
			line = fmt.Sprintf("Card ending %s is %d days overdue: %s minimum, estimated late fee %s",
				r.LastFour, r.DaysOverdue, money(r.MinimumPayment), money(r.LateFee))
		}
		b.WriteString(style.Render(line) + "\n")
	}
	return b.String()
}

// RenderRewards renders a rewards analysis.
func RenderRewards(a finance.RewardsAnalysis) string {
	var b strings.Builder
	b.WriteString(TitleStyle.Render(fmt.Sprintf("%s Rewards (%s): %s earned", ChartIcon, a.RewardType, money(a.TotalEarned))) + "\n")

	t := newTable("Category", "Spending", "Rate", "Earned", "Best rate", "Missed")
	for _, c := range a.ByCategory {
		t.Row(
			c.Category,
			money(c.Spending),
			fmt.Sprintf("%.1f%%", c.Rate*100),
			money(c.Earned),
			fmt.Sprintf("%.1f%%", (c.Rate+c.ImprovementRate)*100),
			money(c.AdditionalRewards),
		)
	}
	b.WriteString(t.String() + "\n")

	for _, rec := range a.Recommendations {
		b.WriteString(FormatInfo(rec) + "\n")
	}
	return b.String()
}

// RenderInsights renders the spending overview.
func RenderInsights(in finance.Insights) string {
	var b strings.Builder
	if len(in.Monthly) > 0 {
		t := newTable("Month", "Spending")
		for _, m := range in.Monthly {
			t.Row(m.Month, money(m.Spending))
		}
		b.WriteString(t.String() + "\n")
	}
	if in.HighValue != nil {
		b.WriteString(fmt.Sprintf("High-value purchases: %d totaling %s (average %s)\n",
			in.HighValue.Count, money(in.HighValue.Total), money(in.HighValue.Average)))
	}
	for _, rec := range in.Recommendations {
		b.WriteString(FormatInfo(rec) + "\n")
	}
	return b.String()
}
