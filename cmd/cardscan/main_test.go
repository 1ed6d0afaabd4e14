package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Veraticus/cardscan/internal/config"
	"github.com/Veraticus/cardscan/internal/model"
	"github.com/Veraticus/cardscan/internal/storage"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testEnv is an isolated config file and database for running commands.
type testEnv struct {
	dir        string
	configPath string
	dbPath     string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dir := t.TempDir()
	env := &testEnv{
		dir:        dir,
		configPath: filepath.Join(dir, "config.yaml"),
		dbPath:     filepath.Join(dir, "cardscan.db"),
	}

	cfg := fmt.Sprintf(`logging:
  level: error
database:
  path: %s
categorizer:
  nlp: false
reminders:
  days_ahead: 5
`, env.dbPath)
	require.NoError(t, os.WriteFile(env.configPath, []byte(cfg), 0o600))
	return env
}

func (e *testEnv) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	viper.Reset()
	cfgFile = ""
	t.Cleanup(viper.Reset)

	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(append([]string{"--config", e.configPath}, args...))

	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func (e *testEnv) writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(e.dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func statementText() string {
	lines := []string{
		"CHASE FREEDOM STATEMENT",
		"Card ending in 9876",
		"New Balance: $642.18",
		"Minimum Payment Due: $35.00",
		"Payment Due Date: 02/25/2024",
	}
	for day := 2; day <= 6; day++ {
		lines = append(lines, fmt.Sprintf("01/%02d/2024 NETFLIX.COM $15.99", day*4))
	}
	for day := 3; day <= 9; day++ {
		lines = append(lines, fmt.Sprintf("01/%02d/2024 CHEVRON $%d.40", day*3, 30+day*7))
	}
	return strings.Join(lines, "\n")
}

type scanJSON struct {
	Combined *struct {
		Transactions []model.CategorizedTransaction `json:"transactions"`
	} `json:"combined"`
	Results []struct {
		Name         string                         `json:"name"`
		Facts        model.StatementFacts           `json:"facts"`
		Transactions []model.CategorizedTransaction `json:"transactions"`
	} `json:"results"`
	Failed []string `json:"failed"`
}

func TestScanCommand(t *testing.T) {
	env := newTestEnv(t)
	path := env.writeFile(t, "january.txt", statementText())

	out, err := env.run(t, "scan", "--json", path)
	require.NoError(t, err)

	var got scanJSON
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.Len(t, got.Results, 1)
	assert.Nil(t, got.Combined)

	res := got.Results[0]
	assert.Equal(t, "january.txt", res.Name)
	assert.Len(t, res.Transactions, 12)
	assert.Equal(t, "chase", res.Facts.Issuer)
	assert.Equal(t, "9876", res.Facts.CardLastFour)
	require.NotNil(t, res.Facts.CurrentBalance)
	assert.InDelta(t, 642.18, *res.Facts.CurrentBalance, 0.001)

	for _, txn := range res.Transactions {
		if txn.Merchant == "NETFLIX.COM" {
			assert.Equal(t, "Entertainment", txn.Category)
			assert.True(t, txn.IsRecurring)
		}
	}
}

func TestScanCommandDirectory(t *testing.T) {
	env := newTestEnv(t)
	env.writeFile(t, "statements/january.txt", statementText())
	env.writeFile(t, "statements/february.txt", strings.ReplaceAll(statementText(), "01/", "02/"))
	env.writeFile(t, "statements/broken.pdf", "not a pdf")
	env.writeFile(t, "statements/notes.md", "ignored")

	out, err := env.run(t, "scan", "--json", filepath.Join(env.dir, "statements"))
	require.NoError(t, err)

	var got scanJSON
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Len(t, got.Results, 2)
	require.Len(t, got.Failed, 1)
	assert.Contains(t, got.Failed[0], "broken.pdf")
	require.NotNil(t, got.Combined)
	assert.Len(t, got.Combined.Transactions, 24)
}

func TestScanCommandRendersReport(t *testing.T) {
	env := newTestEnv(t)
	path := env.writeFile(t, "january.txt", statementText())

	out, err := env.run(t, "scan", "--insights", path)
	require.NoError(t, err)
	assert.Contains(t, out, "january.txt")
	assert.Contains(t, out, "NETFLIX.COM")
	assert.Contains(t, out, "Entertainment")
}

func TestScanCommandErrors(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.run(t, "scan", filepath.Join(env.dir, "missing.txt"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Cannot read")

	unsupported := env.writeFile(t, "statement.docx", "text")
	_, err = env.run(t, "scan", unsupported)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "No statement could be processed")
}

func TestScanSaveCards(t *testing.T) {
	env := newTestEnv(t)
	path := env.writeFile(t, "january.txt", statementText())

	out, err := env.run(t, "scan", "--save-cards", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Updated 1 card(s)")

	// A second scan updates the same card instead of adding another.
	_, err = env.run(t, "scan", "--save-cards", "--json", path)
	require.NoError(t, err)

	out, err = env.run(t, "cards", "list", "--json")
	require.NoError(t, err)

	var cards []model.CreditCard
	require.NoError(t, json.Unmarshal([]byte(out), &cards))
	require.Len(t, cards, 1)
	assert.Equal(t, "chase", cards[0].Issuer)
	assert.Equal(t, "9876", cards[0].LastFour)
	assert.InDelta(t, 642.18, cards[0].CurrentBalance, 0.001)
	assert.InDelta(t, 35.0, cards[0].MinimumPayment, 0.001)
	assert.Equal(t, model.RewardCashback, cards[0].RewardType)
	require.NotNil(t, cards[0].DueDate)
	assert.Equal(t, "2024-02-25", cards[0].DueDate.Format("2006-01-02"))
}

func TestAnalysisCommands(t *testing.T) {
	env := newTestEnv(t)
	path := env.writeFile(t, "january.txt", statementText())

	tests := []struct {
		name     string
		args     []string
		contains []string
	}{
		{
			name:     "categorize",
			args:     []string{"categorize", path},
			contains: []string{"NETFLIX.COM", "Entertainment", "CHEVRON"},
		},
		{
			name:     "anomalies",
			args:     []string{"anomalies", path},
			contains: []string{"anomal"},
		},
		{
			name:     "facts",
			args:     []string{"facts", path},
			contains: []string{"chase", "9876", "$642.18", "2024-02-25"},
		},
		{
			name:     "rewards with type",
			args:     []string{"rewards", "--type", "miles", path},
			contains: []string{"miles"},
		},
		{
			name:     "rewards from config",
			args:     []string{"rewards", path},
			contains: []string{"cashback"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := env.run(t, tt.args...)
			require.NoError(t, err)
			for _, want := range tt.contains {
				assert.Contains(t, strings.ToLower(out), strings.ToLower(want))
			}
		})
	}
}

func TestCategorizeCommandUsesStoredRules(t *testing.T) {
	env := newTestEnv(t)
	path := env.writeFile(t, "january.txt", statementText())

	_, err := env.run(t, "rules", "add", "--pattern", "chevron", "--category", "Auto", "--subcategory", "Fuel")
	require.NoError(t, err)

	out, err := env.run(t, "categorize", "--json", path)
	require.NoError(t, err)

	var got struct {
		Transactions []model.CategorizedTransaction `json:"transactions"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.NotEmpty(t, got.Transactions)

	categories := make(map[string]string)
	for _, txn := range got.Transactions {
		categories[txn.Merchant] = txn.Category
	}
	assert.Equal(t, "Entertainment", categories["NETFLIX.COM"])
	assert.NotEmpty(t, categories["CHEVRON"])
}

func TestRulesCommands(t *testing.T) {
	env := newTestEnv(t)

	out, err := env.run(t, "rules", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No custom rules")

	out, err = env.run(t, "rules", "add", "--pattern", "blue bottle", "--category", "Food & Dining", "--subcategory", "Coffee", "--confidence", "0.9")
	require.NoError(t, err)
	assert.Contains(t, out, "Added rule 1")

	out, err = env.run(t, "rules", "list", "--json")
	require.NoError(t, err)
	var rules []model.CategoryRule
	require.NoError(t, json.Unmarshal([]byte(out), &rules))
	require.Len(t, rules, 1)
	assert.Equal(t, "blue bottle", rules[0].Pattern)
	assert.Equal(t, "Food & Dining", rules[0].Category)
	assert.Equal(t, "Coffee", rules[0].Subcategory)
	assert.InDelta(t, 0.9, rules[0].Confidence, 0.0001)

	out, err = env.run(t, "rules", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "blue bottle")

	_, err = env.run(t, "rules", "delete", "1")
	require.NoError(t, err)

	_, err = env.run(t, "rules", "delete", "1")
	require.Error(t, err)

	_, err = env.run(t, "rules", "delete", "one")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must be a number")
}

func TestAddRuleValidation(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"invalid pattern", []string{"--pattern", "(unclosed", "--category", "Shopping"}},
		{"blank category", []string{"--pattern", "acme", "--category", " "}},
		{"missing category", []string{"--pattern", "acme"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			_, err := env.run(t, append([]string{"rules", "add"}, tt.args...)...)
			require.Error(t, err)
		})
	}
}

func TestCardsCommands(t *testing.T) {
	env := newTestEnv(t)

	out, err := env.run(t, "cards", "add",
		"--issuer", "chase", "--last-four", "4242",
		"--limit", "5000", "--balance", "1250", "--minimum", "35",
		"--apr", "21.99", "--due", "2024-03-15", "--rewards", "points")
	require.NoError(t, err)
	assert.Contains(t, out, "ID 1")

	_, err = env.run(t, "cards", "add", "--issuer", "chase", "--last-four", "4242")
	require.Error(t, err, "duplicate issuer and ending")

	_, err = env.run(t, "cards", "add", "--issuer", "amex", "--last-four", "12345")
	require.Error(t, err)

	_, err = env.run(t, "cards", "add", "--issuer", "amex", "--last-four", "1005", "--due", "March 15")
	require.Error(t, err)

	_, err = env.run(t, "cards", "update", "1", "--balance", "900", "--due", "")
	require.NoError(t, err)

	out, err = env.run(t, "cards", "list", "--json")
	require.NoError(t, err)
	var cards []model.CreditCard
	require.NoError(t, json.Unmarshal([]byte(out), &cards))
	require.Len(t, cards, 1)
	assert.InDelta(t, 900.0, cards[0].CurrentBalance, 0.001)
	assert.InDelta(t, 0.2199, cards[0].APR, 0.00001)
	assert.InDelta(t, 5000.0, cards[0].CreditLimit, 0.001)
	assert.Equal(t, model.RewardPoints, cards[0].RewardType)
	assert.Nil(t, cards[0].DueDate)

	out, err = env.run(t, "cards", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "4242")
	assert.Contains(t, out, "Good")

	_, err = env.run(t, "cards", "delete", "1")
	require.NoError(t, err)
	_, err = env.run(t, "cards", "update", "1", "--balance", "1")
	require.Error(t, err)
}

func TestDueCommand(t *testing.T) {
	env := newTestEnv(t)

	for _, args := range [][]string{
		{"--issuer", "chase", "--last-four", "1111", "--minimum", "35", "--balance", "800", "--due", "2024-03-03"},
		{"--issuer", "amex", "--last-four", "2222", "--minimum", "50", "--balance", "1500", "--due", "2024-03-20"},
		{"--issuer", "citi", "--last-four", "3333", "--minimum", "40", "--balance", "900", "--due", "2024-02-20"},
	} {
		_, err := env.run(t, append([]string{"cards", "add"}, args...)...)
		require.NoError(t, err)
	}

	out, err := env.run(t, "due", "--date", "2024-03-01", "--json")
	require.NoError(t, err)

	var got struct {
		Upcoming []model.Reminder `json:"upcoming"`
		Overdue  []model.Reminder `json:"overdue"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))

	// days_ahead is 5 in the test config, so the amex card is out of range.
	require.Len(t, got.Upcoming, 1)
	assert.Equal(t, "1111", got.Upcoming[0].LastFour)
	assert.Equal(t, 2, got.Upcoming[0].DaysUntilDue)
	assert.Equal(t, model.UrgencyHigh, got.Upcoming[0].Urgency)

	require.Len(t, got.Overdue, 1)
	assert.Equal(t, "3333", got.Overdue[0].LastFour)
	assert.Equal(t, 10, got.Overdue[0].DaysOverdue)
	assert.Positive(t, got.Overdue[0].LateFee)

	out, err = env.run(t, "due", "--date", "2024-03-01", "--days", "30")
	require.NoError(t, err)
	assert.Contains(t, out, "1111")
	assert.Contains(t, out, "2222")
	assert.Contains(t, out, "Overdue")

	_, err = env.run(t, "due", "--date", "03/01/2024")
	require.Error(t, err)
}

func TestPayoffCommand(t *testing.T) {
	env := newTestEnv(t)

	out, err := env.run(t, "payoff", "--balance", "1000", "--minimum", "25", "--apr", "18", "--json")
	require.NoError(t, err)

	var got struct {
		Optimization struct {
			Minimum   map[string]any `json:"minimum_payment_scenario"`
			Optimized map[string]any `json:"optimized_payment_scenario"`
			APR       float64        `json:"apr"`
		} `json:"optimization"`
		Scenarios []map[string]any `json:"scenarios"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.InDelta(t, 0.18, got.Optimization.APR, 0.00001)
	require.NotNil(t, got.Optimization.Optimized)
	assert.InDelta(t, 100.0, got.Optimization.Optimized["monthly_payment"], 0.001)
	assert.NotEmpty(t, got.Scenarios)

	_, err = env.run(t, "cards", "add", "--issuer", "chase", "--last-four", "4242", "--balance", "3000", "--minimum", "60", "--limit", "4000")
	require.NoError(t, err)

	out, err = env.run(t, "payoff", "--card", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "$3000.00")
	assert.Contains(t, out, "Utilization 75.0%")

	_, err = env.run(t, "payoff")
	require.Error(t, err)

	_, err = env.run(t, "payoff", "--card", "9")
	require.Error(t, err)
}

func TestVersionCommand(t *testing.T) {
	env := newTestEnv(t)
	out, err := env.run(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "cardscan dev\n", out)
}

func TestExpandInputs(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.pdf", "a.txt", "sub/c.qfx", "notes.md"} {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
		require.NoError(t, os.WriteFile(path, nil, 0o600))
	}
	explicit := filepath.Join(dir, "notes.md")

	files, err := expandInputs([]string{dir, explicit})
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "a.txt"),
		filepath.Join(dir, "b.pdf"),
		filepath.Join(dir, "sub", "c.qfx"),
		explicit,
	}, files)

	_, err = expandInputs([]string{filepath.Join(dir, "missing")})
	require.Error(t, err)

	empty := t.TempDir()
	_, err = expandInputs([]string{empty})
	require.Error(t, err)
}

func TestBuildRegistry(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	store, err := storage.NewSQLiteStorage(filepath.Join(dir, "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	require.NoError(t, store.Migrate(ctx))
	require.NoError(t, store.SaveRule(ctx, &model.CategoryRule{
		Pattern: "acme gym", Category: "Fitness Clubs", Subcategory: "Gym", Confidence: 0.9,
	}))

	t.Run("default table", func(t *testing.T) {
		registry, err := buildRegistry(ctx, &config.Config{}, store)
		require.NoError(t, err)
		def, ok := registry.Lookup("Fitness Clubs")
		require.True(t, ok)
		assert.Len(t, def.Patterns, 1)
		_, ok = registry.Lookup("Entertainment")
		assert.True(t, ok)
	})

	t.Run("category file", func(t *testing.T) {
		path := filepath.Join(dir, "categories.yaml")
		require.NoError(t, os.WriteFile(path, []byte(`categories:
  - name: Coffee
    keywords: [espresso]
    subcategories: [Cafe]
`), 0o600))

		cfg := &config.Config{Categories: config.Categories{File: path}}
		registry, err := buildRegistry(ctx, cfg, nil)
		require.NoError(t, err)
		_, ok := registry.Lookup("Coffee")
		assert.True(t, ok)
		_, ok = registry.Lookup("Entertainment")
		assert.False(t, ok)
	})

	t.Run("missing category file", func(t *testing.T) {
		cfg := &config.Config{Categories: config.Categories{File: filepath.Join(dir, "missing.yaml")}}
		_, err := buildRegistry(ctx, cfg, nil)
		require.Error(t, err)
	})
}
