package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/Veraticus/cardscan/internal/anomaly"
	"github.com/Veraticus/cardscan/internal/categorize"
	"github.com/Veraticus/cardscan/internal/document"
	"github.com/Veraticus/cardscan/internal/extract"
	"github.com/Veraticus/cardscan/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sequentialIDs() Option {
	n := 0
	return WithIDGenerator(func() string {
		n++
		return fmt.Sprintf("txn-%d", n)
	})
}

func newTestPipeline(opts ...Option) *Pipeline {
	return New(
		extract.New(),
		categorize.New(categorize.DefaultRegistry()),
		anomaly.NewDetector(anomaly.DefaultConfig()),
		opts...,
	)
}

func statementText() string {
	lines := []string{
		"CHASE SAPPHIRE STATEMENT",
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

func TestPipelineProcess(t *testing.T) {
	p := newTestPipeline(sequentialIDs())

	res, err := p.Process(context.Background(), model.RawDocument{
		Name: "january.txt",
		Body: statementText(),
		Type: model.DocumentText,
	})
	require.NoError(t, err)

	assert.Equal(t, "january.txt", res.Name)
	require.Len(t, res.Transactions, 12)
	assert.Equal(t, "chase", res.Facts.Issuer)
	require.NotNil(t, res.Facts.CurrentBalance)
	assert.InDelta(t, 642.18, *res.Facts.CurrentBalance, 0.001)

	ids := make(map[string]bool)
	for _, txn := range res.Transactions {
		assert.True(t, strings.HasPrefix(txn.ID, "txn-"))
		ids[txn.ID] = true
		assert.Equal(t, "9876", txn.CardLastFour)
	}
	assert.Len(t, ids, 12)

	netflix := 0
	for _, txn := range res.Transactions {
		if txn.Merchant == "NETFLIX.COM" {
			netflix++
			assert.Equal(t, "Entertainment", txn.Category)
			assert.True(t, txn.IsRecurring)
		}
	}
	assert.Equal(t, 5, netflix)
	assert.Len(t, res.Recurring, 5, "fuel purchases vary too much to be recurring")

	assert.Equal(t, len(res.Anomalies), res.Summary.Total)
	var total int
	for _, s := range res.Categories {
		total += s.Count
	}
	assert.Equal(t, 12, total)
}

func TestPipelineProcessDecodedStatement(t *testing.T) {
	p := newTestPipeline(sequentialIDs())
	balance := 812.45

	d := document.Decoded{
		Doc: model.RawDocument{Name: "march.qfx", Type: model.DocumentOFX},
		Statement: &document.Statement{
			Institution: "Discover Financial",
			Facts:       model.StatementFacts{CardLastFour: "4242", CurrentBalance: &balance},
			Transactions: []model.Transaction{
				{ID: "FIT1", Date: time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), Merchant: "SPOTIFY USA", Amount: 10.99, Source: model.SourceOFX},
				{Date: time.Date(2024, 3, 6, 0, 0, 0, 0, time.UTC), Merchant: "CVS PHARMACY", Amount: 22.10, Source: model.SourceOFX},
			},
		},
	}

	res, err := p.ProcessDecoded(context.Background(), d)
	require.NoError(t, err)

	assert.Equal(t, "march.qfx", res.Name)
	assert.Equal(t, "discover", res.Facts.Issuer)
	assert.Equal(t, "4242", res.Facts.CardLastFour)
	require.Len(t, res.Transactions, 2)
	assert.Equal(t, "FIT1", res.Transactions[0].ID, "existing IDs are kept")
	assert.Equal(t, "txn-1", res.Transactions[1].ID)
	assert.Equal(t, "Entertainment", res.Transactions[0].Category)
	assert.Equal(t, "Health & Fitness", res.Transactions[1].Category)
	assert.Empty(t, res.Anomalies, "too few transactions to analyze")
}

func TestPipelineProcessDecodedText(t *testing.T) {
	p := newTestPipeline()

	res, err := p.ProcessDecoded(context.Background(), document.Decoded{
		Doc: model.RawDocument{Name: "a.txt", Body: "01/15/2024 STARBUCKS COFFEE $4.50", Type: model.DocumentText},
	})
	require.NoError(t, err)
	require.Len(t, res.Transactions, 1)
	assert.NotEmpty(t, res.Transactions[0].ID)
}

func TestPipelineProcessAll(t *testing.T) {
	p := newTestPipeline(sequentialIDs())
	ctx := context.Background()

	first, err := p.Process(ctx, model.RawDocument{Name: "a.txt", Body: "01/15/2024 STARBUCKS COFFEE $4.50"})
	require.NoError(t, err)
	second, err := p.Process(ctx, model.RawDocument{Name: "b.txt", Body: "02/15/2024 STARBUCKS COFFEE $4.75"})
	require.NoError(t, err)

	all, err := p.ProcessAll(ctx, []*Result{first, second})
	require.NoError(t, err)
	require.Len(t, all.Transactions, 2)
	assert.Equal(t, "txn-1", all.Transactions[0].ID)
	assert.Equal(t, "txn-2", all.Transactions[1].ID)
}

type failingCategorizer struct{ err error }

func (f failingCategorizer) Categorize(context.Context, []model.Transaction) ([]model.CategorizedTransaction, error) {
	return nil, f.err
}

type failingDetector struct{ err error }

func (f failingDetector) Detect(context.Context, []model.CategorizedTransaction) ([]model.Anomaly, error) {
	return nil, f.err
}

func TestPipelineStageErrors(t *testing.T) {
	boom := errors.New("boom")
	doc := model.RawDocument{Name: "x.txt", Body: "01/15/2024 STARBUCKS COFFEE $4.50"}

	tests := []struct {
		pipeline *Pipeline
		name     string
	}{
		{
			name:     "categorizer",
			pipeline: New(extract.New(), failingCategorizer{err: boom}, anomaly.NewDetector(anomaly.DefaultConfig())),
		},
		{
			name:     "detector",
			pipeline: New(extract.New(), categorize.New(categorize.DefaultRegistry()), failingDetector{err: boom}),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.pipeline.Process(context.Background(), doc)
			assert.ErrorIs(t, err, boom)
			assert.Contains(t, err.Error(), "x.txt")
		})
	}
}

func TestPipelineCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestPipeline().Process(ctx, model.RawDocument{Body: "01/15/2024 STARBUCKS COFFEE $4.50"})
	assert.ErrorIs(t, err, context.Canceled)
}
