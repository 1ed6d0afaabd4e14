// Package engine runs a decoded statement through extraction, categorization
// and anomaly detection.
package engine

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Veraticus/cardscan/internal/anomaly"
	"github.com/Veraticus/cardscan/internal/categorize"
	"github.com/Veraticus/cardscan/internal/document"
	"github.com/Veraticus/cardscan/internal/extract"
	"github.com/Veraticus/cardscan/internal/model"
	"github.com/google/uuid"
)

// Result is everything the pipeline learned from one document, or from a
// batch of documents when produced by ProcessAll.
type Result struct {
	Name         string                         `json:"name,omitempty"`
	EmailType    model.EmailType                `json:"email_type,omitempty"`
	Facts        model.StatementFacts           `json:"facts"`
	Transactions []model.CategorizedTransaction `json:"transactions"`
	Recurring    []model.CategorizedTransaction `json:"-"`
	Anomalies    []model.Anomaly                `json:"anomalies"`
	Categories   []model.CategoryStats          `json:"categories"`
	Summary      model.AnomalySummary           `json:"anomaly_summary"`
}

// Pipeline wires the extraction, categorization and detection stages.
type Pipeline struct {
	extractor   Extractor
	categorizer Categorizer
	detector    Detector
	newID       func() string
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithIDGenerator replaces the uuid generator used for transactions that
// arrive without an ID.
func WithIDGenerator(fn func() string) Option {
	return func(p *Pipeline) {
		p.newID = fn
	}
}

// New creates a Pipeline from its stages.
func New(extractor Extractor, categorizer Categorizer, detector Detector, opts ...Option) *Pipeline {
	p := &Pipeline{
		extractor:   extractor,
		categorizer: categorizer,
		detector:    detector,
		newID:       uuid.NewString,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// NewDefault builds a Pipeline on the standard extractor and detector.
func NewDefault(registry *categorize.Registry, detectorCfg anomaly.Config, opts ...categorize.Option) *Pipeline {
	return New(extract.New(), categorize.New(registry, opts...), anomaly.NewDetector(detectorCfg))
}

// Process runs one text document through the pipeline.
func (p *Pipeline) Process(ctx context.Context, doc model.RawDocument) (*Result, error) {
	out := p.extractor.ExtractDocument(doc)
	res, err := p.analyze(ctx, out.Transactions)
	if err != nil {
		return nil, fmt.Errorf("failed to process %s: %w", doc.Name, err)
	}
	res.Name = doc.Name
	res.EmailType = out.EmailType
	res.Facts = out.Facts

	slog.Info("Processed document",
		"name", doc.Name,
		"type", doc.Type,
		"transactions", len(res.Transactions),
		"anomalies", len(res.Anomalies))
	return res, nil
}

// ProcessDecoded runs a loaded file through the pipeline. Structured
// statements skip text extraction.
func (p *Pipeline) ProcessDecoded(ctx context.Context, d document.Decoded) (*Result, error) {
	if d.Statement == nil {
		return p.Process(ctx, d.Doc)
	}

	res, err := p.analyze(ctx, d.Statement.Transactions)
	if err != nil {
		return nil, fmt.Errorf("failed to process %s: %w", d.Doc.Name, err)
	}
	res.Name = d.Doc.Name
	res.Facts = d.Statement.Facts
	if res.Facts.Issuer == "" {
		res.Facts.Issuer = extract.DetectIssuer(d.Statement.Institution)
	}

	slog.Info("Processed statement download",
		"name", d.Doc.Name,
		"institution", d.Statement.Institution,
		"transactions", len(res.Transactions),
		"anomalies", len(res.Anomalies))
	return res, nil
}

// ProcessAll analyzes the transactions of several already processed
// documents as one batch. Anomaly detection needs history, so scanning a
// year of statements together finds more than scanning them one by one.
func (p *Pipeline) ProcessAll(ctx context.Context, results []*Result) (*Result, error) {
	var txns []model.Transaction
	for _, r := range results {
		for _, t := range r.Transactions {
			txns = append(txns, t.Transaction)
		}
	}
	return p.analyze(ctx, txns)
}

func (p *Pipeline) analyze(ctx context.Context, txns []model.Transaction) (*Result, error) {
	for i := range txns {
		if txns[i].ID == "" {
			txns[i].ID = p.newID()
		}
	}

	categorized, err := p.categorizer.Categorize(ctx, txns)
	if err != nil {
		return nil, err
	}
	recurring := categorize.MarkRecurring(categorized)

	anomalies, err := p.detector.Detect(ctx, categorized)
	if err != nil {
		return nil, err
	}

	return &Result{
		Transactions: categorized,
		Recurring:    recurring,
		Anomalies:    anomalies,
		Categories:   categorize.Statistics(categorized),
		Summary:      anomaly.Summarize(anomalies),
	}, nil
}
