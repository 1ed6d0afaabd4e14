package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/Veraticus/cardscan/internal/cli"
	"github.com/Veraticus/cardscan/internal/common"
	"github.com/Veraticus/cardscan/internal/config"
	"github.com/Veraticus/cardscan/internal/document"
	"github.com/Veraticus/cardscan/internal/engine"
	"github.com/Veraticus/cardscan/internal/finance"
	"github.com/Veraticus/cardscan/internal/model"
	"github.com/Veraticus/cardscan/internal/storage"
	"github.com/spf13/cobra"
)

// scanOutcome is what a scan over one or more files produced.
type scanOutcome struct {
	Combined *engine.Result   `json:"combined,omitempty"`
	Results  []*engine.Result `json:"results"`
	Failed   []string         `json:"failed,omitempty"`
}

// analysis returns the result the single-purpose commands report on: the
// combined batch when several files were scanned, otherwise the only result.
func (o *scanOutcome) analysis() *engine.Result {
	if o.Combined != nil {
		return o.Combined
	}
	if len(o.Results) == 0 {
		return &engine.Result{}
	}
	return o.Results[0]
}

// scanner holds what every statement-reading command needs.
type scanner struct {
	cfg      *config.Config
	store    *storage.SQLiteStorage
	pipeline *engine.Pipeline
	loader   *document.Loader
}

func newScanner(ctx context.Context) (*scanner, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	store, err := initStorage(ctx, cfg)
	if err != nil {
		return nil, err
	}
	registry, err := buildRegistry(ctx, cfg, store)
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	return &scanner{
		cfg:      cfg,
		store:    store,
		pipeline: buildPipeline(cfg, registry),
		loader:   document.NewLoader(),
	}, nil
}

func (s *scanner) Close() error {
	return s.store.Close()
}

// scan processes every file. A file that fails is logged and skipped; the
// scan fails only when no file could be processed. With more than one
// result the transactions are analyzed again as a single batch.
func (s *scanner) scan(ctx context.Context, files []string, progress io.Writer) (*scanOutcome, error) {
	handler := cli.NewInterruptHandler(progress)
	ctx = handler.HandleInterrupts(ctx, len(files))
	defer handler.Stop()

	var bar interface{ Add(int) error }
	if progress != nil && len(files) > 1 {
		bar = cli.NewProgress(progress, len(files), "Scanning statements")
	}

	out := &scanOutcome{}
	for _, path := range files {
		if ctx.Err() != nil {
			break
		}

		res, err := s.scanFile(ctx, path)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				break
			}
			common.LogWarn(err, "Skipping file", common.Fields{"path": path})
			out.Failed = append(out.Failed, path)
		} else {
			out.Results = append(out.Results, res)
		}

		handler.Completed()
		if bar != nil {
			if err := bar.Add(1); err != nil {
				slog.Debug("Failed to update progress bar", "error", err)
			}
		}
	}

	if len(out.Results) == 0 {
		if handler.WasInterrupted() {
			return nil, common.NewUserError("Scan interrupted before any file was processed", context.Canceled)
		}
		return nil, common.NewUserError("No statement could be processed", common.ErrUnreadableDocument)
	}

	if len(out.Results) > 1 && !handler.WasInterrupted() {
		combined, err := s.pipeline.ProcessAll(ctx, out.Results)
		if err != nil {
			return nil, fmt.Errorf("failed to analyze combined statements: %w", err)
		}
		combined.Name = fmt.Sprintf("%d statements", len(out.Results))
		out.Combined = combined
	}
	return out, nil
}

func (s *scanner) scanFile(ctx context.Context, path string) (*engine.Result, error) {
	decoded, err := s.loader.Load(ctx, path)
	if err != nil {
		return nil, err
	}
	return s.pipeline.ProcessDecoded(ctx, decoded)
}

// saveCards records the billing facts of each result against the matching
// stored card, creating the card when none exists.
func (s *scanner) saveCards(ctx context.Context, results []*engine.Result) ([]model.CreditCard, error) {
	var saved []model.CreditCard
	for _, res := range results {
		facts := res.Facts
		if facts.Issuer == "" || facts.CardLastFour == "" {
			slog.Debug("Statement has no card identity", "name", res.Name)
			continue
		}

		card, err := s.store.FindCard(ctx, facts.Issuer, facts.CardLastFour)
		switch {
		case errors.Is(err, common.ErrNotFound):
			card = &model.CreditCard{
				Issuer:     facts.Issuer,
				LastFour:   facts.CardLastFour,
				RewardType: model.RewardType(s.cfg.Finance.RewardType),
				APR:        s.cfg.Finance.DefaultAPR,
			}
		case err != nil:
			return nil, fmt.Errorf("failed to look up card: %w", err)
		}

		if facts.CurrentBalance != nil {
			card.CurrentBalance = *facts.CurrentBalance
		}
		if facts.MinimumPayment != nil {
			card.MinimumPayment = *facts.MinimumPayment
		}
		if facts.DueDate != nil {
			due := *facts.DueDate
			card.DueDate = &due
		}

		if err := s.store.SaveCard(ctx, card); err != nil {
			return nil, fmt.Errorf("failed to save card %s %s: %w", card.Issuer, card.LastFour, err)
		}
		saved = append(saved, *card)
	}
	return saved, nil
}

// withScanner runs fn with a scanner over the files named by args.
func withScanner(cmd *cobra.Command, args []string, jsonOut bool, fn func(*scanner, *scanOutcome) error) error {
	ctx := cmd.Context()
	files, err := expandInputs(args)
	if err != nil {
		return err
	}

	s, err := newScanner(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	var progress io.Writer
	if !jsonOut {
		progress = cmd.ErrOrStderr()
	}
	out, err := s.scan(ctx, files, progress)
	if err != nil {
		return err
	}
	return fn(s, out)
}

func scanCmd() *cobra.Command {
	var (
		jsonOut   bool
		saveCards bool
		insights  bool
	)

	cmd := &cobra.Command{
		Use:   "scan FILE|DIR...",
		Short: "Analyze credit card statements",
		Long: `Extract, categorize and check transactions in statement files.

Supported inputs are PDF statements, .eml alert emails, OFX/QFX downloads
and plain text. Directories are searched for supported files. When several
files are scanned their transactions are also analyzed together, which
gives anomaly detection more history to work with.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withScanner(cmd, args, jsonOut, func(s *scanner, out *scanOutcome) error {
				w := cmd.OutOrStdout()
				var cards []model.CreditCard
				if saveCards {
					var err error
					if cards, err = s.saveCards(cmd.Context(), out.Results); err != nil {
						return err
					}
				}

				if jsonOut {
					return cli.WriteJSON(w, out)
				}

				var b strings.Builder
				for _, res := range out.Results {
					b.WriteString(cli.RenderResult(res) + "\n")
				}
				if out.Combined != nil {
					b.WriteString(cli.FormatTitle("Combined analysis") + "\n")
					b.WriteString(cli.RenderCategoryStats(out.Combined.Categories) + "\n")
					b.WriteString(cli.RenderAnomalies(out.Combined.Anomalies, out.Combined.Summary))
				}
				if insights {
					b.WriteString(cli.RenderInsights(finance.SpendingInsights(out.analysis().Transactions)))
				}
				for _, path := range out.Failed {
					b.WriteString(cli.FormatWarning("Could not process "+path) + "\n")
				}
				if len(cards) > 0 {
					b.WriteString(cli.FormatSuccess(fmt.Sprintf("Updated %d card(s) from statement facts", len(cards))) + "\n")
				}
				_, err := fmt.Fprint(w, b.String())
				return err
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "write the results as JSON")
	cmd.Flags().BoolVar(&saveCards, "save-cards", false, "store balance, minimum payment and due date on the matching card")
	cmd.Flags().BoolVar(&insights, "insights", false, "include spending insights")
	return cmd
}
