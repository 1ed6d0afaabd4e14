package main

import (
	"fmt"
	"strings"

	"github.com/Veraticus/cardscan/internal/cli"
	"github.com/Veraticus/cardscan/internal/finance"
	"github.com/Veraticus/cardscan/internal/model"
	"github.com/spf13/cobra"
)

func categorizeCmd() *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "categorize FILE|DIR...",
		Short: "Categorize statement transactions",
		Long:  `Extract transactions and show the category, subcategory and confidence assigned to each.`,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withScanner(cmd, args, jsonOut, func(_ *scanner, out *scanOutcome) error {
				res := out.analysis()
				if jsonOut {
					return cli.WriteJSON(cmd.OutOrStdout(), struct {
						Transactions []model.CategorizedTransaction `json:"transactions"`
						Categories   []model.CategoryStats          `json:"categories"`
					}{res.Transactions, res.Categories})
				}

				_, err := fmt.Fprintln(cmd.OutOrStdout(), cli.RenderTransactions(res.Transactions)+"\n"+cli.RenderCategoryStats(res.Categories))
				return err
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "write the results as JSON")
	return cmd
}

func anomaliesCmd() *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "anomalies FILE|DIR...",
		Short: "Flag unusual transactions",
		Long: `Run anomaly detection over the transactions of the given statements.
At least ten transactions are needed before anything is flagged.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withScanner(cmd, args, jsonOut, func(_ *scanner, out *scanOutcome) error {
				res := out.analysis()
				if jsonOut {
					return cli.WriteJSON(cmd.OutOrStdout(), struct {
						Anomalies []model.Anomaly      `json:"anomalies"`
						Summary   model.AnomalySummary `json:"summary"`
					}{res.Anomalies, res.Summary})
				}

				_, err := fmt.Fprint(cmd.OutOrStdout(), cli.RenderAnomalies(res.Anomalies, res.Summary))
				return err
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "write the results as JSON")
	return cmd
}

func factsCmd() *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "facts FILE|DIR...",
		Short: "Show statement billing facts",
		Long:  `Show the balance, minimum payment, due date, card and issuer found in each statement.`,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withScanner(cmd, args, jsonOut, func(_ *scanner, out *scanOutcome) error {
				if jsonOut {
					facts := make(map[string]model.StatementFacts, len(out.Results))
					for _, res := range out.Results {
						facts[res.Name] = res.Facts
					}
					return cli.WriteJSON(cmd.OutOrStdout(), facts)
				}

				var b strings.Builder
				for _, res := range out.Results {
					b.WriteString(cli.FormatTitle(res.Name) + "\n")
					if rendered := cli.RenderFacts(res.Facts); rendered != "" {
						b.WriteString(rendered + "\n")
					} else {
						b.WriteString(cli.FormatWarning("No billing facts found") + "\n")
					}
				}
				_, err := fmt.Fprint(cmd.OutOrStdout(), b.String())
				return err
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "write the facts as JSON")
	return cmd
}

func rewardsCmd() *cobra.Command {
	var (
		jsonOut    bool
		rewardType string
	)

	cmd := &cobra.Command{
		Use:   "rewards FILE|DIR...",
		Short: "Estimate rewards earned on statement spending",
		Long: `Estimate the rewards a card earns on the scanned transactions, per category
and per month, and compare them with the best rates available.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withScanner(cmd, args, jsonOut, func(s *scanner, out *scanOutcome) error {
				kind := rewardType
				if kind == "" {
					kind = s.cfg.Finance.RewardType
				}
				analysis := finance.AnalyzeRewards(out.analysis().Transactions, model.RewardType(kind))
				if jsonOut {
					return cli.WriteJSON(cmd.OutOrStdout(), analysis)
				}

				_, err := fmt.Fprint(cmd.OutOrStdout(), cli.RenderRewards(analysis))
				return err
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "write the analysis as JSON")
	cmd.Flags().StringVar(&rewardType, "type", "", "reward type: cashback, points or miles (default from config)")
	return cmd
}
