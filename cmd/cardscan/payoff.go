package main

import (
	"fmt"
	"strconv"

	"github.com/Veraticus/cardscan/internal/cli"
	"github.com/Veraticus/cardscan/internal/common"
	"github.com/Veraticus/cardscan/internal/finance"
	"github.com/Veraticus/cardscan/internal/model"
	"github.com/spf13/cobra"
)

func payoffCmd() *cobra.Command {
	var (
		jsonOut bool
		cardID  int
		balance float64
		minimum float64
		apr     float64
	)

	cmd := &cobra.Command{
		Use:   "payoff",
		Short: "Project how long a balance takes to pay off",
		Long: `Compare paying the minimum against larger fixed payments.

Use --card to project a stored card, or give --balance and --minimum
directly. APR is a percentage; without one the configured default is used.`,
		Example: `  cardscan payoff --card 1
  cardscan payoff --balance 4200 --minimum 95 --apr 24.99`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			card := model.CreditCard{
				CurrentBalance: balance,
				MinimumPayment: minimum,
				APR:            cfg.Finance.DefaultAPR,
			}
			if cmd.Flags().Changed("card") {
				store, err := initStorage(cmd.Context(), cfg)
				if err != nil {
					return err
				}
				defer func() { _ = store.Close() }()

				stored, err := store.GetCard(cmd.Context(), cardID)
				if err != nil {
					return common.NewUserError("Card "+strconv.Itoa(cardID)+" not found", err)
				}
				card = *stored
			} else if balance <= 0 {
				return common.NewUserError("Give --card or a positive --balance", nil)
			}
			if cmd.Flags().Changed("apr") {
				card.APR = apr / 100
			}

			opt := finance.OptimizePayment(card)
			scenarios := finance.InterestScenarios(card)
			if jsonOut {
				return cli.WriteJSON(cmd.OutOrStdout(), struct {
					Optimization finance.Optimization `json:"optimization"`
					Scenarios    []finance.Scenario   `json:"scenarios"`
				}{opt, scenarios})
			}

			out := cli.RenderOptimization(opt)
			if len(scenarios) > 0 {
				out += "\n" + cli.FormatTitle("Payment scenarios") + "\n" + cli.RenderScenarios(scenarios)
			}
			if card.CreditLimit > 0 {
				u := finance.CreditUtilization(card.CurrentBalance, card.CreditLimit)
				out += "\n" + cli.FormatInfo(fmt.Sprintf("Utilization %.1f%% (%s): %s", u.Rate, u.Status, u.Recommendation))
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), out)
			return err
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "write the projection as JSON")
	cmd.Flags().IntVar(&cardID, "card", 0, "ID of a stored card")
	cmd.Flags().Float64Var(&balance, "balance", 0, "balance to pay off")
	cmd.Flags().Float64Var(&minimum, "minimum", 0, "minimum monthly payment")
	cmd.Flags().Float64Var(&apr, "apr", 0, "annual percentage rate, e.g. 19.99")
	cmd.MarkFlagsMutuallyExclusive("card", "balance")
	return cmd
}
