package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/Veraticus/cardscan/internal/cli"
	"github.com/Veraticus/cardscan/internal/common"
	"github.com/Veraticus/cardscan/internal/model"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

func cardsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cards",
		Short: "Manage stored credit cards",
		Long: `Stored cards feed the payoff, due-date and utilization reports.
'cardscan scan --save-cards' keeps their balances current from statements.`,
	}

	cmd.AddCommand(listCardsCmd())
	cmd.AddCommand(addCardCmd())
	cmd.AddCommand(updateCardCmd())
	cmd.AddCommand(deleteCardCmd())
	return cmd
}

// cardFlags are the editable card fields. APR is entered as a percentage.
type cardFlags struct {
	issuer     string
	lastFour   string
	due        string
	rewardType string
	limit      float64
	balance    float64
	minimum    float64
	apr        float64
}

func (f *cardFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&f.issuer, "issuer", "", "card issuer, e.g. chase")
	fs.StringVar(&f.lastFour, "last-four", "", "last four digits of the card number")
	fs.StringVar(&f.due, "due", "", "payment due date (YYYY-MM-DD)")
	fs.StringVar(&f.rewardType, "rewards", "", "reward type: cashback, points or miles")
	fs.Float64Var(&f.limit, "limit", 0, "credit limit")
	fs.Float64Var(&f.balance, "balance", 0, "current balance")
	fs.Float64Var(&f.minimum, "minimum", 0, "minimum payment")
	fs.Float64Var(&f.apr, "apr", 0, "annual percentage rate, e.g. 19.99")
}

// apply copies the flags that were set onto card.
func (f *cardFlags) apply(fs *pflag.FlagSet, card *model.CreditCard) error {
	if fs.Changed("issuer") {
		card.Issuer = f.issuer
	}
	if fs.Changed("last-four") {
		card.LastFour = f.lastFour
	}
	if fs.Changed("rewards") {
		card.RewardType = model.RewardType(f.rewardType)
	}
	if fs.Changed("limit") {
		card.CreditLimit = f.limit
	}
	if fs.Changed("balance") {
		card.CurrentBalance = f.balance
	}
	if fs.Changed("minimum") {
		card.MinimumPayment = f.minimum
	}
	if fs.Changed("apr") {
		card.APR = f.apr / 100
	}
	if fs.Changed("due") {
		if f.due == "" {
			card.DueDate = nil
			return nil
		}
		due, err := time.Parse("2006-01-02", f.due)
		if err != nil {
			return common.NewUserError("Due date must look like 2024-03-15", err)
		}
		card.DueDate = &due
	}
	return nil
}

func listCardsCmd() *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored cards",
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, store, err := openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			cards, err := store.ListCards(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to list cards: %w", err)
			}
			if jsonOut {
				return cli.WriteJSON(cmd.OutOrStdout(), cards)
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), cli.RenderCards(cards))
			return err
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "write the cards as JSON")
	return cmd
}

func addCardCmd() *cobra.Command {
	var flags cardFlags

	cmd := &cobra.Command{
		Use:     "add",
		Short:   "Add a card",
		Example: `  cardscan cards add --issuer chase --last-four 4242 --limit 5000 --balance 1250 --minimum 35 --apr 21.99 --due 2024-03-15`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, store, err := openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			card := model.CreditCard{
				RewardType: model.RewardType(cfg.Finance.RewardType),
				APR:        cfg.Finance.DefaultAPR,
			}
			if err := flags.apply(cmd.Flags(), &card); err != nil {
				return err
			}
			if err := store.SaveCard(cmd.Context(), &card); err != nil {
				return common.NewUserError("Could not save card", err)
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Added %s card ending in %s (ID %d)", card.Issuer, card.LastFour, card.ID)))
			return err
		},
	}

	flags.register(cmd.Flags())
	_ = cmd.MarkFlagRequired("issuer")
	_ = cmd.MarkFlagRequired("last-four")
	return cmd
}

func updateCardCmd() *cobra.Command {
	var flags cardFlags

	cmd := &cobra.Command{
		Use:   "update ID",
		Short: "Update a card",
		Long:  `Update the fields given as flags. Pass --due "" to clear the due date.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return common.NewUserError("Card ID must be a number", err)
			}

			_, store, err := openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			card, err := store.GetCard(cmd.Context(), id)
			if err != nil {
				return fmt.Errorf("failed to get card %d: %w", id, err)
			}
			if err := flags.apply(cmd.Flags(), card); err != nil {
				return err
			}
			if err := store.SaveCard(cmd.Context(), card); err != nil {
				return common.NewUserError("Could not save card", err)
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Updated card %d", id)))
			return err
		},
	}

	flags.register(cmd.Flags())
	return cmd
}

func deleteCardCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a card",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return common.NewUserError("Card ID must be a number", err)
			}

			_, store, err := openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if err := store.DeleteCard(cmd.Context(), id); err != nil {
				return fmt.Errorf("failed to delete card %d: %w", id, err)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Deleted card %d", id)))
			return err
		},
	}
}
