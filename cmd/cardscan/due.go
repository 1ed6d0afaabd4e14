package main

import (
	"fmt"
	"time"

	"github.com/Veraticus/cardscan/internal/cli"
	"github.com/Veraticus/cardscan/internal/common"
	"github.com/Veraticus/cardscan/internal/finance"
	"github.com/Veraticus/cardscan/internal/model"
	"github.com/spf13/cobra"
)

func dueCmd() *cobra.Command {
	var (
		jsonOut bool
		date    string
		days    int
	)

	cmd := &cobra.Command{
		Use:   "due",
		Short: "Show upcoming and overdue card payments",
		Long: `List stored cards with a payment due soon, and cards whose due date has
passed along with an estimate of the late fee.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			today := time.Now()
			if date != "" {
				parsed, err := time.ParseInLocation("2006-01-02", date, time.Local)
				if err != nil {
					return common.NewUserError("Date must look like 2024-03-15", err)
				}
				today = parsed
			}

			cfg, store, err := openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if !cmd.Flags().Changed("days") {
				days = cfg.Reminders.DaysAhead
			}
			if days < 0 {
				return common.NewUserError("--days cannot be negative", nil)
			}

			cards, err := store.ListCards(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to list cards: %w", err)
			}

			upcoming := finance.UpcomingDueDates(cards, today, days)
			overdue := finance.OverduePayments(cards, today)
			if jsonOut {
				return cli.WriteJSON(cmd.OutOrStdout(), struct {
					Upcoming []model.Reminder `json:"upcoming"`
					Overdue  []model.Reminder `json:"overdue"`
				}{upcoming, overdue})
			}

			out := cli.RenderReminders(fmt.Sprintf("Due in the next %d days", days), upcoming)
			if len(overdue) > 0 {
				out += "\n" + cli.RenderReminders("Overdue", overdue)
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), out)
			return err
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "write the reminders as JSON")
	cmd.Flags().StringVar(&date, "date", "", "treat this day as today (YYYY-MM-DD)")
	cmd.Flags().IntVar(&days, "days", 7, "how many days ahead to look")
	return cmd
}
