package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/Veraticus/cardscan/internal/categorize"
	"github.com/Veraticus/cardscan/internal/cli"
	"github.com/Veraticus/cardscan/internal/common"
	"github.com/Veraticus/cardscan/internal/config"
	"github.com/Veraticus/cardscan/internal/model"
	"github.com/Veraticus/cardscan/internal/storage"
	"github.com/spf13/cobra"
)

// openStore loads configuration and opens the database.
func openStore(ctx context.Context) (*config.Config, *storage.SQLiteStorage, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	store, err := initStorage(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	return cfg, store, nil
}

func rulesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "Manage custom categorization rules",
		Long: `Custom rules add a case-insensitive regular expression to a category.
They are checked along with the built-in patterns on every scan.`,
	}

	cmd.AddCommand(listRulesCmd())
	cmd.AddCommand(addRuleCmd())
	cmd.AddCommand(deleteRuleCmd())
	return cmd
}

func listRulesCmd() *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List custom rules",
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, store, err := openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			rules, err := store.ListRules(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to list rules: %w", err)
			}

			if jsonOut {
				return cli.WriteJSON(cmd.OutOrStdout(), rules)
			}
			if len(rules) == 0 {
				_, err = fmt.Fprintln(cmd.OutOrStdout(), cli.FormatInfo("No custom rules. Use 'cardscan rules add' to create one."))
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), cli.RenderRules(rules))
			return err
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "write the rules as JSON")
	return cmd
}

func addRuleCmd() *cobra.Command {
	var rule model.CategoryRule

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a custom rule",
		Example: `  cardscan rules add --pattern 'blue bottle' --category "Food & Dining" --subcategory Coffee
  cardscan rules add --pattern '^acme\s+gym' --category "Health & Fitness" --confidence 0.9`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			// The registry rejects rules the categorizer could not use.
			if err := categorize.DefaultRegistry().AddRule(rule); err != nil {
				return common.NewUserError("Invalid rule", err)
			}

			_, store, err := openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if err := store.SaveRule(cmd.Context(), &rule); err != nil {
				return fmt.Errorf("failed to save rule: %w", err)
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Added rule %d: /%s/ → %s", rule.ID, rule.Pattern, rule.Category)))
			return err
		},
	}

	cmd.Flags().StringVar(&rule.Pattern, "pattern", "", "regular expression matched against the transaction text")
	cmd.Flags().StringVar(&rule.Category, "category", "", "category to assign")
	cmd.Flags().StringVar(&rule.Subcategory, "subcategory", "", "subcategory to assign")
	cmd.Flags().Float64Var(&rule.Confidence, "confidence", 0.8, "confidence reported for matches (0-1)")
	_ = cmd.MarkFlagRequired("pattern")
	_ = cmd.MarkFlagRequired("category")
	return cmd
}

func deleteRuleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a custom rule",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return common.NewUserError("Rule ID must be a number", err)
			}

			_, store, err := openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if err := store.DeleteRule(cmd.Context(), id); err != nil {
				return fmt.Errorf("failed to delete rule %d: %w", id, err)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Deleted rule %d", id)))
			return err
		},
	}
}
