package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ogulcanaydogan/fuellog/pkg/tracker"
)

var budgetCmd = &cobra.Command{
	Use:   "budget",
	Short: "Manage fuel spending budgets",
}

var budgetSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Create or update a budget",
	RunE:  runBudgetSet,
}

var budgetStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show spending against each budget in its current period",
	RunE:  runBudgetStatus,
}

func init() {
	rootCmd.AddCommand(budgetCmd)
	budgetCmd.AddCommand(budgetSetCmd)
	budgetCmd.AddCommand(budgetStatusCmd)

	budgetSetCmd.Flags().StringP("name", "n", "fuel", "Budget name")
	budgetSetCmd.Flags().Float64P("limit", "l", 0, "Spending limit per period")
	budgetSetCmd.Flags().StringP("period", "P", "monthly", "Budget period (daily, weekly, monthly)")
	budgetSetCmd.Flags().Float64("alert-at", 80, "Alert threshold percentage")
	_ = budgetSetCmd.MarkFlagRequired("limit")
}

func runBudgetSet(cmd *cobra.Command, _ []string) error {
	name, _ := cmd.Flags().GetString("name")
	limit, _ := cmd.Flags().GetFloat64("limit")
	period, _ := cmd.Flags().GetString("period")
	alertAt, _ := cmd.Flags().GetFloat64("alert-at")

	a, err := initApp(nil)
	if err != nil {
		return err
	}
	defer a.Close()

	budget := &tracker.Budget{
		Name:              name,
		Limit:             limit,
		Period:            tracker.BudgetPeriod(strings.ToLower(period)),
		AlertThresholdPct: alertAt,
	}
	if err := a.budget.Set(cmd.Context(), budget); err != nil {
		return fmt.Errorf("set budget: %w", err)
	}

	out := cmd.OutOrStdout()
	cur := a.cfg.Display.Currency
	fmt.Fprintln(out, okStyle.Render("Budget set"))
	fmt.Fprintln(out, "  "+field("Name", name))
	fmt.Fprintln(out, "  "+field("Limit", fmt.Sprintf("%.2f %s", limit, cur)))
	fmt.Fprintln(out, "  "+field("Period", string(budget.Period)))
	fmt.Fprintln(out, "  "+field("Alert at", fmt.Sprintf("%.0f%%", alertAt)))
	return nil
}

func runBudgetStatus(cmd *cobra.Command, _ []string) error {
	a, err := initApp(nil)
	if err != nil {
		return err
	}
	defer a.Close()

	budgets, err := a.budget.Status(cmd.Context())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(budgets) == 0 {
		fmt.Fprintln(out, "No budgets configured. Use 'fuellog budget set' to create one.")
		return nil
	}

	cur := a.cfg.Display.Currency
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tPERIOD\tLIMIT\tSPENT\tREMAINING\tUSAGE\tALERT AT")
	for _, b := range budgets {
		remaining := max(b.Limit-b.CurrentSpend, 0)
		pct := float64(0)
		if b.Limit > 0 {
			pct = b.CurrentSpend / b.Limit * 100
		}

		level := tracker.LevelFor(b)
		usage := fmt.Sprintf("%.1f%%", pct)
		if level != "" {
			usage += " [" + strings.ToUpper(string(level)) + "]"
		}

		fmt.Fprintf(w, "%s\t%s\t%.2f %s\t%.2f %s\t%.2f %s\t%s\t%.0f%%\n",
			b.Name, b.Period, b.Limit, cur, b.CurrentSpend, cur,
			remaining, cur, levelStyle(level).Render(usage), b.AlertThresholdPct,
		)
	}
	return w.Flush()
}
