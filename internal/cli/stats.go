package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ogulcanaydogan/fuellog/pkg/model"
	"github.com/ogulcanaydogan/fuellog/pkg/transfer"
	"github.com/ogulcanaydogan/fuellog/pkg/tracker"
)

var cyclesCmd = &cobra.Command{
	Use:   "cycles",
	Short: "List every tank-to-tank cycle",
	RunE:  runCycles,
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show the latest cycle and overall consumption",
	RunE:  runStats,
}

var monthCmd = &cobra.Command{
	Use:     "month <YYYY-MM>",
	Short:   "Summarize one calendar month",
	Args:    cobra.ExactArgs(1),
	Example: "  fuellog month 2025-08",
	RunE:    runMonth,
}

func init() {
	rootCmd.AddCommand(cyclesCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(monthCmd)
	statsCmd.Flags().Bool("months", false, "Also show the per-month breakdown")
}

// describeCycle renders a cycle on one line.
func describeCycle(c model.Cycle, currency string) string {
	return fmt.Sprintf("%s (%.1f km) -> %s (%.1f km): %s, %.1f km, %.3f L, %.2f %s (%s), %d fills",
		c.StartDate, c.StartOdometerKm, c.EndDate, c.EndOdometerKm,
		rate(c.LitersPer100Km, "L/100km"), c.DistanceKm, c.LitersUsed,
		c.CostTotal, currency, rate(c.CostPerKm, currency+"/km"), c.FillsCount)
}

func runCycles(cmd *cobra.Command, _ []string) error {
	a, err := initApp(nil)
	if err != nil {
		return err
	}
	defer a.Close()

	cycles, err := a.book.Cycles(cmd.Context())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(cycles) == 0 {
		fmt.Fprintln(out, "At least two full fills are needed to compute consumption.")
		return nil
	}

	cur := a.cfg.Display.Currency
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "START\tEND\tDISTANCE\tLITERS\tL/100KM\tCOST\tCOST/KM\tFILLS")
	for _, c := range cycles {
		fmt.Fprintf(w, "%s\t%s\t%.1f km\t%.3f\t%s\t%.2f %s\t%s\t%d\n",
			c.StartDate, c.EndDate, c.DistanceKm, c.LitersUsed,
			c.LitersPer100Km.Format("%.2f"), c.CostTotal, cur, c.CostPerKm.Format("%.2f"), c.FillsCount)
	}
	return w.Flush()
}

func runStats(cmd *cobra.Command, _ []string) error {
	a, err := initApp(nil)
	if err != nil {
		return err
	}
	defer a.Close()

	stats, err := a.book.Stats(cmd.Context())
	if err != nil {
		return err
	}
	showMonths, _ := cmd.Flags().GetBool("months")

	printStats(cmd.OutOrStdout(), stats, a.cfg.Display.Currency, showMonths)
	return nil
}

func printStats(out io.Writer, stats *tracker.Stats, cur string, showMonths bool) {
	if stats.RecordCount < 2 {
		fmt.Fprintln(out, "Add more records to see statistics.")
		return
	}
	if stats.Latest == nil {
		fmt.Fprintln(out, "At least two full fills are needed to compute consumption.")
		return
	}

	fmt.Fprintln(out, title("Latest full -> full"))
	fmt.Fprintln(out, "  "+describeCycle(*stats.Latest, cur))

	o := stats.Aggregate.Overall
	fmt.Fprintln(out)
	fmt.Fprintln(out, title(fmt.Sprintf("All cycles (%d)", o.CycleCount)))
	fmt.Fprintln(out, "  "+field("Total distance", fmt.Sprintf("%.1f km", o.TotalKm))+
		"  "+field("Total liters", fmt.Sprintf("%.1f L", o.TotalLiters))+
		"  "+field("Total cost", fmt.Sprintf("%.2f %s", o.TotalCost, cur)))
	fmt.Fprintln(out, "  "+field("Average consumption", rate(o.AvgLitersPer100Km, "L/100km"))+
		"  "+field("Average cost", rate(o.AvgCostPerKm, cur+"/km")))
	fmt.Fprintln(out, "  "+field("Distance-weighted", rate(o.WeightedLitersPer100Km, "L/100km")))

	if len(stats.Anomalies) > 0 {
		fmt.Fprintln(out)
		fmt.Fprintln(out, errStyle.Render(fmt.Sprintf("%d cycle(s) with the odometer going backwards:", len(stats.Anomalies))))
		for _, c := range stats.Anomalies {
			fmt.Fprintf(out, "  %s %.1f km -> %s %.1f km\n", c.StartDate, c.StartOdometerKm, c.EndDate, c.EndOdometerKm)
		}
	}

	if showMonths {
		fmt.Fprintln(out)
		fmt.Fprintln(out, title("Per month"))
		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "  MONTH\tFILLS\tLITERS\tCOST\tEST. DISTANCE")
		for _, m := range stats.Aggregate.Months {
			fmt.Fprintf(w, "  %s\t%d\t%.3f\t%.2f %s\t%.1f km\n",
				m.Key(), m.Fills, m.Liters, m.Cost, cur, m.EstimatedDistanceKm)
		}
		w.Flush()
	}
}

func runMonth(cmd *cobra.Command, args []string) error {
	year, month, err := transfer.ParseMonth(args[0])
	if err != nil {
		return err
	}

	a, err := initApp(nil)
	if err != nil {
		return err
	}
	defer a.Close()

	summary, err := a.book.Month(cmd.Context(), year, month)
	if err != nil {
		return err
	}
	printMonth(cmd.OutOrStdout(), summary, a.cfg.Display.Currency)
	return nil
}

func printMonth(out io.Writer, m model.MonthSummary, cur string) {
	fmt.Fprintln(out, title("Month "+m.Key()))
	fmt.Fprintln(out, "  "+field("Fills", fmt.Sprint(m.Fills))+
		"  "+field("Liters", fmt.Sprintf("%.3f L", m.Liters))+
		"  "+field("Cost", fmt.Sprintf("%.2f %s", m.Cost, cur)))
	if m.EstimatedDistanceKm > 0 {
		fmt.Fprintln(out, "  "+field("Estimated distance", fmt.Sprintf("%.1f km", m.EstimatedDistanceKm))+
			labelStyle.Render(fmt.Sprintf(" (from %d cycle(s) ending this month)", m.CyclesEnded)))
	}
}
