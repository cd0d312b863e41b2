package cli

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ogulcanaydogan/fuellog/pkg/model"
	"github.com/ogulcanaydogan/fuellog/pkg/storage"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the most recent records",
	RunE:  runList,
}

var deleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a record by ID",
	Args:  cobra.ExactArgs(1),
	RunE:  runDelete,
}

func init() {
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(deleteCmd)
	listCmd.Flags().IntP("limit", "n", 0, "Number of records to show (default from config)")
	listCmd.Flags().Bool("ids", false, "Show record IDs")
}

func formatRecord(r model.FuelRecord, currency string) string {
	kind := "partial"
	if r.FullFill {
		kind = "FULL"
	}
	return fmt.Sprintf("%s  %9.1f km  %7.3f L  %6.2f %s/L  %-7s  cost %8.2f %s  %s",
		r.Date, r.OdometerKm, r.Liters, r.PricePerLiter, currency, kind, r.Cost(), currency, r.Notes)
}

func runList(cmd *cobra.Command, _ []string) error {
	a, err := initApp(nil)
	if err != nil {
		return err
	}
	defer a.Close()

	limit, _ := cmd.Flags().GetInt("limit")
	if limit <= 0 {
		limit = a.cfg.Display.ListLimit
	}
	showIDs, _ := cmd.Flags().GetBool("ids")

	records, err := a.book.Records(cmd.Context(), model.RecordFilter{Limit: limit})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(records) == 0 {
		fmt.Fprintln(out, "No records yet. Use 'fuellog add' to log a refueling.")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	header := "DATE\tODOMETER\tLITERS\tPRICE\tFILL\tCOST\tNOTES"
	if showIDs {
		header = "ID\t" + header
	}
	fmt.Fprintln(w, header)
	for _, r := range records {
		kind := "partial"
		if r.FullFill {
			kind = "FULL"
		}
		if showIDs {
			fmt.Fprintf(w, "%s\t", r.ID)
		}
		fmt.Fprintf(w, "%s\t%.1f km\t%.3f L\t%.2f\t%s\t%.2f %s\t%s\n",
			r.Date, r.OdometerKm, r.Liters, r.PricePerLiter, kind, r.Cost(), a.cfg.Display.Currency, r.Notes)
	}
	return w.Flush()
}

func runDelete(cmd *cobra.Command, args []string) error {
	a, err := initApp(nil)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.book.Delete(cmd.Context(), args[0]); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("no record with ID %s", args[0])
		}
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Deleted record %s\n", args[0])
	return nil
}
