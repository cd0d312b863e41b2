package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/ogulcanaydogan/fuellog/pkg/model"
	"github.com/ogulcanaydogan/fuellog/pkg/transfer"
)

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Record a refueling",
	Long: `Record a refueling. Numbers accept either a dot or a comma as decimal
separator. After a full fill that closes a cycle, its consumption is shown.`,
	Example: `  fuellog add --date 2025-08-27 --odometer 210123 --liters 43.2 --price 19.49 --full yes --notes "E20 OKQ8"`,
	RunE:    runAdd,
}

func init() {
	rootCmd.AddCommand(addCmd)
	addCmd.Flags().StringP("date", "d", "", "Date as YYYY-MM-DD (default today)")
	addCmd.Flags().StringP("odometer", "o", "", "Odometer reading in km")
	addCmd.Flags().StringP("liters", "l", "", "Liters filled")
	addCmd.Flags().StringP("price", "p", "", "Price per liter")
	addCmd.Flags().StringP("full", "f", "", "Filled to the brim? yes/no")
	addCmd.Flags().StringP("notes", "n", "", "Notes, e.g. station or route")
	_ = addCmd.MarkFlagRequired("odometer")
	_ = addCmd.MarkFlagRequired("liters")
	_ = addCmd.MarkFlagRequired("price")
	_ = addCmd.MarkFlagRequired("full")
}

// addInput holds the raw flag values of the add command.
type addInput struct {
	Date, Odometer, Liters, Price, Full, Notes string
}

// parseAddInput turns flag strings into a record. An empty date means today.
func parseAddInput(in addInput, today time.Time) (model.FuelRecord, error) {
	var (
		r   model.FuelRecord
		err error
	)
	if in.Date == "" {
		r.Date = model.DateOf(today)
	} else if r.Date, err = transfer.ParseDate(in.Date); err != nil {
		return r, fmt.Errorf("--date: %w", err)
	}
	if r.OdometerKm, err = transfer.ParseNumber(in.Odometer); err != nil {
		return r, fmt.Errorf("--odometer: %w", err)
	}
	if r.Liters, err = transfer.ParseNumber(in.Liters); err != nil {
		return r, fmt.Errorf("--liters: %w", err)
	}
	if r.PricePerLiter, err = transfer.ParseNumber(in.Price); err != nil {
		return r, fmt.Errorf("--price: %w", err)
	}
	if r.FullFill, err = transfer.ParseFullFill(in.Full); err != nil {
		return r, fmt.Errorf("--full: %w", err)
	}
	r.Notes = in.Notes
	return r, nil
}

func runAdd(cmd *cobra.Command, _ []string) error {
	var in addInput
	in.Date, _ = cmd.Flags().GetString("date")
	in.Odometer, _ = cmd.Flags().GetString("odometer")
	in.Liters, _ = cmd.Flags().GetString("liters")
	in.Price, _ = cmd.Flags().GetString("price")
	in.Full, _ = cmd.Flags().GetString("full")
	in.Notes, _ = cmd.Flags().GetString("notes")

	record, err := parseAddInput(in, time.Now())
	if err != nil {
		return err
	}

	a, err := initApp(nil)
	if err != nil {
		return err
	}
	defer a.Close()

	result, err := a.book.Add(cmd.Context(), record)
	if err != nil {
		return fmt.Errorf("add record: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, okStyle.Render("Record added"))
	fmt.Fprintln(out, "  "+formatRecord(result.Record, a.cfg.Display.Currency))

	if c := result.Closed; c != nil {
		fmt.Fprintln(out)
		fmt.Fprintln(out, title("New cycle closed"))
		fmt.Fprintln(out, "  "+describeCycle(*c, a.cfg.Display.Currency))
		if c.OdometerRegression {
			fmt.Fprintln(out, "  "+errStyle.Render("odometer is below the previous full fill, check the reading"))
		}
	}
	return nil
}
