package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/ogulcanaydogan/fuellog/pkg/model"
	"github.com/ogulcanaydogan/fuellog/pkg/transfer"
)

const defaultExportFile = "fuel_log_export.csv"

var exportCmd = &cobra.Command{
	Use:   "export [dest]",
	Short: "Export the log to CSV or YAML",
	Long: `Export every record. dest defaults to fuel_log_export.csv; use "-" for
standard output. The format follows the file extension unless --format is set.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runExport,
}

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import records from CSV or YAML",
	Long: `Import records from a file written by export, or any CSV with the columns
date, odometer_km, liters, price_per_liter and full_fill. Nothing is stored
if any row is invalid.`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
	exportCmd.Flags().String("format", "", "csv or yaml (default from extension)")
	importCmd.Flags().String("format", "", "csv or yaml (default from extension)")
}

func formatFlag(cmd *cobra.Command, path string) transfer.Format {
	if f, _ := cmd.Flags().GetString("format"); f != "" {
		return transfer.Format(f)
	}
	return transfer.FormatFromPath(path)
}

func runExport(cmd *cobra.Command, args []string) error {
	dest := defaultExportFile
	if len(args) == 1 {
		dest = args[0]
	}
	format := formatFlag(cmd, dest)

	a, err := initApp(nil)
	if err != nil {
		return err
	}
	defer a.Close()

	records, err := a.book.Records(cmd.Context(), model.RecordFilter{})
	if err != nil {
		return err
	}

	var w io.Writer = cmd.OutOrStdout()
	if dest != "-" {
		f, err := os.Create(dest)
		if err != nil {
			return fmt.Errorf("create %s: %w", dest, err)
		}
		defer f.Close()
		w = f
	}

	if err := transfer.Write(w, format, records); err != nil {
		return err
	}
	if dest != "-" {
		fmt.Fprintf(cmd.OutOrStdout(), "Exported %d records to %s\n", len(records), dest)
	}
	return nil
}

func runImport(cmd *cobra.Command, args []string) error {
	src := args[0]
	f, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open %s: %w", src, err)
	}
	defer f.Close()

	records, err := transfer.Read(f, formatFlag(cmd, src))
	if err != nil {
		return fmt.Errorf("read %s: %w", src, err)
	}

	a, err := initApp(nil)
	if err != nil {
		return err
	}
	defer a.Close()

	n, err := a.book.Import(cmd.Context(), records)
	if err != nil {
		return fmt.Errorf("import %s: %w", src, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Imported %d records from %s\n", n, src)
	return nil
}
