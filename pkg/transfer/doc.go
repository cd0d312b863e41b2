// Package transfer reads and writes fuel logs as CSV and YAML files.
//
// CSV files use the header
//
//	date,odometer_km,liters,price_per_liter,full_fill,notes
//
// with dates as YYYY-MM-DD and full_fill as yes or no. Numbers may use
// either a dot or a comma as the decimal separator on import.
package transfer
