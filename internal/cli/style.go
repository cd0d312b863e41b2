package cli

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/ogulcanaydogan/fuellog/pkg/alerts"
	"github.com/ogulcanaydogan/fuellog/pkg/model"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	labelStyle = lipgloss.NewStyle().Faint(true)
	valueStyle = lipgloss.NewStyle().Bold(true)
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("46"))
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("226"))
	errStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

func title(s string) string {
	return titleStyle.Render(s)
}

func field(label, value string) string {
	return labelStyle.Render(label+":") + " " + valueStyle.Render(value)
}

// levelStyle colours a budget alert level.
func levelStyle(level alerts.AlertLevel) lipgloss.Style {
	switch level {
	case alerts.AlertExceeded:
		return errStyle
	case alerts.AlertCritical:
		return errStyle.Bold(true)
	case alerts.AlertWarning:
		return warnStyle
	}
	return okStyle
}

// rate formats a consumption or cost rate, with the reason when it is missing.
func rate(r model.Rate, unit string) string {
	v, ok := r.Value()
	if !ok {
		return warnStyle.Render(fmt.Sprintf("n/a (%s)", r.Reason()))
	}
	return fmt.Sprintf("%.2f %s", v, unit)
}
