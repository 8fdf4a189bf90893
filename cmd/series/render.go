package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/rxtech-lab/econ-series/pkg/seriesdata"
	"github.com/rxtech-lab/econ-series/pkg/timeseries"
)

// maxPrintedRows is the number of points printed before the middle is elided.
const maxPrintedRows = 40

// Style definitions.
var (
	// TitleStyle for headers.
	TitleStyle = lipgloss.NewStyle().Bold(true)

	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(borderStyle).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}

			return cellStyle
		}).
		Headers(headers...)
}

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatPoint(p timeseries.Point) string {
	return fmt.Sprintf("%s @ %s", formatValue(p.Value), p.Period.Format(timeseries.DateLayout))
}

// renderSeries renders the points of s and its summary.
func renderSeries(s *timeseries.Series) string {
	req := s.Request()

	points := newTable("Period", "Value")

	for i, p := range s.All() {
		if s.Len() > maxPrintedRows && i == maxPrintedRows/2 {
			points.Row("…", fmt.Sprintf("%d more", s.Len()-maxPrintedRows))
		}

		if s.Len() > maxPrintedRows && i >= maxPrintedRows/2 && i < s.Len()-maxPrintedRows/2 {
			continue
		}

		points.Row(p.Period.Format(timeseries.DateLayout), formatValue(p.Value))
	}

	var b strings.Builder

	b.WriteString(TitleStyle.Render(fmt.Sprintf("%s (%s, %s)", req.Symbol, req.Source, req.Periodicity)))
	b.WriteString("\n")
	b.WriteString(points.Render())

	if summary, err := s.Summary().Take(); err == nil {
		stats := newTable("Statistic", "Value").
			Row("Count", strconv.Itoa(summary.Count)).
			Row("First", formatPoint(summary.First)).
			Row("Last", formatPoint(summary.Last)).
			Row("Min", formatPoint(summary.Min)).
			Row("Max", formatPoint(summary.Max)).
			Row("Mean", strconv.FormatFloat(summary.Mean, 'f', 4, 64)).
			Row("Median", strconv.FormatFloat(summary.Median, 'f', 4, 64)).
			Row("Std dev", strconv.FormatFloat(summary.StdDev, 'f', 4, 64))

		b.WriteString("\n")
		b.WriteString(stats.Render())
	}

	return b.String()
}

// renderProviders renders the provider registry.
func renderProviders(infos []seriesdata.ProviderInfo) string {
	t := newTable("Name", "Provider", "Auth", "Periodicities", "Description")

	for _, info := range infos {
		auth := "no"
		if info.RequiresAuth {
			auth = "api key"
		}

		periodicities := make([]string, 0, len(info.Periodicities))
		for _, p := range info.Periodicities {
			periodicities = append(periodicities, string(p))
		}

		t.Row(info.Name, info.DisplayName, auth, strings.Join(periodicities, ", "), info.Description)
	}

	return t.Render()
}
