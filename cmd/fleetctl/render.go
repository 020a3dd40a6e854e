package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"fleetdash/internal/derive"
	"fleetdash/internal/domain/dashboard"
	"fleetdash/internal/pkg/palette"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

const statBarWidth = 40

var (
	titleStyle  = lipgloss.NewStyle().Bold(true)
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	cardStyle   = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(palette.SegmentMuted)).
			Padding(0, 2)
)

func badge(status string) string {
	c := palette.Badge(status)
	return lipgloss.NewStyle().
		Background(lipgloss.Color(c.Background)).
		Foreground(lipgloss.Color(c.Foreground)).
		Padding(0, 1).
		Render(status)
}

func avatar(name, seed string) string {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color(palette.SiteColor(seed))).
		Bold(true).
		Render(palette.Initial(name, "?"))
}

// statBar draws segments proportionally, followed by a legend.
func statBar(segments []derive.Segment) string {
	var bar strings.Builder
	used := 0
	for i, s := range segments {
		w := s.Percent * statBarWidth / 100
		if i == len(segments)-1 && used+w < statBarWidth && s.Value > 0 {
			w = statBarWidth - used
		}
		used += w
		bar.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(s.Color)).Render(strings.Repeat("█", w)))
	}
	if used < statBarWidth {
		bar.WriteString(mutedStyle.Render(strings.Repeat("░", statBarWidth-used)))
	}

	legend := make([]string, len(segments))
	for i, s := range segments {
		dot := lipgloss.NewStyle().Foreground(lipgloss.Color(s.Color)).Render("●")
		legend[i] = fmt.Sprintf("%s %s %d (%d%%)", dot, s.Label, s.Value, s.Percent)
	}
	return bar.String() + "\n" + strings.Join(legend, "  ")
}

// renderView prints a derived table. cells renders one row after the avatar column.
func renderView[T any](w io.Writer, title string, view *dashboard.View[T], headers []string, cells func(dashboard.Row[T]) []string) {
	fmt.Fprintln(w, titleStyle.Render(title)+mutedStyle.Render(fmt.Sprintf("  %d of %d", view.Filtered, view.Total)))
	fmt.Fprintln(w, statBar(view.Segments))

	if len(view.Rows) == 0 {
		fmt.Fprintln(w, mutedStyle.Render("No matching rows."))
		return
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(mutedStyle).
		Headers(append([]string{""}, headers...)...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})

	for _, row := range view.Rows {
		dot := lipgloss.NewStyle().Foreground(lipgloss.Color(row.DotColor)).Bold(true).Render(row.Avatar)
		t.Row(append([]string{dot}, cells(row)...)...)
	}
	fmt.Fprintln(w, t.Render())
}

func renderOverview(w io.Writer, o *dashboard.Overview) {
	cards := []string{
		card("Vehicles", o.Cards.TotalVehicles),
		card("Active", o.Cards.ActiveVehicles),
		card("In maintenance", o.Cards.MaintenanceVehicles),
		card("Drivers", o.Cards.TotalDrivers),
		card("Available", o.Cards.AvailableDrivers),
		valueCard("Utilization", strconv.Itoa(o.Cards.UtilizationPct)+"%"),
	}
	fmt.Fprintln(w, lipgloss.JoinHorizontal(lipgloss.Top, cards...))
	fmt.Fprintln(w, titleStyle.Render("Vehicles"))
	fmt.Fprintln(w, statBar(o.VehicleSegments))
	fmt.Fprintln(w, titleStyle.Render("Drivers"))
	fmt.Fprintln(w, statBar(o.DriverSegments))
}

func card(label string, n int) string {
	return valueCard(label, strconv.Itoa(n))
}

func valueCard(label, value string) string {
	return cardStyle.Render(mutedStyle.Render(label) + "\n" + value)
}
