package cmd

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/ziadkadry99/transitdir/internal/catalog"
)

var (
	accent = lipgloss.Color("#0F766E")
	muted  = lipgloss.Color("#64748B")

	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(accent)
	mutedStyle  = lipgloss.NewStyle().Foreground(muted)
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)

	categoryColors = map[catalog.Category]lipgloss.Color{
		catalog.CategoryBRTS:      lipgloss.Color("#DC2626"),
		catalog.CategoryPeopleBus: lipgloss.Color("#2563EB"),
		catalog.CategoryLocalBus:  lipgloss.Color("#CA8A04"),
		catalog.CategoryChinchi:   lipgloss.Color("#7C3AED"),
		catalog.CategoryEVBus:     lipgloss.Color("#16A34A"),
	}
)

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(mutedStyle).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
}

func categoryLabel(c catalog.Category) string {
	color, ok := categoryColors[c]
	if !ok {
		return mutedStyle.Render(catalog.FallbackLabel)
	}
	return lipgloss.NewStyle().Bold(true).Foreground(color).Render(c.Label())
}
