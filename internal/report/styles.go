package report

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/MKhiriev/go-farrier-sync/models"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true)
	faintStyle   = lipgloss.NewStyle().Faint(true)
	boxStyle     = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	errorBox     = boxStyle.BorderForeground(lipgloss.Color("9"))
	successPanel = boxStyle.BorderForeground(lipgloss.Color("10"))
)

var glyphs = map[models.IndicatorState]lipgloss.Style{
	models.IndicatorNeutral:    lipgloss.NewStyle().Foreground(lipgloss.Color("8")).SetString("○"),
	models.IndicatorInProgress: lipgloss.NewStyle().Foreground(lipgloss.Color("12")).SetString("◌"),
	models.IndicatorGreen:      lipgloss.NewStyle().Foreground(lipgloss.Color("10")).SetString("●"),
	models.IndicatorYellow:     lipgloss.NewStyle().Foreground(lipgloss.Color("11")).SetString("●"),
	models.IndicatorRed:        lipgloss.NewStyle().Foreground(lipgloss.Color("9")).SetString("●"),
}

// Glyph returns the colored dot drawn next to a store in the given state.
func Glyph(state models.IndicatorState) string {
	style, ok := glyphs[state]
	if !ok {
		style = glyphs[models.IndicatorNeutral]
	}
	return style.String()
}
