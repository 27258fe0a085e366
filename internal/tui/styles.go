package tui

import (
	"cryptopulse/internal/domain"
	"cryptopulse/internal/format"

	"github.com/charmbracelet/lipgloss"
)

type styles struct {
	header  lipgloss.Style
	footer  lipgloss.Style
	section lipgloss.Style
	symbol  lipgloss.Style
	price   lipgloss.Style
	gain    lipgloss.Style
	loss    lipgloss.Style
	dim     lipgloss.Style
	user    lipgloss.Style
	bot     lipgloss.Style
	errText lipgloss.Style
	panel   lipgloss.Style
}

func newStyles(mode domain.ThemeMode) styles {
	if mode == domain.ThemeDark {
		return styles{
			header:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15")).Background(lipgloss.Color("4")),
			footer:  lipgloss.NewStyle().Foreground(lipgloss.Color("15")).Background(lipgloss.Color("8")),
			section: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
			symbol:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("75")),
			price:   lipgloss.NewStyle().Foreground(lipgloss.Color("15")),
			gain:    lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
			loss:    lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
			dim:     lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
			user:    lipgloss.NewStyle().Foreground(lipgloss.Color("14")),
			bot:     lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
			errText: lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
			panel:   lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("8")).Padding(0, 1),
		}
	}
	return styles{
		header:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("0")).Background(lipgloss.Color("14")),
		footer:  lipgloss.NewStyle().Foreground(lipgloss.Color("0")).Background(lipgloss.Color("7")),
		section: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("4")),
		symbol:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("4")),
		price:   lipgloss.NewStyle().Foreground(lipgloss.Color("0")),
		gain:    lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
		loss:    lipgloss.NewStyle().Foreground(lipgloss.Color("1")),
		dim:     lipgloss.NewStyle().Foreground(lipgloss.Color("242")),
		user:    lipgloss.NewStyle().Foreground(lipgloss.Color("6")),
		bot:     lipgloss.NewStyle().Foreground(lipgloss.Color("0")),
		errText: lipgloss.NewStyle().Foreground(lipgloss.Color("1")),
		panel:   lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("7")).Padding(0, 1),
	}
}

// change picks the style for a ticker change class.
func (s styles) change(class string) lipgloss.Style {
	switch class {
	case format.ClassUp:
		return s.gain
	case format.ClassDown:
		return s.loss
	default:
		return s.dim
	}
}
