package tui

import "github.com/charmbracelet/lipgloss"

// --- Styles ---
var (
	accent      = lipgloss.Color("#FC72FF")
	subtleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	titleStyle  = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1).
			Bold(true)
	nameStyle    = lipgloss.NewStyle().Bold(true)
	symbolStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#04B575"))
	errStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF0000"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#F3B71E")).Bold(true)
	heartStyle   = lipgloss.NewStyle().Foreground(accent)
	linkStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#4C82FB")).Underline(true)
	sectionStyle = lipgloss.NewStyle().Bold(true).MarginTop(1)
	labelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	boxStyle     = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#874BFD")).
			Padding(0, 1)
	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#F3B71E")).
			Padding(1, 2).
			Width(56)
)

// badgeStyle draws a network badge in the chain's colors.
func badgeStyle(color, background string) lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color(color)).
		Background(lipgloss.Color(background)).
		Padding(0, 1).
		Bold(true)
}
