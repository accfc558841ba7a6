package tui

import (
	"fmt"
	"strings"

	"tokenview/pkg/chains"
	"tokenview/pkg/detail"
	"tokenview/pkg/safety"
	"tokenview/pkg/utils"

	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/mattn/go-runewidth"
)

const (
	chartHeight  = 8
	minChartSize = 10
)

func (m model) View() string {
	if m.onPrompt() {
		return m.viewPrompt()
	}
	if !m.ready() {
		return m.viewLoading()
	}
	if m.gate.ModalOpen() {
		return m.viewModal()
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		m.viewHeader(),
		m.viewport.View(),
		m.viewFooter(),
	)
}

func (m model) viewPrompt() string {
	status := ""
	if m.statusMessage != "" {
		status = errStyle.Render(m.statusMessage)
	}
	content := boxStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render("tokenview "+Version),
		"",
		"Token address on "+m.deps.Chain.Name+":",
		m.input.View(),
		status,
	))
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center,
		lipgloss.JoinVertical(lipgloss.Center, content, "", m.help.View(m.promptHelp())))
}

// viewLoading is the placeholder drawn until name and symbol are resolved.
func (m model) viewLoading() string {
	lines := []string{
		subtleStyle.Render("← Tokens"),
		"",
		fmt.Sprintf("%s Loading token %s", m.spinner.View(), utils.ShortAddress(m.address)),
	}
	if m.identity != nil && m.identity.Err != nil {
		lines = append(lines,
			errStyle.Render("Error: "+m.identity.Err.Error()),
			subtleStyle.Render("r: retry • esc: back"),
		)
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center,
		lipgloss.JoinVertical(lipgloss.Left, lines...))
}

func (m model) viewModal() string {
	w := m.warning()
	dm := m.displayModel()
	heading := warnStyle.Render("⚠ " + w.Heading())
	body := lipgloss.JoinVertical(lipgloss.Left,
		heading,
		"",
		nameStyle.Render(dm.Name)+" "+symbolStyle.Render(dm.Symbol),
		subtleStyle.Render(utils.ShortAddress(m.identityAddress())),
		"",
		lipgloss.NewStyle().Width(50).Render(w.Message()),
		"",
		subtleStyle.Render("enter/y: I understand • esc/n: cancel"),
	)
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modalStyle.Render(body))
}

func (m model) viewHeader() string {
	dm := m.displayModel()

	var right []string
	if m.identity != nil {
		if info, ok := chains.Lookup(m.identity.Identity.ChainID); ok {
			right = append(right, badgeStyle(info.Color, info.BackgroundColor).Render(info.Label))
		}
	}
	switch {
	case m.gate.BadgeVisible():
		right = append(right, infoStyle.Render("✓ verified"))
	case m.warning() != safety.None:
		right = append(right, warnStyle.Render("⚠ "+m.warning().String()))
	}
	heart := "♡"
	if m.deps.Favorites.IsFavorited(m.identityAddress()) {
		heart = heartStyle.Render("♥")
	}
	right = append(right, heart)
	if dm.CanShare() {
		right = append(right, subtleStyle.Render("⇪ share"))
	}
	badges := strings.Join(right, " ")

	// name gets whatever width the symbol and badges leave
	symbol := " " + dm.Symbol
	budget := m.width - lipgloss.Width(badges) - runewidth.StringWidth(symbol) - 2
	title := nameStyle.Render(fit(dm.Name, budget)) + symbolStyle.Render(symbol)

	gap := m.width - lipgloss.Width(title) - lipgloss.Width(badges)
	if gap < 1 {
		gap = 1
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		subtleStyle.Render("← Tokens"),
		title+strings.Repeat(" ", gap)+badges,
	)
}

func (m model) viewFooter() string {
	status := ""
	if m.statusMessage != "" {
		status = infoStyle.Render(m.statusMessage)
	}
	return lipgloss.JoinVertical(lipgloss.Left, status, m.help.View(m.keys))
}

// resize recomputes the viewport around the header and footer.
func (m *model) resize() {
	headerHeight := 2
	footerHeight := 1 + lipgloss.Height(m.help.View(m.keys))
	m.viewport.Width = m.width
	m.viewport.Height = m.height - headerHeight - footerHeight
	if m.viewport.Height < 1 {
		m.viewport.Height = 1
	}
	m.markdown.setWidth(m.width - 4)
	if m.ready() {
		m.updateDetailViewport()
	}
}

// updateDetailViewport renders the chart, about, stats and contract sections
// into the scrollable viewport.
func (m *model) updateDetailViewport() {
	dm := m.displayModel()
	sections := []string{
		m.viewChart(),
		m.viewAbout(dm),
		m.viewStats(dm),
		m.viewContract(),
	}
	m.viewport.SetContent(lipgloss.JoinVertical(lipgloss.Left, sections...))
}

func (m model) viewChart() string {
	remote := m.remoteDetail()
	price := "-"
	if remote.Price != nil {
		price = m.deps.Format(*remote.Price)
	}
	header := nameStyle.Render(price)

	var values []float64
	for _, p := range remote.PriceHistory {
		values = append(values, p.Value)
	}
	if len(values) < 2 {
		return lipgloss.JoinVertical(lipgloss.Left, header, subtleStyle.Render("No price history available."))
	}

	width := m.width - 12
	if width < minChartSize {
		width = minChartSize
	}
	graph := asciigraph.Plot(values,
		asciigraph.Height(chartHeight),
		asciigraph.Width(width),
		asciigraph.Caption("Price (USD)"),
	)
	return lipgloss.JoinVertical(lipgloss.Left, header, graph)
}

func (m model) viewAbout(dm detail.DisplayModel) string {
	r := m.deps.Reconciler
	lines := []string{sectionStyle.Render(r.T(detail.MsgAbout))}
	if dm.HasDescription {
		lines = append(lines, m.markdown.render(dm.Description))
		if dm.ToggleLabel != "" {
			lines = append(lines, linkStyle.Render(dm.ToggleLabel)+subtleStyle.Render(" (m)"))
		}
	} else {
		lines = append(lines, subtleStyle.Render(dm.Description))
	}

	var links []string
	for i, res := range dm.Resources {
		links = append(links, fmt.Sprintf("%s %s", subtleStyle.Render(fmt.Sprintf("[%d]", i+1)), linkStyle.Render(res.Name)))
	}
	lines = append(lines, "", strings.Join(links, "  "))
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func (m model) viewStats(dm detail.DisplayModel) string {
	colWidth := (m.width - 4) / 2
	if colWidth < 16 {
		colWidth = 16
	}
	cell := func(s detail.Stat) string {
		return lipgloss.NewStyle().Width(colWidth).Render(
			lipgloss.JoinVertical(lipgloss.Left, labelStyle.Render(s.Label), nameStyle.Render(s.Value)),
		)
	}
	var rows []string
	for i := 0; i < len(dm.Stats); i += 2 {
		row := []string{cell(dm.Stats[i])}
		if i+1 < len(dm.Stats) {
			row = append(row, cell(dm.Stats[i+1]))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, row...))
	}
	return lipgloss.NewStyle().MarginTop(1).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (m model) viewContract() string {
	r := m.deps.Reconciler
	address := m.identityAddress()
	hint := "  (c) copy"
	// the copy key still yields the full address
	if runewidth.StringWidth(address+hint) > m.width {
		address = utils.ShortAddress(address)
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		sectionStyle.Render(r.T(detail.MsgContractAddress)),
		address+subtleStyle.Render(hint),
	)
}
