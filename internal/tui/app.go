// ABOUTME: Root bubbletea model for the result viewer
// ABOUTME: Switches between the mean table and sensitivity panes and routes keys to them

package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/markalston/opfbench/internal/tui/comparison"
	"github.com/markalston/opfbench/internal/tui/dashboard"
	"github.com/markalston/opfbench/internal/tui/styles"
)

// Pane is the focused half of the viewer
type Pane int

const (
	PaneMean Pane = iota
	PaneSensitivity
)

// Layout constants
const (
	minTerminalWidth = 80 // Minimum width before using single-column layout
	panelPadding     = 4  // Total horizontal padding from panel borders (2 each side)
	frameHeight      = 8  // header, footer and panel chrome
)

// App is the root model for the viewer
type App struct {
	data   *Data
	pane   Pane
	metric int
	width  int
	height int

	dashboard  *dashboard.Dashboard
	comparison *comparison.Comparison
}

// New creates a viewer over loaded data
func New(data *Data) *App {
	a := &App{data: data, pane: PaneMean, width: minTerminalWidth, height: 24}
	a.dashboard = dashboard.New(data.Case, data.Mean, a.leftWidth()-panelPadding, a.contentHeight())
	a.loadMetric()
	return a
}

// Init implements tea.Model
func (a *App) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.dashboard.SetSize(a.leftWidth()-panelPadding, a.contentHeight())
		if a.comparison != nil {
			a.comparison.SetWidth(a.rightWidth() - panelPadding)
		}
		return a, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return a, tea.Quit
		case "tab":
			a.togglePane()
			return a, nil
		}
		if a.pane == PaneSensitivity {
			return a.updateSensitivity(msg)
		}
		cmd := a.dashboard.Update(msg)
		a.syncHighlight()
		return a, cmd
	}
	return a, nil
}

func (a *App) updateSensitivity(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "m", "right", "l":
		a.cycleMetric(1)
	case "M", "left", "h":
		a.cycleMetric(-1)
	}
	return a, nil
}

func (a *App) togglePane() {
	if a.pane == PaneMean {
		a.pane = PaneSensitivity
		a.dashboard.Blur()
		return
	}
	a.pane = PaneMean
	a.dashboard.Focus()
}

func (a *App) cycleMetric(step int) {
	n := len(a.data.Metrics)
	if n == 0 {
		return
	}
	a.metric = ((a.metric+step)%n + n) % n
	a.loadMetric()
}

func (a *App) loadMetric() {
	if len(a.data.Metrics) == 0 {
		a.comparison = nil
		return
	}
	name := a.Metric()
	a.comparison = comparison.New(name, a.data.Sensitivity[name], a.rightWidth()-panelPadding)
	a.syncHighlight()
}

func (a *App) syncHighlight() {
	if a.comparison != nil {
		a.comparison.Highlight(a.dashboard.SelectedModel())
	}
}

// Metric returns the sensitivity metric on display
func (a *App) Metric() string {
	if len(a.data.Metrics) == 0 {
		return ""
	}
	return a.data.Metrics[a.metric]
}

// View implements tea.Model
func (a *App) View() string {
	left, right := styles.Panel, styles.Panel
	if a.pane == PaneMean {
		left = styles.ActivePanel
	} else {
		right = styles.ActivePanel
	}

	leftPane := left.Width(a.leftWidth()).Render(a.dashboard.View())
	rightContent := "No sensitivity data for " + a.data.Case
	if a.comparison != nil {
		rightContent = a.comparison.View()
	}
	rightPane := right.Width(a.rightWidth()).Render(rightContent)

	var content string
	if a.width < minTerminalWidth {
		content = lipgloss.JoinVertical(lipgloss.Left, leftPane, rightPane)
	} else {
		content = lipgloss.JoinHorizontal(lipgloss.Top, leftPane, rightPane)
	}
	return a.wrapWithFrame(content)
}

// leftWidth calculates the width for the mean table pane
func (a *App) leftWidth() int {
	if a.width < minTerminalWidth {
		return a.width - panelPadding
	}
	return (a.width - panelPadding) / 2
}

// rightWidth calculates the width for the sensitivity pane
func (a *App) rightWidth() int {
	if a.width < minTerminalWidth {
		return a.width - panelPadding
	}
	return a.width - a.leftWidth() - 2*panelPadding
}

func (a *App) contentHeight() int {
	return a.height - frameHeight
}

func (a *App) frameWidth() int {
	// Guard against zero/small width before WindowSizeMsg is received
	return max(a.width, minTerminalWidth)
}

// renderHeader creates the header bar with app branding and the case name
func (a *App) renderHeader() string {
	borderStyle := lipgloss.NewStyle().Foreground(styles.Muted)
	titleStyle := lipgloss.NewStyle().Foreground(styles.Primary).Bold(true)
	contextStyle := lipgloss.NewStyle().Foreground(styles.Secondary)

	leftRendered := " ◈ " + titleStyle.Render("OPF Approximation Bench")
	rightRendered := contextStyle.Render(a.data.Case) + " "

	fillWidth := max(0, a.frameWidth()-4-lipgloss.Width(leftRendered)-lipgloss.Width(rightRendered))
	return borderStyle.Render("╭─" + leftRendered + strings.Repeat("─", fillWidth) + rightRendered + "─╮")
}

// renderFooter creates the footer with keyboard shortcuts and the metric on display
func (a *App) renderFooter() string {
	borderStyle := lipgloss.NewStyle().Foreground(styles.Muted)
	labelStyle := lipgloss.NewStyle().Foreground(styles.Muted)
	statusStyle := lipgloss.NewStyle().Foreground(styles.Secondary)

	var shortcuts []string
	switch a.pane {
	case PaneMean:
		shortcuts = []string{"↑↓ Navigate", "tab Sensitivity", "q Quit"}
	case PaneSensitivity:
		shortcuts = []string{"←→ Metric", "tab Means", "q Quit"}
	}

	var styled []string
	for _, s := range shortcuts {
		parts := strings.SplitN(s, " ", 2)
		styled = append(styled, styles.KeyStyle.Render(parts[0])+" "+labelStyle.Render(parts[1]))
	}
	leftText := " " + strings.Join(styled, "  ")

	rightText := ""
	if m := a.Metric(); m != "" {
		rightText = statusStyle.Render(fmt.Sprintf("metric %s (%d/%d)", m, a.metric+1, len(a.data.Metrics))) + " "
	}

	fillWidth := max(0, a.frameWidth()-4-lipgloss.Width(leftText)-lipgloss.Width(rightText))
	return borderStyle.Render("╰─" + leftText + strings.Repeat("─", fillWidth) + rightText + "─╯")
}

// wrapWithFrame wraps content with header and footer
func (a *App) wrapWithFrame(content string) string {
	var sb strings.Builder

	sb.WriteString(a.renderHeader())
	sb.WriteString("\n")
	sb.WriteString(content)
	sb.WriteString("\n")
	sb.WriteString(a.renderFooter())

	return sb.String()
}

// Run starts the viewer
func Run(data *Data) error {
	p := tea.NewProgram(
		New(data),
		tea.WithAltScreen(),
	)
	_, err := p.Run()
	return err
}
