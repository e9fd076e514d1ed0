// ABOUTME: Dashboard pane listing per-model mean metrics for one case
// ABOUTME: Renders the mean data table with a scrollable bubbles table

package dashboard

import (
	"math"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/markalston/opfbench/internal/report"
	"github.com/markalston/opfbench/internal/tui/styles"
)

const (
	modelColWidth = 20
	minColWidth   = 10
	chromeHeight  = 4 // title, subtitle and their margins
)

// Dashboard displays the mean data table of a case
type Dashboard struct {
	caseName string
	mean     *report.Table
	table    table.Model
	width    int
	height   int
}

// New creates a dashboard over a mean table
func New(caseName string, mean *report.Table, width, height int) *Dashboard {
	d := &Dashboard{caseName: caseName, mean: mean}

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(styles.Muted).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(styles.Text).
		Background(styles.Primary).
		Bold(false)

	d.table = table.New(
		table.WithColumns(d.columns(width)),
		table.WithRows(d.rows()),
		table.WithFocused(true),
		table.WithStyles(s),
	)
	d.SetSize(width, height)
	return d
}

// SetSize updates the dashboard dimensions
func (d *Dashboard) SetSize(width, height int) {
	d.width = width
	d.height = height
	d.table.SetColumns(d.columns(width))
	d.table.SetHeight(max(3, height-chromeHeight))
	d.table.SetWidth(width)
}

// Update forwards navigation keys to the table
func (d *Dashboard) Update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	d.table, cmd = d.table.Update(msg)
	return cmd
}

// Focus enables keyboard navigation
func (d *Dashboard) Focus() { d.table.Focus() }

// Blur disables keyboard navigation
func (d *Dashboard) Blur() { d.table.Blur() }

// SelectedModel returns the model id under the cursor
func (d *Dashboard) SelectedModel() string {
	row := d.table.SelectedRow()
	if len(row) == 0 {
		return ""
	}
	return row[0]
}

// View renders the dashboard
func (d *Dashboard) View() string {
	var sb strings.Builder
	sb.WriteString(styles.Title.Render("Mean Metrics"))
	sb.WriteString("\n")
	sb.WriteString(styles.Subtitle.Render(d.caseName))
	sb.WriteString("\n")
	if d.mean == nil || len(d.mean.Rows()) == 0 {
		sb.WriteString("No mean data")
	} else {
		sb.WriteString(d.table.View())
	}

	return lipgloss.NewStyle().
		Width(d.width).
		Height(d.height).
		Render(sb.String())
}

func (d *Dashboard) columns(width int) []table.Column {
	if d.mean == nil {
		return []table.Column{{Title: "model", Width: modelColWidth}}
	}
	cols := d.mean.Cols()
	w := minColWidth
	if len(cols) > 0 {
		w = max(minColWidth, (width-modelColWidth-2*len(cols))/len(cols))
	}
	out := []table.Column{{Title: "model", Width: modelColWidth}}
	for _, c := range cols {
		out = append(out, table.Column{Title: c, Width: w})
	}
	return out
}

func (d *Dashboard) rows() []table.Row {
	if d.mean == nil {
		return nil
	}
	var out []table.Row
	for _, model := range d.mean.Rows() {
		row := table.Row{model}
		for _, v := range d.mean.Row(model) {
			row = append(row, FormatValue(v))
		}
		out = append(out, row)
	}
	return out
}

// FormatValue renders a cell with four significant digits, "-" when missing
func FormatValue(v float64) string {
	if math.IsNaN(v) {
		return "-"
	}
	return strconv.FormatFloat(v, 'g', 4, 64)
}
