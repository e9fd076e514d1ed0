// ABOUTME: Comparison pane plotting one sensitivity metric per model as sparklines
// ABOUTME: Each model is graded by its deviation from acopf at the nominal multiplier

package comparison

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/markalston/opfbench/internal/approx"
	"github.com/markalston/opfbench/internal/report"
	"github.com/markalston/opfbench/internal/tui/styles"
	"github.com/markalston/opfbench/internal/tui/widgets"
)

const nameWidth = 22

// Comparison displays a sensitivity table across demand multipliers
type Comparison struct {
	metric    string
	sens      *report.Table
	width     int
	highlight string
}

// New creates a comparison view of one sensitivity table
func New(metric string, sens *report.Table, width int) *Comparison {
	return &Comparison{metric: metric, sens: sens, width: width}
}

// SetWidth updates the pane width
func (c *Comparison) SetWidth(width int) { c.width = width }

// Highlight marks model as selected
func (c *Comparison) Highlight(model string) { c.highlight = model }

// Nominal returns the row label closest to a multiplier of 1
func (c *Comparison) Nominal() string {
	best, dist := "", math.Inf(1)
	for _, r := range c.sens.Rows() {
		m, err := strconv.ParseFloat(r, 64)
		if err != nil {
			continue
		}
		if d := math.Abs(m - 1); d < dist {
			best, dist = r, d
		}
	}
	return best
}

// Deviation is the percent difference of model from acopf at row, NaN when either is missing
func (c *Comparison) Deviation(model, row string) float64 {
	ac := c.sens.Get(row, approx.Reference)
	v := c.sens.Get(row, model)
	if math.IsNaN(ac) || math.IsNaN(v) || ac == 0 {
		return math.NaN()
	}
	return (v - ac) / math.Abs(ac) * 100
}

// View renders the comparison
func (c *Comparison) View() string {
	if c.sens == nil {
		return "No sensitivity data"
	}

	var sb strings.Builder
	sb.WriteString(styles.Title.Render("Sensitivity: " + c.metric))
	sb.WriteString("\n")

	rows := c.sens.Rows()
	if len(rows) == 0 {
		sb.WriteString("No multipliers recorded")
		return lipgloss.NewStyle().Width(c.width).Render(sb.String())
	}
	nominal := c.Nominal()
	sb.WriteString(styles.Subtitle.Render(fmt.Sprintf("mult %s to %s, deviation at %s", rows[0], rows[len(rows)-1], nominal)))
	sb.WriteString("\n")

	sparkWidth := max(4, c.width-nameWidth-24)
	for _, model := range c.sens.Cols() {
		name := fmt.Sprintf("%-*s", nameWidth, model)
		if model == c.highlight {
			name = styles.Selected.Render(name)
		}
		ref := model == approx.Reference
		color := styles.ModelColor(ref, approx.IsLazy(model))
		spark := widgets.Sparkline(c.sens.Col(model), sparkWidth, color)
		pad := strings.Repeat(" ", max(0, sparkWidth-lipgloss.Width(spark)))

		tag := widgets.ModelBadge(ref, approx.IsLazy(model), approx.IsTolerance(model))
		if !ref {
			tag = widgets.DeviationBadge(c.Deviation(model, nominal)) + " " + tag
		}
		sb.WriteString(fmt.Sprintf("%s %s%s %s\n", name, spark, pad, tag))
	}

	return lipgloss.NewStyle().Width(c.width).Render(sb.String())
}
