// ABOUTME: Inline badges tagging approximation models and their deviation from the reference
// ABOUTME: Colour encodes how far a model strays from acopf

package widgets

import (
	"fmt"
	"math"

	"github.com/charmbracelet/lipgloss"
)

// StatusLevel represents the severity of a deviation
type StatusLevel int

const (
	StatusOK StatusLevel = iota
	StatusWarning
	StatusCritical
	StatusInfo
	StatusNeutral
)

// Badge colors
var (
	BadgeOKBg      = lipgloss.Color("#10B981")
	BadgeOKFg      = lipgloss.Color("#FFFFFF")
	BadgeWarnBg    = lipgloss.Color("#F59E0B")
	BadgeWarnFg    = lipgloss.Color("#000000")
	BadgeCritBg    = lipgloss.Color("#EF4444")
	BadgeCritFg    = lipgloss.Color("#FFFFFF")
	BadgeInfoBg    = lipgloss.Color("#3B82F6")
	BadgeInfoFg    = lipgloss.Color("#FFFFFF")
	BadgeNeutralBg = lipgloss.Color("#6B7280")
	BadgeNeutralFg = lipgloss.Color("#FFFFFF")
)

// Deviation thresholds in percent
const (
	WarnPct = 1.0
	CritPct = 10.0
)

// Badge renders a colored badge
func Badge(text string, level StatusLevel) string {
	var bg, fg lipgloss.Color

	switch level {
	case StatusOK:
		bg, fg = BadgeOKBg, BadgeOKFg
	case StatusWarning:
		bg, fg = BadgeWarnBg, BadgeWarnFg
	case StatusCritical:
		bg, fg = BadgeCritBg, BadgeCritFg
	case StatusInfo:
		bg, fg = BadgeInfoBg, BadgeInfoFg
	default:
		bg, fg = BadgeNeutralBg, BadgeNeutralFg
	}

	style := lipgloss.NewStyle().
		Background(bg).
		Foreground(fg).
		Padding(0, 1).
		Bold(true)

	return style.Render(text)
}

// ModelBadge tags the reference model and lazy or tolerance variants; plain models get none
func ModelBadge(reference, lazy, tolerance bool) string {
	switch {
	case reference:
		return Badge("REF", StatusWarning)
	case lazy:
		return Badge("LAZY", StatusInfo)
	case tolerance:
		return Badge("TOL", StatusNeutral)
	}
	return ""
}

// DeviationLevel grades an absolute percent difference from the reference
func DeviationLevel(pct float64) StatusLevel {
	switch {
	case math.IsNaN(pct):
		return StatusNeutral
	case math.Abs(pct) >= CritPct:
		return StatusCritical
	case math.Abs(pct) >= WarnPct:
		return StatusWarning
	}
	return StatusOK
}

// DeviationBadge renders a signed percent difference, "n/a" when unknown
func DeviationBadge(pct float64) string {
	text := "n/a"
	if !math.IsNaN(pct) {
		text = fmt.Sprintf("%+.1f%%", pct)
	}
	return Badge(text, DeviationLevel(pct))
}
