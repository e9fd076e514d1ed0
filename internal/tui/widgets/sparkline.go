// ABOUTME: Sparkline widget renders a metric series as block characters
// ABOUTME: Missing readings render as blanks so gaps in a sweep stay visible

package widgets

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// SparklineBlocks are the Unicode block characters for different heights
var SparklineBlocks = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// Sparkline renders one block per value, scaled between the finite min and max.
// NaN and infinite values render as a space. Longer series are sampled down to width.
func Sparkline(values []float64, width int, color lipgloss.Color) string {
	if len(values) == 0 || width <= 0 {
		return ""
	}

	sampled := sampleValues(values, width)
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range sampled {
		if finite(v) {
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
	}

	var sb strings.Builder
	for _, v := range sampled {
		if !finite(v) {
			sb.WriteRune(' ')
			continue
		}
		sb.WriteRune(valueToBlock(v, lo, hi))
	}

	style := lipgloss.NewStyle()
	if color != "" {
		style = style.Foreground(color)
	}
	return style.Render(sb.String())
}

// sampleValues picks width evenly spaced values; shorter series are returned as is
func sampleValues(values []float64, width int) []float64 {
	if len(values) <= width {
		return values
	}
	result := make([]float64, width)
	ratio := float64(len(values)) / float64(width)
	for i := range result {
		idx := int(float64(i) * ratio)
		if idx >= len(values) {
			idx = len(values) - 1
		}
		result[i] = values[idx]
	}
	return result
}

// valueToBlock converts a value to a block character based on its position in the range
func valueToBlock(value, lo, hi float64) rune {
	if hi == lo {
		return SparklineBlocks[len(SparklineBlocks)/2]
	}
	idx := int((value - lo) / (hi - lo) * float64(len(SparklineBlocks)-1))
	if idx < 0 {
		idx = 0
	}
	if idx >= len(SparklineBlocks) {
		idx = len(SparklineBlocks) - 1
	}
	return SparklineBlocks[idx]
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
