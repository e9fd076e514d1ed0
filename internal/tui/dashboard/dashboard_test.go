// ABOUTME: Tests for the mean metrics dashboard
// ABOUTME: Validates table rendering, navigation and value formatting

package dashboard

import (
	"math"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/markalston/opfbench/internal/report"
)

func meanTable() *report.Table {
	t := report.NewTable([]string{"acopf", "slopf"}, []string{"num_buses", "solve_time_avg"})
	t.Set("acopf", "num_buses", 118)
	t.Set("acopf", "solve_time_avg", 0.123456)
	t.Set("slopf", "num_buses", 118)
	return t
}

func TestDashboardView(t *testing.T) {
	d := New("pglib_opf_case118_ieee", meanTable(), 120, 24)
	view := d.View()

	for _, expected := range []string{"Mean Metrics", "pglib_opf_case118_ieee", "num_buses", "acopf", "0.1235", "118"} {
		if !strings.Contains(view, expected) {
			t.Errorf("expected view to contain %q\nView:\n%s", expected, view)
		}
	}
}

func TestDashboardEmpty(t *testing.T) {
	d := New("case", report.NewTable(nil, nil), 80, 24)

	if !strings.Contains(d.View(), "No mean data") {
		t.Error("expected placeholder for empty table")
	}
	if d.SelectedModel() != "" {
		t.Errorf("expected no selection, got %q", d.SelectedModel())
	}
}

func TestDashboardNavigation(t *testing.T) {
	d := New("case", meanTable(), 120, 24)

	if got := d.SelectedModel(); got != "acopf" {
		t.Fatalf("expected acopf selected first, got %q", got)
	}
	d.Update(tea.KeyMsg{Type: tea.KeyDown})
	if got := d.SelectedModel(); got != "slopf" {
		t.Errorf("expected slopf after down, got %q", got)
	}

	d.Blur()
	d.Update(tea.KeyMsg{Type: tea.KeyUp})
	if got := d.SelectedModel(); got != "slopf" {
		t.Errorf("expected blurred table to ignore keys, got %q", got)
	}
}

func TestFormatValue(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{math.NaN(), "-"},
		{3, "3"},
		{0.000123456, "0.0001235"},
		{5812.64, "5813"},
	}
	for _, tc := range tests {
		if got := FormatValue(tc.in); got != tc.want {
			t.Errorf("FormatValue(%v) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
