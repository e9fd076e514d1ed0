// ABOUTME: Integration tests for the viewer app
// ABOUTME: Tests pane switching, metric cycling and data loading

package tui

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/markalston/opfbench/internal/approx"
	"github.com/markalston/opfbench/internal/cache"
	"github.com/markalston/opfbench/internal/grid"
	"github.com/markalston/opfbench/internal/report"
)

const testCase = "pglib_opf_case3_lmbd"

func testData() *Data {
	mean := report.NewTable([]string{"acopf", "dlopf_lazy", "dcopf_btheta"}, []string{"num_buses", "solve_time_avg"})
	mean.Set("acopf", "num_buses", 3)
	mean.Set("acopf", "solve_time_avg", 0.8)
	mean.Set("dcopf_btheta", "num_buses", 3)

	cost := report.NewTable([]string{"0.9", "1", "1.1"}, []string{"acopf", "dcopf_btheta"})
	cost.Set("0.9", "acopf", 100)
	cost.Set("1", "acopf", 120)
	cost.Set("1", "dcopf_btheta", 108)

	infeas := report.NewTable([]string{"1"}, []string{"acopf"})
	infeas.Set("1", "acopf", 0)

	return &Data{
		Case:        testCase,
		Mean:        mean,
		Metrics:     []string{"sum_infeas", "total_cost"},
		Sensitivity: map[string]*report.Table{"sum_infeas": infeas, "total_cost": cost},
	}
}

func key(s string) tea.KeyMsg {
	switch s {
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestAppInitialState(t *testing.T) {
	app := New(testData())

	if app.pane != PaneMean {
		t.Errorf("expected initial pane to be PaneMean, got %d", app.pane)
	}
	if app.Metric() != "sum_infeas" {
		t.Errorf("expected first metric, got %q", app.Metric())
	}
	if app.comparison == nil {
		t.Error("expected comparison to be initialized")
	}
}

func TestAppTabSwitchesPanes(t *testing.T) {
	app := New(testData())

	model, _ := app.Update(key("tab"))
	app = model.(*App)
	if app.pane != PaneSensitivity {
		t.Fatalf("expected PaneSensitivity after tab, got %d", app.pane)
	}

	model, _ = app.Update(key("tab"))
	app = model.(*App)
	if app.pane != PaneMean {
		t.Errorf("expected PaneMean after second tab, got %d", app.pane)
	}
}

func TestAppMetricCycling(t *testing.T) {
	app := New(testData())
	app.Update(key("tab"))

	app.Update(key("m"))
	if app.Metric() != "total_cost" {
		t.Errorf("expected total_cost, got %q", app.Metric())
	}
	app.Update(key("m"))
	if app.Metric() != "sum_infeas" {
		t.Errorf("expected wrap to sum_infeas, got %q", app.Metric())
	}
	app.Update(key("M"))
	if app.Metric() != "total_cost" {
		t.Errorf("expected backwards wrap to total_cost, got %q", app.Metric())
	}
}

func TestAppMetricKeysIgnoredOnMeanPane(t *testing.T) {
	app := New(testData())

	app.Update(key("m"))
	if app.Metric() != "sum_infeas" {
		t.Errorf("expected metric unchanged on mean pane, got %q", app.Metric())
	}
}

func TestAppQuit(t *testing.T) {
	for _, k := range []string{"q", "ctrl+c"} {
		t.Run(k, func(t *testing.T) {
			app := New(testData())
			_, cmd := app.Update(key(k))
			if cmd == nil {
				t.Fatal("expected quit command")
			}
			if _, ok := cmd().(tea.QuitMsg); !ok {
				t.Error("expected tea.QuitMsg")
			}
		})
	}
}

func TestAppSelectionHighlightsModel(t *testing.T) {
	app := New(testData())
	app.Update(tea.WindowSizeMsg{Width: 120, Height: 40})

	app.Update(key("down"))
	if got := app.dashboard.SelectedModel(); got != "dlopf_lazy" {
		t.Errorf("expected dlopf_lazy selected, got %q", got)
	}
}

func TestAppViewReturnsContent(t *testing.T) {
	app := New(testData())
	app.Update(tea.WindowSizeMsg{Width: 140, Height: 40})

	view := app.View()
	for _, want := range []string{"OPF Approximation Bench", testCase, "Mean Metrics", "Sensitivity: sum_infeas", "Navigate"} {
		if !strings.Contains(view, want) {
			t.Errorf("expected view to contain %q", want)
		}
	}

	app.Update(key("tab"))
	if view := app.View(); !strings.Contains(view, "Metric") {
		t.Error("expected sensitivity footer to show the metric shortcut")
	}
}

func TestAppWithoutSensitivityData(t *testing.T) {
	data := testData()
	data.Metrics = nil
	data.Sensitivity = nil
	app := New(data)

	app.Update(key("tab"))
	app.Update(key("m"))

	if app.Metric() != "" {
		t.Errorf("expected no metric, got %q", app.Metric())
	}
	if !strings.Contains(app.View(), "No sensitivity data") {
		t.Error("expected placeholder when no sensitivity tables exist")
	}
}

func TestLoad(t *testing.T) {
	root := t.TempDir()
	r := &report.Reporter{
		Loader:      report.NewLoader(cache.New(), 2),
		SolutionDir: filepath.Join(root, "solutions"),
		SummaryDir:  filepath.Join(root, "summary"),
	}
	dir := r.CaseDir(testCase)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	for _, model := range []string{"acopf", "dlopf_lazy"} {
		md := grid.New()
		md.SetSystem("mult", 1.0)
		md.SetSystem("total_cost", 10.0)
		if _, err := md.WriteFile(filepath.Join(dir, testCase+"_"+model+"_1000")); err != nil {
			t.Fatal(err)
		}
	}
	ctx := context.Background()
	if _, _, err := r.MeanData(ctx, testCase, []string{"total_cost"}); err != nil {
		t.Fatal(err)
	}
	if _, _, err := r.SensitivityData(ctx, testCase, approx.All(), "total_cost", report.ModeNominal, 2); err != nil {
		t.Fatal(err)
	}

	data, err := Load(r, testCase, approx.All().WithoutVariants())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(data.Metrics) != 1 || data.Metrics[0] != "total_cost" {
		t.Errorf("expected [total_cost], got %v", data.Metrics)
	}
	if data.Mean.HasRow("dlopf_lazy") {
		t.Error("expected lazy variant dropped from mean table")
	}
	if data.Sensitivity["total_cost"].HasCol("dlopf_lazy") {
		t.Error("expected lazy variant dropped from sensitivity table")
	}

	if _, err := Load(r, "pglib_opf_case5_pjm", approx.All()); err == nil {
		t.Error("expected error for case without mean data")
	}
}
