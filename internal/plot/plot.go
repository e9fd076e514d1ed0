// ABOUTME: Renders summary tables as PNG figures: pareto, sensitivity and case-size plots
// ABOUTME: Figures are drawn with gonum/plot and written into the summary figures directory

package plot

import (
	"errors"
	"fmt"
	"image/color"
	"log/slog"
	"math"
	"path/filepath"
	"strconv"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/markalston/opfbench/internal/approx"
	"github.com/markalston/opfbench/internal/report"
)

// ErrNoData is returned when a table has nothing plottable
var ErrNoData = errors.New("no data to plot")

// Marker area bounds for case-size plots, in square points
const (
	DefaultMinSize = 5.0
	DefaultMaxSize = 500.0
	defaultArea    = 36.0
)

// Renderer writes figures into Dir
type Renderer struct {
	Dir      string
	Width    vg.Length
	Height   vg.Length
	Annotate bool
	MinSize  float64
	MaxSize  float64
}

// NewRenderer returns a renderer with default page and marker sizes
func NewRenderer(dir string) *Renderer {
	return &Renderer{
		Dir:     dir,
		Width:   8 * vg.Inch,
		Height:  6 * vg.Inch,
		MinSize: DefaultMinSize,
		MaxSize: DefaultMaxSize,
	}
}

// ParetoFile is the pareto figure name
func ParetoFile(caseName, yCol, xCol string) string {
	return "paretoplot_" + caseName + "_" + yCol + "_v_" + xCol + ".png"
}

// SensitivityFile is the sensitivity figure name
func SensitivityFile(caseName, metric string) string {
	return "sensitivityplot_" + caseName + "_" + metric + ".png"
}

// CaseSizeFile is the case-size figure name
func CaseSizeFile(yCol, xCol string) string {
	return "casesizeplot_" + yCol + "_v_" + xCol + ".png"
}

// Pareto scatters one point per model from a mean table: xCol against yCol.
// Lazy models get a box, acopf a cross, everything else a circle.
func (r *Renderer) Pareto(caseName string, mean *report.Table, xCol, yCol string) (string, error) {
	if !mean.HasCol(xCol) || !mean.HasCol(yCol) {
		return "", fmt.Errorf("mean data for %s has no %s or %s column", caseName, xCol, yCol)
	}

	p := plot.New()
	p.Title.Text = yCol + " vs. " + xCol + "\n(" + caseName + ")"
	p.X.Label.Text = label(xCol)
	p.Y.Label.Text = label(yCol)
	p.Add(plotter.NewGrid())

	models := mean.Rows()
	colors := palette(len(models))
	var names []string
	var labelled plotter.XYs
	for i, m := range models {
		x, y := mean.Get(m, xCol), mean.Get(m, yCol)
		if !finite(x) || !finite(y) {
			continue
		}
		pt := plotter.XYs{{X: x, Y: y}}
		s, err := plotter.NewScatter(pt)
		if err != nil {
			return "", err
		}
		s.GlyphStyle = draw.GlyphStyle{Color: colors[i], Radius: areaRadius(defaultArea), Shape: paretoShape(m)}
		p.Add(s)
		p.Legend.Add(m, s)
		names = append(names, m)
		labelled = append(labelled, pt...)
	}
	if len(names) == 0 {
		return "", fmt.Errorf("pareto %s: %w", caseName, ErrNoData)
	}
	if err := r.annotate(p, labelled, names); err != nil {
		return "", err
	}
	return r.save(p, ParetoFile(caseName, yCol, xCol))
}

// Sensitivity draws one line per model column of a sensitivity table against
// the demand multiplier row labels. NaN cells break nothing; they are skipped.
func (r *Renderer) Sensitivity(caseName string, sens *report.Table, metric string) (string, error) {
	mults := make([]float64, 0, len(sens.Rows()))
	for _, row := range sens.Rows() {
		v, err := strconv.ParseFloat(row, 64)
		if err != nil {
			return "", fmt.Errorf("sensitivity row %q is not a multiplier: %w", row, err)
		}
		mults = append(mults, v)
	}

	p := plot.New()
	p.Title.Text = metric + " (" + caseName + ")"
	p.X.Label.Text = "Demand Multiplier"
	p.Y.Label.Text = label(metric)
	p.Add(plotter.NewGrid())

	models := sens.Cols()
	colors := palette(len(models))
	drawn := 0
	for i, m := range models {
		var xys plotter.XYs
		for j, v := range sens.Col(m) {
			if finite(v) {
				xys = append(xys, plotter.XY{X: mults[j], Y: v})
			}
		}
		if len(xys) == 0 {
			slog.Debug("No sensitivity points", "case", caseName, "model", m)
			continue
		}
		l, err := plotter.NewLine(xys)
		if err != nil {
			return "", err
		}
		l.Color = colors[i]
		l.Width = vg.Points(1.5)
		p.Add(l)

		shape, ok := sensitivityShape(m)
		if !ok {
			p.Legend.Add(m, l)
			drawn++
			continue
		}
		s, err := plotter.NewScatter(xys)
		if err != nil {
			return "", err
		}
		s.GlyphStyle = draw.GlyphStyle{Color: colors[i], Radius: vg.Points(3), Shape: shape}
		p.Add(s)
		p.Legend.Add(m, l, s)
		drawn++
	}
	if drawn == 0 {
		return "", fmt.Errorf("sensitivity %s %s: %w", caseName, metric, ErrNoData)
	}
	return r.save(p, SensitivityFile(caseName, metric))
}

// CaseSize scatters every case of each model, xCol against yCol. When the
// series carry sizes, marker area scales linearly between MinSize and MaxSize.
func (r *Renderer) CaseSize(series []report.SizeSeries, xCol, yCol string) (string, error) {
	p := plot.New()
	p.Title.Text = yCol + " vs. " + xCol
	p.X.Label.Text = label(xCol)
	p.Y.Label.Text = label(yCol)
	p.Add(plotter.NewGrid())

	lo, hi := sizeRange(series)
	colors := palette(len(series))
	var names []string
	var labelled plotter.XYs
	for i, s := range series {
		if len(s.Points) == 0 {
			continue
		}
		xys := make(plotter.XYs, len(s.Points))
		radii := make([]vg.Length, len(s.Points))
		for j, pt := range s.Points {
			xys[j] = plotter.XY{X: pt.X, Y: pt.Y}
			radii[j] = areaRadius(r.scaleArea(pt.Size, lo, hi))
		}
		sc, err := plotter.NewScatter(xys)
		if err != nil {
			return "", fmt.Errorf("%s: %w", s.Model, err)
		}
		c := colors[i]
		sc.GlyphStyle = draw.GlyphStyle{Color: c, Radius: areaRadius(defaultArea), Shape: draw.CircleGlyph{}}
		sc.GlyphStyleFunc = func(j int) draw.GlyphStyle {
			return draw.GlyphStyle{Color: c, Radius: radii[j], Shape: draw.CircleGlyph{}}
		}
		p.Add(sc)
		p.Legend.Add(s.Model, sc)
		for range s.Points {
			names = append(names, s.Model)
		}
		labelled = append(labelled, xys...)
	}
	if len(labelled) == 0 {
		return "", fmt.Errorf("case size: %w", ErrNoData)
	}
	if err := r.annotate(p, labelled, names); err != nil {
		return "", err
	}
	return r.save(p, CaseSizeFile(yCol, xCol))
}

func (r *Renderer) annotate(p *plot.Plot, xys plotter.XYs, names []string) error {
	if !r.Annotate {
		return nil
	}
	labels, err := plotter.NewLabels(plotter.XYLabels{XYs: xys, Labels: names})
	if err != nil {
		return err
	}
	p.Add(labels)
	return nil
}

// scaleArea maps size from [lo, hi] onto [MinSize, MaxSize]
func (r *Renderer) scaleArea(size, lo, hi float64) float64 {
	if !finite(size) || !finite(lo) || hi <= lo {
		return defaultArea
	}
	return r.MinSize + (size-lo)/(hi-lo)*(r.MaxSize-r.MinSize)
}

func (r *Renderer) save(p *plot.Plot, name string) (string, error) {
	p.Legend.Top = true
	path := filepath.Join(r.Dir, name)
	if err := p.Save(r.Width, r.Height, path); err != nil {
		return "", fmt.Errorf("save %s: %w", name, err)
	}
	slog.Info("Wrote figure", "file", path)
	return path, nil
}

func sizeRange(series []report.SizeSeries) (lo, hi float64) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, s := range series {
		for _, p := range s.Points {
			if finite(p.Size) {
				lo = math.Min(lo, p.Size)
				hi = math.Max(hi, p.Size)
			}
		}
	}
	return lo, hi
}

// areaRadius converts a marker area in square points to a glyph radius
func areaRadius(area float64) vg.Length {
	return vg.Points(math.Sqrt(area) / 2)
}

func paretoShape(model string) draw.GlyphDrawer {
	switch {
	case approx.IsLazy(model):
		return draw.BoxGlyph{}
	case model == approx.Reference:
		return draw.CrossGlyph{}
	default:
		return draw.CircleGlyph{}
	}
}

// sensitivityShape marks the plain variant of each family; the rest are bare lines
func sensitivityShape(model string) (draw.GlyphDrawer, bool) {
	switch model {
	case "slopf":
		return draw.SquareGlyph{}, true
	case "dlopf_default", "clopf_p_default", "dcopf_ptdf_default":
		return draw.PyramidGlyph{}, true
	case "clopf_default", "qcopf_btheta", "dcopf_btheta":
		return draw.TriangleGlyph{}, true
	}
	return nil, false
}

// palette samples n colours evenly from a perceptually uniform map
func palette(n int) []color.Color {
	if n < 2 {
		return []color.Color{plotutil.Color(0)}
	}
	cm := moreland.Kindlmann()
	cm.SetMin(0)
	cm.SetMax(1)
	out := make([]color.Color, n)
	for i := range out {
		c, err := cm.At(float64(i) / float64(n-1) * 0.9)
		if err != nil {
			c = plotutil.Color(i)
		}
		out[i] = c
	}
	return out
}

// label appends the unit of a column when it is known
func label(col string) string {
	if u := Unit(col); u != "" {
		return col + " (" + u + ")"
	}
	return col
}

// Unit returns the unit of a summary column, resolving derived solve_time columns
func Unit(col string) string {
	for _, name := range []string{col, strings.TrimSuffix(strings.TrimSuffix(strings.TrimSuffix(col, "_avg"), "_max"), "_geomean")} {
		if m, err := report.LookupMetric(name); err == nil {
			return m.Unit
		}
	}
	return ""
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
