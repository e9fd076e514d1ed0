// ABOUTME: Reads result artifacts for one case and model into a series ordered by multiplier
// ABOUTME: Artifacts decode in parallel with a bounded errgroup and are memoised across calls

package report

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/markalston/opfbench/internal/cache"
	"github.com/markalston/opfbench/internal/grid"
)

// Point is one metric reading at one demand multiplier
type Point struct {
	Mult  float64
	Value Value
}

// Series holds the readings of one model, sorted by multiplier
type Series struct {
	Model  string
	Metric string
	Points []Point
}

// Scalars returns the scalar values in multiplier order
func (s Series) Scalars() []float64 {
	out := make([]float64, len(s.Points))
	for i, p := range s.Points {
		out[i] = p.Value.Scalar
	}
	return out
}

// At returns the point at mult
func (s Series) At(mult float64) (Value, bool) {
	for _, p := range s.Points {
		if p.Mult == mult {
			return p.Value, true
		}
	}
	return Value{}, false
}

// Loader reads artifacts from disk
type Loader struct {
	memo        *cache.Cache
	concurrency int
}

// NewLoader returns a loader decoding at most concurrency files at once
func NewLoader(memo *cache.Cache, concurrency int) *Loader {
	if memo == nil {
		memo = cache.New()
	}
	if concurrency < 1 {
		concurrency = 1
	}
	return &Loader{memo: memo, concurrency: concurrency}
}

// Files returns the artifacts for caseName and model in caseDir
func Files(caseDir, caseName, model string) ([]string, error) {
	prefix := caseName + "_" + model + "_"
	matches, err := filepath.Glob(filepath.Join(caseDir, prefix+"*.json"))
	if err != nil {
		return nil, err
	}
	// keep <prefix><digits>.json only, so model "clopf" never picks up clopf_p files
	out := matches[:0]
	for _, m := range matches {
		rest := strings.TrimSuffix(strings.TrimPrefix(filepath.Base(m), prefix), ".json")
		if rest != "" && strings.Trim(rest, "0123456789") == "" {
			out = append(out, m)
		}
	}
	sort.Strings(out)
	return out, nil
}

// Snapshot decodes one artifact through the memo
func (l *Loader) Snapshot(path string) (*grid.ModelData, error) {
	v, err := l.memo.Load(path, func(p string) (any, error) {
		return grid.ReadFile(p)
	})
	if err != nil {
		return nil, err
	}
	return v.(*grid.ModelData), nil
}

// Series reads metric from every artifact of model. No artifacts is an empty
// series, not an error.
func (l *Loader) Series(ctx context.Context, caseDir, caseName, model string, metric Metric) (Series, error) {
	series := Series{Model: model, Metric: metric.Name}

	files, err := Files(caseDir, caseName, model)
	if err != nil {
		return series, err
	}
	if len(files) == 0 {
		slog.Debug("No artifacts", "case", caseName, "model", model)
		return series, nil
	}
	slog.Debug("Reading artifacts", "case", caseName, "model", model, "metric", metric.Name, "files", len(files))

	points := make([]Point, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(l.concurrency)
	for i, f := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			md, err := l.Snapshot(f)
			if err != nil {
				return err
			}
			mult, ok := md.SystemFloat("mult")
			if !ok {
				return fmt.Errorf("%s: system.mult missing", filepath.Base(f))
			}
			v, err := metric.Extract(md)
			if err != nil {
				return fmt.Errorf("%s: %s: %w", filepath.Base(f), metric.Name, err)
			}
			points[i] = Point{Mult: mult, Value: v}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return series, err
	}

	sort.SliceStable(points, func(a, b int) bool { return points[a].Mult < points[b].Mult })
	series.Points = points
	return series, nil
}
