// ABOUTME: Tests for sparkline and badge widgets
// ABOUTME: Validates scaling, gaps and deviation grading

package widgets

import (
	"math"
	"strings"
	"testing"
)

func TestSparklineScaling(t *testing.T) {
	got := Sparkline([]float64{0, 7, 14}, 10, "")

	if !strings.Contains(got, "▁▄█") {
		t.Errorf("expected low, mid and high blocks, got %q", got)
	}
}

func TestSparklineGaps(t *testing.T) {
	got := Sparkline([]float64{1, math.NaN(), 2, math.Inf(1)}, 10, "")

	if !strings.Contains(got, "▁ █ ") {
		t.Errorf("expected blanks for missing readings, got %q", got)
	}
}

func TestSparklineFlatAndEmpty(t *testing.T) {
	if got := Sparkline([]float64{3, 3}, 5, ""); !strings.Contains(got, "▅▅") {
		t.Errorf("expected middle blocks for a flat series, got %q", got)
	}
	if got := Sparkline(nil, 5, ""); got != "" {
		t.Errorf("expected empty sparkline, got %q", got)
	}
	if got := Sparkline([]float64{1}, 0, ""); got != "" {
		t.Errorf("expected empty sparkline for zero width, got %q", got)
	}
}

func TestSampleValues(t *testing.T) {
	got := sampleValues([]float64{0, 1, 2, 3, 4, 5, 6, 7}, 4)

	want := []float64{0, 2, 4, 6}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("sampleValues = %v, want %v", got, want)
		}
	}
}

func TestDeviationLevel(t *testing.T) {
	tests := []struct {
		pct  float64
		want StatusLevel
	}{
		{math.NaN(), StatusNeutral},
		{0.5, StatusOK},
		{-2, StatusWarning},
		{10, StatusCritical},
		{-25, StatusCritical},
	}
	for _, tc := range tests {
		if got := DeviationLevel(tc.pct); got != tc.want {
			t.Errorf("DeviationLevel(%v) = %d, want %d", tc.pct, got, tc.want)
		}
	}
}

func TestBadges(t *testing.T) {
	if !strings.Contains(DeviationBadge(-4.25), "-4.2%") && !strings.Contains(DeviationBadge(-4.25), "-4.3%") {
		t.Errorf("unexpected deviation badge %q", DeviationBadge(-4.25))
	}
	if !strings.Contains(DeviationBadge(math.NaN()), "n/a") {
		t.Error("expected n/a for unknown deviation")
	}
	if !strings.Contains(ModelBadge(true, false, false), "REF") {
		t.Error("expected REF badge for the reference")
	}
	if ModelBadge(false, false, false) != "" {
		t.Error("expected no badge for plain models")
	}
}
