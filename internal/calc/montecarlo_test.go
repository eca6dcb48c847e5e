package calc

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/banshee-data/aco.dashboard/internal/dataset"
)

func TestSimulate_Reproducible(t *testing.T) {
	sc, err := dataset.MustLoad().Scenario(2)
	if err != nil {
		t.Fatal(err)
	}
	a := Simulate(sc, 5000, 7)
	b := Simulate(sc, 5000, 7)
	if diff := cmp.Diff(a, b); diff != "" {
		t.Errorf("same seed produced different results (-a +b):\n%s", diff)
	}

	c := Simulate(sc, 5000, 8)
	if a.Mean == c.Mean {
		t.Error("different seeds produced identical means")
	}
}

func TestSimulate_MatchesScenario(t *testing.T) {
	for _, sc := range dataset.MustLoad().Scenarios {
		r := Simulate(sc, 20000, 42)

		if math.Abs(r.Mean-sc.Mean) > 0.15 {
			t.Errorf("%s: mean = %.3f, want ~%.1f", sc.Name, r.Mean, sc.Mean)
		}
		if math.Abs(r.StdDev-sc.StdDev) > 0.15 {
			t.Errorf("%s: std = %.3f, want ~%.1f", sc.Name, r.StdDev, sc.StdDev)
		}
		if !(r.P5 < r.P50 && r.P50 < r.P95) {
			t.Errorf("%s: percentiles out of order: %v %v %v", sc.Name, r.P5, r.P50, r.P95)
		}
		// The published 90% band is the 5th..95th percentile.
		if math.Abs(r.P5-sc.ConfidenceLow) > 0.3 || math.Abs(r.P95-sc.ConfidenceHigh) > 0.3 {
			t.Errorf("%s: band %.2f..%.2f, want ~%.1f..%.1f", sc.Name, r.P5, r.P95, sc.ConfidenceLow, sc.ConfidenceHigh)
		}
		if r.ProbTarget > r.ProbPositive {
			t.Errorf("%s: P(>target) %v exceeds P(>0) %v", sc.Name, r.ProbTarget, r.ProbPositive)
		}
		if len(r.Samples) != 20000 {
			t.Errorf("%s: %d samples", sc.Name, len(r.Samples))
		}
	}
}

func TestHistogram(t *testing.T) {
	bins := Histogram([]float64{0.2, 0.7, 1.1, 2.9, 3.0}, 1)
	want := []Bin{
		{Low: 0, High: 1, Count: 2},
		{Low: 1, High: 2, Count: 1},
		{Low: 2, High: 3, Count: 1},
		{Low: 3, High: 4, Count: 1},
	}
	if diff := cmp.Diff(want, bins); diff != "" {
		t.Errorf("Histogram mismatch (-want +got):\n%s", diff)
	}
	if bins[0].Mid() != 0.5 {
		t.Errorf("Mid = %v", bins[0].Mid())
	}
	if Histogram(nil, 1) != nil || Histogram([]float64{1}, 0) != nil {
		t.Error("degenerate input should return nil")
	}
}

func TestHistogram_CountsEverySample(t *testing.T) {
	sc, _ := dataset.MustLoad().Scenario(4)
	r := Simulate(sc, 3000, 1)
	total := 0.0
	for _, b := range Histogram(r.Samples, 1) {
		total += b.Count
	}
	if total != 3000 {
		t.Errorf("histogram holds %v samples, want 3000", total)
	}
}

func TestExpectedHistogram(t *testing.T) {
	sc, _ := dataset.MustLoad().Scenario(1)
	a := ExpectedHistogram(sc, 10000, 1)
	b := ExpectedHistogram(sc, 10000, 1)
	if diff := cmp.Diff(a, b); diff != "" {
		t.Errorf("expected histogram not deterministic:\n%s", diff)
	}

	total := 0.0
	peak := a[0]
	for _, bin := range a {
		total += bin.Count
		if bin.Count > peak.Count {
			peak = bin
		}
	}
	if math.Abs(total-10000) > float64(len(a)) {
		t.Errorf("expected counts sum to %v, want ~10000", total)
	}
	if sc.Mean < peak.Low-1 || sc.Mean > peak.High+1 {
		t.Errorf("peak bin %v..%v is far from mean %v", peak.Low, peak.High, sc.Mean)
	}
	if ExpectedHistogram(sc, 100, 0) != nil {
		t.Error("zero width should return nil")
	}
}
