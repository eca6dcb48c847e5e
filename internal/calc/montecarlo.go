package calc

import (
	"math"
	"math/rand/v2"
	"sort"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/banshee-data/aco.dashboard/internal/dataset"
)

// SimulationResult summarises a Monte Carlo run for one scenario ($M).
type SimulationResult struct {
	ScenarioID   int     `json:"scenario_id"`
	Iterations   int     `json:"iterations"`
	Seed         uint64  `json:"seed"`
	Mean         float64 `json:"mean"`
	StdDev       float64 `json:"std_dev"`
	P5           float64 `json:"p5"`
	P50          float64 `json:"p50"`
	P95          float64 `json:"p95"`
	ProbPositive float64 `json:"prob_positive"` // fraction of draws above zero
	ProbTarget   float64 `json:"prob_target"`   // fraction of draws above TargetSavings

	// Samples are the draws in ascending order.
	Samples []float64 `json:"-"`
}

// Simulate draws iterations savings outcomes from the scenario's normal
// distribution. The same seed always yields the same result.
func Simulate(sc dataset.ScenarioConfig, iterations int, seed uint64) SimulationResult {
	if iterations < 1 {
		iterations = 1
	}
	dist := distuv.Normal{
		Mu:    sc.Mean,
		Sigma: sc.StdDev,
		Src:   rand.NewPCG(seed, seed^0x9e3779b97f4a7c15),
	}

	samples := make([]float64, iterations)
	positive, target := 0, 0
	for i := range samples {
		v := dist.Rand()
		samples[i] = v
		if v > 0 {
			positive++
		}
		if v > TargetSavings {
			target++
		}
	}
	sort.Float64s(samples)

	mean, std := stat.MeanStdDev(samples, nil)
	n := float64(iterations)
	return SimulationResult{
		ScenarioID:   sc.ID,
		Iterations:   iterations,
		Seed:         seed,
		Mean:         mean,
		StdDev:       std,
		P5:           stat.Quantile(0.05, stat.Empirical, samples, nil),
		P50:          stat.Quantile(0.50, stat.Empirical, samples, nil),
		P95:          stat.Quantile(0.95, stat.Empirical, samples, nil),
		ProbPositive: float64(positive) / n,
		ProbTarget:   float64(target) / n,
		Samples:      samples,
	}
}

// Bin is one histogram bucket [Low, High).
type Bin struct {
	Low   float64 `json:"low"`
	High  float64 `json:"high"`
	Count float64 `json:"count"`
}

// Mid is the bucket centre.
func (b Bin) Mid() float64 { return (b.Low + b.High) / 2 }

// Histogram buckets sorted samples into bins of the given width, aligned to
// multiples of width.
func Histogram(sorted []float64, width float64) []Bin {
	if len(sorted) == 0 || width <= 0 {
		return nil
	}
	lo := math.Floor(sorted[0]/width) * width
	hi := math.Floor(sorted[len(sorted)-1]/width)*width + width
	bins := makeBins(lo, hi, width)
	for _, v := range sorted {
		i := int((v - lo) / width)
		if i >= len(bins) {
			i = len(bins) - 1
		}
		bins[i].Count++
	}
	return bins
}

// ExpectedHistogram is the histogram a run of iterations draws converges to,
// computed from the normal CDF over mean ± 4 standard deviations. It is
// deterministic for a scenario.
func ExpectedHistogram(sc dataset.ScenarioConfig, iterations int, width float64) []Bin {
	if width <= 0 || sc.StdDev <= 0 {
		return nil
	}
	dist := distuv.Normal{Mu: sc.Mean, Sigma: sc.StdDev}
	lo := math.Floor((sc.Mean-4*sc.StdDev)/width) * width
	hi := math.Ceil((sc.Mean+4*sc.StdDev)/width) * width
	bins := makeBins(lo, hi, width)
	for i := range bins {
		p := dist.CDF(bins[i].High) - dist.CDF(bins[i].Low)
		bins[i].Count = math.Round(p * float64(iterations))
	}
	return bins
}

func makeBins(lo, hi, width float64) []Bin {
	n := int(math.Round((hi - lo) / width))
	if n < 1 {
		n = 1
	}
	bins := make([]Bin, n)
	for i := range bins {
		bins[i].Low = lo + float64(i)*width
		bins[i].High = bins[i].Low + width
	}
	return bins
}
