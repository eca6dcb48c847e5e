package calc

import "math"

// Baseline figures for the projection model ($M).
const (
	BaseSpend     = 486.7
	BaseBenchmark = 498.3
	BaseOON       = 115.3

	// TargetSavings is the shared-savings target ($M).
	TargetSavings = 10.5
)

// Range is an inclusive slider range.
type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

func (r Range) clamp(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Min(r.Max, math.Max(r.Min, v))
}

// Slider ranges, as fractions.
var (
	LivesGrowthRange = Range{Min: -0.05, Max: 0.10}
	RiskChangeRange  = Range{Min: -0.03, Max: 0.03}
	UtilChangeRange  = Range{Min: -0.05, Max: 0.05}
	LeakReduceRange  = Range{Min: 0, Max: 0.30}
)

// ProjectionInput holds the four scenario sliders as fractions
// (0.02 is +2%).
type ProjectionInput struct {
	LivesGrowth float64 `json:"lives_growth"`
	RiskChange  float64 `json:"risk_change"`
	UtilChange  float64 `json:"util_change"`
	LeakReduce  float64 `json:"leak_reduce"`
}

// Clamp limits every slider to its range.
func (in ProjectionInput) Clamp() ProjectionInput {
	return ProjectionInput{
		LivesGrowth: LivesGrowthRange.clamp(in.LivesGrowth),
		RiskChange:  RiskChangeRange.clamp(in.RiskChange),
		UtilChange:  UtilChangeRange.clamp(in.UtilChange),
		LeakReduce:  LeakReduceRange.clamp(in.LeakReduce),
	}
}

// Projection is the projected performance year for a slider setting.
// Amounts are unrounded; use Round1 for display.
type Projection struct {
	Input ProjectionInput `json:"input"`

	LivesImpact          float64 `json:"lives_impact"`
	LivesBenchmarkImpact float64 `json:"lives_benchmark_impact"`
	RiskBenchmarkImpact  float64 `json:"risk_benchmark_impact"`
	RiskSpendImpact      float64 `json:"risk_spend_impact"`
	UtilImpact           float64 `json:"util_impact"`
	LeakImpact           float64 `json:"leak_impact"`

	NewSpend     float64 `json:"new_spend"`
	NewBenchmark float64 `json:"new_benchmark"`
	NewSavings   float64 `json:"new_savings"`

	Uncertainty float64 `json:"uncertainty"`
	Breakeven   int     `json:"breakeven_probability"`
	Target      int     `json:"target_probability"`
	Loss        int     `json:"loss_probability"`
}

// Project runs the projection model on the clamped input.
func Project(in ProjectionInput) Projection {
	in = in.Clamp()
	p := Projection{Input: in}

	p.LivesImpact = BaseSpend * in.LivesGrowth
	p.LivesBenchmarkImpact = BaseBenchmark * in.LivesGrowth
	p.RiskBenchmarkImpact = BaseBenchmark * in.RiskChange * 0.8
	p.RiskSpendImpact = BaseSpend * in.RiskChange * 0.5
	p.UtilImpact = BaseSpend * in.UtilChange
	p.LeakImpact = -BaseOON * in.LeakReduce * 0.7

	p.NewSpend = BaseSpend + p.LivesImpact + p.UtilImpact + p.LeakImpact + p.RiskSpendImpact
	p.NewBenchmark = BaseBenchmark + p.LivesBenchmarkImpact + p.RiskBenchmarkImpact
	p.NewSavings = p.NewBenchmark - p.NewSpend

	// The uncertainty factor works in slider units (percentage points).
	p.Uncertainty = math.Abs(in.LivesGrowth*100)*10 + math.Abs(in.UtilChange*100)*15

	breakeven, target, loss := baseProbabilities(p.NewSavings)
	p.Breakeven = clampPercent(breakeven - p.Uncertainty)
	p.Target = clampPercent(target - p.Uncertainty)
	p.Loss = clampPercent(loss + p.Uncertainty)
	return p
}

func baseProbabilities(savings float64) (breakeven, target, loss float64) {
	switch {
	case savings >= 15:
		return 98, 85, 2
	case savings >= TargetSavings:
		return 95, 65, 5
	case savings >= 5:
		return 85, 35, 15
	case savings >= 0:
		return 60, 15, 40
	default:
		return 30, 5, 70
	}
}

func clampPercent(v float64) int {
	return int(math.Round(math.Min(100, math.Max(0, v))))
}

// Round1 rounds to one decimal place for display.
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}
