package calc

import (
	"math"
	"testing"
)

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestProject_KnownInputs(t *testing.T) {
	in := ProjectionInput{LivesGrowth: 0.02, RiskChange: 0, UtilChange: -0.01, LeakReduce: 0.02}
	p := Project(in)

	wantSpend := 486.7 + 486.7*0.02 + 486.7*-0.01 + -115.3*0.02*0.7 + 486.7*0*0.5
	wantBenchmark := 498.3 + 498.3*0.02 + 498.3*0*0.8
	if !approx(p.NewSpend, wantSpend) {
		t.Errorf("NewSpend = %v, want %v", p.NewSpend, wantSpend)
	}
	if !approx(p.NewBenchmark, wantBenchmark) {
		t.Errorf("NewBenchmark = %v, want %v", p.NewBenchmark, wantBenchmark)
	}
	if !approx(p.NewSavings, wantBenchmark-wantSpend) {
		t.Errorf("NewSavings = %v, want %v", p.NewSavings, wantBenchmark-wantSpend)
	}

	if got := Round1(p.NewSpend); got != 490.0 {
		t.Errorf("rounded spend = %v, want 490.0", got)
	}
	if got := Round1(p.NewSavings); got != 18.3 {
		t.Errorf("rounded savings = %v, want 18.3", got)
	}

	// uncertainty = 2*10 + 1*15; savings >= 15 band is (98, 85, 2).
	if math.Abs(p.Uncertainty-35) > 1e-9 {
		t.Errorf("Uncertainty = %v, want 35", p.Uncertainty)
	}
	if p.Breakeven != 63 || p.Target != 50 || p.Loss != 37 {
		t.Errorf("probabilities = (%d, %d, %d), want (63, 50, 37)", p.Breakeven, p.Target, p.Loss)
	}
}

func TestProject_Baseline(t *testing.T) {
	p := Project(ProjectionInput{})
	if !approx(p.NewSavings, BaseBenchmark-BaseSpend) {
		t.Errorf("baseline savings = %v, want %v", p.NewSavings, BaseBenchmark-BaseSpend)
	}
	// 11.6 sits in the >= 10.5 band with no uncertainty.
	if p.Breakeven != 95 || p.Target != 65 || p.Loss != 5 {
		t.Errorf("probabilities = (%d, %d, %d), want (95, 65, 5)", p.Breakeven, p.Target, p.Loss)
	}
}

func TestProject_ProbabilityBands(t *testing.T) {
	tests := []struct {
		savings                 float64
		breakeven, target, loss float64
	}{
		{20, 98, 85, 2},
		{15, 98, 85, 2},
		{10.5, 95, 65, 5},
		{7, 85, 35, 15},
		{0, 60, 15, 40},
		{-0.1, 30, 5, 70},
	}
	for _, tt := range tests {
		b, tg, l := baseProbabilities(tt.savings)
		if b != tt.breakeven || tg != tt.target || l != tt.loss {
			t.Errorf("baseProbabilities(%v) = (%v, %v, %v), want (%v, %v, %v)", tt.savings, b, tg, l, tt.breakeven, tt.target, tt.loss)
		}
	}
}

func TestProject_ClampsInputsAndProbabilities(t *testing.T) {
	p := Project(ProjectionInput{LivesGrowth: 0.5, RiskChange: -1, UtilChange: 0.5, LeakReduce: 2})
	want := ProjectionInput{LivesGrowth: 0.10, RiskChange: -0.03, UtilChange: 0.05, LeakReduce: 0.30}
	if p.Input != want {
		t.Errorf("clamped input = %+v, want %+v", p.Input, want)
	}
	// uncertainty = 10*10 + 5*15 = 175 pushes every probability to a bound.
	if p.Breakeven != 0 || p.Target != 0 || p.Loss != 100 {
		t.Errorf("probabilities = (%d, %d, %d), want (0, 0, 100)", p.Breakeven, p.Target, p.Loss)
	}

	nan := Project(ProjectionInput{LivesGrowth: math.NaN()})
	if nan.Input.LivesGrowth != 0 {
		t.Errorf("NaN input clamped to %v, want 0", nan.Input.LivesGrowth)
	}
}

func TestRound1(t *testing.T) {
	for in, want := range map[float64]float64{489.9528: 490.0, 18.3132: 18.3, -3.75: -3.8, 0.05: 0.1} {
		if got := Round1(in); got != want {
			t.Errorf("Round1(%v) = %v, want %v", in, got, want)
		}
	}
}
