package chartspec

import (
	"fmt"
	"math"
	"sort"

	"github.com/banshee-data/aco.dashboard/internal/calc"
	"github.com/banshee-data/aco.dashboard/internal/dataset"
	"github.com/banshee-data/aco.dashboard/internal/state"
)

// PerformanceTrend plots monthly PMPM against the benchmark for a year.
// PMPM labels appear on every third month.
func PerformanceTrend(year int, points []dataset.TrendPoint) Spec {
	cats := make([]string, len(points))
	pmpm := make([]Point, len(points))
	bench := make([]Point, len(points))
	for i, p := range points {
		cats[i] = p.Month
		pmpm[i] = Point{Name: p.Month, Value: p.PMPM}
		bench[i] = Point{Name: p.Month, Value: p.Benchmark}
	}

	actual := newSeries("PMPM", KindLine, ColorPrimary, pmpm,
		LabelRule{Show: true, EveryN: 3, Position: "top", Format: FormatPMPM})
	actual.Smooth = true
	benchmark := newSeries("Benchmark", KindLine, ColorMuted, bench, LabelRule{})
	benchmark.Dashed = true

	return Spec{
		Slot:       SlotPerformanceTrend,
		Kind:       KindLine,
		Title:      "PMPM vs Benchmark",
		Subtitle:   fmt.Sprintf("Performance year %d", year),
		Categories: cats,
		Series:     []Series{actual, benchmark},
		YAxis:      Axis{Name: "PMPM", Format: FormatDollars},
		Tooltip:    Tooltip{Trigger: "axis", Format: FormatPMPM},
		Legend:     true,
	}
}

// MarketVariance shows each market's PMPM variance against benchmark. Under
// benchmark is good and drawn green.
func MarketVariance(summary calc.MarketSummary) Spec {
	cats := make([]string, len(summary.Markets))
	pts := make([]Point, len(summary.Markets))
	for i, m := range summary.Markets {
		cats[i] = m.Region
		pts[i] = Point{Name: m.Region, Value: m.VsBenchmark}
	}
	s := newSeries("vs Benchmark", KindBar, "", pts, LabelRule{
		Show:          true,
		Position:      "top",
		PositiveColor: ColorNegative,
		NegativeColor: ColorPositive,
		Format:        FormatPercent,
	})
	return Spec{
		Slot:       SlotMarketVariance,
		Kind:       KindBar,
		Title:      "Market PMPM vs Benchmark",
		Subtitle:   fmt.Sprintf("%d, %d lives", summary.Year, summary.TotalLives),
		Categories: cats,
		Series:     []Series{s},
		YAxis:      Axis{Name: "Variance", Format: FormatPercent},
		Tooltip:    Tooltip{Trigger: "axis", Format: FormatPercent},
	}
}

// MonteCarlo plots the simulated savings distribution in $1M bins with the
// expected normal counts overlaid. Bins are coloured loss, below target and
// at or above target.
func MonteCarlo(sc dataset.ScenarioConfig, sim calc.SimulationResult) Spec {
	const width = 1.0
	observed := calc.Histogram(sim.Samples, width)
	expected := calc.ExpectedHistogram(sc, sim.Iterations, width)

	// Align both histograms on one category axis.
	lo, hi := binRange(observed, expected)
	n := int(math.Round((hi - lo) / width))
	cats := make([]string, n)
	obs := make([]Point, n)
	exp := make([]Point, n)
	for i := 0; i < n; i++ {
		low := lo + float64(i)*width
		cats[i] = fmt.Sprintf("%.0f", low)
		obs[i] = Point{Name: cats[i], Color: binColor(low + width/2)}
		exp[i] = Point{Name: cats[i]}
	}
	for _, b := range observed {
		obs[binIndex(b.Low, lo, width)].Value = b.Count
	}
	for _, b := range expected {
		exp[binIndex(b.Low, lo, width)].Value = b.Count
	}

	bars := newSeries("Simulated", KindBar, "", obs, LabelRule{})
	line := newSeries("Expected", KindLine, ColorMuted, exp, LabelRule{})
	line.Smooth = true

	return Spec{
		Slot:  SlotMonteCarlo,
		Kind:  KindBar,
		Title: fmt.Sprintf("Savings Distribution: %s", sc.Name),
		Subtitle: fmt.Sprintf("%d draws, mean %s, P5 %s, P95 %s, P(>target) %.0f%%",
			sim.Iterations, FormatMillions.Format(sim.Mean), FormatMillions.Format(sim.P5),
			FormatMillions.Format(sim.P95), sim.ProbTarget*100),
		Categories: cats,
		Series:     []Series{bars, line},
		XAxis:      Axis{Name: "Savings ($M)"},
		YAxis:      Axis{Name: "Draws", Format: FormatCount},
		Tooltip:    Tooltip{Trigger: "axis", Format: FormatCount},
		Legend:     true,
	}
}

func binRange(sets ...[]calc.Bin) (lo, hi float64) {
	first := true
	for _, bins := range sets {
		if len(bins) == 0 {
			continue
		}
		l, h := bins[0].Low, bins[len(bins)-1].High
		if first || l < lo {
			lo = l
		}
		if first || h > hi {
			hi = h
		}
		first = false
	}
	return lo, hi
}

func binIndex(low, origin, width float64) int {
	return int(math.Round((low - origin) / width))
}

func binColor(mid float64) string {
	switch {
	case mid < 0:
		return ColorNegative
	case mid < calc.TargetSavings:
		return ColorWarning
	}
	return ColorPositive
}

// SavingsWaterfall walks from the benchmark down through each cost category
// to the shared savings. An invisible base series floats each step.
func SavingsWaterfall(benchmark float64, cats []dataset.CostCategory) Spec {
	names := []string{"Benchmark"}
	base := []Point{{Name: "Benchmark", Hidden: true}}
	steps := []Point{{Name: "Benchmark", Value: benchmark, Color: ColorPrimary}}

	running := benchmark
	for _, c := range cats {
		running -= c.Amount
		names = append(names, c.Name)
		base = append(base, Point{Name: c.Name, Value: running, Hidden: true})
		steps = append(steps, Point{Name: c.Name, Value: c.Amount, Color: ColorNegative})
	}
	savingsColor := ColorPositive
	if running < 0 {
		savingsColor = ColorNegative
	}
	names = append(names, "Savings")
	base = append(base, Point{Name: "Savings", Hidden: true})
	steps = append(steps, Point{Name: "Savings", Value: running, Color: savingsColor})

	labels := LabelRule{Show: true, Position: "top", Format: FormatMillions}
	labels.Apply(steps)
	stepSeries := Series{Name: "Amount", Kind: KindBar, Stack: "waterfall", Points: steps, Labels: labels}
	baseSeries := Series{Name: "Base", Kind: KindBar, Stack: "waterfall", Points: base}

	return Spec{
		Slot:       SlotSavingsWaterfall,
		Kind:       KindBar,
		Title:      "Benchmark to Shared Savings",
		Subtitle:   fmt.Sprintf("Savings %s", FormatMillions.Format(running)),
		Categories: names,
		Series:     []Series{baseSeries, stepSeries},
		YAxis:      Axis{Name: "$M", Format: FormatMillions},
		Tooltip:    Tooltip{Trigger: "axis", Format: FormatMillions},
	}
}

// CostDoughnut splits total spend by category. Pharmacy is left out when
// hidden and the total reflects what is shown.
func CostDoughnut(cats []dataset.CostCategory, pharmacyVisible bool) Spec {
	var pts []Point
	total := 0.0
	for _, c := range cats {
		if c.Name == "Pharmacy" && !pharmacyVisible {
			continue
		}
		pts = append(pts, Point{Name: c.Name, Value: c.Amount, Color: c.Color})
		total += c.Amount
	}
	// Slices under 3% of the total stay unlabelled.
	s := newSeries("Spend", KindPie, "", pts, LabelRule{Show: true, MinAbs: total * 0.03, Format: FormatMillions})
	return Spec{
		Slot:     SlotCostDoughnut,
		Kind:     KindPie,
		Title:    "Spend by Category",
		Subtitle: fmt.Sprintf("Total %s", FormatMillions.Format(total)),
		Series:   []Series{s},
		Tooltip:  Tooltip{Trigger: "item", Format: FormatMillions},
		Legend:   true,
		Doughnut: true,
	}
}

// CostTrend plots quarterly spend per category as stacked bars or lines.
func CostTrend(trend dataset.CostTrend, colors map[string]string, mode string) Spec {
	kind, stack := KindBar, "spend"
	rule := LabelRule{}
	if mode == state.CostChartLine {
		kind, stack = KindLine, ""
		rule = LabelRule{Show: true, EveryN: 4, Position: "top", Format: FormatMillions}
	}

	series := make([]Series, 0, len(trend.Series))
	for _, ts := range trend.Series {
		pts := make([]Point, len(ts.Values))
		for i, v := range ts.Values {
			pts[i] = Point{Name: trend.Quarters[i], Value: v}
		}
		s := newSeries(ts.Category, kind, colors[ts.Category], pts, rule)
		s.Stack = stack
		series = append(series, s)
	}
	return Spec{
		Slot:       SlotCostTrend,
		Kind:       kind,
		Title:      "Quarterly Spend by Category",
		Subtitle:   modeLabel(mode),
		Categories: append([]string(nil), trend.Quarters...),
		Series:     series,
		YAxis:      Axis{Name: "$M", Format: FormatMillions},
		Tooltip:    Tooltip{Trigger: "axis", Format: FormatMillions},
		Legend:     true,
	}
}

func modeLabel(mode string) string {
	if mode == state.CostChartLine {
		return "Trend lines"
	}
	return "Stacked"
}

// RAFHistogram shows the distribution of patient risk scores. Bins under
// 500 patients are not labelled.
func RAFHistogram(bins []dataset.RAFBin) Spec {
	cats := make([]string, len(bins))
	pts := make([]Point, len(bins))
	patients := 0
	for i, b := range bins {
		cats[i] = fmt.Sprintf("%.2f-%.2f", b.Low, b.High)
		pts[i] = Point{Name: cats[i], Value: float64(b.Patients)}
		patients += b.Patients
	}
	s := newSeries("Patients", KindBar, ColorPrimary, pts,
		LabelRule{Show: true, MinAbs: 500, Position: "top", Format: FormatCount})
	return Spec{
		Slot:       SlotRAFHistogram,
		Kind:       KindBar,
		Title:      "Risk Adjustment Factor Distribution",
		Subtitle:   fmt.Sprintf("%s attributed patients", FormatCount.Format(float64(patients))),
		Categories: cats,
		Series:     []Series{s},
		XAxis:      Axis{Name: "RAF"},
		YAxis:      Axis{Name: "Patients", Format: FormatCount},
		Tooltip:    Tooltip{Trigger: "axis", Format: FormatCount},
	}
}

// QualityTrend plots each quality measure by year. The final year's point is
// green when it meets its target and red otherwise.
func QualityTrend(q dataset.QualityTrend) Spec {
	series := make([]Series, 0, len(q.Measures))
	for _, m := range q.Measures {
		pts := make([]Point, len(m.Scores))
		for i, v := range m.Scores {
			pts[i] = Point{Name: q.Years[i], Value: v}
		}
		s := newSeries(m.Name, KindLine, "", pts, LabelRule{})
		if n := len(pts); n > 0 {
			last := &s.Points[n-1]
			last.ShowLabel = true
			last.Label = FormatPercent.Format(last.Value)
			last.Color = ColorNegative
			if meetsTarget(m, last.Value) {
				last.Color = ColorPositive
			}
		}
		series = append(series, s)
	}
	return Spec{
		Slot:       SlotQualityTrend,
		Kind:       KindLine,
		Title:      "Quality Measures",
		Subtitle:   "Rate by measurement year",
		Categories: append([]string(nil), q.Years...),
		Series:     series,
		YAxis:      Axis{Name: "Rate", Min: floatPtr(0), Max: floatPtr(100), Format: FormatPercent},
		Tooltip:    Tooltip{Trigger: "axis", Format: FormatPercent},
		Legend:     true,
	}
}

func meetsTarget(m dataset.QualityMeasure, v float64) bool {
	if m.LowerIsBetter {
		return v <= m.Target
	}
	return v >= m.Target
}

// LeakageSplit shows the in-network and out-of-network share for the
// selected claim and service type.
func LeakageSplit(m calc.LeakageMetrics) Spec {
	pts := []Point{
		{Name: "In network", Value: m.InNetworkAmount, Color: ColorPrimary},
		{Name: "Out of network", Value: m.OONAmount, Color: ColorOON},
	}
	s := newSeries("Spend", KindPie, "", pts, LabelRule{Show: true, Format: FormatMillions})
	return Spec{
		Slot:  SlotLeakageSplit,
		Kind:  KindPie,
		Title: "Network Leakage",
		Subtitle: fmt.Sprintf("%s / %s: %.1f%% out of network, repatriation %s",
			m.ClaimType, m.ServiceType, m.OONPct, FormatMillions.Format(m.RepatriationOpportunity)),
		Series:   []Series{s},
		Tooltip:  Tooltip{Trigger: "item", Format: FormatMillions},
		Legend:   true,
		Doughnut: true,
	}
}

// CountyLeakage ranks counties by out-of-network spend.
func CountyLeakage(counties []dataset.CountyEntry) Spec {
	type row struct {
		name string
		oon  float64
	}
	rows := make([]row, 0, len(counties))
	for _, c := range counties {
		rows = append(rows, row{c.Name, calc.OONLeakage(c)})
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].oon > rows[j].oon })

	cats := make([]string, len(rows))
	pts := make([]Point, len(rows))
	for i, r := range rows {
		cats[i] = r.name
		pts[i] = Point{Name: r.name, Value: r.oon}
	}
	s := newSeries("Out-of-network spend", KindBar, ColorOON, pts,
		LabelRule{Show: true, Position: "right", Format: FormatMillions})
	return Spec{
		Slot:       SlotCountyLeakage,
		Kind:       KindBar,
		Title:      "Leakage by County",
		Categories: cats,
		Series:     []Series{s},
		XAxis:      Axis{Name: "$M", Format: FormatMillions},
		Tooltip:    Tooltip{Trigger: "axis", Format: FormatMillions},
		Horizontal: true,
	}
}

// EpisodeCost compares each hospital's average episode cost with the
// national benchmark.
func EpisodeCost(ep dataset.Episode) Spec {
	cats := make([]string, len(ep.Hospitals))
	pts := make([]Point, len(ep.Hospitals))
	bench := make([]Point, len(ep.Hospitals))
	for i, h := range ep.Hospitals {
		cats[i] = h.Name
		color := ColorPositive
		if h.AvgCost > ep.NationalBenchmark {
			color = ColorNegative
		}
		pts[i] = Point{Name: h.Name, Value: h.AvgCost, Color: color}
		bench[i] = Point{Name: h.Name, Value: ep.NationalBenchmark}
	}
	bars := newSeries("Average episode cost", KindBar, "", pts,
		LabelRule{Show: true, Position: "top", Format: FormatDollars})
	line := newSeries("National benchmark", KindLine, ColorMuted, bench, LabelRule{})
	line.Dashed = true

	return Spec{
		Slot:       SlotEpisodeCost,
		Kind:       KindBar,
		Title:      ep.Name,
		Subtitle:   fmt.Sprintf("National benchmark %s", FormatDollars.Format(ep.NationalBenchmark)),
		Categories: cats,
		Series:     []Series{bars, line},
		YAxis:      Axis{Name: "Cost", Format: FormatDollars},
		Tooltip:    Tooltip{Trigger: "axis", Format: FormatDollars},
		Legend:     true,
	}
}

// ProviderCost plots qualifying providers' average cost, coloured against
// the hospital's weighted average.
func ProviderCost(a calc.HospitalAnalysis) Spec {
	cats := make([]string, len(a.Providers))
	pts := make([]Point, len(a.Providers))
	avg := make([]Point, len(a.Providers))
	for i, p := range a.Providers {
		cats[i] = p.Name
		color := ColorPositive
		if p.AvgCost > a.WeightedAvgCost {
			color = ColorNegative
		}
		pts[i] = Point{Name: p.Name, Value: p.AvgCost, Color: color}
		avg[i] = Point{Name: p.Name, Value: a.WeightedAvgCost}
	}
	bars := newSeries("Average cost", KindBar, "", pts, LabelRule{Show: true, Position: "top", Format: FormatDollars})
	line := newSeries("Weighted average", KindLine, ColorMuted, avg, LabelRule{})
	line.Dashed = true

	subtitle := fmt.Sprintf("Weighted average %s across %d cases", FormatDollars.Format(a.WeightedAvgCost), a.TotalCases)
	if a.Empty() {
		subtitle = fmt.Sprintf("No provider has at least %d cases", calc.MinProviderCases)
	}
	return Spec{
		Slot:       SlotProviderCost,
		Kind:       KindBar,
		Title:      a.Hospital + ": Provider Cost",
		Subtitle:   subtitle,
		Categories: cats,
		Series:     []Series{bars, line},
		YAxis:      Axis{Name: "Cost", Format: FormatDollars},
		Tooltip:    Tooltip{Trigger: "axis", Format: FormatDollars},
		Legend:     true,
	}
}

// OpportunityRanking ranks providers by internal savings opportunity. Zero
// opportunities stay unlabelled.
func OpportunityRanking(a calc.HospitalAnalysis) Spec {
	ranked := a.Ranking()
	cats := make([]string, len(ranked))
	pts := make([]Point, len(ranked))
	for i, p := range ranked {
		cats[i] = p.Name
		pts[i] = Point{Name: p.Name, Value: p.Opportunity}
	}
	s := newSeries("Opportunity", KindBar, ColorNegative, pts,
		LabelRule{Show: true, MinAbs: 1, Position: "right", Format: FormatDollars})
	return Spec{
		Slot:       SlotOpportunityRanking,
		Kind:       KindBar,
		Title:      a.Hospital + ": Opportunity Ranking",
		Subtitle:   fmt.Sprintf("Internal opportunity %s", FormatDollars.Format(a.InternalOpportunity)),
		Categories: cats,
		Series:     []Series{s},
		XAxis:      Axis{Name: "Opportunity", Format: FormatDollars},
		Tooltip:    Tooltip{Trigger: "axis", Format: FormatDollars},
		Horizontal: true,
	}
}
