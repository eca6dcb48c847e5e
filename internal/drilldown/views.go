package drilldown

import (
	"fmt"

	"github.com/banshee-data/aco.dashboard/internal/calc"
	"github.com/banshee-data/aco.dashboard/internal/dataset"
)

// Table names used in export URLs.
const (
	TableMarkets         = "markets"
	TableLeakage         = "leakage"
	TableHospital        = "hospital"
	TableCountyProviders = "county-providers"
	TableScenarios       = "scenarios"
)

// TableNames lists every exportable table.
var TableNames = []string{TableMarkets, TableLeakage, TableHospital, TableCountyProviders, TableScenarios}

// MarketsTable is the performance-year market table with a lives-weighted
// totals row.
func MarketsTable(s calc.MarketSummary) Table {
	t := Table{
		Name:  TableMarkets,
		Title: fmt.Sprintf("Market Performance %d", s.Year),
		Columns: []string{
			"Market", "Lives", "PMPM", "Benchmark PMPM", "vs Benchmark",
			"Annual Spend", "Savings Opportunity", "Quality", "Leakage",
		},
	}
	for _, m := range s.Markets {
		t.AddRow(
			m.Region,
			count(m.Lives),
			pmpm(m.PMPM),
			pmpm(m.BenchmarkPMPM),
			signedPct(m.VsBenchmark),
			money(m.AnnualSpend),
			money(m.SavingsOpportunity),
			decimal(m.Quality),
			percent(m.LeakagePct),
		)
	}
	t.Footer = []string{
		"Total", count(s.TotalLives), pmpm(s.WeightedPMPM), "", "",
		money(s.TotalSpend), money(s.TotalSavings), decimal(s.WeightedQuality), "",
	}
	return t
}

// MarketKPIs are the headline figures above the market table.
func MarketKPIs(s calc.MarketSummary) []KPI {
	return []KPI{
		{Label: "Attributed lives", Value: count(s.TotalLives), Tone: ToneNeutral},
		{Label: "Weighted PMPM", Value: pmpm(s.WeightedPMPM), Tone: ToneNeutral},
		{Label: "Annual spend", Value: money(s.TotalSpend), Tone: ToneNeutral},
		{Label: "Savings opportunity", Value: money(s.TotalSavings), Tone: signTone(s.TotalSavings, false)},
		{Label: "Weighted quality", Value: decimal(s.WeightedQuality), Tone: ToneNeutral},
	}
}

// LeakageTable lists every populated matrix cell with its repatriation
// opportunity.
func LeakageTable(m dataset.LeakageMatrix) Table {
	t := Table{
		Name:  TableLeakage,
		Title: "Network Leakage by Claim and Service Type",
		Columns: []string{
			"Claim Type", "Service Type", "In Network", "Out of Network",
			"In Network %", "OON %", "Benchmark %", "Repatriation Opportunity",
		},
	}
	for _, c := range m.Cells() {
		total := c.InNetworkAmount + c.OONAmount
		t.AddRow(
			c.ClaimType,
			c.ServiceType,
			money(c.InNetworkAmount),
			money(c.OONAmount),
			percent(c.InPct),
			percent(c.OONPct),
			percent(c.Benchmark),
			money(calc.RepatriationOpportunity(c.OONPct, total)),
		)
	}
	return t
}

// LeakageKPIs summarise the selected claim and service type.
func LeakageKPIs(m calc.LeakageMetrics) []KPI {
	oonTone := ToneNeutral
	if m.OONPct > calc.RepatriationBenchmarkPct {
		oonTone = ToneNegative
	}
	return []KPI{
		{Label: "Total spend", Value: money(m.Total()), Tone: ToneNeutral},
		{Label: "In network", Value: percent(m.InPct), Tone: ToneNeutral},
		{Label: "Out of network", Value: percent(m.OONPct), Tone: oonTone},
		{Label: "Repatriation opportunity", Value: money(m.RepatriationOpportunity), Tone: TonePositive},
	}
}

// ScenarioTable lists the Monte Carlo scenarios.
func ScenarioTable(scenarios []dataset.ScenarioConfig) Table {
	t := Table{
		Name:    TableScenarios,
		Title:   "Savings Scenarios",
		Columns: []string{"ID", "Scenario", "Mean", "Std Dev", "90% Low", "90% High", "Outlook"},
	}
	for _, s := range scenarios {
		t.AddRow(
			fmt.Sprint(s.ID),
			s.Name,
			money(s.Mean),
			money(s.StdDev),
			money(s.ConfidenceLow),
			money(s.ConfidenceHigh),
			s.Display.Probability,
		)
	}
	return t
}

// ScenarioKPIs describe one simulation run.
func ScenarioKPIs(sc dataset.ScenarioConfig, sim calc.SimulationResult) []KPI {
	targetTone := ToneWarning
	switch {
	case sim.ProbTarget >= 0.5:
		targetTone = TonePositive
	case sim.ProbPositive < 0.5:
		targetTone = ToneNegative
	}
	return []KPI{
		{Label: "Scenario", Value: sc.Name, Tone: ToneNeutral},
		{Label: "Mean savings", Value: money(sim.Mean), Tone: signTone(sim.Mean, false)},
		{Label: "90% range", Value: money(sim.P5) + " to " + money(sim.P95), Tone: ToneNeutral},
		{Label: "P(savings > 0)", Value: percent(sim.ProbPositive * 100), Tone: ToneNeutral},
		{Label: "P(savings > target)", Value: percent(sim.ProbTarget * 100), Tone: targetTone},
	}
}

// ProjectionKPIs show a what-if projection result.
func ProjectionKPIs(p calc.Projection) []KPI {
	return []KPI{
		{Label: "Projected spend", Value: money(calc.Round1(p.NewSpend)), Tone: ToneNeutral},
		{Label: "Projected benchmark", Value: money(calc.Round1(p.NewBenchmark)), Tone: ToneNeutral},
		{Label: "Projected savings", Value: money(calc.Round1(p.NewSavings)), Tone: signTone(p.NewSavings, false)},
		{Label: "P(breakeven)", Value: fmt.Sprintf("%d%%", p.Breakeven), Tone: ToneNeutral},
		{Label: "P(target)", Value: fmt.Sprintf("%d%%", p.Target), Tone: ToneNeutral},
		{Label: "P(loss)", Value: fmt.Sprintf("%d%%", p.Loss), Tone: lossTone(p.Loss)},
	}
}

func lossTone(loss int) Tone {
	switch {
	case loss >= 40:
		return ToneNegative
	case loss >= 15:
		return ToneWarning
	}
	return TonePositive
}
