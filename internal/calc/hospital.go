package calc

import (
	"sort"

	"github.com/banshee-data/aco.dashboard/internal/dataset"
)

// MinProviderCases is the case volume below which a provider is left out of
// every hospital figure.
const MinProviderCases = 10

// ProviderRow is one qualifying provider in a hospital drill-down.
type ProviderRow struct {
	Name                string  `json:"name"`
	Cases               int     `json:"cases"`
	AvgCost             float64 `json:"avg_cost"`
	QualityScore        float64 `json:"quality_score"`
	ComplicationRate    float64 `json:"complication_rate"`
	ReadmitRate         float64 `json:"readmit_rate"`
	LengthOfStay        float64 `json:"length_of_stay"`
	Satisfaction        float64 `json:"satisfaction"`
	VarianceVsAvg       float64 `json:"variance_vs_avg"`
	Opportunity         float64 `json:"opportunity"`
	NationalOpportunity float64 `json:"national_opportunity"`
	CompositeScore      float64 `json:"composite_score"`
}

// HospitalAnalysis aggregates a hospital's providers for one episode. A
// hospital with no qualifying providers yields an analysis with Empty() true
// and zero figures.
type HospitalAnalysis struct {
	Hospital          string        `json:"hospital"`
	NationalBenchmark float64       `json:"national_benchmark"`
	Providers         []ProviderRow `json:"providers"` // qualifying, in source order
	Excluded          []string      `json:"excluded"`  // below MinProviderCases
	TotalCases        int           `json:"total_cases"`

	WeightedAvgCost     float64 `json:"weighted_avg_cost"`
	InternalOpportunity float64 `json:"internal_opportunity"`
	NationalOpportunity float64 `json:"national_opportunity"`

	Best *ProviderRow `json:"best,omitempty"`
}

// Empty reports whether no provider met the case threshold.
func (a HospitalAnalysis) Empty() bool { return len(a.Providers) == 0 }

// Ranking returns the providers ordered by internal opportunity, largest
// first. Ties keep source order.
func (a HospitalAnalysis) Ranking() []ProviderRow {
	out := append([]ProviderRow(nil), a.Providers...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Opportunity > out[j].Opportunity })
	return out
}

// CompositeScore blends cost against the benchmark with quality; higher is
// better.
func CompositeScore(cost, benchmark, quality float64) float64 {
	return (100 - cost/benchmark*50) + quality/2
}

// AnalyzeHospital computes the weighted average cost, the internal and
// national opportunity and the best provider for h.
func AnalyzeHospital(h dataset.HospitalEntry, nationalBenchmark float64) HospitalAnalysis {
	a := HospitalAnalysis{Hospital: h.Name, NationalBenchmark: nationalBenchmark}

	var weighted float64
	for _, p := range h.Providers {
		if p.Cases < MinProviderCases {
			a.Excluded = append(a.Excluded, p.Name)
			continue
		}
		a.Providers = append(a.Providers, ProviderRow{
			Name:             p.Name,
			Cases:            p.Cases,
			AvgCost:          p.AvgCost,
			QualityScore:     p.QualityScore,
			ComplicationRate: p.ComplicationRate,
			ReadmitRate:      p.ReadmitRate,
			LengthOfStay:     p.LengthOfStay,
			Satisfaction:     p.Satisfaction,
		})
		weighted += p.AvgCost * float64(p.Cases)
		a.TotalCases += p.Cases
	}
	if a.TotalCases == 0 {
		return a
	}
	a.WeightedAvgCost = weighted / float64(a.TotalCases)

	bestIdx := -1
	bestScore := 0.0
	for i := range a.Providers {
		p := &a.Providers[i]
		p.VarianceVsAvg = p.AvgCost - a.WeightedAvgCost
		if p.AvgCost > a.WeightedAvgCost {
			p.Opportunity = (p.AvgCost - a.WeightedAvgCost) * float64(p.Cases)
			a.InternalOpportunity += p.Opportunity
		}
		if p.AvgCost > nationalBenchmark {
			p.NationalOpportunity = (p.AvgCost - nationalBenchmark) * float64(p.Cases)
			a.NationalOpportunity += p.NationalOpportunity
		}
		p.CompositeScore = CompositeScore(p.AvgCost, nationalBenchmark, p.QualityScore)
		// Strictly greater, so the first provider wins a tie.
		if bestIdx < 0 || p.CompositeScore > bestScore {
			bestIdx, bestScore = i, p.CompositeScore
		}
	}
	best := a.Providers[bestIdx]
	a.Best = &best
	return a
}
