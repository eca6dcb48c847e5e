package drilldown

import (
	"fmt"

	"github.com/banshee-data/aco.dashboard/internal/calc"
	"github.com/banshee-data/aco.dashboard/internal/dataset"
)

// HospitalView is the provider drill-down modal for one hospital and
// episode.
type HospitalView struct {
	EpisodeID string `json:"episode_id"`
	Episode   string `json:"episode"`
	Hospital  string `json:"hospital"`
	KPIs      []KPI  `json:"kpis"`
	Providers Table  `json:"providers"`
	// Best names the provider with the highest composite score.
	Best string `json:"best,omitempty"`
	// Excluded lists providers below the case threshold.
	Excluded []string `json:"excluded,omitempty"`
	// EmptyMessage is set when no provider qualifies.
	EmptyMessage string `json:"empty_message,omitempty"`

	Analysis calc.HospitalAnalysis `json:"-"`
}

// NewHospitalView analyses h within ep.
func NewHospitalView(ep dataset.Episode, h dataset.HospitalEntry) HospitalView {
	a := calc.AnalyzeHospital(h, ep.NationalBenchmark)
	v := HospitalView{
		EpisodeID: ep.ID,
		Episode:   ep.Name,
		Hospital:  h.Name,
		Excluded:  a.Excluded,
		Analysis:  a,
		Providers: Table{
			Name:  TableHospital,
			Title: fmt.Sprintf("%s: %s providers", h.Name, ep.Name),
			Columns: []string{
				"Provider", "Cases", "Avg Cost", "vs Hospital Avg", "Opportunity",
				"Quality", "Complications", "Readmits", "LOS", "Satisfaction", "Score",
			},
		},
	}

	if a.Empty() {
		v.EmptyMessage = fmt.Sprintf("No provider at %s has at least %d %s cases.", h.Name, calc.MinProviderCases, ep.Name)
		v.KPIs = []KPI{{Label: "Qualifying providers", Value: "0", Tone: ToneWarning}}
		return v
	}

	for _, p := range a.Providers {
		v.Providers.AddRow(
			p.Name,
			count(p.Cases),
			dollars(p.AvgCost),
			signedDollars(p.VarianceVsAvg),
			dollars(p.Opportunity),
			decimal(p.QualityScore),
			percent(p.ComplicationRate),
			percent(p.ReadmitRate),
			decimal(p.LengthOfStay),
			decimal(p.Satisfaction),
			decimal(p.CompositeScore),
		)
	}
	if a.Best != nil {
		v.Best = a.Best.Name
	}

	v.KPIs = []KPI{
		{Label: "Qualifying providers", Value: count(len(a.Providers)), Tone: ToneNeutral},
		{Label: "Cases", Value: count(a.TotalCases), Tone: ToneNeutral},
		{Label: "Weighted avg cost", Value: dollars(a.WeightedAvgCost), Tone: signTone(a.WeightedAvgCost-ep.NationalBenchmark, true)},
		{Label: "National benchmark", Value: dollars(ep.NationalBenchmark), Tone: ToneNeutral},
		{Label: "Internal opportunity", Value: dollars(a.InternalOpportunity), Tone: ToneNeutral},
		{Label: "National opportunity", Value: dollars(a.NationalOpportunity), Tone: ToneNeutral},
	}
	return v
}
