package chartspec

import (
	"fmt"

	"github.com/banshee-data/aco.dashboard/internal/calc"
	"github.com/banshee-data/aco.dashboard/internal/dataset"
	"github.com/banshee-data/aco.dashboard/internal/state"
)

// Context carries everything a slot builder may read.
type Context struct {
	Catalog *dataset.Catalog
	Filters state.Filters

	// Episode and Hospital select the drill-down shown on the episodes tab.
	// An empty Episode means the first episode; an empty Hospital means the
	// episode's first hospital.
	Episode  string
	Hospital string

	Iterations int
	Seed       uint64
}

// Build produces the Spec for slot. Unknown slots yield a nil Spec and no
// error so callers can skip containers they do not recognise.
func Build(slot string, ctx Context) (*Spec, error) {
	c := ctx.Catalog
	if c == nil {
		return nil, fmt.Errorf("build %s: nil catalog", slot)
	}
	f := ctx.Filters

	var spec Spec
	switch slot {
	case SlotPerformanceTrend:
		points, err := c.PerformanceTrend(f.PerformanceYear)
		if err != nil {
			return nil, fmt.Errorf("build %s: %w", slot, err)
		}
		spec = PerformanceTrend(f.PerformanceYear, points)

	case SlotMarketVariance:
		rows, err := c.Markets(f.PerformanceYear)
		if err != nil {
			return nil, fmt.Errorf("build %s: %w", slot, err)
		}
		spec = MarketVariance(calc.SummarizeMarkets(f.PerformanceYear, rows))

	case SlotMonteCarlo:
		sc, err := c.Scenario(f.Scenario)
		if err != nil {
			return nil, fmt.Errorf("build %s: %w", slot, err)
		}
		spec = MonteCarlo(sc, calc.Simulate(sc, ctx.Iterations, ctx.Seed))

	case SlotSavingsWaterfall:
		spec = SavingsWaterfall(calc.BaseBenchmark, c.CostBreakdown)

	case SlotCostDoughnut:
		spec = CostDoughnut(c.CostBreakdown, f.PharmacyVisible)

	case SlotCostTrend:
		spec = CostTrend(c.CostTrend, CategoryColors(c.CostBreakdown), f.CostChartMode)

	case SlotRAFHistogram:
		spec = RAFHistogram(c.RAF)

	case SlotQualityTrend:
		spec = QualityTrend(c.Quality)

	case SlotLeakageSplit:
		m, err := calc.Leakage(c.Leakage, f.ClaimType, f.ServiceType)
		if err != nil {
			return nil, fmt.Errorf("build %s: %w", slot, err)
		}
		spec = LeakageSplit(m)

	case SlotCountyLeakage:
		spec = CountyLeakage(c.Counties)

	case SlotEpisodeCost, SlotProviderCost, SlotOpportunityRanking:
		ep, h, err := c.ResolveHospital(ctx.Episode, ctx.Hospital)
		if err != nil {
			return nil, fmt.Errorf("build %s: %w", slot, err)
		}
		switch slot {
		case SlotEpisodeCost:
			spec = EpisodeCost(ep)
		case SlotProviderCost:
			spec = ProviderCost(calc.AnalyzeHospital(h, ep.NationalBenchmark))
		default:
			spec = OpportunityRanking(calc.AnalyzeHospital(h, ep.NationalBenchmark))
		}

	default:
		return nil, nil
	}
	return &spec, nil
}

// CategoryColors maps cost category names to their breakdown colours.
func CategoryColors(cats []dataset.CostCategory) map[string]string {
	out := make(map[string]string, len(cats))
	for _, c := range cats {
		out[c.Name] = c.Color
	}
	return out
}
