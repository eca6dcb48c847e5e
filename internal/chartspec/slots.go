package chartspec

import "github.com/banshee-data/aco.dashboard/internal/state"

// Mount-point slots. Each slot is one chart container on a tab page.
const (
	SlotPerformanceTrend   = "performance-trend"
	SlotMarketVariance     = "market-variance"
	SlotMonteCarlo         = "monte-carlo"
	SlotSavingsWaterfall   = "savings-waterfall"
	SlotCostDoughnut       = "cost-doughnut"
	SlotCostTrend          = "cost-trend"
	SlotRAFHistogram       = "raf-histogram"
	SlotQualityTrend       = "quality-trend"
	SlotLeakageSplit       = "leakage-split"
	SlotCountyLeakage      = "county-leakage"
	SlotEpisodeCost        = "episode-cost"
	SlotProviderCost       = "provider-cost"
	SlotOpportunityRanking = "opportunity-ranking"
)

// TabSlots lists the mount points present on each tab, in page order.
var TabSlots = map[string][]string{
	state.TabPerformance: {SlotPerformanceTrend, SlotMarketVariance},
	state.TabSimulation:  {SlotMonteCarlo, SlotSavingsWaterfall},
	state.TabCosts:       {SlotCostDoughnut, SlotCostTrend, SlotRAFHistogram},
	state.TabQuality:     {SlotQualityTrend},
	state.TabLeakage:     {SlotLeakageSplit, SlotCountyLeakage},
	state.TabEpisodes:    {SlotEpisodeCost, SlotProviderCost, SlotOpportunityRanking},
}

// SlotsFor returns the mount points on tab, or nil for an unknown tab.
func SlotsFor(tab string) []string {
	return TabSlots[tab]
}

// Affects reports whether a change to the named filter can alter the chart in
// slot. The tab filter affects every slot.
func Affects(field, slot string) bool {
	switch field {
	case state.FieldTab:
		return true
	case state.FieldYear:
		return slot == SlotPerformanceTrend || slot == SlotMarketVariance
	case state.FieldScenario:
		return slot == SlotMonteCarlo
	case state.FieldPharmacy:
		return slot == SlotCostDoughnut
	case state.FieldCostChartMode:
		return slot == SlotCostTrend
	case state.FieldClaimType, state.FieldServiceType:
		return slot == SlotLeakageSplit
	case state.FieldElectiveFilter, state.FieldLeakageView:
		return slot == SlotCountyLeakage
	}
	return false
}
