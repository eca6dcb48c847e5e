package drilldown

import (
	"fmt"

	"github.com/banshee-data/aco.dashboard/internal/calc"
)

// CountyView is the county drill-down modal.
type CountyView struct {
	FIPS      string `json:"fips"`
	Name      string `json:"name"`
	KPIs      []KPI  `json:"kpis"`
	Providers Table  `json:"providers"`
	// Expanded reports whether every provider is listed.
	Expanded bool `json:"expanded"`
	// Hidden counts providers left out of the collapsed list.
	Hidden int `json:"hidden"`
	// ToggleLabel is the caption of the show all / show less control. It is
	// empty when every provider already fits.
	ToggleLabel string `json:"toggle_label,omitempty"`
}

// NewCountyView renders a county analysis with the providers currently
// visible in list.
func NewCountyView(a calc.CountyAnalysis, list *calc.ProviderList) CountyView {
	v := CountyView{
		FIPS:     a.FIPS,
		Name:     a.Name,
		Expanded: list.Expanded(),
		Hidden:   list.Hidden(),
		Providers: Table{
			Name:    TableCountyProviders,
			Title:   fmt.Sprintf("%s County: out-of-network providers", a.Name),
			Columns: []string{"Rank", "Facility", "City", "Service", "Spend", "Cases", "Elective"},
		},
	}
	for i, p := range list.Visible() {
		elective := "No"
		if p.IsElective {
			elective = "Yes"
		}
		v.Providers.AddRow(
			fmt.Sprint(i+1),
			p.Facility,
			p.City,
			p.Service,
			money(p.Spend),
			count(p.Cases),
			elective,
		)
	}

	switch {
	case v.Expanded && len(v.Providers.Rows) > list.TopN():
		v.ToggleLabel = fmt.Sprintf("Show top %d", list.TopN())
	case v.Hidden > 0:
		v.ToggleLabel = fmt.Sprintf("Show all (%d more)", v.Hidden)
	}

	v.KPIs = []KPI{
		{Label: "Total cost", Value: money(a.TotalCostAmount), Tone: ToneNeutral},
		{Label: "Leakage score", Value: percent(a.LeakageScore * 100), Tone: ToneNeutral},
		{Label: "Out-of-network spend", Value: money(a.OONLeakage), Tone: ToneNegative},
		{Label: "Elective", Value: money(a.ElectiveTotal), Tone: ToneNeutral},
		{Label: "Non-elective", Value: money(a.NonElectiveTotal), Tone: ToneNeutral},
		{Label: "Filtered spend", Value: money(a.FilteredSpend), Tone: ToneNeutral},
	}
	return v
}
