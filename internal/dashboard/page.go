package dashboard

import (
	"fmt"
	"html/template"
	"math"
	"strconv"

	"github.com/banshee-data/aco.dashboard/internal/calc"
	"github.com/banshee-data/aco.dashboard/internal/chartspec"
	"github.com/banshee-data/aco.dashboard/internal/dataset"
	"github.com/banshee-data/aco.dashboard/internal/drilldown"
	"github.com/banshee-data/aco.dashboard/internal/render"
	"github.com/banshee-data/aco.dashboard/internal/state"
)

var tabLabels = map[string]string{
	state.TabPerformance: "Performance",
	state.TabSimulation:  "Savings Simulation",
	state.TabCosts:       "Cost Breakdown",
	state.TabQuality:     "Quality",
	state.TabLeakage:     "Network Leakage",
	state.TabEpisodes:    "Episodes",
}

// Slider names accepted by /api/projection/input.
const (
	sliderLivesGrowth = "livesGrowth"
	sliderRiskChange  = "riskChange"
	sliderUtilChange  = "utilChange"
	sliderLeakReduce  = "leakReduce"
)

func tabLinks(active string) []render.TabLink {
	out := make([]render.TabLink, 0, len(state.Tabs))
	for _, t := range state.Tabs {
		out = append(out, render.TabLink{ID: t, Label: tabLabels[t], Active: t == active})
	}
	return out
}

func controls(f state.Filters, c *dataset.Catalog) []render.Control {
	switch f.ActiveTab {
	case state.TabPerformance:
		ctl := render.Control{Name: state.FieldYear, Label: "Performance year"}
		for _, y := range state.Years {
			v := strconv.Itoa(y)
			ctl.Options = append(ctl.Options, render.Option{Value: v, Label: v, Selected: y == f.PerformanceYear})
		}
		return []render.Control{ctl}

	case state.TabSimulation:
		ctl := render.Control{Name: state.FieldScenario, Label: "Scenario"}
		for _, s := range c.Scenarios {
			ctl.Options = append(ctl.Options, render.Option{Value: strconv.Itoa(s.ID), Label: s.Name, Selected: s.ID == f.Scenario})
		}
		return []render.Control{ctl}

	case state.TabCosts:
		return []render.Control{
			selectControl(state.FieldCostChartMode, "Trend chart", f.CostChartMode, [][2]string{
				{state.CostChartStacked, "Stacked bars"}, {state.CostChartLine, "Lines"},
			}),
			// Any change toggles, so both options post the same request.
			selectControl(state.FieldPharmacy, "Pharmacy", pharmacyValue(f.PharmacyVisible), [][2]string{
				{"shown", "Shown"}, {"hidden", "Hidden"},
			}),
		}

	case state.TabLeakage:
		service := render.Control{Name: state.FieldServiceType, Label: "Service type"}
		for _, o := range f.ServiceTypeOptions() {
			service.Options = append(service.Options, render.Option{
				Value: o.Value, Label: o.Value, Selected: o.Selected, Disabled: o.Disabled,
			})
		}
		return []render.Control{
			selectControl(state.FieldClaimType, "Claim type", f.ClaimType, [][2]string{
				{dataset.ClaimAll, "All claims"}, {dataset.ClaimPartA, "Part A"}, {dataset.ClaimPartB, "Part B"},
			}),
			service,
			selectControl(state.FieldElectiveFilter, "Elective", f.ElectiveFilter, [][2]string{
				{state.ElectiveAll, "All"}, {state.ElectiveOnly, "Elective"}, {state.ElectiveNonElective, "Non-elective"},
			}),
			selectControl(state.FieldLeakageView, "View", f.LeakageView, [][2]string{
				{state.LeakageViewMap, "Map"}, {state.LeakageViewTable, "Table"},
			}),
		}
	}
	return nil
}

func selectControl(name, label, current string, options [][2]string) render.Control {
	ctl := render.Control{Name: name, Label: label}
	for _, o := range options {
		ctl.Options = append(ctl.Options, render.Option{Value: o[0], Label: o[1], Selected: o[0] == current})
	}
	return ctl
}

func pharmacyValue(visible bool) string {
	if visible {
		return "shown"
	}
	return "hidden"
}

func sliders(in calc.ProjectionInput) []render.Slider {
	pct := func(v float64) float64 { return math.Round(v*1000) / 10 }
	return []render.Slider{
		{Name: sliderLivesGrowth, Label: "Lives growth", Min: pct(calc.LivesGrowthRange.Min), Max: pct(calc.LivesGrowthRange.Max), Step: 0.5, Value: pct(in.LivesGrowth)},
		{Name: sliderRiskChange, Label: "Risk score change", Min: pct(calc.RiskChangeRange.Min), Max: pct(calc.RiskChangeRange.Max), Step: 0.5, Value: pct(in.RiskChange)},
		{Name: sliderUtilChange, Label: "Utilization change", Min: pct(calc.UtilChangeRange.Min), Max: pct(calc.UtilChangeRange.Max), Step: 0.5, Value: pct(in.UtilChange)},
		{Name: sliderLeakReduce, Label: "Leakage reduction", Min: pct(calc.LeakReduceRange.Min), Max: pct(calc.LeakReduceRange.Max), Step: 1, Value: pct(in.LeakReduce)},
	}
}

// tabKPIs are the headline figures for the active tab.
func (ws *WebServer) tabKPIs(s *Session, f state.Filters) ([]drilldown.KPI, error) {
	c := ws.catalog
	switch f.ActiveTab {
	case state.TabPerformance:
		rows, err := c.Markets(f.PerformanceYear)
		if err != nil {
			return nil, err
		}
		return drilldown.MarketKPIs(calc.SummarizeMarkets(f.PerformanceYear, rows)), nil

	case state.TabSimulation:
		sc, err := c.Scenario(f.Scenario)
		if err != nil {
			return nil, err
		}
		sim := calc.Simulate(sc, ws.cfg.GetMonteCarloIterations(), ws.cfg.GetMonteCarloSeed())
		return append(drilldown.ScenarioKPIs(sc, sim), s.Projection().KPIs...), nil

	case state.TabLeakage:
		m, err := calc.Leakage(c.Leakage, f.ClaimType, f.ServiceType)
		if err != nil {
			return nil, err
		}
		return drilldown.LeakageKPIs(m), nil

	case state.TabEpisodes:
		v, err := s.HospitalView()
		if err != nil {
			return nil, err
		}
		return v.KPIs, nil
	}
	return nil, nil
}

// buildPage assembles the active tab from the session's live chart
// instances.
func (ws *WebServer) buildPage(s *Session, accepted bool) (render.Page, error) {
	f := s.Store.Filters()
	p := render.Page{
		Title:              tabLabels[f.ActiveTab],
		Tabs:               tabLinks(f.ActiveTab),
		Controls:           controls(f, ws.catalog),
		DisclaimerAccepted: accepted,
	}

	kpis, err := ws.tabKPIs(s, f)
	if err != nil {
		return p, err
	}
	p.KPIs = kpis

	var specs []*chartspec.Spec
	for _, slot := range chartspec.SlotsFor(f.ActiveTab) {
		if inst := s.Charts.Active(slot); inst != nil {
			specs = append(specs, inst.Spec)
		}
	}
	if p.Mounts, p.Assets, err = render.Mounts(specs, ws.chartOpts); err != nil {
		return p, err
	}

	switch f.ActiveTab {
	case state.TabPerformance:
		rows, err := ws.catalog.Markets(f.PerformanceYear)
		if err != nil {
			return p, err
		}
		p.Tables = append(p.Tables, drilldown.MarketsTable(calc.SummarizeMarkets(f.PerformanceYear, rows)))

	case state.TabSimulation:
		p.Sliders = sliders(s.Projection().Input)
		p.Tables = append(p.Tables, drilldown.ScenarioTable(ws.catalog.Scenarios))

	case state.TabLeakage:
		if f.LeakageView == state.LeakageViewTable {
			p.Tables = append(p.Tables, drilldown.LeakageTable(ws.catalog.Leakage))
		}
		v, err := s.CountyView(s.SelectedCounty())
		if err != nil {
			return p, err
		}
		html, err := render.RenderFragment(ws.templates, "county", v)
		if err != nil {
			return p, err
		}
		p.Drilldowns = append(p.Drilldowns, template.HTML(html))

	case state.TabEpisodes:
		v, err := s.HospitalView()
		if err != nil {
			return p, err
		}
		html, err := render.RenderFragment(ws.templates, "hospital", v)
		if err != nil {
			return p, err
		}
		p.Drilldowns = append(p.Drilldowns, template.HTML(html))
	}
	return p, nil
}

// View is the JSON answer to a filter change: the new filters, the active
// tab's KPIs and the charts now mounted.
type View struct {
	Filters        state.Filters         `json:"filters"`
	ServiceOptions []state.ServiceOption `json:"service_options"`
	Applied        bool                  `json:"applied"`
	KPIs           []drilldown.KPI       `json:"kpis"`
	Charts         []ChartView           `json:"charts"`
}

// ChartView is one mounted chart instance.
type ChartView struct {
	Slot       string          `json:"slot"`
	InstanceID string          `json:"instance_id"`
	Spec       *chartspec.Spec `json:"spec"`
}

func (ws *WebServer) buildView(s *Session, applied bool) (View, error) {
	f := s.Store.Filters()
	kpis, err := ws.tabKPIs(s, f)
	if err != nil {
		return View{}, fmt.Errorf("kpis for %s: %w", f.ActiveTab, err)
	}
	v := View{
		Filters:        f,
		ServiceOptions: f.ServiceTypeOptions(),
		Applied:        applied,
		KPIs:           kpis,
		Charts:         []ChartView{},
	}
	for _, slot := range chartspec.SlotsFor(f.ActiveTab) {
		if inst := s.Charts.Active(slot); inst != nil {
			v.Charts = append(v.Charts, ChartView{Slot: slot, InstanceID: inst.ID, Spec: inst.Spec})
		}
	}
	return v, nil
}
