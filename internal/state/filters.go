// Package state owns the mutable per-session dashboard state: the filter
// store and the chart instance registry.
package state

import (
	"strconv"

	"github.com/banshee-data/aco.dashboard/internal/dataset"
)

// Tabs.
const (
	TabPerformance = "performance"
	TabSimulation  = "simulation"
	TabCosts       = "costs"
	TabQuality     = "quality"
	TabLeakage     = "leakage"
	TabEpisodes    = "episodes"
)

// Elective filter values.
const (
	ElectiveAll         = "all"
	ElectiveOnly        = "elective"
	ElectiveNonElective = "nonElective"
)

// Leakage tab views.
const (
	LeakageViewMap   = "map"
	LeakageViewTable = "table"
)

// Cost trend chart modes.
const (
	CostChartStacked = "stacked"
	CostChartLine    = "line"
)

// Filter names, as used by subscribers and the HTTP API.
const (
	FieldTab            = "tab"
	FieldClaimType      = "claimType"
	FieldServiceType    = "serviceType"
	FieldElectiveFilter = "electiveFilter"
	FieldLeakageView    = "leakageView"
	FieldYear           = "year"
	FieldCostChartMode  = "costChartMode"
	FieldPharmacy       = "pharmacy"
	FieldScenario       = "scenario"
)

var (
	// Tabs lists the dashboard tabs in navigation order.
	Tabs = []string{TabPerformance, TabSimulation, TabCosts, TabQuality, TabLeakage, TabEpisodes}
	// Years lists the selectable performance years.
	Years = []int{2023, 2024, 2025}

	electiveFilters = []string{ElectiveAll, ElectiveOnly, ElectiveNonElective}
	leakageViews    = []string{LeakageViewMap, LeakageViewTable}
	costChartModes  = []string{CostChartStacked, CostChartLine}
)

// Filters is a snapshot of one session's filter state.
type Filters struct {
	ActiveTab       string `json:"active_tab"`
	ClaimType       string `json:"claim_type"`
	ServiceType     string `json:"service_type"`
	ElectiveFilter  string `json:"elective_filter"`
	LeakageView     string `json:"leakage_view"`
	PerformanceYear int    `json:"performance_year"`
	CostChartMode   string `json:"cost_chart_mode"`
	PharmacyVisible bool   `json:"pharmacy_visible"`
	Scenario        int    `json:"scenario"`
}

// DefaultFilters is the state a new session starts in.
func DefaultFilters(year int) Filters {
	if !containsInt(Years, year) {
		year = Years[len(Years)-1]
	}
	return Filters{
		ActiveTab:       TabPerformance,
		ClaimType:       dataset.ClaimAll,
		ServiceType:     dataset.ServiceAll,
		ElectiveFilter:  ElectiveAll,
		LeakageView:     LeakageViewMap,
		PerformanceYear: year,
		CostChartMode:   CostChartStacked,
		PharmacyVisible: true,
		Scenario:        2,
	}
}

// ServiceOption is one service-type control with its enabled state.
type ServiceOption struct {
	Value    string `json:"value"`
	Disabled bool   `json:"disabled"`
	Selected bool   `json:"selected"`
}

// ServiceTypeOptions reports the service-type controls for the current claim
// type. Professional is disabled under Part A.
func (f Filters) ServiceTypeOptions() []ServiceOption {
	out := make([]ServiceOption, 0, len(dataset.ServiceTypes))
	for _, s := range dataset.ServiceTypes {
		out = append(out, ServiceOption{
			Value:    s,
			Disabled: !serviceAllowed(f.ClaimType, s),
			Selected: s == f.ServiceType,
		})
	}
	return out
}

func serviceAllowed(claimType, serviceType string) bool {
	return !(claimType == dataset.ClaimPartA && serviceType == dataset.ServiceProfessional)
}

func contains(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}

func containsInt(set []int, v int) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}

func parseInt(v string) (int, bool) {
	n, err := strconv.Atoi(v)
	return n, err == nil
}
