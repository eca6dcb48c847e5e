package calc

import (
	"sort"
	"sync"

	"github.com/banshee-data/aco.dashboard/internal/dataset"
	"github.com/banshee-data/aco.dashboard/internal/state"
)

// DefaultTopProviders is the length of the collapsed provider ranking.
const DefaultTopProviders = 5

// ProviderService is one facility service line in a county ranking.
type ProviderService struct {
	Facility   string  `json:"facility"`
	City       string  `json:"city"`
	Service    string  `json:"service"`
	Spend      float64 `json:"spend"`
	Cases      int     `json:"cases"`
	IsElective bool    `json:"elective"`
}

// CountyAnalysis is a county's leakage breakdown. ElectiveTotal and
// NonElectiveTotal always cover every service; Services and FilteredSpend
// honour the elective filter.
type CountyAnalysis struct {
	FIPS             string            `json:"fips"`
	Name             string            `json:"name"`
	LeakageScore     float64           `json:"leakage_score"`
	TotalCostAmount  float64           `json:"total_cost_amount"`
	OONLeakage       float64           `json:"oon_leakage"`
	ElectiveTotal    float64           `json:"elective_total"`
	NonElectiveTotal float64           `json:"non_elective_total"`
	ElectiveFilter   string            `json:"elective_filter"`
	FilteredSpend    float64           `json:"filtered_spend"`
	Services         []ProviderService `json:"services"` // spend descending
}

// OONLeakage is the out-of-network spend for a county. LeakageScore is a
// fraction of total cost, not an amount.
func OONLeakage(c dataset.CountyEntry) float64 {
	return c.TotalCostAmount * c.LeakageScore
}

// AnalyzeCounty partitions a county's service spend and ranks its services
// by spend under the given elective filter. Unknown filters act as all.
func AnalyzeCounty(c dataset.CountyEntry, electiveFilter string) CountyAnalysis {
	a := CountyAnalysis{
		FIPS:            c.FIPS,
		Name:            c.Name,
		LeakageScore:    c.LeakageScore,
		TotalCostAmount: c.TotalCostAmount,
		OONLeakage:      OONLeakage(c),
		ElectiveFilter:  electiveFilter,
	}
	for _, f := range c.Facilities {
		for _, s := range f.Services {
			if s.IsElective {
				a.ElectiveTotal += s.Spend
			} else {
				a.NonElectiveTotal += s.Spend
			}
			if !electiveMatch(electiveFilter, s.IsElective) {
				continue
			}
			a.Services = append(a.Services, ProviderService{
				Facility:   f.Name,
				City:       f.City,
				Service:    s.Name,
				Spend:      s.Spend,
				Cases:      s.Cases,
				IsElective: s.IsElective,
			})
			a.FilteredSpend += s.Spend
		}
	}
	sort.SliceStable(a.Services, func(i, j int) bool { return a.Services[i].Spend > a.Services[j].Spend })
	return a
}

func electiveMatch(filter string, elective bool) bool {
	switch filter {
	case state.ElectiveOnly:
		return elective
	case state.ElectiveNonElective:
		return !elective
	}
	return true
}

// ProviderList is the expandable provider ranking shown in a county
// drill-down. It starts collapsed to the top N entries.
type ProviderList struct {
	mu       sync.Mutex
	all      []ProviderService
	topN     int
	expanded bool
}

// NewProviderList wraps a ranked service list. topN below 1 uses
// DefaultTopProviders.
func NewProviderList(ranked []ProviderService, topN int) *ProviderList {
	if topN < 1 {
		topN = DefaultTopProviders
	}
	return &ProviderList{all: ranked, topN: topN}
}

// TopN is the length of the collapsed list.
func (l *ProviderList) TopN() int { return l.topN }

// Toggle switches between the top N and the full list and returns the
// entries now visible.
func (l *ProviderList) Toggle() []ProviderService {
	l.mu.Lock()
	l.expanded = !l.expanded
	l.mu.Unlock()
	return l.Visible()
}

// Expanded reports whether the full list is shown.
func (l *ProviderList) Expanded() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.expanded
}

// Visible returns a copy of the entries currently shown.
func (l *ProviderList) Visible() []ProviderService {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := len(l.all)
	if !l.expanded && n > l.topN {
		n = l.topN
	}
	return append([]ProviderService(nil), l.all[:n]...)
}

// Hidden reports how many entries the collapsed view leaves out.
func (l *ProviderList) Hidden() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.expanded || len(l.all) <= l.topN {
		return 0
	}
	return len(l.all) - l.topN
}
