package state

import (
	"sync"

	"github.com/banshee-data/aco.dashboard/internal/dataset"
)

// Subscriber is called after every accepted setter call with the new filters
// and the name of the filter that was set.
type Subscriber func(f Filters, field string)

// Store holds one session's filters. Setters validate against the fixed
// enumerations, update the field and notify subscribers before returning.
// Invalid values are ignored: the state is left unchanged and subscribers are
// not called.
//
// Subscribers run synchronously on the setter's goroutine. They may read the
// store but must not call a setter.
type Store struct {
	// setMu serialises setter calls including their notifications.
	setMu sync.Mutex

	mu   sync.RWMutex
	f    Filters
	subs []Subscriber
}

// NewStore returns a store initialised to DefaultFilters(year).
func NewStore(year int) *Store {
	return &Store{f: DefaultFilters(year)}
}

// Filters returns a snapshot of the current filters.
func (s *Store) Filters() Filters {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.f
}

// Subscribe registers fn for every subsequent change.
func (s *Store) Subscribe(fn Subscriber) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs = append(s.subs, fn)
}

// update applies mutate under the write lock and notifies subscribers when
// mutate reports a change.
func (s *Store) update(field string, mutate func(f *Filters) bool) bool {
	s.setMu.Lock()
	defer s.setMu.Unlock()

	s.mu.Lock()
	if !mutate(&s.f) {
		s.mu.Unlock()
		return false
	}
	snapshot := s.f
	subs := append([]Subscriber(nil), s.subs...)
	s.mu.Unlock()

	for _, fn := range subs {
		fn(snapshot, field)
	}
	return true
}

// SetActiveTab switches the visible tab.
func (s *Store) SetActiveTab(tab string) bool {
	if !contains(Tabs, tab) {
		return false
	}
	return s.update(FieldTab, func(f *Filters) bool {
		f.ActiveTab = tab
		return true
	})
}

// SetClaimType selects the leakage claim type. Selecting Part A while the
// service type is professional resets the service type to all.
func (s *Store) SetClaimType(claimType string) bool {
	if !contains(dataset.ClaimTypes, claimType) {
		return false
	}
	return s.update(FieldClaimType, func(f *Filters) bool {
		f.ClaimType = claimType
		if !serviceAllowed(f.ClaimType, f.ServiceType) {
			f.ServiceType = dataset.ServiceAll
		}
		return true
	})
}

// SetServiceType selects the leakage service type. Professional under Part A
// is not applied: the service type falls back to all and the call reports
// false. Subscribers still see the fallback if it changed the state.
func (s *Store) SetServiceType(serviceType string) bool {
	if !contains(dataset.ServiceTypes, serviceType) {
		return false
	}
	applied := false
	s.update(FieldServiceType, func(f *Filters) bool {
		if !serviceAllowed(f.ClaimType, serviceType) {
			if f.ServiceType == dataset.ServiceAll {
				return false
			}
			f.ServiceType = dataset.ServiceAll
			return true
		}
		f.ServiceType = serviceType
		applied = true
		return true
	})
	return applied
}

// SetElectiveFilter selects which county services contribute to the
// provider ranking.
func (s *Store) SetElectiveFilter(v string) bool {
	if !contains(electiveFilters, v) {
		return false
	}
	return s.update(FieldElectiveFilter, func(f *Filters) bool {
		f.ElectiveFilter = v
		return true
	})
}

// SetLeakageView switches the leakage tab between map and table.
func (s *Store) SetLeakageView(v string) bool {
	if !contains(leakageViews, v) {
		return false
	}
	return s.update(FieldLeakageView, func(f *Filters) bool {
		f.LeakageView = v
		return true
	})
}

// SetPerformanceYear selects the market performance year.
func (s *Store) SetPerformanceYear(year int) bool {
	if !containsInt(Years, year) {
		return false
	}
	return s.update(FieldYear, func(f *Filters) bool {
		f.PerformanceYear = year
		return true
	})
}

// SetCostChartMode switches the cost trend between stacked bars and lines.
func (s *Store) SetCostChartMode(mode string) bool {
	if !contains(costChartModes, mode) {
		return false
	}
	return s.update(FieldCostChartMode, func(f *Filters) bool {
		f.CostChartMode = mode
		return true
	})
}

// TogglePharmacy shows or hides the pharmacy slice of the cost doughnut.
func (s *Store) TogglePharmacy() bool {
	return s.update(FieldPharmacy, func(f *Filters) bool {
		f.PharmacyVisible = !f.PharmacyVisible
		return true
	})
}

// SetScenario selects the Monte Carlo scenario (1..4).
func (s *Store) SetScenario(id int) bool {
	if id < 1 || id > 4 {
		return false
	}
	return s.update(FieldScenario, func(f *Filters) bool {
		f.Scenario = id
		return true
	})
}

// Apply dispatches a named filter change from the HTTP layer. known is false
// for filter names the store does not have.
func (s *Store) Apply(name, value string) (applied, known bool) {
	switch name {
	case FieldTab:
		return s.SetActiveTab(value), true
	case FieldClaimType:
		return s.SetClaimType(value), true
	case FieldServiceType:
		return s.SetServiceType(value), true
	case FieldElectiveFilter:
		return s.SetElectiveFilter(value), true
	case FieldLeakageView:
		return s.SetLeakageView(value), true
	case FieldCostChartMode:
		return s.SetCostChartMode(value), true
	case FieldPharmacy:
		return s.TogglePharmacy(), true
	case FieldYear:
		year, ok := parseInt(value)
		return ok && s.SetPerformanceYear(year), true
	case FieldScenario:
		id, ok := parseInt(value)
		return ok && s.SetScenario(id), true
	}
	return false, false
}
