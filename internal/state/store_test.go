package state

import (
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/banshee-data/aco.dashboard/internal/dataset"
)

type call struct {
	field   string
	filters Filters
}

func recordCalls(s *Store) *[]call {
	var calls []call
	s.Subscribe(func(f Filters, field string) {
		calls = append(calls, call{field: field, filters: f})
	})
	return &calls
}

func TestNewStore_Defaults(t *testing.T) {
	s := NewStore(2024)
	want := Filters{
		ActiveTab:       TabPerformance,
		ClaimType:       dataset.ClaimAll,
		ServiceType:     dataset.ServiceAll,
		ElectiveFilter:  ElectiveAll,
		LeakageView:     LeakageViewMap,
		PerformanceYear: 2024,
		CostChartMode:   CostChartStacked,
		PharmacyVisible: true,
		Scenario:        2,
	}
	if diff := cmp.Diff(want, s.Filters()); diff != "" {
		t.Errorf("default filters mismatch (-want +got):\n%s", diff)
	}

	if got := NewStore(1999).Filters().PerformanceYear; got != 2025 {
		t.Errorf("unknown default year should fall back to 2025, got %d", got)
	}
}

func TestSetters_InvalidValuesIgnored(t *testing.T) {
	s := NewStore(2025)
	calls := recordCalls(s)
	before := s.Filters()

	rejected := map[string]bool{
		"tab":            s.SetActiveTab("billing"),
		"claimType":      s.SetClaimType("partD"),
		"serviceType":    s.SetServiceType("dental"),
		"electiveFilter": s.SetElectiveFilter("urgent"),
		"leakageView":    s.SetLeakageView("globe"),
		"year":           s.SetPerformanceYear(2022),
		"costChartMode":  s.SetCostChartMode("pie"),
		"scenario":       s.SetScenario(5),
		"scenarioZero":   s.SetScenario(0),
	}
	for name, applied := range rejected {
		if applied {
			t.Errorf("%s: invalid value reported as applied", name)
		}
	}
	if diff := cmp.Diff(before, s.Filters()); diff != "" {
		t.Errorf("state changed on invalid input (-before +after):\n%s", diff)
	}
	if len(*calls) != 0 {
		t.Errorf("subscribers called %d times for invalid input", len(*calls))
	}
}

func TestSetters_ValidValuesNotify(t *testing.T) {
	s := NewStore(2025)
	calls := recordCalls(s)

	if !s.SetActiveTab(TabLeakage) {
		t.Fatal("SetActiveTab rejected leakage")
	}
	if !s.SetPerformanceYear(2023) {
		t.Fatal("SetPerformanceYear rejected 2023")
	}
	if !s.SetCostChartMode(CostChartLine) {
		t.Fatal("SetCostChartMode rejected line")
	}
	if !s.TogglePharmacy() {
		t.Fatal("TogglePharmacy reported not applied")
	}

	got := s.Filters()
	if got.ActiveTab != TabLeakage || got.PerformanceYear != 2023 || got.CostChartMode != CostChartLine || got.PharmacyVisible {
		t.Errorf("unexpected filters: %+v", got)
	}

	wantFields := []string{FieldTab, FieldYear, FieldCostChartMode, FieldPharmacy}
	if len(*calls) != len(wantFields) {
		t.Fatalf("got %d notifications, want %d", len(*calls), len(wantFields))
	}
	for i, c := range *calls {
		if c.field != wantFields[i] {
			t.Errorf("notification %d field = %s, want %s", i, c.field, wantFields[i])
		}
	}
	// Subscribers receive the state as of their own change.
	if (*calls)[1].filters.CostChartMode != CostChartStacked {
		t.Error("second notification should predate the cost mode change")
	}
}

func TestSetServiceType_ProfessionalUnderPartAFallsBack(t *testing.T) {
	s := NewStore(2025)
	s.SetClaimType(dataset.ClaimPartA)
	s.SetServiceType(dataset.ServiceInpatient)
	calls := recordCalls(s)

	if s.SetServiceType(dataset.ServiceProfessional) {
		t.Error("professional under partA reported as applied")
	}
	if got := s.Filters().ServiceType; got != dataset.ServiceAll {
		t.Errorf("service type = %s, want all", got)
	}
	if len(*calls) != 1 || (*calls)[0].filters.ServiceType != dataset.ServiceAll {
		t.Errorf("fallback should notify once with service all, got %+v", *calls)
	}

	// Already at all: nothing to change, nothing to notify.
	s.SetServiceType(dataset.ServiceProfessional)
	if len(*calls) != 1 {
		t.Errorf("no-op fallback notified: %d calls", len(*calls))
	}
}

func TestSetClaimType_PartAResetsProfessional(t *testing.T) {
	s := NewStore(2025)
	if !s.SetServiceType(dataset.ServiceProfessional) {
		t.Fatal("professional under all should apply")
	}
	if !s.SetClaimType(dataset.ClaimPartA) {
		t.Fatal("SetClaimType(partA) rejected")
	}
	got := s.Filters()
	if got.ClaimType != dataset.ClaimPartA || got.ServiceType != dataset.ServiceAll {
		t.Errorf("got claim=%s service=%s, want partA/all", got.ClaimType, got.ServiceType)
	}

	// Part B keeps professional.
	s.SetClaimType(dataset.ClaimPartB)
	s.SetServiceType(dataset.ServiceProfessional)
	if got := s.Filters().ServiceType; got != dataset.ServiceProfessional {
		t.Errorf("partB service = %s, want professional", got)
	}
}

func TestServiceTypeOptions(t *testing.T) {
	s := NewStore(2025)
	s.SetClaimType(dataset.ClaimPartA)

	opts := s.Filters().ServiceTypeOptions()
	if len(opts) != len(dataset.ServiceTypes) {
		t.Fatalf("got %d options, want %d", len(opts), len(dataset.ServiceTypes))
	}
	for _, o := range opts {
		wantDisabled := o.Value == dataset.ServiceProfessional
		if o.Disabled != wantDisabled {
			t.Errorf("%s disabled = %v, want %v", o.Value, o.Disabled, wantDisabled)
		}
		if o.Selected != (o.Value == dataset.ServiceAll) {
			t.Errorf("%s selected = %v", o.Value, o.Selected)
		}
	}

	s.SetClaimType(dataset.ClaimAll)
	for _, o := range s.Filters().ServiceTypeOptions() {
		if o.Disabled {
			t.Errorf("%s disabled under claim type all", o.Value)
		}
	}
}

func TestApply(t *testing.T) {
	s := NewStore(2025)

	tests := []struct {
		name, value    string
		applied, known bool
	}{
		{FieldTab, TabCosts, true, true},
		{FieldYear, "2024", true, true},
		{FieldYear, "twenty", false, true},
		{FieldScenario, "3", true, true},
		{FieldScenario, "9", false, true},
		{FieldPharmacy, "", true, true},
		{FieldElectiveFilter, ElectiveNonElective, true, true},
		{FieldLeakageView, LeakageViewTable, true, true},
		{"colour", "blue", false, false},
	}
	for _, tt := range tests {
		applied, known := s.Apply(tt.name, tt.value)
		if applied != tt.applied || known != tt.known {
			t.Errorf("Apply(%q, %q) = (%v, %v), want (%v, %v)", tt.name, tt.value, applied, known, tt.applied, tt.known)
		}
	}

	got := s.Filters()
	if got.ActiveTab != TabCosts || got.PerformanceYear != 2024 || got.Scenario != 3 || got.PharmacyVisible {
		t.Errorf("unexpected filters after Apply: %+v", got)
	}
}

func TestStore_ConcurrentSetters(t *testing.T) {
	s := NewStore(2025)
	var mu sync.Mutex
	notified := 0
	s.Subscribe(func(f Filters, field string) {
		_ = s.Filters()
		mu.Lock()
		notified++
		mu.Unlock()
	})

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s.SetPerformanceYear(Years[i%len(Years)])
		}(i)
	}
	wg.Wait()

	if notified != 50 {
		t.Errorf("notified %d times, want 50", notified)
	}
}
