package dashboard

import (
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/banshee-data/aco.dashboard/internal/calc"
	"github.com/banshee-data/aco.dashboard/internal/chartspec"
	"github.com/banshee-data/aco.dashboard/internal/dataset"
	"github.com/banshee-data/aco.dashboard/internal/debounce"
	"github.com/banshee-data/aco.dashboard/internal/drilldown"
	"github.com/banshee-data/aco.dashboard/internal/monitoring"
	"github.com/banshee-data/aco.dashboard/internal/state"
	"github.com/banshee-data/aco.dashboard/internal/timeutil"
)

// sessionOptions are the server-wide settings every session shares.
type sessionOptions struct {
	catalog        *dataset.Catalog
	defaultYear    int
	iterations     int
	seed           uint64
	topN           int
	debounceWindow time.Duration
	clock          timeutil.Clock
}

// Session is one browser's dashboard: its filter store, the chart instances
// on its current tab and its drill-down selections.
type Session struct {
	ID     string
	Store  *state.Store
	Charts *state.Registry[*chartspec.Spec]

	opts       sessionOptions
	projection *debounce.Debouncer

	mu            sync.Mutex
	episode       string
	hospital      string
	county        string
	expanded      map[string]bool
	projInput     calc.ProjectionInput
	proj          calc.Projection
	projRuns      int
	lastRenderErr error
}

func newSession(id string, opts sessionOptions) *Session {
	s := &Session{
		ID:       id,
		Store:    state.NewStore(opts.defaultYear),
		opts:     opts,
		expanded: make(map[string]bool),
		proj:     calc.Project(calc.ProjectionInput{}),
	}
	s.projection = debounce.New(opts.clock, opts.debounceWindow, func() {
		s.recomputeProjection("debounced")
	})

	f := s.Store.Filters()
	s.Charts = state.NewRegistry[*chartspec.Spec](chartspec.SlotsFor(f.ActiveTab)...)
	s.Store.Subscribe(s.onFilterChange)
	s.renderSlots(f, chartspec.SlotsFor(f.ActiveTab))
	return s
}

// onFilterChange re-renders the charts a filter change can affect. A tab
// switch disposes every chart and mounts the new tab's slots.
func (s *Session) onFilterChange(f state.Filters, field string) {
	if field == state.FieldTab {
		s.Charts.DisposeAll()
		s.Charts.Mount(chartspec.SlotsFor(f.ActiveTab)...)
		s.renderSlots(f, chartspec.SlotsFor(f.ActiveTab))
		return
	}
	var affected []string
	for _, slot := range chartspec.SlotsFor(f.ActiveTab) {
		if chartspec.Affects(field, slot) {
			affected = append(affected, slot)
		}
	}
	s.renderSlots(f, affected)
}

func (s *Session) chartContext(f state.Filters) chartspec.Context {
	s.mu.Lock()
	defer s.mu.Unlock()
	return chartspec.Context{
		Catalog:    s.opts.catalog,
		Filters:    f,
		Episode:    s.episode,
		Hospital:   s.hospital,
		Iterations: s.opts.iterations,
		Seed:       s.opts.seed,
	}
}

// renderSlots rebuilds the given slots. A slot that fails to build keeps
// its previous chart and the error is kept for LastRenderError.
func (s *Session) renderSlots(f state.Filters, slots []string) {
	ctx := s.chartContext(f)
	for _, slot := range slots {
		if !s.Charts.Mounted(slot) {
			continue
		}
		start := time.Now()
		spec, err := chartspec.Build(slot, ctx)
		if err != nil {
			log.Printf("session %s: %v", s.ID, err)
			s.mu.Lock()
			s.lastRenderErr = err
			s.mu.Unlock()
			continue
		}
		if spec == nil {
			continue
		}
		s.Charts.Replace(slot, spec)
		monitoring.RecordChartRender(slot)
		monitoring.ObserveRender(slot, start)
	}
}

// LastRenderError returns the most recent chart build failure, if any.
func (s *Session) LastRenderError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastRenderErr
}

// SelectHospital picks the episode drill-down and re-renders the episode
// charts. Empty values select the first entry.
func (s *Session) SelectHospital(episodeID, hospital string) (drilldown.HospitalView, error) {
	ep, h, err := s.opts.catalog.ResolveHospital(episodeID, hospital)
	if err != nil {
		return drilldown.HospitalView{}, err
	}
	s.mu.Lock()
	changed := s.episode != ep.ID || s.hospital != h.Name
	s.episode, s.hospital = ep.ID, h.Name
	s.mu.Unlock()

	if changed {
		s.renderSlots(s.Store.Filters(), []string{
			chartspec.SlotEpisodeCost, chartspec.SlotProviderCost, chartspec.SlotOpportunityRanking,
		})
	}
	return drilldown.NewHospitalView(ep, h), nil
}

// HospitalView returns the currently selected hospital drill-down.
func (s *Session) HospitalView() (drilldown.HospitalView, error) {
	s.mu.Lock()
	episodeID, hospital := s.episode, s.hospital
	s.mu.Unlock()

	ep, h, err := s.opts.catalog.ResolveHospital(episodeID, hospital)
	if err != nil {
		return drilldown.HospitalView{}, err
	}
	return drilldown.NewHospitalView(ep, h), nil
}

// Selection returns the session's hospital and county picks.
func (s *Session) Selection() (episode, hospital, county string, allProviders bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.episode, s.hospital, s.county, s.expanded[s.county]
}

// CountyView analyses a county under the current elective filter and makes
// it the selected county. The provider list honours the county's expanded
// state.
func (s *Session) CountyView(fips string) (drilldown.CountyView, error) {
	county, err := s.opts.catalog.County(fips)
	if err != nil {
		return drilldown.CountyView{}, err
	}
	a := calc.AnalyzeCounty(county, s.Store.Filters().ElectiveFilter)
	list := calc.NewProviderList(a.Services, s.opts.topN)

	s.mu.Lock()
	s.county = fips
	expanded := s.expanded[fips]
	s.mu.Unlock()
	if expanded {
		list.Toggle()
	}
	return drilldown.NewCountyView(a, list), nil
}

// ToggleProviders switches a county between its top providers and the full
// ranking.
func (s *Session) ToggleProviders(fips string) (drilldown.CountyView, error) {
	if _, err := s.opts.catalog.County(fips); err != nil {
		return drilldown.CountyView{}, err
	}
	s.mu.Lock()
	s.expanded[fips] = !s.expanded[fips]
	s.mu.Unlock()
	return s.CountyView(fips)
}

// SelectedCounty returns the county last opened, or the first county.
func (s *Session) SelectedCounty() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.county == "" && len(s.opts.catalog.Counties) > 0 {
		return s.opts.catalog.Counties[0].FIPS
	}
	return s.county
}

// ProjectionState is the projection model's current input and output.
type ProjectionState struct {
	Input      calc.ProjectionInput `json:"input"`
	Projection calc.Projection      `json:"projection"`
	Runs       int                  `json:"runs"`
	KPIs       []drilldown.KPI      `json:"kpis"`
}

// SetProjectionInput stores slider values and schedules a debounced
// recompute.
func (s *Session) SetProjectionInput(in calc.ProjectionInput) calc.ProjectionInput {
	in = in.Clamp()
	s.mu.Lock()
	s.projInput = in
	s.mu.Unlock()
	s.projection.Trigger()
	return in
}

// ComputeProjection recomputes immediately, cancelling a pending debounced
// run.
func (s *Session) ComputeProjection() ProjectionState {
	if !s.projection.Flush() {
		s.recomputeProjection("immediate")
	}
	return s.Projection()
}

// Projection returns the last computed projection.
func (s *Session) Projection() ProjectionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ProjectionState{
		Input:      s.projInput,
		Projection: s.proj,
		Runs:       s.projRuns,
		KPIs:       drilldown.ProjectionKPIs(s.proj),
	}
}

func (s *Session) recomputeProjection(trigger string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.proj = calc.Project(s.projInput)
	s.projRuns++
	monitoring.RecordProjection(trigger)
}

// Close stops the session's pending projection and disposes its charts.
func (s *Session) Close() {
	s.projection.Stop()
	s.Charts.DisposeAll()
}

// SessionManager maps the session cookie to live sessions. Sessions idle
// for longer than ttl are closed and dropped.
type SessionManager struct {
	cookie string
	ttl    time.Duration
	opts   sessionOptions

	mu        sync.Mutex
	sessions  map[string]*Session
	lastSeen  map[string]time.Time
	lastSweep time.Time
}

func newSessionManager(cookie string, ttl time.Duration, opts sessionOptions) *SessionManager {
	return &SessionManager{
		cookie:   cookie,
		ttl:      ttl,
		opts:     opts,
		sessions: make(map[string]*Session),
		lastSeen: make(map[string]time.Time),
	}
}

// Get returns the request's session, creating it and setting the cookie
// when needed. A well-formed ID from an earlier run is reused so persisted
// state keyed by it still applies.
func (m *SessionManager) Get(w http.ResponseWriter, r *http.Request) *Session {
	id := ""
	if c, err := r.Cookie(m.cookie); err == nil {
		if _, err := uuid.Parse(c.Value); err == nil {
			id = c.Value
		}
	}

	now := m.opts.clock.Now()
	m.mu.Lock()
	defer m.mu.Unlock()
	if now.Sub(m.lastSweep) >= m.ttl/4 {
		m.sweepLocked(now)
	}
	if s, ok := m.sessions[id]; ok {
		m.lastSeen[id] = now
		return s
	}
	if id == "" {
		id = uuid.NewString()
	}
	s := newSession(id, m.opts)
	m.sessions[id] = s
	m.lastSeen[id] = now
	http.SetCookie(w, &http.Cookie{
		Name:     m.cookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return s
}

// Sweep closes every session idle for longer than the TTL and returns how
// many were dropped.
func (m *SessionManager) Sweep() int {
	now := m.opts.clock.Now()
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sweepLocked(now)
}

func (m *SessionManager) sweepLocked(now time.Time) int {
	m.lastSweep = now
	dropped := 0
	for id, seen := range m.lastSeen {
		if now.Sub(seen) <= m.ttl {
			continue
		}
		m.sessions[id].Close()
		delete(m.sessions, id)
		delete(m.lastSeen, id)
		dropped++
	}
	if dropped > 0 {
		log.Printf("sessions: dropped %d idle, %d live", dropped, len(m.sessions))
	}
	return dropped
}

// Len reports the number of live sessions.
func (m *SessionManager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// CloseAll closes and forgets every session.
func (m *SessionManager) CloseAll() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, s := range m.sessions {
		s.Close()
		delete(m.sessions, id)
		delete(m.lastSeen, id)
	}
}
