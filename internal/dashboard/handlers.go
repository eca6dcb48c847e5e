package dashboard

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/banshee-data/aco.dashboard/internal/calc"
	"github.com/banshee-data/aco.dashboard/internal/chartspec"
	"github.com/banshee-data/aco.dashboard/internal/dataset"
	"github.com/banshee-data/aco.dashboard/internal/db"
	"github.com/banshee-data/aco.dashboard/internal/drilldown"
	"github.com/banshee-data/aco.dashboard/internal/export"
	"github.com/banshee-data/aco.dashboard/internal/httputil"
	"github.com/banshee-data/aco.dashboard/internal/monitoring"
	"github.com/banshee-data/aco.dashboard/internal/render"
	"github.com/banshee-data/aco.dashboard/internal/state"
	"github.com/banshee-data/aco.dashboard/internal/version"
)

// errorStatus maps lookup failures to 404 and everything else, including a
// missing leakage cell, to 500.
func errorStatus(err error) int {
	switch {
	case errors.Is(err, dataset.ErrUnknownYear),
		errors.Is(err, dataset.ErrUnknownScenario),
		errors.Is(err, dataset.ErrUnknownEpisode),
		errors.Is(err, dataset.ErrUnknownHospital),
		errors.Is(err, dataset.ErrUnknownCounty),
		errors.Is(err, export.ErrUnknownTable):
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

func writeError(w http.ResponseWriter, err error) {
	status := errorStatus(err)
	if status >= http.StatusInternalServerError {
		log.Printf("dashboard: %v", err)
	}
	httputil.WriteJSONError(w, status, err.Error())
}

func wantsHTML(r *http.Request) bool {
	return r.URL.Query().Get("format") == "html"
}

func wantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}

// writeFragment answers with the named partial when ?format=html is set,
// and with JSON otherwise.
func (ws *WebServer) writeFragment(w http.ResponseWriter, r *http.Request, name string, data interface{}) {
	if !wantsHTML(r) {
		httputil.WriteJSONOK(w, data)
		return
	}
	html, err := render.RenderFragment(ws.templates, name, data)
	if err != nil {
		writeError(w, err)
		return
	}
	httputil.WriteHTML(w, html)
}

func (ws *WebServer) disclaimerAccepted(ctx context.Context, sessionID string) bool {
	if ws.db == nil {
		return false
	}
	a, err := ws.db.GetDisclaimerAcceptance(ctx, sessionID)
	if err != nil {
		log.Printf("dashboard: %v", err)
		return false
	}
	return a.Accepted
}

func (ws *WebServer) renderPage(w http.ResponseWriter, r *http.Request, s *Session) {
	start := time.Now()
	page, err := ws.buildPage(s, ws.disclaimerAccepted(r.Context(), s.ID))
	if err != nil {
		writeError(w, err)
		return
	}
	html, err := render.RenderPage(ws.templates, page)
	if err != nil {
		writeError(w, err)
		return
	}
	monitoring.ObserveRender("page", start)
	httputil.WriteHTML(w, html)
}

func (ws *WebServer) handleIndex(w http.ResponseWriter, r *http.Request) {
	ws.renderPage(w, r, ws.sessions.Get(w, r))
}

// handleTab switches tab. Query params select drill-downs:
//
//	episode, hospital (episodes tab)
//	county (leakage tab)
func (ws *WebServer) handleTab(w http.ResponseWriter, r *http.Request) {
	s := ws.sessions.Get(w, r)
	tab := r.PathValue("tab")
	if _, ok := tabLabels[tab]; !ok {
		httputil.NotFound(w, fmt.Sprintf("unknown tab %q", tab))
		return
	}
	s.Store.SetActiveTab(tab)

	q := r.URL.Query()
	if q.Has("episode") || q.Has("hospital") {
		if _, err := s.SelectHospital(q.Get("episode"), q.Get("hospital")); err != nil {
			writeError(w, err)
			return
		}
	}
	if fips := q.Get("county"); fips != "" {
		if _, err := s.CountyView(fips); err != nil {
			writeError(w, err)
			return
		}
	}
	ws.renderPage(w, r, s)
}

func (ws *WebServer) handleChart(w http.ResponseWriter, r *http.Request) {
	s := ws.sessions.Get(w, r)
	slot := r.PathValue("slot")
	start := time.Now()

	spec, err := chartspec.Build(slot, s.chartContext(s.Store.Filters()))
	if err != nil {
		writeError(w, err)
		return
	}
	if spec == nil {
		httputil.NotFound(w, fmt.Sprintf("unknown chart %q", slot))
		return
	}
	html, err := render.ChartHTML(spec, ws.chartOpts)
	if err != nil {
		writeError(w, err)
		return
	}
	monitoring.RecordChartRender(slot)
	monitoring.ObserveRender(slot, start)
	httputil.WriteHTML(w, html)
}

// handleMonteCarloPNG renders the simulation histogram as an image. The
// scenario defaults to the session's and may be overridden with ?scenario=.
func (ws *WebServer) handleMonteCarloPNG(w http.ResponseWriter, r *http.Request) {
	s := ws.sessions.Get(w, r)
	id := s.Store.Filters().Scenario
	if v := r.URL.Query().Get("scenario"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			httputil.BadRequest(w, "invalid 'scenario' parameter")
			return
		}
		id = n
	}
	sc, err := ws.catalog.Scenario(id)
	if err != nil {
		writeError(w, err)
		return
	}

	start := time.Now()
	sim := calc.Simulate(sc, ws.cfg.GetMonteCarloIterations(), ws.cfg.GetMonteCarloSeed())
	var buf bytes.Buffer
	if err := render.MonteCarloPNG(&buf, sc, sim); err != nil {
		writeError(w, err)
		return
	}
	monitoring.ObserveRender("montecarlo.png", start)
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	if _, err := w.Write(buf.Bytes()); err != nil {
		log.Printf("failed to write png: %v", err)
	}
}

type filtersResponse struct {
	Filters        state.Filters         `json:"filters"`
	ServiceOptions []state.ServiceOption `json:"service_options"`
}

func (ws *WebServer) handleGetFilters(w http.ResponseWriter, r *http.Request) {
	f := ws.sessions.Get(w, r).Store.Filters()
	httputil.WriteJSONOK(w, filtersResponse{Filters: f, ServiceOptions: f.ServiceTypeOptions()})
}

// handleSetFilter applies form value "value" to the named filter. Invalid
// values are ignored and reported with applied=false.
func (ws *WebServer) handleSetFilter(w http.ResponseWriter, r *http.Request) {
	s := ws.sessions.Get(w, r)
	name := r.PathValue("name")

	applied, known := s.Store.Apply(name, r.FormValue("value"))
	if !known {
		httputil.NotFound(w, fmt.Sprintf("unknown filter %q", name))
		return
	}
	monitoring.RecordFilterChange(name, applied)

	view, err := ws.buildView(s, applied)
	if err != nil {
		writeError(w, err)
		return
	}
	httputil.WriteJSONOK(w, view)
}

type leakageResponse struct {
	Metrics calc.LeakageMetrics `json:"metrics"`
	KPIs    []drilldown.KPI     `json:"kpis"`
	Table   drilldown.Table     `json:"table"`
}

// handleLeakage reports the split for the session's claim and service type,
// or for ?claimType= and ?serviceType= when given.
func (ws *WebServer) handleLeakage(w http.ResponseWriter, r *http.Request) {
	f := ws.sessions.Get(w, r).Store.Filters()
	claim, service := f.ClaimType, f.ServiceType
	// Unknown overrides are ignored and the session's filter stands.
	if v := r.URL.Query().Get("claimType"); slices.Contains(dataset.ClaimTypes, v) {
		claim = v
	}
	if v := r.URL.Query().Get("serviceType"); slices.Contains(dataset.ServiceTypes, v) {
		service = v
	}

	m, err := calc.Leakage(ws.catalog.Leakage, claim, service)
	if err != nil {
		writeError(w, err)
		return
	}
	httputil.WriteJSONOK(w, leakageResponse{
		Metrics: m,
		KPIs:    drilldown.LeakageKPIs(m),
		Table:   drilldown.LeakageTable(ws.catalog.Leakage),
	})
}

type marketsResponse struct {
	Summary calc.MarketSummary `json:"summary"`
	KPIs    []drilldown.KPI    `json:"kpis"`
	Table   drilldown.Table    `json:"table"`
}

func (ws *WebServer) handleMarkets(w http.ResponseWriter, r *http.Request) {
	year := ws.sessions.Get(w, r).Store.Filters().PerformanceYear
	if v := r.URL.Query().Get("year"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			httputil.BadRequest(w, "invalid 'year' parameter")
			return
		}
		year = n
	}
	rows, err := ws.catalog.Markets(year)
	if err != nil {
		writeError(w, err)
		return
	}
	summary := calc.SummarizeMarkets(year, rows)
	httputil.WriteJSONOK(w, marketsResponse{
		Summary: summary,
		KPIs:    drilldown.MarketKPIs(summary),
		Table:   drilldown.MarketsTable(summary),
	})
}

type scenarioResponse struct {
	Scenario   dataset.ScenarioConfig `json:"scenario"`
	Simulation calc.SimulationResult  `json:"simulation"`
	Histogram  []calc.Bin             `json:"histogram"`
	KPIs       []drilldown.KPI        `json:"kpis"`
}

func (ws *WebServer) handleScenario(w http.ResponseWriter, r *http.Request) {
	ws.sessions.Get(w, r)
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		httputil.BadRequest(w, "invalid scenario id")
		return
	}
	sc, err := ws.catalog.Scenario(id)
	if err != nil {
		writeError(w, err)
		return
	}
	sim := calc.Simulate(sc, ws.cfg.GetMonteCarloIterations(), ws.cfg.GetMonteCarloSeed())
	httputil.WriteJSONOK(w, scenarioResponse{
		Scenario:   sc,
		Simulation: sim,
		Histogram:  calc.Histogram(sim.Samples, 1),
		KPIs:       drilldown.ScenarioKPIs(sc, sim),
	})
}

func (ws *WebServer) handleHospital(w http.ResponseWriter, r *http.Request) {
	s := ws.sessions.Get(w, r)
	v, err := s.SelectHospital(r.PathValue("episode"), r.PathValue("hospital"))
	if err != nil {
		writeError(w, err)
		return
	}
	ws.writeFragment(w, r, "hospital", v)
}

func (ws *WebServer) handleCounty(w http.ResponseWriter, r *http.Request) {
	s := ws.sessions.Get(w, r)
	v, err := s.CountyView(r.PathValue("fips"))
	if err != nil {
		writeError(w, err)
		return
	}
	ws.writeFragment(w, r, "county", v)
}

func (ws *WebServer) handleToggleProviders(w http.ResponseWriter, r *http.Request) {
	s := ws.sessions.Get(w, r)
	v, err := s.ToggleProviders(r.PathValue("fips"))
	if err != nil {
		writeError(w, err)
		return
	}
	ws.writeFragment(w, r, "county", v)
}

type projectionInputResponse struct {
	Input   calc.ProjectionInput `json:"input"`
	Pending bool                 `json:"pending"`
}

// handleProjectionInput accepts slider values in percent (livesGrowth,
// riskChange, utilChange, leakReduce). Omitted sliders keep their value.
// The recompute runs once the sliders have been quiet for the debounce
// window.
func (ws *WebServer) handleProjectionInput(w http.ResponseWriter, r *http.Request) {
	s := ws.sessions.Get(w, r)
	if err := r.ParseForm(); err != nil {
		httputil.BadRequest(w, "invalid form body")
		return
	}

	in := s.Projection().Input
	fields := []struct {
		name string
		dst  *float64
	}{
		{sliderLivesGrowth, &in.LivesGrowth},
		{sliderRiskChange, &in.RiskChange},
		{sliderUtilChange, &in.UtilChange},
		{sliderLeakReduce, &in.LeakReduce},
	}
	for _, fld := range fields {
		v := r.PostForm.Get(fld.name)
		if v == "" {
			continue
		}
		pct, err := strconv.ParseFloat(v, 64)
		if err != nil {
			httputil.BadRequest(w, fmt.Sprintf("invalid %q value", fld.name))
			return
		}
		*fld.dst = pct / 100
	}

	httputil.WriteJSON(w, http.StatusAccepted, projectionInputResponse{
		Input:   s.SetProjectionInput(in),
		Pending: true,
	})
}

func (ws *WebServer) handleProjection(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSONOK(w, ws.sessions.Get(w, r).Projection())
}

func (ws *WebServer) handleProjectionCompute(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSONOK(w, ws.sessions.Get(w, r).ComputeProjection())
}

func (ws *WebServer) handleGeoCounties(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSONOK(w, ws.geo.Counties(r.Context()))
}

func (ws *WebServer) handleGetDisclaimer(w http.ResponseWriter, r *http.Request) {
	s := ws.sessions.Get(w, r)
	if ws.db == nil {
		httputil.WriteJSONOK(w, db.DisclaimerAcceptance{SessionID: s.ID})
		return
	}
	a, err := ws.db.GetDisclaimerAcceptance(r.Context(), s.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	httputil.WriteJSONOK(w, a)
}

// handleAcceptDisclaimer records acceptance. Browsers posting the banner
// form are redirected back; JSON clients get the stored record.
func (ws *WebServer) handleAcceptDisclaimer(w http.ResponseWriter, r *http.Request) {
	s := ws.sessions.Get(w, r)
	if ws.db == nil {
		httputil.WriteJSONError(w, http.StatusServiceUnavailable, "persistence is disabled")
		return
	}
	if err := ws.db.AcceptDisclaimer(r.Context(), s.ID, ws.clock.Now()); err != nil {
		writeError(w, err)
		return
	}
	if !wantsJSON(r) {
		http.Redirect(w, r, localReferer(r), http.StatusSeeOther)
		return
	}
	a, err := ws.db.GetDisclaimerAcceptance(r.Context(), s.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	httputil.WriteJSONOK(w, a)
}

// localReferer returns the path of a same-origin Referer, or "/".
func localReferer(r *http.Request) string {
	ref, err := url.Parse(r.Referer())
	if err != nil {
		return "/"
	}
	switch ref.Scheme {
	case "":
		if ref.Host != "" {
			return "/"
		}
	case "http", "https":
		if ref.Host != r.Host {
			return "/"
		}
	default:
		return "/"
	}
	if !strings.HasPrefix(ref.Path, "/") || strings.HasPrefix(ref.Path, "//") || strings.HasPrefix(ref.Path, "/\\") {
		return "/"
	}
	target := ref.Path
	if ref.RawQuery != "" {
		target += "?" + ref.RawQuery
	}
	return target
}

func (ws *WebServer) recordExport(ctx context.Context, sessionID, kind, format string) {
	if ws.db == nil {
		return
	}
	rec := db.ExportRecord{SessionID: sessionID, Kind: kind, Format: format, ExportedAt: ws.clock.Now()}
	if err := ws.db.RecordExport(ctx, rec); err != nil {
		log.Printf("dashboard: %v", err)
	}
}

// handleExportCSV serves /export/{table}.csv using the session's filters
// and drill-down selections.
func (ws *WebServer) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	s := ws.sessions.Get(w, r)
	file := r.PathValue("file")
	name, ok := strings.CutSuffix(file, ".csv")
	if !ok {
		httputil.NotFound(w, fmt.Sprintf("unknown export %q", file))
		return
	}

	sel := export.SelectionFor(s.Store.Filters())
	sel.Episode, sel.Hospital, sel.County, sel.AllProviders = s.Selection()
	sel.TopN = ws.cfg.GetProviderTopN()
	table, err := export.BuildTable(ws.catalog, name, sel)
	if err != nil {
		writeError(w, err)
		return
	}

	var buf bytes.Buffer
	if err := export.WriteCSV(&buf, table); err != nil {
		writeError(w, err)
		return
	}
	ws.recordExport(r.Context(), s.ID, name, "csv")
	httputil.WriteAttachment(w, "text/csv; charset=utf-8", export.CSVFilename(name), buf.Bytes())
}

func (ws *WebServer) handleSummaryPDF(w http.ResponseWriter, r *http.Request) {
	s := ws.sessions.Get(w, r)
	summary, err := export.NewSummary(ws.catalog, s.Store.Filters(), s.Projection().Input,
		ws.cfg.GetMonteCarloIterations(), ws.cfg.GetMonteCarloSeed(), ws.clock.Now())
	if err != nil {
		writeError(w, err)
		return
	}

	var buf bytes.Buffer
	if err := export.WriteSummaryPDF(&buf, summary); err != nil {
		writeError(w, err)
		return
	}
	ws.recordExport(r.Context(), s.ID, "summary", "pdf")
	httputil.WriteAttachment(w, "application/pdf", export.SummaryFilename, buf.Bytes())
}

// handleRecentExports lists the export audit log.
// Query params:
//
//	limit (optional, default 50)
func (ws *WebServer) handleRecentExports(w http.ResponseWriter, r *http.Request) {
	if ws.db == nil {
		httputil.WriteJSONOK(w, []db.ExportRecord{})
		return
	}
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			httputil.BadRequest(w, "invalid 'limit' parameter")
			return
		}
		limit = n
	}
	recs, err := ws.db.RecentExports(r.Context(), limit)
	if err != nil {
		writeError(w, err)
		return
	}
	if recs == nil {
		recs = []db.ExportRecord{}
	}
	httputil.WriteJSONOK(w, recs)
}

// handleHealth handles the health check endpoint.
func (ws *WebServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSONOK(w, map[string]interface{}{
		"status":    "ok",
		"service":   "aco-dashboard",
		"version":   version.String(),
		"sessions":  ws.sessions.Len(),
		"timestamp": ws.clock.Now().UTC().Format(time.RFC3339),
	})
}
