// Package dashboard serves the ACO dashboard over HTTP. Each browser gets a
// session holding its filter store and chart instances; routes call the
// store's setters and the store's subscribers re-render the affected charts.
package dashboard

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/banshee-data/aco.dashboard/internal/config"
	"github.com/banshee-data/aco.dashboard/internal/dataset"
	"github.com/banshee-data/aco.dashboard/internal/db"
	"github.com/banshee-data/aco.dashboard/internal/geo"
	"github.com/banshee-data/aco.dashboard/internal/httputil"
	"github.com/banshee-data/aco.dashboard/internal/render"
	"github.com/banshee-data/aco.dashboard/internal/timeutil"
)

// WebServerConfig contains configuration options for the web server.
type WebServerConfig struct {
	Config  *config.DashboardConfig
	Catalog *dataset.Catalog
	DB      *db.DB

	// Optional collaborators; nil selects the production implementation.
	HTTPClient httputil.HTTPClient
	Clock      timeutil.Clock
	Templates  render.TemplateProvider
}

// WebServer serves the dashboard pages, the JSON API and exports.
type WebServer struct {
	address   string
	server    *http.Server
	cfg       *config.DashboardConfig
	catalog   *dataset.Catalog
	db        *db.DB
	geo       *geo.Source
	templates render.TemplateProvider
	chartOpts render.Options
	clock     timeutil.Clock
	sessions  *SessionManager
}

// NewWebServer wires the server. It does not start listening.
func NewWebServer(c WebServerConfig) *WebServer {
	cfg := c.Config
	if cfg == nil {
		cfg = &config.DashboardConfig{}
	}
	clock := c.Clock
	if clock == nil {
		clock = timeutil.RealClock{}
	}
	client := c.HTTPClient
	if client == nil {
		client = httputil.NewStandardClient(cfg.GetGeoTimeout())
	}
	templates := c.Templates
	if templates == nil {
		templates = render.DefaultTemplates()
	}

	ws := &WebServer{
		address:   cfg.GetListen(),
		cfg:       cfg,
		catalog:   c.Catalog,
		db:        c.DB,
		geo:       geo.NewSource(client, cfg.GetGeoURL(), cfg.GetGeoTimeout(), c.Catalog.CountyFIPS()),
		templates: templates,
		chartOpts: render.DefaultOptions(cfg.GetAssetsHost()),
		clock:     clock,
		sessions: newSessionManager(cfg.GetSessionCookie(), cfg.GetSessionTTL(), sessionOptions{
			catalog:        c.Catalog,
			defaultYear:    cfg.GetDefaultYear(),
			iterations:     cfg.GetMonteCarloIterations(),
			seed:           cfg.GetMonteCarloSeed(),
			topN:           cfg.GetProviderTopN(),
			debounceWindow: cfg.GetDebounceWindow(),
			clock:          clock,
		}),
	}
	ws.server = &http.Server{
		Addr:              ws.address,
		Handler:           ws.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return ws
}

// Handler returns the routed handler wrapped in request logging.
func (ws *WebServer) Handler() http.Handler {
	return LoggingMiddleware(ws.setupRoutes())
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (ws *WebServer) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		log.Printf("Starting HTTP server on %s", ws.address)
		if err := ws.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			ws.sessions.CloseAll()
			return err
		}
	case <-ctx.Done():
	}
	log.Println("shutting down HTTP server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := ws.server.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
		// Force close the server if graceful shutdown fails
		if err := ws.server.Close(); err != nil {
			log.Printf("HTTP server force close error: %v", err)
		}
	}
	ws.sessions.CloseAll()

	log.Printf("HTTP server routine stopped")
	return nil
}

// Close stops the server immediately and drops every session.
func (ws *WebServer) Close() error {
	ws.sessions.CloseAll()
	if ws.server != nil {
		return ws.server.Close()
	}
	return nil
}

// setupRoutes configures the HTTP routes and handlers.
func (ws *WebServer) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	// Pages and charts
	mux.HandleFunc("GET /{$}", ws.handleIndex)
	mux.HandleFunc("GET /tab/{tab}", ws.handleTab)
	mux.HandleFunc("GET /charts/montecarlo.png", ws.handleMonteCarloPNG)
	mux.HandleFunc("GET /charts/{slot}", ws.handleChart)

	// Filters and drill-downs
	mux.HandleFunc("GET /api/filters", ws.handleGetFilters)
	mux.HandleFunc("POST /api/filters/{name}", ws.handleSetFilter)
	mux.HandleFunc("GET /api/leakage", ws.handleLeakage)
	mux.HandleFunc("GET /api/markets", ws.handleMarkets)
	mux.HandleFunc("GET /api/scenarios/{id}", ws.handleScenario)
	mux.HandleFunc("GET /api/episodes/{episode}/hospitals/{hospital}", ws.handleHospital)
	mux.HandleFunc("GET /api/counties/{fips}", ws.handleCounty)
	mux.HandleFunc("POST /api/counties/{fips}/providers/toggle", ws.handleToggleProviders)

	// Projection
	mux.HandleFunc("POST /api/projection/input", ws.handleProjectionInput)
	mux.HandleFunc("GET /api/projection", ws.handleProjection)
	mux.HandleFunc("POST /api/projection/compute", ws.handleProjectionCompute)

	// Geography, disclaimer, exports
	mux.HandleFunc("GET /api/geo/counties", ws.handleGeoCounties)
	mux.HandleFunc("GET /api/disclaimer", ws.handleGetDisclaimer)
	mux.HandleFunc("POST /api/disclaimer/accept", ws.handleAcceptDisclaimer)
	mux.HandleFunc("GET /export/summary.pdf", ws.handleSummaryPDF)
	mux.HandleFunc("GET /export/{file}", ws.handleExportCSV)
	mux.HandleFunc("GET /api/exports", ws.handleRecentExports)

	// Operations
	mux.HandleFunc("GET /health", ws.handleHealth)
	mux.Handle("GET /metrics", promhttp.Handler())

	return mux
}
