package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// DefaultConfigPath is the path to the canonical dashboard defaults file.
const DefaultConfigPath = "config/dashboard.defaults.json"

// DashboardConfig is the dashboard server configuration. Every field is
// optional; the Get* methods supply defaults for anything left out.
type DashboardConfig struct {
	// Server
	Listen        *string `json:"listen,omitempty"`
	AssetsHost    *string `json:"assets_host,omitempty"`
	SessionCookie *string `json:"session_cookie,omitempty"`
	DefaultYear   *int    `json:"default_year,omitempty"`
	SessionTTL    *string `json:"session_ttl,omitempty"` // idle time before a session is dropped, like "30m"

	// Persistence
	DBPath *string `json:"db_path,omitempty"`

	// Projection sliders
	DebounceWindow *string `json:"debounce_window,omitempty"` // duration string like "150ms"

	// Geography
	GeoURL     *string `json:"geo_url,omitempty"`
	GeoTimeout *string `json:"geo_timeout,omitempty"` // duration string like "5s"

	// Simulation and drill-downs
	MonteCarloIterations *int    `json:"monte_carlo_iterations,omitempty"`
	MonteCarloSeed       *uint64 `json:"monte_carlo_seed,omitempty"`
	ProviderTopN         *int    `json:"provider_top_n,omitempty"`
}

// LoadDashboardConfig loads a DashboardConfig from a JSON file.
// The file must have a .json extension and be under 1MB. Fields omitted from
// the file fall back to the Get* defaults, so partial configs are safe.
func LoadDashboardConfig(path string) (*DashboardConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := &DashboardConfig{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// MustLoadDefaultConfig loads DefaultConfigPath, searching the current
// directory and its parents up to the repository root. Panics if the file
// cannot be loaded; intended for test setup.
func MustLoadDefaultConfig() *DashboardConfig {
	candidates := []string{
		DefaultConfigPath,
		"../../" + DefaultConfigPath,    // from internal/<pkg>/
		"../../../" + DefaultConfigPath, // from cmd/<tool>/ subpackages
	}
	for _, path := range candidates {
		if cfg, err := LoadDashboardConfig(path); err == nil {
			return cfg
		}
	}
	panic("cannot find " + DefaultConfigPath + " - run tests from repository root")
}

// Validate checks that the configuration values are valid.
func (c *DashboardConfig) Validate() error {
	if c.DebounceWindow != nil && *c.DebounceWindow != "" {
		d, err := time.ParseDuration(*c.DebounceWindow)
		if err != nil {
			return fmt.Errorf("invalid debounce_window '%s': %w", *c.DebounceWindow, err)
		}
		if d <= 0 {
			return fmt.Errorf("debounce_window must be positive, got %s", d)
		}
	}

	if c.SessionTTL != nil && *c.SessionTTL != "" {
		d, err := time.ParseDuration(*c.SessionTTL)
		if err != nil {
			return fmt.Errorf("invalid session_ttl '%s': %w", *c.SessionTTL, err)
		}
		if d <= 0 {
			return fmt.Errorf("session_ttl must be positive, got %s", d)
		}
	}

	if c.GeoTimeout != nil && *c.GeoTimeout != "" {
		if _, err := time.ParseDuration(*c.GeoTimeout); err != nil {
			return fmt.Errorf("invalid geo_timeout '%s': %w", *c.GeoTimeout, err)
		}
	}

	if c.MonteCarloIterations != nil && (*c.MonteCarloIterations < 100 || *c.MonteCarloIterations > 1_000_000) {
		return fmt.Errorf("monte_carlo_iterations must be between 100 and 1000000, got %d", *c.MonteCarloIterations)
	}

	if c.ProviderTopN != nil && *c.ProviderTopN < 1 {
		return fmt.Errorf("provider_top_n must be at least 1, got %d", *c.ProviderTopN)
	}

	if c.DefaultYear != nil && (*c.DefaultYear < 2023 || *c.DefaultYear > 2025) {
		return fmt.Errorf("default_year must be between 2023 and 2025, got %d", *c.DefaultYear)
	}

	return nil
}

// GetListen returns the listen address or the default.
func (c *DashboardConfig) GetListen() string {
	if c.Listen == nil || *c.Listen == "" {
		return ":8080"
	}
	return *c.Listen
}

// GetAssetsHost returns the ECharts assets host or the go-echarts default.
func (c *DashboardConfig) GetAssetsHost() string {
	if c.AssetsHost == nil || *c.AssetsHost == "" {
		return "https://go-echarts.github.io/go-echarts-assets/assets/"
	}
	return *c.AssetsHost
}

// GetSessionCookie returns the session cookie name or the default.
func (c *DashboardConfig) GetSessionCookie() string {
	if c.SessionCookie == nil || *c.SessionCookie == "" {
		return "aco_session"
	}
	return *c.SessionCookie
}

// GetSessionTTL parses and returns how long an idle session is kept.
func (c *DashboardConfig) GetSessionTTL() time.Duration {
	if c.SessionTTL == nil || *c.SessionTTL == "" {
		return 30 * time.Minute
	}
	d, err := time.ParseDuration(*c.SessionTTL)
	if err != nil || d <= 0 {
		return 30 * time.Minute
	}
	return d
}

// GetDefaultYear returns the initial performance year or the default.
func (c *DashboardConfig) GetDefaultYear() int {
	if c.DefaultYear == nil {
		return 2025
	}
	return *c.DefaultYear
}

// GetDBPath returns the sqlite database path or the default.
func (c *DashboardConfig) GetDBPath() string {
	if c.DBPath == nil || *c.DBPath == "" {
		return "aco-dashboard.db"
	}
	return *c.DBPath
}

// GetDebounceWindow parses and returns the slider quiescence window.
func (c *DashboardConfig) GetDebounceWindow() time.Duration {
	if c.DebounceWindow == nil || *c.DebounceWindow == "" {
		return 150 * time.Millisecond
	}
	d, err := time.ParseDuration(*c.DebounceWindow)
	if err != nil || d <= 0 {
		return 150 * time.Millisecond
	}
	return d
}

// GetGeoURL returns the TopoJSON boundary URL or the default.
func (c *DashboardConfig) GetGeoURL() string {
	if c.GeoURL == nil || *c.GeoURL == "" {
		return "https://cdn.jsdelivr.net/npm/us-atlas@3/counties-10m.json"
	}
	return *c.GeoURL
}

// GetGeoTimeout parses and returns the boundary fetch timeout.
func (c *DashboardConfig) GetGeoTimeout() time.Duration {
	if c.GeoTimeout == nil || *c.GeoTimeout == "" {
		return 5 * time.Second
	}
	d, err := time.ParseDuration(*c.GeoTimeout)
	if err != nil {
		return 5 * time.Second
	}
	return d
}

// GetMonteCarloIterations returns the number of simulation draws or the default.
func (c *DashboardConfig) GetMonteCarloIterations() int {
	if c.MonteCarloIterations == nil {
		return 10000
	}
	return *c.MonteCarloIterations
}

// GetMonteCarloSeed returns the simulation seed or the default.
func (c *DashboardConfig) GetMonteCarloSeed() uint64 {
	if c.MonteCarloSeed == nil {
		return 42
	}
	return *c.MonteCarloSeed
}

// GetProviderTopN returns the truncated provider list length or the default.
func (c *DashboardConfig) GetProviderTopN() int {
	if c.ProviderTopN == nil {
		return 5
	}
	return *c.ProviderTopN
}
