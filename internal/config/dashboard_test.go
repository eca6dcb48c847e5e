package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestEmptyConfigDefaults(t *testing.T) {
	cfg := &DashboardConfig{}

	if got := cfg.GetListen(); got != ":8080" {
		t.Errorf("GetListen() = %q, want :8080", got)
	}
	if got := cfg.GetDebounceWindow(); got != 150*time.Millisecond {
		t.Errorf("GetDebounceWindow() = %v, want 150ms", got)
	}
	if got := cfg.GetGeoTimeout(); got != 5*time.Second {
		t.Errorf("GetGeoTimeout() = %v, want 5s", got)
	}
	if got := cfg.GetMonteCarloIterations(); got != 10000 {
		t.Errorf("GetMonteCarloIterations() = %d, want 10000", got)
	}
	if got := cfg.GetMonteCarloSeed(); got != 42 {
		t.Errorf("GetMonteCarloSeed() = %d, want 42", got)
	}
	if got := cfg.GetProviderTopN(); got != 5 {
		t.Errorf("GetProviderTopN() = %d, want 5", got)
	}
	if got := cfg.GetDefaultYear(); got != 2025 {
		t.Errorf("GetDefaultYear() = %d, want 2025", got)
	}
	if got := cfg.GetSessionTTL(); got != 30*time.Minute {
		t.Errorf("GetSessionTTL() = %v, want 30m", got)
	}
	if got := cfg.GetSessionCookie(); got != "aco_session" {
		t.Errorf("GetSessionCookie() = %q", got)
	}
	if got := cfg.GetDBPath(); got != "aco-dashboard.db" {
		t.Errorf("GetDBPath() = %q", got)
	}
	if !strings.HasPrefix(cfg.GetGeoURL(), "https://") {
		t.Errorf("GetGeoURL() = %q", cfg.GetGeoURL())
	}
	if !strings.HasSuffix(cfg.GetAssetsHost(), "/") {
		t.Errorf("GetAssetsHost() = %q, want trailing slash", cfg.GetAssetsHost())
	}
}

func TestMustLoadDefaultConfig(t *testing.T) {
	cfg := MustLoadDefaultConfig()
	if cfg.Listen == nil || *cfg.Listen != ":8080" {
		t.Errorf("Listen = %v, want :8080", cfg.Listen)
	}
	if cfg.GetDebounceWindow() != 150*time.Millisecond {
		t.Errorf("GetDebounceWindow() = %v", cfg.GetDebounceWindow())
	}
}

func TestLoadDashboardConfig_Partial(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.json")
	if err := os.WriteFile(path, []byte(`{"debounce_window": "300ms", "provider_top_n": 3}`), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadDashboardConfig(path)
	if err != nil {
		t.Fatalf("LoadDashboardConfig: %v", err)
	}
	if cfg.GetDebounceWindow() != 300*time.Millisecond {
		t.Errorf("GetDebounceWindow() = %v, want 300ms", cfg.GetDebounceWindow())
	}
	if cfg.GetProviderTopN() != 3 {
		t.Errorf("GetProviderTopN() = %d, want 3", cfg.GetProviderTopN())
	}
	if cfg.GetListen() != ":8080" {
		t.Errorf("GetListen() = %q, want default", cfg.GetListen())
	}
}

func TestLoadDashboardConfig_Errors(t *testing.T) {
	dir := t.TempDir()

	write := func(name, body string) string {
		p := filepath.Join(dir, name)
		if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
		return p
	}

	tests := []struct {
		name string
		path string
		want string
	}{
		{"wrong extension", write("cfg.yaml", "{}"), ".json extension"},
		{"missing file", filepath.Join(dir, "absent.json"), "failed to stat"},
		{"bad json", write("bad.json", "{"), "failed to parse"},
		{"bad duration", write("dur.json", `{"debounce_window": "soon"}`), "invalid debounce_window"},
		{"negative window", write("neg.json", `{"debounce_window": "-1s"}`), "must be positive"},
		{"bad session ttl", write("ttl.json", `{"session_ttl": "0s"}`), "session_ttl"},
		{"few iterations", write("iter.json", `{"monte_carlo_iterations": 5}`), "monte_carlo_iterations"},
		{"zero top n", write("topn.json", `{"provider_top_n": 0}`), "provider_top_n"},
		{"year out of range", write("year.json", `{"default_year": 2019}`), "default_year"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadDashboardConfig(tt.path)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestLoadDashboardConfig_TooLarge(t *testing.T) {
	path := filepath.Join(t.TempDir(), "big.json")
	big := make([]byte, 1024*1024+1)
	for i := range big {
		big[i] = ' '
	}
	if err := os.WriteFile(path, big, 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadDashboardConfig(path); err == nil || !strings.Contains(err.Error(), "too large") {
		t.Errorf("err = %v, want too large", err)
	}
}
