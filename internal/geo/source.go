package geo

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/banshee-data/aco.dashboard/internal/httputil"
	"github.com/banshee-data/aco.dashboard/internal/monitoring"
)

// CountiesObject is the us-atlas object holding county geometries.
const CountiesObject = "counties"

// FallbackMessage replaces the map when boundaries cannot be loaded.
const FallbackMessage = "County boundaries are unavailable. Leakage figures are still shown in the table view."

// maxBody caps the boundary download; the full us-atlas county file is
// under 1MB.
const maxBody = 16 << 20

// Result is what the map endpoint returns: either a filtered topology or a
// fallback message.
type Result struct {
	Available bool      `json:"available"`
	Message   string    `json:"message,omitempty"`
	Topology  *Topology `json:"topology,omitempty"`
}

// Source fetches and filters county boundaries. A successful result is
// cached for the life of the Source; failures are not, so the next request
// tries again. Concurrent callers share a single in-flight fetch.
type Source struct {
	client  httputil.HTTPClient
	url     string
	timeout time.Duration
	fips    []string

	flight singleflight.Group

	mu     sync.Mutex
	cached *Topology
}

// NewSource returns a Source for the given boundary URL and county codes.
func NewSource(client httputil.HTTPClient, url string, timeout time.Duration, fips []string) *Source {
	return &Source{
		client:  client,
		url:     url,
		timeout: timeout,
		fips:    append([]string(nil), fips...),
	}
}

// Counties returns the filtered county topology, or the fallback on any
// fetch or decode failure. It never returns an error; failures are logged.
func (s *Source) Counties(ctx context.Context) Result {
	if topo := s.cachedTopology(); topo != nil {
		monitoring.RecordGeoFetch("cached")
		return Result{Available: true, Topology: topo}
	}

	v, err, _ := s.flight.Do(CountiesObject, func() (interface{}, error) {
		if topo := s.cachedTopology(); topo != nil {
			return topo, nil
		}
		// The fetch is shared, so one caller going away must not cancel it.
		topo, err := s.fetch(context.WithoutCancel(ctx))
		if err != nil {
			monitoring.Logf("geo: county boundaries unavailable: %v", err)
			return nil, err
		}
		s.mu.Lock()
		s.cached = topo
		s.mu.Unlock()
		return topo, nil
	})
	if err != nil {
		monitoring.RecordGeoFetch("fallback")
		return Result{Available: false, Message: FallbackMessage}
	}
	monitoring.RecordGeoFetch("ok")
	return Result{Available: true, Topology: v.(*Topology)}
}

func (s *Source) cachedTopology() *Topology {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cached
}

func (s *Source) fetch(ctx context.Context) (*Topology, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", s.url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: status %d", s.url, resp.StatusCode)
	}
	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.url, err)
	}

	topo, err := Parse(raw)
	if err != nil {
		return nil, err
	}
	return Filter(topo, CountiesObject, s.fips)
}
