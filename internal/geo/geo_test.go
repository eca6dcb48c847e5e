package geo

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/aco.dashboard/internal/httputil"
	"github.com/banshee-data/aco.dashboard/internal/monitoring"
)

// Three counties over five arcs. 39035 and 39049 share arc 1, which 39049
// walks in reverse.
const sampleTopology = `{
  "type": "Topology",
  "bbox": [-85, 38, -80, 42],
  "transform": {"scale": [0.001, 0.001], "translate": [-85, 38]},
  "objects": {
    "counties": {
      "type": "GeometryCollection",
      "geometries": [
        {"type": "Polygon", "id": "39035", "properties": {"name": "Cuyahoga"}, "arcs": [[0, 1]]},
        {"type": "MultiPolygon", "id": "06037", "properties": {"name": "Los Angeles"}, "arcs": [[[2]], [[3]]]},
        {"type": "Polygon", "id": 39049, "properties": {"name": "Franklin"}, "arcs": [[-2, 4]]}
      ]
    },
    "states": {"type": "GeometryCollection", "geometries": []}
  },
  "arcs": [
    [[0, 0], [1, 0]],
    [[1, 0], [0, 1]],
    [[5, 5], [1, 1]],
    [[9, 9], [1, 1]],
    [[0, 1], [-1, -1]]
  ]
}`

func quietLogs(t *testing.T) {
	t.Helper()
	prev := monitoring.Logf
	monitoring.SetLogger(nil)
	t.Cleanup(func() { monitoring.Logf = prev })
}

func TestFIPS_UnmarshalNumber(t *testing.T) {
	var f FIPS
	require.NoError(t, json.Unmarshal([]byte(`6037`), &f))
	assert.Equal(t, FIPS("06037"), f)
	require.NoError(t, json.Unmarshal([]byte(`"39035"`), &f))
	assert.Equal(t, FIPS("39035"), f)
	assert.Error(t, json.Unmarshal([]byte(`{}`), &f))
}

func TestFilter_KeepsRequestedCountiesAndRenumbersArcs(t *testing.T) {
	topo, err := Parse([]byte(sampleTopology))
	require.NoError(t, err)

	out, err := Filter(topo, CountiesObject, []string{"39035", "39049"})
	require.NoError(t, err)

	require.Contains(t, out.Objects, CountiesObject)
	assert.NotContains(t, out.Objects, "states")
	geoms := out.Objects[CountiesObject].Geometries
	require.Len(t, geoms, 2)
	assert.Equal(t, FIPS("39035"), geoms[0].ID)
	assert.Equal(t, FIPS("39049"), geoms[1].ID)

	// Arcs 0, 1 and 4 survive as 0, 1 and 2.
	assert.JSONEq(t, `[[0,1]]`, string(geoms[0].Arcs))
	assert.JSONEq(t, `[[-2,2]]`, string(geoms[1].Arcs))
	require.Len(t, out.Arcs, 3)
	assert.JSONEq(t, string(topo.Arcs[4]), string(out.Arcs[2]))

	if diff := cmp.Diff(topo.BBox, out.BBox); diff != "" {
		t.Errorf("bbox mismatch (-want +got):\n%s", diff)
	}
	assert.JSONEq(t, string(topo.Transform), string(out.Transform))
}

func TestFilter_MultiPolygon(t *testing.T) {
	topo, err := Parse([]byte(sampleTopology))
	require.NoError(t, err)

	out, err := Filter(topo, CountiesObject, []string{"06037"})
	require.NoError(t, err)
	geoms := out.Objects[CountiesObject].Geometries
	require.Len(t, geoms, 1)
	assert.JSONEq(t, `[[[0]],[[1]]]`, string(geoms[0].Arcs))
	assert.Len(t, out.Arcs, 2)
}

func TestFilter_Errors(t *testing.T) {
	topo, err := Parse([]byte(sampleTopology))
	require.NoError(t, err)

	_, err = Filter(topo, "tracts", nil)
	assert.ErrorIs(t, err, ErrMalformed)

	bad, err := Parse([]byte(`{"type":"Topology","objects":{"counties":{"type":"GeometryCollection",
		"geometries":[{"type":"Polygon","id":"39035","arcs":[[7]]}]}},"arcs":[]}`))
	require.NoError(t, err)
	_, err = Filter(bad, CountiesObject, []string{"39035"})
	assert.ErrorIs(t, err, ErrMalformed)

	_, err = Parse([]byte(`{"type":"FeatureCollection"}`))
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestSource_CachesSuccess(t *testing.T) {
	client := httputil.NewMockHTTPClient().AddResponse(http.StatusOK, sampleTopology)
	src := NewSource(client, "https://example.test/counties.json", time.Second, []string{"39035"})

	first := src.Counties(context.Background())
	require.True(t, first.Available)
	require.NotNil(t, first.Topology)
	assert.Len(t, first.Topology.Objects[CountiesObject].Geometries, 1)

	second := src.Counties(context.Background())
	assert.True(t, second.Available)
	assert.Same(t, first.Topology, second.Topology)
	assert.Equal(t, 1, client.RequestCount())
	assert.Equal(t, "application/json", client.Request(0).Header.Get("Accept"))
}

func TestSource_Fallback(t *testing.T) {
	quietLogs(t)

	tests := []struct {
		name   string
		client *httputil.MockHTTPClient
	}{
		{"non-200", httputil.NewMockHTTPClient().AddResponse(http.StatusNotFound, "not found")},
		{"malformed body", httputil.NewMockHTTPClient().AddResponse(http.StatusOK, "{not json")},
		{"wrong document type", httputil.NewMockHTTPClient().AddResponse(http.StatusOK, `{"type":"Feature"}`)},
		{"transport error", httputil.NewMockHTTPClient().AddErrorResponse(errors.New("connection refused"))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := NewSource(tt.client, "https://example.test/counties.json", time.Second, []string{"39035"})
			got := src.Counties(context.Background())
			assert.Equal(t, Result{Available: false, Message: FallbackMessage}, got)
		})
	}
}

func TestSource_RetriesAfterFailure(t *testing.T) {
	quietLogs(t)

	client := httputil.NewMockHTTPClient().
		AddResponse(http.StatusServiceUnavailable, "").
		AddResponse(http.StatusOK, sampleTopology)
	src := NewSource(client, "https://example.test/counties.json", time.Second, []string{"39035"})

	assert.False(t, src.Counties(context.Background()).Available)
	assert.True(t, src.Counties(context.Background()).Available)
	assert.Equal(t, 2, client.RequestCount())
}

func TestSource_LogsEachFailure(t *testing.T) {
	var logged int
	prev := monitoring.Logf
	monitoring.SetLogger(func(string, ...interface{}) { logged++ })
	t.Cleanup(func() { monitoring.Logf = prev })

	client := httputil.NewMockHTTPClient().
		AddResponse(http.StatusInternalServerError, "").
		AddResponse(http.StatusInternalServerError, "")
	src := NewSource(client, "https://example.test/counties.json", 0, nil)
	src.Counties(context.Background())
	src.Counties(context.Background())
	assert.Equal(t, 2, logged)
}

func TestSource_ConcurrentCallersShareOneFetch(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	var calls atomic.Int32

	client := httputil.NewMockHTTPClient()
	client.DoFunc = func(req *http.Request) (*http.Response, error) {
		if calls.Add(1) == 1 {
			close(started)
		}
		<-release
		return &http.Response{
			StatusCode: http.StatusOK,
			Body:       io.NopCloser(strings.NewReader(sampleTopology)),
			Header:     make(http.Header),
			Request:    req,
		}, nil
	}
	src := NewSource(client, "https://example.test/counties.json", time.Second, []string{"39035"})

	const callers = 8
	results := make([]Result, callers)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		results[0] = src.Counties(context.Background())
	}()
	<-started

	// A caller whose context is already gone still gets the shared result.
	cancelled, cancel := context.WithCancel(context.Background())
	cancel()
	for i := 1; i < callers; i++ {
		ctx := context.Background()
		if i == 1 {
			ctx = cancelled
		}
		wg.Add(1)
		go func(i int, ctx context.Context) {
			defer wg.Done()
			results[i] = src.Counties(ctx)
		}(i, ctx)
	}
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
	for i, r := range results {
		require.True(t, r.Available, "caller %d", i)
		assert.Same(t, results[0].Topology, r.Topology, "caller %d", i)
	}
}
