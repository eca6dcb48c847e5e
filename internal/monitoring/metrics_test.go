package monitoring

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordFilterChange(t *testing.T) {
	before := testutil.ToFloat64(filterChanges.WithLabelValues("claimType", "applied"))
	RecordFilterChange("claimType", true)
	after := testutil.ToFloat64(filterChanges.WithLabelValues("claimType", "applied"))
	if after-before != 1 {
		t.Errorf("applied counter moved by %v, want 1", after-before)
	}

	before = testutil.ToFloat64(filterChanges.WithLabelValues("claimType", "ignored"))
	RecordFilterChange("claimType", false)
	after = testutil.ToFloat64(filterChanges.WithLabelValues("claimType", "ignored"))
	if after-before != 1 {
		t.Errorf("ignored counter moved by %v, want 1", after-before)
	}
}

func TestRecordCounters(t *testing.T) {
	RecordChartRender("leakage-donut")
	RecordExport("markets", "csv")
	RecordGeoFetch("fallback")
	RecordProjection("immediate")
	ObserveRender("page", time.Now())

	if got := testutil.ToFloat64(chartRenders.WithLabelValues("leakage-donut")); got < 1 {
		t.Errorf("chart renders = %v, want >= 1", got)
	}
	if got := testutil.ToFloat64(exports.WithLabelValues("markets", "csv")); got < 1 {
		t.Errorf("exports = %v, want >= 1", got)
	}
	if got := testutil.ToFloat64(geoFetches.WithLabelValues("fallback")); got < 1 {
		t.Errorf("geo fetches = %v, want >= 1", got)
	}
	if got := testutil.ToFloat64(projectionRuns.WithLabelValues("immediate")); got < 1 {
		t.Errorf("projection runs = %v, want >= 1", got)
	}
	if n := testutil.CollectAndCount(renderDuration); n < 1 {
		t.Errorf("render duration series = %d, want >= 1", n)
	}
}
