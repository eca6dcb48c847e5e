package drilldown

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/aco.dashboard/internal/calc"
	"github.com/banshee-data/aco.dashboard/internal/dataset"
	"github.com/banshee-data/aco.dashboard/internal/state"
)

func TestTable_AddRowPanicsOnWidthMismatch(t *testing.T) {
	tbl := Table{Name: "x", Columns: []string{"a", "b"}}
	assert.Panics(t, func() { tbl.AddRow("only one") })
	tbl.AddRow("1", "2")
	assert.False(t, tbl.Empty())
}

func TestTable_Records(t *testing.T) {
	tbl := Table{Columns: []string{"a", "b"}, Footer: []string{"t", "3"}}
	tbl.AddRow("1", "2")
	recs := tbl.Records()
	assert.Equal(t, [][]string{{"a", "b"}, {"1", "2"}, {"t", "3"}}, recs)

	// Records are copies.
	recs[1][0] = "changed"
	assert.Equal(t, "1", tbl.Rows[0][0])
}

func TestMarketsTable(t *testing.T) {
	c := dataset.MustLoad()
	rows, err := c.Markets(2025)
	require.NoError(t, err)
	s := calc.SummarizeMarkets(2025, rows)

	tbl := MarketsTable(s)
	assert.Equal(t, TableMarkets, tbl.Name)
	assert.Len(t, tbl.Rows, len(rows))
	assert.Len(t, tbl.Footer, len(tbl.Columns))
	assert.Equal(t, "Total", tbl.Footer[0])
	for i, r := range tbl.Rows {
		assert.Equal(t, rows[i].Region, r[0])
	}
	assert.Len(t, MarketKPIs(s), 5)
}

func TestLeakageTable_SkipsAbsentCell(t *testing.T) {
	tbl := LeakageTable(dataset.MustLoad().Leakage)
	assert.Len(t, tbl.Rows, 11)
	for _, r := range tbl.Rows {
		assert.False(t, r[0] == dataset.ClaimPartA && r[1] == dataset.ServiceProfessional)
	}
}

func TestLeakageKPIs_TonesOONAboveBenchmark(t *testing.T) {
	m := calc.LeakageMetrics{InNetworkAmount: 70, OONAmount: 30, InPct: 70, OONPct: 30, RepatriationOpportunity: 10}
	kpis := LeakageKPIs(m)
	require.Len(t, kpis, 4)
	assert.Equal(t, "$100.0M", kpis[0].Value)
	assert.Equal(t, ToneNegative, kpis[2].Tone)
	assert.Equal(t, "$10.0M", kpis[3].Value)
}

func TestScenarioTable(t *testing.T) {
	tbl := ScenarioTable(dataset.MustLoad().Scenarios)
	require.Len(t, tbl.Rows, 4)
	assert.Equal(t, "2", tbl.Rows[1][0])
	assert.Equal(t, "$11.6M", tbl.Rows[1][2])
}

func TestProjectionKPIs(t *testing.T) {
	p := calc.Project(calc.ProjectionInput{})
	kpis := ProjectionKPIs(p)
	require.Len(t, kpis, 6)
	assert.Equal(t, "$11.6M", kpis[2].Value)
	assert.Equal(t, TonePositive, kpis[2].Tone)
}

func TestNewHospitalView(t *testing.T) {
	ep, err := dataset.MustLoad().Episode("tjr")
	require.NoError(t, err)
	h, err := ep.Hospital("Lakeshore Regional Medical Center")
	require.NoError(t, err)

	v := NewHospitalView(ep, h)
	assert.Empty(t, v.EmptyMessage)
	assert.Len(t, v.Providers.Rows, 4)
	assert.Equal(t, []string{"Dr. Sofia Alvarez"}, v.Excluded)
	assert.Equal(t, "Dr. Amara Okafor", v.Best)
	assert.Equal(t, "4", v.KPIs[0].Value)
	assert.Equal(t, "306", v.KPIs[1].Value)
	for _, r := range v.Providers.Rows {
		assert.Len(t, r, len(v.Providers.Columns))
		assert.NotEqual(t, "Dr. Sofia Alvarez", r[0])
	}
}

func TestNewHospitalView_NoQualifyingProviders(t *testing.T) {
	ep, err := dataset.MustLoad().Episode("tjr")
	require.NoError(t, err)
	h, err := ep.Hospital("Scioto Valley Community Hospital")
	require.NoError(t, err)

	v := NewHospitalView(ep, h)
	assert.True(t, v.Providers.Empty())
	assert.Contains(t, v.EmptyMessage, "at least 10")
	assert.Empty(t, v.Best)
	assert.Len(t, v.Excluded, 3)
}

func TestNewCountyView_ToggleIsIdempotent(t *testing.T) {
	county, err := dataset.MustLoad().County("39035")
	require.NoError(t, err)
	a := calc.AnalyzeCounty(county, state.ElectiveAll)
	list := calc.NewProviderList(a.Services, calc.DefaultTopProviders)

	collapsed := NewCountyView(a, list)
	assert.Len(t, collapsed.Providers.Rows, 5)
	assert.Equal(t, 2, collapsed.Hidden)
	assert.Equal(t, "Show all (2 more)", collapsed.ToggleLabel)

	list.Toggle()
	expanded := NewCountyView(a, list)
	assert.Len(t, expanded.Providers.Rows, 7)
	assert.True(t, expanded.Expanded)
	assert.Equal(t, "Show top 5", expanded.ToggleLabel)

	list.Toggle()
	again := NewCountyView(a, list)
	assert.Equal(t, collapsed.Providers.Rows, again.Providers.Rows)
	assert.Equal(t, "1", again.Providers.Rows[0][0])
}

func TestNewCountyView_ShortListHasNoToggle(t *testing.T) {
	a := calc.CountyAnalysis{Name: "Tiny", Services: []calc.ProviderService{{Facility: "A", Spend: 1}}}
	v := NewCountyView(a, calc.NewProviderList(a.Services, 5))
	assert.Empty(t, v.ToggleLabel)
	assert.Len(t, v.Providers.Rows, 1)

	list := calc.NewProviderList(a.Services, 5)
	list.Toggle()
	assert.Empty(t, NewCountyView(a, list).ToggleLabel)
}

func TestNewCountyView_ToggleLabelUsesConfiguredTopN(t *testing.T) {
	county, err := dataset.MustLoad().County("39035")
	require.NoError(t, err)
	a := calc.AnalyzeCounty(county, state.ElectiveAll)
	list := calc.NewProviderList(a.Services, 3)

	collapsed := NewCountyView(a, list)
	assert.Len(t, collapsed.Providers.Rows, 3)
	assert.Equal(t, "Show all (4 more)", collapsed.ToggleLabel)

	list.Toggle()
	assert.Equal(t, "Show top 3", NewCountyView(a, list).ToggleLabel)
}
