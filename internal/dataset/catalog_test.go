package dataset

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DecodesEveryFile(t *testing.T) {
	c, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []int{2023, 2024, 2025}, c.Years())
	assert.Len(t, c.Scenarios, 4)
	assert.Equal(t, 11, c.Leakage.Len())
	assert.Len(t, c.Episodes, 3)
	assert.Len(t, c.Counties, 6)
	assert.Len(t, c.Performance, 3)
	assert.Len(t, c.CostBreakdown, 7)
	assert.Len(t, c.CostTrend.Quarters, 8)
	assert.NotEmpty(t, c.Quality.Measures)
	assert.NotEmpty(t, c.RAF)
}

func TestLoad_ReturnsSameCatalog(t *testing.T) {
	a := MustLoad()
	b := MustLoad()
	assert.Same(t, a, b)
}

func TestLeakageMatrix_PartAProfessionalIsAbsent(t *testing.T) {
	c := MustLoad()

	_, err := c.Leakage.Cell(ClaimPartA, ServiceProfessional)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMissingCell))

	for _, claim := range ClaimTypes {
		for _, service := range ServiceTypes {
			if claim == ClaimPartA && service == ServiceProfessional {
				continue
			}
			_, err := c.Leakage.Cell(claim, service)
			assert.NoError(t, err, "claim=%s service=%s", claim, service)
		}
	}
}

func TestLeakageMatrix_PercentagesSumTo100(t *testing.T) {
	for _, cell := range MustLoad().Leakage.Cells() {
		sum := cell.InPct + cell.OONPct
		assert.InDelta(t, 100, sum, 1e-9, "claim=%s service=%s", cell.ClaimType, cell.ServiceType)

		total := cell.InNetworkAmount + cell.OONAmount
		// Stored percentages are rounded to one decimal.
		assert.InDelta(t, cell.OONAmount/total*100, cell.OONPct, 0.05, "claim=%s service=%s", cell.ClaimType, cell.ServiceType)
	}
}

func TestLeakageMatrix_CellsInDisplayOrder(t *testing.T) {
	cells := MustLoad().Leakage.Cells()
	require.NotEmpty(t, cells)
	assert.Equal(t, ClaimAll, cells[0].ClaimType)
	assert.Equal(t, ServiceAll, cells[0].ServiceType)
	assert.Equal(t, ClaimPartB, cells[len(cells)-1].ClaimType)
	assert.Equal(t, ServiceProfessional, cells[len(cells)-1].ServiceType)
}

func TestCostBreakdown_MatchesBaseSpend(t *testing.T) {
	total := 0.0
	for _, c := range MustLoad().CostBreakdown {
		total += c.Amount
	}
	assert.InDelta(t, 486.7, total, 1e-6)
}

func TestCostTrend_SeriesMatchQuarters(t *testing.T) {
	trend := MustLoad().CostTrend
	for _, s := range trend.Series {
		assert.Len(t, s.Values, len(trend.Quarters), s.Category)
	}
}

func TestLookups(t *testing.T) {
	c := MustLoad()

	t.Run("markets", func(t *testing.T) {
		rows, err := c.Markets(2024)
		require.NoError(t, err)
		assert.Len(t, rows, 6)

		_, err = c.Markets(1999)
		assert.ErrorIs(t, err, ErrUnknownYear)
	})

	t.Run("scenario", func(t *testing.T) {
		s, err := c.Scenario(2)
		require.NoError(t, err)
		assert.Equal(t, "Base Case", s.Name)
		assert.InDelta(t, s.Mean-1.645*s.StdDev, s.ConfidenceLow, 0.06)
		assert.InDelta(t, s.Mean+1.645*s.StdDev, s.ConfidenceHigh, 0.06)

		_, err = c.Scenario(5)
		assert.ErrorIs(t, err, ErrUnknownScenario)
	})

	t.Run("episode and hospital", func(t *testing.T) {
		e, err := c.Episode("tjr")
		require.NoError(t, err)
		h, err := e.Hospital("Buckeye Orthopedic Hospital")
		require.NoError(t, err)
		assert.Len(t, h.Providers, 3)

		_, err = e.Hospital("Nowhere General")
		assert.ErrorIs(t, err, ErrUnknownHospital)
		_, err = c.Episode("nope")
		assert.ErrorIs(t, err, ErrUnknownEpisode)
	})

	t.Run("resolve hospital", func(t *testing.T) {
		ep, h, err := c.ResolveHospital("", "")
		require.NoError(t, err)
		assert.Equal(t, c.Episodes[0].ID, ep.ID)
		assert.Equal(t, ep.Hospitals[0].Name, h.Name)

		_, h, err = c.ResolveHospital("tjr", "Buckeye Orthopedic Hospital")
		require.NoError(t, err)
		assert.Equal(t, "Buckeye Orthopedic Hospital", h.Name)

		_, _, err = c.ResolveHospital("nope", "")
		assert.ErrorIs(t, err, ErrUnknownEpisode)
		_, _, err = c.ResolveHospital("tjr", "Nowhere General")
		assert.ErrorIs(t, err, ErrUnknownHospital)

		empty := &Catalog{}
		_, _, err = empty.ResolveHospital("", "")
		assert.ErrorIs(t, err, ErrUnknownEpisode)
		noHospitals := &Catalog{Episodes: []Episode{{ID: "bare"}}}
		_, _, err = noHospitals.ResolveHospital("", "")
		assert.ErrorIs(t, err, ErrUnknownHospital)
	})

	t.Run("county", func(t *testing.T) {
		county, err := c.County("39049")
		require.NoError(t, err)
		assert.Equal(t, "Franklin", county.Name)
		assert.Len(t, c.CountyFIPS(), len(c.Counties))

		_, err = c.County("00000")
		assert.ErrorIs(t, err, ErrUnknownCounty)
	})

	t.Run("performance trend", func(t *testing.T) {
		points, err := c.PerformanceTrend(2025)
		require.NoError(t, err)
		assert.Len(t, points, 12)
		for _, p := range points {
			assert.False(t, math.IsNaN(p.PMPM))
		}
	})
}
