package export

import (
	"errors"
	"fmt"

	"github.com/banshee-data/aco.dashboard/internal/calc"
	"github.com/banshee-data/aco.dashboard/internal/dataset"
	"github.com/banshee-data/aco.dashboard/internal/drilldown"
	"github.com/banshee-data/aco.dashboard/internal/state"
)

// ErrUnknownTable is returned for table names outside drilldown.TableNames.
var ErrUnknownTable = errors.New("unknown table")

// Selection picks the records behind a table export. Empty fields fall back
// to the first episode, hospital and county in the catalog.
type Selection struct {
	Year           int
	Episode        string
	Hospital       string
	County         string
	ElectiveFilter string
	// AllProviders exports the expanded county ranking instead of the top
	// TopN.
	AllProviders bool
	TopN         int
}

// SelectionFor derives a selection from a session's filters.
func SelectionFor(f state.Filters) Selection {
	return Selection{
		Year:           f.PerformanceYear,
		ElectiveFilter: f.ElectiveFilter,
		TopN:           calc.DefaultTopProviders,
	}
}

// BuildTable builds the named table view for sel.
func BuildTable(c *dataset.Catalog, name string, sel Selection) (drilldown.Table, error) {
	switch name {
	case drilldown.TableMarkets:
		rows, err := c.Markets(sel.Year)
		if err != nil {
			return drilldown.Table{}, err
		}
		return drilldown.MarketsTable(calc.SummarizeMarkets(sel.Year, rows)), nil

	case drilldown.TableLeakage:
		return drilldown.LeakageTable(c.Leakage), nil

	case drilldown.TableScenarios:
		return drilldown.ScenarioTable(c.Scenarios), nil

	case drilldown.TableHospital:
		ep, h, err := c.ResolveHospital(sel.Episode, sel.Hospital)
		if err != nil {
			return drilldown.Table{}, err
		}
		return drilldown.NewHospitalView(ep, h).Providers, nil

	case drilldown.TableCountyProviders:
		county, err := countyFor(c, sel.County)
		if err != nil {
			return drilldown.Table{}, err
		}
		a := calc.AnalyzeCounty(county, sel.ElectiveFilter)
		topN := sel.TopN
		if topN <= 0 {
			topN = calc.DefaultTopProviders
		}
		list := calc.NewProviderList(a.Services, topN)
		if sel.AllProviders {
			list.Toggle()
		}
		return drilldown.NewCountyView(a, list).Providers, nil
	}
	return drilldown.Table{}, fmt.Errorf("%w: %q", ErrUnknownTable, name)
}

func countyFor(c *dataset.Catalog, fips string) (dataset.CountyEntry, error) {
	if fips == "" {
		if len(c.Counties) == 0 {
			return dataset.CountyEntry{}, dataset.ErrUnknownCounty
		}
		fips = c.Counties[0].FIPS
	}
	return c.County(fips)
}
