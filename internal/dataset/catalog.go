package dataset

import (
	"embed"
	"fmt"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed data/*.yaml
var dataFS embed.FS

// Catalog is the full set of static records, loaded once.
type Catalog struct {
	MarketYears   []MarketYear
	Scenarios     []ScenarioConfig
	Leakage       LeakageMatrix
	Episodes      []Episode
	Counties      []CountyEntry
	Performance   []PerformanceYear
	CostBreakdown []CostCategory
	CostTrend     CostTrend
	Quality       QualityTrend
	RAF           []RAFBin
}

var (
	loadOnce sync.Once
	loaded   *Catalog
	loadErr  error
)

// Load decodes the embedded YAML files. It is safe to call repeatedly; the
// files are decoded on first use only.
func Load() (*Catalog, error) {
	loadOnce.Do(func() {
		loaded, loadErr = decodeCatalog()
	})
	return loaded, loadErr
}

// MustLoad is Load for program start-up and tests, where a decode failure is
// a build defect.
func MustLoad() *Catalog {
	c, err := Load()
	if err != nil {
		panic(err)
	}
	return c
}

func decodeCatalog() (*Catalog, error) {
	c := &Catalog{}

	var markets struct {
		Years []MarketYear `yaml:"years"`
	}
	if err := decodeFile("data/markets.yaml", &markets); err != nil {
		return nil, err
	}
	c.MarketYears = markets.Years

	var scenarios struct {
		Scenarios []ScenarioConfig `yaml:"scenarios"`
	}
	if err := decodeFile("data/scenarios.yaml", &scenarios); err != nil {
		return nil, err
	}
	c.Scenarios = scenarios.Scenarios

	var leakage struct {
		Cells []LeakageCell `yaml:"cells"`
	}
	if err := decodeFile("data/leakage.yaml", &leakage); err != nil {
		return nil, err
	}
	c.Leakage = NewLeakageMatrix(leakage.Cells)

	var episodes struct {
		Episodes []Episode `yaml:"episodes"`
	}
	if err := decodeFile("data/episodes.yaml", &episodes); err != nil {
		return nil, err
	}
	c.Episodes = episodes.Episodes

	var counties struct {
		Counties []CountyEntry `yaml:"counties"`
	}
	if err := decodeFile("data/counties.yaml", &counties); err != nil {
		return nil, err
	}
	c.Counties = counties.Counties

	var trends struct {
		Performance   []PerformanceYear `yaml:"performance"`
		CostBreakdown []CostCategory    `yaml:"cost_breakdown"`
		CostTrend     CostTrend         `yaml:"cost_trend"`
		Quality       QualityTrend      `yaml:"quality"`
		RAF           []RAFBin          `yaml:"raf"`
	}
	if err := decodeFile("data/trends.yaml", &trends); err != nil {
		return nil, err
	}
	c.Performance = trends.Performance
	c.CostBreakdown = trends.CostBreakdown
	c.CostTrend = trends.CostTrend
	c.Quality = trends.Quality
	c.RAF = trends.RAF

	return c, nil
}

func decodeFile(name string, out interface{}) error {
	raw, err := dataFS.ReadFile(name)
	if err != nil {
		return fmt.Errorf("read %s: %w", name, err)
	}
	if err := yaml.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode %s: %w", name, err)
	}
	return nil
}

// Markets returns the market rows for a performance year.
func (c *Catalog) Markets(year int) ([]MarketRow, error) {
	for _, y := range c.MarketYears {
		if y.Year == year {
			return y.Markets, nil
		}
	}
	return nil, fmt.Errorf("%w: %d", ErrUnknownYear, year)
}

// Years lists the performance years with market data, ascending.
func (c *Catalog) Years() []int {
	years := make([]int, 0, len(c.MarketYears))
	for _, y := range c.MarketYears {
		years = append(years, y.Year)
	}
	sort.Ints(years)
	return years
}

// Scenario returns the Monte Carlo scenario with the given ID.
func (c *Catalog) Scenario(id int) (ScenarioConfig, error) {
	for _, s := range c.Scenarios {
		if s.ID == id {
			return s, nil
		}
	}
	return ScenarioConfig{}, fmt.Errorf("%w: %d", ErrUnknownScenario, id)
}

// Episode returns the episode with the given ID.
func (c *Catalog) Episode(id string) (Episode, error) {
	for _, e := range c.Episodes {
		if e.ID == id {
			return e, nil
		}
	}
	return Episode{}, fmt.Errorf("%w: %q", ErrUnknownEpisode, id)
}

// Hospital returns a hospital within an episode.
func (e Episode) Hospital(name string) (HospitalEntry, error) {
	for _, h := range e.Hospitals {
		if h.Name == name {
			return h, nil
		}
	}
	return HospitalEntry{}, fmt.Errorf("%w: %q in %s", ErrUnknownHospital, name, e.ID)
}

// ResolveHospital returns the episode and hospital for a drill-down
// selection. An empty episode selects the first episode and an empty
// hospital the episode's first hospital.
func (c *Catalog) ResolveHospital(episodeID, hospital string) (Episode, HospitalEntry, error) {
	if episodeID == "" {
		if len(c.Episodes) == 0 {
			return Episode{}, HospitalEntry{}, ErrUnknownEpisode
		}
		episodeID = c.Episodes[0].ID
	}
	ep, err := c.Episode(episodeID)
	if err != nil {
		return Episode{}, HospitalEntry{}, err
	}
	if hospital == "" {
		if len(ep.Hospitals) == 0 {
			return Episode{}, HospitalEntry{}, fmt.Errorf("%w: %s has no hospitals", ErrUnknownHospital, ep.ID)
		}
		hospital = ep.Hospitals[0].Name
	}
	h, err := ep.Hospital(hospital)
	if err != nil {
		return Episode{}, HospitalEntry{}, err
	}
	return ep, h, nil
}

// County returns the county with the given FIPS code.
func (c *Catalog) County(fips string) (CountyEntry, error) {
	for _, county := range c.Counties {
		if county.FIPS == fips {
			return county, nil
		}
	}
	return CountyEntry{}, fmt.Errorf("%w: %q", ErrUnknownCounty, fips)
}

// CountyFIPS lists the FIPS codes of every county in the geography.
func (c *Catalog) CountyFIPS() []string {
	out := make([]string, 0, len(c.Counties))
	for _, county := range c.Counties {
		out = append(out, county.FIPS)
	}
	return out
}

// PerformanceTrend returns the monthly trend for a year.
func (c *Catalog) PerformanceTrend(year int) ([]TrendPoint, error) {
	for _, p := range c.Performance {
		if p.Year == year {
			return p.Points, nil
		}
	}
	return nil, fmt.Errorf("%w: %d", ErrUnknownYear, year)
}
