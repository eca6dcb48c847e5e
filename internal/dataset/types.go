// Package dataset holds the synthetic, hand-authored records behind every
// dashboard tab. Records are decoded once from embedded YAML and are never
// mutated afterwards.
package dataset

import "errors"

var (
	// ErrMissingCell is returned when a leakage matrix lookup has no cell for
	// the requested claim/service pair.
	ErrMissingCell = errors.New("leakage matrix cell missing")
	// ErrUnknownScenario is returned for scenario IDs outside 1..4.
	ErrUnknownScenario = errors.New("unknown scenario")
	// ErrUnknownEpisode is returned when no episode matches the requested ID.
	ErrUnknownEpisode = errors.New("unknown episode")
	// ErrUnknownHospital is returned when an episode has no hospital by that name.
	ErrUnknownHospital = errors.New("unknown hospital")
	// ErrUnknownCounty is returned when no county matches the requested FIPS code.
	ErrUnknownCounty = errors.New("unknown county")
	// ErrUnknownYear is returned when no market data exists for a performance year.
	ErrUnknownYear = errors.New("unknown performance year")
)

// MarketRow is one geographic market's performance for a year.
type MarketRow struct {
	Region      string  `yaml:"region" json:"region"`
	ID          string  `yaml:"id" json:"id"`
	Lives       int     `yaml:"lives" json:"lives"`
	PMPM        float64 `yaml:"pmpm" json:"pmpm"`
	VsBenchmark float64 `yaml:"vs_benchmark" json:"vs_benchmark"` // percent, negative is under benchmark
	Quality     float64 `yaml:"quality" json:"quality"`
	LeakagePct  float64 `yaml:"leakage_pct" json:"leakage_pct"`
}

// MarketYear groups the markets published for one performance year.
type MarketYear struct {
	Year    int         `yaml:"year"`
	Markets []MarketRow `yaml:"markets"`
}

// ScenarioDisplay carries the preformatted strings shown on a scenario card.
type ScenarioDisplay struct {
	Mean        string `yaml:"mean" json:"mean"`
	Range       string `yaml:"range" json:"range"`
	Probability string `yaml:"probability" json:"probability"`
}

// ScenarioConfig parameterises one Monte Carlo savings scenario ($M).
type ScenarioConfig struct {
	ID             int             `yaml:"id" json:"id"`
	Name           string          `yaml:"name" json:"name"`
	Mean           float64         `yaml:"mean" json:"mean"`
	StdDev         float64         `yaml:"std_dev" json:"std_dev"`
	ConfidenceLow  float64         `yaml:"confidence_low" json:"confidence_low"`
	ConfidenceHigh float64         `yaml:"confidence_high" json:"confidence_high"`
	Display        ScenarioDisplay `yaml:"display" json:"display"`
}

// LeakageCell is one (claim type, service type) slot of the leakage matrix.
// Amounts are in $M, percentages in 0..100.
type LeakageCell struct {
	ClaimType       string  `yaml:"claim_type" json:"claim_type"`
	ServiceType     string  `yaml:"service_type" json:"service_type"`
	InNetworkAmount float64 `yaml:"in_network_amount" json:"in_network_amount"`
	OONAmount       float64 `yaml:"oon_amount" json:"oon_amount"`
	InPct           float64 `yaml:"in_pct" json:"in_pct"`
	OONPct          float64 `yaml:"oon_pct" json:"oon_pct"`
	Benchmark       float64 `yaml:"benchmark" json:"benchmark"`
}

// ProviderEntry is a single physician within a hospital's episode volume.
type ProviderEntry struct {
	Name             string  `yaml:"name" json:"name"`
	Cases            int     `yaml:"cases" json:"cases"`
	AvgCost          float64 `yaml:"avg_cost" json:"avg_cost"`
	QualityScore     float64 `yaml:"quality_score" json:"quality_score"`
	ComplicationRate float64 `yaml:"complication_rate" json:"complication_rate"`
	ReadmitRate      float64 `yaml:"readmit_rate" json:"readmit_rate"`
	LengthOfStay     float64 `yaml:"length_of_stay" json:"length_of_stay"`
	Satisfaction     float64 `yaml:"satisfaction" json:"satisfaction"`
}

// HospitalEntry is a facility performing an episode, with its providers.
type HospitalEntry struct {
	Name         string          `yaml:"name" json:"name"`
	AvgCost      float64         `yaml:"avg_cost" json:"avg_cost"`
	EpisodeCount int             `yaml:"episode_count" json:"episode_count"`
	Providers    []ProviderEntry `yaml:"providers" json:"providers"`
}

// Episode is a bundled procedure analysed as one cost unit.
type Episode struct {
	ID                string          `yaml:"id" json:"id"`
	Name              string          `yaml:"name" json:"name"`
	NationalBenchmark float64         `yaml:"national_benchmark" json:"national_benchmark"`
	Hospitals         []HospitalEntry `yaml:"hospitals" json:"hospitals"`
}

// ServiceEntry is one service line billed by a facility.
type ServiceEntry struct {
	Name       string  `yaml:"name" json:"name"`
	Spend      float64 `yaml:"spend" json:"spend"`
	Cases      int     `yaml:"cases" json:"cases"`
	IsElective bool    `yaml:"elective" json:"elective"`
}

// FacilityEntry is an out-of-network facility treating county residents.
type FacilityEntry struct {
	Name     string         `yaml:"name" json:"name"`
	City     string         `yaml:"city" json:"city"`
	Services []ServiceEntry `yaml:"services" json:"services"`
}

// CountyEntry is one county in the leakage geography. LeakageScore is the
// fraction of TotalCostAmount spent out of network.
type CountyEntry struct {
	FIPS            string          `yaml:"fips" json:"fips"`
	Name            string          `yaml:"name" json:"name"`
	LeakageScore    float64         `yaml:"leakage_score" json:"leakage_score"`
	TotalCostAmount float64         `yaml:"total_cost_amount" json:"total_cost_amount"`
	HasMarker       bool            `yaml:"has_marker" json:"has_marker"`
	Facilities      []FacilityEntry `yaml:"facilities" json:"facilities"`
}

// TrendPoint is a monthly PMPM observation against the benchmark.
type TrendPoint struct {
	Month     string  `yaml:"month" json:"month"`
	PMPM      float64 `yaml:"pmpm" json:"pmpm"`
	Benchmark float64 `yaml:"benchmark" json:"benchmark"`
}

// PerformanceYear is the monthly trend for one performance year.
type PerformanceYear struct {
	Year   int          `yaml:"year"`
	Points []TrendPoint `yaml:"points"`
}

// CostCategory is a slice of total spend in the cost breakdown ($M).
type CostCategory struct {
	Name   string  `yaml:"name" json:"name"`
	Amount float64 `yaml:"amount" json:"amount"`
	Color  string  `yaml:"color" json:"color"`
}

// CostTrendSeries is one category's quarterly spend ($M).
type CostTrendSeries struct {
	Category string    `yaml:"category" json:"category"`
	Values   []float64 `yaml:"values" json:"values"`
}

// CostTrend is the quarterly spend history by category.
type CostTrend struct {
	Quarters []string          `yaml:"quarters" json:"quarters"`
	Series   []CostTrendSeries `yaml:"series" json:"series"`
}

// QualityMeasure is a quality metric's yearly scores against its target.
type QualityMeasure struct {
	Name          string    `yaml:"name" json:"name"`
	Target        float64   `yaml:"target" json:"target"`
	Scores        []float64 `yaml:"scores" json:"scores"`
	LowerIsBetter bool      `yaml:"lower_is_better" json:"lower_is_better"`
}

// QualityTrend is the quality measure history.
type QualityTrend struct {
	Years    []string         `yaml:"years" json:"years"`
	Measures []QualityMeasure `yaml:"measures" json:"measures"`
}

// RAFBin is one bucket of the risk adjustment factor distribution.
type RAFBin struct {
	Low      float64 `yaml:"low" json:"low"`
	High     float64 `yaml:"high" json:"high"`
	Patients int     `yaml:"patients" json:"patients"`
}
