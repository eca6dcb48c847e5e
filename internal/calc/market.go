package calc

import "github.com/banshee-data/aco.dashboard/internal/dataset"

// MarketMetrics extends a market row with its annual figures.
type MarketMetrics struct {
	dataset.MarketRow
	BenchmarkPMPM      float64 `json:"benchmark_pmpm"`
	AnnualSpend        float64 `json:"annual_spend"`        // $M
	SavingsOpportunity float64 `json:"savings_opportunity"` // $M, negative when over benchmark
}

// MarketSummary is one performance year's market table with its totals row.
type MarketSummary struct {
	Year            int             `json:"year"`
	Markets         []MarketMetrics `json:"markets"`
	TotalLives      int             `json:"total_lives"`
	WeightedPMPM    float64         `json:"weighted_pmpm"`
	WeightedQuality float64         `json:"weighted_quality"`
	TotalSpend      float64         `json:"total_spend"`
	TotalSavings    float64         `json:"total_savings"`
}

// AnalyzeMarket derives the benchmark PMPM from VsBenchmark (percent above
// benchmark) and annualises spend and savings.
func AnalyzeMarket(r dataset.MarketRow) MarketMetrics {
	m := MarketMetrics{MarketRow: r}
	m.BenchmarkPMPM = r.PMPM / (1 + r.VsBenchmark/100)
	memberMonths := float64(r.Lives) * 12
	m.AnnualSpend = r.PMPM * memberMonths / 1e6
	m.SavingsOpportunity = (m.BenchmarkPMPM - r.PMPM) * memberMonths / 1e6
	return m
}

// SummarizeMarkets builds the market table for a year. PMPM and quality
// totals are weighted by lives.
func SummarizeMarkets(year int, rows []dataset.MarketRow) MarketSummary {
	s := MarketSummary{Year: year}
	var pmpm, quality float64
	for _, r := range rows {
		m := AnalyzeMarket(r)
		s.Markets = append(s.Markets, m)
		s.TotalLives += r.Lives
		s.TotalSpend += m.AnnualSpend
		s.TotalSavings += m.SavingsOpportunity
		pmpm += r.PMPM * float64(r.Lives)
		quality += r.Quality * float64(r.Lives)
	}
	if s.TotalLives > 0 {
		s.WeightedPMPM = pmpm / float64(s.TotalLives)
		s.WeightedQuality = quality / float64(s.TotalLives)
	}
	return s
}
