// Package calc holds the pure derived-metric calculators behind the
// dashboard: leakage splits, the projection model, episode and county
// drill-downs, market rollups and the Monte Carlo savings simulation.
package calc

import (
	"fmt"
	"math"

	"github.com/banshee-data/aco.dashboard/internal/dataset"
)

// RepatriationBenchmarkPct is the out-of-network share, in percent, that
// repatriation aims to bring leakage down to.
const RepatriationBenchmarkPct = 20.0

// LeakageMetrics is the in/out-of-network split for one claim and service
// type. ServiceType is the type actually looked up, after any fallback.
type LeakageMetrics struct {
	ClaimType               string  `json:"claim_type"`
	ServiceType             string  `json:"service_type"`
	InNetworkAmount         float64 `json:"in_network_amount"`
	OONAmount               float64 `json:"oon_amount"`
	InPct                   float64 `json:"in_pct"`
	OONPct                  float64 `json:"oon_pct"`
	RepatriationOpportunity float64 `json:"repatriation_opportunity"`
}

// Total is in-network plus out-of-network spend.
func (m LeakageMetrics) Total() float64 { return m.InNetworkAmount + m.OONAmount }

// Leakage looks up the matrix cell for the pair. Part A has no professional
// services, so that pair is read as Part A / all. A missing cell is a data
// defect and is returned as an error wrapping dataset.ErrMissingCell.
func Leakage(m dataset.LeakageMatrix, claimType, serviceType string) (LeakageMetrics, error) {
	if claimType == dataset.ClaimPartA && serviceType == dataset.ServiceProfessional {
		serviceType = dataset.ServiceAll
	}
	cell, err := m.Cell(claimType, serviceType)
	if err != nil {
		return LeakageMetrics{}, fmt.Errorf("leakage lookup: %w", err)
	}
	return LeakageMetrics{
		ClaimType:               claimType,
		ServiceType:             serviceType,
		InNetworkAmount:         cell.InNetworkAmount,
		OONAmount:               cell.OONAmount,
		InPct:                   cell.InPct,
		OONPct:                  cell.OONPct,
		RepatriationOpportunity: RepatriationOpportunity(cell.OONPct, cell.InNetworkAmount+cell.OONAmount),
	}, nil
}

// RepatriationOpportunity is the spend recovered by bringing oonPct down to
// RepatriationBenchmarkPct of total. It is never negative.
func RepatriationOpportunity(oonPct, total float64) float64 {
	return math.Max(0, (oonPct-RepatriationBenchmarkPct)/100*total)
}
