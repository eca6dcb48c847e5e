package dataset

import "fmt"

// Claim types accepted by the leakage matrix.
const (
	ClaimAll   = "all"
	ClaimPartA = "partA"
	ClaimPartB = "partB"
)

// Service types accepted by the leakage matrix.
const (
	ServiceAll          = "all"
	ServiceInpatient    = "inpatient"
	ServiceOutpatient   = "outpatient"
	ServiceProfessional = "professional"
)

// ClaimTypes and ServiceTypes list the matrix axes in display order.
var (
	ClaimTypes   = []string{ClaimAll, ClaimPartA, ClaimPartB}
	ServiceTypes = []string{ServiceAll, ServiceInpatient, ServiceOutpatient, ServiceProfessional}
)

type leakageKey struct {
	claim   string
	service string
}

// LeakageMatrix indexes leakage cells by (claim type, service type).
type LeakageMatrix struct {
	cells map[leakageKey]LeakageCell
}

// NewLeakageMatrix indexes the given cells. Later duplicates replace earlier ones.
func NewLeakageMatrix(cells []LeakageCell) LeakageMatrix {
	m := LeakageMatrix{cells: make(map[leakageKey]LeakageCell, len(cells))}
	for _, c := range cells {
		m.cells[leakageKey{c.ClaimType, c.ServiceType}] = c
	}
	return m
}

// Cell returns the cell for a pair or ErrMissingCell.
func (m LeakageMatrix) Cell(claimType, serviceType string) (LeakageCell, error) {
	c, ok := m.cells[leakageKey{claimType, serviceType}]
	if !ok {
		return LeakageCell{}, fmt.Errorf("%w: claim=%s service=%s", ErrMissingCell, claimType, serviceType)
	}
	return c, nil
}

// Cells returns every cell in display order, skipping absent slots.
func (m LeakageMatrix) Cells() []LeakageCell {
	out := make([]LeakageCell, 0, len(m.cells))
	for _, claim := range ClaimTypes {
		for _, service := range ServiceTypes {
			if c, ok := m.cells[leakageKey{claim, service}]; ok {
				out = append(out, c)
			}
		}
	}
	return out
}

// Len reports the number of populated cells.
func (m LeakageMatrix) Len() int { return len(m.cells) }
