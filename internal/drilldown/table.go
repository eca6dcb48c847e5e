// Package drilldown builds the data behind tables, KPI strips and modal
// drill-downs. Views hold formatted strings only; internal/render turns them
// into HTML and internal/export into CSV, so both always agree on column
// order.
package drilldown

import (
	"fmt"
	"strconv"

	"github.com/banshee-data/aco.dashboard/internal/chartspec"
)

// Tone hints how a KPI should be coloured.
type Tone string

const (
	ToneNeutral  Tone = "neutral"
	TonePositive Tone = "positive"
	ToneNegative Tone = "negative"
	ToneWarning  Tone = "warning"
)

// KPI is a single headline figure.
type KPI struct {
	Label string `json:"label"`
	Value string `json:"value"`
	Tone  Tone   `json:"tone"`
}

// Table is a titled grid of preformatted cells.
type Table struct {
	// Name identifies the table in export URLs, e.g. "markets".
	Name    string     `json:"name"`
	Title   string     `json:"title"`
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
	// Footer is an optional totals row rendered after Rows.
	Footer []string `json:"footer,omitempty"`
}

// Empty reports whether the table has no data rows.
func (t Table) Empty() bool { return len(t.Rows) == 0 }

// AddRow appends a row. It panics if the cell count does not match the
// columns, since that is a programming error in a view builder.
func (t *Table) AddRow(cells ...string) {
	if len(cells) != len(t.Columns) {
		panic(fmt.Sprintf("drilldown: table %s row has %d cells, want %d", t.Name, len(cells), len(t.Columns)))
	}
	t.Rows = append(t.Rows, cells)
}

// Records returns the header followed by every row and the footer, the
// layout written to CSV.
func (t Table) Records() [][]string {
	out := make([][]string, 0, len(t.Rows)+2)
	out = append(out, append([]string(nil), t.Columns...))
	for _, r := range t.Rows {
		out = append(out, append([]string(nil), r...))
	}
	if len(t.Footer) > 0 {
		out = append(out, append([]string(nil), t.Footer...))
	}
	return out
}

func signTone(v float64, lowerIsBetter bool) Tone {
	switch {
	case v == 0:
		return ToneNeutral
	case (v < 0) == lowerIsBetter:
		return TonePositive
	}
	return ToneNegative
}

func money(v float64) string   { return chartspec.FormatMillions.Format(v) }
func dollars(v float64) string { return chartspec.FormatDollars.Format(v) }
func percent(v float64) string { return chartspec.FormatPercent.Format(v) }
func count(n int) string       { return chartspec.FormatCount.Format(float64(n)) }
func decimal(v float64) string { return strconv.FormatFloat(v, 'f', 1, 64) }
func pmpm(v float64) string    { return chartspec.FormatPMPM.Format(v) }

func signedDollars(v float64) string {
	if v > 0 {
		return "+" + dollars(v)
	}
	return dollars(v)
}

func signedPct(v float64) string {
	if v > 0 {
		return "+" + percent(v)
	}
	return percent(v)
}
