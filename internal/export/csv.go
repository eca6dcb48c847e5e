// Package export writes dashboard tables as CSV and the executive summary
// as PDF. Every file carries the synthetic-data disclaimer.
package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/banshee-data/aco.dashboard/internal/drilldown"
	"github.com/banshee-data/aco.dashboard/internal/monitoring"
	"github.com/banshee-data/aco.dashboard/internal/security"
)

// DisclaimerLines open every CSV export, before the header row.
var DisclaimerLines = []string{
	"# SYNTHETIC DATA - FOR DEMONSTRATION PURPOSES ONLY",
	"# All figures are fabricated and do not represent any real organization, patient, or provider.",
	"# Do not use for clinical, financial, or operational decisions.",
}

// CSVFilename is the download name for a table export.
func CSVFilename(table string) string {
	return fmt.Sprintf("aco-%s.csv", security.SanitizeFilename(table))
}

// WriteCSV writes the disclaimer lines followed by the table's header, rows
// and footer. Readers can skip the disclaimer with csv.Reader.Comment = '#'.
func WriteCSV(w io.Writer, t drilldown.Table) error {
	for _, line := range DisclaimerLines {
		if _, err := io.WriteString(w, line+"\n"); err != nil {
			return fmt.Errorf("write disclaimer: %w", err)
		}
	}

	cw := csv.NewWriter(w)
	if err := cw.WriteAll(t.Records()); err != nil {
		return fmt.Errorf("write %s table: %w", t.Name, err)
	}
	monitoring.RecordExport(t.Name, "csv")
	return nil
}
