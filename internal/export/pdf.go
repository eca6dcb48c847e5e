package export

import (
	"bytes"
	"fmt"
	"io"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/banshee-data/aco.dashboard/internal/calc"
	"github.com/banshee-data/aco.dashboard/internal/dataset"
	"github.com/banshee-data/aco.dashboard/internal/drilldown"
	"github.com/banshee-data/aco.dashboard/internal/monitoring"
	"github.com/banshee-data/aco.dashboard/internal/state"
	"github.com/banshee-data/aco.dashboard/internal/version"
)

// SummaryFilename is the download name of the executive summary.
const SummaryFilename = "aco-executive-summary.pdf"

// A4 portrait, millimetres.
const (
	pageWidth    = 210.0
	marginLeft   = 15.0
	marginRight  = 15.0
	marginTop    = 15.0
	marginBottom = 20.0
	contentWidth = pageWidth - marginLeft - marginRight
)

// Summary is everything printed in the executive summary.
type Summary struct {
	Generated time.Time
	Year      int

	Markets    calc.MarketSummary
	Leakage    calc.LeakageMetrics
	Scenario   dataset.ScenarioConfig
	Simulation calc.SimulationResult
	Projection calc.Projection

	Tables []drilldown.Table
}

// NewSummary gathers the summary for a session's filters and projection
// input.
func NewSummary(c *dataset.Catalog, f state.Filters, in calc.ProjectionInput, iterations int, seed uint64, now time.Time) (Summary, error) {
	rows, err := c.Markets(f.PerformanceYear)
	if err != nil {
		return Summary{}, fmt.Errorf("summary markets: %w", err)
	}
	leak, err := calc.Leakage(c.Leakage, f.ClaimType, f.ServiceType)
	if err != nil {
		return Summary{}, fmt.Errorf("summary leakage: %w", err)
	}
	sc, err := c.Scenario(f.Scenario)
	if err != nil {
		return Summary{}, fmt.Errorf("summary scenario: %w", err)
	}

	markets := calc.SummarizeMarkets(f.PerformanceYear, rows)
	return Summary{
		Generated:  now,
		Year:       f.PerformanceYear,
		Markets:    markets,
		Leakage:    leak,
		Scenario:   sc,
		Simulation: calc.Simulate(sc, iterations, seed),
		Projection: calc.Project(in),
		Tables: []drilldown.Table{
			drilldown.MarketsTable(markets),
			drilldown.ScenarioTable(c.Scenarios),
		},
	}, nil
}

type summaryReport struct {
	pdf *fpdf.Fpdf
	s   Summary
}

// WriteSummaryPDF renders s as an A4 report.
func WriteSummaryPDF(w io.Writer, s Summary) error {
	r := &summaryReport{pdf: fpdf.New("P", "mm", "A4", ""), s: s}
	r.pdf.SetMargins(marginLeft, marginTop, marginRight)
	r.pdf.SetAutoPageBreak(true, marginBottom)
	r.pdf.SetTitle("ACO Executive Summary", false)
	r.pdf.SetCreator(version.String(), false)
	if !s.Generated.IsZero() {
		r.pdf.SetCreationDate(s.Generated)
	}
	r.pdf.SetFooterFunc(r.footer)

	r.addTitle()
	r.addKPISection("Market Performance", drilldown.MarketKPIs(s.Markets))
	r.addKPISection(fmt.Sprintf("Network Leakage (%s / %s)", s.Leakage.ClaimType, s.Leakage.ServiceType),
		drilldown.LeakageKPIs(s.Leakage))
	r.addKPISection("Savings Simulation", drilldown.ScenarioKPIs(s.Scenario, s.Simulation))
	r.addKPISection("What-if Projection", drilldown.ProjectionKPIs(s.Projection))
	for _, t := range s.Tables {
		r.addTable(t)
	}

	// fpdf accumulates errors; Output reports the first one.
	var buf bytes.Buffer
	if err := r.pdf.Output(&buf); err != nil {
		return fmt.Errorf("render summary pdf: %w", err)
	}
	if _, err := w.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("write summary pdf: %w", err)
	}
	monitoring.RecordExport("summary", "pdf")
	return nil
}

func (r *summaryReport) addTitle() {
	r.pdf.AddPage()

	r.pdf.SetFont("Arial", "B", 22)
	r.pdf.SetTextColor(0, 51, 102)
	r.pdf.CellFormat(contentWidth, 12, "ACO Executive Summary", "", 1, "L", false, 0, "")

	r.pdf.SetFont("Arial", "", 12)
	r.pdf.SetTextColor(80, 80, 80)
	r.pdf.CellFormat(contentWidth, 7, fmt.Sprintf("Performance year %d", r.s.Year), "", 1, "L", false, 0, "")
	if !r.s.Generated.IsZero() {
		r.pdf.SetFont("Arial", "I", 10)
		r.pdf.CellFormat(contentWidth, 6, fmt.Sprintf("Generated: %s", r.s.Generated.Format("2 January 2006")), "", 1, "L", false, 0, "")
	}

	r.pdf.Ln(4)
	r.pdf.SetFillColor(255, 243, 205)
	r.pdf.SetDrawColor(230, 190, 90)
	r.pdf.SetFont("Arial", "B", 10)
	r.pdf.SetTextColor(120, 80, 0)
	r.pdf.MultiCell(contentWidth, 5, DisclaimerLines[0][2:], "LTR", "L", true)
	r.pdf.SetFont("Arial", "", 9)
	r.pdf.MultiCell(contentWidth, 4.5, DisclaimerLines[1][2:]+" "+DisclaimerLines[2][2:], "LBR", "L", true)
	r.pdf.Ln(6)
}

func (r *summaryReport) sectionHeader(title string) {
	r.pdf.SetFillColor(0, 51, 102)
	r.pdf.SetTextColor(255, 255, 255)
	r.pdf.SetFont("Arial", "B", 11)
	r.pdf.CellFormat(contentWidth, 7, title, "", 1, "L", true, 0, "")
	r.pdf.Ln(1)
}

// addKPISection lays KPIs out two to a row.
func (r *summaryReport) addKPISection(title string, kpis []drilldown.KPI) {
	r.sectionHeader(title)
	colWidth := contentWidth / 2
	for i, k := range kpis {
		ln := 0
		if i%2 == 1 || i == len(kpis)-1 {
			ln = 1
		}
		r.pdf.SetFont("Arial", "", 9)
		r.pdf.SetTextColor(90, 90, 90)
		r.pdf.CellFormat(colWidth*0.55, 6, k.Label, "", 0, "L", false, 0, "")
		r.pdf.SetFont("Arial", "B", 10)
		setToneColor(r.pdf, k.Tone)
		r.pdf.CellFormat(colWidth*0.45, 6, k.Value, "", ln, "L", false, 0, "")
	}
	r.pdf.Ln(4)
}

func (r *summaryReport) addTable(t drilldown.Table) {
	if len(t.Columns) == 0 {
		return
	}
	r.sectionHeader(t.Title)
	colWidth := contentWidth / float64(len(t.Columns))

	header := func() {
		r.pdf.SetFillColor(70, 90, 110)
		r.pdf.SetTextColor(255, 255, 255)
		r.pdf.SetFont("Arial", "B", 7)
		for _, c := range t.Columns {
			r.pdf.CellFormat(colWidth, 5, c, "1", 0, "C", true, 0, "")
		}
		r.pdf.Ln(-1)
	}
	header()

	r.pdf.SetFont("Arial", "", 7)
	r.pdf.SetTextColor(50, 50, 50)
	_, pageHeight := r.pdf.GetPageSize()
	for i, row := range t.Rows {
		if r.pdf.GetY()+5 > pageHeight-marginBottom {
			r.pdf.AddPage()
			header()
			r.pdf.SetFont("Arial", "", 7)
			r.pdf.SetTextColor(50, 50, 50)
		}
		if i%2 == 0 {
			r.pdf.SetFillColor(250, 250, 250)
		} else {
			r.pdf.SetFillColor(255, 255, 255)
		}
		for j, cell := range row {
			align := "R"
			if j == 0 {
				align = "L"
			}
			r.pdf.CellFormat(colWidth, 5, cell, "1", 0, align, true, 0, "")
		}
		r.pdf.Ln(-1)
	}
	if len(t.Footer) > 0 {
		r.pdf.SetFont("Arial", "B", 7)
		r.pdf.SetFillColor(235, 240, 245)
		for j, cell := range t.Footer {
			align := "R"
			if j == 0 {
				align = "L"
			}
			r.pdf.CellFormat(colWidth, 5, cell, "1", 0, align, true, 0, "")
		}
		r.pdf.Ln(-1)
	}
	r.pdf.Ln(5)
}

func (r *summaryReport) footer() {
	r.pdf.SetY(-15)
	r.pdf.SetFont("Arial", "I", 7)
	r.pdf.SetTextColor(120, 120, 120)
	r.pdf.CellFormat(contentWidth, 5, "Synthetic data - for demonstration purposes only", "", 0, "L", false, 0, "")
	r.pdf.SetX(marginLeft)
	r.pdf.CellFormat(contentWidth, 5, fmt.Sprintf("Page %d", r.pdf.PageNo()), "", 0, "R", false, 0, "")
}

func setToneColor(pdf *fpdf.Fpdf, tone drilldown.Tone) {
	switch tone {
	case drilldown.TonePositive:
		pdf.SetTextColor(21, 128, 61)
	case drilldown.ToneNegative:
		pdf.SetTextColor(185, 28, 28)
	case drilldown.ToneWarning:
		pdf.SetTextColor(180, 83, 9)
	default:
		pdf.SetTextColor(30, 30, 30)
	}
}
