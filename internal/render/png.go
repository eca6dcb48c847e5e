package render

import (
	"fmt"
	"image/color"
	"io"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	_ "gonum.org/v1/plot/vg/vgimg" // registers the png canvas

	"github.com/banshee-data/aco.dashboard/internal/calc"
	"github.com/banshee-data/aco.dashboard/internal/dataset"
)

var (
	histFill     = color.RGBA{R: 0x15, G: 0x65, B: 0xc0, A: 0xb0}
	expectedLine = color.RGBA{R: 0x37, G: 0x47, B: 0x4f, A: 0xff}
	lossLine     = color.RGBA{R: 0xc6, G: 0x28, B: 0x28, A: 0xff}
	targetLine   = color.RGBA{R: 0x2e, G: 0x7d, B: 0x32, A: 0xff}
)

// MonteCarloPNG draws a static image of a simulation: $1M bins of simulated
// savings, the expected normal counts, and markers at breakeven and target.
func MonteCarloPNG(w io.Writer, sc dataset.ScenarioConfig, sim calc.SimulationResult) error {
	bins := calc.Histogram(sim.Samples, 1)
	if len(bins) == 0 {
		return fmt.Errorf("monte carlo png: scenario %d has no samples", sc.ID)
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("Savings Distribution: %s (%d draws)", sc.Name, sim.Iterations)
	p.X.Label.Text = "Shared savings ($M)"
	p.Y.Label.Text = "Draws"

	hist := &plotter.Histogram{
		Width:     1,
		FillColor: histFill,
		LineStyle: plotter.DefaultLineStyle,
	}
	ymax := 0.0
	for _, b := range bins {
		hist.Bins = append(hist.Bins, plotter.HistogramBin{Min: b.Low, Max: b.High, Weight: b.Count})
		if b.Count > ymax {
			ymax = b.Count
		}
	}
	hist.LineStyle.Width = vg.Points(0.5)
	p.Add(hist)
	p.Legend.Add("Simulated", hist)

	expected := calc.ExpectedHistogram(sc, sim.Iterations, 1)
	if len(expected) > 0 {
		pts := make(plotter.XYs, len(expected))
		for i, b := range expected {
			pts[i] = plotter.XY{X: b.Mid(), Y: b.Count}
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return err
		}
		line.Color = expectedLine
		line.Width = vg.Points(1.5)
		p.Add(line)
		p.Legend.Add("Expected", line)
	}

	markers := []struct {
		x     float64
		label string
		c     color.Color
	}{
		{0, "Breakeven", lossLine},
		{calc.TargetSavings, "Target", targetLine},
	}
	for _, m := range markers {
		line, err := plotter.NewLine(plotter.XYs{{X: m.x, Y: 0}, {X: m.x, Y: ymax}})
		if err != nil {
			return err
		}
		line.Color = m.c
		line.Width = vg.Points(1)
		line.Dashes = []vg.Length{vg.Points(4), vg.Points(3)}
		p.Add(line)
		p.Legend.Add(m.label, line)
	}

	p.Legend.Top = true
	p.Legend.Left = false
	p.Legend.XOffs = -10
	p.Legend.YOffs = -10

	wt, err := p.WriterTo(10*vg.Inch, 5*vg.Inch, "png")
	if err != nil {
		return fmt.Errorf("monte carlo png: %w", err)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return fmt.Errorf("monte carlo png: %w", err)
	}
	return nil
}
