// Package render turns chart specs and drill-down views into HTML. It is the
// only package that knows about go-echarts.
package render

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	chartrender "github.com/go-echarts/go-echarts/v2/render"
	"github.com/go-echarts/go-echarts/v2/types"

	"github.com/banshee-data/aco.dashboard/internal/chartspec"
)

// Options control the canvas of every rendered chart.
type Options struct {
	AssetsHost string
	Theme      string
	Width      string
	Height     string
}

// DefaultOptions match the dashboard layout.
func DefaultOptions(assetsHost string) Options {
	return Options{AssetsHost: assetsHost, Theme: types.ThemeWesteros, Width: "100%", Height: "420px"}
}

// Chart is a configured go-echarts chart.
type Chart interface {
	components.Charter
	Render(w io.Writer) error
	RenderSnippet() chartrender.ChartSnippet
}

// DOMID is the element id of a slot's mount point. go-echarts derives script
// variable names from it, so it must be a valid JavaScript identifier.
func DOMID(slot string) string {
	return "chart_" + strings.NewReplacer("-", "_", ".", "_").Replace(slot)
}

// NewChart converts spec into a go-echarts chart mounted at DOMID(spec.Slot).
func NewChart(spec *chartspec.Spec, o Options) (Chart, error) {
	if spec == nil {
		return nil, fmt.Errorf("render: nil spec")
	}
	switch spec.Kind {
	case chartspec.KindPie:
		return newPie(spec, o), nil
	case chartspec.KindBar:
		return newBar(spec, o), nil
	case chartspec.KindLine:
		return newLine(spec, o), nil
	}
	return nil, fmt.Errorf("render: unsupported chart kind %q for %s", spec.Kind, spec.Slot)
}

// ChartHTML renders spec as a standalone HTML document.
func ChartHTML(spec *chartspec.Spec, o Options) ([]byte, error) {
	c, err := NewChart(spec, o)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := c.Render(&buf); err != nil {
		return nil, fmt.Errorf("render %s: %w", spec.Slot, err)
	}
	return buf.Bytes(), nil
}

// Snippet renders spec as an embeddable element and script pair.
func Snippet(spec *chartspec.Spec, o Options) (chartrender.ChartSnippet, error) {
	c, err := NewChart(spec, o)
	if err != nil {
		return chartrender.ChartSnippet{}, err
	}
	return c.RenderSnippet(), nil
}

func globalOpts(s *chartspec.Spec, o Options) []charts.GlobalOpts {
	height := s.Height
	if height == "" {
		height = o.Height
	}
	legend := opts.Legend{Show: opts.Bool(s.Legend), Bottom: "0"}
	return []charts.GlobalOpts{
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle:  s.Title,
			ChartID:    DOMID(s.Slot),
			Theme:      o.Theme,
			Width:      o.Width,
			Height:     height,
			AssetsHost: o.AssetsHost,
		}),
		charts.WithTitleOpts(opts.Title{Title: s.Title, Subtitle: s.Subtitle}),
		charts.WithTooltipOpts(opts.Tooltip{
			Show:           opts.Bool(true),
			Trigger:        s.Tooltip.Trigger,
			ValueFormatter: valueFormatter(s.Tooltip.Format),
		}),
		charts.WithLegendOpts(legend),
	}
}

func axisOpts(s *chartspec.Spec) []charts.GlobalOpts {
	category := opts.XAxis{Type: "category", Name: s.XAxis.Name}
	value := opts.YAxis{
		Type:      "value",
		Name:      s.YAxis.Name,
		AxisLabel: &opts.AxisLabel{Formatter: valueFormatter(s.YAxis.Format)},
	}
	if s.YAxis.Min != nil {
		value.Min = *s.YAxis.Min
	}
	if s.YAxis.Max != nil {
		value.Max = *s.YAxis.Max
	}
	if !s.Horizontal {
		return []charts.GlobalOpts{charts.WithXAxisOpts(category), charts.WithYAxisOpts(value)}
	}
	// Horizontal bars carry the values on X.
	return []charts.GlobalOpts{
		charts.WithXAxisOpts(opts.XAxis{
			Type:      "value",
			Name:      s.XAxis.Name,
			AxisLabel: &opts.AxisLabel{Formatter: valueFormatter(s.XAxis.Format)},
		}),
		charts.WithYAxisOpts(opts.YAxis{Type: "category", Name: s.YAxis.Name}),
	}
}

func newBar(s *chartspec.Spec, o Options) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(append(globalOpts(s, o), axisOpts(s)...)...)
	bar.SetXAxis(s.Categories)

	var lines []chartspec.Series
	for _, series := range s.Series {
		if series.Kind == chartspec.KindLine {
			lines = append(lines, series)
			continue
		}
		bar.AddSeries(series.Name, barData(series), barSeriesOpts(series)...)
	}
	if len(lines) > 0 {
		overlay := charts.NewLine()
		overlay.SetXAxis(s.Categories)
		for _, series := range lines {
			overlay.AddSeries(series.Name, lineData(series), lineSeriesOpts(series)...)
		}
		bar.Overlap(overlay)
	}
	if s.Horizontal {
		bar.XYReversal()
	}
	return bar
}

func newLine(s *chartspec.Spec, o Options) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(append(globalOpts(s, o), axisOpts(s)...)...)
	line.SetXAxis(s.Categories)

	var bars []chartspec.Series
	for _, series := range s.Series {
		if series.Kind == chartspec.KindBar {
			bars = append(bars, series)
			continue
		}
		line.AddSeries(series.Name, lineData(series), lineSeriesOpts(series)...)
	}
	if len(bars) > 0 {
		overlay := charts.NewBar()
		overlay.SetXAxis(s.Categories)
		for _, series := range bars {
			overlay.AddSeries(series.Name, barData(series), barSeriesOpts(series)...)
		}
		line.Overlap(overlay)
	}
	return line
}

func newPie(s *chartspec.Spec, o Options) *charts.Pie {
	pie := charts.NewPie()
	pie.SetGlobalOptions(globalOpts(s, o)...)

	radius := "65%"
	var pieOpts opts.PieChart
	if s.Doughnut {
		pieOpts.Radius = []string{"40%", radius}
	} else {
		pieOpts.Radius = radius
	}
	for _, series := range s.Series {
		data := make([]opts.PieData, len(series.Points))
		for i, p := range series.Points {
			d := opts.PieData{Name: p.Name, Value: p.Value}
			if p.Color != "" {
				d.ItemStyle = &opts.ItemStyle{Color: p.Color}
			}
			d.Label = &opts.Label{Show: opts.Bool(p.ShowLabel)}
			if p.ShowLabel {
				d.Label.Formatter = types.FuncStr(p.Label)
			}
			data[i] = d
		}
		pie.AddSeries(series.Name, data, charts.WithPieChartOpts(pieOpts))
	}
	return pie
}

func barData(s chartspec.Series) []opts.BarData {
	data := make([]opts.BarData, len(s.Points))
	for i, p := range s.Points {
		d := opts.BarData{Name: p.Name, Value: p.Value}
		switch {
		case p.Hidden:
			d.ItemStyle = &opts.ItemStyle{Color: "transparent", BorderColor: "transparent"}
		case p.Color != "":
			d.ItemStyle = &opts.ItemStyle{Color: p.Color}
		}
		if p.ShowLabel && !p.Hidden {
			d.Label = &opts.Label{
				Show:      opts.Bool(true),
				Position:  s.Labels.Position,
				Formatter: types.FuncStr(p.Label),
			}
		}
		data[i] = d
	}
	return data
}

func barSeriesOpts(s chartspec.Series) []charts.SeriesOpts {
	so := []charts.SeriesOpts{charts.WithBarChartOpts(opts.BarChart{Stack: s.Stack})}
	if s.Color != "" {
		so = append(so, charts.WithItemStyleOpts(opts.ItemStyle{Color: s.Color}))
	}
	return so
}

func lineData(s chartspec.Series) []opts.LineData {
	data := make([]opts.LineData, len(s.Points))
	for i, p := range s.Points {
		data[i] = opts.LineData{Name: p.Name, Value: p.Value}
	}
	return data
}

func lineSeriesOpts(s chartspec.Series) []charts.SeriesOpts {
	so := []charts.SeriesOpts{
		charts.WithLineChartOpts(opts.LineChart{Smooth: opts.Bool(s.Smooth), Stack: s.Stack}),
	}
	style := opts.LineStyle{Color: s.Color, Width: 2}
	if s.Dashed {
		style.Type = "dashed"
	}
	so = append(so, charts.WithLineStyleOpts(style))
	if s.Color != "" {
		so = append(so, charts.WithItemStyleOpts(opts.ItemStyle{Color: s.Color}))
	}
	if s.Area {
		so = append(so, charts.WithAreaStyleOpts(opts.AreaStyle{Opacity: opts.Float(0.2)}))
	}
	// Line points cannot carry their own label, so a lookup by data index
	// reproduces the per-point label rule.
	if fn, ok := lineLabelFormatter(s.Points); ok {
		so = append(so, charts.WithLabelOpts(opts.Label{
			Show:      opts.Bool(true),
			Position:  s.Labels.Position,
			Formatter: fn,
		}))
	}
	return so
}

func lineLabelFormatter(points []chartspec.Point) (types.FuncStr, bool) {
	labels := make(map[int]string)
	for i, p := range points {
		if p.ShowLabel {
			labels[i] = p.Label
		}
	}
	if len(labels) == 0 {
		return "", false
	}
	raw, err := json.Marshal(labels)
	if err != nil {
		return "", false
	}
	return opts.FuncOpts(fmt.Sprintf("function (p) { var l = %s; return l[p.dataIndex] || ''; }", raw)), true
}

// valueFormatter mirrors chartspec.Format in the browser.
func valueFormatter(f chartspec.Format) types.FuncStr {
	prefix, _ := json.Marshal(f.Prefix)
	suffix, _ := json.Marshal(f.Suffix)
	return opts.FuncOpts(fmt.Sprintf(
		"function (v) { var n = Math.abs(Number(v)).toLocaleString('en-US', {minimumFractionDigits: %d, maximumFractionDigits: %d}); return (v < 0 ? '-' : '') + %s + n + %s; }",
		f.Decimals, f.Decimals, prefix, suffix,
	))
}
