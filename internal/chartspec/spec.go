// Package chartspec builds library-neutral chart descriptions from dashboard
// data. Builders are pure: the same inputs always give the same Spec. The
// render package turns a Spec into an ECharts configuration.
package chartspec

import (
	"fmt"
	"math"
	"strings"
)

// Kind is the chart or series type.
type Kind string

const (
	KindLine Kind = "line"
	KindBar  Kind = "bar"
	KindPie  Kind = "pie"
)

// Colours shared by the builders.
const (
	ColorPositive = "#2e7d32"
	ColorNegative = "#c62828"
	ColorWarning  = "#f9a825"
	ColorPrimary  = "#1565c0"
	ColorMuted    = "#90a4ae"
	ColorOON      = "#ef6c00"
)

// Format renders values for labels, tooltips and axes.
type Format struct {
	Prefix   string `json:"prefix,omitempty"`
	Suffix   string `json:"suffix,omitempty"`
	Decimals int    `json:"decimals"`
}

// Common formats.
var (
	FormatMillions = Format{Prefix: "$", Suffix: "M", Decimals: 1}
	FormatDollars  = Format{Prefix: "$", Decimals: 0}
	FormatPMPM     = Format{Prefix: "$", Decimals: 2}
	FormatPercent  = Format{Suffix: "%", Decimals: 1}
	FormatCount    = Format{Decimals: 0}
)

// Format formats v.
func (f Format) Format(v float64) string {
	scale := math.Pow10(f.Decimals)
	abs := math.Round(math.Abs(v)*scale) / scale
	s := fmt.Sprintf("%.*f", f.Decimals, abs)
	if f.Decimals == 0 {
		s = groupThousands(s)
	}
	sign := ""
	if v < 0 && abs > 0 {
		sign = "-"
	}
	return sign + f.Prefix + s + f.Suffix
}

func groupThousands(s string) string {
	if len(s) <= 3 {
		return s
	}
	var b strings.Builder
	lead := len(s) % 3
	if lead > 0 {
		b.WriteString(s[:lead])
	}
	for i := lead; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}

// LabelRule decides which points carry a data label and how they are
// coloured. The zero rule labels nothing and leaves colours alone.
type LabelRule struct {
	// Show enables labels.
	Show bool `json:"show"`
	// EveryN labels only every Nth point (0 or 1 labels all).
	EveryN int `json:"every_n,omitempty"`
	// MinAbs suppresses labels on points whose magnitude is below it.
	MinAbs float64 `json:"min_abs,omitempty"`
	// PositiveColor and NegativeColor colour points by sign when set.
	PositiveColor string `json:"positive_color,omitempty"`
	NegativeColor string `json:"negative_color,omitempty"`
	// Position is the label placement, e.g. "top" or "inside".
	Position string `json:"position,omitempty"`
	Format   Format `json:"format"`
}

// Apply sets ShowLabel, Label and sign colours on points in place.
func (r LabelRule) Apply(points []Point) {
	for i := range points {
		p := &points[i]
		switch {
		case p.Value > 0 && r.PositiveColor != "":
			p.Color = r.PositiveColor
		case p.Value < 0 && r.NegativeColor != "":
			p.Color = r.NegativeColor
		}
		p.ShowLabel = r.Show &&
			(r.EveryN <= 1 || i%r.EveryN == 0) &&
			math.Abs(p.Value) >= r.MinAbs
		if p.ShowLabel {
			p.Label = r.Format.Format(p.Value)
		}
	}
}

// Point is a single datum.
type Point struct {
	Name      string  `json:"name,omitempty"`
	Value     float64 `json:"value"`
	Color     string  `json:"color,omitempty"`
	ShowLabel bool    `json:"show_label,omitempty"`
	Label     string  `json:"label,omitempty"`
	// Hidden points keep their slot but are not drawn (waterfall bases).
	Hidden bool `json:"hidden,omitempty"`
}

// Series is one data series. Kind may differ from the Spec kind to overlay
// a line on bars.
type Series struct {
	Name   string    `json:"name"`
	Kind   Kind      `json:"kind"`
	Color  string    `json:"color,omitempty"`
	Stack  string    `json:"stack,omitempty"`
	Smooth bool      `json:"smooth,omitempty"`
	Area   bool      `json:"area,omitempty"`
	Dashed bool      `json:"dashed,omitempty"`
	Points []Point   `json:"points"`
	Labels LabelRule `json:"labels"`
}

// Values returns the point values in order.
func (s Series) Values() []float64 {
	out := make([]float64, len(s.Points))
	for i, p := range s.Points {
		out[i] = p.Value
	}
	return out
}

// Axis describes a value or category axis.
type Axis struct {
	Name   string   `json:"name,omitempty"`
	Min    *float64 `json:"min,omitempty"`
	Max    *float64 `json:"max,omitempty"`
	Format Format   `json:"format"`
}

// Tooltip describes hover behaviour.
type Tooltip struct {
	Trigger string `json:"trigger"` // "axis" or "item"
	Format  Format `json:"format"`
}

// Spec is a complete, library-neutral chart description.
type Spec struct {
	Slot       string   `json:"slot"`
	Kind       Kind     `json:"kind"`
	Title      string   `json:"title"`
	Subtitle   string   `json:"subtitle,omitempty"`
	Categories []string `json:"categories,omitempty"`
	Series     []Series `json:"series"`
	XAxis      Axis     `json:"x_axis"`
	YAxis      Axis     `json:"y_axis"`
	Tooltip    Tooltip  `json:"tooltip"`
	Legend     bool     `json:"legend"`
	Horizontal bool     `json:"horizontal,omitempty"`
	Doughnut   bool     `json:"doughnut,omitempty"`
	Height     string   `json:"height,omitempty"`
}

// SeriesByName returns the named series, or nil.
func (s *Spec) SeriesByName(name string) *Series {
	for i := range s.Series {
		if s.Series[i].Name == name {
			return &s.Series[i]
		}
	}
	return nil
}

func floatPtr(v float64) *float64 { return &v }

func newSeries(name string, kind Kind, color string, points []Point, rule LabelRule) Series {
	rule.Apply(points)
	return Series{Name: name, Kind: kind, Color: color, Points: points, Labels: rule}
}
