package chartspec

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestFormat(t *testing.T) {
	tests := []struct {
		name string
		f    Format
		v    float64
		want string
	}{
		{"millions", FormatMillions, 11.63, "$11.6M"},
		{"negative millions", FormatMillions, -3.75, "-$3.8M"},
		{"negative zero", FormatMillions, -0.04, "$0.0M"},
		{"dollars grouped", FormatDollars, 24500, "$24,500"},
		{"dollars million", FormatDollars, 1234567.4, "$1,234,567"},
		{"small count", FormatCount, 310, "310"},
		{"pmpm", FormatPMPM, 1092.5, "$1092.50"},
		{"percent", FormatPercent, -2.35, "-2.4%"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.f.Format(tt.v); got != tt.want {
				t.Errorf("Format(%v) = %q, want %q", tt.v, got, tt.want)
			}
		})
	}
}

func TestLabelRule_Apply(t *testing.T) {
	points := []Point{{Value: 5}, {Value: -2}, {Value: 0.4}, {Value: 9}}
	LabelRule{
		Show:          true,
		EveryN:        1,
		MinAbs:        1,
		PositiveColor: ColorNegative,
		NegativeColor: ColorPositive,
		Format:        FormatPercent,
	}.Apply(points)

	want := []Point{
		{Value: 5, Color: ColorNegative, ShowLabel: true, Label: "5.0%"},
		{Value: -2, Color: ColorPositive, ShowLabel: true, Label: "-2.0%"},
		{Value: 0.4, Color: ColorNegative},
		{Value: 9, Color: ColorNegative, ShowLabel: true, Label: "9.0%"},
	}
	if diff := cmp.Diff(want, points); diff != "" {
		t.Errorf("Apply() mismatch (-want +got):\n%s", diff)
	}
}

func TestLabelRule_EveryN(t *testing.T) {
	points := make([]Point, 7)
	LabelRule{Show: true, EveryN: 3}.Apply(points)

	var shown []int
	for i, p := range points {
		if p.ShowLabel {
			shown = append(shown, i)
		}
	}
	if diff := cmp.Diff([]int{0, 3, 6}, shown); diff != "" {
		t.Errorf("labelled indexes mismatch (-want +got):\n%s", diff)
	}
}

func TestLabelRule_ZeroRuleLeavesPointsAlone(t *testing.T) {
	points := []Point{{Value: 3, Color: "#123456"}}
	LabelRule{}.Apply(points)
	if points[0].ShowLabel || points[0].Label != "" || points[0].Color != "#123456" {
		t.Errorf("zero rule changed point: %+v", points[0])
	}
}

func TestSpec_SeriesByName(t *testing.T) {
	s := Spec{Series: []Series{{Name: "a"}, {Name: "b"}}}
	if got := s.SeriesByName("b"); got == nil || got.Name != "b" {
		t.Errorf("SeriesByName(b) = %v", got)
	}
	if got := s.SeriesByName("c"); got != nil {
		t.Errorf("SeriesByName(c) = %v, want nil", got)
	}
}
