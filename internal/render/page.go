package render

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/banshee-data/aco.dashboard/internal/chartspec"
	"github.com/banshee-data/aco.dashboard/internal/drilldown"
)

// Disclaimer is shown on every page and export.
const Disclaimer = "Synthetic data for demonstration purposes only. All figures are fabricated and do not represent any real organization, patient, or provider."

// TabLink is one entry of the tab bar.
type TabLink struct {
	ID     string
	Label  string
	Active bool
}

// Option is one choice of a filter control.
type Option struct {
	Value    string
	Label    string
	Selected bool
	Disabled bool
}

// Control is a filter select posted to /api/filters/{Name}.
type Control struct {
	Name    string
	Label   string
	Options []Option
}

// Slider is a projection input posted to /api/projection/input. Values are
// in percent.
type Slider struct {
	Name  string
	Label string
	Min   float64
	Max   float64
	Step  float64
	Value float64
}

// Mount is a chart slot on a page with its rendered element and script.
type Mount struct {
	Slot    string
	Element template.HTML
	Script  template.HTML
}

// Page is the view model of a tab page.
type Page struct {
	Title    string
	Tabs     []TabLink
	Controls []Control
	Sliders  []Slider
	KPIs     []drilldown.KPI
	Mounts   []Mount
	Tables   []drilldown.Table
	// Drilldowns are pre-rendered hospital or county fragments.
	Drilldowns []template.HTML
	Assets     []string
	Disclaimer string
	// DisclaimerAccepted hides the first-visit notice.
	DisclaimerAccepted bool
}

// Mounts renders specs into page mount points and collects the script
// assets they need. Nil specs are skipped: a builder returns nil for a slot
// with nothing to show.
func Mounts(specs []*chartspec.Spec, o Options) ([]Mount, []string, error) {
	var (
		mounts []Mount
		assets []string
		seen   = make(map[string]bool)
	)
	for _, spec := range specs {
		if spec == nil {
			continue
		}
		c, err := NewChart(spec, o)
		if err != nil {
			return nil, nil, err
		}
		snip := c.RenderSnippet()
		mounts = append(mounts, Mount{
			Slot:    spec.Slot,
			Element: template.HTML(snip.Element),
			Script:  template.HTML(snip.Script),
		})
		// The snippet validates the chart, which resolves asset URLs.
		for _, a := range c.GetAssets().JSAssets.Values {
			if !seen[a] {
				seen[a] = true
				assets = append(assets, a)
			}
		}
	}
	return mounts, assets, nil
}

// RenderPage executes the tab page template.
func RenderPage(tp TemplateProvider, p Page) ([]byte, error) {
	if p.Disclaimer == "" {
		p.Disclaimer = Disclaimer
	}
	var buf bytes.Buffer
	if err := tp.ExecuteTemplate(&buf, "page.html", p); err != nil {
		return nil, fmt.Errorf("render page %q: %w", p.Title, err)
	}
	return buf.Bytes(), nil
}

// RenderFragment executes a named partial such as "hospital" or "table".
func RenderFragment(tp TemplateProvider, name string, data interface{}) ([]byte, error) {
	var buf bytes.Buffer
	if err := tp.ExecuteTemplate(&buf, name, data); err != nil {
		return nil, fmt.Errorf("render %s: %w", name, err)
	}
	return buf.Bytes(), nil
}
