package esmviz

import (
	"fmt"
	"hash/fnv"
	"strconv"

	"github.com/fredbi/esmviz/model"
)

// Theme constants from go-echarts.
const (
	ThemeChalk       = "chalk"
	ThemeEssos       = "essos"
	ThemeInfographic = "infographic"
	ThemeMacarons    = "macarons"
	ThemeRoma        = "roma"
	ThemeShine       = "shine"
	ThemeWalden      = "walden"
	ThemeWesteros    = "westeros"
)

// StyleOption tunes the visual rendition of a chart.
type StyleOption func(*styleOptions)

type styleOptions struct {
	theme        string
	width        int
	height       int
	registry     *StyleRegistry
	showLegend   bool
	xLabel       string
	yLabel       string
	tooltipStats []model.StatName
	refColor     string
	refSymbol    string
	missingColor string
	scaleColors  []string
	scaleBounds  []float64
}

func styleOptionsWithDefaults(opts []StyleOption) *styleOptions {
	o := &styleOptions{
		theme:        ThemeRoma,
		width:        900,
		height:       600,
		registry:     DefaultStyles(),
		showLegend:   true,
		refColor:     "#000000",
		refSymbol:    "circle",
		missingColor: "#d3d3d3",
		scaleColors:  portraitRamp,
	}

	for _, apply := range opts {
		apply(o)
	}

	return o
}

func (o *styleOptions) widthPx() string  { return strconv.Itoa(o.width) + "px" }
func (o *styleOptions) heightPx() string { return strconv.Itoa(o.height) + "px" }

// squarePx returns equal pixel dimensions, used by charts that require a
// square drawing area to keep circular geometry circular.
func (o *styleOptions) squarePx() (string, string) {
	side := o.width
	if o.height < side {
		side = o.height
	}
	px := strconv.Itoa(side) + "px"

	return px, px
}

// WithTheme selects an echarts theme.
func WithTheme(theme string) StyleOption {
	return func(o *styleOptions) {
		o.theme = theme
	}
}

// WithSize sets the canvas dimensions in pixels.
func WithSize(width, height int) StyleOption {
	return func(o *styleOptions) {
		if width > 0 {
			o.width = width
		}
		if height > 0 {
			o.height = height
		}
	}
}

// WithStyleRegistry supplies the registry that assigns per-series colors and
// marker shapes. By default the process-wide registry is used.
func WithStyleRegistry(registry *StyleRegistry) StyleOption {
	return func(o *styleOptions) {
		if registry != nil {
			o.registry = registry
		}
	}
}

// WithPalette selects a named color palette ("spectral", "viridis") for a
// fresh registry. Unknown names leave the default palette in place.
func WithPalette(name string) StyleOption {
	return func(o *styleOptions) {
		if palette, ok := PaletteByName(name); ok {
			o.registry = NewStyleRegistry(palette)
		}
	}
}

// WithColors pins explicit colors for series names.
func WithColors(colors map[string]string) StyleOption {
	return func(o *styleOptions) {
		for name, color := range colors {
			o.registry.Assign(name, color, "")
		}
	}
}

// WithMarkers pins explicit marker shapes for series names.
func WithMarkers(markers map[string]string) StyleOption {
	return func(o *styleOptions) {
		for name, symbol := range markers {
			o.registry.Assign(name, "", symbol)
		}
	}
}

// WithLegend toggles the chart legend.
func WithLegend(enabled bool) StyleOption {
	return func(o *styleOptions) {
		o.showLegend = enabled
	}
}

// WithAxisLabels overrides the default axis titles. Empty strings keep the
// defaults derived from the plotted statistics.
func WithAxisLabels(x, y string) StyleOption {
	return func(o *styleOptions) {
		o.xLabel = x
		o.yLabel = y
	}
}

// WithTooltipStats restricts the statistics listed in hover tooltips.
// By default every statistic carried by the chart is shown.
func WithTooltipStats(stats ...model.StatName) StyleOption {
	return func(o *styleOptions) {
		o.tooltipStats = stats
	}
}

// WithReferenceStyle sets the color and marker shape of the reference point
// on Taylor diagrams.
func WithReferenceStyle(color, symbol string) StyleOption {
	return func(o *styleOptions) {
		if color != "" {
			o.refColor = color
		}
		if symbol != "" {
			o.refSymbol = symbol
		}
	}
}

// WithMissingColor sets the fill color for portrait cells without data.
func WithMissingColor(color string) StyleOption {
	return func(o *styleOptions) {
		if color != "" {
			o.missingColor = color
		}
	}
}

// WithColorScale overrides the portrait plot color ramp.
func WithColorScale(colors ...string) StyleOption {
	return func(o *styleOptions) {
		if len(colors) > 1 {
			o.scaleColors = colors
		}
	}
}

// WithColorScaleBounds pins the min and max of the portrait color scale,
// overriding the bounds derived from the data.
func WithColorScaleBounds(minValue, maxValue float64) StyleOption {
	return func(o *styleOptions) {
		o.scaleBounds = []float64{minValue, maxValue}
	}
}

func (o *styleOptions) wantStat(stat model.StatName) bool {
	if len(o.tooltipStats) == 0 {
		return true
	}

	for _, s := range o.tooltipStats {
		if s == stat {
			return true
		}
	}

	return false
}

// chartID derives a stable element id from the chart kind and title, so the
// interaction scripts can address their chart across re-renders.
func chartID(kind string, title string) string {
	h := fnv.New32a()
	_, _ = h.Write([]byte(title))

	return fmt.Sprintf("esmviz_%s_%x", kind, h.Sum32())
}
