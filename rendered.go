package esmviz

import (
	"bytes"
	"context"
	"io"

	"github.com/fredbi/esmviz/internal/pkg/image"
	"github.com/fredbi/esmviz/layout"
	"github.com/go-echarts/go-echarts/v2/components"
)

// chart kinds
const (
	kindTaylor   = "taylor"
	kindPortrait = "portrait"
	kindScatter  = "scatter"
)

type echart interface {
	components.Charter

	Render(w io.Writer) error
}

// RenderedChart is an assembled, self-contained interactive chart.
//
// It renders as a standalone HTML document, embeds on a [Page] alongside
// other charts, or rasterizes to a PNG via a headless browser.
// The underlying geometry remains inspectable through the layout accessors.
type RenderedChart struct {
	kind     string
	title    string
	chart    echart
	warnings []layout.Warning

	taylor   *layout.TaylorLayout
	portrait *layout.PortraitLayout
	scatter  *layout.ScatterLayout
}

// Title returns the chart title.
func (c *RenderedChart) Title() string {
	return c.title
}

// Warnings reports the non-fatal anomalies collected while building the
// chart, such as clamped correlations or cells without data.
func (c *RenderedChart) Warnings() []layout.Warning {
	return c.warnings
}

// Render writes the chart as a standalone HTML document.
func (c *RenderedChart) Render(w io.Writer) error {
	return c.chart.Render(w)
}

// StaticImage renders the chart HTML in a headless browser and writes the
// resulting PNG. The context bounds the browser session.
func (c *RenderedChart) StaticImage(ctx context.Context, w io.Writer, opts ...image.Option) error {
	var buf bytes.Buffer
	if err := c.Render(&buf); err != nil {
		return err
	}

	return image.New(opts...).Render(ctx, w, buf.Bytes())
}

// TaylorLayout returns the geometry behind a Taylor diagram, or nil for
// other chart kinds.
func (c *RenderedChart) TaylorLayout() *layout.TaylorLayout {
	return c.taylor
}

// PortraitLayout returns the geometry behind a portrait plot, or nil for
// other chart kinds.
func (c *RenderedChart) PortraitLayout() *layout.PortraitLayout {
	return c.portrait
}

// ScatterLayout returns the geometry behind a scatter plot, or nil for
// other chart kinds.
func (c *RenderedChart) ScatterLayout() *layout.ScatterLayout {
	return c.scatter
}
