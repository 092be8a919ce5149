package esmviz

import (
	"bytes"
	"context"
	"io"

	"github.com/fredbi/esmviz/internal/pkg/image"
	"github.com/fredbi/esmviz/layout"
	"github.com/go-echarts/go-echarts/v2/components"
)

// Page assembles several charts into a single HTML document.
type Page struct {
	Title  string
	Charts []*RenderedChart
}

// NewPage creates a new page with the given title.
func NewPage(title string) *Page {
	return &Page{
		Title: title,
	}
}

// Add appends charts to the page.
func (p *Page) Add(charts ...*RenderedChart) {
	p.Charts = append(p.Charts, charts...)
}

// Warnings aggregates the warnings of all charts on the page.
func (p *Page) Warnings() []layout.Warning {
	var warnings []layout.Warning
	for _, c := range p.Charts {
		warnings = append(warnings, c.warnings...)
	}

	return warnings
}

// Render writes the page HTML to the given writer.
func (p *Page) Render(w io.Writer) error {
	page := components.NewPage()
	page.SetLayout(components.PageFlexLayout)
	page.SetPageTitle(p.Title)

	for _, c := range p.Charts {
		page.AddCharts(c.chart)
	}

	return page.Render(w)
}

// StaticImage renders the whole page in a headless browser and writes the
// resulting PNG.
func (p *Page) StaticImage(ctx context.Context, w io.Writer, opts ...image.Option) error {
	var buf bytes.Buffer
	if err := p.Render(&buf); err != nil {
		return err
	}

	return image.New(opts...).Render(ctx, w, buf.Bytes())
}
