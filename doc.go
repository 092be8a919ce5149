// Package esmviz builds interactive comparison charts for climate model
// benchmarking: Taylor diagrams, portrait plots and scatter plots.
//
// The package is a thin assembly layer: statistics enter as
// [model.SeriesCollection] values (usually produced by the adapter
// package), the layout package positions them in chart-specific geometry,
// and the entry points here ([TaylorDiagram], [PortraitPlot],
// [ScatterPlot]) bind the geometry to echarts series, tooltips and click
// panels. The result is a [RenderedChart] that writes standalone HTML,
// embeds on a [Page], or rasterizes to PNG through a headless browser.
//
// Chart construction is pure: entry points share no mutable state and may
// run concurrently, except that charts meant to share colors must use the
// same [StyleRegistry].
package esmviz
