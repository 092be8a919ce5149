package esmviz

import (
	"fmt"

	"github.com/fredbi/esmviz/layout"
	"github.com/fredbi/esmviz/model"
	"github.com/go-echarts/go-echarts/v2/charts"
	echartsopts "github.com/go-echarts/go-echarts/v2/opts"
)

const (
	arcSamples       = 64
	pointSymbolSize  = 14
	refSymbolSize    = 18
	gridColor        = "#999999"
	gridEmphasis     = "#666666"
	rmseColor        = "#b0b0b0"
	annotationColor  = "#777777"
	axisCaptionColor = "#444444"
)

// TaylorDiagram assembles an interactive Taylor diagram from the given
// collections.
//
// Every data point is placed in polar coordinates (radius: standard
// deviation, angle: arccosine of the correlation). The reference grid is
// drawn as overlapped polylines: concentric standard deviation arcs, dashed
// RMSE arcs centered on the reference point, and correlation rays.
func TaylorDiagram(collections []*model.SeriesCollection, spec model.TaylorSpec, opts ...StyleOption) (*RenderedChart, error) {
	lay, err := layout.Taylor(collections, spec)
	if err != nil {
		return nil, err
	}
	spec = spec.WithDefaults()
	o := styleOptionsWithDefaults(opts)

	id := chartID(kindTaylor, spec.Title)
	width, height := o.squarePx()

	sc := charts.NewScatter()
	sc.ChartID = id

	sc.SetGlobalOptions(
		charts.WithInitializationOpts(echartsopts.Initialization{
			Theme:  o.theme,
			Width:  width,
			Height: height,
		}),
		charts.WithToolboxOpts(saveImageToolbox()),
		charts.WithTitleOpts(echartsopts.Title{Title: spec.Title}),
		charts.WithLegendOpts(legendOptions(o)),
		charts.WithTooltipOpts(echartsopts.Tooltip{
			Show:      echartsopts.Bool(true),
			Trigger:   "item",
			Formatter: echartsopts.FuncOpts(tooltipFormatter(id)),
		}),
		charts.WithXAxisOpts(hiddenXAxis(-lay.Step/2, lay.MaxRange)),
		charts.WithYAxisOpts(hiddenYAxis(-lay.Step/2, lay.MaxRange)),
	)

	meta := make(map[string]pointMeta, len(lay.Points))
	for _, p := range lay.Points {
		addTaylorPoint(sc, p, o)
		meta[p.Label] = taylorMeta(p, o, spec)
	}

	sc.Overlap(taylorGrid(lay))
	addTaylorAnnotations(sc, lay)

	sc.AddJSFuncs(metaScript(id, meta), clickHandler(id))

	return &RenderedChart{
		kind:     kindTaylor,
		title:    spec.Title,
		chart:    sc,
		warnings: lay.Warnings,
		taylor:   lay,
	}, nil
}

// addTaylorPoint appends one single-point scatter series, so that every
// model gets its own legend entry, color and marker shape.
func addTaylorPoint(sc *charts.Scatter, p layout.TaylorPoint, o *styleOptions) {
	color := o.registry.ColorFor(p.Key.Model)
	symbol := o.registry.SymbolFor(p.Key.Model)
	size := pointSymbolSize
	if p.Reference {
		color, symbol, size = o.refColor, o.refSymbol, refSymbolSize
	}

	sc.AddSeries(p.Label, []echartsopts.ScatterData{{
		Name:       p.Label,
		Value:      []interface{}{p.Pos.X, p.Pos.Y},
		Symbol:     symbol,
		SymbolSize: size,
	}},
		charts.WithItemStyleOpts(echartsopts.ItemStyle{Color: color}),
		charts.WithLabelOpts(echartsopts.Label{
			Show:      echartsopts.Bool(true),
			Position:  "right",
			Formatter: "{b}",
		}),
	)
}

func taylorMeta(p layout.TaylorPoint, o *styleOptions, spec model.TaylorSpec) pointMeta {
	m := pointMeta{
		Model:    p.Key.Model,
		Variable: p.Key.Variable,
		Asset:    p.Asset,
	}
	if p.Reference {
		m.Model = p.Label
		m.Variable = ""
	}

	for _, entry := range []struct {
		stat  model.StatName
		value float64
	}{
		{spec.StdStat, p.StdDev},
		{spec.CorrStat, p.Correlation},
		{model.StatRMSE, p.RMSE},
	} {
		if !o.wantStat(entry.stat) {
			continue
		}
		m.Stats = append(m.Stats, tooltipStatEntry{Label: statLabel(entry.stat), Value: entry.value})
	}

	return m
}

// taylorGrid renders the layout's arcs and rays as unnamed polyline series,
// which keeps them out of the legend and the tooltip.
func taylorGrid(lay *layout.TaylorLayout) *charts.Line {
	line := charts.NewLine()

	for _, arc := range lay.StdArcs {
		width := float32(1)
		color := gridColor
		if arc.Emphasis {
			width, color = 2, gridEmphasis
		}
		line.AddSeries("", polyline(arc.Sample(arcSamples)),
			charts.WithLineStyleOpts(echartsopts.LineStyle{Color: color, Width: width}),
			charts.WithLineChartOpts(echartsopts.LineChart{ShowSymbol: echartsopts.Bool(false)}),
		)
	}

	for _, arc := range lay.RMSEArcs {
		line.AddSeries("", polyline(arc.Sample(arcSamples)),
			charts.WithLineStyleOpts(echartsopts.LineStyle{Color: rmseColor, Width: 1, Type: "dashed"}),
			charts.WithLineChartOpts(echartsopts.LineChart{ShowSymbol: echartsopts.Bool(false)}),
		)
	}

	for _, ray := range lay.Rays {
		width := float32(1)
		color := gridColor
		if ray.Emphasis {
			width, color = 2, gridEmphasis
		}
		line.AddSeries("", polyline([]layout.Point{ray.From, ray.To}),
			charts.WithLineStyleOpts(echartsopts.LineStyle{Color: color, Width: width}),
			charts.WithLineChartOpts(echartsopts.LineChart{ShowSymbol: echartsopts.Bool(false)}),
		)
	}

	return line
}

// addTaylorAnnotations places the grid labels as invisible scatter points
// whose data name is the label text.
func addTaylorAnnotations(sc *charts.Scatter, lay *layout.TaylorLayout) {
	var labels []echartsopts.ScatterData

	for _, arc := range lay.StdArcs {
		if arc.Label == "" {
			continue
		}
		labels = append(labels, annotation(arc.Label, arc.LabelAt))
	}
	for _, arc := range lay.RMSEArcs {
		if arc.Label == "" {
			continue
		}
		labels = append(labels, annotation(arc.Label, arc.LabelAt))
	}
	for _, ray := range lay.Rays {
		labels = append(labels, annotation(ray.Label, layout.Point{
			X: ray.To.X * 1.04,
			Y: ray.To.Y * 1.04,
		}))
	}

	sc.AddSeries("", labels, charts.WithLabelOpts(echartsopts.Label{
		Show:      echartsopts.Bool(true),
		Position:  "top",
		Color:     annotationColor,
		Formatter: "{b}",
	}))

	// axis captions
	sc.AddSeries("", []echartsopts.ScatterData{
		annotation("Standard Deviation", layout.Point{X: lay.MaxRange / 2, Y: -lay.Step / 2.5}),
		annotation("Correlation", layout.Point{X: lay.MaxRange / 1.45, Y: lay.MaxRange / 1.38}),
	}, charts.WithLabelOpts(echartsopts.Label{
		Show:      echartsopts.Bool(true),
		Position:  "top",
		Color:     axisCaptionColor,
		Formatter: "{b}",
	}))
}

func annotation(text string, at layout.Point) echartsopts.ScatterData {
	return echartsopts.ScatterData{
		Name:       text,
		Value:      []interface{}{at.X, at.Y},
		Symbol:     "circle",
		SymbolSize: 0,
	}
}

func polyline(points []layout.Point) []echartsopts.LineData {
	data := make([]echartsopts.LineData, 0, len(points))
	for _, p := range points {
		data = append(data, echartsopts.LineData{Value: []interface{}{p.X, p.Y}})
	}

	return data
}

func hiddenXAxis(minValue, maxValue float64) echartsopts.XAxis {
	return echartsopts.XAxis{
		Type: "value",
		Min:  minValue,
		Max:  maxValue,
		AxisLabel: &echartsopts.AxisLabel{
			Show: echartsopts.Bool(false),
		},
		SplitLine: &echartsopts.SplitLine{
			Show: echartsopts.Bool(false),
		},
	}
}

func hiddenYAxis(minValue, maxValue float64) echartsopts.YAxis {
	return echartsopts.YAxis{
		Type: "value",
		Min:  minValue,
		Max:  maxValue,
		AxisLabel: &echartsopts.AxisLabel{
			Show: echartsopts.Bool(false),
		},
		SplitLine: &echartsopts.SplitLine{
			Show: echartsopts.Bool(false),
		},
	}
}

func legendOptions(o *styleOptions) echartsopts.Legend {
	legend := echartsopts.Legend{
		Show: echartsopts.Bool(o.showLegend),
	}
	if o.showLegend {
		legend.X = "right"
		legend.Y = "bottom"
	}

	return legend
}

func saveImageToolbox() echartsopts.Toolbox {
	return echartsopts.Toolbox{
		Left: "right",
		Feature: &echartsopts.ToolBoxFeature{
			SaveAsImage: &echartsopts.ToolBoxFeatureSaveAsImage{
				Title: "Save as image",
			},
		},
	}
}

// axisTitle derives a readable axis caption from a statistic name.
func axisTitle(stat model.StatName, override string) string {
	if override != "" {
		return override
	}

	switch stat {
	case model.StatStdDev:
		return "Standard Deviation"
	case model.StatCorrelation:
		return "Correlation"
	case model.StatRMSE:
		return "RMSE"
	default:
		return fmt.Sprint(stat)
	}
}
