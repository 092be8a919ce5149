package esmviz

import (
	"github.com/fredbi/esmviz/layout"
	"github.com/fredbi/esmviz/model"
	"github.com/go-echarts/go-echarts/v2/charts"
	echartsopts "github.com/go-echarts/go-echarts/v2/opts"
)

// ScatterPlot assembles an interactive scatter plot mapping two statistics
// onto the X and Y axes.
//
// Tooltips always show the untransformed statistic values, even when an
// axis uses a rank transform.
func ScatterPlot(collections []*model.SeriesCollection, spec model.ScatterSpec, opts ...StyleOption) (*RenderedChart, error) {
	lay, err := layout.Scatter(collections, spec)
	if err != nil {
		return nil, err
	}
	spec = spec.WithDefaults()
	o := styleOptionsWithDefaults(opts)

	id := chartID(kindScatter, spec.Title)

	sc := charts.NewScatter()
	sc.ChartID = id

	sc.SetGlobalOptions(
		charts.WithInitializationOpts(echartsopts.Initialization{
			Theme:  o.theme,
			Width:  o.widthPx(),
			Height: o.heightPx(),
		}),
		charts.WithToolboxOpts(saveImageToolbox()),
		charts.WithTitleOpts(echartsopts.Title{Title: spec.Title}),
		charts.WithLegendOpts(legendOptions(o)),
		charts.WithTooltipOpts(echartsopts.Tooltip{
			Show:      echartsopts.Bool(true),
			Trigger:   "item",
			Formatter: echartsopts.FuncOpts(tooltipFormatter(id)),
		}),
		charts.WithXAxisOpts(echartsopts.XAxis{
			Name:  axisTitle(spec.XStat, o.xLabel),
			Type:  "value",
			Scale: echartsopts.Bool(true),
		}),
		charts.WithYAxisOpts(echartsopts.YAxis{
			Name:  axisTitle(spec.YStat, o.yLabel),
			Type:  "value",
			Scale: echartsopts.Bool(true),
		}),
	)

	meta := make(map[string]pointMeta, len(lay.Points))
	for _, p := range lay.Points {
		sc.AddSeries(p.Label, []echartsopts.ScatterData{{
			Name:       p.Label,
			Value:      []interface{}{p.Pos.X, p.Pos.Y},
			Symbol:     o.registry.SymbolFor(p.Key.Model),
			SymbolSize: pointSymbolSize,
		}},
			charts.WithItemStyleOpts(echartsopts.ItemStyle{
				Color: o.registry.ColorFor(p.Key.Model),
			}),
		)

		m := pointMeta{
			Model:    p.Key.Model,
			Variable: p.Key.Variable,
			Asset:    p.Asset,
		}
		for _, entry := range []struct {
			stat  model.StatName
			value float64
		}{
			{spec.XStat, p.RawX},
			{spec.YStat, p.RawY},
		} {
			if !o.wantStat(entry.stat) {
				continue
			}
			m.Stats = append(m.Stats, tooltipStatEntry{Label: statLabel(entry.stat), Value: entry.value})
		}
		meta[p.Label] = m
	}

	sc.AddJSFuncs(metaScript(id, meta), clickHandler(id))

	return &RenderedChart{
		kind:     kindScatter,
		title:    spec.Title,
		chart:    sc,
		warnings: lay.Warnings,
		scatter:  lay,
	}, nil
}
