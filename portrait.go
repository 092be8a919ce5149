package esmviz

import (
	"math"

	"github.com/fredbi/esmviz/layout"
	"github.com/fredbi/esmviz/model"
	"github.com/go-echarts/go-echarts/v2/charts"
	echartsopts "github.com/go-echarts/go-echarts/v2/opts"
)

const portraitLabelAngle = 45

// PortraitPlot assembles an interactive portrait plot: a dense grid of
// colored cells with variables as rows and models as columns.
//
// When the spec requests a secondary statistic, every column splits into
// two sub-columns, primary statistic on the left and secondary on the
// right. Cells without data render in the missing-data color and keep a
// tooltip stating so.
func PortraitPlot(collections []*model.SeriesCollection, spec model.PortraitSpec, opts ...StyleOption) (*RenderedChart, error) {
	lay, err := layout.Portrait(collections, spec)
	if err != nil {
		return nil, err
	}
	o := styleOptionsWithDefaults(opts)

	id := chartID(kindPortrait, spec.Title)

	hm := charts.NewHeatMap()
	hm.ChartID = id

	scaleMin, scaleMax := portraitScale(lay, o)
	// one extra color band below the scale minimum holds the missing-data
	// sentinel, so regular values never blend into the missing color
	band := (scaleMax - scaleMin) / float64(len(o.scaleColors)-1)
	sentinel := scaleMin - band

	hm.SetGlobalOptions(
		charts.WithInitializationOpts(echartsopts.Initialization{
			Theme:  o.theme,
			Width:  o.widthPx(),
			Height: o.heightPx(),
		}),
		charts.WithToolboxOpts(saveImageToolbox()),
		charts.WithTitleOpts(echartsopts.Title{Title: spec.Title}),
		charts.WithLegendOpts(echartsopts.Legend{Show: echartsopts.Bool(false)}),
		charts.WithTooltipOpts(echartsopts.Tooltip{
			Show:      echartsopts.Bool(true),
			Trigger:   "item",
			Formatter: echartsopts.FuncOpts(tooltipFormatter(id)),
		}),
		charts.WithXAxisOpts(echartsopts.XAxis{
			Type: "category",
			AxisLabel: &echartsopts.AxisLabel{
				Rotate:   portraitLabelAngle,
				Interval: "0",
			},
			SplitArea: &echartsopts.SplitArea{Show: echartsopts.Bool(true)},
		}),
		charts.WithYAxisOpts(echartsopts.YAxis{
			Type: "category",
			Data: reversed(lay.Rows),
			AxisLabel: &echartsopts.AxisLabel{
				Interval: "0",
			},
			SplitArea: &echartsopts.SplitArea{Show: echartsopts.Bool(true)},
		}),
		charts.WithVisualMapOpts(echartsopts.VisualMap{
			Min: float32(sentinel),
			Max: float32(scaleMax),
			InRange: &echartsopts.VisualMapInRange{
				Color: append([]string{o.missingColor}, o.scaleColors...),
			},
		}),
	)

	hm.SetXAxis(portraitColumns(lay))

	data, meta := portraitCells(lay, sentinel)
	hm.AddSeries("", data)

	hm.AddJSFuncs(metaScript(id, meta), clickHandler(id))

	return &RenderedChart{
		kind:     kindPortrait,
		title:    spec.Title,
		chart:    hm,
		warnings: lay.Warnings,
		portrait: lay,
	}, nil
}

// portraitScale resolves the bounds of the color scale. Explicit style
// bounds widen the data-derived range rather than replace it: a real value
// outside pinned bounds must stay on the ramp, never in the sentinel band
// reserved for missing cells.
func portraitScale(lay *layout.PortraitLayout, o *styleOptions) (float64, float64) {
	lo, hi := lay.Scale.Min, lay.Scale.Max
	if len(o.scaleBounds) == 2 {
		lo = math.Min(lo, o.scaleBounds[0])
		hi = math.Max(hi, o.scaleBounds[1])
	}
	if hi-lo < 1e-12 {
		hi = lo + 1
	}

	return lo, hi
}

// portraitColumns returns the x-axis categories, doubled when every cell
// splits into primary and secondary sub-columns.
func portraitColumns(lay *layout.PortraitLayout) []string {
	if !lay.Subdivided {
		return lay.Columns
	}

	labels := make([]string, 0, 2*len(lay.Columns))
	for _, m := range lay.Columns {
		labels = append(labels, m, m+" ("+string(lay.Secondary)+")")
	}

	return labels
}

func portraitCells(lay *layout.PortraitLayout, sentinel float64) ([]echartsopts.HeatMapData, map[string]pointMeta) {
	subCols := 1
	if lay.Subdivided {
		subCols = 2
	}

	data := make([]echartsopts.HeatMapData, 0, len(lay.Cells)*subCols)
	meta := make(map[string]pointMeta, len(lay.Cells)*subCols)

	for _, cell := range lay.Cells {
		yIdx := len(lay.Rows) - 1 - cell.Row

		for sub := 0; sub < subCols; sub++ {
			xIdx := cell.Col*subCols + sub

			name := cell.Key.Model + " · " + cell.Key.Variable
			value := sentinel
			m := pointMeta{
				Model:    cell.Key.Model,
				Variable: cell.Key.Variable,
				Asset:    cell.Asset,
				NoData:   cell.NoData,
			}

			if !cell.NoData {
				region := cell.Regions[sub]
				value = region.Norm
				m.Stats = append(m.Stats, tooltipStatEntry{
					Label: statLabel(region.Stat),
					Value: region.Value,
				})
			}
			if lay.Subdivided {
				name += " · " + subColumnStat(lay, sub)
			}

			data = append(data, echartsopts.HeatMapData{
				Name:  name,
				Value: [3]interface{}{xIdx, yIdx, value},
			})
			meta[name] = m
		}
	}

	return data, meta
}

func subColumnStat(lay *layout.PortraitLayout, sub int) string {
	if sub == 0 {
		return string(lay.Stat)
	}

	return string(lay.Secondary)
}

func reversed(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[len(in)-1-i] = s
	}

	return out
}
