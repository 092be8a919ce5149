package layout

import (
	"fmt"
	"math"

	"github.com/fredbi/esmviz/model"
)

// Region is one colored sub-region of a portrait cell, with its polygon in
// unit-cell coordinates ([0,1]² within the cell).
type Region struct {
	Stat  model.StatName
	Value float64 // raw statistic
	Norm  float64 // value on the color scale (equals Value in shared mode)
	Poly  []Point
}

// Cell is one (row=variable, column=model) grid cell.
//
// Absent combinations are kept as flagged NoData cells so the grid stays
// rectangular.
type Cell struct {
	Row     int
	Col     int
	Key     model.Key
	Series  string
	NoData  bool
	Regions []Region
	Asset   string
}

// ColorScale is the shared value range coloring every cell.
type ColorScale struct {
	Min    float64
	Max    float64
	Bounds []float64 // optional discrete bounds requested by the spec
}

// PortraitLayout places every (variable, model) combination on a unit grid.
//
// Cells are stored row-major; Rows[0] is the top row.
type PortraitLayout struct {
	Rows       []string // variables, top first
	Columns    []string // models
	Stat       model.StatName
	Secondary  model.StatName
	Subdivided bool
	Cells      []Cell
	Scale      ColorScale
	Warnings   []Warning
}

// Cell returns the cell at (row, col).
func (l *PortraitLayout) Cell(row, col int) Cell {
	return l.Cells[row*len(l.Columns)+col]
}

// Portrait computes the portrait plot layout for the given collections.
//
// The color scale is shared across all cells unless a per-row or per-column
// normalization mode is requested, in which case every value is rescaled to
// [0, 1] within its row or column.
func Portrait(collections []*model.SeriesCollection, spec model.PortraitSpec) (*PortraitLayout, error) {
	if err := model.CheckSchemas(collections...); err != nil {
		return nil, err
	}
	if err := spec.Validate(collections); err != nil {
		return nil, err
	}
	spec = spec.WithDefaults(collections)

	index, err := indexPoints(collections)
	if err != nil {
		return nil, err
	}

	l := &PortraitLayout{
		Rows:       spec.Rows,
		Columns:    spec.Columns,
		Stat:       spec.Stat,
		Secondary:  spec.SecondaryStat,
		Subdivided: spec.SecondaryStat != "",
	}

	for row, variable := range l.Rows {
		for col, m := range l.Columns {
			key := model.Key{Model: m, Variable: variable}
			cell := Cell{Row: row, Col: col, Key: key}

			entry, ok := index[key]
			if !ok {
				cell.NoData = true
				l.Warnings = append(l.Warnings, Warning{Key: key, Message: "no data for cell"})
				l.Cells = append(l.Cells, cell)

				continue
			}

			cell.Series = entry.series
			cell.Asset = entry.point.Asset
			cell.Regions, err = l.regions(key, entry.point, spec)
			if err != nil {
				return nil, err
			}

			l.Cells = append(l.Cells, cell)
		}
	}

	l.normalize(spec)

	return l, nil
}

type indexedPoint struct {
	series string
	point  model.DataPoint
}

// indexPoints flattens the collections into one (model, variable) index,
// rejecting keys duplicated across collections.
func indexPoints(collections []*model.SeriesCollection) (map[model.Key]indexedPoint, error) {
	index := make(map[model.Key]indexedPoint)

	for _, c := range collections {
		for _, point := range c.Points() {
			key := point.Key()
			if prev, dup := index[key]; dup {
				return nil, fmt.Errorf(
					"duplicate data point key %s across series %q and %q",
					key, prev.series, c.Name(),
				)
			}
			index[key] = indexedPoint{series: c.Name(), point: point}
		}
	}

	return index, nil
}

func (l *PortraitLayout) regions(key model.Key, point model.DataPoint, spec model.PortraitSpec) ([]Region, error) {
	primary, _ := point.Stat(spec.Stat)
	if err := checkFinite(key, spec.Stat, primary); err != nil {
		return nil, err
	}

	if !l.Subdivided {
		return []Region{{
			Stat:  spec.Stat,
			Value: primary,
			Poly:  []Point{{0, 0}, {1, 0}, {1, 1}, {0, 1}},
		}}, nil
	}

	secondary, _ := point.Stat(spec.SecondaryStat)
	if err := checkFinite(key, spec.SecondaryStat, secondary); err != nil {
		return nil, err
	}

	// vertical half-split: primary on the left, secondary on the right
	return []Region{
		{
			Stat:  spec.Stat,
			Value: primary,
			Poly:  []Point{{0, 0}, {0.5, 0}, {0.5, 1}, {0, 1}},
		},
		{
			Stat:  spec.SecondaryStat,
			Value: secondary,
			Poly:  []Point{{0.5, 0}, {1, 0}, {1, 1}, {0.5, 1}},
		},
	}, nil
}

// normalize fills Region.Norm and the shared color scale.
func (l *PortraitLayout) normalize(spec model.PortraitSpec) {
	switch spec.Normalization {
	case model.NormalizationPerRow:
		for row := range l.Rows {
			l.rescaleGroup(func(c Cell) bool { return c.Row == row })
		}
		l.Scale = ColorScale{Min: 0, Max: 1}
	case model.NormalizationPerColumn:
		for col := range l.Columns {
			l.rescaleGroup(func(c Cell) bool { return c.Col == col })
		}
		l.Scale = ColorScale{Min: 0, Max: 1}
	default:
		lo, hi := math.Inf(1), math.Inf(-1)
		for ci := range l.Cells {
			for ri := range l.Cells[ci].Regions {
				r := &l.Cells[ci].Regions[ri]
				r.Norm = r.Value
				lo = math.Min(lo, r.Value)
				hi = math.Max(hi, r.Value)
			}
		}
		if lo > hi { // all cells empty
			lo, hi = 0, 1
		}
		for _, b := range spec.Bounds {
			lo = math.Min(lo, b)
			hi = math.Max(hi, b)
		}
		l.Scale = ColorScale{Min: lo, Max: hi, Bounds: spec.Bounds}
	}
}

func (l *PortraitLayout) rescaleGroup(in func(Cell) bool) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, cell := range l.Cells {
		if !in(cell) {
			continue
		}
		for _, r := range cell.Regions {
			lo = math.Min(lo, r.Value)
			hi = math.Max(hi, r.Value)
		}
	}

	for ci := range l.Cells {
		if !in(l.Cells[ci]) {
			continue
		}
		for ri := range l.Cells[ci].Regions {
			r := &l.Cells[ci].Regions[ri]
			if hi == lo {
				r.Norm = 0.5

				continue
			}
			r.Norm = (r.Value - lo) / (hi - lo)
		}
	}
}
