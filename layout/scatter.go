package layout

import (
	"math"
	"sort"

	"github.com/fredbi/esmviz/model"
)

// ScatterPoint is one positioned marker on a scatter plot.
type ScatterPoint struct {
	Series string
	Label  string
	Key    model.Key
	Pos    Point   // after axis transforms
	RawX   float64 // untransformed statistics
	RawY   float64
	Asset  string
}

// ScatterLayout maps two statistics onto the X and Y axes.
type ScatterLayout struct {
	XStat    model.StatName
	YStat    model.StatName
	Points   []ScatterPoint
	XRange   [2]float64
	YRange   [2]float64
	Warnings []Warning
}

// Scatter computes the scatter plot layout for the given collections.
//
// Both axes default to a direct linear mapping; a rank transform replaces
// values by their average rank, so ties share a coordinate (no jitter).
func Scatter(collections []*model.SeriesCollection, spec model.ScatterSpec) (*ScatterLayout, error) {
	if err := model.CheckSchemas(collections...); err != nil {
		return nil, err
	}
	if err := spec.Validate(collections); err != nil {
		return nil, err
	}
	if _, err := indexPoints(collections); err != nil {
		return nil, err
	}
	spec = spec.WithDefaults()

	l := &ScatterLayout{
		XStat: spec.XStat,
		YStat: spec.YStat,
	}

	composite := len(distinctVariables(collections)) > 1

	for _, c := range collections {
		for _, point := range c.Points() {
			key := point.Key()
			x, _ := point.Stat(spec.XStat)
			y, _ := point.Stat(spec.YStat)

			if err := checkFinite(key, spec.XStat, x); err != nil {
				return nil, err
			}
			if err := checkFinite(key, spec.YStat, y); err != nil {
				return nil, err
			}

			label := point.Model
			if composite {
				label = point.Model + " · " + point.Variable
			}

			l.Points = append(l.Points, ScatterPoint{
				Series: c.Name(),
				Label:  label,
				Key:    key,
				Pos:    Point{X: x, Y: y},
				RawX:   x,
				RawY:   y,
				Asset:  point.Asset,
			})
		}
	}

	if spec.XTransform == model.TransformRank {
		applyRanks(l.Points, func(p *ScatterPoint) *float64 { return &p.Pos.X })
	}
	if spec.YTransform == model.TransformRank {
		applyRanks(l.Points, func(p *ScatterPoint) *float64 { return &p.Pos.Y })
	}

	l.XRange = coordRange(l.Points, func(p ScatterPoint) float64 { return p.Pos.X })
	l.YRange = coordRange(l.Points, func(p ScatterPoint) float64 { return p.Pos.Y })

	return l, nil
}

// applyRanks replaces one coordinate by its 1-based average rank. Tied
// values receive the same rank.
func applyRanks(points []ScatterPoint, coord func(*ScatterPoint) *float64) {
	order := make([]int, len(points))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return *coord(&points[order[a]]) < *coord(&points[order[b]])
	})

	ranks := make([]float64, len(points))
	for i := 0; i < len(order); {
		j := i
		for j < len(order) && *coord(&points[order[j]]) == *coord(&points[order[i]]) {
			j++
		}
		avg := float64(i+j+1) / 2 // mean of 1-based ranks i+1..j
		for k := i; k < j; k++ {
			ranks[order[k]] = avg
		}
		i = j
	}

	for i := range points {
		*coord(&points[i]) = ranks[i]
	}
}

func coordRange(points []ScatterPoint, pick func(ScatterPoint) float64) [2]float64 {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, p := range points {
		lo = math.Min(lo, pick(p))
		hi = math.Max(hi, pick(p))
	}
	if lo > hi {
		return [2]float64{0, 1}
	}

	return [2]float64{lo, hi}
}
