package layout

import (
	"fmt"
	"math"

	"github.com/fredbi/esmviz/model"
)

// TaylorPoint is one positioned marker on a Taylor diagram.
type TaylorPoint struct {
	Series      string
	Label       string
	Key         model.Key
	Radius      float64
	Theta       float64 // radians, arccos of the clamped correlation
	Pos         Point
	StdDev      float64 // possibly normalized by the reference
	Correlation float64 // after clamping
	RMSE        float64
	Asset       string
	Reference   bool
	AtOrigin    bool // zero standard deviation, plotted at the origin
}

// TaylorLayout positions every data point in polar coordinates where the
// radius is the (optionally normalized) standard deviation and the angle is
// the arccosine of the correlation, along with the reference grid: standard
// deviation arcs, RMSE arcs centered on the reference point, and correlation
// rays.
type TaylorLayout struct {
	RefStd   float64 // effective reference radius (1 when normalized)
	MaxStd   float64
	MaxRange float64 // extent of the square plotting domain
	Step     float64
	Points   []TaylorPoint
	StdArcs  []Arc
	RMSEArcs []Arc
	Rays     []Ray
	Warnings []Warning
}

// Taylor computes the Taylor diagram layout for the given collections.
//
// Correlations outside [-1, 1] are clamped with a recorded warning rather
// than producing an invalid angle. A negative standard deviation is an
// [*model.InvalidRangeError]. A zero standard deviation places the point at
// the origin, flagged.
func Taylor(collections []*model.SeriesCollection, spec model.TaylorSpec) (*TaylorLayout, error) {
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

	refStd := spec.RefStd
	if spec.Normalize {
		refStd = 1
	}

	l := &TaylorLayout{
		RefStd: refStd,
		Step:   spec.Step,
	}

	compositeLabels := len(distinctVariables(collections)) > 1

	for _, c := range collections {
		for _, point := range c.Points() {
			tp, err := l.placePoint(c.Name(), point, spec, compositeLabels)
			if err != nil {
				return nil, err
			}
			l.Points = append(l.Points, tp)
		}
	}

	if !spec.HideReference {
		l.Points = append(l.Points, TaylorPoint{
			Series:      spec.ReferenceName,
			Label:       spec.ReferenceName,
			Radius:      refStd,
			Pos:         Point{X: refStd},
			StdDev:      refStd,
			Correlation: 1,
			Asset:       spec.ReferenceAsset,
			Reference:   true,
		})
	}

	for _, p := range l.Points {
		l.MaxStd = math.Max(l.MaxStd, p.Radius)
	}
	l.MaxRange = l.MaxStd*1.1 + spec.Step

	l.buildGrid()

	return l, nil
}

func (l *TaylorLayout) placePoint(series string, point model.DataPoint, spec model.TaylorSpec, composite bool) (TaylorPoint, error) {
	key := point.Key()

	std, _ := point.Stat(spec.StdStat)
	corr, _ := point.Stat(spec.CorrStat)

	if err := checkFinite(key, spec.StdStat, std); err != nil {
		return TaylorPoint{}, err
	}
	if err := checkFinite(key, spec.CorrStat, corr); err != nil {
		return TaylorPoint{}, err
	}
	if std < 0 {
		return TaylorPoint{}, &model.InvalidRangeError{
			Key: key, Stat: spec.StdStat, Value: std,
			Reason: "standard deviation must not be negative",
		}
	}

	if corr < -1 || corr > 1 {
		clamped := math.Max(-1, math.Min(1, corr))
		l.Warnings = append(l.Warnings, Warning{
			Key:     key,
			Message: fmt.Sprintf("correlation %v outside [-1, 1], clamped to %v", corr, clamped),
		})
		corr = clamped
	}

	radius := std
	if spec.Normalize {
		radius = std / spec.RefStd
	}

	atOrigin := radius == 0
	if atOrigin {
		l.Warnings = append(l.Warnings, Warning{Key: key, Message: "zero standard deviation, point plotted at the origin"})
	}

	theta := math.Acos(corr)
	rmse := math.Sqrt(l.RefStd*l.RefStd + radius*radius - 2*l.RefStd*radius*corr)

	label := point.Model
	if composite {
		label = point.Model + " · " + point.Variable
	}

	return TaylorPoint{
		Series:      series,
		Label:       label,
		Key:         key,
		Radius:      radius,
		Theta:       theta,
		Pos:         Point{X: radius * math.Cos(theta), Y: radius * math.Sin(theta)},
		StdDev:      radius,
		Correlation: corr,
		RMSE:        rmse,
		Asset:       point.Asset,
		AtOrigin:    atOrigin,
	}, nil
}

// buildGrid computes the standard deviation arcs, the RMSE arcs trimmed at
// the outermost arc and the y-axis, and the correlation rays.
func (l *TaylorLayout) buildGrid() {
	const eps = 1e-9

	var radii []float64
	for r := l.Step; r < l.MaxStd+2*l.Step-eps; r += l.Step {
		radii = append(radii, r)
	}
	if len(radii) == 0 {
		radii = []float64{l.Step}
	}
	outermost := radii[len(radii)-1]

	for i, r := range radii {
		l.StdArcs = append(l.StdArcs, Arc{
			Radius:   r,
			End:      math.Pi / 2,
			Label:    fmt.Sprintf("%.1f", r),
			LabelAt:  Point{X: r + 0.05, Y: 0},
			Emphasis: i == len(radii)-1,
		})

		l.RMSEArcs = append(l.RMSEArcs, l.rmseArc(r, outermost))
	}

	// thicker arc at the reference standard deviation
	l.StdArcs = append(l.StdArcs, Arc{
		Radius:   l.RefStd,
		End:      math.Pi / 2,
		Emphasis: true,
	})

	l.buildRays(l.MaxStd + l.Step)
}

func (l *TaylorLayout) rmseArc(radius, outermost float64) Arc {
	center := Point{X: l.RefStd}
	start, end := 0.0, math.Pi

	// start where the RMSE circle leaves the outermost standard deviation arc
	for _, p := range CircleIntersections(l.RefStd, 0, radius, 0, 0, outermost) {
		if p.X > 0 && p.Y > 0 {
			start = AngleWithXAxis(l.RefStd, 0, p.X, p.Y) * math.Pi / 180
		}
	}

	// end at the y-axis
	for _, p := range CircleYAxisIntersections(l.RefStd, 0, radius) {
		if p.Y > 0 {
			end = AngleWithXAxis(l.RefStd, 0, 0, p.Y) * math.Pi / 180
		}
	}

	// place the label where a virtual line from the reference point to the
	// upper-left corner crosses the arc
	labelAt := Point{X: 1 - radius/2, Y: radius / 1.18}
	labelAngle := 40.0
	for _, p := range LineCircleIntersections(l.RefStd, 0, 0, outermost, l.RefStd, 0, radius) {
		if p.X > 0 && p.Y > 0 {
			labelAt = p
			labelAngle = AngleWithXAxis(l.RefStd, 0, p.X, p.Y) - 90
		}
	}

	return Arc{
		Center:     center,
		Radius:     radius,
		Start:      start,
		End:        end,
		Label:      fmt.Sprintf("%.2f", radius),
		LabelAt:    labelAt,
		LabelAngle: labelAngle,
		Dashed:     true,
	}
}

func (l *TaylorLayout) buildRays(maxRadius float64) {
	rlocs := []float64{1, 0.99, 0.95, 0.9, 0.8, 0.7, 0.6, 0.5, 0.4, 0.3, 0.2, 0.1, 0}

	for _, corr := range rlocs {
		theta := math.Acos(corr)
		l.Rays = append(l.Rays, Ray{
			To:          Point{X: maxRadius * corr, Y: maxRadius * math.Sin(theta)},
			Correlation: corr,
			Label:       fmt.Sprintf("%g", corr),
			Emphasis:    corr == 0 || corr == 1,
		})
	}
}

func distinctVariables(collections []*model.SeriesCollection) []string {
	seen := make(map[string]struct{})
	var out []string

	for _, c := range collections {
		for _, v := range c.Variables() {
			if _, dup := seen[v]; dup {
				continue
			}
			seen[v] = struct{}{}
			out = append(out, v)
		}
	}

	return out
}
