package layout

import (
	"math"

	"github.com/aclements/go-moremath/vec"
)

// CircleIntersections returns the intersection points of two circles.
//
// Circles that do not intersect, or are identical, yield no points.
func CircleIntersections(x1, y1, r1, x2, y2, r2 float64) []Point {
	d := math.Hypot(x2-x1, y2-y1)

	if d > r1+r2 || d < math.Abs(r1-r2) {
		return nil
	}
	if d == 0 && r1 == r2 {
		return nil
	}

	a := (r1*r1 - r2*r2 + d*d) / (2 * d)
	h := math.Sqrt(math.Abs(r1*r1 - a*a))

	// point where the chord through both intersections crosses the line
	// between the circle centers
	x3 := x1 + a*(x2-x1)/d
	y3 := y1 + a*(y2-y1)/d

	return []Point{
		{X: x3 + h*(y2-y1)/d, Y: y3 - h*(x2-x1)/d},
		{X: x3 - h*(y2-y1)/d, Y: y3 + h*(x2-x1)/d},
	}
}

// CircleYAxisIntersections returns where a circle centered at (x1, y1)
// crosses the y-axis.
func CircleYAxisIntersections(x1, y1, r float64) []Point {
	disc := r*r - x1*x1
	if disc < 0 {
		return nil
	}

	return []Point{
		{X: 0, Y: y1 + math.Sqrt(disc)},
		{X: 0, Y: y1 - math.Sqrt(disc)},
	}
}

// AngleWithXAxis returns the angle, in degrees within [0, 360), between the
// x-axis and the line from (x1, y1) to (x2, y2).
func AngleWithXAxis(x1, y1, x2, y2 float64) float64 {
	if x1 == x2 {
		if y2 > y1 {
			return 90
		}

		return 270
	}

	deg := math.Atan2(y2-y1, x2-x1) * 180 / math.Pi
	if deg < 0 {
		deg += 360
	}

	return deg
}

// LineCircleIntersections returns the intersection points of the line
// through (x1, y1) and (x2, y2) with the circle centered at (cx, cy).
func LineCircleIntersections(x1, y1, x2, y2, cx, cy, r float64) []Point {
	if x1 == x2 {
		// vertical line x = x1
		disc := r*r - (x1-cx)*(x1-cx)
		if disc < 0 {
			return nil
		}

		return []Point{
			{X: x1, Y: cy + math.Sqrt(disc)},
			{X: x1, Y: cy - math.Sqrt(disc)},
		}
	}

	m := (y2 - y1) / (x2 - x1)
	b := y1 - m*x1

	// substitute y = mx + b into (x-cx)² + (y-cy)² = r²
	qa := 1 + m*m
	qb := 2 * (m*(b-cy) - cx)
	qc := cx*cx + (b-cy)*(b-cy) - r*r

	disc := qb*qb - 4*qa*qc
	if disc < 0 {
		return nil
	}

	xi1 := (-qb + math.Sqrt(disc)) / (2 * qa)
	xi2 := (-qb - math.Sqrt(disc)) / (2 * qa)

	return []Point{
		{X: xi1, Y: m*xi1 + b},
		{X: xi2, Y: m*xi2 + b},
	}
}

// Arc is a circular arc primitive, parametric with a precomputed label
// anchor so renderers need no further trigonometry.
type Arc struct {
	Center     Point
	Radius     float64
	Start      float64 // radians
	End        float64 // radians
	Label      string
	LabelAt    Point
	LabelAngle float64 // degrees
	Dashed     bool
	Emphasis   bool // outermost boundary or reference arc
}

// Sample returns n points along the arc, ordered from Start to End.
func (a Arc) Sample(n int) []Point {
	if n < 2 {
		n = 2
	}

	angles := vec.Linspace(a.Start, a.End, n)
	points := make([]Point, 0, n)
	for _, theta := range angles {
		points = append(points, Point{
			X: a.Center.X + a.Radius*math.Cos(theta),
			Y: a.Center.Y + a.Radius*math.Sin(theta),
		})
	}

	return points
}

// Ray is a straight reference line from the origin, annotated with the
// correlation value it represents.
type Ray struct {
	From        Point
	To          Point
	Correlation float64
	Label       string
	Emphasis    bool // axis rays at correlation 0 and 1
}
