// Package layout computes positioned geometric primitives for the three
// chart types, as pure functions of the series collections and chart spec.
//
// All coordinates are expressed in a normalized space decoupled from pixel
// units: the portrait grid lives in cell indices with unit-cell sub-region
// polygons, the scatter plane in statistic (or rank) units, and the Taylor
// diagram in standard-deviation units over a square [−step, maxRange]²
// domain. Renderers apply margins and scaling on top.
package layout

import (
	"math"

	"github.com/fredbi/esmviz/model"
)

// Point is a 2-D coordinate in the normalized layout space.
type Point struct {
	X float64
	Y float64
}

// Warning records a non-fatal adjustment applied during layout, such as a
// clamped correlation.
type Warning struct {
	Key     model.Key
	Message string
}

// checkFinite verifies a statistic holds a usable number.
func checkFinite(key model.Key, stat model.StatName, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return &model.InvalidRangeError{Key: key, Stat: stat, Value: v, Reason: "value is not finite"}
	}

	return nil
}
