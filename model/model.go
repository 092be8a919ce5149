// Package model defines the record model shared by the data adapter, the
// layout engine and the chart builders.
//
// The caller owns [DataPoint] and [SeriesCollection] values and passes them by
// read-only reference: no function in this module mutates them.
package model

import (
	"fmt"
	"slices"
)

// StatName identifies a named statistic carried by a [DataPoint]
// (e.g. "correlation", "std_dev").
type StatName string

// Statistic names commonly produced by model-evaluation pipelines.
const (
	StatCorrelation StatName = "correlation"
	StatStdDev      StatName = "std_dev"
	StatRMSE        StatName = "rmse"
	StatScore       StatName = "score"
)

// String returns the statistic name as a plain string.
func (s StatName) String() string {
	return string(s)
}

// Key uniquely identifies a data point within a chart.
type Key struct {
	Model    string
	Variable string
}

// String renders the key as "model/variable".
func (k Key) String() string {
	return k.Model + "/" + k.Variable
}

// DataPoint is one observation: a model evaluated on one variable, with one
// or more named scalar statistics and an optional dive-down asset.
//
// The asset is a file path or URL kept as a weak reference: it is resolved
// lazily when a tooltip or click is triggered, never at construction time.
type DataPoint struct {
	Model    string
	Variable string
	Stats    map[StatName]float64
	Asset    string
}

// Key returns the (model, variable) key of the data point.
func (p DataPoint) Key() Key {
	return Key{Model: p.Model, Variable: p.Variable}
}

// Stat retrieves a named statistic.
func (p DataPoint) Stat(name StatName) (float64, bool) {
	v, ok := p.Stats[name]

	return v, ok
}

// Schema returns the sorted statistic names of the data point.
func (p DataPoint) Schema() []StatName {
	schema := make([]StatName, 0, len(p.Stats))
	for name := range p.Stats {
		schema = append(schema, name)
	}
	slices.Sort(schema)

	return schema
}

// SeriesCollection is an ordered, named group of data points sharing one
// metric schema, typically one model or one experiment across variables.
type SeriesCollection struct {
	name   string
	points []DataPoint
	index  map[Key]int
	schema []StatName
}

// NewSeriesCollection validates and builds a [SeriesCollection].
//
// Duplicate (model, variable) keys are a construction-time error. All points
// must share the same set of statistic names: a divergent point yields a
// [*SchemaMismatchError].
func NewSeriesCollection(name string, points ...DataPoint) (*SeriesCollection, error) {
	c := &SeriesCollection{
		name:   name,
		points: points,
		index:  make(map[Key]int, len(points)),
	}

	for i, point := range points {
		if point.Model == "" || point.Variable == "" {
			return nil, fmt.Errorf("series %q: point[%d] must carry a model and a variable", name, i)
		}

		key := point.Key()
		if _, dup := c.index[key]; dup {
			return nil, fmt.Errorf("series %q: duplicate data point key %s", name, key)
		}
		c.index[key] = i

		schema := point.Schema()
		if len(schema) == 0 {
			return nil, fmt.Errorf("series %q: point %s carries no statistic", name, key)
		}

		if i == 0 {
			c.schema = schema

			continue
		}

		if !slices.Equal(c.schema, schema) {
			return nil, &SchemaMismatchError{Series: name, Want: c.schema, Got: schema}
		}
	}

	return c, nil
}

// Name returns the collection name, used for legends and style lookups.
func (c *SeriesCollection) Name() string {
	return c.name
}

// Len returns the number of data points.
func (c *SeriesCollection) Len() int {
	return len(c.points)
}

// Points returns the underlying data points. The slice is shared: callers
// must treat it as read-only.
func (c *SeriesCollection) Points() []DataPoint {
	return c.points
}

// Point retrieves a data point by its (model, variable) key.
func (c *SeriesCollection) Point(key Key) (DataPoint, bool) {
	i, ok := c.index[key]
	if !ok {
		return DataPoint{}, false
	}

	return c.points[i], true
}

// Schema returns the sorted statistic names shared by all points.
func (c *SeriesCollection) Schema() []StatName {
	return c.schema
}

// HasStat reports whether the collection schema carries the statistic.
func (c *SeriesCollection) HasStat(name StatName) bool {
	return slices.Contains(c.schema, name)
}

// Models returns the deduplicated model identifiers, in first-seen order.
func (c *SeriesCollection) Models() []string {
	return c.distinct(func(p DataPoint) string { return p.Model })
}

// Variables returns the deduplicated variable identifiers, in first-seen order.
func (c *SeriesCollection) Variables() []string {
	return c.distinct(func(p DataPoint) string { return p.Variable })
}

func (c *SeriesCollection) distinct(pick func(DataPoint) string) []string {
	seen := make(map[string]struct{}, len(c.points))
	var out []string

	for _, point := range c.points {
		v := pick(point)
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}

	return out
}

// CheckSchemas verifies that all collections that must be compared on one
// chart share the same statistic schema.
func CheckSchemas(collections ...*SeriesCollection) error {
	if len(collections) == 0 {
		return fmt.Errorf("at least one series collection is required")
	}

	want := collections[0].Schema()
	for _, c := range collections[1:] {
		if !slices.Equal(want, c.Schema()) {
			return &SchemaMismatchError{Series: c.Name(), Want: want, Got: c.Schema()}
		}
	}

	return nil
}
