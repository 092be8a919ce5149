package model

import (
	"fmt"
	"strings"
)

// SchemaMismatchError reports series whose statistic sets cannot be compared
// on a single chart.
type SchemaMismatchError struct {
	Series string
	Want   []StatName
	Got    []StatName
}

func (e *SchemaMismatchError) Error() string {
	return fmt.Sprintf(
		"series %q: statistic schema [%s] does not match expected [%s]",
		e.Series, joinStats(e.Got), joinStats(e.Want),
	)
}

// MissingKeyError reports a chart spec reference that does not resolve to a
// key present in the supplied series collections.
type MissingKeyError struct {
	Chart string
	Kind  string // "model", "variable" or "statistic"
	Name  string
}

func (e *MissingKeyError) Error() string {
	return fmt.Sprintf("chart %q: %s %q not found in the supplied series", e.Chart, e.Kind, e.Name)
}

// InvalidRangeError reports an out-of-domain statistic, such as a negative
// standard deviation or a non-finite coordinate.
type InvalidRangeError struct {
	Key    Key
	Stat   StatName
	Value  float64
	Reason string
}

func (e *InvalidRangeError) Error() string {
	return fmt.Sprintf("point %s: statistic %q=%v out of range: %s", e.Key, e.Stat, e.Value, e.Reason)
}

// AssetResolutionError reports a dive-down asset that could not be reached at
// interaction time. It is non-fatal: the chart remains usable and only the
// affected tooltip or panel shows a failure indicator.
type AssetResolutionError struct {
	Asset string
	Err   error
}

func (e *AssetResolutionError) Error() string {
	return fmt.Sprintf("diagnostic asset %q unreachable: %v", e.Asset, e.Err)
}

func (e *AssetResolutionError) Unwrap() error {
	return e.Err
}

func joinStats(stats []StatName) string {
	parts := make([]string, 0, len(stats))
	for _, s := range stats {
		parts = append(parts, string(s))
	}

	return strings.Join(parts, ", ")
}
