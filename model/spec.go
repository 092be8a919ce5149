package model

import (
	"fmt"
	"slices"
)

// NormalizationMode selects how the portrait color scale is computed.
type NormalizationMode string

// Supported portrait color-scale normalization modes.
const (
	NormalizationShared    NormalizationMode = "shared"
	NormalizationPerRow    NormalizationMode = "row"
	NormalizationPerColumn NormalizationMode = "column"
)

// AxisTransform selects how a scatter axis maps statistic values to
// coordinates.
type AxisTransform string

// Supported scatter axis transforms.
const (
	TransformLinear AxisTransform = "linear"
	TransformRank   AxisTransform = "rank"
)

// TaylorSpec configures a Taylor diagram.
//
// The reference point sits at (radius=RefStd, angle=0); when Normalize is
// set, radii are divided by RefStd and the reference moves to radius 1.
type TaylorSpec struct {
	Title          string
	RefStd         float64
	Normalize      bool
	Step           float64 // arc and grid spacing, defaults to 0.2
	HideReference  bool
	ReferenceName  string // defaults to "Reference"
	ReferenceAsset string
	StdStat        StatName // defaults to [StatStdDev]
	CorrStat       StatName // defaults to [StatCorrelation]
}

// WithDefaults returns a copy of the spec with unset fields filled in.
func (s TaylorSpec) WithDefaults() TaylorSpec {
	if s.Step <= 0 {
		s.Step = 0.2
	}
	if s.ReferenceName == "" {
		s.ReferenceName = "Reference"
	}
	if s.StdStat == "" {
		s.StdStat = StatStdDev
	}
	if s.CorrStat == "" {
		s.CorrStat = StatCorrelation
	}

	return s
}

// Validate checks the spec against the supplied collections.
func (s TaylorSpec) Validate(collections []*SeriesCollection) error {
	s = s.WithDefaults()

	if s.RefStd <= 0 {
		return &InvalidRangeError{
			Stat:   s.StdStat,
			Value:  s.RefStd,
			Reason: "reference standard deviation must be strictly positive",
		}
	}

	for _, stat := range []StatName{s.StdStat, s.CorrStat} {
		if err := requireStat(s.Title, stat, collections); err != nil {
			return err
		}
	}

	return nil
}

// PortraitSpec configures a portrait plot.
//
// Rows list variables and Columns list models. Empty lists derive the labels
// from the supplied collections, in first-seen order.
type PortraitSpec struct {
	Title         string
	Rows          []string
	Columns       []string
	Stat          StatName // primary statistic coloring the cells
	SecondaryStat StatName // optional, subdivides each cell
	Normalization NormalizationMode
	Bounds        []float64 // optional explicit color-scale bounds
}

// WithDefaults returns a copy of the spec with unset fields filled in from
// the supplied collections.
func (s PortraitSpec) WithDefaults(collections []*SeriesCollection) PortraitSpec {
	if s.Normalization == "" {
		s.Normalization = NormalizationShared
	}
	if s.Stat == "" && len(collections) > 0 {
		schema := collections[0].Schema()
		if slices.Contains(schema, StatScore) {
			s.Stat = StatScore
		} else if len(schema) > 0 {
			s.Stat = schema[0]
		}
	}
	if len(s.Rows) == 0 {
		s.Rows = distinctAcross(collections, (*SeriesCollection).Variables)
	}
	if len(s.Columns) == 0 {
		s.Columns = distinctAcross(collections, (*SeriesCollection).Models)
	}

	return s
}

// Validate checks the spec against the supplied collections.
//
// Every explicit row and column label must resolve to a variable or model
// present somewhere in the collections; absent (model, variable) combinations
// are permitted and become "no data" cells.
func (s PortraitSpec) Validate(collections []*SeriesCollection) error {
	s = s.WithDefaults(collections)

	switch s.Normalization {
	case NormalizationShared, NormalizationPerRow, NormalizationPerColumn:
	default:
		return fmt.Errorf("chart %q: unknown normalization mode %q", s.Title, s.Normalization)
	}

	if err := requireStat(s.Title, s.Stat, collections); err != nil {
		return err
	}
	if s.SecondaryStat != "" {
		if err := requireStat(s.Title, s.SecondaryStat, collections); err != nil {
			return err
		}
	}

	variables := distinctAcross(collections, (*SeriesCollection).Variables)
	for _, row := range s.Rows {
		if !slices.Contains(variables, row) {
			return &MissingKeyError{Chart: s.Title, Kind: "variable", Name: row}
		}
	}

	models := distinctAcross(collections, (*SeriesCollection).Models)
	for _, column := range s.Columns {
		if !slices.Contains(models, column) {
			return &MissingKeyError{Chart: s.Title, Kind: "model", Name: column}
		}
	}

	return nil
}

// ScatterSpec configures a scatter plot mapping two statistics to the X and
// Y axes.
type ScatterSpec struct {
	Title      string
	XStat      StatName
	YStat      StatName
	XTransform AxisTransform // defaults to [TransformLinear]
	YTransform AxisTransform
}

// WithDefaults returns a copy of the spec with unset fields filled in.
func (s ScatterSpec) WithDefaults() ScatterSpec {
	if s.XTransform == "" {
		s.XTransform = TransformLinear
	}
	if s.YTransform == "" {
		s.YTransform = TransformLinear
	}

	return s
}

// Validate checks the spec against the supplied collections.
func (s ScatterSpec) Validate(collections []*SeriesCollection) error {
	s = s.WithDefaults()

	for _, stat := range []StatName{s.XStat, s.YStat} {
		if stat == "" {
			return fmt.Errorf("chart %q: both X and Y statistics must be set", s.Title)
		}
		if err := requireStat(s.Title, stat, collections); err != nil {
			return err
		}
	}

	for _, transform := range []AxisTransform{s.XTransform, s.YTransform} {
		switch transform {
		case TransformLinear, TransformRank:
		default:
			return fmt.Errorf("chart %q: unknown axis transform %q", s.Title, transform)
		}
	}

	return nil
}

func requireStat(chart string, stat StatName, collections []*SeriesCollection) error {
	for _, c := range collections {
		if !c.HasStat(stat) {
			return &MissingKeyError{Chart: chart, Kind: "statistic", Name: string(stat)}
		}
	}

	return nil
}

func distinctAcross(collections []*SeriesCollection, pick func(*SeriesCollection) []string) []string {
	seen := make(map[string]struct{})
	var out []string

	for _, c := range collections {
		for _, v := range pick(c) {
			if _, dup := seen[v]; dup {
				continue
			}
			seen[v] = struct{}{}
			out = append(out, v)
		}
	}

	return out
}
