package config

import "github.com/fredbi/esmviz/model"

// ChartType identifies a chart kind ("taylor", "portrait", "scatter").
type ChartType string

// Supported chart types.
const (
	ChartTaylor   ChartType = "taylor"
	ChartPortrait ChartType = "portrait"
	ChartScatter  ChartType = "scatter"
)

// String returns the chart type as a plain string.
func (t ChartType) String() string {
	return string(t)
}

// IsValid reports whether the chart type is one of the known kinds.
func (t ChartType) IsValid() bool {
	switch t {
	case ChartTaylor, ChartPortrait, ChartScatter:
		return true
	default:
		return false
	}
}

// AllChartTypes returns all known chart types.
func AllChartTypes() []ChartType {
	return []ChartType{
		ChartTaylor,
		ChartPortrait,
		ChartScatter,
	}
}

// Taylor holds the Taylor diagram settings of a chart declaration.
type Taylor struct {
	RefStd         float64 `mapstructure:"ref_std"`
	Normalize      bool
	Step           float64
	HideReference  bool   `mapstructure:"hide_reference"`
	ReferenceName  string `mapstructure:"reference_name"`
	ReferenceAsset string `mapstructure:"reference_asset"`
	StdStat        string `mapstructure:"std_stat"`
	CorrStat       string `mapstructure:"corr_stat"`
}

// Spec converts the declaration into a chart specification.
func (o Taylor) Spec(title string) model.TaylorSpec {
	return model.TaylorSpec{
		Title:          title,
		RefStd:         o.RefStd,
		Normalize:      o.Normalize,
		Step:           o.Step,
		HideReference:  o.HideReference,
		ReferenceName:  o.ReferenceName,
		ReferenceAsset: o.ReferenceAsset,
		StdStat:        model.StatName(o.StdStat),
		CorrStat:       model.StatName(o.CorrStat),
	}.WithDefaults()
}

// Portrait holds the portrait plot settings of a chart declaration.
type Portrait struct {
	Rows          []string
	Columns       []string
	Stat          string
	SecondaryStat string    `mapstructure:"secondary_stat"`
	Normalization string    // "shared", "row" or "column"
	Bounds        []float64 // optional pinned color scale bounds
}

// Spec converts the declaration into a chart specification.
func (o Portrait) Spec(title string) model.PortraitSpec {
	return model.PortraitSpec{
		Title:         title,
		Rows:          o.Rows,
		Columns:       o.Columns,
		Stat:          model.StatName(o.Stat),
		SecondaryStat: model.StatName(o.SecondaryStat),
		Normalization: model.NormalizationMode(o.Normalization),
		Bounds:        o.Bounds,
	}
}

// Scatter holds the scatter plot settings of a chart declaration.
type Scatter struct {
	XStat      string `mapstructure:"x_stat"`
	YStat      string `mapstructure:"y_stat"`
	XTransform string `mapstructure:"x_transform"`
	YTransform string `mapstructure:"y_transform"`
}

// Spec converts the declaration into a chart specification.
func (o Scatter) Spec(title string) model.ScatterSpec {
	return model.ScatterSpec{
		Title:      title,
		XStat:      model.StatName(o.XStat),
		YStat:      model.StatName(o.YStat),
		XTransform: model.AxisTransform(o.XTransform),
		YTransform: model.AxisTransform(o.YTransform),
	}.WithDefaults()
}
