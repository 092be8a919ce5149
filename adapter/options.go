package adapter //nolint:revive // it's okay for a small public package to use this name

import "strings"

// Option configures an [Adapter].
type Option func(*options)

type options struct {
	modelField      string
	variableField   string
	assetField      string
	seriesField     string
	defaultVariable string
	stats           []string
}

func optionsWithDefaults(opts []Option) options {
	o := options{
		modelField:      "model",
		variableField:   "variable",
		assetField:      "asset",
		defaultVariable: "all",
	}

	for _, apply := range opts {
		apply(&o)
	}

	// field matching is case-insensitive on the input side
	o.modelField = strings.ToLower(o.modelField)
	o.variableField = strings.ToLower(o.variableField)
	o.assetField = strings.ToLower(o.assetField)
	o.seriesField = strings.ToLower(o.seriesField)

	return o
}

// WithModelField sets the input field holding the model identifier.
//
// Defaults to "model"; the plural and "name"/"names" are accepted as aliases.
func WithModelField(name string) Option {
	return func(o *options) {
		if name == "" {
			return
		}

		o.modelField = name
	}
}

// WithVariableField sets the input field holding the variable identifier.
//
// Defaults to "variable".
func WithVariableField(name string) Option {
	return func(o *options) {
		if name == "" {
			return
		}

		o.variableField = name
	}
}

// WithAssetField sets the input field holding the dive-down asset reference.
//
// Defaults to "asset"; "image"/"images" are accepted as aliases.
func WithAssetField(name string) Option {
	return func(o *options) {
		if name == "" {
			return
		}

		o.assetField = name
	}
}

// WithSeriesField groups points into collections by an explicit field
// instead of the model identifier.
func WithSeriesField(name string) Option {
	return func(o *options) {
		o.seriesField = name
	}
}

// WithDefaultVariable sets the variable assigned to points whose input
// carries none. Defaults to "all".
func WithDefaultVariable(name string) Option {
	return func(o *options) {
		if name == "" {
			return
		}

		o.defaultVariable = name
	}
}

// WithStats restricts the statistic schema to the given names.
//
// An input point missing one of them is rejected.
func WithStats(names ...string) Option {
	return func(o *options) {
		o.stats = names
	}
}
