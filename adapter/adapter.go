// Package adapter normalizes heterogeneous comparison data into validated
// [model.SeriesCollection] values.
//
// Three input shapes are accepted: a named mapping of parallel arrays, a
// sequence of records, and a flat table (e.g. CSV rows). Anything that does
// not conform to the strict record model is rejected at this boundary rather
// than propagated into layout code.
package adapter

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/fredbi/esmviz/model"
	"github.com/go-viper/mapstructure/v2"
	"go.yaml.in/yaml/v3"
)

// Adapter normalizes raw inputs into series collections.
type Adapter struct {
	options

	collections []*model.SeriesCollection
	l           *slog.Logger
}

// New builds an [Adapter] ready to normalize inputs.
func New(opts ...Option) *Adapter {
	return &Adapter{
		options: optionsWithDefaults(opts),
		l:       slog.Default().With(slog.String("module", "adapter")),
	}
}

// record is the strict internal shape every input row is decoded into.
type record struct {
	Model    string         `mapstructure:"model"`
	Variable string         `mapstructure:"variable"`
	Asset    string         `mapstructure:"asset"`
	Series   string         `mapstructure:"series"`
	Stats    map[string]any `mapstructure:",remain"`
}

// Normalize converts a raw input value into series collections.
//
// Accepted shapes:
//   - map of parallel arrays: {"model": [...], "correlation": [...], ...}
//   - sequence of records: [{"model": "A", "correlation": 0.9, ...}, ...]
//   - flat table: [][]string with a header row
//
// No side effects beyond allocation: the raw input is never mutated.
func (a *Adapter) Normalize(raw any) ([]*model.SeriesCollection, error) {
	switch in := raw.(type) {
	case map[string]any:
		return a.fromColumns(in)
	case []any:
		return a.fromRecords(in)
	case []map[string]any:
		generic := make([]any, 0, len(in))
		for _, r := range in {
			generic = append(generic, r)
		}

		return a.fromRecords(generic)
	case [][]string:
		return a.fromTable(in)
	default:
		return nil, fmt.Errorf("unsupported input shape %T: want a mapping of arrays, a sequence of records, or a table", raw)
	}
}

// LoadFiles reads and normalizes one or more data files, accumulating the
// resulting collections. YAML and JSON documents are decoded as records or
// column mappings; ".csv" files as flat tables.
func (a *Adapter) LoadFiles(files ...string) error {
	for _, file := range files {
		var (
			reader io.ReadCloser
			err    error
		)

		if file == "-" {
			reader = os.Stdin
		} else {
			reader, err = os.Open(file)
			if err != nil {
				return fmt.Errorf("input file %q: %w", file, err)
			}
		}

		collections, err := a.load(reader, filepath.Ext(file))
		if file != "-" {
			_ = reader.Close()
		}
		if err != nil {
			return fmt.Errorf("normalizing %q: %w", file, err)
		}

		a.collections = append(a.collections, collections...)
	}

	a.l.Info("input data normalized",
		slog.Int("files", len(files)),
		slog.Int("collections", len(a.collections)),
	)

	return nil
}

// Collections returns the accumulated series collections.
func (a *Adapter) Collections() []*model.SeriesCollection {
	return a.collections
}

func (a *Adapter) load(r io.Reader, ext string) ([]*model.SeriesCollection, error) {
	if strings.EqualFold(ext, ".csv") {
		rows, err := csv.NewReader(r).ReadAll()
		if err != nil {
			return nil, fmt.Errorf("reading CSV: %w", err)
		}

		return a.fromTable(rows)
	}

	// YAML is a superset of JSON: one decoder covers both
	var raw any
	if err := yaml.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decoding input: %w", err)
	}

	return a.Normalize(raw)
}

// fromColumns handles a named mapping of parallel arrays.
func (a *Adapter) fromColumns(in map[string]any) ([]*model.SeriesCollection, error) {
	columns := make(map[string][]any, len(in))
	length := -1

	for name, v := range in {
		arr, ok := v.([]any)
		if !ok {
			return nil, fmt.Errorf("column %q: want an array, got %T", name, v)
		}
		if length >= 0 && len(arr) != length {
			return nil, fmt.Errorf("column %q: length %d does not match other columns (%d)", name, len(arr), length)
		}
		length = len(arr)
		columns[a.canonicalField(name)] = arr
	}

	if length <= 0 {
		return nil, fmt.Errorf("empty column mapping")
	}

	records := make([]any, 0, length)
	for i := range length {
		row := make(map[string]any, len(columns))
		for name, arr := range columns {
			row[name] = arr[i]
		}
		records = append(records, row)
	}

	return a.fromRecords(records)
}

// fromRecords handles a sequence of loosely-shaped records.
func (a *Adapter) fromRecords(in []any) ([]*model.SeriesCollection, error) {
	groups := make(map[string][]model.DataPoint)
	var order []string

	for i, rawRecord := range in {
		rec, err := a.decodeRecord(rawRecord)
		if err != nil {
			return nil, fmt.Errorf("record[%d]: %w", i, err)
		}

		point, err := a.toPoint(rec)
		if err != nil {
			return nil, fmt.Errorf("record[%d]: %w", i, err)
		}

		group := point.Model
		if a.seriesField != "" && rec.Series != "" {
			group = rec.Series
		}

		if _, seen := groups[group]; !seen {
			order = append(order, group)
		}
		groups[group] = append(groups[group], point)
	}

	collections := make([]*model.SeriesCollection, 0, len(order))
	for _, name := range order {
		c, err := model.NewSeriesCollection(name, groups[name]...)
		if err != nil {
			return nil, err
		}
		collections = append(collections, c)
	}

	return collections, nil
}

// fromTable handles a flat table whose first row is the header.
func (a *Adapter) fromTable(rows [][]string) ([]*model.SeriesCollection, error) {
	if len(rows) < 2 {
		return nil, fmt.Errorf("table input needs a header row and at least one data row")
	}

	header := rows[0]
	records := make([]any, 0, len(rows)-1)

	for i, row := range rows[1:] {
		if len(row) != len(header) {
			return nil, fmt.Errorf("table row %d: %d columns, header has %d", i+1, len(row), len(header))
		}

		rec := make(map[string]any, len(header))
		for j, name := range header {
			cell := strings.TrimSpace(row[j])
			if v, err := strconv.ParseFloat(cell, 64); err == nil {
				rec[name] = v

				continue
			}
			rec[name] = cell
		}
		records = append(records, rec)
	}

	return a.fromRecords(records)
}

func (a *Adapter) decodeRecord(raw any) (record, error) {
	asMap, ok := raw.(map[string]any)
	if !ok {
		return record{}, fmt.Errorf("want a record mapping, got %T", raw)
	}

	renamed := make(map[string]any, len(asMap))
	for name, v := range asMap {
		renamed[a.canonicalField(name)] = v
	}

	var rec record
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &rec,
	})
	if err != nil {
		return record{}, fmt.Errorf("creating record decoder: %w", err)
	}

	if err := dec.Decode(renamed); err != nil {
		return record{}, fmt.Errorf("decoding record: %w", err)
	}

	return rec, nil
}

// canonicalField maps configured field names and common aliases onto the
// strict record fields.
func (a *Adapter) canonicalField(name string) string {
	lower := strings.ToLower(name)

	switch {
	case lower == a.modelField || lower == a.modelField+"s" || lower == "name" || lower == "names":
		return "model"
	case lower == a.variableField || lower == a.variableField+"s":
		return "variable"
	case lower == a.assetField || lower == a.assetField+"s" || lower == "image" || lower == "images":
		return "asset"
	case a.seriesField != "" && lower == a.seriesField:
		return "series"
	default:
		return name
	}
}

func (a *Adapter) toPoint(rec record) (model.DataPoint, error) {
	if rec.Model == "" {
		return model.DataPoint{}, fmt.Errorf("missing model identifier (field %q)", a.modelField)
	}
	if rec.Variable == "" {
		rec.Variable = a.defaultVariable
	}

	stats := make(map[model.StatName]float64, len(rec.Stats))
	for name, v := range rec.Stats {
		f, ok := asFloat(v)
		if !ok {
			return model.DataPoint{}, fmt.Errorf("statistic %q: want a number, got %T", name, v)
		}
		stats[model.StatName(name)] = f
	}

	if len(a.stats) > 0 {
		kept := make(map[model.StatName]float64, len(a.stats))
		for _, name := range a.stats {
			f, ok := stats[model.StatName(name)]
			if !ok {
				return model.DataPoint{}, &model.MissingKeyError{
					Chart: "input", Kind: "statistic", Name: name,
				}
			}
			kept[model.StatName(name)] = f
		}
		stats = kept
	}

	point := model.DataPoint{
		Model:    rec.Model,
		Variable: rec.Variable,
		Stats:    stats,
		Asset:    rec.Asset,
	}

	return point, nil
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)

		return f, err == nil
	default:
		return 0, false
	}
}

// Report summarizes the normalized input for inspection.
type Report struct {
	Collections []CollectionReport `json:"collections"`
}

// CollectionReport describes one normalized series collection.
type CollectionReport struct {
	Name      string   `json:"name"`
	Points    int      `json:"points"`
	Models    []string `json:"models"`
	Variables []string `json:"variables"`
	Schema    []string `json:"statistics"`
	Assets    int      `json:"dive_down_assets"`
}

// Report produces a summary of the accumulated collections.
func (a *Adapter) Report() Report {
	var r Report

	for _, c := range a.collections {
		assets := 0
		for _, p := range c.Points() {
			if p.Asset != "" {
				assets++
			}
		}

		schema := make([]string, 0, len(c.Schema()))
		for _, s := range c.Schema() {
			schema = append(schema, s.String())
		}
		slices.Sort(schema)

		r.Collections = append(r.Collections, CollectionReport{
			Name:      c.Name(),
			Points:    c.Len(),
			Models:    c.Models(),
			Variables: c.Variables(),
			Schema:    schema,
			Assets:    assets,
		})
	}

	return r
}
