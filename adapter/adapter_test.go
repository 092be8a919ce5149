package adapter

import (
	"path/filepath"
	"testing"

	"github.com/fredbi/esmviz/model"
	"github.com/go-openapi/testify/v2/assert"
	"github.com/go-openapi/testify/v2/require"
)

func TestNormalizeRecords(t *testing.T) {
	a := New()

	collections, err := a.Normalize([]map[string]any{
		{"model": "CESM2", "variable": "tas", "std_dev": 1.1, "correlation": 0.9},
		{"model": "CESM2", "variable": "pr", "std_dev": 0.7, "correlation": 0.6},
		{"model": "GFDL-CM4", "variable": "tas", "std_dev": 0.8, "correlation": 0.7},
	})
	require.NoError(t, err)

	// grouped by model, in first-seen order
	require.Len(t, collections, 2)
	assert.Equal(t, "CESM2", collections[0].Name())
	assert.Equal(t, 2, collections[0].Len())
	assert.Equal(t, "GFDL-CM4", collections[1].Name())

	point, ok := collections[0].Point(model.Key{Model: "CESM2", Variable: "tas"})
	require.True(t, ok)
	std, ok := point.Stat(model.StatStdDev)
	require.True(t, ok)
	assert.InDelta(t, 1.1, std, 1e-9)
}

func TestNormalizeColumns(t *testing.T) {
	a := New()

	collections, err := a.Normalize(map[string]any{
		"model":       []any{"CESM2", "GFDL-CM4"},
		"variable":    []any{"tas", "tas"},
		"std_dev":     []any{1.1, 0.8},
		"correlation": []any{0.9, 0.7},
	})
	require.NoError(t, err)

	require.Len(t, collections, 2)
	assert.Equal(t, []string{"tas"}, collections[0].Variables())

	t.Run("mismatched column lengths", func(t *testing.T) {
		_, err := a.Normalize(map[string]any{
			"model":   []any{"CESM2", "GFDL-CM4"},
			"std_dev": []any{1.1},
		})
		require.ErrorContains(t, err, "does not match")
	})

	t.Run("scalar column", func(t *testing.T) {
		_, err := a.Normalize(map[string]any{"model": "CESM2"})
		require.ErrorContains(t, err, "want an array")
	})

	t.Run("empty mapping", func(t *testing.T) {
		_, err := a.Normalize(map[string]any{})
		require.ErrorContains(t, err, "empty")
	})
}

func TestNormalizeTable(t *testing.T) {
	a := New()

	collections, err := a.Normalize([][]string{
		{"model", "variable", "correlation"},
		{"CESM2", "tas", "0.9"},
		{"GFDL-CM4", "tas", "0.7"},
	})
	require.NoError(t, err)

	require.Len(t, collections, 2)
	point, ok := collections[1].Point(model.Key{Model: "GFDL-CM4", Variable: "tas"})
	require.True(t, ok)
	corr, ok := point.Stat(model.StatCorrelation)
	require.True(t, ok)
	assert.InDelta(t, 0.7, corr, 1e-9)

	t.Run("ragged row", func(t *testing.T) {
		_, err := a.Normalize([][]string{
			{"model", "correlation"},
			{"CESM2"},
		})
		require.ErrorContains(t, err, "columns")
	})

	t.Run("header only", func(t *testing.T) {
		_, err := a.Normalize([][]string{{"model", "correlation"}})
		require.ErrorContains(t, err, "header row")
	})
}

func TestNormalizeUnsupportedShape(t *testing.T) {
	_, err := New().Normalize(42)
	require.ErrorContains(t, err, "unsupported input shape")
}

func TestNormalizeNonNumericStat(t *testing.T) {
	_, err := New().Normalize([]map[string]any{
		{"model": "CESM2", "variable": "tas", "correlation": []any{0.9}},
	})
	require.ErrorContains(t, err, "want a number")
}

func TestNormalizeMissingModel(t *testing.T) {
	_, err := New().Normalize([]map[string]any{
		{"variable": "tas", "correlation": 0.9},
	})
	require.ErrorContains(t, err, "missing model identifier")
}

func TestLoadFilesYAMLRecords(t *testing.T) {
	a := New()
	require.NoError(t, a.LoadFiles(filepath.Join("testdata", "records.yaml")))

	collections := a.Collections()
	require.Len(t, collections, 2)
	assert.Equal(t, []string{"tas", "pr"}, collections[0].Variables())

	point, ok := collections[0].Point(model.Key{Model: "CESM2", Variable: "tas"})
	require.True(t, ok)
	assert.Equal(t, "assets/cesm2_tas.png", point.Asset)
}

func TestLoadFilesYAMLColumns(t *testing.T) {
	a := New()
	require.NoError(t, a.LoadFiles(filepath.Join("testdata", "columns.yaml")))

	collections := a.Collections()
	require.Len(t, collections, 3)

	// plural headers and the "images" alias map onto the record fields
	point, ok := collections[0].Point(model.Key{Model: "CESM2", Variable: "tas"})
	require.True(t, ok)
	assert.Equal(t, "assets/cesm2.png", point.Asset)
	assert.ElementsMatch(t, []model.StatName{model.StatStdDev, model.StatCorrelation}, point.Schema())
}

func TestLoadFilesCSV(t *testing.T) {
	a := New()
	require.NoError(t, a.LoadFiles(filepath.Join("testdata", "statistics.csv")))

	collections := a.Collections()
	require.Len(t, collections, 3)

	point, ok := collections[2].Point(model.Key{Model: "UKESM1", Variable: "tas"})
	require.True(t, ok)
	rmse, ok := point.Stat(model.StatRMSE)
	require.True(t, ok)
	assert.InDelta(t, 0.55, rmse, 1e-9)
}

func TestLoadFilesAccumulates(t *testing.T) {
	a := New(WithStats("std_dev", "correlation"))
	require.NoError(t, a.LoadFiles(
		filepath.Join("testdata", "records.yaml"),
		filepath.Join("testdata", "statistics.csv"),
	))

	assert.Len(t, a.Collections(), 5)
}

func TestLoadFilesMissingFile(t *testing.T) {
	err := New().LoadFiles(filepath.Join("testdata", "nope.yaml"))
	require.ErrorContains(t, err, "nope.yaml")
}

func TestLoadFilesUndecodable(t *testing.T) {
	require.Error(t, New().LoadFiles(filepath.Join("testdata", "..", "adapter.go")))
}

func TestWithStats(t *testing.T) {
	a := New(WithStats("correlation"))

	collections, err := a.Normalize([]map[string]any{
		{"model": "CESM2", "variable": "tas", "std_dev": 1.1, "correlation": 0.9},
	})
	require.NoError(t, err)

	point, ok := collections[0].Point(model.Key{Model: "CESM2", Variable: "tas"})
	require.True(t, ok)
	assert.Equal(t, []model.StatName{model.StatCorrelation}, point.Schema())

	t.Run("missing declared statistic", func(t *testing.T) {
		_, err := a.Normalize([]map[string]any{
			{"model": "CESM2", "variable": "tas", "correlation": 0.9},
			{"model": "GFDL-CM4", "variable": "tas", "std_dev": 0.8},
		})
		require.Error(t, err)

		var missing *model.MissingKeyError
		require.ErrorAs(t, err, &missing)
		assert.Equal(t, "correlation", missing.Name)
	})
}

func TestWithSeriesField(t *testing.T) {
	a := New(WithSeriesField("experiment"))

	collections, err := a.Normalize([]map[string]any{
		{"model": "CESM2", "variable": "tas", "experiment": "historical", "correlation": 0.9},
		{"model": "GFDL-CM4", "variable": "tas", "experiment": "historical", "correlation": 0.7},
		{"model": "CESM2", "variable": "pr", "experiment": "ssp585", "correlation": 0.6},
	})
	require.NoError(t, err)

	require.Len(t, collections, 2)
	assert.Equal(t, "historical", collections[0].Name())
	assert.Equal(t, 2, collections[0].Len())
	assert.Equal(t, "ssp585", collections[1].Name())
}

func TestWithDefaultVariable(t *testing.T) {
	a := New(WithDefaultVariable("global"))

	collections, err := a.Normalize([]map[string]any{
		{"model": "CESM2", "correlation": 0.9},
	})
	require.NoError(t, err)

	_, ok := collections[0].Point(model.Key{Model: "CESM2", Variable: "global"})
	assert.True(t, ok)
}

func TestCustomFieldNames(t *testing.T) {
	a := New(
		WithModelField("simulation"),
		WithVariableField("field"),
		WithAssetField("plot"),
	)

	collections, err := a.Normalize([]map[string]any{
		{"simulation": "CESM2", "field": "tas", "plot": "cesm2.png", "correlation": 0.9},
	})
	require.NoError(t, err)

	point, ok := collections[0].Point(model.Key{Model: "CESM2", Variable: "tas"})
	require.True(t, ok)
	assert.Equal(t, "cesm2.png", point.Asset)
}

func TestCustomFieldNamesAreCaseInsensitive(t *testing.T) {
	a := New(
		WithModelField("Model"),
		WithVariableField("Variable"),
		WithAssetField("Plot"),
	)

	collections, err := a.Normalize([]map[string]any{
		{"Model": "CESM2", "variable": "tas", "PLOT": "cesm2.png", "correlation": 0.9},
	})
	require.NoError(t, err)

	point, ok := collections[0].Point(model.Key{Model: "CESM2", Variable: "tas"})
	require.True(t, ok)
	assert.Equal(t, "cesm2.png", point.Asset)
}

func TestReport(t *testing.T) {
	a := New()
	require.NoError(t, a.LoadFiles(filepath.Join("testdata", "records.yaml")))

	report := a.Report()
	require.Len(t, report.Collections, 2)

	first := report.Collections[0]
	assert.Equal(t, "CESM2", first.Name)
	assert.Equal(t, 2, first.Points)
	assert.Equal(t, []string{"CESM2"}, first.Models)
	assert.Equal(t, []string{"tas", "pr"}, first.Variables)
	assert.Equal(t, []string{"correlation", "std_dev"}, first.Schema)
	assert.Equal(t, 1, first.Assets)
}
