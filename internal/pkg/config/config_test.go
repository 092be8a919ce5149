package config

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/fredbi/esmviz/model"
	"github.com/go-viper/mapstructure/v2"
	"go.yaml.in/yaml/v3"

	"github.com/go-openapi/testify/v2/assert"
	"github.com/go-openapi/testify/v2/require"
)

func TestLoadDefault(t *testing.T) {
	cfg, err := loadDefaults()
	require.NoError(t, err)

	require.NoError(t, dumpConfig(io.Discard, cfg))

	// verify statistics are loaded
	assert.Len(t, cfg.Statistics, 4)

	for _, name := range []model.StatName{model.StatStdDev, model.StatCorrelation, model.StatRMSE, model.StatScore} {
		_, ok := cfg.GetStatistic(name)
		assert.True(t, ok, "expected statistic %q in index", name)
	}

	// verify chart declarations
	assert.Len(t, cfg.Charts, 3)

	taylor, ok := cfg.GetChart("taylor")
	require.True(t, ok)
	assert.Equal(t, ChartTaylor, taylor.Type)
	assert.True(t, taylor.Taylor.Normalize)
	assert.InDelta(t, 1.0, taylor.Taylor.RefStd, 1e-9)

	// verify rendering defaults
	assert.Equal(t, "roma", cfg.Render.Theme)
	assert.Equal(t, "spectral", cfg.Render.Palette)
	assert.Equal(t, 900, cfg.Render.Width)
	assert.Equal(t, "model", cfg.Fields.Model)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(file, []byte(minimalValidYAML()), 0o600))

	cfg, err := load(os.DirFS(dir), "config.yaml", &Config{})
	require.NoError(t, err)

	assert.Len(t, cfg.Charts, 1)

	_, ok := cfg.GetChart("skill")
	assert.True(t, ok, "expected chart skill in index")
}

func TestLoadAbsolutePath(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(file, []byte(minimalValidYAML()), 0o600))

	cfg, err := Load(file)
	require.NoError(t, err)

	_, ok := cfg.GetChart("skill")
	assert.True(t, ok, "expected chart skill in index")

	// defaults are merged in
	assert.Equal(t, "roma", cfg.Render.Theme)
}

func TestLoadMissingFile(t *testing.T) {
	dir := t.TempDir()
	_, err := load(os.DirFS(dir), "nonexistent.yaml", &Config{})
	require.Error(t, err)
}

func TestLoadInvalidYAML(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(file, []byte(":\n  :\n    - [invalid"), 0o600))

	_, err := load(os.DirFS(dir), "bad.yaml", &Config{})
	require.Error(t, err)
}

func TestChartType(t *testing.T) {
	t.Run("String", func(t *testing.T) {
		assert.Equal(t, "taylor", ChartTaylor.String())
	})

	t.Run("IsValid", func(t *testing.T) {
		for _, v := range AllChartTypes() {
			assert.True(t, v.IsValid(), "expected %q to be valid", v)
		}

		invalid := []ChartType{"unknown", "", "Taylor", "TAYLOR"}
		for _, v := range invalid {
			assert.False(t, v.IsValid(), "expected %q to be invalid", v)
		}
	})
}

func TestValidationEmptyID(t *testing.T) {
	t.Run("statistics", func(t *testing.T) {
		_, err := loadYAML(t, `
statistics:
  - title: No ID
`)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "empty ID")
	})

	t.Run("charts", func(t *testing.T) {
		_, err := loadYAML(t, `
charts:
  - type: taylor
`)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "empty ID")
	})
}

func TestValidationDuplicateID(t *testing.T) {
	t.Run("statistics", func(t *testing.T) {
		_, err := loadYAML(t, `
statistics:
  - id: rmse
  - id: rmse
`)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "duplicate ID")
	})

	t.Run("charts", func(t *testing.T) {
		_, err := loadYAML(t, `
charts:
  - id: p1
    type: portrait
  - id: p1
    type: portrait
`)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "duplicate ID")
	})
}

func TestValidationChartType(t *testing.T) {
	_, err := loadYAML(t, `
charts:
  - id: c1
    type: pie
`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown type")
}

func TestValidationStatReferences(t *testing.T) {
	t.Run("undeclared statistic", func(t *testing.T) {
		_, err := loadYAML(t, `
statistics:
  - id: rmse
charts:
  - id: s1
    type: scatter
    scatter:
      x_stat: rmse
      y_stat: bias
`)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "statistic not declared")
		assert.Contains(t, err.Error(), "bias")
	})

	t.Run("no declared statistics skips the check", func(t *testing.T) {
		cfg, err := loadYAML(t, `
charts:
  - id: s1
    type: scatter
    scatter:
      x_stat: anything
      y_stat: goes
`)
		require.NoError(t, err)
		assert.Len(t, cfg.Charts, 1)
	})
}

func TestAutoTitle(t *testing.T) {
	cfg, err := loadYAML(t, `
statistics:
  - id: std_dev
charts:
  - id: my-taylor-diagram
    type: taylor
`)
	require.NoError(t, err)

	stat, ok := cfg.GetStatistic(model.StatStdDev)
	require.True(t, ok)
	assert.Equal(t, "Std Dev", stat.Title)

	chart, ok := cfg.GetChart("my-taylor-diagram")
	require.True(t, ok)
	assert.Equal(t, "My Taylor Diagram", chart.Title)
}

func TestTitleize(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"std_dev", "Std Dev"},
		{"taylor-diagram", "Taylor Diagram"},
		{"RMSE", "RMSE"},
		{"skill score", "Skill Score"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, titleize(tt.input))
		})
	}
}

func TestChartSpecs(t *testing.T) {
	t.Run("taylor", func(t *testing.T) {
		spec := Taylor{RefStd: 2.5, Normalize: true}.Spec("Title")
		assert.Equal(t, "Title", spec.Title)
		assert.InDelta(t, 2.5, spec.RefStd, 1e-9)
		assert.True(t, spec.Normalize)
		// defaults fill the unset statistic names
		assert.Equal(t, model.StatStdDev, spec.StdStat)
		assert.Equal(t, model.StatCorrelation, spec.CorrStat)
	})

	t.Run("portrait", func(t *testing.T) {
		spec := Portrait{Stat: "rmse", SecondaryStat: "score", Normalization: "row"}.Spec("Grid")
		assert.Equal(t, model.StatRMSE, spec.Stat)
		assert.Equal(t, model.StatScore, spec.SecondaryStat)
		assert.Equal(t, model.NormalizationPerRow, spec.Normalization)
	})

	t.Run("scatter", func(t *testing.T) {
		spec := Scatter{XStat: "rmse", YStat: "score", YTransform: "rank"}.Spec("XY")
		assert.Equal(t, model.StatRMSE, spec.XStat)
		assert.Equal(t, model.TransformLinear, spec.XTransform)
		assert.Equal(t, model.TransformRank, spec.YTransform)
	})
}

func TestScreenshotSleepDuration(t *testing.T) {
	assert.Equal(t, int64(2000), Screenshot{Sleep: "2s"}.SleepDuration().Milliseconds())
	assert.Zero(t, Screenshot{Sleep: "garbage"}.SleepDuration())
	assert.Zero(t, Screenshot{}.SleepDuration())
}

func TestGenerate(t *testing.T) {
	cfg := Generate(GenerateInput{
		Statistics: []model.StatName{model.StatStdDev, model.StatCorrelation, model.StatRMSE},
	})

	assert.Len(t, cfg.Statistics, 3)
	require.Len(t, cfg.Charts, 3)

	types := make([]ChartType, 0, len(cfg.Charts))
	for _, c := range cfg.Charts {
		types = append(types, c.Type)
	}
	assert.Contains(t, types, ChartTaylor)
	assert.Contains(t, types, ChartPortrait)
	assert.Contains(t, types, ChartScatter)
}

func TestGenerateWithoutTaylorStats(t *testing.T) {
	cfg := Generate(GenerateInput{
		Statistics: []model.StatName{model.StatRMSE},
	})

	require.Len(t, cfg.Charts, 1)
	assert.Equal(t, ChartPortrait, cfg.Charts[0].Type)
}

func TestEncodeYAML(t *testing.T) {
	cfg := Generate(GenerateInput{
		Statistics: []model.StatName{model.StatStdDev, model.StatCorrelation},
	})

	dir := t.TempDir()
	file := filepath.Join(dir, "generated.yaml")
	f, err := os.Create(file)
	require.NoError(t, err)

	require.NoError(t, cfg.EncodeYAML(f))
	require.NoError(t, f.Close())

	// verify the YAML can be loaded back as a valid config
	loaded, err := Load(file)
	require.NoError(t, err)

	assert.Len(t, loaded.Statistics, 2)
	assert.Len(t, loaded.Charts, 2)
}

// helpers

func loadYAML(t *testing.T, content string) (*Config, error) {
	t.Helper()

	dir := t.TempDir()
	file := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(file, []byte(content), 0o600))

	return load(os.DirFS(dir), "config.yaml", &Config{})
}

func dumpConfig(w io.Writer, cfg *Config) error {
	var raw map[string]any

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Squash: true,
		Deep:   true,
		Result: &raw,
	})
	if err != nil {
		return err
	}

	if err := dec.Decode(cfg); err != nil {
		return err
	}

	return yaml.NewEncoder(w).Encode(raw)
}

func minimalValidYAML() string {
	return `
statistics:
  - id: rmse
  - id: score
charts:
  - id: skill
    type: scatter
    scatter:
      x_stat: rmse
      y_stat: score
`
}
