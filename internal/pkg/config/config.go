package config

import (
	"embed"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/fredbi/esmviz/model"
	"github.com/go-viper/mapstructure/v2"
	"go.yaml.in/yaml/v3"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

//go:embed default_config.yaml
var efs embed.FS

// Config holds the configuration for esmviz.
type Config struct {
	Name        string
	IsJSON      bool `mapstructure:"-"`
	Environment string
	Render      Rendering
	Outputs     Output `mapstructure:"-"`
	Statistics  []Statistic
	Charts      []Chart
	Fields      Fields

	statIndex  map[model.StatName]Statistic
	chartIndex map[string]Chart
}

// GetStatistic retrieves a statistic definition by its name.
func (c Config) GetStatistic(id model.StatName) (Statistic, bool) {
	v, ok := c.statIndex[id]

	return v, ok
}

// GetChart retrieves a chart declaration by its ID.
func (c Config) GetChart(id string) (Chart, bool) {
	v, ok := c.chartIndex[id]

	return v, ok
}

// StatNames returns the declared statistic names, in declaration order.
func (c Config) StatNames() []model.StatName {
	names := make([]model.StatName, 0, len(c.Statistics))
	for _, s := range c.Statistics {
		names = append(names, s.ID)
	}

	return names
}

// EncodeYAML serializes a [Config] to YAML into the provided writer.
//
// Runtime-only fields (IsJSON, Outputs) are excluded from the output.
func (c *Config) EncodeYAML(w io.Writer) error {
	var raw map[string]any

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Squash: true,
		Deep:   true,
		Result: &raw,
	})
	if err != nil {
		return fmt.Errorf("creating mapstructure decoder: %w", err)
	}

	if err := dec.Decode(c); err != nil {
		return fmt.Errorf("decoding config to map: %w", err)
	}

	return yaml.NewEncoder(w).Encode(raw)
}

// Rendering holds chart rendering settings (theme, size, palette).
type Rendering struct {
	Theme      string
	Width      int
	Height     int
	Palette    string
	Legend     LegendPosition
	Missing    string // color for portrait cells without data
	Screenshot Screenshot
}

// Screenshot configures the headless Chrome screenshot used for PNG rendering.
type Screenshot struct {
	Height int64
	Width  int64
	Sleep  string
}

// SleepDuration parses the Sleep field as a [time.Duration].
func (s Screenshot) SleepDuration() time.Duration {
	d, err := time.ParseDuration(s.Sleep)
	if d == 0 || err != nil {
		return 0
	}

	return d
}

// LegendPosition controls where the chart legend is displayed.
type LegendPosition string

// Supported legend positions.
const (
	LegendPositionNone   LegendPosition = "none"
	LegendPositionBottom LegendPosition = "bottom"
)

// Output holds the resolved output file paths for HTML and PNG rendering.
type Output struct {
	HTMLFile string
	PngFile  string
	IsTemp   bool
}

// Fields maps input record fields to their canonical roles.
type Fields struct {
	Model    string
	Variable string
	Asset    string
}

// Statistic defines an input statistic with its display title and axis label.
type Statistic struct {
	ID    model.StatName
	Title string
	Axis  string
}

// Chart declares one chart to build from the input statistics.
//
// Exactly the block matching Type is read; the other blocks are ignored.
type Chart struct {
	ID       string
	Type     ChartType
	Title    string
	Taylor   Taylor
	Portrait Portrait
	Scatter  Scatter
}

// Load a configuration file from the local file system.
func Load(file string) (*Config, error) {
	cfg, err := loadDefaults()
	if err != nil {
		return nil, fmt.Errorf("loading default config: %w", err)
	}

	fsys := os.DirFS(filepath.Dir(file))
	pth := filepath.Join(".", filepath.Base(file))

	return load(fsys, pth, cfg)
}

// LoadDefaults loads the default configuration from the embedded default_config.yaml.
func LoadDefaults() (*Config, error) {
	return loadDefaults()
}

func loadDefaults() (*Config, error) {
	return load(efs, "default_config.yaml", &Config{})
}

func load(fsys fs.FS, file string, cfg *Config) (*Config, error) {
	content, err := fs.ReadFile(fsys, file)
	if err != nil {
		return nil, err
	}

	var raw any
	err = yaml.Unmarshal(content, &raw)
	if err != nil {
		return nil, err
	}

	err = mapstructure.Decode(raw, cfg)
	if err != nil {
		return nil, err
	}

	// build indices and validate unique IDs
	cfg.statIndex = make(map[model.StatName]Statistic, len(cfg.Statistics))
	cfg.chartIndex = make(map[string]Chart, len(cfg.Charts))

	if err = cfg.validateStatistics(); err != nil {
		return nil, err
	}

	if err = cfg.validateCharts(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validateStatistics() error {
	for i, v := range c.Statistics {
		if v.ID == "" {
			return fmt.Errorf("invalid statistics: empty ID found: statistics[%d]", i)
		}
		if _, ok := c.statIndex[v.ID]; ok {
			return fmt.Errorf("invalid statistics: duplicate ID key found: %s", v.ID)
		}
		if v.Title == "" {
			v.Title = titleize(v.ID)
		}
		c.Statistics[i] = v
		c.statIndex[v.ID] = v
	}

	return nil
}

func (c *Config) validateCharts() (err error) {
	for i, v := range c.Charts {
		v, err = c.validateChart(v, i)
		if err != nil {
			return err
		}

		c.Charts[i] = v
		c.chartIndex[v.ID] = v
	}

	return nil
}

func (c *Config) validateChart(v Chart, i int) (vv Chart, err error) {
	if v.ID == "" {
		return vv, fmt.Errorf("invalid charts: empty ID found: charts[%d]", i)
	}
	if _, ok := c.chartIndex[v.ID]; ok {
		return vv, fmt.Errorf("invalid charts: duplicate ID key found: %s", v.ID)
	}
	if !v.Type.IsValid() {
		return vv, fmt.Errorf("invalid chart: unknown type: charts.%s.type=%v (should be one of %v)", v.ID, v.Type, AllChartTypes())
	}
	if v.Title == "" {
		v.Title = titleize(v.ID)
	}

	var refs []string
	switch v.Type {
	case ChartTaylor:
		refs = []string{v.Taylor.StdStat, v.Taylor.CorrStat}
	case ChartPortrait:
		refs = []string{v.Portrait.Stat, v.Portrait.SecondaryStat}
	case ChartScatter:
		refs = []string{v.Scatter.XStat, v.Scatter.YStat}
	}

	for _, ref := range refs {
		if ref == "" || len(c.Statistics) == 0 {
			continue
		}
		if _, ok := c.statIndex[model.StatName(ref)]; !ok {
			return vv, fmt.Errorf("invalid chart: statistic not declared: charts.%s references %q (declared: %v)", v.ID, ref, c.StatNames())
		}
	}

	return v, nil
}

type str interface {
	~string
}

func titleize[T str](in T) string {
	caser := cases.Title(language.English, cases.NoLower) // the case is stateful: cannot declare it globally

	return caser.String(strings.Map(func(r rune) rune {
		switch r {
		case '_', '-':
			return ' '
		default:
			return r
		}
	}, string(in),
	))
}

// GenerateInput holds the data needed by [Generate] to build a configuration
// from normalized input collections.
//
// This avoids importing the adapter package from here.
type GenerateInput struct {
	Statistics []model.StatName
}

// Generate builds a [Config] from the statistics observed in the input,
// declaring every chart the statistics support: a Taylor diagram when
// standard deviation and correlation are present, a portrait plot always,
// and a scatter plot when at least two statistics are available.
func Generate(input GenerateInput) *Config {
	defaults, err := loadDefaults()
	if err != nil {
		// embedded config must always parse
		panic(fmt.Sprintf("loading embedded defaults: %v", err))
	}

	cfg := &Config{
		Name:   "Generated Config",
		Render: defaults.Render,
		Fields: defaults.Fields,
	}

	defaultStats := make(map[model.StatName]Statistic, len(defaults.Statistics))
	for _, s := range defaults.Statistics {
		defaultStats[s.ID] = s
	}

	for _, name := range input.Statistics {
		if ds, ok := defaultStats[name]; ok {
			cfg.Statistics = append(cfg.Statistics, ds)
		} else {
			cfg.Statistics = append(cfg.Statistics, Statistic{
				ID:    name,
				Title: titleize(name),
			})
		}
	}

	stats := input.Statistics
	if slices.Contains(stats, model.StatStdDev) && slices.Contains(stats, model.StatCorrelation) {
		cfg.Charts = append(cfg.Charts, Chart{
			ID:    "taylor",
			Title: "Taylor Diagram",
			Type:  ChartTaylor,
			Taylor: Taylor{
				RefStd:    1,
				Normalize: true,
			},
		})
	}

	if len(stats) > 0 {
		cfg.Charts = append(cfg.Charts, Chart{
			ID:    "portrait",
			Title: "Portrait Plot",
			Type:  ChartPortrait,
		})
	}

	if len(stats) > 1 {
		cfg.Charts = append(cfg.Charts, Chart{
			ID:    "scatter",
			Title: "Scatter Plot",
			Type:  ChartScatter,
			Scatter: Scatter{
				XStat: string(stats[0]),
				YStat: string(stats[1]),
			},
		})
	}

	return cfg
}
