// Package cmd owns the implementation details of the CLI command.
package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"path"
	"strings"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/fredbi/esmviz"
	"github.com/fredbi/esmviz/adapter"
	"github.com/fredbi/esmviz/internal/pkg/config"
	"github.com/fredbi/esmviz/internal/pkg/image"
	"github.com/fredbi/esmviz/model"
)

// Command holds command line flags and executes the esmviz command.
//
// It knows how to load a configuration file in a [config.Config] and manage CLI flag configuration overrides.
//
// The main purpose of this package is to deal with io's: opening and closing files.
// All other invoked functionalities deal with streams or in-memory collections.
type Command struct {
	Config      string
	OutputFile  string
	Environment string
	Serve       string
	Report      bool
	Png         bool
	Debug       bool
	L           *slog.Logger
}

// NewCommand builds a CLI command with registered flags and an injected logger.
func NewCommand() *Command {
	// inject a structured logger
	cli := &Command{
		L: slog.Default().With(slog.String("module", "main")),
	}

	cli.registerFlags()

	return cli
}

// Parse command line flags and arguments.
func (*Command) Parse() error {
	return flag.CommandLine.Parse(os.Args[1:])
}

// Fatalf logs an error message then exits. The output is spewed on both stderr and the structured logger output.
func (c *Command) Fatalf(err error) {
	c.L.Error(err.Error())
	log.Fatalf("%v", err)
}

// Execute the CLI with flags and extra arguments.
//
// If no argument is passed, command line arguments (i.e. [os.Args]) are used.
func (c *Command) Execute(args ...string) error {
	if args == nil { // passing explicit args allows for testing Execute without altering [os.Args]
		args = c.args()
	}
	if len(args) == 0 { // no file is provided: assume stdin
		args = append(args, "-")
	}

	cfg, cleanup, err := c.prepareConfig()
	if err != nil {
		return err
	}
	defer cleanup()

	if c.Report {
		// just want to report about the content of the statistics files
		return c.report(cfg, args)
	}

	// 1. normalize input statistics and build a chart page
	page, err := c.buildPage(cfg, args)
	if err != nil {
		return err
	}

	if c.Serve != "" {
		// serve mode: expose the interactive page over HTTP, no file output
		return c.serve(page)
	}

	// 2. render the page as HTML, possibly to stdout, possibly to temp file
	htmlWriter, htmlCloser, err := getWriter(cfg.Outputs.HTMLFile, "HTML")
	if err != nil {
		return err
	}

	if err := page.Render(htmlWriter); err != nil {
		htmlCloser()
		return fmt.Errorf("rendering page: %w", err)
	}

	htmlCloser()

	if cfg.Outputs.PngFile == "" {
		// html only: we're done
		return nil
	}

	// 3. convert the HTML page to a PNG image, possibly to stdout
	return c.renderImage(cfg)
}

func (c *Command) serve(page *esmviz.Page) error {
	handler, err := pageHandler(page)
	if err != nil {
		return err
	}

	c.L.Info("serving interactive charts", slog.String("addr", c.Serve))

	server := &http.Server{
		Addr:              c.Serve,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	return server.ListenAndServe()
}

// pageHandler renders the page once and serves the resulting document.
func pageHandler(page *esmviz.Page) (http.Handler, error) {
	var buf bytes.Buffer
	if err := page.Render(&buf); err != nil {
		return nil, fmt.Errorf("rendering page: %w", err)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write(buf.Bytes())
	})

	return mux, nil
}

func (c *Command) renderImage(cfg *config.Config) error {
	html, err := os.ReadFile(cfg.Outputs.HTMLFile)
	if err != nil {
		return fmt.Errorf("reading HTML file: %q: %w", cfg.Outputs.HTMLFile, err)
	}

	pngWriter, pngCloser, err := getWriter(cfg.Outputs.PngFile, "PNG")
	if err != nil {
		return err
	}
	defer pngCloser()

	shot := cfg.Render.Screenshot
	r := image.New(
		image.WithWidth(shot.Width),
		image.WithHeight(shot.Height),
		image.WithSleep(shot.SleepDuration()),
	)

	t0 := time.Now()
	if err = r.Render(context.Background(), pngWriter, html); err != nil {
		return fmt.Errorf("rendering image: %w", err)
	}
	c.L.Info("rendered PNG screenshot", slog.Duration("duration", time.Since(t0)))

	return nil
}

func (*Command) args() []string {
	return flag.CommandLine.Args()
}

func (c *Command) registerFlags() {
	defaults := Command{
		Config:      "esmviz.yaml",
		OutputFile:  "-",
		Png:         false,
		Environment: "",
		Report:      false,
		Debug:       false,
	}

	flag.StringVar(&c.Config, "config", defaults.Config, "config file")
	flag.StringVar(&c.Config, "c", defaults.Config, "config file (shorthand)")
	flag.StringVar(&c.OutputFile, "output", defaults.OutputFile, "file output or - for standard output")
	flag.StringVar(&c.OutputFile, "o", defaults.OutputFile, "file output or - for standard output (shorthand)")
	flag.StringVar(&c.Environment, "environment", defaults.Environment, "environment string")
	flag.StringVar(&c.Environment, "e", defaults.Environment, "environment string (shorthand)")
	flag.StringVar(&c.Serve, "serve", defaults.Serve, "serve the interactive page over HTTP at this address instead of writing files")
	flag.BoolVar(&c.Report, "r", defaults.Report, "report input statistics only, no rendering (shorthand)")
	flag.BoolVar(&c.Report, "report", defaults.Report, "report input statistics only")
	flag.BoolVar(&c.Png, "png", defaults.Png, "enable PNG screenshot output")
	flag.BoolVar(&c.Debug, "debug", defaults.Debug, "dump the normalized collections to stderr")
}

func (c *Command) prepareConfig() (cfg *config.Config, cleanup func(), err error) {
	cfg, err = config.Load(c.Config)
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}

	if err = c.setConfig(cfg); err != nil {
		return nil, nil, fmt.Errorf("preparing config: %w", err)
	}

	if cfg.Outputs.IsTemp && !c.Report {
		cleanup = func() {
			_ = os.Remove(cfg.Outputs.HTMLFile)
		}

		return cfg, cleanup, err
	}

	return cfg, func() {}, err
}

// apply CLI flags overrides to YAML config.
func (c *Command) setConfig(cfg *config.Config) error {
	if c.Environment != "" {
		cfg.Environment = c.Environment
	}

	if c.OutputFile != "" && c.OutputFile != "-" {
		// an outfile is defined: infer the PNG file from the HTML file provided
		cfg.Outputs.HTMLFile = inferHTMLFile(c.OutputFile)
		if cfg.Outputs.PngFile == "" && c.Png {
			cfg.Outputs.PngFile = inferImageFile(cfg.Outputs.HTMLFile)
		}
	}

	if c.Report {
		return nil
	}

	switch {
	case cfg.Outputs.HTMLFile == "" && cfg.Outputs.PngFile == "":
		c.L.Info("output sent to standard output as HTML, no PNG image rendered")
		if c.Png {
			c.L.Info("set an output file to render a PNG image")
		}
		cfg.Outputs.HTMLFile = "-"
	case cfg.Outputs.HTMLFile == "" && cfg.Outputs.PngFile != "":
		c.L.Info("HTML generated as a temporary file to produce PNG")
		tmp, err := os.CreateTemp("", "esmviz.*.html")
		if err != nil {
			return err
		}
		cfg.Outputs.HTMLFile = tmp.Name()
		cfg.Outputs.IsTemp = true
		_ = tmp.Close()
	}

	return nil
}

// report produces a report that explores the input statistics.
func (c *Command) report(cfg *config.Config, args []string) error {
	a := newAdapter(cfg)
	t0 := time.Now()
	if err := a.LoadFiles(args...); err != nil {
		return fmt.Errorf("loading files: %w", err)
	}
	c.L.Info("normalized input statistics", slog.Duration("duration", time.Since(t0)))

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", " ")

	return enc.Encode(a.Report())
}

func (c *Command) buildPage(cfg *config.Config, args []string) (*esmviz.Page, error) {
	// 1. normalize input statistics passed as CLI args
	a := newAdapter(cfg)
	if err := a.LoadFiles(args...); err != nil {
		return nil, fmt.Errorf("loading files: %w", err)
	}
	collections := a.Collections()

	if c.Debug {
		spew.Fdump(os.Stderr, collections)
	}

	if len(cfg.Charts) == 0 {
		// no chart declared: generate a default set from the observed statistics
		generated := config.Generate(config.GenerateInput{Statistics: statNames(collections)})
		cfg.Charts = generated.Charts
	}

	// 2. assemble one chart per declaration
	styles := renderStyles(cfg.Render)
	page := esmviz.NewPage(cfg.Name)

	for _, decl := range cfg.Charts {
		var (
			chart *esmviz.RenderedChart
			err   error
		)

		switch decl.Type {
		case config.ChartTaylor:
			chart, err = esmviz.TaylorDiagram(collections, decl.Taylor.Spec(decl.Title), styles...)
		case config.ChartPortrait:
			chart, err = esmviz.PortraitPlot(collections, decl.Portrait.Spec(decl.Title), styles...)
		case config.ChartScatter:
			chart, err = esmviz.ScatterPlot(collections, decl.Scatter.Spec(decl.Title), styles...)
		}
		if err != nil {
			return nil, fmt.Errorf("building chart %q: %w", decl.ID, err)
		}

		for _, warning := range chart.Warnings() {
			c.L.Warn(warning.Message,
				slog.String("chart", decl.ID),
				slog.String("key", warning.Key.String()),
			)
		}

		page.Add(chart)
	}

	return page, nil
}

func newAdapter(cfg *config.Config) *adapter.Adapter {
	opts := []adapter.Option{
		adapter.WithModelField(cfg.Fields.Model),
		adapter.WithVariableField(cfg.Fields.Variable),
		adapter.WithAssetField(cfg.Fields.Asset),
	}

	if len(cfg.Statistics) > 0 {
		names := make([]string, 0, len(cfg.Statistics))
		for _, s := range cfg.Statistics {
			names = append(names, string(s.ID))
		}
		opts = append(opts, adapter.WithStats(names...))
	}

	return adapter.New(opts...)
}

func renderStyles(r config.Rendering) []esmviz.StyleOption {
	styles := []esmviz.StyleOption{
		esmviz.WithTheme(r.Theme),
		esmviz.WithSize(r.Width, r.Height),
		esmviz.WithPalette(r.Palette),
		esmviz.WithLegend(r.Legend != config.LegendPositionNone),
	}

	if r.Missing != "" {
		styles = append(styles, esmviz.WithMissingColor(r.Missing))
	}

	return styles
}

func getWriter(file, kind string) (wrt *os.File, cleanup func(), err error) {
	if file == "-" {
		return os.Stdout, func() {}, nil
	}

	wrt, err = os.Create(file)
	if err != nil {
		return nil, nil, fmt.Errorf("opening %s file for writing: %q: %w", kind, file, err)
	}

	cleanup = func() {
		_ = wrt.Close()
	}

	return wrt, cleanup, nil
}

func inferHTMLFile(base string) string {
	ext := path.Ext(base)
	image, _ := strings.CutSuffix(base, ext)

	return image + ".html"
}

func inferImageFile(base string) string {
	ext := path.Ext(base)
	image, _ := strings.CutSuffix(base, ext)

	return image + ".png"
}

// statNames lists the statistic names observed across collections, used to
// generate a config when none is declared.
func statNames(collections []*model.SeriesCollection) []model.StatName {
	seen := make(map[model.StatName]struct{})
	var names []model.StatName

	for _, c := range collections {
		for _, s := range c.Schema() {
			if _, dup := seen[s]; dup {
				continue
			}
			seen[s] = struct{}{}
			names = append(names, s)
		}
	}

	return names
}
