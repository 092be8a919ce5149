package cmd

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fredbi/esmviz/internal/pkg/config"

	"github.com/go-openapi/testify/v2/assert"
	"github.com/go-openapi/testify/v2/require"
)

func TestNewCommand(t *testing.T) {
	cli := NewCommand()
	require.NotNil(t, cli)
	assert.NotNil(t, cli.L)
	// Verify defaults from registerFlags
	assert.Equal(t, "esmviz.yaml", cli.Config)
	assert.Equal(t, "-", cli.OutputFile)
}

func TestInferHTMLFile(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"output.png", "output.html"},
		{"output.html", "output.html"},
		{"output", "output.html"},
		{"path/to/output.png", "path/to/output.html"},
		{"output.svg", "output.html"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, inferHTMLFile(tt.input))
		})
	}
}

func TestInferImageFile(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"output.html", "output.png"},
		{"output.png", "output.png"},
		{"output", "output.png"},
		{"path/to/output.html", "path/to/output.png"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, inferImageFile(tt.input))
		})
	}
}

func TestSetConfigEnvironment(t *testing.T) {
	cfg := &config.Config{}
	cli := &Command{
		Environment: "test-env",
		L:           newTestLogger(),
	}

	require.NoError(t, cli.setConfig(cfg))

	assert.Equal(t, "test-env", cfg.Environment)
}

func TestSetConfigOutputToStdout(t *testing.T) {
	cfg := &config.Config{}
	cli := &Command{
		OutputFile: "-",
		L:          newTestLogger(),
	}

	require.NoError(t, cli.setConfig(cfg))

	// When no output file specified, HTML goes to stdout
	assert.Equal(t, "-", cfg.Outputs.HTMLFile)
}

func TestSetConfigOutputFile(t *testing.T) {
	cfg := &config.Config{}
	cli := &Command{
		OutputFile: "results.png",
		L:          newTestLogger(),
	}

	require.NoError(t, cli.setConfig(cfg))

	assert.Equal(t, "results.html", cfg.Outputs.HTMLFile)
}

func TestSetConfigOutputFileWithPng(t *testing.T) {
	cfg := &config.Config{}
	cli := &Command{
		OutputFile: "results.html",
		Png:        true,
		L:          newTestLogger(),
	}

	require.NoError(t, cli.setConfig(cfg))

	assert.Equal(t, "results.html", cfg.Outputs.HTMLFile)
	assert.Equal(t, "results.png", cfg.Outputs.PngFile)
}

func TestSetConfigTempHTML(t *testing.T) {
	cfg := &config.Config{
		Outputs: config.Output{
			PngFile: "output.png",
		},
	}
	cli := &Command{
		L: newTestLogger(),
	}

	require.NoError(t, cli.setConfig(cfg))

	assert.True(t, cfg.Outputs.IsTemp)
	assert.NotEmpty(t, cfg.Outputs.HTMLFile)
	assert.True(t, strings.Contains(cfg.Outputs.HTMLFile, "esmviz"),
		"expected temp file name to contain 'esmviz', got %q", cfg.Outputs.HTMLFile)

	// Clean up temp file
	os.Remove(cfg.Outputs.HTMLFile)
}

func TestPrepareConfig(t *testing.T) {
	cfgFile := writeTestConfig(t, testConfig())

	cli := &Command{
		Config: cfgFile,
		L:      newTestLogger(),
	}

	cfg, cleanup, err := cli.prepareConfig()
	require.NoError(t, err)
	defer cleanup()

	require.NotNil(t, cfg)
}

func TestPrepareConfigMissingFile(t *testing.T) {
	cli := &Command{
		Config: "/nonexistent/config.yaml",
		L:      newTestLogger(),
	}

	_, cleanup, err := cli.prepareConfig()
	require.Error(t, err)
	assert.Nil(t, cleanup)
}

func TestBuildPage(t *testing.T) {
	cfg := mustLoadTestConfig(t, testConfig())
	cli := &Command{L: newTestLogger()}

	page, err := cli.buildPage(cfg, []string{writeTestInput(t)})
	require.NoError(t, err)
	require.NotNil(t, page)
	assert.Len(t, page.Charts, 2)
}

func TestPageHandler(t *testing.T) {
	cfg := mustLoadTestConfig(t, testConfig())
	cli := &Command{L: newTestLogger()}

	page, err := cli.buildPage(cfg, []string{writeTestInput(t)})
	require.NoError(t, err)

	handler, err := pageHandler(page)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "CESM2")
}

func TestBuildPageGeneratedCharts(t *testing.T) {
	// a config without chart declarations derives them from the input
	cfg := mustLoadTestConfig(t, `
name: No Charts
statistics:
  - id: std_dev
  - id: correlation
`)
	cfg.Charts = nil
	cli := &Command{L: newTestLogger()}

	page, err := cli.buildPage(cfg, []string{writeTestInput(t)})
	require.NoError(t, err)
	require.NotEmpty(t, page.Charts)
}

func TestBuildPageMissingFile(t *testing.T) {
	cfg := mustLoadTestConfig(t, testConfig())
	cli := &Command{L: newTestLogger()}

	_, err := cli.buildPage(cfg, []string{"/nonexistent/file.yaml"})
	require.Error(t, err)
}

func TestExecuteHTMLOutput(t *testing.T) {
	cfgFile := writeTestConfig(t, testConfig())
	outFile := filepath.Join(t.TempDir(), "output.html")

	cli := &Command{
		Config:     cfgFile,
		OutputFile: outFile,
		L:          newTestLogger(),
	}

	require.NoError(t, cli.Execute(writeTestInput(t)))

	// Verify HTML file was created
	info, err := os.Stat(outFile)
	require.NoError(t, err)
	assert.NotZero(t, info.Size())
}

func TestExecuteMissingInput(t *testing.T) {
	cfgFile := writeTestConfig(t, testConfig())

	cli := &Command{
		Config:     cfgFile,
		OutputFile: filepath.Join(t.TempDir(), "output.html"),
		L:          newTestLogger(),
	}

	require.Error(t, cli.Execute("/nonexistent/file.yaml"))
}

// helpers

func newTestLogger() *slog.Logger {
	return slog.Default().With(slog.String("module", "test"))
}

func writeTestConfig(t *testing.T, yamlContent string) string {
	t.Helper()
	dir := t.TempDir()
	file := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(file, []byte(yamlContent), 0o600))
	return file
}

func mustLoadTestConfig(t *testing.T, yamlContent string) *config.Config {
	t.Helper()
	file := writeTestConfig(t, yamlContent)
	cfg, err := config.Load(file)
	require.NoError(t, err)
	return cfg
}

func writeTestInput(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	file := filepath.Join(dir, "stats.yaml")
	require.NoError(t, os.WriteFile(file, []byte(testInput()), 0o600))
	return file
}

func testConfig() string {
	return `
name: Test
render:
  theme: roma
  legend: bottom
statistics:
  - id: std_dev
    title: Standard Deviation
  - id: correlation
    title: Correlation
charts:
  - id: taylor
    type: taylor
    taylor:
      ref_std: 1
      normalize: true
  - id: scatter
    type: scatter
    scatter:
      x_stat: std_dev
      y_stat: correlation
`
}

func testInput() string {
	return `
- model: CESM2
  variable: tas
  std_dev: 1.1
  correlation: 0.92
- model: GFDL-CM4
  variable: tas
  std_dev: 0.85
  correlation: 0.87
- model: UKESM1
  variable: tas
  std_dev: 1.3
  correlation: 0.78
`
}
