package esmviz

import (
	"sync"
)

// Named color palettes.
//
// Spectral is the construction-time default, matching the usual palette for
// model intercomparison figures.
var (
	paletteSpectral = []string{
		"#9e0142", "#d53e4f", "#f46d43", "#fdae61", "#fee08b", "#ffffbf",
		"#e6f598", "#abdda4", "#66c2a5", "#3288bd", "#5e4fa2",
	}
	paletteViridis = []string{
		"#440154", "#482878", "#3e4989", "#31688e", "#26828e", "#1f9e89",
		"#35b779", "#6ece58", "#b5de2b", "#fde725",
	}
)

// diverging ramp for portrait cells (RdBu reversed)
var portraitRamp = []string{
	"#2166ac", "#4393c3", "#92c5de", "#d1e5f0", "#f7f7f7",
	"#fddbc7", "#f4a582", "#d6604d", "#b2182b",
}

var defaultMarkers = []string{
	"circle", "rect", "triangle", "diamond", "roundRect", "pin", "arrow",
}

// StyleRegistry assigns a stable color and marker shape to each series name,
// so the same model looks the same across a Taylor diagram, a portrait plot
// and a scatter plot built in one session.
//
// The registry is safe for concurrent use. Its lifecycle is explicit: create
// one per session (or use the process-wide default) and call [StyleRegistry.Reset]
// to start over.
type StyleRegistry struct {
	mu      sync.Mutex
	palette []string
	markers []string
	colors  map[string]string
	symbols map[string]string
}

// NewStyleRegistry builds a registry over the given palette. A nil palette
// selects Spectral.
func NewStyleRegistry(palette []string) *StyleRegistry {
	if len(palette) == 0 {
		palette = paletteSpectral
	}

	return &StyleRegistry{
		palette: palette,
		markers: defaultMarkers,
		colors:  make(map[string]string),
		symbols: make(map[string]string),
	}
}

// ColorFor returns the color assigned to a series name, assigning the next
// palette entry on first use.
func (r *StyleRegistry) ColorFor(name string) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	if c, ok := r.colors[name]; ok {
		return c
	}

	c := r.palette[len(r.colors)%len(r.palette)]
	r.colors[name] = c

	return c
}

// SymbolFor returns the marker shape assigned to a series name, assigning
// the next shape on first use.
func (r *StyleRegistry) SymbolFor(name string) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.symbols[name]; ok {
		return s
	}

	s := r.markers[len(r.symbols)%len(r.markers)]
	r.symbols[name] = s

	return s
}

// Assign pins an explicit color and/or marker shape for a series name.
// Empty values leave the corresponding assignment untouched.
func (r *StyleRegistry) Assign(name, color, symbol string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if color != "" {
		r.colors[name] = color
	}
	if symbol != "" {
		r.symbols[name] = symbol
	}
}

// Reset drops all assignments.
func (r *StyleRegistry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.colors = make(map[string]string)
	r.symbols = make(map[string]string)
}

var defaultRegistry = NewStyleRegistry(nil)

// DefaultStyles returns the process-wide style registry used when no
// registry is supplied via [WithStyleRegistry].
func DefaultStyles() *StyleRegistry {
	return defaultRegistry
}

// ResetStyles clears the process-wide style registry. Tests that depend on
// deterministic color assignment should call this first.
func ResetStyles() {
	defaultRegistry.Reset()
}

// PaletteByName resolves a named palette.
func PaletteByName(name string) ([]string, bool) {
	switch name {
	case "", "spectral":
		return paletteSpectral, true
	case "viridis":
		return paletteViridis, true
	default:
		return nil, false
	}
}
