package config

import (
	"bytes"
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
	"github.com/spaghettifunk/immediate/engine/core"
	"github.com/spaghettifunk/immediate/engine/math"
	"github.com/spaghettifunk/immediate/engine/renderer/metadata"
)

const DefaultPath = "immediate.toml"

type ApplicationConfig struct {
	Name   string `toml:"name"`
	Width  uint32 `toml:"width"`
	Height uint32 `toml:"height"`
	// Frames stops the application after that many frames. 0 runs until
	// the context is cancelled.
	Frames    uint64  `toml:"frames"`
	TargetFPS float64 `toml:"target_fps"`
	LogLevel  string  `toml:"log_level"`
	Watch     bool    `toml:"watch"`
}

type GeometryConfig struct {
	MaxVertices uint32                     `toml:"max_vertices"`
	Primitive   metadata.PrimitiveTopology `toml:"primitive"`
	Color       []float32                  `toml:"color"`
}

// ColorVec returns Color as a vector. Validate guarantees four components.
func (g GeometryConfig) ColorVec() math.Vec4 {
	return math.NewVec4(g.Color[0], g.Color[1], g.Color[2], g.Color[3])
}

type GridConfig struct {
	Size  uint32  `toml:"size"`
	Scale float32 `toml:"scale"`

	// Workers builds grid rows on that many goroutines. 0 builds on the
	// frame loop.
	Workers uint32 `toml:"workers"`
}

type OverlayConfig struct {
	Enabled bool `toml:"enabled"`
	// Font is the path to a BMFont .fnt file. Empty uses the built-in face.
	Font        string `toml:"font"`
	MaxVertices uint32 `toml:"max_vertices"`
}

type Config struct {
	Application ApplicationConfig `toml:"application"`
	Geometry    GeometryConfig    `toml:"geometry"`
	Grid        GridConfig        `toml:"grid"`
	Overlay     OverlayConfig     `toml:"overlay"`
}

func Default() *Config {
	return &Config{
		Application: ApplicationConfig{
			Name:      "ImmediateRenderer",
			Width:     800,
			Height:    600,
			TargetFPS: 60,
			LogLevel:  "info",
			Watch:     true,
		},
		Geometry: GeometryConfig{
			MaxVertices: 1024,
			Primitive:   metadata.PrimitiveTopologyTriangleList,
			Color:       []float32{1, 1, 1, 1},
		},
		Grid: GridConfig{
			Size:  20,
			Scale: 5,
		},
		Overlay: OverlayConfig{
			Enabled:     true,
			MaxVertices: 4096,
		},
	}
}

// Parse decodes data over the defaults. Unknown keys are rejected.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	decoder := toml.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(cfg); err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrInvalidConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Load reads the file at path. A missing file gives the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		core.LogInfo("No configuration at '%s', using defaults", path)
		return Default(), nil
	}
	if err != nil {
		return nil, err
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Application.Width == 0 || c.Application.Height == 0 {
		return fmt.Errorf("application size %dx%d: %w", c.Application.Width, c.Application.Height, core.ErrInvalidConfig)
	}
	if c.Application.TargetFPS < 0 {
		return fmt.Errorf("target_fps %v: %w", c.Application.TargetFPS, core.ErrInvalidConfig)
	}
	if _, err := core.ParseLogLevel(c.Application.LogLevel); err != nil {
		return fmt.Errorf("%w: %w", core.ErrInvalidConfig, err)
	}
	if !c.Geometry.Primitive.IsValid() {
		return fmt.Errorf("geometry primitive %s: %w", c.Geometry.Primitive, core.ErrInvalidConfig)
	}
	if len(c.Geometry.Color) != 4 {
		return fmt.Errorf("geometry color needs 4 components, got %d: %w", len(c.Geometry.Color), core.ErrInvalidConfig)
	}
	if c.Grid.Size == 0 {
		return fmt.Errorf("grid size 0: %w", core.ErrInvalidConfig)
	}
	return nil
}
