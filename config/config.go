package config

import (
	"fmt"
	"os"
	"time"

	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"

	"github.com/TomasNiDo/study-baddie-ai/layout"
)

// Config is the program configuration: page geometry, type, and behavior.
// Lengths are strings with units ("794px", "210mm", "12pt"); unit-less
// numbers are pixels.
type Config struct {
	Page       PageConfig    `yaml:"page"`
	Font       FontConfig    `yaml:"font"`
	Dark       bool          `yaml:"dark,omitempty"`
	DebounceMS int           `yaml:"debounce_ms,omitempty"`
	Logging    LoggingConfig `yaml:"logging"`
}

type PageConfig struct {
	Width  string       `yaml:"width"`
	Height string       `yaml:"height"`
	Margin MarginConfig `yaml:"margin"`
}

type MarginConfig struct {
	Top    string `yaml:"top"`
	Right  string `yaml:"right"`
	Bottom string `yaml:"bottom"`
	Left   string `yaml:"left"`
}

type FontConfig struct {
	Path       string `yaml:"path,omitempty"`   // font file; empty = system lookup
	Family     string `yaml:"family,omitempty"` // system family name
	Size       string `yaml:"size"`             // base body size
	LineHeight string `yaml:"line_height"`      // body line pitch
}

// Default returns the built-in configuration: an A4 sheet at 96dpi with
// notebook margins.
func Default() *Config {
	return &Config{
		Page: PageConfig{
			Width:  "794px",
			Height: "1123px",
			Margin: MarginConfig{Top: "96px", Right: "64px", Bottom: "88px", Left: "110px"},
		},
		Font: FontConfig{
			Size:       "16px",
			LineHeight: "26px",
		},
		DebounceMS: 300,
		Logging:    LoggingConfig{Level: "normal"},
	}
}

// Load reads a YAML configuration file over the defaults. An empty path
// returns the defaults unchanged.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read configuration %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse configuration %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate aggregates every configuration problem instead of stopping at the
// first one.
func (c *Config) Validate() (err error) {
	requirePositive := func(field, value string) {
		if l := layout.ParseLength(value); l.ToPX() <= 0 {
			err = multierr.Append(err, fmt.Errorf("%s: %q is not a positive length", field, value))
		}
	}
	requirePositive("page.width", c.Page.Width)
	requirePositive("page.height", c.Page.Height)
	requirePositive("font.size", c.Font.Size)
	requirePositive("font.line_height", c.Font.LineHeight)

	w := layout.ParseLength(c.Page.Width).ToPX()
	margins := layout.ParseLength(c.Page.Margin.Left).ToPX() + layout.ParseLength(c.Page.Margin.Right).ToPX()
	if w > 0 && margins >= w {
		err = multierr.Append(err, fmt.Errorf("page.margin: horizontal margins (%.0fpx) leave no content width", margins))
	}
	if c.DebounceMS < 0 {
		err = multierr.Append(err, fmt.Errorf("debounce_ms: must not be negative"))
	}
	switch c.Logging.Level {
	case "", "none", "normal", "debug":
	default:
		err = multierr.Append(err, fmt.Errorf("logging.level: unknown level %q", c.Logging.Level))
	}
	return err
}

// LayoutContext resolves the configuration into the immutable per-pass
// layout context, all lengths in px.
func (c *Config) LayoutContext() layout.Context {
	return layout.Context{
		PageWidth:  layout.ParseLength(c.Page.Width).ToPX(),
		PageHeight: layout.ParseLength(c.Page.Height).ToPX(),
		Margin: layout.Margin{
			Top:    layout.ParseLength(c.Page.Margin.Top).ToPX(),
			Right:  layout.ParseLength(c.Page.Margin.Right).ToPX(),
			Bottom: layout.ParseLength(c.Page.Margin.Bottom).ToPX(),
			Left:   layout.ParseLength(c.Page.Margin.Left).ToPX(),
		},
		Font: layout.FontResource{
			Name:   "Body",
			Path:   c.Font.Path,
			Family: c.Font.Family,
		},
		FontSize:   layout.ParseLength(c.Font.Size).ToPX(),
		LineHeight: layout.ParseLength(c.Font.LineHeight).ToPX(),
		Dark:       c.Dark,
	}
}

// Debounce returns the configured debounce interval.
func (c *Config) Debounce() time.Duration {
	return time.Duration(c.DebounceMS) * time.Millisecond
}
