// Package config provides configuration loading and management.
package config

import (
	"fmt"
	"image/color"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/user/apngview/pkg/apng"
	"github.com/user/apngview/pkg/orchestrator"
	"github.com/user/apngview/pkg/pipeline"
	"github.com/user/apngview/pkg/player"
	"github.com/user/apngview/pkg/ports"
)

// Config represents the full configuration for apngview.
type Config struct {
	// Decoding
	MaxDimension int     `yaml:"max_dimension"`
	WindowSize   int     `yaml:"window_size"`
	Stream       bool    `yaml:"stream"`
	Scale        float64 `yaml:"scale"`

	// Output
	OutputDir   string  `yaml:"output"`
	Format      string  `yaml:"format"`
	Quality     int     `yaml:"quality"`
	ExportScale float64 `yaml:"export_scale"`
	KeepHidden  bool    `yaml:"keep_hidden"`
	Workers     int     `yaml:"workers"`

	// Contact sheet
	Sheet SheetConfig `yaml:"sheet"`

	// Playback
	Playback PlaybackConfig `yaml:"playback"`

	// Logging
	LogLevel string `yaml:"log_level"`

	// Debug
	Debug    bool   `yaml:"debug"`
	DebugDir string `yaml:"debug_dir"`
}

// SheetConfig represents contact sheet options.
type SheetConfig struct {
	Columns    int     `yaml:"columns"`
	TileWidth  int     `yaml:"tile_width"`
	Gap        int     `yaml:"gap"`
	Padding    int     `yaml:"padding"`
	LabelSize  float64 `yaml:"label_size"`
	Background string  `yaml:"background"`
	Border     string  `yaml:"border"`
	Checker    bool    `yaml:"checker"`
}

// PlaybackConfig represents player options.
type PlaybackConfig struct {
	// Repeat overrides the file's repeat count when set. -1 loops forever.
	Repeat    *int `yaml:"repeat"`
	MaxFrames int  `yaml:"max_frames"`
}

// Defaults returns a Config with default values.
func Defaults() Config {
	return Config{
		// Decoding
		MaxDimension: apng.DefaultMaxDimension,
		WindowSize:   orchestrator.DefaultWindowSize,
		Scale:        1,

		// Output
		OutputDir:   "./frames",
		Format:      "png",
		Quality:     90,
		ExportScale: 1,
		Workers:     4,

		// Contact sheet
		Sheet: SheetConfig{
			Columns:    4,
			Gap:        8,
			Padding:    16,
			LabelSize:  12,
			Background: "#ffffff",
			Border:     "#c0c0c0",
			Checker:    true,
		},

		// Logging
		LogLevel: "info",

		// Debug
		DebugDir: "./debug",
	}
}

// LoadFromFile loads configuration from a YAML file. Keys missing from the
// file keep their default values.
func LoadFromFile(path string) (Config, error) {
	cfg := Defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}

	return cfg, nil
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	switch {
	case c.MaxDimension < 0:
		return fmt.Errorf("max_dimension must not be negative: %d", c.MaxDimension)
	case c.WindowSize < 0:
		return fmt.Errorf("window_size must not be negative: %d", c.WindowSize)
	case c.Quality < 1 || c.Quality > 100:
		return fmt.Errorf("quality must be between 1 and 100: %d", c.Quality)
	case c.ExportScale < 0:
		return fmt.Errorf("export_scale must not be negative: %v", c.ExportScale)
	case c.Sheet.Columns < 1:
		return fmt.Errorf("sheet.columns must be at least 1: %d", c.Sheet.Columns)
	case c.Playback.Repeat != nil && *c.Playback.Repeat < apng.RepeatInfinite:
		return fmt.Errorf("playback.repeat must be -1 or more: %d", *c.Playback.Repeat)
	}
	if _, ok := ports.ParseImageFormat(c.Format); !ok {
		return fmt.Errorf("unsupported format: %s", c.Format)
	}
	if _, ok := ParseLogLevel(c.LogLevel); !ok {
		return fmt.Errorf("unknown log level: %s", c.LogLevel)
	}
	for _, hex := range []string{c.Sheet.Background, c.Sheet.Border} {
		if _, err := ParseColor(hex); hex != "" && err != nil {
			return err
		}
	}
	return nil
}

// ParseLogLevel maps a level name to ports.LogLevel and reports whether the
// name is known. An empty name selects info.
func ParseLogLevel(s string) (ports.LogLevel, bool) {
	switch s {
	case "":
		return ports.LevelInfo, true
	case "debug", "info", "warn", "error", "quiet":
		return ports.ParseLogLevel(s), true
	default:
		return ports.LevelInfo, false
	}
}

// ParseColor parses #RGB, #RRGGBB or #RRGGBBAA into a color.
func ParseColor(hex string) (color.NRGBA, error) {
	s := hex
	if len(s) > 0 && s[0] == '#' {
		s = s[1:]
	}

	digits := make([]uint8, len(s))
	for i := 0; i < len(s); i++ {
		v, ok := hexValue(s[i])
		if !ok {
			return color.NRGBA{}, fmt.Errorf("invalid color %q", hex)
		}
		digits[i] = v
	}

	switch len(digits) {
	case 3:
		return color.NRGBA{R: digits[0] * 0x11, G: digits[1] * 0x11, B: digits[2] * 0x11, A: 255}, nil
	case 6:
		return color.NRGBA{R: digits[0]<<4 | digits[1], G: digits[2]<<4 | digits[3], B: digits[4]<<4 | digits[5], A: 255}, nil
	case 8:
		return color.NRGBA{
			R: digits[0]<<4 | digits[1], G: digits[2]<<4 | digits[3],
			B: digits[4]<<4 | digits[5], A: digits[6]<<4 | digits[7],
		}, nil
	default:
		return color.NRGBA{}, fmt.Errorf("invalid color %q", hex)
	}
}

func hexValue(c byte) (uint8, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	default:
		return 0, false
	}
}

// ToOrchestratorConfig converts Config to orchestrator.Config.
func (c Config) ToOrchestratorConfig() orchestrator.Config {
	return orchestrator.Config{
		MaxDimension: c.MaxDimension,
		WindowSize:   c.WindowSize,
		Scale:        c.Scale,
	}
}

// ToExportInput returns export settings without frames.
func (c Config) ToExportInput() pipeline.ExportInput {
	format, _ := ports.ParseImageFormat(c.Format)
	input := pipeline.DefaultExportInput()
	input.OutputDir = c.OutputDir
	input.Format = format
	input.Quality = c.Quality
	input.Scale = c.ExportScale
	input.SkipHidden = !c.KeepHidden
	return input
}

// ToSheetInput returns contact sheet settings without frames. Colors that
// fail to parse fall back to the defaults.
func (c Config) ToSheetInput() pipeline.SheetInput {
	input := pipeline.DefaultSheetInput()
	input.Columns = c.Sheet.Columns
	input.TileWidth = c.Sheet.TileWidth
	input.Gap = c.Sheet.Gap
	input.Padding = c.Sheet.Padding
	input.LabelSize = c.Sheet.LabelSize
	input.Checker = c.Sheet.Checker
	input.SkipHidden = !c.KeepHidden
	if bg, err := ParseColor(c.Sheet.Background); err == nil {
		input.Background = bg
	}
	if c.Sheet.Border == "" {
		input.Border = nil
	} else if border, err := ParseColor(c.Sheet.Border); err == nil {
		input.Border = border
	}
	return input
}

// ToPlayerOptions converts playback settings to player.Options.
func (c Config) ToPlayerOptions() player.Options {
	opts := player.Options{MaxFrames: c.Playback.MaxFrames}
	if c.Playback.Repeat != nil {
		opts.OverrideRepeat = true
		opts.RepeatCount = *c.Playback.Repeat
	}
	return opts
}
