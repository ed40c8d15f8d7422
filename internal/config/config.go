// Package config holds the static window configuration shared by every
// building in a scene. It is loaded once from a TOML file and reused per call.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

// DefaultMaxWindows bounds the instance pool when no capacity is configured.
const DefaultMaxWindows = 50000

// WindowConfig describes the reference window and the pool it is drawn from.
// Lengths are in meters.
type WindowConfig struct {
	WindowWidth       float64 `toml:"window_width"`
	WindowHeight      float64 `toml:"window_height"`
	WindowSpacing     float64 `toml:"window_spacing"`
	OffsetDistance    float64 `toml:"offset_distance"` // push off the wall face
	FrameThickness    float64 `toml:"frame_thickness"` // frame border and extrusion depth
	GlassOffset       float64 `toml:"glass_offset"`    // glass in front of the frame
	OverhangDepth     float64 `toml:"overhang_depth"`  // used when a building sets none
	OverhangThickness float64 `toml:"overhang_thickness"`
	MaxWindows        int     `toml:"max_windows"`

	// EnableOverhangs allocates the third instance layer.
	EnableOverhangs bool `toml:"enable_overhangs"`

	// AnimationDuration applies to smooth updates.
	AnimationDuration Duration `toml:"animation_duration"`

	Colors Colors `toml:"colors"`
}

// Colors are hex tints for each drawn layer.
type Colors struct {
	Glass    string `toml:"glass"`
	Frame    string `toml:"frame"`
	Overhang string `toml:"overhang"`
}

// Duration wraps time.Duration so it can be written as "400ms" in TOML.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Default returns the reference configuration.
func Default() WindowConfig {
	return WindowConfig{
		WindowWidth:       1.2,
		WindowHeight:      1.5,
		WindowSpacing:     1.0,
		OffsetDistance:    0.05,
		FrameThickness:    0.08,
		GlassOffset:       0.01,
		OverhangDepth:     0.6,
		OverhangThickness: 0.1,
		MaxWindows:        DefaultMaxWindows,
		EnableOverhangs:   true,
		AnimationDuration: Duration{400 * time.Millisecond},
		Colors: Colors{
			Glass:    "#8fb8de",
			Frame:    "#3c3c46",
			Overhang: "#6b6b73",
		},
	}
}

// Validate reports every configuration value that cannot produce windows.
func (c WindowConfig) Validate() error {
	var errs []error
	if c.WindowWidth <= 0 {
		errs = append(errs, fmt.Errorf("window_width must be positive, got %v", c.WindowWidth))
	}
	if c.WindowHeight <= 0 {
		errs = append(errs, fmt.Errorf("window_height must be positive, got %v", c.WindowHeight))
	}
	if c.WindowSpacing <= 0 {
		errs = append(errs, fmt.Errorf("window_spacing must be positive, got %v", c.WindowSpacing))
	}
	if c.OffsetDistance < 0 || c.GlassOffset < 0 {
		errs = append(errs, fmt.Errorf("offsets must be non-negative"))
	}
	if c.FrameThickness < 0 || 2*c.FrameThickness >= c.WindowWidth || 2*c.FrameThickness >= c.WindowHeight {
		errs = append(errs, fmt.Errorf("frame_thickness %v does not leave an opening in a %vx%v window",
			c.FrameThickness, c.WindowWidth, c.WindowHeight))
	}
	if c.MaxWindows <= 0 {
		errs = append(errs, fmt.Errorf("max_windows must be positive, got %d", c.MaxWindows))
	}
	return errors.Join(errs...)
}

// Load reads a TOML file on top of Default, so a file only needs the keys it
// changes.
func Load(path string) (WindowConfig, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return WindowConfig{}, fmt.Errorf("reading config file: %w", err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return WindowConfig{}, fmt.Errorf("parsing config TOML: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return WindowConfig{}, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}
