// Package config loads the overlay settings from a TOML file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"math"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/Shreyash39/LaserPointer/internal/state"
)

// The toolbar slider offers whole pixel widths in this range, so a default
// thickness outside it could not be shown or kept.
const (
	MinThickness = 2
	MaxThickness = 12
)

type Config struct {
	FadeDelay        time.Duration `toml:"fade_delay"`
	EraseRadius      float32       `toml:"erase_radius"`
	DefaultColor     string        `toml:"default_color"`
	DefaultThickness float32       `toml:"default_thickness"`
	DefaultMode      string        `toml:"default_mode"`
	DefaultTool      string        `toml:"default_tool"`
	StartActive      bool          `toml:"start_active"`
	WindowWidth      float32       `toml:"window_width"`
	WindowHeight     float32       `toml:"window_height"`
	Palette          []string      `toml:"palette"`
}

// Default returns the settings used when no file is given.
func Default() Config {
	return Config{
		FadeDelay:        state.DefaultFadeDelay,
		EraseRadius:      state.DefaultEraseRadius,
		DefaultColor:     string(state.DefaultColor),
		DefaultThickness: state.DefaultThickness,
		DefaultMode:      string(state.ModeLaser),
		DefaultTool:      string(state.ToolFreehand),
		WindowWidth:      1024,
		WindowHeight:     768,
		Palette:          []string{"#FF3B30", "#007AFF", "#34C759", "#FF9500", "#1C1C1E"},
	}
}

// Load reads path over the defaults. An empty path or a missing file
// yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	md, err := toml.DecodeFile(path, &cfg)
	if errors.Is(err, fs.ErrNotExist) {
		log.Printf("[CONFIG] %s not found, using defaults", path)
		return Default(), nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("load config %s: %w", path, err)
	}
	for _, key := range md.Undecoded() {
		log.Printf("[CONFIG] Unknown key %q in %s", key.String(), path)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("load config %s: %w", path, err)
	}
	return cfg, nil
}

func (c Config) Validate() error {
	var errs []error
	if c.FadeDelay <= 0 {
		errs = append(errs, fmt.Errorf("fade_delay must be positive, got %s", c.FadeDelay))
	}
	if !(c.EraseRadius > 0) {
		errs = append(errs, fmt.Errorf("erase_radius must be positive, got %v", c.EraseRadius))
	}
	if !state.Color(c.DefaultColor).Valid() {
		errs = append(errs, fmt.Errorf("default_color %q is not a hex color", c.DefaultColor))
	}
	if t := c.DefaultThickness; !(t >= MinThickness && t <= MaxThickness) || t != float32(math.Trunc(float64(t))) {
		errs = append(errs, fmt.Errorf("default_thickness must be a whole number from %d to %d, got %v",
			MinThickness, MaxThickness, t))
	}
	if !state.Mode(c.DefaultMode).Valid() {
		errs = append(errs, fmt.Errorf("default_mode %q is not laser or pen", c.DefaultMode))
	}
	if !state.Tool(c.DefaultTool).Valid() {
		errs = append(errs, fmt.Errorf("default_tool %q is unknown", c.DefaultTool))
	}
	if c.WindowWidth <= 0 || c.WindowHeight <= 0 {
		errs = append(errs, fmt.Errorf("window size %vx%v must be positive", c.WindowWidth, c.WindowHeight))
	}
	for i, p := range c.Palette {
		if !state.Color(p).Valid() {
			errs = append(errs, fmt.Errorf("palette[%d] %q is not a hex color", i, p))
		}
	}
	return errors.Join(errs...)
}

// EngineOptions turns the config into engine options. The scheduler is
// left for the caller.
func (c Config) EngineOptions() state.Options {
	return state.Options{
		FadeDelay:   c.FadeDelay,
		EraseRadius: c.EraseRadius,
		Mode:        state.Mode(c.DefaultMode),
		Tool:        state.Tool(c.DefaultTool),
		Color:       state.Color(c.DefaultColor),
		Thickness:   c.DefaultThickness,
		Active:      c.StartActive,
	}
}

// Colors returns the palette as stroke colors.
func (c Config) Colors() []state.Color {
	out := make([]state.Color, len(c.Palette))
	for i, p := range c.Palette {
		out[i] = state.Color(p)
	}
	return out
}
