package config

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/dshills/smoothzoom/internal/config/loader"
	"github.com/dshills/smoothzoom/internal/geo"
	"github.com/dshills/smoothzoom/internal/zoom"
)

// MaxFrameRate bounds zoom.frame_rate.
const MaxFrameRate = 240

// Config is the complete smoothzoom configuration.
type Config struct {
	Zoom    ZoomConfig
	Map     MapConfig
	Logging LoggingConfig

	// Source is the file the configuration was read from, empty when no
	// file was found.
	Source string
}

// ZoomConfig holds the [zoom] section.
type ZoomConfig struct {
	// Mode is enable_smooth_zoom: true, false or "center".
	Mode        zoom.Mode
	Sensitivity float64
	Debounce    time.Duration
	FrameRate   int
}

// MapConfig holds the [map] section.
type MapConfig struct {
	CenterLat float64
	CenterLng float64
	Zoom      float64
	MinZoom   float64
	MaxZoom   float64
	// ZoomSnap rounds limited zoom levels to multiples of itself; 0 means
	// no rounding.
	ZoomSnap float64
	// PolicyScript is a Lua file defining limit_zoom(zoom, min, max).
	PolicyScript string
}

// LoggingConfig holds the [logging] section.
type LoggingConfig struct {
	Level string
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Zoom: ZoomConfig{
			Mode:        zoom.ModeCursor,
			Sensitivity: zoom.DefaultSensitivity,
			Debounce:    zoom.DefaultDebounce,
			FrameRate:   60,
		},
		Map: MapConfig{
			Zoom:    2,
			MinZoom: 0,
			MaxZoom: 18,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// LoadOption configures Load.
type LoadOption func(*loadOptions)

type loadOptions struct {
	fs  loader.FileSystem
	env loader.Loader
}

// WithFS reads the config file from fs instead of the OS.
func WithFS(fs loader.FileSystem) LoadOption {
	return func(o *loadOptions) {
		o.fs = fs
	}
}

// WithEnv replaces the environment loader. A nil loader skips the
// environment layer.
func WithEnv(l loader.Loader) LoadOption {
	return func(o *loadOptions) {
		o.env = l
	}
}

// Load builds a configuration from the defaults, the file at path and the
// environment, then validates it. An empty path or a missing file leaves
// the defaults in place.
func Load(path string, opts ...LoadOption) (*Config, error) {
	o := loadOptions{
		fs:  loader.DefaultFS(),
		env: loader.NewEnvLoader(loader.DefaultEnvPrefix),
	}
	for _, opt := range opts {
		opt(&o)
	}

	cfg := Default()
	merged := make(map[string]any)

	if path != "" {
		fl, err := loader.ForPath(o.fs, path)
		if err != nil {
			return nil, err
		}
		data, err := fl.Load()
		if err != nil {
			return nil, err
		}
		if data != nil {
			cfg.Source = path
			merged = loader.DeepMerge(merged, data)
		}
	}

	if o.env != nil {
		data, err := o.env.Load()
		if err != nil {
			return nil, fmt.Errorf("loading environment: %w", err)
		}
		merged = loader.DeepMerge(merged, data)
	}

	if err := cfg.Apply(merged); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Apply overwrites the settings present in data. Keys are the snake_case
// paths used in config files; unknown keys are ignored.
func (c *Config) Apply(data map[string]any) error {
	var errs []error
	for _, f := range c.fields() {
		v, ok := loader.Lookup(data, f.path)
		if !ok {
			continue
		}
		if err := f.set(v); err != nil {
			errs = append(errs, &ValidationError{Path: f.path, Value: v, Message: err.Error(), Err: err})
		}
	}
	return errors.Join(errs...)
}

// Validate checks cross-field constraints.
func (c *Config) Validate() error {
	var errs []error

	if !finite(c.Zoom.Sensitivity) || c.Zoom.Sensitivity <= 0 {
		errs = append(errs, invalid("zoom.smooth_sensitivity", c.Zoom.Sensitivity, "must be positive"))
	}
	if c.Zoom.Debounce <= 0 {
		errs = append(errs, invalid("zoom.debounce", c.Zoom.Debounce, "must be positive"))
	}
	if c.Zoom.FrameRate < 1 || c.Zoom.FrameRate > MaxFrameRate {
		errs = append(errs, invalid("zoom.frame_rate", c.Zoom.FrameRate, "must be between 1 and %d", MaxFrameRate))
	}

	if !finite(c.Map.MinZoom) || !finite(c.Map.MaxZoom) {
		errs = append(errs, invalid("map.min_zoom", c.Map.MinZoom, "zoom limits must be finite"))
	} else if c.Map.MinZoom > c.Map.MaxZoom {
		errs = append(errs, invalid("map.min_zoom", c.Map.MinZoom, "greater than max_zoom %g", c.Map.MaxZoom))
	}
	if !finite(c.Map.Zoom) {
		errs = append(errs, invalid("map.zoom", c.Map.Zoom, "must be finite"))
	}
	if !finite(c.Map.CenterLat) || math.Abs(c.Map.CenterLat) > 90 {
		errs = append(errs, invalid("map.center_lat", c.Map.CenterLat, "must be within [-90, 90]"))
	}
	if !finite(c.Map.CenterLng) || math.Abs(c.Map.CenterLng) > 180 {
		errs = append(errs, invalid("map.center_lng", c.Map.CenterLng, "must be within [-180, 180]"))
	}
	if !finite(c.Map.ZoomSnap) || c.Map.ZoomSnap < 0 {
		errs = append(errs, invalid("map.zoom_snap", c.Map.ZoomSnap, "must not be negative"))
	}

	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		errs = append(errs, invalid("logging.level", c.Logging.Level, "unknown level"))
	}

	return errors.Join(errs...)
}

// Center returns the configured initial map center.
func (c *Config) Center() geo.LatLng {
	return geo.NewLatLng(c.Map.CenterLat, c.Map.CenterLng)
}

// ZoomOptions returns the handler options for the [zoom] section.
func (c *Config) ZoomOptions() []zoom.Option {
	return []zoom.Option{
		zoom.WithMode(c.Zoom.Mode),
		zoom.WithSensitivity(c.Zoom.Sensitivity),
		zoom.WithDebounce(c.Zoom.Debounce),
	}
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
