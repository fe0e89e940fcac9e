package config

import (
	"fmt"
	"math"
	"time"

	"github.com/dshills/smoothzoom/internal/zoom"
)

type field struct {
	path string
	set  func(v any) error
}

func (c *Config) fields() []field {
	return []field{
		{"zoom.enable_smooth_zoom", c.setMode},
		{"zoom.smooth_sensitivity", floatField(&c.Zoom.Sensitivity)},
		{"zoom.debounce", durationField(&c.Zoom.Debounce)},
		{"zoom.frame_rate", intField(&c.Zoom.FrameRate)},
		{"map.center_lat", floatField(&c.Map.CenterLat)},
		{"map.center_lng", floatField(&c.Map.CenterLng)},
		{"map.zoom", floatField(&c.Map.Zoom)},
		{"map.min_zoom", floatField(&c.Map.MinZoom)},
		{"map.max_zoom", floatField(&c.Map.MaxZoom)},
		{"map.zoom_snap", floatField(&c.Map.ZoomSnap)},
		{"map.policy_script", stringField(&c.Map.PolicyScript)},
		{"logging.level", stringField(&c.Logging.Level)},
	}
}

func (c *Config) setMode(v any) error {
	switch v.(type) {
	case int, int64, float64:
		// Environment values such as "1" arrive as numbers.
		v = fmt.Sprint(v)
	}
	m, err := zoom.ParseMode(v)
	if err != nil {
		return err
	}
	c.Zoom.Mode = m
	return nil
}

func floatField(dst *float64) func(any) error {
	return func(v any) error {
		switch n := v.(type) {
		case float64:
			*dst = n
		case float32:
			*dst = float64(n)
		case int:
			*dst = float64(n)
		case int64:
			*dst = float64(n)
		case uint64:
			*dst = float64(n)
		default:
			return fmt.Errorf("expected a number, got %T", v)
		}
		return nil
	}
}

func intField(dst *int) func(any) error {
	return func(v any) error {
		switch n := v.(type) {
		case int:
			*dst = n
		case int64:
			*dst = int(n)
		case uint64:
			*dst = int(n)
		case float64:
			if n != math.Trunc(n) {
				return fmt.Errorf("expected an integer, got %g", n)
			}
			*dst = int(n)
		default:
			return fmt.Errorf("expected an integer, got %T", v)
		}
		return nil
	}
}

func stringField(dst *string) func(any) error {
	return func(v any) error {
		s, ok := v.(string)
		if !ok {
			return fmt.Errorf("expected a string, got %T", v)
		}
		*dst = s
		return nil
	}
}

// durationField accepts Go duration strings ("200ms") or a number of
// milliseconds.
func durationField(dst *time.Duration) func(any) error {
	return func(v any) error {
		switch d := v.(type) {
		case time.Duration:
			*dst = d
		case string:
			parsed, err := time.ParseDuration(d)
			if err != nil {
				return err
			}
			*dst = parsed
		case int:
			*dst = time.Duration(d) * time.Millisecond
		case int64:
			*dst = time.Duration(d) * time.Millisecond
		case float64:
			*dst = time.Duration(d * float64(time.Millisecond))
		default:
			return fmt.Errorf("expected a duration, got %T", v)
		}
		return nil
	}
}
