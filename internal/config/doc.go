// Package config loads smoothzoom settings.
//
// Settings are layered, lowest precedence first:
//
//  1. Built-in defaults (Default)
//  2. A TOML or YAML file, chosen by extension
//  3. SMOOTHZOOM_* environment variables
//  4. Command-line flags, applied by the caller
//
// File keys are snake_case and grouped in three sections:
//
//	[zoom]
//	enable_smooth_zoom = true      # true, false or "center"
//	smooth_sensitivity = 1.0
//	debounce = "200ms"
//	frame_rate = 60
//
//	[map]
//	center_lat = 0.0
//	center_lng = 0.0
//	zoom = 2.0
//	min_zoom = 0.0
//	max_zoom = 18.0
//	zoom_snap = 0.0
//	policy_script = ""             # Lua file defining limit_zoom
//
//	[logging]
//	level = "info"
//
// Unknown keys are ignored. Values of the wrong type produce a
// ValidationError naming the key.
package config
