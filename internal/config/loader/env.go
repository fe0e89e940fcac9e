package loader

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// DefaultEnvPrefix is the prefix of environment variables read by
// NewEnvLoader.
const DefaultEnvPrefix = "SMOOTHZOOM_"

// EnvLoader loads configuration from environment variables.
type EnvLoader struct {
	prefix  string            // e.g. "SMOOTHZOOM_"
	mapping map[string]string // env var -> config path
	environ func() []string
}

// NewEnvLoader creates a loader for variables starting with prefix. The
// prefix should include the trailing underscore.
func NewEnvLoader(prefix string) *EnvLoader {
	return &EnvLoader{
		prefix:  prefix,
		mapping: defaultEnvMapping(prefix),
		environ: os.Environ,
	}
}

// defaultEnvMapping returns short aliases for the common settings.
func defaultEnvMapping(prefix string) map[string]string {
	return map[string]string{
		prefix + "LOG_LEVEL":   "logging.level",
		prefix + "MODE":        "zoom.enable_smooth_zoom",
		prefix + "SENSITIVITY": "zoom.smooth_sensitivity",
		prefix + "POLICY":      "map.policy_script",
	}
}

// AddMapping adds a custom environment variable mapping.
func (l *EnvLoader) AddMapping(envVar, configPath string) {
	if l.mapping == nil {
		l.mapping = make(map[string]string)
	}
	l.mapping[envVar] = configPath
}

// Load reads environment variables and returns a configuration map.
// Mapped variables use their configured path; other prefixed variables
// are converted by envToPath. Empty values are kept.
func (l *EnvLoader) Load() (map[string]any, error) {
	config := make(map[string]any)

	for _, kv := range l.environ() {
		name, value, ok := strings.Cut(kv, "=")
		if !ok {
			continue
		}
		if path, mapped := l.mapping[name]; mapped {
			setByPath(config, path, parseValue(value))
			continue
		}
		if !strings.HasPrefix(name, l.prefix) {
			continue
		}
		if path := l.envToPath(name); path != "" {
			setByPath(config, path, parseValue(value))
		}
	}

	return config, nil
}

// envToPath converts SMOOTHZOOM_MAP_MIN_ZOOM to map.min_zoom. The first
// word names the section; the rest is the snake_case key.
func (l *EnvLoader) envToPath(env string) string {
	name := strings.ToLower(strings.TrimPrefix(env, l.prefix))
	section, key, ok := strings.Cut(name, "_")
	if !ok || key == "" {
		return section
	}
	return section + "." + key
}

// parseValue converts an environment string into a bool, int64, float64
// or time.Duration when it parses as one, and leaves it a string
// otherwise. "0" and "1" stay numbers since zoom levels use them.
func parseValue(s string) any {
	if s == "" {
		return s
	}

	switch strings.ToLower(s) {
	case "true", "yes", "on":
		return true
	case "false", "no", "off":
		return false
	}

	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	if d, err := time.ParseDuration(s); err == nil {
		return d
	}
	return s
}
