package zoom

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Mode selects how the view is anchored while zooming.
type Mode uint8

const (
	// ModeOff disables smooth zooming.
	ModeOff Mode = iota
	// ModeCursor keeps the point under the cursor fixed.
	ModeCursor
	// ModeCenter keeps the view center fixed.
	ModeCenter
)

// String returns the configuration spelling of the mode.
func (m Mode) String() string {
	switch m {
	case ModeOff:
		return "false"
	case ModeCursor:
		return "true"
	case ModeCenter:
		return "center"
	default:
		return "unknown"
	}
}

// ErrInvalidMode is returned by ParseMode for unrecognized values.
var ErrInvalidMode = errors.New("invalid smooth zoom mode")

// ParseMode converts an enable_smooth_zoom setting into a Mode. It accepts
// booleans and the strings "true", "false", "center", "cursor" and "off".
func ParseMode(v any) (Mode, error) {
	switch val := v.(type) {
	case Mode:
		if val > ModeCenter {
			return ModeOff, fmt.Errorf("%w: %d", ErrInvalidMode, val)
		}
		return val, nil
	case bool:
		if val {
			return ModeCursor, nil
		}
		return ModeOff, nil
	case string:
		switch strings.ToLower(strings.TrimSpace(val)) {
		case "center":
			return ModeCenter, nil
		case "cursor", "on":
			return ModeCursor, nil
		case "off":
			return ModeOff, nil
		}
		if b, err := strconv.ParseBool(val); err == nil {
			return ParseMode(b)
		}
		return ModeOff, fmt.Errorf("%w: %q", ErrInvalidMode, val)
	default:
		return ModeOff, fmt.Errorf("%w: %v (%T)", ErrInvalidMode, v, v)
	}
}

// Tuning constants.
const (
	// DefaultSensitivity is the default multiplier on wheel input.
	DefaultSensitivity = 1.0

	// DefaultDebounce is the quiet period that ends a gesture.
	DefaultDebounce = 200 * time.Millisecond

	// wheelScale converts normalized wheel units into zoom levels.
	wheelScale = 0.003

	// easing is the fraction of the remaining gap closed per frame.
	easing = 0.3

	// convergeEpsilon is the zoom distance treated as "arrived".
	convergeEpsilon = 0.005

	// zoomStep is the resolution committed zoom levels are truncated to.
	zoomStep = 0.01
)

// Logger receives debug diagnostics. The message is a printf format.
type Logger interface {
	Debug(msg string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}

// Option configures a Handler.
type Option func(*Handler)

// WithMode sets the anchoring mode. ModeOff creates a disabled handler.
func WithMode(m Mode) Option {
	return func(h *Handler) {
		h.mode = m
	}
}

// WithSensitivity sets the wheel multiplier. Non-positive and non-finite
// values are ignored.
func WithSensitivity(s float64) Option {
	return func(h *Handler) {
		if validSensitivity(s) {
			h.sensitivity = s
		}
	}
}

// WithDebounce overrides the end-of-gesture quiet period.
func WithDebounce(d time.Duration) Option {
	return func(h *Handler) {
		if d > 0 {
			h.debounce = d
		}
	}
}

// WithLogger sets the diagnostics logger.
func WithLogger(l Logger) Option {
	return func(h *Handler) {
		if l != nil {
			h.log = l
		}
	}
}

func validSensitivity(s float64) bool {
	return s > 0 && !math.IsInf(s, 0) && !math.IsNaN(s)
}
