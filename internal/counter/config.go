package counter

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/olivier-w/countup/internal/spring"
	"github.com/rs/zerolog"
)

const (
	// DefaultDuration is used when a counter has no valid duration.
	DefaultDuration = 2 * time.Second
	// DefaultMargin shrinks the viewport so a counter starts once it is
	// comfortably on screen.
	DefaultMargin = -50.0

	minDuration = 10 * time.Millisecond
)

var (
	// ErrInvalidTarget means End is NaN or infinite. The counter stays at 0.
	ErrInvalidTarget = errors.New("counter: end is not a finite number")
	// ErrInvalidDuration means Duration was not positive. The default is used.
	ErrInvalidDuration = errors.New("counter: duration must be positive")
)

// Config describes one counter. It is fixed for the counter's lifetime.
type Config struct {
	End      float64
	Duration time.Duration
	Prefix   string
	Suffix   string
}

// Settings are the environment's animation preferences.
type Settings struct {
	// AnimationSpeed divides every duration. Zero or negative means 1.
	AnimationSpeed float64
	// ReducedMotion shows the final value as soon as a counter is visible.
	ReducedMotion bool
}

// normalize replaces unusable values with defaults and reports what it
// replaced. A non-finite End is reported but kept so the counter can
// refuse to animate.
func (c Config) normalize() (Config, error) {
	var errs []error
	if math.IsNaN(c.End) || math.IsInf(c.End, 0) {
		errs = append(errs, fmt.Errorf("%w: %v", ErrInvalidTarget, c.End))
	}
	switch {
	case c.Duration < 0:
		errs = append(errs, fmt.Errorf("%w: %v", ErrInvalidDuration, c.Duration))
		c.Duration = DefaultDuration
	case c.Duration == 0:
		c.Duration = DefaultDuration
	case c.Duration < minDuration:
		c.Duration = minDuration
	}
	return c, errors.Join(errs...)
}

// effectiveDuration applies the animation speed.
func (s Settings) effectiveDuration(d time.Duration) time.Duration {
	speed := s.AnimationSpeed
	if !(speed > 0) || math.IsInf(speed, 0) {
		speed = 1
	}
	return max(time.Duration(float64(d)/speed), minDuration)
}

// Seconds converts a float number of seconds, as found in configuration
// files, to a duration. Non-positive or non-finite input yields 0, which a
// counter treats as the default.
func Seconds(s float64) time.Duration {
	if !(s > 0) || math.IsInf(s, 0) {
		return 0
	}
	return time.Duration(s * float64(time.Second))
}

type options struct {
	settings Settings
	margin   float64
	spring   spring.Config
	log      zerolog.Logger
}

// Option configures a Controller.
type Option func(*options)

// WithSettings applies animation preferences.
func WithSettings(s Settings) Option {
	return func(o *options) { o.settings = s }
}

// WithMargin sets the visibility margin in host units.
func WithMargin(px float64) Option {
	return func(o *options) { o.margin = px }
}

// WithSpring replaces the base spring. The counter still rescales it to the
// configured duration.
func WithSpring(cfg spring.Config) Option {
	return func(o *options) { o.spring = cfg }
}

// WithLogger logs state transitions and absorbed configuration errors.
func WithLogger(l zerolog.Logger) Option {
	return func(o *options) { o.log = l }
}
