package spring

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// DefaultDuration is the duration DefaultConfig is tuned for.
const DefaultDuration = 2 * time.Second

var (
	// ErrInvalidTarget is returned when a target or jump value is NaN or infinite.
	ErrInvalidTarget = errors.New("spring: target is not a finite number")
	// ErrInvalidConfig is returned for non-positive or non-finite physics constants.
	ErrInvalidConfig = errors.New("spring: stiffness, damping and mass must be positive")
)

// Method selects how the oscillator is advanced each tick.
type Method int

const (
	// Euler applies the semi-implicit update
	//	a = (k*(target-x) - c*v) / m;  v += a*dt;  x += v*dt
	// in sub-steps short enough to stay stable for the configured constants.
	Euler Method = iota
	// Analytic uses the closed-form damped oscillator from harmonica, which
	// is exact for any dt.
	Analytic
)

func (m Method) String() string {
	switch m {
	case Euler:
		return "euler"
	case Analytic:
		return "analytic"
	default:
		return fmt.Sprintf("Method(%d)", int(m))
	}
}

// Config holds the physics constants of a spring.
type Config struct {
	Stiffness float64
	Damping   float64
	Mass      float64

	// RestDelta and RestSpeed are the settle thresholds. Zero picks them
	// from the travel distance each time a target is set.
	RestDelta float64
	RestSpeed float64

	Method Method
}

// DefaultConfig returns the counter spring: stiffness 100, damping 50,
// mass 1. It is overdamped (ratio 2.5) and never overshoots.
func DefaultConfig() Config {
	return Config{Stiffness: 100, Damping: 50, Mass: 1}
}

// ForDuration rescales cfg in time so that it settles in roughly d instead
// of DefaultDuration. The damping ratio is preserved, so settle time grows
// linearly with d. A non-positive d leaves cfg unchanged.
func ForDuration(cfg Config, d time.Duration) Config {
	if d <= 0 {
		return cfg
	}
	s := DefaultDuration.Seconds() / d.Seconds()
	cfg.Stiffness *= s * s
	cfg.Damping *= s
	return cfg
}

// Validate checks the physics constants.
func (c Config) Validate() error {
	for _, v := range []float64{c.Stiffness, c.Damping, c.Mass} {
		if !(v > 0) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: stiffness=%g damping=%g mass=%g", ErrInvalidConfig, c.Stiffness, c.Damping, c.Mass)
		}
	}
	return nil
}

// AngularFrequency returns the undamped angular frequency sqrt(k/m).
func (c Config) AngularFrequency() float64 {
	return math.Sqrt(c.Stiffness / c.Mass)
}

// DampingRatio returns c / (2*sqrt(k*m)). Values below 1 overshoot.
func (c Config) DampingRatio() float64 {
	return c.Damping / (2 * math.Sqrt(c.Stiffness*c.Mass))
}

// restThresholds returns the settle thresholds for a move of the given
// length. Short moves use finer thresholds so they still visibly animate.
func (c Config) restThresholds(travel float64) (delta, speed float64) {
	delta, speed = c.RestDelta, c.RestSpeed
	granular := math.Abs(travel) < 5
	if delta <= 0 {
		delta = 0.5
		if granular {
			delta = 0.005
		}
	}
	if speed <= 0 {
		speed = 2
		if granular {
			speed = 0.01
		}
	}
	return delta, speed
}

// maxStep is the longest Euler sub-step that stays stable and accurate.
func (c Config) maxStep() float64 {
	h := 0.25 * math.Min(c.Mass/c.Damping, 1/c.AngularFrequency())
	return math.Min(h, 1.0/240)
}
