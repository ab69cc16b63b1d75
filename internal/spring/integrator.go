// Package spring animates a scalar toward a target with a damped harmonic
// oscillator stepped once per render tick.
package spring

import (
	"math"
	"time"

	"github.com/charmbracelet/harmonica"
	"github.com/olivier-w/countup/internal/frame"
)

const (
	// nominalFrame is the dt used for the first tick after a start, when
	// there is no previous tick to measure against.
	nominalFrame = 1.0 / 60
	// maxFrame caps dt after a stalled host so the value does not jump.
	maxFrame = 0.1
	// maxSubSteps bounds the Euler work done in one tick.
	maxSubSteps = 10000
)

// Integrator moves a value toward a target and publishes a sample every
// tick until it settles. The zero value is not usable; call New.
type Integrator struct {
	cfg    Config
	ticker *frame.Ticker

	// offset is value - target. Integrating the offset keeps precision
	// proportional to the remaining distance rather than to the value.
	offset   float64
	velocity float64
	target   float64

	restDelta float64
	restSpeed float64

	last    time.Time
	settled bool

	analytic   harmonica.Spring
	analyticDt float64

	samples listenerList
	settles listenerList
}

// New creates an idle integrator at value 0 with target 0. The loop drives
// its ticks. An invalid cfg is replaced by DefaultConfig.
func New(loop *frame.Loop, cfg Config) *Integrator {
	if cfg.Validate() != nil {
		method := cfg.Method
		cfg = DefaultConfig()
		cfg.Method = method
	}
	i := &Integrator{cfg: cfg, settled: true}
	i.restDelta, i.restSpeed = cfg.restThresholds(0)
	i.ticker = loop.NewTicker(i.Tick)
	return i
}

// Config returns the physics constants in use.
func (i *Integrator) Config() Config { return i.cfg }

// Value returns the current value. It stays available after settling.
func (i *Integrator) Value() float64 { return i.target + i.offset }

// Velocity returns the current velocity.
func (i *Integrator) Velocity() float64 { return i.velocity }

// Target returns the current target.
func (i *Integrator) Target() float64 { return i.target }

// Running reports whether the integrator is scheduled on the loop.
func (i *Integrator) Running() bool { return i.ticker.Running() }

// Settled reports whether the value is at rest on the target.
func (i *Integrator) Settled() bool { return i.settled }

// Subscribe registers fn for every sample. The returned function removes
// it and may be called any number of times.
func (i *Integrator) Subscribe(fn func(value float64)) (unsubscribe func()) {
	return i.samples.add(fn)
}

// Subscribers returns the number of live sample subscriptions.
func (i *Integrator) Subscribers() int { return i.samples.len() }

// OnSettle registers fn for each time the integrator comes to rest.
func (i *Integrator) OnSettle(fn func(value float64)) (unsubscribe func()) {
	return i.settles.add(fn)
}

// Set moves the target. An idle integrator starts ticking; a running one
// keeps its velocity and heads for the new target. Setting the target an
// idle integrator already rests on settles immediately without a tick.
func (i *Integrator) Set(target float64) error {
	if math.IsNaN(target) || math.IsInf(target, 0) {
		return ErrInvalidTarget
	}
	value := i.Value()
	i.target, i.offset = target, value-target
	i.restDelta, i.restSpeed = i.cfg.restThresholds(target - value)
	if i.ticker.Running() {
		return nil
	}
	if i.offset == 0 && i.velocity == 0 {
		i.settled = true
		i.settles.emit(target)
		return nil
	}
	i.settled = false
	i.last = time.Time{}
	i.ticker.Start()
	return nil
}

// Jump places the value on v at rest, publishes one sample and reports
// settled. Any motion in flight is dropped.
func (i *Integrator) Jump(v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return ErrInvalidTarget
	}
	i.ticker.Stop()
	i.offset, i.target, i.velocity = 0, v, 0
	i.settled = true
	i.samples.emit(v)
	i.settles.emit(v)
	return nil
}

// Stop unschedules the integrator, leaving the value where it is.
func (i *Integrator) Stop() {
	i.ticker.Stop()
}

// Tick advances the simulation to now. The loop calls it once per frame;
// tests may call it directly with synthetic timestamps. Ticks that do not
// move time forward are ignored.
func (i *Integrator) Tick(now time.Time) {
	if i.settled {
		return
	}
	var dt float64
	if i.last.IsZero() {
		dt = nominalFrame
	} else {
		if !now.After(i.last) {
			return
		}
		dt = min(now.Sub(i.last).Seconds(), maxFrame)
	}
	i.last = now

	prev := i.Value()
	i.advance(dt)
	value := i.Value()

	atRest := math.Abs(i.offset) < i.restDelta && math.Abs(i.velocity) < i.restSpeed
	// A value too large to move by the remaining offset is already as close
	// to the target as a float64 can show.
	stuck := value == prev && value == i.target
	if atRest || stuck {
		i.offset, i.velocity = 0, 0
		i.settled = true
		i.ticker.Stop()
		i.samples.emit(i.target)
		i.settles.emit(i.target)
		return
	}
	i.samples.emit(value)
}

func (i *Integrator) advance(dt float64) {
	if i.cfg.Method == Analytic {
		if dt != i.analyticDt {
			i.analytic = harmonica.NewSpring(dt, i.cfg.AngularFrequency(), i.cfg.DampingRatio())
			i.analyticDt = dt
		}
		i.offset, i.velocity = i.analytic.Update(i.offset, i.velocity, 0)
		return
	}

	n := int(math.Ceil(dt / i.cfg.maxStep()))
	n = max(1, min(n, maxSubSteps))
	h := dt / float64(n)
	k, c, m := i.cfg.Stiffness, i.cfg.Damping, i.cfg.Mass
	for range n {
		a := (-k*i.offset - c*i.velocity) / m
		i.velocity += a * h
		i.offset += i.velocity * h
	}
}
