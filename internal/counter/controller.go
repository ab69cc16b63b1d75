// Package counter animates a displayed number from zero to a target the
// first time it becomes visible.
//
// A Controller moves through four states:
//
//	          Mount            visible            settled
//	Idle ───────────► Armed ───────────► Animating ───────────► Settled
//
// Close may be called from any state. It detaches the visibility watch,
// the spring subscription and the spring's tick, and no callback reaches
// the controller afterwards.
package counter

import (
	"fmt"
	"math"

	"github.com/olivier-w/countup/internal/bridge"
	"github.com/olivier-w/countup/internal/frame"
	"github.com/olivier-w/countup/internal/spring"
	"github.com/olivier-w/countup/internal/visibility"
	"github.com/rs/zerolog"
)

// State is the lifecycle stage of a Controller.
type State int

const (
	Idle State = iota
	Armed
	Animating
	Settled
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Armed:
		return "armed"
	case Animating:
		return "animating"
	case Settled:
		return "settled"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

type stateListener struct {
	fn      func(State)
	removed bool
}

// Controller coordinates the visibility trigger, the spring and the
// displayed text of one counter.
type Controller struct {
	cfg  Config
	opts options
	err  error

	el       visibility.Element
	spring   *spring.Integrator
	bridge   *bridge.Bridge
	observer *visibility.Observer

	state     State
	closed    bool
	text      string
	listeners []*stateListener
	log       zerolog.Logger
}

// New creates an idle counter for el. The spring is driven by loop.
// Invalid configuration never fails construction: see Err.
func New(el visibility.Element, loop *frame.Loop, cfg Config, opts ...Option) *Controller {
	o := options{
		margin: DefaultMargin,
		spring: spring.DefaultConfig(),
		log:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(&o)
	}

	cfg, err := cfg.normalize()
	d := o.settings.effectiveDuration(cfg.Duration)

	c := &Controller{
		cfg:       cfg,
		opts:      o,
		err:       err,
		el:        el,
		spring:    spring.New(loop, spring.ForDuration(o.spring, d)),
		text:      bridge.Compose(cfg.Prefix, 0, cfg.Suffix),
		log:       o.log,
	}
	if err != nil {
		c.log.Warn().Err(err).Msg("counter config normalized")
	}
	return c
}

// Mount arms the counter: it starts watching the element. Mount does
// nothing unless the counter is Idle.
func (c *Controller) Mount() {
	if c.closed || c.state != Idle {
		return
	}
	c.bridge = bridge.New(c.display)
	c.bridge.Own(c.spring.Stop)
	c.bridge.Own(c.spring.OnSettle(c.settled))
	c.bridge.Attach(c.spring)

	c.setState(Armed)
	if c.closed {
		return
	}
	c.observer = visibility.Observe(c.el, visibility.Options{
		MarginPx:    c.opts.margin,
		TriggerOnce: true,
	}, c.visible)
	c.bridge.Own(c.observer.Unobserve)
}

// Close tears the counter down. It is safe to call more than once and
// from any state.
func (c *Controller) Close() {
	if c.closed {
		return
	}
	c.closed = true
	if c.bridge != nil {
		c.bridge.Close()
	} else {
		c.spring.Stop()
	}
	c.listeners = nil
	c.log.Debug().Str("state", c.state.String()).Msg("counter closed")
}

// OnState registers fn for state transitions and returns a function that
// removes it.
func (c *Controller) OnState(fn func(State)) (unsubscribe func()) {
	if c.closed {
		return func() {}
	}
	l := &stateListener{fn: fn}
	c.listeners = append(c.listeners, l)
	return func() {
		if l.removed {
			return
		}
		l.removed = true
		for idx, x := range c.listeners {
			if x == l {
				c.listeners = append(c.listeners[:idx:idx], c.listeners[idx+1:]...)
				break
			}
		}
	}
}

// State returns the current state. After Close it is the last state
// reached.
func (c *Controller) State() State { return c.state }

// Closed reports whether Close has run.
func (c *Controller) Closed() bool { return c.closed }

// Text returns prefix + rounded value + suffix.
func (c *Controller) Text() string { return c.text }

// Rounded returns the displayed integer.
func (c *Controller) Rounded() float64 {
	if c.bridge == nil {
		return 0
	}
	return c.bridge.Rounded()
}

// Forwarded returns how many display updates the counter has received.
func (c *Controller) Forwarded() int {
	if c.bridge == nil {
		return 0
	}
	return c.bridge.Forwarded()
}

// Config returns the normalized configuration.
func (c *Controller) Config() Config { return c.cfg }

// Err returns the configuration problems that were absorbed at
// construction, or nil.
func (c *Controller) Err() error { return c.err }

// Spring exposes the underlying integrator for inspection.
func (c *Controller) Spring() *spring.Integrator { return c.spring }

func (c *Controller) visible(v bool) {
	if c.closed || !v || c.state != Armed {
		return
	}
	end := c.cfg.End
	if err := c.start(end); err != nil {
		c.log.Warn().Err(err).Float64("end", end).Msg("counter not started")
	}
}

func (c *Controller) start(end float64) error {
	// An invalid target stays Armed and keeps showing 0.
	if math.IsNaN(end) || math.IsInf(end, 0) {
		return ErrInvalidTarget
	}
	c.setState(Animating)
	if c.opts.settings.ReducedMotion {
		return c.spring.Jump(end)
	}
	return c.spring.Set(end)
}

func (c *Controller) settled(float64) {
	if c.closed || c.state != Animating {
		return
	}
	c.setState(Settled)
}

func (c *Controller) display(n float64) {
	if c.closed {
		return
	}
	c.text = bridge.Compose(c.cfg.Prefix, n, c.cfg.Suffix)
}

func (c *Controller) setState(s State) {
	if c.state == s {
		return
	}
	prev := c.state
	c.state = s
	c.log.Debug().Str("from", prev.String()).Str("to", s.String()).Msg("counter state")
	// Listeners run in registration order; one that closes the counter
	// stops the rest.
	for _, l := range append([]*stateListener(nil), c.listeners...) {
		if c.closed {
			return
		}
		if !l.removed {
			l.fn(s)
		}
	}
}
