// Package frame drives per-frame callbacks from a host render loop.
//
// A host owns one Loop and calls Step once per rendering tick. Animations
// register a Ticker with the loop and Start it while they have work to do;
// when every ticker has stopped, Active reports false and the host can stop
// scheduling ticks altogether.
//
// Loop is not safe for concurrent use. All calls are expected to come from
// the goroutine that runs the host's update loop.
package frame

import "time"

// Clock provides the current time. Tests inject a fake clock to advance
// animations deterministically.
type Clock interface {
	Now() time.Time
}

// RealClock reads the system time.
type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now() }

// Loop is a set of tickers stepped together.
type Loop struct {
	clock   Clock
	active  []*Ticker
	stepped uint64
}

// NewLoop creates a loop using clock. A nil clock means RealClock.
func NewLoop(clock Clock) *Loop {
	if clock == nil {
		clock = RealClock{}
	}
	return &Loop{clock: clock}
}

// Now returns the loop clock's current time.
func (l *Loop) Now() time.Time { return l.clock.Now() }

// NewTicker creates a stopped ticker bound to this loop.
func (l *Loop) NewTicker(fn func(now time.Time)) *Ticker {
	return &Ticker{loop: l, fn: fn}
}

// Step runs every ticker that was active when Step was called, in the order
// they were started. Tickers stopped during the step are skipped; tickers
// started during the step run on the next one.
func (l *Loop) Step(now time.Time) {
	if len(l.active) == 0 {
		return
	}
	l.stepped++
	tickers := make([]*Ticker, len(l.active))
	copy(tickers, l.active)
	for _, t := range tickers {
		if t.running && t.fn != nil {
			t.fn(now)
		}
	}
}

// Active reports whether any ticker is running.
func (l *Loop) Active() bool { return len(l.active) > 0 }

// Len returns the number of running tickers.
func (l *Loop) Len() int { return len(l.active) }

// Steps returns how many non-empty steps the loop has run.
func (l *Loop) Steps() uint64 { return l.stepped }

func (l *Loop) add(t *Ticker) {
	l.active = append(l.active, t)
}

func (l *Loop) remove(t *Ticker) {
	for i, a := range l.active {
		if a == t {
			l.active = append(l.active[:i], l.active[i+1:]...)
			return
		}
	}
}

// Ticker calls a function on every loop step while started.
type Ticker struct {
	loop    *Loop
	fn      func(now time.Time)
	running bool
	started time.Time
}

// Start activates the ticker. Starting a running ticker does nothing.
func (t *Ticker) Start() {
	if t.running {
		return
	}
	t.running = true
	t.started = t.loop.Now()
	t.loop.add(t)
}

// Stop deactivates the ticker. Stopping a stopped ticker does nothing.
func (t *Ticker) Stop() {
	if !t.running {
		return
	}
	t.running = false
	t.loop.remove(t)
}

// Running reports whether the ticker is active.
func (t *Ticker) Running() bool { return t.running }

// Elapsed returns the time since Start, or zero when stopped.
func (t *Ticker) Elapsed() time.Duration {
	if !t.running {
		return 0
	}
	return t.loop.Now().Sub(t.started)
}
