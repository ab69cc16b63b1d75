package counter

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/olivier-w/countup/internal/frame"
	"github.com/olivier-w/countup/internal/spring"
	"github.com/olivier-w/countup/internal/visibility"
)

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time { return c.now }

type fakeElement struct {
	observers map[int]func(visibility.Geometry)
	nextID    int
	attached  int
	detached  int
}

func newFakeElement() *fakeElement {
	return &fakeElement{observers: make(map[int]func(visibility.Geometry))}
}

func (e *fakeElement) AttachObserver(fn func(visibility.Geometry)) int {
	e.nextID++
	e.attached++
	e.observers[e.nextID] = fn
	return e.nextID
}

func (e *fakeElement) DetachObserver(id int) {
	if _, ok := e.observers[id]; ok {
		e.detached++
		delete(e.observers, id)
	}
}

// scrollTo places a 20px-high element at y inside a 600px viewport.
func (e *fakeElement) scrollTo(y float64) {
	g := visibility.Geometry{
		Element:  visibility.Rect{X: 0, Y: y, W: 200, H: 20},
		Viewport: visibility.Rect{X: 0, Y: 0, W: 800, H: 600},
	}
	for _, fn := range e.observers {
		fn(g)
	}
}

func (e *fakeElement) show() { e.scrollTo(100) }
func (e *fakeElement) hide() { e.scrollTo(2000) }

type rig struct {
	clock *fakeClock
	loop  *frame.Loop
	el    *fakeElement
}

func newRig() *rig {
	clock := &fakeClock{now: time.Unix(5000, 0)}
	return &rig{clock: clock, loop: frame.NewLoop(clock), el: newFakeElement()}
}

func (r *rig) counter(cfg Config, opts ...Option) *Controller {
	c := New(r.el, r.loop, cfg, opts...)
	c.Mount()
	return c
}

func (r *rig) frames(n int) {
	for range n {
		r.clock.now = r.clock.now.Add(time.Second / 60)
		r.loop.Step(r.clock.now)
	}
}

func (r *rig) settle(t *testing.T) int {
	t.Helper()
	n := 0
	for r.loop.Active() {
		if n > 5000 {
			t.Fatal("counter did not settle")
		}
		r.frames(1)
		n++
	}
	return n
}

func TestCounterComposesFinalText(t *testing.T) {
	r := newRig()
	c := r.counter(Config{End: 1200, Prefix: "$", Suffix: "+"})
	if c.Text() != "$0+" {
		t.Fatalf("expected $0+ before trigger, got %q", c.Text())
	}
	r.el.show()
	if c.State() != Animating {
		t.Fatalf("expected animating, got %v", c.State())
	}
	r.settle(t)

	if c.State() != Settled {
		t.Fatalf("expected settled, got %v", c.State())
	}
	if c.Text() != "$1200+" || c.Rounded() != 1200 {
		t.Fatalf("expected $1200+, got %q (%v)", c.Text(), c.Rounded())
	}
}

func TestCounterSettledMatchesRoundedEnd(t *testing.T) {
	for _, end := range []float64{1, 2.5, 99.4, 1234.6, -3.5, -1000.2, 1e6} {
		r := newRig()
		c := r.counter(Config{End: end, Duration: 500 * time.Millisecond})
		r.el.show()
		r.settle(t)
		want := math.Floor(end + 0.5)
		if c.State() != Settled || c.Rounded() != want {
			t.Fatalf("end %v: expected settled at %v, got %v at %v", end, want, c.State(), c.Rounded())
		}
	}
}

func TestCounterLargeEndSettles(t *testing.T) {
	tests := []struct {
		end    float64
		method spring.Method
		want   string
	}{
		{1e13, spring.Euler, "10000000000000"},
		{1e14, spring.Euler, "100000000000000"},
		{1e16, spring.Euler, "10000000000000000"},
		{1e17, spring.Euler, "100000000000000000"},
		{1e17, spring.Analytic, "100000000000000000"},
		{-1e17, spring.Euler, "-100000000000000000"},
		{1e19, spring.Euler, "10000000000000000000"},
		{1e19, spring.Analytic, "10000000000000000000"},
	}
	for _, tt := range tests {
		r := newRig()
		sc := spring.DefaultConfig()
		sc.Method = tt.method
		c := r.counter(Config{End: tt.end}, WithSpring(sc))
		r.el.show()
		r.settle(t)
		if c.State() != Settled {
			t.Fatalf("end %v (%s): expected settled, got %v", tt.end, tt.method, c.State())
		}
		if c.Rounded() != tt.end || c.Text() != tt.want {
			t.Fatalf("end %v (%s): expected %s, got %q", tt.end, tt.method, tt.want, c.Text())
		}
	}
}

func TestCounterListenerClosingStopsOthers(t *testing.T) {
	r := newRig()
	c := New(r.el, r.loop, Config{End: 10})
	var order []string
	c.OnState(func(State) {
		order = append(order, "first")
		c.Close()
	})
	c.OnState(func(State) { order = append(order, "second") })
	c.Mount()

	if len(order) != 1 || order[0] != "first" {
		t.Fatalf("expected only the first listener to run, got %v", order)
	}
	if !c.Closed() || r.loop.Active() {
		t.Fatal("expected counter closed with no ticks")
	}
}

func TestCounterListenersRunInOrder(t *testing.T) {
	r := newRig()
	c := New(r.el, r.loop, Config{End: 10})
	var order []int
	for i := range 5 {
		c.OnState(func(State) { order = append(order, i) })
	}
	remove := c.OnState(func(State) { order = append(order, 99) })
	remove()
	remove()
	c.Mount()

	for i, v := range order {
		if v != i {
			t.Fatalf("expected listeners in registration order, got %v", order)
		}
	}
	if len(order) != 5 {
		t.Fatalf("expected 5 calls, got %v", order)
	}
}

func TestCounterZeroEndSettlesWithoutFrames(t *testing.T) {
	r := newRig()
	c := r.counter(Config{End: 0})
	r.el.show()
	if c.State() != Settled {
		t.Fatalf("expected immediate settle, got %v", c.State())
	}
	if r.loop.Active() {
		t.Fatal("expected no frames scheduled")
	}
	if c.Text() != "0" {
		t.Fatalf("expected 0, got %q", c.Text())
	}
}

func TestCounterNegativeEndDescends(t *testing.T) {
	r := newRig()
	c := r.counter(Config{End: -50})
	r.el.show()
	prev := 0.0
	for r.loop.Active() {
		r.frames(1)
		if c.Rounded() > prev {
			t.Fatalf("expected descending values, got %v after %v", c.Rounded(), prev)
		}
		prev = c.Rounded()
	}
	if c.Text() != "-50" {
		t.Fatalf("expected -50, got %q", c.Text())
	}
}

func TestCounterTriggersOnce(t *testing.T) {
	r := newRig()
	c := r.counter(Config{End: 10})
	animating := 0
	c.OnState(func(s State) {
		if s == Animating {
			animating++
		}
	})

	r.el.show()
	r.frames(3)
	r.el.hide()
	r.el.show()
	r.settle(t)
	r.el.hide()
	r.el.show()

	if animating != 1 {
		t.Fatalf("expected a single trigger, got %d", animating)
	}
	if r.el.attached != 1 || r.el.detached != 1 {
		t.Fatalf("expected one watch attached and released, got %d/%d", r.el.attached, r.el.detached)
	}
}

func TestCounterStateSequence(t *testing.T) {
	r := newRig()
	c := New(r.el, r.loop, Config{End: 25})
	var states []State
	c.OnState(func(s State) { states = append(states, s) })
	if c.State() != Idle {
		t.Fatalf("expected idle, got %v", c.State())
	}
	c.Mount()
	c.Mount()
	r.el.show()
	r.settle(t)

	want := []State{Armed, Animating, Settled}
	if len(states) != len(want) {
		t.Fatalf("expected %v, got %v", want, states)
	}
	for i := range want {
		if states[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, states)
		}
	}
}

func TestCounterCloseBeforeTriggerForwardsNothing(t *testing.T) {
	r := newRig()
	c := r.counter(Config{End: 500})
	before := c.Forwarded()
	c.Close()
	r.el.show()
	r.frames(30)

	if c.Forwarded() != before {
		t.Fatalf("expected forwarding count %d, got %d", before, c.Forwarded())
	}
	if c.State() != Armed || c.Text() != "0" {
		t.Fatalf("expected armed at 0, got %v %q", c.State(), c.Text())
	}
	if len(r.el.observers) != 0 {
		t.Fatal("expected visibility watch released")
	}
}

func TestCounterCloseWhileAnimatingLeavesNoTicks(t *testing.T) {
	r := newRig()
	c := r.counter(Config{End: 1000})
	r.el.show()
	r.frames(10)
	text := c.Text()
	if text == "0" {
		t.Fatal("expected counter to have moved")
	}

	c.Close()
	if r.loop.Active() {
		t.Fatal("expected spring ticker stopped")
	}
	if c.Spring().Subscribers() != 0 {
		t.Fatalf("expected no spring subscribers, got %d", c.Spring().Subscribers())
	}
	c.Spring().Tick(r.clock.now.Add(time.Second))
	if c.Text() != text || c.State() != Animating {
		t.Fatalf("expected frozen text %q in animating, got %q in %v", text, c.Text(), c.State())
	}
}

func TestCounterCloseTwice(t *testing.T) {
	r := newRig()
	c := r.counter(Config{End: 3})
	c.Close()
	c.Close()
	if !c.Closed() || r.el.detached != 1 {
		t.Fatalf("expected one release, got %d", r.el.detached)
	}

	unmounted := New(r.el, r.loop, Config{End: 3})
	unmounted.Close()
	unmounted.Close()
	unmounted.Mount()
	if unmounted.State() != Idle || r.el.attached != 1 {
		t.Fatal("expected closed counter to stay idle and never attach")
	}
}

func TestCounterInvalidEndStaysArmed(t *testing.T) {
	for _, end := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		r := newRig()
		c := r.counter(Config{End: end, Suffix: "%"})
		if !errors.Is(c.Err(), ErrInvalidTarget) {
			t.Fatalf("expected ErrInvalidTarget, got %v", c.Err())
		}
		r.el.show()
		r.frames(5)
		if c.State() != Armed || c.Text() != "0%" {
			t.Fatalf("expected armed at 0%%, got %v %q", c.State(), c.Text())
		}
		if r.loop.Active() {
			t.Fatal("expected no animation for invalid end")
		}
	}
}

func TestCounterInvalidDurationFallsBack(t *testing.T) {
	r := newRig()
	c := r.counter(Config{End: 5, Duration: -time.Second})
	if !errors.Is(c.Err(), ErrInvalidDuration) {
		t.Fatalf("expected ErrInvalidDuration, got %v", c.Err())
	}
	if c.Config().Duration != DefaultDuration {
		t.Fatalf("expected default duration, got %v", c.Config().Duration)
	}
	r.el.show()
	r.settle(t)
	if c.Text() != "5" {
		t.Fatalf("expected 5, got %q", c.Text())
	}
}

func TestCounterReducedMotionJumps(t *testing.T) {
	r := newRig()
	c := r.counter(Config{End: 840, Suffix: "k"}, WithSettings(Settings{ReducedMotion: true}))
	r.el.show()
	if c.State() != Settled || c.Text() != "840k" {
		t.Fatalf("expected immediate 840k, got %v %q", c.State(), c.Text())
	}
	if c.Forwarded() != 1 || r.loop.Active() {
		t.Fatalf("expected a single update and no frames, got %d", c.Forwarded())
	}
}

func TestCounterAnimationSpeedShortensSettle(t *testing.T) {
	measure := func(speed float64) int {
		r := newRig()
		c := r.counter(Config{End: 1000}, WithSettings(Settings{AnimationSpeed: speed}))
		r.el.show()
		n := r.settle(t)
		if c.Rounded() != 1000 {
			t.Fatalf("expected 1000, got %v", c.Rounded())
		}
		return n
	}
	normal, fast := measure(1), measure(2)
	if fast >= normal {
		t.Fatalf("expected speed 2 to settle sooner: %d vs %d frames", fast, normal)
	}
	if measure(0) != normal {
		t.Fatal("expected speed 0 to behave as speed 1")
	}
}

func TestCounterLongerDurationSettlesNoSooner(t *testing.T) {
	prev := 0
	for _, d := range []time.Duration{time.Second, 2 * time.Second, 3 * time.Second} {
		r := newRig()
		r.counter(Config{End: 1200, Duration: d})
		r.el.show()
		n := r.settle(t)
		if n < prev {
			t.Fatalf("duration %v settled in %d frames, previous %d", d, n, prev)
		}
		prev = n
	}
}

func TestCounterMarginDelaysTrigger(t *testing.T) {
	r := newRig()
	c := r.counter(Config{End: 7}, WithMargin(-50))

	r.el.scrollTo(590)
	if c.State() != Armed {
		t.Fatalf("expected element at the edge to stay armed, got %v", c.State())
	}
	r.el.scrollTo(540)
	if c.State() != Animating {
		t.Fatalf("expected trigger inside the margin, got %v", c.State())
	}
}

func TestCounterListenerUnsubscribe(t *testing.T) {
	r := newRig()
	c := New(r.el, r.loop, Config{End: 1})
	calls := 0
	unsub := c.OnState(func(State) { calls++ })
	unsub()
	unsub()
	c.Mount()
	if calls != 0 {
		t.Fatalf("expected no calls after unsubscribe, got %d", calls)
	}
}

func TestSeconds(t *testing.T) {
	if Seconds(1.5) != 1500*time.Millisecond {
		t.Fatalf("expected 1.5s, got %v", Seconds(1.5))
	}
	for _, v := range []float64{0, -1, math.NaN(), math.Inf(1)} {
		if Seconds(v) != 0 {
			t.Fatalf("expected 0 for %v, got %v", v, Seconds(v))
		}
	}
}
