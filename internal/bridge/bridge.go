// Package bridge turns spring samples into the integer a counter displays.
package bridge

import (
	"math"
	"strconv"
)

// Source is anything that publishes float samples, such as a
// spring.Integrator.
type Source interface {
	Subscribe(fn func(value float64)) (unsubscribe func())
}

// Bridge rounds samples and forwards changed values to its owner. It also
// owns the release of every subscription tied to the owner's lifetime.
type Bridge struct {
	owner     func(rounded float64)
	scope     Scope
	last      float64
	forwarded int
}

// New creates a bridge that forwards to owner. The initial displayed value
// is 0.
func New(owner func(rounded float64)) *Bridge {
	return &Bridge{owner: owner}
}

// Attach subscribes to src. The subscription is released by Close.
func (b *Bridge) Attach(src Source) {
	if b.scope.Closed() {
		return
	}
	b.scope.Own(src.Subscribe(b.sample))
}

// Own ties release to the bridge's lifetime.
func (b *Bridge) Own(release func()) { b.scope.Own(release) }

// Close releases everything the bridge owns and drops later samples.
// Calling Close again does nothing.
func (b *Bridge) Close() { b.scope.Close() }

// Closed reports whether Close has run.
func (b *Bridge) Closed() bool { return b.scope.Closed() }

// Rounded returns the last forwarded value.
func (b *Bridge) Rounded() float64 { return b.last }

// Forwarded returns how many values have reached the owner.
func (b *Bridge) Forwarded() int { return b.forwarded }

func (b *Bridge) sample(v float64) {
	if b.scope.Closed() {
		return
	}
	n := Round(v)
	if n == b.last {
		return
	}
	b.last = n
	b.forwarded++
	if b.owner != nil {
		b.owner(n)
	}
}

// Round returns the nearest integer, with halves rounded up toward
// positive infinity (2.5 → 3, -2.5 → -2). The result stays a float64 so
// values beyond the int64 range round exactly. Negative zero becomes 0.
func Round(v float64) float64 {
	r := math.Round(v)
	if v-r == 0.5 {
		r++
	}
	if r == 0 {
		return 0
	}
	return r
}

// Compose builds the displayed text for the rounded value n.
func Compose(prefix string, n float64, suffix string) string {
	return prefix + strconv.FormatFloat(n, 'f', -1, 64) + suffix
}
