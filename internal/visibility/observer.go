// Package visibility reports when an on-screen element becomes visible.
//
// The package does not know about any UI toolkit. A host exposes each
// element through the Element capability and publishes a Geometry whenever
// the element or its viewport moves.
package visibility

// Element is the capability a host provides for an observable element.
//
// AttachObserver registers fn to receive geometry updates and returns an id
// for DetachObserver. A host may deliver the current geometry to fn before
// AttachObserver returns. After DetachObserver the host must not call fn.
type Element interface {
	AttachObserver(fn func(Geometry)) int
	DetachObserver(id int)
}

// Options configures an Observer.
type Options struct {
	// MarginPx grows the viewport used for the test; negative values shrink
	// it so the element must be further inside before it counts as visible.
	MarginPx float64
	// TriggerOnce stops observation after the first visible report.
	TriggerOnce bool
}

// Observer watches a single element.
type Observer struct {
	el   Element
	opts Options
	fn   func(visible bool)

	id        int
	attaching bool
	attached  bool
	done      bool

	visible   bool
	emitted   bool
	triggered bool
}

// Observe starts watching el and calls fn with each visibility change. The
// first report is always true: an element that starts hidden is not
// reported until it shows. With TriggerOnce, fn is called at most once.
func Observe(el Element, opts Options, fn func(visible bool)) *Observer {
	o := &Observer{el: el, opts: opts, fn: fn}
	if el == nil {
		o.done = true
		return o
	}
	o.attaching = true
	o.id = el.AttachObserver(o.update)
	o.attaching = false
	o.attached = true
	if o.done {
		// Triggered during the initial geometry delivery.
		o.detach()
	}
	return o
}

// Triggered reports whether the element has been visible at least once.
func (o *Observer) Triggered() bool { return o.triggered }

// Visible reports the last computed visibility.
func (o *Observer) Visible() bool { return o.visible }

// Active reports whether the observer still receives geometry.
func (o *Observer) Active() bool { return !o.done }

// Unobserve stops observation. It is safe to call at any time, any number
// of times, including from inside the visibility callback.
func (o *Observer) Unobserve() {
	o.done = true
	o.detach()
}

func (o *Observer) detach() {
	if !o.attached {
		return
	}
	o.attached = false
	o.el.DetachObserver(o.id)
}

func (o *Observer) update(g Geometry) {
	if o.done {
		return
	}
	visible := g.Visible(o.opts.MarginPx)
	if visible == o.visible && (o.emitted || !visible) {
		return
	}
	o.visible = visible
	o.emitted = true
	if visible {
		o.triggered = true
	}
	if o.opts.TriggerOnce {
		o.done = true
		if !o.attaching {
			o.detach()
		}
	}
	if o.fn != nil {
		o.fn(visible)
	}
}
