package ui

import (
	"math"

	"github.com/olivier-w/countup/internal/counter"
	"github.com/olivier-w/countup/internal/stats"
	"github.com/olivier-w/countup/internal/visibility"
)

// statRow is one counter on the board. It is the visibility.Element the
// counter watches: the model publishes the row's geometry whenever the
// board scrolls or resizes.
type statRow struct {
	stat  stats.Stat
	ctrl  *counter.Controller
	unsub func()

	observers map[int]func(visibility.Geometry)
	nextID    int
	geom      visibility.Geometry
	measured  bool
}

func newStatRow(stat stats.Stat) *statRow {
	return &statRow{stat: stat, observers: make(map[int]func(visibility.Geometry))}
}

// AttachObserver registers fn and hands it the latest geometry, if any.
func (r *statRow) AttachObserver(fn func(visibility.Geometry)) int {
	r.nextID++
	id := r.nextID
	r.observers[id] = fn
	if r.measured {
		fn(r.geom)
	}
	return id
}

func (r *statRow) DetachObserver(id int) {
	delete(r.observers, id)
}

func (r *statRow) publish(g visibility.Geometry) {
	r.geom = g
	r.measured = true
	for _, fn := range r.observers {
		fn(g)
	}
}

// close tears the row's counter down.
func (r *statRow) close() {
	if r.unsub != nil {
		r.unsub()
		r.unsub = nil
	}
	if r.ctrl != nil {
		r.ctrl.Close()
	}
}

// fraction is how far the displayed value is along the way to its end.
func (r *statRow) fraction() float64 {
	end := r.ctrl.Config().End
	if math.IsNaN(end) || math.IsInf(end, 0) {
		return 0
	}
	if end == 0 {
		if r.ctrl.State() == counter.Settled {
			return 1
		}
		return 0
	}
	return min(max(r.ctrl.Rounded()/end, 0), 1)
}
