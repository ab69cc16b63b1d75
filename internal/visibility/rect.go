package visibility

// Rect is an axis-aligned rectangle in host units (cells, pixels).
type Rect struct {
	X, Y, W, H float64
}

// Inset grows r by px on every side. Negative px shrinks it; a rect shrunk
// past its center collapses to zero size around the center.
func (r Rect) Inset(px float64) Rect {
	out := Rect{X: r.X - px, Y: r.Y - px, W: r.W + 2*px, H: r.H + 2*px}
	if out.W < 0 {
		out.X = r.X + r.W/2
		out.W = 0
	}
	if out.H < 0 {
		out.Y = r.Y + r.H/2
		out.H = 0
	}
	return out
}

// Intersect returns the overlap of r and o, or an empty rect.
func (r Rect) Intersect(o Rect) Rect {
	x0 := max(r.X, o.X)
	y0 := max(r.Y, o.Y)
	x1 := min(r.X+r.W, o.X+o.W)
	y1 := min(r.Y+r.H, o.Y+o.H)
	if x1 <= x0 || y1 <= y0 {
		return Rect{}
	}
	return Rect{X: x0, Y: y0, W: x1 - x0, H: y1 - y0}
}

// Area returns W*H, or 0 for a degenerate rect.
func (r Rect) Area() float64 {
	if r.W <= 0 || r.H <= 0 {
		return 0
	}
	return r.W * r.H
}

// Empty reports whether r has no area.
func (r Rect) Empty() bool { return r.Area() == 0 }

// Geometry is one measurement of an element against the viewport it is
// displayed in.
type Geometry struct {
	Element  Rect
	Viewport Rect
}

// Visible reports whether the element overlaps the viewport once the
// viewport has been grown by marginPx (negative shrinks it).
func (g Geometry) Visible(marginPx float64) bool {
	return !g.Element.Intersect(g.Viewport.Inset(marginPx)).Empty()
}
