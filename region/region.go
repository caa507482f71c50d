// Package region implements the integer region algebra used by the
// surface state engine: transform, scale and crop operations over
// axis-aligned boxes.
//
// It intentionally does not implement an optimized, band-coalesced
// region structure (the kind a pixman-style library provides) — that
// primitive is treated as an external collaborator. Region here is a
// plain list of boxes; duplicate or overlapping coverage is harmless
// for damage accounting, only wasteful, and is never observed by a
// client.
package region

// Box is an axis-aligned integer rectangle.
type Box struct {
	X, Y int32
	W, H int32
}

// Empty reports whether b covers no pixels.
func (b Box) Empty() bool { return b.W <= 0 || b.H <= 0 }

// FBox is an axis-aligned rectangle with fractional coordinates, used
// for viewport source boxes (wl_fixed values in the wire protocol).
type FBox struct {
	X, Y float64
	W, H float64
}

// Floor rounds an FBox outward to an integer Box: the origin rounds
// down and the extent rounds up, so the result never excludes a pixel
// that the fractional box partially covers.
func (b FBox) Floor() Box {
	x0 := floorf(b.X)
	y0 := floorf(b.Y)
	x1 := ceilf(b.X + b.W)
	y1 := ceilf(b.Y + b.H)
	return Box{X: x0, Y: y0, W: x1 - x0, H: y1 - y0}
}

// FloorF rounds f down to the nearest integer, for callers outside
// this package that need the same origin-rounding rule Floor uses.
func FloorF(f float64) int32 { return floorf(f) }

func floorf(f float64) int32 {
	i := int32(f)
	if f < 0 && float64(i) != f {
		i--
	}
	return i
}

func ceilf(f float64) int32 {
	i := int32(f)
	if f > 0 && float64(i) != f {
		i++
	}
	return i
}

// Region is an unordered collection of boxes. The zero value is the
// empty region.
type Region []Box

// Empty reports whether r covers no pixels.
func (r Region) Empty() bool {
	for _, b := range r {
		if !b.Empty() {
			return false
		}
	}
	return true
}

// Bounds returns the smallest box containing every box in r.
func (r Region) Bounds() Box {
	var acc Box
	first := true
	for _, b := range r {
		if b.Empty() {
			continue
		}
		if first {
			acc = b
			first = false
			continue
		}
		x0 := min32(acc.X, b.X)
		y0 := min32(acc.Y, b.Y)
		x1 := max32(acc.X+acc.W, b.X+b.W)
		y1 := max32(acc.Y+acc.H, b.Y+b.H)
		acc = Box{X: x0, Y: y0, W: x1 - x0, H: y1 - y0}
	}
	return acc
}

// Contains reports whether the point (x, y) is covered by r.
func (r Region) Contains(x, y int32) bool {
	for _, b := range r {
		if b.Empty() {
			continue
		}
		if x >= b.X && x < b.X+b.W && y >= b.Y && y < b.Y+b.H {
			return true
		}
	}
	return false
}

// UnionRect returns r extended to also cover b.
func UnionRect(r Region, b Box) Region {
	if b.Empty() {
		return r
	}
	return append(append(Region{}, r...), b)
}

// Union returns the union of a and b.
func Union(a, b Region) Region {
	if a.Empty() {
		return append(Region{}, b...)
	}
	out := append(Region{}, a...)
	for _, box := range b {
		if !box.Empty() {
			out = append(out, box)
		}
	}
	return out
}

// IntersectRect clips every box of r to b, dropping boxes that end up
// empty.
func IntersectRect(r Region, b Box) Region {
	if b.Empty() {
		return nil
	}
	out := make(Region, 0, len(r))
	for _, box := range r {
		c := clipBox(box, b)
		if !c.Empty() {
			out = append(out, c)
		}
	}
	return out
}

// Subtract removes the coverage of b from every box in r, splitting
// each box that overlaps b into the up to four rectangular fragments
// of itself left uncovered. Used by the compositor façade's region
// object to implement wl_region's subtract request (add is just
// UnionRect).
func Subtract(r Region, b Box) Region {
	if b.Empty() || len(r) == 0 {
		return r
	}
	out := make(Region, 0, len(r))
	for _, box := range r {
		out = append(out, subtractBox(box, b)...)
	}
	return out
}

// subtractBox returns the fragments of a left after removing b's
// coverage: a top strip, a bottom strip, and left/right strips
// spanning only the overlap's vertical extent, any of which may be
// omitted if a doesn't extend past the overlap on that side.
func subtractBox(a, b Box) []Box {
	c := clipBox(a, b)
	if c.Empty() {
		return []Box{a}
	}
	var frags []Box
	if c.Y > a.Y {
		frags = append(frags, Box{X: a.X, Y: a.Y, W: a.W, H: c.Y - a.Y})
	}
	if c.Y+c.H < a.Y+a.H {
		frags = append(frags, Box{X: a.X, Y: c.Y + c.H, W: a.W, H: a.Y + a.H - (c.Y + c.H)})
	}
	if c.X > a.X {
		frags = append(frags, Box{X: a.X, Y: c.Y, W: c.X - a.X, H: c.H})
	}
	if c.X+c.W < a.X+a.W {
		frags = append(frags, Box{X: c.X + c.W, Y: c.Y, W: a.X + a.W - (c.X + c.W), H: c.H})
	}
	return frags
}

func clipBox(a, b Box) Box {
	x0 := max32(a.X, b.X)
	y0 := max32(a.Y, b.Y)
	x1 := min32(a.X+a.W, b.X+b.W)
	y1 := min32(a.Y+a.H, b.Y+b.H)
	if x1 <= x0 || y1 <= y0 {
		return Box{}
	}
	return Box{X: x0, Y: y0, W: x1 - x0, H: y1 - y0}
}

// Translate shifts every box of r by (dx, dy).
func Translate(r Region, dx, dy int32) Region {
	if len(r) == 0 {
		return r
	}
	out := make(Region, len(r))
	for i, b := range r {
		out[i] = Box{X: b.X + dx, Y: b.Y + dy, W: b.W, H: b.H}
	}
	return out
}

func min32(a, b int32) int32 {
	if a < b {
		return a
	}
	return b
}

func max32(a, b int32) int32 {
	if a > b {
		return a
	}
	return b
}
