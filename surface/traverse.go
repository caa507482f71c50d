package surface

import "github.com/gviegas/surfacewm/region"

// SurfaceAt recursively hit-tests (sx, sy), in s's local coordinates,
// against s and its mapped sub-surfaces: the above list is checked
// first (topmost child last in the list, so iterated in reverse),
// then s itself, then the below list (also reversed). It returns the
// hit surface and the point translated into that surface's own local
// coordinates.
func (s *Surface) SurfaceAt(sx, sy float64) (hit *Surface, localX, localY float64, ok bool) {
	cur := s.currentState()

	for i := len(cur.Above) - 1; i >= 0; i-- {
		c := cur.Above[i]
		if !c.Mapped() {
			continue
		}
		cx, cy := c.Position()
		if h, hx, hy, found := c.Child().SurfaceAt(sx-float64(cx), sy-float64(cy)); found {
			return h, hx, hy, true
		}
	}

	if s.PointAcceptsInput(sx, sy) {
		return s, sx, sy, true
	}

	for i := len(cur.Below) - 1; i >= 0; i-- {
		c := cur.Below[i]
		if !c.Mapped() {
			continue
		}
		cx, cy := c.Position()
		if h, hx, hy, found := c.Child().SurfaceAt(sx-float64(cx), sy-float64(cy)); found {
			return h, hx, hy, true
		}
	}

	return nil, 0, 0, false
}

// ForEachSurface visits s and every mapped descendant exactly once, in
// the protocol's defined stacking order (below subtree, self, above
// subtree, each in list order), passing each surface's offset
// relative to s's own origin.
func (s *Surface) ForEachSurface(visit func(surf *Surface, x, y int32)) {
	s.forEachSurface(0, 0, visit)
}

func (s *Surface) forEachSurface(x, y int32, visit func(*Surface, int32, int32)) {
	cur := s.currentState()
	for _, c := range cur.Below {
		if !c.Mapped() {
			continue
		}
		cx, cy := c.Position()
		c.Child().forEachSurface(x+cx, y+cy, visit)
	}

	visit(s, x, y)

	for _, c := range cur.Above {
		if !c.Mapped() {
			continue
		}
		cx, cy := c.Position()
		c.Child().forEachSurface(x+cx, y+cy, visit)
	}
}

// GetExtends returns the bounding box, in s's local coordinates, of s
// and every mapped descendant's logical rect.
func (s *Surface) GetExtends() region.Box {
	acc := region.Box{X: 0, Y: 0, W: s.currentState().Width, H: s.currentState().Height}
	s.ForEachSurface(func(surf *Surface, x, y int32) {
		c := surf.currentState()
		x0, y0 := min32(x, acc.X), min32(y, acc.Y)
		x1, y1 := max32(x+c.Width, acc.X+acc.W), max32(y+c.Height, acc.Y+acc.H)
		acc = region.Box{X: x0, Y: y0, W: x1 - x0, H: y1 - y0}
	})
	return acc
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
