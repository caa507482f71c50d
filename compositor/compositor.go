// Package compositor implements the façade (C7) client requests
// reach first: creating surfaces and regions, tracking which surfaces
// are roots of a stacking order (as opposed to sub-surfaces, which
// only ever appear nested inside a root's tree), and the
// whole-scene operations — hit-testing, traversal, bounding, damage
// queries, frame-done fan-out — that only make sense looking across
// every live surface rather than at one in isolation.
//
// Apart from package buffer's provider registry, it is the one place
// in this module that takes a lock (Compositor.mu), matching the teacher's driver.Register/Providers
// pattern (driver/driver.go): individual surface.Surface values stay
// single-threaded, but SurfaceAt/ForEachSurface may run from a
// renderer goroutine concurrently with a display thread processing
// commits, so the registry itself must serialize.
package compositor

import (
	"sync"

	"github.com/gviegas/surfacewm/buffer"
	"github.com/gviegas/surfacewm/region"
	"github.com/gviegas/surfacewm/surface"
	"github.com/gviegas/surfacewm/trace"
)

// SurfaceHandle identifies a live surface registered with a
// Compositor. The zero value, NilSurface, never identifies a real
// surface.
type SurfaceHandle uint32

// NilSurface is the invalid SurfaceHandle.
const NilSurface SurfaceHandle = 0

// RegionHandle identifies a live Region registered with a
// Compositor. The zero value, NilRegion, never identifies a real
// region.
type RegionHandle uint32

// NilRegion is the invalid RegionHandle.
const NilRegion RegionHandle = 0

// Compositor is the entry point client requests bind to: it mints
// surfaces and regions, tracks root-level stacking order, and answers
// whole-scene queries over every live surface.
//
// The zero value is not usable; construct with New.
type Compositor struct {
	mu sync.Mutex

	provider buffer.Provider
	tracer   *trace.Tracer

	surfaces arena[*surface.Surface]
	roots    []SurfaceHandle // stacking order, bottom to top

	regions arena[*Region]

	destroyed bool

	Events struct {
		// NewSurface fires once a surface is registered, immediately
		// before it's returned to the caller.
		NewSurface surface.Signal[SurfaceHandle]
		// DestroySurface fires once a surface's own Events.Destroy has
		// run and its handle has been freed.
		DestroySurface surface.Signal[SurfaceHandle]
		// Destroy fires once, when the Compositor itself is torn down
		// (matching the collaborator's per-compositor "destroy" signal,
		// as distinct from a single surface's own destroy).
		Destroy surface.Signal[*Compositor]
	}
}

// New creates a Compositor. provider is the buffer.Provider every
// surface it creates will use to upload/patch textures; tracer
// receives every surface's commit-pipeline trace spans (nil selects
// trace.Noop()).
func New(provider buffer.Provider, tracer *trace.Tracer) *Compositor {
	if tracer == nil {
		tracer = trace.Noop()
	}
	return &Compositor{provider: provider, tracer: tracer}
}

// CreateSurface creates a new root surface (wl_compositor's
// create_surface request) and returns its handle. The surface starts
// as the topmost root; place_above/place_below-style reordering among
// roots is outside this module's scope (spec'd as output/window-
// manager policy, not the surface state engine).
func (c *Compositor) CreateSurface() SurfaceHandle {
	c.mu.Lock()
	s := surface.New(c.provider, c.tracer)
	h := SurfaceHandle(c.surfaces.insert(s))
	c.roots = append(c.roots, h)
	c.mu.Unlock()

	s.Events.Destroy.Connect(func(*surface.Surface) {
		c.mu.Lock()
		c.surfaces.remove(uint32(h))
		c.roots = removeHandle(c.roots, h)
		c.mu.Unlock()
		c.Events.DestroySurface.Emit(h)
	})

	c.Events.NewSurface.Emit(h)
	return h
}

// Surface returns the surface.Surface identified by h, or nil if h is
// invalid or the surface has been destroyed.
func (c *Compositor) Surface(h SurfaceHandle) *surface.Surface {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.surfaces.get(uint32(h))
	if !ok {
		return nil
	}
	return s
}

// DestroySurface tears down the surface identified by h (its
// surface.Surface.Destroy, which in turn fires Events.Destroy and
// triggers the registry cleanup connected in CreateSurface). It is a
// no-op if h is invalid.
func (c *Compositor) DestroySurface(h SurfaceHandle) {
	s := c.Surface(h)
	if s == nil {
		return
	}
	s.Destroy()
}

// Destroy tears down every surface the Compositor still owns, in
// stacking order, then fires Events.Destroy. It is idempotent; calling
// it more than once after the first has no further effect.
func (c *Compositor) Destroy() {
	c.mu.Lock()
	if c.destroyed {
		c.mu.Unlock()
		return
	}
	c.destroyed = true
	roots := append([]SurfaceHandle(nil), c.roots...)
	c.mu.Unlock()

	for _, h := range roots {
		c.DestroySurface(h)
	}
	c.Events.Destroy.Emit(c)
}

func removeHandle(list []SurfaceHandle, h SurfaceHandle) []SurfaceHandle {
	for i, e := range list {
		if e == h {
			return append(list[:i], list[i+1:]...)
		}
	}
	return list
}

// rootSurfaces returns a snapshot of the current root list, topmost
// last, each paired with its live *surface.Surface. Surfaces whose
// role places them inside a parent (a surface.ChildSlot role, such as
// a sub-surface) are skipped: they are reached through their parent.
func (c *Compositor) rootSurfaces() []*surface.Surface {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]*surface.Surface, 0, len(c.roots))
	for _, h := range c.roots {
		if s, ok := c.surfaces.get(uint32(h)); ok {
			if _, nested := s.Role().(surface.ChildSlot); nested {
				continue
			}
			out = append(out, s)
		}
	}
	return out
}

// SurfaceAt hit-tests every root surface, topmost first, recursing
// into each root's sub-surface tree via surface.SurfaceAt. It returns
// the deepest hit surface and the point translated into that
// surface's local coordinates.
func (c *Compositor) SurfaceAt(x, y float64) (hit *surface.Surface, localX, localY float64, ok bool) {
	roots := c.rootSurfaces()
	for i := len(roots) - 1; i >= 0; i-- {
		if hit, lx, ly, found := roots[i].SurfaceAt(x, y); found {
			return hit, lx, ly, true
		}
	}
	return nil, 0, 0, false
}

// ForEachSurface visits every root (mapped or not) and every mapped
// sub-surface reachable from it, bottom to top, root order first then each root's own sub-surface
// traversal order. x, y are the surface's position in the global
// coordinate space (the root's own position is always 0,0 — callers
// that place roots in a larger desktop space translate themselves).
func (c *Compositor) ForEachSurface(visit func(s *surface.Surface, x, y int32)) {
	for _, root := range c.rootSurfaces() {
		root.ForEachSurface(visit)
	}
}

// GetExtends returns the bounding box of every root and its
// sub-surface tree, across every root. Each root's own GetExtends
// already accounts for its descendants, so this unions one box per
// root rather than re-deriving bounds per visited surface.
func (c *Compositor) GetExtends() region.Box {
	var acc region.Region
	for _, root := range c.rootSurfaces() {
		acc = region.UnionRect(acc, root.GetExtends())
	}
	return acc.Bounds()
}

// SendFrameDone fires every live surface's queued frame callbacks with
// timestampMs, for a display that just finished presenting a frame.
func (c *Compositor) SendFrameDone(timestampMs uint32) {
	c.mu.Lock()
	var all []*surface.Surface
	c.surfaces.each(func(_ uint32, s *surface.Surface) bool {
		all = append(all, s)
		return true
	})
	c.mu.Unlock()

	for _, s := range all {
		s.SendFrameDone(timestampMs)
	}
}
