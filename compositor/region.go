package compositor

import "github.com/gviegas/surfacewm/region"

// Region is the compositor-side object backing a client's wl_region:
// a mutable accumulator of rectangles, built by alternating Add
// (union) and Subtract requests, that is only ever consumed as a
// snapshot by Surface.SetOpaqueRegion/SetInputRegion. Client identity
// (the RegionHandle) is entirely the façade's concern; package region
// itself only implements the algebra.
type Region struct {
	acc region.Region
}

// Add unions a rectangle into the region.
func (r *Region) Add(x, y, w, h int32) {
	r.acc = region.UnionRect(r.acc, region.Box{X: x, Y: y, W: w, H: h})
}

// Subtract removes a rectangle's coverage from the region.
func (r *Region) Subtract(x, y, w, h int32) {
	r.acc = region.Subtract(r.acc, region.Box{X: x, Y: y, W: w, H: h})
}

// Snapshot returns the region's current contents. Callers must treat
// the result as read-only; Region methods never mutate a
// previously-returned slice in place.
func (r *Region) Snapshot() region.Region { return r.acc }

// CreateRegion creates a new, empty Region object and returns its
// handle.
func (c *Compositor) CreateRegion() RegionHandle {
	c.mu.Lock()
	defer c.mu.Unlock()
	h := c.regions.insert(&Region{})
	return RegionHandle(h)
}

// Region returns the Region identified by h, or nil if h is invalid
// or already destroyed.
func (c *Compositor) Region(h RegionHandle) *Region {
	c.mu.Lock()
	defer c.mu.Unlock()
	r, ok := c.regions.get(uint32(h))
	if !ok {
		return nil
	}
	return r
}

// DestroyRegion releases the handle. The client's prior
// SetOpaqueRegion/SetInputRegion calls already copied the region's
// contents into surface state, so this has no effect beyond freeing
// the handle slot — matching wl_region's "destroy" request, which
// doesn't affect surfaces it was already applied to.
func (c *Compositor) DestroyRegion(h RegionHandle) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.regions.remove(uint32(h))
}
