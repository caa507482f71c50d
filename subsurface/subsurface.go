// Package subsurface implements recursive parent/child sub-surface
// commit propagation on top of package surface: synchronized caching
// of a child's commits behind its parent's, desynchronized immediate
// commit, stacking order among siblings, and the mapped/unmapped
// bookkeeping hit-testing and traversal depend on.
//
// It needs no special access into package surface beyond what's
// already exported: a Subsurface is itself a surface.Role (so
// SetRole's one-role-per-surface rule rejects a second one) and a
// surface.ChildSlot (so it can sit directly in a parent's pending
// Above/Below lists), and synchronized caching is built entirely from
// surface.LockPending/UnlockCached plus the child's own
// Events.ClientCommit signal — grounded on the way
// subsurface_handle_surface_client_commit hooks the same signal in
// the collaborator this module is based on.
package subsurface

import (
	"fmt"

	"github.com/gviegas/surfacewm/surface"
)

const (
	errBadParent = surface.ProtocolErrorCode(1000 + iota)
	errRoleConflict
	errBadSibling
)

// Subsurface binds a child surface to a position within a parent
// surface's stacking order. It implements surface.Role (assigned to
// the child) and surface.ChildSlot (installed into the parent's
// Above/Below list), so the core surface package never needs to know
// sub-surfaces exist as a distinct concept.
type Subsurface struct {
	parent *surface.Surface
	child  *surface.Surface

	synchronized bool
	mapped       bool
	added        bool

	x, y int32

	hasCache  bool
	cachedSeq uint32
}

// New creates a sub-surface relationship between parent and child.
// child must not already carry a role, and assigning parent as a
// descendant of child (directly or transitively) is rejected as a
// protocol violation — the collaborator's BAD_PARENT error.
//
// A freshly created sub-surface starts synchronized (per-protocol
// default) and is placed at the top of the parent's "below" stack,
// i.e. immediately beneath the parent surface itself.
func New(parent, child *surface.Surface) (*Subsurface, error) {
	if wouldCycle(parent, child) {
		return nil, &surface.ProtocolError{
			Code: errBadParent,
			Err:  fmt.Errorf("subsurface: assigning this parent would create a cycle in the sub-surface tree"),
		}
	}
	sub := &Subsurface{parent: parent, child: child, synchronized: true}
	if err := child.SetRole(sub, sub, errRoleConflict); err != nil {
		return nil, err
	}
	p := parent.Pending()
	p.Below = append(p.Below, sub)

	child.Events.ClientCommit.Connect(sub.onChildClientCommit)
	return sub, nil
}

func wouldCycle(parent, child *surface.Surface) bool {
	if parent == child {
		return true
	}
	cur := parent
	for {
		r, ok := cur.Role().(*Subsurface)
		if !ok {
			return false
		}
		cur = r.parent
		if cur == child {
			return true
		}
	}
}

// Child implements surface.ChildSlot.
func (c *Subsurface) Child() *surface.Surface { return c.child }

// Position implements surface.ChildSlot.
func (c *Subsurface) Position() (x, y int32) { return c.x, c.y }

// Mapped implements surface.ChildSlot: a sub-surface participates in
// hit-testing and traversal once it has a non-null committed buffer.
func (c *Subsurface) Mapped() bool { return c.mapped }

// Name implements surface.Role.
func (c *Subsurface) Name() string { return "wl_subsurface" }

// Commit implements surface.RoleCommitter: tracks whether the child
// currently has content, which is what Mapped reports.
func (c *Subsurface) Commit(s *surface.Surface) {
	c.mapped = s.Texture().Valid()
}

// Notify implements surface.ChildSlot: called once the parent
// generation holding this slot becomes current. Releasing the child's
// cache here is what makes a synchronized child's content appear
// atomically with its parent's commit rather than with its own.
//
// It also fires new_subsurface on the parent, but only the first time
// this slot's parent generation lands as current — the protocol's
// "added" flag, gating the notification to once per child regardless
// of how many times the parent commits afterward.
func (c *Subsurface) Notify() {
	if !c.added {
		c.added = true
		c.parent.Events.NewSubsurface.Emit(c)
	}
	if c.hasCache {
		c.child.UnlockCached(c.cachedSeq)
		c.hasCache = false
	}
}

// onChildClientCommit is connected to the child's Events.ClientCommit.
// If the sub-surface is synchronized, it locks the child's just-
// finalized pending generation immediately — before the core checks
// whether pending is locked — so that generation is detached into a
// cached state instead of landing as current. Notify (above) releases
// it once the parent catches up.
func (c *Subsurface) onChildClientCommit(child *surface.Surface) {
	if !c.synchronized {
		return
	}
	c.cachedSeq = child.LockPending()
	c.hasCache = true
}

// SetSynchronized switches between synchronized (child commits wait
// for the parent) and desynchronized (child commits apply
// immediately) mode. Switching into desynchronized while a generation
// is already cached releases it right away, matching the protocol's
// "set_desync releases the cache" rule.
func (c *Subsurface) SetSynchronized(sync bool) {
	c.synchronized = sync
	if !sync && c.hasCache {
		c.child.UnlockCached(c.cachedSeq)
		c.hasCache = false
	}
}

// Synchronized reports the sub-surface's current sync mode. A
// sub-surface is effectively synchronized if it or any ancestor
// sub-surface up to the nearest non-sub-surface parent is
// synchronized (the protocol's "effectively synchronized" rule);
// Synchronized reports only this sub-surface's own flag, which is
// what onChildClientCommit and SetSynchronized need.
func (c *Subsurface) Synchronized() bool { return c.synchronized }

// SetPosition records the offset of child from parent's origin.
// Position reports the new offset at once, so hit-testing and
// traversal use it immediately; it is not deferred to the parent's
// next commit.
func (c *Subsurface) SetPosition(x, y int32) {
	c.x, c.y = x, y
}

// PlaceAbove restages this sub-surface directly above sibling within
// the parent's pending stacking order. sibling may be the parent
// surface itself, meaning "place at the bottom of the above-list",
// i.e. immediately above the parent.
//
// The new order takes effect at the parent's next commit, per the
// protocol's "takes effect on the next commit of the parent" rule for
// place_above/place_below.
func (c *Subsurface) PlaceAbove(sibling *surface.Surface) error {
	return c.restack(sibling, true)
}

// PlaceBelow is PlaceAbove's mirror: restages this sub-surface
// directly below sibling (or, if sibling is the parent, at the top of
// the below-list, immediately below the parent).
func (c *Subsurface) PlaceBelow(sibling *surface.Surface) error {
	return c.restack(sibling, false)
}

// restack removes c from wherever it currently sits in the parent's
// pending Above/Below lists and reinserts it adjacent to sibling.
// sibling must be either the parent itself or another child currently
// in one of those lists; anything else is a protocol error (the
// collaborator's "wl_subsurface not a sibling or the parent" case).
func (c *Subsurface) restack(sibling *surface.Surface, above bool) error {
	p := c.parent.Pending()

	if sibling == c.parent {
		p.Above = removeSlot(p.Above, c)
		p.Below = removeSlot(p.Below, c)
		if above {
			p.Above = append([]surface.ChildSlot{c}, p.Above...)
		} else {
			p.Below = append(p.Below, c)
		}
		return nil
	}

	inAbove := indexOf(p.Above, sibling) >= 0
	inBelow := indexOf(p.Below, sibling) >= 0
	if !inAbove && !inBelow {
		return &surface.ProtocolError{
			Code: errBadSibling,
			Err:  fmt.Errorf("subsurface: %v is not a sibling of this sub-surface", sibling),
		}
	}

	p.Above = removeSlot(p.Above, c)
	p.Below = removeSlot(p.Below, c)

	if inAbove {
		p.Above = insertAdjacent(p.Above, c, sibling, above)
	} else {
		p.Below = insertAdjacent(p.Below, c, sibling, above)
	}
	return nil
}

func indexOf(list []surface.ChildSlot, target *surface.Surface) int {
	for i, s := range list {
		if s.Child() == target {
			return i
		}
	}
	return -1
}

// insertAdjacent inserts slot immediately above (or below) sibling's
// position within list.
func insertAdjacent(list []surface.ChildSlot, slot surface.ChildSlot, sibling *surface.Surface, above bool) []surface.ChildSlot {
	i := indexOf(list, sibling)
	if above {
		i++
	}
	out := make([]surface.ChildSlot, 0, len(list)+1)
	out = append(out, list[:i]...)
	out = append(out, slot)
	out = append(out, list[i:]...)
	return out
}

// Destroy removes the sub-surface from its parent's stacking order.
// The child surface itself is unaffected (it keeps its role, per
// wl_subsurface's object-destruction semantics: the wl_surface
// outlives the wl_subsurface that positioned it).
func (c *Subsurface) Destroy() {
	p := c.parent.Pending()
	p.Above = removeSlot(p.Above, c)
	p.Below = removeSlot(p.Below, c)
	if c.hasCache {
		c.child.UnlockCached(c.cachedSeq)
		c.hasCache = false
	}
}

func removeSlot(list []surface.ChildSlot, target surface.ChildSlot) []surface.ChildSlot {
	for i, s := range list {
		if s == target {
			return append(list[:i:i], list[i+1:]...)
		}
	}
	return list
}
