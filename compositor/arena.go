package compositor

import "github.com/gviegas/surfacewm/internal/bitvec"

// arena is a growable handle-indexed slot allocator: a flat slice of
// T paired with a bit vector tracking which slots are occupied,
// generalizing the teacher's nodeMap/nodes pairing (node.Graph, in
// node/node.go, since removed) from one fixed element type to any T.
// Handle value 0 is never issued, reserved as the nil handle so
// zero-valued SurfaceHandle/RegionHandle fields are recognizably
// invalid.
type arena[T any] struct {
	slots []T
	used  bitvec.Vec[uint64]
}

// chunk is the number of slots added per grow, one bitvec.Vec[uint64]
// word's worth.
const chunk = 64

func (a *arena[T]) insert(v T) uint32 {
	if a.used.Rem() == 0 {
		a.slots = append(a.slots, make([]T, chunk)...)
		a.used.Grow(1)
	}
	idx, ok := a.used.Search()
	if !ok {
		panic("compositor: unexpected failure from bitvec.Vec.Search")
	}
	a.used.Set(idx)
	a.slots[idx] = v
	return uint32(idx) + 1
}

func (a *arena[T]) remove(h uint32) {
	if h == 0 {
		return
	}
	idx := int(h - 1)
	if idx >= len(a.slots) || !a.used.IsSet(idx) {
		return
	}
	var zero T
	a.slots[idx] = zero
	a.used.Unset(idx)
}

func (a *arena[T]) get(h uint32) (T, bool) {
	var zero T
	if h == 0 {
		return zero, false
	}
	idx := int(h - 1)
	if idx >= len(a.slots) || !a.used.IsSet(idx) {
		return zero, false
	}
	return a.slots[idx], true
}

// each calls f with every occupied slot's handle and value, in handle
// order. f returning false stops the iteration early.
func (a *arena[T]) each(f func(h uint32, v T) bool) {
	for idx := 0; idx < a.used.Len(); idx++ {
		if !a.used.IsSet(idx) {
			continue
		}
		if !f(uint32(idx)+1, a.slots[idx]) {
			return
		}
	}
}
