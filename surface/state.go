package surface

import (
	"github.com/gviegas/surfacewm/buffer"
	"github.com/gviegas/surfacewm/region"
)

// CommitMask records which fields of a State were touched by a
// client request since the last commit. Squashing a state forward
// only overwrites a destination field when the corresponding bit is
// set in the source; unset fields are left at the destination's
// previous value (or cleared, depending on the field — see
// Surface.squashInto).
type CommitMask uint32

const (
	CommitBuffer CommitMask = 1 << iota
	CommitSurfaceDamage
	CommitBufferDamage
	CommitOpaqueRegion
	CommitInputRegion
	CommitScale
	CommitTransform
	CommitViewport
	CommitFrameCallback
)

// FrameCallback is invoked once, with the presentation timestamp in
// milliseconds, the next time the surface's content is considered
// displayed (see Surface.SendFrameDone).
type FrameCallback func(timestampMs uint32)

// Viewport carries the optional wp_viewport cropping (Src) and
// scaling (Dst) applied between the buffer and the surface's logical
// size.
type Viewport struct {
	HasSrc bool
	Src    region.FBox // in the transformed buffer divided by scale (surface units)

	HasDst bool
	DstW   int32
	DstH   int32
}

// InputRegion is the region of a surface that accepts pointer and
// touch input. The zero value is not equivalent to Unbounded: a
// client that never calls SetInputRegion gets the unbounded default,
// but a client that explicitly sets an empty region gets exactly
// that — no input anywhere.
type InputRegion struct {
	Unbounded bool
	Region    region.Region
}

// ChildSlot is a per-commit ordered entry in a parent State's Above
// or Below list. Sub-surface coordination (package subsurface)
// implements this interface; the surface core only needs to carry,
// reorder and recurse through slots without knowing the concrete
// coordination type, which keeps the compositor's hit-testing and
// traversal logic entirely generic over "things positioned relative
// to a parent".
type ChildSlot interface {
	// Child returns the positioned surface.
	Child() *Surface
	// Position returns the child's offset from the parent's origin.
	// The sub-surface implementation reports its latest SetPosition
	// value; it is not snapshotted per parent commit.
	Position() (x, y int32)
	// Mapped reports whether the child participates in hit-testing,
	// traversal and extent computation.
	Mapped() bool
	// Notify is called once, in reverse list order, when the parent
	// State carrying this slot becomes current.
	Notify()
}

// State is one generation of a surface's double/triple-buffered
// protocol state: the set of fields a client accumulates into
// "pending" across zero or more requests, which commit() then
// squashes toward "current" — through any cached generations a
// synced extension is holding back.
type State struct {
	Scale     int32
	Transform region.Transform
	Viewport  Viewport

	Buffer buffer.Client
	DX, DY int32 // offset carried by the most recent attach

	BufferW, BufferH int32 // dimensions of the attached buffer
	Width, Height    int32 // logical surface size, derived in finalizePending

	SurfaceDamage region.Region // surface-local, accumulated by Damage
	BufferDamage  region.Region // buffer-local, accumulated by DamageBuffer

	Opaque region.Region
	Input  InputRegion

	Frame []FrameCallback

	Above, Below []ChildSlot

	Committed CommitMask
	Seq       uint32
	NLocks    int32

	// Shadows holds one synced-extension shadow slot per entry in
	// Surface.extensions, in the same order. A shadow's lifetime is
	// tied to the State that owns it: created alongside the State,
	// destroyed when the State is (see Extension).
	Shadows []interface{}
}

func newState() *State {
	return &State{
		Scale:     1,
		Transform: region.Normal,
		Input:     InputRegion{Unbounded: true},
	}
}
