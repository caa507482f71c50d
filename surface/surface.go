// Package surface implements the client drawing-surface lifecycle at
// the center of the compositor: the pending/cached/current state
// queue, synced-extension plug-ins, commit-time damage accounting and
// recursive sub-surface traversal. It is the direct generalization of
// wlr_surface from the collaborator this module is grounded on
// (types/wlr_compositor.c), re-expressed with Go's ordinary value and
// interface idioms in place of intrusive wl_list/wl_signal plumbing.
package surface

import (
	"math"

	"github.com/gviegas/surfacewm/buffer"
	"github.com/gviegas/surfacewm/region"
	"github.com/gviegas/surfacewm/trace"
)

// Output is an opaque handle identifying an output (monitor) a
// surface may be shown on. Callers should use a comparable concrete
// type (typically a pointer) so SendEnter/SendLeave bookkeeping can
// deduplicate by equality.
type Output interface{}

type previousSnapshot struct {
	Width, Height    int32
	BufferW, BufferH int32
	HasViewportSrc   bool
	ViewportSrc      region.FBox
}

// Surface is a client drawing surface: a queue of States plus the
// derived, read-only view of the currently-committed generation
// (uploaded texture, effective opaque/input regions, accumulated
// buffer damage). Methods that mutate protocol state operate on the
// pending generation; ClientCommit drives everything through to current.
//
// A Surface is not safe for concurrent use; callers needing
// concurrent access (the compositor façade's surface registry) must
// serialize at that layer.
type Surface struct {
	current *State
	pending *State
	cached  []*State // locked generations awaiting release, oldest (nearest current) first

	extensions []Extension

	role     Role
	roleData interface{}

	provider buffer.Provider
	texture  buffer.Ref

	sx, sy float64 // accumulated position, per current.DX/DY

	previous       previousSnapshot
	bufferDamage   region.Region
	externalDamage region.Region
	opaqueRegion   region.Region
	inputRegion    region.Region

	outputs []Output

	tracer *trace.Tracer

	Events struct {
		ClientCommit  Signal[*Surface]
		Commit        Signal[*Surface]
		Destroy       Signal[*Surface]
		NewSubsurface Signal[interface{}]
		Enter         Signal[Output]
		Leave         Signal[Output]
	}
}

// New creates a Surface with an empty current and pending state.
// provider uploads and patches the textures backing committed
// buffers; tracer receives commit-pipeline trace spans (pass nil to
// use a no-op tracer).
func New(provider buffer.Provider, tracer *trace.Tracer) *Surface {
	if tracer == nil {
		tracer = trace.Noop()
	}
	cur := newState()
	pending := newState()
	pending.Seq = 1
	return &Surface{
		current:     cur,
		pending:     pending,
		provider:    provider,
		tracer:      tracer,
		inputRegion: region.Region{{X: 0, Y: 0, W: 0, H: 0}},
	}
}

// Current returns the surface's current (last committed) state.
// Callers must treat it as read-only.
func (s *Surface) Current() *State { return s.current }

// Pending returns the surface's pending state, for collaborators that
// need to accumulate protocol state outside of the core mutators
// above — chiefly sub-surface coordination, which reorders a parent's
// pending Above/Below lists directly.
func (s *Surface) Pending() *State { return s.pending }

func (s *Surface) currentState() *State { return s.current }
func (s *Surface) pendingState() *State { return s.pending }

// allStates returns every State this surface's synced extensions must
// carry a shadow slot for: current, every cached generation (oldest
// first), and pending.
func (s *Surface) allStates() []*State {
	out := make([]*State, 0, len(s.cached)+2)
	out = append(out, s.current)
	out = append(out, s.cached...)
	out = append(out, s.pending)
	return out
}

// Position returns the surface's accumulated (x, y) offset, the
// running sum of every committed attach's (dx, dy).
func (s *Surface) Position() (x, y float64) { return s.sx, s.sy }

// Texture returns the currently uploaded texture reference, or an
// invalid Ref if the surface has never had a buffer attached or its
// last committed buffer was a detach (Attach(nil, ...)).
func (s *Surface) Texture() buffer.Ref { return s.texture }

// OpaqueRegion returns the surface-local opaque region derived from
// the current state (either the client-declared opaque region
// intersected with the surface rect, or the full surface rect if the
// uploaded texture reports itself fully opaque).
func (s *Surface) OpaqueRegion() region.Region { return s.opaqueRegion }

// InputRegionEffective returns the surface-local region that accepts input,
// already intersected with the surface rect.
func (s *Surface) InputRegionEffective() region.Region { return s.inputRegion }

// Attach records buf (nil to detach) as the buffer for the next
// commit, offset by (dx, dy) from the surface's current position.
func (s *Surface) Attach(buf buffer.Client, dx, dy int32) {
	p := s.pendingState()
	p.Committed |= CommitBuffer
	p.Buffer = buf
	p.DX, p.DY = dx, dy
}

// Damage accumulates a surface-local damaged rectangle into the next
// commit. Negative width or height is ignored, matching the wire
// protocol's tolerance for malformed damage requests.
func (s *Surface) Damage(x, y, w, h int32) {
	if w < 0 || h < 0 {
		return
	}
	p := s.pendingState()
	p.Committed |= CommitSurfaceDamage
	p.SurfaceDamage = region.UnionRect(p.SurfaceDamage, region.Box{X: x, Y: y, W: w, H: h})
}

// DamageBuffer is Damage's buffer-local counterpart (damage_buffer):
// the rectangle is given in the attached buffer's own coordinate
// space, before transform/scale/viewport are applied.
func (s *Surface) DamageBuffer(x, y, w, h int32) {
	if w < 0 || h < 0 {
		return
	}
	p := s.pendingState()
	p.Committed |= CommitBufferDamage
	p.BufferDamage = region.UnionRect(p.BufferDamage, region.Box{X: x, Y: y, W: w, H: h})
}

// Frame queues cb to run once, with the display timestamp, the next
// time this surface's content is presented (SendFrameDone).
func (s *Surface) Frame(cb FrameCallback) {
	p := s.pendingState()
	p.Committed |= CommitFrameCallback
	p.Frame = append(p.Frame, cb)
}

// SetOpaqueRegion records r as the next commit's client-declared
// opaque region.
func (s *Surface) SetOpaqueRegion(r region.Region) {
	p := s.pendingState()
	p.Committed |= CommitOpaqueRegion
	p.Opaque = append(region.Region{}, r...)
}

// SetInputRegion records r as the next commit's input region. Passing
// nil restores the unbounded default (accepts input everywhere the
// surface itself does).
func (s *Surface) SetInputRegion(r region.Region) {
	p := s.pendingState()
	p.Committed |= CommitInputRegion
	if r == nil {
		p.Input = InputRegion{Unbounded: true}
		return
	}
	p.Input = InputRegion{Region: append(region.Region{}, r...)}
}

// SetBufferTransform records the buffer orientation for the next
// commit. It fails with ErrCodeInvalidTransform if t is not one of
// the eight defined transforms.
func (s *Surface) SetBufferTransform(t region.Transform) error {
	if !t.Valid() {
		return protoErr(ErrCodeInvalidTransform, "invalid buffer transform value %d", t)
	}
	p := s.pendingState()
	p.Committed |= CommitTransform
	p.Transform = t
	return nil
}

// SetBufferScale records the integer buffer scale for the next
// commit. It fails with ErrCodeInvalidScale if scale is not positive.
func (s *Surface) SetBufferScale(scale int32) error {
	if scale <= 0 {
		return protoErr(ErrCodeInvalidScale, "invalid buffer scale value %d", scale)
	}
	p := s.pendingState()
	p.Committed |= CommitScale
	p.Scale = scale
	return nil
}

// SetViewportSource records a fractional crop rectangle (in the
// transformed buffer's coordinates divided by the buffer scale) for
// the next commit. Passing ok=false
// clears the source crop (the surface's logical size then tracks the
// transformed, scaled buffer size, or the destination size if one is
// set).
func (s *Surface) SetViewportSource(src region.FBox, ok bool) {
	p := s.pendingState()
	p.Committed |= CommitViewport
	p.Viewport.HasSrc = ok
	if ok {
		p.Viewport.Src = src
	}
}

// SetViewportDestination records the destination size the cropped,
// scaled buffer is stretched to. Passing ok=false clears it.
func (s *Surface) SetViewportDestination(w, h int32, ok bool) {
	p := s.pendingState()
	p.Committed |= CommitViewport
	p.Viewport.HasDst = ok
	if ok {
		p.Viewport.DstW, p.Viewport.DstH = w, h
	}
}

// PointAcceptsInput reports whether the point (sx, sy), in
// surface-local coordinates, both lies within the surface's current
// logical extent and is covered by its effective input region.
func (s *Surface) PointAcceptsInput(sx, sy float64) bool {
	cur := s.current
	if sx < 0 || sx >= float64(cur.Width) || sy < 0 || sy >= float64(cur.Height) {
		return false
	}
	return s.inputRegion.Contains(int32(math.Floor(sx)), int32(math.Floor(sy)))
}

// SendEnter records that the surface is now displayed on o and emits
// Events.Enter, unless o is already recorded (idempotent per the
// module's output-bookkeeping contract).
func (s *Surface) SendEnter(o Output) {
	for _, e := range s.outputs {
		if e == o {
			return
		}
	}
	s.outputs = append(s.outputs, o)
	s.Events.Enter.Emit(o)
}

// SendLeave is SendEnter's inverse: removes o from the surface's
// output bookkeeping and emits Events.Leave, or does nothing if o
// wasn't recorded.
func (s *Surface) SendLeave(o Output) {
	for i, e := range s.outputs {
		if e == o {
			s.outputs = append(s.outputs[:i], s.outputs[i+1:]...)
			s.Events.Leave.Emit(o)
			return
		}
	}
}

// Outputs returns the outputs this surface is currently recorded as
// entering.
func (s *Surface) Outputs() []Output {
	out := make([]Output, len(s.outputs))
	copy(out, s.outputs)
	return out
}

// SendFrameDone fires and clears every frame callback queued on the
// current state, passing timestampMs as the presentation time.
func (s *Surface) SendFrameDone(timestampMs uint32) {
	cur := s.current
	cbs := cur.Frame
	cur.Frame = nil
	for _, cb := range cbs {
		cb(timestampMs)
	}
}

// Destroy tears the surface down: first leaves every output it was
// entered on (firing Events.Leave for each, so output-side bookkeeping
// doesn't believe a destroyed surface is still present), then emits
// Events.Destroy, releases every synced-extension shadow in every
// queued state (cached states first, then pending, then current —
// mirroring the collaborator's teardown order), and unlocks the held
// texture reference if any.
func (s *Surface) Destroy() {
	for _, o := range append([]Output(nil), s.outputs...) {
		s.SendLeave(o)
	}

	s.Events.Destroy.Emit(s)

	destroy := func(st *State) {
		for i, ext := range s.extensions {
			if i < len(st.Shadows) {
				ext.DestroyState(st.Shadows[i])
			}
		}
	}
	for _, st := range s.cached {
		destroy(st)
	}
	destroy(s.pending)
	destroy(s.current)

	s.extensions = nil
	s.cached = nil
	s.current = nil
	s.pending = nil
	if s.texture.Valid() {
		s.texture.Unlock()
	}
}
