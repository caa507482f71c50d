package surface

import (
	"github.com/gviegas/surfacewm/buffer"
	"github.com/gviegas/surfacewm/region"
)

// ClientCommit runs the client-facing half of a commit (wl_surface's
// commit request): it finalizes the pending state's derived fields,
// emits Events.ClientCommit, and then squashes pending into current —
// unless something currently holds pending locked (a synchronized
// sub-surface, a synced extension awaiting an external event), in
// which case pending is instead squashed into a brand-new cached
// state appended to the tail of the cached list, and current is left
// untouched until UnlockCached lets it through.
//
// Either way, pending itself is never replaced: squashing clears its
// accumulated fields and it's immediately ready for the next cycle of
// client requests.
//
// It returns ErrNoMemory if a cached detach's shadow-state allocation
// fails; the commit is otherwise abandoned and pending is left
// untouched for the caller to retry.
func (s *Surface) ClientCommit() error {
	ctx := s.tracer.Begin("client_commit")
	defer s.tracer.End(ctx, "client_commit")

	s.finalizePending()
	s.Events.ClientCommit.Emit(s)

	pending := s.pending
	dst := s.current
	if pending.NLocks > 0 {
		cached, err := s.newQueuedState()
		if err != nil {
			return err
		}
		cached.Seq = pending.Seq
		cached.NLocks = pending.NLocks
		pending.NLocks = 0
		s.cached = append(s.cached, cached)
		dst = cached
	}
	pending.Seq++
	s.squashInto(dst, pending)
	return nil
}

// finalizePending derives BufferW/H, logical Width/Height and clips
// the accumulated damage regions to the surface/buffer rects — the
// bookkeeping a client commit must settle before the state is fit to
// squash forward, regardless of whether it lands immediately or gets
// cached behind a lock.
func (s *Surface) finalizePending() {
	p := s.pendingState()

	if p.Committed&CommitBuffer != 0 {
		if p.Buffer != nil {
			p.BufferW, p.BufferH = p.Buffer.Width(), p.Buffer.Height()
		} else {
			p.BufferW, p.BufferH = 0, 0
		}
	}

	if !p.Viewport.HasSrc && p.Scale > 0 &&
		(p.BufferW%p.Scale != 0 || p.BufferH%p.Scale != 0) {
		log.Warnf("client bug: buffer size %dx%d is not divisible by scale %d", p.BufferW, p.BufferH, p.Scale)
	}

	switch {
	case p.Viewport.HasDst:
		if p.BufferW == 0 && p.BufferH == 0 {
			p.Width, p.Height = 0, 0
		} else {
			p.Width, p.Height = p.Viewport.DstW, p.Viewport.DstH
		}
	default:
		w, h := s.viewportSrcSizeF(p)
		p.Width, p.Height = int32(w), int32(h)
	}

	p.SurfaceDamage = region.IntersectRect(p.SurfaceDamage, region.Box{X: 0, Y: 0, W: p.Width, H: p.Height})
	p.BufferDamage = region.IntersectRect(p.BufferDamage, region.Box{X: 0, Y: 0, W: p.BufferW, H: p.BufferH})
}

// viewportSrcSizeF returns the logical size the buffer occupies
// before any viewport destination stretch: the viewport source box's
// own size if one is set, otherwise the transformed buffer size
// divided by scale.
func (s *Surface) viewportSrcSizeF(st *State) (w, h float64) {
	if st.BufferW == 0 && st.BufferH == 0 {
		return 0, 0
	}
	if st.Viewport.HasSrc {
		return st.Viewport.Src.W, st.Viewport.Src.H
	}
	tw, th := region.TransformSize(st.Transform, st.BufferW, st.BufferH)
	scale := st.Scale
	if scale == 0 {
		scale = 1
	}
	return float64(tw) / float64(scale), float64(th) / float64(scale)
}

// precommit runs immediately before next is squashed into current: it
// snapshots the outgoing generation's geometry (for the damage
// comparison in updateBufferDamage), resets current's per-commit delta
// fields, and calls the role's and every synced extension's optional
// precommit hook.
func (s *Surface) precommit(next *State) {
	cur := s.currentState()
	s.previous = previousSnapshot{
		Width:          cur.Width,
		Height:         cur.Height,
		BufferW:        cur.BufferW,
		BufferH:        cur.BufferH,
		HasViewportSrc: cur.Viewport.HasSrc,
		ViewportSrc:    cur.Viewport.Src,
	}
	cur.DX, cur.DY = 0, 0
	cur.SurfaceDamage = nil
	cur.BufferDamage = nil
	cur.Committed = 0

	if p, ok := s.role.(RolePrecommitter); ok {
		p.Precommit(s, next)
	}
	for i, ext := range s.extensions {
		if p, ok := ext.(Precommitter); ok {
			p.Precommit(cur.Shadows[i], next.Shadows[i])
		}
	}
}

// surfaceCommit is the back half of a generation landing as current:
// it updates the accumulated position, recomputes buffer damage,
// applies the attached buffer (if any) to the provider, derives the
// effective opaque/input regions, notifies sub-surfaces in commit
// order, fires the role's commit hook and Events.Commit, and finally
// clears current's Committed mask.
func (s *Surface) surfaceCommit() {
	cur := s.currentState()
	s.sx += float64(cur.DX)
	s.sy += float64(cur.DY)

	s.updateBufferDamage()

	s.externalDamage = nil
	if s.previous.Width > cur.Width || s.previous.Height > cur.Height || cur.DX != 0 || cur.DY != 0 {
		s.externalDamage = region.UnionRect(s.externalDamage, region.Box{
			X: -cur.DX, Y: -cur.DY, W: s.previous.Width, H: s.previous.Height,
		})
	}

	if cur.Committed&CommitBuffer != 0 {
		s.applyBufferDamage()
	}
	s.updateOpaqueRegion()
	s.updateInputRegion()

	s.notifySubsurfaces()

	if c, ok := s.role.(RoleCommitter); ok {
		c.Commit(s)
	}
	s.Events.Commit.Emit(s)
	cur.Committed = 0
}

// applyBufferDamage uploads or incrementally patches the texture
// backing the surface's current buffer, per the provider contract: a
// detach clears the texture, a successful ApplyDamage keeps the
// existing texture and consumes the committed buffer without
// uploading, and anything else falls back to a fresh Upload.
func (s *Surface) applyBufferDamage() {
	cur := s.currentState()
	if cur.Buffer == nil {
		if s.texture.Valid() {
			s.texture.Unlock()
		}
		s.texture = buffer.Ref{}
		return
	}

	if s.texture.Valid() {
		ok, err := s.provider.ApplyDamage(s.texture.Texture(), cur.Buffer, toProviderBoxes(s.bufferDamage))
		if err != nil {
			log.Warnf("surface: ApplyDamage failed, falling back to Upload: %v", err)
		} else if ok {
			cur.Buffer = nil
			return
		}
	}

	tex, err := s.provider.Upload(cur.Buffer)
	cur.Buffer = nil
	if err != nil {
		log.Warnf("surface: Upload failed, keeping previous texture: %v", err)
		return
	}
	if s.texture.Valid() {
		s.texture.Unlock()
	}
	s.texture = buffer.NewRef(tex)
}

func toProviderBoxes(r region.Region) []buffer.Box {
	out := make([]buffer.Box, len(r))
	for i, b := range r {
		out[i] = buffer.Box{X: b.X, Y: b.Y, W: b.W, H: b.H}
	}
	return out
}

func (s *Surface) updateOpaqueRegion() {
	cur := s.currentState()
	tex := s.texture.Texture()
	switch {
	case tex == nil:
		s.opaqueRegion = nil
	case tex.Opaque():
		s.opaqueRegion = region.Region{{X: 0, Y: 0, W: cur.Width, H: cur.Height}}
	default:
		s.opaqueRegion = region.IntersectRect(cur.Opaque, region.Box{X: 0, Y: 0, W: cur.Width, H: cur.Height})
	}
}

func (s *Surface) updateInputRegion() {
	cur := s.currentState()
	rect := region.Box{X: 0, Y: 0, W: cur.Width, H: cur.Height}
	if cur.Input.Unbounded {
		s.inputRegion = region.Region{rect}
		return
	}
	s.inputRegion = region.IntersectRect(cur.Input.Region, rect)
}

// notifySubsurfaces calls Notify on every child slot of the just-
// landed current state, above list first then below, each in reverse
// (topmost/nearest-to-parent-edit-order first) — mirroring the
// collaborator's reverse wl_list_for_each over
// pending.subsurfaces_{above,below} at commit time. Because squashing
// a state forward always replaces dst's order with src's, current's
// lists here already carry the exact order that triggered this
// commit.
func (s *Surface) notifySubsurfaces() {
	cur := s.currentState()
	for i := len(cur.Above) - 1; i >= 0; i-- {
		cur.Above[i].Notify()
	}
	for i := len(cur.Below) - 1; i >= 0; i-- {
		cur.Below[i].Notify()
	}
}
