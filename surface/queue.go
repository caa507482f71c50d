package surface

import "github.com/gviegas/surfacewm/region"

// LockPending defers the next commit: it increments the pending
// state's lock count and returns its Seq. A synced extension (a
// sub-surface held synchronized by its parent, for instance) calls
// this before a client commit it wants to hold back, and later calls
// UnlockCached with the returned Seq once it's ready to let that
// generation land.
func (s *Surface) LockPending() uint32 {
	s.pending.NLocks++
	return s.pending.Seq
}

// UnlockCached releases one lock taken by LockPending on the
// generation identified by seq — either the pending generation
// itself, if it hasn't committed yet, or a cached generation a commit
// produced while locked. Releasing the last lock on a cached
// generation attempts to squash the cached list forward: the oldest
// (nearest current) entry lands as current as soon as it has no locks
// left, and that promotion repeats for as long as the new oldest
// entry is also unlocked.
//
// UnlockCached panics if no generation carries seq, or if that
// generation has no outstanding lock — both indicate a caller bug (an
// unbalanced lock/unlock pair), not a protocol error a client can
// trigger.
func (s *Surface) UnlockCached(seq uint32) {
	if s.pending.Seq == seq {
		if s.pending.NLocks <= 0 {
			panic("surface: UnlockCached: pending has no outstanding lock")
		}
		s.pending.NLocks--
		return
	}
	for _, c := range s.cached {
		if c.Seq != seq {
			continue
		}
		if c.NLocks <= 0 {
			panic("surface: UnlockCached: cached state has no outstanding lock")
		}
		c.NLocks--
		if c.NLocks == 0 {
			s.trySquashCached()
		}
		return
	}
	panic("surface: UnlockCached: no state found for seq")
}

// trySquashCached promotes cached generations into current, starting
// from the oldest (the head of s.cached, which is always current's
// immediate successor), for as long as the head has no outstanding
// locks. A locked head stops the sweep: generations after it, even if
// themselves unlocked, must wait their turn.
func (s *Surface) trySquashCached() {
	for len(s.cached) > 0 {
		head := s.cached[0]
		if head.NLocks > 0 {
			return
		}
		s.squashInto(s.current, head)
		for i, ext := range s.extensions {
			ext.DestroyState(head.Shadows[i])
		}
		s.cached = s.cached[1:]
	}
}

// squashInto merges src into dst, field by field, per the
// commit-squash contract: a field is overwritten by src's value only
// if src's CommitMask bit for it is set; most unset fields are
// instead cleared on dst (they describe per-commit deltas, not
// accumulated state). Width/height/buffer-size and sub-surface
// ordering are unconditional.
//
// If dst is s.current, squashInto brackets the merge with precommit
// (before) and surfaceCommit (after) — the only point at which a
// generation actually becomes visible. src's fields are cleared as
// they're consumed, leaving it ready for reuse (the case when src is
// s.pending) or simply empty (the case when src is a cached state
// about to be dropped from s.cached by the caller).
func (s *Surface) squashInto(dst, src *State) {
	becomingCurrent := dst == s.current

	if becomingCurrent {
		s.precommit(src)
	}

	dst.Width, dst.Height = src.Width, src.Height
	dst.BufferW, dst.BufferH = src.BufferW, src.BufferH

	if src.Committed&CommitBuffer != 0 {
		dst.SurfaceDamage = region.Translate(dst.SurfaceDamage, -src.DX, -src.DY)
		dst.DX += src.DX
		dst.DY += src.DY
		src.DX, src.DY = 0, 0
		dst.Buffer = src.Buffer
		src.Buffer = nil
	} else {
		dst.DX, dst.DY = 0, 0
	}

	if src.Committed&CommitSurfaceDamage != 0 {
		dst.SurfaceDamage = src.SurfaceDamage
		src.SurfaceDamage = nil
	} else {
		dst.SurfaceDamage = nil
	}
	if src.Committed&CommitBufferDamage != 0 {
		dst.BufferDamage = src.BufferDamage
		src.BufferDamage = nil
	} else {
		dst.BufferDamage = nil
	}
	if src.Committed&CommitScale != 0 {
		dst.Scale = src.Scale
	}
	if src.Committed&CommitTransform != 0 {
		dst.Transform = src.Transform
	}
	if src.Committed&CommitOpaqueRegion != 0 {
		dst.Opaque = src.Opaque
	}
	if src.Committed&CommitInputRegion != 0 {
		dst.Input = src.Input
	}
	if src.Committed&CommitViewport != 0 {
		dst.Viewport = src.Viewport
	}
	if src.Committed&CommitFrameCallback != 0 {
		dst.Frame = append(dst.Frame, src.Frame...)
		src.Frame = nil
	}

	// Sub-surface ordering is unconditional: dst's list order always
	// becomes src's, regardless of which bits src committed.
	dst.Above = append([]ChildSlot{}, src.Above...)
	dst.Below = append([]ChildSlot{}, src.Below...)

	dst.Committed |= src.Committed
	src.Committed = 0

	for i, ext := range s.extensions {
		ext.SquashState(dst.Shadows[i], src.Shadows[i])
	}

	if becomingCurrent {
		s.surfaceCommit()
	}
}
