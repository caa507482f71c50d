package surface

import "github.com/gviegas/surfacewm/region"

// updateBufferDamage recomputes s.bufferDamage (buffer-local) from the
// current state: if geometry or the viewport source box changed since
// the previous commit, the whole buffer is considered damaged
// (whatever produced that change already invalidated every pixel's
// mapping); otherwise the newly committed surface-local damage is
// mapped back into buffer-local coordinates — inverse viewport
// destination scale, inverse viewport source translate, forward
// buffer scale, inverse transform — and unioned with whatever
// buffer-local damage the client declared directly via DamageBuffer.
func (s *Surface) updateBufferDamage() {
	cur := s.currentState()
	prev := s.previous

	vpChanged := cur.Viewport.HasSrc != prev.HasViewportSrc || cur.Viewport.Src != prev.ViewportSrc
	if cur.Width != prev.Width || cur.Height != prev.Height || vpChanged {
		s.bufferDamage = region.UnionRect(nil, region.Box{X: 0, Y: 0, W: cur.BufferW, H: cur.BufferH})
		return
	}

	dmg := cur.SurfaceDamage
	if cur.Viewport.HasDst {
		srcW, srcH := s.viewportSrcSizeF(cur)
		if srcW > 0 && srcH > 0 {
			dmg = region.ScaleXY(dmg, srcW/float64(cur.Viewport.DstW), srcH/float64(cur.Viewport.DstH))
		}
	}
	if cur.Viewport.HasSrc {
		dmg = region.Translate(dmg, region.FloorF(cur.Viewport.Src.X), region.FloorF(cur.Viewport.Src.Y))
	}
	dmg = region.Scale(dmg, cur.Scale)
	bw, bh := region.TransformSize(cur.Transform, cur.BufferW, cur.BufferH)
	dmg = region.TransformRegion(dmg, cur.Transform.Invert(), bw, bh)

	s.bufferDamage = region.Union(cur.BufferDamage, dmg)
}

// GetEffectiveDamage returns the surface-local region actually
// damaged by the most recent commit: the buffer-local damage mapped
// forward through transform, scale and viewport, unioned with the
// structural damage a geometry change alone implies (a shrink, or any
// nonzero attach offset — GetExtends' stale-edge damage).
func (s *Surface) GetEffectiveDamage() region.Region {
	cur := s.currentState()
	dmg := region.TransformRegion(s.bufferDamage, cur.Transform, cur.BufferW, cur.BufferH)

	scale := cur.Scale
	if scale == 0 {
		scale = 1
	}
	dmg = region.ScaleXY(dmg, 1/float64(scale), 1/float64(scale))

	if cur.Viewport.HasSrc {
		srcBox := cur.Viewport.Src.Floor()
		dmg = region.IntersectRect(dmg, srcBox)
		dmg = region.Translate(dmg, -srcBox.X, -srcBox.Y)
	}
	if cur.Viewport.HasDst {
		srcW, srcH := s.viewportSrcSizeF(cur)
		if srcW > 0 && srcH > 0 {
			dmg = region.ScaleXY(dmg, float64(cur.Viewport.DstW)/srcW, float64(cur.Viewport.DstH)/srcH)
		}
	}

	return region.Union(dmg, s.externalDamage)
}

// GetBufferSourceBox returns the fractional rectangle, in buffer-local
// (pre-transform, pre-scale) coordinates, that the current state's
// viewport source crops to — or the whole buffer if no source crop is
// set.
func (s *Surface) GetBufferSourceBox() region.FBox {
	cur := s.currentState()
	if !cur.Viewport.HasSrc {
		return region.FBox{X: 0, Y: 0, W: float64(cur.BufferW), H: float64(cur.BufferH)}
	}
	scaled := region.FBox{
		X: cur.Viewport.Src.X * float64(cur.Scale),
		Y: cur.Viewport.Src.Y * float64(cur.Scale),
		W: cur.Viewport.Src.W * float64(cur.Scale),
		H: cur.Viewport.Src.H * float64(cur.Scale),
	}
	tw, th := region.TransformSize(cur.Transform, cur.BufferW, cur.BufferH)
	return region.TransformFBox(scaled, cur.Transform.Invert(), float64(tw), float64(th))
}
