package region

// Transform identifies one of the eight axis-aligned orientations a
// buffer can be presented in: the four rotations, each with an
// optional horizontal flip applied first.
type Transform int

// Transform values. The range is locked to these eight; the wire
// protocol enumerates exactly this set and nothing else (see the
// module's open question about future transform values: this package
// does not anticipate an extension of the enum).
const (
	Normal Transform = iota
	Rotate90
	Rotate180
	Rotate270
	Flipped
	Flipped90
	Flipped180
	Flipped270
)

// Valid reports whether t is one of the eight defined transforms.
func (t Transform) Valid() bool { return t >= Normal && t <= Flipped270 }

// flipped reports whether t includes the horizontal-flip component.
func (t Transform) flipped() bool { return t&Flipped != 0 }

// rotation reports whether t includes a 90-degree rotation component
// (90 or 270, flipped or not).
func (t Transform) rotation() bool { return t&Rotate90 != 0 }

// Invert returns the transform that undoes t.
func (t Transform) Invert() Transform {
	if t.rotation() && !t.flipped() {
		return t ^ Rotate180
	}
	return t
}

// TransformSize returns the width/height a region of size (w, h)
// occupies after applying t. Rotations by 90 or 270 degrees swap the
// two axes.
func TransformSize(t Transform, w, h int32) (tw, th int32) {
	if t.rotation() {
		return h, w
	}
	return w, h
}

// TransformBox maps a box from an untransformed w×h space into the
// space produced by applying t to that w×h extent.
func TransformBox(b Box, t Transform, w, h int32) Box {
	var out Box
	switch t {
	case Normal:
		out.X, out.Y = b.X, b.Y
	case Rotate90:
		out.X, out.Y = b.Y, w-b.X-b.W
	case Rotate180:
		out.X, out.Y = w-b.X-b.W, h-b.Y-b.H
	case Rotate270:
		out.X, out.Y = h-b.Y-b.H, b.X
	case Flipped:
		out.X, out.Y = w-b.X-b.W, b.Y
	case Flipped90:
		out.X, out.Y = h-b.Y-b.H, w-b.X-b.W
	case Flipped180:
		out.X, out.Y = b.X, h-b.Y-b.H
	case Flipped270:
		out.X, out.Y = b.Y, b.X
	}
	if t.rotation() {
		out.W, out.H = b.H, b.W
	} else {
		out.W, out.H = b.W, b.H
	}
	return out
}

// TransformFBox is the fractional-coordinate counterpart of
// TransformBox, used for viewport source boxes.
func TransformFBox(b FBox, t Transform, w, h float64) FBox {
	var out FBox
	switch t {
	case Normal:
		out.X, out.Y = b.X, b.Y
	case Rotate90:
		out.X, out.Y = b.Y, w-b.X-b.W
	case Rotate180:
		out.X, out.Y = w-b.X-b.W, h-b.Y-b.H
	case Rotate270:
		out.X, out.Y = h-b.Y-b.H, b.X
	case Flipped:
		out.X, out.Y = w-b.X-b.W, b.Y
	case Flipped90:
		out.X, out.Y = h-b.Y-b.H, w-b.X-b.W
	case Flipped180:
		out.X, out.Y = b.X, h-b.Y-b.H
	case Flipped270:
		out.X, out.Y = b.Y, b.X
	}
	if t.rotation() {
		out.W, out.H = b.H, b.W
	} else {
		out.W, out.H = b.W, b.H
	}
	return out
}

// TransformRegion applies t to every box of r, where the boxes are
// understood to live in an untransformed w×h space.
func TransformRegion(r Region, t Transform, w, h int32) Region {
	if len(r) == 0 {
		return r
	}
	out := make(Region, len(r))
	for i, b := range r {
		out[i] = TransformBox(b, t, w, h)
	}
	return out
}

// Scale multiplies every coordinate of r by the positive integer
// factor. This is always exact (no rounding is needed for an integer
// factor).
func Scale(r Region, factor int32) Region {
	if factor == 1 || len(r) == 0 {
		return r
	}
	out := make(Region, len(r))
	for i, b := range r {
		out[i] = Box{X: b.X * factor, Y: b.Y * factor, W: b.W * factor, H: b.H * factor}
	}
	return out
}

// ScaleXY scales every box of r by independent, possibly fractional
// factors on each axis, rounding outward so that no partially covered
// pixel is dropped from the result.
func ScaleXY(r Region, fx, fy float64) Region {
	if len(r) == 0 {
		return r
	}
	out := make(Region, len(r))
	for i, b := range r {
		fb := FBox{
			X: float64(b.X) * fx,
			Y: float64(b.Y) * fy,
			W: float64(b.W) * fx,
			H: float64(b.H) * fy,
		}
		out[i] = fb.Floor()
	}
	return out
}
