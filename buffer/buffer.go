// Package buffer defines the narrow contract between the surface
// state engine and the GPU-side buffer/texture upload collaborator.
// It never allocates GPU memory itself (that remains the allocator's
// job, explicitly out of scope for this module) — it only describes
// the shapes the core needs: a ref-counted client buffer reference
// and a Provider capable of uploading or incrementally patching a
// texture from one.
package buffer

import (
	"strings"
	"sync"

	"github.com/pkg/errors"
)

// Sentinel errors returned by a Provider. Callers (the commit
// pipeline) treat ErrNoDeviceMemory/ErrFatal as never-fatal-to-the-
// surface: the previous upload is kept and the error is logged.
var (
	ErrNotInstalled   = errors.New("buffer: provider not installed")
	ErrNoDevice       = errors.New("buffer: no suitable device found")
	ErrNoHostMemory   = errors.New("buffer: out of host memory")
	ErrNoDeviceMemory = errors.New("buffer: out of device memory")
	ErrFatal          = errors.New("buffer: provider in unrecoverable state")
	ErrUnknownType    = errors.New("buffer: unknown client buffer type")
)

// Format is an opaque pixel-format identifier; the concrete table of
// supported formats lives with the provider, not this package.
type Format int

// Client is an immutable rectangle of pixels supplied by a client, as
// consumed by surface.Surface.Attach. It is the compositor-facing
// view of whatever transport (shared memory, DMA-BUF) produced it.
type Client interface {
	Width() int32
	Height() int32
	Format() Format
}

// Texture is an uploaded, renderer-visible buffer, ref-counted so it
// can be handed to a renderer thread while the compositor core keeps
// its own reference.
type Texture interface {
	// Opaque reports whether every texel has full alpha, letting the
	// commit pipeline skip an opaque-region computation.
	Opaque() bool
	Width() int32
	Height() int32
}

// Ref is a ref-counted handle to an uploaded Texture, modeled on the
// lock/unlock discipline the teacher's texture views use
// (atomic refcounts) and on wlr_buffer's lock/unlock pairing.
type Ref struct {
	tex Texture
	n   *int32
}

// NewRef wraps tex in a Ref with an initial count of one.
func NewRef(tex Texture) Ref {
	n := int32(1)
	return Ref{tex: tex, n: &n}
}

// Valid reports whether the Ref wraps a live texture.
func (r Ref) Valid() bool { return r.tex != nil }

// Texture returns the wrapped Texture, or nil if Valid is false.
func (r Ref) Texture() Texture {
	if !r.Valid() {
		return nil
	}
	return r.tex
}

// Lock increments the reference count and returns the same Ref.
func (r Ref) Lock() Ref {
	if r.Valid() {
		*r.n++
	}
	return r
}

// Unlock decrements the reference count. The caller must not use r
// again after the count reaches zero.
func (r Ref) Unlock() {
	if r.Valid() {
		*r.n--
	}
}

// Provider uploads client buffers into Textures and, where possible,
// patches an existing Texture in place instead of reallocating.
// Modeled on the teacher's Driver/Register pattern
// (driver.Driver, driver.Register): implementations register
// themselves from an init function, and the core selects one lazily.
type Provider interface {
	// Name identifies the provider, e.g. "shm" or "dmabuf-vulkan".
	Name() string

	// Upload creates a new Texture from a client buffer.
	Upload(c Client) (Texture, error)

	// ApplyDamage attempts to patch existing in place using only the
	// pixels covered by damage (in buffer-local coordinates), reading
	// them from next. It returns false if the provider cannot reuse
	// existing (e.g. format or size mismatch), in which case the
	// caller must fall back to Upload.
	ApplyDamage(existing Texture, next Client, damage []Box) (ok bool, err error)
}

// Box is a buffer-local integer rectangle, kept independent from
// package region to avoid this narrow external contract pulling in
// the core's internal region representation.
type Box struct{ X, Y, W, H int32 }

var (
	mu        sync.Mutex
	providers []Provider
)

// Register registers a Provider. If one with the same name is already
// registered, it is replaced.
func Register(p Provider) {
	mu.Lock()
	defer mu.Unlock()
	for i := range providers {
		if providers[i].Name() == p.Name() {
			providers[i] = p
			return
		}
	}
	providers = append(providers, p)
}

// Providers returns the registered providers.
func Providers() []Provider {
	mu.Lock()
	defer mu.Unlock()
	out := make([]Provider, len(providers))
	copy(out, providers)
	return out
}

// Select returns the first registered provider whose name contains
// name (case-sensitive); an empty name selects the first provider
// registered. It returns ErrNotInstalled if none match.
func Select(name string) (Provider, error) {
	for _, p := range Providers() {
		if strings.Contains(p.Name(), name) {
			return p, nil
		}
	}
	return nil, ErrNotInstalled
}
