package compositor

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gviegas/surfacewm/buffer"
	"github.com/gviegas/surfacewm/region"
	"github.com/gviegas/surfacewm/subsurface"
	"github.com/gviegas/surfacewm/surface"
)

type fakeClient struct{ w, h int32 }

func (c fakeClient) Width() int32          { return c.w }
func (c fakeClient) Height() int32         { return c.h }
func (c fakeClient) Format() buffer.Format { return 0 }

type fakeTexture struct{ w, h int32 }

func (t fakeTexture) Width() int32  { return t.w }
func (t fakeTexture) Height() int32 { return t.h }
func (t fakeTexture) Opaque() bool  { return false }

type fakeProvider struct{ uploadCalls int }

func (p *fakeProvider) Name() string { return "fake" }

func (p *fakeProvider) Upload(c buffer.Client) (buffer.Texture, error) {
	p.uploadCalls++
	return fakeTexture{w: c.Width(), h: c.Height()}, nil
}

func (p *fakeProvider) ApplyDamage(existing buffer.Texture, next buffer.Client, damage []buffer.Box) (bool, error) {
	return false, nil
}

func TestCreateSurfaceRegistersAndEmits(t *testing.T) {
	c := New(&fakeProvider{}, nil)

	var created []SurfaceHandle
	c.Events.NewSurface.Connect(func(h SurfaceHandle) { created = append(created, h) })

	h := c.CreateSurface()
	require.NotEqual(t, NilSurface, h)
	require.Equal(t, []SurfaceHandle{h}, created)
	require.NotNil(t, c.Surface(h))
}

func TestDestroySurfaceFreesHandleAndEmits(t *testing.T) {
	c := New(&fakeProvider{}, nil)
	h := c.CreateSurface()

	var destroyed []SurfaceHandle
	c.Events.DestroySurface.Connect(func(h SurfaceHandle) { destroyed = append(destroyed, h) })

	c.DestroySurface(h)
	require.Nil(t, c.Surface(h))
	require.Equal(t, []SurfaceHandle{h}, destroyed)
}

func TestSurfaceAtHitsTopmostRootFirst(t *testing.T) {
	c := New(&fakeProvider{}, nil)
	back := c.CreateSurface()
	front := c.CreateSurface()

	for _, h := range []SurfaceHandle{back, front} {
		s := c.Surface(h)
		s.Attach(fakeClient{w: 20, h: 20}, 0, 0)
		s.Damage(0, 0, 20, 20)
		require.NoError(t, s.ClientCommit())
	}

	hit, lx, ly, ok := c.SurfaceAt(5, 5)
	require.True(t, ok, "SurfaceAt(5,5): want a hit")
	require.Same(t, c.Surface(front), hit, "want the most recently created (topmost) root")
	require.Equal(t, 5.0, lx)
	require.Equal(t, 5.0, ly)

	_, _, _, ok = c.SurfaceAt(100, 100)
	require.False(t, ok, "SurfaceAt(100,100): want no hit, outside both surfaces")
}

func TestRegionAddSubtract(t *testing.T) {
	c := New(&fakeProvider{}, nil)
	h := c.CreateRegion()
	r := c.Region(h)
	require.NotNil(t, r)

	r.Add(0, 0, 10, 10)
	r.Subtract(4, 4, 2, 2)
	snap := r.Snapshot()
	require.False(t, snap.Contains(4, 4), "subtracted area must not be covered")
	require.True(t, snap.Contains(0, 0), "untouched corner must remain covered")

	c.DestroyRegion(h)
	require.Nil(t, c.Region(h))
}

func TestDestroyTearsDownSurfacesAndFiresOnce(t *testing.T) {
	c := New(&fakeProvider{}, nil)
	a := c.CreateSurface()
	b := c.CreateSurface()

	var destroyedSurfaces []SurfaceHandle
	c.Events.DestroySurface.Connect(func(h SurfaceHandle) { destroyedSurfaces = append(destroyedSurfaces, h) })
	var fired int
	c.Events.Destroy.Connect(func(*Compositor) { fired++ })

	c.Destroy()
	require.Nil(t, c.Surface(a))
	require.Nil(t, c.Surface(b))
	require.Len(t, destroyedSurfaces, 2)
	require.Equal(t, 1, fired)

	c.Destroy()
	require.Equal(t, 1, fired, "second call must not re-fire Events.Destroy")
}

func TestForEachSurfaceAndGetExtendsCoverSubsurfaces(t *testing.T) {
	c := New(&fakeProvider{}, nil)
	rootH := c.CreateSurface()
	childH := c.CreateSurface()
	root := c.Surface(rootH)
	child := c.Surface(childH)

	sub, err := subsurface.New(root, child)
	require.NoError(t, err)
	sub.SetSynchronized(false)
	sub.SetPosition(3, 4)

	root.Attach(fakeClient{w: 50, h: 50}, 0, 0)
	root.Damage(0, 0, 50, 50)
	require.NoError(t, root.ClientCommit())

	child.Attach(fakeClient{w: 10, h: 10}, 0, 0)
	child.Damage(0, 0, 10, 10)
	require.NoError(t, child.ClientCommit())

	var visited []*surface.Surface
	c.ForEachSurface(func(s *surface.Surface, x, y int32) {
		visited = append(visited, s)
	})
	require.Len(t, visited, 2, "want root + sub-surface")

	want := region.Box{X: 0, Y: 0, W: 50, H: 50}
	require.Equal(t, want, c.GetExtends(), "sub-surface at (3,4) 10x10 fits inside root")
}
