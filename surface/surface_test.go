package surface

import (
	"testing"

	"github.com/gviegas/surfacewm/buffer"
	"github.com/gviegas/surfacewm/region"
)

type fakeClient struct{ w, h int32 }

func (c fakeClient) Width() int32          { return c.w }
func (c fakeClient) Height() int32         { return c.h }
func (c fakeClient) Format() buffer.Format { return 0 }

type fakeTexture struct {
	w, h   int32
	opaque bool
}

func (t fakeTexture) Width() int32  { return t.w }
func (t fakeTexture) Height() int32 { return t.h }
func (t fakeTexture) Opaque() bool  { return t.opaque }

type fakeProvider struct {
	applyOK    bool
	applyCalls int
	uploadCalls int
}

func (p *fakeProvider) Name() string { return "fake" }

func (p *fakeProvider) Upload(c buffer.Client) (buffer.Texture, error) {
	p.uploadCalls++
	return fakeTexture{w: c.Width(), h: c.Height()}, nil
}

func (p *fakeProvider) ApplyDamage(existing buffer.Texture, next buffer.Client, damage []buffer.Box) (bool, error) {
	p.applyCalls++
	return p.applyOK, nil
}

func TestCommitAttachesAndUploads(t *testing.T) {
	p := &fakeProvider{}
	s := New(p, nil)

	var clientCommits, commits int
	s.Events.ClientCommit.Connect(func(*Surface) { clientCommits++ })
	s.Events.Commit.Connect(func(*Surface) { commits++ })

	s.Attach(fakeClient{w: 256, h: 256}, 0, 0)
	s.Damage(0, 0, 256, 256)
	if err := s.ClientCommit(); err != nil {
		t.Fatalf("ClientCommit: %v", err)
	}

	if p.uploadCalls != 1 {
		t.Fatalf("Upload calls: have %d, want 1", p.uploadCalls)
	}
	if !s.Texture().Valid() {
		t.Fatal("Texture: want valid after commit")
	}
	cur := s.Current()
	if cur.Width != 256 || cur.Height != 256 {
		t.Fatalf("logical size: have %dx%d, want 256x256", cur.Width, cur.Height)
	}
	if cur.Committed != 0 {
		t.Fatalf("current.Committed: have %#x, want 0 after commit", cur.Committed)
	}
	if clientCommits != 1 {
		t.Fatalf("Events.ClientCommit: fired %d times, want exactly 1", clientCommits)
	}
	if commits != 1 {
		t.Fatalf("Events.Commit: fired %d times, want exactly 1", commits)
	}
}

func TestIncrementalDamageAppliesPatch(t *testing.T) {
	p := &fakeProvider{applyOK: true}
	s := New(p, nil)

	s.Attach(fakeClient{w: 64, h: 64}, 0, 0)
	s.Damage(0, 0, 64, 64)
	if err := s.ClientCommit(); err != nil {
		t.Fatal(err)
	}
	if p.uploadCalls != 1 {
		t.Fatalf("first commit: Upload calls have %d, want 1", p.uploadCalls)
	}

	s.Attach(fakeClient{w: 64, h: 64}, 0, 0)
	s.DamageBuffer(4, 4, 8, 8)
	if err := s.ClientCommit(); err != nil {
		t.Fatal(err)
	}
	if p.applyCalls != 1 {
		t.Fatalf("second commit: ApplyDamage calls have %d, want 1", p.applyCalls)
	}
	if p.uploadCalls != 1 {
		t.Fatalf("second commit: Upload calls have %d, want still 1 (patched, not re-uploaded)", p.uploadCalls)
	}
}

func TestBufferSizeNotDivisibleByScaleLogsNoError(t *testing.T) {
	p := &fakeProvider{}
	s := New(p, nil)
	if err := s.SetBufferScale(3); err != nil {
		t.Fatal(err)
	}
	s.Attach(fakeClient{w: 10, h: 10}, 0, 0)
	s.Damage(0, 0, 10, 10)
	if err := s.ClientCommit(); err != nil {
		t.Fatalf("ClientCommit: want nil error (client-bug case only logs), have %v", err)
	}
}

func TestInvalidTransformIsProtocolError(t *testing.T) {
	s := New(&fakeProvider{}, nil)
	err := s.SetBufferTransform(region.Transform(99))
	if err == nil {
		t.Fatal("SetBufferTransform(99): want error")
	}
	pe, ok := err.(*ProtocolError)
	if !ok {
		t.Fatalf("SetBufferTransform(99): want *ProtocolError, have %T", err)
	}
	if pe.Code != ErrCodeInvalidTransform {
		t.Fatalf("error code: have %v, want ErrCodeInvalidTransform", pe.Code)
	}
}

func TestSynchronizedLockCachesCommit(t *testing.T) {
	p := &fakeProvider{}
	s := New(p, nil)

	seq := s.LockPending()
	s.Attach(fakeClient{w: 32, h: 32}, 0, 0)
	s.Damage(0, 0, 32, 32)
	if err := s.ClientCommit(); err != nil {
		t.Fatal(err)
	}

	// Locked: nothing should have reached current yet.
	if p.uploadCalls != 0 {
		t.Fatalf("locked commit: Upload calls have %d, want 0", p.uploadCalls)
	}
	if s.Current().Width != 0 {
		t.Fatalf("locked commit: current.Width have %d, want 0 (unchanged)", s.Current().Width)
	}

	s.UnlockCached(seq)
	if p.uploadCalls != 1 {
		t.Fatalf("after unlock: Upload calls have %d, want 1", p.uploadCalls)
	}
	if s.Current().Width != 32 {
		t.Fatalf("after unlock: current.Width have %d, want 32", s.Current().Width)
	}
}

func TestTwoLockedGenerationsSquashInUnlockOrder(t *testing.T) {
	p := &fakeProvider{}
	s := New(p, nil)

	var commits int
	s.Events.Commit.Connect(func(*Surface) { commits++ })

	seq1 := s.LockPending()
	s.Attach(fakeClient{w: 16, h: 16}, 0, 0)
	s.Damage(0, 0, 16, 16)
	if err := s.ClientCommit(); err != nil {
		t.Fatal(err)
	}

	seq2 := s.LockPending()
	s.Attach(fakeClient{w: 32, h: 32}, 0, 0)
	s.Damage(0, 0, 32, 32)
	if err := s.ClientCommit(); err != nil {
		t.Fatal(err)
	}

	if len(s.cached) != 2 {
		t.Fatalf("cached length: have %d, want 2", len(s.cached))
	}

	// Unlocking the newer generation first must not promote anything:
	// the older, still-locked generation is in front of it.
	s.UnlockCached(seq2)
	if s.Current().Width != 0 {
		t.Fatalf("after unlocking seq2 only: current.Width have %d, want 0", s.Current().Width)
	}
	if len(s.cached) != 2 {
		t.Fatalf("cached length after unlocking seq2: have %d, want 2 (squash must wait for seq1)", len(s.cached))
	}
	if commits != 0 {
		t.Fatalf("commit signal fired %d times before seq1 unlocks, want 0", commits)
	}

	// Unlocking the older generation now lets both squash through to
	// current in one pass, landing the newer generation's content.
	s.UnlockCached(seq1)
	if s.Current().Width != 32 {
		t.Fatalf("after unlocking seq1: current.Width have %d, want 32", s.Current().Width)
	}
	if len(s.cached) != 0 {
		t.Fatalf("cached length after both unlocks: have %d, want 0", len(s.cached))
	}
	if commits != 2 {
		t.Fatalf("commit signal fired %d times after both unlocks, want exactly 2, one per squashed generation, in order", commits)
	}
}

func TestDestroyUnboundedInputDefault(t *testing.T) {
	s := New(&fakeProvider{}, nil)
	s.Attach(fakeClient{w: 8, h: 8}, 0, 0)
	s.Damage(0, 0, 8, 8)
	if err := s.ClientCommit(); err != nil {
		t.Fatal(err)
	}
	if !s.PointAcceptsInput(0, 0) || !s.PointAcceptsInput(7, 7) {
		t.Fatal("unbounded input region: want every in-surface point to accept input")
	}
	if s.PointAcceptsInput(8, 0) {
		t.Fatal("unbounded input region: want points outside the surface rect rejected")
	}
	s.Destroy()
}

func TestDestroyLeavesEveryEnteredOutput(t *testing.T) {
	s := New(&fakeProvider{}, nil)
	o1, o2 := "output-1", "output-2"
	s.SendEnter(o1)
	s.SendEnter(o2)

	var left []Output
	s.Events.Leave.Connect(func(o Output) { left = append(left, o) })
	var destroyed bool
	s.Events.Destroy.Connect(func(*Surface) { destroyed = true })

	s.Destroy()

	if len(left) != 2 {
		t.Fatalf("Events.Leave: fired %d times, want 2 (one per entered output)", len(left))
	}
	if left[0] != o1 || left[1] != o2 {
		t.Fatalf("Events.Leave order: have %v, want [%v %v]", left, o1, o2)
	}
	if !destroyed {
		t.Fatal("Events.Destroy: want fired")
	}
}
