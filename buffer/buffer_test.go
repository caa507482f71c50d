package buffer

import "testing"

type fakeTexture struct {
	w, h   int32
	opaque bool
}

func (f fakeTexture) Width() int32  { return f.w }
func (f fakeTexture) Height() int32 { return f.h }
func (f fakeTexture) Opaque() bool  { return f.opaque }

type fakeProvider struct{ name string }

func (p fakeProvider) Name() string { return p.name }
func (p fakeProvider) Upload(Client) (Texture, error) {
	return fakeTexture{w: 1, h: 1}, nil
}
func (p fakeProvider) ApplyDamage(Texture, Client, []Box) (bool, error) {
	return false, nil
}

func TestRefLockUnlock(t *testing.T) {
	r := NewRef(fakeTexture{w: 4, h: 4})
	if !r.Valid() {
		t.Fatal("NewRef: want valid ref")
	}
	locked := r.Lock()
	if *locked.n != 2 {
		t.Fatalf("Ref.Lock: have count %d, want 2", *locked.n)
	}
	locked.Unlock()
	if *r.n != 1 {
		t.Fatalf("Ref.Unlock: have count %d, want 1", *r.n)
	}
}

func TestInvalidRef(t *testing.T) {
	var r Ref
	if r.Valid() {
		t.Fatal("zero Ref: want invalid")
	}
	if r.Texture() != nil {
		t.Fatal("zero Ref.Texture: want nil")
	}
	// Must not panic.
	r.Lock()
	r.Unlock()
}

func TestRegisterAndSelect(t *testing.T) {
	providers = nil
	Register(fakeProvider{name: "shm"})
	Register(fakeProvider{name: "dmabuf-vulkan"})
	Register(fakeProvider{name: "shm"}) // replaces, not appends

	if n := len(Providers()); n != 2 {
		t.Fatalf("Providers: have %d entries, want 2", n)
	}

	p, err := Select("dmabuf")
	if err != nil {
		t.Fatalf("Select(dmabuf): unexpected error: %v", err)
	}
	if p.Name() != "dmabuf-vulkan" {
		t.Fatalf("Select(dmabuf): have %q, want dmabuf-vulkan", p.Name())
	}

	if _, err := Select("nonexistent"); err != ErrNotInstalled {
		t.Fatalf("Select(nonexistent): have %v, want ErrNotInstalled", err)
	}
}
