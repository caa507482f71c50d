package bitvec

import "testing"

func TestZeroValue(t *testing.T) {
	var v Vec[uint32]
	if n := v.Len(); n != 0 {
		t.Fatalf("Len: have %d, want 0", n)
	}
	if n := v.Rem(); n != 0 {
		t.Fatalf("Rem: have %d, want 0", n)
	}
}

func TestGrow(t *testing.T) {
	var v Vec[uint32]
	if idx := v.Grow(1); idx != 0 {
		t.Fatalf("Grow(1): index have %d, want 0", idx)
	}
	if n := v.Len(); n != 32 {
		t.Fatalf("Len after Grow(1): have %d, want 32", n)
	}
	if idx := v.Grow(2); idx != 32 {
		t.Fatalf("Grow(2): index have %d, want 32", idx)
	}
	if n := v.Len(); n != 96 {
		t.Fatalf("Len after Grow(2): have %d, want 96", n)
	}
	if n := v.Rem(); n != 96 {
		t.Fatalf("Rem: have %d, want 96 (nothing set yet)", n)
	}
}

func TestSetUnsetIsSet(t *testing.T) {
	var v Vec[uint8]
	v.Grow(1)

	if v.IsSet(3) {
		t.Fatal("IsSet(3): want false before Set")
	}
	v.Set(3)
	if !v.IsSet(3) {
		t.Fatal("IsSet(3): want true after Set")
	}
	if n := v.Rem(); n != 7 {
		t.Fatalf("Rem after one Set: have %d, want 7", n)
	}

	v.Set(3) // idempotent
	if n := v.Rem(); n != 7 {
		t.Fatalf("Rem after redundant Set: have %d, want still 7", n)
	}

	v.Unset(3)
	if v.IsSet(3) {
		t.Fatal("IsSet(3): want false after Unset")
	}
	if n := v.Rem(); n != 8 {
		t.Fatalf("Rem after Unset: have %d, want 8", n)
	}
}

func TestSearchFindsLowestUnsetBit(t *testing.T) {
	var v Vec[uint8]
	v.Grow(1)
	v.Set(0)
	v.Set(1)

	idx, ok := v.Search()
	if !ok || idx != 2 {
		t.Fatalf("Search: have (%d, %v), want (2, true)", idx, ok)
	}
}

func TestSearchFailsWhenFull(t *testing.T) {
	var v Vec[uint8]
	v.Grow(1)
	for i := 0; i < v.Len(); i++ {
		v.Set(i)
	}
	if n := v.Rem(); n != 0 {
		t.Fatalf("Rem when full: have %d, want 0", n)
	}
	if _, ok := v.Search(); ok {
		t.Fatal("Search: want ok=false when every bit is set")
	}
}
