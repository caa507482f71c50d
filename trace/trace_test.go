package trace

import "testing"

func TestNoopDoesNotPanic(t *testing.T) {
	tr := Noop()
	c := tr.Begin("commit", nil...)
	tr.End(c, "commit done", nil...)
	if err := tr.Sync(); err != nil {
		t.Fatalf("Noop().Sync: unexpected error: %v", err)
	}
}

func TestNilTracerIsSafe(t *testing.T) {
	var tr *Tracer
	tr.Trace("no log configured")
	c := tr.Begin("begin")
	tr.End(c, "end")
	if err := tr.Sync(); err != nil {
		t.Fatalf("nil Tracer.Sync: unexpected error: %v", err)
	}
}

func TestSeqIncreases(t *testing.T) {
	tr := Noop()
	a := tr.Begin("a")
	b := tr.Begin("b")
	if b.seq <= a.seq {
		t.Fatalf("Begin sequence did not increase: a=%d b=%d", a.seq, b.seq)
	}
}
