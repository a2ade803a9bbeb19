package iterator

import (
	"errors"
	"testing"
)

func TestFusedIteratorSealsOnError(t *testing.T) {
	src := newFailingMockIterator([]kvEntry{kv("a", "1"), kv("b", "2"), kv("c", "3")}, 2, errMockFailure)
	f := NewFusedIterator[*mockIterator](src)

	if !f.IsValid() {
		t.Fatal("expected valid before any Next")
	}
	if err := f.Next(); err != nil {
		t.Fatalf("first Next: %v", err)
	}

	if err := f.Next(); !errors.Is(err, errMockFailure) {
		t.Fatalf("second Next() error = %v, want errMockFailure", err)
	}
	if f.IsValid() {
		t.Error("expected invalid after errored Next")
	}
	if err := f.Next(); !errors.Is(err, ErrFused) {
		t.Fatalf("third Next() error = %v, want ErrFused", err)
	}
}

func TestFusedIteratorDelegatesWhenHealthy(t *testing.T) {
	src := newMockIterator([]kvEntry{kv("a", "1"), kv("b", "2")})
	f := NewFusedIterator[*mockIterator](src)

	got := collect(t, f)
	assertEntries(t, got, []kvEntry{kv("a", "1"), kv("b", "2")})
}
