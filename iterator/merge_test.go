package iterator

import (
	"errors"
	"testing"
)

func collect(t *testing.T, it interface {
	IsValid() bool
	Key() []byte
	Value() []byte
	Next() error
}) []kvEntry {
	t.Helper()
	var out []kvEntry
	for it.IsValid() {
		out = append(out, kvEntry{
			key:   append([]byte(nil), it.Key()...),
			value: append([]byte(nil), it.Value()...),
		})
		if err := it.Next(); err != nil {
			t.Fatalf("Next: %v", err)
		}
	}
	return out
}

func assertEntries(t *testing.T, got []kvEntry, want []kvEntry) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got %d entries, want %d: got=%v want=%v", len(got), len(want), got, want)
	}
	for i := range want {
		if string(got[i].key) != string(want[i].key) || string(got[i].value) != string(want[i].value) {
			t.Errorf("entry %d = (%q,%q), want (%q,%q)", i, got[i].key, got[i].value, want[i].key, want[i].value)
		}
	}
}

func TestMergeIteratorPriority(t *testing.T) {
	src0 := newMockIterator([]kvEntry{kv("a", "A0"), kv("b", "B0")})
	src1 := newMockIterator([]kvEntry{kv("a", "A1"), kv("c", "C1")})

	m := NewMergeIterator([]*mockIterator{src0, src1})
	if m.NumActiveIterators() != 2 {
		t.Errorf("NumActiveIterators() = %d, want 2", m.NumActiveIterators())
	}

	got := collect(t, m)
	assertEntries(t, got, []kvEntry{kv("a", "A0"), kv("b", "B0"), kv("c", "C1")})
}

func TestMergeIteratorAllInvalidSources(t *testing.T) {
	src0 := newMockIterator(nil)
	src1 := newMockIterator(nil)
	m := NewMergeIterator([]*mockIterator{src0, src1})
	if m.IsValid() {
		t.Error("expected invalid MergeIterator over all-empty sources")
	}
	if m.NumActiveIterators() != 0 {
		t.Errorf("NumActiveIterators() = %d, want 0", m.NumActiveIterators())
	}
}

func TestMergeIteratorThreeWayTie(t *testing.T) {
	src0 := newMockIterator([]kvEntry{kv("k", "from-0")})
	src1 := newMockIterator([]kvEntry{kv("k", "from-1")})
	src2 := newMockIterator([]kvEntry{kv("k", "from-2")})

	m := NewMergeIterator([]*mockIterator{src0, src1, src2})
	got := collect(t, m)
	assertEntries(t, got, []kvEntry{kv("k", "from-0")})
}

func TestMergeIteratorPropagatesError(t *testing.T) {
	src0 := newFailingMockIterator([]kvEntry{kv("a", "1"), kv("b", "2")}, 2, errMockFailure)
	src1 := newMockIterator([]kvEntry{kv("c", "3")})

	m := NewMergeIterator([]*mockIterator{src0, src1})

	if string(m.Key()) != "a" {
		t.Fatalf("first key = %q, want a", m.Key())
	}
	if err := m.Next(); err != nil {
		t.Fatalf("first Next: %v", err)
	}
	if string(m.Key()) != "b" {
		t.Fatalf("second key = %q, want b", m.Key())
	}
	if err := m.Next(); !errors.Is(err, errMockFailure) {
		t.Fatalf("Next() error = %v, want errMockFailure", err)
	}
}

func TestMergeIteratorNonDecreasingOutput(t *testing.T) {
	src0 := newMockIterator([]kvEntry{kv("a", "1"), kv("d", "4"), kv("f", "6")})
	src1 := newMockIterator([]kvEntry{kv("b", "2"), kv("c", "3"), kv("e", "5")})

	m := NewMergeIterator([]*mockIterator{src0, src1})
	got := collect(t, m)
	want := []kvEntry{kv("a", "1"), kv("b", "2"), kv("c", "3"), kv("d", "4"), kv("e", "5"), kv("f", "6")}
	assertEntries(t, got, want)
}
