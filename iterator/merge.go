package iterator

import (
	"bytes"
	"container/heap"
)

// MergeIterator merges N iterators of the same concrete type into one
// sorted stream. Iterators are identified by their construction index
// 0..N-1; on equal keys across sources, the lowest-indexed source wins
// and the others are silently advanced past that key.
//
// Structure: a max-heap (by "smaller key, or equal key with smaller
// index, is greater") of the non-current iterators, plus an out-of-band
// current slot holding the selected one. Centralizing de-duplication in
// Next rather than Key/Value keeps reads O(1).
type MergeIterator[T StorageIterator] struct {
	h       mergeHeap[T]
	current *heapEntry[T]
}

type heapEntry[T StorageIterator] struct {
	index int
	iter  T
}

// less reports whether a is ordered before b under "smaller key wins;
// equal key, smaller index wins" — the priority used both for heap
// ordering and for the current-vs-heap-top swap in Next.
func less[T StorageIterator](a, b heapEntry[T]) bool {
	c := bytes.Compare(a.iter.Key(), b.iter.Key())
	if c != 0 {
		return c < 0
	}
	return a.index < b.index
}

type mergeHeap[T StorageIterator] []heapEntry[T]

func (h mergeHeap[T]) Len() int            { return len(h) }
func (h mergeHeap[T]) Less(i, j int) bool  { return less(h[i], h[j]) }
func (h mergeHeap[T]) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *mergeHeap[T]) Push(x any)         { *h = append(*h, x.(heapEntry[T])) }
func (h *mergeHeap[T]) Pop() any {
	old := *h
	n := len(old)
	e := old[n-1]
	*h = old[:n-1]
	return e
}

// NewMergeIterator constructs a MergeIterator over iters, in priority
// order (iters[0] has the highest priority). Invalid iterators are
// filtered out up front.
func NewMergeIterator[T StorageIterator](iters []T) *MergeIterator[T] {
	h := make(mergeHeap[T], 0, len(iters))
	for i, it := range iters {
		if it.IsValid() {
			h = append(h, heapEntry[T]{index: i, iter: it})
		}
	}
	heap.Init(&h)

	m := &MergeIterator[T]{h: h}
	if m.h.Len() > 0 {
		e := heap.Pop(&m.h).(heapEntry[T])
		m.current = &e
	}
	return m
}

// Key returns the current key, or nil if the iterator is invalid.
func (m *MergeIterator[T]) Key() []byte {
	if m.current == nil {
		return nil
	}
	return m.current.iter.Key()
}

// Value returns the current value, or nil if the iterator is invalid.
func (m *MergeIterator[T]) Value() []byte {
	if m.current == nil {
		return nil
	}
	return m.current.iter.Value()
}

// IsValid reports whether the iterator is positioned at an entry.
func (m *MergeIterator[T]) IsValid() bool {
	return m.current != nil && m.current.iter.IsValid()
}

// Next advances past the current key, first evicting every heap entry
// sharing that key (advancing each; dropping it from consideration if it
// errors or becomes invalid), then advancing current itself and
// restoring the heap-minimum invariant.
func (m *MergeIterator[T]) Next() error {
	if m.current == nil {
		return nil
	}
	key := m.current.iter.Key()

	for m.h.Len() > 0 && bytes.Equal(m.h[0].iter.Key(), key) {
		top := &m.h[0]
		if err := top.iter.Next(); err != nil {
			heap.Pop(&m.h)
			return err
		}
		if !top.iter.IsValid() {
			heap.Pop(&m.h)
		} else {
			heap.Fix(&m.h, 0)
		}
	}

	if err := m.current.iter.Next(); err != nil {
		m.current = nil
		return err
	}

	if !m.current.iter.IsValid() {
		if m.h.Len() > 0 {
			e := heap.Pop(&m.h).(heapEntry[T])
			m.current = &e
		} else {
			m.current = nil
		}
		return nil
	}

	if m.h.Len() > 0 && less(m.h[0], *m.current) {
		*m.current, m.h[0] = m.h[0], *m.current
		heap.Fix(&m.h, 0)
	}
	return nil
}

// NumActiveIterators sums the leaf count across current and every heap entry.
func (m *MergeIterator[T]) NumActiveIterators() int {
	count := 0
	if m.current != nil {
		count += m.current.iter.NumActiveIterators()
	}
	for _, e := range m.h {
		count += e.iter.NumActiveIterators()
	}
	return count
}
