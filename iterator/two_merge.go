package iterator

import "bytes"

// TwoMergeIterator merges two iterators of possibly different concrete
// types into one sorted stream. On equal keys, A's entry is emitted and
// both sides advance.
//
// Reference: mini-lsm src/iterators/two_merge_iterator.rs
type TwoMergeIterator[A, B StorageIterator] struct {
	a A
	b B
}

// NewTwoMergeIterator constructs a TwoMergeIterator over a and b.
func NewTwoMergeIterator[A, B StorageIterator](a A, b B) *TwoMergeIterator[A, B] {
	return &TwoMergeIterator[A, B]{a: a, b: b}
}

func (m *TwoMergeIterator[A, B]) aLeads() bool {
	if !m.a.IsValid() {
		return false
	}
	if !m.b.IsValid() {
		return true
	}
	return bytes.Compare(m.a.Key(), m.b.Key()) <= 0
}

// Key returns the current key, preferring A on ties or when only A is valid.
func (m *TwoMergeIterator[A, B]) Key() []byte {
	if m.aLeads() {
		return m.a.Key()
	}
	return m.b.Key()
}

// Value returns the current value, preferring A on ties or when only A is valid.
func (m *TwoMergeIterator[A, B]) Value() []byte {
	if m.aLeads() {
		return m.a.Value()
	}
	return m.b.Value()
}

// IsValid reports whether either side is valid.
func (m *TwoMergeIterator[A, B]) IsValid() bool {
	return m.a.IsValid() || m.b.IsValid()
}

// Next advances the side with the smaller key, or both sides on a tie. When both
// advance on a tie and A errors, B is left untouched and the error
// propagates immediately.
func (m *TwoMergeIterator[A, B]) Next() error {
	switch {
	case m.a.IsValid() && m.b.IsValid():
		c := bytes.Compare(m.a.Key(), m.b.Key())
		switch {
		case c < 0:
			return m.a.Next()
		case c == 0:
			if err := m.a.Next(); err != nil {
				return err
			}
			return m.b.Next()
		default:
			return m.b.Next()
		}
	case m.a.IsValid():
		return m.a.Next()
	default:
		return m.b.Next()
	}
}

// NumActiveIterators sums both sides' leaf counts.
func (m *TwoMergeIterator[A, B]) NumActiveIterators() int {
	return m.a.NumActiveIterators() + m.b.NumActiveIterators()
}
