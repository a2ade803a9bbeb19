package iterator

// LsmIterator is the top-level read view over a merge of sorted leaves.
// It exposes raw byte-slice keys and hides tombstones: on construction
// and after every Next, it skips forward while the current entry has a
// non-empty key and an empty value (a deletion marker).
//
// Reference: mini-lsm src/lsm_iterator.rs
type LsmIterator struct {
	inner StorageIterator
}

// NewLsmIterator wraps inner, immediately skipping any leading tombstones.
func NewLsmIterator(inner StorageIterator) (*LsmIterator, error) {
	it := &LsmIterator{inner: inner}
	if err := it.skipDeleted(); err != nil {
		return nil, err
	}
	return it, nil
}

func (l *LsmIterator) skipDeleted() error {
	for l.inner.IsValid() && len(l.inner.Key()) != 0 && len(l.inner.Value()) == 0 {
		if err := l.inner.Next(); err != nil {
			return err
		}
	}
	return nil
}

// Key returns the current key. Only defined when IsValid is true.
func (l *LsmIterator) Key() []byte { return l.inner.Key() }

// Value returns the current value. Only defined when IsValid is true.
func (l *LsmIterator) Value() []byte { return l.inner.Value() }

// IsValid reports whether the iterator is positioned at a (non-tombstone) entry.
func (l *LsmIterator) IsValid() bool { return l.inner.IsValid() }

// Next advances past the current entry and skips any tombstones that follow.
func (l *LsmIterator) Next() error {
	if err := l.inner.Next(); err != nil {
		return err
	}
	return l.skipDeleted()
}

// NumActiveIterators delegates to the wrapped iterator.
func (l *LsmIterator) NumActiveIterators() int {
	return l.inner.NumActiveIterators()
}
