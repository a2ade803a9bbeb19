package iterator

import "errors"

// ErrFused is returned by Next once a FusedIterator has recorded an error
// from its inner iterator; every subsequent Next call returns it again.
var ErrFused = errors.New("iterator: fused iterator is sealed after a prior error")

// FusedIterator wraps an iterator and converts a transient error into a
// permanent terminal state: once Next fails, IsValid reports false and
// every later Next call fails immediately, without touching the inner
// iterator again.
type FusedIterator[T StorageIterator] struct {
	iter    T
	errored bool
}

// NewFusedIterator wraps iter.
func NewFusedIterator[T StorageIterator](iter T) *FusedIterator[T] {
	return &FusedIterator[T]{iter: iter}
}

// Key delegates to the inner iterator. Callers must check IsValid first.
func (f *FusedIterator[T]) Key() []byte { return f.iter.Key() }

// Value delegates to the inner iterator. Callers must check IsValid first.
func (f *FusedIterator[T]) Value() []byte { return f.iter.Value() }

// IsValid is false once sealed, regardless of the inner iterator's state.
func (f *FusedIterator[T]) IsValid() bool {
	return !f.errored && f.iter.IsValid()
}

// Next fails immediately once sealed. Otherwise it calls through to the
// inner iterator; an error there seals the iterator permanently.
func (f *FusedIterator[T]) Next() error {
	if f.errored {
		return ErrFused
	}
	if err := f.iter.Next(); err != nil {
		f.errored = true
		return err
	}
	return nil
}

// NumActiveIterators delegates to the inner iterator.
func (f *FusedIterator[T]) NumActiveIterators() int {
	return f.iter.NumActiveIterators()
}
