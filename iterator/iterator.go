// Package iterator provides the sorted-stream abstraction this storage
// core is built on: a uniform StorageIterator capability set, a k-way
// merge over homogeneous leaves, a 2-way merge over heterogeneous ones,
// a fused wrapper that seals on error, and the top-level tombstone-
// filtering iterator.
//
// Reference: aalhour/rockyardkv internal/iterator for the package split
// (one file per composition strategy) and doc-comment register; the
// capability set itself and the merge semantics below follow
// mini-lsm src/iterators (StorageIterator,
// MergeIterator, TwoMergeIterator, FusedIterator, LsmIterator), which
// expresses heterogeneous composition via distinct generic type
// parameters rather than RocksDB's single interface-typed child slice —
// kept here for TwoMergeIterator[A, B], while MergeIterator[T] is generic
// over a single leaf type for its homogeneous slice.
package iterator

// StorageIterator is a cursor over a sorted key stream. Validity may
// become false after Next; an error from Next renders the iterator
// permanently invalid.
type StorageIterator interface {
	// Key returns the current key. Only defined when IsValid is true.
	Key() []byte
	// Value returns the current value. Only defined when IsValid is true.
	Value() []byte
	// IsValid reports whether the iterator is positioned at an entry.
	IsValid() bool
	// Next advances to the next entry. An error leaves the iterator invalid.
	Next() error
	// NumActiveIterators reports the number of leaf iterators backing this
	// one; leaves return 1, composites sum their children.
	NumActiveIterators() int
}
