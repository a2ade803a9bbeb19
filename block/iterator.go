package block

import "sort"

// Iterator walks the entries of a Block in key order, supporting seek by
// index and by lower-bound key search.
//
// Reference: aalhour/rockyardkv internal/block/iterator.go for the
// SeekToFirst/SeekTo/Next shape; SeekToKey here does a binary search over
// the offset array directly since entries store full keys (no restart
// points to binary-search between first).
type Iterator struct {
	block *Block
	idx   int
}

// NewIterator creates an Iterator over block, positioned at the first entry.
func NewIterator(block *Block) *Iterator {
	return &Iterator{block: block, idx: 0}
}

// SeekToFirst positions the iterator at the first entry.
func (it *Iterator) SeekToFirst() {
	it.idx = 0
}

// SeekToIdx positions the iterator at the entry with the given index.
// An out-of-range idx makes the iterator invalid.
func (it *Iterator) SeekToIdx(idx int) {
	it.idx = idx
}

// SeekToKey positions the iterator at the first entry whose key is >= key.
// If no such entry exists, the iterator becomes invalid.
func (it *Iterator) SeekToKey(key []byte) {
	offsets := it.block.offsets
	idx := sort.Search(len(offsets), func(i int) bool {
		return string(it.block.entryKey(offsets[i])) >= string(key)
	})
	it.idx = idx
}

// IsValid reports whether the iterator is positioned at an entry.
func (it *Iterator) IsValid() bool {
	return it.idx >= 0 && it.idx < len(it.block.offsets)
}

// Key returns the key at the current position. Only valid when IsValid.
func (it *Iterator) Key() []byte {
	return it.block.entryKey(it.block.offsets[it.idx])
}

// Value returns the value at the current position. Only valid when IsValid.
func (it *Iterator) Value() []byte {
	return it.block.entryValue(it.block.offsets[it.idx])
}

// Next advances the iterator by one entry.
func (it *Iterator) Next() {
	it.idx++
}
