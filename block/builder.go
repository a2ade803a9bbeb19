package block

import (
	"errors"

	"github.com/kvforge/lsmtable/internal/encoding"
)

// ErrEmptyKey is returned by Builder.Add for a zero-length key. LsmIterator's
// tombstone-skip loop only treats an empty value as a deletion marker when
// the key is non-empty; rejecting empty keys here guarantees no real entry
// can ever confuse that check.
var ErrEmptyKey = errors.New("block: key must not be empty")

// entryOverhead is the fixed per-entry cost: 2-byte key length, 2-byte
// value length, and the 2-byte offset-array slot the entry occupies.
const entryOverhead = 2 + 2 + 2

// trailerSize is the 2-byte trailing entry count.
const trailerSize = 2

// Builder accumulates key/value entries into a Block until a configured
// byte budget is reached.
//
// Reference: aalhour/rockyardkv internal/block/builder.go for the
// builder/Finish split — this Builder carries no restart-point or
// delta-encoding state since the wire format stores full keys.
type Builder struct {
	blockSize int
	data      []byte
	offsets   []uint16
	firstKey  []byte
	finished  bool // whether Build has been called
}

// NewBuilder creates a Builder targeting blockSize bytes per block.
func NewBuilder(blockSize int) *Builder {
	return &Builder{blockSize: blockSize}
}

// Add adds a key/value pair to the block. It returns false without
// modifying the builder when the entry would push the encoded block past
// blockSize — except for the first entry in an empty builder, which is
// always accepted so a single oversized entry still makes progress.
func (b *Builder) Add(key, value []byte) (bool, error) {
	if b.finished {
		// Invariant violation: Build consumes the builder; adding after it
		// is a programmer error, not a recoverable one.
		panic("block: Add called after Build")
	}
	if len(key) == 0 {
		return false, ErrEmptyKey
	}

	if !b.IsEmpty() {
		postSize := len(b.data) + len(b.offsets)*2 +
			(2 + len(key) + 2 + len(value)) + 2 + trailerSize
		if postSize > b.blockSize {
			return false, nil
		}
	} else {
		b.firstKey = append([]byte(nil), key...)
	}

	b.offsets = append(b.offsets, uint16(len(b.data)))
	b.data = encoding.AppendFixed16(b.data, uint16(len(key)))
	b.data = append(b.data, key...)
	b.data = encoding.AppendFixed16(b.data, uint16(len(value)))
	b.data = append(b.data, value...)
	return true, nil
}

// IsEmpty reports whether no entry has been added.
func (b *Builder) IsEmpty() bool {
	return len(b.offsets) == 0
}

// EstimatedSize returns the conservative post-build encoded size: the data
// written so far plus the offset array and trailer that Build will add.
// It is conservative in that it always counts the trailer even though it
// has not been written yet, so any sequence accepted by Add, after Build
// and Encode, never exceeds blockSize (barring the first-entry override).
func (b *Builder) EstimatedSize() int {
	return len(b.data) + len(b.offsets)*2 + trailerSize
}

// Build consumes the builder and yields the finished Block. Calling Add
// afterward panics.
func (b *Builder) Build() *Block {
	b.finished = true
	return &Block{data: b.data, offsets: b.offsets}
}
