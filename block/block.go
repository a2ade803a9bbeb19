// Package block implements the Block: the smallest unit of I/O and caching
// in the LSM tree. A Block holds a sorted sequence of key/value entries
// plus a parallel offset array for O(1) random access and binary search.
//
// Wire format (byte-exact):
//
//	entry region:   sequence of entries, each
//	                    u16_le key_len | key | u16_le value_len | value
//	offset array:   n x u16_le, one offset per entry into the entry region
//	entry_count:    u16_le = n
//
// Reference: aalhour/rockyardkv internal/block/block.go for the package
// shape (Block holds raw bytes + a derived index, decode parses the
// trailer first); the field layout itself follows spec rather than
// rockyardkv's prefix-compressed restart-point format, since this core
// has no compression and no restart points.
package block

import (
	"errors"

	"github.com/kvforge/lsmtable/internal/encoding"
)

// ErrTruncatedBlock is returned when decoding finds fewer bytes than the
// trailing count and offset array require.
var ErrTruncatedBlock = errors.New("block: truncated or corrupt block")

// Block is a sorted sequence of key/value entries plus a parallel offset
// array. It is immutable after construction; Decode materializes an
// independent copy of the bytes so callers may share a Block by reference
// without aliasing the original decode buffer.
type Block struct {
	data    []byte
	offsets []uint16
}

// Data returns the entry-region bytes (read-only; do not mutate).
func (b *Block) Data() []byte {
	return b.data
}

// Offsets returns the per-entry offset array (read-only; do not mutate).
func (b *Block) Offsets() []uint16 {
	return b.offsets
}

// Encode produces the wire format described in the package doc.
func (b *Block) Encode() []byte {
	out := make([]byte, 0, len(b.data)+len(b.offsets)*2+2)
	out = append(out, b.data...)
	for _, off := range b.offsets {
		out = encoding.AppendFixed16(out, off)
	}
	out = encoding.AppendFixed16(out, uint16(len(b.offsets)))
	return out
}

// Decode parses the wire format into a Block. It fails only on truncation:
// the buffer must be at least long enough to hold the trailing count and
// the offset array it names.
func Decode(data []byte) (*Block, error) {
	if len(data) < 2 {
		return nil, ErrTruncatedBlock
	}
	numEntries := int(encoding.DecodeFixed16(data[len(data)-2:]))

	offsetsSize := numEntries * 2
	trailerSize := offsetsSize + 2
	if trailerSize > len(data) {
		return nil, ErrTruncatedBlock
	}
	offsetsStart := len(data) - trailerSize

	offsets := make([]uint16, numEntries)
	for i := range offsets {
		offsets[i] = encoding.DecodeFixed16(data[offsetsStart+i*2:])
	}

	entryData := make([]byte, offsetsStart)
	copy(entryData, data[:offsetsStart])

	return &Block{data: entryData, offsets: offsets}, nil
}

// entryKey reads the key stored at the given offset into the entry region.
func (b *Block) entryKey(offset uint16) []byte {
	d := b.data[offset:]
	keyLen := encoding.DecodeFixed16(d)
	return d[2 : 2+keyLen]
}

// entryValue reads the value stored at the given offset into the entry region.
func (b *Block) entryValue(offset uint16) []byte {
	d := b.data[offset:]
	keyLen := encoding.DecodeFixed16(d)
	d = d[2+keyLen:]
	valLen := encoding.DecodeFixed16(d)
	return d[2 : 2+valLen]
}

// FirstKey returns the key of the first entry, or nil if the block is empty.
func (b *Block) FirstKey() []byte {
	if len(b.offsets) == 0 {
		return nil
	}
	return b.entryKey(b.offsets[0])
}

// LastKey returns the key of the last entry, or nil if the block is empty.
func (b *Block) LastKey() []byte {
	if len(b.offsets) == 0 {
		return nil
	}
	return b.entryKey(b.offsets[len(b.offsets)-1])
}

// NumEntries returns the number of entries in the block.
func (b *Block) NumEntries() int {
	return len(b.offsets)
}
