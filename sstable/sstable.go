// Package sstable implements the immutable sorted-string table: a file of
// sorted Blocks plus a trailing meta index.
//
// File layout (byte-exact):
//
//	blocks:        concatenation of block.Block encodings, in order
//	meta_region:   for each block:
//	                   u64_le offset_in_file
//	                   u64_le first_key_len | first_key_bytes
//	                   u64_le last_key_len  | last_key_bytes
//	meta_offset:   u32_le = byte offset of meta_region within the file
//
// Reference: mini-lsm src/table.rs for the
// open/read_block/find_block_idx shape (BlockMeta, FileObject, trailing
// u32 meta offset); styled after aalhour/rockyardkv internal/table/reader.go
// (doc-comment register, sentinel errors, ReadableFile-style abstraction —
// though this format carries none of RocksDB's footer/metaindex/filter
// machinery, since the wire format here is fixed and minimal).
package sstable

import (
	"errors"
	"sort"

	"github.com/kvforge/lsmtable/block"
	"github.com/kvforge/lsmtable/internal/cache"
	"github.com/kvforge/lsmtable/internal/encoding"
	"github.com/kvforge/lsmtable/internal/logging"
	"github.com/kvforge/lsmtable/internal/vfs"
)

// ErrTruncatedTable is returned when a file is too short to hold even the
// trailing meta-offset word, or when the meta region ends in the middle of
// a record.
var ErrTruncatedTable = errors.New("sstable: truncated table file")

// ErrMetaOffsetOutOfRange is returned when the trailing meta-offset word
// points outside the file, which would make the meta region unreadable.
var ErrMetaOffsetOutOfRange = errors.New("sstable: meta offset out of range")

// ErrNoFileObject is returned by operations that need file bytes on an
// SsTable built via CreateMetaOnly, which intentionally carries no
// backing file.
var ErrNoFileObject = errors.New("sstable: no backing file object")

// ErrBlockIndexOutOfRange is returned by ReadBlock for an idx outside
// [0, NumOfBlocks()).
var ErrBlockIndexOutOfRange = errors.New("sstable: block index out of range")

const metaOffsetTrailerSize = 4

// Options configures Open and NewBuilder. The zero value is valid: a
// zero BlockSize falls back to DefaultBlockSize, a nil Logger resolves to
// logging.Discard, and a nil Cache disables ReadBlockCached's cache layer.
type Options struct {
	// BlockSize is the target size in bytes for each data block.
	BlockSize int
	// Logger receives Debug/Info-level build and open/parse events.
	Logger logging.Logger
	// Cache is consulted by ReadBlockCached; nil makes it equivalent to ReadBlock.
	Cache *cache.BlockCache
}

// DefaultBlockSize is used when Options.BlockSize is zero.
const DefaultBlockSize = 4096

func (o Options) blockSize() int {
	if o.BlockSize <= 0 {
		return DefaultBlockSize
	}
	return o.BlockSize
}

// BlockMeta is the index record for one block: its byte offset within the
// file, and its first and last keys.
type BlockMeta struct {
	Offset   int
	FirstKey []byte
	LastKey  []byte
}

func encodeBlockMeta(metas []BlockMeta) []byte {
	var out []byte
	for _, m := range metas {
		out = encoding.AppendFixed64(out, uint64(m.Offset))
		out = encoding.AppendFixed64(out, uint64(len(m.FirstKey)))
		out = append(out, m.FirstKey...)
		out = encoding.AppendFixed64(out, uint64(len(m.LastKey)))
		out = append(out, m.LastKey...)
	}
	return out
}

func decodeBlockMeta(buf []byte) ([]BlockMeta, error) {
	var metas []BlockMeta
	for len(buf) > 0 {
		if len(buf) < 8 {
			return nil, ErrTruncatedTable
		}
		offset := encoding.DecodeFixed64(buf)
		buf = buf[8:]

		firstKey, rest, err := readLengthPrefixed(buf)
		if err != nil {
			return nil, err
		}
		buf = rest

		lastKey, rest, err := readLengthPrefixed(buf)
		if err != nil {
			return nil, err
		}
		buf = rest

		metas = append(metas, BlockMeta{Offset: int(offset), FirstKey: firstKey, LastKey: lastKey})
	}
	return metas, nil
}

func readLengthPrefixed(buf []byte) (value []byte, rest []byte, err error) {
	if len(buf) < 8 {
		return nil, nil, ErrTruncatedTable
	}
	n := encoding.DecodeFixed64(buf)
	buf = buf[8:]
	if uint64(len(buf)) < n {
		return nil, nil, ErrTruncatedTable
	}
	value = make([]byte, n)
	copy(value, buf[:n])
	return value, buf[n:], nil
}

// SsTable is an immutable, sorted key/value file composed of blocks and a
// trailing meta index. It is read-only and safe to share by reference
// across iterators: each iterator positions itself independently via
// ReadBlock/ReadBlockCached rather than a shared cursor.
type SsTable struct {
	file            vfs.RandomAccessFile
	fileSize        int64
	blockMeta       []BlockMeta
	blockMetaOffset int
	id              uint64
	blockCache      *cache.BlockCache
	firstKey        []byte
	lastKey         []byte
	maxTs           uint64
}

// Open opens an SST file. id identifies this table for cache keying.
// opts.Cache is optional (nil disables ReadBlockCached's cache layer,
// making it equivalent to ReadBlock); opts.Logger is optional (nil logs
// nothing); opts.BlockSize is unused by Open (it only matters to
// NewBuilder) and may be left zero.
func Open(id uint64, file vfs.RandomAccessFile, opts Options) (*SsTable, error) {
	log := logging.OrDefault(opts.Logger)

	size := file.Size()
	if size < metaOffsetTrailerSize {
		return nil, ErrTruncatedTable
	}

	trailer := make([]byte, metaOffsetTrailerSize)
	if _, err := file.ReadAt(trailer, size-metaOffsetTrailerSize); err != nil {
		return nil, err
	}
	metaOffset := int(encoding.DecodeFixed32(trailer))
	if metaOffset < 0 || int64(metaOffset) > size-metaOffsetTrailerSize {
		return nil, ErrMetaOffsetOutOfRange
	}

	metaBuf := make([]byte, int(size)-metaOffsetTrailerSize-metaOffset)
	if len(metaBuf) > 0 {
		if _, err := file.ReadAt(metaBuf, int64(metaOffset)); err != nil {
			return nil, err
		}
	}

	metas, err := decodeBlockMeta(metaBuf)
	if err != nil {
		log.Warnf(logging.NSSSTable+"id=%d failed to decode meta region: %v", id, err)
		return nil, err
	}

	var firstKey, lastKey []byte
	if len(metas) > 0 {
		firstKey = metas[0].FirstKey
		lastKey = metas[len(metas)-1].LastKey
	}

	log.Debugf(logging.NSSSTable+"opened id=%d size=%d blocks=%d", id, size, len(metas))

	return &SsTable{
		file:            file,
		fileSize:        size,
		blockMeta:       metas,
		blockMetaOffset: metaOffset,
		id:              id,
		blockCache:      opts.Cache,
		firstKey:        firstKey,
		lastKey:         lastKey,
	}, nil
}

// CreateMetaOnly builds a mock SsTable carrying only first/last key and
// size metadata, with no backing file. Any operation requiring block
// bytes (ReadBlock, ReadBlockCached) fails with ErrNoFileObject. This is
// useful for compaction-planning code that only needs key-range metadata.
func CreateMetaOnly(id uint64, fileSize int64, firstKey, lastKey []byte) *SsTable {
	return &SsTable{
		fileSize: fileSize,
		id:       id,
		firstKey: firstKey,
		lastKey:  lastKey,
	}
}

// blockRange returns the [start, end) byte range of block idx within the file.
func (t *SsTable) blockRange(idx int) (start, end int) {
	start = t.blockMeta[idx].Offset
	if idx+1 < len(t.blockMeta) {
		end = t.blockMeta[idx+1].Offset
	} else {
		end = t.blockMetaOffset
	}
	return start, end
}

// ReadBlock reads and decodes the block at idx directly from the file,
// bypassing any cache.
func (t *SsTable) ReadBlock(idx int) (*block.Block, error) {
	if t.file == nil {
		return nil, ErrNoFileObject
	}
	if idx < 0 || idx >= len(t.blockMeta) {
		return nil, ErrBlockIndexOutOfRange
	}

	start, end := t.blockRange(idx)
	buf := make([]byte, end-start)
	if _, err := t.file.ReadAt(buf, int64(start)); err != nil {
		return nil, err
	}
	return block.Decode(buf)
}

// ReadBlockCached is ReadBlock routed through the configured block cache,
// keyed by (sst_id, idx). With no cache configured, it behaves exactly
// like ReadBlock.
func (t *SsTable) ReadBlockCached(idx int) (*block.Block, error) {
	if t.blockCache == nil {
		return t.ReadBlock(idx)
	}
	return t.blockCache.GetOrLoad(cache.Key{SstID: t.id, BlockIdx: idx}, func() (*block.Block, error) {
		return t.ReadBlock(idx)
	})
}

// FindBlockIdx returns the smallest index i such that
// block_meta[i].FirstKey >= key, or len(blockMeta) when there is none.
// When key is smaller than every first key, it returns 0; when key equals
// a block's first key, it returns that block. When key falls strictly
// inside block i's range, it returns i+1, so the block that may contain
// key is the returned one or its predecessor.
func (t *SsTable) FindBlockIdx(key []byte) int {
	return sort.Search(len(t.blockMeta), func(i int) bool {
		return string(t.blockMeta[i].FirstKey) >= string(key)
	})
}

// FirstKey returns the smallest key in the table, or nil if it has no blocks.
func (t *SsTable) FirstKey() []byte { return t.firstKey }

// LastKey returns the largest key in the table, or nil if it has no blocks.
func (t *SsTable) LastKey() []byte { return t.lastKey }

// NumOfBlocks returns the number of data blocks in the table.
func (t *SsTable) NumOfBlocks() int { return len(t.blockMeta) }

// TableSize returns the total size of the backing file in bytes.
func (t *SsTable) TableSize() int64 { return t.fileSize }

// SstID returns the identifier this table was opened or built with.
func (t *SsTable) SstID() uint64 { return t.id }

// MaxTs returns the maximum timestamp recorded in this table. The core
// format reserves the field but never populates it; it always reads 0
// here until a downstream layer starts writing versioned entries.
func (t *SsTable) MaxTs() uint64 { return t.maxTs }
