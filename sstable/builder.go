package sstable

import (
	"github.com/kvforge/lsmtable/block"
	"github.com/kvforge/lsmtable/internal/encoding"
	"github.com/kvforge/lsmtable/internal/logging"
	"github.com/kvforge/lsmtable/internal/vfs"
)

// Builder streams key/value entries through a rolling block.Builder,
// splitting into a new block whenever the current one rejects an entry,
// and produces the final SsTable file on Build.
//
// Callers must present keys in strictly increasing order across the
// builder's lifetime; the builder does not verify this.
//
// Reference: mini-lsm src/table/builder.rs for the
// add/split_new_block/build structure.
type Builder struct {
	builder   *block.Builder
	blockSize int
	logger    logging.Logger

	data     []byte
	meta     []BlockMeta
	firstKey []byte
	lastKey  []byte
}

// NewBuilder creates a Builder. opts.BlockSize targets the per-data-block
// size (DefaultBlockSize when zero); opts.Logger receives Debug-level
// block-split events (discarded when nil). opts.Cache is ignored here — it
// only matters to Build, which installs it on the resulting SsTable.
func NewBuilder(opts Options) *Builder {
	blockSize := opts.blockSize()
	return &Builder{
		builder:   block.NewBuilder(blockSize),
		blockSize: blockSize,
		logger:    logging.OrDefault(opts.Logger),
	}
}

// Add adds a key/value pair to the table under construction.
func (b *Builder) Add(key, value []byte) error {
	if b.firstKey == nil {
		b.firstKey = append([]byte(nil), key...)
	}
	b.lastKey = append([]byte(nil), key...)

	ok, err := b.builder.Add(key, value)
	if err != nil {
		return err
	}
	if !ok {
		b.splitNewBlock()
		// The first-entry rule guarantees a fresh builder accepts this insert.
		if _, err := b.builder.Add(key, value); err != nil {
			return err
		}
	}
	return nil
}

// splitNewBlock finalizes the current block builder into a Block, appends
// its encoding to data, records its BlockMeta, and replaces the builder
// with a fresh one. A block with no entries is neither encoded nor given a
// BlockMeta, since it has no first or last key to index.
func (b *Builder) splitNewBlock() {
	old := b.builder
	b.builder = block.NewBuilder(b.blockSize)

	if old.IsEmpty() {
		return
	}

	blk := old.Build()
	b.meta = append(b.meta, BlockMeta{
		Offset:   len(b.data),
		FirstKey: append([]byte(nil), blk.FirstKey()...),
		LastKey:  append([]byte(nil), blk.LastKey()...),
	})
	encoded := blk.Encode()
	b.data = append(b.data, encoded...)
	b.logger.Debugf(logging.NSSSTable+"split block idx=%d entries=%d encoded=%d", len(b.meta)-1, blk.NumEntries(), len(encoded))
}

// EstimatedSize returns the length of the data written so far, ignoring
// the unflushed in-progress block and the not-yet-written meta region.
// This is the approximate on-disk size used by an external compaction
// scheduler to decide when a table is "full enough".
func (b *Builder) EstimatedSize() int {
	return len(b.data)
}

// Build flushes the in-progress block, writes the complete file to path,
// and returns the resulting read-only SsTable. A builder that never
// accepted any entry produces a valid, empty table (no blocks, no meta).
// opts.Cache is installed on the resulting table for ReadBlockCached;
// opts.BlockSize and opts.Logger are ignored here (they were already
// applied by NewBuilder).
func (b *Builder) Build(id uint64, path string, opts Options) (*SsTable, error) {
	b.splitNewBlock()

	buf := append([]byte(nil), b.data...)
	metaOffset := len(buf)
	buf = append(buf, encodeBlockMeta(b.meta)...)

	trailer := make([]byte, metaOffsetTrailerSize)
	encoding.EncodeFixed32(trailer, uint32(metaOffset))
	buf = append(buf, trailer...)

	file, err := vfs.CreateAtomic(path, buf)
	if err != nil {
		return nil, err
	}

	var firstKey, lastKey []byte
	if len(b.meta) > 0 {
		firstKey = b.meta[0].FirstKey
		lastKey = b.meta[len(b.meta)-1].LastKey
	}

	b.logger.Infof(logging.NSSSTable+"built id=%d path=%s blocks=%d size=%d", id, path, len(b.meta), len(buf))

	return &SsTable{
		file:            file,
		fileSize:        file.Size(),
		blockMeta:       b.meta,
		blockMetaOffset: metaOffset,
		id:              id,
		blockCache:      opts.Cache,
		firstKey:        firstKey,
		lastKey:         lastKey,
	}, nil
}
