// Package cache provides the in-memory block cache consulted by
// SsTable.ReadBlockCached. Unlike the on-disk wire format, cache entries
// are free to carry compression and an integrity check, since they never
// leave the process: a decoded Block is optionally Snappy-compressed and
// CRC32C-stamped before being stored, and verified/decompressed on the way
// back out.
//
// Reference: aalhour/rockyardkv internal/cache/lru_cache.go for the
// capacity-bounded LRU shape, and internal/checksum/crc32c.go for the
// checksum; both adapted here to guard cached *block.Block values keyed by
// (sstID, blockIdx) instead of RocksDB's (FileNumber, BlockOffset) file
// cache.
package cache

import (
	"container/list"
	"errors"
	"hash/crc32"
	"sync"

	"github.com/golang/snappy"

	"github.com/kvforge/lsmtable/block"
	"github.com/kvforge/lsmtable/internal/logging"
)

// ErrCorruptEntry is returned when a cached entry's integrity check fails,
// which would indicate memory corruption rather than anything recoverable.
var ErrCorruptEntry = errors.New("cache: corrupt block cache entry")

var crc32cTable = crc32.MakeTable(crc32.Castagnoli)

// Key identifies a cached block by the SST it belongs to and its index
// within that SST's block list.
type Key struct {
	SstID    uint64
	BlockIdx int
}

// Loader produces the Block for a cache miss, such as by reading it from
// an SsTable's backing file.
type Loader func() (*block.Block, error)

// entry is the value actually held in the LRU list: either the raw Block
// (fast path) or its compressed+checksummed bytes, depending on Options.
type entry struct {
	key        Key
	block      *block.Block
	compressed []byte
	checksum   uint32
	charge     int
}

// BlockCache is a capacity-bounded LRU cache of decoded Blocks, with an
// at-most-one-load guarantee per key: concurrent GetOrLoad calls for the
// same key block on a single in-flight Loader call rather than each
// issuing their own read.
type BlockCache struct {
	mu       sync.Mutex
	capacity int
	usage    int
	table    map[Key]*list.Element
	lru      *list.List
	inflight map[Key]*sync.WaitGroup

	compress bool
	logger   logging.Logger
}

// Options configures a BlockCache.
type Options struct {
	// CapacityBytes bounds the cache's estimated memory usage. Charge per
	// entry is the length of its encoded form (compressed, if enabled).
	CapacityBytes int

	// CompressCache stores entries Snappy-compressed, trading CPU on
	// cache hits and inserts for a smaller resident set. It has no effect on the SST
	// wire format, which is never compressed.
	CompressCache bool

	// Logger receives Debug-level eviction events and Warn-level corrupt-
	// entry events. A nil Logger discards them.
	Logger logging.Logger
}

// New creates a BlockCache per opts.
func New(opts Options) *BlockCache {
	return &BlockCache{
		capacity: opts.CapacityBytes,
		table:    make(map[Key]*list.Element),
		lru:      list.New(),
		inflight: make(map[Key]*sync.WaitGroup),
		compress: opts.CompressCache,
		logger:   logging.OrDefault(opts.Logger),
	}
}

// GetOrLoad returns the cached Block for key, loading it via load on a
// miss. Concurrent callers racing on the same key run at most one load at
// a time; the rest wait for it and then read the block it cached. If that
// load failed, or its block was evicted before a waiter looks again, the
// waiter runs a load of its own.
func (c *BlockCache) GetOrLoad(key Key, load Loader) (*block.Block, error) {
	for {
		c.mu.Lock()
		if elem, ok := c.table[key]; ok {
			c.lru.MoveToFront(elem)
			e := elem.Value.(*entry)
			c.mu.Unlock()
			return c.materialize(e)
		}

		if wg, ok := c.inflight[key]; ok {
			c.mu.Unlock()
			wg.Wait()
			continue // the loader that finished may have populated table
		}

		wg := &sync.WaitGroup{}
		wg.Add(1)
		c.inflight[key] = wg
		c.mu.Unlock()

		blk, err := load()

		c.mu.Lock()
		delete(c.inflight, key)
		if err == nil {
			c.insertLocked(key, blk)
		}
		c.mu.Unlock()
		wg.Done()

		return blk, err
	}
}

func (c *BlockCache) materialize(e *entry) (*block.Block, error) {
	if !c.compress {
		return e.block, nil
	}
	if crc32.Checksum(e.compressed, crc32cTable) != e.checksum {
		c.logger.Warnf(logging.NSBlockCache+"checksum mismatch for sst=%d block=%d", e.key.SstID, e.key.BlockIdx)
		return nil, ErrCorruptEntry
	}
	encoded, err := snappy.Decode(nil, e.compressed)
	if err != nil {
		return nil, err
	}
	return block.Decode(encoded)
}

func (c *BlockCache) insertLocked(key Key, blk *block.Block) {
	e := &entry{key: key, block: blk}
	if c.compress {
		encoded := blk.Encode()
		e.compressed = snappy.Encode(nil, encoded)
		e.checksum = crc32.Checksum(e.compressed, crc32cTable)
		e.charge = len(e.compressed)
		e.block = nil
	} else {
		e.charge = len(blk.Encode())
	}

	if old, ok := c.table[key]; ok {
		oldEntry := old.Value.(*entry)
		c.usage -= oldEntry.charge
		old.Value = e
		c.usage += e.charge
		c.lru.MoveToFront(old)
		return
	}

	elem := c.lru.PushFront(e)
	c.table[key] = elem
	c.usage += e.charge

	for c.capacity > 0 && c.usage > c.capacity && c.lru.Len() > 0 {
		c.evictOldest()
	}
}

func (c *BlockCache) evictOldest() {
	back := c.lru.Back()
	if back == nil {
		return
	}
	e := back.Value.(*entry)
	delete(c.table, e.key)
	c.lru.Remove(back)
	c.usage -= e.charge
	c.logger.Debugf(logging.NSBlockCache+"evicted sst=%d block=%d charge=%d", e.key.SstID, e.key.BlockIdx, e.charge)
}

// Len returns the number of entries currently cached.
func (c *BlockCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Len()
}
