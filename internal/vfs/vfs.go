// Package vfs provides the minimal filesystem abstraction the sstable
// package needs: read-only positional reads and atomic whole-file creation.
//
// Unlike a full write-path filesystem abstraction (which would also model
// sequential writers, directory locks, and directory listing for recovery),
// this core has no write path of its own — an SST is built entirely in
// memory and then written once — so only the random-access-read and
// atomic-create surface is needed.
//
// Reference: aalhour/rockyardkv internal/vfs/vfs.go
package vfs

import "os"

// RandomAccessFile is a file opened for positional reads.
type RandomAccessFile interface {
	// ReadAt reads len(p) bytes starting at off. It returns an error if
	// fewer bytes are available (short reads are never silently accepted).
	ReadAt(p []byte, off int64) (int, error)
	Size() int64
	Close() error
}

// osRandomAccessFile wraps os.File for RandomAccessFile.
type osRandomAccessFile struct {
	f    *os.File
	size int64
}

// OpenRandomAccess opens an existing file read-only for positional reads.
func OpenRandomAccess(name string) (RandomAccessFile, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	return &osRandomAccessFile{f: f, size: info.Size()}, nil
}

func (rf *osRandomAccessFile) ReadAt(p []byte, off int64) (int, error) {
	return rf.f.ReadAt(p, off)
}

func (rf *osRandomAccessFile) Size() int64 {
	return rf.size
}

func (rf *osRandomAccessFile) Close() error {
	return rf.f.Close()
}

// CreateAtomic writes data to path, fsyncs it, and reopens it read-only.
// The caller gets back a handle that can never observe a partial write,
// since the write+fsync happens before the read-only handle is returned.
func CreateAtomic(path string, data []byte) (RandomAccessFile, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return nil, err
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		return nil, err
	}
	if err := f.Close(); err != nil {
		return nil, err
	}
	return OpenRandomAccess(path)
}
