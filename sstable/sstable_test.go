package sstable

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/kvforge/lsmtable/block"
	"github.com/kvforge/lsmtable/internal/vfs"
)

func buildTable(t *testing.T, blockSize int, entries [][2]string, path string) *SsTable {
	t.Helper()
	b := NewBuilder(Options{BlockSize: blockSize})
	for _, e := range entries {
		if err := b.Add([]byte(e[0]), []byte(e[1])); err != nil {
			t.Fatalf("Add(%q, %q): %v", e[0], e[1], err)
		}
	}
	tbl, err := b.Build(1, path, Options{})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return tbl
}

func eightEntries() [][2]string {
	var entries [][2]string
	for i := 1; i <= 8; i++ {
		entries = append(entries, [2]string{fmt.Sprintf("key_%d", i), fmt.Sprintf("v%d", i)})
	}
	return entries
}

func TestBuildAndOpenRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "table.sst")
	entries := eightEntries()

	built := buildTable(t, 32, entries, path)
	if built.NumOfBlocks() < 2 {
		t.Fatalf("NumOfBlocks() = %d, want >= 2 for this data with a 32-byte block size", built.NumOfBlocks())
	}

	f, err := vfs.OpenRandomAccess(path)
	if err != nil {
		t.Fatalf("OpenRandomAccess: %v", err)
	}
	defer func() { _ = f.Close() }()

	opened, err := Open(1, f, Options{})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	if string(opened.FirstKey()) != "key_1" {
		t.Errorf("FirstKey() = %q, want key_1", opened.FirstKey())
	}
	if string(opened.LastKey()) != "key_8" {
		t.Errorf("LastKey() = %q, want key_8", opened.LastKey())
	}
	if opened.NumOfBlocks() != built.NumOfBlocks() {
		t.Errorf("NumOfBlocks() = %d, want %d", opened.NumOfBlocks(), built.NumOfBlocks())
	}
}

func TestMetaIndexMonotonicity(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "table.sst")
	built := buildTable(t, 32, eightEntries(), path)

	for i := 0; i+1 < len(built.blockMeta); i++ {
		if built.blockMeta[i].Offset >= built.blockMeta[i+1].Offset {
			t.Errorf("blockMeta[%d].Offset = %d >= blockMeta[%d].Offset = %d",
				i, built.blockMeta[i].Offset, i+1, built.blockMeta[i+1].Offset)
		}
		if string(built.blockMeta[i].LastKey) >= string(built.blockMeta[i+1].FirstKey) {
			t.Errorf("blockMeta[%d].LastKey = %q >= blockMeta[%d].FirstKey = %q",
				i, built.blockMeta[i].LastKey, i+1, built.blockMeta[i+1].FirstKey)
		}
	}
}

func TestFindBlockIdxAndReadBlock(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "table.sst")
	entries := eightEntries()
	built := buildTable(t, 32, entries, path)

	for _, e := range entries {
		key := []byte(e[0])
		idx := built.FindBlockIdx(key)

		found := false
		for _, i := range []int{idx - 1, idx} {
			if i < 0 || i >= built.NumOfBlocks() {
				continue
			}
			blk, err := built.ReadBlock(i)
			if err != nil {
				t.Fatalf("ReadBlock(%d): %v", i, err)
			}
			it := block.NewIterator(blk)
			for it.IsValid() {
				if string(it.Key()) == e[0] {
					found = true
					if string(it.Value()) != e[1] {
						t.Errorf("key %q has value %q, want %q", e[0], it.Value(), e[1])
					}
				}
				it.Next()
			}
		}
		if !found {
			t.Errorf("key %q not found via FindBlockIdx(%q)=%d or its predecessor", e[0], e[0], idx)
		}
	}
}

func TestReadBlockContiguousSortedSubrange(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "table.sst")
	entries := eightEntries()
	built := buildTable(t, 32, entries, path)

	var allKeys []string
	for i := 0; i < built.NumOfBlocks(); i++ {
		blk, err := built.ReadBlock(i)
		if err != nil {
			t.Fatalf("ReadBlock(%d): %v", i, err)
		}
		it := block.NewIterator(blk)
		for it.IsValid() {
			allKeys = append(allKeys, string(it.Key()))
			it.Next()
		}
	}

	if len(allKeys) != len(entries) {
		t.Fatalf("total keys read = %d, want %d", len(allKeys), len(entries))
	}
	for i, e := range entries {
		if allKeys[i] != e[0] {
			t.Errorf("key %d = %q, want %q", i, allKeys[i], e[0])
		}
	}
}

func TestEmptyTableRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "table.sst")

	b := NewBuilder(Options{})
	built, err := b.Build(1, path, Options{})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if built.NumOfBlocks() != 0 {
		t.Fatalf("NumOfBlocks() = %d, want 0", built.NumOfBlocks())
	}
	if built.FirstKey() != nil || built.LastKey() != nil {
		t.Error("empty table should have nil first/last key")
	}

	f, err := vfs.OpenRandomAccess(path)
	if err != nil {
		t.Fatalf("OpenRandomAccess: %v", err)
	}
	defer func() { _ = f.Close() }()

	opened, err := Open(1, f, Options{})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if opened.NumOfBlocks() != 0 {
		t.Errorf("reopened NumOfBlocks() = %d, want 0", opened.NumOfBlocks())
	}
}

func TestCreateMetaOnlyHasNoFile(t *testing.T) {
	tbl := CreateMetaOnly(5, 1024, []byte("a"), []byte("z"))
	if tbl.SstID() != 5 {
		t.Errorf("SstID() = %d, want 5", tbl.SstID())
	}
	if tbl.TableSize() != 1024 {
		t.Errorf("TableSize() = %d, want 1024", tbl.TableSize())
	}
	if _, err := tbl.ReadBlock(0); err != ErrNoFileObject {
		t.Errorf("ReadBlock on meta-only table: err = %v, want ErrNoFileObject", err)
	}
}
