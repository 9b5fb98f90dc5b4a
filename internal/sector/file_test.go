package sector

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/sanmill-go/morrispdb/internal/board"
)

// writeSectorFile fabricates a minimal but well-formed .sec2 file for id,
// with every record set to rec (before any em_set override) and the given
// exception entries, matching the §3 layout byte for byte.
func writeSectorFile(t *testing.T, dir string, v board.Variant, id Id, h *Hash, recordAt func(i int64) (field1, field2 int32), field2Offset int32, exceptions map[int32]int32) {
	t.Helper()

	path := filepath.Join(dir, id.FileName(v))
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create sector file: %v", err)
	}
	defer f.Close()

	var header [headerSize]byte
	binary.LittleEndian.PutUint32(header[0:4], expectedVersion)
	binary.LittleEndian.PutUint32(header[4:8], evalStructSize)
	binary.LittleEndian.PutUint32(header[8:12], uint32(field2Offset))
	header[12] = 0
	if _, err := f.Write(header[:]); err != nil {
		t.Fatalf("write header: %v", err)
	}

	field1Mask := uint32(1)<<uint(field2Offset) - 1
	for i := int64(0); i < h.HashCount; i++ {
		f1, f2 := recordAt(i)
		packed := (uint32(f1) & field1Mask) | (uint32(f2) << uint(field2Offset))
		var buf [3]byte
		buf[0] = byte(packed)
		buf[1] = byte(packed >> 8)
		buf[2] = byte(packed >> 16)
		if _, err := f.Write(buf[:]); err != nil {
			t.Fatalf("write record %d: %v", i, err)
		}
	}

	var countBuf [4]byte
	binary.LittleEndian.PutUint32(countBuf[:], uint32(len(exceptions)))
	if _, err := f.Write(countBuf[:]); err != nil {
		t.Fatalf("write exception count: %v", err)
	}
	for k, val := range exceptions {
		var entry [8]byte
		binary.LittleEndian.PutUint32(entry[0:4], uint32(k))
		binary.LittleEndian.PutUint32(entry[4:8], uint32(val))
		if _, err := f.Write(entry[:]); err != nil {
			t.Fatalf("write exception entry: %v", err)
		}
	}
}

func TestFileLookupDecodesPlainRecord(t *testing.T) {
	dir := t.TempDir()
	h, err := NewHash(2, 1)
	if err != nil {
		t.Fatalf("NewHash failed: %v", err)
	}
	id := Id{W: 2, B: 1, WF: 0, BF: 0}

	// field1 gets 10 bits (key1), field2 gets 14 bits (key2) for this test.
	const field2Offset = 10
	writeSectorFile(t, dir, board.Standard, id, h, func(i int64) (int32, int32) {
		return 5, 7 // a plain Val record at every index
	}, field2Offset, nil)

	f, err := Open(dir, board.Standard, id)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer f.Close()

	packed, err := h.InverseIndex(0)
	if err != nil {
		t.Fatalf("InverseIndex failed: %v", err)
	}
	elem, err := f.Lookup(packed)
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}
	if elem.Key1 != 5 || elem.Key2 != 7 {
		t.Errorf("got %+v, want {5 7}", elem)
	}
}

func TestFileLookupResolvesExceptionMap(t *testing.T) {
	dir := t.TempDir()
	h, err := NewHash(2, 1)
	if err != nil {
		t.Fatalf("NewHash failed: %v", err)
	}
	id := Id{W: 2, B: 1, WF: 0, BF: 0}

	const field2Offset = 10
	const field2Size = evalStructSize*8 - field2Offset
	specField2 := int32(-(1 << uint(field2Size-1)))

	writeSectorFile(t, dir, board.Standard, id, h, func(i int64) (int32, int32) {
		if i == 0 {
			return 0, specField2
		}
		return 1, 1
	}, field2Offset, map[int32]int32{0: 999})

	f, err := Open(dir, board.Standard, id)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer f.Close()

	packed, err := h.InverseIndex(0)
	if err != nil {
		t.Fatalf("InverseIndex failed: %v", err)
	}
	elem, err := f.Lookup(packed)
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}
	if elem.Key2 != 999 {
		t.Errorf("expected exception map override to yield Key2=999, got %d", elem.Key2)
	}
}

func TestFileRejectsCorruptHeader(t *testing.T) {
	dir := t.TempDir()
	id := Id{W: 1, B: 1, WF: 0, BF: 0}
	path := filepath.Join(dir, id.FileName(board.Standard))

	var header [headerSize]byte
	binary.LittleEndian.PutUint32(header[0:4], 99) // wrong version
	if err := os.WriteFile(path, header[:], 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	if _, err := Open(dir, board.Standard, id); err == nil {
		t.Fatal("expected Open to reject a corrupt header")
	}
}
