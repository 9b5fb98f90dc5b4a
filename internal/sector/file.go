package sector

import (
	"encoding/binary"
	"fmt"
	"os"

	"github.com/sanmill-go/morrispdb/internal/board"
)

const (
	headerSize      = 64
	evalStructSize  = 3
	expectedVersion = 2
)

// File is a read-only handle on one sector's on-disk binary contract (§3,
// §6): the 64-byte header, the packed evaluation records, and the
// exception map. Grounded on the Sector class in
// original_source/src/perfect/perfect_sector.cpp, split from Hash per
// DESIGN.md (Hash is pure arithmetic; File owns the bytes and the Sym
// redirect retry, since the retry must consult a stored record).
type File struct {
	ID   Id
	hash *Hash

	f              *os.File
	version        int32
	field2Offset   int32
	stoneDiffFlag  byte
	field1Size     int
	field2Size     int
	specField2     int32

	emSet map[int64]int32
}

// Open validates the header, allocates the sector hash, and loads the
// exception map, grounded on Sector::allocate_hash/read_header/read_em_set.
func Open(dir string, v board.Variant, id Id) (*File, error) {
	path := dir + string(os.PathSeparator) + id.FileName(v)
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("sector: database not found: %w", err)
	}

	sf := &File{ID: id, f: f}
	if err := sf.readHeader(); err != nil {
		f.Close()
		return nil, err
	}

	h, err := NewHash(id.W, id.B)
	if err != nil {
		f.Close()
		return nil, err
	}
	sf.hash = h

	if err := sf.readExceptionMap(); err != nil {
		f.Close()
		return nil, err
	}

	return sf, nil
}

func (sf *File) readHeader() error {
	var buf [headerSize]byte
	if _, err := sf.f.ReadAt(buf[:], 0); err != nil {
		return fmt.Errorf("sector: corrupt header: %w", err)
	}
	sf.version = int32(binary.LittleEndian.Uint32(buf[0:4]))
	structSize := int32(binary.LittleEndian.Uint32(buf[4:8]))
	sf.field2Offset = int32(binary.LittleEndian.Uint32(buf[8:12]))
	sf.stoneDiffFlag = buf[12]

	if sf.version != expectedVersion {
		return fmt.Errorf("sector: corrupt header: version %d, want %d", sf.version, expectedVersion)
	}
	if structSize != evalStructSize {
		return fmt.Errorf("sector: corrupt header: eval_struct_size %d, want %d", structSize, evalStructSize)
	}
	if sf.field2Offset < 0 || sf.field2Offset > evalStructSize*8 {
		return fmt.Errorf("sector: corrupt header: field2_offset %d out of range", sf.field2Offset)
	}

	sf.field1Size = int(sf.field2Offset)
	sf.field2Size = evalStructSize*8 - sf.field1Size
	sf.specField2 = -(1 << uint(sf.field2Size-1))
	return nil
}

func (sf *File) readExceptionMap() error {
	sf.emSet = make(map[int64]int32)
	recordsEnd := int64(headerSize) + sf.hash.HashCount*evalStructSize

	var countBuf [4]byte
	if _, err := sf.f.ReadAt(countBuf[:], recordsEnd); err != nil {
		return fmt.Errorf("sector: failed to read exception_count: %w", err)
	}
	count := binary.LittleEndian.Uint32(countBuf[:])

	entry := make([]byte, 8)
	off := recordsEnd + 4
	for i := uint32(0); i < count; i++ {
		if _, err := sf.f.ReadAt(entry, off); err != nil {
			return fmt.Errorf("sector: short read in exception map entry %d: %w", i, err)
		}
		key := int32(binary.LittleEndian.Uint32(entry[0:4]))
		val := int32(binary.LittleEndian.Uint32(entry[4:8]))
		sf.emSet[int64(key)] = val
		off += 8
	}
	return nil
}

func signExtend(x uint32, bits int) int32 {
	shift := 32 - uint(bits)
	return int32(x<<shift) >> shift
}

// readRaw unpacks the 3-byte record at in-sector index i.
func (sf *File) readRaw(i int64) (rawEval, error) {
	if i < 0 || i >= sf.hash.HashCount {
		return rawEval{}, fmt.Errorf("sector: out of range: index %d not in [0,%d)", i, sf.hash.HashCount)
	}
	var buf [evalStructSize]byte
	if _, err := sf.f.ReadAt(buf[:], int64(headerSize)+i*evalStructSize); err != nil {
		return rawEval{}, fmt.Errorf("sector: short read at record %d: %w", i, err)
	}
	a := uint32(buf[0]) | uint32(buf[1])<<8 | uint32(buf[2])<<16

	key1 := signExtend(a&((1<<uint(sf.field1Size))-1), sf.field1Size)
	key2 := signExtend(a>>uint(sf.field2Offset), sf.field2Size)

	if key2 == sf.specField2 {
		v, ok := sf.emSet[i]
		if !ok {
			return rawEval{}, fmt.Errorf("sector: record %d flagged exceptional but missing from em_set", i)
		}
		key2 = v
	}
	return rawEval{Key1: int16(key1), Key2: key2}, nil
}

// Lookup resolves a packed 48-bit board to its decoded evaluation,
// retrying once through the Sym redirect per §4.4's canonicalization
// invariant ("a second retry is never needed"). The returned EvalElem is
// still in the sector's own coordinate frame (§4.6) — callers apply Corr /
// UndoNegate themselves once they know the relevant sector values.
func (sf *File) Lookup(packed uint64) (EvalElem, error) {
	rec, err := sf.lookupRaw(packed)
	if err != nil {
		return EvalElem{}, err
	}
	return rec.toPublic(), nil
}

func (sf *File) lookupRaw(packed uint64) (rawEval, error) {
	idx, err := sf.hash.Index(packed)
	if err != nil {
		return rawEval{}, err
	}
	rec, err := sf.readRaw(idx)
	if err != nil {
		return rawEval{}, err
	}
	if rec.cas() != rawSym {
		return rec, nil
	}

	retryIdx, err := sf.hash.IndexWithOp(rec.sym(), packed)
	if err != nil {
		return rawEval{}, fmt.Errorf("sector: out of range: symmetry redirect failed: %w", err)
	}
	rec, err = sf.readRaw(retryIdx)
	if err != nil {
		return rawEval{}, err
	}
	if rec.cas() == rawSym {
		return rawEval{}, fmt.Errorf("sector: out of range: symmetry redirect chained twice at index %d", idx)
	}
	return rec, nil
}

// Hash exposes the sector's hash tables (e.g. for InverseIndex during
// sector enumeration, §4.12's open_sector/sector_next).
func (sf *File) Hash() *Hash { return sf.hash }

// HashCount is the number of distinct hash slots in this sector.
func (sf *File) HashCount() int64 { return sf.hash.HashCount }

// Close releases the file handle, matching Sector::release_hash.
func (sf *File) Close() error {
	sf.hash = nil
	sf.emSet = nil
	return sf.f.Close()
}
