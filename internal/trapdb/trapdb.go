// Package trapdb loads and queries the Trap Database (spec component C9):
// a lightweight, derived table of "hidden trap" positions where the naive
// move (closing a mill, or blocking the opponent's) actually loses, flagging
// exactly those exceptions so a caller can avoid them without consulting the
// full perfect database. Grounded on
// original_source/src/perfect/perfect_trap_db.{h,cpp}.
package trapdb

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/sanmill-go/morrispdb/internal/board"
)

// Mask is the TrapMask bitset from perfect_trap_db.h.
type Mask uint8

const (
	None          Mask = 0
	SelfMillLoss  Mask = 1 << 0 // forming a mill here loses; alternatives draw/win
	BlockMillLoss Mask = 1 << 1 // blocking the opponent's mill here loses; alternatives draw/win
)

const (
	fileName   = "std_traps.sec2"
	magic      = "TRAPDB2\x00" // 8 bytes including the trailing NUL
	recDiskLen = 12            // uint32 wBits, uint32 bBits, uint8 side/WF/BF/mask
)

// record is one merged trap entry: mask bits, side-to-move WDL (-1/0/+1),
// and distance to that result in half-moves (-1 = unknown), matching
// s_traps/s_trap_wdl/s_trap_steps in the original.
type record struct {
	mask  Mask
	wdl   int8
	steps int16
}

// DB is an in-memory trap table keyed by the 64-bit position key built by
// MakeKey, loaded once from a "<variant>" directory's std_traps.sec2 file.
type DB struct {
	variant board.Variant
	entries map[uint64]record
}

// MakeKey builds the compact 64-bit map key exactly as
// original_source/src/perfect/perfect_trap_db.h's trap_make_key:
//
//	bits  0..23  whiteBits (24 bits)
//	bits 24..47  blackBits (24 bits)
//	bit     48   sideToMove (0=white, 1=black)
//	bits 49..53  whiteFree (WF, 0..31)
//	bits 54..58  blackFree (BF, 0..31)
func MakeKey(whiteBits, blackBits uint32, sideToMove, whiteFree, blackFree uint8) uint64 {
	var key uint64
	key |= uint64(whiteBits & board.Mask24)
	key |= uint64(blackBits&board.Mask24) << 24
	key |= uint64(sideToMove&1) << 48
	key |= uint64(whiteFree&31) << 49
	key |= uint64(blackFree&31) << 54
	return key
}

// Load reads dir/std_traps.sec2, returning an empty-but-valid *DB (has_trap_db
// reports false-equivalent via Len()==0) when the file is absent, since the
// trap DB is an optional accelerator and every caller must tolerate its
// absence per §4.9.
func Load(dir string, v board.Variant) (*DB, error) {
	db := &DB{variant: v, entries: make(map[uint64]record)}

	path := filepath.Join(dir, fileName)
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return db, nil
		}
		return nil, fmt.Errorf("trapdb: open %s: %w", path, err)
	}
	defer f.Close()

	r := bufio.NewReader(f)

	var gotMagic [8]byte
	if _, err := io.ReadFull(r, gotMagic[:]); err != nil {
		return nil, fmt.Errorf("trapdb: reading magic: %w", err)
	}
	if string(gotMagic[:]) != magic {
		return nil, fmt.Errorf("trapdb: %s: bad magic %q", path, gotMagic)
	}

	var count uint32
	if err := binary.Read(r, binary.LittleEndian, &count); err != nil {
		return nil, fmt.Errorf("trapdb: reading record count: %w", err)
	}

	for i := uint32(0); i < count; i++ {
		var raw [recDiskLen]byte
		if _, err := io.ReadFull(r, raw[:]); err != nil {
			return nil, fmt.Errorf("trapdb: reading record %d/%d: %w", i, count, err)
		}
		wBits := binary.LittleEndian.Uint32(raw[0:4])
		bBits := binary.LittleEndian.Uint32(raw[4:8])
		side := raw[8]
		wf := raw[9]
		bf := raw[10]
		mask := Mask(raw[11])

		var wdlByte [1]byte
		if _, err := io.ReadFull(r, wdlByte[:]); err != nil {
			return nil, fmt.Errorf("trapdb: reading wdl for record %d: %w", i, err)
		}
		wdl := int8(wdlByte[0])

		var stepsBuf [2]byte
		if _, err := io.ReadFull(r, stepsBuf[:]); err != nil {
			return nil, fmt.Errorf("trapdb: reading steps for record %d: %w", i, err)
		}
		steps := int16(binary.LittleEndian.Uint16(stepsBuf[:]))

		key := MakeKey(wBits, bBits, side, wf, bf)
		db.merge(key, mask, wdl, steps)
	}

	return db, nil
}

// merge applies the original's duplicate-key rule: OR the masks together,
// and keep whichever wdl/steps pair has the stronger (higher) wdl.
func (db *DB) merge(key uint64, mask Mask, wdl int8, steps int16) {
	existing, ok := db.entries[key]
	if !ok {
		db.entries[key] = record{mask: mask, wdl: wdl, steps: steps}
		return
	}
	existing.mask |= mask
	if wdl > existing.wdl {
		existing.wdl = wdl
		existing.steps = steps
	}
	db.entries[key] = existing
}

// Len reports how many distinct positions are loaded; 0 means the database
// was absent or empty (has_trap_db's negation).
func (db *DB) Len() int { return len(db.entries) }

// GetMask returns the trap bits recorded for key, or None if absent.
func (db *DB) GetMask(key uint64) Mask {
	return db.entries[key].mask
}

// GetWDL returns the recorded side-to-move outcome for key (-1/0/+1), or 0
// (treated as draw) if absent.
func (db *DB) GetWDL(key uint64) int8 {
	return db.entries[key].wdl
}

// GetSteps returns the recorded distance to that outcome, or -1 (unknown) if
// absent.
func (db *DB) GetSteps(key uint64) int16 {
	rec, ok := db.entries[key]
	if !ok {
		return -1
	}
	return rec.steps
}
