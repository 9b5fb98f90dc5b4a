package trapbuilder

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"

	"github.com/sanmill-go/morrispdb/internal/trapdb"
)

// snapshotMagic tags a zstd-compressed intra-sweep snapshot, distinct from
// trapdb's on-disk "TRAPDB2\0" format: a snapshot additionally needs to
// survive partial-sector state, which the final output format has no
// reason to carry.
const snapshotMagic = "TRAPSNAP1"

// WriteSnapshot atomically persists result's accumulated records to
// dir/name.zst (temp file + rename, grounded on CheckpointWriter::write_snapshot),
// compressed with zstd per SPEC_FULL.md's domain-stack wiring for
// klauspost/compress — a mid-sweep recovery point distinct from the
// per-sector store.BuilderCheckpoint bookkeeping, since a crash mid-sector
// would otherwise lose every trap found in that sector's partial sweep.
func WriteSnapshot(dir, name string, result *Result) error {
	path := filepath.Join(dir, name+".zst")
	tmpPath := path + ".tmp"

	f, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("trapbuilder: creating snapshot temp file: %w", err)
	}

	enc, err := zstd.NewWriter(f)
	if err != nil {
		f.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("trapbuilder: creating zstd encoder: %w", err)
	}

	if _, err := enc.Write([]byte(snapshotMagic)); err != nil {
		enc.Close()
		f.Close()
		os.Remove(tmpPath)
		return err
	}
	var countBuf [4]byte
	binary.LittleEndian.PutUint32(countBuf[:], uint32(len(result.Traps)))
	if _, err := enc.Write(countBuf[:]); err != nil {
		enc.Close()
		f.Close()
		os.Remove(tmpPath)
		return err
	}
	for _, t := range result.Traps {
		var rec [12]byte
		binary.LittleEndian.PutUint64(rec[0:8], t.key)
		rec[8] = byte(t.mask)
		rec[9] = byte(t.wdl)
		binary.LittleEndian.PutUint16(rec[10:12], uint16(t.steps))
		if _, err := enc.Write(rec[:]); err != nil {
			enc.Close()
			f.Close()
			os.Remove(tmpPath)
			return err
		}
	}

	if err := enc.Close(); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}

	os.Remove(path) // ignore if missing, matches fs::remove(dst, ec) best-effort
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("trapbuilder: renaming snapshot into place: %w", err)
	}
	return nil
}

// WriteFile serializes result into the Trap DB's final on-disk format (the
// same magic/layout trapdb.Load expects), via a temp file and atomic
// rename.
func WriteFile(dir string, result *Result) error {
	path := filepath.Join(dir, "std_traps.sec2")
	tmpPath := path + ".tmp"

	f, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("trapbuilder: creating output temp file: %w", err)
	}

	if _, err := f.WriteString("TRAPDB2\x00"); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return err
	}
	var countBuf [4]byte
	binary.LittleEndian.PutUint32(countBuf[:], uint32(len(result.Traps)))
	if _, err := f.Write(countBuf[:]); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return err
	}

	for _, t := range result.Traps {
		wBits, bBits, side, wf, bf := decomposeKey(t.key)

		var rec [12]byte
		binary.LittleEndian.PutUint32(rec[0:4], wBits)
		binary.LittleEndian.PutUint32(rec[4:8], bBits)
		rec[8] = side
		rec[9] = wf
		rec[10] = bf
		rec[11] = byte(t.mask)
		if _, err := f.Write(rec[:]); err != nil {
			f.Close()
			os.Remove(tmpPath)
			return err
		}

		if _, err := f.Write([]byte{byte(t.wdl)}); err != nil {
			f.Close()
			os.Remove(tmpPath)
			return err
		}
		var stepsBuf [2]byte
		binary.LittleEndian.PutUint16(stepsBuf[:], uint16(t.steps))
		if _, err := f.Write(stepsBuf[:]); err != nil {
			f.Close()
			os.Remove(tmpPath)
			return err
		}
	}

	if err := f.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}

	os.Remove(path)
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("trapbuilder: renaming output into place: %w", err)
	}
	return nil
}

// LoadSnapshot reads back a snapshot written by WriteSnapshot, returning
// (nil, nil) if the file does not exist yet (a fresh build has nothing to
// resume from).
func LoadSnapshot(dir, name string) (map[uint64]foundTrap, error) {
	path := filepath.Join(dir, name+".zst")
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("trapbuilder: opening snapshot: %w", err)
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("trapbuilder: creating zstd decoder: %w", err)
	}
	defer dec.Close()

	var gotMagic [9]byte
	if _, err := io.ReadFull(dec, gotMagic[:]); err != nil {
		return nil, fmt.Errorf("trapbuilder: reading snapshot magic: %w", err)
	}
	if string(gotMagic[:]) != snapshotMagic {
		return nil, fmt.Errorf("trapbuilder: snapshot %s: bad magic %q", path, gotMagic)
	}

	var countBuf [4]byte
	if _, err := io.ReadFull(dec, countBuf[:]); err != nil {
		return nil, fmt.Errorf("trapbuilder: reading snapshot record count: %w", err)
	}
	count := binary.LittleEndian.Uint32(countBuf[:])

	out := make(map[uint64]foundTrap, count)
	for i := uint32(0); i < count; i++ {
		var rec [12]byte
		if _, err := io.ReadFull(dec, rec[:]); err != nil {
			return nil, fmt.Errorf("trapbuilder: reading snapshot record %d/%d: %w", i, count, err)
		}
		key := binary.LittleEndian.Uint64(rec[0:8])
		out[key] = foundTrap{
			key:   key,
			mask:  trapdb.Mask(rec[8]),
			wdl:   int8(rec[9]),
			steps: int16(binary.LittleEndian.Uint16(rec[10:12])),
		}
	}
	return out, nil
}

// decomposeKey is the inverse of trapdb.MakeKey, needed to recover the disk
// record's discrete fields from the merged map's 64-bit key.
func decomposeKey(key uint64) (wBits, bBits uint32, side, wf, bf uint8) {
	wBits = uint32(key & 0xFFFFFF)
	bBits = uint32((key >> 24) & 0xFFFFFF)
	side = uint8((key >> 48) & 1)
	wf = uint8((key >> 49) & 31)
	bf = uint8((key >> 54) & 31)
	return
}
