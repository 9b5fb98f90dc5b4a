// Package facade implements §4.12's public engine façade (C12): the
// language-neutral init/deinit/evaluate/best_move/sector-streaming surface
// a host (GUI, training pipeline, CLI) drives the PDB through, grounded on
// the C-ABI entry points in original_source/src/perfect/perfect_api.cpp.
package facade

import (
	"fmt"
	"os"
	"strings"

	"github.com/sanmill-go/morrispdb/internal/board"
	"github.com/sanmill-go/morrispdb/internal/game"
	"github.com/sanmill-go/morrispdb/internal/pdb"
	"github.com/sanmill-go/morrispdb/internal/perfecterr"
	"github.com/sanmill-go/morrispdb/internal/picker"
	"github.com/sanmill-go/morrispdb/internal/sector"
	"github.com/sanmill-go/morrispdb/internal/trapdb"
)

// Engine is the open façade session: an opened PDB plus whatever Trap DB
// Init found alongside it.
type Engine struct {
	DB      *pdb.DB
	TrapDB  *trapdb.DB
	Variant board.Variant
	Picker  *picker.Picker

	// MinFreeBytes, when non-zero, is the minimum free space OpenSector
	// requires on the sector files' volume before starting a streaming
	// export (0 disables the check).
	MinFreeBytes uint64
}

// Init implements init(dbPath): loads the variant's .secval table and
// prepares the sector LRU, additionally loading the Trap DB if present.
// Per §4.12, success requires at least one sector file to exist in dbPath;
// since C8's Open only validates the .secval table, Init additionally globs
// for sector files before declaring success.
func Init(dbPath string, v board.Variant, extended bool, cacheCapacity int) (*Engine, error) {
	perfecterr.SetLast(nil)

	if !hasAnySectorFile(dbPath, v) {
		err := fmt.Errorf("facade: no sector files found in %s for variant %s", dbPath, v)
		perfecterr.SetLast(err)
		return nil, err
	}

	db, err := pdb.Open(dbPath, v, extended, cacheCapacity)
	if err != nil {
		perfecterr.SetLast(err)
		return nil, err
	}

	tdb, err := trapdb.Load(dbPath, v)
	if err != nil {
		db.Close()
		perfecterr.SetLast(err)
		return nil, err
	}

	return &Engine{
		DB:      db,
		TrapDB:  tdb,
		Variant: v,
		Picker: &picker.Picker{
			Rules:  db.Rules,
			DB:     db,
			TrapDB: tdb,
			Policy: pdb.PolicyLexicographic,
		},
	}, nil
}

// LastError returns the calling goroutine's most recent Init/Evaluate/
// BestMove failure, cleared at the start of each such call (§7) — the
// C-ABI-style accessor for hosts that cannot receive a Go error return
// directly, mirroring the original's PerfectErrors::getLastErrorMessage.
func (e *Engine) LastError() error {
	return perfecterr.LastError()
}

// Deinit implements deinit(): releases every open sector file.
func (e *Engine) Deinit() {
	e.DB.Close()
}

// stateFrom builds a game.State from the façade's wire representation: raw
// 24-bit occupancy bitboards plus the WF/BF/side/onlyStoneTaking fields
// §4.12 passes across the boundary.
func stateFrom(wBits, bBits uint32, wf, bf, side int, onlyStoneTaking bool) game.State {
	bd := board.Board{White: board.Bits(wBits), Black: board.Bits(bBits)}
	phase := game.Placing
	if wf == 0 && bf == 0 {
		phase = game.Moving
	}
	return game.State{
		Board:      bd,
		WF:         wf,
		BF:         bf,
		SideToMove: side,
		KLE:        onlyStoneTaking,
		Phase:      phase,
	}
}

// Evaluate implements evaluate(...): a direct WDL/steps query used by
// tooling, with "absent" signaled by a nil error and ok=false rather than
// a sentinel value, the idiomatic Go replacement for the original's
// out-of-band "absent" return.
func (e *Engine) Evaluate(wBits, bBits uint32, wf, bf, side int, onlyStoneTaking bool) (wdl int, steps int, ok bool, err error) {
	perfecterr.SetLast(nil)
	defer func() { perfecterr.SetLast(err) }()

	s := stateFrom(wBits, bBits, wf, bf, side, onlyStoneTaking)
	elem, err := e.DB.Evaluate(s)
	if err != nil {
		return 0, 0, false, err
	}
	if pdb.IsUndetermined(elem) {
		return 0, 0, false, nil // no decision available yet (mid-KLE)
	}

	switch elem.WDLChar() {
	case 'W':
		wdl = 1
	case 'L':
		wdl = -1
	default:
		wdl = 0
	}
	return wdl, int(elem.Key2), true, nil
}

// BestMove implements best_move(...): picks a move via the trap-aware
// picker and renders it as a §6 token — "a4" for a placement, "a1-a4" for a
// slide/jump, "xg7" for a removal.
func (e *Engine) BestMove(wBits, bBits uint32, wf, bf, side int, onlyStoneTaking bool) (tok string, err error) {
	perfecterr.SetLast(nil)
	defer func() { perfecterr.SetLast(err) }()

	s := stateFrom(wBits, bBits, wf, bf, side, onlyStoneTaking)
	m, err := e.Picker.Pick(s, nil)
	if err != nil {
		return "", err
	}
	tok, err = moveToken(m)
	return tok, err
}

func moveToken(m game.AdvancedMove) (string, error) {
	if m.OnlyTaking {
		tok, err := board.SquareToken(m.TakeSquare)
		if err != nil {
			return "", err
		}
		return "x" + tok, nil
	}
	if m.Kind == game.Place {
		return board.SquareToken(m.To)
	}
	from, err := board.SquareToken(m.From)
	if err != nil {
		return "", err
	}
	to, err := board.SquareToken(m.To)
	if err != nil {
		return "", err
	}
	return from + "-" + to, nil
}

// SectorHandle is an open streaming cursor over one sector file's records,
// for open_sector/sector_next/close_sector's training-data export path.
type SectorHandle struct {
	file *sector.File
	hash *sector.Hash
	next int64
}

// OpenSector implements open_sector(W, B, WF, BF).
func (e *Engine) OpenSector(id sector.Id) (*SectorHandle, error) {
	if err := checkFreeSpace(e.DB.Dir, e.MinFreeBytes); err != nil {
		return nil, err
	}

	h, err := sector.NewHash(id.W, id.B)
	if err != nil {
		return nil, err
	}
	f, err := sector.Open(e.DB.Dir, e.Variant, id)
	if err != nil {
		return nil, err
	}
	return &SectorHandle{file: f, hash: h}, nil
}

// SectorCount implements sector_count(handle): the total number of records
// the handle will stream.
func (h *SectorHandle) SectorCount() int64 { return h.hash.HashCount }

// SectorRecord is one streamed training-data tuple.
type SectorRecord struct {
	WBits, BBits uint32
	WDL          int
	Steps        int
}

// SectorNext implements sector_next(handle): the next record, or ok=false
// at end of iteration.
func (h *SectorHandle) SectorNext() (rec SectorRecord, ok bool, err error) {
	if h.next >= h.hash.HashCount {
		return SectorRecord{}, false, nil
	}
	packed, err := h.hash.InverseIndex(h.next)
	if err != nil {
		return SectorRecord{}, false, err
	}
	h.next++

	elem, err := h.file.Lookup(packed)
	if err != nil {
		return SectorRecord{}, false, err
	}
	bd := board.FromPacked48(packed)

	wdl := 0
	switch elem.WDLChar() {
	case 'W':
		wdl = 1
	case 'L':
		wdl = -1
	}
	return SectorRecord{
		WBits: uint32(bd.White),
		BBits: uint32(bd.Black),
		WDL:   wdl,
		Steps: int(elem.Key2),
	}, true, nil
}

// CloseSector implements close_sector(handle).
func (h *SectorHandle) CloseSector() error {
	return h.file.Close()
}

func hasAnySectorFile(dbPath string, v board.Variant) bool {
	entries, err := os.ReadDir(dbPath)
	if err != nil {
		return false
	}
	prefix := v.String() + "_"
	for _, entry := range entries {
		if strings.HasPrefix(entry.Name(), prefix) && strings.HasSuffix(entry.Name(), ".sec2") {
			return true
		}
	}
	return false
}
