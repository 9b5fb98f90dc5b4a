// Package pdb implements the §4.8 PDB query API (C8): evaluating a game
// state against the perfect database and ranking its legal moves, grounded
// on the PerfectPlayer query surface in
// original_source/src/perfect/perfect_player.cpp.
package pdb

import (
	"math"
	"sync"

	"github.com/sanmill-go/morrispdb/internal/applog"
	"github.com/sanmill-go/morrispdb/internal/board"
	"github.com/sanmill-go/morrispdb/internal/game"
	"github.com/sanmill-go/morrispdb/internal/perfecterr"
	"github.com/sanmill-go/morrispdb/internal/sector"
)

// DB is the opened perfect database: the sector LRU, the per-variant rule
// tables, and the sector value table it needs to undo the per-sector
// viewpoint encoding (§4.6).
type DB struct {
	Dir     string
	Variant board.Variant
	Rules   *board.Rules

	secvals *sector.SecVals
	lru     *sector.LRU
	log     *applog.Logger

	evalLock sync.Mutex // serializes sector LRU access, §5
}

// Open loads a variant's .secval table and prepares its sector LRU (the
// sector files themselves are opened lazily on first query).
func Open(dir string, v board.Variant, extended bool, cacheCapacity int) (*DB, error) {
	sv, err := sector.LoadSecVals(dir, v)
	if err != nil {
		return nil, perfecterr.E(perfecterr.DatabaseNotFound, "loading .secval", err)
	}

	return &DB{
		Dir:     dir,
		Variant: v,
		Rules:   board.NewRules(v, extended),
		secvals: sv,
		lru:     sector.NewLRU(dir, v, cacheCapacity, nil),
		log:     applog.New("pdb"),
	}, nil
}

// Close releases every open sector file.
func (db *DB) Close() {
	db.lru.CloseAll()
}

// virtUniqueSecVal stands in for a mill-closing move's destination sector
// value so that the distance-to-result count is not reset across the
// removal, per §4.6's note on KLE sub-positions.
func (db *DB) virtUniqueSecVal() int {
	return int(db.secvals.VirtLossVal) - 1
}

// minValue is the sentinel that compares below every legal EvalElem (§4.6:
// "the minimum value in a sector's frame is the constant used as 'no move
// found yet'"), and is also what Evaluate returns for a state left in the
// KLE state, since the PDB defers removal selection to the caller (§4.8).
func minValue() sector.EvalElem {
	return sector.EvalElem{Key1: math.MinInt16, Key2: math.MinInt32}
}

// IsUndetermined reports whether elem is the minValue sentinel Evaluate
// returns for a KLE-pending state, letting callers outside this package
// (the façade, tooling) distinguish "no decision available yet" from a real
// evaluation without reaching into the sentinel's literal bit pattern.
func IsUndetermined(elem sector.EvalElem) bool {
	return elem == minValue()
}

// sectorIDOf converts a game.State's own-frame sector tuple into a
// sector.Id.
func sectorIDOf(s game.State) sector.Id {
	w, b, wf, bf := s.Sector()
	return sector.Id{W: w, B: b, WF: wf, BF: bf}
}

// Evaluate implements §4.8's evaluate(state): game-over and KLE states are
// handled without touching the database; otherwise the position is
// canonicalized to the side-to-move's frame, hashed into its sector, and
// the decoded record is returned as-is (already expressed from the
// mover's viewpoint, since the sector id itself is own/opponent framed).
func (db *DB) Evaluate(s game.State) (sector.EvalElem, error) {
	if s.GameOver() {
		return sector.EvalElem{Key1: db.secvals.VirtLossVal, Key2: 0}, nil
	}
	if s.KLE {
		return minValue(), nil
	}

	id := sectorIDOf(s)
	packed := s.CanonicalBoard().Packed48()

	db.evalLock.Lock()
	f, err := db.lru.Get(id)
	db.evalLock.Unlock()
	if err != nil {
		return sector.EvalElem{}, perfecterr.E(perfecterr.DatabaseNotFound, "opening sector "+id.String(), err)
	}

	db.evalLock.Lock()
	elem, err := f.Lookup(packed)
	db.evalLock.Unlock()
	if err != nil {
		return sector.EvalElem{}, perfecterr.E(perfecterr.OutOfRange, "sector lookup in "+id.String(), err)
	}

	return elem, nil
}
