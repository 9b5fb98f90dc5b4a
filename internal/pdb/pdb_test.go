package pdb

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/sanmill-go/morrispdb/internal/board"
	"github.com/sanmill-go/morrispdb/internal/game"
	"github.com/sanmill-go/morrispdb/internal/sector"
)

// The on-disk sector contract's fixed constants, mirrored here since an
// external package test can only exercise them through the real file
// format, matching internal/sector/file_test.go's fixture exactly.
const (
	headerSize      = 64
	evalStructSize  = 3
	expectedVersion = 2
)

// writeSecVals fabricates a minimal "<variant>.secval" file with a single
// row for id, valued at sval.
func writeSecVals(t *testing.T, dir string, v board.Variant, id sector.Id, sval int) {
	t.Helper()
	content := fmt.Sprintf("virt_loss_val: -100\nvirt_win_val: 100\n1\n%d %d %d %d %d\n",
		id.W, id.B, id.WF, id.BF, sval)
	path := filepath.Join(dir, v.String()+".secval")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing secval fixture: %v", err)
	}
}

// writeUniformSectorFile writes a well-formed .sec2 file for id where every
// record decodes to the same (key1, key2) Val pair, so the exact packed
// index any board hashes to never matters for the test.
func writeUniformSectorFile(t *testing.T, dir string, v board.Variant, id sector.Id, key1, key2 int32) {
	t.Helper()
	h, err := sector.NewHash(id.W, id.B)
	if err != nil {
		t.Fatalf("NewHash failed: %v", err)
	}

	path := filepath.Join(dir, id.FileName(v))
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create sector file: %v", err)
	}
	defer f.Close()

	const field2Offset = 10
	var header [headerSize]byte
	binary.LittleEndian.PutUint32(header[0:4], expectedVersion)
	binary.LittleEndian.PutUint32(header[4:8], evalStructSize)
	binary.LittleEndian.PutUint32(header[8:12], field2Offset)
	if _, err := f.Write(header[:]); err != nil {
		t.Fatalf("write header: %v", err)
	}

	field1Mask := uint32(1)<<field2Offset - 1
	packed := (uint32(key1) & field1Mask) | (uint32(key2) << field2Offset)
	var rec [3]byte
	rec[0] = byte(packed)
	rec[1] = byte(packed >> 8)
	rec[2] = byte(packed >> 16)
	for i := int64(0); i < h.HashCount; i++ {
		if _, err := f.Write(rec[:]); err != nil {
			t.Fatalf("write record %d: %v", i, err)
		}
	}

	var countBuf [4]byte // no exceptions
	if _, err := f.Write(countBuf[:]); err != nil {
		t.Fatalf("write exception count: %v", err)
	}
}

func TestEvaluateGameOverSkipsSectorLookup(t *testing.T) {
	dir := t.TempDir()
	writeSecVals(t, dir, board.Standard, sector.Id{W: 3, B: 3, WF: 0, BF: 0}, 0)

	db, err := Open(dir, board.Standard, false, 8)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer db.Close()

	s := game.State{
		Board:      board.Board{White: board.SquareBit(0)},
		Phase:      game.Moving,
		SideToMove: 0,
	}
	elem, err := db.Evaluate(s)
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if elem.Key1 != db.secvals.VirtLossVal || elem.Key2 != 0 {
		t.Errorf("got %+v, want the virtual loss sentinel", elem)
	}
}

func TestEvaluateKLEReturnsUndetermined(t *testing.T) {
	dir := t.TempDir()
	writeSecVals(t, dir, board.Standard, sector.Id{W: 3, B: 3, WF: 0, BF: 0}, 0)

	db, err := Open(dir, board.Standard, false, 8)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer db.Close()

	s := game.State{Phase: game.Moving, KLE: true}
	elem, err := db.Evaluate(s)
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if !IsUndetermined(elem) {
		t.Errorf("expected a KLE-pending state to be undetermined, got %+v", elem)
	}
}

func TestEvaluateLooksUpSectorRecord(t *testing.T) {
	dir := t.TempDir()
	id := sector.Id{W: 3, B: 3, WF: 0, BF: 0}
	writeSecVals(t, dir, board.Standard, id, 0)
	writeUniformSectorFile(t, dir, board.Standard, id, 5, 7)

	db, err := Open(dir, board.Standard, false, 8)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer db.Close()

	s := game.State{
		Board: board.Board{
			White: board.SquareBit(0) | board.SquareBit(1) | board.SquareBit(2),
			Black: board.SquareBit(3) | board.SquareBit(4) | board.SquareBit(5),
		},
		Phase:      game.Moving,
		SideToMove: 0,
	}
	elem, err := db.Evaluate(s)
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if elem.Key1 != 5 || elem.Key2 != 7 {
		t.Errorf("got %+v, want {5 7}", elem)
	}
	if elem.WDLChar() != 'W' {
		t.Errorf("expected a positive Key1 to read as a win, got %c", elem.WDLChar())
	}
}

func TestRankMovesUndoesNegationForASingleCandidate(t *testing.T) {
	dir := t.TempDir()
	id := sector.Id{W: 3, B: 3, WF: 0, BF: 0}
	writeSecVals(t, dir, board.Standard, id, 0)
	writeUniformSectorFile(t, dir, board.Standard, id, 5, 7)

	db, err := Open(dir, board.Standard, false, 8)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer db.Close()

	s := game.State{
		Board: board.Board{
			White: board.SquareBit(0) | board.SquareBit(1) | board.SquareBit(2),
			Black: board.SquareBit(3) | board.SquareBit(4) | board.SquareBit(5),
		},
		Phase:      game.Moving,
		SideToMove: 0,
	}
	// A plain slide that stays within the same (3,3,0,0) sector and closes
	// no mill, so moveValue never needs a second sector file.
	move := game.AdvancedMove{Kind: game.SlideOrJump, From: 0, To: 6, TakeSquare: -1}

	ranked, err := db.RankMoves(s, []game.AdvancedMove{move}, PolicyLexicographic)
	if err != nil {
		t.Fatalf("RankMoves failed: %v", err)
	}
	if len(ranked) != 1 {
		t.Fatalf("expected exactly one ranked move, got %d", len(ranked))
	}
	// Corr(0+0) keeps (5,7); NegateKey1 flips to (-5,7); the non-KLE
	// increment advances the distance to 8.
	got := ranked[0].Value
	if got.Key1 != -5 || got.Key2 != 8 {
		t.Errorf("got %+v, want {-5 8}", got)
	}
	if got.WDLChar() != 'L' {
		t.Errorf("expected the undone-negation value to read as a loss from the mover's view, got %c", got.WDLChar())
	}
}

func TestChoosePrefersRefMoveWhenPresent(t *testing.T) {
	a := game.AdvancedMove{Kind: game.Place, To: 1}
	b := game.AdvancedMove{Kind: game.Place, To: 2}
	moves := []RankedMove{{Move: a}, {Move: b}}

	got := Choose(moves, &b, false)
	if got != b {
		t.Errorf("expected refMove %+v to be chosen, got %+v", b, got)
	}
}

func TestChooseFallsBackToFirstWithoutShuffle(t *testing.T) {
	a := game.AdvancedMove{Kind: game.Place, To: 1}
	b := game.AdvancedMove{Kind: game.Place, To: 2}
	moves := []RankedMove{{Move: a}, {Move: b}}

	got := Choose(moves, nil, false)
	if got != a {
		t.Errorf("expected the first move without shuffling, got %+v", got)
	}
}
