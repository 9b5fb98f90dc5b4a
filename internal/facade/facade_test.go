package facade

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/sanmill-go/morrispdb/internal/board"
	"github.com/sanmill-go/morrispdb/internal/game"
	"github.com/sanmill-go/morrispdb/internal/pdb"
	"github.com/sanmill-go/morrispdb/internal/perfecterr"
)

// writeSecVals fabricates a minimal "<variant>.secval" file with no sector
// rows, enough to open a pdb.DB without needing any real sector file.
func writeSecVals(t *testing.T, dir string, v board.Variant) {
	t.Helper()
	content := "virt_loss_val: -100\nvirt_win_val: 100\n0\n"
	path := filepath.Join(dir, v.String()+".secval")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing secval fixture: %v", err)
	}
}

func TestMoveTokenPlace(t *testing.T) {
	m := game.AdvancedMove{Kind: game.Place, From: -1, To: 0, TakeSquare: -1}
	tok, err := moveToken(m)
	if err != nil {
		t.Fatalf("moveToken failed: %v", err)
	}
	if tok != "a4" {
		t.Errorf("got %q, want %q", tok, "a4")
	}
}

func TestMoveTokenSlide(t *testing.T) {
	m := game.AdvancedMove{Kind: game.SlideOrJump, From: 0, To: 1, TakeSquare: -1}
	tok, err := moveToken(m)
	if err != nil {
		t.Fatalf("moveToken failed: %v", err)
	}
	if tok != "a4-a7" {
		t.Errorf("got %q, want %q", tok, "a4-a7")
	}
}

func TestMoveTokenRemoval(t *testing.T) {
	m := game.AdvancedMove{OnlyTaking: true, From: -1, To: -1, TakeSquare: 2}
	tok, err := moveToken(m)
	if err != nil {
		t.Fatalf("moveToken failed: %v", err)
	}
	if tok != "xd7" {
		t.Errorf("got %q, want %q", tok, "xd7")
	}
}

func TestStateFromInfersMovingPhaseWhenNothingLeftToPlace(t *testing.T) {
	s := stateFrom(1, 2, 0, 0, 0, false)
	if s.Phase != game.Moving {
		t.Errorf("expected Moving phase when WF==BF==0, got %v", s.Phase)
	}
}

func TestStateFromInfersPlacingPhaseOtherwise(t *testing.T) {
	s := stateFrom(1, 2, 3, 4, 1, false)
	if s.Phase != game.Placing {
		t.Errorf("expected Placing phase when pieces remain, got %v", s.Phase)
	}
	if s.SideToMove != 1 {
		t.Errorf("expected side to move 1, got %d", s.SideToMove)
	}
}

// TestEvaluateClearsLastErrorOnSuccess exercises §7's "cleared on every new
// query" requirement: a stale last error left over from some earlier,
// unrelated failure must not survive a successful Evaluate call.
func TestEvaluateClearsLastErrorOnSuccess(t *testing.T) {
	dir := t.TempDir()
	writeSecVals(t, dir, board.Standard)

	db, err := pdb.Open(dir, board.Standard, false, 8)
	if err != nil {
		t.Fatalf("pdb.Open failed: %v", err)
	}
	defer db.Close()

	e := &Engine{DB: db, Variant: board.Standard}
	perfecterr.SetLast(errors.New("stale error from an earlier query"))

	// A lone white piece with nothing left to place is already game over,
	// so this never needs a real sector file.
	if _, _, _, err := e.Evaluate(1, 0, 0, 0, 0, false); err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if got := e.LastError(); got != nil {
		t.Errorf("expected LastError cleared after a successful query, got %v", got)
	}
}

// TestEvaluateRecordsLastErrorOnFailure exercises the other half: a failing
// query must leave its own error behind for LastError to report.
func TestEvaluateRecordsLastErrorOnFailure(t *testing.T) {
	dir := t.TempDir()
	writeSecVals(t, dir, board.Standard)

	db, err := pdb.Open(dir, board.Standard, false, 8)
	if err != nil {
		t.Fatalf("pdb.Open failed: %v", err)
	}
	defer db.Close()

	e := &Engine{DB: db, Variant: board.Standard}
	perfecterr.SetLast(nil)

	// Three pieces a side, still mid-game, but no .sec2 file for that
	// sector exists in the fixture directory: the sector lookup must fail.
	w := uint32(board.SquareBit(0) | board.SquareBit(1) | board.SquareBit(2))
	b := uint32(board.SquareBit(3) | board.SquareBit(4) | board.SquareBit(5))
	if _, _, _, err := e.Evaluate(w, b, 0, 0, 0, false); err == nil {
		t.Fatal("expected an error for a missing sector file")
	}

	got := e.LastError()
	if got == nil {
		t.Fatal("expected LastError to record the failed query's error")
	}
	if kind, ok := perfecterr.KindOf(got); !ok || kind != perfecterr.DatabaseNotFound {
		t.Errorf("expected a DatabaseNotFound last error, got %v", got)
	}
}

// TestInitRecordsLastErrorOnFailure covers the same clear/record contract
// for Init, whose failure path (no sector files present) never reaches
// pdb.Open at all.
func TestInitRecordsLastErrorOnFailure(t *testing.T) {
	dir := t.TempDir()
	perfecterr.SetLast(nil)

	if _, err := Init(dir, board.Standard, false, 8); err == nil {
		t.Fatal("expected Init to fail against an empty directory")
	}
	if got := perfecterr.LastError(); got == nil {
		t.Error("expected Init's failure recorded as the last error")
	}
}
