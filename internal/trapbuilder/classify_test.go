package trapbuilder

import (
	"testing"

	"github.com/sanmill-go/morrispdb/internal/board"
	"github.com/sanmill-go/morrispdb/internal/game"
	"github.com/sanmill-go/morrispdb/internal/trapdb"
)

func TestCouldBeTrapRejectsSparsePositions(t *testing.T) {
	r := board.NewRules(board.Standard, false)
	bd := board.Board{White: board.SquareBit(0).Set(1), Black: board.SquareBit(8)}
	s := game.State{Board: bd, WF: 6, BF: 7, Phase: game.Placing}
	if couldBeTrap(r, bd, s) {
		t.Error("expected too few pieces to fail the pre-filter")
	}
}

func TestCouldBeTrapAcceptsMillThreat(t *testing.T) {
	r := board.NewRules(board.Standard, false)
	// Two white squares on the ring mill line (7,0,1) with 7 empty, plus
	// enough filler pieces to clear the piece-count floor.
	bd := board.Board{
		White: board.SquareBit(0).Set(1).Set(9).Set(10),
		Black: board.SquareBit(8).Set(16).Set(17),
	}
	s := game.State{Board: bd, WF: 3, BF: 3, Phase: game.Placing}
	if !couldBeTrap(r, bd, s) {
		t.Error("expected a 2-in-a-line-plus-empty position to pass the pre-filter")
	}
}

func TestCouldBeTrapRejectsNoThreat(t *testing.T) {
	r := board.NewRules(board.Standard, false)
	// Odd squares are ring corners: each lies on two ring lines and on no
	// spoke. Opposite corners of one ring (1 and 5, 9 and 13) share no line,
	// so no line carries two pieces of the same color.
	bd := board.Board{
		White: board.SquareBit(1).Set(5),
		Black: board.SquareBit(9).Set(13),
	}
	s := game.State{Board: bd, WF: 1, BF: 1, Phase: game.Placing}
	if couldBeTrap(r, bd, s) {
		t.Error("expected a position with no 2-in-a-line to fail the pre-filter")
	}
}

func TestDecomposeKeyInvertsMakeKeyComponents(t *testing.T) {
	key := trapdb.MakeKey(0x00F0F0, 0x0F0F00, 1, 5, 9)
	wBits, bBits, side, wf, bf := decomposeKey(key)
	if wBits != 0x00F0F0 || bBits != 0x0F0F00 {
		t.Errorf("got wBits=%#x bBits=%#x, want 0xF0F0/0xF0F00", wBits, bBits)
	}
	if side != 1 || wf != 5 || bf != 9 {
		t.Errorf("got side=%d wf=%d bf=%d, want 1/5/9", side, wf, bf)
	}
}
