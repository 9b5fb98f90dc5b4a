package game

import (
	"testing"

	"github.com/sanmill-go/morrispdb/internal/board"
)

func TestInitialPlacingMoves(t *testing.T) {
	r := board.NewRules(board.Standard, false)
	s := NewInitialState(board.Standard, false)

	moves := LegalMoves(r, s)
	if len(moves) != board.NumSquares {
		t.Fatalf("expected %d placements on an empty board, got %d", board.NumSquares, len(moves))
	}
	for _, m := range moves {
		if m.Kind != Place || m.WithTaking {
			t.Fatalf("unexpected move shape on empty board: %+v", m)
		}
	}
}

func TestPlaceClosingMillExpandsToRemovals(t *testing.T) {
	r := board.NewRules(board.Standard, false)
	s := NewInitialState(board.Standard, false)

	// White already holds two of the three squares on mill line {1,2,3};
	// Black holds one piece elsewhere so removal has a target.
	s.Board.White = s.Board.White.Set(1).Set(2)
	s.Board.Black = s.Board.Black.Set(10)
	s.WF -= 2
	s.BF -= 1

	moves := LegalMoves(r, s)
	found := false
	for _, m := range moves {
		if m.Kind == Place && m.To == 3 {
			found = true
			if !m.WithTaking || m.TakeSquare != 10 {
				t.Fatalf("expected placing at 3 to close the mill and take square 10, got %+v", m)
			}
		}
	}
	if !found {
		t.Fatal("expected a placement move at square 3")
	}
}

func TestApplyPlaceTogglesSideAndDecrementsWF(t *testing.T) {
	r := board.NewRules(board.Standard, false)
	s := NewInitialState(board.Standard, false)

	m := AdvancedMove{Kind: Place, From: -1, To: 5, TakeSquare: -1}
	ns := Apply(r, s, m)

	if ns.SideToMove != 1 {
		t.Errorf("expected side to move to flip to black, got %d", ns.SideToMove)
	}
	if ns.WF != s.WF-1 {
		t.Errorf("expected WF to decrement, got %d", ns.WF)
	}
	if !ns.Board.White.IsSet(5) {
		t.Error("expected square 5 to be occupied by white")
	}
}

func TestApplyWithTakingRemovesOpponentPiece(t *testing.T) {
	r := board.NewRules(board.Standard, false)
	s := NewInitialState(board.Standard, false)
	s.Board.White = s.Board.White.Set(1).Set(2)
	s.Board.Black = s.Board.Black.Set(10)
	s.WF -= 2

	m := AdvancedMove{Kind: Place, From: -1, To: 3, WithTaking: true, TakeSquare: 10}
	ns := Apply(r, s, m)

	if ns.Board.Black.IsSet(10) {
		t.Error("expected black piece at 10 to be removed")
	}
	if ns.KLE {
		t.Error("a combined move must never leave the result in KLE")
	}
}

func TestKLEEnumerationHonorsAllInMillException(t *testing.T) {
	r := board.NewRules(board.Standard, false)
	s := NewInitialState(board.Standard, false)
	s.KLE = true
	s.SideToMove = 0
	// Black's only pieces are on a closed mill line: every one is removable.
	s.Board.Black = s.Board.Black.Set(1).Set(2).Set(3)
	s.Board.White = s.Board.White.Set(0)

	moves := LegalMoves(r, s)
	if len(moves) != 3 {
		t.Fatalf("expected all 3 in-mill black pieces to be removable, got %d", len(moves))
	}
	for _, m := range moves {
		if !m.OnlyTaking {
			t.Fatalf("expected OnlyTaking moves during KLE, got %+v", m)
		}
	}
}

func TestApplyOnlyTakingClearsKLE(t *testing.T) {
	r := board.NewRules(board.Standard, false)
	s := NewInitialState(board.Standard, false)
	s.KLE = true
	s.Board.Black = s.Board.Black.Set(10)

	ns := Apply(r, s, AdvancedMove{OnlyTaking: true, From: -1, To: -1, TakeSquare: 10})
	if ns.KLE {
		t.Error("expected KLE to clear after the removal move")
	}
	if ns.Board.Black.IsSet(10) {
		t.Error("expected the taken piece to be removed")
	}
	if ns.SideToMove != 1 {
		t.Errorf("expected side to move to flip after completing the KLE removal, got %d", ns.SideToMove)
	}
}

func TestMovingPhaseFlyingWithThreeStones(t *testing.T) {
	r := board.NewRules(board.Standard, false)
	s := State{Phase: Moving, SideToMove: 0}
	s.Board.White = s.Board.White.Set(0).Set(1).Set(2)
	s.Board.Black = s.Board.Black.Set(8).Set(9).Set(16)

	moves := LegalMoves(r, s)
	// 3 sources * (24 - 6 occupied) destinations, plus the extra entries a
	// mill-closing move fans out into (one per removable black piece).
	if len(moves) == 0 {
		t.Fatal("expected flying moves to any empty square with exactly 3 stones")
	}
	for _, m := range moves {
		if m.Kind != SlideOrJump {
			t.Fatalf("expected SlideOrJump moves in moving phase, got %+v", m)
		}
	}
}
