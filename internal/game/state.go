// Package game implements spec component C7: the full game state (board,
// pieces-in-hand, side to move, phase, mill-pending flag) and the legal
// move enumerator/applier it exposes to the PDB query layer. Grounded on
// GameState in original_source/src/perfect/perfect_game_state.h, expressed
// as an immutable value the way the teacher's internal/board.Position is
// threaded through make/unmake in its move generator.
package game

import "github.com/sanmill-go/morrispdb/internal/board"

// Phase distinguishes the placing and moving phases of §3.
type Phase int

const (
	Placing Phase = 1
	Moving  Phase = 2
)

// State is the full game position of §3: the board bitboard, pieces
// remaining to place for each side, whose turn it is, whether a mill has
// just closed leaving a removal pending (KLE), and the phase.
type State struct {
	Board      board.Board
	WF, BF     int // pieces left to place, white/black
	SideToMove int // 0 = white, 1 = black
	KLE        bool
	Phase      Phase
}

// NewInitialState returns the starting position for variant v: empty
// board, both sides' full piece budget to place, white to move, placing
// phase. Lasker's "may place or move from turn one" rule is a move
// enumeration concern (§4.7), not a state-shape concern, so the initial
// state looks the same across variants.
func NewInitialState(v board.Variant, extended bool) State {
	max := v.MaxPieces(extended)
	return State{WF: max, BF: max, Phase: Placing}
}

// own and opp return the piece count and in-hand count for the side to
// move / the other side, the small bookkeeping original_source repeats at
// every call site of GameState's methods.
func (s State) own() (onBoard, inHand int) {
	return s.Board.Occ(s.SideToMove).PopCount(), s.ownInHand()
}

func (s State) ownInHand() int {
	if s.SideToMove == 0 {
		return s.WF
	}
	return s.BF
}

func (s State) oppInHand() int {
	if s.SideToMove == 0 {
		return s.BF
	}
	return s.WF
}

// GameOver reports whether the side to move has already lost by piece
// count, per §4.1's game-over predicate ("fewer than 3 own pieces after
// placing finishes"). The moving side loses, never the non-moving side,
// since a legal position is never reached with the opponent already below
// 3 (removal applies immediately when a mill closes).
func (s State) GameOver() bool {
	onBoard, inHand := s.own()
	return s.Phase == Moving && onBoard+inHand < 3
}

// Sector returns the sector id viewing the position from the side to
// move's own frame: (own on board, opp on board, own in hand, opp in
// hand), matching the §3 sector id semantics ("side-to-move implied by
// ownership of the id").
func (s State) Sector() (w, b, wf, bf int) {
	opp := 1 - s.SideToMove
	return s.Board.Occ(s.SideToMove).PopCount(), s.Board.Occ(opp).PopCount(), s.ownInHand(), s.oppInHand()
}

// CanonicalBoard returns the board packed into the white-to-move frame
// expected by the sector hash (§4.8: "canonicalize to white-to-move frame
// by negating if side-to-move is black").
func (s State) CanonicalBoard() board.Board {
	if s.SideToMove == 0 {
		return s.Board
	}
	return s.Board.Negate()
}
