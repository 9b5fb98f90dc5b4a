package game

import "github.com/sanmill-go/morrispdb/internal/board"

// Kind distinguishes the two ways a piece reaches its destination.
type Kind int

const (
	Place Kind = iota
	SlideOrJump
)

// AdvancedMove is the §4.7 move representation. A mill-closing place or
// slide is never returned on its own: it is expanded into one
// AdvancedMove per legal takeSquare, each already carrying the removal, so
// that one AdvancedMove always corresponds to one complete logical turn.
// OnlyTaking is set for the secondary removal-only move used to complete a
// position that was left in the KLE state (§4.8's "let the caller handle
// removal selection").
type AdvancedMove struct {
	Kind       Kind
	From       int // source square; -1 for Place and OnlyTaking
	To         int // destination square; -1 for OnlyTaking
	WithTaking bool
	OnlyTaking bool
	TakeSquare int // -1 if no removal
}

// LegalMoves enumerates every legal AdvancedMove from s, grounded on
// §4.7's four cases (placing, moving, KLE, mill closure).
func LegalMoves(r *board.Rules, s State) []AdvancedMove {
	if s.KLE {
		return kleMoves(r, s)
	}
	if s.Phase == Placing {
		return placingMoves(r, s)
	}
	return movingMoves(r, s)
}

func placingMoves(r *board.Rules, s State) []AdvancedMove {
	occAll := s.Board.White | s.Board.Black
	var moves []AdvancedMove
	for sq := 0; sq < board.NumSquares; sq++ {
		if occAll.IsSet(sq) {
			continue
		}
		nb := applyPlace(s.Board, s.SideToMove, sq)
		base := AdvancedMove{Kind: Place, From: -1, To: sq, TakeSquare: -1}
		moves = append(moves, expand(r, nb, s.SideToMove, base)...)
	}
	if r.Variant == board.Lasker {
		moves = append(moves, movingMoves(r, s)...)
	}
	return moves
}

func movingMoves(r *board.Rules, s State) []AdvancedMove {
	var moves []AdvancedMove
	s.Board.Occ(s.SideToMove).ForEach(func(from int) {
		for _, to := range slideDestinations(r, s.Board, from) {
			nb := applyMove(s.Board, s.SideToMove, from, to)
			base := AdvancedMove{Kind: SlideOrJump, From: from, To: to, TakeSquare: -1}
			moves = append(moves, expand(r, nb, s.SideToMove, base)...)
		}
	})
	return moves
}

func kleMoves(r *board.Rules, s State) []AdvancedMove {
	squares := removableSquares(r, s.Board, 1-s.SideToMove)
	moves := make([]AdvancedMove, 0, len(squares))
	for _, sq := range squares {
		moves = append(moves, AdvancedMove{From: -1, To: -1, OnlyTaking: true, TakeSquare: sq})
	}
	return moves
}

// slideDestinations lists legal destinations for the piece at from: only
// adjacent empty squares with more than 3 stones, any empty square ("flying")
// with exactly 3.
func slideDestinations(r *board.Rules, bd board.Board, from int) []int {
	side := bd.PieceAt(from)
	if bd.Occ(side).PopCount() > 3 {
		var dests []int
		for _, nb := range r.AdjList[from] {
			if bd.PieceAt(nb) < 0 {
				dests = append(dests, nb)
			}
		}
		return dests
	}
	var dests []int
	for sq := 0; sq < board.NumSquares; sq++ {
		if bd.PieceAt(sq) < 0 {
			dests = append(dests, sq)
		}
	}
	return dests
}

// removableSquares applies §4.1's Remove predicate: if any opponent piece
// sits outside a mill, only those are removable; otherwise every opponent
// piece is (the "all in mill" exception).
func removableSquares(r *board.Rules, bd board.Board, opp int) []int {
	var outOfMill []int
	bd.Occ(opp).ForEach(func(sq int) {
		if r.CheckMill(bd, sq) == -1 {
			outOfMill = append(outOfMill, sq)
		}
	})
	if len(outOfMill) > 0 {
		return outOfMill
	}
	return bd.Occ(opp).Squares()
}

// expand checks whether the move that produced nb closed a mill through
// "to"; if so it fans out into one AdvancedMove per removable opponent
// square, each carrying WithTaking and its TakeSquare.
func expand(r *board.Rules, nb board.Board, side int, base AdvancedMove) []AdvancedMove {
	if r.CheckMill(nb, base.To) < 0 {
		return []AdvancedMove{base}
	}
	squares := removableSquares(r, nb, 1-side)
	if len(squares) == 0 {
		return []AdvancedMove{base}
	}
	base.WithTaking = true
	moves := make([]AdvancedMove, 0, len(squares))
	for _, sq := range squares {
		m := base
		m.TakeSquare = sq
		moves = append(moves, m)
	}
	return moves
}

func applyPlace(bd board.Board, side, sq int) board.Board {
	if side == 0 {
		bd.White = bd.White.Set(sq)
	} else {
		bd.Black = bd.Black.Set(sq)
	}
	return bd
}

func applyMove(bd board.Board, side, from, to int) board.Board {
	if side == 0 {
		bd.White = bd.White.Clear(from).Set(to)
	} else {
		bd.Black = bd.Black.Clear(from).Set(to)
	}
	return bd
}

func removePiece(bd board.Board, side, sq int) board.Board {
	if side == 0 {
		bd.White = bd.White.Clear(sq)
	} else {
		bd.Black = bd.Black.Clear(sq)
	}
	return bd
}

// Apply updates board, WF/BF, KLE and side-to-move for m, following §4.1.
// A combined move (WithTaking) performs the placement/slide and the
// removal as one atomic transition and always yields a non-KLE result,
// since LegalMoves never emits a mill-closing move without its removal
// attached. OnlyTaking completes a position a caller externally left in
// the KLE state (used by the PDB's evaluate() KLE sentinel path, §4.8).
func Apply(r *board.Rules, s State, m AdvancedMove) State {
	ns := s
	side := s.SideToMove

	if m.OnlyTaking {
		ns.Board = removePiece(ns.Board, 1-side, m.TakeSquare)
		ns.KLE = false
		ns.SideToMove = 1 - side
		ns.Phase = nextPhase(ns)
		return ns
	}

	switch m.Kind {
	case Place:
		ns.Board = applyPlace(ns.Board, side, m.To)
		if side == 0 {
			ns.WF--
		} else {
			ns.BF--
		}
	case SlideOrJump:
		ns.Board = applyMove(ns.Board, side, m.From, m.To)
	}

	if m.WithTaking {
		ns.Board = removePiece(ns.Board, 1-side, m.TakeSquare)
	}

	ns.KLE = false
	ns.SideToMove = 1 - side
	ns.Phase = nextPhase(ns)
	return ns
}

func nextPhase(s State) Phase {
	if s.WF == 0 && s.BF == 0 {
		return Moving
	}
	return Placing
}
