package board

// side is 0 for white, 1 for black; Occ returns the occupancy for that side.
func (bd Board) Occ(side int) Bits {
	if side == 0 {
		return bd.White
	}
	return bd.Black
}

// withOcc returns a copy of bd with side's occupancy replaced.
func (bd Board) withOcc(side int, occ Bits) Board {
	if side == 0 {
		bd.White = occ
		return bd
	}
	bd.Black = occ
	return bd
}

// CheckMill returns the mill-line index formed through square m by the
// piece currently on it, or -1 if none, grounded on Rules::check_mill in
// original_source/src/perfect/perfect_rules.cpp.
func (r *Rules) CheckMill(bd Board, m int) int {
	piece := bd.PieceAt(m)
	if piece < 0 {
		return -1
	}
	occ := bd.Occ(piece)
	found := -1
	for _, li := range r.InvMillPos[m] {
		line := r.MillLines[li]
		if occ.IsSet(line[0]) && occ.IsSet(line[1]) && occ.IsSet(line[2]) {
			found = li
		}
	}
	return found
}

// CanMove reports whether side has a legal move available in the moving
// phase, ignoring the KLE removal case, grounded on Rules::can_move. With
// more than 3 stones a side may only move to an adjacent empty square;
// with exactly 3 it may fly to any empty square, so it can always move
// as long as one exists.
func (r *Rules) CanMove(bd Board, side int) bool {
	occ := bd.Occ(side)
	if occ.PopCount() <= 3 {
		return bd.White.PopCount()+bd.Black.PopCount() < NumSquares
	}
	can := false
	occ.ForEach(func(sq int) {
		if can {
			return
		}
		for _, nb := range r.AdjList[sq] {
			if bd.PieceAt(nb) < 0 {
				can = true
				return
			}
		}
	})
	return can
}

// AllOpponentPiecesInMill reports whether every piece belonging to the side
// NOT to move sits on a closed mill line, which is the "all in mill"
// exception that makes every opponent piece removable during a KLE.
func (r *Rules) AllOpponentPiecesInMill(bd Board, sideToMove int) bool {
	opp := 1 - sideToMove
	ok := true
	bd.Occ(opp).ForEach(func(sq int) {
		if ok && r.CheckMill(bd, sq) == -1 {
			ok = false
		}
	})
	return ok
}
