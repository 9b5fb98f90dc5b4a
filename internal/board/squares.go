package board

import "fmt"

// squareToken is the PDB-index-to-token table, in PDB square order
// (0..23: outer ring a4..a1, then middle ring b4..b2, then inner ring
// c4..c3, each ring walked clockwise starting at its 9 o'clock point),
// grounded verbatim on the mezoToString table in
// original_source/src/perfect/perfect_move.h.
//
// original_source carries two overlapping coordinate tables (one for the
// CLR-hosted path, one for the in-process path); per the REDESIGN FLAG in
// spec.md §9 this module ships exactly this one, used both for token
// emission (§6) and for parsing tokens back into PDB squares.
var squareToken = [NumSquares]string{
	"a4", "a7", "d7", "g7", "g4", "g1",
	"d1", "a1", "b4", "b6", "d6", "f6",
	"f4", "f2", "d2", "b2", "c4", "c5",
	"d5", "e5", "e4", "e3", "d3", "c3",
}

var tokenSquare = func() map[string]int {
	m := make(map[string]int, NumSquares)
	for sq, tok := range squareToken {
		m[tok] = sq
	}
	return m
}()

// SquareToken returns the §6 file/rank token ("a4") for a PDB square index.
func SquareToken(sq int) (string, error) {
	if sq < 0 || sq >= NumSquares {
		return "", fmt.Errorf("board: square %d out of range 0..%d", sq, NumSquares-1)
	}
	return squareToken[sq], nil
}

// TokenSquare parses a "a4"-style token back into its PDB square index.
func TokenSquare(tok string) (int, error) {
	sq, ok := tokenSquare[tok]
	if !ok {
		return 0, fmt.Errorf("board: unrecognized square token %q", tok)
	}
	return sq, nil
}
