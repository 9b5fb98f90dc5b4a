// Package board holds the fixed per-variant geometry of a Nine Men's Morris
// board: square numbering, mill lines, adjacency, and move legality
// predicates (spec component C1).
package board

// Variant selects the rule set: standard Nine Men's Morris, Lasker (pieces
// may be placed or moved from turn one), or Morabaraba (20 mill lines, extra
// diagonal connections).
type Variant int

const (
	Standard Variant = iota
	Lasker
	Morabaraba
)

func (v Variant) String() string {
	switch v {
	case Standard:
		return "std"
	case Lasker:
		return "lask"
	case Morabaraba:
		return "mora"
	default:
		return "unknown"
	}
}

// ParseVariant maps the §6 configuration token to a Variant.
func ParseVariant(s string) (Variant, bool) {
	switch s {
	case "std":
		return Standard, true
	case "lask":
		return Lasker, true
	case "mora":
		return Morabaraba, true
	default:
		return 0, false
	}
}

// MaxPieces returns the per-side piece budget for the variant (maxKSZ in
// original_source/src/perfect/perfect_rules.cpp), honoring the "extended"
// override that forces 12 for every variant.
func (v Variant) MaxPieces(extended bool) int {
	if extended {
		return 12
	}
	switch v {
	case Standard:
		return 9
	case Lasker:
		return 10
	case Morabaraba:
		return 12
	default:
		return 9
	}
}

// NumSquares is the fixed board size: 3 rings of 8 points each.
const NumSquares = 24

// Rules holds the precomputed per-variant tables: mill lines, their inverse
// index, and the adjacency graph (both matrix and list form), grounded on
// original_source/src/perfect/perfect_rules.cpp's Rules class. Unlike the
// original's process-global mutable statics (copied in by set_variant), a
// Rules value here is an immutable snapshot returned by NewRules — callers
// hold one per active variant instead of mutating shared state.
type Rules struct {
	Variant     Variant
	MillLines   [][3]int // 16 for std/Lasker, 20 for Morabaraba
	InvMillPos  [NumSquares][]int
	Adjacency   [NumSquares][NumSquares]bool
	AdjList     [NumSquares][]int
	MaxPieces   int
}

// stdLaskerMillLines builds the 16 mill lines shared by Standard and Lasker:
// 4 ring-local lines per ring (3 rings), plus 4 spoke lines joining the
// rings at the 4 even "cardinal" positions.
func stdLaskerMillLines() [][3]int {
	base := [4][3]int{{1, 2, 3}, {3, 4, 5}, {5, 6, 7}, {7, 0, 1}}
	lines := make([][3]int, 0, 16)
	for ring := 0; ring < 3; ring++ {
		off := ring * 8
		for _, l := range base {
			lines = append(lines, [3]int{l[0] + off, l[1] + off, l[2] + off})
		}
	}
	for _, spoke := range []int{0, 2, 4, 6} {
		lines = append(lines, [3]int{spoke, spoke + 8, spoke + 16})
	}
	return lines
}

// moraMillLines extends the std/Lasker set with the 4 diagonal spokes at
// odd cardinal positions that Morabaraba adds.
func moraMillLines() [][3]int {
	lines := append([][3]int{}, stdLaskerMillLines()...)
	for _, spoke := range []int{1, 3, 5, 7} {
		lines = append(lines, [3]int{spoke, spoke + 8, spoke + 16})
	}
	return lines
}

// stdLaskerAdjacency builds the board graph: each ring is an 8-cycle, plus
// spoke edges connecting ring0-ring1 and ring1-ring2 at the 4 even cardinal
// positions only (ring0 and ring2 are never directly adjacent).
func stdLaskerAdjacency() [NumSquares][NumSquares]bool {
	var g [NumSquares][NumSquares]bool
	link := func(a, b int) { g[a][b] = true; g[b][a] = true }
	for ring := 0; ring < 3; ring++ {
		off := ring * 8
		for i := 0; i < 7; i++ {
			link(off+i, off+i+1)
		}
		link(off+7, off+0)
	}
	for _, j := range []int{0, 2, 4, 6} {
		link(j, j+8)
		link(j+8, j+16)
	}
	return g
}

// moraAdjacency starts from the std/Lasker graph and adds every ring0-ring1
// and ring1-ring2 spoke (not just the even cardinal ones), matching
// original_source's moraBoardGraph.
func moraAdjacency() [NumSquares][NumSquares]bool {
	g := stdLaskerAdjacency()
	for i := 0; i < 16; i++ {
		g[i][i+8] = true
		g[i+8][i] = true
	}
	return g
}

func invMillLines(lines [][3]int) [NumSquares][]int {
	var inv [NumSquares][]int
	for sq := 0; sq < NumSquares; sq++ {
		for li, line := range lines {
			if line[0] == sq || line[1] == sq || line[2] == sq {
				inv[sq] = append(inv[sq], li)
			}
		}
	}
	return inv
}

func adjList(g [NumSquares][NumSquares]bool) [NumSquares][]int {
	var al [NumSquares][]int
	for i := 0; i < NumSquares; i++ {
		for j := 0; j < NumSquares; j++ {
			if g[i][j] {
				al[i] = append(al[i], j)
			}
		}
	}
	return al
}

// NewRules builds the immutable rule table for a variant.
func NewRules(v Variant, extended bool) *Rules {
	var lines [][3]int
	var adj [NumSquares][NumSquares]bool
	switch v {
	case Morabaraba:
		lines = moraMillLines()
		adj = moraAdjacency()
	default: // Standard, Lasker share the same geometry
		lines = stdLaskerMillLines()
		adj = stdLaskerAdjacency()
	}
	return &Rules{
		Variant:    v,
		MillLines:  lines,
		InvMillPos: invMillLines(lines),
		Adjacency:  adj,
		AdjList:    adjList(adj),
		MaxPieces:  v.MaxPieces(extended),
	}
}
