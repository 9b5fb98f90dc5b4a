package board

import "math/bits"

// Mask24 selects the low 24 bits used for one color's occupancy.
const Mask24 = (1 << NumSquares) - 1

// Bits is a 24-bit occupancy mask for one color, grounded on the teacher's
// internal/board/bitboard.go Bitboard type and method set, narrowed from 64
// to 24 significant bits.
type Bits uint32

// SquareBit returns the mask for a single square.
func SquareBit(sq int) Bits { return 1 << uint(sq) }

// Set returns b with sq occupied.
func (b Bits) Set(sq int) Bits { return b | SquareBit(sq) }

// Clear returns b with sq vacated.
func (b Bits) Clear(sq int) Bits { return b &^ SquareBit(sq) }

// IsSet reports whether sq is occupied in b.
func (b Bits) IsSet(sq int) bool { return b&SquareBit(sq) != 0 }

// PopCount returns the number of occupied squares.
func (b Bits) PopCount() int { return bits.OnesCount32(uint32(b)) }

// LSB returns the index of the lowest occupied square, or -1 if empty.
func (b Bits) LSB() int {
	if b == 0 {
		return -1
	}
	return bits.TrailingZeros32(uint32(b))
}

// PopLSB clears and returns the lowest occupied square; -1 if empty.
func (b *Bits) PopLSB() int {
	sq := b.LSB()
	if sq >= 0 {
		*b = b.Clear(sq)
	}
	return sq
}

// ForEach calls fn for every occupied square, lowest first.
func (b Bits) ForEach(fn func(sq int)) {
	for x := b; x != 0; {
		sq := x.PopLSB()
		fn(sq)
	}
}

// Squares materializes the occupied squares into a slice.
func (b Bits) Squares() []int {
	out := make([]int, 0, b.PopCount())
	b.ForEach(func(sq int) { out = append(out, sq) })
	return out
}

// Board is the 48-bit position bitboard of §3: the low 24 bits of White and
// Black occupancy are independent Bits values rather than packed into a
// single uint64, since Go has no native uint48 and splitting the halves
// keeps every downstream operation (popcount, symmetry, collapse) a plain
// 24-bit operation with no masking boilerplate.
type Board struct {
	White Bits
	Black Bits
}

// Valid reports the §3 board invariant: white and black occupancy never
// overlap.
func (bd Board) Valid() bool {
	return bd.White&bd.Black == 0
}

// Packed48 folds the board into the single 48-bit word used by the Trap DB
// position key and by the symmetry package's sym48 (low 24 = white, high 24
// = black).
func (bd Board) Packed48() uint64 {
	return uint64(bd.White) | uint64(bd.Black)<<NumSquares
}

// FromPacked48 is the inverse of Packed48.
func FromPacked48(v uint64) Board {
	return Board{White: Bits(v & Mask24), Black: Bits((v >> NumSquares) & Mask24)}
}

// Negate swaps the two colors' occupancy, used wherever the spec asks to
// view a position "as if the opponent were to move" (sector negation,
// undo_negate, mirror-symmetry tests).
func (bd Board) Negate() Board {
	return Board{White: bd.Black, Black: bd.White}
}

// PieceAt returns 0 for white, 1 for black, -1 for empty, matching the
// original_source GameState.board[] convention used throughout
// original_source/src/perfect/perfect_game_state.h.
func (bd Board) PieceAt(sq int) int {
	switch {
	case bd.White.IsSet(sq):
		return 0
	case bd.Black.IsSet(sq):
		return 1
	default:
		return -1
	}
}
