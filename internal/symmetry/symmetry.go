// Package symmetry implements the 16-element dihedral symmetry group used
// to canonicalize Nine Men's Morris positions (spec component C2), grounded
// on original_source/src/perfect/perfect_symmetries.cpp and
// perfect_symmetries_slow.cpp.
//
// The board's 24 squares form three independent 8-point rings (inner,
// middle, outer). Each of the 16 ops permutes the three rings: 8 of them
// apply one of the 8 elements of the ring's dihedral group (4 rotations
// including identity, 4 reflections) to every ring independently; the other
// 8 additionally swap the inner and outer ring before applying the same
// per-ring transform. Op index 15 is the identity: tie-breaking in the
// sector-hash construction (§4.4) relies on "last (highest index) op wins",
// so identity must sort last.
package symmetry

import "math/bits"

// NumOps is the size of the symmetry group.
const NumOps = 16

// ringPerm[op] maps an old in-ring position (0..7) to its image under op's
// per-ring transform, ignoring the inner/outer swap.
var ringPerm [NumOps][8]int

// swapsRings reports whether op additionally exchanges the inner and outer
// ring (bit pattern 0..7 with bits 16..23).
var swapsRings [NumOps]bool

// Inv[op] is the inverse operation index.
var Inv = [NumOps]int{2, 1, 0, 3, 4, 5, 6, 7, 10, 9, 8, 11, 12, 13, 14, 15}

// table1/2/3 precompute, for each op and each byte value of one of the
// board's three 8-bit bytes (outer, middle, inner ring occupancy), the
// resulting 24-bit pattern with that ring's bits permuted into their image
// positions and (for swap ops) moved into the other ring's byte slot. This
// mirrors original_source's table1/2/3[16][256] exactly: sym24 ORs the three
// byte-wise lookups together.
var table1, table2, table3 [NumOps][256]uint32

func init() {
	buildRingPerms()
	buildTables()
}

// ring8Perm returns the permutation (p[i] = image of position i) for one of
// the 8 dihedral-group elements of an 8-cycle labelled 0..7 clockwise,
// identity included. idx selects: 0=id,1=rot90,2=rot180,3=rot270,4=mirrorVert,
// 5=mirrorHoriz,6=mirrorDiagA,7=mirrorDiagB.
func ring8Perm(idx int) [8]int {
	var p [8]int
	for i := 0; i < 8; i++ {
		switch idx {
		case 0: // identity
			p[i] = i
		case 1: // rotate 90 deg = shift by 2
			p[i] = (i + 2) % 8
		case 2: // rotate 180 = shift by 4
			p[i] = (i + 4) % 8
		case 3: // rotate 270 = shift by 6
			p[i] = (i + 6) % 8
		case 4: // mirror about axis through points 0 and 4
			p[i] = (8 - i) % 8
		case 5: // mirror about axis through points 2 and 6
			p[i] = (4 - i + 8) % 8
		case 6: // mirror about diagonal through points 1 and 5
			p[i] = (2 - i + 8) % 8
		case 7: // mirror about diagonal through points 3 and 7
			p[i] = (6 - i + 8) % 8
		}
	}
	return p
}

// buildRingPerms lays the 16 ops out in the same order as original_source's
// slow[16]: 3 rotations, 4 reflections, swap, swap+{those 7}, identity last.
func buildRingPerms() {
	nonIdentity := []int{1, 2, 3, 4, 5, 6, 7} // rot90,180,270, 4 mirrors
	op := 0
	for _, k := range nonIdentity {
		ringPerm[op] = ring8Perm(k)
		swapsRings[op] = false
		op++
	}
	ringPerm[op] = ring8Perm(0) // swap alone: identity per-ring transform
	swapsRings[op] = true
	op++
	for _, k := range nonIdentity {
		ringPerm[op] = ring8Perm(k)
		swapsRings[op] = true
		op++
	}
	ringPerm[op] = ring8Perm(0) // identity, index 15
	swapsRings[op] = false
}

// permuteByte applies a ring permutation to one 8-bit byte value, returning
// the permuted byte: bit perm[i] of the result equals bit i of the input.
func permuteByte(perm [8]int, v byte) byte {
	var out byte
	for i := 0; i < 8; i++ {
		if v&(1<<uint(i)) != 0 {
			out |= 1 << uint(perm[i])
		}
	}
	return out
}

// buildTables fills table1 (outer ring byte, bits 0..7), table2 (middle
// ring, bits 8..15) and table3 (inner ring, bits 16..23) for every op,
// honoring the inner/outer swap by routing the permuted byte into the other
// ring's slot.
func buildTables() {
	for op := 0; op < NumOps; op++ {
		perm := ringPerm[op]
		for v := 0; v < 256; v++ {
			permuted := permuteByte(perm, byte(v))
			if !swapsRings[op] {
				table1[op][v] = uint32(permuted)
				table2[op][v] = uint32(permuted) << 8
				table3[op][v] = uint32(permuted) << 16
			} else {
				// inner <-> outer ring swap; middle ring stays put.
				table1[op][v] = uint32(permuted) << 16
				table2[op][v] = uint32(permuted) << 8
				table3[op][v] = uint32(permuted)
			}
		}
	}
}

// Sym24 applies op to a 24-bit single-color occupancy pattern.
func Sym24(op int, a uint32) uint32 {
	b0 := byte(a)
	b1 := byte(a >> 8)
	b2 := byte(a >> 16)
	return table1[op][b0] | table2[op][b1] | table3[op][b2]
}

// Sym48 applies op to a 48-bit board word (low 24 bits white, high 24 black)
// by applying Sym24 to each half independently.
func Sym48(op int, a uint64) uint64 {
	lo := Sym24(op, uint32(a&0xFFFFFF))
	hi := Sym24(op, uint32((a>>24)&0xFFFFFF))
	return uint64(lo) | uint64(hi)<<24
}

// PopCount24 is a convenience re-export so callers canonicalizing white
// patterns don't need to import math/bits themselves.
func PopCount24(a uint32) int { return bits.OnesCount32(a) }
