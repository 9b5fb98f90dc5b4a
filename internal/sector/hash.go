package sector

import (
	"fmt"

	"github.com/sanmill-go/morrispdb/internal/symmetry"
)

// Hash is the bijection between canonical 48-bit boards and dense indices
// within one sector (W, B), grounded on original_source's
// perfect_hash.cpp Hash class.
//
// original_source sizes fLookup/fSymLookup as dense 2^24-entry arrays (the
// "~64MB per sector" the spec's memory-footprint note describes). This
// port uses maps instead: only entries for patterns that actually have
// popcount W are ever populated or queried, and for most sectors W is far
// from 12, so a map is both smaller and avoids paying for entries that can
// never be looked up. The LRU (capacity 8, see lru.go) remains the actual
// memory control valve either way. See DESIGN.md.
type Hash struct {
	W, B      int
	FCount    int
	HashCount int64

	fLookup    map[uint32]int32 // canonical white pattern -> f index
	fSymLookup map[uint32]int8  // any popcount-W white pattern -> canonicalizing op
	fInv       []uint32         // f index -> canonical white pattern

	gLookup map[uint32]int32 // collapsed black pattern -> g index
	gInv    []uint32         // g index -> collapsed black pattern

	freeCombos int64 // C(24-W, B)
}

// NewHash builds the sector hash tables for (W, B). Construction follows
// §4.4: white patterns are enumerated in next_choose order; each unindexed
// pattern is a fresh canonical representative, and all 16 symmetric images
// are marked with their canonicalizing (inverse) op, with op 15 (identity)
// applied last so a pattern that is its own image ends up mapped to
// identity, never to some other op that happens to fix it too.
func NewHash(w, b int) (*Hash, error) {
	if w < 0 || b < 0 || w+b > 24 {
		return nil, fmt.Errorf("sector: invalid sector piece counts W=%d B=%d", w, b)
	}

	h := &Hash{W: w, B: b, freeCombos: Binom(24-w, b)}

	h.fLookup = make(map[uint32]int32)
	h.fSymLookup = make(map[uint32]int8)
	visited := make(map[uint32]bool)

	if w == 0 {
		h.fSymLookup[0] = int8(symmetry.Inv[15])
		h.fLookup[0] = 0
		h.fInv = []uint32{0}
		h.FCount = 1
	} else {
		pattern := uint32(1)<<uint(w) - 1
		limit := uint32(1) << 24
		for pattern < limit {
			if !visited[pattern] {
				idx := int32(len(h.fInv))
				h.fLookup[pattern] = idx
				h.fInv = append(h.fInv, pattern)
				for op := 0; op < symmetry.NumOps; op++ {
					img := symmetry.Sym24(op, pattern)
					visited[img] = true
					h.fSymLookup[img] = int8(symmetry.Inv[op])
				}
			}
			pattern = nextChoose(pattern)
		}
		h.FCount = len(h.fInv)
	}

	h.gLookup = make(map[uint32]int32)
	if b == 0 {
		h.gLookup[0] = 0
		h.gInv = []uint32{0}
	} else {
		nFree := 24 - w
		pattern := uint32(1)<<uint(b) - 1
		limit := uint32(1) << uint(nFree)
		for pattern < limit {
			idx := int32(len(h.gInv))
			h.gLookup[pattern] = idx
			h.gInv = append(h.gInv, pattern)
			pattern = nextChoose(pattern)
		}
	}

	h.HashCount = int64(h.FCount) * h.freeCombos
	return h, nil
}

// Index computes the primary (non-retried) dense index for a 48-bit board
// packed as low-24 white / high-24 black, following §4.4 steps 1-7.
func (h *Hash) Index(packed uint64) (int64, error) {
	white := uint32(packed & 0xFFFFFF)
	black := uint32((packed >> 24) & 0xFFFFFF)
	op, ok := h.fSymLookup[white]
	if !ok {
		return 0, fmt.Errorf("sector: white pattern %06x has popcount %d, not %d", white, popcount(white), h.W)
	}
	return h.indexWithOp(int(op), white, black)
}

// IndexWithOp recomputes the index using an explicit symmetry op instead of
// the one f_sym_lookup would choose, used by the one-shot "Sym" redirect
// retry described in §4.4/§4.5.
func (h *Hash) IndexWithOp(op int, packed uint64) (int64, error) {
	white := uint32(packed & 0xFFFFFF)
	black := uint32((packed >> 24) & 0xFFFFFF)
	return h.indexWithOp(op, white, black)
}

func (h *Hash) indexWithOp(op int, white, black uint32) (int64, error) {
	canonWhite := symmetry.Sym24(op, white)
	canonBlack := symmetry.Sym24(op, black)
	f, ok := h.fLookup[canonWhite]
	if !ok {
		return 0, fmt.Errorf("sector: canonical white pattern %06x is not a recognized orbit representative", canonWhite)
	}
	collapsed := collapse(canonWhite, canonBlack)
	g, ok := h.gLookup[collapsed]
	if !ok {
		return 0, fmt.Errorf("sector: collapsed black pattern %06x out of range for W=%d B=%d", collapsed, h.W, h.B)
	}
	return int64(f)*h.freeCombos + int64(g), nil
}

// InverseIndex recovers the canonical 48-bit board for a dense index,
// grounded on Hash::inv_hash in perfect_hash.cpp.
func (h *Hash) InverseIndex(idx int64) (uint64, error) {
	if idx < 0 || idx >= h.HashCount {
		return 0, fmt.Errorf("sector: index %d out of range [0, %d)", idx, h.HashCount)
	}
	f := idx / h.freeCombos
	g := idx % h.freeCombos
	white := h.fInv[f]
	collapsedBlack := h.gInv[g]
	black := uncollapse(white, collapsedBlack)
	return uint64(white) | uint64(black)<<24, nil
}

func popcount(v uint32) int {
	n := 0
	for v != 0 {
		n += int(v & 1)
		v >>= 1
	}
	return n
}
