// Package sector implements sector identity and the sector graph (C3), the
// sector hash (C4), sector file I/O with an LRU cache (C5), and the
// evaluation decoder (C6). Grounded on
// original_source/src/perfect/perfect_common.h (Id), perfect_sector_graph.cpp
// (Graph), perfect_hash.cpp (Hash), perfect_sector.cpp (File/LRU), and
// perfect_eval_elem.h/.cpp (EvalElem).
package sector

import (
	"fmt"

	"github.com/sanmill-go/morrispdb/internal/board"
)

// Id is the 4-tuple sector key (W, B, WF, BF) of spec.md §3, grounded on
// original_source's `Id` struct in perfect_common.h.
type Id struct {
	W, B, WF, BF int
}

// Negate swaps white/black roles: (W,B,WF,BF) -> (B,W,BF,WF), the "opponent
// to move" transform used throughout the sector graph and evaluation
// correction formulas.
func (id Id) Negate() Id {
	return Id{W: id.B, B: id.W, WF: id.BF, BF: id.WF}
}

// IsTwin reports whether id is its own negation (a "twin" sector, per the
// glossary).
func (id Id) IsTwin() bool {
	return id == id.Negate()
}

// Transient reports whether the sector can only be entered, never re-used
// once left — for Standard/Morabaraba this is "any pieces still to place",
// for Lasker (where placing and moving interleave) it is "either side has
// placed zero pieces so far", grounded on Id::transient() in
// perfect_common.h.
func (id Id) Transient(v board.Variant) bool {
	if v == board.Lasker {
		return !(id.W != 0 && id.B != 0)
	}
	return !(id.WF == 0 && id.BF == 0)
}

// IsTwine reports whether the sector is neither a twin nor transient —
// i.e. it genuinely pairs with a distinct negated sector, grounded on
// Id::is_twine().
func (id Id) IsTwine(v board.Variant) bool {
	return !id.IsTwin() && !id.Transient(v)
}

// FileName formats the §6 sector file name
// "<variant>_<W>_<B>_<WF>_<BF>.sec2".
func (id Id) FileName(v board.Variant) string {
	return fmt.Sprintf("%s_%d_%d_%d_%d.sec2", v, id.W, id.B, id.WF, id.BF)
}

func (id Id) String() string {
	return fmt.Sprintf("(%d,%d,%d,%d)", id.W, id.B, id.WF, id.BF)
}
