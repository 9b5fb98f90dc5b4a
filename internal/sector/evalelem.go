package sector

// EvalElem is the public decoded evaluation (spec §4.6), grounded on
// eval_elem2 in original_source/src/perfect/perfect_eval_elem.h/.cpp.
//
// Key1 != 0 is the "Val" case: Key1 encodes WDL/tier, Key2 is a
// non-negative distance to result. Key1 == 0 is the "Count" case: Key2 is
// a raw, non-terminal counter never surfaced to callers as a game result.
type EvalElem struct {
	Key1 int16
	Key2 int32
}

// IsVal reports the Val case.
func (e EvalElem) IsVal() bool { return e.Key1 != 0 }

// Less implements the §4.6 ordering: the smaller Key1 is Less; on equal
// Key1, a loss (Key1 < 0) with the smaller Key2 (the faster loss) is Less,
// and a win (Key1 > 0) with the larger Key2 (the slower win) is Less.
// Count-vs-Count (both zero Key1) has no order.
func (e EvalElem) Less(o EvalElem) bool {
	if e.Key1 != o.Key1 {
		return e.Key1 < o.Key1
	}
	if e.Key1 < 0 {
		return e.Key2 < o.Key2
	}
	if e.Key1 > 0 {
		return e.Key2 > o.Key2
	}
	return false
}

// Greater is the strict converse of Less: e is strictly better than o.
func (e EvalElem) Greater(o EvalElem) bool { return o.Less(e) }

func sign64(v int64) int64 {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}

// Corr applies the sector-viewpoint correction of §4.6:
//
//	newKey1 = key1 + c (as signed 16-bit)
//	newKey2 = sign(newKey1 * key1) * key2
//
// grounded verbatim on eval_elem2::corr in perfect_eval_elem.cpp.
func (e EvalElem) Corr(c int) EvalElem {
	newKey1 := int16(int32(e.Key1) + int32(c))
	newKey2 := int32(sign64(int64(newKey1)*int64(e.Key1))) * e.Key2
	return EvalElem{Key1: newKey1, Key2: newKey2}
}

// NegateKey1 flips the sign of Key1 only, the "viewpoint flip" half of
// undo_negate.
func (e EvalElem) NegateKey1() EvalElem {
	return EvalElem{Key1: -e.Key1, Key2: e.Key2}
}

// IncrementKey2 adds one half-move of distance, the other half of
// undo_negate, grounded on val::undo_negate() in
// original_source/src/perfect/perfect_common.h.
func (e EvalElem) IncrementKey2() EvalElem {
	return EvalElem{Key1: e.Key1, Key2: e.Key2 + 1}
}

// UndoNegate implements the full §4.6 viewpoint-correction pipeline:
//
//	r = e.Corr(selfSval + neighborSval).NegateKey1().IncrementKey2IfNonKLE
//
// Distance is only advanced by one half-move when the position being
// corrected is NOT itself a pending-removal (KLE) sub-position — a KLE
// sub-position shares its parent's distance-to-result, per the
// virt_unique_sec_val note in spec.md §4.6 ("used ... so that distance
// counting is not reset").
func (e EvalElem) UndoNegate(selfSval, neighborSval int, isKLE bool) EvalElem {
	r := e.Corr(selfSval + neighborSval).NegateKey1()
	if !isKLE {
		r = r.IncrementKey2()
	}
	return r
}

// WDLChar returns the first character of the human evaluation string
// ('W','D','L') used by the lexicographic picking policy (§4.8) and the
// trap builder's value classification (§4.10).
func (e EvalElem) WDLChar() byte {
	switch {
	case !e.IsVal():
		return 'D' // Count case never reaches a caller as a terminal result;
		// treated as a draw-class placeholder, never compared against 'L'/'W'.
	case e.Key1 > 0:
		return 'W'
	case e.Key1 < 0:
		return 'L'
	default:
		return 'D'
	}
}

// rawEval is the on-disk triple before the Sym redirect has been resolved,
// grounded on eval_elem_sym2 in perfect_eval_elem.h/.cpp.
type rawCas int

const (
	rawVal rawCas = iota
	rawCount
	rawSym
)

type rawEval struct {
	Key1 int16
	Key2 int32
}

func (r rawEval) cas() rawCas {
	switch {
	case r.Key1 != 0:
		return rawVal
	case r.Key2 >= 0:
		return rawCount
	default:
		return rawSym
	}
}

// sym returns the redirect symmetry op, valid only when cas() == rawSym.
func (r rawEval) sym() int { return int(-(r.Key2 + 1)) }

// toPublic converts a resolved (non-Sym) raw record to the public form.
func (r rawEval) toPublic() EvalElem { return EvalElem{Key1: r.Key1, Key2: r.Key2} }
