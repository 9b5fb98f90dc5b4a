// Package trapbuilder implements the Trap DB builder (spec component C10):
// a parallel sweep over every PDB sector that classifies each legal
// stm-to-move position as a self-mill-loss trap, a block-mill-loss trap,
// both, or neither, grounded on perfect_trap_builder.cpp.
package trapbuilder

import (
	"math"

	"github.com/sanmill-go/morrispdb/internal/board"
	"github.com/sanmill-go/morrispdb/internal/game"
	"github.com/sanmill-go/morrispdb/internal/pdb"
	"github.com/sanmill-go/morrispdb/internal/trapdb"
)

// couldBeTrap is the cheap pre-filter of is_self_mill_loss_trap_fast's
// PositionPreFilter::could_be_trap: skip positions too simple to hide a
// trap before paying for move generation and PDB lookups.
func couldBeTrap(r *board.Rules, bd board.Board, s game.State) bool {
	total := bd.White.PopCount() + bd.Black.PopCount()
	if total < 4 {
		return false
	}
	if s.Phase == game.Moving && total < 6 {
		return false
	}
	return hasPotentialMillThreat(r, bd)
}

// hasPotentialMillThreat reports whether any mill line has exactly two
// pieces of one color and one empty square, the same bitboard scan as
// PositionPreFilter::has_potential_mill_threats.
func hasPotentialMillThreat(r *board.Rules, bd board.Board) bool {
	empty := ^(bd.White | bd.Black) & board.Bits(board.Mask24)
	for _, line := range r.MillLines {
		var w, b, e int
		for _, sq := range line {
			switch {
			case bd.White.IsSet(sq):
				w++
			case bd.Black.IsSet(sq):
				b++
			case empty.IsSet(sq):
				e++
			}
		}
		if (w == 2 && e == 1) || (b == 2 && e == 1) {
			return true
		}
	}
	return false
}

// blocksOpponentMill reports whether playing m reduces the opponent's count
// of immediate mill-closing replies, grounded on
// blocks_opponent_mill_local: a pure removal move is never a "block", and
// a position with no mill threat to begin with cannot be "blocked".
func blocksOpponentMill(r *board.Rules, s game.State, m game.AdvancedMove) bool {
	if m.OnlyTaking {
		return false
	}

	oppBefore := s
	oppBefore.SideToMove = 1 - s.SideToMove
	before := countMillMoves(r, oppBefore)
	if before == 0 {
		return false
	}

	after := game.Apply(r, s, m)
	oppAfter := after
	oppAfter.SideToMove = 1 - after.SideToMove
	return countMillMoves(r, oppAfter) < before
}

func countMillMoves(r *board.Rules, s game.State) int {
	n := 0
	for _, m := range game.LegalMoves(r, s) {
		if m.WithTaking {
			n++
		}
	}
	return n
}

// evalFirstChar is is_self_mill_loss_trap_fast's EvalCache::get_eval_first_char:
// the WDL character of the position reached after m, from the mover's own
// cache (shared across both trap predicates for one state).
func evalFirstChar(db *pdb.DB, cache *EvalCache, r *board.Rules, s game.State, m game.AdvancedMove) (byte, error) {
	child := game.Apply(r, s, m)
	key := Key(child.CanonicalBoard().Packed48(), child.SideToMove, child.KLE)
	if elem, ok := cache.Get(key); ok {
		return elem.WDLChar(), nil
	}
	elem, err := db.Evaluate(child)
	if err != nil {
		return 'L', err
	}
	cache.Put(key, elem)
	return elem.WDLChar(), nil
}

// isSelfMillLossTrap implements is_self_mill_loss_trap_fast: every move that
// closes a mill loses, yet some other legal move does not — the naive
// "always take the mill" heuristic would walk straight into a loss.
func isSelfMillLossTrap(db *pdb.DB, cache *EvalCache, r *board.Rules, s game.State, moves []game.AdvancedMove) (bool, error) {
	hasForm := false
	allFormLose := true
	for _, m := range moves {
		if !m.WithTaking {
			continue
		}
		hasForm = true
		c, err := evalFirstChar(db, cache, r, s, m)
		if err != nil {
			return false, err
		}
		if c != 'L' {
			allFormLose = false
			break
		}
	}
	if !hasForm || !allFormLose {
		return false, nil
	}

	for _, m := range moves {
		if m.WithTaking {
			continue
		}
		c, err := evalFirstChar(db, cache, r, s, m)
		if err != nil {
			return false, err
		}
		if c != 'L' {
			return true, nil
		}
	}
	return false, nil
}

// isBlockMillLossTrap implements is_block_mill_loss_trap_fast: every move
// that blocks the opponent's mill threat loses, yet some other legal move
// does not.
func isBlockMillLossTrap(db *pdb.DB, cache *EvalCache, r *board.Rules, s game.State, moves []game.AdvancedMove) (bool, error) {
	anyBlock := false
	allBlockLose := true
	for _, m := range moves {
		if m.WithTaking || !blocksOpponentMill(r, s, m) {
			continue
		}
		anyBlock = true
		c, err := evalFirstChar(db, cache, r, s, m)
		if err != nil {
			return false, err
		}
		if c != 'L' {
			allBlockLose = false
			break
		}
	}
	if !anyBlock || !allBlockLose {
		return false, nil
	}

	for _, m := range moves {
		if !m.WithTaking && blocksOpponentMill(r, s, m) {
			continue
		}
		c, err := evalFirstChar(db, cache, r, s, m)
		if err != nil {
			return false, err
		}
		if c != 'L' {
			return true, nil
		}
	}
	return false, nil
}

// classify returns the trap mask, side-to-move WDL, and step count to record
// for s, or Mask(0) if s is not a trap at all.
func classify(db *pdb.DB, cache *EvalCache, r *board.Rules, s game.State) (trapdb.Mask, int8, int16, error) {
	moves := game.LegalMoves(r, s)

	self, err := isSelfMillLossTrap(db, cache, r, s, moves)
	if err != nil {
		return 0, 0, 0, err
	}
	block, err := isBlockMillLossTrap(db, cache, r, s, moves)
	if err != nil {
		return 0, 0, 0, err
	}
	if !self && !block {
		return 0, 0, 0, nil
	}

	var mask trapdb.Mask
	if self {
		mask |= trapdb.SelfMillLoss
	}
	if block {
		mask |= trapdb.BlockMillLoss
	}

	own, err := db.Evaluate(s)
	if err != nil {
		return 0, 0, 0, err
	}
	wdl := int8(0)
	switch own.WDLChar() {
	case 'W':
		wdl = 1
	case 'L':
		wdl = -1
	}
	steps := clampToInt16(own.Key2)

	return mask, wdl, steps, nil
}

// clampToInt16 saturates Key2's half-move distance into the 15-byte trap
// record's int16 steps field, since EvalElem.Key2 is int32 but the trap
// disk format (per original_source/perfect_trap_db.cpp) budgets 16 bits.
func clampToInt16(v int32) int16 {
	switch {
	case v > math.MaxInt16:
		return math.MaxInt16
	case v < math.MinInt16:
		return math.MinInt16
	default:
		return int16(v)
	}
}
