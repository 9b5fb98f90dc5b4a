package pdb

import (
	"math/rand/v2"

	"github.com/sanmill-go/morrispdb/internal/game"
	"github.com/sanmill-go/morrispdb/internal/sector"
)

// RankedMove pairs a legal move with its undo-negated value from the
// mover's viewpoint, the unit good_moves ranks and returns.
type RankedMove struct {
	Move  game.AdvancedMove
	Value sector.EvalElem
}

// Policy selects between §4.8's two picking policies.
type Policy int

const (
	PolicyLexicographic Policy = iota
	PolicyStrictMax
)

// wdlRank orders outcome characters best-to-worst for the lexicographic
// policy: a win beats a draw beats a loss.
func wdlRank(c byte) int {
	switch c {
	case 'W':
		return 2
	case 'D':
		return 1
	default:
		return 0
	}
}

// moveValue evaluates the position after m and undoes the per-sector
// viewpoint encoding back into parent's mover frame (§4.6, §4.8). A
// mill-closing move substitutes virtUniqueSecVal for the child's own
// sector value, per §4.6's note that KLE sub-positions use that sentinel
// so the half-move count is not reset across the removal; correspondingly
// it does not advance the half-move counter itself, since the removal is
// part of the same logical turn rather than a new ply.
func (db *DB) moveValue(parent game.State, m game.AdvancedMove) (sector.EvalElem, error) {
	child := game.Apply(db.Rules, parent, m)

	childEval, err := db.Evaluate(child)
	if err != nil {
		return sector.EvalElem{}, err
	}

	parentSval := int(db.secvals.Sval(sectorIDOf(parent)))

	var childSval int
	if m.WithTaking {
		childSval = db.virtUniqueSecVal()
	} else {
		childSval = int(db.secvals.Sval(sectorIDOf(child)))
	}

	return childEval.UndoNegate(childSval, parentSval, m.WithTaking), nil
}

// GoodMoves implements §4.8's good_moves(state): every legal move ranked by
// the configured picking policy, with ties all kept so Choose can apply
// refMove/shuffle semantics afterward.
func (db *DB) GoodMoves(s game.State, policy Policy) ([]RankedMove, error) {
	return db.RankMoves(s, game.LegalMoves(db.Rules, s), policy)
}

// RankMoves is GoodMoves restricted to a caller-supplied candidate set,
// letting the trap-aware picker (C11) apply good_moves's ranking over only
// its already trap-filtered safeMoves (§4.11 step 5) instead of every
// legal move.
func (db *DB) RankMoves(s game.State, moves []game.AdvancedMove, policy Policy) ([]RankedMove, error) {
	ranked := make([]RankedMove, 0, len(moves))
	for _, m := range moves {
		v, err := db.moveValue(s, m)
		if err != nil {
			return nil, err
		}
		ranked = append(ranked, RankedMove{Move: m, Value: v})
	}

	if len(ranked) <= 1 {
		return ranked, nil
	}

	switch policy {
	case PolicyStrictMax:
		return bestByStrictMax(ranked), nil
	default:
		return bestByLexicographic(ranked), nil
	}
}

func bestByLexicographic(ranked []RankedMove) []RankedMove {
	best := -1
	for _, rm := range ranked {
		if r := wdlRank(rm.Value.WDLChar()); r > best {
			best = r
		}
	}
	out := ranked[:0:0]
	for _, rm := range ranked {
		if wdlRank(rm.Value.WDLChar()) == best {
			out = append(out, rm)
		}
	}
	return out
}

func bestByStrictMax(ranked []RankedMove) []RankedMove {
	max := ranked[0].Value
	for _, rm := range ranked[1:] {
		if max.Less(rm.Value) {
			max = rm.Value
		}
	}
	out := ranked[:0:0]
	for _, rm := range ranked {
		if !rm.Value.Less(max) && !max.Less(rm.Value) {
			out = append(out, rm)
		}
	}
	return out
}

// Choose implements §4.8's choose(moves, refMove): refMove wins if present
// among moves (for reproducibility across repeated queries of the same
// position), else a uniformly random member if shuffling is enabled, else
// the first.
func Choose(moves []RankedMove, refMove *game.AdvancedMove, shufflingEnabled bool) game.AdvancedMove {
	if refMove != nil {
		for _, rm := range moves {
			if rm.Move == *refMove {
				return rm.Move
			}
		}
	}
	if shufflingEnabled && len(moves) > 1 {
		return moves[rand.IntN(len(moves))].Move
	}
	return moves[0].Move
}
