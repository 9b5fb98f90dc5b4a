// Package picker implements §4.11's trap-aware move picker (C11): it
// layers the Trap DB's cheap avoidance/attack signal on top of C8's
// good_moves, grounded on §4.11 directly since the original distills this
// logic inline in perfect_trap_builder.cpp's sibling query path rather than
// a separate translation unit.
package picker

import (
	"github.com/sanmill-go/morrispdb/internal/board"
	"github.com/sanmill-go/morrispdb/internal/game"
	"github.com/sanmill-go/morrispdb/internal/pdb"
	"github.com/sanmill-go/morrispdb/internal/trapdb"
)

// Picker chooses a move for a position, preferring trap-creating moves,
// filtering self-traps, and falling back to the PDB's own ranking or a
// plain first-legal-move choice as the Trap DB and PDB become unavailable.
type Picker struct {
	Rules   *board.Rules
	DB      *pdb.DB // optional: nil means "no PDB available"
	TrapDB  *trapdb.DB // optional: nil or empty means "no Trap DB available"
	Policy  pdb.Policy
	Shuffle bool
}

// blocksOpponentMill mirrors trapbuilder's predicate of the same name
// (§4.10) exactly, since §4.11 step 2 explicitly reuses it.
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

// safeMoves implements §4.11 step 2: partition legal moves against the Trap
// DB's mask for state, falling back to the full set when every move would
// be excluded (a forced trap — there is nothing better to do).
func (p *Picker) safeMoves(s game.State, moves []game.AdvancedMove) []game.AdvancedMove {
	if p.TrapDB == nil || p.TrapDB.Len() == 0 {
		return moves
	}
	mask := p.TrapDB.GetMask(trapdb.KeyForState(s))
	if mask == trapdb.None {
		return moves
	}

	safe := make([]game.AdvancedMove, 0, len(moves))
	for _, m := range moves {
		if mask&trapdb.SelfMillLoss != 0 && m.WithTaking {
			continue
		}
		if mask&trapdb.BlockMillLoss != 0 && blocksOpponentMill(p.Rules, s, m) {
			continue
		}
		safe = append(safe, m)
	}
	if len(safe) == 0 {
		return moves
	}
	return safe
}

// trapCreatingMove pairs a move with the opponent trap it exposes.
type trapCreatingMove struct {
	move  game.AdvancedMove
	mask  trapdb.Mask
	wdl   int8
	steps int16
}

// findTrapCreatingMoves implements §4.11 step 3: among candidates, which
// ones leave the opponent with a non-zero trap mask, ranked win-before-draw
// then fewer-steps-first.
func (p *Picker) findTrapCreatingMoves(r *board.Rules, s game.State, candidates []game.AdvancedMove) []trapCreatingMove {
	if p.TrapDB == nil || p.TrapDB.Len() == 0 {
		return nil
	}

	var found []trapCreatingMove
	for _, m := range candidates {
		child := game.Apply(r, s, m)
		key := trapdb.KeyForState(child)
		mask := p.TrapDB.GetMask(key)
		if mask == trapdb.None {
			continue
		}
		found = append(found, trapCreatingMove{
			move:  m,
			mask:  mask,
			wdl:   p.TrapDB.GetWDL(key),
			steps: p.TrapDB.GetSteps(key),
		})
	}
	return bestTrapCreatingMoves(found)
}

// bestTrapCreatingMoves narrows found to its highest-ranked subset: wins
// beat draws beat losses (from the opponent's viewpoint, so the trap's wdl
// is negated: the opponent being trapped into a loss is the mover's win),
// and among equal ranks fewer steps wins (a faster forced result).
func bestTrapCreatingMoves(found []trapCreatingMove) []trapCreatingMove {
	if len(found) == 0 {
		return nil
	}
	rank := func(t trapCreatingMove) int {
		switch {
		case t.wdl < 0:
			return 2 // opponent loses: the mover forces a win
		case t.wdl == 0:
			return 1
		default:
			return 0
		}
	}

	bestRank := -1
	for _, t := range found {
		if r := rank(t); r > bestRank {
			bestRank = r
		}
	}
	var atBestRank []trapCreatingMove
	for _, t := range found {
		if rank(t) == bestRank {
			atBestRank = append(atBestRank, t)
		}
	}

	bestSteps := atBestRank[0].steps
	for _, t := range atBestRank[1:] {
		if fasterSteps(t.steps, bestSteps) {
			bestSteps = t.steps
		}
	}
	out := atBestRank[:0:0]
	for _, t := range atBestRank {
		if t.steps == bestSteps {
			out = append(out, t)
		}
	}
	return out
}

// fasterSteps reports whether a forces the result sooner than b, treating
// -1 (unknown) as worse than any known value.
func fasterSteps(a, b int16) bool {
	if a == -1 {
		return false
	}
	if b == -1 {
		return true
	}
	return absInt16(a) < absInt16(b)
}

func absInt16(v int16) int16 {
	if v < 0 {
		return -v
	}
	return v
}

// Pick implements §4.11's full 6-step procedure.
func (p *Picker) Pick(s game.State, refMove *game.AdvancedMove) (game.AdvancedMove, error) {
	moves := game.LegalMoves(p.Rules, s)
	safe := p.safeMoves(s, moves)

	if trapping := p.findTrapCreatingMoves(p.Rules, s, safe); len(trapping) > 0 {
		choices := make([]game.AdvancedMove, len(trapping))
		for i, t := range trapping {
			choices[i] = t.move
		}
		return chooseAmong(choices, refMove, p.Shuffle), nil
	}

	if p.DB != nil {
		ranked, err := p.DB.RankMoves(s, safe, p.Policy)
		if err != nil {
			return game.AdvancedMove{}, err
		}
		if len(ranked) > 0 {
			best := make([]game.AdvancedMove, len(ranked))
			for i, rm := range ranked {
				best[i] = rm.Move
			}
			return chooseAmong(best, refMove, p.Shuffle), nil
		}
	}

	return chooseAmong(safe, refMove, p.Shuffle), nil
}

func chooseAmong(moves []game.AdvancedMove, refMove *game.AdvancedMove, shuffle bool) game.AdvancedMove {
	ranked := make([]pdb.RankedMove, len(moves))
	for i, m := range moves {
		ranked[i] = pdb.RankedMove{Move: m}
	}
	return pdb.Choose(ranked, refMove, shuffle)
}
