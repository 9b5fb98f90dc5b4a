package trapdb

import "github.com/sanmill-go/morrispdb/internal/game"

// KeyForState builds the MakeKey position key for s, mirroring
// perfect_trap_db.h's get_trap_mask/get_trap_wdl/get_trap_steps: WF/BF are
// forced to 0 once the position has left the placing phase, since the trap
// DB only distinguishes remaining-to-place counts during placing.
func KeyForState(s game.State) uint64 {
	wf, bf := s.WF, s.BF
	if s.Phase == game.Moving {
		wf, bf = 0, 0
	}
	return MakeKey(uint32(s.Board.White), uint32(s.Board.Black), uint8(s.SideToMove), uint8(wf), uint8(bf))
}
