package sector

// WU is the "arena of structs" representation spec.md §9 prescribes for the
// cyclic, pointer-heavy sector/parent/twin relation: every sector is
// addressed by its Id (a plain value), never by pointer, and twin sectors
// alias the same WU rather than needing inheritance or a union type.
// Grounded on the `wu`/`wus` arena in
// original_source/src/perfect/perfect_sector_graph.cpp's init_wu_graph().
type WU struct {
	ID         Id
	ChildCount int
	Parents    []Id
	IsTwine    bool
}

// BuildWUs constructs one WU per sector in g, wiring parents from the
// reverse graph and flagging twine pairs (sectors whose successor set
// contains their own negation, confirming genuine pairing rather than
// transience).
func BuildWUs(g *Graph) map[Id]*WU {
	wus := make(map[Id]*WU, len(g.ordered))
	for _, id := range g.ordered {
		wus[id] = &WU{ID: id, ChildCount: len(g.Forward[id])}
	}
	for _, id := range g.ordered {
		w := wus[id]
		for _, parent := range g.Reverse[id] {
			w.Parents = append(w.Parents, parent)
		}
		for _, succ := range g.Forward[id] {
			if succ == id.Negate() && !id.IsTwin() {
				w.IsTwine = true
			}
		}
	}
	return wus
}
