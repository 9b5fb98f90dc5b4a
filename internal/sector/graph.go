package sector

import "github.com/sanmill-go/morrispdb/internal/board"

// Successors returns the sector ids reachable from u by one legal
// half-move, already negated to the "opponent to move" frame and
// deduplicated, grounded on graph_func/std_mora_graph_func/lask_graph_func
// in original_source/src/perfect/perfect_sector_graph.cpp.
//
// elimLoops, when true, drops u itself from the successor set (the original
// default); the builder never needs self-loops since it visits every sector
// exactly once regardless.
func Successors(v board.Variant, u Id, elimLoops bool) []Id {
	var raw []Id
	switch v {
	case board.Lasker:
		raw = laskGraphFunc(u)
	default:
		raw = stdMoraGraphFunc(u)
	}

	seen := make(map[Id]bool, len(raw))
	out := make([]Id, 0, len(raw))
	for _, s := range raw {
		if s.B+s.BF < 3 {
			continue // game already lost for the side now on move
		}
		neg := s.Negate()
		if elimLoops && neg == u {
			continue
		}
		if !seen[neg] {
			seen[neg] = true
			out = append(out, neg)
		}
	}
	return out
}

// stdMoraGraphFunc implements the Standard/Morabaraba transition rules:
// while WF > 0, either place a piece, or place-and-remove-by-mill; once
// WF == 0, only the removal transition remains.
func stdMoraGraphFunc(u Id) []Id {
	var out []Id
	if u.WF > 0 {
		out = append(out, Id{W: u.W + 1, B: u.B, WF: u.WF - 1, BF: u.BF})
		if u.B > 0 {
			out = append(out, Id{W: u.W + 1, B: u.B - 1, WF: u.WF - 1, BF: u.BF})
		}
	} else if u.B > 0 {
		out = append(out, Id{W: u.W, B: u.B - 1, WF: u.WF, BF: u.BF})
	}
	return out
}

// laskGraphFunc adds Lasker's slide transitions (identity on piece counts,
// or a slide that removes an opponent piece by mill) on top of the
// Standard/Morabaraba placement transitions.
func laskGraphFunc(u Id) []Id {
	out := stdMoraGraphFunc(u)
	if u.W != 0 {
		out = append(out, Id{W: u.W, B: u.B, WF: u.WF, BF: u.BF})
		if u.B > 0 {
			out = append(out, Id{W: u.W, B: u.B - 1, WF: u.WF, BF: u.BF})
		}
	}
	return out
}

// Graph is the full reachable-sector adjacency, built by a breadth-first
// walk from the initial position's sector, grounded on init_sector_graph()
// in perfect_sector_graph.cpp.
type Graph struct {
	Variant  board.Variant
	Forward  map[Id][]Id
	Reverse  map[Id][]Id
	ordered  []Id
}

// BuildGraph performs the BFS from Id{0,0,maxPieces,maxPieces} and returns
// every sector reachable under legal play.
func BuildGraph(v board.Variant, maxPieces int) *Graph {
	start := Id{W: 0, B: 0, WF: maxPieces, BF: maxPieces}
	g := &Graph{
		Variant: v,
		Forward: make(map[Id][]Id),
		Reverse: make(map[Id][]Id),
	}
	visited := map[Id]bool{start: true}
	queue := []Id{start}
	g.ordered = append(g.ordered, start)
	for len(queue) > 0 {
		u := queue[0]
		queue = queue[1:]
		succs := Successors(v, u, true)
		g.Forward[u] = succs
		for _, s := range succs {
			g.Reverse[s] = append(g.Reverse[s], u)
			if !visited[s] {
				visited[s] = true
				queue = append(queue, s)
				g.ordered = append(g.ordered, s)
			}
		}
	}
	return g
}

// Sectors returns every sector reachable from the initial position, in BFS
// discovery order (stable, used by the builder to distribute work).
func (g *Graph) Sectors() []Id {
	out := make([]Id, len(g.ordered))
	copy(out, g.ordered)
	return out
}
