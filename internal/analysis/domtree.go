package analysis

import "seoggi/internal/mir"

// DomTree holds immediate dominators of the reachable blocks of a function.
type DomTree struct {
	cfg  *CFG
	idom map[mir.BlockID]mir.BlockID
}

// BuildDomTree computes dominators with the iterative algorithm of Cooper,
// Harvey and Kennedy over the CFG's reverse post-order.
func BuildDomTree(g *CFG) *DomTree {
	dt := &DomTree{cfg: g, idom: make(map[mir.BlockID]mir.BlockID, len(g.RPO))}
	if len(g.RPO) == 0 {
		return dt
	}
	entry := g.RPO[0]
	dt.idom[entry] = entry

	for changed := true; changed; {
		changed = false
		for _, b := range g.RPO[1:] {
			newIdom := mir.InvalidBlock
			for _, p := range g.Preds[b] {
				if _, done := dt.idom[p]; !done {
					continue
				}
				if newIdom == mir.InvalidBlock {
					newIdom = p
				} else {
					newIdom = dt.intersect(p, newIdom)
				}
			}
			if newIdom != mir.InvalidBlock && dt.idom[b] != newIdom {
				dt.idom[b] = newIdom
				changed = true
			}
		}
	}
	return dt
}

func (dt *DomTree) intersect(a, b mir.BlockID) mir.BlockID {
	for a != b {
		for dt.cfg.RPOIndex(a) > dt.cfg.RPOIndex(b) {
			a = dt.idom[a]
		}
		for dt.cfg.RPOIndex(b) > dt.cfg.RPOIndex(a) {
			b = dt.idom[b]
		}
	}
	return a
}

// IDom returns the immediate dominator of id. The entry block and
// unreachable blocks have none.
func (dt *DomTree) IDom(id mir.BlockID) (mir.BlockID, bool) {
	d, ok := dt.idom[id]
	if !ok || d == id {
		return mir.InvalidBlock, false
	}
	return d, true
}

// Dominates reports whether a dominates b. Every reachable block dominates
// itself.
func (dt *DomTree) Dominates(a, b mir.BlockID) bool {
	if _, ok := dt.idom[b]; !ok {
		return false
	}
	for {
		if a == b {
			return true
		}
		next := dt.idom[b]
		if next == b {
			return false
		}
		b = next
	}
}

// Children returns the blocks immediately dominated by id, in RPO.
func (dt *DomTree) Children(id mir.BlockID) []mir.BlockID {
	var out []mir.BlockID
	for _, b := range dt.cfg.RPO {
		if d, ok := dt.IDom(b); ok && d == id {
			out = append(out, b)
		}
	}
	return out
}
