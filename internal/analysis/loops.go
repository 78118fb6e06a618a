package analysis

import (
	"sort"

	"seoggi/internal/mir"
)

// Loop is a natural loop: a header and every block that can reach one of
// its latches without passing through the header.
type Loop struct {
	Header  mir.BlockID
	Latches []mir.BlockID
	Blocks  map[mir.BlockID]bool
}

// Contains reports whether id is part of the loop.
func (l *Loop) Contains(id mir.BlockID) bool {
	return l.Blocks[id]
}

// LoopInfo lists the natural loops of a function ordered by header RPO.
type LoopInfo struct {
	Loops []*Loop
}

// FindLoops finds back edges (tail -> header where header dominates tail)
// and grows a natural loop for each header.
func FindLoops(g *CFG, dt *DomTree) *LoopInfo {
	byHeader := make(map[mir.BlockID]*Loop)
	for _, tail := range g.RPO {
		for _, head := range g.Succs[tail] {
			if !dt.Dominates(head, tail) {
				continue
			}
			loop := byHeader[head]
			if loop == nil {
				loop = &Loop{Header: head, Blocks: map[mir.BlockID]bool{head: true}}
				byHeader[head] = loop
			}
			loop.Latches = append(loop.Latches, tail)

			work := []mir.BlockID{tail}
			for len(work) > 0 {
				id := work[len(work)-1]
				work = work[:len(work)-1]
				if loop.Blocks[id] {
					continue
				}
				loop.Blocks[id] = true
				for _, p := range g.Preds[id] {
					if g.Reachable(p) {
						work = append(work, p)
					}
				}
			}
		}
	}

	info := &LoopInfo{Loops: make([]*Loop, 0, len(byHeader))}
	for _, loop := range byHeader {
		info.Loops = append(info.Loops, loop)
	}
	sort.Slice(info.Loops, func(i, j int) bool {
		return g.RPOIndex(info.Loops[i].Header) < g.RPOIndex(info.Loops[j].Header)
	})
	return info
}

// Innermost returns the smallest loop containing id, or nil.
func (li *LoopInfo) Innermost(id mir.BlockID) *Loop {
	var best *Loop
	for _, loop := range li.Loops {
		if loop.Contains(id) && (best == nil || len(loop.Blocks) < len(best.Blocks)) {
			best = loop
		}
	}
	return best
}

// Depth returns the number of loops containing id.
func (li *LoopInfo) Depth(id mir.BlockID) int {
	n := 0
	for _, loop := range li.Loops {
		if loop.Contains(id) {
			n++
		}
	}
	return n
}
