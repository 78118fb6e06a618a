package analysis

import "seoggi/internal/mir"

// CFG is the control-flow graph of one function. Handler edges count as
// ordinary successor edges.
type CFG struct {
	Function *mir.Function
	Succs    map[mir.BlockID][]mir.BlockID
	Preds    map[mir.BlockID][]mir.BlockID
	// RPO lists the reachable blocks in reverse post-order from the entry.
	RPO []mir.BlockID

	rpoIndex map[mir.BlockID]int
}

// BuildCFG derives the graph from the blocks' terminators.
func BuildCFG(fn *mir.Function) *CFG {
	g := &CFG{
		Function: fn,
		Succs:    make(map[mir.BlockID][]mir.BlockID, len(fn.Blocks)),
		Preds:    make(map[mir.BlockID][]mir.BlockID, len(fn.Blocks)),
		rpoIndex: make(map[mir.BlockID]int, len(fn.Blocks)),
	}
	for _, b := range fn.Blocks {
		succs := mir.Successors(b)
		g.Succs[b.ID] = succs
		for _, s := range succs {
			g.Preds[s] = append(g.Preds[s], b.ID)
		}
	}

	entry := fn.EntryBlock()
	if entry == nil {
		return g
	}

	// Iterative DFS producing post-order.
	type frame struct {
		id   mir.BlockID
		next int
	}
	visited := map[mir.BlockID]bool{entry.ID: true}
	stack := []frame{{id: entry.ID}}
	var post []mir.BlockID
	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		succs := g.Succs[top.id]
		if top.next < len(succs) {
			s := succs[top.next]
			top.next++
			if !visited[s] && fn.Block(s) != nil {
				visited[s] = true
				stack = append(stack, frame{id: s})
			}
			continue
		}
		post = append(post, top.id)
		stack = stack[:len(stack)-1]
	}

	g.RPO = make([]mir.BlockID, len(post))
	for i, id := range post {
		g.RPO[len(post)-1-i] = id
	}
	for i, id := range g.RPO {
		g.rpoIndex[id] = i
	}
	return g
}

// Reachable reports whether id was reached from the entry.
func (g *CFG) Reachable(id mir.BlockID) bool {
	_, ok := g.rpoIndex[id]
	return ok
}

// RPOIndex returns the position of id in RPO, or -1 if unreachable.
func (g *CFG) RPOIndex(id mir.BlockID) int {
	if i, ok := g.rpoIndex[id]; ok {
		return i
	}
	return -1
}
