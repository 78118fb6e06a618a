package analysis

import "seoggi/internal/mir"

// CallGraph records direct calls between the functions of a module and
// their strongly connected components. Nodes are indexed by declaration
// order; calls to names not defined in the module are ignored.
type CallGraph struct {
	funcs []*mir.Function
	index map[string]int
	edges [][]int

	sccs      [][]int
	sccOf     []int
	recursive []bool
}

// BuildCallGraph collects call edges and partitions the module into SCCs.
func BuildCallGraph(mod *mir.Module) *CallGraph {
	n := len(mod.Functions)
	cg := &CallGraph{
		funcs:     mod.Functions,
		index:     make(map[string]int, n),
		edges:     make([][]int, n),
		sccOf:     make([]int, n),
		recursive: make([]bool, n),
	}
	for i, fn := range mod.Functions {
		cg.index[fn.Name] = i
	}

	for i, fn := range mod.Functions {
		seen := make(map[int]bool)
		for _, b := range fn.Blocks {
			for _, instr := range b.Instrs {
				call, ok := instr.(*mir.Call)
				if !ok {
					continue
				}
				j, ok := cg.index[call.Target]
				if !ok || seen[j] {
					continue
				}
				seen[j] = true
				cg.edges[i] = append(cg.edges[i], j)
			}
		}
	}

	cg.tarjan()
	return cg
}

// tarjan finds SCCs without recursion: an explicit frame stack replaces the
// call stack so deep call chains cannot exhaust it.
func (cg *CallGraph) tarjan() {
	const unvisited = -1
	n := len(cg.funcs)
	index := make([]int, n)
	low := make([]int, n)
	onStack := make([]bool, n)
	for i := range index {
		index[i] = unvisited
	}

	type frame struct {
		v    int
		next int
	}
	var (
		counter int
		stack   []int
		work    []frame
	)
	visit := func(v int) {
		index[v] = counter
		low[v] = counter
		counter++
		stack = append(stack, v)
		onStack[v] = true
		work = append(work, frame{v: v})
	}

	for root := 0; root < n; root++ {
		if index[root] != unvisited {
			continue
		}
		visit(root)
		for len(work) > 0 {
			top := &work[len(work)-1]
			v := top.v
			if top.next < len(cg.edges[v]) {
				w := cg.edges[v][top.next]
				top.next++
				if index[w] == unvisited {
					visit(w)
				} else if onStack[w] && index[w] < low[v] {
					low[v] = index[w]
				}
				continue
			}

			work = work[:len(work)-1]
			if len(work) > 0 {
				parent := work[len(work)-1].v
				if low[v] < low[parent] {
					low[parent] = low[v]
				}
			}
			if low[v] != index[v] {
				continue
			}

			id := len(cg.sccs)
			var scc []int
			for {
				w := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onStack[w] = false
				cg.sccOf[w] = id
				scc = append(scc, w)
				if w == v {
					break
				}
			}
			cg.sccs = append(cg.sccs, scc)
			if len(scc) > 1 {
				for _, w := range scc {
					cg.recursive[w] = true
				}
			} else if cg.callsSelf(v) {
				cg.recursive[v] = true
			}
		}
	}
}

func (cg *CallGraph) callsSelf(v int) bool {
	for _, w := range cg.edges[v] {
		if w == v {
			return true
		}
	}
	return false
}

// IsRecursive reports whether name can reach itself through calls.
// Unknown names are not recursive.
func (cg *CallGraph) IsRecursive(name string) bool {
	i, ok := cg.index[name]
	return ok && cg.recursive[i]
}

// Callees returns the distinct functions name calls, in call order.
func (cg *CallGraph) Callees(name string) []string {
	i, ok := cg.index[name]
	if !ok {
		return nil
	}
	out := make([]string, 0, len(cg.edges[i]))
	for _, j := range cg.edges[i] {
		out = append(out, cg.funcs[j].Name)
	}
	return out
}

// Function returns the function node for name.
func (cg *CallGraph) Function(name string) *mir.Function {
	if i, ok := cg.index[name]; ok {
		return cg.funcs[i]
	}
	return nil
}

// SCCs returns the components in reverse topological order: a component
// appears after every component it calls into.
func (cg *CallGraph) SCCs() [][]string {
	out := make([][]string, 0, len(cg.sccs))
	for _, scc := range cg.sccs {
		names := make([]string, 0, len(scc))
		for _, v := range scc {
			names = append(names, cg.funcs[v].Name)
		}
		out = append(out, names)
	}
	return out
}

// SameSCC reports whether a and b belong to the same component.
func (cg *CallGraph) SameSCC(a, b string) bool {
	i, ok1 := cg.index[a]
	j, ok2 := cg.index[b]
	return ok1 && ok2 && cg.sccOf[i] == cg.sccOf[j]
}
