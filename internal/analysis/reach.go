package analysis

import "seoggi/internal/mir"

// Reachable returns the set of blocks reachable from the entry block,
// following branch edges and exception handler edges.
func Reachable(fn *mir.Function) map[mir.BlockID]bool {
	seen := make(map[mir.BlockID]bool, len(fn.Blocks))
	entry := fn.EntryBlock()
	if entry == nil {
		return seen
	}

	byID := make(map[mir.BlockID]*mir.Block, len(fn.Blocks))
	for _, b := range fn.Blocks {
		byID[b.ID] = b
	}

	work := []mir.BlockID{entry.ID}
	seen[entry.ID] = true
	for len(work) > 0 {
		id := work[len(work)-1]
		work = work[:len(work)-1]
		b := byID[id]
		if b == nil {
			continue
		}
		for _, s := range mir.Successors(b) {
			if !seen[s] {
				seen[s] = true
				work = append(work, s)
			}
		}
	}
	return seen
}
