package inline

import (
	"fmt"

	"seoggi/internal/mir"
)

// inlineCall splices a copy of callee into fn in place of the call at
// b.Instrs[idx] and returns the block holding the rest of b.
//
//	Before:  b: [pre..., call, post...] term
//	After:   b: [pre...] br entry'
//	         callee blocks' (returns become br exit)
//	         exit: [phi(call result), post...] term
func inlineCall(fn *mir.Function, b *mir.Block, idx int, call *mir.Call, callee *mir.Function) *mir.Block {
	exit := &mir.Block{
		ID:      fn.NewBlockID(),
		Instrs:  append([]mir.Instr(nil), b.Instrs[idx+1:]...),
		Term:    b.Term,
		Handler: b.Handler,
	}
	exit.Name = fmt.Sprintf("%s.exit.%d", callee.Name, exit.ID)
	b.Instrs = b.Instrs[:idx]

	values := make(map[mir.ValueID]mir.ValueID)
	for i, param := range callee.Params {
		values[param.ID] = call.Args[i]
	}
	blocks := make(map[mir.BlockID]mir.BlockID, len(callee.Blocks))
	for _, cb := range callee.Blocks {
		blocks[cb.ID] = fn.NewBlockID()
		for _, instr := range cb.Instrs {
			if id := mir.Result(instr); id != mir.InvalidValue {
				values[id] = fn.NewValueID()
			}
		}
	}
	mapValue := func(id mir.ValueID) mir.ValueID {
		if v, ok := values[id]; ok {
			return v
		}
		return id
	}
	mapBlock := func(id mir.BlockID) mir.BlockID {
		if v, ok := blocks[id]; ok {
			return v
		}
		return id
	}

	var incoming []mir.PhiIncoming
	cloned := make([]*mir.Block, 0, len(callee.Blocks)+1)
	for _, cb := range callee.Blocks {
		nb := mir.CloneBlock(cb)
		nb.ID = blocks[cb.ID]
		if cb.Name != "" {
			nb.Name = fmt.Sprintf("%s.%s.%d", callee.Name, cb.Name, nb.ID)
		}
		if nb.Handler != mir.InvalidBlock {
			nb.Handler = mapBlock(nb.Handler)
		} else {
			nb.Handler = b.Handler
		}

		for _, instr := range nb.Instrs {
			mir.SetResult(instr, mapValue(mir.Result(instr)))
			mir.RewriteOperands(instr, mapValue)
			if phi, ok := instr.(*mir.Phi); ok {
				for k := range phi.Incoming {
					phi.Incoming[k].Pred = mapBlock(phi.Incoming[k].Pred)
				}
			}
		}

		if ret, ok := nb.Term.(*mir.Return); ok {
			if ret.HasValue {
				incoming = append(incoming, mir.PhiIncoming{Pred: nb.ID, Value: mapValue(ret.Value)})
			}
			nb.Term = &mir.Br{Target: exit.ID}
		} else if nb.Term != nil {
			mir.RewriteTermOperands(nb.Term, mapValue)
			mir.RewriteTargets(nb.Term, mapBlock)
		}
		cloned = append(cloned, nb)
	}

	if call.Result != mir.InvalidValue {
		phi := &mir.Phi{Result: call.Result, Type: call.Type, Incoming: incoming}
		exit.Instrs = append([]mir.Instr{phi}, exit.Instrs...)
	}

	// Former successors of b are now entered from exit.
	for _, s := range mir.Successors(&mir.Block{Term: exit.Term}) {
		succ := fn.Block(s)
		if succ == nil {
			continue
		}
		for _, instr := range succ.Instrs {
			phi, ok := instr.(*mir.Phi)
			if !ok {
				continue
			}
			for k := range phi.Incoming {
				if phi.Incoming[k].Pred == b.ID {
					phi.Incoming[k].Pred = exit.ID
				}
			}
		}
	}

	b.Term = &mir.Br{Target: blocks[callee.EntryID()]}
	if callee.MayThrow {
		fn.MayThrow = true
	}
	fn.InsertBlocksAfter(b.ID, append(cloned, exit)...)
	return exit
}
