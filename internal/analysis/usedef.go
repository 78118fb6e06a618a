// Package analysis computes derived facts about MIR functions and modules:
// use-def chains, reachability, control-flow graphs, dominators, loops and
// the call graph. Results are plain values rebuilt on demand.
package analysis

import (
	"seoggi/internal/mir"
)

// Def locates the definition of a value. Instr is nil for parameters.
type Def struct {
	Block *mir.Block
	Instr mir.Instr
}

// UseDef maps each value of a function to its definition and to the number
// of operand slots, in instructions and terminators, that read it.
type UseDef struct {
	defs map[mir.ValueID]Def
	uses map[mir.ValueID]int
}

// BuildUseDef scans fn once.
func BuildUseDef(fn *mir.Function) *UseDef {
	ud := &UseDef{
		defs: make(map[mir.ValueID]Def),
		uses: make(map[mir.ValueID]int),
	}
	for _, p := range fn.Params {
		ud.defs[p.ID] = Def{}
	}
	for _, b := range fn.Blocks {
		for _, instr := range b.Instrs {
			if id := mir.Result(instr); id != mir.InvalidValue {
				ud.defs[id] = Def{Block: b, Instr: instr}
			}
			for _, op := range mir.Operands(instr) {
				ud.uses[op]++
			}
		}
		if b.Term != nil {
			for _, op := range mir.TermOperands(b.Term) {
				ud.uses[op]++
			}
		}
	}
	return ud
}

// Uses returns how many operand slots read id.
func (ud *UseDef) Uses(id mir.ValueID) int {
	return ud.uses[id]
}

// HasUsers reports whether anything reads id.
func (ud *UseDef) HasUsers(id mir.ValueID) bool {
	return ud.uses[id] > 0
}

// Def returns the definition of id.
func (ud *UseDef) Def(id mir.ValueID) (Def, bool) {
	d, ok := ud.defs[id]
	return d, ok
}

// Forget updates the chains for the removal of instr: its operands lose one
// use each and its result is no longer defined.
func (ud *UseDef) Forget(instr mir.Instr) {
	for _, op := range mir.Operands(instr) {
		if ud.uses[op] > 0 {
			ud.uses[op]--
		}
	}
	if id := mir.Result(instr); id != mir.InvalidValue {
		delete(ud.defs, id)
	}
}
