package mir

import (
	"errors"
	"fmt"

	"seoggi/internal/types"
)

// VerifyError describes one structural defect found by Verify.
type VerifyError struct {
	Function string
	Block    BlockID
	Message  string
}

func (e *VerifyError) Error() string {
	switch {
	case e.Function == "":
		return e.Message
	case e.Block == InvalidBlock:
		return fmt.Sprintf("fn %s: %s", e.Function, e.Message)
	default:
		return fmt.Sprintf("fn %s, %s: %s", e.Function, formatBlock(e.Block), e.Message)
	}
}

// Verify checks the structural invariants of a module: unique function
// names, well-formed blocks, typed single definitions, known call effects,
// defined operands, valid branch targets and phi predecessors. All defects are returned joined.
func Verify(mod *Module) error {
	if mod == nil {
		return errors.New("nil module")
	}
	var errs []error
	seen := make(map[string]bool, len(mod.Functions))
	for _, fn := range mod.Functions {
		if fn.Name == "" {
			errs = append(errs, &VerifyError{Message: "function without a name"})
		} else if seen[fn.Name] {
			errs = append(errs, &VerifyError{Message: fmt.Sprintf("duplicate function %q", fn.Name)})
		}
		seen[fn.Name] = true
		errs = append(errs, VerifyFunction(fn)...)
	}
	return errors.Join(errs...)
}

// VerifyFunction checks a single function and returns every defect found.
// A function without blocks is an external declaration and always valid.
func VerifyFunction(fn *Function) []error {
	if len(fn.Blocks) == 0 {
		return nil
	}
	var errs []error
	report := func(block BlockID, format string, args ...any) {
		errs = append(errs, &VerifyError{Function: fn.Name, Block: block, Message: fmt.Sprintf(format, args...)})
	}

	blocks := make(map[BlockID]*Block, len(fn.Blocks))
	names := make(map[string]bool, len(fn.Blocks))
	for _, b := range fn.Blocks {
		if b.ID == InvalidBlock {
			report(InvalidBlock, "block %q has an invalid id", b.Name)
			continue
		}
		if _, dup := blocks[b.ID]; dup {
			report(b.ID, "duplicate block id")
		}
		blocks[b.ID] = b
		if b.Name != "" {
			if names[b.Name] {
				report(b.ID, "duplicate block name %q", b.Name)
			}
			names[b.Name] = true
		}
	}
	if fn.Entry != InvalidBlock && blocks[fn.Entry] == nil {
		report(InvalidBlock, "entry block %s does not exist", formatBlock(fn.Entry))
	}

	defined := make(map[ValueID]bool)
	define := func(block BlockID, id ValueID) {
		if id == InvalidValue {
			return
		}
		if defined[id] {
			report(block, "value %s defined more than once", formatValue(id))
		}
		defined[id] = true
	}
	for _, p := range fn.Params {
		if p.ID == InvalidValue {
			report(InvalidBlock, "parameter %q has an invalid id", p.Name)
		}
		define(InvalidBlock, p.ID)
	}
	for _, b := range fn.Blocks {
		for _, instr := range b.Instrs {
			id := Result(instr)
			call, isCall := instr.(*Call)
			if id == InvalidValue && ResultType(instr) != nil && !isCall {
				report(b.ID, "%q has no result", FormatInstr(instr))
			}
			if id != InvalidValue && ResultType(instr) == nil {
				report(b.ID, "%q has no type", FormatInstr(instr))
			}
			if isCall && (call.Effect < EffectPure || call.Effect > EffectCritical) {
				report(b.ID, "call to %s has invalid effect %d", call.Target, int(call.Effect))
			}
			define(b.ID, id)
		}
	}

	preds := make(map[BlockID]map[BlockID]bool, len(fn.Blocks))
	for _, b := range fn.Blocks {
		for _, s := range Successors(b) {
			if preds[s] == nil {
				preds[s] = make(map[BlockID]bool)
			}
			preds[s][b.ID] = true
		}
	}

	for _, b := range fn.Blocks {
		seenNonPhi := false
		for _, instr := range b.Instrs {
			if phi, ok := instr.(*Phi); ok {
				if seenNonPhi {
					report(b.ID, "phi %s is not at the start of the block", formatValue(phi.Result))
				}
				for _, in := range phi.Incoming {
					if !preds[b.ID][in.Pred] {
						report(b.ID, "phi %s has incoming from %s which is not a predecessor", formatValue(phi.Result), formatBlock(in.Pred))
					}
				}
			} else {
				seenNonPhi = true
			}
			for _, op := range Operands(instr) {
				if !defined[op] {
					report(b.ID, "%q uses undefined value %s", FormatInstr(instr), formatValue(op))
				}
			}
		}

		if b.Term == nil {
			report(b.ID, "block has no terminator")
			continue
		}
		for _, op := range TermOperands(b.Term) {
			if !defined[op] {
				report(b.ID, "%q uses undefined value %s", FormatTerm(b.Term), formatValue(op))
			}
		}
		for _, s := range Successors(b) {
			if blocks[s] == nil {
				report(b.ID, "branch to missing block %s", formatBlock(s))
			}
		}
		if ret, ok := b.Term.(*Return); ok {
			void := fn.Return == nil || fn.Return.Equals(types.TypeVoid)
			if void && ret.HasValue {
				report(b.ID, "void function returns a value")
			}
			if !void && !ret.HasValue {
				report(b.ID, "missing return value of type %s", formatType(fn.Return))
			}
		}
	}
	return errs
}
