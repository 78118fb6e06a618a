// Package safety holds the checks every pass consults before and after it
// changes the IR.
package safety

import (
	"errors"
	"fmt"

	"seoggi/internal/mir"
	"seoggi/internal/types"
)

// Checker validates IR invariants on behalf of the passes.
type Checker interface {
	// VerifyAll checks the whole module after a pass modified it.
	VerifyAll(mod *mir.Module) error
	// VerifyInstructionRemoval checks that instr may be deleted from a
	// function of mod.
	VerifyInstructionRemoval(mod *mir.Module, instr mir.Instr) error
	// VerifyFunctionInlining checks that fn may be copied into a caller.
	VerifyFunctionInlining(fn *mir.Function) error
	// VerifyConstantValue checks a constant produced by folding.
	VerifyConstantValue(c *mir.Const) error
}

// Default is the checker used when none is configured: structural
// verification plus memory-access rules.
type Default struct{}

// New returns the default checker.
func New() *Default {
	return &Default{}
}

func (d *Default) VerifyAll(mod *mir.Module) error {
	errs := []error{mir.Verify(mod)}
	if mod != nil {
		for _, fn := range mod.Functions {
			errs = append(errs, verifyMemory(fn)...)
		}
	}
	return errors.Join(errs...)
}

func (d *Default) VerifyInstructionRemoval(mod *mir.Module, instr mir.Instr) error {
	if mir.HasCriticalSideEffects(instr) {
		return fmt.Errorf("%q has critical side effects", mir.FormatInstr(instr))
	}
	if mir.IsCriticalIn(mod, instr) {
		return fmt.Errorf("%q calls %s, which has critical side effects", mir.FormatInstr(instr), instr.(*mir.Call).Target)
	}
	return nil
}

func (d *Default) VerifyFunctionInlining(fn *mir.Function) error {
	if len(fn.Blocks) == 0 {
		return fmt.Errorf("fn %s has no body", fn.Name)
	}
	if errs := mir.VerifyFunction(fn); len(errs) > 0 {
		return errors.Join(errs...)
	}
	return errors.Join(verifyMemory(fn)...)
}

func (d *Default) VerifyConstantValue(c *mir.Const) error {
	if c.Type == nil {
		return errors.New("constant without a type")
	}
	if !types.IsInteger(c.Type) && !types.IsBool(c.Type) {
		return fmt.Errorf("cannot materialize a %s constant", c.Type)
	}
	if _, err := mir.ConstBits(c); err != nil {
		return err
	}
	return nil
}

// verifyMemory checks that every load and store goes through a pointer.
func verifyMemory(fn *mir.Function) []error {
	typeOf := make(map[mir.ValueID]types.SemType)
	for _, p := range fn.Params {
		typeOf[p.ID] = p.Type
	}
	for _, b := range fn.Blocks {
		for _, instr := range b.Instrs {
			if id := mir.Result(instr); id != mir.InvalidValue {
				typeOf[id] = mir.ResultType(instr)
			}
		}
	}

	var errs []error
	check := func(b *mir.Block, instr mir.Instr, addr mir.ValueID) {
		t, ok := typeOf[addr]
		if ok && !types.IsPointer(t) {
			errs = append(errs, &mir.VerifyError{
				Function: fn.Name,
				Block:    b.ID,
				Message:  fmt.Sprintf("%q accesses memory through non-pointer %s", mir.FormatInstr(instr), t),
			})
		}
	}
	for _, b := range fn.Blocks {
		for _, instr := range b.Instrs {
			switch i := instr.(type) {
			case *mir.Load:
				check(b, instr, i.Addr)
			case *mir.Store:
				check(b, instr, i.Addr)
			}
		}
	}
	return errs
}
