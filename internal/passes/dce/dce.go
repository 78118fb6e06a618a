// Package dce removes instructions whose results are never used and blocks
// that cannot be reached from the function entry.
package dce

import (
	"errors"
	"fmt"

	"seoggi/internal/analysis"
	"seoggi/internal/diagnostics"
	"seoggi/internal/mir"
	"seoggi/internal/passes"
)

const Name = "dce"

// Pass is the dead code elimination pass.
type Pass struct {
	// MaxIterations bounds the per-function fixed-point loop; 0 means
	// iterate until nothing changes.
	MaxIterations int

	removedInstrs int
	removedBlocks int
}

func New(maxIterations int) *Pass {
	return &Pass{MaxIterations: maxIterations}
}

func (p *Pass) Name() string       { return Name }
func (p *Pass) Requires() []string { return nil }
func (p *Pass) Invalidates() []string {
	return []string{passes.CFGName, passes.DomTreeName, passes.LoopsName, passes.CallGraphName}
}

func (p *Pass) VerifySafety(ctx *passes.Context) error {
	if ctx.Checker == nil {
		return errors.New("dce: no safety checker")
	}
	if p.MaxIterations < 0 {
		return fmt.Errorf("dce: max iterations must not be negative, got %d", p.MaxIterations)
	}
	if ctx.Module != nil {
		if err := ctx.Checker.VerifyAll(ctx.Module); err != nil {
			return diagnostics.Wrap(diagnostics.MalformedIR, Name, err)
		}
	}
	return nil
}

func (p *Pass) RunOnModule(ctx *passes.Context, mod *mir.Module) (bool, error) {
	return passes.RunOnFunctions(ctx, mod, p)
}

// RunOnFunction alternates instruction and block removal until a round
// changes nothing.
func (p *Pass) RunOnFunction(ctx *passes.Context, fn *mir.Function) (bool, error) {
	modified := false
	for iter := 0; ; iter++ {
		if p.MaxIterations > 0 && iter >= p.MaxIterations {
			ctx.Warn(diagnostics.WarnIterationLimit, fn.Name, "no fixed point after %d iteration(s)", p.MaxIterations)
			break
		}

		instrs, err := p.removeDeadInstructions(ctx, fn)
		if err != nil {
			return modified, err
		}
		blocks, err := p.removeUnreachableBlocks(ctx, fn)
		if err != nil {
			return modified, err
		}
		if !instrs && !blocks {
			break
		}
		modified = true
	}
	return modified, nil
}

// Removed returns how many instructions and blocks the pass has deleted.
func (p *Pass) Removed() (instrs, blocks int) {
	return p.removedInstrs, p.removedBlocks
}

// isDead reports whether instr can be dropped without changing behavior:
// it has no critical effect, calls no critical function of mod, and is
// either a nop or defines an unused value.
func isDead(mod *mir.Module, ud *analysis.UseDef, instr mir.Instr) bool {
	if mir.IsCriticalIn(mod, instr) {
		return false
	}
	if _, ok := instr.(*mir.Nop); ok {
		return true
	}
	id := mir.Result(instr)
	return id != mir.InvalidValue && !ud.HasUsers(id)
}

type deadInstr struct {
	block *mir.Block
	instr mir.Instr
}

func (p *Pass) removeDeadInstructions(ctx *passes.Context, fn *mir.Function) (bool, error) {
	ud := analysis.BuildUseDef(fn)

	var dead []deadInstr
	for _, b := range fn.Blocks {
		for _, instr := range b.Instrs {
			if isDead(ctx.Module, ud, instr) {
				dead = append(dead, deadInstr{block: b, instr: instr})
			}
		}
	}

	for _, d := range dead {
		if err := verifySafeToRemove(ctx, d.instr); err != nil {
			return false, err.InFunction(fn.Name)
		}
		d.block.RemoveInstr(d.instr)
		ud.Forget(d.instr)
		p.removedInstrs++
		ctx.Log.Debugf("dce: fn %s: removed %s", fn.Name, mir.FormatInstr(d.instr))
	}
	return len(dead) > 0, nil
}

func verifySafeToRemove(ctx *passes.Context, instr mir.Instr) *diagnostics.PassError {
	if mir.IsCriticalIn(ctx.Module, instr) {
		return diagnostics.Errorf(diagnostics.UnsafeElimination, Name, "%q has critical side effects", mir.FormatInstr(instr))
	}
	if err := ctx.Checker.VerifyInstructionRemoval(ctx.Module, instr); err != nil {
		return diagnostics.Wrap(diagnostics.UnsafeElimination, Name, err)
	}
	return nil
}

func (p *Pass) removeUnreachableBlocks(ctx *passes.Context, fn *mir.Function) (bool, error) {
	reach := analysis.Reachable(fn)

	var dead []*mir.Block
	removed := make(map[mir.BlockID]bool)
	for _, b := range fn.Blocks {
		if !reach[b.ID] {
			dead = append(dead, b)
			removed[b.ID] = true
		}
	}
	if len(dead) == 0 {
		return false, nil
	}

	// Reachable follows handler edges, so a handler of a surviving block is
	// never in dead.
	for _, b := range dead {
		if err := verifySafeToRemoveBlock(ctx, b); err != nil {
			return false, err.InFunction(fn.Name)
		}
	}

	for _, b := range dead {
		fn.RemoveBlock(b.ID)
		p.removedBlocks++
		ctx.Log.Debugf("dce: fn %s: removed unreachable block b%d %s", fn.Name, b.ID, b.Name)
	}
	stripIncoming(fn, removed)
	return true, nil
}

func verifySafeToRemoveBlock(ctx *passes.Context, b *mir.Block) *diagnostics.PassError {
	for _, instr := range b.Instrs {
		if mir.IsCriticalIn(ctx.Module, instr) {
			return diagnostics.Errorf(diagnostics.UnsafeBlockElimination, Name,
				"unreachable block b%d contains %q, which has critical side effects", b.ID, mir.FormatInstr(instr))
		}
		if err := ctx.Checker.VerifyInstructionRemoval(ctx.Module, instr); err != nil {
			return diagnostics.Wrap(diagnostics.UnsafeBlockElimination, Name, err)
		}
	}
	return nil
}

// stripIncoming drops phi inputs that arrive from removed blocks.
func stripIncoming(fn *mir.Function, removed map[mir.BlockID]bool) {
	for _, b := range fn.Blocks {
		for _, instr := range b.Instrs {
			phi, ok := instr.(*mir.Phi)
			if !ok {
				continue
			}
			kept := phi.Incoming[:0]
			for _, in := range phi.Incoming {
				if !removed[in.Pred] {
					kept = append(kept, in)
				}
			}
			phi.Incoming = kept
		}
	}
}
