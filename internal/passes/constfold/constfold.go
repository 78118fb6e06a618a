// Package constfold replaces arithmetic, comparisons and casts whose
// operands are all constants with the constant they evaluate to.
package constfold

import (
	"errors"

	"seoggi/internal/analysis"
	"seoggi/internal/diagnostics"
	"seoggi/internal/mir"
	"seoggi/internal/passes"
)

const Name = "constfold"

// Pass is the constant folding pass. Folded constants keep the result id
// of the instruction they replace, so users need no rewriting.
type Pass struct {
	folded int
}

func New() *Pass {
	return &Pass{}
}

func (p *Pass) Name() string          { return Name }
func (p *Pass) Requires() []string    { return nil }
func (p *Pass) Invalidates() []string { return nil }

func (p *Pass) VerifySafety(ctx *passes.Context) error {
	if ctx.Checker == nil {
		return errors.New("constfold: no safety checker")
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

type candidate struct {
	instr mir.Instr
	repl  *mir.Const
}

// RunOnFunction visits blocks in reverse post-order, so a constant produced
// by one fold is visible to every instruction it dominates in the same run.
func (p *Pass) RunOnFunction(ctx *passes.Context, fn *mir.Function) (bool, error) {
	consts := make(map[mir.ValueID]*mir.Const)
	for _, b := range fn.Blocks {
		for _, instr := range b.Instrs {
			if c, ok := instr.(*mir.Const); ok {
				consts[c.Result] = c
			}
		}
	}

	modified := false
	for _, b := range blockOrder(fn) {
		var candidates []candidate
		for _, instr := range b.Instrs {
			repl, ok := fold(instr, consts)
			if !ok {
				continue
			}
			candidates = append(candidates, candidate{instr: instr, repl: repl})
			consts[repl.Result] = repl
		}

		for _, c := range candidates {
			if err := verifySafeToFold(ctx, c.instr, c.repl); err != nil {
				return modified, err.InFunction(fn.Name)
			}
			b.ReplaceInstr(c.instr, c.repl)
			p.folded++
			modified = true
			ctx.Log.Debugf("constfold: fn %s: %s => %s", fn.Name, mir.FormatInstr(c.instr), mir.FormatInstr(c.repl))
		}
	}
	return modified, nil
}

// Folded returns the number of instructions replaced so far.
func (p *Pass) Folded() int {
	return p.folded
}

// blockOrder is RPO followed by the unreachable blocks in layout order.
func blockOrder(fn *mir.Function) []*mir.Block {
	g := analysis.BuildCFG(fn)
	order := make([]*mir.Block, 0, len(fn.Blocks))
	for _, id := range g.RPO {
		order = append(order, fn.Block(id))
	}
	for _, b := range fn.Blocks {
		if !g.Reachable(b.ID) {
			order = append(order, b)
		}
	}
	return order
}

func verifySafeToFold(ctx *passes.Context, instr mir.Instr, repl *mir.Const) *diagnostics.PassError {
	if mir.HasCriticalSideEffects(instr) {
		return diagnostics.Errorf(diagnostics.UnsafeFolding, Name, "%q has critical side effects", mir.FormatInstr(instr))
	}
	declared := mir.ResultType(instr)
	if declared == nil || !repl.Type.Equals(declared) {
		return diagnostics.Errorf(diagnostics.TypeMismatch, Name,
			"%q declares %s but folds to a %s constant", mir.FormatInstr(instr), declared, repl.Type)
	}
	if err := ctx.Checker.VerifyConstantValue(repl); err != nil {
		return diagnostics.Wrap(diagnostics.UnsafeFolding, Name, err)
	}
	return nil
}
