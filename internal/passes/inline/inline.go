// Package inline replaces calls to small, non-recursive functions with a
// copy of the callee's body.
package inline

import (
	"errors"
	"fmt"

	"seoggi/internal/analysis"
	"seoggi/internal/diagnostics"
	"seoggi/internal/mir"
	"seoggi/internal/passes"
)

const Name = "inline"

// DefaultSizeThreshold is the largest callee, in instructions, inlined when
// no threshold is configured.
const DefaultSizeThreshold = 32

// Pass is the function inlining pass.
type Pass struct {
	// SizeThreshold is the largest callee size that is inlined.
	SizeThreshold int
	// ExceptionsEnabled allows inlining callees that may throw.
	ExceptionsEnabled bool

	inlined int
}

func New(sizeThreshold int, exceptionsEnabled bool) *Pass {
	return &Pass{SizeThreshold: sizeThreshold, ExceptionsEnabled: exceptionsEnabled}
}

func (p *Pass) Name() string { return Name }

func (p *Pass) Requires() []string {
	return []string{passes.DomTreeName, passes.CallGraphName}
}

func (p *Pass) Invalidates() []string {
	return []string{passes.CFGName, passes.DomTreeName, passes.LoopsName, passes.CallGraphName}
}

func (p *Pass) VerifySafety(ctx *passes.Context) error {
	if ctx.Checker == nil {
		return errors.New("inline: no safety checker")
	}
	if p.SizeThreshold < 0 {
		return fmt.Errorf("inline: size threshold must not be negative, got %d", p.SizeThreshold)
	}
	if ctx.Module != nil {
		if err := ctx.Checker.VerifyAll(ctx.Module); err != nil {
			return diagnostics.Wrap(diagnostics.MalformedIR, Name, err)
		}
	}
	return nil
}

// Inlined returns the number of call sites inlined so far.
func (p *Pass) Inlined() int {
	return p.inlined
}

func (p *Pass) RunOnModule(ctx *passes.Context, mod *mir.Module) (bool, error) {
	return passes.RunOnFunctions(ctx, mod, p)
}

// RunOnFunction inlines eligible calls in fn. Blocks copied in from a
// callee are not scanned again in the same run.
func (p *Pass) RunOnFunction(ctx *passes.Context, fn *mir.Function) (bool, error) {
	cg := ctx.CallGraph()
	dt := ctx.DomTree(fn)

	entry := fn.EntryID()
	live := make(map[mir.BlockID]bool, len(fn.Blocks))
	for _, b := range fn.Blocks {
		if dt.Dominates(entry, b.ID) {
			live[b.ID] = true
		}
	}

	modified := false
	for bi := 0; bi < len(fn.Blocks); bi++ {
		b := fn.Blocks[bi]
		if !live[b.ID] {
			continue
		}
		for ii, instr := range b.Instrs {
			call, ok := instr.(*mir.Call)
			if !ok {
				continue
			}
			callee := ctx.Module.Function(call.Target)
			if callee == nil || callee == fn || !compatible(call, callee) {
				continue
			}
			if len(callee.Blocks) == 0 {
				continue
			}
			if reason := p.ineligible(cg, callee); reason != "" {
				ctx.Warn(diagnostics.WarnInlineIneligible, fn.Name, "not inlining call to %s: %s", callee.Name, reason)
				continue
			}
			if err := p.verifySafeToInline(ctx, callee); err != nil {
				return modified, err.InFunction(fn.Name)
			}

			exit := inlineCall(fn, b, ii, call, callee)
			live[exit.ID] = true
			p.inlined++
			modified = true
			ctx.Log.Debugf("inline: fn %s: inlined %s", fn.Name, callee.Name)

			// Continue with the rest of the split block.
			bi = fn.BlockIndex(exit.ID) - 1
			break
		}
	}
	return modified, nil
}

// ShouldInline reports whether callee is an inline candidate: it is not
// recursive, is no larger than the size threshold and performs no unsafe
// operation.
func (p *Pass) ShouldInline(cg *analysis.CallGraph, callee *mir.Function) bool {
	return p.ineligible(cg, callee) == ""
}

// ineligible names the reason callee cannot be inlined, or returns "".
func (p *Pass) ineligible(cg *analysis.CallGraph, callee *mir.Function) string {
	switch {
	case len(callee.Blocks) == 0:
		return "external declaration"
	case cg.IsRecursive(callee.Name):
		return "recursive"
	case callee.Size() > p.SizeThreshold:
		return fmt.Sprintf("size %d exceeds threshold %d", callee.Size(), p.SizeThreshold)
	case hasUnsafeOperations(callee):
		return "unsafe operations"
	}
	return ""
}

func hasUnsafeOperations(fn *mir.Function) bool {
	if fn.HasUnsafeOperations {
		return true
	}
	for _, b := range fn.Blocks {
		for _, instr := range b.Instrs {
			if mir.IsUnsafe(instr) {
				return true
			}
		}
	}
	return false
}

// compatible checks that the call site matches the callee's signature.
func compatible(call *mir.Call, callee *mir.Function) bool {
	if len(call.Args) != len(callee.Params) {
		return false
	}
	if call.Result == mir.InvalidValue {
		return true
	}
	return callee.Return != nil && call.Type != nil && callee.Return.Equals(call.Type)
}

func (p *Pass) verifySafeToInline(ctx *passes.Context, callee *mir.Function) *diagnostics.PassError {
	if callee.HasCriticalSideEffects {
		return diagnostics.Errorf(diagnostics.UnsafeInlining, Name, "callee %s has critical side effects", callee.Name)
	}
	if callee.MayThrow && !p.ExceptionsEnabled {
		return diagnostics.Errorf(diagnostics.UnsafeExceptionHandling, Name, "callee %s may throw while exceptions are disabled", callee.Name)
	}
	if err := ctx.Checker.VerifyFunctionInlining(callee); err != nil {
		return diagnostics.Wrap(diagnostics.UnsafeInlining, Name, err)
	}
	return nil
}
