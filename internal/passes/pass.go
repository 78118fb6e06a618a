// Package passes schedules and runs MIR transformations. A Manager orders
// registered passes by their declared requirements, keeps analysis results
// cached between passes and re-verifies the module after every change.
package passes

import (
	"fmt"

	"github.com/tliron/commonlog"

	"seoggi/internal/analysis"
	"seoggi/internal/diagnostics"
	"seoggi/internal/mir"
	"seoggi/internal/safety"
)

// Pass is a unit of work scheduled by the Manager.
type Pass interface {
	// Name identifies the pass in Requires/Invalidates lists.
	Name() string
	// Requires lists the passes and analyses that must run first.
	Requires() []string
	// Invalidates lists the analyses made stale when the pass modifies IR.
	Invalidates() []string
	// RunOnModule transforms mod and reports whether it changed anything.
	RunOnModule(ctx *Context, mod *mir.Module) (bool, error)
	// RunOnFunction transforms a single function.
	RunOnFunction(ctx *Context, fn *mir.Function) (bool, error)
	// VerifySafety checks the pass can run in ctx. It is called once on
	// registration (ctx.Module is nil then) and again before each run.
	VerifySafety(ctx *Context) error
}

// Analysis is a pass that only computes facts into the AnalysisCache.
// Analyses never modify the module and are re-run by the Manager when a
// later pass needs them after they were invalidated.
type Analysis interface {
	Pass
	analysisPass()
}

// AnalysisBase is embedded by analysis passes.
type AnalysisBase struct{}

func (AnalysisBase) analysisPass()               {}
func (AnalysisBase) Invalidates() []string       { return nil }
func (AnalysisBase) VerifySafety(*Context) error { return nil }

// Context is handed to every pass invocation.
type Context struct {
	Module  *mir.Module
	Checker safety.Checker
	Cache   *AnalysisCache
	Log     commonlog.Logger
	// Diags collects warnings raised while the pass runs. May be nil.
	Diags *diagnostics.DiagnosticBag
	// Pass is the name of the pass being run.
	Pass string
}

// Warn records a warning about fn with the given code.
func (c *Context) Warn(code, fn, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	c.Log.Warningf("%s: fn %s: %s", c.Pass, fn, msg)
	if c.Diags == nil {
		return
	}
	c.Diags.Add(diagnostics.NewWarning(msg).
		WithCode(code).
		WithPass(c.Pass).
		WithPrimaryLabel(diagnostics.Location{Function: fn}, ""))
}

// CFG returns the cached control-flow graph of fn, computing it if needed.
func (c *Context) CFG(fn *mir.Function) *analysis.CFG {
	if v, ok := c.Cache.Get(CFGName, fn.Name); ok {
		return v.(*analysis.CFG)
	}
	g := analysis.BuildCFG(fn)
	c.Cache.Put(CFGName, fn.Name, g)
	return g
}

// DomTree returns the cached dominator tree of fn.
func (c *Context) DomTree(fn *mir.Function) *analysis.DomTree {
	if v, ok := c.Cache.Get(DomTreeName, fn.Name); ok {
		return v.(*analysis.DomTree)
	}
	dt := analysis.BuildDomTree(c.CFG(fn))
	c.Cache.Put(DomTreeName, fn.Name, dt)
	return dt
}

// Loops returns the cached loop info of fn.
func (c *Context) Loops(fn *mir.Function) *analysis.LoopInfo {
	if v, ok := c.Cache.Get(LoopsName, fn.Name); ok {
		return v.(*analysis.LoopInfo)
	}
	li := analysis.FindLoops(c.CFG(fn), c.DomTree(fn))
	c.Cache.Put(LoopsName, fn.Name, li)
	return li
}

// CallGraph returns the cached call graph of the module.
func (c *Context) CallGraph() *analysis.CallGraph {
	if v, ok := c.Cache.Get(CallGraphName, ""); ok {
		return v.(*analysis.CallGraph)
	}
	cg := analysis.BuildCallGraph(c.Module)
	c.Cache.Put(CallGraphName, "", cg)
	return cg
}

// RunOnFunctions applies p.RunOnFunction to every function with a body, in
// declaration order. Errors are tagged with the function they came from.
func RunOnFunctions(ctx *Context, mod *mir.Module, p Pass) (bool, error) {
	modified := false
	for _, fn := range mod.Functions {
		if len(fn.Blocks) == 0 {
			continue
		}
		changed, err := p.RunOnFunction(ctx, fn)
		if err != nil {
			return modified, inFunction(err, fn.Name)
		}
		modified = modified || changed
	}
	return modified, nil
}

func inFunction(err error, name string) error {
	if perr, ok := err.(*diagnostics.PassError); ok && perr.Function == "" {
		return perr.InFunction(name)
	}
	return err
}
