package passes

import (
	"seoggi/internal/mir"
)

// Names of the analysis passes.
const (
	CFGName       = "cfg"
	DomTreeName   = "domtree"
	LoopsName     = "loops"
	CallGraphName = "callgraph"
)

// functionAnalysis computes a per-function result for every function with
// a body.
type functionAnalysis struct {
	AnalysisBase
	name     string
	requires []string
	compute  func(ctx *Context, fn *mir.Function)
}

func (a *functionAnalysis) Name() string       { return a.name }
func (a *functionAnalysis) Requires() []string { return a.requires }

func (a *functionAnalysis) RunOnModule(ctx *Context, mod *mir.Module) (bool, error) {
	ctx.Cache.Invalidate(a.name)
	return RunOnFunctions(ctx, mod, a)
}

func (a *functionAnalysis) RunOnFunction(ctx *Context, fn *mir.Function) (bool, error) {
	a.compute(ctx, fn)
	return false, nil
}

// NewCFGAnalysis computes successors, predecessors and RPO.
func NewCFGAnalysis() Analysis {
	return &functionAnalysis{
		name:    CFGName,
		compute: func(ctx *Context, fn *mir.Function) { ctx.CFG(fn) },
	}
}

// NewDomTreeAnalysis computes dominator trees.
func NewDomTreeAnalysis() Analysis {
	return &functionAnalysis{
		name:     DomTreeName,
		requires: []string{CFGName},
		compute:  func(ctx *Context, fn *mir.Function) { ctx.DomTree(fn) },
	}
}

// NewLoopsAnalysis computes natural loops.
func NewLoopsAnalysis() Analysis {
	return &functionAnalysis{
		name:     LoopsName,
		requires: []string{CFGName, DomTreeName},
		compute:  func(ctx *Context, fn *mir.Function) { ctx.Loops(fn) },
	}
}

type callGraphAnalysis struct {
	AnalysisBase
}

// NewCallGraphAnalysis computes the module call graph and its SCCs.
func NewCallGraphAnalysis() Analysis {
	return &callGraphAnalysis{}
}

func (a *callGraphAnalysis) Name() string       { return CallGraphName }
func (a *callGraphAnalysis) Requires() []string { return nil }

func (a *callGraphAnalysis) RunOnModule(ctx *Context, mod *mir.Module) (bool, error) {
	ctx.Cache.Invalidate(CallGraphName)
	ctx.CallGraph()
	return false, nil
}

func (a *callGraphAnalysis) RunOnFunction(*Context, *mir.Function) (bool, error) {
	return false, nil
}

// Analyses returns fresh instances of every built-in analysis.
func Analyses() []Pass {
	return []Pass{NewCFGAnalysis(), NewDomTreeAnalysis(), NewLoopsAnalysis(), NewCallGraphAnalysis()}
}
