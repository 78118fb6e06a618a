package analysis

import (
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"

	"seoggi/internal/mir"
	"seoggi/internal/types"
)

// loopFunction builds
//
//	entry -> header; header -> body | exit; body -> header; dead -> exit
func loopFunction() (*mir.Function, map[string]mir.BlockID) {
	b := mir.NewBuilder("loop", types.TypeVoid)
	n := b.Param("n", types.TypeI32)
	entry := b.Block("entry")
	header := b.Block("header")
	body := b.Block("body")
	exit := b.Block("exit")
	dead := b.Block("dead")

	b.SetBlock(entry)
	zero := b.Const(types.TypeI32, "0")
	b.Br(header)

	b.SetBlock(header)
	cond := b.Compare(mir.CmpLt, zero, n)
	b.CondBr(cond, body, exit)

	b.SetBlock(body)
	b.Br(header)

	b.SetBlock(exit)
	b.RetVoid()

	b.SetBlock(dead)
	b.Br(exit)

	ids := map[string]mir.BlockID{}
	for _, blk := range b.Function().Blocks {
		ids[blk.Name] = blk.ID
	}
	return b.Function(), ids
}

func TestUseDef(t *testing.T) {
	fn, _ := loopFunction()
	ud := BuildUseDef(fn)

	n := fn.Params[0].ID
	zero := mir.Result(fn.Blocks[0].Instrs[0])
	cond := mir.Result(fn.Blocks[1].Instrs[0])

	if got := ud.Uses(n); got != 1 {
		t.Errorf("Uses(n) = %d, want 1", got)
	}
	if got := ud.Uses(cond); got != 1 {
		t.Errorf("Uses(cond) = %d, want 1 (terminator use)", got)
	}
	if d, ok := ud.Def(zero); !ok || d.Block != fn.Blocks[0] {
		t.Errorf("Def(zero) = %+v, %v", d, ok)
	}
	if d, ok := ud.Def(n); !ok || d.Instr != nil {
		t.Errorf("parameter def should have no instruction, got %+v", d)
	}

	ud.Forget(fn.Blocks[1].Instrs[0])
	if ud.HasUsers(zero) || ud.HasUsers(n) {
		t.Error("forgetting the compare should release its operands")
	}
	if _, ok := ud.Def(cond); ok {
		t.Error("forgotten result should have no definition")
	}
}

func TestReachable(t *testing.T) {
	fn, ids := loopFunction()
	reach := Reachable(fn)

	for _, name := range []string{"entry", "header", "body", "exit"} {
		if !reach[ids[name]] {
			t.Errorf("%s should be reachable", name)
		}
	}
	if reach[ids["dead"]] {
		t.Error("dead should not be reachable")
	}
}

func TestReachableFollowsHandler(t *testing.T) {
	b := mir.NewBuilder("f", types.TypeVoid)
	entry := b.Block("entry")
	b.RetVoid()
	lpad := b.Block("lpad")
	b.Unreachable()
	entry.Handler = lpad.ID

	if !Reachable(b.Function())[lpad.ID] {
		t.Error("handler block should be reachable")
	}
}

func TestCFG(t *testing.T) {
	fn, ids := loopFunction()
	g := BuildCFG(fn)

	want := []mir.BlockID{ids["entry"], ids["header"], ids["exit"], ids["body"]}
	if diff := cmp.Diff(want, g.RPO); diff != "" {
		t.Errorf("RPO (-want +got):\n%s", diff)
	}
	if g.Reachable(ids["dead"]) {
		t.Error("dead block should not appear in RPO")
	}
	if diff := cmp.Diff([]mir.BlockID{ids["entry"], ids["body"]}, g.Preds[ids["header"]]); diff != "" {
		t.Errorf("header preds (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]mir.BlockID{ids["header"], ids["dead"]}, g.Preds[ids["exit"]]); diff != "" {
		t.Errorf("exit preds (-want +got):\n%s", diff)
	}
}

func TestDomTreeAndLoops(t *testing.T) {
	fn, ids := loopFunction()
	g := BuildCFG(fn)
	dt := BuildDomTree(g)

	if d, ok := dt.IDom(ids["body"]); !ok || d != ids["header"] {
		t.Errorf("IDom(body) = %v, %v; want header", d, ok)
	}
	if d, ok := dt.IDom(ids["exit"]); !ok || d != ids["header"] {
		t.Errorf("IDom(exit) = %v, %v; want header", d, ok)
	}
	if _, ok := dt.IDom(ids["entry"]); ok {
		t.Error("entry has no immediate dominator")
	}
	if !dt.Dominates(ids["entry"], ids["exit"]) {
		t.Error("entry should dominate exit")
	}
	if dt.Dominates(ids["body"], ids["exit"]) {
		t.Error("body should not dominate exit")
	}
	if dt.Dominates(ids["entry"], ids["dead"]) {
		t.Error("unreachable blocks are not dominated")
	}
	if got := len(dt.Children(ids["header"])); got != 2 {
		t.Errorf("header should have 2 dominator children, got %d", got)
	}

	li := FindLoops(g, dt)
	if len(li.Loops) != 1 {
		t.Fatalf("expected 1 loop, got %d", len(li.Loops))
	}
	loop := li.Loops[0]
	if loop.Header != ids["header"] {
		t.Errorf("loop header = %v, want %v", loop.Header, ids["header"])
	}
	if !loop.Contains(ids["body"]) || loop.Contains(ids["exit"]) || loop.Contains(ids["entry"]) {
		t.Errorf("unexpected loop body %v", loop.Blocks)
	}
	if li.Depth(ids["body"]) != 1 || li.Depth(ids["exit"]) != 0 {
		t.Error("unexpected loop depths")
	}
	if li.Innermost(ids["body"]) != loop {
		t.Error("Innermost(body) should be the loop")
	}
}

// callModule builds one function per entry of calls; calls[name] lists the
// functions it calls.
func callModule(order []string, calls map[string][]string) *mir.Module {
	mod := &mir.Module{Name: "calls"}
	for _, name := range order {
		b := mir.NewBuilder(name, types.TypeVoid)
		b.Block("entry")
		for _, callee := range calls[name] {
			b.Call(callee, types.TypeVoid)
		}
		b.RetVoid()
		mod.Functions = append(mod.Functions, b.Function())
	}
	return mod
}

func TestCallGraphRecursion(t *testing.T) {
	tests := []struct {
		name      string
		order     []string
		calls     map[string][]string
		recursive []string
		plain     []string
	}{
		{
			name:      "self loop",
			order:     []string{"main", "fact"},
			calls:     map[string][]string{"main": {"fact"}, "fact": {"fact"}},
			recursive: []string{"fact"},
			plain:     []string{"main"},
		},
		{
			name:      "two cycle",
			order:     []string{"main", "even", "odd"},
			calls:     map[string][]string{"main": {"even"}, "even": {"odd"}, "odd": {"even"}},
			recursive: []string{"even", "odd"},
			plain:     []string{"main"},
		},
		{
			name:      "three cycle",
			order:     []string{"a", "b", "c", "d"},
			calls:     map[string][]string{"a": {"b"}, "b": {"c"}, "c": {"a", "d"}},
			recursive: []string{"a", "b", "c"},
			plain:     []string{"d"},
		},
		{
			name:  "acyclic",
			order: []string{"main", "f", "g"},
			calls: map[string][]string{"main": {"f", "g", "printf"}, "f": {"g"}},
			plain: []string{"main", "f", "g"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cg := BuildCallGraph(callModule(tt.order, tt.calls))
			for _, name := range tt.recursive {
				if !cg.IsRecursive(name) {
					t.Errorf("%s should be recursive", name)
				}
			}
			for _, name := range tt.plain {
				if cg.IsRecursive(name) {
					t.Errorf("%s should not be recursive", name)
				}
			}
			for i := 1; i < len(tt.recursive); i++ {
				if !cg.SameSCC(tt.recursive[0], tt.recursive[i]) {
					t.Errorf("%s and %s should share an SCC", tt.recursive[0], tt.recursive[i])
				}
			}
		})
	}
}

func TestCallGraphSCCOrder(t *testing.T) {
	cg := BuildCallGraph(callModule(
		[]string{"main", "f", "g"},
		map[string][]string{"main": {"f"}, "f": {"g"}},
	))
	want := [][]string{{"g"}, {"f"}, {"main"}}
	if diff := cmp.Diff(want, cg.SCCs()); diff != "" {
		t.Errorf("SCCs() (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"g"}, cg.Callees("f")); diff != "" {
		t.Errorf("Callees(f) (-want +got):\n%s", diff)
	}
	if cg.Callees("missing") != nil {
		t.Error("unknown function has no callees")
	}
}

func TestCallGraphDeepChain(t *testing.T) {
	const depth = 20000
	order := make([]string, depth)
	calls := make(map[string][]string, depth)
	for i := range order {
		order[i] = fmt.Sprintf("f%d", i)
		if i > 0 {
			calls[order[i-1]] = []string{order[i]}
		}
	}
	// Close the chain into one giant cycle.
	calls[order[depth-1]] = []string{order[0]}

	cg := BuildCallGraph(callModule(order, calls))
	if len(cg.SCCs()) != 1 {
		t.Fatalf("expected a single SCC, got %d", len(cg.SCCs()))
	}
	if !cg.IsRecursive("f12345") {
		t.Error("every function in the cycle is recursive")
	}
}
