package pipeline

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"seoggi/colors"
	"seoggi/internal/config"
	"seoggi/internal/diagnostics"
	"seoggi/internal/mir"
	"seoggi/internal/phase"
	"seoggi/internal/types"
)

// sampleModule is main calling a small helper on constants, plus an unused
// computation.
func sampleModule() *mir.Module {
	h := mir.NewBuilder("double", types.TypeI32)
	x := h.Param("x", types.TypeI32)
	h.Block("entry")
	h.Ret(h.Binary(mir.OpAdd, x, x, types.TypeI32))

	b := mir.NewBuilder("main", types.TypeI32)
	b.Block("entry")
	two := b.Const(types.TypeI32, "2")
	three := b.Const(types.TypeI32, "3")
	sum := b.Binary(mir.OpAdd, two, three, types.TypeI32)
	b.Binary(mir.OpMul, sum, sum, types.TypeI32)
	r := b.Call("double", types.TypeI32, sum)
	b.Ret(r)

	return &mir.Module{Name: "sample", Functions: []*mir.Function{b.Function(), h.Function()}}
}

func countInstrs(fn *mir.Function) int {
	return fn.Size()
}

func returnedConst(t *testing.T, fn *mir.Function) string {
	t.Helper()
	defs := make(map[mir.ValueID]*mir.Const)
	var ret *mir.Return
	for _, b := range fn.Blocks {
		for _, instr := range b.Instrs {
			if c, ok := instr.(*mir.Const); ok {
				defs[c.Result] = c
			}
		}
		if r, ok := b.Term.(*mir.Return); ok {
			ret = r
		}
	}
	if ret == nil || defs[ret.Value] == nil {
		t.Fatalf("%s does not return a constant:\n%s", fn.Name, mir.FormatFunction(fn))
	}
	return defs[ret.Value].Value
}

func TestPipelineDefaults(t *testing.T) {
	p, err := New(nil, false)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	mod := sampleModule()
	if err := p.Run(mod); err != nil {
		t.Fatalf("Run() error: %v\n%s", err, p.Diagnostics().EmitAllToString())
	}
	if p.Phase() != phase.PhaseOptimized {
		t.Errorf("Phase() = %s, want Optimized", p.Phase())
	}
	if p.Diagnostics().HasErrors() {
		t.Errorf("unexpected diagnostics:\n%s", p.Diagnostics().EmitAllToString())
	}

	main := mod.Function("main")
	for _, b := range main.Blocks {
		for _, instr := range b.Instrs {
			if _, ok := instr.(*mir.Call); ok {
				t.Errorf("call survived inlining:\n%s", mir.FormatFunction(main))
			}
			if bin, ok := instr.(*mir.Binary); ok && bin.Op == mir.OpMul {
				t.Errorf("unused mul survived dce:\n%s", mir.FormatFunction(main))
			}
		}
	}
	if p.Manager().Modified("inline") != 1 || p.Manager().Modified("dce") != 1 {
		t.Errorf("unexpected pass activity: %+v", p.Manager().Stats())
	}
}

func TestPipelineSelectedPasses(t *testing.T) {
	cfg := config.Defaults()
	cfg.Pipeline.Passes = []string{"constfold", "dce"}
	p, err := New(cfg, false)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	b := mir.NewBuilder("main", types.TypeI32)
	b.Block("entry")
	sum := b.Binary(mir.OpAdd, b.Const(types.TypeI32, "2"), b.Const(types.TypeI32, "3"), types.TypeI32)
	b.Ret(sum)
	mod := &mir.Module{Name: "fold", Functions: []*mir.Function{b.Function()}}

	if err := p.Run(mod); err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	main := mod.Function("main")
	if got := returnedConst(t, main); got != "5" {
		t.Errorf("returned constant = %s, want 5", got)
	}
	if got := countInstrs(main); got != 1 {
		t.Errorf("main has %d instructions, want 1:\n%s", got, mir.FormatFunction(main))
	}

	var names []string
	for _, pass := range p.Manager().Passes() {
		names = append(names, pass.Name())
	}
	want := []string{"cfg", "domtree", "loops", "callgraph", "constfold", "dce"}
	if diff := cmp.Diff(want, names); diff != "" {
		t.Errorf("registered passes mismatch (-want +got):\n%s", diff)
	}
}

func TestIterationLimitIsReported(t *testing.T) {
	cfg := config.Defaults()
	cfg.Pipeline.Passes = []string{"dce"}
	cfg.DCE.MaxIterations = 1
	p, err := New(cfg, false)
	if err != nil {
		t.Fatal(err)
	}

	// Each round only frees the operands of what it removed.
	b := mir.NewBuilder("main", types.TypeVoid)
	b.Block("entry")
	sum := b.Binary(mir.OpAdd, b.Const(types.TypeI32, "2"), b.Const(types.TypeI32, "3"), types.TypeI32)
	b.Binary(mir.OpMul, sum, sum, types.TypeI32)
	b.RetVoid()
	mod := &mir.Module{Name: "chain", Functions: []*mir.Function{b.Function()}}

	for run := 0; run < 2; run++ {
		if err := p.Run(mod); err != nil {
			t.Fatalf("Run() error: %v", err)
		}
		if p.Diagnostics().WarningCount() != 1 {
			t.Fatalf("run %d: WarningCount() = %d, want 1", run, p.Diagnostics().WarningCount())
		}
	}

	out := colors.StripANSI(p.Diagnostics().EmitAllToString())
	for _, want := range []string{"warning[" + diagnostics.WarnIterationLimit + "]", "Optimization succeeded with 1 warning(s)"} {
		if !strings.Contains(out, want) {
			t.Errorf("diagnostics missing %q:\n%s", want, out)
		}
	}
}

func TestUnknownPass(t *testing.T) {
	cfg := config.Defaults()
	cfg.Pipeline.Passes = []string{"loopunroll"}
	_, err := New(cfg, false)
	if err == nil || !strings.Contains(err.Error(), "loopunroll") || !strings.Contains(err.Error(), "constfold, dce, inline") {
		t.Errorf("New() = %v, want an unknown pass error listing known passes", err)
	}
}

func TestInvalidConfig(t *testing.T) {
	cfg := config.Defaults()
	cfg.DCE.MaxIterations = -1
	if _, err := New(cfg, false); err == nil {
		t.Error("New() should reject an invalid configuration")
	}
}

func TestMalformedModuleIsReported(t *testing.T) {
	b := mir.NewBuilder("main", types.TypeI32)
	b.Block("entry")
	b.Ret(mir.ValueID(42))
	mod := &mir.Module{Name: "broken", Functions: []*mir.Function{b.Function()}}

	p, err := New(nil, false)
	if err != nil {
		t.Fatal(err)
	}
	err = p.Run(mod)
	if !errors.Is(err, diagnostics.MalformedIR) {
		t.Fatalf("Run() = %v, want MalformedIR", err)
	}
	if p.Phase() != phase.PhaseLoaded {
		t.Errorf("Phase() = %s, want Loaded", p.Phase())
	}
	out := colors.StripANSI(p.Diagnostics().EmitAllToString())
	if !strings.Contains(out, "error["+diagnostics.ErrMalformedIR+"]") {
		t.Errorf("diagnostics missing the malformed IR code:\n%s", out)
	}
}

func TestRunFileRoundTrip(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.cbor")
	out := filepath.Join(dir, "out.cbor")
	if err := SaveModule(in, sampleModule()); err != nil {
		t.Fatalf("SaveModule() error: %v", err)
	}

	p, err := New(nil, false)
	if err != nil {
		t.Fatal(err)
	}
	optimized, err := p.RunFile(in, out)
	if err != nil {
		t.Fatalf("RunFile() error: %v", err)
	}
	if p.Phase() != phase.PhaseWritten {
		t.Errorf("Phase() = %s, want Written", p.Phase())
	}

	reloaded, err := LoadModule(out)
	if err != nil {
		t.Fatalf("LoadModule() error: %v", err)
	}
	if diff := cmp.Diff(mir.FormatModule(optimized), mir.FormatModule(reloaded)); diff != "" {
		t.Errorf("written module differs (-optimized +reloaded):\n%s", diff)
	}
	if mir.Fingerprint(optimized) != mir.Fingerprint(reloaded) {
		t.Error("fingerprints differ after a round trip")
	}

	expected := sampleModule()
	q, _ := New(nil, false)
	if err := q.Run(expected); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(mir.FormatModule(expected), mir.FormatModule(reloaded)); diff != "" {
		t.Errorf("file and in-memory runs differ (-memory +file):\n%s", diff)
	}
}

func TestLoadModuleErrors(t *testing.T) {
	if _, err := LoadModule(filepath.Join(t.TempDir(), "missing.cbor")); err == nil {
		t.Error("missing file should fail")
	}

	p, _ := New(nil, false)
	if _, err := p.RunFile(filepath.Join(t.TempDir(), "missing.cbor"), ""); err == nil {
		t.Error("RunFile() should fail for a missing input")
	}
	if !p.Diagnostics().HasErrors() {
		t.Error("load failure should be recorded as a diagnostic")
	}
}

func TestDebugOutputAndSummary(t *testing.T) {
	p, err := New(nil, true)
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	p.Out = &buf
	if err := p.Run(sampleModule()); err != nil {
		t.Fatal(err)
	}
	debug := colors.StripANSI(buf.String())
	for _, want := range []string{"[Phase 1] Verify", "[Phase 2] Optimize", "✓ inline (1 modified)", "✓ Optimization successful!"} {
		if !strings.Contains(debug, want) {
			t.Errorf("debug output missing %q:\n%s", want, debug)
		}
	}

	var summary bytes.Buffer
	p.PrintSummary(&summary)
	text := colors.StripANSI(summary.String())
	for _, want := range []string{"OPTIMIZATION SUMMARY", "Module: sample (Optimized)", " - dce: 1 run(s), 1 modified", "Run: " + p.Manager().RunID()} {
		if !strings.Contains(text, want) {
			t.Errorf("summary missing %q:\n%s", want, text)
		}
	}
}
