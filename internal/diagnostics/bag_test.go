package diagnostics

import (
	"errors"
	"strings"
	"sync"
	"testing"

	"seoggi/colors"
)

func TestNewDiagnosticBag(t *testing.T) {
	bag := NewDiagnosticBag()

	if bag == nil {
		t.Fatal("NewDiagnosticBag returned nil")
	}

	if bag.ErrorCount() != 0 {
		t.Errorf("Expected 0 errors, got %d", bag.ErrorCount())
	}

	if bag.WarningCount() != 0 {
		t.Errorf("Expected 0 warnings, got %d", bag.WarningCount())
	}

	if bag.HasErrors() {
		t.Error("Expected HasErrors() to be false for empty bag")
	}
}

func TestDiagnosticBag_MultipleDiagnostics(t *testing.T) {
	bag := NewDiagnosticBag()

	bag.Add(NewError("error 1"))
	bag.Add(NewWarning("warning 1"))
	bag.Add(NewError("error 2"))
	bag.Add(newDiagnostic(Info, "info 1"))

	if bag.ErrorCount() != 2 {
		t.Errorf("Expected 2 errors, got %d", bag.ErrorCount())
	}

	if bag.WarningCount() != 1 {
		t.Errorf("Expected 1 warning, got %d", bag.WarningCount())
	}

	if len(bag.Diagnostics()) != 4 {
		t.Errorf("Expected 4 diagnostics, got %d", len(bag.Diagnostics()))
	}
}

func TestDiagnosticBag_AddError(t *testing.T) {
	bag := NewDiagnosticBag()
	bag.AddError(nil)
	if bag.HasErrors() {
		t.Fatal("nil error should be ignored")
	}

	bag.AddError(Errorf(CyclicPassDependency, "x", "x requires itself"))
	bag.AddError(errors.New("plain failure"))

	diags := bag.Diagnostics()
	if len(diags) != 2 {
		t.Fatalf("Expected 2 diagnostics, got %d", len(diags))
	}
	if diags[0].Code != ErrCyclicPassDependency {
		t.Errorf("Expected code %s, got %q", ErrCyclicPassDependency, diags[0].Code)
	}
	if diags[1].Code != "" {
		t.Errorf("Expected no code for a plain error, got %q", diags[1].Code)
	}
}

func TestDiagnosticBag_Clear(t *testing.T) {
	bag := NewDiagnosticBag()
	bag.Add(NewError("error"))
	bag.Add(NewWarning("warning"))

	bag.Clear()

	if bag.HasErrors() || bag.WarningCount() != 0 || len(bag.Diagnostics()) != 0 {
		t.Error("Expected bag to be empty after Clear()")
	}
}

func TestDiagnosticBag_ConcurrentAdd(t *testing.T) {
	bag := NewDiagnosticBag()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%2 == 0 {
				bag.Add(NewError("error"))
			} else {
				bag.Add(NewWarning("warning"))
			}
		}(i)
	}
	wg.Wait()

	if bag.ErrorCount() != 25 {
		t.Errorf("Expected 25 errors, got %d", bag.ErrorCount())
	}
	if bag.WarningCount() != 25 {
		t.Errorf("Expected 25 warnings, got %d", bag.WarningCount())
	}
}

func TestDiagnosticBag_EmitAllToString(t *testing.T) {
	bag := NewDiagnosticBag()
	bag.AddError(Errorf(UnsafeInlining, "inline", "callee %q has critical side effects", "log").InFunction("main"))
	bag.Add(NewWarning("dce hit its iteration limit").WithCode(WarnIterationLimit))

	out := colors.StripANSI(bag.EmitAllToString())

	for _, want := range []string{
		"error[O0105]: unsafe inlining: callee \"log\" has critical side effects",
		"in pass inline",
		"--> fn main",
		"= help: callees with critical side effects must not be inlined",
		"warning[W0002]: dce hit its iteration limit",
		"Optimization failed with 1 error(s) and 1 warning(s)",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestDiagnosticBag_WarningSummary(t *testing.T) {
	bag := NewDiagnosticBag()
	bag.Add(NewWarning("careful"))

	out := colors.StripANSI(bag.EmitAllToString())
	if !strings.Contains(out, "Optimization succeeded with 1 warning(s)") {
		t.Errorf("unexpected summary:\n%s", out)
	}
}
