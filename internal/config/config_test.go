package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestDefaults(t *testing.T) {
	c := Defaults()
	want := &Config{
		Pipeline: Pipeline{Passes: []string{"inline", "constfold", "dce"}},
		Inline:   Inline{SizeThreshold: 32},
	}
	if diff := cmp.Diff(want, c); diff != "" {
		t.Errorf("Defaults() mismatch (-want +got):\n%s", diff)
	}
}

func TestParseOverrides(t *testing.T) {
	c, err := Parse(`
[pipeline]
passes = ["constfold", "dce"]
verify_modified = true

[inline]
size_threshold = 8
exceptions_enabled = true

[dce]
max_iterations = 4

[log]
verbosity = 2
file = "opt.log"
`)
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	want := &Config{
		Pipeline: Pipeline{Passes: []string{"constfold", "dce"}, VerifyModified: true},
		Inline:   Inline{SizeThreshold: 8, ExceptionsEnabled: true},
		DCE:      DCE{MaxIterations: 4},
		Log:      Log{Verbosity: 2, File: "opt.log"},
	}
	if diff := cmp.Diff(want, c); diff != "" {
		t.Errorf("Parse() mismatch (-want +got):\n%s", diff)
	}
}

func TestParseKeepsExplicitZeroes(t *testing.T) {
	c, err := Parse("[pipeline]\npasses = []\n[inline]\nsize_threshold = 0\n")
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if len(c.Pipeline.Passes) != 0 {
		t.Errorf("Passes = %v, want empty", c.Pipeline.Passes)
	}
	if c.Inline.SizeThreshold != 0 {
		t.Errorf("SizeThreshold = %d, want 0", c.Inline.SizeThreshold)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"syntax", "[pipeline\n", ""},
		{"unknown key", "[dce]\nmax_loops = 3\n", "unknown key"},
		{"negative threshold", "[inline]\nsize_threshold = -1\n", "size_threshold"},
		{"negative iterations", "[dce]\nmax_iterations = -2\n", "max_iterations"},
		{"duplicate pass", "[pipeline]\npasses = [\"dce\", \"dce\"]\n", "twice"},
	}
	for _, tt := range tests {
		_, err := Parse(tt.input)
		if err == nil {
			t.Errorf("%s: expected error", tt.name)
			continue
		}
		if !strings.Contains(err.Error(), tt.want) {
			t.Errorf("%s: error %q does not mention %q", tt.name, err, tt.want)
		}
	}
}

func TestFindAndLoad(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0755); err != nil {
		t.Fatal(err)
	}
	body := "[dce]\nmax_iterations = 9\n[log]\nfile = \"logs/opt.log\"\n"
	if err := os.WriteFile(filepath.Join(root, FileName), []byte(body), 0644); err != nil {
		t.Fatal(err)
	}

	c, err := FindAndLoad(nested)
	if err != nil {
		t.Fatalf("FindAndLoad() error: %v", err)
	}
	if c.DCE.MaxIterations != 9 {
		t.Errorf("MaxIterations = %d, want 9", c.DCE.MaxIterations)
	}
	absRoot, _ := filepath.Abs(root)
	if c.Dir != absRoot {
		t.Errorf("Dir = %q, want %q", c.Dir, absRoot)
	}
	if got, want := c.LogFile(), filepath.Join(absRoot, "logs", "opt.log"); got != want {
		t.Errorf("LogFile() = %q, want %q", got, want)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.toml")
	if err := os.WriteFile(path, []byte("[inline]\nexceptions_enabled = true\n"), 0644); err != nil {
		t.Fatal(err)
	}
	c, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error: %v", err)
	}
	if !c.Inline.ExceptionsEnabled || c.Inline.SizeThreshold != 32 {
		t.Errorf("LoadFile() = %+v", c.Inline)
	}

	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Error("missing file should fail")
	}
}
