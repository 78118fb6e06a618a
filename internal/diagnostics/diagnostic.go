package diagnostics

import (
	"errors"
	"fmt"
)

// Severity represents the severity level of a diagnostic
type Severity int

const (
	Error Severity = iota
	Warning
	Info
	Hint
)

func (s Severity) String() string {
	switch s {
	case Error:
		return "error"
	case Warning:
		return "warning"
	case Info:
		return "info"
	case Hint:
		return "hint"
	default:
		return "unknown"
	}
}

// Location points into the IR: a function and optionally a block in it.
type Location struct {
	Function string
	Block    string
}

func (l Location) String() string {
	switch {
	case l.Function == "":
		return "<module>"
	case l.Block == "":
		return "fn " + l.Function
	default:
		return fmt.Sprintf("fn %s, block %s", l.Function, l.Block)
	}
}

// Label represents a labeled IR location in a diagnostic
type Label struct {
	Location Location
	Message  string
	Style    LabelStyle
}

type LabelStyle int

const (
	Primary   LabelStyle = iota // The location the diagnostic is about
	Secondary                   // Additional context
)

// Note represents additional information attached to a diagnostic
type Note struct {
	Message string
}

// Diagnostic represents an optimizer diagnostic (error, warning, etc.)
type Diagnostic struct {
	Severity Severity
	Message  string
	Code     string // Error code like "O0001"
	Pass     string // Pass that produced this diagnostic
	Labels   []Label
	Notes    []Note
	Help     string // Suggestion for fixing the error
}

// NewError creates a new error diagnostic
func NewError(message string) *Diagnostic {
	return newDiagnostic(Error, message)
}

// NewWarning creates a new warning diagnostic
func NewWarning(message string) *Diagnostic {
	return newDiagnostic(Warning, message)
}

func newDiagnostic(severity Severity, message string) *Diagnostic {
	return &Diagnostic{
		Severity: severity,
		Message:  message,
		Labels:   make([]Label, 0),
		Notes:    make([]Note, 0),
	}
}

// WithCode sets the error code
func (d *Diagnostic) WithCode(code string) *Diagnostic {
	d.Code = code
	return d
}

// WithPass records the pass that produced the diagnostic
func (d *Diagnostic) WithPass(pass string) *Diagnostic {
	d.Pass = pass
	return d
}

// WithPrimaryLabel adds the primary location. Only the first call has an
// effect; a primary label is always kept in front of secondary labels.
func (d *Diagnostic) WithPrimaryLabel(loc Location, message string) *Diagnostic {
	for _, label := range d.Labels {
		if label.Style == Primary {
			return d
		}
	}
	d.Labels = append([]Label{{Location: loc, Message: message, Style: Primary}}, d.Labels...)
	return d
}

// WithSecondaryLabel adds a context location. A primary label must exist.
func (d *Diagnostic) WithSecondaryLabel(loc Location, message string) *Diagnostic {
	if !d.hasPrimary() {
		// Programming error, make it visible
		panic("Cannot add secondary label without primary label. Call WithPrimaryLabel first.")
	}
	d.Labels = append(d.Labels, Label{Location: loc, Message: message, Style: Secondary})
	return d
}

func (d *Diagnostic) hasPrimary() bool {
	for _, label := range d.Labels {
		if label.Style == Primary {
			return true
		}
	}
	return false
}

// WithNote adds a note to the diagnostic
func (d *Diagnostic) WithNote(message string) *Diagnostic {
	d.Notes = append(d.Notes, Note{Message: message})
	return d
}

// WithHelp sets helpful suggestion for fixing the error
func (d *Diagnostic) WithHelp(help string) *Diagnostic {
	d.Help = help
	return d
}

// FromError converts an error returned by the optimizer into a diagnostic.
// Classified errors keep their code, pass and function; any other error
// becomes a plain error diagnostic.
func FromError(err error) *Diagnostic {
	var e *PassError
	if !errors.As(err, &e) {
		return NewError(err.Error())
	}

	msg := e.Kind.String()
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	d := NewError(msg).WithCode(e.Kind.Code()).WithPass(e.Pass)
	if e.Function != "" {
		d.WithPrimaryLabel(Location{Function: e.Function}, "while processing this function")
	}
	if e.Err != nil {
		for _, cause := range splitJoined(e.Err) {
			d.WithNote(cause.Error())
		}
	}
	if help, ok := kindHelp[e.Kind]; ok {
		d.WithHelp(help)
	}
	return d
}

// splitJoined flattens an errors.Join result into its parts.
func splitJoined(err error) []error {
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		return joined.Unwrap()
	}
	return []error{err}
}

var kindHelp = map[Kind]string{
	MissingPassDependency:   "register the required pass first, or register both with AddPasses",
	CyclicPassDependency:    "break the cycle in the passes' Requires lists",
	DuplicatePass:           "each pass name may be registered once",
	UnsafeElimination:       "instructions with critical side effects must not be removed",
	UnsafeBlockElimination:  "blocks holding critical instructions or handler entries must stay",
	UnsafeFolding:           "only pure instructions may be folded",
	TypeMismatch:            "the folded constant must have the instruction's declared type",
	UnsafeInlining:          "callees with critical side effects must not be inlined",
	UnsafeExceptionHandling: "enable exceptions or mark the callee as non-throwing",
	VerificationFailed:      "a pass produced IR that no longer verifies; this is a pass bug",
	UnreportedModification:  "the pass must return modified=true when it changes the module",
}
