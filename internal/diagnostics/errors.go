package diagnostics

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies optimizer failures. A Kind is itself an error so callers
// can write errors.Is(err, diagnostics.CyclicPassDependency).
type Kind int

const (
	MissingPassDependency Kind = iota + 1
	CyclicPassDependency
	DuplicatePass
	UnsafeElimination
	UnsafeBlockElimination
	UnsafeFolding
	TypeMismatch
	UnsafeInlining
	UnsafeExceptionHandling
	VerificationFailed
	MalformedIR
	UnreportedModification
)

var kindInfo = map[Kind]struct {
	name string
	code string
}{
	MissingPassDependency:   {"missing pass dependency", ErrMissingPassDependency},
	CyclicPassDependency:    {"cyclic pass dependency", ErrCyclicPassDependency},
	DuplicatePass:           {"duplicate pass", ErrDuplicatePass},
	UnsafeElimination:       {"unsafe elimination", ErrUnsafeElimination},
	UnsafeBlockElimination:  {"unsafe block elimination", ErrUnsafeBlockElimination},
	UnsafeFolding:           {"unsafe folding", ErrUnsafeFolding},
	TypeMismatch:            {"type mismatch", ErrTypeMismatch},
	UnsafeInlining:          {"unsafe inlining", ErrUnsafeInlining},
	UnsafeExceptionHandling: {"unsafe exception handling", ErrUnsafeExceptionHandling},
	VerificationFailed:      {"verification failed", ErrVerificationFailed},
	MalformedIR:             {"malformed IR", ErrMalformedIR},
	UnreportedModification:  {"unreported modification", ErrUnreportedModification},
}

func (k Kind) String() string {
	if info, ok := kindInfo[k]; ok {
		return info.name
	}
	return "unknown"
}

func (k Kind) Error() string { return k.String() }

// Code returns the stable diagnostic code of the kind.
func (k Kind) Code() string {
	return kindInfo[k].code
}

// PassError is a classified optimizer failure.
type PassError struct {
	Kind     Kind
	Pass     string // pass that raised or is affected by the failure
	Function string // function being processed, if any
	Detail   string
	Err      error // underlying cause
}

// Errorf builds a *PassError of the given kind with a formatted detail.
func Errorf(kind Kind, pass string, format string, args ...any) *PassError {
	return &PassError{Kind: kind, Pass: pass, Detail: fmt.Sprintf(format, args...)}
}

// Wrap classifies err as kind.
func Wrap(kind Kind, pass string, err error) *PassError {
	return &PassError{Kind: kind, Pass: pass, Err: err}
}

// InFunction records the function the error occurred in.
func (e *PassError) InFunction(name string) *PassError {
	e.Function = name
	return e
}

func (e *PassError) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.String())
	if e.Pass != "" {
		fmt.Fprintf(&b, " [%s]", e.Pass)
	}
	if e.Function != "" {
		fmt.Fprintf(&b, " in fn %s", e.Function)
	}
	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *PassError) Unwrap() error { return e.Err }

// Is matches a bare Kind target.
func (e *PassError) Is(target error) bool {
	k, ok := target.(Kind)
	return ok && e.Kind == k
}

// KindOf returns the kind of the first *PassError in err's chain, or 0.
func KindOf(err error) Kind {
	var e *PassError
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}
