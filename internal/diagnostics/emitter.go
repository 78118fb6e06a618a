package diagnostics

import (
	"fmt"
	"io"

	"seoggi/colors"
)

// Emitter handles the rendering and output of diagnostics
type Emitter struct {
	writer io.Writer // Where to write output (os.Stderr, string builder, etc.)
}

func NewEmitter(w io.Writer) *Emitter {
	return &Emitter{writer: w}
}

func (e *Emitter) Emit(diag *Diagnostic) {
	e.printHeader(diag)

	if diag.Pass != "" {
		colors.GREY.Fprint(e.writer, "  in pass ")
		fmt.Fprintln(e.writer, diag.Pass)
	}

	for _, label := range diag.Labels {
		e.printLabel(label, diag.Severity)
	}

	for _, note := range diag.Notes {
		e.printNote(note)
	}

	if diag.Help != "" {
		e.printHelp(diag.Help)
	}

	fmt.Fprintln(e.writer)
}

func (e *Emitter) printHeader(diag *Diagnostic) {
	var color colors.COLOR
	switch diag.Severity {
	case Error:
		color = colors.BOLD_RED
	case Warning:
		color = colors.BOLD_YELLOW
	case Info:
		color = colors.BOLD_CYAN
	case Hint:
		color = colors.BOLD_PURPLE
	}

	color.Fprint(e.writer, diag.Severity.String())
	if diag.Code != "" {
		fmt.Fprintf(e.writer, "[%s]", diag.Code)
	}
	fmt.Fprint(e.writer, ": ")
	color.Fprintln(e.writer, diag.Message)
}

func (e *Emitter) printLabel(label Label, severity Severity) {
	arrow := "-->"
	color := e.getSeverityColor(severity)
	if label.Style == Secondary {
		arrow = "..."
		color = colors.GREY
	}
	colors.GREY.Fprintf(e.writer, "  %s ", arrow)
	fmt.Fprint(e.writer, label.Location.String())
	if label.Message != "" {
		color.Fprintf(e.writer, " %s", label.Message)
	}
	fmt.Fprintln(e.writer)
}

func (e *Emitter) printNote(note Note) {
	colors.CYAN.Fprint(e.writer, "  = note: ")
	fmt.Fprintln(e.writer, note.Message)
}

func (e *Emitter) printHelp(help string) {
	colors.GREEN.Fprint(e.writer, "  = help: ")
	fmt.Fprintln(e.writer, help)
}

// getSeverityColor returns the color for a given severity
func (e *Emitter) getSeverityColor(severity Severity) colors.COLOR {
	switch severity {
	case Error:
		return colors.RED
	case Warning:
		return colors.YELLOW
	case Info:
		return colors.BLUE
	case Hint:
		return colors.PURPLE
	default:
		return colors.RED
	}
}
