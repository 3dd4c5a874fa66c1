// Package errors formats compiler diagnostics for the three core passes
// (lowering, code generation, serialization). It distinguishes structural
// violations from unsupported constructs and scope-discipline
// violations — the last of which is an internal invariant rather than a
// user-facing diagnostic.
package errors

import (
	"fmt"
	"strings"

	"github.com/cwbudde/tswasmc/internal/span"
)

// Kind discriminates the category of a CompilerError.
type Kind int

const (
	// Structural is a programmer-visible compiler bug: e.g. `this`
	// outside a class context, a non-identifier call target, a missing
	// semantic symbol for a declared parameter.
	Structural Kind = iota
	// Unsupported marks a construct this layer explicitly declines to
	// implement: F32 operators beyond +, U32/boolean binary operators,
	// string/object literals in codegen, post-inc/dec.
	Unsupported
)

// CompilerError is a single diagnostic anchored to a source span.
type CompilerError struct {
	Kind    Kind
	Message string
	Span    span.Span
}

// New creates a CompilerError of the given kind.
func New(kind Kind, s span.Span, format string, args ...interface{}) *CompilerError {
	return &CompilerError{Kind: kind, Span: s, Message: fmt.Sprintf(format, args...)}
}

// Structuralf creates a Structural CompilerError.
func Structuralf(s span.Span, format string, args ...interface{}) *CompilerError {
	return New(Structural, s, format, args...)
}

// Unsupportedf creates an Unsupported CompilerError.
func Unsupportedf(s span.Span, format string, args ...interface{}) *CompilerError {
	return New(Unsupported, s, format, args...)
}

// Error implements the error interface.
func (e *CompilerError) Error() string {
	return e.Format()
}

func (k Kind) String() string {
	switch k {
	case Structural:
		return "structural error"
	case Unsupported:
		return "not implemented"
	default:
		return "error"
	}
}

// Format renders the diagnostic with its span, following an "Error at
// line:column" header convention adapted to spans instead of bare
// line/column positions (spans may be synthetic, in which case no
// location is printed).
func (e *CompilerError) Format() string {
	var sb strings.Builder
	sb.WriteString(e.Kind.String())
	if !e.Span.Synthetic {
		sb.WriteString(" at ")
		sb.WriteString(e.Span.String())
	} else {
		sb.WriteString(" in compiler-generated code")
	}
	sb.WriteString(": ")
	sb.WriteString(e.Message)
	return sb.String()
}

// FormatWithSource renders the diagnostic with a `%4d | `-style gutter
// holding the offending source line, a caret under the exact byte
// offset, then the message. A synthetic span (or a byte offset the
// source doesn't cover) falls back to Format, since compiler-generated
// nodes have no source line to show.
func (e *CompilerError) FormatWithSource(source string) string {
	if e.Span.Synthetic || e.Span.Start < 0 || e.Span.Start > len(source) {
		return e.Format()
	}
	line, col, text := sourceLineAt(source, e.Span.Start)
	if text == "" {
		return e.Format()
	}

	var sb strings.Builder
	sb.WriteString(e.Kind.String())
	sb.WriteString(" at ")
	sb.WriteString(e.Span.String())
	sb.WriteString(": ")
	sb.WriteString(e.Message)
	sb.WriteString("\n")

	gutter := fmt.Sprintf("%4d | ", line)
	sb.WriteString(gutter)
	sb.WriteString(text)
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat(" ", len(gutter)+col-1))
	sb.WriteString("^")
	return sb.String()
}

// sourceLineAt returns the 1-based line and column of byte offset
// within source, along with that line's text (without its terminator).
func sourceLineAt(source string, offset int) (line, col int, text string) {
	line = 1
	lineStart := 0
	for i := 0; i < offset && i < len(source); i++ {
		if source[i] == '\n' {
			line++
			lineStart = i + 1
		}
	}
	lineEnd := strings.IndexByte(source[lineStart:], '\n')
	if lineEnd == -1 {
		text = source[lineStart:]
	} else {
		text = source[lineStart : lineStart+lineEnd]
	}
	col = offset - lineStart + 1
	return line, col, text
}

// FormatErrors aggregates several diagnostics the way a multi-file
// compile driver would, numbering each in sequence.
func FormatErrors(errs []*CompilerError) string {
	if len(errs) == 0 {
		return ""
	}
	if len(errs) == 1 {
		return errs[0].Format()
	}
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("compilation failed with %d error(s):\n", len(errs)))
	for i, e := range errs {
		sb.WriteString(fmt.Sprintf("[%d/%d] %s\n", i+1, len(errs), e.Format()))
	}
	return sb.String()
}

// Aggregate turns a slice of CompilerErrors into a single error value,
// or nil if the slice is empty. Callers that collect errors across
// files use this to produce one error to return.
func Aggregate(errs []*CompilerError) error {
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%s", FormatErrors(errs))
}
