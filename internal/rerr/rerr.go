// Package rerr implements the ryan error taxonomy: span-tagged parse
// errors, and a samber/oops-backed fatal-error channel carrying the
// evaluator's context stack (spec.md §7).
package rerr

import (
	"fmt"
	"strings"

	"github.com/samber/oops"
)

// Error codes for the five error families named in spec.md §7.
const (
	CodeParse  = "ERR_PARSE"
	CodeBind   = "ERR_BIND"
	CodeEval   = "ERR_EVAL"
	CodeImport = "ERR_IMPORT"
	CodeDecode = "ERR_DECODE"
)

// ParseError is one span-tagged syntax error. The parser accumulates
// these into a slice rather than failing on the first one, so a single
// source file can be checked for every syntax mistake in one pass.
type ParseError struct {
	Message string
	Span    Span
}

// Span is a minimal position record; internal/syntax.Span satisfies this
// shape but rerr doesn't import syntax, to avoid a dependency cycle
// (syntax imports rerr for ParseError).
type Span struct {
	Filename string
	Line     int
	Col      int
	Excerpt  string
}

func (e *ParseError) Error() string {
	if e.Span.Excerpt != "" {
		return fmt.Sprintf("%s:%d:%d: %s\n%s", e.Span.Filename, e.Span.Line, e.Span.Col, e.Message, e.Span.Excerpt)
	}
	return fmt.Sprintf("%s:%d:%d: %s", e.Span.Filename, e.Span.Line, e.Span.Col, e.Message)
}

// ParseErrors is a non-empty accumulation of ParseError, reported as one
// rendered multi-error.
type ParseErrors []*ParseError

func (e ParseErrors) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d parse error(s):\n", len(e))
	for _, pe := range e {
		b.WriteString(pe.Error())
		b.WriteString("\n")
	}
	return b.String()
}

// Frame is one entry of the evaluator's context stack, e.g. "Evaluating
// binding x" or "Loading import \"foo.ryan\"". internal/eval keeps its
// own []Frame stack and pushes/pops it on every return path (including
// error paths); New/Newf are given the current stack snapshot whenever a
// fatal error is raised, outermost frame first.
type Frame string

// New builds a fatal oops-backed error tagged with the given code and
// context-stack frames (outermost first), wrapping cause.
func New(code string, cause error, frames []Frame) error {
	b := oops.Code(code)
	for i, f := range frames {
		b = b.With(fmt.Sprintf("frame.%02d", i), string(f))
	}
	return b.Wrap(cause)
}

// Newf is New with a formatted message instead of a wrapped cause.
func Newf(code string, frames []Frame, format string, args ...any) error {
	b := oops.Code(code)
	for i, f := range frames {
		b = b.With(fmt.Sprintf("frame.%02d", i), string(f))
	}
	return b.Errorf(format, args...)
}

// Render prints the oops error followed by its context-stack frames,
// one per line, outermost (oldest) frame first.
func Render(err error) string {
	oopsErr, ok := oops.AsOops(err)
	if !ok {
		return err.Error()
	}

	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s\n", oopsErr.Code(), oopsErr.Error())

	ctx := oopsErr.Context()
	for i := 0; ; i++ {
		key := fmt.Sprintf("frame.%02d", i)
		frame, ok := ctx[key]
		if !ok {
			break
		}
		fmt.Fprintf(&b, "  while: %v\n", frame)
	}

	return b.String()
}

// Code extracts the oops error code from err, or "" if err isn't one of
// ours.
func Code(err error) string {
	if oopsErr, ok := oops.AsOops(err); ok {
		return oopsErr.Code()
	}
	return ""
}
