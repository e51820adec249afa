package rerr_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tokahuke/ryan/internal/rerr"
)

func TestParseErrorIncludesSpanAndExcerpt(t *testing.T) {
	pe := &rerr.ParseError{
		Message: "unexpected token",
		Span: rerr.Span{
			Filename: "main.ryan",
			Line:     3,
			Col:      7,
			Excerpt:  "  let x = \n        ^",
		},
	}

	msg := pe.Error()
	require.Contains(t, msg, "main.ryan:3:7")
	require.Contains(t, msg, "unexpected token")
	require.Contains(t, msg, "^")
}

func TestParseErrorWithoutExcerptOmitsTrailingNewline(t *testing.T) {
	pe := &rerr.ParseError{
		Message: "unexpected token",
		Span:    rerr.Span{Filename: "main.ryan", Line: 1, Col: 1},
	}
	require.Equal(t, `main.ryan:1:1: unexpected token`, pe.Error())
}

func TestParseErrorsRendersCountAndEachEntry(t *testing.T) {
	errs := rerr.ParseErrors{
		&rerr.ParseError{Message: "first", Span: rerr.Span{Filename: "a.ryan", Line: 1, Col: 1}},
		&rerr.ParseError{Message: "second", Span: rerr.Span{Filename: "a.ryan", Line: 2, Col: 1}},
	}

	msg := errs.Error()
	require.Contains(t, msg, "2 parse error(s)")
	require.Contains(t, msg, "first")
	require.Contains(t, msg, "second")
}

func TestNewWrapsCauseWithCodeAndFrames(t *testing.T) {
	cause := errors.New("boom")
	err := rerr.New(rerr.CodeEval, cause, []rerr.Frame{"Running file", "Evaluating binding x"})

	require.Equal(t, rerr.CodeEval, rerr.Code(err))
	require.ErrorContains(t, err, "boom")

	rendered := rerr.Render(err)
	require.Contains(t, rendered, "[ERR_EVAL]")
	require.Contains(t, rendered, "while: Running file")
	require.Contains(t, rendered, "while: Evaluating binding x")
}

func TestNewfBuildsFormattedMessage(t *testing.T) {
	err := rerr.Newf(rerr.CodeImport, []rerr.Frame{`Loading import "foo.ryan"`}, "path %q not found", "foo.ryan")

	require.Equal(t, rerr.CodeImport, rerr.Code(err))
	require.ErrorContains(t, err, `path "foo.ryan" not found`)
}

func TestRenderFallsBackToPlainErrorForNonOopsError(t *testing.T) {
	plain := errors.New("plain failure")
	require.Equal(t, "plain failure", rerr.Render(plain))
}

func TestCodeIsEmptyForNonOopsError(t *testing.T) {
	require.Equal(t, "", rerr.Code(errors.New("plain failure")))
}

func TestFrameOrderIsOutermostFirst(t *testing.T) {
	err := rerr.New(rerr.CodeBind, errors.New("no match"), []rerr.Frame{"outer", "inner"})
	rendered := rerr.Render(err)

	outerIdx := indexOf(rendered, "while: outer")
	innerIdx := indexOf(rendered, "while: inner")
	require.True(t, outerIdx >= 0 && innerIdx >= 0)
	require.Less(t, outerIdx, innerIdx)
}

func indexOf(haystack, needle string) int {
	for i := 0; i+len(needle) <= len(haystack); i++ {
		if haystack[i:i+len(needle)] == needle {
			return i
		}
	}
	return -1
}
