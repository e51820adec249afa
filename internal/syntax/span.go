package syntax

import (
	"fmt"
	"strings"
)

// Span is a half-open byte range into a source file, plus the
// line/column of its start, used for error rendering.
type Span struct {
	Filename    string
	Start       int
	End         int
	Line        int
	Col         int
}

// String renders "<filename>:<line>:<col>".
func (s Span) String() string {
	name := s.Filename
	if name == "" {
		name = "<input>"
	}
	return fmt.Sprintf("%s:%d:%d", name, s.Line, s.Col)
}

// Excerpt renders the source line the span starts on, followed by an
// ASCII-art underline under the offending range.
func Excerpt(source string, s Span) string {
	lines := strings.Split(source, "\n")
	if s.Line < 1 || s.Line > len(lines) {
		return ""
	}
	line := lines[s.Line-1]

	width := s.End - s.Start
	if width < 1 {
		width = 1
	}
	col := s.Col - 1
	if col < 0 {
		col = 0
	}
	if col > len(line) {
		col = len(line)
	}
	maxWidth := len(line) - col
	if width > maxWidth {
		width = maxWidth
	}
	if width < 1 {
		width = 1
	}

	var underline strings.Builder
	underline.WriteString(strings.Repeat(" ", col))
	underline.WriteString(strings.Repeat("^", width))

	return fmt.Sprintf("%s\n%s", line, underline.String())
}
