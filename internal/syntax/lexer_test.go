package syntax_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tokahuke/ryan/internal/syntax"
)

func TestTokenizeSkipsCommentsAndWhitespace(t *testing.T) {
	toks, err := syntax.Tokenize("<test>", "// a comment\nlet x = 1 // trailing\n")
	require.NoError(t, err)

	var texts []string
	for _, tok := range toks {
		texts = append(texts, tok.Text)
	}
	require.Equal(t, []string{"let", "x", "=", "1"}, texts)
}

func TestTokenizeTemplateString(t *testing.T) {
	toks, err := syntax.Tokenize("<test>", "`hello ${name}`")
	require.NoError(t, err)
	require.Len(t, toks, 1)
	require.Equal(t, "TemplateString", toks[0].Kind)
}

func TestIsKeyword(t *testing.T) {
	require.True(t, syntax.IsKeyword("let"))
	require.True(t, syntax.IsKeyword("import"))
	require.False(t, syntax.IsKeyword("notakeyword"))
}

func TestTokenizeDistinguishesRestFromSpread(t *testing.T) {
	toks, err := syntax.Tokenize("<test>", "[a, ..] [...b]")
	require.NoError(t, err)

	var kinds []string
	for _, tok := range toks {
		kinds = append(kinds, tok.Kind)
	}
	require.Equal(t, []string{
		"Punct", "Ident", "Punct", "Rest", "Punct",
		"Punct", "Spread", "Ident", "Punct",
	}, kinds)
}
