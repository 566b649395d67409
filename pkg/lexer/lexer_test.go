package lexer

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTokenizeDeclarations(t *testing.T) {
	toks, err := Tokenize(`var x = 1 + 2.5;`)
	require.NoError(t, err)

	kinds := make([]Kind, 0, len(toks))
	for _, tok := range toks {
		kinds = append(kinds, tok.Kind)
	}
	require.Equal(t, []Kind{Keyword, Ident, Op, Number, Op, Number, Punct, EOF}, kinds)
}

func TestTokenizeString(t *testing.T) {
	toks, err := Tokenize(`"hello\nworld"`)
	require.NoError(t, err)
	require.Equal(t, String, toks[0].Kind)
	require.Equal(t, "hello\nworld", toks[0].Text)
}

func TestTokenizeComments(t *testing.T) {
	toks, err := Tokenize("var x = 1; // trailing\n/* block */ var y = 2;")
	require.NoError(t, err)

	var kws []string
	for _, tok := range toks {
		if tok.Kind == Keyword {
			kws = append(kws, tok.Text)
		}
	}
	require.Equal(t, []string{"var", "var"}, kws)
}

func TestTokenizeOperators(t *testing.T) {
	toks, err := Tokenize("a == b && c != d")
	require.NoError(t, err)

	var ops []string
	for _, tok := range toks {
		if tok.Kind == Op {
			ops = append(ops, tok.Text)
		}
	}
	require.Equal(t, []string{"==", "&&", "!="}, ops)
}

func TestUnterminatedStringFails(t *testing.T) {
	_, err := Tokenize(`"unterminated`)
	require.Error(t, err)
}
