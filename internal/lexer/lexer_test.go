package lexer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minnieml/mmlc/internal/lexer"
)

func tokenTypes(t *testing.T, src string) []lexer.TokenType {
	t.Helper()
	l := lexer.New([]byte(src), "test.mml")
	var kinds []lexer.TokenType
	for {
		tok := l.NextToken()
		if tok.Type == lexer.EOF {
			break
		}
		kinds = append(kinds, tok.Type)
	}
	return kinds
}

func TestLexerKeywordsAndPunctuation(t *testing.T) {
	kinds := tokenTypes(t, `let x : Int = 1;`)
	require.Equal(t, []lexer.TokenType{
		lexer.LET, lexer.BINDING_IDENT, lexer.COLON, lexer.TYPE_IDENT,
		lexer.EQUALS, lexer.INT, lexer.SEMI,
	}, kinds)
}

func TestLexerOperatorIdentifier(t *testing.T) {
	kinds := tokenTypes(t, `a <+> b`)
	require.Equal(t, []lexer.TokenType{
		lexer.BINDING_IDENT, lexer.OP_IDENT, lexer.BINDING_IDENT,
	}, kinds)
}

func TestLexerLineCommentIsWhitespace(t *testing.T) {
	kinds := tokenTypes(t, "let x = 1; # trailing comment\nlet y = 2;")
	assert.Len(t, kinds, 10)
}

func TestLexerSurfacesDocComment(t *testing.T) {
	l := lexer.New([]byte("#- doc -#\nlet x = 1;"), "test.mml")
	first := l.NextToken()
	require.Equal(t, lexer.DOC_COMMENT, first.Type)
	assert.Equal(t, "doc", first.Literal)
	second := l.NextToken()
	assert.Equal(t, lexer.LET, second.Type)
}

func TestLexerFloatVsInt(t *testing.T) {
	kinds := tokenTypes(t, `1 1.5`)
	require.Equal(t, []lexer.TokenType{lexer.INT, lexer.FLOAT}, kinds)
}
