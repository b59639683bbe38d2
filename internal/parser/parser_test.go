package parser_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minnieml/mmlc/internal/ast"
	"github.com/minnieml/mmlc/internal/lexer"
	"github.com/minnieml/mmlc/internal/parser"
)

func parseModule(t *testing.T, src string) *ast.Module {
	t.Helper()
	l := lexer.New([]byte(src), "test.mml")
	p := parser.New(l)
	mod := p.Parse("Test")
	assert.Empty(t, p.Errors())
	return mod
}

func TestParseLetBinding(t *testing.T) {
	mod := parseModule(t, `let x : Int = 42;`)
	require.Len(t, mod.Members, 1)
	bnd, ok := mod.Members[0].(*ast.Bnd)
	require.True(t, ok)
	assert.Equal(t, "x", bnd.Name)
	lit, ok := bnd.Value.(*ast.Literal)
	require.True(t, ok)
	assert.Equal(t, ast.IntLit, lit.Kind)
}

func TestParseFunctionDeclaration(t *testing.T) {
	mod := parseModule(t, `fn add(a: Int, b: Int) : Int = a + b;`)
	require.Len(t, mod.Members, 1)
	bnd, ok := mod.Members[0].(*ast.Bnd)
	require.True(t, ok)
	assert.Equal(t, "add", bnd.Name)
	lam, ok := bnd.Value.(*ast.Lambda)
	require.True(t, ok)
	require.Len(t, lam.Params, 2)
	assert.Equal(t, "a", lam.Params[0].Name)
	assert.Equal(t, "b", lam.Params[1].Name)
}

func TestParseBinaryOperatorDeclaration(t *testing.T) {
	mod := parseModule(t, `op <+> (a: Int, b: Int) 65 left = a + b;`)
	require.Len(t, mod.Members, 1)
	op, ok := mod.Members[0].(*ast.BinOpDef)
	require.True(t, ok)
	assert.Equal(t, "<+>", op.Name)
	assert.Equal(t, uint8(65), op.Precedence)
	assert.Equal(t, ast.Left, op.Assoc)
}

func TestParseConditional(t *testing.T) {
	mod := parseModule(t, `fn main() : Int = if true then 1 else 2;`)
	bnd := mod.Members[0].(*ast.Bnd)
	lam := bnd.Value.(*ast.Lambda)
	cond, ok := lam.Body.(*ast.Cond)
	require.True(t, ok)
	_ = cond
}

func TestParseRecoversFromMalformedMember(t *testing.T) {
	l := lexer.New([]byte("let = ;\nlet y = 1;"), "test.mml")
	p := parser.New(l)
	mod := p.Parse("Test")
	require.Len(t, mod.Members, 2)
	_, ok := mod.Members[0].(*ast.ParsingMemberError)
	require.True(t, ok, "expected the malformed member to surface as ParsingMemberError")

	// recovery should still produce the well-formed second member
	var sawY bool
	for _, m := range mod.Members {
		if bnd, ok := m.(*ast.Bnd); ok && bnd.Name == "y" {
			sawY = true
		}
	}
	assert.True(t, sawY, "expected parser to recover and still parse 'y'")
}

func TestParseUnitAndTuple(t *testing.T) {
	mod := parseModule(t, `let u = ();`)
	bnd := mod.Members[0].(*ast.Bnd)
	lit, ok := bnd.Value.(*ast.Literal)
	require.True(t, ok)
	assert.Equal(t, ast.UnitLit, lit.Kind)
}
