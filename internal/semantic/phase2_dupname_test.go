package semantic_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minnieml/mmlc/internal/ast"
	"github.com/minnieml/mmlc/internal/lexer"
	"github.com/minnieml/mmlc/internal/parser"
	"github.com/minnieml/mmlc/internal/semantic"
)

func parseModule(t *testing.T, src string) *ast.Module {
	t.Helper()
	l := lexer.New([]byte(src), "test.mml")
	p := parser.New(l)
	mod := p.Parse("Test")
	require.Empty(t, p.Errors())
	return mod
}

func TestDuplicateNameCheckerWrapsLaterOccurrence(t *testing.T) {
	mod := parseModule(t, `
let x = 1;
let x = 2;
`)
	s := semantic.DuplicateNameChecker(semantic.NewState(mod))
	require.Len(t, s.Module.Members, 2)
	_, ok := s.Module.Members[0].(*ast.Bnd)
	assert.True(t, ok, "first occurrence stays a plain Bnd")
	dup, ok := s.Module.Members[1].(*ast.DuplicateMember)
	require.True(t, ok, "second occurrence must be wrapped as DuplicateMember")
	assert.Same(t, s.Module.Members[0], dup.FirstOccurrence)

	var sawDup001 bool
	for _, r := range s.Errors {
		if r.Code == "DUP001" {
			sawDup001 = true
		}
	}
	assert.True(t, sawDup001, "expected a DUP001 diagnostic")
}

func TestDuplicateNameCheckerAllowsSharedBinUnaryName(t *testing.T) {
	mod := parseModule(t, `
op <-> (a: Int, b: Int) 65 left = a - b;
op <-> (a: Int) = 0 - a;
`)
	s := semantic.DuplicateNameChecker(semantic.NewState(mod))
	require.Len(t, s.Module.Members, 2)
	_, isBin := s.Module.Members[0].(*ast.BinOpDef)
	_, isUnary := s.Module.Members[1].(*ast.UnaryOpDef)
	assert.True(t, isBin)
	assert.True(t, isUnary)

	for _, r := range s.Errors {
		assert.NotEqual(t, "DUP001", r.Code, "a binary/unary pair sharing a name must not collide")
	}
}

func TestDuplicateNameCheckerRejectsDuplicateParams(t *testing.T) {
	mod := parseModule(t, `fn add(a: Int, a: Int) : Int = a + a;`)
	s := semantic.DuplicateNameChecker(semantic.NewState(mod))
	require.Len(t, s.Module.Members, 1)
	invalid, ok := s.Module.Members[0].(*ast.InvalidMember)
	require.True(t, ok, "a function with a repeated parameter name must be wrapped as InvalidMember")
	assert.Contains(t, invalid.Reason, "a")

	var sawDup002 bool
	for _, r := range s.Errors {
		if r.Code == "DUP002" {
			sawDup002 = true
		}
	}
	assert.True(t, sawDup002, "expected a DUP002 diagnostic")
}
