package ast_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/minnieml/mmlc/internal/ast"
	"github.com/minnieml/mmlc/internal/compiler"
	"github.com/minnieml/mmlc/internal/config"
	"github.com/minnieml/mmlc/internal/semantic"
)

// resolvedMain compiles src through the full pipeline (semantic phases,
// ownership and codegen) and returns main's lambda body alongside the
// resolved module's index, so FlattenApp/Callee* can be exercised against
// real Ref nodes instead of hand-built fixtures.
func resolvedMain(t *testing.T, src string) (ast.Expr, *ast.ResolvablesIndex) {
	t.Helper()
	cs := compiler.Compile([]byte(src), "Scenario", config.Default())
	require.False(t, cs.HasErrors(), "unexpected compile errors")
	idx := semantic.BuildResolvablesIndex(cs.Module)
	for _, m := range cs.Module.Members {
		bnd, ok := m.(*ast.Bnd)
		if !ok || bnd.Name != "main" {
			continue
		}
		lam, ok := bnd.Value.(*ast.Lambda)
		require.True(t, ok)
		return lam.Body, idx
	}
	t.Fatal("main not found")
	return nil, nil
}

func TestFlattenAppCollapsesCallChain(t *testing.T) {
	body, _ := resolvedMain(t, `
fn add(a: Int, b: Int) : Int = a + b;
fn main() : Int = add 1 2;
`)
	callee, args := ast.FlattenApp(body)
	ref, ok := callee.(*ast.Ref)
	require.True(t, ok, "callee must be the resolved add Ref")
	require.Equal(t, "add", ref.Name)
	require.Len(t, args, 2)
}

func TestCalleeParamsLooksThroughResolvedRef(t *testing.T) {
	body, idx := resolvedMain(t, `
fn add(a: Int, b: Int) : Int = a + b;
fn main() : Int = add 1 2;
`)
	callee, _ := ast.FlattenApp(body)
	params := ast.CalleeParams(callee, idx)
	require.Len(t, params, 2)
	require.Equal(t, "a", params[0].Name)
	require.Equal(t, "b", params[1].Name)
}

func TestCalleeParamsNilForUnresolvedRef(t *testing.T) {
	ref := &ast.Ref{Name: "whatever"}
	require.Nil(t, ast.CalleeParams(ref, ast.NewResolvablesIndex(nil)))
}

func TestCalleeNativeBodyFindsStdlibIntrinsic(t *testing.T) {
	body, idx := resolvedMain(t, `
fn main() : Int = let _ : Unit = print "x"; 0;
`)
	// the let-desugared body is an App(Lambda, App(print, "x")) chain;
	// walk down to the print call specifically.
	var printCallee ast.Expr
	var find func(e ast.Expr)
	find = func(e ast.Expr) {
		if printCallee != nil {
			return
		}
		if app, ok := e.(*ast.App); ok {
			if ref, ok := app.Fn.(*ast.Ref); ok && ref.Name == "print" {
				printCallee = ref
				return
			}
			find(app.Fn)
			find(app.Arg)
		}
		if lam, ok := e.(*ast.Lambda); ok {
			find(lam.Body)
		}
	}
	find(body)
	require.NotNil(t, printCallee, "expected to find the print call in the desugared body")
	native := ast.CalleeNativeBody(printCallee, idx)
	require.NotNil(t, native, "print is stdlib-injected as a native binding")
}
