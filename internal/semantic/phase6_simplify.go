package semantic

import "github.com/minnieml/mmlc/internal/ast"

// Simplifier is phase 6: unwraps single-term ExprLists left over from
// positions the rewriter did not touch (parameter defaults, nested
// native attributes) and strips TermGroup parens now that precedence is
// fully resolved. Idempotent — running it twice is a no-op.
func Simplifier(s State) State {
	sp := &simplifier{}
	for _, m := range s.Module.Members {
		sp.simplifyMember(m)
	}
	s.Index = BuildResolvablesIndex(s.Module)
	return s
}

type simplifier struct{}

func (sp *simplifier) simplifyMember(m ast.Member) {
	switch v := m.(type) {
	case *ast.Bnd:
		v.Value = sp.simplify(v.Value)
	case *ast.BinOpDef:
		v.Body = sp.simplify(v.Body)
	case *ast.UnaryOpDef:
		v.Body = sp.simplify(v.Body)
	}
}

// simplify strips TermGroup wrappers and flattens any ExprList that
// survived the rewriter (this can only happen for an empty or
// already-collapsed list; a non-trivial ExprList at this point indicates
// the rewriter produced InvalidExpression instead).
func (sp *simplifier) simplify(e ast.Expr) ast.Expr {
	switch v := e.(type) {
	case nil:
		return nil
	case *ast.ExprList:
		if len(v.Terms) == 1 {
			return sp.simplify(v.Terms[0])
		}
		return v
	case *ast.TermGroup:
		return sp.simplify(v.Inner)
	case *ast.App:
		v.Fn = sp.simplify(v.Fn)
		v.Arg = sp.simplify(v.Arg)
		return v
	case *ast.Lambda:
		v.Body = sp.simplify(v.Body)
		return v
	case *ast.Cond:
		v.CondExpr = sp.simplify(v.CondExpr)
		v.IfTrue = sp.simplify(v.IfTrue)
		v.IfFalse = sp.simplify(v.IfFalse)
		return v
	case *ast.Tuple:
		for i := range v.Elems {
			v.Elems[i] = sp.simplify(v.Elems[i])
		}
		return v
	default:
		return e
	}
}
