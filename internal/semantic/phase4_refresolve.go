package semantic

import (
	"github.com/minnieml/mmlc/internal/ast"
	"github.com/minnieml/mmlc/internal/errs"
)

const phaseRefResolver = "semantic.RefResolver"

// scope is one level of the lexical scope stack: name -> candidate ids.
type scope map[string][]string

// RefResolver is phase 4: for each Ref, search scopes innermost-first
// (enclosing lambda parameters, then module members — recursive and
// mutually recursive references are supported because the full member
// set is already declared before this phase runs). Candidates collects
// every match (so operator/function arity disambiguation can happen in
// phase 5); an empty candidate set replaces the Ref with
// InvalidExpression.
func RefResolver(s State) State {
	moduleScope := moduleLevelScope(s.Module)
	rr := &refResolution{moduleScope: moduleScope}

	for _, m := range s.Module.Members {
		rr.resolveMember(m)
	}

	s.Errors = append(s.Errors, rr.errors...)
	s.Index = BuildResolvablesIndex(s.Module)
	return s
}

func moduleLevelScope(mod *ast.Module) scope {
	sc := scope{}
	for _, m := range mod.Members {
		switch v := m.(type) {
		case *ast.Bnd:
			sc[v.Name] = append(sc[v.Name], v.ResolvableID())
		case *ast.BinOpDef:
			sc[v.Name] = append(sc[v.Name], v.ResolvableID())
		case *ast.UnaryOpDef:
			sc[v.Name] = append(sc[v.Name], v.ResolvableID())
		}
	}
	return sc
}

type refResolution struct {
	moduleScope scope
	errors      []*errs.Report
}

func (rr *refResolution) resolveMember(m ast.Member) {
	switch v := m.(type) {
	case *ast.Bnd:
		rr.resolveExpr(&v.Value, nil)
	case *ast.BinOpDef:
		rr.resolveExpr(&v.Body, []scope{{v.Left.Name: {v.Left.ResolvableID()}, v.Right.Name: {v.Right.ResolvableID()}}})
	case *ast.UnaryOpDef:
		rr.resolveExpr(&v.Body, []scope{{v.Operand.Name: {v.Operand.ResolvableID()}}})
	}
}

// resolveExpr walks e, replacing *e with a resolved form. scopes is the
// stack of enclosing lambda-parameter scopes, innermost last-appended
// conceptually searched from the end.
func (rr *refResolution) resolveExpr(e *ast.Expr, scopes []scope) {
	switch v := (*e).(type) {
	case *ast.Ref:
		rr.resolveRef(e, v, scopes)
	case *ast.ExprList:
		for i := range v.Terms {
			rr.resolveExpr(&v.Terms[i], scopes)
		}
	case *ast.App:
		rr.resolveExpr(&v.Fn, scopes)
		rr.resolveExpr(&v.Arg, scopes)
	case *ast.Lambda:
		inner := scope{}
		for _, p := range v.Params {
			inner[p.Name] = append(inner[p.Name], p.ResolvableID())
		}
		rr.resolveExpr(&v.Body, append(scopes, inner))
	case *ast.Cond:
		rr.resolveExpr(&v.CondExpr, scopes)
		rr.resolveExpr(&v.IfTrue, scopes)
		rr.resolveExpr(&v.IfFalse, scopes)
	case *ast.Tuple:
		for i := range v.Elems {
			rr.resolveExpr(&v.Elems[i], scopes)
		}
	case *ast.TermGroup:
		rr.resolveExpr(&v.Inner, scopes)
	}
}

func (rr *refResolution) resolveRef(slot *ast.Expr, ref *ast.Ref, scopes []scope) {
	if ref.Qualifier != nil {
		// Single-module compiles only; a
		// qualifier's own Ref chain is still resolved for diagnostics
		// but does not change which module-level scope is searched.
		rr.resolveExpr(&ref.Qualifier, scopes)
	}

	var candidates []string
	for i := len(scopes) - 1; i >= 0; i-- {
		if ids, ok := scopes[i][ref.Name]; ok {
			candidates = ids
			break
		}
	}
	if candidates == nil {
		candidates = rr.moduleScope[ref.Name]
	}

	if len(candidates) == 0 {
		rr.errors = append(rr.errors, errs.New(errs.REF001, phaseRefResolver,
			"unresolved reference \""+ref.Name+"\"", ref.Src))
		*slot = &ast.InvalidExpression{Src: ref.Src, OriginalExpr: ref}
		return
	}

	ref.Candidates = candidates
	if len(candidates) == 1 {
		ref.ResolvedID = candidates[0]
	}
}
