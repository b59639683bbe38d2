// Package semantic implements the seven ordered semantic phases:
// ParsingErrorChecker, DuplicateNameChecker, TypeResolver, RefResolver,
// ExpressionRewriter, Simplifier, TypeChecker. Each phase is a pure
// function State -> State, threading a single mutable value through
// seven ordered named stages.
package semantic

import (
	"fmt"

	"github.com/minnieml/mmlc/internal/ast"
	"github.com/minnieml/mmlc/internal/errs"
)

// State is the value threaded through every phase: the current Module,
// the growing diagnostics vector, and the resolvables index rebuilt after
// every structural change.
type State struct {
	Module  *ast.Module
	Errors  []*errs.Report
	Index   *ast.ResolvablesIndex
}

// NewState wraps a freshly parsed (and stdlib-injected) Module.
func NewState(mod *ast.Module) State {
	s := State{Module: mod}
	s.Index = BuildResolvablesIndex(mod)
	return s
}

// appendError returns a copy of errs with r appended; phases never mutate
// previous entries, only append.
func appendError(list []*errs.Report, r *errs.Report) []*errs.Report {
	out := make([]*errs.Report, len(list), len(list)+1)
	copy(out, list)
	return append(out, r)
}

// BuildResolvablesIndex walks every member and nested FnParam, assigning a
// stable id on first build (see AssignIDs) and collecting them into a
// lookup map.
func BuildResolvablesIndex(mod *ast.Module) *ast.ResolvablesIndex {
	AssignIDs(mod)
	byID := map[string]ast.Resolvable{}
	for _, m := range mod.Members {
		collectResolvables(m, byID)
	}
	return ast.NewResolvablesIndex(byID)
}

func collectResolvables(m ast.Member, byID map[string]ast.Resolvable) {
	switch v := m.(type) {
	case *ast.Bnd:
		byID[v.ResolvableID()] = v
		collectExprParams(v.Value, byID)
	case *ast.TypeDef:
		byID[v.ResolvableID()] = v
	case *ast.TypeAlias:
		byID[v.ResolvableID()] = v
	case *ast.TypeStruct:
		byID[v.ResolvableID()] = v
	case *ast.BinOpDef:
		byID[v.ResolvableID()] = v
		byID[v.Left.ResolvableID()] = &v.Left
		byID[v.Right.ResolvableID()] = &v.Right
	case *ast.UnaryOpDef:
		byID[v.ResolvableID()] = v
		byID[v.Operand.ResolvableID()] = &v.Operand
	}
}

func collectExprParams(e ast.Expr, byID map[string]ast.Resolvable) {
	if app, ok := e.(*ast.App); ok {
		collectExprParams(app.Fn, byID)
		collectExprParams(app.Arg, byID)
		return
	}
	lam, ok := e.(*ast.Lambda)
	if !ok {
		return
	}
	for _, p := range lam.Params {
		byID[p.ResolvableID()] = p
	}
	collectExprParams(lam.Body, byID)
}

// AssignIDs assigns a stable id to every Resolvable in declaration order:
// "<name>#<index>" for module members, "<ownerID>.<paramName>#<index>" for
// lambda parameters (including those of local lets), "<ownerID>.left",
// ".right" or ".operand" for operator parameters. Re-running on an unchanged member sequence yields identical
// ids.
func AssignIDs(mod *ast.Module) {
	for i, m := range mod.Members {
		switch v := m.(type) {
		case *ast.Bnd:
			id := fmt.Sprintf("%s#%d", v.Name, i)
			v.SetID(id)
			assignLambdaParamIDs(id, v.Value)
		case *ast.TypeDef:
			v.SetID(fmt.Sprintf("%s#%d", v.Name, i))
		case *ast.TypeAlias:
			v.SetID(fmt.Sprintf("%s#%d", v.Name, i))
		case *ast.TypeStruct:
			v.SetID(fmt.Sprintf("%s#%d", v.Name, i))
		case *ast.BinOpDef:
			id := fmt.Sprintf("%s#%d", v.Name, i)
			v.SetID(id)
			v.Left.SetID(id + ".left")
			v.Right.SetID(id + ".right")
		case *ast.UnaryOpDef:
			id := fmt.Sprintf("%s#%d", v.Name, i)
			v.SetID(id)
			v.Operand.SetID(id + ".operand")
		}
	}
}

func assignLambdaParamIDs(ownerID string, e ast.Expr) {
	if app, ok := e.(*ast.App); ok {
		assignLambdaParamIDs(ownerID, app.Fn)
		assignLambdaParamIDs(ownerID, app.Arg)
		return
	}
	lam, ok := e.(*ast.Lambda)
	if !ok {
		return
	}
	for i, p := range lam.Params {
		p.SetID(fmt.Sprintf("%s.%s#%d", ownerID, p.Name, i))
	}
	assignLambdaParamIDs(ownerID, lam.Body)
}

// memberName returns the declared name of a Member, or "" for wrapper
// kinds that have none (DuplicateMember/InvalidMember/ParsingMemberError).
func memberName(m ast.Member) (name, kind string, ok bool) {
	switch v := m.(type) {
	case *ast.Bnd:
		if _, isFn := v.Value.(*ast.Lambda); isFn {
			return v.Name, "fn", true
		}
		return v.Name, "bnd", true
	case *ast.TypeDef:
		return v.Name, "typedef", true
	case *ast.TypeAlias:
		return v.Name, "typealias", true
	case *ast.TypeStruct:
		return v.Name, "typestruct", true
	case *ast.BinOpDef:
		return v.Name, "bin", true
	case *ast.UnaryOpDef:
		return v.Name, "unary", true
	default:
		return "", "", false
	}
}
