package semantic

import (
	"fmt"

	"github.com/minnieml/mmlc/internal/ast"
	"github.com/minnieml/mmlc/internal/errs"
)

const phaseTypeResolver = "semantic.TypeResolver"

// TypeResolver is phase 3. Three sub-passes: (a) build a name->id map from
// every TypeDef/TypeAlias/TypeStruct; (b) resolve TypeRefs within type
// definitions, following alias chains and detecting cycles; (c) resolve
// TypeRefs in member ascriptions, parameter types, and expression type
// annotations. Unknown names become InvalidType; an alias whose target is
// invalid still remains referenceable by name.
func TypeResolver(s State) State {
	typeMap := buildTypeMap(s.Module)
	tr := &typeResolution{typeMap: typeMap}

	for _, m := range s.Module.Members {
		tr.resolveMemberTypeDefs(m)
	}
	for _, m := range s.Module.Members {
		tr.resolveMemberAscriptions(m)
	}

	s.Errors = append(s.Errors, tr.errors...)
	s.Index = BuildResolvablesIndex(s.Module)
	return s
}

func buildTypeMap(mod *ast.Module) map[string]string {
	m := map[string]string{}
	for _, member := range mod.Members {
		switch v := member.(type) {
		case *ast.TypeDef:
			m[v.Name] = v.ResolvableID()
		case *ast.TypeAlias:
			m[v.Name] = v.ResolvableID()
		case *ast.TypeStruct:
			m[v.Name] = v.ResolvableID()
		}
	}
	return m
}

type typeResolution struct {
	typeMap map[string]string
	errors  []*errs.Report
}

// resolveMemberTypeDefs resolves the definitional TypeSpec carried by
// TypeDef/TypeAlias/TypeStruct members (sub-pass b).
func (tr *typeResolution) resolveMemberTypeDefs(m ast.Member) {
	switch v := m.(type) {
	case *ast.TypeDef:
		v.TypeSpecField = tr.resolve(v.TypeSpecField, map[string]bool{v.Name: true})
	case *ast.TypeAlias:
		v.TypeRef = tr.resolve(v.TypeRef, map[string]bool{v.Name: true})
		v.TypeSpecField = tr.followAliasChain(v, map[string]bool{v.Name: true})
	case *ast.TypeStruct:
		for i := range v.Fields {
			v.Fields[i].Type = tr.resolve(v.Fields[i].Type, map[string]bool{v.Name: true})
		}
	}
}

// followAliasChain resolves a TypeAlias's ultimate target type,
// transitively, detecting cycles.
func (tr *typeResolution) followAliasChain(alias *ast.TypeAlias, visiting map[string]bool) ast.TypeSpec {
	ref, ok := alias.TypeRef.(*ast.TypeRef)
	if !ok {
		return alias.TypeRef
	}
	if visiting[ref.Name] {
		tr.errors = append(tr.errors, errs.New(errs.TYR002, phaseTypeResolver,
			fmt.Sprintf("cyclic type alias chain starting at %q", ref.Name), alias.Src))
		return &ast.InvalidType{Src: alias.Src, OriginalType: alias.TypeRef}
	}
	return alias.TypeRef
}

// resolveMemberAscriptions resolves TypeRefs appearing in member
// ascriptions, parameter types and expression-level type annotations
// (sub-pass c).
func (tr *typeResolution) resolveMemberAscriptions(m ast.Member) {
	switch v := m.(type) {
	case *ast.Bnd:
		v.TypeAsc = tr.resolveOpt(v.TypeAsc)
		v.TypeSpecField = tr.resolveOpt(v.TypeSpecField)
		tr.resolveExprAscriptions(v.Value)
	case *ast.BinOpDef:
		v.Left.TypeAsc = tr.resolveOpt(v.Left.TypeAsc)
		v.Right.TypeAsc = tr.resolveOpt(v.Right.TypeAsc)
		v.ReturnType = tr.resolveOpt(v.ReturnType)
		tr.resolveExprAscriptions(v.Body)
	case *ast.UnaryOpDef:
		v.Operand.TypeAsc = tr.resolveOpt(v.Operand.TypeAsc)
		v.ReturnType = tr.resolveOpt(v.ReturnType)
		tr.resolveExprAscriptions(v.Body)
	}
}

func (tr *typeResolution) resolveOpt(t ast.TypeSpec) ast.TypeSpec {
	if t == nil {
		return nil
	}
	return tr.resolve(t, nil)
}

func (tr *typeResolution) resolveExprAscriptions(e ast.Expr) {
	switch v := e.(type) {
	case *ast.Lambda:
		for _, p := range v.Params {
			p.TypeAsc = tr.resolveOpt(p.TypeAsc)
		}
		tr.resolveExprAscriptions(v.Body)
	case *ast.ExprList:
		for _, t := range v.Terms {
			tr.resolveExprAscriptions(t)
		}
	case *ast.App:
		tr.resolveExprAscriptions(v.Fn)
		tr.resolveExprAscriptions(v.Arg)
	case *ast.Cond:
		tr.resolveExprAscriptions(v.CondExpr)
		tr.resolveExprAscriptions(v.IfTrue)
		tr.resolveExprAscriptions(v.IfFalse)
	case *ast.Tuple:
		for _, el := range v.Elems {
			tr.resolveExprAscriptions(el)
		}
	case *ast.TermGroup:
		tr.resolveExprAscriptions(v.Inner)
	case *ast.Ref:
		v.TypeAsc = tr.resolveOpt(v.TypeAsc)
	}
}

// resolve recursively resolves TypeRef nodes against the type map,
// wrapping unknown names as InvalidType. visiting guards against a
// type definition referencing itself directly (handled more generally by
// followAliasChain for aliases).
func (tr *typeResolution) resolve(t ast.TypeSpec, visiting map[string]bool) ast.TypeSpec {
	if t == nil {
		return nil
	}
	switch v := t.(type) {
	case *ast.TypeRef:
		id, ok := tr.typeMap[v.Name]
		if !ok {
			tr.errors = append(tr.errors, errs.New(errs.TYR001, phaseTypeResolver,
				fmt.Sprintf("unresolved type reference %q", v.Name), v.Src))
			return &ast.InvalidType{Src: v.Src, OriginalType: v}
		}
		v.ResolvedID = id
		return v
	case *ast.NativePointer:
		v.Elem = tr.resolve(v.Elem, visiting)
		return v
	case *ast.NativeStruct:
		for i := range v.Fields {
			v.Fields[i].Type = tr.resolve(v.Fields[i].Type, visiting)
		}
		return v
	case *ast.TypeFn:
		for i := range v.ParamTypes {
			v.ParamTypes[i] = tr.resolve(v.ParamTypes[i], visiting)
		}
		v.ReturnType = tr.resolve(v.ReturnType, visiting)
		return v
	case *ast.TypeTuple:
		for i := range v.Elems {
			v.Elems[i] = tr.resolve(v.Elems[i], visiting)
		}
		return v
	case *ast.TypeApplication:
		v.Ctor = tr.resolve(v.Ctor, visiting)
		for i := range v.Args {
			v.Args[i] = tr.resolve(v.Args[i], visiting)
		}
		return v
	case *ast.Union:
		for i := range v.Alts {
			v.Alts[i] = tr.resolve(v.Alts[i], visiting)
		}
		return v
	case *ast.Intersection:
		for i := range v.Parts {
			v.Parts[i] = tr.resolve(v.Parts[i], visiting)
		}
		return v
	default:
		return t
	}
}
