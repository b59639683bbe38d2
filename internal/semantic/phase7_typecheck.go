package semantic

import (
	"fmt"

	"github.com/minnieml/mmlc/internal/ast"
	"github.com/minnieml/mmlc/internal/errs"
	"github.com/minnieml/mmlc/internal/source"
)

const phaseTypeChecker = "semantic.TypeChecker"

// TypeChecker is phase 7, the last of the seven. Two sub-phases: (a)
// lower every member's declared ascriptions into a full TypeFn/value
// signature, so forward references see a complete type before bodies are
// checked; (b) a bidirectional check over each member's Expr tree.
func TypeChecker(s State) State {
	typeNames := buildTypeMap(s.Module)
	tc := &typeChecker{idx: s.Index, typeNames: typeNames, sigs: map[string]ast.TypeSpec{}}

	for _, m := range s.Module.Members {
		tc.lowerSignature(m)
	}
	for _, m := range s.Module.Members {
		tc.checkMember(m)
	}

	s.Errors = append(s.Errors, tc.errors...)
	s.Index = BuildResolvablesIndex(s.Module)
	return s
}

type typeChecker struct {
	idx       *ast.ResolvablesIndex
	typeNames map[string]string
	sigs      map[string]ast.TypeSpec
	errors    []*errs.Report
}

// lowerSignature computes the full declared type of m and records it
// under its resolvable id so later members (and recursive bodies) can
// look it up regardless of declaration order.
func (tc *typeChecker) lowerSignature(m ast.Member) {
	switch v := m.(type) {
	case *ast.Bnd:
		if lam, ok := v.Value.(*ast.Lambda); ok {
			paramTypes := make([]ast.TypeSpec, len(lam.Params))
			for i, p := range lam.Params {
				if p.TypeAsc == nil {
					tc.report(errs.TYC001, fmt.Sprintf("missing parameter type annotation for %q", p.Name), p.Src)
					paramTypes[i] = &ast.InvalidType{Src: p.Src}
				} else {
					paramTypes[i] = p.TypeAsc
				}
				p.TypeSpec = paramTypes[i]
			}
			ret := v.TypeAsc
			if ret == nil {
				ret = v.TypeSpecField
			}
			if ret == nil {
				ret = &ast.InvalidType{Src: v.Src}
			}
			fnType := &ast.TypeFn{Src: v.Src, ParamTypes: paramTypes, ReturnType: ret}
			v.TypeSpecField = fnType
			tc.sigs[v.ResolvableID()] = fnType
		} else if v.TypeAsc != nil {
			tc.sigs[v.ResolvableID()] = v.TypeAsc
		}
	case *ast.BinOpDef:
		fnType := &ast.TypeFn{Src: v.Src, ParamTypes: []ast.TypeSpec{v.Left.TypeAsc, v.Right.TypeAsc}, ReturnType: v.ReturnType}
		tc.sigs[v.ResolvableID()] = fnType
	case *ast.UnaryOpDef:
		fnType := &ast.TypeFn{Src: v.Src, ParamTypes: []ast.TypeSpec{v.Operand.TypeAsc}, ReturnType: v.ReturnType}
		tc.sigs[v.ResolvableID()] = fnType
	}
}

func (tc *typeChecker) report(code, message string, origin source.Origin) {
	tc.errors = append(tc.errors, errs.New(code, phaseTypeChecker, message, origin))
}

func (tc *typeChecker) checkMember(m ast.Member) {
	switch v := m.(type) {
	case *ast.Bnd:
		if lam, ok := v.Value.(*ast.Lambda); ok {
			fnType := tc.sigs[v.ResolvableID()].(*ast.TypeFn)
			env := map[string]ast.TypeSpec{}
			for i, p := range lam.Params {
				env[p.ResolvableID()] = fnType.ParamTypes[i]
			}
			if _, isNative := lam.Body.(*ast.NativeImpl); isNative {
				return
			}
			tc.check(lam.Body, fnType.ReturnType, env)
			return
		}
		t := tc.check(v.Value, v.TypeAsc, nil)
		if v.TypeAsc == nil {
			v.TypeSpecField = t
		}
		if fnType, ok := t.(*ast.TypeFn); ok {
			if _, alreadyLambda := v.Value.(*ast.Lambda); !alreadyLambda {
				v.Value = tc.etaExpand(v, fnType)
			}
		}
	case *ast.BinOpDef:
		if v.Native != nil {
			return
		}
		v.Left.TypeSpec = v.Left.TypeAsc
		v.Right.TypeSpec = v.Right.TypeAsc
		env := map[string]ast.TypeSpec{
			v.Left.ResolvableID():  v.Left.TypeAsc,
			v.Right.ResolvableID(): v.Right.TypeAsc,
		}
		if rt := tc.check(v.Body, v.ReturnType, env); v.ReturnType == nil {
			v.ReturnType = rt
			if sig, ok := tc.sigs[v.ResolvableID()].(*ast.TypeFn); ok {
				sig.ReturnType = rt
			}
		}
	case *ast.UnaryOpDef:
		if v.Native != nil {
			return
		}
		v.Operand.TypeSpec = v.Operand.TypeAsc
		env := map[string]ast.TypeSpec{v.Operand.ResolvableID(): v.Operand.TypeAsc}
		if rt := tc.check(v.Body, v.ReturnType, env); v.ReturnType == nil {
			v.ReturnType = rt
			if sig, ok := tc.sigs[v.ResolvableID()].(*ast.TypeFn); ok {
				sig.ReturnType = rt
			}
		}
	}
}

// check verifies e against expected (bidirectional "checking" mode) and
// returns the type the checker settled on; passing expected == nil runs
// in pure "synthesis" mode.
func (tc *typeChecker) check(e ast.Expr, expected ast.TypeSpec, env map[string]ast.TypeSpec) ast.TypeSpec {
	if h, ok := e.(*ast.Hole); ok {
		if expected == nil {
			tc.report(errs.TYC007, "hole has no expected type to satisfy", h.Src)
			return &ast.InvalidType{Src: h.Src}
		}
		return expected
	}
	if c, ok := e.(*ast.Cond); ok {
		return tc.synthCond(c, expected, env)
	}

	actual := tc.synth(e, env)
	if expected == nil {
		return actual
	}
	if tc.compatible(actual, expected) {
		return expected
	}
	if fnActual, ok := actual.(*ast.TypeFn); ok {
		if _, expectedIsFn := expected.(*ast.TypeFn); !expectedIsFn {
			_ = fnActual
			tc.report(errs.TYC004, "undersaturated application: expected a concrete value but got a partially applied function", e.Origin())
			return expected
		}
	}
	tc.report(errs.TYC002, "type mismatch", e.Origin())
	return expected
}

// synth infers e's type with no expected type available.
func (tc *typeChecker) synth(e ast.Expr, env map[string]ast.TypeSpec) ast.TypeSpec {
	switch v := e.(type) {
	case *ast.Literal:
		t := tc.literalType(v)
		v.TypeSpecField = t
		return t
	case *ast.Ref:
		t := tc.refType(v, env)
		v.TypeSpecField = t
		return t
	case *ast.App:
		return tc.synthApp(v, env)
	case *ast.Lambda:
		return tc.synthLambda(v, nil, env)
	case *ast.Cond:
		return tc.synthCond(v, nil, env)
	case *ast.Tuple:
		elems := make([]ast.TypeSpec, len(v.Elems))
		for i, el := range v.Elems {
			elems[i] = tc.synth(el, env)
		}
		t := &ast.TypeTuple{Src: v.Src, Elems: elems}
		v.TypeSpecField = t
		return t
	case *ast.TermGroup:
		return tc.synth(v.Inner, env)
	case *ast.NativeImpl:
		return &ast.TypeUnit{Src: v.Src}
	case *ast.InvalidExpression, *ast.TermError:
		return &ast.InvalidType{Src: e.Origin()}
	default:
		return &ast.InvalidType{Src: e.Origin()}
	}
}

func (tc *typeChecker) synthApp(app *ast.App, env map[string]ast.TypeSpec) ast.TypeSpec {
	calleeType := tc.synth(app.Fn, env)
	fnType, ok := calleeType.(*ast.TypeFn)
	if !ok {
		code := errs.TYC003
		if _, chained := app.Fn.(*ast.App); chained {
			code = errs.TYC005
		}
		tc.report(code, "application of a non-function value", app.Src)
		app.TypeSpecField = &ast.InvalidType{Src: app.Src}
		return app.TypeSpecField
	}
	if len(fnType.ParamTypes) == 0 {
		tc.report(errs.TYC005, "oversaturated application: too many arguments", app.Src)
		app.TypeSpecField = &ast.InvalidType{Src: app.Src}
		return app.TypeSpecField
	}
	tc.check(app.Arg, fnType.ParamTypes[0], env)

	var result ast.TypeSpec
	if len(fnType.ParamTypes) == 1 {
		result = fnType.ReturnType
	} else {
		result = &ast.TypeFn{Src: app.Src, ParamTypes: fnType.ParamTypes[1:], ReturnType: fnType.ReturnType}
	}
	app.TypeSpecField = result
	return result
}

func (tc *typeChecker) synthLambda(lam *ast.Lambda, expected *ast.TypeFn, env map[string]ast.TypeSpec) ast.TypeSpec {
	inner := map[string]ast.TypeSpec{}
	for k, v := range env {
		inner[k] = v
	}
	paramTypes := make([]ast.TypeSpec, len(lam.Params))
	for i, p := range lam.Params {
		pt := p.TypeAsc
		if pt == nil && expected != nil && i < len(expected.ParamTypes) {
			pt = expected.ParamTypes[i]
		}
		if pt == nil {
			tc.report(errs.TYC001, fmt.Sprintf("missing parameter type annotation for %q", p.Name), p.Src)
			pt = &ast.InvalidType{Src: p.Src}
		}
		paramTypes[i] = pt
		p.TypeSpec = pt
		inner[p.ResolvableID()] = pt
	}
	var ret ast.TypeSpec
	if expected != nil {
		ret = tc.check(lam.Body, expected.ReturnType, inner)
	} else {
		ret = tc.synth(lam.Body, inner)
	}
	return &ast.TypeFn{Src: lam.Src, ParamTypes: paramTypes, ReturnType: ret}
}

func (tc *typeChecker) synthCond(c *ast.Cond, expected ast.TypeSpec, env map[string]ast.TypeSpec) ast.TypeSpec {
	tc.check(c.CondExpr, tc.refType2("Bool"), env)
	trueType := tc.check(c.IfTrue, expected, env)
	falseType := tc.check(c.IfFalse, expected, env)
	if expected == nil && !tc.compatible(trueType, falseType) {
		tc.report(errs.TYC006, "conditional branches disagree on type", c.Src)
	}
	result := trueType
	if expected != nil {
		result = expected
	}
	c.TypeSpecField = result
	return result
}

func (tc *typeChecker) literalType(lit *ast.Literal) ast.TypeSpec {
	switch lit.Kind {
	case ast.IntLit:
		return tc.refType2("Int")
	case ast.FloatLit:
		return tc.refType2("Float")
	case ast.StringLit:
		return tc.refType2("String")
	case ast.BoolLit:
		return tc.refType2("Bool")
	case ast.UnitLit:
		return &ast.TypeUnit{Src: lit.Src}
	default:
		return &ast.InvalidType{Src: lit.Src}
	}
}

func (tc *typeChecker) refType2(name string) ast.TypeSpec {
	if id, ok := tc.typeNames[name]; ok {
		return &ast.TypeRef{Src: source.Synth, Name: name, ResolvedID: id}
	}
	return &ast.InvalidType{Src: source.Synth}
}

func (tc *typeChecker) refType(ref *ast.Ref, env map[string]ast.TypeSpec) ast.TypeSpec {
	if ref.ResolvedID == "" {
		return &ast.InvalidType{Src: ref.Src}
	}
	if t, ok := env[ref.ResolvedID]; ok && t != nil {
		return t
	}
	if t, ok := tc.sigs[ref.ResolvedID]; ok {
		return t
	}
	if res, ok := tc.idx.Lookup(ref.ResolvedID); ok {
		if p, ok := res.(*ast.FnParam); ok && p.TypeAsc != nil {
			return p.TypeAsc
		}
	}
	return &ast.InvalidType{Src: ref.Src}
}

// etaExpand synthesizes Lambda(freshParams, App(...App(v.Value,
// freshParams[0])...)) for a Bnd whose value is an under-applied function
// reference, so the emitter has a concrete function body to name and
// compile.
func (tc *typeChecker) etaExpand(v *ast.Bnd, fnType *ast.TypeFn) ast.Expr {
	ownerID := v.ResolvableID()
	params := make([]*ast.FnParam, len(fnType.ParamTypes))
	var body ast.Expr = v.Value
	for i, pt := range fnType.ParamTypes {
		p := &ast.FnParam{Src: source.Synth, Name: fmt.Sprintf("__eta%d", i), TypeAsc: pt}
		p.SetID(fmt.Sprintf("%s.%s#%d", ownerID, p.Name, i))
		params[i] = p
		ref := &ast.Ref{Src: source.Synth, Name: p.Name, Candidates: []string{p.ResolvableID()}, ResolvedID: p.ResolvableID()}
		body = &ast.App{Src: source.Synth, Fn: body, Arg: ref}
	}
	return &ast.Lambda{
		Src:    source.Synth,
		Params: params,
		Body:   body,
	}
}

// compatible reports whether actual satisfies expected: exact structural
// equality, with InvalidType and TypeVariable treated as satisfying
// anything so a single prior error (or an unconstrained generic, not
// otherwise checked by this compiler) doesn't cascade into more.
func (tc *typeChecker) compatible(actual, expected ast.TypeSpec) bool {
	if actual == nil || expected == nil {
		return true
	}
	if _, ok := actual.(*ast.InvalidType); ok {
		return true
	}
	if _, ok := expected.(*ast.InvalidType); ok {
		return true
	}
	if _, ok := expected.(*ast.TypeVariable); ok {
		return true
	}
	if _, ok := actual.(*ast.TypeVariable); ok {
		return true
	}
	if union, ok := expected.(*ast.Union); ok {
		for _, alt := range union.Alts {
			if tc.compatible(actual, alt) {
				return true
			}
		}
		return false
	}
	return tc.typeEquals(actual, expected)
}

func (tc *typeChecker) typeEquals(a, b ast.TypeSpec) bool {
	switch av := a.(type) {
	case *ast.TypeRef:
		bv, ok := b.(*ast.TypeRef)
		return ok && av.ResolvedID == bv.ResolvedID
	case *ast.NativePrimitive:
		bv, ok := b.(*ast.NativePrimitive)
		return ok && av.LLVMType == bv.LLVMType
	case *ast.NativePointer:
		bv, ok := b.(*ast.NativePointer)
		return ok && tc.typeEquals(av.Elem, bv.Elem)
	case *ast.NativeStruct:
		bv, ok := b.(*ast.NativeStruct)
		return ok && av.Name == bv.Name
	case *ast.TypeStructRef:
		bv, ok := b.(*ast.TypeStructRef)
		return ok && av.ResolvedID == bv.ResolvedID
	case *ast.TypeFn:
		bv, ok := b.(*ast.TypeFn)
		if !ok || len(av.ParamTypes) != len(bv.ParamTypes) {
			return false
		}
		for i := range av.ParamTypes {
			if !tc.typeEquals(av.ParamTypes[i], bv.ParamTypes[i]) {
				return false
			}
		}
		return tc.typeEquals(av.ReturnType, bv.ReturnType)
	case *ast.TypeTuple:
		bv, ok := b.(*ast.TypeTuple)
		if !ok || len(av.Elems) != len(bv.Elems) {
			return false
		}
		for i := range av.Elems {
			if !tc.typeEquals(av.Elems[i], bv.Elems[i]) {
				return false
			}
		}
		return true
	case *ast.TypeUnit:
		_, ok := b.(*ast.TypeUnit)
		return ok
	case *ast.TypeApplication:
		bv, ok := b.(*ast.TypeApplication)
		if !ok || len(av.Args) != len(bv.Args) {
			return false
		}
		if !tc.typeEquals(av.Ctor, bv.Ctor) {
			return false
		}
		for i := range av.Args {
			if !tc.typeEquals(av.Args[i], bv.Args[i]) {
				return false
			}
		}
		return true
	default:
		return false
	}
}
