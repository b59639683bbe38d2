// Package ownership implements the ownership analyzer: a
// move-by-default, borrow-on-mark linear pass over the fully
// type-checked Module. It runs after phase 7 and rewrites member bodies
// in place, inserting synthetic `App(Ref("__free_T"), x)` nodes for every
// heap value still owned at the end of its scope. A binding referenced
// again after it was already moved out is rejected with an OWN001
// diagnostic rather than silently cloned, modeled on the way the
// semantic phases thread a single mutable pass over the tree (state.go's
// AssignIDs/collectResolvables walk).
package ownership

import (
	"fmt"
	"sort"

	"github.com/minnieml/mmlc/internal/ast"
	"github.com/minnieml/mmlc/internal/errs"
	"github.com/minnieml/mmlc/internal/semantic"
	"github.com/minnieml/mmlc/internal/source"
)

const phaseOwnership = "ownership.Analyzer"

var heapTypeNames = map[string]bool{"String": true, "Buffer": true, "IntArray": true, "StringArray": true}

// Analyze runs the ownership pass over every function/operator member and
// returns the updated state (rebuilt Index, accumulated errors).
func Analyze(s semantic.State) semantic.State {
	an := &analyzer{idx: s.Index, runtimeIDs: runtimeBindingIDs(s.Module)}
	for _, m := range s.Module.Members {
		an.analyzeMember(m)
	}
	s.Errors = append(s.Errors, an.errors...)
	s.Index = semantic.BuildResolvablesIndex(s.Module)
	return s
}

// runtimeBindingIDs maps every top-level binding's declared name to its
// resolvable id, so synthesized `__free_T`/`__clone_T` references can be
// wired to the stdlib-injected runtime stubs the same way a resolved user
// Ref is.
func runtimeBindingIDs(mod *ast.Module) map[string]string {
	out := map[string]string{}
	for _, m := range mod.Members {
		if bnd, ok := m.(*ast.Bnd); ok {
			out[bnd.Name] = bnd.ResolvableID()
		}
	}
	return out
}

type analyzer struct {
	idx        *ast.ResolvablesIndex
	runtimeIDs map[string]string
	errors     []*errs.Report

	// everOwned accumulates every resolvable id that held an owned heap
	// value at some point in the current member, so a later use after it
	// was moved out can be told apart from a binding that was never owned
	// (e.g. borrowed parameters).
	everOwned map[string]bool
}

// owned is the set of resolvable ids currently holding an unmoved,
// unfreed heap value.
type owned map[string]bool

func (o owned) clone() owned {
	c := make(owned, len(o))
	for k := range o {
		c[k] = true
	}
	return c
}

func (an *analyzer) analyzeMember(m ast.Member) {
	an.everOwned = owned{}
	switch v := m.(type) {
	case *ast.Bnd:
		lam, ok := v.Value.(*ast.Lambda)
		if !ok {
			return
		}
		if _, isNative := lam.Body.(*ast.NativeImpl); isNative {
			return
		}
		o := owned{}
		for _, p := range lam.Params {
			if !p.Borrowed && an.isHeapType(p.TypeAsc) {
				o[p.ResolvableID()] = true
				an.everOwned[p.ResolvableID()] = true
			}
		}
		lam.Body = an.finish(an.walk(lam.Body, o))
	case *ast.BinOpDef:
		if _, isNative := v.Body.(*ast.NativeImpl); isNative {
			return
		}
		o := owned{}
		for _, p := range []*ast.FnParam{&v.Left, &v.Right} {
			if !p.Borrowed && an.isHeapType(p.TypeAsc) {
				o[p.ResolvableID()] = true
				an.everOwned[p.ResolvableID()] = true
			}
		}
		v.Body = an.finish(an.walk(v.Body, o))
	case *ast.UnaryOpDef:
		if _, isNative := v.Body.(*ast.NativeImpl); isNative {
			return
		}
		o := owned{}
		if !v.Operand.Borrowed && an.isHeapType(v.Operand.TypeAsc) {
			o[v.Operand.ResolvableID()] = true
			an.everOwned[v.Operand.ResolvableID()] = true
		}
		v.Body = an.finish(an.walk(v.Body, o))
	}
}

// walkResult carries the rewritten expression and the owned set that
// remains live after evaluating it.
type walkResult struct {
	expr  ast.Expr
	owned owned
}

func (an *analyzer) finish(r walkResult) ast.Expr {
	return an.freeRemaining(r.expr, r.owned, nil)
}

// walk analyzes e under the incoming owned set, returning the (possibly
// rewritten) expression and the owned set live after it evaluates.
func (an *analyzer) walk(e ast.Expr, o owned) walkResult {
	switch v := e.(type) {
	case *ast.App:
		if isLocalLet(v) {
			return an.walkLocalLet(v, o)
		}
		return an.walkCall(v, o)
	case *ast.Cond:
		return an.walkCond(v, o)
	case *ast.Ref:
		// A bare Ref in tail position moves its binding out (returned to
		// the caller), so it must not be freed by this scope.
		return walkResult{expr: v, owned: an.walkRefArg(v, false, o)}
	case *ast.Tuple:
		next := o.clone()
		elems := make([]ast.Expr, len(v.Elems))
		for i, el := range v.Elems {
			r := an.walk(el, next)
			elems[i] = r.expr
			next = r.owned
		}
		v.Elems = elems
		return walkResult{expr: v, owned: next}
	case *ast.TermGroup:
		r := an.walk(v.Inner, o)
		v.Inner = r.expr
		return walkResult{expr: v, owned: r.owned}
	default:
		return walkResult{expr: e, owned: o}
	}
}

// isLocalLet detects the App(Lambda([x], body), value) shape produced by
// let-desugaring (parser_expr.go's parseLocalLet).
func isLocalLet(app *ast.App) bool {
	lam, ok := app.Fn.(*ast.Lambda)
	return ok && len(lam.Params) == 1
}

func (an *analyzer) walkLocalLet(app *ast.App, o owned) walkResult {
	lam := app.Fn.(*ast.Lambda)
	param := lam.Params[0]

	valueResult := an.walk(app.Arg, o)
	app.Arg = valueResult.expr
	next := valueResult.owned

	if an.isHeapType(param.TypeAsc) && an.producesOwned(app.Arg, o) {
		next[param.ResolvableID()] = true
		an.everOwned[param.ResolvableID()] = true
	}

	bodyResult := an.walk(lam.Body, next)
	var own []string
	if bodyResult.owned[param.ResolvableID()] {
		own = []string{param.ResolvableID()}
	}
	lam.Body = an.freeRemaining(bodyResult.expr, setOf(own), nil)

	after := bodyResult.owned.clone()
	delete(after, param.ResolvableID())
	return walkResult{expr: app, owned: after}
}

// producesOwned reports whether e, once evaluated, yields a freshly
// allocated (and therefore locally owned) heap value: a call whose
// callee has mem=alloc, or a bare move of an already-owned binding.
func (an *analyzer) producesOwned(e ast.Expr, o owned) bool {
	switch v := e.(type) {
	case *ast.App:
		callee, _ := ast.FlattenApp(v)
		return an.calleeMem(callee) == "alloc"
	case *ast.Ref:
		return o[v.ResolvedID]
	default:
		return false
	}
}

func (an *analyzer) walkCall(app *ast.App, o owned) walkResult {
	callee, args := ast.FlattenApp(app)
	params := ast.CalleeParams(callee, an.idx)

	next := o.clone()
	for i, arg := range args {
		// A bare Ref argument needs the parameter's borrow marking to
		// decide whether the binding moves; route it through
		// walkRefArg rather than the generic walk, which only knows
		// about tail-position moves.
		if ref, ok := arg.(*ast.Ref); ok {
			borrowed := i < len(params) && params[i].Borrowed
			next = an.walkRefArg(ref, borrowed, next)
			continue
		}
		r := an.walk(arg, next)
		next = r.owned
	}

	return walkResult{expr: app, owned: next}
}

// walkRefArg resolves one call argument that is a bare name reference: it
// reports a use-after-move if the binding was owned earlier in this
// member but already moved out, then removes it from the owned set
// unless the receiving parameter is borrow-marked.
func (an *analyzer) walkRefArg(ref *ast.Ref, borrowed bool, o owned) owned {
	next := o.clone()
	if ref.ResolvedID == "" {
		return next
	}
	if an.everOwned[ref.ResolvedID] && !next[ref.ResolvedID] {
		an.reportUseAfterMove(ref.Name, ref.Src)
	}
	if !borrowed {
		delete(next, ref.ResolvedID)
	}
	return next
}

func (an *analyzer) walkCond(c *ast.Cond, o owned) walkResult {
	condResult := an.walk(c.CondExpr, o)
	c.CondExpr = condResult.expr
	base := condResult.owned

	trueResult := an.walk(c.IfTrue, base.clone())
	falseResult := an.walk(c.IfFalse, base.clone())

	joined := owned{}
	for id := range trueResult.owned {
		if falseResult.owned[id] {
			joined[id] = true
		}
	}
	// Names owned on only one branch are freed on that branch so both
	// sides converge to the same owned set at the join point.
	c.IfTrue = an.freeOnlyIn(trueResult.expr, trueResult.owned, joined)
	c.IfFalse = an.freeOnlyIn(falseResult.expr, falseResult.owned, joined)

	return walkResult{expr: c, owned: joined}
}

// freeOnlyIn frees every id present in have but absent from want, in a
// deterministic order, before expr.
func (an *analyzer) freeOnlyIn(expr ast.Expr, have owned, want owned) ast.Expr {
	var toFree []string
	for id := range have {
		if !want[id] {
			toFree = append(toFree, id)
		}
	}
	return an.freeRemaining(expr, setOf(toFree), nil)
}

func setOf(ids []string) owned {
	o := owned{}
	for _, id := range ids {
		o[id] = true
	}
	return o
}

// freeRemaining wraps expr with `__free_T(binding); ...; expr` for every
// id in o, excluding the ids in exempt.
func (an *analyzer) freeRemaining(expr ast.Expr, o owned, exempt []string) ast.Expr {
	skip := setOf(exempt)
	for id := range skip {
		delete(o, id)
	}
	if len(o) == 0 {
		return expr
	}
	ids := make([]string, 0, len(o))
	for id := range o {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		res, ok := an.idx.Lookup(id)
		if !ok {
			continue
		}
		typeName := an.heapTypeName(resolvableType(res))
		if typeName == "" {
			continue
		}
		ref := &ast.Ref{Src: source.Synth, Name: resolvableRefName(res), ResolvedID: id}
		freeName := "__free_" + typeName
		freeCall := &ast.App{
			Src: source.Synth,
			Fn:  &ast.Ref{Src: source.Synth, Name: freeName, ResolvedID: an.runtimeIDs[freeName]},
			Arg: ref,
		}
		discard := &ast.FnParam{Src: source.Synth, Name: "_"}
		expr = &ast.App{
			Src: source.Synth,
			Fn:  &ast.Lambda{Src: source.Synth, Params: []*ast.FnParam{discard}, Body: expr},
			Arg: freeCall,
		}
	}
	return expr
}

func resolvableType(res ast.Resolvable) ast.TypeSpec {
	switch v := res.(type) {
	case *ast.FnParam:
		return v.TypeAsc
	case *ast.Bnd:
		if v.TypeAsc != nil {
			return v.TypeAsc
		}
		return v.TypeSpecField
	}
	return nil
}

func resolvableRefName(res ast.Resolvable) string {
	return res.ResolvableName()
}

func (an *analyzer) calleeMem(callee ast.Expr) string {
	if n := ast.CalleeNativeBody(callee, an.idx); n != nil {
		return n.Mem()
	}
	if an.isHeapType(ast.CalleeReturnType(callee, an.idx)) {
		return "alloc"
	}
	return "pure"
}

// isHeapType reports whether t denotes a heap-managed aggregate: one of
// the builtin heap type names (heapTypeNames), a native struct with a
// native-pointer field, or a struct with at least one heap-typed field.
// Type definitions and aliases are followed to their underlying type.
func (an *analyzer) isHeapType(t ast.TypeSpec) bool {
	switch v := t.(type) {
	case *ast.TypeRef:
		if heapTypeNames[v.Name] {
			return true
		}
		res, ok := an.idx.Lookup(v.ResolvedID)
		if !ok {
			return false
		}
		switch d := res.(type) {
		case *ast.TypeDef:
			return an.isHeapType(d.TypeSpecField)
		case *ast.TypeAlias:
			return an.isHeapType(d.TypeSpecField)
		case *ast.TypeStruct:
			for _, f := range d.Fields {
				if an.isHeapType(f.Type) {
					return true
				}
			}
		}
		return false
	case *ast.NativeStruct:
		for _, f := range v.Fields {
			if _, isPtr := f.Type.(*ast.NativePointer); isPtr {
				return true
			}
		}
		return false
	default:
		return false
	}
}

func (an *analyzer) heapTypeName(t ast.TypeSpec) string {
	switch v := t.(type) {
	case *ast.TypeRef:
		if heapTypeNames[v.Name] {
			return v.Name
		}
		res, ok := an.idx.Lookup(v.ResolvedID)
		if !ok {
			return ""
		}
		switch d := res.(type) {
		case *ast.TypeDef:
			if n := an.heapTypeName(d.TypeSpecField); n != "" {
				return n
			}
			if an.isHeapType(d.TypeSpecField) {
				return d.Name
			}
		case *ast.TypeAlias:
			if n := an.heapTypeName(d.TypeSpecField); n != "" {
				return n
			}
			if an.isHeapType(d.TypeSpecField) {
				return d.Name
			}
		}
		return ""
	case *ast.NativeStruct:
		return v.Name
	default:
		return ""
	}
}

// reportUseAfterMove records an OWN001 diagnostic for a reference to name
// that was already moved out earlier in the same member.
func (an *analyzer) reportUseAfterMove(name string, origin source.Origin) {
	an.errors = append(an.errors, errs.New(errs.OWN001, phaseOwnership,
		fmt.Sprintf("use of %q after it was moved", name), origin))
}
