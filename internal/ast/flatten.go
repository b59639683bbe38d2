package ast

// FlattenApp collapses a left-associative App chain — App(App(App(f, a),
// b), c) — into its callee and ordered argument list. Used by both the
// ownership analyzer and the code generator, which each need to reason
// about a call as (callee, args) rather than as nested binary App nodes.
func FlattenApp(e Expr) (callee Expr, args []Expr) {
	cur := e
	for {
		app, ok := cur.(*App)
		if !ok {
			break
		}
		args = append([]Expr{app.Arg}, args...)
		cur = app.Fn
	}
	return cur, args
}

// CalleeParams returns the declared parameter list of a resolved Ref
// callee, looking through Bnd/BinOpDef/UnaryOpDef resolvables. Returns nil
// for anything else (unresolved ref, non-function value).
func CalleeParams(callee Expr, idx *ResolvablesIndex) []*FnParam {
	ref, ok := callee.(*Ref)
	if !ok || ref.ResolvedID == "" {
		return nil
	}
	res, ok := idx.Lookup(ref.ResolvedID)
	if !ok {
		return nil
	}
	switch v := res.(type) {
	case *Bnd:
		if lam, ok := v.Value.(*Lambda); ok {
			return lam.Params
		}
	case *BinOpDef:
		return []*FnParam{&v.Left, &v.Right}
	case *UnaryOpDef:
		return []*FnParam{&v.Operand}
	}
	return nil
}

// CalleeReturnType returns the declared return type of a resolved Ref
// callee.
func CalleeReturnType(callee Expr, idx *ResolvablesIndex) TypeSpec {
	ref, ok := callee.(*Ref)
	if !ok || ref.ResolvedID == "" {
		return nil
	}
	res, ok := idx.Lookup(ref.ResolvedID)
	if !ok {
		return nil
	}
	switch v := res.(type) {
	case *Bnd:
		if fnType, ok := v.TypeSpecField.(*TypeFn); ok {
			return fnType.ReturnType
		}
		return v.TypeAsc
	case *BinOpDef:
		return v.ReturnType
	case *UnaryOpDef:
		return v.ReturnType
	}
	return nil
}

// CalleeNativeBody returns the NativeImpl body of a resolved Ref callee,
// or nil if the callee is not native-backed.
func CalleeNativeBody(callee Expr, idx *ResolvablesIndex) *NativeImpl {
	ref, ok := callee.(*Ref)
	if !ok || ref.ResolvedID == "" {
		return nil
	}
	res, ok := idx.Lookup(ref.ResolvedID)
	if !ok {
		return nil
	}
	switch v := res.(type) {
	case *Bnd:
		if lam, ok := v.Value.(*Lambda); ok {
			if n, ok := lam.Body.(*NativeImpl); ok {
				return n
			}
		}
	case *BinOpDef:
		return v.Native
	case *UnaryOpDef:
		return v.Native
	}
	return nil
}
