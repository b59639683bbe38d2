package stdlib

import (
	"github.com/minnieml/mmlc/internal/ast"
	"github.com/minnieml/mmlc/internal/source"
)

func fn(src source.Origin, params []ast.FnParam, ret ast.TypeSpec, mem string, attrs map[string]string) ast.Member {
	fparams := make([]*ast.FnParam, len(params))
	for i := range params {
		p := params[i]
		fparams[i] = &p
	}
	if attrs == nil {
		attrs = map[string]string{}
	}
	attrs["mem"] = mem
	lambda := &ast.Lambda{
		Src: src, Params: fparams,
		Body: &ast.NativeImpl{Src: src, Attrs: attrs},
	}
	return &ast.Bnd{Src: src, Name: "", Value: lambda, TypeSpecField: ret}
}

// namedFn builds a native function declaration with a stable name — the
// Bnd.Name the resolver matches Refs against.
func namedFn(name string, params []ast.FnParam, ret ast.TypeSpec, mem string, attrs map[string]string) ast.Member {
	m := fn(source.Synth, params, ret, mem, attrs)
	m.(*ast.Bnd).Name = name
	return m
}

// intrinsicFunctions injects print/println/concat/to_string/readline and
// the memory free/clone stubs.
func intrinsicFunctions() []ast.Member {
	stringT := ref("String")
	unitT := ref("Unit")
	intT := ref("Int")

	p := func(name string, t ast.TypeSpec) ast.FnParam {
		return ast.FnParam{Src: source.Synth, Name: name, TypeAsc: t}
	}

	var out []ast.Member
	out = append(out, namedFn("print", []ast.FnParam{p("s", stringT)}, unitT, "view", nil))
	out = append(out, namedFn("println", []ast.FnParam{p("s", stringT)}, unitT, "view", nil))
	out = append(out, namedFn("concat", []ast.FnParam{p("a", stringT), p("b", stringT)}, stringT, "alloc", nil))
	out = append(out, namedFn("to_string", []ast.FnParam{p("n", intT)}, stringT, "alloc", nil))
	out = append(out, namedFn("readline", nil, stringT, "alloc", nil))

	for _, heapType := range []string{"String", "Buffer", "IntArray", "StringArray"} {
		t := ref(heapType)
		out = append(out, namedFn("__free_"+heapType, []ast.FnParam{p("x", t)}, unitT, "pure",
			map[string]string{"op": "free_" + heapType}))
		out = append(out, namedFn("__clone_"+heapType, []ast.FnParam{p("x", t)}, t, "alloc",
			map[string]string{"op": "clone_" + heapType}))
	}

	out = append(out, namedFn("__mml_sys_hole",
		[]ast.FnParam{p("line", intT), p("col", intT), p("endLine", intT), p("endCol", intT)},
		unitT, "view", map[string]string{"op": "sys_hole"}))

	return out
}
