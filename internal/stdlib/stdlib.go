// Package stdlib implements the Stdlib Injector: it
// prepends a fixed set of native TypeDef/TypeAlias/operator/intrinsic
// declarations to a freshly parsed Module, all tagged source.Synth so
// they never appear in user-facing diagnostics. Registration is one
// function per concern, called once from a driver rather than via
// package-level init(), so nothing depends on process-wide mutable
// state and injection can run repeatedly within one process.
package stdlib

import (
	"github.com/minnieml/mmlc/internal/ast"
	"github.com/minnieml/mmlc/internal/source"
)

// NativeFnSpec describes one injected intrinsic function declaration.
type NativeFnSpec struct {
	Name   string
	Params []NamedType
	Return ast.TypeSpec
	Mem    string // alloc | view | pure
	Op     string // @native[op=<selector>] for operator-backed intrinsics
	Tpl    string // @native[tpl="..."] for template-backed intrinsics
}

// NamedType pairs a parameter name with its type, used when building
// injected FnParam lists.
type NamedType struct {
	Name string
	Type ast.TypeSpec
}

func prim(llvmType string) ast.TypeSpec {
	return &ast.NativePrimitive{Src: source.Synth, LLVMType: llvmType}
}

func ref(name string) ast.TypeSpec {
	return &ast.TypeRef{Src: source.Synth, Name: name}
}

// Inject builds the full list of stdlib members prepended to every
// freshly parsed module. It is pure: calling it twice with
// the same arguments yields structurally identical (if not pointer-equal)
// members, matching the "no global mutable state" design note.
func Inject() []ast.Member {
	var members []ast.Member
	members = append(members, primitiveTypes()...)
	members = append(members, typeAliases()...)
	members = append(members, stringStruct())
	members = append(members, heapContainerStructs()...)
	members = append(members, binaryOperators()...)
	members = append(members, unaryOperators()...)
	members = append(members, intrinsicFunctions()...)
	return members
}

// primitiveTypes injects Int8/16/32/64, Float, Double, Bool, Char,
// SizeT, Unit, CharPtr.
func primitiveTypes() []ast.Member {
	specs := []struct {
		name     string
		llvmType string
	}{
		{"Int8", "i8"}, {"Int16", "i16"}, {"Int32", "i32"}, {"Int64", "i64"},
		{"Float", "float"}, {"Double", "double"},
		{"Bool", "i1"}, {"Char", "i8"}, {"SizeT", "i64"},
	}
	var out []ast.Member
	for _, s := range specs {
		out = append(out, &ast.TypeDef{
			Src: source.Synth, Name: s.name,
			TypeSpecField: &ast.NativePrimitive{Src: source.Synth, LLVMType: s.llvmType},
		})
	}
	out = append(out, &ast.TypeDef{Src: source.Synth, Name: "Unit", TypeSpecField: &ast.TypeUnit{Src: source.Synth}})
	out = append(out, &ast.TypeDef{
		Src: source.Synth, Name: "CharPtr",
		TypeSpecField: &ast.NativePointer{Src: source.Synth, Elem: prim("i8")},
	})
	return out
}

// heapContainerStructs injects the runtime Buffer/IntArray/StringArray
// layouts alongside String: each is a
// {length, data, __cap} triple differing only in element pointer type.
func heapContainerStructs() []ast.Member {
	containers := []struct {
		name string
		elem ast.TypeSpec
	}{
		{"Buffer", prim("i8")},
		{"IntArray", prim("i64")},
		{"StringArray", ref("String")},
	}
	var out []ast.Member
	for _, c := range containers {
		out = append(out, &ast.TypeDef{
			Src:  source.Synth,
			Name: c.name,
			TypeSpecField: &ast.NativeStruct{
				Src:  source.Synth,
				Name: c.name,
				Fields: []ast.NativeField{
					{Name: "length", Type: prim("i64")},
					{Name: "data", Type: &ast.NativePointer{Src: source.Synth, Elem: c.elem}},
					{Name: "__cap", Type: prim("i64")},
				},
			},
		})
	}
	return out
}

// typeAliases injects Int->Int64, Byte->Int8, Word->Int8.
func typeAliases() []ast.Member {
	return []ast.Member{
		&ast.TypeAlias{Src: source.Synth, Name: "Int", TypeRef: ref("Int64")},
		&ast.TypeAlias{Src: source.Synth, Name: "Byte", TypeRef: ref("Int8")},
		&ast.TypeAlias{Src: source.Synth, Name: "Word", TypeRef: ref("Int8")},
	}
}

// stringStruct injects the runtime String{length,data,__cap} layout.
func stringStruct() ast.Member {
	return &ast.TypeDef{
		Src:  source.Synth,
		Name: "String",
		TypeSpecField: &ast.NativeStruct{
			Src:  source.Synth,
			Name: "String",
			Fields: []ast.NativeField{
				{Name: "length", Type: prim("i64")},
				{Name: "data", Type: &ast.NativePointer{Src: source.Synth, Elem: prim("i8")}},
				{Name: "__cap", Type: prim("i64")},
			},
		},
	}
}
