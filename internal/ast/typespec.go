package ast

import "github.com/minnieml/mmlc/internal/source"

// TypeSpec is the tagged variant of type-position nodes.
type TypeSpec interface {
	Node
	typeNode()
}

// TypeRef is a reference to a nominal type by name, resolved by
// TypeResolver (phase 3).
type TypeRef struct {
	Src        source.Origin
	Name       string
	ResolvedID string
}

func (t *TypeRef) Origin() source.Origin { return t.Src }
func (t *TypeRef) typeNode()             {}

// NativePrimitive is a scalar LLVM type (Int8/16/32/64, Float, Double,
// Bool, Char, SizeT) injected by the stdlib.
type NativePrimitive struct {
	Src      source.Origin
	LLVMType string // e.g. "i64", "double", "i1"
}

func (n *NativePrimitive) Origin() source.Origin { return n.Src }
func (n *NativePrimitive) typeNode()             {}

// NativePointer is a raw pointer to an element type (e.g. CharPtr).
type NativePointer struct {
	Src  source.Origin
	Elem TypeSpec
}

func (n *NativePointer) Origin() source.Origin { return n.Src }
func (n *NativePointer) typeNode()             {}

// NativeField is one ordered field of a NativeStruct.
type NativeField struct {
	Name string
	Type TypeSpec
}

// NativeStruct is a C-ABI-compatible aggregate with an ordered field list
// (e.g. the runtime `String{length,data,__cap}`).
type NativeStruct struct {
	Src    source.Origin
	Name   string
	Fields []NativeField
}

func (n *NativeStruct) Origin() source.Origin { return n.Src }
func (n *NativeStruct) typeNode()             {}

// TypeStructRef is a reference to a user-defined TypeStruct member,
// resolved by id once TypeResolver has run.
type TypeStructRef struct {
	Src        source.Origin
	Name       string
	ResolvedID string
}

func (t *TypeStructRef) Origin() source.Origin { return t.Src }
func (t *TypeStructRef) typeNode()             {}

// TypeFn is a curried function type: paramTypes applied one at a time to
// yield returnType.
type TypeFn struct {
	Src        source.Origin
	ParamTypes []TypeSpec
	ReturnType TypeSpec
}

func (t *TypeFn) Origin() source.Origin { return t.Src }
func (t *TypeFn) typeNode()             {}

// TypeTuple is the type of a Tuple term.
type TypeTuple struct {
	Src   source.Origin
	Elems []TypeSpec
}

func (t *TypeTuple) Origin() source.Origin { return t.Src }
func (t *TypeTuple) typeNode()             {}

// TypeUnit is the type of the Unit literal.
type TypeUnit struct {
	Src source.Origin
}

func (t *TypeUnit) Origin() source.Origin { return t.Src }
func (t *TypeUnit) typeNode()             {}

// Union is a sum of alternative types (reserved for future surface syntax;
// the type checker treats it opaquely where it appears in ascriptions).
type Union struct {
	Src  source.Origin
	Alts []TypeSpec
}

func (u *Union) Origin() source.Origin { return u.Src }
func (u *Union) typeNode()             {}

// Intersection is a conjunction of types.
type Intersection struct {
	Src   source.Origin
	Parts []TypeSpec
}

func (i *Intersection) Origin() source.Origin { return i.Src }
func (i *Intersection) typeNode()             {}

// TypeApplication applies a type constructor to argument types.
type TypeApplication struct {
	Src  source.Origin
	Ctor TypeSpec
	Args []TypeSpec
}

func (t *TypeApplication) Origin() source.Origin { return t.Src }
func (t *TypeApplication) typeNode()             {}

// TypeVariable is a named type parameter, e.g. 'T.
type TypeVariable struct {
	Src  source.Origin
	Name string
}

func (t *TypeVariable) Origin() source.Origin { return t.Src }
func (t *TypeVariable) typeNode()             {}

// InvalidType replaces a type a phase could not resolve.
type InvalidType struct {
	Src          source.Origin
	OriginalType TypeSpec
}

func (i *InvalidType) Origin() source.Origin { return i.Src }
func (i *InvalidType) typeNode()             {}
