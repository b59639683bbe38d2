// Package ast defines MinnieML's flat-term AST: tagged variant nodes for
// Module, Member, Term and TypeSpec, following a closed-variant,
// exhaustive-dispatch style with no virtual methods.
package ast

import (
	"fmt"
	"strings"

	"github.com/minnieml/mmlc/internal/source"
)

// Visibility is a Module/Member's export visibility.
type Visibility int

const (
	Public Visibility = iota
	Protected
	Lexical
)

func (v Visibility) String() string {
	switch v {
	case Public:
		return "public"
	case Protected:
		return "protected"
	default:
		return "lexical"
	}
}

// Assoc is a binary operator's associativity.
type Assoc int

const (
	Left Assoc = iota
	Right
)

// Node is the base interface every AST node satisfies.
type Node interface {
	Origin() source.Origin
}

// Resolvable is any node that can be the target of a Ref: a declaring
// Member or a function parameter.
type Resolvable interface {
	Node
	ResolvableID() string
	ResolvableName() string
}

// Module is the root AST node produced by the parser.
type Module struct {
	Src         source.Origin
	Name        string
	Visibility  Visibility
	Members     []Member
	DocComment  string // empty when absent
}

func (m *Module) Origin() source.Origin { return m.Src }

// ResolvablesIndex maps a Resolvable's stable id to the node itself. It is
// rebuilt after every phase that creates or replaces nodes.
type ResolvablesIndex struct {
	byID map[string]Resolvable
}

// NewResolvablesIndex builds an index from a module's current set of
// Resolvables (members plus, transitively, the parameters and synthetic
// bindings reachable from them). Phases call BuildResolvablesIndex (in
// package semantic) to construct this from scratch; this constructor only
// wraps a pre-collected map.
func NewResolvablesIndex(byID map[string]Resolvable) *ResolvablesIndex {
	return &ResolvablesIndex{byID: byID}
}

// Lookup returns the Resolvable for id, if any.
func (idx *ResolvablesIndex) Lookup(id string) (Resolvable, bool) {
	if idx == nil {
		return nil, false
	}
	r, ok := idx.byID[id]
	return r, ok
}

// ---------------------------------------------------------------------
// Member variants
// ---------------------------------------------------------------------

// Member is the tagged variant of top-level module declarations.
type Member interface {
	Node
	memberNode()
}

// FnParam is a function/operator parameter.
type FnParam struct {
	Src      source.Origin
	Name     string
	Borrowed bool // true for `&x: T` borrow-marked parameters
	TypeAsc  TypeSpec
	TypeSpec TypeSpec // populated by the type checker
	id       string
}

func (p *FnParam) Origin() source.Origin  { return p.Src }
func (p *FnParam) ResolvableID() string   { return p.id }
func (p *FnParam) ResolvableName() string { return p.Name }
func (p *FnParam) SetID(id string)        { p.id = id }

// MemberMeta carries compiler-synthesized bookkeeping attached to a
// Member, such as an eta-expansion record.
type MemberMeta struct {
	OriginalName string // name of the under-applied function eta-expanded from
	Arity        int
}

// Bnd is a value binding; top-level functions are Bnd whose Value is a
// Lambda.
type Bnd struct {
	Src      source.Origin
	Name     string
	Value    Expr
	TypeSpecField TypeSpec // declared type, if any
	TypeAsc  TypeSpec     // user ascription, if any
	Meta     *MemberMeta
	id       string
}

func (b *Bnd) Origin() source.Origin  { return b.Src }
func (b *Bnd) memberNode()            {}
func (b *Bnd) ResolvableID() string   { return b.id }
func (b *Bnd) ResolvableName() string { return b.Name }
func (b *Bnd) SetID(id string)        { b.id = id }

// TypeDef declares a new nominal type (used for native primitives and
// structs without an explicit field list).
type TypeDef struct {
	Src      source.Origin
	Name     string
	TypeSpecField TypeSpec
	id       string
}

func (t *TypeDef) Origin() source.Origin  { return t.Src }
func (t *TypeDef) memberNode()            {}
func (t *TypeDef) ResolvableID() string   { return t.id }
func (t *TypeDef) ResolvableName() string { return t.Name }
func (t *TypeDef) SetID(id string)        { t.id = id }

// TypeAlias declares `type Name = TypeRef`.
type TypeAlias struct {
	Src      source.Origin
	Name     string
	TypeRef  TypeSpec
	TypeSpecField TypeSpec // resolved ultimate type, filled by TypeResolver
	id       string
}

func (t *TypeAlias) Origin() source.Origin  { return t.Src }
func (t *TypeAlias) memberNode()            {}
func (t *TypeAlias) ResolvableID() string   { return t.id }
func (t *TypeAlias) ResolvableName() string { return t.Name }
func (t *TypeAlias) SetID(id string)        { t.id = id }

// TypeStruct declares a user-defined record type.
type TypeStruct struct {
	Src    source.Origin
	Name   string
	Fields []StructField
	id     string
}

// StructField is one field of a TypeStruct.
type StructField struct {
	Name string
	Type TypeSpec
}

func (t *TypeStruct) Origin() source.Origin  { return t.Src }
func (t *TypeStruct) memberNode()             {}
func (t *TypeStruct) ResolvableID() string    { return t.id }
func (t *TypeStruct) ResolvableName() string  { return t.Name }
func (t *TypeStruct) SetID(id string)         { t.id = id }

// BinOpDef declares a custom binary operator.
type BinOpDef struct {
	Src        source.Origin
	Name       string
	Precedence uint8
	Assoc      Assoc
	Left       FnParam
	Right      FnParam
	ReturnType TypeSpec
	Body       Expr
	Native     *NativeImpl // non-nil for @native bodies
	id         string
}

func (b *BinOpDef) Origin() source.Origin  { return b.Src }
func (b *BinOpDef) memberNode()            {}
func (b *BinOpDef) ResolvableID() string   { return b.id }
func (b *BinOpDef) ResolvableName() string { return b.Name }
func (b *BinOpDef) SetID(id string)        { b.id = id }

// UnaryOpDef declares a custom unary (prefix or postfix) operator.
type UnaryOpDef struct {
	Src        source.Origin
	Name       string
	Postfix    bool
	Operand    FnParam
	ReturnType TypeSpec
	Body       Expr
	Native     *NativeImpl
	id         string
}

func (u *UnaryOpDef) Origin() source.Origin  { return u.Src }
func (u *UnaryOpDef) memberNode()            {}
func (u *UnaryOpDef) ResolvableID() string   { return u.id }
func (u *UnaryOpDef) ResolvableName() string { return u.Name }
func (u *UnaryOpDef) SetID(id string)        { u.id = id }

// DuplicateMember wraps every occurrence of a declaration after the first
// for a given (name, kind) pair.
type DuplicateMember struct {
	Src            source.Origin
	Original       Member
	FirstOccurrence Member
}

func (d *DuplicateMember) Origin() source.Origin { return d.Src }
func (d *DuplicateMember) memberNode()            {}

// InvalidMember wraps a member a phase could not continue with (e.g.
// duplicate parameter names within one function).
type InvalidMember struct {
	Src      source.Origin
	Original Member
	Reason   string
}

func (i *InvalidMember) Origin() source.Origin { return i.Src }
func (i *InvalidMember) memberNode()            {}

// ParsingMemberError is substituted for a member the parser could not
// parse; it carries the failed source range.
type ParsingMemberError struct {
	Src        source.Origin
	Message    string
	FailedCode string
}

func (p *ParsingMemberError) Origin() source.Origin { return p.Src }
func (p *ParsingMemberError) memberNode()            {}

// String renders a Module for debugging/golden tests.
func (m *Module) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "module %s (%s)\n", m.Name, m.Visibility)
	for _, mem := range m.Members {
		fmt.Fprintf(&b, "  %T\n", mem)
	}
	return b.String()
}
