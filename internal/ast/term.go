package ast

import "github.com/minnieml/mmlc/internal/source"

// Expr is the tagged variant of expression-position nodes. The parser produces a flat `ExprList` of terms; later phases
// rewrite it into a proper tree shape.
type Expr interface {
	Node
	exprNode()
}

// ExprList is the parser's flat, unresolved term sequence — `Expr(terms)`.
// ExpressionRewriter (phase 5) consumes one of these and produces a
// single resolved Expr; Simplify (phase 6) then unwraps single-term
// lists.
type ExprList struct {
	Src   source.Origin
	Terms []Expr
}

func (e *ExprList) Origin() source.Origin { return e.Src }
func (e *ExprList) exprNode()             {}

// LiteralKind discriminates the scalar literal kinds.
type LiteralKind int

const (
	IntLit LiteralKind = iota
	FloatLit
	StringLit
	BoolLit
	UnitLit
)

// Literal is a scalar constant term.
type Literal struct {
	Src      source.Origin
	Kind     LiteralKind
	Value    interface{}
	TypeSpecField TypeSpec
}

func (l *Literal) Origin() source.Origin { return l.Src }
func (l *Literal) exprNode()             {}

// Ref is a name reference; it starts with Candidates empty and is
// progressively narrowed by RefResolve (phase 4) and ExprRewrite (phase 5).
type Ref struct {
	Src         source.Origin
	Name        string
	Qualifier   Expr // non-nil for `Module.member`-style qualified refs; must itself resolve to a Ref chain
	Candidates  []string
	ResolvedID  string // empty until exactly one candidate remains
	TypeAsc     TypeSpec
	TypeSpecField TypeSpec
}

func (r *Ref) Origin() source.Origin { return r.Src }
func (r *Ref) exprNode()             {}

// HasResolved reports whether exactly one candidate has been chosen.
func (r *Ref) HasResolved() bool { return r.ResolvedID != "" }

// App is strict left-associative application: `f a b c` is
// App(App(App(f,a),b),c). Fn is constrained to Ref|App|Lambda post-rewrite.
type App struct {
	Src      source.Origin
	Fn       Expr
	Arg      Expr
	TypeSpecField TypeSpec
}

func (a *App) Origin() source.Origin { return a.Src }
func (a *App) exprNode()             {}

// Lambda is a function value: materialized by let-desugaring and by
// eta-expansion during partial application.
type Lambda struct {
	Src    source.Origin
	Params []*FnParam
	Body   Expr
}

func (l *Lambda) Origin() source.Origin { return l.Src }
func (l *Lambda) exprNode()             {}

// Cond is `if cond then ifTrue else ifFalse`.
type Cond struct {
	Src      source.Origin
	CondExpr Expr
	IfTrue   Expr
	IfFalse  Expr
	TypeSpecField TypeSpec
}

func (c *Cond) Origin() source.Origin { return c.Src }
func (c *Cond) exprNode()             {}

// Tuple is a fixed-arity anonymous product value.
type Tuple struct {
	Src      source.Origin
	Elems    []Expr
	TypeSpecField TypeSpec
}

func (t *Tuple) Origin() source.Origin { return t.Src }
func (t *Tuple) exprNode()             {}

// TermGroup is a parenthesized sub-expression; the Simplifier (phase 6)
// strips redundant groups once precedence has been resolved.
type TermGroup struct {
	Src   source.Origin
	Inner Expr
}

func (t *TermGroup) Origin() source.Origin { return t.Src }
func (t *TermGroup) exprNode()             {}

// Hole is `???`; it succeeds type checking only when an expected type is
// present.
type Hole struct {
	Src      source.Origin
	TypeSpecField TypeSpec
}

func (h *Hole) Origin() source.Origin { return h.Src }
func (h *Hole) exprNode()             {}

// Placeholder is the `_` wildcard term.
type Placeholder struct {
	Src source.Origin
}

func (p *Placeholder) Origin() source.Origin { return p.Src }
func (p *Placeholder) exprNode()             {}

// NativeImpl is the body of an `@native[...]` declaration.
type NativeImpl struct {
	Src      source.Origin
	Attrs    map[string]string
	Selector string // @native[op=<selector>]
	Template string // @native[tpl="..."]
}

func (n *NativeImpl) Origin() source.Origin { return n.Src }
func (n *NativeImpl) exprNode()             {}

// Mem returns the declared memory effect (alloc/view/pure), defaulting to
// "pure" when unspecified.
func (n *NativeImpl) Mem() string {
	if m, ok := n.Attrs["mem"]; ok {
		return m
	}
	return "pure"
}

// InvalidExpression replaces an expression a phase could not resolve.
type InvalidExpression struct {
	Src          source.Origin
	OriginalExpr Expr
}

func (i *InvalidExpression) Origin() source.Origin { return i.Src }
func (i *InvalidExpression) exprNode()             {}

// TermError replaces a single unparseable term inside an expression.
type TermError struct {
	Src        source.Origin
	Message    string
	FailedCode string
}

func (t *TermError) Origin() source.Origin { return t.Src }
func (t *TermError) exprNode()             {}
