package semantic

import (
	"github.com/minnieml/mmlc/internal/ast"
	"github.com/minnieml/mmlc/internal/errs"
	"github.com/minnieml/mmlc/internal/source"
)

const phaseExpressionRewriter = "semantic.ExpressionRewriter"

// juxtaposePrec is the precedence of implicit function application — the
// highest in the system.
const juxtaposePrec = 100

// prefixPrec is the fixed precedence of prefix unary operators.
const prefixPrec = 95

// ExpressionRewriter is phase 5: precedence climbing over the parser's
// flat term lists, with juxtaposition treated as an implicit
// left-associative operator at precedence 100.
func ExpressionRewriter(s State) State {
	rw := &rewriter{idx: s.Index}
	for _, m := range s.Module.Members {
		rw.rewriteMember(m)
	}
	s.Errors = append(s.Errors, rw.errors...)
	s.Index = BuildResolvablesIndex(s.Module)
	return s
}

type rewriter struct {
	idx    *ast.ResolvablesIndex
	errors []*errs.Report
}

func (rw *rewriter) rewriteMember(m ast.Member) {
	switch v := m.(type) {
	case *ast.Bnd:
		v.Value = rw.rewriteExpr(v.Value)
	case *ast.BinOpDef:
		v.Body = rw.rewriteExpr(v.Body)
	case *ast.UnaryOpDef:
		v.Body = rw.rewriteExpr(v.Body)
	}
}

// rewriteExpr fully resolves e: flat ExprLists are precedence-climbed into
// a tree; compound nodes have their children rewritten recursively; the
// result is additionally passed through nullary-reference wrapping.
func (rw *rewriter) rewriteExpr(e ast.Expr) ast.Expr {
	if e == nil {
		return nil
	}
	switch v := e.(type) {
	case *ast.ExprList:
		i := 0
		result := rw.climb(v.Terms, &i, 0)
		if i < len(v.Terms) {
			rw.errors = append(rw.errors, errs.New(errs.REW001, phaseExpressionRewriter,
				"dangling terms after expression", v.Src))
			result = &ast.InvalidExpression{Src: v.Src, OriginalExpr: v}
		}
		return rw.wrapNullary(result)
	case *ast.Lambda:
		v.Body = rw.rewriteExpr(v.Body)
		return v
	case *ast.App:
		v.Fn = rw.rewriteCalleeExpr(v.Fn)
		v.Arg = rw.rewriteExpr(v.Arg)
		return v
	case *ast.Cond:
		v.CondExpr = rw.rewriteExpr(v.CondExpr)
		v.IfTrue = rw.rewriteExpr(v.IfTrue)
		v.IfFalse = rw.rewriteExpr(v.IfFalse)
		return rw.wrapNullary(v)
	case *ast.Tuple:
		for i := range v.Elems {
			v.Elems[i] = rw.rewriteExpr(v.Elems[i])
		}
		return v
	case *ast.TermGroup:
		v.Inner = rw.rewriteExpr(v.Inner)
		return v
	case *ast.Ref:
		return rw.wrapNullary(v)
	default:
		return e
	}
}

func (rw *rewriter) rewriteCalleeExpr(e ast.Expr) ast.Expr {
	switch v := e.(type) {
	case *ast.ExprList:
		i := 0
		result := rw.climb(v.Terms, &i, 0)
		if i < len(v.Terms) {
			rw.errors = append(rw.errors, errs.New(errs.REW001, phaseExpressionRewriter,
				"dangling terms after expression", v.Src))
			return &ast.InvalidExpression{Src: v.Src, OriginalExpr: v}
		}
		return result // no nullary-wrap: this ref is already being applied
	case *ast.Lambda:
		v.Body = rw.rewriteExpr(v.Body)
		return v
	default:
		return e
	}
}

// ---- candidate classification ----

type candidateRole int

const (
	roleValue candidateRole = iota
	rolePrefix
	rolePostfix
	roleBinary
)

func (rw *rewriter) classify(id string) (candidateRole, bool) {
	res, ok := rw.idx.Lookup(id)
	if !ok {
		return roleValue, false
	}
	switch v := res.(type) {
	case *ast.BinOpDef:
		_ = v
		return roleBinary, true
	case *ast.UnaryOpDef:
		if v.Postfix {
			return rolePostfix, true
		}
		return rolePrefix, true
	default:
		return roleValue, true
	}
}

// pickCandidate returns the first candidate id of ref matching any of the
// wanted roles, in priority order.
func (rw *rewriter) pickCandidate(ref *ast.Ref, wanted ...candidateRole) (string, bool) {
	for _, want := range wanted {
		for _, id := range ref.Candidates {
			if role, ok := rw.classify(id); ok && role == want {
				return id, true
			}
		}
	}
	return "", false
}

// canStartOperand reports whether term can begin a new operand (value
// position): literals/groups/conds/tuples/lambdas always can; a Ref can if
// it has a value or prefix-operator candidate.
func (rw *rewriter) canStartOperand(term ast.Expr) bool {
	switch v := term.(type) {
	case *ast.Ref:
		_, okVal := rw.pickCandidate(v, roleValue)
		_, okPrefix := rw.pickCandidate(v, rolePrefix)
		return okVal || okPrefix || v.ResolvedID != "" || len(v.Candidates) == 0
	case *ast.InvalidExpression, *ast.TermError:
		return true
	default:
		return true
	}
}

// parsePrimary consumes one operand unit starting at *i: a chain of
// prefix-unary applications wrapping a plain operand, or a plain operand.
func (rw *rewriter) parsePrimary(terms []ast.Expr, i *int) ast.Expr {
	if *i >= len(terms) {
		return &ast.InvalidExpression{Src: source.Synth}
	}
	term := terms[*i]
	if ref, ok := term.(*ast.Ref); ok {
		if id, ok := rw.pickCandidate(ref, rolePrefix); ok {
			if _, okVal := rw.pickCandidate(ref, roleValue); !okVal {
				*i++
				ref.ResolvedID = id
				operand := rw.climb(terms, i, prefixPrec)
				return &ast.App{Src: ref.Src, Fn: ref, Arg: operand}
			}
		}
	}
	*i++
	return rw.prepareOperand(term)
}

// prepareOperand recursively rewrites any nested ExprLists a compound term
// (Lambda/Cond/Tuple/TermGroup/App) carries, and resolves a plain value
// Ref's single remaining candidate.
func (rw *rewriter) prepareOperand(term ast.Expr) ast.Expr {
	switch v := term.(type) {
	case *ast.Ref:
		if v.ResolvedID == "" {
			if id, ok := rw.pickCandidate(v, roleValue); ok {
				v.ResolvedID = id
			}
		}
		return v
	default:
		return rw.rewriteExpr(term)
	}
}

// climb is the precedence-climbing loop: it parses one primary, then
// repeatedly extends it with binary operators, postfix operators, or
// implicit juxtaposition whose precedence is >= minPrec.
func (rw *rewriter) climb(terms []ast.Expr, i *int, minPrec int) ast.Expr {
	left := rw.parsePrimary(terms, i)

	for *i < len(terms) {
		term := terms[*i]
		ref, isRef := term.(*ast.Ref)

		if isRef {
			if id, ok := rw.pickCandidate(ref, roleBinary); ok {
				def, _ := rw.idx.Lookup(id)
				binDef := def.(*ast.BinOpDef)
				prec := int(binDef.Precedence)
				if prec < minPrec {
					break
				}
				ref.ResolvedID = id
				*i++
				nextMin := prec + 1
				if binDef.Assoc == ast.Right {
					nextMin = prec
				}
				right := rw.climb(terms, i, nextMin)
				left = &ast.App{Src: ref.Src, Fn: &ast.App{Src: ref.Src, Fn: ref, Arg: left}, Arg: right}
				continue
			}
			if id, ok := rw.pickCandidate(ref, rolePostfix); ok {
				// Postfix operators behave as a left-associative unary
				// operator at juxtaposePrec-1 so they bind tighter than
				// any binary operator but do not themselves chain past a
				// following application.
				const postfixPrec = juxtaposePrec - 1
				if postfixPrec < minPrec {
					break
				}
				ref.ResolvedID = id
				*i++
				left = &ast.App{Src: ref.Src, Fn: ref, Arg: left}
				continue
			}
		}

		if juxtaposePrec < minPrec {
			break
		}
		if !rw.canStartOperand(term) {
			break
		}
		arg := rw.parsePrimary(terms, i)
		left = &ast.App{Src: left.Origin(), Fn: left, Arg: arg}
	}

	return left
}

// wrapNullary auto-wraps a zero-parameter function reference appearing in
// value position into App(fn, Unit).
func (rw *rewriter) wrapNullary(e ast.Expr) ast.Expr {
	ref, ok := e.(*ast.Ref)
	if !ok || ref.ResolvedID == "" {
		return e
	}
	res, ok := rw.idx.Lookup(ref.ResolvedID)
	if !ok {
		return e
	}
	bnd, ok := res.(*ast.Bnd)
	if !ok {
		return e
	}
	lam, ok := bnd.Value.(*ast.Lambda)
	if !ok || len(lam.Params) != 0 {
		return e
	}
	return &ast.App{Src: ref.Src, Fn: ref, Arg: &ast.Literal{Src: source.Synth, Kind: ast.UnitLit}}
}
