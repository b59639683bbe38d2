package parser

import (
	"strconv"

	"github.com/minnieml/mmlc/internal/ast"
	"github.com/minnieml/mmlc/internal/lexer"
	"github.com/minnieml/mmlc/internal/source"
)

// isTermStart reports whether t can begin a new term in a flat expression.
func isTermStart(t lexer.TokenType) bool {
	switch t {
	case lexer.INT, lexer.FLOAT, lexer.STRING, lexer.BINDING_IDENT, lexer.TYPE_IDENT,
		lexer.OP_IDENT, lexer.LPAREN, lexer.IF, lexer.AT, lexer.UNDERSCORE:
		return true
	default:
		return false
	}
}

// parseExprUntilSemi parses a flat expression terminated by ';' (a member
// body).
func (p *Parser) parseExprUntilSemi() ast.Expr {
	return p.parseFlatExpr(func(t lexer.TokenType) bool { return t == lexer.SEMI })
}

// parseFlatExpr collects a sequence of terms into an ExprList until stop
// reports true or a non-term token is reached. A single native-body expression collapses directly to
// its NativeImpl rather than being wrapped in a one-term list.
func (p *Parser) parseFlatExpr(stop func(lexer.TokenType) bool) ast.Expr {
	if p.cur.Type == lexer.LET {
		return p.parseLocalLet(stop)
	}

	start := p.cur
	var terms []ast.Expr
	for !stop(p.cur.Type) && isTermStart(p.cur.Type) {
		term := p.parseTerm()
		if term == nil {
			break
		}
		terms = append(terms, term)
	}
	if len(terms) == 1 {
		return terms[0]
	}
	if len(terms) == 0 {
		span := p.spanFrom(start)
		p.errorf(span, "expected an expression")
		return &ast.TermError{Src: source.FromSource(span), Message: "empty expression"}
	}
	return &ast.ExprList{Src: source.FromSource(p.spanFrom(start)), Terms: terms}
}

// parseLocalLet parses a local `let NAME (: TYPE)? = EXPR; BODY` binding
// inside an expression, desugaring it immediately into
// App(Lambda([NAME], BODY), EXPR).
func (p *Parser) parseLocalLet(stop func(lexer.TokenType) bool) ast.Expr {
	start := p.cur
	p.advance() // consume 'let'

	if p.cur.Type != lexer.BINDING_IDENT && p.cur.Type != lexer.UNDERSCORE {
		p.errorf(p.spanFrom(start), "expected binding identifier after 'let'")
		return &ast.TermError{Src: source.FromSource(p.spanFrom(start)), Message: "invalid local let"}
	}
	name := p.cur.Literal
	p.advance()

	var typeAsc ast.TypeSpec
	if p.cur.Type == lexer.COLON {
		p.advance()
		typeAsc = p.parseType()
	}

	if p.cur.Type != lexer.EQUALS {
		p.errorf(p.spanFrom(start), "expected '=' in local let binding")
		return &ast.TermError{Src: source.FromSource(p.spanFrom(start)), Message: "invalid local let"}
	}
	p.advance()

	value := p.parseFlatExpr(func(t lexer.TokenType) bool { return t == lexer.SEMI })
	if p.cur.Type == lexer.SEMI {
		p.advance()
	} else {
		p.errorf(p.spanFrom(start), "expected ';' after local let value")
	}

	body := p.parseFlatExpr(stop)

	param := &ast.FnParam{Src: source.FromSource(p.spanFrom(start)), Name: name, TypeAsc: typeAsc}
	lambda := &ast.Lambda{Src: source.FromSource(p.spanFrom(start)), Params: []*ast.FnParam{param}, Body: body}
	return &ast.App{Src: source.FromSource(p.spanFrom(start)), Fn: lambda, Arg: value}
}

// parseTerm parses a single term: a literal, a Ref, a parenthesized group
// (possibly a Tuple or Unit), a conditional, a native body, a placeholder,
// or a hole.
func (p *Parser) parseTerm() ast.Expr {
	start := p.cur
	switch p.cur.Type {
	case lexer.INT:
		v, _ := strconv.ParseInt(p.cur.Literal, 10, 64)
		p.advance()
		return &ast.Literal{Src: source.FromSource(p.spanFrom(start)), Kind: ast.IntLit, Value: v}
	case lexer.FLOAT:
		v, _ := strconv.ParseFloat(p.cur.Literal, 64)
		p.advance()
		return &ast.Literal{Src: source.FromSource(p.spanFrom(start)), Kind: ast.FloatLit, Value: v}
	case lexer.STRING:
		v := p.cur.Literal
		p.advance()
		return &ast.Literal{Src: source.FromSource(p.spanFrom(start)), Kind: ast.StringLit, Value: v}
	case lexer.UNDERSCORE:
		p.advance()
		return &ast.Placeholder{Src: source.FromSource(p.spanFrom(start))}
	case lexer.BINDING_IDENT:
		name := p.cur.Literal
		p.advance()
		if name == "true" {
			return &ast.Literal{Src: source.FromSource(p.spanFrom(start)), Kind: ast.BoolLit, Value: true}
		}
		if name == "false" {
			return &ast.Literal{Src: source.FromSource(p.spanFrom(start)), Kind: ast.BoolLit, Value: false}
		}
		return p.finishRef(start, name)
	case lexer.TYPE_IDENT:
		name := p.cur.Literal
		p.advance()
		return p.finishRef(start, name)
	case lexer.OP_IDENT:
		name := p.cur.Literal
		p.advance()
		if name == "???" {
			return &ast.Hole{Src: source.FromSource(p.spanFrom(start))}
		}
		return &ast.Ref{Src: source.FromSource(p.spanFrom(start)), Name: name}
	case lexer.IF:
		return p.parseCond()
	case lexer.AT:
		return p.parseNative()
	case lexer.LPAREN:
		return p.parseParenOrTuple()
	default:
		span := p.spanFrom(start)
		p.errorf(span, "unexpected token %q in expression", p.cur.Literal)
		p.advance()
		return &ast.TermError{Src: source.FromSource(span), Message: "unexpected token"}
	}
}

// finishRef builds a Ref, following a qualifier chain (`Module.member`)
// when the name is followed by '.'.
func (p *Parser) finishRef(start lexer.Token, name string) ast.Expr {
	ref := &ast.Ref{Src: source.FromSource(p.spanFrom(start)), Name: name}
	for p.cur.Type == lexer.DOT {
		p.advance()
		var fieldName string
		switch p.cur.Type {
		case lexer.BINDING_IDENT, lexer.TYPE_IDENT:
			fieldName = p.cur.Literal
			p.advance()
		default:
			p.errorf(p.spanFrom(start), "expected identifier after '.'")
			return ref
		}
		ref = &ast.Ref{
			Src:       source.FromSource(p.spanFrom(start)),
			Name:      fieldName,
			Qualifier: ref,
		}
	}
	return ref
}

// parseParenOrTuple parses `()` (Unit), `(expr)` (TermGroup), or
// `(e1, e2, ...)` (Tuple).
func (p *Parser) parseParenOrTuple() ast.Expr {
	start := p.cur
	p.advance() // consume '('

	if p.cur.Type == lexer.RPAREN {
		p.advance()
		return &ast.Literal{Src: source.FromSource(p.spanFrom(start)), Kind: ast.UnitLit, Value: nil}
	}

	first := p.parseFlatExpr(func(t lexer.TokenType) bool { return t == lexer.RPAREN || t == lexer.COMMA })
	if p.cur.Type == lexer.COMMA {
		elems := []ast.Expr{first}
		for p.cur.Type == lexer.COMMA {
			p.advance()
			elems = append(elems, p.parseFlatExpr(func(t lexer.TokenType) bool { return t == lexer.RPAREN || t == lexer.COMMA }))
		}
		if p.cur.Type == lexer.RPAREN {
			p.advance()
		} else {
			p.errorf(p.spanFrom(start), "expected ')' to close tuple")
		}
		return &ast.Tuple{Src: source.FromSource(p.spanFrom(start)), Elems: elems}
	}

	if p.cur.Type == lexer.RPAREN {
		p.advance()
	} else {
		p.errorf(p.spanFrom(start), "expected ')' to close group")
	}
	return &ast.TermGroup{Src: source.FromSource(p.spanFrom(start)), Inner: first}
}

// parseCond parses `if COND then IFTRUE else IFFALSE`.
func (p *Parser) parseCond() ast.Expr {
	start := p.cur
	p.advance() // consume 'if'
	cond := p.parseFlatExpr(func(t lexer.TokenType) bool { return t == lexer.THEN })
	if p.cur.Type != lexer.THEN {
		p.errorf(p.spanFrom(start), "expected 'then' in conditional")
		return &ast.TermError{Src: source.FromSource(p.spanFrom(start)), Message: "missing then"}
	}
	p.advance()
	ifTrue := p.parseFlatExpr(func(t lexer.TokenType) bool { return t == lexer.ELSE })
	if p.cur.Type != lexer.ELSE {
		p.errorf(p.spanFrom(start), "expected 'else' in conditional")
		return &ast.TermError{Src: source.FromSource(p.spanFrom(start)), Message: "missing else"}
	}
	p.advance()
	ifFalse := p.parseFlatExpr(func(t lexer.TokenType) bool {
		return t == lexer.SEMI || t == lexer.RPAREN || t == lexer.COMMA || t == lexer.THEN || t == lexer.ELSE
	})
	return &ast.Cond{Src: source.FromSource(p.spanFrom(start)), CondExpr: cond, IfTrue: ifTrue, IfFalse: ifFalse}
}

// parseNative parses `@native` or `@native[attr=value,...]`.
func (p *Parser) parseNative() ast.Expr {
	start := p.cur
	p.advance() // consume '@'
	if p.cur.Type != lexer.NATIVE {
		span := p.spanFrom(start)
		p.errorf(span, "expected 'native' after '@'")
		return &ast.TermError{Src: source.FromSource(span), Message: "expected native"}
	}
	p.advance()

	attrs := map[string]string{}
	if p.cur.Type == lexer.LBRACKET {
		p.advance()
		for p.cur.Type != lexer.RBRACKET && p.cur.Type != lexer.EOF {
			if p.cur.Type != lexer.BINDING_IDENT {
				break
			}
			key := p.cur.Literal
			p.advance()
			if p.cur.Type != lexer.EQUALS {
				break
			}
			p.advance()
			var val string
			switch p.cur.Type {
			case lexer.STRING, lexer.BINDING_IDENT, lexer.TYPE_IDENT, lexer.OP_IDENT, lexer.INT:
				val = p.cur.Literal
				p.advance()
			}
			attrs[key] = val
			if p.cur.Type == lexer.COMMA {
				p.advance()
			}
		}
		if p.cur.Type == lexer.RBRACKET {
			p.advance()
		}
	}

	return &ast.NativeImpl{
		Src:      source.FromSource(p.spanFrom(start)),
		Attrs:    attrs,
		Selector: attrs["op"],
		Template: attrs["tpl"],
	}
}
