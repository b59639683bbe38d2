package parser

import (
	"github.com/minnieml/mmlc/internal/ast"
	"github.com/minnieml/mmlc/internal/lexer"
	"github.com/minnieml/mmlc/internal/source"
)

// parseLet parses `let NAME (: TYPE)? = EXPR ;`.
func (p *Parser) parseLet(doc string) ast.Member {
	start := p.cur
	p.advance() // consume 'let'

	if p.cur.Type != lexer.BINDING_IDENT {
		return p.recoverMember("expected binding identifier after 'let'")
	}
	name := p.cur.Literal
	p.advance()

	var typeAsc ast.TypeSpec
	if p.cur.Type == lexer.COLON {
		p.advance()
		typeAsc = p.parseType()
	}

	if p.cur.Type != lexer.EQUALS {
		return p.recoverMember("expected '=' in let binding")
	}
	p.advance()

	value := p.parseExprUntilSemi()

	if p.cur.Type == lexer.SEMI {
		p.advance()
	} else {
		p.errorf(p.spanFrom(start), "expected ';' to terminate let binding %q", name)
	}

	return &ast.Bnd{
		Src:     source.FromSource(p.spanFrom(start)),
		Name:    name,
		Value:   value,
		TypeAsc: typeAsc,
	}
}

// parseFn parses `fn NAME ( PARAM* ) (: TYPE)? = EXPR ;`, materializing the
// value as a Lambda.
func (p *Parser) parseFn(doc string) ast.Member {
	start := p.cur
	p.advance() // consume 'fn'

	if p.cur.Type != lexer.BINDING_IDENT {
		return p.recoverMember("expected function name after 'fn'")
	}
	name := p.cur.Literal
	p.advance()

	params, ok := p.parseParamList()
	if !ok {
		return p.recoverMember("invalid parameter list in function declaration")
	}

	var retType ast.TypeSpec
	if p.cur.Type == lexer.COLON {
		p.advance()
		retType = p.parseType()
	}

	if p.cur.Type != lexer.EQUALS {
		return p.recoverMember("expected '=' in function declaration")
	}
	p.advance()

	body := p.parseExprUntilSemi()

	if p.cur.Type == lexer.SEMI {
		p.advance()
	} else {
		p.errorf(p.spanFrom(start), "expected ';' to terminate function %q", name)
	}

	lambda := &ast.Lambda{Src: source.FromSource(p.spanFrom(start)), Params: params, Body: body}
	return &ast.Bnd{
		Src:           source.FromSource(p.spanFrom(start)),
		Name:          name,
		Value:         lambda,
		TypeSpecField: retType,
	}
}

// parseOp parses `op NAME ( PARAMS ) PREC ASSOC = EXPR ;`, producing a
// BinOpDef for two-parameter operators and a UnaryOpDef for one-parameter
// operators.
func (p *Parser) parseOp(doc string) ast.Member {
	start := p.cur
	p.advance() // consume 'op'

	if p.cur.Type != lexer.OP_IDENT {
		return p.recoverMember("expected operator identifier after 'op'")
	}
	name := p.cur.Literal
	p.advance()

	params, ok := p.parseParamList()
	if !ok {
		return p.recoverMember("invalid parameter list in operator declaration")
	}

	var postfix bool
	var precedence uint8
	var assoc ast.Assoc
	if len(params) == 2 {
		if p.cur.Type != lexer.INT {
			return p.recoverMember("expected precedence after operator parameter list")
		}
		precedence = parseUint8(p.cur.Literal)
		p.advance()
		switch p.cur.Literal {
		case "left":
			assoc = ast.Left
		case "right":
			assoc = ast.Right
		default:
			return p.recoverMember("expected 'left' or 'right' associativity")
		}
		p.advance()
	} else if len(params) == 1 {
		// Unary operators carry no explicit precedence/assoc in source;
		// prefix gets the fixed precedence 95, postfix is
		// left-associative. The operator is prefix unless its body is a
		// native implementation carrying `op=postfix`, which is checked
		// below once the body has been parsed.
		postfix = false
	}

	if p.cur.Type != lexer.EQUALS {
		return p.recoverMember("expected '=' in operator declaration")
	}
	p.advance()

	body := p.parseExprUntilSemi()

	if p.cur.Type == lexer.SEMI {
		p.advance()
	} else {
		p.errorf(p.spanFrom(start), "expected ';' to terminate operator %q", name)
	}

	var native *ast.NativeImpl
	if n, ok := body.(*ast.NativeImpl); ok {
		native = n
		if sel, ok := n.Attrs["op"]; ok && sel == "postfix" {
			postfix = true
		}
	}

	span := source.FromSource(p.spanFrom(start))
	if len(params) == 2 {
		return &ast.BinOpDef{
			Src: span, Name: name, Precedence: precedence, Assoc: assoc,
			Left: *params[0], Right: *params[1], Body: body, Native: native,
		}
	}
	if len(params) == 1 {
		return &ast.UnaryOpDef{
			Src: span, Name: name, Postfix: postfix, Operand: *params[0], Body: body, Native: native,
		}
	}
	return p.recoverMember("operators must declare one or two parameters")
}

// parseTypeMember parses `type NAME = TYPE ;` (TypeAlias), `type NAME [ f: T, ... ] ;`
// (TypeStruct), or a bare `type NAME ;` (TypeDef).
func (p *Parser) parseTypeMember(doc string) ast.Member {
	start := p.cur
	p.advance() // consume 'type'

	if p.cur.Type != lexer.TYPE_IDENT {
		return p.recoverMember("expected type name after 'type'")
	}
	name := p.cur.Literal
	p.advance()

	if p.cur.Type == lexer.LBRACKET {
		p.advance()
		var fields []ast.StructField
		for p.cur.Type != lexer.RBRACKET && p.cur.Type != lexer.EOF {
			if p.cur.Type != lexer.BINDING_IDENT {
				return p.recoverMember("expected field name in struct declaration")
			}
			fname := p.cur.Literal
			p.advance()
			if p.cur.Type != lexer.COLON {
				return p.recoverMember("expected ':' after field name")
			}
			p.advance()
			ftype := p.parseType()
			fields = append(fields, ast.StructField{Name: fname, Type: ftype})
			if p.cur.Type == lexer.COMMA {
				p.advance()
			}
		}
		if p.cur.Type == lexer.RBRACKET {
			p.advance()
		}
		if p.cur.Type == lexer.SEMI {
			p.advance()
		}
		return &ast.TypeStruct{Src: source.FromSource(p.spanFrom(start)), Name: name, Fields: fields}
	}

	if p.cur.Type == lexer.EQUALS {
		p.advance()
		target := p.parseType()
		if p.cur.Type == lexer.SEMI {
			p.advance()
		} else {
			p.errorf(p.spanFrom(start), "expected ';' to terminate type alias %q", name)
		}
		return &ast.TypeAlias{Src: source.FromSource(p.spanFrom(start)), Name: name, TypeRef: target}
	}

	if p.cur.Type == lexer.SEMI {
		p.advance()
	} else {
		p.errorf(p.spanFrom(start), "expected ';' to terminate type declaration %q", name)
	}
	return &ast.TypeDef{Src: source.FromSource(p.spanFrom(start)), Name: name}
}

// parseParamList parses `( PARAM* )`, where PARAM is `NAME (: TYPE)?` or a
// borrow-marked `&NAME (: TYPE)?`.
func (p *Parser) parseParamList() ([]*ast.FnParam, bool) {
	if p.cur.Type != lexer.LPAREN {
		return nil, false
	}
	p.advance()

	var params []*ast.FnParam
	for p.cur.Type != lexer.RPAREN && p.cur.Type != lexer.EOF {
		start := p.cur
		borrowed := false
		if p.cur.Type == lexer.AMP {
			borrowed = true
			p.advance()
		}
		if p.cur.Type != lexer.BINDING_IDENT {
			return nil, false
		}
		name := p.cur.Literal
		p.advance()

		var typeAsc ast.TypeSpec
		if p.cur.Type == lexer.COLON {
			p.advance()
			typeAsc = p.parseType()
		}

		params = append(params, &ast.FnParam{
			Src: source.FromSource(p.spanFrom(start)), Name: name, Borrowed: borrowed, TypeAsc: typeAsc,
		})

		if p.cur.Type == lexer.COMMA {
			p.advance()
		}
	}
	if p.cur.Type != lexer.RPAREN {
		return nil, false
	}
	p.advance()
	return params, true
}

func parseUint8(s string) uint8 {
	var v uint8
	for _, ch := range s {
		if ch < '0' || ch > '9' {
			break
		}
		v = v*10 + uint8(ch-'0')
	}
	return v
}
