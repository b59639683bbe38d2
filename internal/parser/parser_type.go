package parser

import (
	"github.com/minnieml/mmlc/internal/ast"
	"github.com/minnieml/mmlc/internal/lexer"
	"github.com/minnieml/mmlc/internal/source"
)

// parseType parses a type-position term: a TYPE_IDENT optionally applied
// to a parenthesized argument list (TypeApplication), optionally followed
// by `->` to form a curried TypeFn, matching the arrow-type convention
// common to ML-family surface syntax.
func (p *Parser) parseType() ast.TypeSpec {
	start := p.cur
	base := p.parseTypeAtom()
	if base == nil {
		p.errorf(p.spanFrom(start), "expected a type, got %q", p.cur.Literal)
		return &ast.InvalidType{Src: source.FromSource(p.spanFrom(start))}
	}

	if p.cur.Type == lexer.OP_IDENT && p.cur.Literal == "->" {
		p.advance()
		ret := p.parseType()
		return &ast.TypeFn{
			Src:        source.FromSource(p.spanFrom(start)),
			ParamTypes: []ast.TypeSpec{base},
			ReturnType: ret,
		}
	}
	return base
}

func (p *Parser) parseTypeAtom() ast.TypeSpec {
	start := p.cur
	switch p.cur.Type {
	case lexer.TYPE_IDENT:
		name := p.cur.Literal
		p.advance()
		if p.cur.Type == lexer.LPAREN {
			p.advance()
			var args []ast.TypeSpec
			for p.cur.Type != lexer.RPAREN && p.cur.Type != lexer.EOF {
				args = append(args, p.parseType())
				if p.cur.Type == lexer.COMMA {
					p.advance()
				}
			}
			if p.cur.Type == lexer.RPAREN {
				p.advance()
			}
			return &ast.TypeApplication{
				Src:  source.FromSource(p.spanFrom(start)),
				Ctor: &ast.TypeRef{Src: source.FromSource(p.spanFrom(start)), Name: name},
				Args: args,
			}
		}
		return &ast.TypeRef{Src: source.FromSource(p.spanFrom(start)), Name: name}
	case lexer.LPAREN:
		p.advance()
		if p.cur.Type == lexer.RPAREN {
			p.advance()
			return &ast.TypeUnit{Src: source.FromSource(p.spanFrom(start))}
		}
		var elems []ast.TypeSpec
		for {
			elems = append(elems, p.parseType())
			if p.cur.Type == lexer.COMMA {
				p.advance()
				continue
			}
			break
		}
		if p.cur.Type == lexer.RPAREN {
			p.advance()
		}
		if len(elems) == 1 {
			return elems[0]
		}
		return &ast.TypeTuple{Src: source.FromSource(p.spanFrom(start)), Elems: elems}
	case lexer.OP_IDENT:
		if len(p.cur.Literal) >= 1 && p.cur.Literal[0] == '\'' {
			name := p.cur.Literal
			p.advance()
			return &ast.TypeVariable{Src: source.FromSource(p.spanFrom(start)), Name: name}
		}
	}
	return nil
}
