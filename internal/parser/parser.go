// Package parser implements MinnieML's combinator parser:
// it never throws on malformed input, substituting ParsingMemberError /
// TermError nodes and resuming at the next synchronization point. The
// driver loop holds cur/peek and advances via advance.
package parser

import (
	"fmt"

	"github.com/minnieml/mmlc/internal/ast"
	"github.com/minnieml/mmlc/internal/lexer"
	"github.com/minnieml/mmlc/internal/source"
)

// ParseError is a parser-level diagnostic, surfaced later by the semantic
// ParsingErrorChecker phase.
type ParseError struct {
	Message string
	Span    source.Span
}

// Parser drives lexer.Lexer over one token of lookahead and produces a
// Module AST plus any parse errors.
type Parser struct {
	l    *lexer.Lexer
	file string

	cur  lexer.Token
	peek lexer.Token

	errors []ParseError
	pendingDoc string
}

// New constructs a Parser reading tokens from l.
func New(l *lexer.Lexer) *Parser {
	p := &Parser{l: l, file: l.File()}
	p.advance()
	p.advance()
	return p
}

func (p *Parser) advance() {
	p.cur = p.peek
	p.peek = p.l.NextToken()
	for p.peek.Type == lexer.DOC_COMMENT {
		p.pendingDoc = p.peek.Literal
		p.peek = p.l.NextToken()
	}
}

func (p *Parser) pos(t lexer.Token) source.Point {
	return source.Point{Offset: t.Offset, Line: t.Line, Col: t.Col}
}

func (p *Parser) spanFrom(start lexer.Token) source.Span {
	return source.Span{Start: p.pos(start), End: p.pos(p.cur)}
}

func (p *Parser) errorf(span source.Span, format string, args ...interface{}) {
	p.errors = append(p.errors, ParseError{Message: fmt.Sprintf(format, args...), Span: span})
}

// Errors returns every ParseError accumulated so far.
func (p *Parser) Errors() []ParseError { return p.errors }

// Parse consumes the entire token stream and produces a Module. moduleName
// is derived by the caller from the source file path and supplied here.
func (p *Parser) Parse(moduleName string) *ast.Module {
	mod := &ast.Module{
		Src:        source.Synth,
		Name:       moduleName,
		Visibility: ast.Public,
	}
	for p.cur.Type != lexer.EOF {
		member := p.parseMember()
		if member != nil {
			mod.Members = append(mod.Members, member)
		}
	}
	return mod
}

// isMemberStart reports whether t is one of the tokens recoverMember
// resynchronizes to after an error.
func isMemberStart(t lexer.TokenType) bool {
	switch t {
	case lexer.LET, lexer.FN, lexer.OP, lexer.TYPE, lexer.MODULE:
		return true
	default:
		return false
	}
}

func (p *Parser) parseMember() ast.Member {
	doc := p.pendingDoc
	p.pendingDoc = ""

	switch p.cur.Type {
	case lexer.LET:
		return p.parseLet(doc)
	case lexer.FN:
		return p.parseFn(doc)
	case lexer.OP:
		return p.parseOp(doc)
	case lexer.TYPE:
		return p.parseTypeMember(doc)
	case lexer.MODULE:
		// A bare `module NAME;` inside the body is not part of this
		// grammar (the module name is supplied by the caller); treat it
		// as a parse error and recover.
		p.advance()
		return p.recoverMember("unexpected module declaration")
	default:
		return p.recoverMember(fmt.Sprintf("unexpected token %q at start of member", p.cur.Literal))
	}
}

// recoverMember consumes tokens until the next member-start keyword or a
// terminating ';', emitting a single ParsingMemberError.
func (p *Parser) recoverMember(reason string) ast.Member {
	start := p.cur
	for p.cur.Type != lexer.EOF && !isMemberStart(p.cur.Type) {
		if p.cur.Type == lexer.SEMI {
			p.advance()
			break
		}
		p.advance()
	}
	span := p.spanFrom(start)
	return &ast.ParsingMemberError{
		Src:        source.FromSource(span),
		Message:    reason,
		FailedCode: "",
	}
}

func (p *Parser) expect(t lexer.TokenType, what string) bool {
	if p.cur.Type != t {
		p.errorf(source.Span{Start: p.pos(p.cur), End: p.pos(p.cur)}, "expected %s, got %q", what, p.cur.Literal)
		return false
	}
	return true
}
