// Package parser implements the Mica recursive descent parser.
//
// Statements and declarations are parsed by the recursive descent
// functions in this file; expressions are parsed by the precedence
// climbing parser in pratt.go. Parsing is strict: the first syntax
// error aborts the parse and is returned from Parse.
package parser

import (
	"fmt"

	"github.com/mica-lang/mica/internal/lexer"
	"github.com/mica-lang/mica/internal/position"
)

// Parser consumes the token stream of a Lexer and builds a Tree.
type Parser struct {
	lexer   *lexer.Lexer
	current lexer.Token
	err     *ParseError
}

// ParseError represents a parsing error with its source position.
type ParseError struct {
	Position position.Position
	Message  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("Parse error at %s: %s", e.Position, e.Message)
}

// bailout aborts parsing on the first error; Parse recovers it.
type bailout struct{}

// New creates a parser reading from l.
func New(l *lexer.Lexer) *Parser {
	return &Parser{lexer: l}
}

// Parse consumes the whole token stream and returns the program tree,
// or the first syntax error encountered.
func (p *Parser) Parse() (root *Tree, err error) {
	defer func() {
		if r := recover(); r != nil {
			if _, ok := r.(bailout); !ok {
				panic(r)
			}
			root = nil
			err = p.err
		}
	}()
	p.next()
	return p.parseProgram(), nil
}

// next advances to the next token. Error tokens from the lexer become
// parse errors here, so malformed input fails before it can reach the
// grammar functions.
func (p *Parser) next() {
	tok := p.lexer.NextToken()
	if tok.Is(lexer.TokenError) {
		p.failAt(tok.Span.Start, tok.Literal)
	}
	p.current = tok
}

// accept consumes the current token if it has the given type.
func (p *Parser) accept(tt lexer.TokenType) bool {
	if p.current.Is(tt) {
		p.next()
		return true
	}
	return false
}

// expect consumes and returns the current token, failing if it does
// not have the given type.
func (p *Parser) expect(tt lexer.TokenType) lexer.Token {
	if !p.current.Is(tt) {
		p.fail("expected %s, found %s", tt, p.current)
	}
	tok := p.current
	p.next()
	return tok
}

// expectType consumes and returns the current token, failing unless it
// is one of the type keywords.
func (p *Parser) expectType() lexer.Token {
	if !p.current.IsType() {
		p.fail("expected type, found %s", p.current)
	}
	tok := p.current
	p.next()
	return tok
}

func (p *Parser) fail(format string, args ...any) {
	p.failAt(p.current.Span.Start, fmt.Sprintf(format, args...))
}

func (p *Parser) failAt(pos position.Position, msg string) {
	p.err = &ParseError{Position: pos, Message: msg}
	panic(bailout{})
}

// metaToken labels grammar productions that have no source token of
// their own.
func metaToken(tt lexer.TokenType, span position.Span) lexer.Token {
	return lexer.Token{Type: tt, Span: span}
}

// parseProgram parses a sequence of function declarations up to the
// end of input.
func (p *Parser) parseProgram() *Tree {
	root := NewTree(metaToken(lexer.TokenStart, p.current.Span))
	for !p.accept(lexer.TokenEOI) {
		root.Push(p.parseFunc())
	}
	return root
}

// parseFunc parses a function declaration. The node's children are the
// name, the parameter list, the declared return type when an arrow is
// present, and the body block.
func (p *Parser) parseFunc() *Tree {
	kw := p.expect(lexer.TokenFunc)
	node := NewTree(metaToken(lexer.TokenFuncDecl, kw.Span))

	node.Push(NewTree(p.expect(lexer.TokenIdentifier)))
	node.Push(p.parseParamList())
	if p.accept(lexer.TokenArrow) {
		node.Push(NewTree(p.expectType()))
	}
	node.Push(p.parseBlock())
	return node
}

func (p *Parser) parseParamList() *Tree {
	lparen := p.expect(lexer.TokenLParen)
	node := NewTree(metaToken(lexer.TokenParamList, lparen.Span))

	if p.accept(lexer.TokenRParen) {
		return node
	}
	node.Push(p.parseParam())
	for p.accept(lexer.TokenComma) {
		node.Push(p.parseParam())
	}
	p.expect(lexer.TokenRParen)
	return node
}

func (p *Parser) parseParam() *Tree {
	node := NewTree(metaToken(lexer.TokenParam, p.current.Span))

	node.Push(NewTree(p.expect(lexer.TokenIdentifier)))
	p.expect(lexer.TokenColon)
	node.Push(NewTree(p.expectType()))
	return node
}

func (p *Parser) parseBlock() *Tree {
	lbrace := p.expect(lexer.TokenLBrace)
	node := NewTree(metaToken(lexer.TokenBlock, lbrace.Span))

	for !p.current.Is(lexer.TokenRBrace) {
		node.Push(p.parseStatement())
	}
	p.expect(lexer.TokenRBrace)
	return node
}

// parseStatement dispatches on the leading token. Anything that does
// not start a statement keyword or a nested block is parsed as an
// expression statement terminated by a semicolon.
func (p *Parser) parseStatement() *Tree {
	switch p.current.Type {
	case lexer.TokenLet:
		return p.parseLet()
	case lexer.TokenIf:
		return p.parseIf()
	case lexer.TokenWhile:
		return p.parseWhile()
	case lexer.TokenPrint:
		return p.parsePrint()
	case lexer.TokenReturn:
		return p.parseReturn()
	case lexer.TokenLBrace:
		return p.parseBlock()
	default:
		node := p.parseExpr()
		p.expect(lexer.TokenSemicolon)
		return node
	}
}

// parseLet parses a let statement. The type annotation and the
// initializer are both optional; an initializer requires '='.
func (p *Parser) parseLet() *Tree {
	kw := p.expect(lexer.TokenLet)
	node := NewTree(metaToken(lexer.TokenLetStmt, kw.Span))

	node.Push(NewTree(p.expect(lexer.TokenIdentifier)))
	if p.accept(lexer.TokenColon) {
		node.Push(NewTree(p.expectType()))
	}
	if !p.current.Is(lexer.TokenSemicolon) {
		p.expect(lexer.TokenAssign)
		node.Push(p.parseExpr())
	}
	p.expect(lexer.TokenSemicolon)
	return node
}

func (p *Parser) parseIf() *Tree {
	kw := p.expect(lexer.TokenIf)
	node := NewTree(metaToken(lexer.TokenIfStmt, kw.Span))

	node.Push(p.parseExpr())
	node.Push(p.parseBlock())
	if p.accept(lexer.TokenElse) {
		node.Push(p.parseBlock())
	}
	return node
}

func (p *Parser) parseWhile() *Tree {
	kw := p.expect(lexer.TokenWhile)
	node := NewTree(metaToken(lexer.TokenWhileStmt, kw.Span))

	node.Push(p.parseExpr())
	node.Push(p.parseBlock())
	return node
}

// parsePrint parses a print statement. The print keyword token itself
// labels the node.
func (p *Parser) parsePrint() *Tree {
	kw := p.expect(lexer.TokenPrint)
	node := NewTree(kw)

	node.Push(p.parseExpr())
	p.expect(lexer.TokenSemicolon)
	return node
}

func (p *Parser) parseReturn() *Tree {
	kw := p.expect(lexer.TokenReturn)
	node := NewTree(metaToken(lexer.TokenReturnStmt, kw.Span))

	node.Push(p.parseExpr())
	p.expect(lexer.TokenSemicolon)
	return node
}
