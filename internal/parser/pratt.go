package parser

import (
	"github.com/mica-lang/mica/internal/lexer"
)

// bindingPower carries the precedence triple of one token. The left
// and right powers govern the token as an infix operator; prefix is
// the binding power of its operand when the token appears in prefix
// position. A zero left power never binds, so any token absent from
// the table terminates the infix loop.
type bindingPower struct {
	left, right, prefix int
}

// bindingPowers drives expression precedence and associativity.
// Equal left and right powers on the relational tier make chained
// comparisons group to the right; additive and multiplicative tiers
// are left associative; assignment is right associative and binds
// loosest of all.
var bindingPowers = map[lexer.TokenType]bindingPower{
	lexer.TokenAssign: {left: 1, right: 1},

	lexer.TokenOr:  {left: 10, right: 11},
	lexer.TokenAnd: {left: 11, right: 12},
	lexer.TokenNot: {left: 18, right: 19, prefix: 100},

	lexer.TokenLt: {left: 30, right: 30},
	lexer.TokenGt: {left: 30, right: 30},
	lexer.TokenLe: {left: 30, right: 30},
	lexer.TokenGe: {left: 30, right: 30},
	lexer.TokenEq: {left: 30, right: 30},
	lexer.TokenNe: {left: 30, right: 30},

	lexer.TokenAdd: {left: 30, right: 31},
	lexer.TokenSub: {left: 30, right: 31, prefix: 100},
	lexer.TokenMul: {left: 31, right: 32},
	lexer.TokenDiv: {left: 31, right: 32, prefix: 100},
}

func powers(tt lexer.TokenType) bindingPower {
	return bindingPowers[tt]
}

// parseExpr parses one expression with the binding power floor reset.
func (p *Parser) parseExpr() *Tree {
	return p.parseExprAt(1)
}

// parseExprAt is the precedence climbing loop. It parses a left
// operand, then folds infix operators into two-child nodes while their
// left binding power stays at or above minBP.
func (p *Parser) parseExprAt(minBP int) *Tree {
	var left *Tree
	switch {
	case powers(p.current.Type).prefix > 0:
		left = p.parsePrefix()
	case p.current.Is(lexer.TokenLParen):
		left = p.parseParens()
	default:
		left = p.parseAtom()
	}

	for {
		op := p.current
		bp := powers(op.Type)
		if minBP > bp.left {
			return left
		}
		p.next()

		right := p.parseExprAt(bp.right)
		node := NewTree(op)
		node.Push(left)
		node.Push(right)
		// The operator node's span covers both operands.
		node.Token.Span = op.Span.Union(left.Token.Span).Union(right.Token.Span)
		left = node
	}
}

// parsePrefix parses a prefix operator and its operand into a
// one-child node labeled with the operator.
func (p *Parser) parsePrefix() *Tree {
	op := p.current
	p.next()

	operand := p.parseExprAt(powers(op.Type).prefix)
	node := NewTree(op)
	node.Push(operand)
	node.Token.Span = op.Span.Union(operand.Token.Span)
	return node
}

// parseParens parses a parenthesized expression. The parentheses only
// reset the binding power floor; no node is produced for them.
func (p *Parser) parseParens() *Tree {
	p.expect(lexer.TokenLParen)
	node := p.parseExpr()
	p.expect(lexer.TokenRParen)
	return node
}

// parseAtom parses an identifier or literal operand. An atom
// immediately followed by an opening parenthesis is reinterpreted as a
// call, with the arguments as children of the atom's node.
func (p *Parser) parseAtom() *Tree {
	switch p.current.Type {
	case lexer.TokenIdentifier, lexer.TokenInteger, lexer.TokenFloat,
		lexer.TokenChar, lexer.TokenBool:
	default:
		p.fail("expected expression, found %s", p.current)
	}
	atom := p.current
	p.next()

	node := NewTree(atom)
	if p.current.Is(lexer.TokenLParen) {
		p.parseCallArgs(node)
	}
	return node
}

// parseCallArgs parses a comma separated argument list into node.
func (p *Parser) parseCallArgs(node *Tree) {
	p.expect(lexer.TokenLParen)
	if p.accept(lexer.TokenRParen) {
		return
	}
	node.Push(p.parseExpr())
	for p.accept(lexer.TokenComma) {
		node.Push(p.parseExpr())
	}
	p.expect(lexer.TokenRParen)
}
