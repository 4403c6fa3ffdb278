package hir

import (
	"errors"
	"fmt"

	"github.com/mica-lang/mica/internal/lexer"
	"github.com/mica-lang/mica/internal/parser"
)

// opSymbols maps binary operator tokens to their semantic symbol.
var opSymbols = map[lexer.TokenType]string{
	lexer.TokenAdd: "+",
	lexer.TokenSub: "-",
	lexer.TokenMul: "*",
	lexer.TokenDiv: "/",
	lexer.TokenEq:  "==",
	lexer.TokenNe:  "!=",
	lexer.TokenLt:  "<",
	lexer.TokenGt:  ">",
	lexer.TokenLe:  "<=",
	lexer.TokenGe:  ">=",
	lexer.TokenAnd: "&&",
	lexer.TokenOr:  "||",
}

// typeOf maps a type keyword token to a semantic type. Type keywords
// outside the checked set lower to Unknown.
func typeOf(tok lexer.Token) Type {
	switch tok.Type {
	case lexer.TokenTypeI32:
		return Int
	case lexer.TokenTypeBool:
		return Bool
	}
	return Unknown
}

// Lower converts a parsed program into its semantic tree. The first
// malformed node aborts the conversion.
func Lower(t *parser.Tree) (*Program, error) {
	n, err := lowerNode(t)
	if err != nil {
		return nil, err
	}
	prog, ok := n.(*Program)
	if !ok {
		return nil, errors.New("expected a program root")
	}
	return prog, nil
}

func lowerNode(t *parser.Tree) (Node, error) {
	switch t.Token.Type {
	case lexer.TokenStart:
		prog := &Program{}
		for _, c := range t.Children {
			n, err := lowerNode(c)
			if err != nil {
				return nil, err
			}
			f, ok := n.(*FuncDecl)
			if !ok {
				return nil, errors.New("Expected FUNC_DECL in program")
			}
			prog.Funcs = append(prog.Funcs, f)
		}
		return prog, nil

	case lexer.TokenFuncDecl:
		return lowerFunc(t)

	case lexer.TokenBlock:
		block := &Block{}
		for _, c := range t.Children {
			stmt, err := lowerNode(c)
			if err != nil {
				return nil, err
			}
			block.Stmts = append(block.Stmts, stmt)
		}
		return block, nil

	case lexer.TokenLetStmt:
		return lowerLet(t)

	case lexer.TokenAssign:
		if len(t.Children) != 2 {
			return nil, errors.New("Assign must have two children")
		}
		if !t.Children[0].Token.Is(lexer.TokenIdentifier) {
			return nil, errors.New("Left side of assign must be ID")
		}
		expr, err := lowerNode(t.Children[1])
		if err != nil {
			return nil, err
		}
		return &Assign{Name: t.Children[0].Token.Literal, Expr: expr}, nil

	case lexer.TokenReturnStmt:
		if len(t.Children) == 0 {
			return nil, errors.New("return missing expr")
		}
		expr, err := lowerNode(t.Children[0])
		if err != nil {
			return nil, err
		}
		return &ReturnStmt{Expr: expr}, nil

	case lexer.TokenWhileStmt:
		if len(t.Children) == 0 {
			return nil, errors.New("while missing condition")
		}
		if len(t.Children) < 2 {
			return nil, errors.New("while missing body")
		}
		cond, err := lowerNode(t.Children[0])
		if err != nil {
			return nil, err
		}
		body, err := lowerBlock(t.Children[1], "while body must be a block")
		if err != nil {
			return nil, err
		}
		return &WhileStmt{Cond: cond, Body: body}, nil

	case lexer.TokenIfStmt:
		return lowerIf(t)

	case lexer.TokenPrint:
		if len(t.Children) == 0 {
			return nil, errors.New("print missing expr")
		}
		expr, err := lowerNode(t.Children[0])
		if err != nil {
			return nil, err
		}
		return &PrintStmt{Expr: expr}, nil

	case lexer.TokenNot:
		if len(t.Children) != 1 {
			return nil, errors.New("unary NOT must have one child")
		}
		operand, err := lowerNode(t.Children[0])
		if err != nil {
			return nil, err
		}
		// The unused left operand holds a placeholder literal.
		return &Expr{Left: &BoolLit{Value: false}, Op: "!", Right: operand}, nil

	case lexer.TokenAdd, lexer.TokenSub, lexer.TokenMul, lexer.TokenDiv,
		lexer.TokenEq, lexer.TokenNe, lexer.TokenLt, lexer.TokenGt,
		lexer.TokenLe, lexer.TokenGe, lexer.TokenAnd, lexer.TokenOr:
		return lowerOp(t)

	case lexer.TokenIdentifier:
		if len(t.Children) > 0 {
			call := &CallExpr{Name: t.Token.Literal}
			for _, c := range t.Children {
				arg, err := lowerNode(c)
				if err != nil {
					return nil, err
				}
				call.Args = append(call.Args, arg)
			}
			return call, nil
		}
		return &Ident{Name: t.Token.Literal}, nil

	case lexer.TokenInteger:
		return &IntLit{Value: t.Token.Int}, nil

	case lexer.TokenBool:
		return &BoolLit{Value: t.Token.Bool}, nil
	}

	return nil, fmt.Errorf("Unhandled token in converter: %s", t.Token)
}

func lowerFunc(t *parser.Tree) (Node, error) {
	if len(t.Children) == 0 {
		return nil, errors.New("Missing function name")
	}
	if !t.Children[0].Token.Is(lexer.TokenIdentifier) {
		return nil, errors.New("Expected ID in FUNC_DECL")
	}
	name := t.Children[0].Token.Literal

	if len(t.Children) < 2 {
		return nil, errors.New("Missing param list")
	}
	var params []Param
	for _, p := range t.Children[1].Children {
		if len(p.Children) == 0 {
			return nil, errors.New("Param missing id")
		}
		if len(p.Children) < 2 {
			return nil, errors.New("Param missing type")
		}
		if !p.Children[0].Token.Is(lexer.TokenIdentifier) {
			return nil, errors.New("Expected ID in param")
		}
		params = append(params, Param{
			Name: p.Children[0].Token.Literal,
			Type: typeOf(p.Children[1].Token),
		})
	}

	retType := Unknown
	bodyIndex := 2
	if len(t.Children) > 2 && t.Children[2].Token.IsType() {
		retType = typeOf(t.Children[2].Token)
		bodyIndex = 3
	}
	if len(t.Children) <= bodyIndex {
		return nil, errors.New("Missing function block")
	}
	body, err := lowerBlock(t.Children[bodyIndex], "function body must be a block")
	if err != nil {
		return nil, err
	}
	return &FuncDecl{Name: name, Params: params, RetType: retType, Body: body}, nil
}

// lowerLet handles the let statement's optional children: a second
// child is either the declared type or, when it is not a type keyword,
// the initializer; with a type present the initializer is the third
// child.
func lowerLet(t *parser.Tree) (Node, error) {
	if len(t.Children) == 0 {
		return nil, errors.New("let missing id")
	}
	if !t.Children[0].Token.Is(lexer.TokenIdentifier) {
		return nil, errors.New("Expected id in let")
	}
	let := &LetStmt{Name: t.Children[0].Token.Literal, Type: Unknown}

	if len(t.Children) >= 2 {
		second := t.Children[1]
		if second.Token.IsType() {
			let.Type = typeOf(second.Token)
			if len(t.Children) >= 3 {
				expr, err := lowerNode(t.Children[2])
				if err != nil {
					return nil, err
				}
				let.Expr = expr
			}
		} else {
			expr, err := lowerNode(second)
			if err != nil {
				return nil, err
			}
			let.Expr = expr
		}
	}
	return let, nil
}

func lowerIf(t *parser.Tree) (Node, error) {
	if len(t.Children) == 0 {
		return nil, errors.New("if missing condition")
	}
	if len(t.Children) < 2 {
		return nil, errors.New("if missing then block")
	}
	cond, err := lowerNode(t.Children[0])
	if err != nil {
		return nil, err
	}
	then, err := lowerBlock(t.Children[1], "if branch must be a block")
	if err != nil {
		return nil, err
	}
	stmt := &IfStmt{Cond: cond, Then: then}
	if len(t.Children) > 2 {
		stmt.Else, err = lowerBlock(t.Children[2], "if branch must be a block")
		if err != nil {
			return nil, err
		}
	}
	return stmt, nil
}

// lowerOp handles the shared binary operator tokens. A single child
// marks unary position, which only subtraction supports here; logical
// not has its own arm.
func lowerOp(t *parser.Tree) (Node, error) {
	switch len(t.Children) {
	case 1:
		if !t.Token.Is(lexer.TokenSub) {
			return nil, errors.New("Only SUB can be unary in this position")
		}
		operand, err := lowerNode(t.Children[0])
		if err != nil {
			return nil, err
		}
		return &Expr{Left: &IntLit{Value: 0}, Op: "unary-", Right: operand}, nil
	case 2:
		left, err := lowerNode(t.Children[0])
		if err != nil {
			return nil, err
		}
		right, err := lowerNode(t.Children[1])
		if err != nil {
			return nil, err
		}
		return &Expr{Left: left, Op: opSymbols[t.Token.Type], Right: right}, nil
	}
	return nil, errors.New("operator must have one or two children")
}

func lowerBlock(t *parser.Tree, msg string) (*Block, error) {
	n, err := lowerNode(t)
	if err != nil {
		return nil, err
	}
	block, ok := n.(*Block)
	if !ok {
		return nil, errors.New(msg)
	}
	return block, nil
}
