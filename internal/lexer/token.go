package lexer

import (
	"fmt"
	"strconv"

	"github.com/mica-lang/mica/internal/position"
)

// TokenType represents the type of a token
type TokenType int

// String returns a string representation of the token type
func (tt TokenType) String() string {
	if name, ok := tokenNames[tt]; ok {
		return name
	}
	return fmt.Sprintf("UNKNOWN(%d)", int(tt))
}

// Token types
const (
	// Sentinels
	TokenEOI TokenType = iota
	TokenError

	// Literals and identifiers
	TokenIdentifier
	TokenInteger
	TokenFloat
	TokenChar
	TokenString
	TokenBool

	// Keywords
	TokenFunc
	TokenLet
	TokenIf
	TokenElse
	TokenWhile
	TokenPrint
	TokenReturn

	// Type keywords
	TokenTypeI32
	TokenTypeF32
	TokenTypeChar
	TokenTypeBool

	// Operators
	TokenAdd
	TokenSub
	TokenMul
	TokenDiv
	TokenAssign
	TokenEq
	TokenNe
	TokenLt
	TokenGt
	TokenLe
	TokenGe
	TokenAnd
	TokenOr
	TokenNot
	TokenArrow

	// Delimiters
	TokenLParen
	TokenRParen
	TokenLBrace
	TokenRBrace
	TokenLBracket
	TokenRBracket
	TokenComma
	TokenColon
	TokenSemicolon
	TokenDot

	// Grammar labels, used only as syntax tree node labels
	TokenStart
	TokenFuncDecl
	TokenParamList
	TokenParam
	TokenBlock
	TokenIfStmt
	TokenWhileStmt
	TokenLetStmt
	TokenReturnStmt
)

// tokenNames provides string representations for token types
var tokenNames = map[TokenType]string{
	TokenEOI:   "EOI",
	TokenError: "ERROR",

	TokenIdentifier: "ID",
	TokenInteger:    "INT",
	TokenFloat:      "FLT",
	TokenChar:       "CHAR",
	TokenString:     "STR",
	TokenBool:       "BOOL",

	TokenFunc:   "FUNC",
	TokenLet:    "LET",
	TokenIf:     "IF",
	TokenElse:   "ELSE",
	TokenWhile:  "WHILE",
	TokenPrint:  "PRINT",
	TokenReturn: "RETURN",

	TokenTypeI32:  "TYPE_I32",
	TokenTypeF32:  "TYPE_F32",
	TokenTypeChar: "TYPE_CHAR",
	TokenTypeBool: "TYPE_BOOL",

	TokenAdd:    "ADD",
	TokenSub:    "SUB",
	TokenMul:    "MUL",
	TokenDiv:    "DIV",
	TokenAssign: "ASSIGN",
	TokenEq:     "EQ",
	TokenNe:     "NEQ",
	TokenLt:     "LT",
	TokenGt:     "GT",
	TokenLe:     "LE",
	TokenGe:     "GE",
	TokenAnd:    "AND",
	TokenOr:     "OR",
	TokenNot:    "NOT",
	TokenArrow:  "ARROW",

	TokenLParen:    "LPAREN",
	TokenRParen:    "RPAREN",
	TokenLBrace:    "LBRACE",
	TokenRBrace:    "RBRACE",
	TokenLBracket:  "LBRACKET",
	TokenRBracket:  "RBRACKET",
	TokenComma:     "COMMA",
	TokenColon:     "COLON",
	TokenSemicolon: "SEMICOLON",
	TokenDot:       "DOT",

	TokenStart:      "START",
	TokenFuncDecl:   "FUNC_DECL",
	TokenParamList:  "PARAM_LIST",
	TokenParam:      "PARAM",
	TokenBlock:      "BLOCK",
	TokenIfStmt:     "IF_STMT",
	TokenWhileStmt:  "WHILE_STMT",
	TokenLetStmt:    "LET_STMT",
	TokenReturnStmt: "RETURN_STMT",
}

// keywords maps string keywords to their token types
var keywords = map[string]TokenType{
	"func":   TokenFunc,
	"let":    TokenLet,
	"if":     TokenIf,
	"else":   TokenElse,
	"while":  TokenWhile,
	"print":  TokenPrint,
	"return": TokenReturn,
	"i32":    TokenTypeI32,
	"f32":    TokenTypeF32,
	"char":   TokenTypeChar,
	"bool":   TokenTypeBool,
	"true":   TokenBool,
	"false":  TokenBool,
}

// Token represents a lexical token with position information.
// The payload fields carry the decoded literal value for the
// corresponding literal token types and are zero otherwise.
type Token struct {
	Type    TokenType
	Literal string // raw text for identifiers, literals and error messages
	Int     int32  // value for INT tokens
	Float   float32
	Char    byte
	Bool    bool
	Span    position.Span
}

// Is reports whether the token has the given type. Token identity is
// defined by type alone; literal payloads never participate.
func (t Token) Is(tt TokenType) bool {
	return t.Type == tt
}

// IsType reports whether the token is one of the type keywords.
func (t Token) IsType() bool {
	switch t.Type {
	case TokenTypeI32, TokenTypeF32, TokenTypeChar, TokenTypeBool:
		return true
	}
	return false
}

// String returns a compact representation of the token, with the
// payload in parentheses for value-carrying token types.
func (t Token) String() string {
	switch t.Type {
	case TokenIdentifier:
		return fmt.Sprintf("ID(%s)", t.Literal)
	case TokenInteger:
		return fmt.Sprintf("INT(%d)", t.Int)
	case TokenFloat:
		return fmt.Sprintf("FLT(%s)", strconv.FormatFloat(float64(t.Float), 'g', -1, 32))
	case TokenChar:
		return fmt.Sprintf("CHAR('%c')", t.Char)
	case TokenString:
		return fmt.Sprintf("STR(%q)", t.Literal)
	case TokenBool:
		return fmt.Sprintf("BOOL(%t)", t.Bool)
	case TokenError:
		return fmt.Sprintf("ERROR(%s)", t.Literal)
	}
	return t.Type.String()
}
