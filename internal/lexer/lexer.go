// Package lexer implements the Mica lexical analyzer.
//
// Scanning is driven by an explicit finite-state machine: the scanner
// holds one state per partial match (identifier, number, decimal,
// char/string literal, one state per multi-character operator prefix,
// and a comment state) and NextToken runs the machine until exactly
// one token falls out. When the input ends mid-scan the pending
// partial token is flushed before EOI is reported.
package lexer

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/mica-lang/mica/internal/position"
)

// scanState identifies one state of the scanning state machine.
type scanState int

const (
	stateStart scanState = iota
	stateIdent
	stateNumber
	stateNumberDot
	stateDecimal
	stateChar
	stateString
	stateNot
	stateAnd
	stateOr
	stateDash
	stateSlash
	stateComment
	stateEqual
	stateLess
	stateGreater
)

// Lexer represents the lexical analyzer
type Lexer struct {
	input        string
	position     int  // current position in input (points to current char)
	readPosition int  // current reading position in input (after current char)
	ch           byte // current char under examination
	line         int  // current line number
	column       int  // current column number
	filename     string

	state   scanState
	buf     []byte            // text of the token being scanned
	start   position.Position // start of the token being scanned
	dot     position.Position // position of the '.' held while in stateNumberDot
	pending *Token            // token queued for emission before scanning resumes
}

// New creates a new lexer instance
func New(input string) *Lexer {
	return NewWithFilename(input, "")
}

// NewWithFilename creates a new lexer instance with filename for error reporting
func NewWithFilename(input, filename string) *Lexer {
	l := &Lexer{
		input:    input,
		line:     1,
		column:   0,
		filename: filename,
		state:    stateStart,
	}
	l.readChar()
	return l
}

// readChar reads the next character and advances position
func (l *Lexer) readChar() {
	if l.readPosition >= len(l.input) {
		l.ch = 0 // ASCII NUL character represents "EOF"
	} else {
		l.ch = l.input[l.readPosition]
	}
	l.position = l.readPosition
	l.readPosition++

	if l.ch == '\n' {
		l.line++
		l.column = 0
	} else {
		l.column++
	}
}

// pos returns the position of the current character
func (l *Lexer) pos() position.Position {
	return position.Position{
		Filename: l.filename,
		Line:     l.line,
		Column:   l.column,
		Offset:   l.position,
	}
}

// NextToken runs the state machine until one token is produced.
// After the input is exhausted every subsequent call returns EOI.
func (l *Lexer) NextToken() Token {
	if l.pending != nil {
		tok := *l.pending
		l.pending = nil
		return tok
	}

	for {
		if l.ch == 0 {
			return l.flush()
		}

		switch l.state {
		case stateStart:
			if tok, ok := l.scanStart(); ok {
				return tok
			}

		case stateIdent:
			if isLetter(l.ch) || isDigit(l.ch) || l.ch == '_' || l.ch == '-' {
				l.buf = append(l.buf, l.ch)
				l.readChar()
			} else {
				l.state = stateStart
				return l.matchBuffer()
			}

		case stateNumber:
			switch {
			case isDigit(l.ch):
				l.buf = append(l.buf, l.ch)
				l.readChar()
			case l.ch == '.':
				l.dot = l.pos()
				l.state = stateNumberDot
				l.readChar()
			default:
				l.state = stateStart
				return l.intToken()
			}

		case stateNumberDot:
			if isDigit(l.ch) {
				l.state = stateDecimal
				l.buf = append(l.buf, '.', l.ch)
				l.readChar()
			} else {
				// The '.' did not start a fraction: emit the integer
				// now and queue the '.' as its own token.
				l.state = stateStart
				end := l.dot
				end.Column++
				end.Offset++
				dot := Token{Type: TokenDot, Literal: ".", Span: position.NewSpan(l.dot, end)}
				l.pending = &dot
				return l.intToken()
			}

		case stateDecimal:
			if isDigit(l.ch) {
				l.buf = append(l.buf, l.ch)
				l.readChar()
			} else {
				l.state = stateStart
				return l.floatToken()
			}

		case stateChar:
			if l.ch == '\'' {
				l.state = stateStart
				text := string(l.buf)
				l.buf = l.buf[:0]
				l.readChar()
				span := position.NewSpan(l.start, l.pos())
				if len(text) == 1 {
					return Token{Type: TokenChar, Literal: text, Char: text[0], Span: span}
				}
				return l.errorToken(span, "malformed character literal '%s'", text)
			}
			l.buf = append(l.buf, l.ch)
			l.readChar()

		case stateString:
			if l.ch == '"' {
				l.state = stateStart
				text := string(l.buf)
				l.buf = l.buf[:0]
				l.readChar()
				return Token{Type: TokenString, Literal: text, Span: position.NewSpan(l.start, l.pos())}
			}
			l.buf = append(l.buf, l.ch)
			l.readChar()

		case stateNot:
			l.state = stateStart
			if l.ch == '=' {
				l.readChar()
				return l.token(TokenNe, l.start)
			}
			return l.token(TokenNot, l.start)

		case stateAnd:
			l.state = stateStart
			if l.ch == '&' {
				l.readChar()
				return l.token(TokenAnd, l.start)
			}
			return l.errorToken(position.NewSpan(l.start, l.pos()), "unexpected character '&'")

		case stateOr:
			l.state = stateStart
			if l.ch == '|' {
				l.readChar()
				return l.token(TokenOr, l.start)
			}
			return l.errorToken(position.NewSpan(l.start, l.pos()), "unexpected character '|'")

		case stateDash:
			l.state = stateStart
			if l.ch == '>' {
				l.readChar()
				return l.token(TokenArrow, l.start)
			}
			return l.token(TokenSub, l.start)

		case stateSlash:
			if l.ch == '/' {
				l.state = stateComment
				l.readChar()
			} else {
				l.state = stateStart
				return l.token(TokenDiv, l.start)
			}

		case stateComment:
			if l.ch == '\n' || l.ch == '\r' {
				l.state = stateStart
			}
			l.readChar()

		case stateEqual:
			l.state = stateStart
			if l.ch == '=' {
				l.readChar()
				return l.token(TokenEq, l.start)
			}
			return l.token(TokenAssign, l.start)

		case stateLess:
			l.state = stateStart
			if l.ch == '=' {
				l.readChar()
				return l.token(TokenLe, l.start)
			}
			return l.token(TokenLt, l.start)

		case stateGreater:
			l.state = stateStart
			if l.ch == '=' {
				l.readChar()
				return l.token(TokenGe, l.start)
			}
			return l.token(TokenGt, l.start)
		}
	}
}

// scanStart dispatches on the first character of a token. It returns
// a token for the single-character forms and reports ok=false when it
// only moved the machine into a scanning state.
func (l *Lexer) scanStart() (Token, bool) {
	switch l.ch {
	case ' ', '\t', '\n', '\r':
		l.readChar()
	case '{':
		return l.single(TokenLBrace), true
	case '}':
		return l.single(TokenRBrace), true
	case '[':
		return l.single(TokenLBracket), true
	case ']':
		return l.single(TokenRBracket), true
	case '(':
		return l.single(TokenLParen), true
	case ')':
		return l.single(TokenRParen), true
	case '.':
		return l.single(TokenDot), true
	case ',':
		return l.single(TokenComma), true
	case ':':
		return l.single(TokenColon), true
	case ';':
		return l.single(TokenSemicolon), true
	case '+':
		return l.single(TokenAdd), true
	case '*':
		return l.single(TokenMul), true
	case '\'':
		l.begin(stateChar)
	case '"':
		l.begin(stateString)
	case '!':
		l.begin(stateNot)
	case '&':
		l.begin(stateAnd)
	case '|':
		l.begin(stateOr)
	case '-':
		l.begin(stateDash)
	case '/':
		l.begin(stateSlash)
	case '=':
		l.begin(stateEqual)
	case '<':
		l.begin(stateLess)
	case '>':
		l.begin(stateGreater)
	default:
		if isLetter(l.ch) || l.ch == '_' {
			l.start = l.pos()
			l.state = stateIdent
			l.buf = append(l.buf, l.ch)
			l.readChar()
		} else if isDigit(l.ch) {
			l.start = l.pos()
			l.state = stateNumber
			l.buf = append(l.buf, l.ch)
			l.readChar()
		} else {
			start := l.pos()
			ch := l.ch
			l.readChar()
			return l.errorToken(position.NewSpan(start, l.pos()), "unexpected character '%c'", ch), true
		}
	}
	return Token{}, false
}

// flush finalizes whatever partial token is pending at end of input.
func (l *Lexer) flush() Token {
	state := l.state
	l.state = stateStart

	switch state {
	case stateGreater:
		return l.token(TokenGt, l.start)
	case stateLess:
		return l.token(TokenLt, l.start)
	case stateEqual:
		return l.token(TokenAssign, l.start)
	case stateNot:
		return l.token(TokenNot, l.start)
	case stateDash:
		return l.token(TokenSub, l.start)
	case stateSlash:
		return l.token(TokenDiv, l.start)
	case stateAnd:
		return l.token(TokenAnd, l.start)
	case stateOr:
		return l.token(TokenOr, l.start)
	case stateNumberDot:
		end := l.dot
		end.Column++
		end.Offset++
		dot := Token{Type: TokenDot, Literal: ".", Span: position.NewSpan(l.dot, end)}
		l.pending = &dot
		return l.intToken()
	case stateChar:
		l.buf = l.buf[:0]
		return l.errorToken(position.NewSpan(l.start, l.pos()), "unterminated character literal")
	case stateString:
		l.buf = l.buf[:0]
		return l.errorToken(position.NewSpan(l.start, l.pos()), "unterminated string literal")
	case stateIdent, stateNumber, stateDecimal:
		return l.matchBuffer()
	}

	return Token{Type: TokenEOI, Span: position.NewSpan(l.pos(), l.pos())}
}

// begin records the token start, switches into the given state and
// consumes the current character.
func (l *Lexer) begin(s scanState) {
	l.start = l.pos()
	l.state = s
	l.readChar()
}

// single emits a one-character token for the current character.
func (l *Lexer) single(tt TokenType) Token {
	start := l.pos()
	l.readChar()
	return l.token(tt, start)
}

// token builds a token of the given type spanning from start to the
// current scan position, carrying the covered input as its literal.
func (l *Lexer) token(tt TokenType, start position.Position) Token {
	return Token{
		Type:    tt,
		Literal: l.input[start.Offset:l.position],
		Span:    position.NewSpan(start, l.pos()),
	}
}

// errorToken builds an error token carrying a diagnostic message.
func (l *Lexer) errorToken(span position.Span, format string, args ...any) Token {
	return Token{Type: TokenError, Literal: fmt.Sprintf(format, args...), Span: span}
}

// intToken finalizes the buffered digits as a 32-bit integer literal.
func (l *Lexer) intToken() Token {
	text := string(l.buf)
	l.buf = l.buf[:0]
	span := position.NewSpan(l.start, l.pos())

	v, err := strconv.ParseInt(text, 10, 32)
	if err != nil {
		return l.errorToken(span, "integer literal out of range: %s", text)
	}
	return Token{Type: TokenInteger, Literal: text, Int: int32(v), Span: span}
}

// floatToken finalizes the buffered digits as a 32-bit float literal.
func (l *Lexer) floatToken() Token {
	text := string(l.buf)
	l.buf = l.buf[:0]
	span := position.NewSpan(l.start, l.pos())

	// Out of range parses yield +/-Inf, which is kept as the value.
	f, _ := strconv.ParseFloat(text, 32)
	return Token{Type: TokenFloat, Literal: text, Float: float32(f), Span: span}
}

// matchBuffer resolves a completed word against the keyword set,
// falling back to numeric literal forms and finally to an identifier.
// The numeric fallback is reachable only when number scanning is
// flushed at end of input; identifier scanning never buffers a string
// that parses as a number.
func (l *Lexer) matchBuffer() Token {
	text := string(l.buf)
	l.buf = l.buf[:0]
	span := position.NewSpan(l.start, l.pos())

	if tt, ok := keywords[text]; ok {
		if tt == TokenBool {
			return Token{Type: TokenBool, Literal: text, Bool: text == "true", Span: span}
		}
		return Token{Type: tt, Literal: text, Span: span}
	}

	if strings.ContainsRune(text, '.') {
		f, _ := strconv.ParseFloat(text, 32)
		if math.Mod(f, 1) != 0 {
			return Token{Type: TokenFloat, Literal: text, Float: float32(f), Span: span}
		}
		if f < math.MinInt32 || f > math.MaxInt32 {
			return l.errorToken(span, "integer literal out of range: %s", text)
		}
		return Token{Type: TokenInteger, Literal: text, Int: int32(f), Span: span}
	}

	if v, err := strconv.ParseInt(text, 10, 32); err == nil {
		return Token{Type: TokenInteger, Literal: text, Int: int32(v), Span: span}
	} else if errors.Is(err, strconv.ErrRange) {
		return l.errorToken(span, "integer literal out of range: %s", text)
	}

	return Token{Type: TokenIdentifier, Literal: text, Span: span}
}

func isLetter(ch byte) bool {
	return 'a' <= ch && ch <= 'z' || 'A' <= ch && ch <= 'Z'
}

func isDigit(ch byte) bool {
	return '0' <= ch && ch <= '9'
}
