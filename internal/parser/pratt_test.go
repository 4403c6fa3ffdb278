package parser

import (
	"testing"
)

func TestExpressionPrecedence(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"1 + 2 * 3;", "(ADD INT(1) (MUL INT(2) INT(3)))"},
		{"1 * 2 + 3;", "(ADD (MUL INT(1) INT(2)) INT(3))"},
		{"1 + 2 + 3;", "(ADD (ADD INT(1) INT(2)) INT(3))"},
		{"1 - 2 - 3;", "(SUB (SUB INT(1) INT(2)) INT(3))"},
		{"8 / 2 / 2;", "(DIV (DIV INT(8) INT(2)) INT(2))"},
		{"a = b = 1;", "(ASSIGN ID(a) (ASSIGN ID(b) INT(1)))"},
		{"x = a || b;", "(ASSIGN ID(x) (OR ID(a) ID(b)))"},
		{"a < b + c;", "(LT ID(a) (ADD ID(b) ID(c)))"},
		{"a + b < c;", "(LT (ADD ID(a) ID(b)) ID(c))"},
		{"1 + 2 == 3 + 4;", "(EQ (ADD INT(1) INT(2)) (ADD INT(3) INT(4)))"},
		{"a && b || c;", "(OR (AND ID(a) ID(b)) ID(c))"},
		{"a || b && c;", "(OR ID(a) (AND ID(b) ID(c)))"},
		{"a == b && c == d;", "(AND (EQ ID(a) ID(b)) (EQ ID(c) ID(d)))"},
		{"'a' == 'b';", "(EQ CHAR('a') CHAR('b'))"},
		{"1.5 + x;", "(ADD FLT(1.5) ID(x))"},
	}

	for i, tt := range tests {
		got := sexpr(parseStmt(t, tt.input))
		if got != tt.expected {
			t.Fatalf("tests[%d] - expression shape wrong. expected=%s, got=%s", i, tt.expected, got)
		}
	}
}

// Relational operators share one tier with equal left and right
// binding powers, so chained comparisons group to the right instead of
// being rejected.
func TestRelationalChainsGroupRight(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"a < b < c;", "(LT ID(a) (LT ID(b) ID(c)))"},
		{"a == b == c;", "(EQ ID(a) (EQ ID(b) ID(c)))"},
	}

	for i, tt := range tests {
		got := sexpr(parseStmt(t, tt.input))
		if got != tt.expected {
			t.Fatalf("tests[%d] - expression shape wrong. expected=%s, got=%s", i, tt.expected, got)
		}
	}
}

func TestUnaryOperators(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"-1 + 2;", "(ADD (SUB INT(1)) INT(2))"},
		{"-(1 + 2);", "(SUB (ADD INT(1) INT(2)))"},
		{"!true;", "(NOT BOOL(true))"},
		{"--1;", "(SUB (SUB INT(1)))"},
		{"!x == y;", "(EQ (NOT ID(x)) ID(y))"},
		{"/2;", "(DIV INT(2))"},
	}

	for i, tt := range tests {
		got := sexpr(parseStmt(t, tt.input))
		if got != tt.expected {
			t.Fatalf("tests[%d] - expression shape wrong. expected=%s, got=%s", i, tt.expected, got)
		}
	}
}

func TestCallExpressions(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"f(1, 2 + 3);", "(ID(f) INT(1) (ADD INT(2) INT(3)))"},
		{"f(g(1));", "(ID(f) (ID(g) INT(1)))"},
		{"-f(x);", "(SUB (ID(f) ID(x)))"},
		{"1 + f(2) * 3;", "(ADD INT(1) (MUL (ID(f) INT(2)) INT(3)))"},
		{"f(a = 1);", "(ID(f) (ASSIGN ID(a) INT(1)))"},
	}

	for i, tt := range tests {
		got := sexpr(parseStmt(t, tt.input))
		if got != tt.expected {
			t.Fatalf("tests[%d] - expression shape wrong. expected=%s, got=%s", i, tt.expected, got)
		}
	}
}

// A call with no arguments leaves a plain identifier node: the
// argument list contributes children only when it is non-empty.
func TestEmptyCallIsBareIdentifier(t *testing.T) {
	got := sexpr(parseStmt(t, "f();"))
	if got != "ID(f)" {
		t.Fatalf("expression shape wrong. expected=ID(f), got=%s", got)
	}
}

func TestParenthesesLeaveNoNode(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"(((1)));", "INT(1)"},
		{"(1 + 2) * 3;", "(MUL (ADD INT(1) INT(2)) INT(3))"},
		{"2 * (1 + 2);", "(MUL INT(2) (ADD INT(1) INT(2)))"},
	}

	for i, tt := range tests {
		got := sexpr(parseStmt(t, tt.input))
		if got != tt.expected {
			t.Fatalf("tests[%d] - expression shape wrong. expected=%s, got=%s", i, tt.expected, got)
		}
	}
}

// Operator nodes widen their span over their operands, so a
// diagnostic can point at the whole subexpression.
func TestOperatorNodeSpans(t *testing.T) {
	add := parseStmt(t, "1 + 2 * 3;")

	if got := add.Token.Span.Length(); got != len("1 + 2 * 3") {
		t.Fatalf("root span length wrong. expected=%d, got=%d", len("1 + 2 * 3"), got)
	}
	mul := add.Children[1]
	if got := mul.Token.Span.Length(); got != len("2 * 3") {
		t.Fatalf("nested span length wrong. expected=%d, got=%d", len("2 * 3"), got)
	}
	for i, c := range add.Children {
		if !add.Token.Span.Contains(c.Token.Span.Start) {
			t.Errorf("operand %d start %s outside root span %s", i, c.Token.Span.Start, add.Token.Span)
		}
	}

	neg := parseStmt(t, "-x;")
	if got := neg.Token.Span.Length(); got != len("-x") {
		t.Fatalf("unary span length wrong. expected=%d, got=%d", len("-x"), got)
	}
}
