package hir

import (
	"testing"
)

// foldStmt lowers one statement inside a main wrapper and folds the
// whole program.
func foldStmt(t *testing.T, stmt string) Node {
	t.Helper()
	prog := lowerSource(t, "func main() { "+stmt+" }")
	Fold(prog)
	return prog.Funcs[0].Body.Stmts[0]
}

func TestFoldConstantArithmetic(t *testing.T) {
	tests := []struct {
		input    string
		expected int32
	}{
		{"2 * (3 + 4);", 14},
		{"1 + 2 * 3;", 7},
		{"10 / 2;", 5},
		{"7 - 2 - 1;", 4},
		{"(1 + 2) * (3 + 4);", 21},
		{"2147483647 + 1;", -2147483648},
	}

	for i, tt := range tests {
		lit, ok := foldStmt(t, tt.input).(*IntLit)
		if !ok {
			t.Fatalf("tests[%d] - expected folded literal, got=%v", i, foldStmt(t, tt.input))
		}
		if lit.Value != tt.expected {
			t.Fatalf("tests[%d] - folded value wrong. expected=%d, got=%d", i, tt.expected, lit.Value)
		}
	}
}

func TestFoldPartial(t *testing.T) {
	expr, ok := foldStmt(t, "x + (3 + 4);").(*Expr)
	if !ok || expr.Op != "+" {
		t.Fatalf("partial fold shape wrong. got=%v", foldStmt(t, "x + (3 + 4);"))
	}
	if _, ok := expr.Left.(*Ident); !ok {
		t.Fatalf("left operand wrong. got=%v", expr.Left)
	}
	if lit, ok := expr.Right.(*IntLit); !ok || lit.Value != 7 {
		t.Fatalf("right operand not folded. got=%v", expr.Right)
	}
}

func TestFoldInsideStatements(t *testing.T) {
	tests := []struct {
		input    string
		expected string // Dump of the statement after folding
	}{
		{"print 2 * 21;", "PrintStmt\n  IntLit 42\n"},
		{"let x = 3 * 3;", "LetStmt x: Unknown\n  IntLit 9\n"},
		{"x = 2 + 2;", "Assign x\n  IntLit 4\n"},
		{"f(1 + 2);", "CallExpr f\n  IntLit 3\n"},
		{"while 1 + 1 < x { }", "WhileStmt\n  Expr <\n    IntLit 2\n    Ident x\n  Block\n"},
		{"if true { print 6 * 7; }", "IfStmt\n  BoolLit true\n  Block\n    PrintStmt\n      IntLit 42\n"},
	}

	for i, tt := range tests {
		got := Dump(foldStmt(t, tt.input))
		if got != tt.expected {
			t.Fatalf("tests[%d] - folded statement wrong.\nexpected:\n%s\ngot:\n%s", i, tt.expected, got)
		}
	}
}

func TestFoldReturnStatement(t *testing.T) {
	prog := lowerSource(t, "func f() -> i32 { return 6 * 7; }")
	Fold(prog)

	ret := prog.Funcs[0].Body.Stmts[0].(*ReturnStmt)
	if lit, ok := ret.Expr.(*IntLit); !ok || lit.Value != 42 {
		t.Fatalf("return expression not folded. got=%v", ret.Expr)
	}
}

func TestFoldDivisionByZeroUnfolded(t *testing.T) {
	tests := []string{"1 / 0;", "1 / (2 - 2);"}

	for i, input := range tests {
		expr, ok := foldStmt(t, input).(*Expr)
		if !ok || expr.Op != "/" {
			t.Fatalf("tests[%d] - division should stay unfolded. got=%v", i, foldStmt(t, input))
		}
		if lit, ok := expr.Right.(*IntLit); !ok || lit.Value != 0 {
			t.Fatalf("tests[%d] - divisor wrong. got=%v", i, expr.Right)
		}
	}
}

func TestFoldLeavesNonArithmeticAlone(t *testing.T) {
	if _, ok := foldStmt(t, "1 < 2;").(*Expr); !ok {
		t.Fatalf("comparison should stay unfolded. got=%v", foldStmt(t, "1 < 2;"))
	}

	// The unary minus placeholder pairs two literals, but its operator
	// is not a foldable symbol.
	neg, ok := foldStmt(t, "-5;").(*Expr)
	if !ok || neg.Op != "unary-" {
		t.Fatalf("unary minus should stay unfolded. got=%v", foldStmt(t, "-5;"))
	}
}

func TestFoldIdempotent(t *testing.T) {
	prog := lowerSource(t, "func main() { let x = 2 * (3 + 4); print x + 1 - 1; }")

	Fold(prog)
	once := Dump(prog)
	Fold(prog)
	twice := Dump(prog)

	if once != twice {
		t.Fatalf("folding twice changed the tree.\nfirst:\n%s\nsecond:\n%s", once, twice)
	}
}
