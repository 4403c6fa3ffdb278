package hir

import (
	"testing"

	"github.com/mica-lang/mica/internal/lexer"
	"github.com/mica-lang/mica/internal/parser"
)

// lowerSource parses and lowers a whole program.
func lowerSource(t *testing.T, input string) *Program {
	t.Helper()
	tree, err := parser.New(lexer.New(input)).Parse()
	if err != nil {
		t.Fatalf("Parse() returned error: %v", err)
	}
	prog, err := Lower(tree)
	if err != nil {
		t.Fatalf("Lower() returned error: %v", err)
	}
	return prog
}

// lowerStmt lowers one statement inside a main function wrapper.
func lowerStmt(t *testing.T, stmt string) Node {
	t.Helper()
	prog := lowerSource(t, "func main() { "+stmt+" }")
	body := prog.Funcs[0].Body
	if len(body.Stmts) != 1 {
		t.Fatalf("expected 1 statement, got %d", len(body.Stmts))
	}
	return body.Stmts[0]
}

func TestLowerFunctionShape(t *testing.T) {
	prog := lowerSource(t, "func add(a: i32, b: bool) -> i32 { return a; }")

	if len(prog.Funcs) != 1 {
		t.Fatalf("wrong number of functions. expected=1, got=%d", len(prog.Funcs))
	}
	f := prog.Funcs[0]
	if f.Name != "add" {
		t.Fatalf("function name wrong. expected=%q, got=%q", "add", f.Name)
	}
	if f.RetType != Int {
		t.Fatalf("return type wrong. expected=%s, got=%s", Int, f.RetType)
	}
	wantParams := []Param{{Name: "a", Type: Int}, {Name: "b", Type: Bool}}
	if len(f.Params) != len(wantParams) {
		t.Fatalf("wrong number of params. expected=%d, got=%d", len(wantParams), len(f.Params))
	}
	for i, want := range wantParams {
		if f.Params[i] != want {
			t.Fatalf("params[%d] wrong. expected=%v, got=%v", i, want, f.Params[i])
		}
	}
	if len(f.Body.Stmts) != 1 {
		t.Fatalf("wrong number of body statements. expected=1, got=%d", len(f.Body.Stmts))
	}
	if _, ok := f.Body.Stmts[0].(*ReturnStmt); !ok {
		t.Fatalf("body statement type wrong. got=%T", f.Body.Stmts[0])
	}
}

func TestLowerDump(t *testing.T) {
	prog := lowerSource(t, "func main() { let x: i32 = 1; if x < 2 { print x; } else { print 0; } }")

	want := `Program
  FuncDecl main() -> Unknown
    Block
      LetStmt x: Int
        IntLit 1
      IfStmt
        Expr <
          Ident x
          IntLit 2
        Block
          PrintStmt
            Ident x
        Block
          PrintStmt
            IntLit 0
`
	if got := Dump(prog); got != want {
		t.Fatalf("semantic tree rendering wrong.\nexpected:\n%s\ngot:\n%s", want, got)
	}
}

func TestLowerLetForms(t *testing.T) {
	tests := []struct {
		input    string
		wantType Type
		wantInit string // String of the initializer root, "" for none
	}{
		{"let x;", Unknown, ""},
		{"let x: i32;", Int, ""},
		{"let x: bool;", Bool, ""},
		{"let x: f32;", Unknown, ""},
		{"let x = 5;", Unknown, "IntLit 5"},
		{"let x = y;", Unknown, "Ident y"},
		{"let x: i32 = 5;", Int, "IntLit 5"},
		{"let x = 1 < 2;", Unknown, "Expr <"},
		{"let x: bool = a && b;", Bool, "Expr &&"},
	}

	for i, tt := range tests {
		let, ok := lowerStmt(t, tt.input).(*LetStmt)
		if !ok {
			t.Fatalf("tests[%d] - statement type wrong. got=%T", i, lowerStmt(t, tt.input))
		}
		if let.Type != tt.wantType {
			t.Fatalf("tests[%d] - declared type wrong. expected=%s, got=%s", i, tt.wantType, let.Type)
		}
		gotInit := ""
		if let.Expr != nil {
			gotInit = let.Expr.String()
		}
		if gotInit != tt.wantInit {
			t.Fatalf("tests[%d] - initializer wrong. expected=%q, got=%q", i, tt.wantInit, gotInit)
		}
	}
}

func TestLowerUnaryShapes(t *testing.T) {
	neg, ok := lowerStmt(t, "-x;").(*Expr)
	if !ok || neg.Op != "unary-" {
		t.Fatalf("unary minus shape wrong. got=%v", lowerStmt(t, "-x;"))
	}
	if lit, ok := neg.Left.(*IntLit); !ok || lit.Value != 0 {
		t.Fatalf("unary minus placeholder wrong. got=%v", neg.Left)
	}
	if id, ok := neg.Right.(*Ident); !ok || id.Name != "x" {
		t.Fatalf("unary minus operand wrong. got=%v", neg.Right)
	}

	not, ok := lowerStmt(t, "!x;").(*Expr)
	if !ok || not.Op != "!" {
		t.Fatalf("logical not shape wrong. got=%v", lowerStmt(t, "!x;"))
	}
	if lit, ok := not.Left.(*BoolLit); !ok || lit.Value {
		t.Fatalf("logical not placeholder wrong. got=%v", not.Left)
	}
	if !not.Unary() || !neg.Unary() {
		t.Fatalf("Unary() should report true for both shapes")
	}
}

func TestLowerCallForms(t *testing.T) {
	call, ok := lowerStmt(t, "f(1, g(2));").(*CallExpr)
	if !ok {
		t.Fatalf("statement type wrong. got=%T", lowerStmt(t, "f(1, g(2));"))
	}
	if call.Name != "f" || len(call.Args) != 2 {
		t.Fatalf("call shape wrong. got=%s with %d args", call.Name, len(call.Args))
	}
	inner, ok := call.Args[1].(*CallExpr)
	if !ok || inner.Name != "g" {
		t.Fatalf("nested call wrong. got=%v", call.Args[1])
	}

	// An empty argument list leaves no children on the identifier
	// node, so it lowers to a plain variable reference.
	if id, ok := lowerStmt(t, "f();").(*Ident); !ok || id.Name != "f" {
		t.Fatalf("empty call should lower to a reference. got=%v", lowerStmt(t, "f();"))
	}
}

func TestLowerAssignForms(t *testing.T) {
	chain, ok := lowerStmt(t, "x = y = 1;").(*Assign)
	if !ok || chain.Name != "x" {
		t.Fatalf("assign shape wrong. got=%v", lowerStmt(t, "x = y = 1;"))
	}
	inner, ok := chain.Expr.(*Assign)
	if !ok || inner.Name != "y" {
		t.Fatalf("nested assign wrong. got=%v", chain.Expr)
	}

	// Only the identifier token is inspected on the left side; call
	// arguments attached to it are dropped.
	odd, ok := lowerStmt(t, "f(1) = 2;").(*Assign)
	if !ok || odd.Name != "f" {
		t.Fatalf("call-target assign wrong. got=%v", lowerStmt(t, "f(1) = 2;"))
	}
}

func TestLowerErrors(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"func main() { a ! b; }", "unary NOT must have one child"},
		{"func main() { /2; }", "Only SUB can be unary in this position"},
		{"func main() { 5 = 2; }", "Left side of assign must be ID"},
		{"func main() { 1.5; }", "Unhandled token in converter: FLT(1.5)"},
		{"func main() { 'c'; }", "Unhandled token in converter: CHAR('c')"},
	}

	for i, tt := range tests {
		tree, err := parser.New(lexer.New(tt.input)).Parse()
		if err != nil {
			t.Fatalf("tests[%d] - Parse() returned error: %v", i, err)
		}
		_, err = Lower(tree)
		if err == nil {
			t.Fatalf("tests[%d] - expected error, got none", i)
		}
		if err.Error() != tt.expected {
			t.Fatalf("tests[%d] - error wrong. expected=%q, got=%q", i, tt.expected, err.Error())
		}
	}
}
