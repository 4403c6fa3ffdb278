// Package interp executes lowered programs by walking the semantic
// tree. Execution registers every top-level function, then invokes
// main with no arguments. Runtime failures unwind as ordinary errors
// rather than panics and surface to the caller of Execute.
package interp

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/mica-lang/mica/internal/hir"
)

// RuntimeError wraps any failure surfaced while executing a program.
type RuntimeError struct {
	Message string
}

func (e *RuntimeError) Error() string {
	return "Runtime error: " + e.Message
}

// Interpreter is a tree-walking evaluator. Output from print
// statements is written to out.
type Interpreter struct {
	env   *environment
	funcs map[string]*hir.FuncDecl
	out   io.Writer
}

// New returns an interpreter writing program output to out. A nil out
// defaults to standard output.
func New(out io.Writer) *Interpreter {
	if out == nil {
		out = os.Stdout
	}
	return &Interpreter{out: out}
}

// Execute runs prog by calling its main function. State from any
// earlier Execute call is discarded. The returned error, if any, is a
// *RuntimeError.
func (i *Interpreter) Execute(prog *hir.Program) error {
	i.env = newEnvironment()
	i.funcs = make(map[string]*hir.FuncDecl)
	for _, f := range prog.Funcs {
		i.funcs[f.Name] = f
	}
	if _, err := i.call("main", nil); err != nil {
		return &RuntimeError{Message: err.Error()}
	}
	return nil
}

func (i *Interpreter) call(name string, args []Value) (Value, error) {
	fn, ok := i.funcs[name]
	if !ok {
		return Void, fmt.Errorf("Function '%s' not found", name)
	}
	if len(args) != len(fn.Params) {
		return Void, fmt.Errorf("Function '%s' expects %d arguments, got %d",
			name, len(fn.Params), len(args))
	}

	// One frame per invocation, shared by the parameters and the
	// body's top level declarations.
	i.env.push()
	defer i.env.pop()
	for idx, p := range fn.Params {
		i.env.declare(p.Name, args[idx])
	}

	v, returned, err := i.execStmts(fn.Body.Stmts)
	if err != nil {
		return Void, err
	}
	if !returned {
		return Void, nil
	}
	return v, nil
}

// execStmts runs statements in order. The bool result reports whether
// a return statement fired, short-circuiting the remaining statements.
func (i *Interpreter) execStmts(stmts []hir.Node) (Value, bool, error) {
	for _, s := range stmts {
		v, returned, err := i.exec(s)
		if err != nil {
			return Void, false, err
		}
		if returned {
			return v, true, nil
		}
	}
	return Void, false, nil
}

// execBlock runs a nested block in its own environment frame.
func (i *Interpreter) execBlock(b *hir.Block) (Value, bool, error) {
	i.env.push()
	defer i.env.pop()
	return i.execStmts(b.Stmts)
}

func (i *Interpreter) exec(n hir.Node) (Value, bool, error) {
	switch x := n.(type) {
	case *hir.LetStmt:
		var v Value
		if x.Expr != nil {
			ev, err := i.eval(x.Expr)
			if err != nil {
				return Void, false, err
			}
			v = ev
		} else {
			switch x.Type {
			case hir.Bool:
				v = BoolValue(false)
			default:
				v = IntValue(0)
			}
		}
		i.env.declare(x.Name, v)
		return Void, false, nil

	case *hir.ReturnStmt:
		v, err := i.eval(x.Expr)
		if err != nil {
			return Void, false, err
		}
		return v, true, nil

	case *hir.IfStmt:
		cv, err := i.eval(x.Cond)
		if err != nil {
			return Void, false, err
		}
		cond, err := cv.AsBool()
		if err != nil {
			return Void, false, err
		}
		if cond {
			return i.execBlock(x.Then)
		}
		if x.Else != nil {
			return i.execBlock(x.Else)
		}
		return Void, false, nil

	case *hir.WhileStmt:
		for {
			cv, err := i.eval(x.Cond)
			if err != nil {
				return Void, false, err
			}
			cond, err := cv.AsBool()
			if err != nil {
				return Void, false, err
			}
			if !cond {
				return Void, false, nil
			}
			v, returned, err := i.execBlock(x.Body)
			if err != nil {
				return Void, false, err
			}
			if returned {
				return v, true, nil
			}
		}

	case *hir.PrintStmt:
		v, err := i.eval(x.Expr)
		if err != nil {
			return Void, false, err
		}
		switch v.Kind {
		case KindInt:
			fmt.Fprintf(i.out, "%d\n", v.Int)
		case KindBool:
			if v.Bool {
				fmt.Fprintln(i.out, "true")
			} else {
				fmt.Fprintln(i.out, "false")
			}
		default:
			fmt.Fprintln(i.out, "void")
		}
		return Void, false, nil

	case *hir.Block:
		return i.execBlock(x)

	default:
		// Expression statement: evaluate for effect, discard the value.
		if _, err := i.eval(n); err != nil {
			return Void, false, err
		}
		return Void, false, nil
	}
}

func (i *Interpreter) eval(n hir.Node) (Value, error) {
	switch x := n.(type) {
	case *hir.IntLit:
		return IntValue(x.Value), nil

	case *hir.BoolLit:
		return BoolValue(x.Value), nil

	case *hir.Ident:
		return i.env.get(x.Name)

	case *hir.Assign:
		v, err := i.eval(x.Expr)
		if err != nil {
			return Void, err
		}
		if err := i.env.set(x.Name, v); err != nil {
			return Void, err
		}
		return v, nil

	case *hir.CallExpr:
		var args []Value
		for _, a := range x.Args {
			av, err := i.eval(a)
			if err != nil {
				return Void, err
			}
			args = append(args, av)
		}
		return i.call(x.Name, args)

	case *hir.Expr:
		return i.evalExpr(x)

	default:
		return Void, fmt.Errorf("Cannot evaluate expression: %s", n)
	}
}

func (i *Interpreter) evalExpr(e *hir.Expr) (Value, error) {
	if e.Op == "!" {
		r, err := i.eval(e.Right)
		if err != nil {
			return Void, err
		}
		b, err := r.AsBool()
		if err != nil {
			return Void, err
		}
		return BoolValue(!b), nil
	}
	if e.Op == "unary-" {
		r, err := i.eval(e.Right)
		if err != nil {
			return Void, err
		}
		n, err := r.AsInt()
		if err != nil {
			return Void, err
		}
		return IntValue(-n), nil
	}

	// Both operands are evaluated before the operator is applied, so
	// && and || do not short-circuit side effects.
	lv, err := i.eval(e.Left)
	if err != nil {
		return Void, err
	}
	rv, err := i.eval(e.Right)
	if err != nil {
		return Void, err
	}

	switch e.Op {
	case "+":
		l, r, err := intPair(lv, rv)
		if err != nil {
			return Void, err
		}
		return IntValue(l + r), nil

	case "-":
		l, r, err := intPair(lv, rv)
		if err != nil {
			return Void, err
		}
		return IntValue(l - r), nil

	case "*":
		l, r, err := intPair(lv, rv)
		if err != nil {
			return Void, err
		}
		return IntValue(l * r), nil

	case "/":
		// The divisor is inspected before the left operand is coerced.
		r, err := rv.AsInt()
		if err != nil {
			return Void, err
		}
		if r == 0 {
			return Void, errors.New("Division by zero")
		}
		l, err := lv.AsInt()
		if err != nil {
			return Void, err
		}
		return IntValue(l / r), nil

	case "==", "!=":
		var eq bool
		switch {
		case lv.Kind == KindInt && rv.Kind == KindInt:
			eq = lv.Int == rv.Int
		case lv.Kind == KindBool && rv.Kind == KindBool:
			eq = lv.Bool == rv.Bool
		default:
			return Void, fmt.Errorf("Type mismatch in %s", e.Op)
		}
		if e.Op == "!=" {
			eq = !eq
		}
		return BoolValue(eq), nil

	case "<", ">", "<=", ">=":
		l, r, err := intPair(lv, rv)
		if err != nil {
			return Void, err
		}
		switch e.Op {
		case "<":
			return BoolValue(l < r), nil
		case ">":
			return BoolValue(l > r), nil
		case "<=":
			return BoolValue(l <= r), nil
		default:
			return BoolValue(l >= r), nil
		}

	case "&&":
		l, err := lv.AsBool()
		if err != nil {
			return Void, err
		}
		if !l {
			// A false left side decides the result before the right
			// side is coerced.
			return BoolValue(false), nil
		}
		r, err := rv.AsBool()
		if err != nil {
			return Void, err
		}
		return BoolValue(r), nil

	case "||":
		l, err := lv.AsBool()
		if err != nil {
			return Void, err
		}
		if l {
			return BoolValue(true), nil
		}
		r, err := rv.AsBool()
		if err != nil {
			return Void, err
		}
		return BoolValue(r), nil
	}

	return Void, fmt.Errorf("Unknown operator: %s", e.Op)
}

func intPair(lv, rv Value) (int32, int32, error) {
	l, err := lv.AsInt()
	if err != nil {
		return 0, 0, err
	}
	r, err := rv.AsInt()
	if err != nil {
		return 0, 0, err
	}
	return l, r, nil
}
