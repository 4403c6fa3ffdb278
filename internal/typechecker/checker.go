// Package typechecker validates a lowered Mica program. Checking is
// exhaustive: every error found is accumulated and the whole tree is
// walked regardless of earlier failures. Unknown types never count as
// mismatches, so partially typed programs only report real conflicts.
package typechecker

import (
	"fmt"

	"github.com/mica-lang/mica/internal/hir"
)

// signature is the callable surface of one function declaration.
type signature struct {
	params []hir.Type
	ret    hir.Type
}

// checker carries the signature table, the scope stack of the function
// currently being walked, and the accumulated errors.
type checker struct {
	sigs   map[string]signature
	frames []map[string]hir.Type
	errors []error
}

// Check walks the program and returns every semantic error found, in
// source order. An empty result means the program is well typed.
func Check(prog *hir.Program) []error {
	c := &checker{sigs: make(map[string]signature)}

	// Signatures are collected up front so calls can be checked
	// against functions declared later in the file.
	for _, f := range prog.Funcs {
		if _, ok := c.sigs[f.Name]; ok {
			c.errorf("Function '%s' already declared", f.Name)
			continue
		}
		sig := signature{ret: f.RetType}
		for _, p := range f.Params {
			sig.params = append(sig.params, p.Type)
		}
		c.sigs[f.Name] = sig
	}

	for _, f := range prog.Funcs {
		c.checkFunc(f)
	}
	return c.errors
}

func (c *checker) errorf(format string, args ...any) {
	c.errors = append(c.errors, fmt.Errorf(format, args...))
}

// push opens a new scope frame.
func (c *checker) push() {
	c.frames = append(c.frames, make(map[string]hir.Type))
}

func (c *checker) pop() {
	c.frames = c.frames[:len(c.frames)-1]
}

// declare binds a name in the innermost frame. Redeclaring a name
// already bound in that frame is an error; shadowing an outer frame's
// binding is not.
func (c *checker) declare(name string, ty hir.Type) error {
	frame := c.frames[len(c.frames)-1]
	if _, ok := frame[name]; ok {
		return fmt.Errorf("Variable '%s' already declared", name)
	}
	frame[name] = ty
	return nil
}

// lookup resolves a name innermost frame first.
func (c *checker) lookup(name string) (hir.Type, error) {
	for i := len(c.frames) - 1; i >= 0; i-- {
		if ty, ok := c.frames[i][name]; ok {
			return ty, nil
		}
	}
	return hir.Unknown, fmt.Errorf("Variable '%s' not declared", name)
}

// checkFunc walks one function. Parameters and the body's top level
// declarations share a single frame; nested blocks open their own.
func (c *checker) checkFunc(f *hir.FuncDecl) {
	c.frames = nil
	c.push()
	defer c.pop()

	for _, p := range f.Params {
		// A duplicate parameter name keeps the first binding.
		_ = c.declare(p.Name, p.Type)
	}

	bodyType := c.checkStmts(f.Body)
	if f.RetType != hir.Unknown && bodyType != f.RetType && bodyType != hir.Unknown {
		c.errorf("Function '%s' declared return type %s, but body returns %s", f.Name, f.RetType, bodyType)
	}
	if f.RetType != hir.Unknown && !hasReturn(f.Body) {
		c.errorf("Function '%s' declares return type %s but has no return statement", f.Name, f.RetType)
	}
}

// checkStmts types a statement list in the current frame. The block's
// type is the type of its last statement.
func (c *checker) checkStmts(b *hir.Block) hir.Type {
	last := hir.Unknown
	for _, s := range b.Stmts {
		last = c.check(s)
	}
	return last
}

func (c *checker) check(n hir.Node) hir.Type {
	switch x := n.(type) {
	case *hir.Block:
		c.push()
		defer c.pop()
		return c.checkStmts(x)

	case *hir.LetStmt:
		inferred := x.Type
		if x.Expr != nil {
			et := c.check(x.Expr)
			if x.Type != hir.Unknown && et != x.Type && et != hir.Unknown {
				c.errorf("Type mismatch for '%s': expected %s, found %s", x.Name, x.Type, et)
			}
			if x.Type == hir.Unknown {
				inferred = et
			}
		}
		if err := c.declare(x.Name, inferred); err != nil {
			c.errors = append(c.errors, err)
		}
		return hir.Unknown

	case *hir.Assign:
		vt, err := c.lookup(x.Name)
		if err != nil {
			c.errors = append(c.errors, err)
			return hir.Unknown
		}
		et := c.check(x.Expr)
		if vt != et && et != hir.Unknown && vt != hir.Unknown {
			c.errorf("Assignment type mismatch for '%s': %s vs %s", x.Name, vt, et)
		}
		return hir.Unknown

	case *hir.ReturnStmt:
		return c.check(x.Expr)

	case *hir.WhileStmt:
		ct := c.check(x.Cond)
		if ct != hir.Bool && ct != hir.Unknown {
			c.errorf("While condition must be Bool, found %s", ct)
		}
		c.check(x.Body)
		return hir.Unknown

	case *hir.IfStmt:
		ct := c.check(x.Cond)
		if ct != hir.Bool && ct != hir.Unknown {
			c.errorf("If condition must be Bool, found %s", ct)
		}
		thenType := c.check(x.Then)
		elseType := hir.Unknown
		if x.Else != nil {
			elseType = c.check(x.Else)
		}
		if thenType != hir.Unknown && elseType != hir.Unknown && thenType != elseType {
			c.errorf("If branches return different types: %s vs %s", thenType, elseType)
		}
		if thenType != hir.Unknown {
			return thenType
		}
		return elseType

	case *hir.PrintStmt:
		c.check(x.Expr)
		return hir.Unknown

	case *hir.Expr:
		return c.checkExpr(x)

	case *hir.CallExpr:
		return c.checkCall(x)

	case *hir.Ident:
		ty, err := c.lookup(x.Name)
		if err != nil {
			c.errors = append(c.errors, err)
			return hir.Unknown
		}
		return ty

	case *hir.IntLit:
		return hir.Int

	case *hir.BoolLit:
		return hir.Bool
	}
	return hir.Unknown
}

// checkExpr types an operator node. The right operand is walked first,
// which fixes the order unary checks and error messages appear in.
func (c *checker) checkExpr(e *hir.Expr) hir.Type {
	rt := c.check(e.Right)

	if e.Op == "!" {
		if rt != hir.Bool && rt != hir.Unknown {
			c.errorf("Unary NOT requires Bool type, found %s", rt)
		}
		return hir.Bool
	}
	if e.Op == "unary-" {
		if rt != hir.Int && rt != hir.Unknown {
			c.errorf("Unary minus requires Int type, found %s", rt)
		}
		return hir.Int
	}

	lt := c.check(e.Left)
	switch e.Op {
	case "+", "-", "*", "/":
		if (lt != hir.Int && lt != hir.Unknown) || (rt != hir.Int && rt != hir.Unknown) {
			c.errorf("Arithmetic op '%s' requires Int types, found %s and %s", e.Op, lt, rt)
		}
		return hir.Int
	case "==", "!=":
		if lt != rt && lt != hir.Unknown && rt != hir.Unknown {
			c.errorf("Comparison '%s' requires matching types, found %s and %s", e.Op, lt, rt)
		}
		return hir.Bool
	case "<", ">", "<=", ">=":
		if (lt != hir.Int && lt != hir.Unknown) || (rt != hir.Int && rt != hir.Unknown) {
			c.errorf("Relational op '%s' requires Int types, found %s and %s", e.Op, lt, rt)
		}
		return hir.Bool
	case "&&", "||":
		if (lt != hir.Bool && lt != hir.Unknown) || (rt != hir.Bool && rt != hir.Unknown) {
			c.errorf("Logical op '%s' requires Bool types, found %s and %s", e.Op, lt, rt)
		}
		return hir.Bool
	}
	return hir.Unknown
}

func (c *checker) checkCall(call *hir.CallExpr) hir.Type {
	var argTypes []hir.Type
	for _, a := range call.Args {
		argTypes = append(argTypes, c.check(a))
	}

	sig, ok := c.sigs[call.Name]
	if !ok {
		c.errorf("Call to unknown function '%s'", call.Name)
		return hir.Unknown
	}
	if len(sig.params) != len(argTypes) {
		c.errorf("Function '%s' expects %d args but %d provided", call.Name, len(sig.params), len(argTypes))
	} else {
		for i, pt := range sig.params {
			at := argTypes[i]
			if pt != at && pt != hir.Unknown && at != hir.Unknown {
				c.errorf("Argument %d of '%s' expects %s, found %s", i+1, call.Name, pt, at)
			}
		}
	}
	return sig.ret
}

// hasReturn reports whether a return statement occurs anywhere in the
// block and if structure. Loop bodies are not inspected.
func hasReturn(n hir.Node) bool {
	switch x := n.(type) {
	case *hir.ReturnStmt:
		return true
	case *hir.Block:
		for _, s := range x.Stmts {
			if hasReturn(s) {
				return true
			}
		}
	case *hir.IfStmt:
		if hasReturn(x.Then) {
			return true
		}
		if x.Else != nil && hasReturn(x.Else) {
			return true
		}
	}
	return false
}
