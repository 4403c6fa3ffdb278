// Package hir defines the semantic tree for Mica programs, the
// lowering that builds it from the generic syntax tree, and the
// constant folder that rewrites it. The type checker and the
// interpreter both consume this representation.
package hir

import (
	"fmt"
	"strings"
)

// Type is the closed set of semantic types. Unknown means
// "no constraint yet" and never counts as a mismatch.
type Type int

const (
	Unknown Type = iota
	Int
	Bool
)

func (t Type) String() string {
	switch t {
	case Int:
		return "Int"
	case Bool:
		return "Bool"
	}
	return "Unknown"
}

// Node is implemented by every semantic tree node. String returns the
// node's single-line header used by Dump.
type Node interface {
	fmt.Stringer
	hirNode()
}

// Program is the tree root holding the top level function declarations.
type Program struct {
	Funcs []*FuncDecl
}

// Param is one function parameter.
type Param struct {
	Name string
	Type Type
}

// FuncDecl is a function declaration. RetType is Unknown when the
// declaration carries no arrow clause.
type FuncDecl struct {
	Name    string
	Params  []Param
	RetType Type
	Body    *Block
}

// Block is an ordered statement list.
type Block struct {
	Stmts []Node
}

// LetStmt declares a variable. Type is the declared annotation
// (Unknown if absent) and Expr the initializer (nil if absent).
type LetStmt struct {
	Name string
	Type Type
	Expr Node
}

// Assign writes a value to an existing variable. It appears both as a
// statement and, nested, as an expression yielding the assigned value.
type Assign struct {
	Name string
	Expr Node
}

type ReturnStmt struct {
	Expr Node
}

type WhileStmt struct {
	Cond Node
	Body *Block
}

// IfStmt is a conditional with an optional else branch (nil if absent).
type IfStmt struct {
	Cond Node
	Then *Block
	Else *Block
}

type PrintStmt struct {
	Expr Node
}

// Expr is an operator application. Unary operations keep the operator
// in Op ("!" or "unary-") with a placeholder literal in Left; binary
// operations carry the operator symbol and both operands.
type Expr struct {
	Left  Node
	Op    string
	Right Node
}

// Unary reports whether the node is a unary operation; Left is then a
// placeholder and must not be evaluated.
func (e *Expr) Unary() bool {
	return e.Op == "!" || e.Op == "unary-"
}

// CallExpr invokes a function by name.
type CallExpr struct {
	Name string
	Args []Node
}

// Ident is a variable reference.
type Ident struct {
	Name string
}

type IntLit struct {
	Value int32
}

type BoolLit struct {
	Value bool
}

func (*Program) hirNode()    {}
func (*FuncDecl) hirNode()   {}
func (*Block) hirNode()      {}
func (*LetStmt) hirNode()    {}
func (*Assign) hirNode()     {}
func (*ReturnStmt) hirNode() {}
func (*WhileStmt) hirNode()  {}
func (*IfStmt) hirNode()     {}
func (*PrintStmt) hirNode()  {}
func (*Expr) hirNode()       {}
func (*CallExpr) hirNode()   {}
func (*Ident) hirNode()      {}
func (*IntLit) hirNode()     {}
func (*BoolLit) hirNode()    {}

func (p *Program) String() string { return "Program" }

func (f *FuncDecl) String() string {
	var sb strings.Builder
	sb.WriteString("FuncDecl ")
	sb.WriteString(f.Name)
	sb.WriteByte('(')
	for i, p := range f.Params {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(p.Name)
		sb.WriteString(": ")
		sb.WriteString(p.Type.String())
	}
	sb.WriteString(") -> ")
	sb.WriteString(f.RetType.String())
	return sb.String()
}

func (b *Block) String() string      { return "Block" }
func (s *LetStmt) String() string    { return fmt.Sprintf("LetStmt %s: %s", s.Name, s.Type) }
func (s *Assign) String() string     { return "Assign " + s.Name }
func (s *ReturnStmt) String() string { return "ReturnStmt" }
func (s *WhileStmt) String() string  { return "WhileStmt" }
func (s *IfStmt) String() string     { return "IfStmt" }
func (s *PrintStmt) String() string  { return "PrintStmt" }
func (e *Expr) String() string       { return "Expr " + e.Op }
func (c *CallExpr) String() string   { return "CallExpr " + c.Name }
func (i *Ident) String() string      { return "Ident " + i.Name }
func (l *IntLit) String() string     { return fmt.Sprintf("IntLit %d", l.Value) }
func (l *BoolLit) String() string    { return fmt.Sprintf("BoolLit %t", l.Value) }

// Dump renders a semantic tree one node per line, indented two spaces
// per nesting level. Placeholder operands of unary expressions are not
// shown.
func Dump(n Node) string {
	var sb strings.Builder
	dump(&sb, n, 0)
	return sb.String()
}

func dump(sb *strings.Builder, n Node, depth int) {
	for i := 0; i < depth; i++ {
		sb.WriteString("  ")
	}
	sb.WriteString(n.String())
	sb.WriteByte('\n')
	for _, c := range children(n) {
		dump(sb, c, depth+1)
	}
}

func children(n Node) []Node {
	switch x := n.(type) {
	case *Program:
		out := make([]Node, len(x.Funcs))
		for i, f := range x.Funcs {
			out[i] = f
		}
		return out
	case *FuncDecl:
		return []Node{x.Body}
	case *Block:
		return x.Stmts
	case *LetStmt:
		if x.Expr != nil {
			return []Node{x.Expr}
		}
	case *Assign:
		return []Node{x.Expr}
	case *ReturnStmt:
		return []Node{x.Expr}
	case *WhileStmt:
		return []Node{x.Cond, x.Body}
	case *IfStmt:
		if x.Else != nil {
			return []Node{x.Cond, x.Then, x.Else}
		}
		return []Node{x.Cond, x.Then}
	case *PrintStmt:
		return []Node{x.Expr}
	case *Expr:
		if x.Unary() {
			return []Node{x.Right}
		}
		return []Node{x.Left, x.Right}
	case *CallExpr:
		return x.Args
	}
	return nil
}
