package hir

// Fold rewrites constant integer arithmetic bottom-up and returns the
// possibly replaced node. Only binary + - * / over two integer
// literals collapse; division by zero stays unfolded and becomes a
// runtime error instead. Folding an already folded tree is a no-op.
func Fold(n Node) Node {
	switch x := n.(type) {
	case *Program:
		for _, f := range x.Funcs {
			Fold(f)
		}
	case *FuncDecl:
		Fold(x.Body)
	case *Block:
		for i, s := range x.Stmts {
			x.Stmts[i] = Fold(s)
		}
	case *LetStmt:
		if x.Expr != nil {
			x.Expr = Fold(x.Expr)
		}
	case *Assign:
		x.Expr = Fold(x.Expr)
	case *ReturnStmt:
		x.Expr = Fold(x.Expr)
	case *PrintStmt:
		x.Expr = Fold(x.Expr)
	case *WhileStmt:
		x.Cond = Fold(x.Cond)
		Fold(x.Body)
	case *IfStmt:
		x.Cond = Fold(x.Cond)
		Fold(x.Then)
		if x.Else != nil {
			Fold(x.Else)
		}
	case *CallExpr:
		for i, a := range x.Args {
			x.Args[i] = Fold(a)
		}
	case *Expr:
		x.Left = Fold(x.Left)
		x.Right = Fold(x.Right)
		return foldExpr(x)
	}
	return n
}

// foldExpr collapses one operator node when both operands are integer
// literals. The unary minus placeholder also matches the literal pair
// shape but its operator falls through the switch, so it never folds.
func foldExpr(e *Expr) Node {
	left, lok := e.Left.(*IntLit)
	right, rok := e.Right.(*IntLit)
	if !lok || !rok {
		return e
	}

	var v int32
	switch e.Op {
	case "+":
		v = left.Value + right.Value
	case "-":
		v = left.Value - right.Value
	case "*":
		v = left.Value * right.Value
	case "/":
		if right.Value == 0 {
			return e
		}
		v = left.Value / right.Value
	default:
		return e
	}
	return &IntLit{Value: v}
}
