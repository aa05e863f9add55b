// Package ast defines the abstract syntax tree for Lox.
//
// Expressions and statements are closed families: the marker methods are
// unexported, so only this package can add variants, and consumers dispatch
// with exhaustive type switches.
package ast

import "lox-lang/internal/token"

// ============================================================
// Node interfaces
// ============================================================

// Node is the interface implemented by all AST nodes.
type Node interface {
	nodeNode()
	GetSpan() token.Span
}

// Expr is the interface for expression nodes.
type Expr interface {
	Node
	exprNode()
}

// Stmt is the interface for statement nodes.
type Stmt interface {
	Node
	stmtNode()
}

// ============================================================
// Base types (embedded to provide common fields)
// ============================================================

// NodeBase provides the common Span field for all AST nodes.
type NodeBase struct {
	Span token.Span
}

func (n NodeBase) nodeNode()           {}
func (n NodeBase) GetSpan() token.Span { return n.Span }

// ExprBase is embedded by all expression nodes.
type ExprBase struct{ NodeBase }

func (ExprBase) exprNode() {}

// StmtBase is embedded by all statement nodes.
type StmtBase struct{ NodeBase }

func (StmtBase) stmtNode() {}

// ============================================================
// Expressions
// ============================================================

// Literal is a number, string, boolean or nil constant.
// Value is float64, string, bool or nil.
type Literal struct {
	ExprBase
	Value any
}

// Grouping is a parenthesized expression.
type Grouping struct {
	ExprBase
	Inner Expr
}

// Unary is a prefix operation: !x, -x.
type Unary struct {
	ExprBase
	Op    token.Token
	Right Expr
}

// Binary is an arithmetic, comparison or equality operation.
type Binary struct {
	ExprBase
	Left  Expr
	Op    token.Token
	Right Expr
}

// Logical is a short-circuiting and/or.
type Logical struct {
	ExprBase
	Left  Expr
	Op    token.Token // AND or OR
	Right Expr
}

// Variable reads a name from the environment chain.
type Variable struct {
	ExprBase
	Name token.Token
}

// Assign writes a name in the environment chain.
type Assign struct {
	ExprBase
	Name  token.Token
	Value Expr
}

// Call invokes a callee. Paren is the closing parenthesis, used to locate
// runtime errors raised by the call.
type Call struct {
	ExprBase
	Callee Expr
	Paren  token.Token
	Args   []Expr
}

// Get reads a property: object.name.
type Get struct {
	ExprBase
	Object Expr
	Name   token.Token
}

// Set writes a field: object.name = value.
type Set struct {
	ExprBase
	Object Expr
	Name   token.Token
	Value  Expr
}

// This is the receiver inside a method.
type This struct {
	ExprBase
	Keyword token.Token
}

// Super is a superclass method reference: super.method.
type Super struct {
	ExprBase
	Keyword token.Token
	Method  token.Token
}

// ============================================================
// Statements
// ============================================================

// Expression evaluates an expression for its side effects.
type Expression struct {
	StmtBase
	Expr Expr
}

// Print writes the textual form of a value followed by a newline.
type Print struct {
	StmtBase
	Expr Expr
}

// Var declares a variable; Init may be nil.
type Var struct {
	StmtBase
	Name token.Token
	Init Expr
}

// Block is a braced statement list with its own scope.
type Block struct {
	StmtBase
	Stmts []Stmt
}

// If is a conditional; Else may be nil.
type If struct {
	StmtBase
	Cond Expr
	Then Stmt
	Else Stmt
}

// While loops while Cond is truthy. For loops are desugared into While.
type While struct {
	StmtBase
	Cond Expr
	Body Stmt
}

// Function declares a named function or, inside a class body, a method.
type Function struct {
	StmtBase
	Name   token.Token
	Params []token.Token
	Body   []Stmt
}

// Return exits the enclosing function; Value may be nil.
type Return struct {
	StmtBase
	Keyword token.Token
	Value   Expr
}

// Class declares a class; Superclass may be nil.
type Class struct {
	StmtBase
	Name       token.Token
	Superclass *Variable
	Methods    []*Function
}
