package ast

import (
	"math"
	"strconv"
	"strings"
)

// Sprint renders a node in canonical parenthesized prefix form, e.g.
// "-123 * (45.67)" prints as "(* (- 123) (group 45.67))".
func Sprint(node Node) string {
	var b strings.Builder
	write(&b, node)
	return b.String()
}

// SprintProgram renders each statement on its own line.
func SprintProgram(stmts []Stmt) string {
	var b strings.Builder
	for _, s := range stmts {
		write(&b, s)
		b.WriteByte('\n')
	}
	return b.String()
}

// FormatNumber formats a number the way Lox displays it: integral values
// have no fractional part, infinities and NaN are spelled out.
func FormatNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func write(b *strings.Builder, node Node) {
	switch n := node.(type) {
	// ---- Expressions ----
	case *Literal:
		b.WriteString(literalString(n.Value))
	case *Grouping:
		paren(b, "group", n.Inner)
	case *Unary:
		paren(b, n.Op.Lexeme, n.Right)
	case *Binary:
		paren(b, n.Op.Lexeme, n.Left, n.Right)
	case *Logical:
		paren(b, n.Op.Lexeme, n.Left, n.Right)
	case *Variable:
		b.WriteString(n.Name.Lexeme)
	case *Assign:
		paren(b, "= "+n.Name.Lexeme, n.Value)
	case *Call:
		nodes := make([]Node, 0, len(n.Args)+1)
		nodes = append(nodes, n.Callee)
		for _, a := range n.Args {
			nodes = append(nodes, a)
		}
		paren(b, "call", nodes...)
	case *Get:
		paren(b, "."+n.Name.Lexeme, n.Object)
	case *Set:
		paren(b, "=."+n.Name.Lexeme, n.Object, n.Value)
	case *This:
		b.WriteString("this")
	case *Super:
		b.WriteString("(super " + n.Method.Lexeme + ")")

	// ---- Statements ----
	case *Expression:
		paren(b, ";", n.Expr)
	case *Print:
		paren(b, "print", n.Expr)
	case *Var:
		if n.Init == nil {
			b.WriteString("(var " + n.Name.Lexeme + ")")
			return
		}
		paren(b, "var "+n.Name.Lexeme, n.Init)
	case *Block:
		paren(b, "block", stmtNodes(n.Stmts)...)
	case *If:
		if n.Else == nil {
			paren(b, "if", n.Cond, n.Then)
			return
		}
		paren(b, "if-else", n.Cond, n.Then, n.Else)
	case *While:
		paren(b, "while", n.Cond, n.Body)
	case *Function:
		b.WriteString("(fun " + n.Name.Lexeme + " (")
		for i, p := range n.Params {
			if i > 0 {
				b.WriteByte(' ')
			}
			b.WriteString(p.Lexeme)
		}
		b.WriteByte(')')
		for _, s := range n.Body {
			b.WriteByte(' ')
			write(b, s)
		}
		b.WriteByte(')')
	case *Return:
		if n.Value == nil {
			b.WriteString("(return)")
			return
		}
		paren(b, "return", n.Value)
	case *Class:
		b.WriteString("(class " + n.Name.Lexeme)
		if n.Superclass != nil {
			b.WriteString(" < " + n.Superclass.Name.Lexeme)
		}
		for _, m := range n.Methods {
			b.WriteByte(' ')
			write(b, m)
		}
		b.WriteByte(')')

	default:
		b.WriteString("<?>")
	}
}

func paren(b *strings.Builder, name string, nodes ...Node) {
	b.WriteByte('(')
	b.WriteString(name)
	for _, n := range nodes {
		b.WriteByte(' ')
		write(b, n)
	}
	b.WriteByte(')')
}

func stmtNodes(stmts []Stmt) []Node {
	nodes := make([]Node, len(stmts))
	for i, s := range stmts {
		nodes[i] = s
	}
	return nodes
}

func literalString(v any) string {
	switch val := v.(type) {
	case nil:
		return "nil"
	case bool:
		return strconv.FormatBool(val)
	case float64:
		return FormatNumber(val)
	case string:
		return strconv.Quote(val)
	default:
		return "<?>"
	}
}
