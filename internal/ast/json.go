package ast

import "lox-lang/internal/token"

// NodeToMap converts an AST node to a map suitable for JSON serialization.
// This produces a tagged-union structure: every node has a "kind" field.
func NodeToMap(node Node) map[string]any {
	if node == nil {
		return nil
	}

	switch n := node.(type) {
	// ---- Expressions ----
	case *Literal:
		return m("Literal", n.Span, "value", n.Value)
	case *Grouping:
		return m("Grouping", n.Span, "inner", NodeToMap(n.Inner))
	case *Unary:
		return m("Unary", n.Span, "op", n.Op.Lexeme, "right", NodeToMap(n.Right))
	case *Binary:
		return m("Binary", n.Span,
			"op", n.Op.Lexeme,
			"left", NodeToMap(n.Left),
			"right", NodeToMap(n.Right))
	case *Logical:
		return m("Logical", n.Span,
			"op", n.Op.Lexeme,
			"left", NodeToMap(n.Left),
			"right", NodeToMap(n.Right))
	case *Variable:
		return m("Variable", n.Span, "name", n.Name.Lexeme)
	case *Assign:
		return m("Assign", n.Span, "name", n.Name.Lexeme, "value", NodeToMap(n.Value))
	case *Call:
		return m("Call", n.Span,
			"callee", NodeToMap(n.Callee),
			"args", exprSlice(n.Args))
	case *Get:
		return m("Get", n.Span, "object", NodeToMap(n.Object), "name", n.Name.Lexeme)
	case *Set:
		return m("Set", n.Span,
			"object", NodeToMap(n.Object),
			"name", n.Name.Lexeme,
			"value", NodeToMap(n.Value))
	case *This:
		return m("This", n.Span)
	case *Super:
		return m("Super", n.Span, "method", n.Method.Lexeme)

	// ---- Statements ----
	case *Expression:
		return m("Expression", n.Span, "expr", NodeToMap(n.Expr))
	case *Print:
		return m("Print", n.Span, "expr", NodeToMap(n.Expr))
	case *Var:
		result := m("Var", n.Span, "name", n.Name.Lexeme)
		if n.Init != nil {
			result["init"] = NodeToMap(n.Init)
		}
		return result
	case *Block:
		return m("Block", n.Span, "stmts", stmtSlice(n.Stmts))
	case *If:
		result := m("If", n.Span,
			"cond", NodeToMap(n.Cond),
			"then", NodeToMap(n.Then))
		if n.Else != nil {
			result["else"] = NodeToMap(n.Else)
		}
		return result
	case *While:
		return m("While", n.Span,
			"cond", NodeToMap(n.Cond),
			"body", NodeToMap(n.Body))
	case *Function:
		return m("Function", n.Span,
			"name", n.Name.Lexeme,
			"params", lexemes(n.Params),
			"body", stmtSlice(n.Body))
	case *Return:
		result := m("Return", n.Span)
		if n.Value != nil {
			result["value"] = NodeToMap(n.Value)
		}
		return result
	case *Class:
		result := m("Class", n.Span, "name", n.Name.Lexeme)
		if n.Superclass != nil {
			result["superclass"] = n.Superclass.Name.Lexeme
		}
		methods := make([]any, len(n.Methods))
		for i, fn := range n.Methods {
			methods[i] = NodeToMap(fn)
		}
		result["methods"] = methods
		return result

	default:
		return map[string]any{"kind": "Unknown"}
	}
}

// ProgramToMap wraps a statement list the way a file root would be dumped.
func ProgramToMap(stmts []Stmt) map[string]any {
	return map[string]any{
		"kind": "Program",
		"body": stmtSlice(stmts),
	}
}

// ---- helpers ----

// m builds a map with kind, span, and extra key-value pairs.
func m(kind string, s token.Span, kvs ...any) map[string]any {
	result := map[string]any{
		"kind": kind,
		"span": spanToMap(s),
	}
	for i := 0; i+1 < len(kvs); i += 2 {
		result[kvs[i].(string)] = kvs[i+1]
	}
	return result
}

func spanToMap(s token.Span) map[string]any {
	return map[string]any{
		"start": map[string]any{"offset": s.Start.Offset, "line": s.Start.Line, "column": s.Start.Column},
		"end":   map[string]any{"offset": s.End.Offset, "line": s.End.Line, "column": s.End.Column},
	}
}

func stmtSlice(stmts []Stmt) []any {
	result := make([]any, len(stmts))
	for i, s := range stmts {
		result[i] = NodeToMap(s)
	}
	return result
}

func exprSlice(exprs []Expr) []any {
	result := make([]any, len(exprs))
	for i, e := range exprs {
		result[i] = NodeToMap(e)
	}
	return result
}

func lexemes(toks []token.Token) []string {
	result := make([]string, len(toks))
	for i, t := range toks {
		result[i] = t.Lexeme
	}
	return result
}
