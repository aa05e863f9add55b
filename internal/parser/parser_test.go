package parser

import (
	"encoding/json"
	"strings"
	"testing"

	"lox-lang/internal/ast"
	"lox-lang/internal/diag"
	"lox-lang/internal/scanner"
)

// helper: parse source and fail on any diagnostic
func parseOK(t *testing.T, source string) []ast.Stmt {
	t.Helper()
	tokens, scanDiags := scanner.New(source).ScanTokens()
	if scanDiags.HasErrors() {
		t.Fatalf("scan errors: %v", scanDiags)
	}
	stmts, parseDiags := New(tokens).Parse()
	if parseDiags.HasErrors() {
		t.Fatalf("parse errors: %v", parseDiags)
	}
	return stmts
}

// helper: parse source and return the diagnostics
func parseErrors(t *testing.T, source string) ([]ast.Stmt, diag.List) {
	t.Helper()
	tokens, scanDiags := scanner.New(source).ScanTokens()
	if scanDiags.HasErrors() {
		t.Fatalf("scan errors: %v", scanDiags)
	}
	return New(tokens).Parse()
}

func expectPrinted(t *testing.T, source string, expected ...string) {
	t.Helper()
	stmts := parseOK(t, source)
	if len(stmts) != len(expected) {
		t.Fatalf("expected %d statements, got %d", len(expected), len(stmts))
	}
	for i, want := range expected {
		if got := ast.Sprint(stmts[i]); got != want {
			t.Errorf("stmt[%d]: expected %q, got %q", i, want, got)
		}
	}
}

func TestParseExpressionFixture(t *testing.T) {
	tokens, _ := scanner.New("-123 * (45.67)").ScanTokens()
	expr, diags := New(tokens).ParseExpression()
	if diags.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}
	if got := ast.Sprint(expr); got != "(* (- 123) (group 45.67))" {
		t.Errorf("unexpected tree: %q", got)
	}
}

func TestParsePrecedence(t *testing.T) {
	tests := []struct {
		source string
		want   string
	}{
		{"1 + 2 * 3;", "(; (+ 1 (* 2 3)))"},
		{"1 - 2 - 3;", "(; (- (- 1 2) 3))"},
		{"a or b and c;", "(; (or a (and b c)))"},
		{"1 < 2 == true;", "(; (== (< 1 2) true))"},
		{"!!x;", "(; (! (! x)))"},
		{"a = b = 3;", "(; (= a (= b 3)))"},
		{"a.b.c = 1;", "(; (=.c (.b a) 1))"},
		{"f(1)(2);", "(; (call (call f 1) 2))"},
		{"obj.method(1).prop;", "(; (.prop (call (.method obj) 1)))"},
	}
	for _, tt := range tests {
		t.Run(tt.source, func(t *testing.T) {
			expectPrinted(t, tt.source, tt.want)
		})
	}
}

func TestParseVarDecl(t *testing.T) {
	stmts := parseOK(t, `var x = 42; var y;`)
	decl, ok := stmts[0].(*ast.Var)
	if !ok {
		t.Fatalf("expected Var, got %T", stmts[0])
	}
	if decl.Name.Lexeme != "x" {
		t.Errorf("expected name 'x', got %q", decl.Name.Lexeme)
	}
	if stmts[1].(*ast.Var).Init != nil {
		t.Error("expected no initializer for y")
	}
}

func TestParseIfElse(t *testing.T) {
	expectPrinted(t, `if (x > 0) print x; else print 0;`,
		"(if-else (> x 0) (print x) (print 0))")
}

func TestParseWhile(t *testing.T) {
	expectPrinted(t, `while (i < 10) { i = i + 1; }`,
		"(while (< i 10) (block (; (= i (+ i 1)))))")
}

func TestParseForDesugarsToWhile(t *testing.T) {
	expectPrinted(t, `for (var i = 0; i < 3; i = i + 1) print i;`,
		"(block (var i 0) (while (< i 3) (block (print i) (; (= i (+ i 1))))))")
}

func TestParseForWithoutClauses(t *testing.T) {
	expectPrinted(t, `for (;;) print 1;`, "(while true (print 1))")
}

func TestParseFunction(t *testing.T) {
	stmts := parseOK(t, "fun add(a, b) {\n  return a + b;\n}")
	fn, ok := stmts[0].(*ast.Function)
	if !ok {
		t.Fatalf("expected Function, got %T", stmts[0])
	}
	if fn.Name.Lexeme != "add" {
		t.Errorf("expected name 'add', got %q", fn.Name.Lexeme)
	}
	if len(fn.Params) != 2 {
		t.Errorf("expected 2 params, got %d", len(fn.Params))
	}
	if got := ast.Sprint(fn); got != "(fun add (a b) (return (+ a b)))" {
		t.Errorf("unexpected tree: %q", got)
	}
	if fn.Span.Start.Line != 1 || fn.Span.End.Line != 3 {
		t.Errorf("unexpected span: %s", fn.Span)
	}
}

func TestParseClass(t *testing.T) {
	source := `class Point < Base {
  init(x, y) {
    this.x = x;
    this.y = y;
  }
  move(dx) {
    super.move(dx);
  }
}`
	stmts := parseOK(t, source)
	cls, ok := stmts[0].(*ast.Class)
	if !ok {
		t.Fatalf("expected Class, got %T", stmts[0])
	}
	if cls.Name.Lexeme != "Point" {
		t.Errorf("expected name 'Point', got %q", cls.Name.Lexeme)
	}
	if cls.Superclass == nil || cls.Superclass.Name.Lexeme != "Base" {
		t.Fatalf("expected superclass Base, got %v", cls.Superclass)
	}
	if len(cls.Methods) != 2 {
		t.Fatalf("expected 2 methods, got %d", len(cls.Methods))
	}
	if got := ast.Sprint(cls.Methods[1]); got != "(fun move (dx) (; (call (super move) dx)))" {
		t.Errorf("unexpected method tree: %q", got)
	}
}

func TestParseJSONOutput(t *testing.T) {
	stmts := parseOK(t, `var x = 1;`)
	data, err := json.Marshal(ast.ProgramToMap(stmts))
	if err != nil {
		t.Fatalf("json error: %v", err)
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if m["kind"] != "Program" {
		t.Errorf("expected kind 'Program', got %v", m["kind"])
	}
}

func TestParseErrorMessages(t *testing.T) {
	tests := []struct {
		source string
		want   string
	}{
		{"print 1", "[line 1] Error at end: Expect ';' after value."},
		{"var 1 = 2;", "[line 1] Error at '1': Expect variable name."},
		{"1 + 2 = 3;", "[line 1] Error at '=': Invalid assignment target."},
		{"print (1;", "[line 1] Error at ';': Expect ')' after expression."},
		{"print ;", "[line 1] Error at ';': Expect expression."},
		{"return 1;", "[line 1] Error at 'return': Can't return from top-level code."},
		{"print this;", "[line 1] Error at 'this': Can't use 'this' outside of a class."},
		{"class A { f() { super.f(); } }", "[line 1] Error at 'super': Can't use 'super' in a class with no superclass."},
		{"fun f() { super.f(); }", "[line 1] Error at 'super': Can't use 'super' outside of a class."},
		{"class A < A {}", "[line 1] Error at 'A': A class can't inherit from itself."},
		{"class A { init() { return 1; } }", "[line 1] Error at 'return': Can't return a value from an initializer."},
		{"foo.;", "[line 1] Error at ';': Expect property name after '.'."},
	}
	for _, tt := range tests {
		t.Run(tt.source, func(t *testing.T) {
			_, diags := parseErrors(t, tt.source)
			if len(diags) == 0 {
				t.Fatalf("expected diagnostic %q, got none", tt.want)
			}
			if got := diags[0].String(); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestParseInvalidTargetKeepsStatement(t *testing.T) {
	stmts, diags := parseErrors(t, "a + b = c; print 1;")
	if len(diags) != 1 {
		t.Fatalf("expected 1 diagnostic, got %d: %v", len(diags), diags)
	}
	if len(stmts) != 2 {
		t.Errorf("expected both statements to survive, got %d", len(stmts))
	}
}

func TestParseReportsIndependentErrors(t *testing.T) {
	source := "print 1 +;\nvar = 2;\nprint \"ok\";"
	stmts, diags := parseErrors(t, source)

	if len(diags) != 2 {
		t.Fatalf("expected 2 diagnostics, got %d: %v", len(diags), diags)
	}
	want := []string{
		"[line 1] Error at ';': Expect expression.",
		"[line 2] Error at '=': Expect variable name.",
	}
	for i, w := range want {
		if got := diags[i].String(); got != w {
			t.Errorf("diag[%d]: expected %q, got %q", i, w, got)
		}
	}
	if len(stmts) != 1 {
		t.Errorf("expected the valid print to survive, got %d statements", len(stmts))
	}
}

func TestParseErrorRecoveryInsideBlock(t *testing.T) {
	source := "{\n  var x = ;\n  print x;\n}\nprint 2;"
	stmts, diags := parseErrors(t, source)

	if len(diags) != 1 {
		t.Fatalf("expected 1 diagnostic, got %d: %v", len(diags), diags)
	}
	if len(stmts) != 2 {
		t.Fatalf("expected block and print, got %d", len(stmts))
	}
	block := stmts[0].(*ast.Block)
	if len(block.Stmts) != 1 {
		t.Errorf("expected the print inside the block to survive, got %d", len(block.Stmts))
	}
}

func TestParseTooManyArguments(t *testing.T) {
	args := make([]string, 256)
	for i := range args {
		args[i] = "1"
	}
	_, diags := parseErrors(t, "f("+strings.Join(args, ", ")+");")
	if len(diags) != 1 {
		t.Fatalf("expected 1 diagnostic, got %d", len(diags))
	}
	if !strings.Contains(diags[0].Message, "more than 255 arguments") {
		t.Errorf("unexpected message: %q", diags[0].Message)
	}
}
