package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"lox-lang/internal/lox"
)

func writeScript(t *testing.T, source string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "script.lox")
	if err := os.WriteFile(path, []byte(source), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func runCLI(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	var stdout, stderr bytes.Buffer
	code := run(args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestRunScript(t *testing.T) {
	path := writeScript(t, `print "hi";`)
	code, out, errOut := runCLI(t, path)
	if code != lox.ExitOK {
		t.Fatalf("exit = %d, stderr = %q", code, errOut)
	}
	if out != "hi\n" {
		t.Errorf("stdout = %q", out)
	}
}

func TestExitCodes(t *testing.T) {
	tests := []struct {
		name   string
		source string
		code   int
		stderr string
	}{
		{"ok", `print 1;`, lox.ExitOK, ""},
		{"parse error", `print ;`, lox.ExitStaticError, "[line 1] Error at ';': Expect expression.\n"},
		{"runtime error", "\n-nil;", lox.ExitRuntimeError, "Operand must be a number.\n[line 2]\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _, errOut := runCLI(t, writeScript(t, tt.source))
			if code != tt.code {
				t.Errorf("exit = %d, want %d", code, tt.code)
			}
			if errOut != tt.stderr {
				t.Errorf("stderr = %q, want %q", errOut, tt.stderr)
			}
		})
	}
}

func TestTooManyArgs(t *testing.T) {
	code, _, errOut := runCLI(t, "a.lox", "b.lox")
	if code != lox.ExitUsage {
		t.Errorf("exit = %d, want %d", code, lox.ExitUsage)
	}
	if !strings.Contains(errOut, "Usage: lox") {
		t.Errorf("stderr = %q", errOut)
	}
}

func TestBadConfig(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(cfgPath, []byte("log:\n  level: shout\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	code, _, errOut := runCLI(t, "-config", cfgPath, writeScript(t, "print 1;"))
	if code != lox.ExitUsage {
		t.Errorf("exit = %d, want %d", code, lox.ExitUsage)
	}
	if !strings.Contains(errOut, "log.level") {
		t.Errorf("stderr = %q", errOut)
	}
}

func TestTokensJSON(t *testing.T) {
	code, out, _ := runCLI(t, "-tokens", "-json", writeScript(t, `var x = 1;`))
	if code != lox.ExitOK {
		t.Fatalf("exit = %d", code)
	}

	var got struct {
		Tokens []struct {
			Kind   string `json:"kind"`
			Lexeme string `json:"lexeme"`
		} `json:"tokens"`
	}
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, out)
	}
	kinds := make([]string, len(got.Tokens))
	for i, tok := range got.Tokens {
		kinds[i] = tok.Kind
	}
	want := "var IDENTIFIER = NUMBER ; EOF"
	if strings.Join(kinds, " ") != want {
		t.Errorf("kinds = %v, want %s", kinds, want)
	}
}

func TestASTText(t *testing.T) {
	code, out, _ := runCLI(t, "-ast", writeScript(t, `print -1 * (2 + 3);`))
	if code != lox.ExitOK {
		t.Fatalf("exit = %d", code)
	}
	if strings.TrimSpace(out) != "(print (* (- 1) (group (+ 2 3))))" {
		t.Errorf("ast = %q", out)
	}
}

func TestInputBuffer(t *testing.T) {
	var b inputBuffer

	if _, ready := b.add("fun f() {"); ready || !b.pending() {
		t.Fatal("open brace should keep buffering")
	}
	if _, ready := b.add("  print 1;"); ready {
		t.Fatal("still inside block")
	}
	src, ready := b.add("}")
	if !ready || b.pending() {
		t.Fatal("closing brace should complete input")
	}
	if src != "fun f() {\n  print 1;\n}\n" {
		t.Errorf("source = %q", src)
	}

	if _, ready := b.add("   "); ready {
		t.Error("blank input should not be ready")
	}
}

func TestInputBufferIgnoresBracesInStringsAndComments(t *testing.T) {
	tests := []string{
		`print "{";`,
		`print "}{{";`,
		`print 1; // {`,
	}
	for _, line := range tests {
		var b inputBuffer
		src, ready := b.add(line)
		if !ready || b.pending() {
			t.Errorf("%q should be ready at once", line)
			continue
		}
		if src != line+"\n" {
			t.Errorf("source = %q", src)
		}
	}

	var b inputBuffer
	if _, ready := b.add(`if (true) { print "}";`); ready {
		t.Fatal("block brace is still open")
	}
	if _, ready := b.add("}"); !ready {
		t.Error("closing brace should complete input")
	}
}
