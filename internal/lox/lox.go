// Package lox ties the scanner, parser and interpreter together.
//
// A Runner owns one interpreter, so declarations made by one Run are
// visible to the next. Prompt mode reuses a Runner; file mode makes a new one.
package lox

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"slices"

	"lox-lang/internal/diag"
	"lox-lang/internal/parser"
	"lox-lang/internal/runtime"
	"lox-lang/internal/scanner"
)

// Process exit codes.
const (
	ExitOK           = 0
	ExitUsage        = 64
	ExitStaticError  = 65
	ExitRuntimeError = 70
)

// Result is the outcome of one Run.
type Result struct {
	Diagnostics diag.List
	RuntimeErr  error
}

// HadError reports whether scanning or parsing failed.
func (r Result) HadError() bool { return r.Diagnostics.HasErrors() }

// HadRuntimeError reports whether execution stopped on an error.
func (r Result) HadRuntimeError() bool { return r.RuntimeErr != nil }

// ExitCode maps the result to the process exit code.
func (r Result) ExitCode() int {
	switch {
	case r.HadError():
		return ExitStaticError
	case r.HadRuntimeError():
		return ExitRuntimeError
	default:
		return ExitOK
	}
}

// Err returns the diagnostics or the runtime error as a single error.
func (r Result) Err() error {
	if r.HadError() {
		return r.Diagnostics.Err()
	}
	return r.RuntimeErr
}

// Runner runs source text against a persistent interpreter.
type Runner struct {
	stdout  io.Writer
	logger  *slog.Logger
	globals map[string]runtime.Value
	interp  *runtime.Interpreter
}

// Option configures a Runner.
type Option func(*Runner)

// WithStdout sets where print statements write.
func WithStdout(w io.Writer) Option {
	return func(r *Runner) { r.stdout = w }
}

// WithLogger sets the logger for phase tracing.
func WithLogger(l *slog.Logger) Option {
	return func(r *Runner) { r.logger = l }
}

// WithGlobals predefines host values in the global scope.
func WithGlobals(values map[string]runtime.Value) Option {
	return func(r *Runner) { r.globals = values }
}

// New creates a Runner.
func New(opts ...Option) *Runner {
	r := &Runner{
		stdout: os.Stdout,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.interp = runtime.NewInterpreter(
		runtime.WithOutput(r.stdout),
		runtime.WithLogger(r.logger),
		runtime.WithGlobals(r.globals),
	)
	return r
}

// Run scans, parses and, if both succeed, interprets source.
func (r *Runner) Run(source string) Result {
	tokens, diags := scanner.New(source).ScanTokens()
	r.logger.Debug("scanned", "tokens", len(tokens), "errors", len(diags))

	stmts, parseDiags := parser.New(tokens).Parse()
	r.logger.Debug("parsed", "statements", len(stmts), "errors", len(parseDiags))

	diags = append(diags, parseDiags...)
	if diags.HasErrors() {
		diags.Sort()
		return Result{Diagnostics: diags}
	}

	if err := r.interp.Interpret(stmts); err != nil {
		var rerr *runtime.RuntimeError
		if errors.As(err, &rerr) {
			r.logger.Debug("runtime error", "code", rerr.Code(), "line", rerr.Line())
		}
		return Result{RuntimeErr: err}
	}
	r.logger.Debug("globals", "names", r.Globals())
	return Result{}
}

// Globals returns the sorted names bound in the global scope.
func (r *Runner) Globals() []string {
	names := r.interp.Globals().Names()
	slices.Sort(names)
	return names
}
