// Command lox runs Lox programs.
//
// Usage:
//
//	lox                       Start the interactive prompt
//	lox <script>              Run a script
//	lox -tokens <script>      Print tokens
//	lox -ast <script>         Print the syntax tree
//	lox -tokens -json <file>  Print tokens as JSON (likewise -ast -json)
package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"lox-lang/internal/ast"
	"lox-lang/internal/config"
	"lox-lang/internal/lox"
	"lox-lang/internal/parser"
	"lox-lang/internal/scanner"
)

type options struct {
	configPath string
	tokens     bool
	ast        bool
	json       bool
	verbose    bool
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	var opts options
	fs := flag.NewFlagSet("lox", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.configPath, "config", "", "path to config file (default $HOME/"+config.DefaultFileName+")")
	fs.BoolVar(&opts.tokens, "tokens", false, "print tokens instead of running")
	fs.BoolVar(&opts.ast, "ast", false, "print the syntax tree instead of running")
	fs.BoolVar(&opts.json, "json", false, "with -tokens or -ast, print JSON")
	fs.BoolVar(&opts.verbose, "v", false, "enable debug logging")
	fs.Usage = func() {
		fmt.Fprintln(stderr, "Usage: lox [flags] [script]")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return lox.ExitUsage
	}
	if fs.NArg() > 1 {
		fs.Usage()
		return lox.ExitUsage
	}

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return lox.ExitUsage
	}

	level := cfg.LogLevel()
	if opts.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))
	if cfg.Path != "" {
		logger.Debug("loaded config", "path", cfg.Path)
	}

	if fs.NArg() == 0 {
		if opts.tokens || opts.ast {
			fmt.Fprintln(stderr, "error: -tokens and -ast need a script")
			return lox.ExitUsage
		}
		return cmdRepl(cfg, logger)
	}

	path := fs.Arg(0)
	source, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(stderr, "error: cannot read file %s: %v\n", path, err)
		return lox.ExitUsage
	}

	out := output{stdout: stdout, stderr: stderr}
	switch {
	case opts.tokens:
		return out.cmdTokens(string(source), opts.json)
	case opts.ast:
		return out.cmdAST(string(source), opts.json)
	default:
		return out.cmdRun(string(source), logger)
	}
}

// ---- run ----

func (o output) cmdRun(source string, logger *slog.Logger) int {
	res := lox.New(lox.WithStdout(o.stdout), lox.WithLogger(logger)).Run(source)
	switch {
	case res.HadError():
		o.printDiags(res.Diagnostics)
	case res.HadRuntimeError():
		fmt.Fprintln(o.stderr, res.RuntimeErr)
	}
	return res.ExitCode()
}

// ---- tokens ----

func (o output) cmdTokens(source string, jsonMode bool) int {
	tokens, diags := scanner.New(source).ScanTokens()

	if jsonMode {
		if err := o.printTokensJSON(tokens, diags); err != nil {
			fmt.Fprintf(o.stderr, "error: %v\n", err)
			return lox.ExitRuntimeError
		}
	} else {
		o.printTokensText(tokens, diags)
	}

	if diags.HasErrors() {
		return lox.ExitStaticError
	}
	return lox.ExitOK
}

// ---- ast ----

func (o output) cmdAST(source string, jsonMode bool) int {
	tokens, diags := scanner.New(source).ScanTokens()
	stmts, parseDiags := parser.New(tokens).Parse()
	diags = append(diags, parseDiags...)
	diags.Sort()

	if jsonMode {
		err := o.printJSON(map[string]any{
			"ast":         ast.ProgramToMap(stmts),
			"diagnostics": diagsToSlice(diags),
		})
		if err != nil {
			fmt.Fprintf(o.stderr, "error: %v\n", err)
			return lox.ExitRuntimeError
		}
	} else {
		fmt.Fprint(o.stdout, ast.SprintProgram(stmts))
		o.printDiags(diags)
	}

	if diags.HasErrors() {
		return lox.ExitStaticError
	}
	return lox.ExitOK
}
