package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/chzyer/readline"

	"lox-lang/internal/config"
	"lox-lang/internal/lox"
	"lox-lang/internal/scanner"
	"lox-lang/internal/token"
)

// ---- ANSI colors ----

const (
	colorReset = "\033[0m"
	colorRed   = "\033[31m"
	colorGreen = "\033[32m"
	colorCyan  = "\033[36m"
	colorGray  = "\033[90m"
	colorBold  = "\033[1m"
)

// palette applies ANSI colors when enabled.
type palette struct {
	on bool
}

func (p palette) wrap(color, s string) string {
	if !p.on {
		return s
	}
	return color + s + colorReset
}

// ---- prompt mode ----

func cmdRepl(cfg *config.Config, logger *slog.Logger) int {
	colors := palette{on: cfg.REPL.Color}
	prompt := colors.wrap(colorGreen, cfg.REPL.Prompt)
	continuation := colors.wrap(colorGray, strings.Repeat(".", max(len(strings.TrimRight(cfg.REPL.Prompt, " ")), 1))+" ")

	rl, err := readline.NewEx(&readline.Config{
		Prompt:            prompt,
		HistoryFile:       cfg.REPL.HistoryFile,
		InterruptPrompt:   "^C",
		EOFPrompt:         "exit",
		HistorySearchFold: true,
	})
	if err != nil {
		logger.Error("readline init failed", "error", err)
		return lox.ExitUsage
	}
	defer rl.Close()

	fmt.Fprintf(rl.Stdout(), "%s %s\n\n",
		colors.wrap(colorBold+colorCyan, "Lox"), colors.wrap(colorGray, "(type 'exit' or Ctrl+D to quit)"))

	runner := lox.New(lox.WithStdout(rl.Stdout()), lox.WithLogger(logger))
	var buf inputBuffer

	for {
		if buf.pending() {
			rl.SetPrompt(continuation)
		} else {
			rl.SetPrompt(prompt)
		}

		line, err := rl.Readline()
		if err != nil {
			if errors.Is(err, readline.ErrInterrupt) {
				if buf.pending() {
					buf.reset()
					continue
				}
				fmt.Fprintf(rl.Stdout(), "%s\n", colors.wrap(colorGray, "(use 'exit' or Ctrl+D to quit)"))
				continue
			}
			if errors.Is(err, io.EOF) {
				fmt.Fprintln(rl.Stdout())
			}
			return lox.ExitOK
		}

		if !buf.pending() && strings.TrimSpace(line) == "exit" {
			return lox.ExitOK
		}

		source, ready := buf.add(line)
		if !ready {
			continue
		}

		res := runner.Run(source)
		switch {
		case res.HadError():
			for _, d := range res.Diagnostics {
				fmt.Fprintln(rl.Stderr(), colors.wrap(colorRed, d.String()))
			}
		case res.HadRuntimeError():
			fmt.Fprintln(rl.Stderr(), colors.wrap(colorRed, res.RuntimeErr.Error()))
		}
	}
}

// inputBuffer accumulates lines until every '{' has been closed. Braces
// inside strings and comments do not count.
type inputBuffer struct {
	text  strings.Builder
	depth int
}

func (b *inputBuffer) pending() bool { return b.depth > 0 }

func (b *inputBuffer) reset() {
	b.text.Reset()
	b.depth = 0
}

// add appends line and returns the buffered source once braces balance.
// ready is false while a block is open or the input is blank.
func (b *inputBuffer) add(line string) (source string, ready bool) {
	b.text.WriteString(line)
	b.text.WriteByte('\n')
	b.depth = braceDepth(b.text.String())
	if b.depth > 0 {
		return "", false
	}

	source = b.text.String()
	b.reset()
	if strings.TrimSpace(source) == "" {
		return "", false
	}
	return source, true
}

// braceDepth returns the number of unclosed '{' tokens in source.
func braceDepth(source string) int {
	tokens, _ := scanner.New(source).ScanTokens()
	depth := 0
	for _, tok := range tokens {
		switch tok.Kind {
		case token.LEFT_BRACE:
			depth++
		case token.RIGHT_BRACE:
			depth--
		}
	}
	return depth
}
