package main

import (
	"encoding/json"
	"fmt"
	"io"

	"lox-lang/internal/diag"
	"lox-lang/internal/token"
)

// output holds the streams the non-interactive commands write to.
type output struct {
	stdout io.Writer
	stderr io.Writer
}

func (o output) printJSON(v any) error {
	enc := json.NewEncoder(o.stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("JSON encoding failed: %w", err)
	}
	return nil
}

func (o output) printDiags(diags diag.List) {
	for _, d := range diags {
		fmt.Fprintln(o.stderr, d.String())
	}
}

func diagsToSlice(diags diag.List) []map[string]any {
	result := make([]map[string]any, len(diags))
	for i, d := range diags {
		result[i] = map[string]any{
			"code":    d.Code,
			"phase":   d.Phase.String(),
			"message": d.Message,
			"line":    d.Span.Start.Line,
			"column":  d.Span.Start.Column,
			"offset":  d.Span.Start.Offset,
		}
		if d.Where != "" {
			result[i]["where"] = d.Where
		}
	}
	return result
}

// ---- token output ----

func (o output) printTokensText(tokens []token.Token, diags diag.List) {
	for _, tok := range tokens {
		lexeme := tok.Lexeme
		if tok.Kind == token.EOF {
			lexeme = "<eof>"
		}
		fmt.Fprintf(o.stdout, "%-14s %-20s %d:%d\n", tok.Kind, lexeme, tok.Span.Start.Line, tok.Span.Start.Column)
	}
	o.printDiags(diags)
}

func (o output) printTokensJSON(tokens []token.Token, diags diag.List) error {
	type tokenJSON struct {
		Kind    string `json:"kind"`
		Lexeme  string `json:"lexeme"`
		Literal any    `json:"literal,omitempty"`
		Line    int    `json:"line"`
		Column  int    `json:"column"`
		Offset  int    `json:"offset"`
	}

	toks := make([]tokenJSON, 0, len(tokens))
	for _, tok := range tokens {
		toks = append(toks, tokenJSON{
			Kind:    tok.Kind.String(),
			Lexeme:  tok.Lexeme,
			Literal: tok.Literal,
			Line:    tok.Span.Start.Line,
			Column:  tok.Span.Start.Column,
			Offset:  tok.Span.Start.Offset,
		})
	}

	return o.printJSON(map[string]any{
		"tokens":      toks,
		"diagnostics": diagsToSlice(diags),
	})
}
