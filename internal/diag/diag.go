// Package diag provides scan and parse diagnostics.
//
// Diagnostics are values collected by the scanner and parser and handed back
// to the caller; nothing in the core keeps global error state.
package diag

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"lox-lang/internal/token"
)

// Phase identifies which pass produced a diagnostic.
type Phase int

const (
	Scan Phase = iota
	Parse
)

func (p Phase) String() string {
	switch p {
	case Scan:
		return "scan"
	case Parse:
		return "parse"
	default:
		return "unknown"
	}
}

// Stable diagnostic codes.
const (
	CodeUnexpectedChar     = "E1001"
	CodeUnterminatedString = "E1002"

	CodeExpectToken      = "E2001"
	CodeExpectExpression = "E2002"
	CodeInvalidTarget    = "E2003"
	CodeTooManyArgs      = "E2004"
	CodeBadContext       = "E2005"
	CodeSelfInherit      = "E2006"
)

// Diagnostic is a single scan or parse error.
type Diagnostic struct {
	Code    string     `json:"code"`
	Phase   Phase      `json:"-"`
	Line    int        `json:"line"`
	Where   string     `json:"where,omitempty"` // "", "at end" or "at 'lexeme'"
	Message string     `json:"message"`
	Span    token.Span `json:"span"`
}

// String renders the diagnostic in the format tooling depends on:
//
//	[line N] Error: message
//	[line N] Error at 'x': message
func (d Diagnostic) String() string {
	if d.Where == "" {
		return fmt.Sprintf("[line %d] Error: %s", d.Line, d.Message)
	}
	return fmt.Sprintf("[line %d] Error %s: %s", d.Line, d.Where, d.Message)
}

func (d Diagnostic) Error() string { return d.String() }

// ScanError creates a diagnostic with no location qualifier.
func ScanError(code string, s token.Span, msg string) Diagnostic {
	return Diagnostic{
		Code:    code,
		Phase:   Scan,
		Line:    s.Start.Line,
		Message: msg,
		Span:    s,
	}
}

// AtToken creates a parse diagnostic qualified by the offending token.
func AtToken(code string, tok token.Token, msg string) Diagnostic {
	where := fmt.Sprintf("at '%s'", tok.Lexeme)
	if tok.Kind == token.EOF {
		where = "at end"
	}
	return Diagnostic{
		Code:    code,
		Phase:   Parse,
		Line:    tok.Line(),
		Where:   where,
		Message: msg,
		Span:    tok.Span,
	}
}

// List is an ordered collection of diagnostics.
type List []Diagnostic

// HasErrors reports whether the list is non-empty.
func (l List) HasErrors() bool { return len(l) > 0 }

// Sort orders diagnostics by source position, keeping scan errors ahead of
// parse errors at the same offset.
func (l List) Sort() {
	sort.SliceStable(l, func(i, j int) bool {
		if l[i].Span.Start.Offset != l[j].Span.Start.Offset {
			return l[i].Span.Start.Offset < l[j].Span.Start.Offset
		}
		return l[i].Phase < l[j].Phase
	})
}

// String renders one diagnostic per line.
func (l List) String() string {
	var b strings.Builder
	for i, d := range l {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(d.String())
	}
	return b.String()
}

// Err returns the diagnostics joined into one error, or nil when empty.
func (l List) Err() error {
	if len(l) == 0 {
		return nil
	}
	errs := make([]error, len(l))
	for i, d := range l {
		errs[i] = d
	}
	return errors.Join(errs...)
}
