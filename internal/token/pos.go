package token

import "fmt"

// Pos is a location in source text.
type Pos struct {
	Offset int `json:"offset"` // byte offset
	Line   int `json:"line"`   // 1-based
	Column int `json:"column"` // 1-based
}

func (p Pos) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Span covers the half-open byte range [Start, End).
type Span struct {
	Start Pos `json:"start"`
	End   Pos `json:"end"`
}

func (s Span) String() string {
	return fmt.Sprintf("%s..%s", s.Start, s.End)
}

// Join returns the span from the start of a to the end of b.
func Join(a, b Span) Span {
	return Span{Start: a.Start, End: b.End}
}
