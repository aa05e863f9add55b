// Package scanner implements lexical analysis for Lox source text.
package scanner

import (
	"strconv"

	"lox-lang/internal/diag"
	"lox-lang/internal/token"
)

// Scanner turns source text into tokens in a single left-to-right pass.
type Scanner struct {
	source string

	pos  int // current read position in source
	line int // current line (1-based)
	col  int // current column (1-based)

	diags diag.List
}

// New creates a new Scanner for the given source text.
func New(source string) *Scanner {
	return &Scanner{
		source: source,
		line:   1,
		col:    1,
	}
}

// ScanTokens scans the entire source and returns all tokens, terminated by
// an EOF token, together with any diagnostics. Errors never stop the scan.
func (s *Scanner) ScanTokens() ([]token.Token, diag.List) {
	var tokens []token.Token
	for {
		tok, ok := s.nextToken()
		if !ok {
			continue
		}
		tokens = append(tokens, tok)
		if tok.Kind == token.EOF {
			break
		}
	}
	return tokens, s.diags
}

// ---- internal helpers ----

func (s *Scanner) isAtEnd() bool {
	return s.pos >= len(s.source)
}

// peek returns the current character without advancing, or 0 if at end.
func (s *Scanner) peek() byte {
	if s.isAtEnd() {
		return 0
	}
	return s.source[s.pos]
}

// peekNext returns the character after current, or 0 if at end.
func (s *Scanner) peekNext() byte {
	if s.pos+1 >= len(s.source) {
		return 0
	}
	return s.source[s.pos+1]
}

// advance consumes the current character and returns it.
func (s *Scanner) advance() byte {
	ch := s.source[s.pos]
	s.pos++
	if ch == '\n' {
		s.line++
		s.col = 1
	} else {
		s.col++
	}
	return ch
}

// match consumes the current character only if it equals expected.
func (s *Scanner) match(expected byte) bool {
	if s.isAtEnd() || s.source[s.pos] != expected {
		return false
	}
	s.advance()
	return true
}

func (s *Scanner) curPos() token.Pos {
	return token.Pos{Offset: s.pos, Line: s.line, Column: s.col}
}

func (s *Scanner) makeSpan(start token.Pos) token.Span {
	return token.Span{Start: start, End: s.curPos()}
}

func (s *Scanner) makeToken(kind token.Kind, start token.Pos, literal any) token.Token {
	return token.Token{
		Kind:    kind,
		Lexeme:  s.source[start.Offset:s.pos],
		Literal: literal,
		Span:    s.makeSpan(start),
	}
}

func (s *Scanner) addError(code string, sp token.Span, msg string) {
	s.diags = append(s.diags, diag.ScanError(code, sp, msg))
}

// skipTrivia skips whitespace and line comments.
func (s *Scanner) skipTrivia() {
	for !s.isAtEnd() {
		switch s.peek() {
		case ' ', '\r', '\t', '\n':
			s.advance()
		case '/':
			if s.peekNext() != '/' {
				return
			}
			for !s.isAtEnd() && s.peek() != '\n' {
				s.advance()
			}
		default:
			return
		}
	}
}

// ---- token reading ----

// nextToken reads one token. ok is false when the characters consumed did
// not form a token (an unexpected character was reported instead).
func (s *Scanner) nextToken() (tok token.Token, ok bool) {
	s.skipTrivia()

	start := s.curPos()
	if s.isAtEnd() {
		return token.Token{Kind: token.EOF, Span: s.makeSpan(start)}, true
	}

	ch := s.advance()
	switch ch {
	case '(':
		return s.makeToken(token.LEFT_PAREN, start, nil), true
	case ')':
		return s.makeToken(token.RIGHT_PAREN, start, nil), true
	case '{':
		return s.makeToken(token.LEFT_BRACE, start, nil), true
	case '}':
		return s.makeToken(token.RIGHT_BRACE, start, nil), true
	case ',':
		return s.makeToken(token.COMMA, start, nil), true
	case '.':
		return s.makeToken(token.DOT, start, nil), true
	case '-':
		return s.makeToken(token.MINUS, start, nil), true
	case '+':
		return s.makeToken(token.PLUS, start, nil), true
	case ';':
		return s.makeToken(token.SEMICOLON, start, nil), true
	case '*':
		return s.makeToken(token.STAR, start, nil), true
	case '/':
		return s.makeToken(token.SLASH, start, nil), true
	case '!':
		return s.pick('=', token.BANG_EQUAL, token.BANG, start), true
	case '=':
		return s.pick('=', token.EQUAL_EQUAL, token.EQUAL, start), true
	case '<':
		return s.pick('=', token.LESS_EQUAL, token.LESS, start), true
	case '>':
		return s.pick('=', token.GREATER_EQUAL, token.GREATER, start), true
	case '"':
		return s.readString(start)
	}

	if isDigit(ch) {
		return s.readNumber(start), true
	}
	if isAlpha(ch) {
		return s.readIdentifier(start), true
	}

	s.addError(diag.CodeUnexpectedChar, s.makeSpan(start), "Unexpected character.")
	return token.Token{}, false
}

// pick returns the two-character kind when next matches, otherwise the
// single-character kind.
func (s *Scanner) pick(next byte, long, short token.Kind, start token.Pos) token.Token {
	if s.match(next) {
		return s.makeToken(long, start, nil)
	}
	return s.makeToken(short, start, nil)
}

// readString reads a double-quoted string; the opening quote is consumed.
// Strings may span lines and have no escape sequences.
func (s *Scanner) readString(start token.Pos) (token.Token, bool) {
	for !s.isAtEnd() && s.peek() != '"' {
		s.advance()
	}

	if s.isAtEnd() {
		s.addError(diag.CodeUnterminatedString, s.makeSpan(s.curPos()), "Unterminated string.")
		return token.Token{}, false
	}

	s.advance() // closing "
	value := s.source[start.Offset+1 : s.pos-1]
	return s.makeToken(token.STRING, start, value), true
}

// readNumber reads an integer or decimal literal; the first digit is consumed.
func (s *Scanner) readNumber(start token.Pos) token.Token {
	for isDigit(s.peek()) {
		s.advance()
	}

	// A fractional part needs at least one digit after the dot.
	if s.peek() == '.' && isDigit(s.peekNext()) {
		s.advance()
		for isDigit(s.peek()) {
			s.advance()
		}
	}

	value, _ := strconv.ParseFloat(s.source[start.Offset:s.pos], 64)
	return s.makeToken(token.NUMBER, start, value)
}

// readIdentifier reads an identifier or keyword; the first character is consumed.
func (s *Scanner) readIdentifier(start token.Pos) token.Token {
	for isAlphaNumeric(s.peek()) {
		s.advance()
	}
	kind := token.Lookup(s.source[start.Offset:s.pos])
	return s.makeToken(kind, start, nil)
}

// ---- character classification ----

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isAlpha(ch byte) bool {
	return ch == '_' || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func isAlphaNumeric(ch byte) bool {
	return isAlpha(ch) || isDigit(ch)
}
