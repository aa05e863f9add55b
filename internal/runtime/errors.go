package runtime

import (
	"errors"
	"fmt"

	"lox-lang/internal/token"
)

// ErrorKind classifies runtime failures.
type ErrorKind int

const (
	TypeError ErrorKind = iota
	ArityError
	UndefinedVariable
	UndefinedProperty
	NotCallable
	NotInstance
	SuperclassNotClass
)

// Sentinel errors, one per kind, so callers can use errors.Is. The
// not-callable, not-instance and superclass errors are also type errors.
var (
	ErrType        = errors.New("type error")
	ErrArity       = errors.New("arity error")
	ErrUndefined   = errors.New("undefined variable")
	ErrProperty    = errors.New("undefined property")
	ErrNotCallable = fmt.Errorf("not callable: %w", ErrType)
	ErrNotInstance = fmt.Errorf("not an instance: %w", ErrType)
	ErrSuperclass  = fmt.Errorf("superclass must be a class: %w", ErrType)
)

var kindErrors = map[ErrorKind]error{
	TypeError:          ErrType,
	ArityError:         ErrArity,
	UndefinedVariable:  ErrUndefined,
	UndefinedProperty:  ErrProperty,
	NotCallable:        ErrNotCallable,
	NotInstance:        ErrNotInstance,
	SuperclassNotClass: ErrSuperclass,
}

// Stable runtime error codes, reported alongside scan/parse codes.
var kindCodes = map[ErrorKind]string{
	TypeError:          "E3001",
	ArityError:         "E3002",
	UndefinedVariable:  "E3003",
	UndefinedProperty:  "E3004",
	NotCallable:        "E3005",
	NotInstance:        "E3006",
	SuperclassNotClass: "E3007",
}

// RuntimeError is a failure during evaluation, located at Token.
type RuntimeError struct {
	Kind    ErrorKind
	Message string
	Token   token.Token
}

// Error renders "{message}\n[line N]".
func (e *RuntimeError) Error() string {
	return fmt.Sprintf("%s\n[line %d]", e.Message, e.Token.Line())
}

// Unwrap exposes the sentinel for the error's kind.
func (e *RuntimeError) Unwrap() error {
	return kindErrors[e.Kind]
}

// Code returns the stable code for the error's kind.
func (e *RuntimeError) Code() string {
	return kindCodes[e.Kind]
}

// Line returns the source line the error was raised at.
func (e *RuntimeError) Line() int {
	return e.Token.Line()
}

func runtimeErr(kind ErrorKind, tok token.Token, format string, args ...any) *RuntimeError {
	return &RuntimeError{Kind: kind, Message: fmt.Sprintf(format, args...), Token: tok}
}

func undefinedVariable(name token.Token) *RuntimeError {
	return runtimeErr(UndefinedVariable, name, "Undefined variable '%s'.", name.Lexeme)
}
