// Package runtime implements the interpreter and runtime value system for Lox.
package runtime

import "lox-lang/internal/ast"

// Value is the interface for all runtime values.
type Value interface {
	TypeName() string
	String() string
}

// ---- Primitive values ----

// Nil is the absence of a value.
type Nil struct{}

func (Nil) TypeName() string { return "nil" }
func (Nil) String() string   { return "nil" }

// Bool is a boolean value.
type Bool bool

func (v Bool) TypeName() string { return "boolean" }
func (v Bool) String() string {
	if v {
		return "true"
	}
	return "false"
}

// Number is a double-precision number; Lox has no separate integer type.
type Number float64

func (v Number) TypeName() string { return "number" }
func (v Number) String() string   { return ast.FormatNumber(float64(v)) }

// String is an immutable string value.
type String string

func (v String) TypeName() string { return "string" }
func (v String) String() string   { return string(v) }

// ---- Truthiness and equality ----

// Truthy reports whether v counts as true in a condition. Only nil and
// false are falsy; 0 and "" are truthy.
func Truthy(v Value) bool {
	switch val := v.(type) {
	case Nil:
		return false
	case Bool:
		return bool(val)
	default:
		return true
	}
}

// Equal compares two values without coercion. Values of different kinds
// are never equal. Numbers follow IEEE-754, so NaN != NaN and -0 == 0.
// Functions, classes and instances compare by identity.
func Equal(a, b Value) bool {
	switch av := a.(type) {
	case Nil:
		_, ok := b.(Nil)
		return ok
	case Bool:
		bv, ok := b.(Bool)
		return ok && av == bv
	case Number:
		bv, ok := b.(Number)
		return ok && float64(av) == float64(bv)
	case String:
		bv, ok := b.(String)
		return ok && av == bv
	}
	return a == b
}

// fromLiteral converts a parsed literal to a runtime value.
func fromLiteral(v any) Value {
	switch val := v.(type) {
	case bool:
		return Bool(val)
	case float64:
		return Number(val)
	case string:
		return String(val)
	default:
		return Nil{}
	}
}
