package runtime

import (
	"errors"
	"math"
	"sort"
	"testing"

	"lox-lang/internal/token"
)

func ident(name string, line int) token.Token {
	return token.Token{Kind: token.IDENTIFIER, Lexeme: name, Span: token.Span{
		Start: token.Pos{Line: line, Column: 1},
		End:   token.Pos{Line: line, Column: 1 + len(name)},
	}}
}

func TestEnvironmentChain(t *testing.T) {
	global := NewEnvironment(nil)
	global.Define("a", Number(1))
	inner := NewEnvironment(global)
	inner.Define("b", Number(2))

	if v, err := inner.Get(ident("a", 1)); err != nil || v != Number(1) {
		t.Errorf("Get(a) = %v, %v", v, err)
	}
	if _, err := global.Get(ident("b", 1)); err == nil {
		t.Error("outer scope must not see inner bindings")
	}
	if inner.Enclosing() != global || global.Enclosing() != nil {
		t.Error("unexpected enclosing chain")
	}
}

func TestEnvironmentAssignNearest(t *testing.T) {
	global := NewEnvironment(nil)
	global.Define("x", String("outer"))
	inner := NewEnvironment(global)

	if err := inner.Assign(ident("x", 1), String("changed")); err != nil {
		t.Fatalf("Assign: %v", err)
	}
	if v, _ := global.Lookup("x"); v != String("changed") {
		t.Errorf("global x = %v", v)
	}
	if names := inner.Names(); len(names) != 0 {
		t.Errorf("assign must not define locally, got %v", names)
	}
}

func TestEnvironmentAssignUndefined(t *testing.T) {
	env := NewEnvironment(nil)
	err := env.Assign(ident("ghost", 7), Nil{})
	if !errors.Is(err, ErrUndefined) {
		t.Fatalf("expected ErrUndefined, got %v", err)
	}
	if err.Error() != "Undefined variable 'ghost'.\n[line 7]" {
		t.Errorf("error = %q", err.Error())
	}
}

func TestEnvironmentNames(t *testing.T) {
	env := NewEnvironment(nil)
	env.Define("b", Nil{})
	env.Define("a", Nil{})
	env.Define("a", Bool(true))

	names := env.Names()
	sort.Strings(names)
	if len(names) != 2 || names[0] != "a" || names[1] != "b" {
		t.Errorf("Names() = %v", names)
	}
}

func TestValueStrings(t *testing.T) {
	tests := []struct {
		value    Value
		str      string
		typeName string
	}{
		{Nil{}, "nil", "nil"},
		{Bool(true), "true", "boolean"},
		{Bool(false), "false", "boolean"},
		{Number(3), "3", "number"},
		{Number(-0.5), "-0.5", "number"},
		{Number(1e21), "1000000000000000000000", "number"},
		{Number(math.Inf(1)), "Infinity", "number"},
		{String("hi"), "hi", "string"},
		{NewClass("Foo", nil, nil), "Foo", "class"},
		{NewInstance(NewClass("Foo", nil, nil)), "Foo instance", "instance"},
	}

	for _, tt := range tests {
		if got := tt.value.String(); got != tt.str {
			t.Errorf("%#v.String() = %q, want %q", tt.value, got, tt.str)
		}
		if got := tt.value.TypeName(); got != tt.typeName {
			t.Errorf("%#v.TypeName() = %q, want %q", tt.value, got, tt.typeName)
		}
	}
}

func TestEqualIdentity(t *testing.T) {
	cls := NewClass("A", nil, nil)
	a, b := NewInstance(cls), NewInstance(cls)

	if !Equal(a, a) {
		t.Error("instance must equal itself")
	}
	if Equal(a, b) {
		t.Error("distinct instances must not be equal")
	}
	if Equal(Number(0), Bool(false)) || Equal(String(""), Nil{}) {
		t.Error("values of different kinds must not be equal")
	}
	if Equal(Number(math.NaN()), Number(math.NaN())) {
		t.Error("NaN must not equal NaN")
	}
}
