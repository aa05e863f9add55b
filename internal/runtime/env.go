package runtime

import "lox-lang/internal/token"

// Environment is one lexical scope in a chain of scopes.
//
// Scopes are shared by pointer: every closure created inside a scope holds
// the same *Environment, so writes through one closure are visible to the
// others and the scope outlives the block or call that created it.
type Environment struct {
	values    map[string]Value
	enclosing *Environment
}

// NewEnvironment creates a scope nested in enclosing, which may be nil for
// the global scope.
func NewEnvironment(enclosing *Environment) *Environment {
	return &Environment{
		values:    make(map[string]Value),
		enclosing: enclosing,
	}
}

// Enclosing returns the next-outer scope, or nil for the global scope.
func (e *Environment) Enclosing() *Environment {
	return e.enclosing
}

// Define binds name in this scope, overwriting any existing binding here.
// Outer scopes are never touched.
func (e *Environment) Define(name string, value Value) {
	e.values[name] = value
}

// Get looks up a variable by walking the scope chain.
func (e *Environment) Get(name token.Token) (Value, error) {
	if v, ok := e.Lookup(name.Lexeme); ok {
		return v, nil
	}
	return nil, undefinedVariable(name)
}

// Lookup is Get without an error, for names that are not source tokens.
func (e *Environment) Lookup(name string) (Value, bool) {
	for env := e; env != nil; env = env.enclosing {
		if val, exists := env.values[name]; exists {
			return val, true
		}
	}
	return nil, false
}

// Assign updates the nearest existing binding of name.
func (e *Environment) Assign(name token.Token, value Value) error {
	for env := e; env != nil; env = env.enclosing {
		if _, exists := env.values[name.Lexeme]; exists {
			env.values[name.Lexeme] = value
			return nil
		}
	}
	return undefinedVariable(name)
}

// Names returns the names bound directly in this scope.
func (e *Environment) Names() []string {
	names := make([]string, 0, len(e.values))
	for name := range e.values {
		names = append(names, name)
	}
	return names
}
