package runtime

import (
	"fmt"

	"lox-lang/internal/ast"
	"lox-lang/internal/token"
)

// Callable is implemented by every value that can appear before "(...)".
// Call may assume len(args) == Arity(); Interpreter.Invoke checks it.
type Callable interface {
	Value
	Arity() int
	Call(interp *Interpreter, args []Value) (Value, error)
}

var (
	_ Callable = (*NativeFunction)(nil)
	_ Callable = (*UserFunction)(nil)
	_ Callable = (*Class)(nil)
)

// ---- Native functions ----

// NativeFn is the Go signature for built-in functions.
type NativeFn func(args []Value) (Value, error)

// NativeFunction is a function implemented in Go.
type NativeFunction struct {
	Name   string
	Params int
	Fn     NativeFn
}

func (f *NativeFunction) TypeName() string { return "function" }
func (f *NativeFunction) String() string   { return "<native fn>" }
func (f *NativeFunction) Arity() int       { return f.Params }

func (f *NativeFunction) Call(_ *Interpreter, args []Value) (Value, error) {
	return f.Fn(args)
}

// ---- User functions ----

// UserFunction is a closure: a function declaration paired with the scope
// it was declared in.
type UserFunction struct {
	decl          *ast.Function
	closure       *Environment
	isInitializer bool
}

// NewUserFunction creates a closure over env.
func NewUserFunction(decl *ast.Function, env *Environment, isInitializer bool) *UserFunction {
	return &UserFunction{decl: decl, closure: env, isInitializer: isInitializer}
}

func (f *UserFunction) TypeName() string { return "function" }
func (f *UserFunction) String() string   { return fmt.Sprintf("<fn %s>", f.decl.Name.Lexeme) }
func (f *UserFunction) Arity() int       { return len(f.decl.Params) }

// Call runs the body in a fresh scope whose parent is the closure. An
// initializer always yields its receiver, whatever the body returns.
func (f *UserFunction) Call(interp *Interpreter, args []Value) (Value, error) {
	env := NewEnvironment(f.closure)
	for idx, param := range f.decl.Params {
		env.Define(param.Lexeme, args[idx])
	}

	result, err := interp.executeBlock(f.decl.Body, env)
	if err != nil {
		return nil, err
	}

	if f.isInitializer {
		this, _ := f.closure.Lookup("this")
		return this, nil
	}
	if result.signal == sigReturn {
		return result.value, nil
	}
	return Nil{}, nil
}

// Bind returns a copy of f whose closure defines "this" as inst.
func (f *UserFunction) Bind(inst *Instance) *UserFunction {
	env := NewEnvironment(f.closure)
	env.Define("this", inst)
	return &UserFunction{decl: f.decl, closure: env, isInitializer: f.isInitializer}
}

// ---- Classes ----

// Class is a class value. Calling it constructs an Instance.
type Class struct {
	Name       string
	Superclass *Class
	methods    map[string]*UserFunction
}

// NewClass creates a class with the given methods.
func NewClass(name string, superclass *Class, methods map[string]*UserFunction) *Class {
	return &Class{Name: name, Superclass: superclass, methods: methods}
}

func (c *Class) TypeName() string { return "class" }
func (c *Class) String() string   { return c.Name }

// FindMethod looks up name on c, then up the superclass chain.
func (c *Class) FindMethod(name string) *UserFunction {
	for cls := c; cls != nil; cls = cls.Superclass {
		if m, ok := cls.methods[name]; ok {
			return m
		}
	}
	return nil
}

// Arity is the initializer's arity, or 0 without one.
func (c *Class) Arity() int {
	if init := c.FindMethod("init"); init != nil {
		return init.Arity()
	}
	return 0
}

// Call creates an instance and runs its initializer, if any.
func (c *Class) Call(interp *Interpreter, args []Value) (Value, error) {
	inst := NewInstance(c)
	if init := c.FindMethod("init"); init != nil {
		if _, err := init.Bind(inst).Call(interp, args); err != nil {
			return nil, err
		}
	}
	return inst, nil
}

// ---- Instances ----

// Instance is an object created by calling a class.
type Instance struct {
	Class  *Class
	fields map[string]Value
}

// NewInstance creates an instance of c with no fields.
func NewInstance(c *Class) *Instance {
	return &Instance{Class: c, fields: make(map[string]Value)}
}

func (i *Instance) TypeName() string { return "instance" }
func (i *Instance) String() string   { return i.Class.Name + " instance" }

// Get returns a field, or else a method bound to this instance.
func (i *Instance) Get(name token.Token) (Value, error) {
	if v, ok := i.fields[name.Lexeme]; ok {
		return v, nil
	}
	if m := i.Class.FindMethod(name.Lexeme); m != nil {
		return m.Bind(i), nil
	}
	return nil, runtimeErr(UndefinedProperty, name, "Undefined property '%s'.", name.Lexeme)
}

// Set writes a field on this instance. Fields shadow methods of the same name.
func (i *Instance) Set(name token.Token, value Value) {
	i.fields[name.Lexeme] = value
}
