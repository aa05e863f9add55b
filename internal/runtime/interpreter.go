package runtime

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"lox-lang/internal/ast"
	"lox-lang/internal/token"
)

// ============================================================
// Control flow signals
// ============================================================

// signal tells the enclosing statement how execution finished.
type signal int

const (
	sigNone   signal = iota
	sigReturn        // return from function
)

// execResult carries a control flow signal and, for returns, the value.
type execResult struct {
	signal signal
	value  Value
}

var resultNone = execResult{signal: sigNone}

// ============================================================
// Interpreter
// ============================================================

// Interpreter walks statement trees against a chain of environments.
// One Interpreter keeps its globals across Interpret calls.
type Interpreter struct {
	globals *Environment
	env     *Environment
	output  io.Writer
	logger  *slog.Logger
	now     func() time.Time
}

// Option configures an Interpreter.
type Option func(*Interpreter)

// WithOutput sets where print statements write. Defaults to os.Stdout.
func WithOutput(w io.Writer) Option {
	return func(i *Interpreter) { i.output = w }
}

// WithLogger sets the logger used for debug tracing.
func WithLogger(l *slog.Logger) Option {
	return func(i *Interpreter) { i.logger = l }
}

// WithClock replaces the time source behind the clock() native.
func WithClock(now func() time.Time) Option {
	return func(i *Interpreter) { i.now = now }
}

// WithGlobals defines extra global bindings. They replace natives of the
// same name.
func WithGlobals(values map[string]Value) Option {
	return func(i *Interpreter) {
		for name, v := range values {
			i.globals.Define(name, v)
		}
	}
}

// NewInterpreter creates an interpreter with the native functions registered.
func NewInterpreter(opts ...Option) *Interpreter {
	globals := NewEnvironment(nil)
	i := &Interpreter{
		globals: globals,
		env:     globals,
		output:  os.Stdout,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:     time.Now,
	}
	RegisterBuiltins(globals, func() time.Time { return i.now() })
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Globals returns the global scope.
func (i *Interpreter) Globals() *Environment {
	return i.globals
}

// Interpret executes statements in order. The first runtime error stops
// execution and is returned; output written before it is kept.
func (i *Interpreter) Interpret(stmts []ast.Stmt) error {
	// A previous call may have failed inside a block.
	i.env = i.globals
	for _, stmt := range stmts {
		if _, err := i.execute(stmt); err != nil {
			i.logger.Debug("runtime error", "line", lineOf(err), "error", err)
			return err
		}
	}
	return nil
}

// Invoke calls callee with already evaluated arguments. at locates errors.
func (i *Interpreter) Invoke(callee Value, args []Value, at token.Token) (Value, error) {
	fn, ok := callee.(Callable)
	if !ok {
		return nil, runtimeErr(NotCallable, at, "Can only call functions and classes.")
	}
	if len(args) != fn.Arity() {
		return nil, runtimeErr(ArityError, at, "Expected %d arguments but got %d.", fn.Arity(), len(args))
	}
	return fn.Call(i, args)
}

// ============================================================
// Statement execution
// ============================================================

func (i *Interpreter) execute(stmt ast.Stmt) (execResult, error) {
	switch s := stmt.(type) {
	case *ast.Expression:
		_, err := i.evaluate(s.Expr)
		return resultNone, err

	case *ast.Print:
		v, err := i.evaluate(s.Expr)
		if err != nil {
			return resultNone, err
		}
		fmt.Fprintln(i.output, v.String())
		return resultNone, nil

	case *ast.Var:
		var val Value = Nil{}
		if s.Init != nil {
			v, err := i.evaluate(s.Init)
			if err != nil {
				return resultNone, err
			}
			val = v
		}
		i.env.Define(s.Name.Lexeme, val)
		return resultNone, nil

	case *ast.Block:
		return i.executeBlock(s.Stmts, NewEnvironment(i.env))

	case *ast.If:
		cond, err := i.evaluate(s.Cond)
		if err != nil {
			return resultNone, err
		}
		if Truthy(cond) {
			return i.execute(s.Then)
		}
		if s.Else != nil {
			return i.execute(s.Else)
		}
		return resultNone, nil

	case *ast.While:
		return i.execWhile(s)

	case *ast.Function:
		i.logger.Debug("define function", "name", s.Name.Lexeme, "line", s.Name.Line())
		i.env.Define(s.Name.Lexeme, NewUserFunction(s, i.env, false))
		return resultNone, nil

	case *ast.Return:
		var val Value = Nil{}
		if s.Value != nil {
			v, err := i.evaluate(s.Value)
			if err != nil {
				return resultNone, err
			}
			val = v
		}
		return execResult{signal: sigReturn, value: val}, nil

	case *ast.Class:
		return i.execClass(s)

	default:
		return resultNone, fmt.Errorf("unhandled statement type: %T", stmt)
	}
}

func (i *Interpreter) execWhile(s *ast.While) (execResult, error) {
	for {
		cond, err := i.evaluate(s.Cond)
		if err != nil {
			return resultNone, err
		}
		if !Truthy(cond) {
			return resultNone, nil
		}

		result, err := i.execute(s.Body)
		if err != nil {
			return resultNone, err
		}
		if result.signal == sigReturn {
			return result, nil
		}
	}
}

// executeBlock runs stmts in blockEnv and restores the previous scope on
// every exit path.
func (i *Interpreter) executeBlock(stmts []ast.Stmt, blockEnv *Environment) (execResult, error) {
	prevEnv := i.env
	i.env = blockEnv
	defer func() { i.env = prevEnv }()

	for _, stmt := range stmts {
		result, err := i.execute(stmt)
		if err != nil {
			return resultNone, err
		}
		if result.signal != sigNone {
			return result, nil
		}
	}
	return resultNone, nil
}

func (i *Interpreter) execClass(s *ast.Class) (execResult, error) {
	var superclass *Class
	if s.Superclass != nil {
		v, err := i.evaluate(s.Superclass)
		if err != nil {
			return resultNone, err
		}
		sc, ok := v.(*Class)
		if !ok {
			return resultNone, runtimeErr(SuperclassNotClass, s.Superclass.Name, "Superclass must be a class.")
		}
		superclass = sc
	}

	// Bind the name first so methods can refer to their own class.
	i.env.Define(s.Name.Lexeme, Nil{})

	methodEnv := i.env
	if superclass != nil {
		methodEnv = NewEnvironment(i.env)
		methodEnv.Define("super", superclass)
	}

	methods := make(map[string]*UserFunction, len(s.Methods))
	for _, m := range s.Methods {
		methods[m.Name.Lexeme] = NewUserFunction(m, methodEnv, m.Name.Lexeme == "init")
	}

	cls := NewClass(s.Name.Lexeme, superclass, methods)
	i.env.Define(s.Name.Lexeme, cls)
	i.logger.Debug("define class", "name", cls.Name, "methods", len(methods), "line", s.Name.Line())
	return resultNone, nil
}

// ============================================================
// Expression evaluation
// ============================================================

func (i *Interpreter) evaluate(expr ast.Expr) (Value, error) {
	switch e := expr.(type) {
	case *ast.Literal:
		return fromLiteral(e.Value), nil
	case *ast.Grouping:
		return i.evaluate(e.Inner)
	case *ast.Unary:
		return i.evalUnary(e)
	case *ast.Binary:
		return i.evalBinary(e)
	case *ast.Logical:
		return i.evalLogical(e)
	case *ast.Variable:
		return i.env.Get(e.Name)
	case *ast.Assign:
		v, err := i.evaluate(e.Value)
		if err != nil {
			return nil, err
		}
		if err := i.env.Assign(e.Name, v); err != nil {
			return nil, err
		}
		return v, nil
	case *ast.Call:
		return i.evalCall(e)
	case *ast.Get:
		return i.evalGet(e)
	case *ast.Set:
		return i.evalSet(e)
	case *ast.This:
		return i.env.Get(e.Keyword)
	case *ast.Super:
		return i.evalSuper(e)
	default:
		return nil, fmt.Errorf("unhandled expression type: %T", expr)
	}
}

func (i *Interpreter) evalUnary(e *ast.Unary) (Value, error) {
	right, err := i.evaluate(e.Right)
	if err != nil {
		return nil, err
	}

	switch e.Op.Kind {
	case token.BANG:
		return Bool(!Truthy(right)), nil
	case token.MINUS:
		n, ok := right.(Number)
		if !ok {
			return nil, runtimeErr(TypeError, e.Op, "Operand must be a number.")
		}
		return -n, nil
	default:
		return nil, runtimeErr(TypeError, e.Op, "Unknown unary operator '%s'.", e.Op.Lexeme)
	}
}

func (i *Interpreter) evalBinary(e *ast.Binary) (Value, error) {
	left, err := i.evaluate(e.Left)
	if err != nil {
		return nil, err
	}
	right, err := i.evaluate(e.Right)
	if err != nil {
		return nil, err
	}

	switch e.Op.Kind {
	case token.EQUAL_EQUAL:
		return Bool(Equal(left, right)), nil
	case token.BANG_EQUAL:
		return Bool(!Equal(left, right)), nil
	case token.PLUS:
		return add(e.Op, left, right)
	}

	l, lok := left.(Number)
	r, rok := right.(Number)
	if !lok || !rok {
		return nil, runtimeErr(TypeError, e.Op, "Operands must be numbers.")
	}

	switch e.Op.Kind {
	case token.MINUS:
		return l - r, nil
	case token.STAR:
		return l * r, nil
	case token.SLASH:
		// IEEE division: x/0 is ±Infinity or NaN, never an error.
		return l / r, nil
	case token.GREATER:
		return Bool(l > r), nil
	case token.GREATER_EQUAL:
		return Bool(l >= r), nil
	case token.LESS:
		return Bool(l < r), nil
	case token.LESS_EQUAL:
		return Bool(l <= r), nil
	default:
		return nil, runtimeErr(TypeError, e.Op, "Unknown binary operator '%s'.", e.Op.Lexeme)
	}
}

// add implements '+': two numbers add, two strings concatenate.
func add(op token.Token, left, right Value) (Value, error) {
	switch l := left.(type) {
	case Number:
		if r, ok := right.(Number); ok {
			return l + r, nil
		}
	case String:
		if r, ok := right.(String); ok {
			return l + r, nil
		}
	}
	return nil, runtimeErr(TypeError, op,
		"Operands must be two numbers or two strings, got %s and %s.", left.TypeName(), right.TypeName())
}

// evalLogical returns an operand, not a coerced boolean.
func (i *Interpreter) evalLogical(e *ast.Logical) (Value, error) {
	left, err := i.evaluate(e.Left)
	if err != nil {
		return nil, err
	}
	if e.Op.Kind == token.OR {
		if Truthy(left) {
			return left, nil
		}
	} else if !Truthy(left) {
		return left, nil
	}
	return i.evaluate(e.Right)
}

func (i *Interpreter) evalCall(e *ast.Call) (Value, error) {
	callee, err := i.evaluate(e.Callee)
	if err != nil {
		return nil, err
	}

	args := make([]Value, len(e.Args))
	for idx, argExpr := range e.Args {
		val, err := i.evaluate(argExpr)
		if err != nil {
			return nil, err
		}
		args[idx] = val
	}

	return i.Invoke(callee, args, e.Paren)
}

func (i *Interpreter) evalGet(e *ast.Get) (Value, error) {
	obj, err := i.evaluate(e.Object)
	if err != nil {
		return nil, err
	}
	inst, ok := obj.(*Instance)
	if !ok {
		return nil, runtimeErr(NotInstance, e.Name, "Only instances have properties.")
	}
	return inst.Get(e.Name)
}

func (i *Interpreter) evalSet(e *ast.Set) (Value, error) {
	obj, err := i.evaluate(e.Object)
	if err != nil {
		return nil, err
	}
	inst, ok := obj.(*Instance)
	if !ok {
		return nil, runtimeErr(NotInstance, e.Name, "Only instances have fields.")
	}

	val, err := i.evaluate(e.Value)
	if err != nil {
		return nil, err
	}
	inst.Set(e.Name, val)
	return val, nil
}

// evalSuper looks the method up starting at the superclass of the class
// whose method contains this expression, and binds it to the current "this".
func (i *Interpreter) evalSuper(e *ast.Super) (Value, error) {
	sv, ok := i.env.Lookup("super")
	if !ok {
		return nil, runtimeErr(UndefinedVariable, e.Keyword, "Can't use 'super' outside of a subclass method.")
	}
	superclass := sv.(*Class)

	tv, ok := i.env.Lookup("this")
	if !ok {
		return nil, runtimeErr(UndefinedVariable, e.Keyword, "Can't use 'super' outside of a method.")
	}
	inst := tv.(*Instance)

	method := superclass.FindMethod(e.Method.Lexeme)
	if method == nil {
		return nil, runtimeErr(UndefinedProperty, e.Method, "Undefined property '%s'.", e.Method.Lexeme)
	}
	return method.Bind(inst), nil
}

func lineOf(err error) int {
	if rerr, ok := err.(*RuntimeError); ok {
		return rerr.Line()
	}
	return 0
}
