// Package parser implements the syntax analysis for Lox.
// It is a recursive-descent parser with one function per precedence level.
package parser

import (
	"fmt"

	"lox-lang/internal/ast"
	"lox-lang/internal/diag"
	"lox-lang/internal/token"
)

// maxArgs is the most arguments a call, or parameters a function, may have.
const maxArgs = 255

type funcKind int

const (
	kindFunction funcKind = iota
	kindMethod
	kindInitializer
)

func (k funcKind) String() string {
	if k == kindFunction {
		return "function"
	}
	return "method"
}

type classContext struct {
	hasSuper bool
}

// Parser performs syntax analysis on a stream of tokens.
type Parser struct {
	tokens []token.Token
	pos    int
	diags  diag.List

	funcs   []funcKind     // enclosing function kinds, innermost last
	classes []classContext // enclosing classes, innermost last
}

// New creates a new parser from a token slice. The slice must end with EOF,
// which is what the scanner produces.
func New(tokens []token.Token) *Parser {
	return &Parser{tokens: tokens}
}

// Parse parses the whole token stream. It always returns every statement
// that parsed cleanly; malformed statements are dropped after their
// diagnostic is recorded.
func (p *Parser) Parse() ([]ast.Stmt, diag.List) {
	var stmts []ast.Stmt
	for !p.isAtEnd() {
		if stmt := p.declaration(); stmt != nil {
			stmts = append(stmts, stmt)
		}
	}
	return stmts, p.diags
}

// ParseExpression parses a single expression followed by EOF.
func (p *Parser) ParseExpression() (ast.Expr, diag.List) {
	expr, err := p.expression()
	if err == nil && !p.isAtEnd() {
		p.error(diag.CodeExpectToken, p.peek(), "Expect end of expression.")
	}
	return expr, p.diags
}

// ---- navigation helpers ----

func (p *Parser) peek() token.Token {
	if p.pos >= len(p.tokens) {
		return token.Token{Kind: token.EOF}
	}
	return p.tokens[p.pos]
}

func (p *Parser) previous() token.Token {
	if p.pos == 0 {
		return p.peek()
	}
	return p.tokens[p.pos-1]
}

func (p *Parser) isAtEnd() bool {
	return p.peek().Kind == token.EOF
}

func (p *Parser) advance() token.Token {
	if !p.isAtEnd() {
		p.pos++
	}
	return p.previous()
}

func (p *Parser) check(kind token.Kind) bool {
	return p.peek().Kind == kind
}

// match consumes the current token if it is one of kinds.
func (p *Parser) match(kinds ...token.Kind) bool {
	for _, k := range kinds {
		if p.check(k) {
			p.advance()
			return true
		}
	}
	return false
}

// consume expects kind; otherwise it records msg at the current token.
func (p *Parser) consume(kind token.Kind, msg string) (token.Token, error) {
	if p.check(kind) {
		return p.advance(), nil
	}
	return p.peek(), p.error(diag.CodeExpectToken, p.peek(), msg)
}

// error records a diagnostic at tok and returns it so the caller can unwind
// to the nearest declaration boundary.
func (p *Parser) error(code string, tok token.Token, msg string) error {
	d := diag.AtToken(code, tok, msg)
	p.diags = append(p.diags, d)
	return d
}

// ============================================================
// Error recovery
// ============================================================

// synchronize discards tokens until just after a ';' or just before a token
// that starts a declaration or statement.
func (p *Parser) synchronize() {
	p.advance()
	for !p.isAtEnd() {
		if p.previous().Kind == token.SEMICOLON {
			return
		}
		switch p.peek().Kind {
		case token.CLASS, token.FUN, token.VAR, token.FOR,
			token.IF, token.WHILE, token.PRINT, token.RETURN:
			return
		}
		p.advance()
	}
}

// ============================================================
// Declarations
// ============================================================

func (p *Parser) declaration() ast.Stmt {
	var (
		stmt ast.Stmt
		err  error
	)
	switch {
	case p.match(token.CLASS):
		stmt, err = p.classDeclaration()
	case p.match(token.FUN):
		stmt, err = p.function(kindFunction)
	case p.match(token.VAR):
		stmt, err = p.varDeclaration()
	default:
		stmt, err = p.statement()
	}
	if err != nil {
		p.synchronize()
		return nil
	}
	return stmt
}

// classDeclaration parses: class IDENT [ < IDENT ] { function* }
func (p *Parser) classDeclaration() (ast.Stmt, error) {
	start := p.previous()
	name, err := p.consume(token.IDENTIFIER, "Expect class name.")
	if err != nil {
		return nil, err
	}

	decl := &ast.Class{Name: name}
	if p.match(token.LESS) {
		superName, err := p.consume(token.IDENTIFIER, "Expect superclass name.")
		if err != nil {
			return nil, err
		}
		if superName.Lexeme == name.Lexeme {
			p.error(diag.CodeSelfInherit, superName, "A class can't inherit from itself.")
		}
		decl.Superclass = &ast.Variable{ExprBase: exprBase(superName.Span), Name: superName}
	}

	if _, err := p.consume(token.LEFT_BRACE, "Expect '{' before class body."); err != nil {
		return nil, err
	}

	p.classes = append(p.classes, classContext{hasSuper: decl.Superclass != nil})
	defer func() { p.classes = p.classes[:len(p.classes)-1] }()

	for !p.check(token.RIGHT_BRACE) && !p.isAtEnd() {
		kind := kindMethod
		if p.peek().Lexeme == "init" {
			kind = kindInitializer
		}
		method, err := p.function(kind)
		if err != nil {
			return nil, err
		}
		decl.Methods = append(decl.Methods, method)
	}

	if _, err := p.consume(token.RIGHT_BRACE, "Expect '}' after class body."); err != nil {
		return nil, err
	}
	decl.StmtBase = stmtBase(p.spanFrom(start))
	return decl, nil
}

// function parses: IDENT ( params ) block. For named functions the 'fun'
// keyword has already been consumed.
func (p *Parser) function(kind funcKind) (*ast.Function, error) {
	start := p.peek()
	if kind == kindFunction {
		start = p.previous()
	}

	name, err := p.consume(token.IDENTIFIER, fmt.Sprintf("Expect %s name.", kind))
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(token.LEFT_PAREN, fmt.Sprintf("Expect '(' after %s name.", kind)); err != nil {
		return nil, err
	}

	var params []token.Token
	if !p.check(token.RIGHT_PAREN) {
		for {
			if len(params) >= maxArgs {
				p.error(diag.CodeTooManyArgs, p.peek(), "Can't have more than 255 parameters.")
			}
			param, err := p.consume(token.IDENTIFIER, "Expect parameter name.")
			if err != nil {
				return nil, err
			}
			params = append(params, param)
			if !p.match(token.COMMA) {
				break
			}
		}
	}
	if _, err := p.consume(token.RIGHT_PAREN, "Expect ')' after parameters."); err != nil {
		return nil, err
	}
	if _, err := p.consume(token.LEFT_BRACE, fmt.Sprintf("Expect '{' before %s body.", kind)); err != nil {
		return nil, err
	}

	p.funcs = append(p.funcs, kind)
	body, err := p.block()
	p.funcs = p.funcs[:len(p.funcs)-1]
	if err != nil {
		return nil, err
	}

	return &ast.Function{
		StmtBase: stmtBase(p.spanFrom(start)),
		Name:     name,
		Params:   params,
		Body:     body,
	}, nil
}

// varDeclaration parses: var IDENT [ = expr ] ;
func (p *Parser) varDeclaration() (ast.Stmt, error) {
	start := p.previous()
	name, err := p.consume(token.IDENTIFIER, "Expect variable name.")
	if err != nil {
		return nil, err
	}

	var init ast.Expr
	if p.match(token.EQUAL) {
		if init, err = p.expression(); err != nil {
			return nil, err
		}
	}

	if _, err := p.consume(token.SEMICOLON, "Expect ';' after variable declaration."); err != nil {
		return nil, err
	}
	return &ast.Var{StmtBase: stmtBase(p.spanFrom(start)), Name: name, Init: init}, nil
}

// ============================================================
// Statements
// ============================================================

func (p *Parser) statement() (ast.Stmt, error) {
	switch {
	case p.match(token.FOR):
		return p.forStatement()
	case p.match(token.IF):
		return p.ifStatement()
	case p.match(token.PRINT):
		return p.printStatement()
	case p.match(token.RETURN):
		return p.returnStatement()
	case p.match(token.WHILE):
		return p.whileStatement()
	case p.match(token.LEFT_BRACE):
		start := p.previous()
		stmts, err := p.block()
		if err != nil {
			return nil, err
		}
		return &ast.Block{StmtBase: stmtBase(p.spanFrom(start)), Stmts: stmts}, nil
	default:
		return p.expressionStatement()
	}
}

// forStatement parses for (init; cond; incr) body and desugars it into
//
//	{ init; while (cond) { body; incr; } }
func (p *Parser) forStatement() (ast.Stmt, error) {
	start := p.previous()
	if _, err := p.consume(token.LEFT_PAREN, "Expect '(' after 'for'."); err != nil {
		return nil, err
	}

	var (
		init ast.Stmt
		err  error
	)
	switch {
	case p.match(token.SEMICOLON):
	case p.match(token.VAR):
		init, err = p.varDeclaration()
	default:
		init, err = p.expressionStatement()
	}
	if err != nil {
		return nil, err
	}

	var cond ast.Expr
	if !p.check(token.SEMICOLON) {
		if cond, err = p.expression(); err != nil {
			return nil, err
		}
	}
	semi, err := p.consume(token.SEMICOLON, "Expect ';' after loop condition.")
	if err != nil {
		return nil, err
	}

	var incr ast.Expr
	if !p.check(token.RIGHT_PAREN) {
		if incr, err = p.expression(); err != nil {
			return nil, err
		}
	}
	if _, err := p.consume(token.RIGHT_PAREN, "Expect ')' after for clauses."); err != nil {
		return nil, err
	}

	body, err := p.statement()
	if err != nil {
		return nil, err
	}

	if incr != nil {
		body = &ast.Block{
			StmtBase: stmtBase(token.Join(body.GetSpan(), incr.GetSpan())),
			Stmts: []ast.Stmt{
				body,
				&ast.Expression{StmtBase: stmtBase(incr.GetSpan()), Expr: incr},
			},
		}
	}
	if cond == nil {
		cond = &ast.Literal{ExprBase: exprBase(semi.Span), Value: true}
	}
	span := p.spanFrom(start)
	var loop ast.Stmt = &ast.While{StmtBase: stmtBase(span), Cond: cond, Body: body}
	if init != nil {
		loop = &ast.Block{StmtBase: stmtBase(span), Stmts: []ast.Stmt{init, loop}}
	}
	return loop, nil
}

// ifStatement parses: if ( expr ) stmt [ else stmt ]
func (p *Parser) ifStatement() (ast.Stmt, error) {
	start := p.previous()
	if _, err := p.consume(token.LEFT_PAREN, "Expect '(' after 'if'."); err != nil {
		return nil, err
	}
	cond, err := p.expression()
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(token.RIGHT_PAREN, "Expect ')' after if condition."); err != nil {
		return nil, err
	}

	then, err := p.statement()
	if err != nil {
		return nil, err
	}
	var els ast.Stmt
	if p.match(token.ELSE) {
		if els, err = p.statement(); err != nil {
			return nil, err
		}
	}
	return &ast.If{StmtBase: stmtBase(p.spanFrom(start)), Cond: cond, Then: then, Else: els}, nil
}

func (p *Parser) printStatement() (ast.Stmt, error) {
	start := p.previous()
	value, err := p.expression()
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(token.SEMICOLON, "Expect ';' after value."); err != nil {
		return nil, err
	}
	return &ast.Print{StmtBase: stmtBase(p.spanFrom(start)), Expr: value}, nil
}

func (p *Parser) returnStatement() (ast.Stmt, error) {
	keyword := p.previous()
	if len(p.funcs) == 0 {
		p.error(diag.CodeBadContext, keyword, "Can't return from top-level code.")
	}

	var value ast.Expr
	if !p.check(token.SEMICOLON) {
		var err error
		if value, err = p.expression(); err != nil {
			return nil, err
		}
		if len(p.funcs) > 0 && p.funcs[len(p.funcs)-1] == kindInitializer {
			p.error(diag.CodeBadContext, keyword, "Can't return a value from an initializer.")
		}
	}

	if _, err := p.consume(token.SEMICOLON, "Expect ';' after return value."); err != nil {
		return nil, err
	}
	return &ast.Return{StmtBase: stmtBase(p.spanFrom(keyword)), Keyword: keyword, Value: value}, nil
}

func (p *Parser) whileStatement() (ast.Stmt, error) {
	start := p.previous()
	if _, err := p.consume(token.LEFT_PAREN, "Expect '(' after 'while'."); err != nil {
		return nil, err
	}
	cond, err := p.expression()
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(token.RIGHT_PAREN, "Expect ')' after condition."); err != nil {
		return nil, err
	}
	body, err := p.statement()
	if err != nil {
		return nil, err
	}
	return &ast.While{StmtBase: stmtBase(p.spanFrom(start)), Cond: cond, Body: body}, nil
}

// block parses declarations up to the closing brace; '{' is already consumed.
// Declarations that fail are recovered inside the block.
func (p *Parser) block() ([]ast.Stmt, error) {
	var stmts []ast.Stmt
	for !p.check(token.RIGHT_BRACE) && !p.isAtEnd() {
		if stmt := p.declaration(); stmt != nil {
			stmts = append(stmts, stmt)
		}
	}
	if _, err := p.consume(token.RIGHT_BRACE, "Expect '}' after block."); err != nil {
		return nil, err
	}
	return stmts, nil
}

func (p *Parser) expressionStatement() (ast.Stmt, error) {
	expr, err := p.expression()
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(token.SEMICOLON, "Expect ';' after expression."); err != nil {
		return nil, err
	}
	return &ast.Expression{StmtBase: stmtBase(token.Join(expr.GetSpan(), p.previous().Span)), Expr: expr}, nil
}

// ============================================================
// Expressions, lowest precedence first
// ============================================================

func (p *Parser) expression() (ast.Expr, error) {
	return p.assignment()
}

// assignment is right-associative. Only variables and property gets are
// valid targets; anything else is reported without unwinding.
func (p *Parser) assignment() (ast.Expr, error) {
	expr, err := p.or()
	if err != nil {
		return nil, err
	}

	if p.match(token.EQUAL) {
		equals := p.previous()
		value, err := p.assignment()
		if err != nil {
			return nil, err
		}
		span := token.Join(expr.GetSpan(), value.GetSpan())

		switch target := expr.(type) {
		case *ast.Variable:
			return &ast.Assign{ExprBase: exprBase(span), Name: target.Name, Value: value}, nil
		case *ast.Get:
			return &ast.Set{ExprBase: exprBase(span), Object: target.Object, Name: target.Name, Value: value}, nil
		}
		p.error(diag.CodeInvalidTarget, equals, "Invalid assignment target.")
	}
	return expr, nil
}

func (p *Parser) or() (ast.Expr, error) {
	return p.logical(p.and, token.OR)
}

func (p *Parser) and() (ast.Expr, error) {
	return p.logical(p.equality, token.AND)
}

func (p *Parser) logical(next func() (ast.Expr, error), op token.Kind) (ast.Expr, error) {
	expr, err := next()
	if err != nil {
		return nil, err
	}
	for p.match(op) {
		operator := p.previous()
		right, err := next()
		if err != nil {
			return nil, err
		}
		expr = &ast.Logical{
			ExprBase: exprBase(token.Join(expr.GetSpan(), right.GetSpan())),
			Left:     expr,
			Op:       operator,
			Right:    right,
		}
	}
	return expr, nil
}

func (p *Parser) equality() (ast.Expr, error) {
	return p.binary(p.comparison, token.BANG_EQUAL, token.EQUAL_EQUAL)
}

func (p *Parser) comparison() (ast.Expr, error) {
	return p.binary(p.term, token.GREATER, token.GREATER_EQUAL, token.LESS, token.LESS_EQUAL)
}

func (p *Parser) term() (ast.Expr, error) {
	return p.binary(p.factor, token.MINUS, token.PLUS)
}

func (p *Parser) factor() (ast.Expr, error) {
	return p.binary(p.unary, token.SLASH, token.STAR)
}

// binary parses a left-associative chain of ops over operands from next.
func (p *Parser) binary(next func() (ast.Expr, error), ops ...token.Kind) (ast.Expr, error) {
	expr, err := next()
	if err != nil {
		return nil, err
	}
	for p.match(ops...) {
		operator := p.previous()
		right, err := next()
		if err != nil {
			return nil, err
		}
		expr = &ast.Binary{
			ExprBase: exprBase(token.Join(expr.GetSpan(), right.GetSpan())),
			Left:     expr,
			Op:       operator,
			Right:    right,
		}
	}
	return expr, nil
}

func (p *Parser) unary() (ast.Expr, error) {
	if p.match(token.BANG, token.MINUS) {
		operator := p.previous()
		right, err := p.unary()
		if err != nil {
			return nil, err
		}
		return &ast.Unary{
			ExprBase: exprBase(token.Join(operator.Span, right.GetSpan())),
			Op:       operator,
			Right:    right,
		}, nil
	}
	return p.call()
}

func (p *Parser) call() (ast.Expr, error) {
	expr, err := p.primary()
	if err != nil {
		return nil, err
	}

	for {
		switch {
		case p.match(token.LEFT_PAREN):
			if expr, err = p.finishCall(expr); err != nil {
				return nil, err
			}
		case p.match(token.DOT):
			name, err := p.consume(token.IDENTIFIER, "Expect property name after '.'.")
			if err != nil {
				return nil, err
			}
			expr = &ast.Get{
				ExprBase: exprBase(token.Join(expr.GetSpan(), name.Span)),
				Object:   expr,
				Name:     name,
			}
		default:
			return expr, nil
		}
	}
}

// finishCall parses the argument list; '(' is already consumed.
func (p *Parser) finishCall(callee ast.Expr) (ast.Expr, error) {
	var args []ast.Expr
	if !p.check(token.RIGHT_PAREN) {
		for {
			if len(args) >= maxArgs {
				p.error(diag.CodeTooManyArgs, p.peek(), "Can't have more than 255 arguments.")
			}
			arg, err := p.expression()
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
			if !p.match(token.COMMA) {
				break
			}
		}
	}

	paren, err := p.consume(token.RIGHT_PAREN, "Expect ')' after arguments.")
	if err != nil {
		return nil, err
	}
	return &ast.Call{
		ExprBase: exprBase(token.Join(callee.GetSpan(), paren.Span)),
		Callee:   callee,
		Paren:    paren,
		Args:     args,
	}, nil
}

func (p *Parser) primary() (ast.Expr, error) {
	tok := p.peek()

	switch {
	case p.match(token.FALSE):
		return &ast.Literal{ExprBase: exprBase(tok.Span), Value: false}, nil
	case p.match(token.TRUE):
		return &ast.Literal{ExprBase: exprBase(tok.Span), Value: true}, nil
	case p.match(token.NIL):
		return &ast.Literal{ExprBase: exprBase(tok.Span), Value: nil}, nil
	case p.match(token.NUMBER, token.STRING):
		return &ast.Literal{ExprBase: exprBase(tok.Span), Value: tok.Literal}, nil

	case p.match(token.SUPER):
		if _, err := p.consume(token.DOT, "Expect '.' after 'super'."); err != nil {
			return nil, err
		}
		method, err := p.consume(token.IDENTIFIER, "Expect superclass method name.")
		if err != nil {
			return nil, err
		}
		switch {
		case len(p.classes) == 0:
			p.error(diag.CodeBadContext, tok, "Can't use 'super' outside of a class.")
		case !p.classes[len(p.classes)-1].hasSuper:
			p.error(diag.CodeBadContext, tok, "Can't use 'super' in a class with no superclass.")
		}
		return &ast.Super{
			ExprBase: exprBase(token.Join(tok.Span, method.Span)),
			Keyword:  tok,
			Method:   method,
		}, nil

	case p.match(token.THIS):
		if len(p.classes) == 0 {
			p.error(diag.CodeBadContext, tok, "Can't use 'this' outside of a class.")
		}
		return &ast.This{ExprBase: exprBase(tok.Span), Keyword: tok}, nil

	case p.match(token.IDENTIFIER):
		return &ast.Variable{ExprBase: exprBase(tok.Span), Name: tok}, nil

	case p.match(token.LEFT_PAREN):
		inner, err := p.expression()
		if err != nil {
			return nil, err
		}
		if _, err := p.consume(token.RIGHT_PAREN, "Expect ')' after expression."); err != nil {
			return nil, err
		}
		return &ast.Grouping{ExprBase: exprBase(p.spanFrom(tok)), Inner: inner}, nil
	}

	return nil, p.error(diag.CodeExpectExpression, tok, "Expect expression.")
}

// ============================================================
// Span helpers
// ============================================================

// spanFrom returns the span from start to the end of the last consumed token.
func (p *Parser) spanFrom(start token.Token) token.Span {
	return token.Join(start.Span, p.previous().Span)
}

func exprBase(s token.Span) ast.ExprBase {
	return ast.ExprBase{NodeBase: ast.NodeBase{Span: s}}
}

func stmtBase(s token.Span) ast.StmtBase {
	return ast.StmtBase{NodeBase: ast.NodeBase{Span: s}}
}
