// Package parser implements a recursive-descent, precedence-climbing parser
// that turns a token stream into an *ast.Program.
//
// Unlike a scanner that stops at the first syntax error, this parser
// recovers: on error it records a diagnostic and synchronizes to the next
// statement boundary (a NEWLINE or a keyword that can start a statement) so
// that a single source file can report more than one mistake per run.
package parser

import (
	"fmt"
	"strconv"
	"strings"

	"nyxlang/ast"
	"nyxlang/lexer"
	"nyxlang/token"
)

// ParseError describes a single recovered syntax error.
type ParseError struct {
	Line    int
	Column  int
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("[line %d] Error: %s", e.Line, e.Message)
}

// Parser consumes a pre-scanned token slice (NEWLINE tokens included) and
// builds an AST.
type Parser struct {
	src    []byte
	toks   []token.Token
	idx    int
	errors []*ParseError
}

// New scans src and returns a Parser positioned at the first token.
func New(src []byte) *Parser {
	toks := lexer.All(src)
	return &Parser{src: src, toks: toks}
}

// Errors returns every diagnostic recorded during Parse.
func (p *Parser) Errors() []*ParseError { return p.errors }

// Parse parses the whole token stream into a Program. It never stops at the
// first error: callers should check Errors() afterward.
func (p *Parser) Parse() *ast.Program {
	prog := &ast.Program{}
	p.skipNewlines()
	for !p.atEnd() {
		prog.Statements = append(prog.Statements, p.declaration())
		p.skipNewlines()
	}
	return prog
}

// ---- token plumbing --------------------------------------------------

func (p *Parser) current() token.Token { return p.toks[p.idx] }

func (p *Parser) previous() token.Token {
	if p.idx > 0 {
		return p.toks[p.idx-1]
	}
	return p.current()
}

func (p *Parser) atEnd() bool { return p.current().Kind == token.EOF }

func (p *Parser) advance() token.Token {
	tok := p.current()
	if !p.atEnd() {
		p.idx++
	}
	return tok
}

func (p *Parser) check(k token.Kind) bool {
	return !p.atEnd() && p.current().Kind == k
}

func (p *Parser) match(kinds ...token.Kind) bool {
	for _, k := range kinds {
		if p.check(k) {
			p.advance()
			return true
		}
	}
	return false
}

func (p *Parser) consume(k token.Kind, msg string) token.Token {
	if p.check(k) {
		return p.advance()
	}
	p.errorAt(p.current(), msg)
	return p.current()
}

func (p *Parser) skipNewlines() {
	for p.check(token.NEWLINE) {
		p.advance()
	}
}

// endStatement consumes the statement terminator: a NEWLINE, a ';', or the
// end of the file/block. It does not error if none is present, mirroring
// lenient optional-semicolon handling.
func (p *Parser) endStatement() {
	for p.check(token.NEWLINE) || p.check(token.SEMICOLON) {
		p.advance()
	}
}

func (p *Parser) errorAt(tok token.Token, msg string) {
	e := &ParseError{Line: tok.Line, Column: tok.Column, Message: msg}
	p.errors = append(p.errors, e)
	p.synchronize()
}

// synchronize discards tokens until it reaches a likely statement boundary,
// so one mistake doesn't cascade into a wall of further errors.
func (p *Parser) synchronize() {
	for !p.atEnd() {
		if p.previous().Kind == token.NEWLINE || p.previous().Kind == token.SEMICOLON {
			return
		}
		switch p.current().Kind {
		case token.FN, token.IF, token.WHILE, token.FOR, token.RETURN,
			token.MATCH, token.DEFER, token.AT, token.BREAK, token.CONTINUE:
			return
		}
		p.advance()
	}
}

// ---- declarations & statements ----------------------------------------

func (p *Parser) declaration() ast.Stmt {
	switch {
	case p.check(token.FN):
		// `fn name(...)` declares; `fn(...)` at statement position is an
		// anonymous function expression.
		if p.peekAt(1).Kind == token.LPAREN {
			return p.exprOrDeclStmt()
		}
		return p.fnDecl()
	default:
		return p.statement()
	}
}

func (p *Parser) fnDecl() ast.Stmt {
	p.advance() // 'fn'
	name := p.consume(token.IDENT, "expect function name after 'fn'")
	p.consume(token.LPAREN, "expect '(' after function name")
	var params []string
	if !p.check(token.RPAREN) {
		params = append(params, p.consume(token.IDENT, "expect parameter name").Lexeme(p.src))
		for p.match(token.COMMA) {
			p.skipNewlines()
			params = append(params, p.consume(token.IDENT, "expect parameter name").Lexeme(p.src))
		}
	}
	p.consume(token.RPAREN, "expect ')' after parameters")
	p.returnTypeAnnotation()
	p.consume(token.LBRACE, "expect '{' before function body")
	body := p.block()
	return &ast.FnDecl{Name: name.Lexeme(p.src), Params: params, Body: body}
}

func (p *Parser) statement() ast.Stmt {
	switch {
	case p.check(token.IF):
		return p.ifStmt()
	case p.check(token.WHILE):
		return p.whileStmt()
	case p.check(token.FOR):
		return p.forStmt()
	case p.check(token.MATCH):
		return p.matchStmt()
	case p.check(token.DEFER):
		return p.deferStmt()
	case p.check(token.AT):
		return p.directiveStmt()
	case p.check(token.RETURN):
		return p.returnStmt()
	case p.check(token.BREAK):
		p.advance()
		p.endStatement()
		return &ast.BreakStmt{}
	case p.check(token.CONTINUE):
		p.advance()
		p.endStatement()
		return &ast.ContinueStmt{}
	case p.check(token.LBRACE):
		p.advance()
		return p.block()
	default:
		return p.exprOrDeclStmt()
	}
}

// exprOrDeclStmt handles both `name := expr` / `name :: expr` declarations
// and bare expression statements, disambiguated by one token of lookahead.
func (p *Parser) exprOrDeclStmt() ast.Stmt {
	if p.check(token.IDENT) {
		next := p.peekAt(1)
		if next.Kind == token.COLONEQ || next.Kind == token.COLONCOLON {
			return p.varDecl()
		}
	}
	expr := p.expression()
	p.endStatement()
	return &ast.ExprStmt{Expr: expr}
}

func (p *Parser) peekAt(n int) token.Token {
	if p.idx+n < len(p.toks) {
		return p.toks[p.idx+n]
	}
	return p.toks[len(p.toks)-1]
}

func (p *Parser) varDecl() ast.Stmt {
	nameTok := p.advance()
	isConst := p.current().Kind == token.COLONCOLON
	p.advance() // := or ::
	init := p.expression()
	p.endStatement()
	return &ast.VarDecl{Name: nameTok.Lexeme(p.src), Init: init, IsConst: isConst}
}

func (p *Parser) ifStmt() ast.Stmt {
	p.advance() // 'if'
	return p.ifTail()
}

// ifTail parses the condition/body/else-chain shared by "if" and "elif",
// since an elif clause is just another if-tail nested in Else.
func (p *Parser) ifTail() ast.Stmt {
	cond := p.expression()
	p.consume(token.LBRACE, "expect '{' after if condition")
	then := p.block()
	stmt := &ast.IfStmt{Cond: cond, Then: then}
	p.skipNewlines()
	switch {
	case p.match(token.ELIF):
		stmt.Else = p.ifTail()
	case p.match(token.ELSE):
		p.consume(token.LBRACE, "expect '{' after else")
		stmt.Else = p.block()
	}
	return stmt
}

func (p *Parser) whileStmt() ast.Stmt {
	p.advance()
	cond := p.expression()
	p.consume(token.LBRACE, "expect '{' after while condition")
	body := p.block()
	return &ast.WhileStmt{Cond: cond, Body: body}
}

func (p *Parser) forStmt() ast.Stmt {
	p.advance()
	name := p.consume(token.IDENT, "expect loop variable name")
	p.consume(token.IN, "expect 'in' after loop variable")
	iterable := p.expression()
	p.consume(token.LBRACE, "expect '{' after for clause")
	body := p.block()
	return &ast.ForStmt{IterName: name.Lexeme(p.src), Iterable: iterable, Body: body}
}

func (p *Parser) matchStmt() ast.Stmt {
	p.advance()
	value := p.expression()
	p.consume(token.LBRACE, "expect '{' after match value")
	p.skipNewlines()
	var arms []ast.MatchArm
	for !p.check(token.RBRACE) && !p.atEnd() {
		var pattern ast.Expr
		if p.check(token.UNDERSCORE) {
			p.advance()
		} else {
			pattern = p.expression()
		}
		p.consume(token.ARROW, "expect '=>' after match pattern")
		body := p.matchArmBody()
		arms = append(arms, ast.MatchArm{Pattern: pattern, Body: body})
		p.skipNewlines()
		if p.check(token.COMMA) {
			p.advance()
			p.skipNewlines()
		}
	}
	p.consume(token.RBRACE, "expect '}' after match arms")
	return &ast.MatchStmt{Value: value, Arms: arms}
}

// matchArmBody parses a match arm's body, which may be a block or a single
// expression: either an explicit `{ ... }` block, or a single expression
// wrapped in a synthetic one-statement block so execMatch can run every arm
// body through execBlock uniformly.
func (p *Parser) matchArmBody() *ast.Block {
	if p.check(token.LBRACE) {
		p.advance()
		return p.block()
	}
	expr := p.expression()
	return &ast.Block{Statements: []ast.Stmt{&ast.ExprStmt{Expr: expr}}}
}

func (p *Parser) deferStmt() ast.Stmt {
	p.advance()
	stmt := p.statement()
	return &ast.DeferStmt{Stmt: stmt}
}

// directiveStmt parses an '@'-prefixed directive. The only two legal
// directive names are "import" and "c"; anything else is a syntax error.
// Directive names are matched by lexeme rather than reserved in the keyword
// table, so a bare `import` or `c` used as an ordinary identifier elsewhere
// in a program stays legal.
func (p *Parser) directiveStmt() ast.Stmt {
	p.advance() // '@'
	if !p.check(token.IDENT) {
		p.errorAt(p.current(), "expect a directive name after '@'")
		return &ast.ExprStmt{Expr: &ast.NilLiteral{}}
	}
	nameTok := p.current()
	name := nameTok.Lexeme(p.src)
	switch name {
	case "import":
		p.advance()
		return p.importStmt()
	case "c":
		p.advance()
		return p.cBlockStmt()
	default:
		p.errorAt(nameTok, "unknown directive '@"+name+"'")
		return &ast.ExprStmt{Expr: &ast.NilLiteral{}}
	}
}

func (p *Parser) importStmt() ast.Stmt {
	pathTok := p.consume(token.STRING, "expect a string path after '@import'")
	p.endStatement()
	raw := pathTok.Lexeme(p.src)
	path := lexer.Unescape(raw)
	return &ast.ImportStmt{Path: path}
}

// cBlockStmt captures the raw source bytes between the braces of an `@c {
// ... }` block by counting brace balance directly over the source buffer,
// not over already-scanned tokens: the block's contents are C, not Nyx, and
// may not tokenize. Once the matching close brace is found, the parser's
// token cursor is fast-forwarded past every token swallowed by the raw span
// before resuming normal token-driven parsing.
func (p *Parser) cBlockStmt() ast.Stmt {
	lbrace := p.consume(token.LBRACE, "expect '{' after '@c'")
	start := lbrace.End
	depth := 1
	end := start
	for end < len(p.src) && depth > 0 {
		switch p.src[end] {
		case '{':
			depth++
		case '}':
			depth--
		}
		if depth > 0 {
			end++
		}
	}
	code := string(p.src[start:end])
	for !p.atEnd() && p.current().Start < end {
		p.advance()
	}
	p.consume(token.RBRACE, "expect '}' to close '@c' block")
	p.endStatement()
	return &ast.CBlock{Code: code}
}

func (p *Parser) returnStmt() ast.Stmt {
	p.advance()
	if p.check(token.NEWLINE) || p.check(token.SEMICOLON) || p.check(token.RBRACE) || p.atEnd() {
		p.endStatement()
		return &ast.ReturnStmt{}
	}
	val := p.expression()
	p.endStatement()
	return &ast.ReturnStmt{Value: val}
}

func (p *Parser) block() *ast.Block {
	p.skipNewlines()
	var stmts []ast.Stmt
	for !p.check(token.RBRACE) && !p.atEnd() {
		stmts = append(stmts, p.declaration())
		p.skipNewlines()
	}
	p.consume(token.RBRACE, "expect '}' to close block")
	return &ast.Block{Statements: stmts}
}

// ---- expressions --------------------------------------------------------

func (p *Parser) expression() ast.Expr {
	return p.assignment()
}

func (p *Parser) assignment() ast.Expr {
	expr := p.logicOr()

	if p.check(token.EQ) {
		tok := p.advance()
		value := p.assignment()
		switch expr.(type) {
		case *ast.Identifier, *ast.IndexExpr, *ast.FieldExpr:
			return &ast.AssignExpr{Target: expr, Value: value}
		default:
			p.errorAt(tok, "invalid assignment target")
			return expr
		}
	}
	return expr
}

func (p *Parser) logicOr() ast.Expr {
	expr := p.logicAnd()
	for p.check(token.OR) {
		p.advance()
		p.skipNewlines()
		right := p.logicAnd()
		expr = &ast.LogicalExpr{Op: token.OR, Left: expr, Right: right}
	}
	return expr
}

func (p *Parser) logicAnd() ast.Expr {
	expr := p.equality()
	for p.check(token.AND) {
		p.advance()
		p.skipNewlines()
		right := p.equality()
		expr = &ast.LogicalExpr{Op: token.AND, Left: expr, Right: right}
	}
	return expr
}

func (p *Parser) equality() ast.Expr {
	expr := p.comparison()
	for p.check(token.EQEQ) || p.check(token.BANGEQ) {
		op := p.advance().Kind
		p.skipNewlines()
		right := p.comparison()
		expr = &ast.BinaryExpr{Op: op, Left: expr, Right: right}
	}
	return expr
}

func (p *Parser) comparison() ast.Expr {
	expr := p.rangeExpr()
	for p.check(token.LT) || p.check(token.GT) || p.check(token.LTEQ) || p.check(token.GTEQ) {
		op := p.advance().Kind
		p.skipNewlines()
		right := p.rangeExpr()
		expr = &ast.BinaryExpr{Op: op, Left: expr, Right: right}
	}
	return expr
}

func (p *Parser) rangeExpr() ast.Expr {
	expr := p.additive()
	if p.check(token.DOTDOT) {
		p.advance()
		p.skipNewlines()
		end := p.additive()
		return &ast.RangeExpr{Start: expr, End: end}
	}
	return expr
}

func (p *Parser) additive() ast.Expr {
	expr := p.multiplicative()
	for p.check(token.PLUS) || p.check(token.MINUS) {
		op := p.advance().Kind
		p.skipNewlines()
		right := p.multiplicative()
		expr = &ast.BinaryExpr{Op: op, Left: expr, Right: right}
	}
	return expr
}

func (p *Parser) multiplicative() ast.Expr {
	expr := p.unary()
	for p.check(token.STAR) || p.check(token.SLASH) || p.check(token.PERCENT) {
		op := p.advance().Kind
		p.skipNewlines()
		right := p.unary()
		expr = &ast.BinaryExpr{Op: op, Left: expr, Right: right}
	}
	return expr
}

func (p *Parser) unary() ast.Expr {
	if p.check(token.BANG) || p.check(token.MINUS) {
		op := p.advance().Kind
		operand := p.unary()
		return &ast.UnaryExpr{Op: op, Operand: operand}
	}
	if p.check(token.AMP) {
		p.advance()
		operand := p.unary()
		return &ast.AddressOf{Operand: operand}
	}
	return p.call()
}

func (p *Parser) call() ast.Expr {
	expr := p.primary()
	for {
		switch {
		case p.check(token.LPAREN):
			expr = p.finishCall(expr)
		case p.check(token.DOT):
			p.advance()
			name := p.consume(token.IDENT, "expect field name after '.'")
			expr = &ast.FieldExpr{Object: expr, Name: name.Lexeme(p.src)}
		case p.check(token.LBRACKET):
			p.advance()
			index := p.expression()
			p.consume(token.RBRACKET, "expect ']' after index")
			expr = &ast.IndexExpr{Object: expr, Index: index}
		default:
			return expr
		}
	}
}

func (p *Parser) finishCall(callee ast.Expr) ast.Expr {
	p.advance() // '('
	var args []ast.Expr
	p.skipNewlines()
	if !p.check(token.RPAREN) {
		args = append(args, p.expression())
		for p.match(token.COMMA) {
			p.skipNewlines()
			args = append(args, p.expression())
		}
	}
	p.skipNewlines()
	p.consume(token.RPAREN, "expect ')' after arguments")
	return &ast.CallExpr{Callee: callee, Args: args}
}

func (p *Parser) primary() ast.Expr {
	tok := p.current()
	switch {
	case p.match(token.TRUE):
		n := &ast.BoolLiteral{Value: true}
		n.Tok = tok
		return n
	case p.match(token.FALSE):
		n := &ast.BoolLiteral{Value: false}
		n.Tok = tok
		return n
	case p.match(token.NIL):
		n := &ast.NilLiteral{}
		n.Tok = tok
		return n
	case p.match(token.INT):
		n := &ast.IntLiteral{Value: parseInt(tok.Lexeme(p.src))}
		n.Tok = tok
		return n
	case p.match(token.FLOAT):
		n := &ast.FloatLiteral{Value: parseFloat(tok.Lexeme(p.src))}
		n.Tok = tok
		return n
	case p.match(token.STRING):
		n := &ast.StringLiteral{Value: lexer.Unescape(tok.Lexeme(p.src))}
		n.Tok = tok
		return n
	case p.match(token.IDENT):
		return ast.NewIdentifier(tok, tok.Lexeme(p.src))
	case p.match(token.FN):
		return p.lambda()
	case p.check(token.LBRACKET):
		return p.arrayLiteral()
	case p.check(token.LBRACE):
		return p.tableLiteral()
	case p.match(token.LPAREN):
		p.skipNewlines()
		expr := p.expression()
		p.skipNewlines()
		p.consume(token.RPAREN, "expect ')' after expression")
		return expr
	default:
		p.errorAt(tok, fmt.Sprintf("unexpected token %s", tok.Kind))
		p.advance()
		return &ast.NilLiteral{}
	}
}

func (p *Parser) lambda() ast.Expr {
	p.consume(token.LPAREN, "expect '(' after 'fn'")
	var params []string
	if !p.check(token.RPAREN) {
		params = append(params, p.consume(token.IDENT, "expect parameter name").Lexeme(p.src))
		for p.match(token.COMMA) {
			p.skipNewlines()
			params = append(params, p.consume(token.IDENT, "expect parameter name").Lexeme(p.src))
		}
	}
	p.consume(token.RPAREN, "expect ')' after parameters")
	p.returnTypeAnnotation()
	p.consume(token.LBRACE, "expect '{' before lambda body")
	body := p.block()
	return &ast.Lambda{Params: params, Body: body}
}

// returnTypeAnnotation consumes an optional `-> T` clause. The annotation is
// accepted and discarded: the evaluator is dynamically typed and never reads
// it.
func (p *Parser) returnTypeAnnotation() {
	if p.match(token.RARROW) {
		p.consume(token.IDENT, "expect return type after '->'")
	}
}

func (p *Parser) arrayLiteral() ast.Expr {
	p.advance() // '['
	p.skipNewlines()
	var elems []ast.Expr
	if !p.check(token.RBRACKET) {
		elems = append(elems, p.expression())
		p.skipNewlines()
		for p.match(token.COMMA) {
			p.skipNewlines()
			if p.check(token.RBRACKET) {
				break
			}
			elems = append(elems, p.expression())
			p.skipNewlines()
		}
	}
	p.consume(token.RBRACKET, "expect ']' after array elements")
	return &ast.ArrayLiteral{Elements: elems}
}

func (p *Parser) tableLiteral() ast.Expr {
	p.advance() // '{'
	p.skipNewlines()
	var entries []ast.TableEntry
	for !p.check(token.RBRACE) && !p.atEnd() {
		var key string
		if p.check(token.STRING) {
			key = lexer.Unescape(p.advance().Lexeme(p.src))
		} else {
			key = p.consume(token.IDENT, "expect table key").Lexeme(p.src)
		}
		p.consume(token.COLON, "expect ':' after table key")
		p.skipNewlines()
		val := p.expression()
		entries = append(entries, ast.TableEntry{Key: key, Value: val})
		p.skipNewlines()
		if !p.match(token.COMMA) {
			break
		}
		p.skipNewlines()
	}
	p.consume(token.RBRACE, "expect '}' after table entries")
	return &ast.TableLiteral{Entries: entries}
}

// parseInt and parseFloat strip the '_' digit separators the lexer allows
// through before handing the literal to strconv; base is auto-detected from
// a leading "0x"/"0X" prefix.
func parseInt(lexeme string) int64 {
	clean := strings.ReplaceAll(lexeme, "_", "")
	v, _ := strconv.ParseInt(clean, 0, 64)
	return v
}

func parseFloat(lexeme string) float64 {
	clean := strings.ReplaceAll(lexeme, "_", "")
	v, _ := strconv.ParseFloat(clean, 64)
	return v
}
