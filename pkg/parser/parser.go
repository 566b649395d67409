// Package parser turns a Language token stream into the ast package's
// syntax tree via recursive descent, one method per grammar production.
package parser

import (
	"fmt"

	"covlang/pkg/ast"
	"covlang/pkg/lexer"
)

// Parser consumes tokens produced by pkg/lexer and builds an ast.Program.
type Parser struct {
	toks []lexer.Token
	pos  int
}

// New tokenizes input and builds a Parser over the result.
func New(input string) (*Parser, error) {
	toks, err := lexer.Tokenize(input)
	if err != nil {
		return nil, err
	}
	return &Parser{toks: toks}, nil
}

// ParseProgram parses the whole token stream as a sequence of statements.
func (p *Parser) ParseProgram() (*ast.Program, error) {
	var stmts []ast.Stmt
	for !p.atEnd() {
		s, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, s)
	}
	return ast.NewProgram(1, stmts), nil
}

// ParseProgramString is a convenience wrapper combining New and
// ParseProgram.
func ParseProgramString(input string) (*ast.Program, error) {
	p, err := New(input)
	if err != nil {
		return nil, err
	}
	return p.ParseProgram()
}

func (p *Parser) atEnd() bool { return p.cur().Kind == lexer.EOF }

func (p *Parser) cur() lexer.Token { return p.toks[p.pos] }

func (p *Parser) advance() lexer.Token {
	t := p.cur()
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return t
}

func (p *Parser) check(kind lexer.Kind, text string) bool {
	t := p.cur()
	return t.Kind == kind && t.Text == text
}

func (p *Parser) match(kind lexer.Kind, text string) bool {
	if p.check(kind, text) {
		p.advance()
		return true
	}
	return false
}

func (p *Parser) expect(kind lexer.Kind, text string) (lexer.Token, error) {
	if !p.check(kind, text) {
		return lexer.Token{}, fmt.Errorf("parser: line %d: expected %q, got %q", p.cur().Line, text, p.cur().Text)
	}
	return p.advance(), nil
}

func (p *Parser) expectKind(kind lexer.Kind) (lexer.Token, error) {
	if p.cur().Kind != kind {
		return lexer.Token{}, fmt.Errorf("parser: line %d: expected %s, got %q", p.cur().Line, kindLabel(kind), p.cur().Text)
	}
	return p.advance(), nil
}

func kindLabel(k lexer.Kind) string {
	switch k {
	case lexer.Ident:
		return "identifier"
	default:
		return "token"
	}
}

// --- Statements ---

func (p *Parser) parseStatement() (ast.Stmt, error) {
	t := p.cur()
	if t.Kind == lexer.Keyword {
		switch t.Text {
		case "import":
			return p.parseImport()
		case "package":
			return p.parsePackage()
		case "using":
			return p.parseUsing()
		case "namespace":
			return p.parseNamespace()
		case "var":
			return p.parseVarDecl()
		case "const":
			return p.parseConstDecl()
		case "if":
			return p.parseIf()
		case "while":
			return p.parseWhile(false)
		case "until":
			return p.parseWhile(true)
		case "for":
			return p.parseFor()
		case "foreach":
			return p.parseForeach()
		case "break":
			line := p.advance().Line
			p.match(lexer.Punct, ";")
			return ast.NewBreakStmt(line), nil
		case "continue":
			line := p.advance().Line
			p.match(lexer.Punct, ";")
			return ast.NewContinueStmt(line), nil
		case "function":
			return p.parseFuncDecl()
		case "return":
			return p.parseReturn()
		case "struct":
			return p.parseStructDecl()
		case "try":
			return p.parseTry()
		case "throw":
			return p.parseThrow()
		}
	}
	if p.check(lexer.Punct, "{") {
		return p.parseBlock()
	}
	return p.parseExprStmt()
}

func (p *Parser) parseImport() (ast.Stmt, error) {
	line := p.advance().Line
	path, err := p.expectKind(lexer.String)
	if err != nil {
		return nil, err
	}
	p.match(lexer.Punct, ";")
	return ast.NewImportStmt(line, path.Text), nil
}

func (p *Parser) parsePackage() (ast.Stmt, error) {
	line := p.advance().Line
	name, err := p.expectKind(lexer.Ident)
	if err != nil {
		return nil, err
	}
	p.match(lexer.Punct, ";")
	return ast.NewPackageStmt(line, name.Text), nil
}

func (p *Parser) parseUsing() (ast.Stmt, error) {
	line := p.advance().Line
	name, err := p.expectKind(lexer.Ident)
	if err != nil {
		return nil, err
	}
	p.match(lexer.Punct, ";")
	return ast.NewUsingStmt(line, name.Text), nil
}

func (p *Parser) parseNamespace() (ast.Stmt, error) {
	line := p.advance().Line
	name, err := p.expectKind(lexer.Ident)
	if err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return ast.NewNamespaceStmt(line, name.Text, body), nil
}

func (p *Parser) parseVarDecl() (ast.Stmt, error) {
	line := p.advance().Line
	name, err := p.expectKind(lexer.Ident)
	if err != nil {
		return nil, err
	}
	var value ast.Expr
	if p.match(lexer.Op, "=") {
		value, err = p.parseExpr()
		if err != nil {
			return nil, err
		}
	}
	p.match(lexer.Punct, ";")
	return ast.NewVarDecl(line, name.Text, value), nil
}

func (p *Parser) parseConstDecl() (ast.Stmt, error) {
	line := p.advance().Line
	name, err := p.expectKind(lexer.Ident)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.Op, "="); err != nil {
		return nil, err
	}
	value, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	p.match(lexer.Punct, ";")
	return ast.NewConstDecl(line, name.Text, value), nil
}

func (p *Parser) parseBlock() (*ast.Block, error) {
	open, err := p.expect(lexer.Punct, "{")
	if err != nil {
		return nil, err
	}
	var stmts []ast.Stmt
	for !p.check(lexer.Punct, "}") {
		if p.atEnd() {
			return nil, fmt.Errorf("parser: line %d: unclosed block", open.Line)
		}
		s, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, s)
	}
	p.advance() // consume '}'
	return ast.NewBlock(open.Line, stmts), nil
}

func (p *Parser) parseIf() (ast.Stmt, error) {
	line := p.advance().Line
	if _, err := p.expect(lexer.Punct, "("); err != nil {
		return nil, err
	}
	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.Punct, ")"); err != nil {
		return nil, err
	}
	then, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	var els ast.Stmt
	if p.match(lexer.Keyword, "else") {
		if p.check(lexer.Keyword, "if") {
			els, err = p.parseIf()
		} else {
			els, err = p.parseBlock()
		}
		if err != nil {
			return nil, err
		}
	}
	return ast.NewIfStmt(line, cond, then, els), nil
}

func (p *Parser) parseWhile(negated bool) (ast.Stmt, error) {
	line := p.advance().Line
	if _, err := p.expect(lexer.Punct, "("); err != nil {
		return nil, err
	}
	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.Punct, ")"); err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return ast.NewWhileStmt(line, cond, body, negated), nil
}

func (p *Parser) parseFor() (ast.Stmt, error) {
	line := p.advance().Line
	if _, err := p.expect(lexer.Punct, "("); err != nil {
		return nil, err
	}
	var init ast.Stmt
	var err error
	if !p.check(lexer.Punct, ";") {
		if p.check(lexer.Keyword, "var") {
			init, err = p.parseVarDecl()
		} else {
			init, err = p.parseExprStmt()
		}
		if err != nil {
			return nil, err
		}
	} else {
		p.advance()
	}

	var cond ast.Expr
	if !p.check(lexer.Punct, ";") {
		cond, err = p.parseExpr()
		if err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(lexer.Punct, ";"); err != nil {
		return nil, err
	}

	var post ast.Stmt
	if !p.check(lexer.Punct, ")") {
		postExpr, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		post = ast.NewExprStmt(postExpr.Line(), postExpr)
	}
	if _, err := p.expect(lexer.Punct, ")"); err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return ast.NewForStmt(line, init, cond, post, body), nil
}

func (p *Parser) parseForeach() (ast.Stmt, error) {
	line := p.advance().Line
	if _, err := p.expect(lexer.Punct, "("); err != nil {
		return nil, err
	}
	name, err := p.expectKind(lexer.Ident)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.Keyword, "in"); err != nil {
		return nil, err
	}
	iter, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.Punct, ")"); err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return ast.NewForeachStmt(line, name.Text, iter, body), nil
}

func (p *Parser) parseFuncDecl() (ast.Stmt, error) {
	line := p.advance().Line
	override := false
	if p.match(lexer.Keyword, "override") {
		override = true
	}
	name, err := p.expectKind(lexer.Ident)
	if err != nil {
		return nil, err
	}
	params, err := p.parseParamList()
	if err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return ast.NewFuncDecl(line, name.Text, params, body, override), nil
}

func (p *Parser) parseParamList() ([]string, error) {
	if _, err := p.expect(lexer.Punct, "("); err != nil {
		return nil, err
	}
	var params []string
	for !p.check(lexer.Punct, ")") {
		name, err := p.expectKind(lexer.Ident)
		if err != nil {
			return nil, err
		}
		params = append(params, name.Text)
		if !p.match(lexer.Punct, ",") {
			break
		}
	}
	if _, err := p.expect(lexer.Punct, ")"); err != nil {
		return nil, err
	}
	return params, nil
}

func (p *Parser) parseReturn() (ast.Stmt, error) {
	line := p.advance().Line
	var value ast.Expr
	if !p.check(lexer.Punct, ";") && !p.check(lexer.Punct, "}") {
		var err error
		value, err = p.parseExpr()
		if err != nil {
			return nil, err
		}
	}
	p.match(lexer.Punct, ";")
	return ast.NewReturnStmt(line, value), nil
}

func (p *Parser) parseStructDecl() (ast.Stmt, error) {
	line := p.advance().Line
	name, err := p.expectKind(lexer.Ident)
	if err != nil {
		return nil, err
	}
	extends := ""
	if p.match(lexer.Keyword, "extends") {
		base, err := p.expectKind(lexer.Ident)
		if err != nil {
			return nil, err
		}
		extends = base.Text
	}
	if _, err := p.expect(lexer.Punct, "{"); err != nil {
		return nil, err
	}
	var fields []string
	var methods []*ast.FuncDecl
	for !p.check(lexer.Punct, "}") {
		if p.check(lexer.Keyword, "function") {
			m, err := p.parseFuncDecl()
			if err != nil {
				return nil, err
			}
			methods = append(methods, m.(*ast.FuncDecl))
			continue
		}
		fieldName, err := p.expectKind(lexer.Ident)
		if err != nil {
			return nil, err
		}
		fields = append(fields, fieldName.Text)
		p.match(lexer.Punct, ";")
	}
	p.advance() // consume '}'
	return ast.NewStructDecl(line, name.Text, extends, fields, methods), nil
}

func (p *Parser) parseTry() (ast.Stmt, error) {
	line := p.advance().Line
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.Keyword, "catch"); err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.Punct, "("); err != nil {
		return nil, err
	}
	catchVar, err := p.expectKind(lexer.Ident)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.Punct, ")"); err != nil {
		return nil, err
	}
	catch, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return ast.NewTryStmt(line, body, catchVar.Text, catch), nil
}

func (p *Parser) parseThrow() (ast.Stmt, error) {
	line := p.advance().Line
	value, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	p.match(lexer.Punct, ";")
	return ast.NewThrowStmt(line, value), nil
}

func (p *Parser) parseExprStmt() (ast.Stmt, error) {
	x, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	p.match(lexer.Punct, ";")
	return ast.NewExprStmt(x.Line(), x), nil
}

// --- Expressions, lowest to highest precedence ---

func (p *Parser) parseExpr() (ast.Expr, error) { return p.parseAssign() }

func (p *Parser) parseAssign() (ast.Expr, error) {
	left, err := p.parseLogicalOr()
	if err != nil {
		return nil, err
	}
	if p.cur().Kind == lexer.Op {
		switch p.cur().Text {
		case "=", "+=", "-=", "*=", "/=":
			op := p.advance().Text
			value, err := p.parseAssign()
			if err != nil {
				return nil, err
			}
			return ast.NewAssignExpr(left.Line(), left, op, value), nil
		}
	}
	return left, nil
}

func (p *Parser) parseLogicalOr() (ast.Expr, error) {
	return p.parseBinaryLevel(p.parseLogicalAnd, "||")
}

func (p *Parser) parseLogicalAnd() (ast.Expr, error) {
	return p.parseBinaryLevel(p.parseEquality, "&&")
}

func (p *Parser) parseEquality() (ast.Expr, error) {
	return p.parseBinaryLevel(p.parseComparison, "==", "!=")
}

func (p *Parser) parseComparison() (ast.Expr, error) {
	return p.parseBinaryLevel(p.parseAdditive, "<", ">", "<=", ">=")
}

func (p *Parser) parseAdditive() (ast.Expr, error) {
	return p.parseBinaryLevel(p.parseMultiplicative, "+", "-")
}

func (p *Parser) parseMultiplicative() (ast.Expr, error) {
	return p.parseBinaryLevel(p.parseUnary, "*", "/", "%")
}

func (p *Parser) parseBinaryLevel(next func() (ast.Expr, error), ops ...string) (ast.Expr, error) {
	left, err := next()
	if err != nil {
		return nil, err
	}
	for p.cur().Kind == lexer.Op && containsOp(ops, p.cur().Text) {
		op := p.advance().Text
		right, err := next()
		if err != nil {
			return nil, err
		}
		left = ast.NewBinaryExpr(left.Line(), op, left, right)
	}
	return left, nil
}

func containsOp(ops []string, op string) bool {
	for _, o := range ops {
		if o == op {
			return true
		}
	}
	return false
}

func (p *Parser) parseUnary() (ast.Expr, error) {
	if p.cur().Kind == lexer.Op && (p.cur().Text == "-" || p.cur().Text == "!") {
		op := p.advance()
		x, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return ast.NewUnaryExpr(op.Line, op.Text, x), nil
	}
	return p.parsePostfix()
}

func (p *Parser) parsePostfix() (ast.Expr, error) {
	x, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for {
		switch {
		case p.check(lexer.Punct, "."):
			p.advance()
			name, err := p.expectKind(lexer.Ident)
			if err != nil {
				return nil, err
			}
			x = ast.NewMemberAccess(x.Line(), x, name.Text)
		case p.check(lexer.Punct, "("):
			args, err := p.parseArgList()
			if err != nil {
				return nil, err
			}
			x = ast.NewCall(x.Line(), x, args)
		case p.check(lexer.Punct, "["):
			p.advance()
			idx, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(lexer.Punct, "]"); err != nil {
				return nil, err
			}
			x = ast.NewIndexExpr(x.Line(), x, idx)
		default:
			return x, nil
		}
	}
}

func (p *Parser) parseArgList() ([]ast.Expr, error) {
	if _, err := p.expect(lexer.Punct, "("); err != nil {
		return nil, err
	}
	var args []ast.Expr
	for !p.check(lexer.Punct, ")") {
		a, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		args = append(args, a)
		if !p.match(lexer.Punct, ",") {
			break
		}
	}
	if _, err := p.expect(lexer.Punct, ")"); err != nil {
		return nil, err
	}
	return args, nil
}

func (p *Parser) parsePrimary() (ast.Expr, error) {
	t := p.cur()
	switch {
	case t.Kind == lexer.Number:
		p.advance()
		return ast.NewNumberLit(t.Line, t.Text), nil
	case t.Kind == lexer.String:
		p.advance()
		return ast.NewStringLit(t.Line, t.Text), nil
	case t.Kind == lexer.Char:
		p.advance()
		return ast.NewCharLit(t.Line, t.Text), nil
	case t.Kind == lexer.Keyword && t.Text == "true":
		p.advance()
		return ast.NewBoolLit(t.Line, true), nil
	case t.Kind == lexer.Keyword && t.Text == "false":
		p.advance()
		return ast.NewBoolLit(t.Line, false), nil
	case t.Kind == lexer.Keyword && t.Text == "null":
		p.advance()
		return ast.NewNullLit(t.Line), nil
	case t.Kind == lexer.Keyword && t.Text == "this":
		p.advance()
		return ast.NewThisExpr(t.Line), nil
	case t.Kind == lexer.Ident:
		p.advance()
		return ast.NewIdent(t.Line, t.Text), nil
	case t.Kind == lexer.Punct && t.Text == "(":
		p.advance()
		x, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.Punct, ")"); err != nil {
			return nil, err
		}
		return x, nil
	}
	return nil, fmt.Errorf("parser: line %d: unexpected token %q", t.Line, t.Text)
}
