// Copyright (c) 2026 The Tacc Contributors
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program. If not, see <http://www.gnu.org/licenses/>.

package ast

import (
	"tacc/diag"
	"tacc/token"
	"tacc/utils"
)

// Parser builds an AST from a token sequence using Pratt/precedence-climbing
// for expressions. It aborts on the first error; there is no
// error recovery.
type Parser struct {
	toks []token.Token
	pos  int
}

// NewParser creates a Parser over a complete token sequence (as produced by
// lexer.Lex), terminated by token.EOF.
func NewParser(toks []token.Token) *Parser {
	return &Parser{toks: toks}
}

func (p *Parser) cur() token.Token { return p.toks[p.pos] }

func (p *Parser) advance() token.Token {
	t := p.toks[p.pos]
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return t
}

func (p *Parser) expect(kind token.Kind) (token.Token, error) {
	if p.cur().Kind != kind {
		return token.Token{}, diag.New(diag.Syntactic, "expectedToken: expected %s, found %s", kind, p.cur())
	}
	return p.advance(), nil
}

// -----------------------------------------------------------------------------
// Types

func (p *Parser) parseTypeSpecifier() (CType, error) {
	switch p.cur().Kind {
	case token.KwUnsigned:
		p.advance()
		switch p.cur().Kind {
		case token.KwLong:
			p.advance()
			return CUnsignedLong, nil
		case token.KwInt:
			p.advance()
			return CUnsignedInt, nil
		default:
			return CUnsignedInt, nil
		}
	case token.KwLong:
		p.advance()
		return CLong, nil
	case token.KwInt:
		p.advance()
		return CInt, nil
	default:
		return 0, diag.New(diag.Syntactic, "expectedToken: expected a type specifier, found %s", p.cur())
	}
}

// -----------------------------------------------------------------------------
// Top level

// Parse parses the whole token sequence into a Program.
func (p *Parser) Parse() (*Program, error) {
	prog := &Program{}
	for p.cur().Kind != token.EOF {
		item, err := p.parseTopLevel()
		if err != nil {
			return nil, err
		}
		prog.Items = append(prog.Items, item)
	}
	return prog, nil
}

func (p *Parser) parseTopLevel() (TopLevel, error) {
	isStatic := false
	if p.cur().Kind == token.KwStatic {
		p.advance()
		isStatic = true
	}

	// void is only legal as a function's return type or empty param list;
	// the type system has no void, so a void-returning function is carried
	// as int and its value simply never read.
	var retType CType
	if p.cur().Kind == token.KwVoid {
		p.advance()
		retType = CInt
	} else {
		t, err := p.parseTypeSpecifier()
		if err != nil {
			return nil, err
		}
		retType = t
	}

	name, err := p.expect(token.Ident)
	if err != nil {
		return nil, err
	}

	if p.cur().Kind == token.LParen {
		return p.parseFunctionTail(name.Lexeme, retType, isStatic)
	}
	return p.parseDeclarationTail(name.Lexeme, retType, isStatic)
}

func (p *Parser) parseFunctionTail(name string, retType CType, isStatic bool) (*Function, error) {
	if _, err := p.expect(token.LParen); err != nil {
		return nil, err
	}
	var paramNames []string
	var paramTypes []CType
	if p.cur().Kind == token.KwVoid {
		p.advance()
	} else if p.cur().Kind != token.RParen {
		for {
			t, err := p.parseTypeSpecifier()
			if err != nil {
				return nil, err
			}
			n, err := p.expect(token.Ident)
			if err != nil {
				return nil, err
			}
			paramNames = append(paramNames, n.Lexeme)
			paramTypes = append(paramTypes, t)
			if p.cur().Kind == token.Comma {
				p.advance()
				continue
			}
			break
		}
	}
	if _, err := p.expect(token.RParen); err != nil {
		return nil, err
	}
	if _, err := p.expect(token.LBrace); err != nil {
		return nil, err
	}
	body, err := p.parseCompoundTail()
	if err != nil {
		return nil, err
	}
	return &Function{
		Name: name, ReturnType: retType,
		ParamNames: paramNames, ParamTypes: paramTypes,
		Body: body, IsStatic: isStatic,
	}, nil
}

func (p *Parser) parseDeclarationTail(name string, typ CType, isStatic bool) (*Declaration, error) {
	decl := &Declaration{Name: name, Type: typ, IsStatic: isStatic}
	if p.cur().Kind == token.Assign {
		p.advance()
		init, err := p.parseExpression(0)
		if err != nil {
			return nil, err
		}
		decl.Init = init
	}
	if _, err := p.expect(token.Semicolon); err != nil {
		return nil, err
	}
	return decl, nil
}

// -----------------------------------------------------------------------------
// Statements

func (p *Parser) parseCompoundTail() (*CompoundStmt, error) {
	var items []BlockItem
	for p.cur().Kind != token.RBrace {
		item, err := p.parseBlockItem()
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if _, err := p.expect(token.RBrace); err != nil {
		return nil, err
	}
	return &CompoundStmt{Items: items}, nil
}

func (p *Parser) parseBlockItem() (BlockItem, error) {
	if p.cur().Kind.IsTypeSpecifier() || p.cur().Kind == token.KwStatic {
		return p.parseLocalDeclaration()
	}
	return p.parseStatement()
}

func (p *Parser) parseLocalDeclaration() (*Declaration, error) {
	isStatic := false
	if p.cur().Kind == token.KwStatic {
		p.advance()
		isStatic = true
	}
	typ, err := p.parseTypeSpecifier()
	if err != nil {
		return nil, err
	}
	name, err := p.expect(token.Ident)
	if err != nil {
		return nil, err
	}
	return p.parseDeclarationTail(name.Lexeme, typ, isStatic)
}

func (p *Parser) parseStatement() (Stmt, error) {
	switch p.cur().Kind {
	case token.KwReturn:
		p.advance()
		expr, err := p.parseExpression(0)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.Semicolon); err != nil {
			return nil, err
		}
		return &ReturnStmt{Expr: expr}, nil

	case token.KwIf:
		return p.parseIfStmt()

	case token.LBrace:
		p.advance()
		return p.parseCompoundTail()

	case token.KwWhile:
		p.advance()
		if _, err := p.expect(token.LParen); err != nil {
			return nil, err
		}
		cond, err := p.parseExpression(0)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.RParen); err != nil {
			return nil, err
		}
		body, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		return &WhileStmt{Cond: cond, Body: body}, nil

	case token.KwDo:
		p.advance()
		body, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.KwWhile); err != nil {
			return nil, err
		}
		if _, err := p.expect(token.LParen); err != nil {
			return nil, err
		}
		cond, err := p.parseExpression(0)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.RParen); err != nil {
			return nil, err
		}
		if _, err := p.expect(token.Semicolon); err != nil {
			return nil, err
		}
		return &DoWhileStmt{Body: body, Cond: cond}, nil

	case token.KwFor:
		return p.parseForStmt()

	case token.KwBreak:
		p.advance()
		if _, err := p.expect(token.Semicolon); err != nil {
			return nil, err
		}
		return &BreakStmt{}, nil

	case token.KwContinue:
		p.advance()
		if _, err := p.expect(token.Semicolon); err != nil {
			return nil, err
		}
		return &ContinueStmt{}, nil

	case token.Semicolon:
		p.advance()
		return &ExprStmt{Expr: nil}, nil

	default:
		expr, err := p.parseExpression(0)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.Semicolon); err != nil {
			return nil, err
		}
		return &ExprStmt{Expr: expr}, nil
	}
}

func (p *Parser) parseIfStmt() (Stmt, error) {
	p.advance()
	if _, err := p.expect(token.LParen); err != nil {
		return nil, err
	}
	cond, err := p.parseExpression(0)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RParen); err != nil {
		return nil, err
	}
	then, err := p.parseStatement()
	if err != nil {
		return nil, err
	}
	stmt := &IfStmt{Cond: cond, Then: then}
	if p.cur().Kind == token.KwElse {
		p.advance()
		elseStmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		stmt.Else = elseStmt
	}
	return stmt, nil
}

func (p *Parser) parseForStmt() (Stmt, error) {
	p.advance()
	if _, err := p.expect(token.LParen); err != nil {
		return nil, err
	}
	init, err := p.parseForInit()
	if err != nil {
		return nil, err
	}
	var cond Expr
	if p.cur().Kind != token.Semicolon {
		cond, err = p.parseExpression(0)
		if err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(token.Semicolon); err != nil {
		return nil, err
	}
	var post Expr
	if p.cur().Kind != token.RParen {
		post, err = p.parseExpression(0)
		if err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(token.RParen); err != nil {
		return nil, err
	}
	body, err := p.parseStatement()
	if err != nil {
		return nil, err
	}
	return &ForStmt{Init: init, Cond: cond, Post: post, Body: body}, nil
}

func (p *Parser) parseForInit() (ForInit, error) {
	if p.cur().Kind.IsTypeSpecifier() {
		typ, err := p.parseTypeSpecifier()
		if err != nil {
			return nil, err
		}
		name, err := p.expect(token.Ident)
		if err != nil {
			return nil, err
		}
		decl, err := p.parseDeclarationTail(name.Lexeme, typ, false)
		if err != nil {
			return nil, err
		}
		return &ForInitDecl{Decl: decl}, nil
	}
	var expr Expr
	if p.cur().Kind != token.Semicolon {
		var err error
		expr, err = p.parseExpression(0)
		if err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(token.Semicolon); err != nil {
		return nil, err
	}
	return &ForInitExpr{Expr: expr}, nil
}

// -----------------------------------------------------------------------------
// Expressions — Pratt / precedence climbing

// precedence returns the binding power of a binary operator token, and
// whether tok is a binary operator at all.
func precedence(k token.Kind) (int, BinaryOp, bool) {
	switch k {
	case token.Star:
		return 50, Multiply, true
	case token.Slash:
		return 50, Divide, true
	case token.Percent:
		return 50, Remainder, true
	case token.Plus:
		return 45, Add, true
	case token.Minus:
		return 45, Subtract, true
	case token.Shl:
		return 40, ShiftLeft, true
	case token.Shr:
		return 40, ShiftRight, true
	case token.Less:
		return 35, LessThan, true
	case token.LessEq:
		return 35, LessThanOrEqual, true
	case token.Greater:
		return 35, GreaterThan, true
	case token.GreaterEq:
		return 35, GreaterThanOrEqual, true
	case token.Eq:
		return 30, Equal, true
	case token.NotEq:
		return 30, NotEqual, true
	case token.Amp:
		return 25, BitwiseAnd, true
	case token.Caret:
		return 20, BitwiseXor, true
	case token.Pipe:
		return 15, BitwiseOr, true
	case token.LogAnd:
		return 10, LogicalAnd, true
	case token.LogOr:
		return 5, LogicalOr, true
	default:
		return 0, 0, false
	}
}

const (
	ternaryPrec    = 3
	assignmentPrec = 1
)

// parseExpression parses at binding power minPrec and above, climbing the
// precedence table one binary operator at a time.
func (p *Parser) parseExpression(minPrec int) (Expr, error) {
	left, err := p.parseFactor()
	if err != nil {
		return nil, err
	}

	for {
		tok := p.cur().Kind
		switch {
		case tok.IsAssignment() && assignmentPrec >= minPrec:
			if !IsLvalue(left) {
				return nil, diag.New(diag.Syntactic, "unexpectedToken: assignment target must be an lvalue, found %s", left)
			}
			op := p.advance().Kind
			right, err := p.parseExpression(assignmentPrec)
			if err != nil {
				return nil, err
			}
			if op == token.Assign {
				left = &AssignExpr{Left: left, Right: right}
			} else {
				binOp := compoundToBinary(op)
				left = &AssignExpr{Left: left, Right: &BinaryExpr{Op: binOp, Left: left, Right: right}}
			}

		case tok == token.Question && ternaryPrec >= minPrec:
			p.advance()
			then, err := p.parseExpression(0)
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(token.Colon); err != nil {
				return nil, err
			}
			els, err := p.parseExpression(ternaryPrec)
			if err != nil {
				return nil, err
			}
			left = &ConditionalExpr{Cond: left, Then: then, Else: els}

		default:
			prec, op, isBinOp := precedence(tok)
			if !isBinOp || prec < minPrec {
				return left, nil
			}
			p.advance()
			right, err := p.parseExpression(prec + 1)
			if err != nil {
				return nil, err
			}
			left = &BinaryExpr{Op: op, Left: left, Right: right}
		}
	}
}

func compoundToBinary(k token.Kind) BinaryOp {
	base, ok := token.CompoundOps[k]
	utils.Assert(ok, "not a compound-assignment token: %s", k)
	_, op, _ := precedence(base)
	return op
}

// parseFactor parses a unary-prefix'd primary followed by zero or more
// postfix ++/--.
func (p *Parser) parseFactor() (Expr, error) {
	switch p.cur().Kind {
	case token.Minus:
		p.advance()
		operand, err := p.parseFactor()
		if err != nil {
			return nil, err
		}
		return &UnaryExpr{Op: Negate, Operand: operand}, nil
	case token.Complement:
		p.advance()
		operand, err := p.parseFactor()
		if err != nil {
			return nil, err
		}
		return &UnaryExpr{Op: Complement, Operand: operand}, nil
	case token.LogNot:
		p.advance()
		operand, err := p.parseFactor()
		if err != nil {
			return nil, err
		}
		return &UnaryExpr{Op: LogicalNot, Operand: operand}, nil
	case token.Increment, token.Decrement:
		// Pre-increment/decrement desugars to a compound assignment by 1.
		op := p.advance().Kind
		operand, err := p.parseFactor()
		if err != nil {
			return nil, err
		}
		if !IsLvalue(operand) {
			return nil, diag.New(diag.Syntactic, "unexpectedToken: ++/-- operand must be an lvalue")
		}
		binOp := Add
		if op == token.Decrement {
			binOp = Subtract
		}
		one := &ConstantExpr{Value: 1, Type: CInt}
		return &AssignExpr{Left: operand, Right: &BinaryExpr{Op: binOp, Left: operand, Right: one}}, nil
	}

	primary, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for p.cur().Kind == token.Increment || p.cur().Kind == token.Decrement {
		if !IsLvalue(primary) {
			return nil, diag.New(diag.Syntactic, "unexpectedToken: ++/-- operand must be an lvalue")
		}
		op := PostIncrement
		if p.cur().Kind == token.Decrement {
			op = PostDecrement
		}
		p.advance()
		primary = &UnaryExpr{Op: op, Operand: primary}
	}
	return primary, nil
}

func (p *Parser) parsePrimary() (Expr, error) {
	switch p.cur().Kind {
	case token.IntLiteral:
		tok := p.advance()
		typ := CInt
		if tok.Value < -(1<<31) || tok.Value > (1<<31)-1 {
			typ = CLong
		}
		return &ConstantExpr{Value: tok.Value, Type: typ}, nil

	case token.Ident:
		name := p.advance().Lexeme
		if p.cur().Kind == token.LParen {
			p.advance()
			var args []Expr
			if p.cur().Kind != token.RParen {
				for {
					arg, err := p.parseExpression(0)
					if err != nil {
						return nil, err
					}
					args = append(args, arg)
					if p.cur().Kind == token.Comma {
						p.advance()
						continue
					}
					break
				}
			}
			if _, err := p.expect(token.RParen); err != nil {
				return nil, err
			}
			return &CallExpr{Name: name, Args: args}, nil
		}
		return &VariableExpr{Name: name}, nil

	case token.LParen:
		p.advance()
		expr, err := p.parseExpression(0)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.RParen); err != nil {
			return nil, err
		}
		return expr, nil

	default:
		return nil, diag.New(diag.Syntactic, "expectedExpression: found %s", p.cur())
	}
}
