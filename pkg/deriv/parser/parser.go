package parser

import (
	"github.com/sambeau/deriv/pkg/deriv/ast"
	derrors "github.com/sambeau/deriv/pkg/deriv/errors"
	"github.com/sambeau/deriv/pkg/deriv/lexer"
)

// Parser is a recursive-descent parser over this grammar, lowest precedence first:
//
//	expr   := term ((PLUS | MINUS) term)*
//	term   := power ((MUL | DIV) power)*
//	power  := factor (POW factor)*
//	factor := (PLUS | MINUS | FUNC) factor | INTEGER | VAR | LPAREN expr RPAREN
//
// Every binary level folds to the left, including POW: a**b**c is (a**b)**c.
type Parser struct {
	l *lexer.Lexer

	curToken lexer.Token
	err      error
}

// New creates a new parser instance
func New(l *lexer.Lexer) *Parser {
	p := &Parser{l: l}
	p.nextToken()
	return p
}

// ParseString tokenizes and parses input in one step.
func ParseString(input string) (ast.Node, error) {
	return New(lexer.New(input)).Parse()
}

// Parse parses a complete expression. Tokens left over after the expression
// are a syntax error.
func (p *Parser) Parse() (ast.Node, error) {
	node := p.parseExpr()
	if p.err != nil {
		return nil, p.err
	}
	if !p.curTokenIs(lexer.EOF) {
		p.setError(derrors.NewAt("PARSE-0002", p.curToken.Column, map[string]any{"Got": p.curToken.Describe()}))
		return nil, p.err
	}
	return node, nil
}

// nextToken pulls the next token from the lexer. A lexical error stops the parse.
func (p *Parser) nextToken() {
	if p.err != nil {
		return
	}
	tok, err := p.l.NextToken()
	if err != nil {
		p.err = err
		p.curToken = lexer.Token{Type: lexer.ILLEGAL}
		return
	}
	p.curToken = tok
}

func (p *Parser) curTokenIs(t lexer.TokenType) bool {
	return p.curToken.Type == t
}

// setError records the first error; later ones are usually cascading noise.
func (p *Parser) setError(err error) {
	if p.err == nil {
		p.err = err
	}
}

// eat consumes the current token if it has type t.
func (p *Parser) eat(t lexer.TokenType, expected string) bool {
	if p.err != nil {
		return false
	}
	if !p.curTokenIs(t) {
		p.expectedError(expected)
		return false
	}
	p.nextToken()
	return p.err == nil
}

func (p *Parser) expectedError(expected string) {
	p.setError(derrors.NewAt("PARSE-0001", p.curToken.Column, map[string]any{
		"Expected": expected,
		"Got":      p.curToken.Describe(),
	}))
}

// parseExpr: expr := term ((PLUS | MINUS) term)*
func (p *Parser) parseExpr() ast.Node {
	node := p.parseTerm()

	for p.err == nil && (p.curTokenIs(lexer.PLUS) || p.curTokenIs(lexer.MINUS)) {
		tok := p.curToken
		p.nextToken()
		right := p.parseTerm()
		if p.err != nil {
			return nil
		}
		node = &ast.BinOp{Left: node, Token: tok, Right: right}
	}

	return node
}

// parseTerm: term := power ((MUL | DIV) power)*
func (p *Parser) parseTerm() ast.Node {
	node := p.parsePower()

	for p.err == nil && (p.curTokenIs(lexer.MUL) || p.curTokenIs(lexer.DIV)) {
		tok := p.curToken
		p.nextToken()
		right := p.parsePower()
		if p.err != nil {
			return nil
		}
		node = &ast.BinOp{Left: node, Token: tok, Right: right}
	}

	return node
}

// parsePower: power := factor (POW factor)*
func (p *Parser) parsePower() ast.Node {
	node := p.parseFactor()

	for p.err == nil && p.curTokenIs(lexer.POW) {
		tok := p.curToken
		p.nextToken()
		right := p.parseFactor()
		if p.err != nil {
			return nil
		}
		node = &ast.BinOp{Left: node, Token: tok, Right: right}
	}

	return node
}

// parseFactor: factor := (PLUS | MINUS | FUNC) factor | INTEGER | VAR | LPAREN expr RPAREN
func (p *Parser) parseFactor() ast.Node {
	if p.err != nil {
		return nil
	}

	tok := p.curToken

	switch tok.Type {
	case lexer.INTEGER:
		p.nextToken()
		return &ast.Num{Token: tok, Value: tok.Value}

	case lexer.VAR:
		p.nextToken()
		return &ast.Var{Token: tok, Name: tok.Literal}

	case lexer.PLUS, lexer.MINUS:
		p.nextToken()
		operand := p.parseFactor()
		if p.err != nil {
			return nil
		}
		return &ast.UnaryOp{Token: tok, Operand: operand}

	case lexer.FUNC:
		p.nextToken()
		// A function takes a factor but not a signed one: sin-x is rejected.
		if p.curTokenIs(lexer.PLUS) || p.curTokenIs(lexer.MINUS) {
			p.setError(derrors.NewAt("PARSE-0003", p.curToken.Column, map[string]any{
				"Func": tok.Literal,
				"Sign": p.curToken.Literal,
			}))
			return nil
		}
		arg := p.parseFactor()
		if p.err != nil {
			return nil
		}
		return &ast.UnaryOp{Token: tok, Operand: arg}

	case lexer.LPAREN:
		p.nextToken()
		node := p.parseExpr()
		if !p.eat(lexer.RPAREN, "')'") {
			return nil
		}
		return node
	}

	p.expectedError("a number, variable, function or '('")
	return nil
}
