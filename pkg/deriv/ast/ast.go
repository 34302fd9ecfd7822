// Package ast defines the expression tree shared by the parser, the
// differentiation engine and the printer.
//
// Node is a closed set of four variants: *Num, *Var, *UnaryOp and *BinOp.
// Nodes are never mutated after construction, so a subtree may appear in
// several trees at once.
package ast

import (
	"bytes"
	"math/big"

	"github.com/sambeau/deriv/pkg/deriv/lexer"
)

// Node represents any node in the AST
type Node interface {
	TokenLiteral() string
	String() string
	node()
}

// Num represents an integer literal. Value is exact and never nil; it is
// shared between trees and must not be modified.
type Num struct {
	Token lexer.Token // the lexer.INTEGER token
	Value *big.Int
}

func (n *Num) node()                {}
func (n *Num) TokenLiteral() string { return n.Token.Literal }
func (n *Num) String() string       { return n.Value.String() }

// Var represents a single-letter variable
type Var struct {
	Token lexer.Token // the lexer.VAR token
	Name  string
}

func (v *Var) node()                {}
func (v *Var) TokenLiteral() string { return v.Token.Literal }
func (v *Var) String() string       { return v.Name }

// UnaryOp represents a prefix sign (+x, -x) or a function application (sin x).
// For functions the name is Token.Literal.
type UnaryOp struct {
	Token   lexer.Token // lexer.PLUS, lexer.MINUS or lexer.FUNC
	Operand Node
}

func (u *UnaryOp) node()                {}
func (u *UnaryOp) TokenLiteral() string { return u.Token.Literal }
func (u *UnaryOp) String() string {
	var out bytes.Buffer

	if u.Token.Type == lexer.FUNC {
		out.WriteString(u.Token.Literal)
		out.WriteString("(")
		out.WriteString(u.Operand.String())
		out.WriteString(")")
		return out.String()
	}

	out.WriteString("(")
	out.WriteString(u.Token.Literal)
	out.WriteString(u.Operand.String())
	out.WriteString(")")

	return out.String()
}

// Op returns the operator kind of the node.
func (u *UnaryOp) Op() lexer.TokenType { return u.Token.Type }

// Name returns the function name of a FUNC node.
func (u *UnaryOp) Name() string { return u.Token.Literal }

// BinOp represents infix expressions like 'x + y'
type BinOp struct {
	Left  Node
	Token lexer.Token // the operator token
	Right Node
}

func (b *BinOp) node()                {}
func (b *BinOp) TokenLiteral() string { return b.Token.Literal }
func (b *BinOp) String() string {
	var out bytes.Buffer

	out.WriteString("(")
	out.WriteString(b.Left.String())
	out.WriteString(" " + b.Token.Literal + " ")
	out.WriteString(b.Right.String())
	out.WriteString(")")

	return out.String()
}

// Op returns the operator kind of the node.
func (b *BinOp) Op() lexer.TokenType { return b.Token.Type }

// ============================================================================
// Constructors for nodes that do not come from source text
// ============================================================================

// NewNum returns an integer literal node.
func NewNum(value int64) *Num {
	return NewInt(big.NewInt(value))
}

// NewInt returns an integer literal node holding value, which the node
// takes ownership of.
func NewInt(value *big.Int) *Num {
	return &Num{Token: lexer.Token{Type: lexer.INTEGER, Literal: value.String(), Value: value}, Value: value}
}

// NewVar returns a variable node.
func NewVar(name string) *Var {
	return &Var{Token: lexer.Token{Type: lexer.VAR, Literal: name}, Name: name}
}

// NewSign returns a prefix sign node; op is lexer.PLUS or lexer.MINUS.
func NewSign(op lexer.TokenType, operand Node) *UnaryOp {
	return &UnaryOp{Token: lexer.Token{Type: op, Literal: op.Symbol()}, Operand: operand}
}

// NewFunc returns a function application node.
func NewFunc(name string, arg Node) *UnaryOp {
	return &UnaryOp{Token: lexer.Token{Type: lexer.FUNC, Literal: name}, Operand: arg}
}

// NewBinOp returns an infix node; op is one of PLUS, MINUS, MUL, DIV, POW.
func NewBinOp(left Node, op lexer.TokenType, right Node) *BinOp {
	return &BinOp{Left: left, Token: lexer.Token{Type: op, Literal: op.Symbol()}, Right: right}
}

// Equal reports whether a and b have the same shape: same variant, same
// operator kind, same leaf value, and equal children in the same order.
// Source positions are ignored.
func Equal(a, b Node) bool {
	switch x := a.(type) {
	case *Num:
		y, ok := b.(*Num)
		return ok && x.Value.Cmp(y.Value) == 0
	case *Var:
		y, ok := b.(*Var)
		return ok && x.Name == y.Name
	case *UnaryOp:
		y, ok := b.(*UnaryOp)
		if !ok || x.Op() != y.Op() {
			return false
		}
		if x.Op() == lexer.FUNC && x.Name() != y.Name() {
			return false
		}
		return Equal(x.Operand, y.Operand)
	case *BinOp:
		y, ok := b.(*BinOp)
		return ok && x.Op() == y.Op() && Equal(x.Left, y.Left) && Equal(x.Right, y.Right)
	}
	return a == nil && b == nil
}
