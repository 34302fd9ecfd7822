package ast

import "github.com/sambeau/deriv/pkg/deriv/lexer"

// Shape predicates used by the differentiation engine, the algebra
// constructors and the printer.

func IsNumber(n Node) bool {
	_, ok := n.(*Num)
	return ok
}

func IsZero(n Node) bool {
	num, ok := n.(*Num)
	return ok && num.Value.Sign() == 0
}

func IsOne(n Node) bool {
	num, ok := n.(*Num)
	return ok && num.Value.IsInt64() && num.Value.Int64() == 1
}

// IsNegativeNum reports whether n is a number below zero.
func IsNegativeNum(n Node) bool {
	num, ok := n.(*Num)
	return ok && num.Value.Sign() < 0
}

func IsVar(n Node) bool {
	_, ok := n.(*Var)
	return ok
}

// SameVar reports whether n is the variable v.
func SameVar(n Node, v *Var) bool {
	x, ok := n.(*Var)
	return ok && x.Name == v.Name
}

// IsAtomic reports whether n never needs parentheses as the operand of a
// sign: numbers, variables and function applications.
func IsAtomic(n Node) bool {
	return IsNumber(n) || IsVar(n) || IsFunc(n)
}

// IsPrefixSign reports whether n is a unary + or -.
func IsPrefixSign(n Node) bool {
	u, ok := n.(*UnaryOp)
	return ok && (u.Op() == lexer.PLUS || u.Op() == lexer.MINUS)
}

// IsNegation reports whether n is a unary minus.
func IsNegation(n Node) bool {
	u, ok := n.(*UnaryOp)
	return ok && u.Op() == lexer.MINUS
}

func IsFunc(n Node) bool {
	u, ok := n.(*UnaryOp)
	return ok && u.Op() == lexer.FUNC
}

func binOpType(n Node, op lexer.TokenType) bool {
	b, ok := n.(*BinOp)
	return ok && b.Op() == op
}

func IsSum(n Node) bool        { return binOpType(n, lexer.PLUS) }
func IsDifference(n Node) bool { return binOpType(n, lexer.MINUS) }
func IsProduct(n Node) bool    { return binOpType(n, lexer.MUL) }
func IsQuotient(n Node) bool   { return binOpType(n, lexer.DIV) }
func IsPower(n Node) bool      { return binOpType(n, lexer.POW) }

// IsRational reports whether n is a literal fraction Num/Num.
func IsRational(n Node) bool {
	b, ok := n.(*BinOp)
	return ok && b.Op() == lexer.DIV && IsNumber(b.Left) && IsNumber(b.Right)
}
