package format

import (
	"strings"

	"github.com/sambeau/deriv/pkg/deriv/algebra"
	"github.com/sambeau/deriv/pkg/deriv/ast"
	"github.com/sambeau/deriv/pkg/deriv/lexer"
)

// Printer manages formatting state and output
type Printer struct {
	output strings.Builder
}

// NewPrinter creates a new Printer instance
func NewPrinter() *Printer {
	return &Printer{}
}

// String returns the formatted output
func (p *Printer) String() string {
	return p.output.String()
}

// Reset clears the printer state for reuse
func (p *Printer) Reset() {
	p.output.Reset()
}

func (p *Printer) write(s string) {
	p.output.WriteString(s)
}

// Print writes node without simplifying it first. Prefix-sign chains are
// still collapsed.
func (p *Printer) Print(node ast.Node) {
	switch n := node.(type) {
	case *ast.Num:
		p.write(n.Value.String())

	case *ast.Var:
		p.write(n.Name)

	case *ast.UnaryOp:
		if ast.IsFunc(n) {
			p.write(n.Name())
			p.write("(")
			p.Print(n.Operand)
			p.write(")")
			return
		}
		p.printSign(n)

	case *ast.BinOp:
		p.printBinary(n)
	}
}

func (p *Printer) printSign(n *ast.UnaryOp) {
	s := algebra.CollapseSign(n)
	if !ast.IsNegation(s) {
		p.Print(s)
		return
	}

	u := s.(*ast.UnaryOp)
	p.write("-")
	if ast.IsAtomic(u.Operand) && !ast.IsNegativeNum(u.Operand) {
		p.Print(u.Operand)
		return
	}
	p.parenthesized(u.Operand)
}

func (p *Printer) printBinary(n *ast.BinOp) {
	op := n.Op()
	left := algebra.CollapseSign(n.Left)
	right := algebra.CollapseSign(n.Right)

	p.operand(left, needsParens(left, op, false))
	p.write(op.Symbol())
	p.operand(right, needsParens(right, op, true))
}

func (p *Printer) operand(n ast.Node, parens bool) {
	if parens {
		p.parenthesized(n)
		return
	}
	p.Print(n)
}

func (p *Printer) parenthesized(n ast.Node) {
	p.write("(")
	p.Print(n)
	p.write(")")
}

// needsParens decides whether operand n of op must be wrapped.
func needsParens(n ast.Node, op lexer.TokenType, right bool) bool {
	if ast.IsRational(n) {
		return true
	}

	prec := precedence(n)
	if prec < required[op] {
		return true
	}
	if right && prec == opPrecedence[op] {
		return nonAssociative[op] || ast.IsPrefixSign(n)
	}
	return false
}

// precedence returns the binding strength of n as an operand.
func precedence(n ast.Node) int {
	switch node := n.(type) {
	case *ast.UnaryOp:
		if ast.IsFunc(node) {
			return PrecFunc
		}
		return PrecSigned
	case *ast.BinOp:
		return opPrecedence[node.Op()]
	}
	// Numbers, negative ones included, print as their literal.
	return PrecAtom
}
