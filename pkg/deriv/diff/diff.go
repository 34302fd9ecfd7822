// Package diff differentiates expression trees.
//
// Differentiate walks the tree once and assembles the derivative bottom-up
// through the algebra constructors. Subtrees of the input are shared, not
// copied, by the result.
package diff

import (
	"fmt"

	"github.com/sambeau/deriv/pkg/deriv/algebra"
	"github.com/sambeau/deriv/pkg/deriv/ast"
	derrors "github.com/sambeau/deriv/pkg/deriv/errors"
)

// Differentiate returns d(node)/d(wrt). Every variable other than wrt is a
// constant.
func Differentiate(node ast.Node, wrt *ast.Var) (ast.Node, error) {
	d := &differ{wrt: wrt}
	out := d.deriv(node)
	if d.err != nil {
		return nil, d.err
	}
	return out, nil
}

// MaxOrder is the highest order DifferentiateN accepts. Derivatives of
// expressions like x**x grow several-fold with every order.
const MaxOrder = 8

// DifferentiateN applies Differentiate n times. n == 0 returns node.
func DifferentiateN(node ast.Node, wrt *ast.Var, n int) (ast.Node, error) {
	if n < 0 || n > MaxOrder {
		return nil, derrors.New("INPUT-0002", map[string]any{"Got": n, "Max": MaxOrder})
	}
	out := node
	for i := 0; i < n; i++ {
		var err error
		if out, err = Differentiate(out, wrt); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// differ carries the variable and the first error through the recursion.
// Once err is set every builder returns a zero placeholder and the result is
// discarded by Differentiate.
type differ struct {
	wrt *ast.Var
	err error
}

func (d *differ) fail(err error) ast.Node {
	if d.err == nil {
		d.err = err
	}
	return ast.NewNum(0)
}

func (d *differ) build(out ast.Node, err error) ast.Node {
	if err != nil {
		return d.fail(err)
	}
	return out
}

func (d *differ) sum(x, y ast.Node) ast.Node  { return d.build(algebra.Sum(x, y)) }
func (d *differ) diff(x, y ast.Node) ast.Node { return d.build(algebra.Difference(x, y)) }
func (d *differ) prod(x, y ast.Node) ast.Node { return d.build(algebra.Product(x, y)) }
func (d *differ) quot(x, y ast.Node) ast.Node { return d.build(algebra.Quotient(x, y)) }
func (d *differ) pow(x, y ast.Node) ast.Node  { return d.build(algebra.Power(x, y)) }

var two = ast.NewNum(2)

func (d *differ) deriv(node ast.Node) ast.Node {
	if d.err != nil {
		return ast.NewNum(0)
	}

	switch n := node.(type) {
	case *ast.Num:
		return ast.NewNum(0)

	case *ast.Var:
		if ast.SameVar(n, d.wrt) {
			return ast.NewNum(1)
		}
		return ast.NewNum(0)

	case *ast.UnaryOp:
		if ast.IsFunc(n) {
			return d.prod(d.outer(n), d.deriv(n.Operand))
		}
		return d.signed(n)

	case *ast.BinOp:
		return d.binary(n)
	}

	return d.fail(derrors.New("INTERNAL-0001", map[string]any{"Node": fmt.Sprintf("%T", node)}))
}

// signed differentiates a prefix-sign chain: collapse it, then carry the net
// sign over to the derivative of the operand.
func (d *differ) signed(n *ast.UnaryOp) ast.Node {
	s := algebra.CollapseSign(n)
	if ast.IsNegation(s) {
		return algebra.Negate(d.deriv(s.(*ast.UnaryOp).Operand))
	}
	return d.deriv(s)
}

// outer returns f'(u) for the function application f(u).
func (d *differ) outer(f *ast.UnaryOp) ast.Node {
	u := f.Operand

	switch f.Name() {
	case "exp":
		return f
	case "log":
		return d.quot(ast.NewNum(1), u)
	case "sin":
		return algebra.Func("cos", u)
	case "cos":
		return algebra.Negate(algebra.Func("sin", u))
	case "tan":
		return d.pow(algebra.Func("sec", u), two)
	case "cosec":
		return d.prod(algebra.Negate(f), algebra.Func("cot", u))
	case "sec":
		return d.prod(f, algebra.Func("tan", u))
	case "cot":
		return algebra.Negate(d.pow(algebra.Func("cosec", u), two))
	}

	return d.fail(derrors.New("INTERNAL-0002", map[string]any{"Func": f.Name()}))
}

func (d *differ) binary(n *ast.BinOp) ast.Node {
	l, r := n.Left, n.Right

	switch {
	case ast.IsSum(n):
		return d.sum(d.deriv(l), d.deriv(r))

	case ast.IsDifference(n):
		return d.diff(d.deriv(l), d.deriv(r))

	case ast.IsProduct(n):
		// l*dr + dl*r
		return d.sum(
			d.prod(l, d.deriv(r)),
			d.prod(d.deriv(l), r),
		)

	case ast.IsQuotient(n):
		// (r*dl - l*dr) / r**2
		return d.quot(
			d.diff(
				d.prod(r, d.deriv(l)),
				d.prod(l, d.deriv(r)),
			),
			d.pow(r, two),
		)

	case ast.IsPower(n):
		// e*b**(e-1)*db + b**e*log(b)*de
		b, e := l, r
		return d.sum(
			d.prod(
				d.prod(e, d.pow(b, d.diff(e, ast.NewNum(1)))),
				d.deriv(b),
			),
			d.prod(
				d.prod(n, algebra.Func("log", b)),
				d.deriv(e),
			),
		)
	}

	return d.fail(derrors.New("INTERNAL-0001", map[string]any{"Node": "operator " + n.Op().String()}))
}
