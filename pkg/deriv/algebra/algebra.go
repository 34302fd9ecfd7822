// Package algebra builds expression trees through simplifying constructors.
//
// Every binary constructor collapses prefix-sign operands, folds integer
// constants and applies the identity and annihilator rules for its operator
// before it allocates a node. The differentiation engine assembles every
// derivative through these functions, so trees stay small as they are built.
package algebra

import (
	"math/big"

	"github.com/sambeau/deriv/pkg/deriv/ast"
	derrors "github.com/sambeau/deriv/pkg/deriv/errors"
	"github.com/sambeau/deriv/pkg/deriv/lexer"
)

// CollapseSign reduces a chain of prefix signs to a single net sign applied
// to the innermost operand. An even number of minuses yields the operand
// itself, an odd number yields -operand; numbers absorb the sign.
// Nodes that are not prefix signs are returned unchanged.
func CollapseSign(n ast.Node) ast.Node {
	if !ast.IsPrefixSign(n) {
		return n
	}

	negative := false
	inner := n
	for ast.IsPrefixSign(inner) {
		if ast.IsNegation(inner) {
			negative = !negative
		}
		inner = inner.(*ast.UnaryOp).Operand
	}

	if !negative {
		return inner
	}
	if num, ok := inner.(*ast.Num); ok {
		return ast.NewInt(new(big.Int).Neg(num.Value))
	}
	return ast.NewSign(lexer.MINUS, inner)
}

// Negate returns -x with sign chains and numbers collapsed.
func Negate(x ast.Node) ast.Node {
	return CollapseSign(ast.NewSign(lexer.MINUS, x))
}

// Func builds a function application. Functions are never evaluated.
func Func(name string, arg ast.Node) ast.Node {
	return ast.NewFunc(name, arg)
}

// Sum builds x + y.
func Sum(x, y ast.Node) (ast.Node, error) {
	x, y = CollapseSign(x), CollapseSign(y)

	if a, b, ok := numbers(x, y); ok {
		return ast.NewInt(new(big.Int).Add(a, b)), nil
	}
	if ast.IsZero(x) {
		return y, nil
	}
	if ast.IsZero(y) {
		return x, nil
	}
	return ast.NewBinOp(x, lexer.PLUS, y), nil
}

// Difference builds x - y.
func Difference(x, y ast.Node) (ast.Node, error) {
	x, y = CollapseSign(x), CollapseSign(y)

	if a, b, ok := numbers(x, y); ok {
		return ast.NewInt(new(big.Int).Sub(a, b)), nil
	}
	if ast.IsZero(x) {
		return Negate(y), nil
	}
	if ast.IsZero(y) {
		return x, nil
	}
	return ast.NewBinOp(x, lexer.MINUS, y), nil
}

// Product builds x * y.
func Product(x, y ast.Node) (ast.Node, error) {
	x, y = CollapseSign(x), CollapseSign(y)

	if a, b, ok := numbers(x, y); ok {
		return ast.NewInt(new(big.Int).Mul(a, b)), nil
	}
	if ast.IsZero(x) || ast.IsZero(y) {
		return ast.NewNum(0), nil
	}
	if ast.IsOne(x) {
		return y, nil
	}
	if ast.IsOne(y) {
		return x, nil
	}
	return ast.NewBinOp(x, lexer.MUL, y), nil
}

// Quotient builds x / y. A literal zero divisor is a domain error.
// Integer quotients are left as Num/Num: there is no rational type.
func Quotient(x, y ast.Node) (ast.Node, error) {
	x, y = CollapseSign(x), CollapseSign(y)

	if ast.IsZero(y) {
		return nil, derrors.New("DOMAIN-0001", nil)
	}
	if ast.IsZero(x) {
		return ast.NewNum(0), nil
	}
	if ast.IsOne(y) {
		return x, nil
	}
	return ast.NewBinOp(x, lexer.DIV, y), nil
}

// Power builds x ** y.
func Power(x, y ast.Node) (ast.Node, error) {
	x, y = CollapseSign(x), CollapseSign(y)

	if a, b, ok := numbers(x, y); ok {
		return powNum(x, y, a, b)
	}
	if ast.IsOne(x) || ast.IsZero(y) {
		return ast.NewNum(1), nil
	}
	if ast.IsZero(x) {
		return ast.NewNum(0), nil
	}
	if ast.IsOne(y) {
		return x, nil
	}
	return ast.NewBinOp(x, lexer.POW, y), nil
}

// Combine dispatches to the constructor for op.
func Combine(x ast.Node, op lexer.TokenType, y ast.Node) (ast.Node, error) {
	switch op {
	case lexer.PLUS:
		return Sum(x, y)
	case lexer.MINUS:
		return Difference(x, y)
	case lexer.MUL:
		return Product(x, y)
	case lexer.DIV:
		return Quotient(x, y)
	case lexer.POW:
		return Power(x, y)
	}
	return nil, derrors.New("INTERNAL-0001", map[string]any{"Node": "operator " + op.String()})
}

// Simplify rebuilds n bottom-up through the constructors. A subtree whose
// rebuild fails (a literal x/0) is kept as it is with simplified children.
// Simplify is idempotent.
func Simplify(n ast.Node) ast.Node {
	switch node := n.(type) {
	case *ast.Num, *ast.Var:
		return n
	case *ast.UnaryOp:
		operand := Simplify(node.Operand)
		if ast.IsFunc(node) {
			if operand == node.Operand {
				return node
			}
			return Func(node.Name(), operand)
		}
		return CollapseSign(ast.NewSign(node.Op(), operand))
	case *ast.BinOp:
		left, right := Simplify(node.Left), Simplify(node.Right)
		out, err := Combine(left, node.Op(), right)
		if err != nil {
			return ast.NewBinOp(CollapseSign(left), node.Op(), CollapseSign(right))
		}
		return out
	}
	return n
}

// ============================================================================
// Integer arithmetic
// ============================================================================

// MaxFoldBits bounds the size of a folded power. A constant power whose
// result would need more bits is left as a ** node.
const MaxFoldBits = 1 << 16

func numbers(x, y ast.Node) (*big.Int, *big.Int, bool) {
	a, ok := x.(*ast.Num)
	if !ok {
		return nil, nil, false
	}
	b, ok := y.(*ast.Num)
	if !ok {
		return nil, nil, false
	}
	return a.Value, b.Value, true
}

// powNum folds a**b, where x and y are the Num nodes holding a and b.
// A negative exponent yields the fraction 1/(a**-b).
func powNum(x, y ast.Node, a, b *big.Int) (ast.Node, error) {
	switch {
	case b.Sign() == 0:
		return ast.NewNum(1), nil
	case a.Sign() == 0:
		if b.Sign() < 0 {
			return nil, derrors.New("DOMAIN-0001", nil)
		}
		return ast.NewNum(0), nil
	case a.IsInt64() && a.Int64() == 1:
		return ast.NewNum(1), nil
	case a.IsInt64() && a.Int64() == -1:
		if b.Bit(0) == 0 {
			return ast.NewNum(1), nil
		}
		return ast.NewNum(-1), nil
	}

	e := new(big.Int).Abs(b)
	if !e.IsInt64() || e.Int64() > MaxFoldBits || int64(a.BitLen())*e.Int64() > MaxFoldBits {
		return ast.NewBinOp(x, lexer.POW, y), nil
	}

	v := new(big.Int).Exp(a, e, nil)
	if b.Sign() < 0 {
		return Quotient(ast.NewNum(1), ast.NewInt(v))
	}
	return ast.NewInt(v), nil
}
