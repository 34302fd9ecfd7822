// Package format renders expression trees as minimal, correctly
// parenthesized text.
package format

import "github.com/sambeau/deriv/pkg/deriv/lexer"

// Binding strength of each operator. Higher binds tighter.
const (
	PrecSum     = 1 // + -
	PrecProduct = 2 // * /
	PrecPower   = 3 // **
	PrecFunc    = 4 // sin x, and the required strength for both operands of /
	PrecAtom    = 5 // numbers and variables never need parentheses
)

// Prefix-signed operands (-x) bind like a sum.
const PrecSigned = PrecSum

var opPrecedence = map[lexer.TokenType]int{
	lexer.PLUS:  PrecSum,
	lexer.MINUS: PrecSum,
	lexer.MUL:   PrecProduct,
	lexer.DIV:   PrecProduct,
	lexer.POW:   PrecPower,
	lexer.FUNC:  PrecFunc,
}

// required is the precedence an operand must have to appear bare beside op.
// Division asks for more than its own strength so that 1/(x**2) keeps its
// parentheses.
var required = map[lexer.TokenType]int{
	lexer.PLUS:  PrecSum,
	lexer.MINUS: PrecSum,
	lexer.MUL:   PrecProduct,
	lexer.DIV:   PrecFunc,
	lexer.POW:   PrecPower,
}

// nonAssociative operators need parentheses around an equal-strength right
// operand: a-(b-c), a**(b**c).
var nonAssociative = map[lexer.TokenType]bool{
	lexer.MINUS: true,
	lexer.DIV:   true,
	lexer.POW:   true,
}
