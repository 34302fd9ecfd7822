package ast

import (
	"math/big"
	"testing"

	"github.com/sambeau/deriv/pkg/deriv/lexer"
)

func TestString(t *testing.T) {
	// 3*x**2+5
	tree := NewBinOp(
		NewBinOp(NewNum(3), lexer.MUL, NewBinOp(NewVar("x"), lexer.POW, NewNum(2))),
		lexer.PLUS,
		NewNum(5),
	)

	if tree.String() != "((3 * (x ** 2)) + 5)" {
		t.Errorf("tree.String() wrong. got=%q", tree.String())
	}

	neg := NewSign(lexer.MINUS, NewFunc("sin", NewVar("y")))
	if neg.String() != "(-sin(y))" {
		t.Errorf("neg.String() wrong. got=%q", neg.String())
	}
}

func TestEqual(t *testing.T) {
	x := NewVar("x")
	sinx := NewFunc("sin", x)

	tests := []struct {
		name string
		a, b Node
		want bool
	}{
		{"same number", NewNum(4), NewNum(4), true},
		{"different number", NewNum(4), NewNum(5), false},
		{"same var", NewVar("x"), x, true},
		{"different var", NewVar("x"), NewVar("y"), false},
		{"num vs var", NewNum(1), x, false},
		{"same function", NewFunc("sin", NewVar("x")), sinx, true},
		{"different function", NewFunc("cos", x), sinx, false},
		{"sign vs function", NewSign(lexer.MINUS, x), sinx, false},
		{"different sign", NewSign(lexer.MINUS, x), NewSign(lexer.PLUS, x), false},
		{"same binop", NewBinOp(x, lexer.MUL, NewNum(2)), NewBinOp(NewVar("x"), lexer.MUL, NewNum(2)), true},
		{"different operator", NewBinOp(x, lexer.MUL, NewNum(2)), NewBinOp(x, lexer.DIV, NewNum(2)), false},
		{"swapped children", NewBinOp(x, lexer.PLUS, NewNum(2)), NewBinOp(NewNum(2), lexer.PLUS, x), false},
		{"nil and nil", nil, nil, true},
		{"nil and node", nil, x, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Equal(tt.a, tt.b); got != tt.want {
				t.Errorf("Equal() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNumIsExact(t *testing.T) {
	huge, _ := new(big.Int).SetString("123456789012345678901234567890", 10)
	n := NewInt(huge)

	if n.String() != "123456789012345678901234567890" || n.Token.Literal != n.String() {
		t.Errorf("String() = %q, literal %q", n.String(), n.Token.Literal)
	}
	same, _ := new(big.Int).SetString("123456789012345678901234567890", 10)
	if !Equal(n, NewInt(same)) {
		t.Error("expected equal values in distinct big.Ints to be equal")
	}
	if Equal(n, NewInt(new(big.Int).Add(same, big.NewInt(1)))) {
		t.Error("expected different values to differ")
	}
	if IsOne(NewInt(new(big.Int).Lsh(big.NewInt(1), 64))) {
		t.Error("2**64 is not one")
	}
}

func TestEqualIgnoresPositions(t *testing.T) {
	a := &Var{Token: lexer.Token{Type: lexer.VAR, Literal: "x", Column: 1}, Name: "x"}
	b := &Var{Token: lexer.Token{Type: lexer.VAR, Literal: "x", Column: 9}, Name: "x"}
	if !Equal(a, b) {
		t.Error("expected nodes at different columns to be equal")
	}
}

func TestPredicates(t *testing.T) {
	x := NewVar("x")
	rational := NewBinOp(NewNum(1), lexer.DIV, NewNum(2))

	if !IsZero(NewNum(0)) || IsZero(NewNum(1)) || IsZero(x) {
		t.Error("IsZero misclassified")
	}
	if !IsOne(NewNum(1)) || IsOne(NewNum(-1)) {
		t.Error("IsOne misclassified")
	}
	if !IsNegativeNum(NewNum(-1)) || IsNegativeNum(NewNum(0)) || IsNegativeNum(NewSign(lexer.MINUS, x)) {
		t.Error("IsNegativeNum misclassified")
	}
	if !IsAtomic(NewFunc("exp", x)) || IsAtomic(NewSign(lexer.MINUS, x)) {
		t.Error("IsAtomic misclassified")
	}
	if !IsPrefixSign(NewSign(lexer.PLUS, x)) || IsPrefixSign(NewFunc("log", x)) {
		t.Error("IsPrefixSign misclassified")
	}
	if !IsRational(rational) || IsRational(NewBinOp(x, lexer.DIV, NewNum(2))) {
		t.Error("IsRational misclassified")
	}
	if !IsPower(NewBinOp(x, lexer.POW, x)) || IsPower(rational) {
		t.Error("IsPower misclassified")
	}
	if !SameVar(NewVar("x"), x) || SameVar(NewVar("y"), x) {
		t.Error("SameVar misclassified")
	}
}
