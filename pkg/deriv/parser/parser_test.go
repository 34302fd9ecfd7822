package parser

import (
	"math/big"
	"strings"
	"testing"

	"github.com/sambeau/deriv/pkg/deriv/ast"
	derrors "github.com/sambeau/deriv/pkg/deriv/errors"
	"github.com/sambeau/deriv/pkg/deriv/lexer"
)

func num(v int64) ast.Node { return ast.NewNum(v) }

func variable(name string) ast.Node { return ast.NewVar(name) }

func neg(n ast.Node) ast.Node { return ast.NewSign(lexer.MINUS, n) }

func pos(n ast.Node) ast.Node { return ast.NewSign(lexer.PLUS, n) }

func fn(name string, n ast.Node) ast.Node { return ast.NewFunc(name, n) }

func bin(l ast.Node, op lexer.TokenType, r ast.Node) ast.Node {
	return ast.NewBinOp(l, op, r)
}

func parse(t *testing.T, input string) ast.Node {
	t.Helper()
	node, err := ParseString(input)
	if err != nil {
		t.Fatalf("ParseString(%q) error: %v", input, err)
	}
	return node
}

// 3*x**2+5
func TestParseSimpleExpression(t *testing.T) {
	want := bin(
		bin(num(3), lexer.MUL, bin(variable("x"), lexer.POW, num(2))),
		lexer.PLUS,
		num(5),
	)

	got := parse(t, "3*x**2+5")
	if !ast.Equal(got, want) {
		t.Errorf("got %s, want %s", got, want)
	}
}

func TestOperatorPrecedenceParsing(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"a-b-c", "((a - b) - c)"},
		{"a/b/c", "((a / b) / c)"},
		{"a**b**c", "((a ** b) ** c)"},
		{"a+b*c", "(a + (b * c))"},
		{"a*b+c", "((a * b) + c)"},
		{"a*b**c", "(a * (b ** c))"},
		{"(a+b)*c", "((a + b) * c)"},
		{"a-(b-c)", "(a - (b - c))"},
		{"-x**2", "((-x) ** 2)"},
		{"--x", "(-(-x))"},
		{"+-x", "(+(-x))"},
		{"sin x**2", "(sin(x) ** 2)"},
		{"sin(x)**2", "(sin(x) ** 2)"},
		{"sin cos x", "sin(cos(x))"},
		{"log(x**2)", "log((x ** 2))"},
		{"2*-x", "(2 * (-x))"},
		{"  ( ( 7 ) ) ", "7"},
		{"exp(x)*3**x", "(exp(x) * (3 ** x))"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := parse(t, tt.input)
			if got.String() != tt.expected {
				t.Errorf("expected=%q, got=%q", tt.expected, got.String())
			}
		})
	}
}

func TestParseUnaryChains(t *testing.T) {
	got := parse(t, "--x")
	if !ast.Equal(got, neg(neg(variable("x")))) {
		t.Errorf("got %s", got)
	}

	got = parse(t, "+3")
	if !ast.Equal(got, pos(num(3))) {
		t.Errorf("got %s", got)
	}

	got = parse(t, "cosec(-y)")
	if !ast.Equal(got, fn("cosec", neg(variable("y")))) {
		t.Errorf("got %s", got)
	}
}

func TestParseKeepsTokens(t *testing.T) {
	got := parse(t, "x + 42")
	b, ok := got.(*ast.BinOp)
	if !ok {
		t.Fatalf("expected *ast.BinOp, got %T", got)
	}
	if b.Token.Column != 3 {
		t.Errorf("operator column = %d, want 3", b.Token.Column)
	}
	n, ok := b.Right.(*ast.Num)
	if !ok || n.Value.Cmp(big.NewInt(42)) != 0 || n.Token.Literal != "42" {
		t.Errorf("right operand = %#v", b.Right)
	}
}

func TestSyntaxErrors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		code    string
		message string
	}{
		{"empty", "", "PARSE-0001", "got end of input"},
		{"dangling operator", "3+", "PARSE-0001", "expected a number, variable, function or '('"},
		{"missing rparen", "(x+1", "PARSE-0001", "expected ')'"},
		{"stray rparen", "x)", "PARSE-0002", "unexpected ')'"},
		{"two operands", "x y", "PARSE-0002", "unexpected 'y'"},
		{"trailing number", "sin(x) 2", "PARSE-0002", "unexpected '2'"},
		{"function with sign", "sin-x", "PARSE-0003", "sin cannot be applied to a signed argument"},
		{"bare function", "cos", "PARSE-0001", "got end of input"},
		{"double operator", "x*/y", "PARSE-0001", "got '/'"},
		{"empty parens", "()", "PARSE-0001", "got ')'"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseString(tt.input)
			if err == nil {
				t.Fatalf("expected error for %q", tt.input)
			}
			de, ok := derrors.As(err)
			if !ok {
				t.Fatalf("expected *DerivError, got %T", err)
			}
			if de.Class != derrors.ClassSyntax {
				t.Errorf("class = %q, want syntax", de.Class)
			}
			if de.Code != tt.code {
				t.Errorf("code = %q, want %q (%s)", de.Code, tt.code, de.Message)
			}
			if !strings.Contains(de.Message, "invalid syntax") {
				t.Errorf("message %q should mention invalid syntax", de.Message)
			}
			if !strings.Contains(de.Message, tt.message) {
				t.Errorf("message = %q, want it to contain %q", de.Message, tt.message)
			}
		})
	}
}

func TestLexicalErrorsPropagate(t *testing.T) {
	for _, input := range []string{"3***x", "foo", "x@2", "(1+sinh(x))"} {
		t.Run(input, func(t *testing.T) {
			_, err := ParseString(input)
			if !derrors.IsLexical(err) {
				t.Errorf("expected lexical error, got %v", err)
			}
		})
	}
}

func TestSyntaxErrorColumn(t *testing.T) {
	_, err := ParseString("1 + (2 * )")
	de, ok := derrors.As(err)
	if !ok {
		t.Fatalf("expected *DerivError, got %v", err)
	}
	if de.Column != 10 {
		t.Errorf("column = %d, want 10", de.Column)
	}
}
