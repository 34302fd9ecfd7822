package deriv

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/sambeau/deriv/pkg/deriv/ast"
	derrors "github.com/sambeau/deriv/pkg/deriv/errors"
)

func TestDifferentiate(t *testing.T) {
	tests := []struct {
		expr     string
		variable string
		expected string
	}{
		{"x", "x", "1"},
		{"x", "y", "0"},
		{"x**5", "x", "5*x**4"},
		{"3*2*y", "y", "6"},
		{"x*y", "y", "x"},
		{"sin(x)", "x", "cos(x)"},
		{"exp(x)", "x", "exp(x)"},
		{"log(x**2)", "x", "1/(x**2)*2*x"},
		{"(1+x)*3**x", "x", "(1+x)*3**x*log(3)+3**x"},
		{"  x ** 2  ", "x", "2*x"},
		{"x**2", "", "2*x"},
		{"2**64", "x", "0"},
		{"3**50*x", "x", "717897987691852588770249"},
		{"x**-1", "x", "-1*x**-2"},
	}

	for _, tt := range tests {
		t.Run(tt.expr+"/"+tt.variable, func(t *testing.T) {
			got, err := Differentiate(tt.expr, tt.variable)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.expected {
				t.Errorf("Differentiate(%q, %q) = %q, want %q", tt.expr, tt.variable, got, tt.expected)
			}
		})
	}
}

func TestDifferentiateErrors(t *testing.T) {
	tests := []struct {
		expr     string
		variable string
		class    derrors.ErrorClass
	}{
		{"3***x", "x", derrors.ClassLexical},
		{"foo", "x", derrors.ClassLexical},
		{"x@2", "x", derrors.ClassLexical},
		{"(x", "x", derrors.ClassSyntax},
		{"x y", "x", derrors.ClassSyntax},
		{"x/0", "x", derrors.ClassDomain},
		{"y/0", "x", derrors.ClassDomain},
		{"x", "xy", derrors.ClassInput},
		{"x", "1", derrors.ClassInput},
	}

	for _, tt := range tests {
		t.Run(tt.expr+"/"+tt.variable, func(t *testing.T) {
			got, err := Differentiate(tt.expr, tt.variable)
			if err == nil {
				t.Fatalf("expected error, got %q", got)
			}
			if got != "" {
				t.Errorf("partial result %q returned with error", got)
			}
			class, ok := derrors.ClassOf(err)
			if !ok || class != tt.class {
				t.Errorf("class = %q, want %q (%v)", class, tt.class, err)
			}
		})
	}
}

func TestEngineOrder(t *testing.T) {
	tests := []struct {
		order    int
		expected string
	}{
		{0, "x**3"},
		{1, "3*x**2"},
		{2, "3*2*x"},
		{3, "6"},
	}

	for _, tt := range tests {
		res, err := New(WithOrder(tt.order)).Run("x**3", "x")
		if err != nil {
			t.Fatalf("order %d: unexpected error: %v", tt.order, err)
		}
		if res.Derivative != tt.expected {
			t.Errorf("order %d: got %q, want %q", tt.order, res.Derivative, tt.expected)
		}
		if res.Order != tt.order {
			t.Errorf("Result.Order = %d, want %d", res.Order, tt.order)
		}
	}

	if _, err := New(WithOrder(-1)).Run("x", "x"); err == nil {
		t.Error("expected error for negative order")
	}
}

func TestResult(t *testing.T) {
	res, err := New().Run("2*3*x**2", "x")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := Result{
		Input:      "2*3*x**2",
		Variable:   "x",
		Order:      1,
		Expression: "6*x**2",
		Derivative: "6*2*x",
	}
	got := *res
	got.Tree, got.DerivativeTree = nil, nil
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Result mismatch (-want +got):\n%s", diff)
	}
	if res.Tree == nil || res.DerivativeTree == nil {
		t.Error("trees should be kept on the result")
	}

	data, err := json.Marshal(res)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !bytes.Contains(data, []byte(`"derivative":"6*2*x"`)) {
		t.Errorf("JSON = %s", data)
	}
	if bytes.Contains(data, []byte("Tree")) {
		t.Errorf("trees should not be serialized: %s", data)
	}
}

func TestTrace(t *testing.T) {
	logger := NewRecorder()
	if _, err := New(WithLogger(logger)).Run("x**2", "x"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{
		"tokens: VAR(x) POW(**) INTEGER(2) EOF",
		"ast: (x ** 2)",
		"derivative: (2 * x)",
		"result: 2*x",
	}
	if diff := cmp.Diff(want, logger.Lines()); diff != "" {
		t.Errorf("trace mismatch (-want +got):\n%s", diff)
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"  x**2 ", "x**2"},
		{"ｘ＊＊２", "x**2"},
		{"ｓｉｎ（ｘ）", "sin(x)"},
		{"x　+　1", "x + 1"},
	}

	for _, tt := range tests {
		if got := Normalize(tt.input); got != tt.expected {
			t.Errorf("Normalize(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}

	got, err := Differentiate("ｘ＊＊２", "ｘ")
	if err != nil || got != "2*x" {
		t.Errorf("full-width input: got %q, %v", got, err)
	}
}

func TestLoggers(t *testing.T) {
	var buf bytes.Buffer
	w := WriterLogger(&buf)
	w.Trace(StageAST, ast.NewVar("x"))
	w.Trace(StageResult, "1")
	if buf.String() != "ast: x\nresult: 1\n" {
		t.Errorf("WriterLogger wrote %q", buf.String())
	}

	r := NewRecorder()
	r.Trace(StageResult, "first")
	r.Trace(StageTokens, "EOF")
	r.Trace(StageResult, "second")
	if got, ok := r.Stage(StageResult); !ok || got != "second" {
		t.Errorf("Stage(result) = %q, %v", got, ok)
	}
	if _, ok := r.Stage(StageDerivative); ok {
		t.Error("Stage(derivative) should be missing")
	}
	if got := r.String(); got != "result: first\ntokens: EOF\nresult: second\n" {
		t.Errorf("Recorder.String() = %q", got)
	}
	r.Reset()
	if r.String() != "" || len(r.Entries()) != 0 {
		t.Error("Reset should clear the recorder")
	}

	n := NullLogger()
	n.Trace(StageResult, "ignored")
	if !isNull(n) || !isNull(nil) || isNull(r) {
		t.Error("isNull misreports")
	}
}

func TestTraceSkipsFailedStages(t *testing.T) {
	r := NewRecorder()
	if _, err := New(WithLogger(r)).Run("x/0", "x"); err == nil {
		t.Fatal("expected error")
	}

	want := []Entry{
		{Stage: StageTokens, Value: "VAR(x) DIV(/) INTEGER(0) EOF"},
		{Stage: StageAST, Value: "(x / 0)"},
	}
	if diff := cmp.Diff(want, r.Entries()); diff != "" {
		t.Errorf("trace mismatch (-want +got):\n%s", diff)
	}
}

func TestValidVariable(t *testing.T) {
	for _, v := range []string{"x", "y", "Z"} {
		if !ValidVariable(v) {
			t.Errorf("%q should be valid", v)
		}
	}
	for _, v := range []string{"", "xy", "1", "é", "_"} {
		if ValidVariable(v) {
			t.Errorf("%q should be invalid", v)
		}
	}
}
