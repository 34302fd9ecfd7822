// Package deriv is the public entry point to the differentiation pipeline.
//
// A call runs text through the lexer, parser, differentiation engine and
// printer in turn:
//
//	out, err := deriv.Differentiate("x**5", "x") // "5*x**4"
//
// Errors are *errors.DerivError values whose Class tells which stage failed.
package deriv

import (
	"fmt"
	"strings"

	"golang.org/x/text/width"

	"github.com/sambeau/deriv/pkg/deriv/ast"
	"github.com/sambeau/deriv/pkg/deriv/diff"
	derrors "github.com/sambeau/deriv/pkg/deriv/errors"
	"github.com/sambeau/deriv/pkg/deriv/format"
	"github.com/sambeau/deriv/pkg/deriv/lexer"
	"github.com/sambeau/deriv/pkg/deriv/parser"
)

// DefaultVariable is used when no variable is given.
const DefaultVariable = "x"

// Options configures an Engine.
type Options struct {
	Logger Logger // stage trace; nil discards
	Order  int    // how many times to differentiate
}

// Option sets a field of Options.
type Option func(*Options)

// WithLogger traces every pipeline stage to l.
func WithLogger(l Logger) Option {
	return func(opts *Options) {
		opts.Logger = l
	}
}

// WithOrder sets the derivative order. Zero parses and simplifies only.
func WithOrder(n int) Option {
	return func(opts *Options) {
		opts.Order = n
	}
}

// Engine runs the pipeline with fixed options. An Engine holds no state
// between runs and may be shared.
type Engine struct {
	opts Options
}

// New creates an Engine. The default order is 1.
func New(opts ...Option) *Engine {
	o := Options{Order: 1}
	for _, opt := range opts {
		opt(&o)
	}
	if o.Logger == nil {
		o.Logger = NullLogger()
	}
	return &Engine{opts: o}
}

// Result is the outcome of one pipeline run.
type Result struct {
	Input      string `json:"input"`
	Variable   string `json:"variable"`
	Order      int    `json:"order"`
	Expression string `json:"expression"` // input, simplified
	Derivative string `json:"derivative"`

	Tree           ast.Node `json:"-"`
	DerivativeTree ast.Node `json:"-"`
}

// Run differentiates expr with respect to variable.
func (e *Engine) Run(expr, variable string) (*Result, error) {
	variable = Normalize(variable)
	if variable == "" {
		variable = DefaultVariable
	}
	if !ValidVariable(variable) {
		return nil, derrors.New("INPUT-0001", map[string]any{"Got": variable})
	}

	tree, err := e.Parse(expr)
	if err != nil {
		return nil, err
	}

	d, err := diff.DifferentiateN(tree, ast.NewVar(variable), e.opts.Order)
	if err != nil {
		return nil, err
	}
	e.trace(StageDerivative, d)

	res := &Result{
		Input:          expr,
		Variable:       variable,
		Order:          e.opts.Order,
		Expression:     format.Render(tree),
		Derivative:     format.Render(d),
		Tree:           tree,
		DerivativeTree: d,
	}
	e.trace(StageResult, res.Derivative)
	return res, nil
}

// Parse normalizes and parses expr without differentiating it.
func (e *Engine) Parse(expr string) (ast.Node, error) {
	expr = Normalize(expr)

	if !isNull(e.opts.Logger) {
		// The parser stops at the first bad token; the error is reported there.
		if toks, err := lexer.Tokenize(expr); err == nil {
			e.trace(StageTokens, joinTokens(toks))
		}
	}

	tree, err := parser.ParseString(expr)
	if err != nil {
		return nil, err
	}
	e.trace(StageAST, tree)
	return tree, nil
}

func (e *Engine) trace(stage Stage, value any) {
	e.opts.Logger.Trace(stage, value)
}

func joinTokens(toks []lexer.Token) string {
	parts := make([]string, len(toks))
	for i, t := range toks {
		if t.Type == lexer.EOF {
			parts[i] = "EOF"
			continue
		}
		parts[i] = fmt.Sprintf("%s(%s)", t.Type, t.Literal)
	}
	return strings.Join(parts, " ")
}

// Differentiate returns the first derivative of expr with respect to
// variable as text.
func Differentiate(expr, variable string) (string, error) {
	res, err := New().Run(expr, variable)
	if err != nil {
		return "", err
	}
	return res.Derivative, nil
}

// Normalize trims surrounding space and folds full-width forms (as typed
// with some East Asian input methods) to their ASCII equivalents.
func Normalize(s string) string {
	return strings.TrimSpace(width.Fold.String(s))
}

// ValidVariable reports whether name is a single ASCII letter.
func ValidVariable(name string) bool {
	if len(name) != 1 {
		return false
	}
	c := name[0]
	return ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
}
