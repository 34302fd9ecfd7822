package format

import (
	"github.com/sambeau/deriv/pkg/deriv/algebra"
	"github.com/sambeau/deriv/pkg/deriv/ast"
)

// Render simplifies node and returns its minimal textual form.
//
// Constants are folded and identity operands dropped, so the tree printed
// is algebra.Simplify(node); node itself is not modified.
func Render(node ast.Node) string {
	return Print(algebra.Simplify(node))
}

// Print returns the textual form of node exactly as built, with only
// prefix-sign chains collapsed.
func Print(node ast.Node) string {
	if node == nil {
		return ""
	}
	p := NewPrinter()
	p.Print(node)
	return p.String()
}
