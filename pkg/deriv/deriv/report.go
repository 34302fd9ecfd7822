package deriv

import (
	"strings"

	"github.com/fatih/color"

	derrors "github.com/sambeau/deriv/pkg/deriv/errors"
)

var headerColors = map[derrors.ErrorClass]color.Attribute{
	derrors.ClassLexical:  color.FgRed,
	derrors.ClassSyntax:   color.FgRed,
	derrors.ClassDomain:   color.FgYellow,
	derrors.ClassInput:    color.FgYellow,
	derrors.ClassInternal: color.FgMagenta,
}

// PrettyError formats err for a terminal. A *DerivError gets its multi-line
// form with the class header coloured when colored is set; any other error
// is returned as its message.
func PrettyError(err error, colored bool) string {
	de, ok := derrors.As(err)
	if !ok {
		return "Error: " + err.Error()
	}

	text := de.PrettyString()
	if !colored {
		return text
	}

	title := de.Title()
	attr, ok := headerColors[de.Class]
	if !ok {
		attr = color.FgRed
	}
	c := color.New(attr, color.Bold)
	c.EnableColor()
	return c.Sprint(title) + strings.TrimPrefix(text, title)
}
