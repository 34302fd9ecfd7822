// Package errors provides structured error types for the deriv pipeline.
//
// Every stage (lexer, parser, algebra, diff) reports failures as a
// *DerivError. The Class field says which stage failed; the Code field keys
// into ErrorCatalog so messages stay consistent between the REPL, batch mode
// and JSON output.
package errors

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"strings"
	"text/template"
)

// ErrorClass categorizes errors for filtering and templating.
type ErrorClass string

const (
	ClassLexical  ErrorClass = "lexical"  // Tokenizer errors
	ClassSyntax   ErrorClass = "syntax"   // Parser errors
	ClassDomain   ErrorClass = "domain"   // Division by a literal zero
	ClassInternal ErrorClass = "internal" // Malformed trees (a bug)
	ClassInput    ErrorClass = "input"    // Bad arguments to the pipeline
)

// DerivError represents any error raised while differentiating an expression.
type DerivError struct {
	Class   ErrorClass     `json:"class"`           // Error category
	Code    string         `json:"code"`            // Error code (e.g., "LEX-0001")
	Message string         `json:"message"`         // Human-readable message
	Hints   []string       `json:"hints,omitempty"` // Suggestions for fixing
	Line    int            `json:"line"`            // 1-based line (0 if unknown)
	Column  int            `json:"column"`          // 1-based column (0 if unknown)
	File    string         `json:"file,omitempty"`  // File path (batch mode)
	Data    map[string]any `json:"data,omitempty"`  // Template variables
}

// Error implements the error interface.
func (e *DerivError) Error() string {
	return e.String()
}

// String returns a formatted string representation of the error.
func (e *DerivError) String() string {
	var sb strings.Builder

	if e.File != "" {
		sb.WriteString(e.File)
		sb.WriteString(": ")
	}
	if e.Line > 0 {
		sb.WriteString(fmt.Sprintf("line %d, column %d: ", e.Line, e.Column))
	} else if e.Column > 0 {
		sb.WriteString(fmt.Sprintf("column %d: ", e.Column))
	}

	sb.WriteString(e.Message)

	for _, hint := range e.Hints {
		sb.WriteString("\n  ")
		sb.WriteString(hint)
	}

	return sb.String()
}

// Title returns the display header for the error class.
func (e *DerivError) Title() string {
	switch e.Class {
	case ClassLexical:
		return "Lexical error"
	case ClassSyntax:
		return "Syntax error"
	case ClassDomain:
		return "Domain error"
	case ClassInput:
		return "Input error"
	default:
		return "Internal error"
	}
}

// PrettyString returns a multi-line formatted string for display.
func (e *DerivError) PrettyString() string {
	var sb strings.Builder

	sb.WriteString(e.Title())

	if e.File != "" {
		sb.WriteString(":\n  in: ")
		sb.WriteString(e.File)
		if e.Line > 0 {
			sb.WriteString(fmt.Sprintf("\n  at: line %d, column %d", e.Line, e.Column))
		}
		sb.WriteString("\n  ")
	} else if e.Column > 0 {
		sb.WriteString(fmt.Sprintf(": column %d\n  ", e.Column))
	} else {
		sb.WriteString(":\n  ")
	}

	sb.WriteString(e.Message)

	for i, hint := range e.Hints {
		sb.WriteString("\n  ")
		if i == 0 {
			sb.WriteString("Use: ")
		} else {
			sb.WriteString(" or: ")
		}
		sb.WriteString(hint)
	}

	return sb.String()
}

// ToJSON returns the error as JSON bytes.
func (e *DerivError) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// WithFile returns a copy of the error with the file path set.
func (e *DerivError) WithFile(file string) *DerivError {
	copy := *e
	copy.File = file
	return &copy
}

// WithPosition returns a copy of the error with line and column set.
func (e *DerivError) WithPosition(line, column int) *DerivError {
	copy := *e
	copy.Line = line
	copy.Column = column
	return &copy
}

// WithLine returns a copy of the error with the line set, keeping the column.
func (e *DerivError) WithLine(line int) *DerivError {
	return e.WithPosition(line, e.Column)
}

// ErrorDef defines an error in the catalog.
type ErrorDef struct {
	Class    ErrorClass // Error category
	Template string     // Message template with {{.placeholders}}
	Hints    []string   // Hint templates (may use {{.placeholders}})
}

// ErrorCatalog maps error codes to their definitions.
var ErrorCatalog = map[string]ErrorDef{
	// ========================================
	// Lexical errors (LEX-0xxx)
	// ========================================
	"LEX-0001": {
		Class:    ClassLexical,
		Template: "invalid character '{{.Char}}'",
	},
	"LEX-0002": {
		Class:    ClassLexical,
		Template: "invalid identifier '{{.Ident}}'",
		Hints:    []string{"variables are single letters; functions are exp, log, sin, cos, tan, cosec, sec, cot"},
		// Hint "Did you mean `X`?" added dynamically by fuzzy matching
	},
	"LEX-0003": {
		Class:    ClassLexical,
		Template: "invalid operator '{{.Literal}}'",
		Hints:    []string{"use * for products and ** for powers"},
	},

	// ========================================
	// Syntax errors (PARSE-0xxx)
	// ========================================
	"PARSE-0001": {
		Class:    ClassSyntax,
		Template: "invalid syntax: expected {{.Expected}}, got {{.Got}}",
	},
	"PARSE-0002": {
		Class:    ClassSyntax,
		Template: "invalid syntax: unexpected {{.Got}} after complete expression",
	},
	"PARSE-0003": {
		Class:    ClassSyntax,
		Template: "invalid syntax: {{.Func}} cannot be applied to a signed argument",
		Hints:    []string{"{{.Func}}({{.Sign}}...)"},
	},

	// ========================================
	// Domain errors (DOMAIN-0xxx)
	// ========================================
	"DOMAIN-0001": {
		Class:    ClassDomain,
		Template: "division by zero",
	},

	// ========================================
	// Internal errors (INTERNAL-0xxx)
	// ========================================
	"INTERNAL-0001": {
		Class:    ClassInternal,
		Template: "unrecognized node {{.Node}}",
	},
	"INTERNAL-0002": {
		Class:    ClassInternal,
		Template: "no derivative rule for function '{{.Func}}'",
	},

	// ========================================
	// Input errors (INPUT-0xxx)
	// ========================================
	"INPUT-0001": {
		Class:    ClassInput,
		Template: "variable must be a single letter, got '{{.Got}}'",
	},
	"INPUT-0002": {
		Class:    ClassInput,
		Template: "derivative order must be between 0 and {{.Max}}, got {{.Got}}",
	},
}

// New creates a DerivError from the catalog.
// If the code is not found, creates an internal error with the message.
func New(code string, data map[string]any) *DerivError {
	def, ok := ErrorCatalog[code]
	if !ok {
		msg := code
		if data != nil {
			if m, ok := data["message"].(string); ok {
				msg = m
			}
		}
		return &DerivError{
			Class:   ClassInternal,
			Code:    code,
			Message: msg,
			Data:    data,
		}
	}

	msg := renderTemplate(def.Template, data)

	var hints []string
	for _, hintTmpl := range def.Hints {
		rendered := renderTemplate(hintTmpl, data)
		if rendered != "" {
			hints = append(hints, rendered)
		}
	}

	return &DerivError{
		Class:   def.Class,
		Code:    code,
		Message: msg,
		Hints:   hints,
		Data:    data,
	}
}

// NewAt creates a DerivError with a column position (expressions are a single line).
func NewAt(code string, column int, data map[string]any) *DerivError {
	err := New(code, data)
	err.Column = column
	return err
}

// NewSimple creates a simple error without using the catalog.
func NewSimple(class ErrorClass, message string) *DerivError {
	return &DerivError{
		Class:   class,
		Message: message,
	}
}

// renderTemplate renders a Go template with the given data.
func renderTemplate(tmplStr string, data map[string]any) string {
	if data == nil {
		return tmplStr
	}

	tmpl, err := template.New("").Parse(tmplStr)
	if err != nil {
		return tmplStr
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return tmplStr
	}
	return buf.String()
}

// ClassOf returns the class of err if it is (or wraps) a *DerivError.
func ClassOf(err error) (ErrorClass, bool) {
	var de *DerivError
	if stderrors.As(err, &de) {
		return de.Class, true
	}
	return "", false
}

// As unwraps err into a *DerivError.
func As(err error) (*DerivError, bool) {
	var de *DerivError
	if stderrors.As(err, &de) {
		return de, true
	}
	return nil, false
}

// IsLexical reports whether err is a tokenizer error.
func IsLexical(err error) bool { return hasClass(err, ClassLexical) }

// IsSyntax reports whether err is a parser error.
func IsSyntax(err error) bool { return hasClass(err, ClassSyntax) }

// IsDomain reports whether err is a division by zero.
func IsDomain(err error) bool { return hasClass(err, ClassDomain) }

// IsInternal reports whether err signals a malformed tree.
func IsInternal(err error) bool { return hasClass(err, ClassInternal) }

func hasClass(err error, class ErrorClass) bool {
	c, ok := ClassOf(err)
	return ok && c == class
}

// ============================================================================
// Fuzzy Matching - "Did you mean?" suggestions
// ============================================================================

// levenshteinDistance computes the edit distance between two strings.
func levenshteinDistance(a, b string) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	matrix := make([][]int, len(a)+1)
	for i := range matrix {
		matrix[i] = make([]int, len(b)+1)
		matrix[i][0] = i
	}
	for j := range matrix[0] {
		matrix[0][j] = j
	}

	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			cost := 0
			if a[i-1] != b[j-1] {
				cost = 1
			}
			matrix[i][j] = min(
				matrix[i-1][j]+1,      // deletion
				matrix[i][j-1]+1,      // insertion
				matrix[i-1][j-1]+cost, // substitution
			)
		}
	}

	return matrix[len(a)][len(b)]
}

// FindClosestMatch finds the closest match to the given string from candidates.
// Returns the best match if the distance is within the threshold, otherwise empty string.
func FindClosestMatch(input string, candidates []string) string {
	if len(input) == 0 || len(candidates) == 0 {
		return ""
	}

	inputLower := strings.ToLower(input)

	var bestMatch string
	bestDistance := -1

	for _, candidate := range candidates {
		dist := levenshteinDistance(inputLower, strings.ToLower(candidate))
		if bestDistance == -1 || dist < bestDistance {
			bestDistance = dist
			bestMatch = candidate
		}
	}

	// Short words (1-3): max 1 edit
	// Medium words (4-6): max 2 edits
	// Longer words (7+): max 3 edits
	threshold := 1
	if len(input) >= 4 && len(input) <= 6 {
		threshold = 2
	} else if len(input) >= 7 {
		threshold = 3
	}

	// An exact match only differs in case, which is still worth pointing out.
	if bestDistance < 0 || bestDistance > threshold {
		return ""
	}
	if bestDistance == 0 && bestMatch == input {
		return ""
	}

	return bestMatch
}

// NewInvalidIdentifier creates a LEX-0002 error with a "Did you mean?" hint.
func NewInvalidIdentifier(ident string, column int, known []string) *DerivError {
	err := NewAt("LEX-0002", column, map[string]any{"Ident": ident})
	if match := FindClosestMatch(ident, known); match != "" {
		err.Hints = append([]string{fmt.Sprintf("Did you mean `%s`?", match)}, err.Hints...)
	}
	return err
}
