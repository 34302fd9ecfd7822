package lexer

import (
	"fmt"
	"math/big"

	derrors "github.com/sambeau/deriv/pkg/deriv/errors"
)

// TokenType represents different types of tokens
type TokenType int

const (
	// Special tokens
	ILLEGAL TokenType = iota
	EOF

	// Literals
	INTEGER // 1343456
	VAR     // x, y, T
	FUNC    // sin, cos, exp, ...

	// Operators
	PLUS  // +
	MINUS // -
	MUL   // *
	DIV   // /
	POW   // **

	// Delimiters
	LPAREN // (
	RPAREN // )
)

// Token represents a single token
type Token struct {
	Type    TokenType
	Literal string
	Value   *big.Int // exact value of an INTEGER
	Column  int   // 1-based column of the first character
}

// String returns a string representation of the token
func (t Token) String() string {
	return fmt.Sprintf("{Type: %s, Literal: %s, Column: %d}", t.Type.String(), t.Literal, t.Column)
}

// Describe returns the token as it should read in an error message.
func (t Token) Describe() string {
	if t.Type == EOF {
		return "end of input"
	}
	return "'" + t.Literal + "'"
}

// String returns a string representation of the token type
func (tt TokenType) String() string {
	switch tt {
	case ILLEGAL:
		return "ILLEGAL"
	case EOF:
		return "EOF"
	case INTEGER:
		return "INTEGER"
	case VAR:
		return "VAR"
	case FUNC:
		return "FUNC"
	case PLUS:
		return "PLUS"
	case MINUS:
		return "MINUS"
	case MUL:
		return "MUL"
	case DIV:
		return "DIV"
	case POW:
		return "POW"
	case LPAREN:
		return "LPAREN"
	case RPAREN:
		return "RPAREN"
	default:
		return fmt.Sprintf("TokenType(%d)", int(tt))
	}
}

// Symbol returns the source text of an operator or delimiter type.
func (tt TokenType) Symbol() string {
	switch tt {
	case PLUS:
		return "+"
	case MINUS:
		return "-"
	case MUL:
		return "*"
	case DIV:
		return "/"
	case POW:
		return "**"
	case LPAREN:
		return "("
	case RPAREN:
		return ")"
	}
	return ""
}

// Functions lists the recognized function names in their canonical order.
var Functions = []string{"exp", "log", "sin", "cos", "tan", "cosec", "sec", "cot"}

var functions = map[string]bool{
	"exp":   true,
	"log":   true,
	"sin":   true,
	"cos":   true,
	"tan":   true,
	"cosec": true,
	"sec":   true,
	"cot":   true,
}

// IsFunction checks if name is one of the recognized functions
func IsFunction(name string) bool {
	return functions[name]
}

// LookupIdent classifies an alphabetic run as VAR or FUNC.
// ILLEGAL means the run is neither.
func LookupIdent(ident string) TokenType {
	if len(ident) == 1 {
		return VAR
	}
	if IsFunction(ident) {
		return FUNC
	}
	return ILLEGAL
}

// Lexer represents the lexical analyzer
type Lexer struct {
	input        string
	position     int  // current position in input (points to current char)
	readPosition int  // current reading position in input (after current char)
	ch           byte // current char under examination
	err          error
}

// New creates a new lexer instance
func New(input string) *Lexer {
	l := &Lexer{input: input}
	l.readChar()
	return l
}

// readChar reads the next character and advances position.
// The grammar is ASCII only, so bytes are enough.
func (l *Lexer) readChar() {
	if l.readPosition >= len(l.input) {
		l.ch = 0 // ASCII NUL character represents EOF
		l.position = l.readPosition
		return
	}
	l.ch = l.input[l.readPosition]
	l.position = l.readPosition
	l.readPosition++
}

// peekChar returns the next character without advancing position
func (l *Lexer) peekChar() byte {
	if l.readPosition >= len(l.input) {
		return 0
	}
	return l.input[l.readPosition]
}

// atEnd reports whether the whole input has been consumed.
func (l *Lexer) atEnd() bool {
	return l.position >= len(l.input)
}

// NextToken scans the input and returns the next token.
// Once an error is returned the lexer stays on the offending input and
// returns the same error on every later call.
func (l *Lexer) NextToken() (Token, error) {
	if l.err != nil {
		return Token{}, l.err
	}

	l.skipWhitespace()

	column := l.position + 1
	if l.atEnd() {
		return Token{Type: EOF, Column: column}, nil
	}

	var tok Token
	switch l.ch {
	case '+':
		tok = newToken(PLUS, column)
	case '-':
		tok = newToken(MINUS, column)
	case '/':
		tok = newToken(DIV, column)
	case '(':
		tok = newToken(LPAREN, column)
	case ')':
		tok = newToken(RPAREN, column)
	case '*':
		return l.readAsterisks()
	default:
		if isDigit(l.ch) {
			return l.readInteger()
		}
		if isLetter(l.ch) {
			return l.readIdentifier()
		}
		return l.fail(derrors.NewAt("LEX-0001", column, map[string]any{"Char": l.currentChar()}))
	}

	l.readChar()
	return tok, nil
}

// Tokenize returns every token of input up to and including EOF.
func Tokenize(input string) ([]Token, error) {
	l := New(input)
	var tokens []Token
	for {
		tok, err := l.NextToken()
		if err != nil {
			return tokens, err
		}
		tokens = append(tokens, tok)
		if tok.Type == EOF {
			return tokens, nil
		}
	}
}

// newToken creates an operator or delimiter token
func newToken(tokenType TokenType, column int) Token {
	return Token{Type: tokenType, Literal: tokenType.Symbol(), Column: column}
}

// fail records err so that the lexer never moves past the bad input.
func (l *Lexer) fail(err *derrors.DerivError) (Token, error) {
	l.err = err
	return Token{}, err
}

// currentChar returns the full (possibly multi-byte) character at position
// for error messages.
func (l *Lexer) currentChar() string {
	for _, r := range l.input[l.position:] {
		return string(r)
	}
	return ""
}

// readInteger reads a run of digits. Signs are handled by the parser.
func (l *Lexer) readInteger() (Token, error) {
	start := l.position
	for isDigit(l.ch) && !l.atEnd() {
		l.readChar()
	}
	literal := l.input[start:l.position]

	// A run of ASCII digits always parses.
	value, _ := new(big.Int).SetString(literal, 10)
	return Token{Type: INTEGER, Literal: literal, Value: value, Column: start + 1}, nil
}

// readIdentifier reads an alphabetic run and classifies it.
func (l *Lexer) readIdentifier() (Token, error) {
	start := l.position
	for isLetter(l.ch) && !l.atEnd() {
		l.readChar()
	}
	ident := l.input[start:l.position]

	tokType := LookupIdent(ident)
	if tokType == ILLEGAL {
		l.rewind(start)
		return l.fail(derrors.NewInvalidIdentifier(ident, start+1, Functions))
	}
	return Token{Type: tokType, Literal: ident, Column: start + 1}, nil
}

// readAsterisks distinguishes * (product) from ** (power).
func (l *Lexer) readAsterisks() (Token, error) {
	start := l.position
	for l.ch == '*' && !l.atEnd() {
		l.readChar()
	}
	run := l.input[start:l.position]

	switch len(run) {
	case 1:
		return newToken(MUL, start+1), nil
	case 2:
		return newToken(POW, start+1), nil
	}
	l.rewind(start)
	return l.fail(derrors.NewAt("LEX-0003", start+1, map[string]any{"Literal": run}))
}

// rewind moves the cursor back to pos so the failing input stays unconsumed.
func (l *Lexer) rewind(pos int) {
	l.readPosition = pos
	l.readChar()
}

// Remaining returns the unconsumed input, starting at the current character.
func (l *Lexer) Remaining() string {
	return l.input[l.position:]
}

// skipWhitespace skips spaces, tabs and line breaks.
func (l *Lexer) skipWhitespace() {
	for isWhitespace(l.ch) && !l.atEnd() {
		l.readChar()
	}
}

// isLetter checks if a byte is an ASCII letter.
func isLetter(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

// isDigit checks if the character is a digit
func isDigit(ch byte) bool {
	return '0' <= ch && ch <= '9'
}

func isWhitespace(ch byte) bool {
	return ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r' || ch == '\v' || ch == '\f'
}
