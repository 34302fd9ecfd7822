package repl

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/peterh/liner"

	"github.com/sambeau/deriv/pkg/deriv/deriv"
	"github.com/sambeau/deriv/pkg/deriv/diff"
	"github.com/sambeau/deriv/pkg/deriv/lexer"
)

// DefaultPrompt shows the current variable in place of {var}.
const DefaultPrompt = "d/d{var} >> "

const BANNER = `
    -------------------------
    - Derivative calculator -
    -------------------------`

// REPL commands for tab completion
var commandWords = []string{":var", ":order", ":trace", ":functions", ":help", "exit", "quit"}

// Options configures a REPL session.
type Options struct {
	Variable    string
	Order       int
	Prompt      string
	HistoryFile string // empty: a file in the temp dir
	Completion  bool
	Color       bool
	Trace       bool
	Version     string
}

// Start starts the REPL with line editing, history, and tab completion
func Start(out io.Writer, opts Options) {
	line := liner.NewLiner()
	defer line.Close()

	// Enable Ctrl+C to abort current line
	line.SetCtrlCAborts(true)

	if opts.Completion {
		line.SetCompleter(filterCompletions)
	}

	historyFile := opts.HistoryFile
	if historyFile == "" {
		historyFile = filepath.Join(os.TempDir(), ".deriv_history")
	}
	if f, err := os.Open(historyFile); err == nil {
		line.ReadHistory(f)
		f.Close()
	}
	defer func() {
		if f, err := os.Create(historyFile); err == nil {
			line.WriteHistory(f)
			f.Close()
		}
	}()

	s := newSession(out, opts)
	s.banner()

	for {
		input, err := line.Prompt(s.prompt())
		if err != nil {
			if err == liner.ErrPromptAborted {
				fmt.Fprintln(out, "^C")
				continue
			}
			if err == io.EOF {
				fmt.Fprintln(out, "\nGoodbye!")
				return
			}
			fmt.Fprintf(out, "Error reading input: %v\n", err)
			continue
		}

		if strings.TrimSpace(input) != "" {
			line.AppendHistory(input)
		}
		if quit := s.handle(input); quit {
			return
		}
	}
}

// session holds the settings a user can change between prompts.
type session struct {
	out       io.Writer
	variable  string
	order     int
	trace     bool
	color     bool
	promptFmt string
	version   string
}

func newSession(out io.Writer, opts Options) *session {
	s := &session{
		out:       out,
		variable:  opts.Variable,
		order:     opts.Order,
		trace:     opts.Trace,
		color:     opts.Color,
		promptFmt: opts.Prompt,
		version:   opts.Version,
	}
	if !deriv.ValidVariable(s.variable) {
		s.variable = deriv.DefaultVariable
	}
	if s.order < 0 || s.order > diff.MaxOrder {
		s.order = 1
	}
	if s.promptFmt == "" {
		s.promptFmt = DefaultPrompt
	}
	return s
}

func (s *session) prompt() string {
	return strings.ReplaceAll(s.promptFmt, "{var}", s.variable)
}

func (s *session) banner() {
	fmt.Fprintln(s.out, BANNER)
	if s.version != "" {
		fmt.Fprintln(s.out, "    v", s.version)
	}
	fmt.Fprintln(s.out, "")
	fmt.Fprintf(s.out, " - Supported functions are: %s.\n", strings.Join(lexer.Functions, ", "))
	fmt.Fprintln(s.out, " - Powers are represented by a double asterisk (**).")
	fmt.Fprintln(s.out, " - Valid variables are single letters.")
	fmt.Fprintln(s.out, "")
	fmt.Fprintln(s.out, "Type 'exit' or Ctrl+D to quit")
	fmt.Fprintln(s.out, "Type ':help' for REPL commands")
	fmt.Fprintln(s.out, "")
}

// handle runs one line of input and reports whether the session should end.
func (s *session) handle(input string) bool {
	trimmed := strings.TrimSpace(input)

	switch {
	case trimmed == "":
		return false
	case trimmed == "exit" || trimmed == "quit":
		fmt.Fprintln(s.out, "Goodbye!")
		return true
	case strings.HasPrefix(trimmed, ":"):
		s.handleReplCommand(trimmed)
		return false
	}

	opts := []deriv.Option{deriv.WithOrder(s.order)}
	if s.trace {
		opts = append(opts, deriv.WithLogger(deriv.WriterLogger(s.out)))
	}

	res, err := deriv.New(opts...).Run(trimmed, s.variable)
	if err != nil {
		fmt.Fprintln(s.out, deriv.PrettyError(err, s.color))
		return false
	}
	fmt.Fprintln(s.out, res.Derivative)
	return false
}

// handleReplCommand handles REPL meta-commands that start with ':'
func (s *session) handleReplCommand(cmd string) {
	fields := strings.Fields(cmd)
	name, args := fields[0], fields[1:]

	switch name {
	case ":help", ":h", ":?":
		fmt.Fprintln(s.out, "REPL Commands:")
		fmt.Fprintln(s.out, "  :help, :h, :?   Show this help")
		fmt.Fprintln(s.out, "  :var [v]        Show or set the variable to differentiate by")
		fmt.Fprintln(s.out, "  :order [n]      Show or set the derivative order")
		fmt.Fprintln(s.out, "  :trace          Toggle pipeline tracing")
		fmt.Fprintln(s.out, "  :functions      List the supported functions")
		fmt.Fprintln(s.out, "  exit, quit      Exit the REPL")

	case ":var":
		if len(args) == 0 {
			fmt.Fprintf(s.out, "Variable: %s\n", s.variable)
			return
		}
		v := deriv.Normalize(args[0])
		if len(args) > 1 || !deriv.ValidVariable(v) {
			fmt.Fprintf(s.out, "Invalid variable %q: variables are single letters\n", strings.Join(args, " "))
			return
		}
		s.variable = v
		fmt.Fprintf(s.out, "Variable set to %s\n", v)

	case ":order":
		if len(args) == 0 {
			fmt.Fprintf(s.out, "Order: %d\n", s.order)
			return
		}
		n, err := strconv.Atoi(args[0])
		if err != nil || n < 0 || n > diff.MaxOrder || len(args) > 1 {
			fmt.Fprintf(s.out, "Invalid order %q: expected an integer from 0 to %d\n", strings.Join(args, " "), diff.MaxOrder)
			return
		}
		s.order = n
		fmt.Fprintf(s.out, "Order set to %d\n", n)

	case ":trace":
		s.trace = !s.trace
		if s.trace {
			fmt.Fprintln(s.out, "Tracing ON")
		} else {
			fmt.Fprintln(s.out, "Tracing OFF")
		}

	case ":functions":
		fmt.Fprintln(s.out, strings.Join(lexer.Functions, " "))

	default:
		fmt.Fprintf(s.out, "Unknown command: %s (type :help for commands)\n", name)
	}
}

// filterCompletions returns whole-line candidates that complete the word
// under the cursor: a command at the start of the line, otherwise a
// function name.
func filterCompletions(line string) []string {
	if strings.TrimSpace(line) == "" {
		return nil
	}
	if last := line[len(line)-1]; last == ' ' || last == '\t' {
		return nil
	}

	if strings.HasPrefix(line, ":") {
		return complete(line, "", commandWords)
	}

	var matches []string
	if !strings.ContainsAny(line, " ()*+-/") {
		matches = complete(line, "", commandWords)
	}

	start := len(line)
	for start > 0 && isLetter(line[start-1]) {
		start--
	}
	// Single letters are variables; nothing to complete.
	if word := line[start:]; len(word) >= 2 {
		matches = append(matches, complete(word, line[:start], lexer.Functions)...)
	}
	return matches
}

func complete(word, prefix string, candidates []string) []string {
	var matches []string
	for _, c := range candidates {
		if strings.HasPrefix(c, word) && c != word {
			matches = append(matches, prefix+c)
		}
	}
	return matches
}

func isLetter(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}
