package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/mattn/go-isatty"

	"github.com/sambeau/deriv/config"
	"github.com/sambeau/deriv/pkg/deriv/ast"
	"github.com/sambeau/deriv/pkg/deriv/batch"
	"github.com/sambeau/deriv/pkg/deriv/deriv"
	derrors "github.com/sambeau/deriv/pkg/deriv/errors"
	"github.com/sambeau/deriv/pkg/deriv/format"
	"github.com/sambeau/deriv/pkg/deriv/repl"
)

// Version is set at build time via -ldflags
var Version = "0.1.0-dev"

// errReported means the failure has already been shown to the user.
var errReported = errors.New("failed")

func main() {
	ctx := context.Background()
	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr, os.Getenv); err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
		os.Exit(1)
	}
}

// run is the main entry point, designed for testability (Mat Ryer pattern)
func run(ctx context.Context, args []string, stdout, stderr io.Writer, getenv func(string) string) error {
	flags := flag.NewFlagSet("deriv", flag.ContinueOnError)
	flags.SetOutput(stderr)
	flags.Usage = func() { printUsage(stderr) }

	var (
		evalExpr    string
		showVersion bool
		configPath  = flags.String("config", "", "Path to config file")
		variable    = flags.String("var", "", "Variable to differentiate by")
		order       = flags.Int("order", 1, "Derivative order")
		check       = flags.Bool("check", false, "Parse only, do not differentiate")
		jsonOut     = flags.Bool("json", false, "Write results as JSON")
		trace       = flags.Bool("trace", false, "Log every pipeline stage to stderr")
		watch       = flags.Bool("watch", false, "Re-run the batch file whenever it changes")
		colorMode   = flags.String("color", "", "Colour errors: auto, always or never")
		showHelp    = flags.Bool("help", false, "Show help")
	)
	flags.StringVar(&evalExpr, "e", "", "Differentiate an expression")
	flags.StringVar(&evalExpr, "eval", "", "Differentiate an expression")
	flags.BoolVar(&showVersion, "V", false, "Show version")
	flags.BoolVar(&showVersion, "version", false, "Show version")

	if err := flags.Parse(args); err != nil {
		return err
	}

	if *showHelp {
		printUsage(stdout)
		return nil
	}

	if showVersion {
		fmt.Fprintf(stdout, "deriv version %s\n", Version)
		return nil
	}

	cfg, _, err := config.LoadWithPath(*configPath, getenv)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// Apply CLI overrides; only flags given on the command line win.
	flags.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "var":
			cfg.Variable = *variable
		case "order":
			cfg.Order = *order
		case "json":
			if *jsonOut {
				cfg.Output = "json"
			} else {
				cfg.Output = "text"
			}
		case "trace":
			cfg.Trace = *trace
		case "color":
			cfg.Color = *colorMode
		}
	})

	// Full validation after CLI overrides applied
	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("config validation: %w", err)
	}

	colored := cfg.UseColor(isTerminal(stdout))
	opts := []deriv.Option{deriv.WithOrder(cfg.Order)}
	if cfg.Trace {
		opts = append(opts, deriv.WithLogger(deriv.WriterLogger(stderr)))
	}
	engine := deriv.New(opts...)

	files := flags.Args()
	switch {
	case evalExpr != "":
		return evaluate(engine, evalExpr, cfg, *check, colored, stdout, stderr)

	case *watch:
		if len(files) != 1 {
			return errors.New("--watch requires exactly one file")
		}
		return watchFile(ctx, engine, files[0], cfg, *check, colored, stdout, stderr)

	case len(files) > 0:
		runner := newRunner(engine, cfg, *check, colored, stdout, stderr)
		var total batch.Summary
		for _, file := range files {
			sum, err := runner.RunFile(file)
			if err != nil {
				return err
			}
			total.Jobs += sum.Jobs
			total.Failed += sum.Failed
		}
		if total.Failed > 0 {
			return fmt.Errorf("%d of %d expressions failed", total.Failed, total.Jobs)
		}
		return nil

	case *check:
		return errors.New("--check requires -e or at least one file")

	default:
		repl.Start(stdout, repl.Options{
			Variable:    cfg.Variable,
			Order:       cfg.Order,
			Prompt:      cfg.REPL.Prompt,
			HistoryFile: cfg.REPL.History,
			Completion:  cfg.REPL.Completion,
			Color:       colored,
			Trace:       cfg.Trace,
			Version:     Version,
		})
		return nil
	}
}

// evaluate handles -e: one expression, result on stdout.
func evaluate(engine *deriv.Engine, expr string, cfg *config.Config, check, colored bool, stdout, stderr io.Writer) error {
	var (
		res *deriv.Result
		err error
	)
	if check {
		var tree ast.Node
		if tree, err = engine.Parse(expr); err == nil {
			res = &deriv.Result{Input: expr, Expression: format.Print(tree)}
		}
	} else {
		res, err = engine.Run(expr, cfg.Variable)
	}

	if err != nil {
		if cfg.Output == "json" {
			de, ok := derrors.As(err)
			if !ok {
				return err
			}
			data, jerr := de.ToJSON()
			if jerr != nil {
				return jerr
			}
			fmt.Fprintln(stdout, string(data))
		} else {
			fmt.Fprintln(stderr, deriv.PrettyError(err, colored))
		}
		return errReported
	}

	if cfg.Output == "json" {
		data, err := json.Marshal(res)
		if err != nil {
			return err
		}
		fmt.Fprintln(stdout, string(data))
		return nil
	}
	if check {
		fmt.Fprintf(stdout, "ok %s\n", res.Expression)
		return nil
	}
	fmt.Fprintln(stdout, res.Derivative)
	return nil
}

func newRunner(engine *deriv.Engine, cfg *config.Config, check, colored bool, stdout, stderr io.Writer) *batch.Runner {
	return &batch.Runner{
		Engine:   engine,
		Variable: cfg.Variable,
		Check:    check,
		JSON:     cfg.Output == "json",
		Color:    colored,
		Stdout:   stdout,
		Stderr:   stderr,
	}
}

// watchFile re-runs a batch file on every change until interrupted.
func watchFile(ctx context.Context, engine *deriv.Engine, file string, cfg *config.Config, check, colored bool, stdout, stderr io.Writer) error {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	runner := newRunner(engine, cfg, check, colored, stdout, stderr)
	w, err := batch.NewWatcher(file, cfg.Watch.Debounce.Std(), func() {
		fmt.Fprintf(stderr, "[WATCH] %s\n", file)
		sum, err := runner.RunFile(file)
		if err != nil {
			fmt.Fprintf(stderr, "[WATCH ERROR] %v\n", err)
			return
		}
		if sum.Failed > 0 {
			fmt.Fprintf(stderr, "[WATCH] %d of %d expressions failed\n", sum.Failed, sum.Jobs)
		}
	}, stderr)
	if err != nil {
		return fmt.Errorf("starting watcher: %w", err)
	}
	return w.Start(ctx)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func printUsage(w io.Writer) {
	fmt.Fprintf(w, `deriv - symbolic differentiation of one-variable expressions

Usage:
  deriv [options]                  Start the interactive calculator
  deriv [options] -e "expr"        Differentiate one expression
  deriv [options] <file>...        Differentiate every line of each file

Options:
  -e, --eval EXPR   Differentiate EXPR and print the result
  --var NAME        Variable to differentiate by (default: x)
  --order N         Derivative order (default: 1)
  --check           Parse only, do not differentiate
  --json            Write results as JSON, one object per line
  --trace           Log tokens, tree and derivative to stderr
  --watch           Re-run the file whenever it changes
  --color MODE      Colour errors: auto, always or never
  --config PATH     Path to config file (default: auto-detect)
  -V, --version     Show version
  --help            Show this help

Batch files:
  One expression per line, optionally followed by '; var'.
  Blank lines and lines starting with # are skipped.

Config Resolution:
  1. --config flag
  2. DERIV_CONFIG environment variable
  3. ./deriv.yaml
  4. ~/.config/deriv/deriv.yaml

Examples:
  deriv -e "x**5"                  5*x**4
  deriv --var y -e "x*y"           x
  deriv --order 2 -e "sin(x)"      -sin(x)
  deriv --watch exprs.txt

`)
}
