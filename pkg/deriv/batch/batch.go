// Package batch differentiates a file of expressions, one job per line.
//
// A line holds an expression, optionally followed by ';' and the variable:
//
//	# comments and blank lines are skipped
//	x**5
//	x*y ; y
//
// Every line is processed even when an earlier one fails.
package batch

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sambeau/deriv/pkg/deriv/ast"
	"github.com/sambeau/deriv/pkg/deriv/deriv"
	derrors "github.com/sambeau/deriv/pkg/deriv/errors"
	"github.com/sambeau/deriv/pkg/deriv/format"
)

// Job is one line of a batch file.
type Job struct {
	Line     int
	Expr     string
	Variable string // empty: the runner's default
}

// ParseLine splits a batch line into a job. ok is false for blank lines and
// comments.
func ParseLine(text string, line int) (job Job, ok bool) {
	text = strings.TrimSpace(text)
	if text == "" || strings.HasPrefix(text, "#") {
		return Job{}, false
	}

	job = Job{Line: line, Expr: text}
	if i := strings.LastIndex(text, ";"); i >= 0 {
		job.Expr = strings.TrimSpace(text[:i])
		job.Variable = strings.TrimSpace(text[i+1:])
	}
	return job, true
}

// Runner runs batch files through one engine.
type Runner struct {
	Engine   *deriv.Engine
	Variable string // default variable for lines without one
	Check    bool   // parse only
	JSON     bool   // one JSON object per line of output
	Color    bool
	Stdout   io.Writer
	Stderr   io.Writer
}

// Summary counts the jobs of one run.
type Summary struct {
	Jobs   int
	Failed int
}

// record is the JSON form of one job's outcome.
type record struct {
	File       string              `json:"file"`
	Line       int                 `json:"line"`
	Input      string              `json:"input"`
	Variable   string              `json:"variable,omitempty"`
	Order      int                 `json:"order,omitempty"`
	Expression string              `json:"expression,omitempty"`
	Derivative string              `json:"derivative,omitempty"`
	Error      *derrors.DerivError `json:"error,omitempty"`
}

// RunFile opens path and runs every job in it.
func (r *Runner) RunFile(path string) (Summary, error) {
	f, err := os.Open(path)
	if err != nil {
		return Summary{}, fmt.Errorf("opening batch file: %w", err)
	}
	defer f.Close()
	return r.Run(path, f)
}

// Run reads jobs from in; name labels the output. The error is only for
// failures reading in; failed jobs are counted in the summary.
func (r *Runner) Run(name string, in io.Reader) (Summary, error) {
	var sum Summary
	scanner := bufio.NewScanner(in)
	lineNo := 0

	for scanner.Scan() {
		lineNo++
		job, ok := ParseLine(scanner.Text(), lineNo)
		if !ok {
			continue
		}
		sum.Jobs++
		if err := r.runJob(name, job); err != nil {
			sum.Failed++
		}
	}

	if err := scanner.Err(); err != nil {
		return sum, fmt.Errorf("reading %s: %w", name, err)
	}
	return sum, nil
}

func (r *Runner) runJob(name string, job Job) error {
	variable := job.Variable
	if variable == "" {
		variable = r.Variable
	}
	rec := record{File: name, Line: job.Line, Input: job.Expr}

	var err error
	if r.Check {
		var tree ast.Node
		if tree, err = r.Engine.Parse(job.Expr); err == nil {
			rec.Expression = format.Print(tree)
		}
	} else {
		var res *deriv.Result
		if res, err = r.Engine.Run(job.Expr, variable); err == nil {
			rec.Variable = res.Variable
			rec.Order = res.Order
			rec.Expression = res.Expression
			rec.Derivative = res.Derivative
		}
	}

	if err != nil {
		de, ok := derrors.As(err)
		if !ok {
			de = derrors.NewSimple(derrors.ClassInternal, err.Error())
		}
		rec.Error = de.WithFile(name).WithLine(job.Line)
	}

	r.report(rec)
	return err
}

func (r *Runner) report(rec record) {
	if r.JSON {
		data, err := json.Marshal(rec)
		if err != nil {
			fmt.Fprintf(r.Stderr, "%s:%d: %v\n", rec.File, rec.Line, err)
			return
		}
		fmt.Fprintln(r.Stdout, string(data))
		return
	}

	if rec.Error != nil {
		fmt.Fprintln(r.Stderr, deriv.PrettyError(rec.Error, r.Color))
		return
	}
	if r.Check {
		fmt.Fprintf(r.Stdout, "%s:%d: ok %s\n", rec.File, rec.Line, rec.Expression)
		return
	}
	fmt.Fprintf(r.Stdout, "%s:%d: %s\n", rec.File, rec.Line, rec.Derivative)
}
