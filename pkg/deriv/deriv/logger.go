package deriv

import (
	"fmt"
	"io"
	"strings"
	"sync"
)

// Stage names a step of the pipeline in trace output.
type Stage string

const (
	StageTokens     Stage = "tokens"     // token stream of the normalized input
	StageAST        Stage = "ast"        // parsed tree, as written
	StageDerivative Stage = "derivative" // derivative tree before rendering
	StageResult     Stage = "result"     // rendered derivative
)

// Logger receives one call per pipeline stage when tracing is on.
type Logger interface {
	Trace(stage Stage, value any)
}

// Entry is one traced stage.
type Entry struct {
	Stage Stage
	Value string
}

func (e Entry) String() string {
	return string(e.Stage) + ": " + e.Value
}

func newEntry(stage Stage, value any) Entry {
	return Entry{Stage: stage, Value: fmt.Sprint(value)}
}

// writerLogger writes one "stage: value" line per call.
type writerLogger struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *writerLogger) Trace(stage Stage, value any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintln(l.w, newEntry(stage, value))
}

// WriterLogger returns a logger that writes each stage to w as it happens.
func WriterLogger(w io.Writer) Logger {
	return &writerLogger{w: w}
}

// Recorder keeps every traced stage in memory. It is safe for concurrent
// use, so one Recorder may watch an Engine shared between goroutines.
type Recorder struct {
	mu      sync.Mutex
	entries []Entry
}

// NewRecorder returns an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) Trace(stage Stage, value any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, newEntry(stage, value))
}

// Entries returns a copy of the recorded stages in order.
func (r *Recorder) Entries() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Entry, len(r.entries))
	copy(out, r.entries)
	return out
}

// Stage returns the value recorded last for stage.
func (r *Recorder) Stage(stage Stage) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.entries) - 1; i >= 0; i-- {
		if r.entries[i].Stage == stage {
			return r.entries[i].Value, true
		}
	}
	return "", false
}

// Lines returns the recorded stages as "stage: value" lines.
func (r *Recorder) Lines() []string {
	entries := r.Entries()
	lines := make([]string, len(entries))
	for i, e := range entries {
		lines[i] = e.String()
	}
	return lines
}

func (r *Recorder) String() string {
	lines := r.Lines()
	if len(lines) == 0 {
		return ""
	}
	return strings.Join(lines, "\n") + "\n"
}

// Reset drops everything recorded so far.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = r.entries[:0]
}

type nullLogger struct{}

func (nullLogger) Trace(Stage, any) {}

// NullLogger returns a logger that discards everything. Engines skip the
// work of building trace values for it.
func NullLogger() Logger {
	return nullLogger{}
}

func isNull(l Logger) bool {
	_, ok := l.(nullLogger)
	return l == nil || ok
}
