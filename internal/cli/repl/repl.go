package repl

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/yndnr/respkv/internal/cli/output"
	"github.com/yndnr/respkv/internal/core/domain"
)

// Executor sends one command and returns its reply.
type Executor interface {
	Do(ctx context.Context, tokens ...string) (domain.Reply, error)
}

// REPL represents the Read-Eval-Print Loop.
type REPL struct {
	input     io.Reader
	output    io.Writer
	exec      Executor
	formatter output.Formatter
	completer *Completer
	history   *History
	prompt    string
}

// Option configures a REPL.
type Option func(*REPL)

// WithIO replaces stdin and stdout.
func WithIO(in io.Reader, out io.Writer) Option {
	return func(r *REPL) {
		r.input = in
		r.output = out
	}
}

// WithHistory sets the history store.
func WithHistory(h *History) Option {
	return func(r *REPL) {
		r.history = h
	}
}

// WithPrompt sets the prompt printed before each line.
func WithPrompt(p string) Option {
	return func(r *REPL) {
		r.prompt = p
	}
}

// New creates a new REPL instance.
func New(exec Executor, f output.Formatter, opts ...Option) *REPL {
	r := &REPL{
		input:     os.Stdin,
		output:    os.Stdout,
		exec:      exec,
		formatter: f,
		completer: NewCompleter(),
		history:   NewHistory(""),
		prompt:    "respkv> ",
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run starts the REPL loop. It returns nil on exit, quit or end of input
// and the transport error when the connection fails.
func (r *REPL) Run(ctx context.Context) error {
	if err := r.history.Load(); err != nil {
		fmt.Fprintf(r.output, "warning: cannot load history: %v\n", err)
	}
	defer func() {
		if err := r.history.Save(); err != nil {
			fmt.Fprintf(r.output, "warning: cannot save history: %v\n", err)
		}
	}()

	reader := bufio.NewReader(r.input)
	for {
		fmt.Fprint(r.output, r.prompt)

		line, err := reader.ReadString('\n')
		if err == io.EOF && line == "" {
			fmt.Fprintln(r.output)
			return nil
		}
		if err != nil && err != io.EOF {
			return err
		}

		line = strings.TrimSpace(line)
		if line == "" {
			if err == io.EOF {
				return nil
			}
			continue
		}

		r.history.Add(line)

		done, execErr := r.execute(ctx, line)
		if execErr != nil {
			return execErr
		}
		if done || err == io.EOF {
			return nil
		}
	}
}

// execute runs one line and reports whether the session should end.
func (r *REPL) execute(ctx context.Context, line string) (bool, error) {
	words, err := Split(line)
	if err != nil {
		fmt.Fprintf(r.output, "(error) %v\n", err)
		return false, nil
	}
	if len(words) == 0 {
		return false, nil
	}

	switch strings.ToLower(words[0]) {
	case "exit", "quit":
		return true, nil
	case "help":
		prefix := ""
		if len(words) > 1 {
			prefix = words[1]
		}
		r.printHelp(prefix)
		return false, nil
	}

	reply, err := r.exec.Do(ctx, words...)
	if err != nil {
		return false, fmt.Errorf("connection lost: %w", err)
	}
	return false, r.formatter.Format(r.output, reply)
}

func (r *REPL) printHelp(prefix string) {
	matches := r.completer.Complete(prefix)
	if len(matches) == 0 {
		fmt.Fprintf(r.output, "no command matches %q\n", prefix)
		return
	}
	for _, m := range matches {
		fmt.Fprintln(r.output, "  "+m)
	}
}
