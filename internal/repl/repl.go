// Package repl implements an interactive read-eval-print loop over the
// elaborator: each line (or blank-line-terminated block) of input is
// parsed as one or more surface items and elaborated against a single
// persistent Elaborator, so axioms, defs and inductives declared earlier
// in the session stay in scope for later ones.
package repl

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/peterh/liner"

	"github.com/kibi-lang/kibi/internal/elaborate"
	"github.com/kibi-lang/kibi/internal/surface"
)

var (
	green  = color.New(color.FgGreen).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	bold   = color.New(color.Bold).SprintFunc()
	dim    = color.New(color.Faint).SprintFunc()
)

// Config holds REPL display options.
type Config struct {
	Verbose            bool // echo each reduce result's location alongside its normal form
	SuppressReductions bool // elaborate `reduce` items but don't print their result (kibi check)
}

// REPL is one interactive session: a persistent Elaborator plus the
// bookkeeping liner needs for history and line editing.
type REPL struct {
	config    *Config
	elab      *elaborate.Elaborator
	history   []string
	version   string
	buildTime string

	reportedDiags int // how many of elab.Sink's diagnostics have been printed
	reportedRedux int // how many of elab.Reductions have been printed
}

// New creates a REPL with a fresh Elaborator.
func New() *REPL {
	return NewWithVersion("", "")
}

// NewWithVersion creates a REPL, stamping the banner with version/build
// info supplied by the calling CLI command.
func NewWithVersion(version, buildTime string) *REPL {
	if version == "" {
		version = "dev"
	}
	if buildTime == "" {
		buildTime = "unknown"
	}
	return &REPL{
		config:    &Config{},
		elab:      elaborate.New(),
		history:   []string{},
		version:   version,
		buildTime: buildTime,
	}
}

// SetSuppressReductions toggles whether ElaborateSource prints `reduce`
// results — `kibi check` sets this, `kibi run` and the interactive REPL
// leave it off.
func (r *REPL) SetSuppressReductions(v bool) {
	r.config.SuppressReductions = v
}

// OK reports whether the session's Elaborator has produced no
// diagnostics so far — the `check`/`run` CLI commands use this for their
// exit code.
func (r *REPL) OK() bool {
	return r.elab.Sink.OK()
}

func (r *REPL) getPrompt() string {
	return "kibi> "
}

// Start runs the REPL loop, reading from in and writing to out until EOF
// or a :quit command.
func (r *REPL) Start(in io.Reader, out io.Writer) {
	line := liner.NewLiner()
	defer line.Close()

	historyFile := filepath.Join(os.TempDir(), ".kibi_history")
	if f, err := os.Open(historyFile); err == nil {
		_, _ = line.ReadHistory(f)
		f.Close()
	}
	line.SetMultiLineMode(true)

	fmt.Fprintf(out, "%s %s\n", bold("kibi"), bold(r.version))
	fmt.Fprintln(out, dim("Type :help for help, :quit to exit"))
	fmt.Fprintln(out)

	line.SetCompleter(func(input string) (c []string) {
		if strings.HasPrefix(input, ":") {
			for _, cmd := range []string{":help", ":quit", ":env", ":history", ":clear", ":reset", ":verbose"} {
				if strings.HasPrefix(cmd, input) {
					c = append(c, cmd)
				}
			}
		}
		return
	})

	for {
		input, err := line.Prompt(r.getPrompt())
		if err == io.EOF {
			fmt.Fprintln(out, green("\nGoodbye!"))
			break
		}
		if err != nil {
			fmt.Fprintf(out, "%s: %v\n", red("Error"), err)
			continue
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}

		// A declaration may span several lines (a multi-constructor
		// `inductive`, a multi-arg telescope); keep reading while the last
		// line ends in `|` or `:=` (see declarationLooksComplete), and stop
		// early at a blank line.
		var block []string
		block = append(block, input)
		for !declarationLooksComplete(input) {
			cont, err := line.Prompt("...   ")
			if err != nil {
				break
			}
			if strings.TrimSpace(cont) == "" {
				break
			}
			block = append(block, cont)
			input = cont
		}
		text := strings.Join(block, "\n")

		line.AppendHistory(text)
		r.history = append(r.history, text)

		if strings.HasPrefix(text, ":") {
			if r.HandleCommand(text, out) {
				break
			}
			continue
		}

		r.ElaborateSource(text, "<repl>", out)
	}

	if f, err := os.Create(historyFile); err == nil {
		_, _ = line.WriteHistory(f)
		f.Close()
	}
}

// declarationLooksComplete is a cheap heuristic: a line ending in a
// keyword that always introduces more tokens (a dangling binder or bar)
// signals the user isn't done typing this item yet.
func declarationLooksComplete(line string) bool {
	line = strings.TrimSpace(line)
	if line == "" {
		return true
	}
	return !strings.HasSuffix(line, "|") && !strings.HasSuffix(line, ":=")
}

// ElaborateSource parses text as a standalone surface file (named file,
// for diagnostics) and elaborates every item it contains against the
// session's persistent Elaborator, printing any diagnostics or reduce
// results produced along the way. Exported so the CLI's `check`/`run`
// commands and prelude loading can drive a session without going through
// the interactive Start loop.
func (r *REPL) ElaborateSource(text, file string, out io.Writer) {
	l := surface.New(text, file)
	p := surface.NewParser(l, file)
	parse := p.ParseFile()

	r.elab.ElaborateFile(parse)

	r.flushDiagnostics(out)
	r.flushReductions(out)
}

func (r *REPL) flushDiagnostics(out io.Writer) {
	diags := r.elab.Sink.Diagnostics()
	for _, d := range diags[r.reportedDiags:] {
		fmt.Fprintf(out, "%s %s\n", red("error:"), d.Error())
	}
	r.reportedDiags = len(diags)
}

func (r *REPL) flushReductions(out io.Writer) {
	if r.config.SuppressReductions {
		r.reportedRedux = len(r.elab.Reductions)
		return
	}
	for _, res := range r.elab.Reductions[r.reportedRedux:] {
		if r.config.Verbose {
			fmt.Fprintf(out, "%s ~> %s\n", dim(res.Span.Start.String()), res.Normal)
		} else {
			fmt.Fprintln(out, res.Normal)
		}
	}
	r.reportedRedux = len(r.elab.Reductions)
}
