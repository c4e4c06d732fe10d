package repl

import (
	"fmt"
	"io"
	"strings"

	"github.com/kibi-lang/kibi/internal/elaborate"
	"github.com/kibi-lang/kibi/internal/env"
)

// HandleCommand processes one `:`-prefixed REPL command. It returns true
// when the session should end.
func (r *REPL) HandleCommand(cmd string, out io.Writer) bool {
	parts := strings.Fields(cmd)
	if len(parts) == 0 {
		return false
	}

	switch parts[0] {
	case ":help", ":h":
		r.printHelp(out)

	case ":quit", ":q", ":exit":
		fmt.Fprintln(out, green("Goodbye!"))
		return true

	case ":env":
		if len(parts) < 2 {
			fmt.Fprintln(out, "Usage: :env <name>")
			return false
		}
		r.showSymbol(parts[1], out)

	case ":list":
		r.listSymbols(out)

	case ":history":
		r.showHistory(out)

	case ":clear":
		fmt.Print("\033[H\033[2J")

	case ":reset":
		r.elab = elaborate.New()
		r.reportedDiags = 0
		r.reportedRedux = 0
		fmt.Fprintln(out, green("Environment reset"))

	case ":verbose":
		r.config.Verbose = !r.config.Verbose
		status := "disabled"
		if r.config.Verbose {
			status = "enabled"
		}
		fmt.Fprintf(out, "Verbose reduce output %s\n", yellow(status))

	default:
		fmt.Fprintf(out, "%s: unknown command %q (try :help)\n", red("Error"), parts[0])
	}
	return false
}

func (r *REPL) printHelp(out io.Writer) {
	fmt.Fprintln(out, bold("Commands:"))
	fmt.Fprintln(out, "  :help, :h           show this message")
	fmt.Fprintln(out, "  :quit, :q, :exit    exit the REPL")
	fmt.Fprintln(out, "  :env <name>         print a declared symbol's type")
	fmt.Fprintln(out, "  :list               list every user-declared symbol")
	fmt.Fprintln(out, "  :history            show input history")
	fmt.Fprintln(out, "  :clear              clear the screen")
	fmt.Fprintln(out, "  :reset              discard all declarations and start over")
	fmt.Fprintln(out, "  :verbose            toggle echoing reduce's source location")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Anything else is parsed as one or more axiom/def/inductive/reduce items.")
}

func (r *REPL) showHistory(out io.Writer) {
	for i, h := range r.history {
		fmt.Fprintf(out, "%4d  %s\n", i+1, strings.ReplaceAll(h, "\n", "\n      "))
	}
}

// showSymbol resolves a dotted name against the root namespace and prints
// its (universe-polymorphic) type, the same walk internal/elaborate's
// resolveIdent performs for an identifier in source.
func (r *REPL) showSymbol(name string, out io.Writer) {
	segments := strings.Split(name, ".")
	parent := env.SymbolID(env.Root)
	var found bool
	var id = parent
	for _, seg := range segments {
		next, ok := r.elab.Env.Lookup(parent, seg)
		if !ok {
			found = false
			break
		}
		id = next
		parent = next
		found = true
	}
	if !found {
		fmt.Fprintf(out, "%s: unresolved name %q\n", red("Error"), name)
		return
	}
	fmt.Fprintf(out, "%s : %s\n", name, describeSymbol(r.elab.Env, id))
}
