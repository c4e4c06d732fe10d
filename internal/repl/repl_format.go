package repl

import (
	"fmt"
	"io"
	"sort"

	"github.com/kibi-lang/kibi/internal/env"
)

// listSymbols prints every user-declared top-level name (the predeclared
// prelude's own names are skipped — they're documented, not discovered).
func (r *REPL) listSymbols(out io.Writer) {
	names := r.elab.Env.ChildNames(env.SymbolID(env.Root))
	sort.Strings(names)
	for _, name := range names {
		id, _ := r.elab.Env.Lookup(env.SymbolID(env.Root), name)
		sym := r.elab.Env.Symbol(id)
		if sym.Kind == env.KindPredeclared {
			continue
		}
		fmt.Fprintf(out, "%s : %s\n", name, describeSymbol(r.elab.Env, id))
	}
}

// describeSymbol renders a symbol's type if it has one, or its kind
// otherwise (a still-Pending self-reference mid-elaboration, or a
// namespace symbol with no type of its own).
func describeSymbol(e *env.Env, id env.SymbolID) string {
	sym := e.Symbol(id)
	switch sym.Kind {
	case env.KindDef, env.KindIndAxiom:
		return e.TypeOf(id).String()
	default:
		return sym.Kind.String()
	}
}
