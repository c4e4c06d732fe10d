// Package elaborate implements the bidirectional elaborator: it consumes
// an internal/ast.Parse and drives internal/unify, internal/whnf and
// internal/inductive to publish internal/env symbols, reporting failures
// to an internal/diag.Sink rather than unwinding Go's call stack.
//
// Expression-elaboration methods take the local context as an explicit
// *term.LocalCtx parameter rather than a struct field: internal/inductive
// builds its own LocalCtx for a ParamSpec.Ty/CtorSpec.Indices closure to
// push telescope entries onto, and those closures call back into this
// same set of methods — against that same ctx — to elaborate surface
// syntax for constructor argument and index types. A struct-held ctx
// would desync the moment Compile pushed or popped a local the
// elaborator didn't know about.
package elaborate

import (
	"github.com/kibi-lang/kibi/internal/ast"
	"github.com/kibi-lang/kibi/internal/diag"
	"github.com/kibi-lang/kibi/internal/env"
	"github.com/kibi-lang/kibi/internal/inductive"
	"github.com/kibi-lang/kibi/internal/ivar"
	"github.com/kibi-lang/kibi/internal/level"
	"github.com/kibi-lang/kibi/internal/pool"
	"github.com/kibi-lang/kibi/internal/term"
	"github.com/kibi-lang/kibi/internal/unify"
	"github.com/kibi-lang/kibi/internal/whnf"
)

// Elaborator holds one elaboration session's shared state: the symbol
// environment being built up, the metavariable store, the argument pool,
// and the error sink declarations report into.
type Elaborator struct {
	Env   *env.Env
	IVars *ivar.Store
	Pool  *pool.ArgPool
	Sink  *diag.Sink

	// Reductions accumulates one entry per `reduce` item seen by
	// ElaborateFile, in source order, for the caller to print.
	Reductions []ReduceResult

	parse *ast.Parse

	// levelScope names the universe parameters of the item currently being
	// elaborated, resolved by elabLevel via linear lookup — an item never
	// has more than a handful, so this beats a map.
	levelScope []string
}

// New returns an Elaborator with a fresh environment (predeclared prelude
// only) and empty metavariable/argument pools.
func New() *Elaborator {
	return &Elaborator{
		Env:   env.New(),
		IVars: ivar.New(),
		Pool:  pool.New(64),
		Sink:  &diag.Sink{},
	}
}

func (e *Elaborator) unifier(ctx *term.LocalCtx) *unify.Unifier {
	return unify.New(ctx, e.Env, e.IVars)
}

func (e *Elaborator) reducer(ctx *term.LocalCtx) *whnf.Reducer {
	return whnf.New(ctx, e.Env, e.IVars)
}

func (e *Elaborator) rangeOf(span ast.Span) diag.Range {
	return diag.Range{Start: span.Start.Offset, End: span.End.Offset}
}

// ElaborateFile runs ElaborateItem over every item of p in source order,
// resetting the per-item argument pool after each one — the inner-pool
// reset boundary spec.md's concurrency model describes. A failing item's
// diagnostic is appended to Sink and the next item is still attempted.
func (e *Elaborator) ElaborateFile(p *ast.Parse) {
	e.parse = p
	for _, it := range p.Items {
		e.ElaborateItem(it)
		e.Pool.Reset()
	}
}

// ElaborateItem dispatches one top-level declaration to its elaboration
// routine.
func (e *Elaborator) ElaborateItem(it ast.Item) {
	switch it.Kind {
	case ast.ItemAxiom:
		e.elabAxiom(it)
	case ast.ItemDef:
		e.elabDef(it)
	case ast.ItemInductive:
		e.elabInductive(it)
	case ast.ItemReduce:
		e.elabReduce(it)
	case ast.ItemTrait, ast.ItemImpl:
		// Pass-through stub: nothing to elaborate. spec.md §6 marks the
		// trait resolver a stub; these items exist only so the parser
		// doesn't choke on them.
	}
}

// elabLevel resolves an ast.LevelNode against the current item's
// levelScope, producing a level.Level. An unresolved Param name is
// reported as UnresolvedLevel and substituted with a fresh level ivar so
// elaboration of the rest of the item can continue.
func (e *Elaborator) elabLevel(span ast.Span, id ast.LevelID) level.Level {
	n := e.parse.Level(id)
	switch n.Kind {
	case ast.LevelZero:
		return level.MkZero()
	case ast.LevelSucc:
		return level.Offset(e.elabLevel(span, n.Of), int(n.N))
	case ast.LevelMax:
		return level.MkMax(e.elabLevel(span, n.Lhs), e.elabLevel(span, n.Rhs))
	case ast.LevelIMax:
		return level.MkIMax(e.elabLevel(span, n.Lhs), e.elabLevel(span, n.Rhs))
	case ast.LevelHole:
		return e.IVars.NewLevelVar()
	case ast.LevelParam:
		for i, name := range e.levelScope {
			if name == n.Name {
				return level.MkParam(name, i)
			}
		}
		e.Sink.Report(diag.UnresolvedLevel(e.rangeOf(n.Span), n.Name))
		return e.IVars.NewLevelVar()
	}
	panic("elaborate: unreachable level kind")
}

// bindTelescope elaborates and pushes params onto ctx in order, each
// entry's type seeing every earlier one already pushed — mirroring
// inductive.pushTelescope exactly, since both ultimately build the same
// kind of nested Forall/Lambda telescope.
func (e *Elaborator) bindTelescope(ctx *term.LocalCtx, params []ast.Param) []term.ScopeID {
	ids := make([]term.ScopeID, len(params))
	for i, p := range params {
		ty := e.elabExprAsType(ctx, p.Ty)
		id, _ := ctx.Push(term.BinderKind(p.Kind), p.Name, ty, nil)
		ids[i] = id
	}
	return ids
}

func popN(ctx *term.LocalCtx, n int) {
	for i := 0; i < n; i++ {
		ctx.Pop()
	}
}

func closeForall(ctx *term.LocalCtx, ids []term.ScopeID, body term.Term) term.Term {
	for i := len(ids) - 1; i >= 0; i-- {
		closed, err := term.AbstractForall(ctx, ids[i], body)
		if err != nil {
			panic(err)
		}
		body = closed
	}
	return body
}

func closeLambda(ctx *term.LocalCtx, ids []term.ScopeID, body term.Term) term.Term {
	for i := len(ids) - 1; i >= 0; i-- {
		closed, err := term.AbstractLambda(ctx, ids[i], body)
		if err != nil {
			panic(err)
		}
		body = closed
	}
	return body
}

func toParamSpecs(e *Elaborator, params []ast.Param) []inductive.ParamSpec {
	specs := make([]inductive.ParamSpec, len(params))
	for i, p := range params {
		exprID := p.Ty
		kind := term.BinderKind(p.Kind)
		specs[i] = inductive.ParamSpec{
			Name: p.Name, Kind: kind,
			Ty: func(ctx *term.LocalCtx) term.Term { return e.elabExprAsType(ctx, exprID) },
		}
	}
	return specs
}
