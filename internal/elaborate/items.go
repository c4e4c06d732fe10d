package elaborate

import (
	"github.com/kibi-lang/kibi/internal/ast"
	"github.com/kibi-lang/kibi/internal/diag"
	"github.com/kibi-lang/kibi/internal/env"
	"github.com/kibi-lang/kibi/internal/inductive"
	"github.com/kibi-lang/kibi/internal/term"
)

// ReduceResult is one `reduce` item's outcome, collected for the caller
// (the REPL or the `check`/`run` CLI commands) to print — the elaborator
// itself never writes to stdout.
type ReduceResult struct {
	Span   ast.Span
	Normal term.Term
}

// closedOrReport substitutes assigned ivars into t and reports
// DeclarationHasIvars if anything remains unresolved (a dangling hole the
// surface program never pinned down). The caller must not publish t when
// ok is false — env.NewSymbol/ResolvePending reject a payload that isn't
// term.ClosedNoLocalNoIVar.
func (e *Elaborator) closedOrReport(span ast.Span, name string, t term.Term) (_ term.Term, ok bool) {
	t = e.IVars.SubstituteTermIVars(t)
	if !term.ClosedNoLocalNoIVar(t) {
		e.Sink.Report(diag.DeclarationHasIvars(e.rangeOf(span), name))
		return t, false
	}
	return t, true
}

// elabAxiom elaborates `axiom name .{levels} (params) : ty` into a KindDef
// symbol with no value — the same representation the original Lean-style
// kernel uses for an uninterpreted constant.
func (e *Elaborator) elabAxiom(it ast.Item) {
	e.levelScope = it.LevelParams
	ctx := term.NewLocalCtx()
	ids := e.bindTelescope(ctx, it.Params)
	ty := e.elabExprAsType(ctx, it.Ty)
	ty = closeForall(ctx, ids, ty)
	popN(ctx, len(ids))

	ty, ok := e.closedOrReport(it.Span, it.Name, ty)
	if !ok {
		return
	}

	if _, ok := e.Env.NewSymbol(env.Root, it.Name, env.KindDef, nil, &env.Def{
		NumLevels: len(it.LevelParams), Ty: ty,
	}); !ok {
		e.Sink.Report(diag.NameCollision(e.rangeOf(it.Span), it.Name))
	}
}

// elabDef elaborates `def name .{levels} (params) : ty := value`. The
// symbol is reserved Pending before value is elaborated, then resolved in
// place once both the type and the (lambda-closed) value are in hand.
// While Pending it is not resolvable by name: a reference to name inside
// value is reported as unresolved.
func (e *Elaborator) elabDef(it ast.Item) {
	e.levelScope = it.LevelParams

	sym, ok := e.Env.NewSymbol(env.Root, it.Name, env.KindPending, nil, nil)
	if !ok {
		e.Sink.Report(diag.NameCollision(e.rangeOf(it.Span), it.Name))
		return
	}

	ctx := term.NewLocalCtx()
	ids := e.bindTelescope(ctx, it.Params)
	ty := e.elabExprAsType(ctx, it.Ty)
	val := e.elabExprCheckingType(ctx, it.Value, ty)

	closedTy := closeForall(ctx, ids, ty)
	closedVal := closeLambda(ctx, ids, val)
	popN(ctx, len(ids))

	closedTy, tyOK := e.closedOrReport(it.Span, it.Name, closedTy)
	closedVal, valOK := e.closedOrReport(it.Span, it.Name, closedVal)
	if !tyOK || !valOK {
		// sym is left Pending: publishing it with a still-open ivar would
		// make env.ResolvePending panic on validatePayload's closedness
		// check. DeclarationHasIvars has already been reported above.
		return
	}

	e.Env.ResolvePending(sym, env.KindDef, nil, &env.Def{
		NumLevels: len(it.LevelParams), Ty: closedTy, Val: closedVal,
	})
}

// elabReduce elaborates `reduce expr` in inference mode and fully
// normalizes the result, appending it to e.Reductions for the caller to
// render — spec.md's `reduce` surface command.
func (e *Elaborator) elabReduce(it ast.Item) {
	ctx := term.NewLocalCtx()
	t, _ := e.elabExpr(ctx, it.Value)
	t = e.IVars.SubstituteTermIVars(t)
	normal := e.reducer(ctx).Reduce(t)
	e.Reductions = append(e.Reductions, ReduceResult{Span: it.Span, Normal: normal})
}

// elabInductive elaborates `inductive Name.{levels} (params) : Sort u |
// ctor1 (args) | ctor2 (args) ...`, taking it.Indices, when non-empty, as
// the index telescope, by reserving the type former
// Pending (so constructor argument types can recursively mention Name),
// assembling an inductive.Spec from the surface telescopes, and handing
// it to inductive.Compile.
func (e *Elaborator) elabInductive(it ast.Item) {
	e.levelScope = it.LevelParams

	ind, ok := e.Env.NewSymbol(env.Root, it.Name, env.KindPending, nil, nil)
	if !ok {
		e.Sink.Report(diag.NameCollision(e.rangeOf(it.Span), it.Name))
		return
	}

	spec := inductive.Spec{
		Name:       it.Name,
		LevelNames: it.LevelParams,
		Params:     toParamSpecs(e, it.Params),
		Indices:    toParamSpecs(e, it.Indices),
		ResultLvl:  e.elabLevel(it.Span, it.ResultLvl),
		Ctors:      make([]inductive.CtorSpec, len(it.Ctors)),
	}
	for i, c := range it.Ctors {
		spec.Ctors[i] = inductive.CtorSpec{
			Name:    c.Name,
			Args:    toParamSpecs(e, c.Args),
			Indices: e.ctorIndices(len(it.Indices), c),
		}
	}

	if _, err := inductive.Compile(e.Env, e.Pool, ind, spec); err != nil {
		e.Sink.Report(diag.InductiveError(e.rangeOf(it.Span), err))
	}
}

// ctorIndices builds a CtorSpec.Indices closure from a constructor's
// declared surface result type. A non-indexed inductive never reaches the
// closure's type-elaboration path: for numIndices == 0 the returned
// closure yields nil. When the surface constructor omitted a result type but
// the inductive has indices, CtorNeedsTypeCauseIndices is reported and
// the closure falls back to fresh holes so Compile can still run.
func (e *Elaborator) ctorIndices(numIndices int, c ast.CtorDecl) func(ctx *term.LocalCtx) []term.Term {
	if numIndices == 0 {
		return func(ctx *term.LocalCtx) []term.Term { return nil }
	}
	if c.ResultTy == 0 {
		e.Sink.Report(diag.CtorNeedsTypeCauseIndices(e.rangeOf(c.Span)))
		return func(ctx *term.LocalCtx) []term.Term {
			out := make([]term.Term, numIndices)
			for i := range out {
				out[i] = e.freshHole(ctx)
			}
			return out
		}
	}
	return func(ctx *term.LocalCtx) []term.Term {
		resultTy := e.elabExprAsType(ctx, c.ResultTy)
		_, args := term.Spine(resultTy)
		if len(args) < numIndices {
			e.Sink.Report(diag.CtorNeedsTypeCauseIndices(e.rangeOf(c.Span)))
			out := make([]term.Term, numIndices)
			for i := range out {
				out[i] = e.freshHole(ctx)
			}
			return out
		}
		return args[len(args)-numIndices:]
	}
}
