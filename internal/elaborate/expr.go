package elaborate

import (
	"strings"

	"github.com/kibi-lang/kibi/internal/ast"
	"github.com/kibi-lang/kibi/internal/diag"
	"github.com/kibi-lang/kibi/internal/env"
	"github.com/kibi-lang/kibi/internal/level"
	"github.com/kibi-lang/kibi/internal/term"
)

// resolveIdent resolves name to a term: ctx.LookupName first (a local
// always shadows a global of the same simple name), then a dotted walk
// of the environment starting at env.Root. A multi-segment name whose
// first segment names an in-scope local is almost certainly a mistake
// (the user meant the global namespace, not a field of the local), so
// that case is reported as SymbolShadowedByLocal rather than silently
// failing name resolution on the remaining segments.
func (e *Elaborator) resolveIdent(ctx *term.LocalCtx, span ast.Span, name string) (term.Term, bool) {
	if id, local, ok := ctx.LookupName(name); ok {
		_ = id
		return local, true
	}

	segments := strings.Split(name, ".")
	if len(segments) > 1 {
		if _, _, ok := ctx.LookupName(segments[0]); ok {
			e.Sink.Report(diag.SymbolShadowedByLocal(e.rangeOf(span), segments[0]))
			return nil, false
		}
	}

	parent := env.SymbolID(env.Root)
	var sym env.SymbolID
	for i, seg := range segments {
		next, ok := e.Env.Lookup(parent, seg)
		if !ok {
			e.Sink.Report(diag.UnresolvedName(e.rangeOf(span), strings.Join(segments[:i], "."), seg))
			return nil, false
		}
		sym = next
		parent = next
	}

	// Pending covers two cases: a self-reference while this same item's
	// own body is still being elaborated, and a name whose declaration
	// never closed (items.go's closedOrReport reported DeclarationHasIvars
	// and left it Pending rather than publish an open payload). Neither
	// has a well-defined env.TypeOf, so resolve it the same as an
	// unresolved name instead of handing InferType a Global it can't
	// answer for.
	if e.Env.Symbol(sym).Kind == env.KindPending {
		e.Sink.Report(diag.UnresolvedName(e.rangeOf(span), strings.Join(segments[:len(segments)-1], "."), segments[len(segments)-1]))
		return nil, false
	}

	numLevels := e.Env.NumLevels(sym)
	levels := make([]level.Level, numLevels)
	for i := range levels {
		levels[i] = e.IVars.NewLevelVar()
	}
	return term.MkGlobal(sym, levels), true
}

// freshTypeVar allocates `(?m : Sort ?l)` scoped to ctx's innermost local,
// so the metavariable is invisible once that binder's frame is popped.
func (e *Elaborator) freshTypeVar(ctx *term.LocalCtx) term.Term {
	scope, hasScope := ctx.TopScope()
	ty, _ := e.IVars.NewTypeVar(scope, hasScope)
	return ty
}

// freshHole allocates a fresh term metavariable of a fresh type, both
// scoped to ctx's innermost local.
func (e *Elaborator) freshHole(ctx *term.LocalCtx) term.Term {
	ty := e.freshTypeVar(ctx)
	scope, hasScope := ctx.TopScope()
	return e.IVars.NewTermVarInScope(ty, scope, hasScope)
}

// elabExpr elaborates e with no expected type — bidirectional inference
// mode. The returned type is whatever InferType synthesizes.
func (e *Elaborator) elabExpr(ctx *term.LocalCtx, id ast.ExprID) (term.Term, term.Term) {
	t := e.elabExprNode(ctx, id, nil)
	ty := e.unifier(ctx).InferType(t)
	return t, ty
}

// elabExprCheckingType elaborates e and unifies its inferred type with the
// expected one — bidirectional checking mode. Implicit arguments are the
// ones elabApply inserts for the function's own leading implicit binders;
// expected plays no part in inserting them. On a unification failure it
// reports TypeMismatch and still returns the elaborated term, so the
// caller always gets a term back and can keep going.
func (e *Elaborator) elabExprCheckingType(ctx *term.LocalCtx, id ast.ExprID, expected term.Term) term.Term {
	span := e.parse.Expr(id).Span
	t := e.elabExprNode(ctx, id, expected)
	u := e.unifier(ctx)
	actual := u.InferType(t)
	if !u.DefEq(actual, expected) {
		sub := e.IVars.SubstituteTermIVars
		e.Sink.Report(diag.TypeMismatch(e.rangeOf(span), sub(expected).String(), sub(actual).String()))
	}
	return t
}

// elabExprAsType elaborates e and checks its inferred type whnf's to a
// Sort, reporting TypeExpected otherwise.
func (e *Elaborator) elabExprAsType(ctx *term.LocalCtx, id ast.ExprID) term.Term {
	if id == 0 {
		// No annotation written (a lambda binder left untyped): a fresh
		// type ivar, to be pinned down by checking-mode unification at
		// the use site.
		return e.freshTypeVar(ctx)
	}
	span := e.parse.Expr(id).Span
	t, ty := e.elabExpr(ctx, id)
	if _, ok := e.reducer(ctx).WHNFSort(ty); !ok {
		sub := e.IVars.SubstituteTermIVars
		e.Sink.Report(diag.TypeExpected(e.rangeOf(span), sub(ty).String()))
	}
	return t
}

// elabExprNode is the per-ExprKind dispatch shared by inference and
// checking mode. expected is non-nil only in checking mode; no case reads
// it, so both modes build the same term here and the unification against
// expected happens in elabExprCheckingType, once InferType has run.
func (e *Elaborator) elabExprNode(ctx *term.LocalCtx, id ast.ExprID, expected term.Term) term.Term {
	n := e.parse.Expr(id)
	switch n.Kind {
	case ast.ExprSort:
		return term.MkSort(e.elabLevel(n.Span, n.Level))

	case ast.ExprHole:
		return e.freshHole(ctx)

	case ast.ExprNatLit:
		return natLiteral(n.Nat)

	case ast.ExprIdent:
		t, ok := e.resolveIdent(ctx, n.Span, n.Name)
		if !ok {
			return e.freshHole(ctx)
		}
		return t

	case ast.ExprForall:
		ty := e.elabExprAsType(ctx, n.Ty)
		id, _ := ctx.Push(term.BinderKind(n.BinderKind), n.BinderName, ty, nil)
		body := e.elabExprAsType(ctx, n.Body)
		closed, err := term.AbstractForall(ctx, id, body)
		ctx.Pop()
		if err != nil {
			panic(err)
		}
		return closed

	case ast.ExprArrow:
		ty := e.elabExprAsType(ctx, n.Ty)
		id, _ := ctx.Push(term.Explicit, "_", ty, nil)
		body := e.elabExprAsType(ctx, n.Body)
		closed, err := term.AbstractForall(ctx, id, body)
		ctx.Pop()
		if err != nil {
			panic(err)
		}
		return closed

	case ast.ExprLambda:
		var ty term.Term
		if n.Ty != 0 {
			ty = e.elabExprAsType(ctx, n.Ty)
		} else {
			ty = e.freshTypeVar(ctx)
		}
		id, _ := ctx.Push(term.BinderKind(n.BinderKind), n.BinderName, ty, nil)
		body, _ := e.elabExpr(ctx, n.Body)
		closed, err := term.AbstractLambda(ctx, id, body)
		ctx.Pop()
		if err != nil {
			panic(err)
		}
		return closed

	case ast.ExprApply:
		return e.elabApply(ctx, n)
	}
	panic("elaborate: unreachable expr kind")
}

// elabApply elaborates a function application, inserting a fresh
// implicit/instance argument ahead of the explicit one being parsed
// whenever the function's inferred type currently expects one — spec.md
// §4.6's "implicit-arg insertion before each explicit argument".
func (e *Elaborator) elabApply(ctx *term.LocalCtx, n ast.ExprNode) term.Term {
	fun, funTy := e.elabExpr(ctx, n.Fun)
	r := e.reducer(ctx)

	for {
		forall, ok := r.WHNFForall(funTy)
		if !ok || forall.Kind == term.Explicit {
			break
		}
		arg := e.freshHole(ctx)
		fun = term.MkApply(fun, arg)
		funTy = term.Instantiate(forall.Body, arg)
	}

	forall, ok := r.WHNFForall(funTy)
	if !ok {
		e.Sink.Report(diag.TooManyArgs(e.rangeOf(n.Span)))
		return e.freshHole(ctx)
	}

	arg := e.elabExprCheckingType(ctx, n.Arg, forall.Ty)
	return term.MkApply(fun, arg)
}

// natLiteral builds n nested Nat.succ applications over Nat.zero.
func natLiteral(n uint64) term.Term {
	t := term.MkGlobal(env.NatZero, nil)
	succ := term.MkGlobal(env.NatSucc, nil)
	for i := uint64(0); i < n; i++ {
		t = term.MkApply(succ, t)
	}
	return t
}
