// Package whnf reduces kernel terms to weak head normal form: the
// combination of beta, local let-unfolding, eta, delta (definition
// unfolding) and iota (recursor computation) reduction used everywhere the
// elaborator needs to look past a term's head constructor.
package whnf

import (
	"github.com/kibi-lang/kibi/internal/env"
	"github.com/kibi-lang/kibi/internal/level"
	"github.com/kibi-lang/kibi/internal/term"
)

// IVarReader resolves an assigned term ivar — implemented by the ivar
// store, kept as a narrow interface here to avoid a package cycle.
type IVarReader interface {
	TermValue(id term.IVarID) (term.Term, bool)
}

// Reducer holds the two pieces of state weak-head reduction needs to look
// through: the local context (for let-bound locals) and the global
// environment (for delta-unfolding and recursor computation rules).
type Reducer struct {
	Ctx   *term.LocalCtx
	Env   *env.Env
	IVars IVarReader
}

// New builds a Reducer over the given context/environment/ivar store.
func New(ctx *term.LocalCtx, e *env.Env, ivars IVarReader) *Reducer {
	return &Reducer{Ctx: ctx, Env: e, IVars: ivars}
}

// WHNF reduces t to weak head normal form, including delta-unfolding.
func (r *Reducer) WHNF(t term.Term) term.Term {
	reduced, done := r.basicThenLocal(t)
	if done {
		return reduced
	}
	if unfolded, ok := r.Unfold(reduced); ok {
		return r.WHNF(unfolded)
	}
	return reduced
}

// WHNFForall reduces t just far enough to see a Forall head, if there is
// one — a no-op fast path when t is already a Forall.
func (r *Reducer) WHNFForall(t term.Term) (term.Forall, bool) {
	if f, ok := term.TryForall(t); ok {
		return f, true
	}
	return term.TryForall(r.WHNF(t))
}

// WHNFSort is WHNFForall's Sort counterpart.
func (r *Reducer) WHNFSort(t term.Term) (level.Level, bool) {
	if s, ok := term.TrySort(t); ok {
		return s, true
	}
	return term.TrySort(r.WHNF(t))
}

// basicThenLocal performs whnf_basic (unwrap a let-bound Local or an
// already-assigned IVar) and then whnf_no_unfold's local reductions (eta,
// beta, recursor). The returned bool mirrors the original's "done" flag:
// true means no further delta-unfolding can make progress.
func (r *Reducer) basicThenLocal(t term.Term) (term.Term, bool) {
	t, done := r.basic(t)
	if done {
		return t, true
	}
	return r.localReduce(t)
}

// basic performs reductions that never require delta-unfolding: resolving
// a let-bound Local or an assigned IVar to its value.
func (r *Reducer) basic(t term.Term) (term.Term, bool) {
	switch x := t.(type) {
	case term.Sort, term.Lambda, term.Forall:
		return t, true

	case term.Local:
		if value, ok := r.Ctx.ValueOf(x.ID); ok {
			return r.basic(value)
		}
		return t, true

	case term.Global:
		return t, false

	case term.IVar:
		if value, ok := r.IVars.TermValue(x.ID); ok {
			return r.basic(value)
		}
		return t, false

	case term.Apply:
		return t, false

	case term.Bound:
		panic("whnf: dangling Bound reached weak-head reduction")
	}
	return t, true
}

// localReduce performs eta, beta and recursor reduction on a term whose
// basic() pass bottomed out at an Apply or an unassigned Global/IVar head.
func (r *Reducer) localReduce(e term.Term) (term.Term, bool) {
	// eta: (fun x => f x) ~> f, when f doesn't mention x.
	if lam, ok := term.TryLambda(e); ok {
		if app, ok := term.TryApply(lam.Body); ok {
			if b, ok := term.TryBound(app.Arg); ok && b.Index == 0 && term.Closed(app.Fun) {
				return r.localReduce(app.Fun)
			}
		}
	}

	fun, args := term.Spine(e)
	if len(args) == 0 || !term.Closed(fun) {
		return e, false
	}

	oldFun := fun
	reducedFun, _ := r.localReduce(fun)
	changed := !term.PtrEq(reducedFun, oldFun)
	fun = reducedFun

	// beta.
	if _, isLambda := term.TryLambda(fun); isLambda {
		result := fun
		i := 0
		for {
			lam, ok := term.TryLambda(result)
			if !ok || i >= len(args) {
				break
			}
			result = term.Instantiate(lam.Body, args[i])
			i++
		}
		result = term.MkApps(result, args[i:])
		return r.localReduce(result)
	}

	// recursor (iota).
	if result, ok := r.tryReduceRecursor(e, fun, args); ok {
		return r.localReduce(result)
	}

	if changed {
		return term.MkApps(fun, args), false
	}
	return e, false
}

// tryReduceRecursor implements iota reduction: if fun is an eliminator
// symbol and the major premise (the argument at its fixed recursor-arg
// position) is headed by a constructor of the same inductive group, splice
// in that constructor's computation rule.
func (r *Reducer) tryReduceRecursor(t term.Term, fun term.Term, args []term.Term) (term.Term, bool) {
	g, ok := term.TryGlobal(fun)
	if !ok {
		return nil, false
	}
	sym := r.Env.Symbol(g.ID)
	if sym.Kind != env.KindIndAxiom || sym.IndAxiom.Kind != env.Eliminator {
		return nil, false
	}
	info := sym.IndAxiom
	if len(args) < info.MinArgsForReduce {
		return nil, false
	}

	majorPremise := r.WHNF(args[info.MinArgsForReduce-1])
	mpFun, mpArgs := term.Spine(majorPremise)
	mpGlobal, ok := term.TryGlobal(mpFun)
	if !ok {
		return nil, false
	}
	mpSym := r.Env.Symbol(mpGlobal.ID)
	if mpSym.Kind != env.KindIndAxiom || mpSym.IndAxiom.GroupID != info.GroupID {
		return nil, false
	}
	if mpSym.IndAxiom.Kind != env.Constructor {
		return nil, false
	}
	ctorIdx := mpSym.IndAxiom.CtorIndex

	result := info.CompRules[ctorIdx]

	recArgs := args[:info.NumParams+info.NumMotives+info.NumMinors]
	appArgs := args[info.MinArgsForReduce:]
	ctorArgs := mpArgs[info.NumParams:]

	for _, a := range recArgs {
		lam, ok := term.TryLambda(result)
		if !ok {
			return nil, false
		}
		result = term.Instantiate(lam.Body, a)
	}
	for _, a := range ctorArgs {
		lam, ok := term.TryLambda(result)
		if !ok {
			return nil, false
		}
		result = term.Instantiate(lam.Body, a)
	}

	result = term.InstantiateLevelParams(result, g.Levels)
	result = term.MkApps(result, appArgs)
	return result, true
}

// Reduce fully normalizes t: weak-head reduce, then recurse into every
// subterm and weak-head reduce again, to a fixpoint. This is `reduce` in
// spec terms — used by the `reduce` surface command and by the testable
// properties that compare normal forms with syntax_eq, as opposed to WHNF
// which callers needing only the head constructor use directly.
func (r *Reducer) Reduce(t term.Term) term.Term {
	t = r.WHNF(t)
	switch x := t.(type) {
	case term.Forall:
		ty := r.Reduce(x.Ty)
		opened, id := term.InstantiateWithLocal(r.Ctx, x.Kind, x.Name, x.Ty, x.Body)
		body := term.Abstract(r.Reduce(opened), id)
		r.Ctx.Pop()
		return term.MkForall(x.Kind, x.Name, ty, body)
	case term.Lambda:
		ty := r.Reduce(x.Ty)
		opened, id := term.InstantiateWithLocal(r.Ctx, x.Kind, x.Name, x.Ty, x.Body)
		body := term.Abstract(r.Reduce(opened), id)
		r.Ctx.Pop()
		return term.MkLambda(x.Kind, x.Name, ty, body)
	case term.Apply:
		fun := r.Reduce(x.Fun)
		arg := r.Reduce(x.Arg)
		return r.WHNF(term.MkApply(fun, arg))
	}
	return t
}

// Unfold performs one step of delta reduction: if t's spine head is a
// Global naming a KindDef symbol with a value, substitute that value in.
func (r *Reducer) Unfold(t term.Term) (term.Term, bool) {
	fun, _ := term.Spine(t)
	g, ok := term.TryGlobal(fun)
	if !ok {
		return nil, false
	}
	val, ok := r.Env.UnfoldDef(g.ID, g.Levels)
	if !ok {
		return nil, false
	}
	_, args := term.Spine(t)
	return term.MkApps(val, args), true
}
