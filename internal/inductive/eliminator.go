package inductive

import (
	"github.com/kibi-lang/kibi/internal/env"
	"github.com/kibi-lang/kibi/internal/level"
	"github.com/kibi-lang/kibi/internal/pool"
	"github.com/kibi-lang/kibi/internal/term"
)

// argClass classifies one constructor argument's type with respect to the
// inductive being declared.
type argClass int

const (
	nonRecursive argClass = iota
	directRecursive
	invalidPositivity
)

// classifyArg inspects a constructor argument's type. A direct recursive
// argument is exactly `I params indices` at the argument's own top level
// (e.g. List.cons's tail); its index terms are returned so the eliminator
// can build the corresponding induction hypothesis. Any other occurrence
// of ind — buried inside a function domain, or as a non-head argument to
// some other type former — is rejected rather than silently accepted.
func classifyArg(argTy term.Term, ind env.SymbolID, numParams int) (argClass, []term.Term) {
	if !mentionsGlobal(argTy, ind) {
		return nonRecursive, nil
	}
	fun, args := term.Spine(argTy)
	g, ok := term.TryGlobal(fun)
	if !ok || g.ID != ind || len(args) < numParams {
		return invalidPositivity, nil
	}
	return directRecursive, args[numParams:]
}

func mentionsGlobal(t term.Term, id env.SymbolID) bool {
	switch x := t.(type) {
	case term.Global:
		return x.ID == id
	case term.Forall:
		return mentionsGlobal(x.Ty, id) || mentionsGlobal(x.Body, id)
	case term.Lambda:
		return mentionsGlobal(x.Ty, id) || mentionsGlobal(x.Body, id)
	case term.Apply:
		return mentionsGlobal(x.Fun, id) || mentionsGlobal(x.Arg, id)
	}
	return false
}

// checkStrictPositivity walks ctorTy's Forall chain (both the inductive's
// own params and this constructor's own arguments are bound there) and
// rejects any binder domain where ind occurs other than as a direct
// recursive argument. The final conclusion (`I params indices`) is not
// itself checked — that occurrence of ind is expected.
func checkStrictPositivity(ctorTy term.Term, ind env.SymbolID, numParams int) bool {
	t := ctorTy
	for {
		f, ok := term.TryForall(t)
		if !ok {
			return true
		}
		if kind, _ := classifyArg(f.Ty, ind, numParams); kind == invalidPositivity {
			return false
		}
		t = f.Body
	}
}

// buildMotiveType builds `Forall indices, Forall (t : I params indices),
// Sort motiveLevel`. ctx is left exactly as it was found: the indices and
// scrutinee telescope pushed here are popped again before returning.
func buildMotiveType(ctx *term.LocalCtx, ind env.SymbolID, levels []level.Level, paramLocals []term.Term, spec Spec, motiveLevel level.Level) term.Term {
	indexIDs := pushTelescope(ctx, spec.Indices)
	indexLocals := locals(indexIDs)
	scrutineeTy := applyInductive(ind, levels, paramLocals, indexLocals)
	tID, _ := ctx.Push(term.Explicit, "t", scrutineeTy, nil)

	body := closeForall(ctx, []term.ScopeID{tID}, term.MkSort(motiveLevel))
	ctx.Pop()
	body = closeForall(ctx, indexIDs, body)
	popAll(ctx, len(indexIDs))
	return body
}

// minorPremiseType builds the type of one minor premise: the constructor's
// own arguments, an induction hypothesis for each directly recursive
// argument (in argument order), and a conclusion instantiating motive at
// this constructor's indices and value. ctx is left as it was found.
func minorPremiseType(ctx *term.LocalCtx, argPool *pool.ArgPool, ind env.SymbolID, levels []level.Level, paramLocals []term.Term, motiveLocal term.Term, spec Spec, c CtorSpec, ctorID env.SymbolID) term.Term {
	argIDs := pushTelescope(ctx, c.Args)
	argLocals := locals(argIDs)

	var idxTerms []term.Term
	if c.Indices != nil {
		idxTerms = c.Indices(ctx)
	}

	ctorArgs := argPool.Get(len(paramLocals) + len(argLocals))
	ctorArgs = append(append(ctorArgs, paramLocals...), argLocals...)
	ctorApplied := term.MkApps(term.MkGlobal(ctorID, levels), ctorArgs)
	argPool.Put(ctorArgs)

	motiveArgs := argPool.Get(len(idxTerms) + 1)
	motiveArgs = append(append(motiveArgs, idxTerms...), ctorApplied)
	body := term.MkApps(motiveLocal, motiveArgs)
	argPool.Put(motiveArgs)

	for i := len(argIDs) - 1; i >= 0; i-- {
		argTy, _ := ctx.TypeOf(argIDs[i])
		if kind, idx := classifyArg(argTy, ind, len(spec.Params)); kind == directRecursive {
			ihArgs := argPool.Get(len(idx) + 1)
			ihArgs = append(append(ihArgs, idx...), argLocals[i])
			ihTy := term.MkApps(motiveLocal, ihArgs)
			argPool.Put(ihArgs)
			body = term.MkForall(term.Explicit, "_", ihTy, body)
		}
	}

	body = closeForall(ctx, argIDs, body)
	popAll(ctx, len(argIDs))
	return body
}

// buildEliminatorType wraps the motive, the already-pushed minor premises,
// a fresh index/scrutinee telescope and the params into the eliminator's
// full dependent-function type. motiveID and minorIDs must already be
// pushed on ctx; this function abstracts (but does not pop) them.
func buildEliminatorType(ctx *term.LocalCtx, argPool *pool.ArgPool, ind env.SymbolID, levels []level.Level, paramIDs []term.ScopeID, paramLocals []term.Term, spec Spec, motiveID term.ScopeID, motiveLocal term.Term, minorIDs []term.ScopeID) (term.Term, error) {
	indexIDs := pushTelescope(ctx, spec.Indices)
	indexLocals := locals(indexIDs)
	scrutineeTy := applyInductive(ind, levels, paramLocals, indexLocals)
	tID, _ := ctx.Push(term.Explicit, "t", scrutineeTy, nil)

	concArgs := argPool.Get(len(indexLocals) + 1)
	concArgs = append(append(concArgs, indexLocals...), term.MkLocal(tID))
	conclusion := term.MkApps(motiveLocal, concArgs)
	argPool.Put(concArgs)

	body, err := term.AbstractForall(ctx, tID, conclusion)
	if err != nil {
		return nil, err
	}
	ctx.Pop()
	body = closeForall(ctx, indexIDs, body)
	popAll(ctx, len(indexIDs))

	for i := len(minorIDs) - 1; i >= 0; i-- {
		body, err = term.AbstractForall(ctx, minorIDs[i], body)
		if err != nil {
			return nil, err
		}
	}
	body, err = term.AbstractForall(ctx, motiveID, body)
	if err != nil {
		return nil, err
	}
	body = closeForall(ctx, paramIDs, body)
	return body, nil
}

// buildCompRule builds the ctorIdx-th computation rule: a term of nested
// Lambdas over params, motive, minors (in that order, matching the
// positions whnf.tryReduceRecursor slices out of the recursor application)
// and finally this constructor's own arguments, whose body applies the
// matching minor premise to those arguments and to the induction
// hypotheses of its directly recursive arguments. motiveID and minorIDs
// must already be pushed on ctx.
func buildCompRule(ctx *term.LocalCtx, argPool *pool.ArgPool, ind env.SymbolID, elimLevels []level.Level, paramIDs []term.ScopeID, motiveID term.ScopeID, minorIDs []term.ScopeID, minorLocals []term.Term, spec Spec, c CtorSpec, ctorIdx int, ctorID env.SymbolID, elimID env.SymbolID) (term.Term, error) {
	argIDs := pushTelescope(ctx, c.Args)
	argLocals := locals(argIDs)
	paramLocals := locals(paramIDs)
	motiveLocal := term.MkLocal(motiveID)

	callArgs := argPool.Get(2 * len(argIDs))
	callArgs = append(callArgs, argLocals...)
	// Walked in the same reverse order as minorPremiseType's own IH loop,
	// but minorPremiseType's wrapping nests the *last* processed (lowest
	// index) IH outermost, so its foralls read left to right in ascending
	// arg order. Collecting here and reversing once before appending
	// restores that same ascending order for callArgs.
	var ihs []term.Term
	for i := len(argIDs) - 1; i >= 0; i-- {
		argTy, _ := ctx.TypeOf(argIDs[i])
		if kind, idx := classifyArg(argTy, ind, len(spec.Params)); kind == directRecursive {
			recurseArgs := argPool.Get(len(paramLocals) + 1 + len(minorLocals) + len(idx) + 1)
			recurseArgs = append(recurseArgs, paramLocals...)
			recurseArgs = append(recurseArgs, motiveLocal)
			recurseArgs = append(recurseArgs, minorLocals...)
			recurseArgs = append(recurseArgs, idx...)
			recurseArgs = append(recurseArgs, argLocals[i])
			ih := term.MkApps(term.MkGlobal(elimID, elimLevels), recurseArgs)
			argPool.Put(recurseArgs)
			ihs = append(ihs, ih)
		}
	}
	for i, j := 0, len(ihs)-1; i < j; i, j = i+1, j-1 {
		ihs[i], ihs[j] = ihs[j], ihs[i]
	}
	callArgs = append(callArgs, ihs...)

	body := term.MkApps(minorLocals[ctorIdx], callArgs)
	argPool.Put(callArgs)
	body = closeLambda(ctx, argIDs, body)
	popAll(ctx, len(argIDs))

	var err error
	for i := len(minorIDs) - 1; i >= 0; i-- {
		body, err = term.AbstractLambda(ctx, minorIDs[i], body)
		if err != nil {
			return nil, err
		}
	}
	body, err = term.AbstractLambda(ctx, motiveID, body)
	if err != nil {
		return nil, err
	}
	body = closeLambda(ctx, paramIDs, body)
	return body, nil
}
