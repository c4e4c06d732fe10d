// Package inductive implements the inductive-type compiler: given a single
// (non-mutual) inductive declaration's parameters, indices and
// constructors, it synthesizes the type former, checks strict positivity,
// and emits the eliminator ("recursor") together with its per-constructor
// computation rules.
//
// Telescopes are described as builder closures rather than pre-built
// terms: a ParamSpec.Ty is called once the local context already holds
// every earlier entry of the same telescope as a term.Local, so callers
// build types the same way the elaborator itself does — by referencing
// in-scope locals directly — instead of hand-indexing de Bruijn variables.
//
// This compiler only supports the non-nested, non-mutual case: a
// constructor argument may recursively mention the inductive being
// declared only as its own top-level applied type (`xs : List a`, not
// `f : (List a -> T)` or `p : Eq (List a) ys`); see checkStrictPositivity.
package inductive

import (
	"fmt"

	"github.com/kibi-lang/kibi/internal/env"
	"github.com/kibi-lang/kibi/internal/level"
	"github.com/kibi-lang/kibi/internal/pool"
	"github.com/kibi-lang/kibi/internal/term"
)

// ParamSpec is one entry of a binder telescope.
type ParamSpec struct {
	Name string
	Kind term.BinderKind
	Ty   func(ctx *term.LocalCtx) term.Term
}

// CtorSpec describes one constructor before compilation.
type CtorSpec struct {
	Name string
	Args []ParamSpec

	// Indices returns the index values the conclusion `I params indices`
	// is instantiated at, once params and this constructor's own args are
	// in scope. Must return exactly len(Spec.Indices) terms. A non-indexed
	// inductive (len(Spec.Indices) == 0) always returns nil.
	Indices func(ctx *term.LocalCtx) []term.Term
}

// Spec is the input to Compile.
type Spec struct {
	Name       string
	LevelNames []string
	Params     []ParamSpec
	Indices    []ParamSpec // Ty is called with Params already in scope
	ResultLvl  level.Level
	Ctors      []CtorSpec
}

// Result is everything Compile publishes to the environment.
type Result struct {
	TypeFormer env.SymbolID
	Ctors      []env.SymbolID
	Eliminator env.SymbolID
}

var groupCounter int

// nextGroupID identifies one compiled inductive block — the substitute for
// the original's shared-pointer identity check between a recursor and its
// constructors, since Go IndAxiom values are stored by value.
func nextGroupID() int {
	groupCounter++
	return groupCounter
}

// pushTelescope pushes each entry of params in order, calling Ty with
// every earlier entry already visible, and returns their scope ids.
func pushTelescope(ctx *term.LocalCtx, params []ParamSpec) []term.ScopeID {
	ids := make([]term.ScopeID, len(params))
	for i, p := range params {
		ty := p.Ty(ctx)
		id, _ := ctx.Push(p.Kind, p.Name, ty, nil)
		ids[i] = id
	}
	return ids
}

// closeForall abstracts body into nested Foralls over ids, innermost
// (highest index) first, without popping — popping is the caller's
// responsibility once every use of these locals is done.
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

// closeLambda is closeForall's Lambda counterpart, used to build the
// constructor-case bodies of a computation rule.
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

func popAll(ctx *term.LocalCtx, n int) {
	for i := 0; i < n; i++ {
		ctx.Pop()
	}
}

func locals(ids []term.ScopeID) []term.Term {
	ts := make([]term.Term, len(ids))
	for i, id := range ids {
		ts[i] = term.MkLocal(id)
	}
	return ts
}

// applyInductive builds `I params indices` as an open term referencing the
// given param/index locals.
func applyInductive(ind env.SymbolID, levels []level.Level, paramLocals, indexLocals []term.Term) term.Term {
	t := term.Term(term.MkGlobal(ind, levels))
	for _, p := range paramLocals {
		t = term.MkApply(t, p)
	}
	for _, idx := range indexLocals {
		t = term.MkApply(t, idx)
	}
	return t
}

// Compile runs reserve -> elaborate -> positivity -> motive -> eliminator
// -> computation rules -> publish. ind must already be registered as
// Pending in e under spec.Name (elab_inductive does this before
// elaborating constructor bodies, so self-references resolve); Compile
// resolves it and introduces the constructor and eliminator symbols as its
// children. argPool is borrowed for the motive/minor-premise/computation-rule
// application arguments the eliminator builders assemble and immediately
// consume — every buffer is returned before Compile reaches the caller.
func Compile(e *env.Env, argPool *pool.ArgPool, ind env.SymbolID, spec Spec) (Result, error) {
	group := nextGroupID()
	numLevels := len(spec.LevelNames)
	levels := make([]level.Level, numLevels)
	for i, name := range spec.LevelNames {
		levels[i] = level.MkParam(name, i)
	}

	ctx := term.NewLocalCtx()
	paramIDs := pushTelescope(ctx, spec.Params)
	paramLocals := locals(paramIDs)

	indexIDs := pushTelescope(ctx, spec.Indices)
	sortTerm := term.MkSort(spec.ResultLvl)
	indexedSort := closeForall(ctx, indexIDs, sortTerm)
	popAll(ctx, len(indexIDs))

	typeFormerTy := closeForall(ctx, paramIDs, indexedSort)
	if !term.ClosedNoLocalNoIVar(typeFormerTy) {
		return Result{}, fmt.Errorf("inductive: %q: type former still references outer context", spec.Name)
	}

	e.ResolvePending(ind, env.KindIndAxiom, &env.IndAxiom{
		Kind: env.TypeFormer, NumLevels: numLevels, Ty: typeFormerTy, GroupID: group,
	}, nil)

	// params remain pushed throughout; each constructor pushes and pops its
	// own index/arg telescopes in turn.
	ctorTys := make([]term.Term, len(spec.Ctors))
	for i, c := range spec.Ctors {
		argIDs := pushTelescope(ctx, c.Args)
		var idxTerms []term.Term
		if c.Indices != nil {
			idxTerms = c.Indices(ctx)
		}
		if len(idxTerms) != len(spec.Indices) {
			return Result{}, fmt.Errorf("inductive: constructor %q: expected %d indices, got %d", c.Name, len(spec.Indices), len(idxTerms))
		}
		conclusion := applyInductive(ind, levels, paramLocals, idxTerms)
		ty := closeForall(ctx, argIDs, conclusion)
		popAll(ctx, len(argIDs))

		ty = closeForall(ctx, paramIDs, ty)
		if !term.ClosedNoLocalNoIVar(ty) {
			return Result{}, fmt.Errorf("inductive: constructor %q still references outer context", c.Name)
		}
		if !checkStrictPositivity(ty, ind, len(spec.Params)) {
			return Result{}, fmt.Errorf("inductive: constructor %q is not strictly positive in %q", c.Name, spec.Name)
		}
		ctorTys[i] = ty
	}

	ctorIDs := make([]env.SymbolID, len(spec.Ctors))
	for i, c := range spec.Ctors {
		id, ok := e.NewSymbol(ind, c.Name, env.KindIndAxiom, &env.IndAxiom{
			Kind: env.Constructor, CtorIndex: i, NumLevels: numLevels, Ty: ctorTys[i], GroupID: group,
		}, nil)
		if !ok {
			return Result{}, fmt.Errorf("inductive: constructor %q already declared", c.Name)
		}
		ctorIDs[i] = id
	}

	motiveLevelIdx := numLevels
	motiveLevel := level.MkParam("_motive", motiveLevelIdx)
	elimLevels := append(append([]level.Level{}, levels...), motiveLevel)

	motiveTy := buildMotiveType(ctx, ind, levels, paramLocals, spec, motiveLevel)
	motiveID, motiveLocal := ctx.Push(term.Explicit, "motive", motiveTy, nil)

	minorIDs := make([]term.ScopeID, len(spec.Ctors))
	minorLocals := make([]term.Term, len(spec.Ctors))
	for i, c := range spec.Ctors {
		mty := minorPremiseType(ctx, argPool, ind, levels, paramLocals, motiveLocal, spec, c, ctorIDs[i])
		id, local := ctx.Push(term.Explicit, fmt.Sprintf("minor%d", i), mty, nil)
		minorIDs[i] = id
		minorLocals[i] = local
	}

	// The eliminator's own computation rules call it recursively for
	// induction hypotheses, so its symbol id is reserved before those
	// rules are built — the same bootstrapping Compile's caller already
	// performs for ind itself.
	elimID, ok := e.NewSymbol(ind, "rec", env.KindPending, nil, nil)
	if !ok {
		return Result{}, fmt.Errorf("inductive: eliminator for %q already declared", spec.Name)
	}

	elimTy, err := buildEliminatorType(ctx, argPool, ind, levels, paramIDs, paramLocals, spec, motiveID, motiveLocal, minorIDs)
	if err != nil {
		return Result{}, err
	}

	compRules := make([]term.Term, len(spec.Ctors))
	for i, c := range spec.Ctors {
		rule, err := buildCompRule(ctx, argPool, ind, elimLevels, paramIDs, motiveID, minorIDs, minorLocals, spec, c, i, ctorIDs[i], elimID)
		if err != nil {
			return Result{}, err
		}
		compRules[i] = rule
	}

	for range minorIDs {
		ctx.Pop()
	}
	ctx.Pop() // motive
	popAll(ctx, len(paramIDs))

	numMinors := len(spec.Ctors)
	minArgs := len(spec.Params) + 1 /*motive*/ + numMinors + len(spec.Indices) + 1 /*scrutinee*/

	e.ResolvePending(elimID, env.KindIndAxiom, &env.IndAxiom{
		Kind: env.Eliminator, NumLevels: numLevels + 1, Ty: elimTy, GroupID: group,
		NumParams: len(spec.Params), NumMotives: 1, NumMinors: numMinors,
		MinArgsForReduce: minArgs, CompRules: compRules,
	}, nil)

	return Result{TypeFormer: ind, Ctors: ctorIDs, Eliminator: elimID}, nil
}
