package inductive

import (
	"testing"

	"github.com/kibi-lang/kibi/internal/env"
	"github.com/kibi-lang/kibi/internal/level"
	"github.com/kibi-lang/kibi/internal/pool"
	"github.com/kibi-lang/kibi/internal/term"
)

// bitSpec is a minimal non-indexed, non-parametric two-constructor
// inductive (Bool-shaped) used to exercise Compile end to end.
func bitSpec() Spec {
	return Spec{
		Name:      "Bit",
		ResultLvl: level.MkZero(),
		Ctors: []CtorSpec{
			{Name: "zero"},
			{Name: "one"},
		},
	}
}

func TestCompileSimpleInductive(t *testing.T) {
	e := env.New()
	ind, ok := e.NewSymbol(env.Root, "Bit", env.KindPending, nil, nil)
	if !ok {
		t.Fatalf("NewSymbol(Bit) failed")
	}

	result, err := Compile(e, pool.New(64), ind, bitSpec())
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if result.TypeFormer != ind {
		t.Fatalf("TypeFormer = %d, want %d", result.TypeFormer, ind)
	}
	if len(result.Ctors) != 2 {
		t.Fatalf("len(Ctors) = %d, want 2", len(result.Ctors))
	}

	tyFormerSym := e.Symbol(ind)
	if tyFormerSym.Kind != env.KindIndAxiom || tyFormerSym.IndAxiom.Kind != env.TypeFormer {
		t.Fatalf("Bit symbol is not a resolved TypeFormer: %+v", tyFormerSym)
	}
	got := e.TypeOf(ind)
	s, ok := term.TrySort(got)
	if !ok || !level.SyntacticEq(s, level.MkZero()) {
		t.Fatalf("TypeOf(Bit) = %s, want Sort 0", got)
	}

	for _, cid := range result.Ctors {
		sym := e.Symbol(cid)
		if sym.Kind != env.KindIndAxiom || sym.IndAxiom.Kind != env.Constructor {
			t.Fatalf("constructor %d is not a resolved Constructor: %+v", cid, sym)
		}
		if !term.SyntaxEq(e.TypeOf(cid), term.MkGlobal(ind, nil)) {
			t.Fatalf("constructor %d type = %s, want Bit", cid, e.TypeOf(cid))
		}
	}

	elimSym := e.Symbol(result.Eliminator)
	if elimSym.Kind != env.KindIndAxiom || elimSym.IndAxiom.Kind != env.Eliminator {
		t.Fatalf("eliminator symbol is not resolved: %+v", elimSym)
	}
	if len(elimSym.IndAxiom.CompRules) != 2 {
		t.Fatalf("len(CompRules) = %d, want 2", len(elimSym.IndAxiom.CompRules))
	}
}

// negativeOccurrenceSpec declares a constructor whose argument type is a
// function FROM Bit, which is a negative occurrence and must be rejected.
func negativeOccurrenceSpec(ind env.SymbolID) Spec {
	return Spec{
		Name:      "Bad",
		ResultLvl: level.MkZero(),
		Ctors: []CtorSpec{
			{
				Name: "mk",
				Args: []ParamSpec{
					{
						Name: "f",
						Kind: term.Explicit,
						Ty: func(ctx *term.LocalCtx) term.Term {
							return term.MkForall(term.Explicit, "_", term.MkGlobal(ind, nil), term.MkGlobal(ind, nil))
						},
					},
				},
			},
		},
	}
}

func TestCompileRejectsNonPositiveOccurrence(t *testing.T) {
	e := env.New()
	ind, ok := e.NewSymbol(env.Root, "Bad", env.KindPending, nil, nil)
	if !ok {
		t.Fatalf("NewSymbol(Bad) failed")
	}

	_, err := Compile(e, pool.New(64), ind, negativeOccurrenceSpec(ind))
	if err == nil {
		t.Fatalf("Compile accepted a non-strictly-positive constructor")
	}
}

// treeSpec declares a binary-branching inductive whose "node" constructor
// has two directly recursive arguments (l, r), so its minor premise carries
// two induction hypotheses — unlike bitSpec/Nat.succ/List.cons, which only
// ever exercise a single recursive argument.
func treeSpec(ind env.SymbolID) Spec {
	leaf := func(ctx *term.LocalCtx) term.Term { return term.MkGlobal(ind, nil) }
	return Spec{
		Name:      "Tree",
		ResultLvl: level.MkZero(),
		Ctors: []CtorSpec{
			{Name: "leaf"},
			{
				Name: "node",
				Args: []ParamSpec{
					{Name: "l", Kind: term.Explicit, Ty: leaf},
					{Name: "r", Kind: term.Explicit, Ty: leaf},
				},
			},
		},
	}
}

// TestCompileOrdersInductionHypothesesByArgumentPosition guards against the
// minor premise's type and the computation rule's call disagreeing on
// which induction hypothesis belongs to which recursive argument once a
// constructor has more than one of them.
func TestCompileOrdersInductionHypothesesByArgumentPosition(t *testing.T) {
	e := env.New()
	ind, ok := e.NewSymbol(env.Root, "Tree", env.KindPending, nil, nil)
	if !ok {
		t.Fatalf("NewSymbol(Tree) failed")
	}

	result, err := Compile(e, pool.New(64), ind, treeSpec(ind))
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}

	nodeRule := e.Symbol(result.Eliminator).IndAxiom.CompRules[1]

	// Tree has no params or levels, so the nesting is exactly: motive,
	// minor(leaf), minor(node), l, r.
	body := nodeRule
	for i := 0; i < 5; i++ {
		lam, ok := term.TryLambda(body)
		if !ok {
			t.Fatalf("node's computation rule has fewer than 5 Lambdas (peeled %d): %s", i, nodeRule)
		}
		body = lam.Body
	}

	_, callArgs := term.Spine(body)
	if len(callArgs) != 4 {
		t.Fatalf("node minor application has %d args, want 4 (l, r, ih_l, ih_r): %s", len(callArgs), body)
	}
	lArg, rArg := callArgs[0], callArgs[1]

	_, ihLSpine := term.Spine(callArgs[2])
	_, ihRSpine := term.Spine(callArgs[3])
	if len(ihLSpine) == 0 || len(ihRSpine) == 0 {
		t.Fatalf("induction hypothesis arguments are not recursor applications: %s, %s", callArgs[2], callArgs[3])
	}
	ihLTarget := ihLSpine[len(ihLSpine)-1]
	ihRTarget := ihRSpine[len(ihRSpine)-1]

	if !term.SyntaxEq(ihLTarget, lArg) {
		t.Fatalf("the IH applied right after l recurses on %s, want l (%s): IHs are out of order relative to their arguments", ihLTarget, lArg)
	}
	if !term.SyntaxEq(ihRTarget, rArg) {
		t.Fatalf("the IH applied last recurses on %s, want r (%s): IHs are out of order relative to their arguments", ihRTarget, rArg)
	}
}
