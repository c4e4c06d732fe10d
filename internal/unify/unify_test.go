package unify

import (
	"testing"

	"github.com/kibi-lang/kibi/internal/env"
	"github.com/kibi-lang/kibi/internal/ivar"
	"github.com/kibi-lang/kibi/internal/level"
	"github.com/kibi-lang/kibi/internal/term"
)

func newUnifier() (*Unifier, *term.LocalCtx, *env.Env, *ivar.Store) {
	ctx := term.NewLocalCtx()
	e := env.New()
	iv := ivar.New()
	return New(ctx, e, iv), ctx, e, iv
}

func TestInferTypeSort(t *testing.T) {
	u, _, _, _ := newUnifier()
	got := u.InferType(term.MkSort(level.MkZero()))
	s, ok := term.TrySort(got)
	if !ok || !level.SyntacticEq(s, level.MkSucc(level.MkZero())) {
		t.Fatalf("InferType(Sort 0) = %s, want Sort 1", got)
	}
}

func TestInferTypeForallAndLambda(t *testing.T) {
	u, _, _, _ := newUnifier()
	sort0 := term.MkSort(level.MkZero())

	// forall (x : Sort 0), Sort 0 : Sort (imax 1 1) = Sort 1
	fa := term.MkForall(term.Explicit, "x", sort0, sort0)
	faTy := u.InferType(fa)
	if _, ok := term.TrySort(faTy); !ok {
		t.Fatalf("InferType(forall) = %s, want a Sort", faTy)
	}

	// fun (x : Sort 0) => x : forall (x : Sort 0), Sort 0
	lam := term.MkLambda(term.Explicit, "x", sort0, term.MkBound(0))
	lamTy := u.InferType(lam)
	lf, ok := term.TryForall(lamTy)
	if !ok {
		t.Fatalf("InferType(lambda) = %s, want a Forall", lamTy)
	}
	if !term.SyntaxEq(lf.Ty, sort0) {
		t.Fatalf("InferType(lambda).Ty = %s, want %s", lf.Ty, sort0)
	}
}

func TestInferTypeApply(t *testing.T) {
	u, _, _, _ := newUnifier()
	sort0 := term.MkSort(level.MkZero())
	lam := term.MkLambda(term.Explicit, "x", sort0, term.MkBound(0))
	app := term.MkApply(lam, sort0)

	got := u.InferType(app)
	if !term.SyntaxEq(got, sort0) {
		t.Fatalf("InferType((fun x => x) Sort0) = %s, want %s", got, sort0)
	}
}

func TestDefEqSyntacticallyEqual(t *testing.T) {
	u, _, _, _ := newUnifier()
	sort0 := term.MkSort(level.MkZero())
	if !u.DefEq(sort0, sort0) {
		t.Fatalf("DefEq(Sort0, Sort0) = false, want true")
	}
}

func TestDefEqBeta(t *testing.T) {
	u, _, _, _ := newUnifier()
	sort0 := term.MkSort(level.MkZero())
	lam := term.MkLambda(term.Explicit, "x", sort0, term.MkBound(0))
	app := term.MkApply(lam, sort0)

	if !u.DefEq(app, sort0) {
		t.Fatalf("DefEq((fun x => x) Sort0, Sort0) = false, want true")
	}
}

func TestDefEqDistinctSortsFail(t *testing.T) {
	u, _, _, _ := newUnifier()
	sort0 := term.MkSort(level.MkZero())
	sort1 := term.MkSort(level.MkSucc(level.MkZero()))
	if u.DefEq(sort0, sort1) {
		t.Fatalf("DefEq(Sort0, Sort1) = true, want false")
	}
}

func TestDefEqAssignsIVar(t *testing.T) {
	u, ctx, _, iv := newUnifier()
	sort0 := term.MkSort(level.MkZero())
	sort1 := term.MkSort(level.MkSucc(level.MkZero()))
	hole := iv.NewTermVarInScope(sort1, 0, false)

	if !u.DefEq(hole, sort0) {
		t.Fatalf("DefEq(?m, Sort0) = false, want true")
	}
	holeID, _ := term.TryIVar(hole)
	val, ok := iv.TermValue(holeID)
	if !ok || !term.SyntaxEq(val, sort0) {
		t.Fatalf("ivar was not assigned Sort0, got %v", val)
	}
	_ = ctx
}
