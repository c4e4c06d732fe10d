package whnf

import (
	"testing"

	"github.com/kibi-lang/kibi/internal/env"
	"github.com/kibi-lang/kibi/internal/level"
	"github.com/kibi-lang/kibi/internal/term"
)

// noIVars is an IVarReader with nothing ever assigned, for tests that don't
// exercise metavariable resolution.
type noIVars struct{}

func (noIVars) TermValue(id term.IVarID) (term.Term, bool) { return nil, false }

func newReducer(ctx *term.LocalCtx, e *env.Env) *Reducer {
	if ctx == nil {
		ctx = term.NewLocalCtx()
	}
	if e == nil {
		e = env.New()
	}
	return New(ctx, e, noIVars{})
}

func TestWHNFBeta(t *testing.T) {
	ty := MkTestSort()
	// (fun x => x) applied to ty itself
	lam := term.MkLambda(term.Explicit, "x", ty, term.MkBound(0))
	app := term.MkApply(lam, ty)

	r := newReducer(nil, nil)
	got := r.WHNF(app)
	if !term.SyntaxEq(got, ty) {
		t.Fatalf("WHNF((fun x => x) ty) = %s, want %s", got, ty)
	}
}

func TestWHNFLetLocal(t *testing.T) {
	ctx := term.NewLocalCtx()
	ty := MkTestSort()
	id, local := ctx.Push(term.Explicit, "x", ty, ty) // let x := ty

	r := newReducer(ctx, nil)
	got := r.WHNF(local)
	if !term.SyntaxEq(got, ty) {
		t.Fatalf("WHNF(let-bound local) = %s, want %s", got, ty)
	}
	ctx.Pop()
	_ = id
}

func TestWHNFDeltaUnfoldsDef(t *testing.T) {
	e := env.New()
	ty := MkTestSort()
	id, ok := e.NewSymbol(env.Root, "const", env.KindDef, nil, &env.Def{
		NumLevels: 0, Ty: ty, Val: ty,
	})
	if !ok {
		t.Fatalf("NewSymbol(const) failed")
	}

	g := term.MkGlobal(id, nil)
	r := newReducer(nil, e)
	got := r.WHNF(g)
	if !term.SyntaxEq(got, ty) {
		t.Fatalf("WHNF(Global const) = %s, want %s", got, ty)
	}
}

func TestReduceNormalizesUnderBinder(t *testing.T) {
	e := env.New()
	ty := MkTestSort()
	id, ok := e.NewSymbol(env.Root, "const", env.KindDef, nil, &env.Def{
		NumLevels: 0, Ty: ty, Val: ty,
	})
	if !ok {
		t.Fatalf("NewSymbol(const) failed")
	}

	// forall (x : Sort 0), const   -- body mentions a def that should unfold
	body := term.MkGlobal(id, nil)
	fa := term.MkForall(term.Explicit, "x", ty, body)

	ctx := term.NewLocalCtx()
	r := newReducer(ctx, e)
	got := r.Reduce(fa)

	f, ok := term.TryForall(got)
	if !ok {
		t.Fatalf("Reduce(forall) did not return a Forall: %s", got)
	}
	if !term.SyntaxEq(f.Body, ty) {
		t.Fatalf("Reduce did not unfold const inside the Forall body: %s", f.Body)
	}
}

func TestWHNFForallSort(t *testing.T) {
	r := newReducer(nil, nil)
	ty := MkTestSort()
	fa := term.MkForall(term.Explicit, "x", ty, ty)

	if _, ok := r.WHNFForall(fa); !ok {
		t.Fatalf("WHNFForall(forall) = not ok, want a Forall")
	}
	if _, ok := r.WHNFSort(ty); !ok {
		t.Fatalf("WHNFSort(Sort 0) = not ok, want a Sort")
	}
}

// MkTestSort is a small helper so every test above shares one concrete
// closed type (Sort 0) without repeating the level import.
func MkTestSort() term.Term {
	return term.MkSort(level.MkZero())
}
